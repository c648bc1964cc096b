// Package scheduler assigns publication slots on a client's calendar.
//
// Placement is capacity first: a post goes to the earliest week that still
// has room under the client's weekly (and optional monthly) cap. Inside that
// week the day is picked to spread posts and pillars, ties broken by date.
// Everything is computed from the snapshot passed in, so equal inputs always
// give equal assignments.
package scheduler

import (
	"fmt"
	"sort"
	"time"

	"github.com/maheshrc27/editorial-api/internal/models"
)

const (
	DefaultHorizonWeeks = 52
	DefaultPublishAt    = 10 * time.Hour
	PillarWindowWeeks   = 4
)

type Options struct {
	WeekStart    time.Weekday
	PublishAt    time.Duration // offset from midnight
	Location     *time.Location
	HorizonWeeks int
}

func DefaultOptions() Options {
	return Options{
		WeekStart:    time.Monday,
		PublishAt:    DefaultPublishAt,
		Location:     time.UTC,
		HorizonWeeks: DefaultHorizonWeeks,
	}
}

type Scheduler struct {
	opts Options
	now  func() time.Time
}

func New(opts Options, now func() time.Time) *Scheduler {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.HorizonWeeks <= 0 {
		opts.HorizonWeeks = DefaultHorizonWeeks
	}
	if now == nil {
		now = time.Now
	}
	return &Scheduler{opts: opts, now: now}
}

func (s *Scheduler) Options() Options {
	return s.opts
}

func (s *Scheduler) dayOf(t time.Time) time.Time {
	t = t.In(s.opts.Location)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.opts.Location)
}

func (s *Scheduler) weekOf(day time.Time) time.Time {
	offset := (int(day.Weekday()) - int(s.opts.WeekStart) + 7) % 7
	return day.AddDate(0, 0, -offset)
}

func (s *Scheduler) today() time.Time {
	return s.dayOf(s.now())
}

func (s *Scheduler) slotTime(day time.Time) time.Time {
	h := int(s.opts.PublishAt / time.Hour)
	m := int((s.opts.PublishAt % time.Hour) / time.Minute)
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, s.opts.Location)
}

// Assign returns the earliest slot for post given the client's queue in
// existing. The post itself is ignored if it appears in existing.
func (s *Scheduler) Assign(client *models.Client, existing []*models.Post, post *models.Post) (time.Time, error) {
	others := make([]*models.Post, 0, len(existing))
	for _, p := range existing {
		if p.ID != post.ID {
			others = append(others, p)
		}
	}
	occ := s.occupancyOf(others)
	return s.place(client, occ, s.today(), post)
}

func (s *Scheduler) place(client *models.Client, occ *occupancy, today time.Time, post *models.Post) (time.Time, error) {
	if client.WeeklyCapacity <= 0 {
		return time.Time{}, fmt.Errorf("%w: client %d has no weekly capacity", models.ErrSchedulingHorizonExceeded, client.ID)
	}

	now := s.now()
	first := s.weekOf(today)
	for w := 0; w < s.opts.HorizonWeeks; w++ {
		weekStart := first.AddDate(0, 0, 7*w)
		if occ.week(weekStart) >= client.WeeklyCapacity {
			continue
		}

		var best *candidate
		for d := 0; d < 7; d++ {
			day := weekStart.AddDate(0, 0, d)
			// today only counts while its publish time is still ahead
			if !s.slotTime(day).After(now) {
				continue
			}
			if client.MonthlyCapacity > 0 && occ.month(day) >= client.MonthlyCapacity {
				continue
			}
			c := classify(occ, day, post.Pillar)
			if best == nil || c.less(*best) {
				best = &c
			}
		}
		if best == nil {
			continue
		}

		s.add(occ, best.day, post.Pillar)
		return s.slotTime(best.day), nil
	}

	return time.Time{}, fmt.Errorf("%w: no free slot for post %d within %d weeks", models.ErrSchedulingHorizonExceeded, post.ID, s.opts.HorizonWeeks)
}

// fixed reports whether recomputation must keep the post's slot: signed off
// posts and slots whose publish time has passed stay where they are.
func (s *Scheduler) fixed(p *models.Post, now time.Time) bool {
	if p.ScheduledAt == nil || !p.Status.Scheduled() {
		return false
	}
	if p.Status == models.PostStatusClientApproved {
		return true
	}
	return !p.ScheduledAt.After(now)
}

func movable(p *models.Post) bool {
	return p.Status == models.PostStatusApproved || p.Status == models.PostStatusFinished
}

// Recalculate wipes the forward-looking slots of the client's queue and
// places every approved or finished post again in creation order. It returns
// the new slot of each re-placed post keyed by post id and does not modify
// the input.
func (s *Scheduler) Recalculate(client *models.Client, posts []*models.Post) (map[int64]time.Time, error) {
	today := s.today()
	now := s.now()

	var keep, queue []*models.Post
	for _, p := range posts {
		switch {
		case s.fixed(p, now):
			keep = append(keep, p)
		case movable(p):
			queue = append(queue, p)
		}
	}

	sort.SliceStable(queue, func(i, j int) bool {
		if !queue[i].CreatedAt.Equal(queue[j].CreatedAt) {
			return queue[i].CreatedAt.Before(queue[j].CreatedAt)
		}
		return queue[i].ID < queue[j].ID
	})

	occ := s.occupancyOf(keep)
	assignments := make(map[int64]time.Time, len(queue))
	for _, p := range queue {
		at, err := s.place(client, occ, today, p)
		if err != nil {
			return nil, err
		}
		assignments[p.ID] = at
	}
	return assignments, nil
}
