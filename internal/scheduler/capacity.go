package scheduler

import (
	"time"

	"github.com/maheshrc27/editorial-api/internal/models"
)

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

// occupancy counts the slots a client's queue already uses, bucketed by week,
// month and day.
type occupancy struct {
	weeks      map[string]int
	months     map[string]int
	days       map[string]int
	dayPillars map[string]map[string]int
}

func newOccupancy() *occupancy {
	return &occupancy{
		weeks:      make(map[string]int),
		months:     make(map[string]int),
		days:       make(map[string]int),
		dayPillars: make(map[string]map[string]int),
	}
}

func (s *Scheduler) occupancyOf(posts []*models.Post) *occupancy {
	occ := newOccupancy()
	for _, p := range posts {
		if p.ScheduledAt == nil || !p.Status.Scheduled() {
			continue
		}
		s.add(occ, s.dayOf(*p.ScheduledAt), p.Pillar)
	}
	return occ
}

func (s *Scheduler) add(occ *occupancy, day time.Time, pillar string) {
	dk := day.Format(dayLayout)
	occ.weeks[s.weekOf(day).Format(dayLayout)]++
	occ.months[day.Format(monthLayout)]++
	occ.days[dk]++
	if pillar != "" {
		if occ.dayPillars[dk] == nil {
			occ.dayPillars[dk] = make(map[string]int)
		}
		occ.dayPillars[dk][pillar]++
	}
}

func (o *occupancy) week(weekStart time.Time) int {
	return o.weeks[weekStart.Format(dayLayout)]
}

func (o *occupancy) month(day time.Time) int {
	return o.months[day.Format(monthLayout)]
}

func (o *occupancy) day(day time.Time) int {
	return o.days[day.Format(dayLayout)]
}

func (o *occupancy) pillarOn(day time.Time, pillar string) int {
	return o.dayPillars[day.Format(dayLayout)][pillar]
}

// candidate is a day a post could be published on. Lower class is better:
// 0 an empty day, 1 a day that does not carry the post's pillar yet, 2 the rest.
type candidate struct {
	day   time.Time
	class int
	count int
}

func (c candidate) less(o candidate) bool {
	if c.class != o.class {
		return c.class < o.class
	}
	if !c.day.Equal(o.day) {
		return c.day.Before(o.day)
	}
	return c.count < o.count
}

func classify(occ *occupancy, day time.Time, pillar string) candidate {
	c := candidate{day: day, count: occ.day(day)}
	switch {
	case c.count == 0:
		c.class = 0
	case pillar == "" || occ.pillarOn(day, pillar) == 0:
		c.class = 1
	default:
		c.class = 2
	}
	return c
}
