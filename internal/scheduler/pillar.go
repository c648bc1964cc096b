package scheduler

import (
	"time"

	"github.com/maheshrc27/editorial-api/internal/models"
)

// PillarUsage counts the client's scheduled posts per pillar in the rolling
// window that starts with the current week.
func (s *Scheduler) PillarUsage(posts []*models.Post) map[string]int {
	start := s.weekOf(s.today())
	end := start.AddDate(0, 0, 7*PillarWindowWeeks)

	usage := make(map[string]int)
	for _, p := range posts {
		if p.ScheduledAt == nil || !p.Status.Scheduled() || p.Pillar == "" {
			continue
		}
		day := s.dayOf(*p.ScheduledAt)
		if day.Before(start) || !day.Before(end) {
			continue
		}
		usage[p.Pillar]++
	}
	return usage
}

// SuggestPillar picks the pillar the next post should cover: round robin over
// the client's pillars, starting after the pillar of the latest slot in the
// window and skipping pillars already at their proportional share. It
// returns "" when every pillar is at share or the client has none.
func (s *Scheduler) SuggestPillar(client *models.Client, posts []*models.Post) string {
	pillars := client.StrategyPillars
	if len(pillars) == 0 {
		return ""
	}
	usage := s.PillarUsage(posts)
	share := client.PillarShare(PillarWindowWeeks)

	start := 0
	if last := s.lastPillar(client, posts); last != "" {
		for i, p := range pillars {
			if p == last {
				start = i + 1
				break
			}
		}
	}

	for i := 0; i < len(pillars); i++ {
		p := pillars[(start+i)%len(pillars)]
		if usage[p] < share {
			return p
		}
	}
	return ""
}

func (s *Scheduler) lastPillar(client *models.Client, posts []*models.Post) string {
	var (
		last   string
		lastAt time.Time
		lastID int64
	)
	for _, p := range posts {
		if p.ScheduledAt == nil || !p.Status.Scheduled() || !client.HasPillar(p.Pillar) {
			continue
		}
		at := *p.ScheduledAt
		if last == "" || at.After(lastAt) || (at.Equal(lastAt) && p.ID > lastID) {
			last, lastAt, lastID = p.Pillar, at, p.ID
		}
	}
	return last
}
