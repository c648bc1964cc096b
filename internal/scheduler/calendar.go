package scheduler

import (
	"iter"
	"sort"
	"time"

	"github.com/jinzhu/copier"
	"github.com/maheshrc27/editorial-api/internal/models"
)

type Entry struct {
	Date time.Time          `json:"date"`
	Post models.PostSummary `json:"post"`
}

// Loader fetches the current queue of one client.
type Loader func() ([]*models.Post, error)

// Calendar projects the scheduled posts with a slot in [from, to) as a lazy
// sequence ordered by date then post id. Each range over the sequence loads a
// fresh snapshot; nothing is written back.
func Calendar(load Loader, from, to time.Time) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		posts, err := load()
		if err != nil {
			yield(Entry{}, err)
			return
		}

		entries := make([]Entry, 0, len(posts))
		for _, p := range posts {
			if p.ScheduledAt == nil || !p.Status.Scheduled() {
				continue
			}
			at := *p.ScheduledAt
			if at.Before(from) || !at.Before(to) {
				continue
			}
			var summary models.PostSummary
			if err := copier.Copy(&summary, p); err != nil {
				yield(Entry{}, err)
				return
			}
			entries = append(entries, Entry{Date: at, Post: summary})
		}

		sort.Slice(entries, func(i, j int) bool {
			if !entries[i].Date.Equal(entries[j].Date) {
				return entries[i].Date.Before(entries[j].Date)
			}
			return entries[i].Post.ID < entries[j].Post.ID
		})

		for _, e := range entries {
			if !yield(e, nil) {
				return
			}
		}
	}
}
