package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/maheshrc27/editorial-api/internal/models"
	"github.com/maheshrc27/editorial-api/internal/repository"
	"github.com/maheshrc27/editorial-api/internal/service"
	"golang.org/x/sync/errgroup"
)

const recomputeConcurrency = 10

// QueueRecomputeJob re-places every active client's queue. Clients are
// independent, so they are recomputed in parallel.
type QueueRecomputeJob struct {
	cr      repository.ClientRepository
	qs      service.QueueService
	timeout time.Duration
}

func NewQueueRecomputeJob(cr repository.ClientRepository, qs service.QueueService, timeout time.Duration) *QueueRecomputeJob {
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &QueueRecomputeJob{cr: cr, qs: qs, timeout: timeout}
}

// Run is the cron entry point.
func (j *QueueRecomputeJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	moved, err := j.RecomputeAll(ctx)
	if err != nil {
		slog.Info(err.Error())
		return
	}
	slog.Info("queue recompute finished", "moved", moved)
}

// RecomputeAll returns the number of posts that moved. A failing client is
// logged and does not stop the others; the first error is returned at the end.
func (j *QueueRecomputeJob) RecomputeAll(ctx context.Context) (int, error) {
	clients, err := j.cr.List(ctx, models.ClientStatusActive)
	if err != nil {
		return 0, err
	}

	counts := make([]int, len(clients))

	var g errgroup.Group
	g.SetLimit(recomputeConcurrency)

	for i, client := range clients {
		g.Go(func() error {
			moved, err := j.qs.RecalculateQueue(ctx, client.ID)
			if err != nil {
				slog.Info("unable to recompute queue", "client_id", client.ID, "error", err)
				return err
			}
			counts[i] = len(moved)
			return nil
		})
	}

	err = g.Wait()

	total := 0
	for _, n := range counts {
		total += n
	}
	return total, err
}
