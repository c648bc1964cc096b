package queue

import (
	"github.com/hibiken/asynq"
	"github.com/maheshrc27/editorial-api/internal/events"
	"github.com/maheshrc27/editorial-api/internal/repository"
	"github.com/maheshrc27/editorial-api/internal/service"
)

// Queue holds the handlers that consume domain events.
type Queue struct {
	ph repository.PostHistoryRepository
	qs service.QueueService
}

func NewQueue(ph repository.PostHistoryRepository, qs service.QueueService) *Queue {
	return &Queue{
		ph: ph,
		qs: qs,
	}
}

const (
	TaskTypePostStatusChanged = string(events.TypePostStatusChanged)
	TaskTypeSlotAssigned      = string(events.TypeSlotAssigned)
	TaskTypeQueueInvalidated  = string(events.TypeQueueInvalidated)
)

func (q *Queue) ServeMux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypePostStatusChanged, q.HandlePostStatusChanged)
	mux.HandleFunc(TaskTypeSlotAssigned, q.HandleSlotAssigned)
	mux.HandleFunc(TaskTypeQueueInvalidated, q.HandleQueueInvalidated)
	return mux
}
