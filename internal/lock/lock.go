// Package lock provides the per-client mutual exclusion scope that serializes
// schedule-changing operations on one client's queue.
package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/maheshrc27/editorial-api/internal/models"
)

const DefaultWait = 3 * time.Second

// Scope hands out exclusive access per key. Acquire waits at most the
// configured bound and then fails with models.ErrBusy.
type Scope interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

func ClientKey(clientID int64) string {
	return fmt.Sprintf("client:%d:queue", clientID)
}

// Local is an in-process Scope.
type Local struct {
	wait  time.Duration
	slots chan map[string]chan struct{}
}

func NewLocal(wait time.Duration) *Local {
	if wait <= 0 {
		wait = DefaultWait
	}
	l := &Local{wait: wait, slots: make(chan map[string]chan struct{}, 1)}
	l.slots <- make(map[string]chan struct{})
	return l
}

func (l *Local) slot(key string) chan struct{} {
	m := <-l.slots
	defer func() { l.slots <- m }()
	ch, ok := m[key]
	if !ok {
		ch = make(chan struct{}, 1)
		m[key] = ch
	}
	return ch
}

func (l *Local) Acquire(ctx context.Context, key string) (func(), error) {
	ch := l.slot(key)

	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-timer.C:
		return nil, fmt.Errorf("%w: %s is locked", models.ErrBusy, key)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
