// Package workflow validates and applies post status transitions and content
// edits. It never touches storage; callers load and persist records.
package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/maheshrc27/editorial-api/internal/models"
	"github.com/maheshrc27/editorial-api/internal/policy"
)

var graph = buildGraph()

func buildGraph() map[models.PostStatus]map[models.PostStatus]struct{} {
	g := make(map[models.PostStatus]map[models.PostStatus]struct{})
	for _, e := range policy.Edges() {
		if g[e.From] == nil {
			g[e.From] = make(map[models.PostStatus]struct{})
		}
		g[e.From][e.To] = struct{}{}
	}
	return g
}

func HasEdge(from, to models.PostStatus) bool {
	_, ok := graph[from][to]
	return ok
}

// EntersQueue reports whether the transition must be given a calendar slot.
func EntersQueue(from, to models.PostStatus) bool {
	return from == models.PostStatusPendingApproval && to == models.PostStatusApproved
}

// LeavesQueue reports whether the transition releases the post's slot.
func LeavesQueue(from, to models.PostStatus) bool {
	return from.Scheduled() && !to.Scheduled()
}

// SlotFunc computes the publication slot for a post entering the queue.
type SlotFunc func(post *models.Post) (time.Time, error)

type Result struct {
	Post         *models.Post
	From         models.PostStatus
	To           models.PostStatus
	SlotAssigned bool
	SlotCleared  bool
}

type Engine struct {
	now func() time.Time
}

func NewEngine(now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{now: now}
}

func resourceOf(post *models.Post) policy.Resource {
	return policy.Resource{
		Type:          policy.ResourcePost,
		OwnerClientID: post.ClientID,
		CurrentStatus: post.Status,
	}
}

// Transition checks the edge, the actor's right to take it and the content
// the target status requires, then returns an updated copy of post. The input
// post is never modified.
func (e *Engine) Transition(post *models.Post, target models.PostStatus, actor *models.User, assign SlotFunc) (*Result, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", models.ErrValidation, target)
	}
	if !HasEdge(post.Status, target) {
		return nil, fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, post.Status, target)
	}

	res := resourceOf(post)
	res.RequestedStatus = target
	if !policy.CanPerform(actor, policy.ActionTransition, res) {
		return nil, fmt.Errorf("%w: %s may not move post %d from %s to %s", models.ErrUnauthorized, roleOf(actor), post.ID, post.Status, target)
	}

	if err := requireContent(post, target); err != nil {
		return nil, err
	}

	next := post.Clone()
	next.Status = target
	next.UpdatedAt = e.now()
	result := &Result{Post: next, From: post.Status, To: target}

	switch {
	case EntersQueue(post.Status, target):
		if assign == nil {
			return nil, fmt.Errorf("no scheduler available for post %d", post.ID)
		}
		at, err := assign(next)
		if err != nil {
			return nil, err
		}
		next.ScheduledAt = &at
		result.SlotAssigned = true
	case LeavesQueue(post.Status, target) || (!target.Scheduled() && post.ScheduledAt != nil):
		next.ScheduledAt = nil
		result.SlotCleared = true
	}

	return result, nil
}

func requireContent(post *models.Post, target models.PostStatus) error {
	switch target {
	case models.PostStatusPendingApproval:
		if strings.TrimSpace(post.Content.Caption) == "" && strings.TrimSpace(post.Content.Script) == "" {
			return fmt.Errorf("%w: a caption or script is required before review", models.ErrValidation)
		}
	case models.PostStatusFinished:
		if strings.TrimSpace(post.Content.AssetLink) == "" {
			return fmt.Errorf("%w: an asset link is required to finish a post", models.ErrValidation)
		}
	}
	return nil
}

// EditContent applies patch if the actor owns every touched field at the
// post's current status.
func (e *Engine) EditContent(post *models.Post, patch models.ContentPatch, actor *models.User) (*models.Post, error) {
	fields := patch.Fields()
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no content fields to update", models.ErrValidation)
	}

	res := resourceOf(post)
	res.Fields = fields
	if !policy.CanPerform(actor, policy.ActionUpdate, res) {
		return nil, fmt.Errorf("%w: %s may not edit %v while post %d is %s", models.ErrUnauthorized, roleOf(actor), fields, post.ID, post.Status)
	}

	next := post.Clone()
	patch.Apply(&next.Content)
	next.UpdatedAt = e.now()
	return next, nil
}

func roleOf(u *models.User) models.Role {
	if u == nil {
		return "anonymous"
	}
	return u.Role
}
