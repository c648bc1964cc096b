package service

import (
	"context"
	"testing"
	"time"

	config "github.com/maheshrc27/editorial-api/configs"
	"github.com/maheshrc27/editorial-api/internal/events"
	"github.com/maheshrc27/editorial-api/internal/lock"
	"github.com/maheshrc27/editorial-api/internal/models"
	"github.com/maheshrc27/editorial-api/internal/repository"
	"github.com/maheshrc27/editorial-api/internal/scheduler"
	"github.com/maheshrc27/editorial-api/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Monday morning, before the publish time.
var monday = time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
}

type fixture struct {
	repos    *repository.Repositories
	recorder *events.Recorder
	scope    *lock.Local

	posts    PostService
	queue    QueueService
	clients  ClientService
	requests ContentRequestService
	comments CommentService

	admin, manager, creative, production, client, outsider *models.User
	clientID, otherClientID                                int64
}

func newFixture(t *testing.T, weekly int, pillars ...string) *fixture {
	t.Helper()
	ctx := context.Background()
	now := func() time.Time { return monday }

	f := &fixture{
		repos:    repository.NewMemoryRepositories(),
		recorder: events.NewRecorder(),
		scope:    lock.NewLocal(50 * time.Millisecond),
	}
	sched := scheduler.New(scheduler.DefaultOptions(), now)

	f.posts = NewPostService(f.repos.Clients, f.repos.Posts, f.repos.History, sched, f.scope, f.recorder, now)
	f.queue = NewQueueService(f.repos.Clients, f.repos.Posts, sched, f.scope, f.recorder, now)
	f.clients = NewClientService(f.repos.Clients, f.repos.Posts, sched, f.scope, f.recorder, now)
	f.requests = NewContentRequestService(f.repos.Clients, f.repos.ContentRequests, f.repos.Posts, f.posts, now)
	f.comments = NewCommentService(f.repos.Posts, f.repos.Comments)

	var err error
	f.clientID, err = f.repos.Clients.Create(ctx, &models.Client{Name: "Acme", WeeklyCapacity: weekly, StrategyPillars: pillars})
	require.NoError(t, err)
	f.otherClientID, err = f.repos.Clients.Create(ctx, &models.Client{Name: "Globex", WeeklyCapacity: 3})
	require.NoError(t, err)

	f.admin = f.user(t, "admin@agency.test", models.RoleAdmin, nil)
	f.manager = f.user(t, "manager@agency.test", models.RoleManager, nil)
	f.creative = f.user(t, "creative@agency.test", models.RoleCreative, nil)
	f.production = f.user(t, "production@agency.test", models.RoleProduction, nil)
	f.client = f.user(t, "owner@acme.test", models.RoleClient, &f.clientID)
	f.outsider = f.user(t, "owner@globex.test", models.RoleClient, &f.otherClientID)
	return f
}

func (f *fixture) user(t *testing.T, email string, role models.Role, clientID *int64) *models.User {
	t.Helper()
	ctx := context.Background()
	id, err := f.repos.Users.Create(ctx, &models.User{Email: email, Role: role, AssignedClientID: clientID})
	require.NoError(t, err)
	u, ok, err := f.repos.Users.GetByID(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	return u
}

func (f *fixture) draft(t *testing.T, pillar string) *models.Post {
	t.Helper()
	post, err := f.posts.Create(context.Background(), f.creative, &transfer.PostCreation{
		ClientID: f.clientID,
		Type:     models.PostTypeReel,
		Pillar:   pillar,
		Caption:  "launch teaser",
	})
	require.NoError(t, err)
	return post
}

func (f *fixture) approve(t *testing.T, pillar string) *models.Post {
	t.Helper()
	ctx := context.Background()
	post := f.draft(t, pillar)
	_, err := f.posts.Transition(ctx, f.creative, post.ID, models.PostStatusPendingApproval)
	require.NoError(t, err)
	post, err = f.posts.Transition(ctx, f.manager, post.ID, models.PostStatusApproved)
	require.NoError(t, err)
	return post
}

func eventsOf[T events.Event](r *events.Recorder) []T {
	var out []T
	for _, e := range r.Events() {
		if v, ok := e.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func TestPostLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2)

	post := f.draft(t, "")
	assert.Equal(t, models.PostStatusDraft, post.Status)
	assert.Equal(t, f.creative.ID, post.CreatedBy)

	post, err := f.posts.Transition(ctx, f.creative, post.ID, models.PostStatusPendingApproval)
	require.NoError(t, err)
	assert.Nil(t, post.ScheduledAt)

	post, err = f.posts.Transition(ctx, f.manager, post.ID, models.PostStatusApproved)
	require.NoError(t, err)
	require.NotNil(t, post.ScheduledAt)
	assert.Equal(t, date(2026, 3, 2), *post.ScheduledAt)

	_, err = f.posts.Transition(ctx, f.production, post.ID, models.PostStatusFinished)
	assert.ErrorIs(t, err, models.ErrValidation)

	link := "https://cdn.agency.test/teaser.mp4"
	_, err = f.posts.EditContent(ctx, f.production, post.ID, models.ContentPatch{AssetLink: &link})
	require.NoError(t, err)

	post, err = f.posts.Transition(ctx, f.production, post.ID, models.PostStatusFinished)
	require.NoError(t, err)
	assert.Equal(t, date(2026, 3, 2), *post.ScheduledAt)

	post, err = f.posts.Transition(ctx, f.client, post.ID, models.PostStatusClientApproved)
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusClientApproved, post.Status)

	changes := eventsOf[events.PostStatusChanged](f.recorder)
	require.Len(t, changes, 4)
	assert.Equal(t, models.PostStatusFinished, changes[3].From)
	assert.Equal(t, models.PostStatusClientApproved, changes[3].To)
	assert.Equal(t, f.client.ID, changes[3].ActorID)

	slots := eventsOf[events.SlotAssigned](f.recorder)
	require.Len(t, slots, 1)
	assert.Equal(t, post.ID, slots[0].PostID)
	assert.Equal(t, date(2026, 3, 2), slots[0].Date)
}

func TestApprovalsFillWeeklyCapacity(t *testing.T) {
	f := newFixture(t, 2)

	a := f.approve(t, "")
	b := f.approve(t, "")
	c := f.approve(t, "")

	assert.Equal(t, date(2026, 3, 2), *a.ScheduledAt)
	assert.Equal(t, date(2026, 3, 3), *b.ScheduledAt)
	assert.Equal(t, date(2026, 3, 9), *c.ScheduledAt)
}

func TestRegressionClearsSlot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2)

	post := f.approve(t, "")
	require.NotNil(t, post.ScheduledAt)

	post, err := f.posts.Transition(ctx, f.manager, post.ID, models.PostStatusRejected)
	require.NoError(t, err)
	assert.Nil(t, post.ScheduledAt)

	stored, err := f.posts.Get(ctx, f.admin, post.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusRejected, stored.Status)
	assert.Nil(t, stored.ScheduledAt)
}

func TestUnauthorizedTransitionLeavesPostUntouched(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2)

	post := f.draft(t, "")
	_, err := f.posts.Transition(ctx, f.creative, post.ID, models.PostStatusPendingApproval)
	require.NoError(t, err)

	_, err = f.posts.Transition(ctx, f.creative, post.ID, models.PostStatusApproved)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = f.posts.Transition(ctx, f.client, post.ID, models.PostStatusApproved)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = f.posts.Transition(ctx, f.manager, post.ID, models.PostStatusFinished)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	stored, err := f.posts.Get(ctx, f.admin, post.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusPendingApproval, stored.Status)
	assert.Nil(t, stored.ScheduledAt)
}

func TestHorizonExceededKeepsPostPending(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)

	post := f.draft(t, "")
	_, err := f.posts.Transition(ctx, f.creative, post.ID, models.PostStatusPendingApproval)
	require.NoError(t, err)

	_, err = f.posts.Transition(ctx, f.manager, post.ID, models.PostStatusApproved)
	assert.ErrorIs(t, err, models.ErrSchedulingHorizonExceeded)
	assert.Equal(t, UnprocessableEntity, StatusOf(err))

	stored, err := f.posts.Get(ctx, f.admin, post.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusPendingApproval, stored.Status)
}

func TestTransitionBusyWhileClientScopeHeld(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2)

	post := f.draft(t, "")
	_, err := f.posts.Transition(ctx, f.creative, post.ID, models.PostStatusPendingApproval)
	require.NoError(t, err)

	release, err := f.scope.Acquire(ctx, lock.ClientKey(f.clientID))
	require.NoError(t, err)

	_, err = f.posts.Transition(ctx, f.manager, post.ID, models.PostStatusApproved)
	assert.ErrorIs(t, err, models.ErrBusy)
	assert.Equal(t, ServiceUnavailable, StatusOf(err))

	release()
	_, err = f.posts.Transition(ctx, f.manager, post.ID, models.PostStatusApproved)
	assert.NoError(t, err)
}

func TestClientUsersAreScopedToTheirClient(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2)
	post := f.draft(t, "")

	_, err := f.posts.Get(ctx, f.client, post.ID)
	assert.NoError(t, err)

	_, err = f.posts.Get(ctx, f.outsider, post.ID)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = f.posts.List(ctx, f.outsider, f.clientID, "")
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	visible, err := f.clients.List(ctx, f.outsider)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, f.otherClientID, visible[0].ID)

	all, err := f.clients.List(ctx, f.manager)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestEditContentRespectsFieldOwnership(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2)
	post := f.draft(t, "")

	script := "hook, reveal, call to action"
	updated, err := f.posts.EditContent(ctx, f.creative, post.ID, models.ContentPatch{Script: &script})
	require.NoError(t, err)
	assert.Equal(t, script, updated.Content.Script)
	assert.Equal(t, post.Version+1, updated.Version)

	link := "https://cdn.agency.test/a.png"
	_, err = f.posts.EditContent(ctx, f.creative, post.ID, models.ContentPatch{AssetLink: &link})
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = f.posts.EditContent(ctx, f.client, post.ID, models.ContentPatch{Script: &script})
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestCreatePostValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2, "education", "product")

	_, err := f.posts.Create(ctx, f.creative, &transfer.PostCreation{ClientID: f.clientID, Type: "banner"})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = f.posts.Create(ctx, f.creative, &transfer.PostCreation{ClientID: f.clientID, Type: models.PostTypeFeed, Pillar: "memes"})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = f.posts.Create(ctx, f.production, &transfer.PostCreation{ClientID: f.clientID, Type: models.PostTypeFeed})
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = f.posts.Create(ctx, f.creative, &transfer.PostCreation{ClientID: 999, Type: models.PostTypeFeed})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRemoveIsAdminOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2)
	post := f.draft(t, "")

	err := f.posts.Remove(ctx, f.manager, post.ID)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	require.NoError(t, f.posts.Remove(ctx, f.admin, post.ID))
	_, err = f.posts.Get(ctx, f.admin, post.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCadenceChangeAndRecalculate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)

	a := f.approve(t, "")
	b := f.approve(t, "")
	c := f.approve(t, "")
	assert.Equal(t, date(2026, 3, 9), *b.ScheduledAt)
	assert.Equal(t, date(2026, 3, 16), *c.ScheduledAt)

	f.recorder.Reset()
	client, err := f.clients.UpdateCadence(ctx, f.manager, f.clientID, models.Cadence{WeeklyCapacity: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, client.WeeklyCapacity)

	assert.Len(t, eventsOf[events.SlotAssigned](f.recorder), 2)
	invalidated := eventsOf[events.QueueInvalidated](f.recorder)
	require.Len(t, invalidated, 1)
	assert.Equal(t, f.clientID, invalidated[0].ClientID)

	want := map[int64]time.Time{a.ID: date(2026, 3, 2), b.ID: date(2026, 3, 3), c.ID: date(2026, 3, 4)}
	for id, slot := range want {
		p, err := f.posts.Get(ctx, f.admin, id)
		require.NoError(t, err)
		assert.Equal(t, slot, *p.ScheduledAt, "post %d", id)
	}

	again, err := f.queue.RecalculateQueue(ctx, f.clientID)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestCadenceThatDoesNotFitWritesNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)
	a := f.approve(t, "")
	b := f.approve(t, "")

	f.recorder.Reset()
	_, err := f.clients.UpdateCadence(ctx, f.manager, f.clientID, models.Cadence{WeeklyCapacity: 0})
	assert.ErrorIs(t, err, models.ErrSchedulingHorizonExceeded)
	assert.Equal(t, UnprocessableEntity, StatusOf(err))
	assert.Empty(t, f.recorder.Events())

	client, err := f.repos.Clients.GetByID(ctx, f.clientID)
	require.NoError(t, err)
	assert.Equal(t, 1, client.WeeklyCapacity)

	for id, slot := range map[int64]time.Time{a.ID: date(2026, 3, 2), b.ID: date(2026, 3, 9)} {
		p, err := f.posts.Get(ctx, f.admin, id)
		require.NoError(t, err)
		assert.Equal(t, slot, *p.ScheduledAt, "post %d", id)
	}
}

func TestCadenceWithoutQueueAcceptsZeroCapacity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)
	f.draft(t, "")

	client, err := f.clients.UpdateCadence(ctx, f.manager, f.clientID, models.Cadence{WeeklyCapacity: 0})
	require.NoError(t, err)
	assert.Equal(t, 0, client.WeeklyCapacity)
}

func TestRemovedPillarIsUnassigned(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2, "education", "promo")
	f.approve(t, "education")
	f.approve(t, "promo")
	f.draft(t, "promo")

	before, err := f.repos.Posts.ListByClient(ctx, f.clientID)
	require.NoError(t, err)
	require.Len(t, before, 3)

	client, err := f.clients.UpdateCadence(ctx, f.manager, f.clientID, models.Cadence{WeeklyCapacity: 2, StrategyPillars: []string{"education"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"education"}, client.StrategyPillars)

	for _, orig := range before {
		p, err := f.repos.Posts.GetByID(ctx, orig.ID)
		require.NoError(t, err)
		assert.Equal(t, orig.ScheduledAt, p.ScheduledAt, "post %d keeps its slot", orig.ID)
		if orig.Pillar == "education" {
			assert.Equal(t, "education", p.Pillar)
			assert.Equal(t, orig.Version, p.Version)
			continue
		}
		assert.Empty(t, p.Pillar, "post %d", orig.ID)
		assert.Equal(t, orig.Version+1, p.Version, "post %d", orig.ID)
	}
}

func TestRemoveClientOrphansPosts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2)
	post := f.approve(t, "")
	req, err := f.requests.Create(ctx, f.client, &transfer.ContentRequestCreation{ClientID: f.clientID, Title: "Giveaway"})
	require.NoError(t, err)

	assert.ErrorIs(t, f.clients.Remove(ctx, f.creative, f.clientID), models.ErrUnauthorized)
	assert.ErrorIs(t, f.clients.Remove(ctx, f.admin, 404), models.ErrNotFound)

	require.NoError(t, f.clients.Remove(ctx, f.admin, f.clientID))
	_, err = f.clients.Get(ctx, f.admin, f.clientID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	orphan, err := f.repos.Posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.NotNil(t, orphan)
	assert.Equal(t, f.clientID, orphan.ClientID)

	stored, err := f.repos.ContentRequests.GetByID(ctx, req.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, f.clientID, stored.ClientID)
}

func TestRecalculateAuthorization(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)

	_, err := f.queue.Recalculate(ctx, f.creative, f.clientID)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = f.queue.Recalculate(ctx, f.manager, f.clientID)
	assert.NoError(t, err)
}

func TestCancelledRecalculateWritesNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)
	f.approve(t, "")
	b := f.approve(t, "")

	client, err := f.repos.Clients.GetByID(ctx, f.clientID)
	require.NoError(t, err)
	client.WeeklyCapacity = 2
	require.NoError(t, f.repos.Clients.Update(ctx, client))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = f.queue.RecalculateQueue(cancelled, f.clientID)
	assert.ErrorIs(t, err, context.Canceled)

	stored, err := f.posts.Get(ctx, f.admin, b.ID)
	require.NoError(t, err)
	assert.Equal(t, date(2026, 3, 9), *stored.ScheduledAt)
}

func TestCalendarThroughService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2)
	a := f.approve(t, "")
	b := f.approve(t, "")
	c := f.approve(t, "")

	seq, err := f.queue.GetCalendar(ctx, f.client, f.clientID, date(2026, 3, 1), date(2026, 3, 31))
	require.NoError(t, err)

	var ids []int64
	for entry, err := range seq {
		require.NoError(t, err)
		ids = append(ids, entry.Post.ID)
	}
	assert.Equal(t, []int64{a.ID, b.ID, c.ID}, ids)

	_, err = f.queue.GetCalendar(ctx, f.outsider, f.clientID, date(2026, 3, 1), date(2026, 3, 31))
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = f.queue.GetCalendar(ctx, f.client, f.clientID, date(2026, 3, 31), date(2026, 3, 1))
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestSuggestPillarThroughService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2, "education", "product")

	s, err := f.queue.SuggestPillar(ctx, f.manager, f.clientID)
	require.NoError(t, err)
	assert.Equal(t, "education", s.Pillar)
	assert.Equal(t, 4, s.Share)

	f.approve(t, "education")
	s, err = f.queue.SuggestPillar(ctx, f.manager, f.clientID)
	require.NoError(t, err)
	assert.Equal(t, "product", s.Pillar)
	assert.Equal(t, 1, s.Usage["education"])
}

func TestUpdateCadenceValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2)

	_, err := f.clients.UpdateCadence(ctx, f.manager, f.clientID, models.Cadence{WeeklyCapacity: -1})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = f.clients.UpdateCadence(ctx, f.manager, f.clientID, models.Cadence{WeeklyCapacity: 2, StrategyPillars: []string{"a", "a"}})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = f.clients.UpdateCadence(ctx, f.client, f.clientID, models.Cadence{WeeklyCapacity: 2})
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestContentRequestConversion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2)

	req, err := f.requests.Create(ctx, f.client, &transfer.ContentRequestCreation{
		ClientID:    f.clientID,
		Title:       "Spring sale",
		Description: "Three reels about the spring collection",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ContentRequestPending, req.Status)
	assert.Equal(t, f.client.ID, req.RequestedBy)

	_, _, err = f.requests.Convert(ctx, f.creative, req.ID, nil)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	converted, post, err := f.requests.Convert(ctx, f.manager, req.ID, &transfer.ContentRequestConversion{Type: models.PostTypeReel})
	require.NoError(t, err)
	assert.Equal(t, models.ContentRequestConverted, converted.Status)
	require.NotNil(t, converted.PostID)
	assert.Equal(t, post.ID, *converted.PostID)
	assert.NotNil(t, converted.RespondedAt)
	assert.Equal(t, models.PostStatusDraft, post.Status)
	assert.Equal(t, req.Description, post.Content.Script)

	_, _, err = f.requests.Convert(ctx, f.manager, req.ID, nil)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
	_, err = f.requests.Reject(ctx, f.manager, req.ID)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestContentRequestRejection(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2)

	_, err := f.requests.Create(ctx, f.outsider, &transfer.ContentRequestCreation{ClientID: f.clientID, Title: "x"})
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	req, err := f.requests.Create(ctx, f.client, &transfer.ContentRequestCreation{ClientID: f.clientID, Title: "Giveaway"})
	require.NoError(t, err)

	rejected, err := f.requests.Reject(ctx, f.manager, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContentRequestRejected, rejected.Status)
	assert.Nil(t, rejected.PostID)

	pending, err := f.requests.List(ctx, f.client, f.clientID, models.ContentRequestPending)
	require.NoError(t, err)
	assert.Empty(t, pending)

	all, err := f.requests.List(ctx, f.client, f.clientID, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

// answeredElsewhere reports every request as pending, the way a reader
// racing another responder sees it.
type answeredElsewhere struct {
	repository.ContentRequestRepository
}

func (r answeredElsewhere) GetByID(ctx context.Context, id int64) (*models.ContentRequest, error) {
	req, err := r.ContentRequestRepository.GetByID(ctx, id)
	if req != nil {
		req.Status = models.ContentRequestPending
	}
	return req, err
}

func TestConcurrentResponseIsInvalidTransition(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2)
	requests := NewContentRequestService(f.repos.Clients, answeredElsewhere{f.repos.ContentRequests}, f.repos.Posts, f.posts, func() time.Time { return monday })

	req, err := requests.Create(ctx, f.client, &transfer.ContentRequestCreation{ClientID: f.clientID, Title: "Giveaway"})
	require.NoError(t, err)
	_, err = requests.Reject(ctx, f.manager, req.ID)
	require.NoError(t, err)

	_, err = requests.Reject(ctx, f.manager, req.ID)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
	assert.Equal(t, Conflict, StatusOf(err))

	_, _, err = requests.Convert(ctx, f.manager, req.ID, nil)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	posts, err := f.repos.Posts.ListByClient(ctx, f.clientID)
	require.NoError(t, err)
	assert.Empty(t, posts, "the post of a lost conversion is removed")
}

func TestComments(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2)
	post := f.draft(t, "")

	_, err := f.comments.Create(ctx, f.client, post.ID, &transfer.CommentCreation{Message: "Love the hook"})
	require.NoError(t, err)
	_, err = f.comments.Create(ctx, f.creative, post.ID, &transfer.CommentCreation{Message: "Thanks!"})
	require.NoError(t, err)

	_, err = f.comments.Create(ctx, f.outsider, post.ID, &transfer.CommentCreation{Message: "hi"})
	assert.ErrorIs(t, err, models.ErrUnauthorized)
	_, err = f.comments.Create(ctx, f.client, post.ID, &transfer.CommentCreation{})
	assert.ErrorIs(t, err, models.ErrValidation)

	comments, err := f.comments.List(ctx, f.client, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, models.RoleClient, comments[0].AuthorRole)
	assert.Equal(t, "Thanks!", comments[1].Message)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, NotFound, StatusOf(notFound("post", 1)))
	assert.Equal(t, Forbidden, StatusOf(models.ErrUnauthorized))
	assert.Equal(t, Conflict, StatusOf(models.ErrInvalidTransition))
	assert.Equal(t, ServiceUnavailable, StatusOf(models.ErrVersionConflict))
	assert.Equal(t, BadRequest, StatusOf(models.ErrValidation))
	assert.Equal(t, InternalServerError, StatusOf(context.DeadlineExceeded))
}

func TestUserManagement(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2)
	users := NewUserService(f.repos.Users, f.repos.Clients)

	_, err := users.CreateUser(ctx, f.manager, &transfer.UserCreation{Email: "new@agency.test", Role: models.RoleCreative})
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = users.CreateUser(ctx, f.admin, &transfer.UserCreation{Email: "not-an-email", Role: models.RoleCreative})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = users.CreateUser(ctx, f.admin, &transfer.UserCreation{Email: "portal@acme.test", Role: models.RoleClient})
	assert.ErrorIs(t, err, models.ErrValidation, "client users need an assigned client")

	missing := int64(404)
	_, err = users.CreateUser(ctx, f.admin, &transfer.UserCreation{Email: "portal@acme.test", Role: models.RoleClient, AssignedClientID: &missing})
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = users.CreateUser(ctx, f.admin, &transfer.UserCreation{Email: "creative@agency.test", Role: models.RoleCreative})
	assert.ErrorIs(t, err, models.ErrValidation, "email already registered")

	user, err := users.CreateUser(ctx, f.admin, &transfer.UserCreation{Email: "portal@acme.test", Name: "Acme Portal", Role: models.RoleClient, AssignedClientID: &f.clientID})
	require.NoError(t, err)
	require.NotNil(t, user.AssignedClientID)
	assert.Equal(t, f.clientID, *user.AssignedClientID)

	assert.ErrorIs(t, users.RemoveUser(ctx, f.manager, user.ID), models.ErrUnauthorized)
	require.NoError(t, users.RemoveUser(ctx, f.admin, user.ID))

	_, err = users.GetUserInfo(ctx, user.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAuthenticateLoadsRoleFromStore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2)
	auth := NewAuthService(config.Config{SecretKey: "s3cret", TokenDuration: time.Hour}, f.repos.Users)

	token, err := auth.IssueToken(ctx, f.creative.ID)
	require.NoError(t, err)

	promoted := *f.creative
	promoted.Role = models.RoleManager
	require.NoError(t, f.repos.Users.Update(ctx, &promoted))

	user, err := auth.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleManager, user.Role)

	_, err = auth.Authenticate(ctx, token+"x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = auth.IssueToken(ctx, 999)
	assert.ErrorIs(t, err, models.ErrNotFound)

	other := NewAuthService(config.Config{SecretKey: "different", TokenDuration: time.Hour}, f.repos.Users)
	_, err = other.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
