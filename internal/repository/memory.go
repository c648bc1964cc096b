package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/maheshrc27/editorial-api/internal/models"
)

// memoryStore keeps every table behind one mutex so batch saves are atomic.
type memoryStore struct {
	mu  sync.Mutex
	seq int64

	users    map[int64]*models.User
	clients  map[int64]*models.Client
	posts    map[int64]*models.Post
	history  []*models.PostHistory
	requests map[int64]*models.ContentRequest
	comments []*models.Comment
}

// NewMemoryRepositories returns repositories backed by process memory.
// Used by tests and by STORE_DRIVER=memory.
func NewMemoryRepositories() *Repositories {
	s := &memoryStore{
		users:    make(map[int64]*models.User),
		clients:  make(map[int64]*models.Client),
		posts:    make(map[int64]*models.Post),
		requests: make(map[int64]*models.ContentRequest),
	}
	return &Repositories{
		Users:           &memoryUsers{s},
		Clients:         &memoryClients{s},
		Posts:           &memoryPosts{s},
		History:         &memoryHistory{s},
		ContentRequests: &memoryRequests{s},
		Comments:        &memoryComments{s},
	}
}

func (s *memoryStore) nextID() int64 {
	s.seq++
	return s.seq
}

type memoryUsers struct{ s *memoryStore }

func cloneUser(u *models.User) *models.User {
	cp := *u
	if u.AssignedClientID != nil {
		id := *u.AssignedClientID
		cp.AssignedClientID = &id
	}
	return &cp
}

func (r *memoryUsers) GetByID(ctx context.Context, id int64) (*models.User, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, false, nil
	}
	return cloneUser(u), true, nil
}

func (r *memoryUsers) GetByEmail(ctx context.Context, email string) (*models.User, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return cloneUser(u), true, nil
		}
	}
	return nil, false, nil
}

func (r *memoryUsers) Create(ctx context.Context, user *models.User) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return 0, fmt.Errorf("email %q already registered: %w", user.Email, models.ErrValidation)
		}
	}
	u := cloneUser(user)
	u.ID = r.s.nextID()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	r.s.users[u.ID] = u
	return u.ID, nil
}

func (r *memoryUsers) Update(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; !ok {
		return nil
	}
	u := cloneUser(user)
	u.UpdatedAt = time.Now()
	r.s.users[u.ID] = u
	return nil
}

func (r *memoryUsers) Remove(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.users, id)
	return nil
}

type memoryClients struct{ s *memoryStore }

func (r *memoryClients) GetByID(ctx context.Context, id int64) (*models.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.clients[id]
	if !ok {
		return nil, nil
	}
	return c.Clone(), nil
}

func (r *memoryClients) List(ctx context.Context, status models.ClientStatus) ([]*models.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var clients []*models.Client
	for _, c := range r.s.clients {
		if status == "" || c.Status == status {
			clients = append(clients, c.Clone())
		}
	}
	slices.SortFunc(clients, func(a, b *models.Client) int { return compareID(a.ID, b.ID) })
	return clients, nil
}

func (r *memoryClients) Create(ctx context.Context, client *models.Client) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := client.Clone()
	c.ID = r.s.nextID()
	if c.Status == "" {
		c.Status = models.ClientStatusActive
	}
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	r.s.clients[c.ID] = c
	return c.ID, nil
}

func (r *memoryClients) Update(ctx context.Context, client *models.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.clients[client.ID]; !ok {
		return nil
	}
	c := client.Clone()
	c.UpdatedAt = time.Now()
	r.s.clients[c.ID] = c
	return nil
}

func (r *memoryClients) SaveCadence(ctx context.Context, client *models.Client, posts []*models.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	pr := &memoryPosts{r.s}
	for _, post := range posts {
		if err := pr.check(post); err != nil {
			return err
		}
	}
	now := time.Now()
	if _, ok := r.s.clients[client.ID]; ok {
		c := client.Clone()
		c.UpdatedAt = now
		r.s.clients[c.ID] = c
	}
	for _, post := range posts {
		pr.put(post, now)
		post.Version++
	}
	return nil
}

// Remove leaves the client's posts and requests orphaned.
func (r *memoryClients) Remove(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.clients, id)
	for _, u := range r.s.users {
		if u.AssignedClientID != nil && *u.AssignedClientID == id {
			u.AssignedClientID = nil
		}
	}
	return nil
}

type memoryPosts struct{ s *memoryStore }

func (r *memoryPosts) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[id]
	if !ok {
		return nil, nil
	}
	return p.Clone(), nil
}

func (r *memoryPosts) Create(ctx context.Context, post *models.Post) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p := post.Clone()
	p.ID = r.s.nextID()
	p.Version = 1
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	r.s.posts[p.ID] = p
	return p.ID, nil
}

func (r *memoryPosts) ListByClient(ctx context.Context, clientID int64, statuses ...models.PostStatus) ([]*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var posts []*models.Post
	for _, p := range r.s.posts {
		if p.ClientID != clientID {
			continue
		}
		if len(statuses) > 0 && !slices.Contains(statuses, p.Status) {
			continue
		}
		posts = append(posts, p.Clone())
	}
	slices.SortFunc(posts, func(a, b *models.Post) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return compareID(a.ID, b.ID)
	})
	return posts, nil
}

// check must be called with the mutex held.
func (r *memoryPosts) check(post *models.Post) error {
	cur, ok := r.s.posts[post.ID]
	if !ok || cur.Version != post.Version {
		return fmt.Errorf("post %d at version %d: %w", post.ID, post.Version, models.ErrVersionConflict)
	}
	return nil
}

// put must be called with the mutex held and after check.
func (r *memoryPosts) put(post *models.Post, now time.Time) {
	cur := r.s.posts[post.ID]
	p := post.Clone()
	p.ClientID = cur.ClientID
	p.CreatedBy = cur.CreatedBy
	p.CreatedAt = cur.CreatedAt
	p.Version = cur.Version + 1
	p.UpdatedAt = now
	r.s.posts[p.ID] = p
}

func (r *memoryPosts) Save(ctx context.Context, post *models.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.check(post); err != nil {
		return err
	}
	r.put(post, time.Now())
	post.Version++
	return nil
}

func (r *memoryPosts) SaveBatch(ctx context.Context, posts []*models.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, post := range posts {
		if err := r.check(post); err != nil {
			return err
		}
	}
	now := time.Now()
	for _, post := range posts {
		r.put(post, now)
		post.Version++
	}
	return nil
}

func (r *memoryPosts) Remove(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.posts, id)
	r.s.comments = slices.DeleteFunc(r.s.comments, func(c *models.Comment) bool { return c.PostID == id })
	for _, cr := range r.s.requests {
		if cr.PostID != nil && *cr.PostID == id {
			cr.PostID = nil
		}
	}
	return nil
}

type memoryHistory struct{ s *memoryStore }

func (r *memoryHistory) Create(ctx context.Context, ph *models.PostHistory) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *ph
	cp.ID = r.s.nextID()
	cp.CreatedAt = time.Now()
	r.s.history = append(r.s.history, &cp)
	return cp.ID, nil
}

func (r *memoryHistory) ListByPost(ctx context.Context, postID int64) ([]*models.PostHistory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var entries []*models.PostHistory
	for _, ph := range r.s.history {
		if ph.PostID == postID {
			cp := *ph
			entries = append(entries, &cp)
		}
	}
	return entries, nil
}

type memoryRequests struct{ s *memoryStore }

func cloneRequest(cr *models.ContentRequest) *models.ContentRequest {
	cp := *cr
	if cr.PostID != nil {
		id := *cr.PostID
		cp.PostID = &id
	}
	if cr.RespondedAt != nil {
		t := *cr.RespondedAt
		cp.RespondedAt = &t
	}
	return &cp
}

func (r *memoryRequests) GetByID(ctx context.Context, id int64) (*models.ContentRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cr, ok := r.s.requests[id]
	if !ok {
		return nil, nil
	}
	return cloneRequest(cr), nil
}

func (r *memoryRequests) Create(ctx context.Context, cr *models.ContentRequest) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := cloneRequest(cr)
	c.ID = r.s.nextID()
	c.CreatedAt = time.Now()
	r.s.requests[c.ID] = c
	return c.ID, nil
}

func (r *memoryRequests) ListByClient(ctx context.Context, clientID int64, status models.ContentRequestStatus) ([]*models.ContentRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var requests []*models.ContentRequest
	for _, cr := range r.s.requests {
		if cr.ClientID == clientID && (status == "" || cr.Status == status) {
			requests = append(requests, cloneRequest(cr))
		}
	}
	slices.SortFunc(requests, func(a, b *models.ContentRequest) int { return compareID(a.ID, b.ID) })
	return requests, nil
}

func (r *memoryRequests) Respond(ctx context.Context, cr *models.ContentRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.requests[cr.ID]
	if !ok || cur.Status != models.ContentRequestPending {
		return fmt.Errorf("content request %d is not pending: %w", cr.ID, models.ErrVersionConflict)
	}
	next := cloneRequest(cur)
	next.Status = cr.Status
	next.PostID = cr.PostID
	next.RespondedAt = cr.RespondedAt
	r.s.requests[cr.ID] = cloneRequest(next)
	return nil
}

type memoryComments struct{ s *memoryStore }

func (r *memoryComments) Create(ctx context.Context, comment *models.Comment) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *comment
	cp.ID = r.s.nextID()
	cp.CreatedAt = time.Now()
	r.s.comments = append(r.s.comments, &cp)
	return cp.ID, nil
}

func (r *memoryComments) ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var comments []*models.Comment
	for _, c := range r.s.comments {
		if c.PostID == postID {
			cp := *c
			comments = append(comments, &cp)
		}
	}
	return comments, nil
}

func compareID(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
