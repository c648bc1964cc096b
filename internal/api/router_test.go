package api_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/editorial-api/configs"
	"github.com/maheshrc27/editorial-api/internal/api"
	"github.com/maheshrc27/editorial-api/internal/app"
	"github.com/maheshrc27/editorial-api/internal/models"
	"github.com/maheshrc27/editorial-api/internal/policy"
	"github.com/maheshrc27/editorial-api/internal/scheduler"
	"github.com/maheshrc27/editorial-api/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var monday = time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC)

type testServer struct {
	app       *fiber.App
	container *app.Container
	cfg       config.Config
	tokens    map[models.Role]string
	clientID  int64
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	cfg := config.Config{
		StoreDriver:   config.StoreDriverMemory,
		FrontendURL:   "http://localhost:5173",
		SecretKey:     "test-secret",
		CookieName:    "editorial_session",
		TokenDuration: time.Hour,
		LockWait:      time.Second,
		Scheduler:     config.Scheduler{WeekStart: "monday", PublishAt: "10:00", Location: "UTC"},
	}
	c, err := app.Wire(cfg, app.Deps{Now: func() time.Time { return monday }})
	require.NoError(t, err)

	s := &testServer{
		app:       api.NewApp(cfg, c.Services),
		container: c,
		cfg:       cfg,
		tokens:    map[models.Role]string{},
	}

	s.clientID, err = c.Repos.Clients.Create(ctx, &models.Client{Name: "Acme", WeeklyCapacity: 2, StrategyPillars: []string{"education", "promo"}})
	require.NoError(t, err)

	for _, role := range []models.Role{models.RoleAdmin, models.RoleManager, models.RoleCreative, models.RoleClient} {
		u := &models.User{Email: string(role) + "@agency.test", Role: role}
		if role == models.RoleClient {
			other, err := c.Repos.Clients.Create(ctx, &models.Client{Name: "Globex", WeeklyCapacity: 1})
			require.NoError(t, err)
			u.AssignedClientID = &other
		}
		id, err := c.Repos.Users.Create(ctx, u)
		require.NoError(t, err)
		u.ID = id
		s.tokens[role], err = utils.GenerateToken(cfg.SecretKey, u, cfg.TokenDuration)
		require.NoError(t, err)
	}
	return s
}

func (s *testServer) do(t *testing.T, role models.Role, method, path string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if token, ok := s.tokens[role]; ok {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func TestAuthMiddlewareRejectsMissingAndForgedTokens(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(t, "", http.MethodGet, "/api/user/info", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	s.tokens["forged"] = "not.a.token"
	status, _ = s.do(t, "forged", http.MethodGet, "/api/user/info", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, body := s.do(t, models.RoleManager, http.MethodGet, "/api/user/info", nil)
	require.Equal(t, fiber.StatusOK, status, string(body))
	assert.Equal(t, models.RoleManager, decode[models.User](t, body).Role)
}

func TestPostWorkflowOverHTTP(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, models.RoleCreative, http.MethodPost, "/api/posts", map[string]any{
		"client_id": s.clientID,
		"type":      "reel",
		"pillar":    "education",
		"caption":   "five tips",
	})
	require.Equal(t, fiber.StatusCreated, status, string(body))
	post := decode[models.Post](t, body)
	assert.Equal(t, models.PostStatusDraft, post.Status)

	path := "/api/posts/" + itoa(post.ID)

	status, body = s.do(t, models.RoleCreative, http.MethodPost, path+"/transition", map[string]string{"status": "approved"})
	assert.Equal(t, fiber.StatusConflict, status, string(body))

	status, body = s.do(t, models.RoleCreative, http.MethodPost, path+"/transition", map[string]string{"status": "pending_approval"})
	require.Equal(t, fiber.StatusOK, status, string(body))

	status, body = s.do(t, models.RoleCreative, http.MethodPost, path+"/transition", map[string]string{"status": "approved"})
	assert.Equal(t, fiber.StatusForbidden, status, string(body))

	status, body = s.do(t, models.RoleManager, http.MethodPost, path+"/transition", map[string]string{"status": "approved"})
	require.Equal(t, fiber.StatusOK, status, string(body))
	post = decode[models.Post](t, body)
	require.NotNil(t, post.ScheduledAt)
	assert.Equal(t, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), post.ScheduledAt.UTC())

	status, body = s.do(t, models.RoleClient, http.MethodGet, path, nil)
	assert.Equal(t, fiber.StatusForbidden, status, string(body))

	status, body = s.do(t, models.RoleManager, http.MethodGet, path+"/history", nil)
	require.Equal(t, fiber.StatusOK, status, string(body))
	assert.Len(t, decode[[]models.PostHistory](t, body), 2)

	calendar := "/api/clients/" + itoa(s.clientID) + "/calendar?from=2026-03-02&to=2026-03-30"
	status, body = s.do(t, models.RoleManager, http.MethodGet, calendar, nil)
	require.Equal(t, fiber.StatusOK, status, string(body))
	entries := decode[[]scheduler.Entry](t, body)
	require.Len(t, entries, 1)
	assert.Equal(t, post.ID, entries[0].Post.ID)

	status, _ = s.do(t, models.RoleManager, http.MethodGet, "/api/clients/"+itoa(s.clientID)+"/calendar?from=March", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestCadenceUpdateOverHTTP(t *testing.T) {
	s := newTestServer(t)
	path := "/api/clients/" + itoa(s.clientID) + "/cadence"

	status, body := s.do(t, models.RoleManager, http.MethodPut, path, map[string]any{
		"weekly_capacity":  -1,
		"strategy_pillars": []string{"education"},
	})
	assert.Equal(t, fiber.StatusBadRequest, status, string(body))

	status, body = s.do(t, models.RoleManager, http.MethodPut, path, map[string]any{
		"weekly_capacity":  4,
		"strategy_pillars": []string{"education", "promo", "community"},
	})
	require.Equal(t, fiber.StatusOK, status, string(body))
	client := decode[models.Client](t, body)
	assert.Equal(t, 4, client.WeeklyCapacity)

	status, _ = s.do(t, models.RoleClient, http.MethodPost, "/api/clients/"+itoa(s.clientID)+"/queue/recalculate", nil)
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestRemoveClientOverHTTP(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	postID, err := s.container.Repos.Posts.Create(ctx, &models.Post{ClientID: s.clientID, Type: models.PostTypeFeed, Status: models.PostStatusDraft})
	require.NoError(t, err)
	path := "/api/clients/" + itoa(s.clientID)

	status, _ := s.do(t, models.RoleCreative, http.MethodDelete, path, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body := s.do(t, models.RoleAdmin, http.MethodDelete, path, nil)
	require.Equal(t, fiber.StatusNoContent, status, string(body))

	status, _ = s.do(t, models.RoleAdmin, http.MethodGet, path, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	status, _ = s.do(t, models.RoleAdmin, http.MethodDelete, path, nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	post, err := s.container.Repos.Posts.GetByID(ctx, postID)
	require.NoError(t, err)
	require.NotNil(t, post)
	assert.Equal(t, s.clientID, post.ClientID)
}

func TestPolicyRulesAreServed(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, models.RoleCreative, http.MethodGet, "/api/policy/rules", nil)
	require.Equal(t, fiber.StatusOK, status)
	doc := decode[policy.Document](t, body)
	assert.Equal(t, policy.DocumentVersion, doc.Version)
	assert.NotEmpty(t, doc.Rules)
}

func TestIssueTokenIsAdminOnly(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(t, models.RoleManager, http.MethodPost, "/api/auth/token", nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body := s.do(t, models.RoleAdmin, http.MethodPost, "/api/auth/token", nil)
	require.Equal(t, fiber.StatusOK, status, string(body))
	issued := decode[map[string]any](t, body)
	assert.NotEmpty(t, issued["token"])
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
