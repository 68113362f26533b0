package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	httptransport "github.com/spec-kit/suggestion-service/internal/api/http"
	"github.com/spec-kit/suggestion-service/internal/api/http/handlers"
	"github.com/spec-kit/suggestion-service/internal/auth"
	"github.com/spec-kit/suggestion-service/internal/config"
	"github.com/spec-kit/suggestion-service/internal/domain"
	"github.com/spec-kit/suggestion-service/internal/events"
	"github.com/spec-kit/suggestion-service/internal/observability"
	"github.com/spec-kit/suggestion-service/internal/persistence"
	"github.com/spec-kit/suggestion-service/internal/service"
	"github.com/spec-kit/suggestion-service/internal/worker"
)

// In-memory repositories backing the full HTTP stack for endpoint tests.

type memUserRepo struct {
	mu    sync.Mutex
	seq   int64
	users map[int64]domain.User
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	user.ID = r.seq
	r.users[user.ID] = *user
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		out := u
		return &out, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			out := u
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type memSuggestionRepo struct {
	mu          sync.Mutex
	seq         int64
	suggestions map[int64]domain.Suggestion
	votes       *memVoteRepo
}

func (r *memSuggestionRepo) Create(_ context.Context, s *domain.Suggestion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	s.ID = r.seq
	r.suggestions[s.ID] = *s
	return nil
}

func (r *memSuggestionRepo) GetByID(_ context.Context, id int64) (*domain.Suggestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.suggestions[id]; ok {
		out := s
		return &out, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *memSuggestionRepo) List(_ context.Context, limit, offset int) ([]domain.Suggestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []domain.Suggestion
	for id := int64(1); id <= r.seq; id++ {
		if s, ok := r.suggestions[id]; ok {
			all = append(all, s)
		}
	}
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *memSuggestionRepo) ListByAuthor(ctx context.Context, userID int64, limit, offset int) ([]domain.Suggestion, error) {
	all, err := r.List(ctx, 0, 0)
	if err != nil {
		return nil, err
	}
	var result []domain.Suggestion
	for _, s := range all {
		if s.UserID == userID {
			result = append(result, s)
		}
	}
	if offset >= len(result) {
		return nil, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(result) {
		end = len(result)
	}
	return result[offset:end], nil
}

func (r *memSuggestionRepo) CountAll(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.suggestions)), nil
}

func (r *memSuggestionRepo) CountByAuthor(_ context.Context, userID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total int64
	for _, s := range r.suggestions {
		if s.UserID == userID {
			total++
		}
	}
	return total, nil
}

func (r *memSuggestionRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.suggestions[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.suggestions, id)
	r.votes.removeEdgesFor(id)
	return nil
}

type votePair struct{ userID, suggestionID int64 }

type memVoteRepo struct {
	mu       sync.Mutex
	likes    map[votePair]bool
	dislikes map[votePair]bool
}

func (r *memVoteRepo) state(p votePair) domain.VoteState {
	if r.likes[p] {
		return domain.VoteStateLiked
	}
	if r.dislikes[p] {
		return domain.VoteStateDisliked
	}
	return domain.VoteStateNone
}

func (r *memVoteRepo) Toggle(_ context.Context, userID, suggestionID int64, kind domain.VoteKind) (domain.VoteSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := votePair{userID: userID, suggestionID: suggestionID}
	newState, ops := r.state(p).Toggle(kind)
	for _, op := range ops {
		set := r.likes
		if op.Kind == domain.VoteKindDislike {
			set = r.dislikes
		}
		if op.Add {
			set[p] = true
		} else {
			delete(set, p)
		}
	}
	return r.summarize(suggestionID, newState), nil
}

func (r *memVoteRepo) Summary(_ context.Context, suggestionID int64, viewerID *int64) (domain.VoteSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state := domain.VoteStateNone
	if viewerID != nil {
		state = r.state(votePair{userID: *viewerID, suggestionID: suggestionID})
	}
	return r.summarize(suggestionID, state), nil
}

func (r *memVoteRepo) summarize(suggestionID int64, state domain.VoteState) domain.VoteSummary {
	var likes, dislikes int64
	for p := range r.likes {
		if p.suggestionID == suggestionID {
			likes++
		}
	}
	for p := range r.dislikes {
		if p.suggestionID == suggestionID {
			dislikes++
		}
	}
	return domain.VoteSummary{
		LikesCount:    likes,
		DislikesCount: dislikes,
		Liked:         state.Liked(),
		Disliked:      state.Disliked(),
	}
}

func (r *memVoteRepo) removeEdgesFor(suggestionID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for p := range r.likes {
		if p.suggestionID == suggestionID {
			delete(r.likes, p)
		}
	}
	for p := range r.dislikes {
		if p.suggestionID == suggestionID {
			delete(r.dislikes, p)
		}
	}
}

func newTestApp(t *testing.T) (*fiber.App, *observability.Metrics) {
	t.Helper()

	cfg := config.Config{
		App: config.AppConfig{Name: "suggestion-service", Version: "test"},
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 30,
			BcryptCost:            bcrypt.MinCost,
			CookieName:            "token",
			LoginWindowSeconds:    60,
			LoginMaxAttempts:      1000,
		},
	}

	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	votes := &memVoteRepo{likes: make(map[votePair]bool), dislikes: make(map[votePair]bool)}
	suggestions := &memSuggestionRepo{suggestions: make(map[int64]domain.Suggestion), votes: votes}
	users := &memUserRepo{users: make(map[int64]domain.User)}

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartActivityWorker(dispatcher, service.NewActivityService(nil, logger), logger)

	authService := service.NewAuthService(cfg, users, dispatcher)
	suggestionService := service.NewSuggestionService(suggestions, votes, dispatcher)
	votingService := service.NewVotingService(suggestions, votes, dispatcher)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, &persistence.Postgres{}, &persistence.Redis{}),
		Auth:           handlers.NewAuthHandler(authService, auth.NewLoginLimiter(time.Minute, 1000), cfg.Auth),
		Users:          handlers.NewUsersHandler(),
		Suggestions:    handlers.NewSuggestionsHandler(suggestionService, votingService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), users),
	})
	return app, metrics
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()

	var parsed map[string]any
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &parsed)
	}
	return resp, parsed
}

func registerAndLogin(t *testing.T, app *fiber.App, username, email string) string {
	t.Helper()

	resp, _ := doJSON(t, app, http.MethodPost, "/auth/register", "", map[string]string{
		"username": username,
		"email":    email,
		"full_name": username,
		"password": "s3cret",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodPost, "/auth/login", "", map[string]string{
		"username": username,
		"password": "s3cret",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := body["access_token"].(string)
	require.NotEmpty(t, token)
	assert.Equal(t, "bearer", body["token_type"])
	return token
}

func TestVotingScenario(t *testing.T) {
	app, _ := newTestApp(t)

	tokenA := registerAndLogin(t, app, "alice", "alice@example.com")
	tokenB := registerAndLogin(t, app, "bob", "bob@example.com")

	resp, created := doJSON(t, app, http.MethodPost, "/suggestions/", tokenA, map[string]string{
		"title":       "Add dark mode",
		"description": "please",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "alice", created["user_name"])
	assert.EqualValues(t, 0, created["likes_count"])
	assert.EqualValues(t, 0, created["dislikes_count"])
	id := int64(created["id"].(float64))

	likePath := fmt.Sprintf("/suggestions/%d/like", id)
	resp, body := doJSON(t, app, http.MethodPost, likePath, tokenB, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["likes_count"])
	assert.EqualValues(t, 0, body["dislikes_count"])
	assert.Equal(t, true, body["user_has_liked"])

	dislikePath := fmt.Sprintf("/suggestions/%d/dislike", id)
	resp, body = doJSON(t, app, http.MethodPost, dislikePath, tokenB, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 0, body["likes_count"])
	assert.EqualValues(t, 1, body["dislikes_count"])
	assert.Equal(t, false, body["user_has_liked"])
	assert.Equal(t, true, body["user_has_disliked"])

	// Anonymous public read: counts preserved, flags always false.
	resp, body = doJSON(t, app, http.MethodGet, fmt.Sprintf("/suggestions/public/%d", id), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["dislikes_count"])
	assert.Equal(t, false, body["user_has_liked"])
	assert.Equal(t, false, body["user_has_disliked"])

	// Authenticated list carries the viewer's flags and the total.
	resp, body = doJSON(t, app, http.MethodGet, "/suggestions/", tokenB, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["total"])
	items := body["suggestions"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, true, items[0].(map[string]any)["user_has_disliked"])
}

func TestDeleteOnlyByAuthor(t *testing.T) {
	app, _ := newTestApp(t)

	tokenA := registerAndLogin(t, app, "alice", "alice@example.com")
	tokenB := registerAndLogin(t, app, "bob", "bob@example.com")

	resp, created := doJSON(t, app, http.MethodPost, "/suggestions/", tokenA, map[string]string{
		"title": "t", "description": "d",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := int64(created["id"].(float64))

	_, _ = doJSON(t, app, http.MethodPost, fmt.Sprintf("/suggestions/%d/like", id), tokenB, nil)

	// Non-author delete is indistinguishable from a missing suggestion.
	resp, _ = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/suggestions/%d", id), tokenB, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/suggestions/%d", id), tokenA, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, fmt.Sprintf("/suggestions/public/%d", id), "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLoginFailuresDoNotRevealAccounts(t *testing.T) {
	app, _ := newTestApp(t)
	_ = registerAndLogin(t, app, "alice", "alice@example.com")

	resp, wrongPass := doJSON(t, app, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "alice", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, unknown := doJSON(t, app, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "nobody", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, wrongPass["error"], unknown["error"])
}

func TestRegisterDuplicateUsername(t *testing.T) {
	app, _ := newTestApp(t)
	_ = registerAndLogin(t, app, "alice", "alice@example.com")

	resp, body := doJSON(t, app, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "alice", "email": "other@example.com", "password": "s3cret",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "CONFLICT", errObj["code"])
}

func TestAuthRequiredForMutations(t *testing.T) {
	app, _ := newTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/suggestions/", "", map[string]string{
		"title": "t", "description": "d",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/suggestions/1/like", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestVoteOnMissingSuggestion(t *testing.T) {
	app, _ := newTestApp(t)
	token := registerAndLogin(t, app, "alice", "alice@example.com")

	resp, _ := doJSON(t, app, http.MethodPost, "/suggestions/99/like", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCookieAuthFallback(t *testing.T) {
	app, _ := newTestApp(t)
	token := registerAndLogin(t, app, "alice", "alice@example.com")

	// No Authorization header; the token cookie alone authenticates.
	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "alice", body["username"])
}

func TestInvalidHeaderDoesNotFallBackToCookie(t *testing.T) {
	app, _ := newTestApp(t)
	token := registerAndLogin(t, app, "alice", "alice@example.com")

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-valid-token")
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestErrorStatusRecordedInMetrics(t *testing.T) {
	app, metrics := newTestApp(t)

	resp, _ := doJSON(t, app, http.MethodGet, "/suggestions/public/424242", "", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	// The logger wraps error handling, so the counted status is the mapped
	// 404, not the pre-rewrite 200.
	assert.EqualValues(t, 1, metrics.Requests("/suggestions/public/424242", http.MethodGet, http.StatusNotFound))
	assert.Zero(t, metrics.Requests("/suggestions/public/424242", http.MethodGet, http.StatusOK))
	assert.EqualValues(t, 1, metrics.Errors("/suggestions/public/424242", http.MethodGet, "NOT_FOUND"))
}

func TestListByUserTotalWithLimit(t *testing.T) {
	app, _ := newTestApp(t)
	token := registerAndLogin(t, app, "alice", "alice@example.com")

	for i := 0; i < 3; i++ {
		resp, _ := doJSON(t, app, http.MethodPost, "/suggestions/", token, map[string]string{
			"title": "t", "description": "d",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, body := doJSON(t, app, http.MethodGet, "/suggestions/user/1?limit=2", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["suggestions"].([]any), 2)
	assert.EqualValues(t, 3, body["total"])
}

func TestLoginSetsAndLogoutClearsCookie(t *testing.T) {
	app, _ := newTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "alice", "email": "alice@example.com", "password": "s3cret",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte(`{"username":"alice","password":"s3cret"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var loginCookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "token" {
			loginCookie = c
		}
	}
	require.NotNil(t, loginCookie)
	assert.NotEmpty(t, loginCookie.Value)
	assert.True(t, loginCookie.HttpOnly)

	resp, _ = doJSON(t, app, http.MethodPost, "/auth/logout", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	for _, c := range resp.Cookies() {
		if c.Name == "token" {
			assert.Empty(t, c.Value)
		}
	}
}
