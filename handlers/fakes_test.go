package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"devconnector/auth"
	"devconnector/config"
	"devconnector/database"
	"devconnector/github"
	"devconnector/handlers"
	"devconnector/models"
	"devconnector/profile"
	"devconnector/routes"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeUsers struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return database.ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	f.users[u.ID] = *u
	return nil
}

func (f *fakeUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &u, nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f *fakeUsers) FindSummaries(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.UserSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[primitive.ObjectID]*models.UserSummary, len(ids))
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out[id] = u.Summary()
		}
	}
	return out, nil
}

func (f *fakeUsers) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
	return nil
}

type fakeProfiles struct {
	mu       sync.Mutex
	profiles map[primitive.ObjectID]models.Profile
}

func (f *fakeProfiles) FindByUser(_ context.Context, userID primitive.ObjectID) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &p, nil
}

func (f *fakeProfiles) List(context.Context) ([]models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Profile{}
	for _, p := range f.profiles {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProfiles) Upsert(_ context.Context, userID primitive.ObjectID, fields profile.Fields) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if ok {
		fields.ApplyTo(&p)
	} else {
		p = *fields.New(userID, time.Now())
		p.ID = primitive.NewObjectID()
	}
	f.profiles[userID] = p
	return &p, nil
}

func (f *fakeProfiles) Save(_ context.Context, p *models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.profiles[p.User]
	if !ok || existing.ID != p.ID {
		return database.ErrNotFound
	}
	f.profiles[p.User] = *p
	return nil
}

func (f *fakeProfiles) DeleteByUser(_ context.Context, userID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.profiles, userID)
	return nil
}

type fakePosts struct {
	mu    sync.Mutex
	posts map[primitive.ObjectID]models.Post
}

func (f *fakePosts) Create(_ context.Context, p *models.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = primitive.NewObjectID()
	f.posts[p.ID] = *p
	return nil
}

func (f *fakePosts) FindByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &p, nil
}

func (f *fakePosts) List(context.Context) ([]models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Post{}
	for _, p := range f.posts {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (f *fakePosts) Save(_ context.Context, p *models.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.posts[p.ID]; !ok {
		return database.ErrNotFound
	}
	f.posts[p.ID] = *p
	return nil
}

func (f *fakePosts) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.posts[id]; !ok {
		return database.ErrNotFound
	}
	delete(f.posts, id)
	return nil
}

func (f *fakePosts) DeleteByUser(_ context.Context, userID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, p := range f.posts {
		if p.User == userID {
			delete(f.posts, id)
		}
	}
	return nil
}

type fakeRepos struct {
	repos []github.Repo
	err   error
}

func (f *fakeRepos) Repos(context.Context, string) ([]github.Repo, error) {
	return f.repos, f.err
}

type fakePinger struct{}

func (fakePinger) Ping(context.Context) error { return nil }

type testServer struct {
	router   *gin.Engine
	users    *fakeUsers
	profiles *fakeProfiles
	posts    *fakePosts
	repos    *fakeRepos
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	s := &testServer{
		users:    &fakeUsers{users: map[primitive.ObjectID]models.User{}},
		profiles: &fakeProfiles{profiles: map[primitive.ObjectID]models.Profile{}},
		posts:    &fakePosts{posts: map[primitive.ObjectID]models.Post{}},
		repos:    &fakeRepos{},
	}
	tokens := auth.NewTokens(config.JWTConfig{Secret: "test-secret", Expiry: time.Hour})
	h := handlers.New(s.users, s.profiles, s.posts, tokens, s.repos, zap.NewNop())
	s.router = routes.SetupRouter(h, tokens, fakePinger{}, zap.NewNop())
	return s
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// register signs a user up and returns its token and id.
func (s *testServer) register(t *testing.T, name, email string) (string, string) {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/api/users", "", map[string]string{
		"name": name, "email": email, "password": "secret123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("register %s: status %d body %s", email, rec.Code, rec.Body.String())
	}
	var out struct {
		Token string `json:"token"`
	}
	decode(t, rec, &out)

	me := s.do(t, http.MethodGet, "/api/auth", out.Token, nil)
	var user struct {
		ID string `json:"id"`
	}
	decode(t, me, &user)
	return out.Token, user.ID
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
}

type errorBody struct {
	Errors []struct {
		Msg   string `json:"msg"`
		Param string `json:"param"`
	} `json:"errors"`
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, msg string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, status, rec.Body.String())
	}
	var body errorBody
	decode(t, rec, &body)
	for _, e := range body.Errors {
		if e.Msg == msg {
			return
		}
	}
	t.Errorf("errors = %+v, want one with msg %q", body.Errors, msg)
}
