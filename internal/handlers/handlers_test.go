package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"bloom/internal/handlers"
	"bloom/internal/identity"
	mw "bloom/internal/middleware"
	"bloom/internal/models"
	"bloom/internal/profilestore"
	"bloom/internal/syncer"
)

type memStore struct {
	mu       sync.Mutex
	profiles map[string]*models.UserProfile
}

func newMemStore() *memStore {
	return &memStore{profiles: map[string]*models.UserProfile{}}
}

func (m *memStore) Get(_ context.Context, userID string) (*models.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, profilestore.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) Create(_ context.Context, userID string, profile *models.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	profile.CreatedAt = time.Now().UTC()
	cp := *profile
	m.profiles[userID] = &cp
	return nil
}

func (m *memStore) Update(_ context.Context, _ string, _ map[string]any) error {
	return nil
}

// newEnv starts an authenticated session and returns a router with the
// session id injected the way the auth middleware would.
func newEnv(t *testing.T) (http.Handler, *syncer.Manager) {
	t.Helper()
	store := newMemStore()
	m := syncer.NewManager(store, nil, zap.NewNop(), time.Hour)
	sid := m.StartSession(&identity.Principal{ID: "u-1", Email: "maya@example.com", DisplayName: "Maya"})

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), mw.UserIDKey, "u-1")
			ctx = context.WithValue(ctx, mw.SessionIDKey, sid)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	state := handlers.NewStateHandler(m)
	tasks := handlers.NewTasksHandler(m)
	goals := handlers.NewGoalsHandler(m)
	health := handlers.NewHealthHandler(m)
	r.Get("/state", state.Get)
	r.Put("/state/{slot}", state.UpdateSlot)
	r.Post("/tasks", tasks.Create)
	r.Patch("/tasks/{id}/toggle", tasks.Toggle)
	r.Post("/goals", goals.Create)
	r.Post("/health", health.LogMetric)
	return r, m
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestGetStateSnapshot(t *testing.T) {
	h, _ := newEnv(t)

	rr := do(t, h, http.MethodGet, "/state", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var snap syncer.Snapshot
	if err := json.Unmarshal(rr.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.Status != syncer.StatusAuthenticated {
		t.Fatalf("expected authenticated snapshot, got %s", snap.Status)
	}
	if snap.Profile.CompanionName != models.DefaultCompanionName {
		t.Fatalf("bootstrap profile missing companion default: %q", snap.Profile.CompanionName)
	}
}

func TestUpdateSlotReplacesValue(t *testing.T) {
	h, _ := newEnv(t)

	rr := do(t, h, http.MethodPut, "/state/tasks",
		`[{"id":"t-1","text":"buy flowers","completed":false,"priority":"low"}]`)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = do(t, h, http.MethodGet, "/state", "")
	var snap syncer.Snapshot
	if err := json.Unmarshal(rr.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(snap.Profile.Tasks) != 1 || snap.Profile.Tasks[0].Text != "buy flowers" {
		t.Fatalf("slot not replaced: %+v", snap.Profile.Tasks)
	}
}

func TestUpdateUnknownSlot(t *testing.T) {
	h, _ := newEnv(t)
	rr := do(t, h, http.MethodPut, "/state/unknown", `{}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestTaskLifecycle(t *testing.T) {
	h, _ := newEnv(t)

	rr := do(t, h, http.MethodPost, "/tasks", `{"text":"call mom","priority":"high"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var task models.Task
	if err := json.Unmarshal(rr.Body.Bytes(), &task); err != nil {
		t.Fatalf("decode task: %v", err)
	}
	if task.ID == "" || task.Priority != models.PriorityHigh {
		t.Fatalf("unexpected task: %+v", task)
	}

	rr = do(t, h, http.MethodPatch, "/tasks/"+task.ID+"/toggle", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("toggle: expected 204, got %d", rr.Code)
	}
	rr = do(t, h, http.MethodPatch, "/tasks/nope/toggle", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("toggle missing: expected 404, got %d", rr.Code)
	}
}

func TestInvalidGoalCategoryRejected(t *testing.T) {
	h, _ := newEnv(t)
	rr := do(t, h, http.MethodPost, "/goals", `{"title":"x","category":"wish"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestHealthMetricValidation(t *testing.T) {
	h, _ := newEnv(t)

	rr := do(t, h, http.MethodPost, "/health", `{"date":"2025-03-01","mood":4,"energy":3}`)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rr.Code, rr.Body.String())
	}
	rr = do(t, h, http.MethodPost, "/health", `{"date":"03/01/2025","mood":4,"energy":3}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date, got %d", rr.Code)
	}
}

func TestExpiredSessionIs401(t *testing.T) {
	h, m := newEnv(t)

	// end every session behind the router's back
	m.Shutdown()

	rr := do(t, h, http.MethodGet, "/state", "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after session ended, got %d", rr.Code)
	}
}
