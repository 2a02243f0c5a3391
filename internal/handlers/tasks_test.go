package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dokbae/voice-todo/internal/database"
	"github.com/dokbae/voice-todo/internal/models"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// fakeTaskRepo is an in-memory TaskRepositoryInterface for handler tests.
type fakeTaskRepo struct {
	tasks    map[uuid.UUID]*models.Task
	order    []uuid.UUID
	failWith error

	lastSkip  int
	lastLimit int
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[uuid.UUID]*models.Task)}
}

func (f *fakeTaskRepo) Create(_ context.Context, task *models.Task) error {
	if f.failWith != nil {
		return f.failWith
	}
	task.CreatedAt = time.Now()
	f.tasks[task.ID] = task
	f.order = append(f.order, task.ID)
	return nil
}

func (f *fakeTaskRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Task, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	task, ok := f.tasks[id]
	if !ok {
		return nil, database.ErrTaskNotFound
	}
	return task, nil
}

func (f *fakeTaskRepo) List(_ context.Context, skip, limit int) ([]*models.Task, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.lastSkip, f.lastLimit = skip, limit
	var out []*models.Task
	for i, id := range f.order {
		if i < skip || len(out) >= limit {
			continue
		}
		out = append(out, f.tasks[id])
	}
	return out, nil
}

func (f *fakeTaskRepo) SetCompleted(_ context.Context, id uuid.UUID, completed bool) error {
	if f.failWith != nil {
		return f.failWith
	}
	task, ok := f.tasks[id]
	if !ok {
		return database.ErrTaskNotFound
	}
	task.IsCompleted = completed
	return nil
}

func (f *fakeTaskRepo) Delete(_ context.Context, id uuid.UUID) error {
	if f.failWith != nil {
		return f.failWith
	}
	if _, ok := f.tasks[id]; !ok {
		return database.ErrTaskNotFound
	}
	delete(f.tasks, id)
	return nil
}

func newTaskRouter(repo database.TaskRepositoryInterface) *mux.Router {
	r := mux.NewRouter()
	NewTaskHandler(repo, zap.NewNop()).RegisterRoutes(r.PathPrefix("/tasks").Subrouter())
	return r
}

func TestCreateTask(t *testing.T) {
	t.Parallel()

	repo := newFakeTaskRepo()
	router := newTaskRouter(repo)

	body := `{"title": "회의", "due_date": "2025-06-11T07:00:00+09:00", "description": "주간 회의"}`
	req := httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body: %s", rec.Code, rec.Body.String())
	}

	var got models.Task
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("response is not a task: %v", err)
	}
	if got.Title != "회의" {
		t.Errorf("Title = %q, want 회의", got.Title)
	}
	if got.DueDate == nil {
		t.Error("DueDate = nil, want the requested due date")
	}
	if got.IsCompleted {
		t.Error("IsCompleted = true for a new task")
	}
	if got.ID == uuid.Nil {
		t.Error("ID was not assigned")
	}
	if len(repo.tasks) != 1 {
		t.Errorf("repo has %d tasks, want 1", len(repo.tasks))
	}
}

func TestCreateTask_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{name: "missing title", body: `{"due_date": null}`},
		{name: "empty title", body: `{"title": ""}`},
		{name: "whitespace title", body: `{"title": "   "}`},
		{name: "not JSON", body: `title=회의`},
		{name: "overlong title", body: `{"title": "` + strings.Repeat("a", MaxTitleLength+1) + `"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := newFakeTaskRepo()
			rec := httptest.NewRecorder()
			newTaskRouter(repo).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(tt.body)))

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400; body: %s", rec.Code, rec.Body.String())
			}
			if len(repo.tasks) != 0 {
				t.Errorf("repo has %d tasks, want 0", len(repo.tasks))
			}
		})
	}
}

func TestListTasks(t *testing.T) {
	t.Parallel()

	repo := newFakeTaskRepo()
	for _, title := range []string{"첫번째", "두번째", "세번째"} {
		task := &models.Task{ID: uuid.New(), Title: title}
		if err := repo.Create(context.Background(), task); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}
	router := newTaskRouter(repo)

	t.Run("defaults", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasks", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var got []*models.Task
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("response is not a task array: %v", err)
		}
		if len(got) != 3 {
			t.Errorf("got %d tasks, want 3", len(got))
		}
		if repo.lastSkip != 0 || repo.lastLimit != DefaultListLimit {
			t.Errorf("repo called with skip=%d limit=%d, want 0/%d", repo.lastSkip, repo.lastLimit, DefaultListLimit)
		}
	})

	t.Run("pagination params", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasks?skip=1&limit=1", nil))

		var got []*models.Task
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("response is not a task array: %v", err)
		}
		if len(got) != 1 || got[0].Title != "두번째" {
			t.Errorf("got %+v, want only the second task", got)
		}
	})

	t.Run("limit is clamped", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasks?limit=99999", nil))

		if repo.lastLimit != MaxListLimit {
			t.Errorf("repo called with limit=%d, want %d", repo.lastLimit, MaxListLimit)
		}
	})

	t.Run("empty store returns empty array", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newTaskRouter(newFakeTaskRepo()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasks", nil))

		if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
			t.Errorf("body = %s, want []", body)
		}
	})
}

func TestUpdateTaskStatus(t *testing.T) {
	t.Parallel()

	repo := newFakeTaskRepo()
	task := &models.Task{ID: uuid.New(), Title: "회의"}
	if err := repo.Create(context.Background(), task); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	router := newTaskRouter(repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/tasks/"+task.ID.String(), strings.NewReader(`{"is_completed": true}`)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	var got models.Task
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("response is not a task: %v", err)
	}
	if !got.IsCompleted {
		t.Error("IsCompleted = false after completion")
	}
	if !repo.tasks[task.ID].IsCompleted {
		t.Error("stored task was not updated")
	}
}

func TestUpdateTaskStatus_Errors(t *testing.T) {
	t.Parallel()

	repo := newFakeTaskRepo()
	task := &models.Task{ID: uuid.New(), Title: "회의"}
	if err := repo.Create(context.Background(), task); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	router := newTaskRouter(repo)

	tests := []struct {
		name   string
		target string
		body   string
		want   int
	}{
		{name: "unknown id", target: "/tasks/" + uuid.NewString(), body: `{"is_completed": true}`, want: http.StatusNotFound},
		{name: "malformed id", target: "/tasks/not-a-uuid", body: `{"is_completed": true}`, want: http.StatusBadRequest},
		{name: "missing flag", target: "/tasks/" + task.ID.String(), body: `{}`, want: http.StatusBadRequest},
		{name: "not JSON", target: "/tasks/" + task.ID.String(), body: `done`, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, tt.target, strings.NewReader(tt.body)))

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d; body: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestDeleteTask(t *testing.T) {
	t.Parallel()

	repo := newFakeTaskRepo()
	task := &models.Task{ID: uuid.New(), Title: "회의"}
	if err := repo.Create(context.Background(), task); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	router := newTaskRouter(repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/tasks/"+task.ID.String(), nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("body = %s, want empty", rec.Body.String())
	}
	if len(repo.tasks) != 0 {
		t.Error("task was not removed from the store")
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/tasks/"+task.ID.String(), nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}
