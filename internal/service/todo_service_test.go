package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/digitalrehman/secure-todo-flow/internal/domain"
	"github.com/digitalrehman/secure-todo-flow/internal/repository"
)

type memoryTodoRepo struct {
	mu    sync.Mutex
	todos map[string]domain.Todo
	seq   int
}

var _ repository.TodoRepository = (*memoryTodoRepo)(nil)

func newMemoryTodoRepo() *memoryTodoRepo {
	return &memoryTodoRepo{todos: make(map[string]domain.Todo)}
}

func (r *memoryTodoRepo) Create(_ context.Context, todo domain.Todo) (domain.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Monotonic timestamps keep createdAt ordering deterministic.
	r.seq++
	todo.CreatedAt = time.Now().Add(time.Duration(r.seq) * time.Millisecond)
	todo.UpdatedAt = todo.CreatedAt
	r.todos[todo.ID] = todo
	return todo, nil
}

func (r *memoryTodoRepo) GetByID(_ context.Context, id string) (domain.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	todo, ok := r.todos[id]
	if !ok {
		return domain.Todo{}, domain.ErrTodoNotFound
	}
	return todo, nil
}

func (r *memoryTodoRepo) ListByOwner(_ context.Context, ownerID string) ([]domain.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Todo
	for _, todo := range r.todos {
		if todo.OwnerID == ownerID {
			out = append(out, todo)
		}
	}
	return out, nil
}

func (r *memoryTodoRepo) Update(_ context.Context, todo domain.Todo) (domain.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.todos[todo.ID]
	if !ok {
		return domain.Todo{}, domain.ErrTodoNotFound
	}
	todo.OwnerID = existing.OwnerID
	todo.CreatedAt = existing.CreatedAt
	todo.UpdatedAt = time.Now()
	r.todos[todo.ID] = todo
	return todo, nil
}

func (r *memoryTodoRepo) Toggle(_ context.Context, id string) (domain.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	todo, ok := r.todos[id]
	if !ok {
		return domain.Todo{}, domain.ErrTodoNotFound
	}
	todo.Completed = !todo.Completed
	todo.UpdatedAt = time.Now()
	r.todos[id] = todo
	return todo, nil
}

func (r *memoryTodoRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.todos[id]; !ok {
		return domain.ErrTodoNotFound
	}
	delete(r.todos, id)
	return nil
}

func newTodoFixture() (*TodoService, *memoryTodoRepo) {
	repo := newMemoryTodoRepo()
	return NewTodoService(repo, zap.NewNop()), repo
}

func TestTodoCreateDefaults(t *testing.T) {
	svc, _ := newTodoFixture()
	ctx := context.Background()

	todo, err := svc.Create(ctx, "owner-1", CreateTodoInput{Title: "  buy milk  "})
	require.NoError(t, err)
	require.Equal(t, "buy milk", todo.Title)
	require.Equal(t, "medium", todo.Priority)
	require.False(t, todo.Completed)
	require.Equal(t, "owner-1", todo.User)
}

func TestTodoCreateValidation(t *testing.T) {
	svc, _ := newTodoFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, "owner-1", CreateTodoInput{Title: "   "})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Create(ctx, "owner-1", CreateTodoInput{Title: "x", Priority: "urgent"})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestTodoOwnershipChecks(t *testing.T) {
	svc, _ := newTodoFixture()
	ctx := context.Background()

	todo, err := svc.Create(ctx, "owner-1", CreateTodoInput{Title: "mine"})
	require.NoError(t, err)

	// A missing id reports not-found to any caller, owner or not.
	_, err = svc.Get(ctx, "owner-1", "no-such-id")
	require.ErrorIs(t, err, domain.ErrTodoNotFound)
	_, err = svc.Get(ctx, "owner-2", "no-such-id")
	require.ErrorIs(t, err, domain.ErrTodoNotFound)

	// An existing todo owned by someone else is forbidden.
	_, err = svc.Get(ctx, "owner-2", todo.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)
	_, err = svc.Update(ctx, "owner-2", todo.ID, UpdateTodoInput{})
	require.ErrorIs(t, err, domain.ErrForbidden)
	_, err = svc.Toggle(ctx, "owner-2", todo.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)
	err = svc.Delete(ctx, "owner-2", todo.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)

	got, err := svc.Get(ctx, "owner-1", todo.ID)
	require.NoError(t, err)
	require.Equal(t, todo.ID, got.ID)
}

func TestTodoUpdatePartial(t *testing.T) {
	svc, _ := newTodoFixture()
	ctx := context.Background()

	due := time.Now().Add(24 * time.Hour)
	todo, err := svc.Create(ctx, "owner-1", CreateTodoInput{
		Title:       "original",
		Description: "desc",
		Priority:    "low",
		DueDate:     &due,
	})
	require.NoError(t, err)

	newTitle := "renamed"
	updated, err := svc.Update(ctx, "owner-1", todo.ID, UpdateTodoInput{Title: &newTitle})
	require.NoError(t, err)
	require.Equal(t, "renamed", updated.Title)
	require.Equal(t, "desc", updated.Description)
	require.Equal(t, "low", updated.Priority)
	require.NotNil(t, updated.DueDate)

	// A blank title keeps the old value instead of clearing it.
	blank := "   "
	updated, err = svc.Update(ctx, "owner-1", todo.ID, UpdateTodoInput{Title: &blank})
	require.NoError(t, err)
	require.Equal(t, "renamed", updated.Title)

	bad := "urgent"
	_, err = svc.Update(ctx, "owner-1", todo.ID, UpdateTodoInput{Priority: &bad})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestTodoToggle(t *testing.T) {
	svc, _ := newTodoFixture()
	ctx := context.Background()

	todo, err := svc.Create(ctx, "owner-1", CreateTodoInput{Title: "flip me"})
	require.NoError(t, err)

	toggled, err := svc.Toggle(ctx, "owner-1", todo.ID)
	require.NoError(t, err)
	require.True(t, toggled.Completed)

	toggled, err = svc.Toggle(ctx, "owner-1", todo.ID)
	require.NoError(t, err)
	require.False(t, toggled.Completed)
}

func TestTodoDelete(t *testing.T) {
	svc, _ := newTodoFixture()
	ctx := context.Background()

	todo, err := svc.Create(ctx, "owner-1", CreateTodoInput{Title: "gone soon"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "owner-1", todo.ID))

	_, err = svc.Get(ctx, "owner-1", todo.ID)
	require.ErrorIs(t, err, domain.ErrTodoNotFound)
}

func TestTodoListFilterAndSort(t *testing.T) {
	svc, _ := newTodoFixture()
	ctx := context.Background()

	high, err := svc.Create(ctx, "owner-1", CreateTodoInput{Title: "high", Priority: "high"})
	require.NoError(t, err)
	low, err := svc.Create(ctx, "owner-1", CreateTodoInput{Title: "low", Priority: "low"})
	require.NoError(t, err)
	medium, err := svc.Create(ctx, "owner-1", CreateTodoInput{Title: "medium"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "owner-2", CreateTodoInput{Title: "not mine"})
	require.NoError(t, err)

	_, err = svc.Toggle(ctx, "owner-1", low.ID)
	require.NoError(t, err)

	active, err := svc.List(ctx, "owner-1", domain.FilterActive, domain.SortPriority)
	require.NoError(t, err)
	require.Len(t, active, 2)
	require.Equal(t, high.ID, active[0].ID)
	require.Equal(t, medium.ID, active[1].ID)

	completed, err := svc.List(ctx, "owner-1", domain.FilterCompleted, domain.SortCreatedAt)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	require.Equal(t, low.ID, completed[0].ID)

	all, err := svc.List(ctx, "owner-1", domain.FilterAll, domain.SortCreatedAt)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, medium.ID, all[0].ID, "newest first")
}
