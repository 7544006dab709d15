package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/digitalrehman/secure-todo-flow/internal/domain"
	"github.com/digitalrehman/secure-todo-flow/internal/repository"
)

// TodoView is the todo payload exposed over HTTP.
type TodoView struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	User        string     `json:"user"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// CreateTodoInput carries a creation request.
type CreateTodoInput struct {
	Title       string
	Description string
	Priority    string
	DueDate     *time.Time
}

// UpdateTodoInput carries a partial update; nil fields keep their old value.
type UpdateTodoInput struct {
	Title       *string
	Description *string
	Completed   *bool
	Priority    *string
	DueDate     *time.Time
}

// TodoService gates every todo operation on ownership. Existence is checked
// before ownership, so a missing id reports not-found to any caller.
type TodoService struct {
	todos  repository.TodoRepository
	logger *zap.Logger
}

func NewTodoService(todos repository.TodoRepository, logger *zap.Logger) *TodoService {
	return &TodoService{todos: todos, logger: logger}
}

// List returns the caller's todos, filtered and sorted per opts.
func (s *TodoService) List(ctx context.Context, userID string, filter domain.Filter, key domain.SortKey) ([]TodoView, error) {
	todos, err := s.todos.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	listed := domain.ApplyListing(todos, filter, key)
	views := make([]TodoView, 0, len(listed))
	for _, t := range listed {
		views = append(views, todoViewOf(t))
	}
	return views, nil
}

// Create stores a new todo owned by the caller.
func (s *TodoService) Create(ctx context.Context, userID string, in CreateTodoInput) (TodoView, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return TodoView{}, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}

	priority := domain.Priority(in.Priority)
	if in.Priority == "" {
		priority = domain.PriorityMedium
	} else if !priority.Valid() {
		return TodoView{}, fmt.Errorf("%w: priority must be low, medium or high", domain.ErrValidation)
	}

	created, err := s.todos.Create(ctx, domain.Todo{
		ID:          uuid.NewString(),
		OwnerID:     userID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Priority:    priority,
		DueDate:     in.DueDate,
	})
	if err != nil {
		return TodoView{}, fmt.Errorf("create todo: %w", err)
	}

	s.logger.Debug("todo created", zap.String("todo_id", created.ID), zap.String("user_id", userID))
	return todoViewOf(created), nil
}

// Get returns a single todo after the ownership check.
func (s *TodoService) Get(ctx context.Context, userID, todoID string) (TodoView, error) {
	todo, err := s.authorize(ctx, userID, todoID)
	if err != nil {
		return TodoView{}, err
	}
	return todoViewOf(todo), nil
}

// Update applies a partial update. Absent fields keep their old values; the
// owner is never touched.
func (s *TodoService) Update(ctx context.Context, userID, todoID string, in UpdateTodoInput) (TodoView, error) {
	todo, err := s.authorize(ctx, userID, todoID)
	if err != nil {
		return TodoView{}, err
	}

	if in.Title != nil && strings.TrimSpace(*in.Title) != "" {
		todo.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		todo.Description = *in.Description
	}
	if in.Completed != nil {
		todo.Completed = *in.Completed
	}
	if in.Priority != nil && *in.Priority != "" {
		priority := domain.Priority(*in.Priority)
		if !priority.Valid() {
			return TodoView{}, fmt.Errorf("%w: priority must be low, medium or high", domain.ErrValidation)
		}
		todo.Priority = priority
	}
	if in.DueDate != nil {
		todo.DueDate = in.DueDate
	}

	updated, err := s.todos.Update(ctx, todo)
	if err != nil {
		return TodoView{}, fmt.Errorf("update todo: %w", err)
	}
	return todoViewOf(updated), nil
}

// Toggle flips the completion flag.
func (s *TodoService) Toggle(ctx context.Context, userID, todoID string) (TodoView, error) {
	if _, err := s.authorize(ctx, userID, todoID); err != nil {
		return TodoView{}, err
	}
	toggled, err := s.todos.Toggle(ctx, todoID)
	if err != nil {
		return TodoView{}, fmt.Errorf("toggle todo: %w", err)
	}
	return todoViewOf(toggled), nil
}

// Delete removes a todo owned by the caller.
func (s *TodoService) Delete(ctx context.Context, userID, todoID string) error {
	if _, err := s.authorize(ctx, userID, todoID); err != nil {
		return err
	}
	if err := s.todos.Delete(ctx, todoID); err != nil && !errors.Is(err, domain.ErrTodoNotFound) {
		return fmt.Errorf("delete todo: %w", err)
	}
	s.logger.Debug("todo deleted", zap.String("todo_id", todoID), zap.String("user_id", userID))
	return nil
}

// authorize fetches the todo first so a nonexistent id yields not-found for
// every caller, then checks ownership. The order is part of the contract.
func (s *TodoService) authorize(ctx context.Context, userID, todoID string) (domain.Todo, error) {
	todo, err := s.todos.GetByID(ctx, todoID)
	if err != nil {
		if errors.Is(err, domain.ErrTodoNotFound) {
			return domain.Todo{}, err
		}
		return domain.Todo{}, fmt.Errorf("get todo: %w", err)
	}
	if todo.OwnerID != userID {
		return domain.Todo{}, domain.ErrForbidden
	}
	return todo, nil
}

func todoViewOf(t domain.Todo) TodoView {
	return TodoView{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		User:        t.OwnerID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
