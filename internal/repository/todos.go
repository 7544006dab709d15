package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/digitalrehman/secure-todo-flow/internal/domain"
)

// PostgresTodoRepo implements TodoRepository on a pgx pool.
type PostgresTodoRepo struct {
	db *pgxpool.Pool
}

func NewPostgresTodoRepo(db *pgxpool.Pool) *PostgresTodoRepo {
	return &PostgresTodoRepo{db: db}
}

const todoColumns = `id, owner_id, title, description, completed, priority, due_date, created_at, updated_at`

func (r *PostgresTodoRepo) Create(ctx context.Context, todo domain.Todo) (domain.Todo, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO todos (id, owner_id, title, description, priority, due_date)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+todoColumns,
		todo.ID, todo.OwnerID, todo.Title, todo.Description, string(todo.Priority), todo.DueDate,
	)
	created, err := scanTodo(row)
	if err != nil {
		return domain.Todo{}, fmt.Errorf("create todo: %w", err)
	}
	return created, nil
}

func (r *PostgresTodoRepo) GetByID(ctx context.Context, id string) (domain.Todo, error) {
	row := r.db.QueryRow(ctx, `SELECT `+todoColumns+` FROM todos WHERE id = $1`, id)
	todo, err := scanTodo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Todo{}, domain.ErrTodoNotFound
		}
		return domain.Todo{}, fmt.Errorf("get todo: %w", err)
	}
	return todo, nil
}

func (r *PostgresTodoRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Todo, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE owner_id = $1 ORDER BY created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	todos := make([]domain.Todo, 0)
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return todos, nil
}

func (r *PostgresTodoRepo) Update(ctx context.Context, todo domain.Todo) (domain.Todo, error) {
	// owner_id is deliberately absent from the SET list: ownership is
	// immutable after creation.
	row := r.db.QueryRow(ctx,
		`UPDATE todos
		 SET title = $2, description = $3, completed = $4, priority = $5, due_date = $6, updated_at = now()
		 WHERE id = $1
		 RETURNING `+todoColumns,
		todo.ID, todo.Title, todo.Description, todo.Completed, string(todo.Priority), todo.DueDate,
	)
	updated, err := scanTodo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Todo{}, domain.ErrTodoNotFound
		}
		return domain.Todo{}, fmt.Errorf("update todo: %w", err)
	}
	return updated, nil
}

func (r *PostgresTodoRepo) Toggle(ctx context.Context, id string) (domain.Todo, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE todos SET completed = NOT completed, updated_at = now()
		 WHERE id = $1
		 RETURNING `+todoColumns,
		id,
	)
	toggled, err := scanTodo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Todo{}, domain.ErrTodoNotFound
		}
		return domain.Todo{}, fmt.Errorf("toggle todo: %w", err)
	}
	return toggled, nil
}

func (r *PostgresTodoRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM todos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTodoNotFound
	}
	return nil
}

func scanTodo(row pgx.Row) (domain.Todo, error) {
	var (
		t        domain.Todo
		priority string
	)
	err := row.Scan(
		&t.ID,
		&t.OwnerID,
		&t.Title,
		&t.Description,
		&t.Completed,
		&priority,
		&t.DueDate,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	t.Priority = domain.Priority(priority)
	return t, err
}
