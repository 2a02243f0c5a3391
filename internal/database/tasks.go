package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dokbae/voice-todo/internal/models"
	"github.com/google/uuid"
)

// ErrTaskNotFound is returned when a task id does not exist. It is the
// only storage failure that surfaces to clients as its own status.
var ErrTaskNotFound = errors.New("task not found")

// TaskRepositoryInterface defines the interface for task repository operations.
// This interface enables better testability by allowing mock implementations.
type TaskRepositoryInterface interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	List(ctx context.Context, skip, limit int) ([]*models.Task, error)
	SetCompleted(ctx context.Context, id uuid.UUID, completed bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// TaskRepository handles task database operations
type TaskRepository struct {
	db *DB
}

var _ TaskRepositoryInterface = (*TaskRepository)(nil)

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create stores a new task and fills in the server-assigned creation timestamp
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (id, title, description, due_date, is_completed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	var description sql.NullString
	if task.Description != nil {
		description = sql.NullString{String: *task.Description, Valid: true}
	}
	var dueDate sql.NullTime
	if task.DueDate != nil {
		dueDate = sql.NullTime{Time: *task.DueDate, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query,
		task.ID,
		task.Title,
		description,
		dueDate,
		task.IsCompleted,
		time.Now(),
	).Scan(&task.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// GetByID retrieves a task by ID
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	query := `
		SELECT id, title, description, due_date, is_completed, created_at
		FROM tasks
		WHERE id = $1
	`

	task, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return task, nil
}

// List retrieves tasks ordered by due date ascending (tasks without a due
// date sort last), with offset pagination.
func (r *TaskRepository) List(ctx context.Context, skip, limit int) ([]*models.Task, error) {
	query := `
		SELECT id, title, description, due_date, is_completed, created_at
		FROM tasks
		ORDER BY due_date ASC NULLS LAST, created_at ASC
		OFFSET $1 LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return tasks, nil
}

// SetCompleted toggles the completion flag of a task
func (r *TaskRepository) SetCompleted(ctx context.Context, id uuid.UUID, completed bool) error {
	query := `UPDATE tasks SET is_completed = $2 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, completed)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrTaskNotFound
	}

	return nil
}

// Delete deletes a task by ID
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM tasks WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrTaskNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	task := &models.Task{}
	var description sql.NullString
	var dueDate sql.NullTime

	err := row.Scan(
		&task.ID,
		&task.Title,
		&description,
		&dueDate,
		&task.IsCompleted,
		&task.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		task.Description = &description.String
	}
	if dueDate.Valid {
		task.DueDate = &dueDate.Time
	}

	return task, nil
}
