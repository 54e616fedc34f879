package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/repository"
)

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	if filter.UserEmail == "" {
		return nil, domain.ErrUnsupportedFilter
	}

	const query = `
	SELECT id, title, user_email, created_at, due_date, priority, completed
	FROM tasks
	WHERE user_email = $1
	  AND ($2 = '' OR priority = $2)
	ORDER BY created_at ASC, id ASC
	`
	rows, err := r.pool.Query(ctx, query, filter.UserEmail, string(filter.Priority))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Insert(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if err := task.Validate(); err != nil {
		return nil, err
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	due, err := dueDateParam(task.DueDate)
	if err != nil {
		return nil, err
	}

	const query = `
	INSERT INTO tasks (id, title, user_email, created_at, due_date, priority, completed)
	VALUES ($1, $2, $3, COALESCE($4, NOW()), $5, $6, $7)
	RETURNING created_at
	`

	var createdAt interface{}
	if !task.CreatedAt.IsZero() {
		createdAt = task.CreatedAt
	}

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.Title,
		task.UserEmail,
		createdAt,
		due,
		string(task.Priority),
		task.Completed,
	).Scan(&task.CreatedAt); err != nil {
		return nil, err
	}

	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, id, owner string, patch domain.TaskPatch) error {
	if patch.IsEmpty() {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE tasks
	SET title = COALESCE($3, title),
		completed = COALESCE($4, completed),
		updated_at = NOW()
	WHERE id = $1 AND user_email = $2
	`

	tag, err := r.pool.Exec(ctx, query, id, owner, patch.Title, patch.Completed)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id, owner string) error {
	const query = `DELETE FROM tasks WHERE id = $1 AND user_email = $2`
	tag, err := r.pool.Exec(ctx, query, id, owner)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task     domain.Task
		due      *time.Time
		priority string
	)

	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.UserEmail,
		&task.CreatedAt,
		&due,
		&priority,
		&task.Completed,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	task.DueDate = formatDueDate(due)
	task.Priority = domain.Priority(priority)
	if !task.Priority.Valid() {
		task.Priority = domain.PriorityMedium
	}

	return &task, nil
}
