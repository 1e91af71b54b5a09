package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"taskvoice/internal/domain"
)

func (s *SQLiteStore) ListTasks(ctx context.Context) ([]domain.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, start_at, duration_minutes, repeat_rule, created_at
		FROM tasks ORDER BY start_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		var (
			t                  domain.Task
			start, created, rp string
		)
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &start, &t.DurationMinutes, &rp, &created); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t.StartAt = parseTime(start)
		t.CreatedAt = parseTime(created)
		t.Repeat = domain.Repeat(rp)
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *SQLiteStore) GetTask(ctx context.Context, id int64) (domain.Task, error) {
	var (
		t                  domain.Task
		start, created, rp string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, start_at, duration_minutes, repeat_rule, created_at
		FROM tasks WHERE id=?`, id).
		Scan(&t.ID, &t.Title, &t.Description, &start, &t.DurationMinutes, &rp, &created)
	if err == sql.ErrNoRows {
		return domain.Task{}, fmt.Errorf("task %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Task{}, fmt.Errorf("load task %d: %w", id, err)
	}
	t.StartAt = parseTime(start)
	t.CreatedAt = parseTime(created)
	t.Repeat = domain.Repeat(rp)
	return t, nil
}

func (s *SQLiteStore) CreateTask(ctx context.Context, task domain.Task) (domain.Task, error) {
	task.Title = strings.TrimSpace(task.Title)
	if task.Title == "" {
		return domain.Task{}, fmt.Errorf("task title is empty")
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = s.now()
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (title, description, start_at, duration_minutes, repeat_rule, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		task.Title, task.Description, formatTime(task.StartAt), task.DurationMinutes, string(task.Repeat), formatTime(task.CreatedAt))
	if err != nil {
		return domain.Task{}, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Task{}, fmt.Errorf("task id: %w", err)
	}
	task.ID = id
	return task, nil
}

func (s *SQLiteStore) UpdateTask(ctx context.Context, task domain.Task) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET title=?, description=?, start_at=?, duration_minutes=?, repeat_rule=?
		WHERE id=?`,
		task.Title, task.Description, formatTime(task.StartAt), task.DurationMinutes, string(task.Repeat), task.ID)
	if err != nil {
		return fmt.Errorf("update task %d: %w", task.ID, err)
	}
	return requireAffected(res, "task", task.ID)
}

func (s *SQLiteStore) DeleteTask(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	return requireAffected(res, "task", id)
}

func requireAffected(res sql.Result, kind string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %d rows affected: %w", kind, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, domain.ErrNotFound)
	}
	return nil
}
