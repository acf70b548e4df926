package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

const taskColumns = `id, account_id, column_id, user_id, name, description, position, points, completed, related_tasks`

func scanTask(row rowScanner) (Task, error) {
	var t Task
	var related string
	if err := row.Scan(&t.ID, &t.AccountID, &t.ColumnID, &t.UserID, &t.Name, &t.Description, &t.Position, &t.Points, &t.Completed, &related); err != nil {
		return Task{}, err
	}
	if err := json.Unmarshal([]byte(related), &t.RelatedTasks); err != nil {
		return Task{}, fmt.Errorf("failed to unmarshal related tasks: %w", err)
	}
	if t.RelatedTasks == nil {
		t.RelatedTasks = []string{}
	}
	return t, nil
}

func encodeRelated(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("failed to marshal related tasks: %w", err)
	}
	return string(b), nil
}

func (q *Queries) listTasks(ctx context.Context, where, arg string) ([]Task, error) {
	rows, err := q.query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE `+where+` = ? ORDER BY column_id, position`, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// ListTasks returns the account's tasks ordered by column and position,
// without subtasks.
func (q *Queries) ListTasks(ctx context.Context, accountID string) ([]Task, error) {
	return q.listTasks(ctx, "account_id", accountID)
}

// TasksIn returns the tasks of one mission column in order.
func (q *Queries) TasksIn(ctx context.Context, columnID string) ([]Task, error) {
	return q.listTasks(ctx, "column_id", columnID)
}

// GetTask returns the task with its subtasks in insertion order.
func (q *Queries) GetTask(ctx context.Context, accountID, id string) (Task, error) {
	t, err := scanTask(q.queryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ? AND account_id = ?`, id, accountID))
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, ErrNotFound
	}
	if err != nil {
		return Task{}, fmt.Errorf("failed to query task: %w", err)
	}
	if t.Subtasks, err = q.SubtasksOf(ctx, t.ID); err != nil {
		return Task{}, err
	}
	return t, nil
}

func (q *Queries) InsertTask(ctx context.Context, t Task) error {
	related, err := encodeRelated(t.RelatedTasks)
	if err != nil {
		return err
	}
	_, err = q.exec(ctx, `
		INSERT INTO tasks (id, account_id, column_id, user_id, name, description, position, points, completed, related_tasks)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.AccountID, t.ColumnID, t.UserID, t.Name, t.Description, t.Position, t.Points, t.Completed, related)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

func (q *Queries) UpdateTask(ctx context.Context, t Task) error {
	related, err := encodeRelated(t.RelatedTasks)
	if err != nil {
		return err
	}
	err = affectedOne(q.exec(ctx, `
		UPDATE tasks SET column_id = ?, user_id = ?, name = ?, description = ?, position = ?,
			points = ?, completed = ?, related_tasks = ?
		WHERE id = ? AND account_id = ?
	`, t.ColumnID, t.UserID, t.Name, t.Description, t.Position, t.Points, t.Completed, related, t.ID, t.AccountID))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return err
}

func (q *Queries) DeleteTask(ctx context.Context, accountID, id string) error {
	err := affectedOne(q.exec(ctx, `DELETE FROM tasks WHERE id = ? AND account_id = ?`, id, accountID))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return err
}
