package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Subtasks keep insertion order through ordinal; gaps left by deletes are
// harmless, so no reindexing happens here.

func (q *Queries) SubtasksOf(ctx context.Context, taskID string) ([]Subtask, error) {
	rows, err := q.query(ctx, `
		SELECT id, account_id, task_id, name, completed
		FROM subtasks WHERE task_id = ? ORDER BY ordinal, id
	`, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to query subtasks: %w", err)
	}
	defer rows.Close()

	subtasks := []Subtask{}
	for rows.Next() {
		var s Subtask
		if err := rows.Scan(&s.ID, &s.AccountID, &s.TaskID, &s.Name, &s.Completed); err != nil {
			return nil, err
		}
		subtasks = append(subtasks, s)
	}
	return subtasks, rows.Err()
}

func (q *Queries) GetSubtask(ctx context.Context, accountID, id string) (Subtask, error) {
	var s Subtask
	err := q.queryRow(ctx, `
		SELECT id, account_id, task_id, name, completed
		FROM subtasks WHERE id = ? AND account_id = ?
	`, id, accountID).Scan(&s.ID, &s.AccountID, &s.TaskID, &s.Name, &s.Completed)
	if errors.Is(err, sql.ErrNoRows) {
		return Subtask{}, ErrNotFound
	}
	if err != nil {
		return Subtask{}, fmt.Errorf("failed to query subtask: %w", err)
	}
	return s, nil
}

// InsertSubtask appends the subtask after the task's existing ones.
func (q *Queries) InsertSubtask(ctx context.Context, s Subtask) error {
	_, err := q.exec(ctx, `
		INSERT INTO subtasks (id, account_id, task_id, name, completed, ordinal)
		VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(ordinal), -1) + 1 FROM subtasks WHERE task_id = ?))
	`, s.ID, s.AccountID, s.TaskID, s.Name, s.Completed, s.TaskID)
	if err != nil {
		return fmt.Errorf("failed to insert subtask: %w", err)
	}
	return nil
}

func (q *Queries) UpdateSubtask(ctx context.Context, s Subtask) error {
	err := affectedOne(q.exec(ctx, `
		UPDATE subtasks SET name = ?, completed = ?
		WHERE id = ? AND account_id = ?
	`, s.Name, s.Completed, s.ID, s.AccountID))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to update subtask: %w", err)
	}
	return err
}

func (q *Queries) DeleteSubtask(ctx context.Context, taskID, id string) error {
	if _, err := q.exec(ctx, `DELETE FROM subtasks WHERE id = ? AND task_id = ?`, id, taskID); err != nil {
		return fmt.Errorf("failed to delete subtask: %w", err)
	}
	return nil
}
