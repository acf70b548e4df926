package services

import (
	"context"

	"github.com/CrowderSoup/gamific/database"
	"github.com/CrowderSoup/gamific/ordering"
)

func (b *BoardService) ListTasks(ctx context.Context, s Session) ([]database.Task, error) {
	return b.store.Queries().ListTasks(ctx, s.AccountID)
}

// GetTask returns the task with its subtasks in insertion order.
func (b *BoardService) GetTask(ctx context.Context, s Session, id string) (database.Task, error) {
	t, err := b.store.Queries().GetTask(ctx, s.AccountID, id)
	return t, found(err, "Task")
}

func requireMissionColumn(ctx context.Context, q *database.Queries, accountID, id string) error {
	_, err := q.GetColumn(ctx, database.MissionColumnFamily, accountID, id)
	return found(err, "Mission column")
}

func (b *BoardService) CreateTask(ctx context.Context, s Session, in TaskInput) (database.Task, error) {
	if err := ValidateTaskCreate(in); err != nil {
		return database.Task{}, err
	}
	userID := s.UserID
	if in.UserID != nil {
		userID = *in.UserID
	}

	var task database.Task
	err := b.store.WithTx(ctx, func(q *database.Queries) error {
		if err := requireMissionColumn(ctx, q, s.AccountID, *in.ColumnID); err != nil {
			return err
		}
		if err := requireUsers(ctx, q, s.AccountID, []string{userID}); err != nil {
			return err
		}

		order := orderOf(q, database.TaskFamily)
		position, err := order.InsertAt(ctx, *in.ColumnID, in.Position)
		if err != nil {
			return err
		}
		t := database.Task{
			ID:           newID(),
			AccountID:    s.AccountID,
			ColumnID:     *in.ColumnID,
			UserID:       userID,
			Name:         *in.Name,
			Position:     position,
			Points:       *in.Points,
			RelatedTasks: []string{},
		}
		if in.Description != nil {
			t.Description = *in.Description
		}
		if in.Completed != nil {
			t.Completed = *in.Completed
		}
		if in.RelatedTasks != nil {
			t.RelatedTasks = *in.RelatedTasks
		}
		if err := q.InsertTask(ctx, t); err != nil {
			return err
		}
		if in.Subtasks != nil {
			if err := reconcileSubtasks(ctx, q, t, nil, *in.Subtasks); err != nil {
				return err
			}
		}
		if err := order.Verify(ctx, t.ColumnID); err != nil {
			return err
		}

		task, err = q.GetTask(ctx, s.AccountID, t.ID)
		return err
	})
	if err != nil {
		return database.Task{}, err
	}

	b.publish(s.AccountID, "task.created", task)
	return task, nil
}

// UpdateTask merges the supplied fields, moves the task when its column or
// position changed, replaces related_tasks and reconciles subtasks.
func (b *BoardService) UpdateTask(ctx context.Context, s Session, id string, in TaskInput) (database.Task, error) {
	if err := ValidateTaskUpdate(in); err != nil {
		return database.Task{}, err
	}

	var task database.Task
	err := b.store.WithTx(ctx, func(q *database.Queries) error {
		current, err := q.GetTask(ctx, s.AccountID, id)
		if err != nil {
			return found(err, "Task")
		}
		from := ordering.Slot{ParentID: current.ColumnID, Position: current.Position}

		toColumn := current.ColumnID
		if in.ColumnID != nil && *in.ColumnID != toColumn {
			if err := requireMissionColumn(ctx, q, s.AccountID, *in.ColumnID); err != nil {
				return err
			}
			toColumn = *in.ColumnID
		}
		if in.UserID != nil && *in.UserID != current.UserID {
			if err := requireUsers(ctx, q, s.AccountID, []string{*in.UserID}); err != nil {
				return err
			}
			current.UserID = *in.UserID
		}

		order := orderOf(q, database.TaskFamily)
		position, err := order.MoveTo(ctx, from, toColumn, in.Position)
		if err != nil {
			return err
		}

		current.ColumnID = toColumn
		current.Position = position
		if in.Name != nil {
			current.Name = *in.Name
		}
		if in.Description != nil {
			current.Description = *in.Description
		}
		if in.Points != nil {
			current.Points = *in.Points
		}
		if in.Completed != nil {
			current.Completed = *in.Completed
		}
		if in.RelatedTasks != nil {
			current.RelatedTasks = *in.RelatedTasks
		}
		if err := q.UpdateTask(ctx, current); err != nil {
			return found(err, "Task")
		}

		if in.Subtasks != nil {
			if err := reconcileSubtasks(ctx, q, current, current.Subtasks, *in.Subtasks); err != nil {
				return err
			}
		}

		if err := order.Verify(ctx, from.ParentID, toColumn); err != nil {
			return err
		}
		task, err = q.GetTask(ctx, s.AccountID, id)
		return err
	})
	if err != nil {
		return database.Task{}, err
	}

	b.publish(s.AccountID, "task.updated", task)
	return task, nil
}

// reconcileSubtasks makes the task's subtasks match want. Subtasks missing
// from want are deleted, known ids are updated in place and everything else
// is appended with a fresh id.
func reconcileSubtasks(ctx context.Context, q *database.Queries, t database.Task, have []database.Subtask, want []SubtaskInput) error {
	existing := make(map[string]database.Subtask, len(have))
	for _, st := range have {
		existing[st.ID] = st
	}

	keep := make(map[string]bool, len(want))
	for _, in := range want {
		if in.ID != nil {
			if _, ok := existing[*in.ID]; ok {
				keep[*in.ID] = true
			}
		}
	}
	for _, st := range have {
		if !keep[st.ID] {
			if err := q.DeleteSubtask(ctx, t.ID, st.ID); err != nil {
				return err
			}
		}
	}

	for _, in := range want {
		if in.ID != nil && keep[*in.ID] {
			st := existing[*in.ID]
			st.Name = *in.Name
			if in.Completed != nil {
				st.Completed = *in.Completed
			}
			if err := q.UpdateSubtask(ctx, st); err != nil {
				return err
			}
			// A repeated id only updates once.
			delete(keep, *in.ID)
			continue
		}
		if in.ID != nil {
			if _, ok := existing[*in.ID]; ok {
				continue
			}
		}

		st := database.Subtask{ID: newID(), AccountID: t.AccountID, TaskID: t.ID, Name: *in.Name}
		if in.Completed != nil {
			st.Completed = *in.Completed
		}
		if err := q.InsertSubtask(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func (b *BoardService) DeleteTask(ctx context.Context, s Session, id string) error {
	err := b.store.WithTx(ctx, func(q *database.Queries) error {
		current, err := q.GetTask(ctx, s.AccountID, id)
		if err != nil {
			return found(err, "Task")
		}
		if err := q.DeleteTask(ctx, s.AccountID, id); err != nil {
			return found(err, "Task")
		}
		order := orderOf(q, database.TaskFamily)
		if err := order.RemoveAt(ctx, current.ColumnID, current.Position); err != nil {
			return err
		}
		return order.Verify(ctx, current.ColumnID)
	})
	if err != nil {
		return err
	}

	b.publish(s.AccountID, "task.deleted", map[string]string{"id": id})
	return nil
}

// UpdateSubtask changes a subtask's name or completion.
func (b *BoardService) UpdateSubtask(ctx context.Context, s Session, id string, in SubtaskInput) (database.Subtask, error) {
	if err := ValidateSubtaskUpdate(in); err != nil {
		return database.Subtask{}, err
	}

	var subtask database.Subtask
	err := b.store.WithTx(ctx, func(q *database.Queries) error {
		current, err := q.GetSubtask(ctx, s.AccountID, id)
		if err != nil {
			return found(err, "Subtask")
		}
		if in.Name != nil {
			current.Name = *in.Name
		}
		if in.Completed != nil {
			current.Completed = *in.Completed
		}
		if err := q.UpdateSubtask(ctx, current); err != nil {
			return found(err, "Subtask")
		}
		subtask = current
		return nil
	})
	if err != nil {
		return database.Subtask{}, err
	}

	b.publish(s.AccountID, "subtask.updated", subtask)
	return subtask, nil
}
