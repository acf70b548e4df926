package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const missionColumns = `id, account_id, column_id, name, description, position, completed`

func scanMission(row rowScanner) (Mission, error) {
	var m Mission
	err := row.Scan(&m.ID, &m.AccountID, &m.ColumnID, &m.Name, &m.Description, &m.Position, &m.Completed)
	return m, err
}

func (q *Queries) listMissions(ctx context.Context, where, arg string) ([]Mission, error) {
	rows, err := q.query(ctx, `SELECT `+missionColumns+` FROM missions WHERE `+where+` = ? ORDER BY column_id, position`, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query missions: %w", err)
	}

	missions := []Mission{}
	for rows.Next() {
		m, err := scanMission(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		missions = append(missions, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range missions {
		if missions[i].Users, err = q.MissionUserIDs(ctx, missions[i].ID); err != nil {
			return nil, err
		}
	}
	return missions, nil
}

// ListMissions returns the account's missions ordered by column and position.
func (q *Queries) ListMissions(ctx context.Context, accountID string) ([]Mission, error) {
	return q.listMissions(ctx, "account_id", accountID)
}

// MissionsIn returns the missions of one journey column in order.
func (q *Queries) MissionsIn(ctx context.Context, columnID string) ([]Mission, error) {
	return q.listMissions(ctx, "column_id", columnID)
}

func (q *Queries) GetMission(ctx context.Context, accountID, id string) (Mission, error) {
	m, err := scanMission(q.queryRow(ctx, `SELECT `+missionColumns+` FROM missions WHERE id = ? AND account_id = ?`, id, accountID))
	if errors.Is(err, sql.ErrNoRows) {
		return Mission{}, ErrNotFound
	}
	if err != nil {
		return Mission{}, fmt.Errorf("failed to query mission: %w", err)
	}
	if m.Users, err = q.MissionUserIDs(ctx, m.ID); err != nil {
		return Mission{}, err
	}
	return m, nil
}

func (q *Queries) InsertMission(ctx context.Context, m Mission) error {
	_, err := q.exec(ctx, `
		INSERT INTO missions (id, account_id, column_id, name, description, position, completed)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.AccountID, m.ColumnID, m.Name, m.Description, m.Position, m.Completed)
	if err != nil {
		return fmt.Errorf("failed to insert mission: %w", err)
	}
	return nil
}

func (q *Queries) UpdateMission(ctx context.Context, m Mission) error {
	err := affectedOne(q.exec(ctx, `
		UPDATE missions SET column_id = ?, name = ?, description = ?, position = ?, completed = ?
		WHERE id = ? AND account_id = ?
	`, m.ColumnID, m.Name, m.Description, m.Position, m.Completed, m.ID, m.AccountID))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to update mission: %w", err)
	}
	return err
}

func (q *Queries) DeleteMission(ctx context.Context, accountID, id string) error {
	err := affectedOne(q.exec(ctx, `DELETE FROM missions WHERE id = ? AND account_id = ?`, id, accountID))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to delete mission: %w", err)
	}
	return err
}

func (q *Queries) MissionUserIDs(ctx context.Context, missionID string) ([]string, error) {
	rows, err := q.query(ctx, `SELECT user_id FROM mission_users WHERE mission_id = ? ORDER BY user_id`, missionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query mission users: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (q *Queries) AddMissionUser(ctx context.Context, missionID, userID string) error {
	if _, err := q.exec(ctx, `INSERT INTO mission_users (mission_id, user_id) VALUES (?, ?)`, missionID, userID); err != nil {
		return fmt.Errorf("failed to add mission user: %w", err)
	}
	return nil
}

func (q *Queries) RemoveMissionUser(ctx context.Context, missionID, userID string) error {
	if _, err := q.exec(ctx, `DELETE FROM mission_users WHERE mission_id = ? AND user_id = ?`, missionID, userID); err != nil {
		return fmt.Errorf("failed to remove mission user: %w", err)
	}
	return nil
}
