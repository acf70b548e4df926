package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ListJourneys returns the account's journeys with their columns in order.
func (q *Queries) ListJourneys(ctx context.Context, accountID string) ([]Journey, error) {
	rows, err := q.query(ctx, `
		SELECT id, account_id, name, description, completed
		FROM journeys WHERE account_id = ? ORDER BY name, id
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query journeys: %w", err)
	}
	defer rows.Close()

	journeys := []Journey{}
	for rows.Next() {
		var j Journey
		if err := rows.Scan(&j.ID, &j.AccountID, &j.Name, &j.Description, &j.Completed); err != nil {
			return nil, err
		}
		j.Columns = []Column{}
		journeys = append(journeys, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	columns, err := q.ListColumns(ctx, JourneyColumnFamily, accountID)
	if err != nil {
		return nil, err
	}
	byJourney := make(map[string]int, len(journeys))
	for i, j := range journeys {
		byJourney[j.ID] = i
	}
	for _, c := range columns {
		if i, ok := byJourney[c.JourneyID]; ok {
			journeys[i].Columns = append(journeys[i].Columns, c)
		}
	}
	return journeys, nil
}

func (q *Queries) GetJourney(ctx context.Context, accountID, id string) (Journey, error) {
	var j Journey
	err := q.queryRow(ctx, `
		SELECT id, account_id, name, description, completed
		FROM journeys WHERE id = ? AND account_id = ?
	`, id, accountID).Scan(&j.ID, &j.AccountID, &j.Name, &j.Description, &j.Completed)
	if errors.Is(err, sql.ErrNoRows) {
		return Journey{}, ErrNotFound
	}
	if err != nil {
		return Journey{}, fmt.Errorf("failed to query journey: %w", err)
	}

	j.Columns, err = q.ColumnsOf(ctx, JourneyColumnFamily, j.ID)
	if err != nil {
		return Journey{}, err
	}
	return j, nil
}

func (q *Queries) InsertJourney(ctx context.Context, j Journey) error {
	_, err := q.exec(ctx, `
		INSERT INTO journeys (id, account_id, name, description, completed)
		VALUES (?, ?, ?, ?, ?)
	`, j.ID, j.AccountID, j.Name, j.Description, j.Completed)
	if err != nil {
		return fmt.Errorf("failed to insert journey: %w", err)
	}
	return nil
}

func (q *Queries) UpdateJourney(ctx context.Context, j Journey) error {
	err := affectedOne(q.exec(ctx, `
		UPDATE journeys SET name = ?, description = ?, completed = ?
		WHERE id = ? AND account_id = ?
	`, j.Name, j.Description, j.Completed, j.ID, j.AccountID))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to update journey: %w", err)
	}
	return err
}

// DeleteJourney removes the journey; its columns, missions and everything
// below them go with it.
func (q *Queries) DeleteJourney(ctx context.Context, accountID, id string) error {
	err := affectedOne(q.exec(ctx, `DELETE FROM journeys WHERE id = ? AND account_id = ?`, id, accountID))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to delete journey: %w", err)
	}
	return err
}
