package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Journey columns and mission columns share their layout, so every query
// here takes the family (JourneyColumnFamily or MissionColumnFamily).

type rowScanner interface {
	Scan(dest ...any) error
}

func scanColumn(f Family, row rowScanner) (Column, error) {
	var c Column
	var parentID string
	if err := row.Scan(&c.ID, &c.AccountID, &parentID, &c.Name, &c.Color, &c.Position); err != nil {
		return Column{}, err
	}
	if f == MissionColumnFamily {
		c.MissionID = parentID
	} else {
		c.JourneyID = parentID
	}
	return c, nil
}

func (q *Queries) listColumns(ctx context.Context, f Family, where string, arg string) ([]Column, error) {
	query := fmt.Sprintf(`
		SELECT id, account_id, %[2]s, name, color, position
		FROM %[1]s WHERE %[3]s = ? ORDER BY %[2]s, position
	`, f.Table, f.ParentColumn, where)
	rows, err := q.query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", f.Table, err)
	}
	defer rows.Close()

	columns := []Column{}
	for rows.Next() {
		c, err := scanColumn(f, rows)
		if err != nil {
			return nil, err
		}
		columns = append(columns, c)
	}
	return columns, rows.Err()
}

// ListColumns returns every column of the family owned by the account.
func (q *Queries) ListColumns(ctx context.Context, f Family, accountID string) ([]Column, error) {
	return q.listColumns(ctx, f, "account_id", accountID)
}

// ColumnsOf returns the columns of one journey or mission in order.
func (q *Queries) ColumnsOf(ctx context.Context, f Family, parentID string) ([]Column, error) {
	return q.listColumns(ctx, f, f.ParentColumn, parentID)
}

func (q *Queries) GetColumn(ctx context.Context, f Family, accountID, id string) (Column, error) {
	query := fmt.Sprintf(`
		SELECT id, account_id, %s, name, color, position
		FROM %s WHERE id = ? AND account_id = ?
	`, f.ParentColumn, f.Table)
	c, err := scanColumn(f, q.queryRow(ctx, query, id, accountID))
	if errors.Is(err, sql.ErrNoRows) {
		return Column{}, ErrNotFound
	}
	if err != nil {
		return Column{}, fmt.Errorf("failed to query %s: %w", f.Table, err)
	}
	return c, nil
}

func (q *Queries) InsertColumn(ctx context.Context, f Family, c Column) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, account_id, %s, name, color, position)
		VALUES (?, ?, ?, ?, ?, ?)
	`, f.Table, f.ParentColumn)
	if _, err := q.exec(ctx, query, c.ID, c.AccountID, c.ParentID(), c.Name, c.Color, c.Position); err != nil {
		return fmt.Errorf("failed to insert %s: %w", f.Table, err)
	}
	return nil
}

func (q *Queries) UpdateColumn(ctx context.Context, f Family, c Column) error {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = ?, name = ?, color = ?, position = ?
		WHERE id = ? AND account_id = ?
	`, f.Table, f.ParentColumn)
	err := affectedOne(q.exec(ctx, query, c.ParentID(), c.Name, c.Color, c.Position, c.ID, c.AccountID))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to update %s: %w", f.Table, err)
	}
	return err
}

func (q *Queries) DeleteColumn(ctx context.Context, f Family, accountID, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ? AND account_id = ?`, f.Table)
	err := affectedOne(q.exec(ctx, query, id, accountID))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to delete %s: %w", f.Table, err)
	}
	return err
}
