package database

import (
	"context"
	"fmt"

	"github.com/CrowderSoup/gamific/ordering"
)

// Family names the table of an ordered entity and the column holding its
// parent scope.
type Family struct {
	Table        string
	ParentColumn string
}

var (
	JourneyColumnFamily = Family{Table: "journey_columns", ParentColumn: "journey_id"}
	MissionFamily       = Family{Table: "missions", ParentColumn: "column_id"}
	MissionColumnFamily = Family{Table: "mission_columns", ParentColumn: "mission_id"}
	TaskFamily          = Family{Table: "tasks", ParentColumn: "column_id"}
)

// Siblings adapts a family to the ordering maintainer.
func (q *Queries) Siblings(f Family) ordering.Siblings {
	return &siblings{q: q, f: f}
}

type siblings struct {
	q *Queries
	f Family
}

func (s *siblings) Count(ctx context.Context, parentID string) (int, error) {
	var n int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = ?`, s.f.Table, s.f.ParentColumn)
	if err := s.q.queryRow(ctx, query, parentID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", s.f.Table, err)
	}
	return n, nil
}

func (s *siblings) Shift(ctx context.Context, parentID string, from, delta int) error {
	query := fmt.Sprintf(`UPDATE %s SET position = position + ? WHERE %s = ? AND position >= ?`, s.f.Table, s.f.ParentColumn)
	if _, err := s.q.exec(ctx, query, delta, parentID, from); err != nil {
		return fmt.Errorf("shift %s: %w", s.f.Table, err)
	}
	return nil
}

func (s *siblings) Positions(ctx context.Context, parentID string) ([]int, error) {
	query := fmt.Sprintf(`SELECT position FROM %s WHERE %s = ? ORDER BY position ASC`, s.f.Table, s.f.ParentColumn)
	rows, err := s.q.query(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("list %s positions: %w", s.f.Table, err)
	}
	defer rows.Close()

	var positions []int
	for rows.Next() {
		var p int
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

// NameTaken reports whether another child of parentID already uses name,
// compared case-insensitively and ignoring surrounding whitespace. excludeID skips the row being renamed.
func (q *Queries) NameTaken(ctx context.Context, f Family, parentID, name, excludeID string) (bool, error) {
	var n int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = ? AND LOWER(TRIM(name)) = LOWER(TRIM(?)) AND id <> ?`, f.Table, f.ParentColumn)
	if err := q.queryRow(ctx, query, parentID, name, excludeID).Scan(&n); err != nil {
		return false, fmt.Errorf("check %s name: %w", f.Table, err)
	}
	return n > 0, nil
}
