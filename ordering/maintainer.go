// Package ordering keeps the position field of sibling items a contiguous,
// zero-based rank within their parent scope.
//
// The algorithm only talks to a Siblings adapter, so every ordered entity
// (journey columns, missions, mission columns, tasks) shares it. The caller
// persists the item's own row; the maintainer shifts everyone else.
package ordering

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInconsistentOrdering is returned by Verify when a scope's positions
	// are not exactly 0..n-1.
	ErrInconsistentOrdering = errors.New("inconsistent ordering")

	// ErrNegativePosition rejects a requested position below zero.
	ErrNegativePosition = errors.New("position cannot be less than 0")
)

// Siblings is the storage side of a sibling set scoped by a parent id.
type Siblings interface {
	// Count returns the number of children of parentID.
	Count(ctx context.Context, parentID string) (int, error)
	// Shift adds delta to the position of every child of parentID whose
	// position is >= from, in a single bulk update.
	Shift(ctx context.Context, parentID string, from, delta int) error
	// Positions returns the children's positions in ascending order.
	Positions(ctx context.Context, parentID string) ([]int, error)
}

// Slot identifies where an item currently sits.
type Slot struct {
	ParentID string
	Position int
}

// Maintainer shifts siblings so that inserts, removals and moves keep every
// scope contiguous. It holds no state beyond its Siblings adapter.
type Maintainer struct {
	siblings Siblings
}

// New creates a maintainer over the given sibling storage.
func New(siblings Siblings) *Maintainer {
	return &Maintainer{siblings: siblings}
}

// InsertAt makes room for a new child of parentID and returns the position
// the new row must be written at. A nil position appends. A position past
// the end is clamped to the end and nothing shifts.
func (m *Maintainer) InsertAt(ctx context.Context, parentID string, position *int) (int, error) {
	if position != nil && *position < 0 {
		return 0, ErrNegativePosition
	}

	count, err := m.siblings.Count(ctx, parentID)
	if err != nil {
		return 0, fmt.Errorf("count siblings: %w", err)
	}
	if position == nil || *position >= count {
		return count, nil
	}

	if err := m.siblings.Shift(ctx, parentID, *position, 1); err != nil {
		return 0, fmt.Errorf("shift siblings up: %w", err)
	}
	return *position, nil
}

// RemoveAt closes the gap left by a child that was deleted from position.
func (m *Maintainer) RemoveAt(ctx context.Context, parentID string, position int) error {
	if err := m.siblings.Shift(ctx, parentID, position+1, -1); err != nil {
		return fmt.Errorf("shift siblings down: %w", err)
	}
	return nil
}

// MoveTo repositions the item at from into toParentID and returns its new
// position. The item must still be stored at from when MoveTo is called; the
// caller writes the returned slot afterwards.
//
// A nil toPosition keeps the position within the same scope and appends when
// the scope changes. A position at or past the end of the destination lands
// at the end without shifting the destination.
func (m *Maintainer) MoveTo(ctx context.Context, from Slot, toParentID string, toPosition *int) (int, error) {
	sameScope := toParentID == from.ParentID
	if sameScope && (toPosition == nil || *toPosition == from.Position) {
		return from.Position, nil
	}
	if toPosition != nil && *toPosition < 0 {
		return 0, ErrNegativePosition
	}

	count, err := m.siblings.Count(ctx, toParentID)
	if err != nil {
		return 0, fmt.Errorf("count siblings: %w", err)
	}
	end := count
	if sameScope {
		end = count - 1
	}

	target := end
	movingToEnd := true
	if toPosition != nil && *toPosition < end {
		target = *toPosition
		movingToEnd = false
	}

	if err := m.siblings.Shift(ctx, from.ParentID, from.Position+1, -1); err != nil {
		return 0, fmt.Errorf("shift source siblings down: %w", err)
	}
	if !movingToEnd {
		if err := m.siblings.Shift(ctx, toParentID, target, 1); err != nil {
			return 0, fmt.Errorf("shift destination siblings up: %w", err)
		}
	}
	return target, nil
}

// Verify checks that each listed scope holds exactly positions 0..n-1.
func (m *Maintainer) Verify(ctx context.Context, parentIDs ...string) error {
	seen := make(map[string]bool, len(parentIDs))
	for _, parentID := range parentIDs {
		if seen[parentID] {
			continue
		}
		seen[parentID] = true

		positions, err := m.siblings.Positions(ctx, parentID)
		if err != nil {
			return fmt.Errorf("load positions: %w", err)
		}
		for rank, position := range positions {
			if position != rank {
				return fmt.Errorf("%w: scope %s has position %d at rank %d", ErrInconsistentOrdering, parentID, position, rank)
			}
		}
	}
	return nil
}
