package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/CrowderSoup/gamific/database"
	"github.com/CrowderSoup/gamific/ordering"
)

// Journey columns and mission columns are served by the same methods; the
// family decides which table and parent are involved.

func columnLabel(f database.Family) string {
	if f == database.MissionColumnFamily {
		return "Mission column"
	}
	return "Journey column"
}

func columnEvent(f database.Family, action string) string {
	if f == database.MissionColumnFamily {
		return "missionColumn." + action
	}
	return "journeyColumn." + action
}

func checkColumnFamily(f database.Family) error {
	if f != database.JourneyColumnFamily && f != database.MissionColumnFamily {
		return fmt.Errorf("%s is not a column family", f.Table)
	}
	return nil
}

// requireColumnParent checks that the journey or mission exists in the
// caller's account.
func requireColumnParent(ctx context.Context, q *database.Queries, f database.Family, accountID, parentID string) error {
	if f == database.MissionColumnFamily {
		_, err := q.GetMission(ctx, accountID, parentID)
		return found(err, "Mission")
	}
	_, err := q.GetJourney(ctx, accountID, parentID)
	return found(err, "Journey")
}

func requireUniqueColumnName(ctx context.Context, q *database.Queries, f database.Family, parentID, name, excludeID string) error {
	taken, err := q.NameTaken(ctx, f, parentID, strings.TrimSpace(name), excludeID)
	if err != nil {
		return err
	}
	if taken {
		return invalid("name", InvalidDuplicate, "Column names must be unique")
	}
	return nil
}

func loadColumnChildren(ctx context.Context, q *database.Queries, f database.Family, c *database.Column) error {
	var err error
	if f == database.MissionColumnFamily {
		c.Tasks, err = q.TasksIn(ctx, c.ID)
	} else {
		c.Missions, err = q.MissionsIn(ctx, c.ID)
	}
	return err
}

func (b *BoardService) ListColumns(ctx context.Context, s Session, f database.Family) ([]database.Column, error) {
	if err := checkColumnFamily(f); err != nil {
		return nil, err
	}
	return b.store.Queries().ListColumns(ctx, f, s.AccountID)
}

// GetColumn returns the column with its missions or tasks in order.
func (b *BoardService) GetColumn(ctx context.Context, s Session, f database.Family, id string) (database.Column, error) {
	if err := checkColumnFamily(f); err != nil {
		return database.Column{}, err
	}
	q := b.store.Queries()
	c, err := q.GetColumn(ctx, f, s.AccountID, id)
	if err != nil {
		return database.Column{}, found(err, columnLabel(f))
	}
	if err := loadColumnChildren(ctx, q, f, &c); err != nil {
		return database.Column{}, err
	}
	return c, nil
}

func (b *BoardService) CreateColumn(ctx context.Context, s Session, f database.Family, in ColumnInput) (database.Column, error) {
	if err := checkColumnFamily(f); err != nil {
		return database.Column{}, err
	}
	if err := ValidateColumnCreate(in, f.ParentColumn); err != nil {
		return database.Column{}, err
	}
	parentID := *columnParent(in, f.ParentColumn)

	var column database.Column
	err := b.store.WithTx(ctx, func(q *database.Queries) error {
		if err := requireColumnParent(ctx, q, f, s.AccountID, parentID); err != nil {
			return err
		}
		if err := requireUniqueColumnName(ctx, q, f, parentID, *in.Name, ""); err != nil {
			return err
		}

		order := orderOf(q, f)
		position, err := order.InsertAt(ctx, parentID, in.Position)
		if err != nil {
			return err
		}
		column = database.Column{
			ID:        newID(),
			AccountID: s.AccountID,
			Name:      strings.TrimSpace(*in.Name),
			Color:     *in.Color,
			Position:  position,
		}
		setColumnParent(&column, f, parentID)
		if err := q.InsertColumn(ctx, f, column); err != nil {
			return err
		}
		return order.Verify(ctx, parentID)
	})
	if err != nil {
		return database.Column{}, err
	}

	b.publish(s.AccountID, columnEvent(f, "created"), column)
	return column, nil
}

func setColumnParent(c *database.Column, f database.Family, parentID string) {
	if f == database.MissionColumnFamily {
		c.MissionID = parentID
	} else {
		c.JourneyID = parentID
	}
}

// UpdateColumn renames, recolours or repositions a column. Supplying a
// different journey_id (or mission_id) moves it to that parent.
func (b *BoardService) UpdateColumn(ctx context.Context, s Session, f database.Family, id string, in ColumnInput) (database.Column, error) {
	if err := checkColumnFamily(f); err != nil {
		return database.Column{}, err
	}
	if err := ValidateColumnUpdate(in, f.ParentColumn); err != nil {
		return database.Column{}, err
	}

	var column database.Column
	err := b.store.WithTx(ctx, func(q *database.Queries) error {
		current, err := q.GetColumn(ctx, f, s.AccountID, id)
		if err != nil {
			return found(err, columnLabel(f))
		}
		from := ordering.Slot{ParentID: current.ParentID(), Position: current.Position}

		toParent := from.ParentID
		if p := columnParent(in, f.ParentColumn); p != nil && *p != toParent {
			if err := requireColumnParent(ctx, q, f, s.AccountID, *p); err != nil {
				return err
			}
			toParent = *p
		}

		name := current.Name
		if in.Name != nil {
			name = strings.TrimSpace(*in.Name)
		}
		if in.Name != nil || toParent != from.ParentID {
			if err := requireUniqueColumnName(ctx, q, f, toParent, name, current.ID); err != nil {
				return err
			}
		}

		order := orderOf(q, f)
		position, err := order.MoveTo(ctx, from, toParent, in.Position)
		if err != nil {
			return err
		}

		current.Name = name
		if in.Color != nil {
			current.Color = *in.Color
		}
		current.Position = position
		setColumnParent(&current, f, toParent)
		if err := q.UpdateColumn(ctx, f, current); err != nil {
			return found(err, columnLabel(f))
		}
		if err := order.Verify(ctx, from.ParentID, toParent); err != nil {
			return err
		}
		column = current
		return nil
	})
	if err != nil {
		return database.Column{}, err
	}

	b.publish(s.AccountID, columnEvent(f, "updated"), column)
	return column, nil
}

// DeleteColumn removes the column and everything in it, then closes the gap
// among its siblings.
func (b *BoardService) DeleteColumn(ctx context.Context, s Session, f database.Family, id string) error {
	if err := checkColumnFamily(f); err != nil {
		return err
	}

	err := b.store.WithTx(ctx, func(q *database.Queries) error {
		current, err := q.GetColumn(ctx, f, s.AccountID, id)
		if err != nil {
			return found(err, columnLabel(f))
		}
		if err := q.DeleteColumn(ctx, f, s.AccountID, id); err != nil {
			return found(err, columnLabel(f))
		}
		order := orderOf(q, f)
		if err := order.RemoveAt(ctx, current.ParentID(), current.Position); err != nil {
			return err
		}
		return order.Verify(ctx, current.ParentID())
	})
	if err != nil {
		return err
	}

	b.publish(s.AccountID, columnEvent(f, "deleted"), map[string]string{"id": id})
	return nil
}
