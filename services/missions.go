package services

import (
	"context"

	"github.com/CrowderSoup/gamific/database"
	"github.com/CrowderSoup/gamific/ordering"
)

func (b *BoardService) ListMissions(ctx context.Context, s Session) ([]database.Mission, error) {
	return b.store.Queries().ListMissions(ctx, s.AccountID)
}

// GetMission returns the mission with its assignees and columns.
func (b *BoardService) GetMission(ctx context.Context, s Session, id string) (database.Mission, error) {
	q := b.store.Queries()
	m, err := q.GetMission(ctx, s.AccountID, id)
	if err != nil {
		return database.Mission{}, found(err, "Mission")
	}
	if m.Columns, err = q.ColumnsOf(ctx, database.MissionColumnFamily, m.ID); err != nil {
		return database.Mission{}, err
	}
	return m, nil
}

func requireJourneyColumn(ctx context.Context, q *database.Queries, accountID, id string) error {
	_, err := q.GetColumn(ctx, database.JourneyColumnFamily, accountID, id)
	return found(err, "Journey column")
}

// requireUsers checks that every id names a user of the account.
func requireUsers(ctx context.Context, q *database.Queries, accountID string, ids []string) error {
	for _, id := range ids {
		if _, err := q.GetUser(ctx, accountID, id); err != nil {
			return found(err, "User")
		}
	}
	return nil
}

func (b *BoardService) CreateMission(ctx context.Context, s Session, in MissionInput) (database.Mission, error) {
	if err := ValidateMissionCreate(in); err != nil {
		return database.Mission{}, err
	}
	users := []string{s.UserID}
	if in.Users != nil {
		users = *in.Users
	}

	var mission database.Mission
	err := b.store.WithTx(ctx, func(q *database.Queries) error {
		if err := requireJourneyColumn(ctx, q, s.AccountID, *in.ColumnID); err != nil {
			return err
		}
		if err := requireUsers(ctx, q, s.AccountID, users); err != nil {
			return err
		}

		order := orderOf(q, database.MissionFamily)
		position, err := order.InsertAt(ctx, *in.ColumnID, in.Position)
		if err != nil {
			return err
		}
		m := database.Mission{
			ID:        newID(),
			AccountID: s.AccountID,
			ColumnID:  *in.ColumnID,
			Name:      *in.Name,
			Position:  position,
		}
		if in.Description != nil {
			m.Description = *in.Description
		}
		if in.Completed != nil {
			m.Completed = *in.Completed
		}
		if err := q.InsertMission(ctx, m); err != nil {
			return err
		}
		add, _ := diffIDs(nil, users)
		for _, userID := range add {
			if err := q.AddMissionUser(ctx, m.ID, userID); err != nil {
				return err
			}
		}
		if err := order.Verify(ctx, m.ColumnID); err != nil {
			return err
		}

		mission, err = q.GetMission(ctx, s.AccountID, m.ID)
		return err
	})
	if err != nil {
		return database.Mission{}, err
	}

	b.publish(s.AccountID, "mission.created", mission)
	return mission, nil
}

// UpdateMission merges the supplied fields, moves the mission when its
// column or position changed and reconciles its assignees.
func (b *BoardService) UpdateMission(ctx context.Context, s Session, id string, in MissionInput) (database.Mission, error) {
	if err := ValidateMissionUpdate(in); err != nil {
		return database.Mission{}, err
	}

	var mission database.Mission
	err := b.store.WithTx(ctx, func(q *database.Queries) error {
		current, err := q.GetMission(ctx, s.AccountID, id)
		if err != nil {
			return found(err, "Mission")
		}
		from := ordering.Slot{ParentID: current.ColumnID, Position: current.Position}

		toColumn := current.ColumnID
		if in.ColumnID != nil && *in.ColumnID != toColumn {
			if err := requireJourneyColumn(ctx, q, s.AccountID, *in.ColumnID); err != nil {
				return err
			}
			toColumn = *in.ColumnID
		}

		order := orderOf(q, database.MissionFamily)
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
		if in.Completed != nil {
			current.Completed = *in.Completed
		}
		if err := q.UpdateMission(ctx, current); err != nil {
			return found(err, "Mission")
		}

		if in.Users != nil {
			if err := requireUsers(ctx, q, s.AccountID, *in.Users); err != nil {
				return err
			}
			add, remove := diffIDs(current.Users, *in.Users)
			for _, userID := range remove {
				if err := q.RemoveMissionUser(ctx, current.ID, userID); err != nil {
					return err
				}
			}
			for _, userID := range add {
				if err := q.AddMissionUser(ctx, current.ID, userID); err != nil {
					return err
				}
			}
		}

		if err := order.Verify(ctx, from.ParentID, toColumn); err != nil {
			return err
		}
		mission, err = q.GetMission(ctx, s.AccountID, id)
		return err
	})
	if err != nil {
		return database.Mission{}, err
	}

	b.publish(s.AccountID, "mission.updated", mission)
	return mission, nil
}

func (b *BoardService) DeleteMission(ctx context.Context, s Session, id string) error {
	err := b.store.WithTx(ctx, func(q *database.Queries) error {
		current, err := q.GetMission(ctx, s.AccountID, id)
		if err != nil {
			return found(err, "Mission")
		}
		if err := q.DeleteMission(ctx, s.AccountID, id); err != nil {
			return found(err, "Mission")
		}
		order := orderOf(q, database.MissionFamily)
		if err := order.RemoveAt(ctx, current.ColumnID, current.Position); err != nil {
			return err
		}
		return order.Verify(ctx, current.ColumnID)
	})
	if err != nil {
		return err
	}

	b.publish(s.AccountID, "mission.deleted", map[string]string{"id": id})
	return nil
}
