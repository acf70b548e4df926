package services

import (
	"context"
	"errors"
	"strings"

	"github.com/CrowderSoup/gamific/database"
	"github.com/CrowderSoup/gamific/ordering"
	"github.com/google/uuid"
)

// Publisher receives board events once the change that caused them has
// been committed.
type Publisher interface {
	Publish(accountID string, message WebSocketMessage)
}

// BoardService runs every read and write of the board on behalf of a
// session. Writes happen in one transaction each; ordered families are
// kept contiguous by the ordering maintainer and verified before commit.
type BoardService struct {
	store  *database.Store
	events Publisher
}

func NewBoardService(store *database.Store, events Publisher) *BoardService {
	return &BoardService{store: store, events: events}
}

func (b *BoardService) publish(accountID, eventType string, data any) {
	if b.events == nil {
		return
	}
	b.events.Publish(accountID, WebSocketMessage{Type: eventType, Data: data})
}

// found turns a missing row into a not-found error naming the resource.
func found(err error, resource string) error {
	if errors.Is(err, database.ErrNotFound) {
		return notFound(resource)
	}
	return err
}

func newID() string {
	return uuid.NewString()
}

func orderOf(q *database.Queries, f database.Family) *ordering.Maintainer {
	return ordering.New(q.Siblings(f))
}

// EnsureIdentity records the session's account and user so rows can refer
// to them. A session moving a known user to another account is rejected as
// unauthenticated.
func (b *BoardService) EnsureIdentity(ctx context.Context, s Session) error {
	err := b.store.Queries().EnsureUser(ctx, database.User{
		ID:        s.UserID,
		AccountID: s.AccountID,
		Email:     s.Email,
		Name:      s.Name,
	})
	if errors.Is(err, database.ErrAccountMismatch) {
		return unauthenticated("User belongs to another account", err)
	}
	return err
}

func (b *BoardService) ListUsers(ctx context.Context, s Session) ([]database.User, error) {
	return b.store.Queries().ListUsers(ctx, s.AccountID)
}

func (b *BoardService) ListJourneys(ctx context.Context, s Session) ([]database.Journey, error) {
	return b.store.Queries().ListJourneys(ctx, s.AccountID)
}

func (b *BoardService) GetJourney(ctx context.Context, s Session, id string) (database.Journey, error) {
	j, err := b.store.Queries().GetJourney(ctx, s.AccountID, id)
	return j, found(err, "Journey")
}

const defaultColumnColor = "gray"

// CreateJourney creates the journey together with its initial columns,
// which take positions in the order given.
func (b *BoardService) CreateJourney(ctx context.Context, s Session, in JourneyInput) (database.Journey, error) {
	if err := ValidateJourneyCreate(in); err != nil {
		return database.Journey{}, err
	}

	var journey database.Journey
	err := b.store.WithTx(ctx, func(q *database.Queries) error {
		j := database.Journey{ID: newID(), AccountID: s.AccountID, Name: *in.Name}
		if in.Description != nil {
			j.Description = *in.Description
		}
		if in.Completed != nil {
			j.Completed = *in.Completed
		}
		if err := q.InsertJourney(ctx, j); err != nil {
			return err
		}

		if in.Columns != nil {
			order := orderOf(q, database.JourneyColumnFamily)
			for _, seed := range *in.Columns {
				position, err := order.InsertAt(ctx, j.ID, nil)
				if err != nil {
					return err
				}
				c := database.Column{
					ID:        newID(),
					AccountID: s.AccountID,
					JourneyID: j.ID,
					Name:      strings.TrimSpace(*seed.Name),
					Color:     defaultColumnColor,
					Position:  position,
				}
				if seed.Color != nil {
					c.Color = *seed.Color
				}
				if err := q.InsertColumn(ctx, database.JourneyColumnFamily, c); err != nil {
					return err
				}
			}
			if err := order.Verify(ctx, j.ID); err != nil {
				return err
			}
		}

		var err error
		journey, err = q.GetJourney(ctx, s.AccountID, j.ID)
		return err
	})
	if err != nil {
		return database.Journey{}, err
	}

	b.publish(s.AccountID, "journey.created", journey)
	return journey, nil
}

func (b *BoardService) UpdateJourney(ctx context.Context, s Session, id string, in JourneyInput) (database.Journey, error) {
	if err := ValidateJourneyUpdate(in); err != nil {
		return database.Journey{}, err
	}

	var journey database.Journey
	err := b.store.WithTx(ctx, func(q *database.Queries) error {
		current, err := q.GetJourney(ctx, s.AccountID, id)
		if err != nil {
			return found(err, "Journey")
		}
		if in.Name != nil {
			current.Name = *in.Name
		}
		if in.Description != nil {
			current.Description = *in.Description
		}
		if in.Completed != nil {
			current.Completed = *in.Completed
		}
		if err := q.UpdateJourney(ctx, current); err != nil {
			return found(err, "Journey")
		}
		journey, err = q.GetJourney(ctx, s.AccountID, id)
		return err
	})
	if err != nil {
		return database.Journey{}, err
	}

	b.publish(s.AccountID, "journey.updated", journey)
	return journey, nil
}

func (b *BoardService) DeleteJourney(ctx context.Context, s Session, id string) error {
	err := b.store.WithTx(ctx, func(q *database.Queries) error {
		return found(q.DeleteJourney(ctx, s.AccountID, id), "Journey")
	})
	if err != nil {
		return err
	}

	b.publish(s.AccountID, "journey.deleted", map[string]string{"id": id})
	return nil
}
