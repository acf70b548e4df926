package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrAccountMismatch is returned by EnsureUser when the user already belongs
// to a different account.
var ErrAccountMismatch = errors.New("user belongs to another account")

// EnsureUser records the account and user carried by an identity-provider
// session. A user never changes account: a session naming another account
// for an existing user fails with ErrAccountMismatch.
func (q *Queries) EnsureUser(ctx context.Context, u User) error {
	if _, err := q.exec(ctx, `INSERT INTO accounts (id) VALUES (?) ON CONFLICT (id) DO NOTHING`, u.AccountID); err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}
	_, err := q.exec(ctx, `
		INSERT INTO users (id, account_id, email, name)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			email = excluded.email,
			name = excluded.name
		WHERE users.account_id = excluded.account_id
	`, u.ID, u.AccountID, u.Email, u.Name)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	var accountID string
	if err := q.queryRow(ctx, `SELECT account_id FROM users WHERE id = ?`, u.ID).Scan(&accountID); err != nil {
		return fmt.Errorf("failed to query user account: %w", err)
	}
	if accountID != u.AccountID {
		return ErrAccountMismatch
	}
	return nil
}

func (q *Queries) GetUser(ctx context.Context, accountID, id string) (User, error) {
	var u User
	err := q.queryRow(ctx, `SELECT id, account_id, email, name FROM users WHERE id = ? AND account_id = ?`, id, accountID).
		Scan(&u.ID, &u.AccountID, &u.Email, &u.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("failed to query user: %w", err)
	}
	return u, nil
}

func (q *Queries) ListUsers(ctx context.Context, accountID string) ([]User, error) {
	rows, err := q.query(ctx, `SELECT id, account_id, email, name FROM users WHERE account_id = ? ORDER BY name, id`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.AccountID, &u.Email, &u.Name); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
