package user

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when no user row matches the lookup.
var ErrNotFound = errors.New("user not found")

const columns = `id, email, name, credits, customer_id, created_at, updated_at`

// ByEmail fetches a single user by email.  The caller supplies a context so
// the lookup respects request deadlines.
func ByEmail(ctx context.Context, db *sqlx.DB, email string) (*User, error) {
	const q = `
        SELECT ` + columns + `
        FROM   user
        WHERE  email = ?
        LIMIT  1;`
	var u User
	if err := db.GetContext(ctx, &u, q, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// ByID fetches a single user by primary key.
func ByID(ctx context.Context, db *sqlx.DB, id string) (*User, error) {
	const q = `
        SELECT ` + columns + `
        FROM   user
        WHERE  id = ?
        LIMIT  1;`
	var u User
	if err := db.GetContext(ctx, &u, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user with the default credit grant and returns the
// generated id.  Used at registration or on first OAuth sign-in.
func Create(ctx context.Context, db *sqlx.DB, email, name string) (string, error) {
	id := uuid.NewString()
	const q = `
        INSERT INTO user (id, email, name)
        VALUES (?, ?, ?);`
	if _, err := db.ExecContext(ctx, q, id, email, name); err != nil {
		return "", err
	}
	return id, nil
}

// SetCustomerID records the lazily-created external billing reference.
func SetCustomerID(ctx context.Context, db *sqlx.DB, id, customerID string) error {
	const q = `
        UPDATE user
        SET    customer_id = ?
        WHERE  id = ?;`
	_, err := db.ExecContext(ctx, q, customerID, id)
	return err
}
