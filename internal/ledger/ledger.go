// internal/ledger/ledger.go
//
// Credit ledger: the admission-control gate in front of every paid
// operation.
//
// Context
// -------
// Each generative operation costs one credit.  The ledger deliberately has a
// two-phase shape:
//
//	Eligible() – read-only gate, checked before any external side effect.
//	Commit()   – the actual decrement, called only after the work that
//	             consumes the credit has succeeded.
//
// Commit is idempotent per (user, request): the caller supplies a UUID, and
// a composite primary-key insert into credit_commit guards the decrement, so
// a retried request can never double-charge, and one user's request ids
// never collide with another user's.  Committed() exposes the same key as a
// read, so handlers can reject a replayed id before running any paid work.
// The decrement itself is a conditional UPDATE with a floor (`credits > 0`),
// which also closes the race between two concurrent requests that both
// passed the gate.
//
// Refund() restores one credit; it compensates an optimistic client-side
// balance update when a downstream call fails after commit.
//
// Notes
// -----
// • All gate failures surface as fault.ErrInsufficientCredits; the ledger
//   never silently succeeds.
// • Oxford commas, two spaces after periods.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/sitewright/sitewright/internal/fault"
	"github.com/sitewright/sitewright/internal/metrics"
)

// Ledger wraps the users schema with credit-accounting operations.
type Ledger struct {
	db *sqlx.DB
}

// New returns a Ledger backed by db.
func New(db *sqlx.DB) *Ledger {
	return &Ledger{db: db}
}

// Eligible reports the user's balance after checking it exceeds threshold.
// The default threshold is 0; promotional endpoints pass a higher one.  No
// decrement happens here.
func (l *Ledger) Eligible(ctx context.Context, userID string, threshold int) (int, error) {
	const q = `SELECT credits FROM user WHERE id = ? LIMIT 1;`

	var credits int
	if err := l.db.GetContext(ctx, &credits, q, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fault.ErrUnauthorized
		}
		return 0, fmt.Errorf("ledger eligibility read: %w", err)
	}

	if credits <= threshold {
		return credits, fault.ErrInsufficientCredits
	}
	return credits, nil
}

// Committed reports whether a credit was already charged to userID under
// requestID.  Handlers call this before any paid work so a replayed request
// id is rejected instead of producing a fresh, uncharged artifact.
func (l *Ledger) Committed(ctx context.Context, userID, requestID string) (bool, error) {
	const q = `SELECT COUNT(*) FROM credit_commit WHERE user_id = ? AND request_id = ?;`

	var n int
	if err := l.db.GetContext(ctx, &n, q, userID, requestID); err != nil {
		return false, fmt.Errorf("ledger replay check: %w", err)
	}
	return n > 0, nil
}

// Commit atomically charges one credit and returns the new balance.  The
// (userID, requestID) pair makes the charge idempotent: a second call with
// the same pair returns the current balance without decrementing again.
func (l *Ledger) Commit(ctx context.Context, userID, requestID string) (int, error) {
	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("ledger commit begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	const ins = `INSERT INTO credit_commit (user_id, request_id) VALUES (?, ?);`
	if _, err := tx.ExecContext(ctx, ins, userID, requestID); err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 { // duplicate key
			// Already charged this user for this request; report the
			// balance as-is.
			return l.balance(ctx, userID)
		}
		return 0, fmt.Errorf("ledger commit record: %w", err)
	}

	const dec = `UPDATE user SET credits = credits - 1 WHERE id = ? AND credits > 0;`
	res, err := tx.ExecContext(ctx, dec, userID)
	if err != nil {
		return 0, fmt.Errorf("ledger commit decrement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("ledger commit rows: %w", err)
	}
	if n == 0 {
		// Balance hit the floor between gate and commit.
		return 0, fault.ErrInsufficientCredits
	}

	var remaining int
	const sel = `SELECT credits FROM user WHERE id = ? LIMIT 1;`
	if err := tx.GetContext(ctx, &remaining, sel, userID); err != nil {
		return 0, fmt.Errorf("ledger commit readback: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("ledger commit: %w", err)
	}

	metrics.CreditsCommittedTotal.Inc()
	return remaining, nil
}

// Refund restores one credit.
func (l *Ledger) Refund(ctx context.Context, userID string) error {
	const q = `UPDATE user SET credits = credits + 1 WHERE id = ?;`
	if _, err := l.db.ExecContext(ctx, q, userID); err != nil {
		return fmt.Errorf("ledger refund: %w", err)
	}
	return nil
}

func (l *Ledger) balance(ctx context.Context, userID string) (int, error) {
	var credits int
	const q = `SELECT credits FROM user WHERE id = ? LIMIT 1;`
	if err := l.db.GetContext(ctx, &credits, q, userID); err != nil {
		return 0, fmt.Errorf("ledger balance read: %w", err)
	}
	return credits, nil
}
