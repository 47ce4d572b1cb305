package user

import (
	"database/sql"
	"time"
)

// User mirrors one row in the persistent `user` table.
//
//   - Credits is the admission-control balance; it is mutated only by the
//     credit ledger's commit and refund operations.
//   - CustomerID is the optional external billing reference, lazily created
//     on first need and NULL until then.
//
// Users are never hard-deleted; billing history hangs off the row.
type User struct {
	ID         string         `db:"id"`
	Email      string         `db:"email"`
	Name       string         `db:"name"`
	Credits    int            `db:"credits"`
	CustomerID sql.NullString `db:"customer_id"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}
