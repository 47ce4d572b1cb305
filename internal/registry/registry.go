// internal/registry/registry.go
//
// Site Registry: the system of record for provisioned sites.
//
// Context
// -------
// One row per live site.  The content document is stored as a JSON column
// so single-field updates (an image swap from the editor) don't rewrite
// the whole document; bucket_name carries a unique index, making the
// registry the duplicate-name authority of last resort.
//
// A site row exists if and only if its bucket was fully provisioned; the
// orchestrator deletes the bucket whenever this insert fails.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sitewright/sitewright/internal/assemble"
	"github.com/sitewright/sitewright/internal/fault"
)

// ErrNotFound is returned when no site matches the lookup.
var ErrNotFound = errors.New("registry: site not found")

// Site is one provisioned site.
type Site struct {
	ID         string               `json:"id"`
	BucketName string               `json:"bucketName"`
	OwnerID    string               `json:"-"`
	Content    assemble.SiteContent `json:"content"`
	Href       string               `json:"href"`
	CreatedAt  time.Time            `json:"createdAt"`
	UpdatedAt  time.Time            `json:"updatedAt"`
}

// siteRow is the raw scan target; content stays bytes until unmarshalled.
type siteRow struct {
	ID         string    `db:"id"`
	BucketName string    `db:"bucket_name"`
	OwnerID    string    `db:"owner_id"`
	Content    []byte    `db:"content"`
	Href       string    `db:"href"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r siteRow) toSite() (Site, error) {
	s := Site{
		ID:         r.ID,
		BucketName: r.BucketName,
		OwnerID:    r.OwnerID,
		Href:       r.Href,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	if len(r.Content) > 0 {
		if err := json.Unmarshal(r.Content, &s.Content); err != nil {
			return Site{}, fmt.Errorf("site %s content decode: %w", r.ID, err)
		}
	}
	return s, nil
}

const columns = `id, bucket_name, owner_id, content, href, created_at, updated_at`

// Repository provides site persistence on the shared pool.
type Repository struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Repository { return &Repository{db: db} }

// Insert records a fully provisioned site.  Any failure is
// fault.ErrPersistence; the caller compensates by deleting the bucket.
func (r *Repository) Insert(ctx context.Context, site *Site) error {
	if site.ID == "" {
		site.ID = uuid.NewString()
	}
	content, err := json.Marshal(site.Content)
	if err != nil {
		return fmt.Errorf("%w: content encode: %v", fault.ErrPersistence, err)
	}

	const q = `INSERT INTO site (id, bucket_name, owner_id, content, href) VALUES (?, ?, ?, ?, ?);`
	if _, err := r.db.ExecContext(ctx, q,
		site.ID, site.BucketName, site.OwnerID, content, site.Href); err != nil {
		return fmt.Errorf("%w: insert site %q: %v", fault.ErrPersistence, site.BucketName, err)
	}
	return nil
}

// ByOwner lists the owner's sites, newest first.
func (r *Repository) ByOwner(ctx context.Context, ownerID string) ([]Site, error) {
	const q = `SELECT ` + columns + ` FROM site WHERE owner_id = ? ORDER BY created_at DESC;`

	var rows []siteRow
	if err := r.db.SelectContext(ctx, &rows, q, ownerID); err != nil {
		return nil, fmt.Errorf("sites for owner %s: %w", ownerID, err)
	}

	sites := make([]Site, 0, len(rows))
	for _, row := range rows {
		s, err := row.toSite()
		if err != nil {
			return nil, err
		}
		sites = append(sites, s)
	}
	return sites, nil
}

// ByBucketAndOwner fetches one site by its bucket name, scoped to the
// owner.  ErrNotFound when absent.
func (r *Repository) ByBucketAndOwner(ctx context.Context, bucketName, ownerID string) (*Site, error) {
	const q = `SELECT ` + columns + ` FROM site WHERE bucket_name = ? AND owner_id = ? LIMIT 1;`

	var row siteRow
	if err := r.db.GetContext(ctx, &row, q, bucketName, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("site %q: %w", bucketName, err)
	}

	s, err := row.toSite()
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ByID fetches one site by id, scoped to the owner.  ErrNotFound when
// absent.
func (r *Repository) ByID(ctx context.Context, id, ownerID string) (*Site, error) {
	const q = `SELECT ` + columns + ` FROM site WHERE id = ? AND owner_id = ? LIMIT 1;`

	var row siteRow
	if err := r.db.GetContext(ctx, &row, q, id, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("site %s: %w", id, err)
	}

	s, err := row.toSite()
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateContentField sets a single top-level field inside the content
// document, e.g. field "featureImageURL".  The caller validates the field
// name against its allowlist before reaching here.
func (r *Repository) UpdateContentField(ctx context.Context, id, ownerID, field, value string) error {
	const q = `UPDATE site SET content = JSON_SET(content, ?, ?) WHERE id = ? AND owner_id = ?;`

	res, err := r.db.ExecContext(ctx, q, "$."+field, value, id, ownerID)
	if err != nil {
		return fmt.Errorf("%w: update site %s field %s: %v", fault.ErrPersistence, id, field, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
