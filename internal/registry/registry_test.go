// internal/registry/registry_test.go
//
// Unit-tests for the site registry using sqlmock.
//
// Run: go test ./internal/registry -v

package registry

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/sitewright/sitewright/internal/assemble"
	"github.com/sitewright/sitewright/internal/fault"
)

func newRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(sqlx.NewDb(db, "mysql")), mock
}

func sampleTime() time.Time {
	return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
}

func siteColumns() []string {
	return []string{"id", "bucket_name", "owner_id", "content", "href", "created_at", "updated_at"}
}

func TestInsert_AssignsIDAndPersists(t *testing.T) {
	r, mock := newRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO site (id, bucket_name, owner_id, content, href) VALUES (?, ?, ?, ?, ?);`)).
		WithArgs(sqlmock.AnyArg(), "acmeco-u1", "u1", sqlmock.AnyArg(), "https://acmeco-u1.sites.example.com/index.html").
		WillReturnResult(sqlmock.NewResult(1, 1))

	site := &Site{
		BucketName: "acmeco-u1",
		OwnerID:    "u1",
		Content:    assemble.SiteContent{Title: "Acme Co"},
		Href:       "https://acmeco-u1.sites.example.com/index.html",
	}
	if err := r.Insert(context.Background(), site); err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if site.ID == "" {
		t.Fatal("Insert did not assign an id")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestInsert_FailureIsPersistenceFault(t *testing.T) {
	r, mock := newRepo(t)

	mock.ExpectExec("INSERT INTO site").
		WillReturnError(errors.New("connection reset"))

	err := r.Insert(context.Background(), &Site{BucketName: "acmeco-u1", OwnerID: "u1"})
	if !errors.Is(err, fault.ErrPersistence) {
		t.Fatalf("err = %v, want ErrPersistence", err)
	}
}

func TestByBucketAndOwner_DecodesContent(t *testing.T) {
	r, mock := newRepo(t)

	content := []byte(`{"title":"Acme Co","heroTitle":"Build something great"}`)
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, bucket_name, owner_id, content, href, created_at, updated_at FROM site WHERE bucket_name = ? AND owner_id = ? LIMIT 1;`)).
		WithArgs("acmeco-u1", "u1").
		WillReturnRows(sqlmock.NewRows(siteColumns()).
			AddRow("s1", "acmeco-u1", "u1", content, "https://acmeco-u1.sites.example.com/index.html",
				sampleTime(), sampleTime()))

	site, err := r.ByBucketAndOwner(context.Background(), "acmeco-u1", "u1")
	if err != nil {
		t.Fatalf("ByBucketAndOwner error: %v", err)
	}
	if site.Content.Title != "Acme Co" || site.Content.HeroTitle != "Build something great" {
		t.Fatalf("content not decoded: %+v", site.Content)
	}
}

func TestByBucketAndOwner_NotFound(t *testing.T) {
	r, mock := newRepo(t)

	mock.ExpectQuery("SELECT .* FROM site").
		WithArgs("ghost-u1", "u1").
		WillReturnRows(sqlmock.NewRows(siteColumns()))

	_, err := r.ByBucketAndOwner(context.Background(), "ghost-u1", "u1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestByOwner_ListsSites(t *testing.T) {
	r, mock := newRepo(t)

	mock.ExpectQuery("SELECT .* FROM site WHERE owner_id").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(siteColumns()).
			AddRow("s1", "acmeco-u1", "u1", []byte(`{"title":"Acme Co"}`), "h1", sampleTime(), sampleTime()).
			AddRow("s2", "betaco-u1", "u1", []byte(`{"title":"Beta Co"}`), "h2", sampleTime(), sampleTime()))

	sites, err := r.ByOwner(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ByOwner error: %v", err)
	}
	if len(sites) != 2 {
		t.Fatalf("got %d sites, want 2", len(sites))
	}
	if sites[1].Content.Title != "Beta Co" {
		t.Fatalf("second site content = %+v", sites[1].Content)
	}
}

func TestUpdateContentField_BuildsJSONPath(t *testing.T) {
	r, mock := newRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE site SET content = JSON_SET(content, ?, ?) WHERE id = ? AND owner_id = ?;`)).
		WithArgs("$.featureImageURL", "https://acmeco-u1.sites.example.com/uploads/1-a.png", "s1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := r.UpdateContentField(context.Background(), "s1", "u1",
		"featureImageURL", "https://acmeco-u1.sites.example.com/uploads/1-a.png")
	if err != nil {
		t.Fatalf("UpdateContentField error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestUpdateContentField_UnknownSite(t *testing.T) {
	r, mock := newRepo(t)

	mock.ExpectExec("UPDATE site SET content").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := r.UpdateContentField(context.Background(), "ghost", "u1", "featureImageURL", "x")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
