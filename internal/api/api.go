// internal/api/api.go
//
// HTTP surface: router construction, shared dependencies, and the JSON
// plumbing every handler uses.
//
// Context
// -------
// All inbound endpoints live under /api and speak JSON (upload-image is the
// one multipart exception).  Handlers depend on narrow interfaces rather
// than concrete collaborators, so the tests run against in-memory fakes.
// Authentication is the signed session cookie; requireUser resolves it to a
// user row once per request and parks it in the context.
//
// Error responses are {"error": msg} with the status from the fault
// taxonomy.  In production the message of an uncategorised error collapses
// to a generic line; the full cause still lands in the log.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/sitewright/sitewright/internal/assemble"
	"github.com/sitewright/sitewright/internal/config"
	"github.com/sitewright/sitewright/internal/fault"
	"github.com/sitewright/sitewright/internal/generator"
	"github.com/sitewright/sitewright/internal/middleware"
	"github.com/sitewright/sitewright/internal/provision"
	"github.com/sitewright/sitewright/internal/registry"
	"github.com/sitewright/sitewright/internal/session"
	"github.com/sitewright/sitewright/internal/user"
)

/*──────────────────────── collaborator interfaces ────────────────────────*/

// Ledger is the credit gate and commit surface.
type Ledger interface {
	Eligible(ctx context.Context, userID string, threshold int) (int, error)
	Committed(ctx context.Context, userID, requestID string) (bool, error)
	Commit(ctx context.Context, userID, requestID string) (int, error)
	Refund(ctx context.Context, userID string) error
}

// Generator produces text and images through the external APIs.
type Generator interface {
	Image(ctx context.Context, prompt string, opts generator.ImageOptions) ([]byte, int64, error)
	Text(ctx context.Context, systemPrompt, userPrompt string, opts generator.TextOptions) (string, error)
}

// Provisioner runs the full site-creation pipeline.
type Provisioner interface {
	CreateSite(ctx context.Context, owner *user.User, requestID string, content assemble.SiteContent) (*provision.Result, error)
}

// SiteStore is the slice of the registry the handlers need.
type SiteStore interface {
	ByOwner(ctx context.Context, ownerID string) ([]registry.Site, error)
	ByID(ctx context.Context, id, ownerID string) (*registry.Site, error)
	UpdateContentField(ctx context.Context, id, ownerID, field, value string) error
}

// Uploader puts objects into an existing site bucket (editor image swaps).
type Uploader interface {
	UploadObjects(ctx context.Context, bucket string, objects map[string][]byte) (map[string]string, error)
}

// Mailer relays visitor messages to site owners.
type Mailer interface {
	Send(to, subject, text string) error
}

// Users resolves and creates accounts.
type Users interface {
	ByEmail(ctx context.Context, email string) (*user.User, error)
	ByID(ctx context.Context, id string) (*user.User, error)
	Create(ctx context.Context, email, name string) (string, error)
}

// SQLUsers adapts the user package's repository functions to the Users
// interface.
type SQLUsers struct {
	DB *sqlx.DB
}

func (s SQLUsers) ByEmail(ctx context.Context, email string) (*user.User, error) {
	return user.ByEmail(ctx, s.DB, email)
}

func (s SQLUsers) ByID(ctx context.Context, id string) (*user.User, error) {
	return user.ByID(ctx, s.DB, id)
}

func (s SQLUsers) Create(ctx context.Context, email, name string) (string, error) {
	return user.Create(ctx, s.DB, email, name)
}

/*──────────────────────────── server ────────────────────────────*/

// Deps bundles everything the handlers touch.
type Deps struct {
	Config   *config.Config
	Sessions *session.Manager
	Users    Users
	Ledger   Ledger
	Gen      Generator
	Prov     Provisioner
	Sites    SiteStore
	Store    Uploader
	Mail     Mailer
}

// Server owns the /api handlers.
type Server struct {
	cfg      *config.Config
	sessions *session.Manager
	users    Users
	ledger   Ledger
	gen      Generator
	prov     Provisioner
	sites    SiteStore
	store    Uploader
	mail     Mailer
	validate *validator.Validate
	limiter  *middleware.RateLimiter
}

func New(d Deps) *Server {
	return &Server{
		cfg:      d.Config,
		sessions: d.Sessions,
		users:    d.Users,
		ledger:   d.Ledger,
		gen:      d.Gen,
		prov:     d.Prov,
		sites:    d.Sites,
		store:    d.Store,
		mail:     d.Mail,
		validate: validator.New(),
		limiter:  middleware.NewRateLimiter(0.5, 3),
	}
}

// Router mounts every endpoint.  Generation endpoints sit behind the
// per-user rate limiter on top of the credit gate.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", s.login)
		r.Post("/logout", s.logout)

		// Open endpoints called from provisioned sites on other origins.
		r.Options("/contact", s.corsPreflight)
		r.Post("/contact", s.contact)
		r.Options("/review", s.corsPreflight)
		r.Post("/review", s.review)
		r.Get("/download", s.download)

		r.Group(func(r chi.Router) {
			r.Use(s.requireUser)

			r.Get("/sites", s.listSites)
			r.Post("/upload-image", s.uploadImage)
			r.Post("/verify-credits", s.verifyCredits)

			r.Group(func(r chi.Router) {
				r.Use(s.limitGeneration)

				r.Post("/create-website", s.createWebsite)
				r.Post("/generate-logo", s.generateLogo)
				r.Post("/generate-content", s.generateContent)
				r.Post("/generate", s.generateGeneric)
				r.Post("/generate-brandnames", s.generateBrandnames)
				r.Post("/generate/card", s.generateCard)
				r.Post("/generate/letter", s.generateLetter)
			})
		})
	})

	return r
}

/*──────────────────────────── middleware ────────────────────────────*/

// requireUser resolves the session cookie to a user row and stashes it in
// the request context.  No session, unknown email, both 401.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, ok := s.sessions.Current(r)
		if !ok {
			s.fail(w, r, fault.ErrUnauthorized)
			return
		}

		u, err := s.users.ByEmail(r.Context(), email)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				s.fail(w, r, fault.ErrUnauthorized)
				return
			}
			s.fail(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(session.WithUser(r.Context(), u)))
	})
}

// limitGeneration rate-limits by session email.  It only runs inside the
// requireUser group, so the key is always present.
func (s *Server) limitGeneration(next http.Handler) http.Handler {
	return s.limiter.Wrap(func(r *http.Request) string {
		email, _ := s.sessions.Current(r)
		return email
	}, next)
}

/*──────────────────────────── JSON plumbing ────────────────────────────*/

func (s *Server) respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Errorw("response encode failed", "err", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := fault.Status(err)
	if status >= http.StatusInternalServerError {
		zap.S().Errorw("request failed", "path", r.URL.Path, "err", err)
	} else {
		zap.S().Infow("request rejected", "path", r.URL.Path, "status", status, "err", err)
	}
	s.respond(w, status, map[string]string{
		"error": fault.Public(err, s.cfg.HTTP.Production),
	})
}

// decode parses the JSON body into v and runs struct validation.  Both
// failure modes are fault.ErrValidation.
func (s *Server) decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed JSON body", fault.ErrValidation)
	}
	if err := s.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", fault.ErrValidation, err)
	}
	return nil
}

// currentUser pulls the user parked by requireUser.  Handlers behind that
// middleware can assume ok.
func currentUser(r *http.Request) *user.User {
	u, _ := session.UserFrom(r.Context())
	return u
}
