// cmd/web/main.go
//
// Sitewright – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Start daily rotating logger (tees to console when running in a TTY).
//
//  2. Connect to Vault when VAULT_ADDR is set, then load and validate the
//     layered configuration (conf/.env → conf/global.yaml → env overrides).
//
//  3. Open the MySQL pool and apply the embedded schema migrations.
//
//  4. Wire the domain services: credit ledger, object-store provisioner,
//     generative-API adapter, site registry, provisioning orchestrator, and
//     the SMTP mailer.
//
//  5. Mount /metrics and the /api router behind the request-log and
//     security-header middleware, optionally forcing HTTPS.
//
//  6. Serve until SIGINT/SIGTERM, then drain in-flight requests.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sitewright/sitewright/internal/api"
	"github.com/sitewright/sitewright/internal/config"
	"github.com/sitewright/sitewright/internal/database"
	"github.com/sitewright/sitewright/internal/generator"
	"github.com/sitewright/sitewright/internal/ledger"
	"github.com/sitewright/sitewright/internal/logger"
	"github.com/sitewright/sitewright/internal/mailer"
	"github.com/sitewright/sitewright/internal/middleware"
	"github.com/sitewright/sitewright/internal/provision"
	"github.com/sitewright/sitewright/internal/registry"
	"github.com/sitewright/sitewright/internal/secrets"
	"github.com/sitewright/sitewright/internal/session"
	"github.com/sitewright/sitewright/internal/storage"
)

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	ctx := context.Background()

	rootDir, _ := os.Getwd()
	logOut, err := logger.New(rootDir, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer logOut.Sync() //nolint:errcheck

	//
	// ── 1.  Secrets and configuration ───────────────────────────────────
	//
	sec, err := secrets.New(ctx)
	if err != nil {
		logOut.Fatalf("connect vault: %v", err)
	}

	cfg, err := config.Load(ctx, sec)
	if err != nil {
		logOut.Fatalf("load config: %v", err)
	}

	//
	// ── 2.  Database connect + migrations ───────────────────────────────
	//
	logOut.Infow("connecting to database")
	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		logOut.Fatalf("connect database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logOut.Fatalf("apply migrations: %v", err)
	}
	logOut.Infow("database online")

	//
	// ── 3.  Domain services ─────────────────────────────────────────────
	//
	store, err := storage.New(ctx, storage.Config{
		Region:       cfg.Storage.Region,
		Endpoint:     cfg.Storage.Endpoint,
		AccessKey:    cfg.Storage.AccessKey,
		SecretKey:    cfg.Storage.SecretKey,
		PublicDomain: cfg.Storage.PublicDomain,
	})
	if err != nil {
		logOut.Fatalf("connect object store: %v", err)
	}

	gen := generator.New(generator.Config{
		TextURL:     cfg.Generator.TextURL,
		ImageURL:    cfg.Generator.ImageURL,
		APIKey:      cfg.Generator.APIKey,
		TextModel:   cfg.Generator.TextModel,
		MaxImageDim: cfg.Generator.MaxImageDim,
	})

	credits := ledger.New(db)
	sites := registry.New(db)
	prov := provision.New(credits, store, gen, sites)
	mail := mailer.New(mailer.Config{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
	})

	//
	// ── 4.  Router ──────────────────────────────────────────────────────
	//
	server := api.New(api.Deps{
		Config:   cfg,
		Sessions: session.NewManager(cfg.HTTP.SessionSecret),
		Users:    api.SQLUsers{DB: db},
		Ledger:   credits,
		Gen:      gen,
		Prov:     prov,
		Sites:    sites,
		Store:    store,
		Mail:     mail,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestLog)
	r.Use(middleware.Security)
	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/", server.Router())

	var handler http.Handler = r
	if cfg.HTTP.ForceHTTPS {
		handler = middleware.ForceHTTPS(handler)
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// Generation calls are slow; keep write generous.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	//
	// ── 5.  Serve until signalled, then drain ───────────────────────────
	//
	errCh := make(chan error, 1)
	go func() {
		logOut.Infow("listening", "addr", cfg.HTTP.ListenAddr)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logOut.Infow("shutting down", "signal", sig.String())
	case err := <-errCh:
		logOut.Fatalf("serve: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logOut.Errorw("shutdown incomplete", "err", err)
	}
	logOut.Infow("stopped")
}
