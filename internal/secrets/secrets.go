// internal/secrets/secrets.go
//
// Vault-backed secret lookup.
//
// Context
// -------
//   - Wraps the HashiCorp Vault Go SDK behind a small, concurrency-safe
//     client with per-key TTL caching.
//   - Config values written as `vault:<mount>/<path>#<key>` are resolved
//     through Resolve(); plain values pass through untouched, so development
//     boxes without a Vault server keep working from .env alone.
//
// Public workflow
// ---------------
//  1. cli, err := secrets.New(ctx)                  // during boot, optional.
//  2. val, err := secrets.Resolve(ctx, cli, raw)    // per config field.
//
// Notes
// -----
// • VAULT_ADDR and VAULT_TOKEN come from the environment, as the SDK expects.
// • Oxford commas, two spaces after periods.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	vault "github.com/hashicorp/vault/api"
)

// Prefix marks a config value as a Vault reference.
const Prefix = "vault:"

// Client is safe for concurrent use.  Zero value is invalid; construct with
// New.
type Client struct {
	api *vault.Client

	cacheMu sync.RWMutex
	cache   map[string]cached // "<path>#<key>" → value + expiry
	ttl     time.Duration
}

type cached struct {
	val string
	exp time.Time
}

// New constructs a Vault client from the environment.  It returns (nil, nil)
// when VAULT_ADDR is unset, which callers treat as “no Vault configured”.
func New(_ context.Context) (*Client, error) {
	if os.Getenv("VAULT_ADDR") == "" {
		return nil, nil
	}

	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env cfg: %w", err)
	}

	apiCli, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}
	if tok := os.Getenv("VAULT_TOKEN"); tok != "" {
		apiCli.SetToken(tok)
	}

	return &Client{
		api:   apiCli,
		cache: make(map[string]cached),
		ttl:   5 * time.Minute,
	}, nil
}

// Resolve returns val unchanged unless it carries the vault: prefix, in which
// case the referenced KV-v2 key is fetched.  A vault: reference without a
// configured client is a hard error; silently running with a literal
// “vault:…” string as a credential would be worse.
func Resolve(ctx context.Context, c *Client, val string) (string, error) {
	if !strings.HasPrefix(val, Prefix) {
		return val, nil
	}
	if c == nil {
		return "", errors.New("config references Vault but VAULT_ADDR is not set")
	}

	ref := strings.TrimPrefix(val, Prefix)
	path, key, ok := strings.Cut(ref, "#")
	if !ok || path == "" || key == "" {
		return "", fmt.Errorf("malformed vault reference %q", val)
	}
	return c.getKV(ctx, path, key)
}

// getKV fetches one key from a KV-v2 secret, caching the result for the
// client's TTL.
func (c *Client) getKV(ctx context.Context, secretPath, key string) (string, error) {
	canonical := secretPath + "#" + key

	c.cacheMu.RLock()
	if cv, ok := c.cache[canonical]; ok && time.Now().Before(cv.exp) {
		c.cacheMu.RUnlock()
		return cv.val, nil
	}
	c.cacheMu.RUnlock()

	mount, rel, _ := strings.Cut(secretPath, "/")
	sec, err := c.api.KVv2(mount).Get(ctx, rel)
	if err != nil {
		return "", fmt.Errorf("vault get %s: %w", secretPath, err)
	}

	raw, ok := sec.Data[key]
	if !ok {
		return "", fmt.Errorf("key %q not found in secret %q", key, secretPath)
	}
	sval, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("value at %s is not a string", canonical)
	}

	c.cacheMu.Lock()
	c.cache[canonical] = cached{val: sval, exp: time.Now().Add(c.ttl)}
	c.cacheMu.Unlock()

	return sval, nil
}
