// internal/config/model.go
//
// Typed configuration model for Sitewright.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `conf/.env`                        – dotenv values,
//   • `conf/global.yaml`                          – primary static file,
//   • `SITEWRIGHT_`-prefixed environment overrides – highest precedence.
//
// Any value written as `vault:<mount>/<path>#<key>` is resolved through the
// secrets client *after* unmarshalling, so the model never stores Vault
// URIs—only plain strings.
//
// Validation happens immediately after resolution; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml` tags
//     unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.

package config

//
// HTTP section
//

// HTTP holds web-server tunables.  SessionSecret signs the session cookie;
// DevLogin enables the password-less login endpoint on development boxes.
type HTTP struct {
	ListenAddr    string `koanf:"listen_addr"    validate:"required,hostname_port"`
	ForceHTTPS    bool   `koanf:"force_https"`
	Production    bool   `koanf:"production"`
	DevLogin      bool   `koanf:"dev_login"`
	SessionSecret string `koanf:"session_secret" validate:"required"`
}

//
// Database section
//

// Database holds the MySQL DSN for the users/sites schema.
type Database struct {
	DSN string `koanf:"dsn" validate:"required"`
}

//
// Storage section
//

// Storage configures the S3-compatible object store.  PublicDomain is the
// suffix of public asset URLs: https://<bucket>.<public_domain>/<key>.
// Endpoint is optional and points the SDK at MinIO or another compatible
// store during development.
type Storage struct {
	Region       string `koanf:"region"        validate:"required"`
	Endpoint     string `koanf:"endpoint"`
	AccessKey    string `koanf:"access_key"    validate:"required"`
	SecretKey    string `koanf:"secret_key"    validate:"required"`
	PublicDomain string `koanf:"public_domain" validate:"required,fqdn"`
}

//
// Generator section
//

// Generator configures the outbound generative-API adapter.  TextURL serves
// chat completions, ImageURL text-to-image.  MaxImageDim caps requested
// width/height before dispatch.
type Generator struct {
	TextURL     string `koanf:"text_url"  validate:"required,url"`
	ImageURL    string `koanf:"image_url" validate:"required,url"`
	APIKey      string `koanf:"api_key"   validate:"required"`
	TextModel   string `koanf:"text_model"`
	MaxImageDim int    `koanf:"max_image_dim"`
}

//
// Credits section
//

// Credits holds the per-endpoint admission thresholds.  A user must hold
// strictly more credits than the threshold to pass the gate.  ChargeListing
// preserves the legacy behavior of GET /api/sites costing one credit.
type Credits struct {
	PromoThreshold int  `koanf:"promo_threshold"`
	ChargeListing  bool `koanf:"charge_listing"`
}

//
// Mail section
//

// Mail configures the SMTP relay used by the contact and review endpoints.
type Mail struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	From     string `koanf:"from"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime—never set in YAML or env.
type Paths struct {
	Root string // SITEWRIGHT_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP      HTTP      `koanf:"http"`
	Database  Database  `koanf:"database"`
	Storage   Storage   `koanf:"storage"`
	Generator Generator `koanf:"generator"`
	Credits   Credits   `koanf:"credits"`
	Mail      Mail      `koanf:"mail"`
	Paths     Paths     `koanf:"-"`
}
