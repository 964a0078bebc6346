package ugclient

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/fivetwenty-io/usergrid-client/internal/logging"
	"github.com/fivetwenty-io/usergrid-client/internal/store"
	"github.com/fivetwenty-io/usergrid-client/pkg/usergrid"
)

// EnvConfig holds client settings read from USERGRID_* variables.
type EnvConfig struct {
	BaseURL string `env:"USERGRID_BASE_URL" envDefault:"https://api.usergrid.com"`
	OrgID   string `env:"USERGRID_ORG_ID"`
	AppID   string `env:"USERGRID_APP_ID"`

	// AuthMode is one of user, app or none.
	AuthMode     string `env:"USERGRID_AUTH_MODE" envDefault:"user"`
	ClientID     string `env:"USERGRID_CLIENT_ID"`
	ClientSecret string `env:"USERGRID_CLIENT_SECRET"`
	Username     string `env:"USERGRID_USERNAME"`
	Password     string `env:"USERGRID_PASSWORD"`
	AccessToken  string `env:"USERGRID_ACCESS_TOKEN"`

	HTTPTimeout time.Duration `env:"USERGRID_HTTP_TIMEOUT" envDefault:"30s"`
	RetryMax    int           `env:"USERGRID_RETRY_MAX" envDefault:"0"`
	Debug       bool          `env:"USERGRID_DEBUG" envDefault:"false"`

	// Environment selects the log encoding: production logs JSON.
	Environment string `env:"USERGRID_ENVIRONMENT" envDefault:"production"`

	// Store selects credential persistence: none, memory, bolt, file or nats.
	Store      string        `env:"USERGRID_STORE" envDefault:"none"`
	StorePath  string        `env:"USERGRID_STORE_PATH"`
	NATSURL    string        `env:"USERGRID_NATS_URL"`
	NATSBucket string        `env:"USERGRID_NATS_BUCKET" envDefault:"usergrid-credentials"`
	NATSTTL    time.Duration `env:"USERGRID_NATS_TTL" envDefault:"0s"`
}

// ConfigFromEnv loads a .env file if present, then reads USERGRID_*
// variables from the process environment.
func ConfigFromEnv() (*usergrid.Config, error) {
	_ = godotenv.Load()

	envConfig, err := ParseEnv(nil)
	if err != nil {
		return nil, err
	}

	return envConfig.Config()
}

// ConfigFromEnvFile reads USERGRID_* variables from a dotenv file only.
func ConfigFromEnvFile(path string) (*usergrid.Config, error) {
	environ, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading env file: %w", err)
	}

	envConfig, err := ParseEnv(environ)
	if err != nil {
		return nil, err
	}

	return envConfig.Config()
}

// ParseEnv parses environ, or the process environment when environ is nil.
func ParseEnv(environ map[string]string) (*EnvConfig, error) {
	cfg := &EnvConfig{}

	err := env.ParseWithOptions(cfg, env.Options{Environment: environ})
	if err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Config builds a client configuration, opening the selected credential
// store and logger.
func (e *EnvConfig) Config() (*usergrid.Config, error) {
	if e.OrgID == "" {
		return nil, usergrid.ErrOrgIDRequired
	}

	if e.AppID == "" {
		return nil, usergrid.ErrAppIDRequired
	}

	logger, err := logging.NewLogger(e.Environment, e.Debug)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	credentials, err := e.credentialStore()
	if err != nil {
		return nil, fmt.Errorf("opening credential store: %w", err)
	}

	return &usergrid.Config{
		BaseURL:         e.BaseURL,
		OrgID:           e.OrgID,
		AppID:           e.AppID,
		AuthMode:        usergrid.ParseAuthMode(e.AuthMode),
		ClientID:        e.ClientID,
		ClientSecret:    e.ClientSecret,
		Username:        e.Username,
		Password:        e.Password,
		AccessToken:     e.AccessToken,
		HTTPTimeout:     e.HTTPTimeout,
		RetryMax:        e.RetryMax,
		Debug:           e.Debug,
		Logger:          logger,
		CredentialStore: credentials,
	}, nil
}

func (e *EnvConfig) credentialStore() (usergrid.CredentialStore, error) {
	storeType := store.Type(e.Store)
	if storeType == store.TypeNone || storeType == "" {
		return nil, nil
	}

	config := &store.Config{
		Type: storeType,
		Path: e.StorePath,
	}

	if storeType == store.TypeNATS {
		config.NATS = &store.NATSConfig{
			URL:    e.NATSURL,
			Bucket: e.NATSBucket,
			TTL:    e.NATSTTL,
		}
	}

	credentials, err := store.New(config)
	if err != nil {
		return nil, fmt.Errorf("creating %s store: %w", storeType, err)
	}

	return credentials, nil
}
