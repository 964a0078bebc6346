package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fivetwenty-io/usergrid-client/internal/constants"
	"github.com/fivetwenty-io/usergrid-client/internal/logging"
	"github.com/fivetwenty-io/usergrid-client/internal/store"
	"github.com/fivetwenty-io/usergrid-client/pkg/ugclient"
	"github.com/fivetwenty-io/usergrid-client/pkg/usergrid"
	"github.com/spf13/viper"
)

// CreateClient builds a client for the configured application. Tokens are
// restored from and saved to the configured credential store. The returned
// function releases the store.
func CreateClient(ctx context.Context) (usergrid.Client, func(), error) {
	config := loadConfig()

	clientConfig, err := buildClientConfig(config)
	if err != nil {
		return nil, nil, err
	}

	credentials, err := openCredentialStore(config)
	if err != nil {
		return nil, nil, err
	}

	clientConfig.CredentialStore = credentials

	closeStore := func() {
		_ = ugclient.Close(clientConfig)
	}

	client, err := ugclient.New(ctx, clientConfig)
	if err != nil {
		closeStore()

		return nil, nil, err
	}

	return client, closeStore, nil
}

func buildClientConfig(config *Config) (*usergrid.Config, error) {
	if config.Org == "" {
		return nil, constants.ErrNoOrgConfigured
	}

	if config.App == "" {
		return nil, constants.ErrNoAppConfigured
	}

	verbose := viper.GetBool("verbose")

	environment := "production"
	if verbose {
		environment = "development"
	}

	logger, err := logging.NewLogger(environment, verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	authMode := usergrid.AuthModeUser
	if config.AuthMode != "" {
		authMode = usergrid.ParseAuthMode(config.AuthMode)
	}

	return &usergrid.Config{
		BaseURL:     config.BaseURL,
		OrgID:       config.Org,
		AppID:       config.App,
		AuthMode:    authMode,
		ClientID:    config.ClientID,
		AccessToken: viper.GetString("token"),
		Debug:       verbose,
		Logger:      logger,
		UserAgent:   "ug-cli",
	}, nil
}

// openCredentialStore opens the token store named by config. The default
// is a bbolt database in ~/.ug.
func openCredentialStore(config *Config) (usergrid.CredentialStore, error) {
	storeType := store.Type(config.Store)
	if storeType == "" {
		storeType = store.TypeBolt
	}

	path := config.StorePath
	if path == "" && storeType == store.TypeBolt {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}

		path = filepath.Join(dir, credentialsDB)
	}

	credentials, err := store.New(&store.Config{Type: storeType, Path: path})
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}

	return credentials, nil
}
