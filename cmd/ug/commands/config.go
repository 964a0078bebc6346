package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fivetwenty-io/usergrid-client/internal/constants"
	"github.com/fivetwenty-io/usergrid-client/pkg/usergrid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	configDirName  = ".ug"
	configFileName = "config.yml"
	credentialsDB  = "credentials.db"
)

// Config represents the CLI configuration.
type Config struct {
	BaseURL  string `json:"base_url"            yaml:"base_url"`
	Org      string `json:"org"                 yaml:"org"`
	App      string `json:"app"                 yaml:"app"`
	AuthMode string `json:"auth_mode,omitempty" yaml:"auth_mode,omitempty"`
	ClientID string `json:"client_id,omitempty" yaml:"client_id,omitempty"`
	Output   string `json:"output"              yaml:"output"`

	// Store is where tokens are kept between runs: bolt, file or none.
	Store     string `json:"store,omitempty"      yaml:"store,omitempty"`
	StorePath string `json:"store_path,omitempty" yaml:"store_path,omitempty"`
}

// configKeys lists the keys accepted by config set and unset.
var configKeys = []string{"base_url", "org", "app", "auth_mode", "client_id", "output", "store", "store_path"}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage the target application and settings of the ug CLI",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the current CLI configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return renderConfig(cmd.OutOrStdout(), loadConfig(), viper.GetString("output"))
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value. Keys: " + strings.Join(configKeys, ", "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := setConfigValue(config, args[0], args[1])
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s to %s\n", args[0], args[1])

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := setConfigValue(config, args[0], "")
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", args[0])

			return nil
		},
	}
}

func loadConfig() *Config {
	return &Config{
		BaseURL:   viper.GetString("base_url"),
		Org:       viper.GetString("org"),
		App:       viper.GetString("app"),
		AuthMode:  viper.GetString("auth_mode"),
		ClientID:  viper.GetString("client_id"),
		Output:    viper.GetString("output"),
		Store:     viper.GetString("store"),
		StorePath: viper.GetString("store_path"),
	}
}

// setConfigValue sets key on config. An empty value clears it.
func setConfigValue(config *Config, key, value string) error {
	switch key {
	case "base_url":
		config.BaseURL = strings.TrimSuffix(value, "/")
	case "org":
		config.Org = value
	case "app":
		config.App = value
	case "auth_mode":
		if value != "" && usergrid.ParseAuthMode(value) == usergrid.AuthModeNone && value != "none" {
			return fmt.Errorf("%w: auth_mode must be user, app or none", constants.ErrUnknownConfigKey)
		}

		config.AuthMode = value
	case "client_id":
		config.ClientID = value
	case "output":
		err := validateOutputFormat(value)
		if err != nil {
			return err
		}

		config.Output = value
	case "store":
		config.Store = value
	case "store_path":
		config.StorePath = value
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	return nil
}

func validateOutputFormat(format string) error {
	switch format {
	case "", constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
		return nil
	default:
		return fmt.Errorf("%w: %s", constants.ErrInvalidOutputFormat, format)
	}
}

// configDir returns ~/.ug, creating it if needed.
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	dir := filepath.Join(home, configDirName)

	err = os.MkdirAll(dir, constants.ConfigDirPerm)
	if err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return dir, nil
}

func saveConfigStruct(config *Config) error {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		dir, err := configDir()
		if err != nil {
			return err
		}

		configFile = filepath.Join(dir, configFileName)
	}

	err := writeConfigFile(configFile, config)
	if err != nil {
		return err
	}

	viper.Set("base_url", config.BaseURL)
	viper.Set("org", config.Org)
	viper.Set("app", config.App)
	viper.Set("auth_mode", config.AuthMode)
	viper.Set("client_id", config.ClientID)
	viper.Set("output", config.Output)
	viper.Set("store", config.Store)
	viper.Set("store_path", config.StorePath)

	return nil
}

func writeConfigFile(path string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = os.WriteFile(path, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func renderConfig(w io.Writer, config *Config, format string) error {
	switch format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		return encoder.Encode(config)
	case constants.FormatYAML:
		return yaml.NewEncoder(w).Encode(config)
	}

	table := tablewriter.NewWriter(w)
	table.Header("Property", "Value")

	_ = table.Append("Base URL", valueOrNA(config.BaseURL))
	_ = table.Append("Org", valueOrNA(config.Org))
	_ = table.Append("App", valueOrNA(config.App))
	_ = table.Append("Auth mode", valueOrNA(config.AuthMode))
	_ = table.Append("Client ID", valueOrNA(config.ClientID))
	_ = table.Append("Output", valueOrNA(config.Output))
	_ = table.Append("Store", valueOrNA(config.Store))
	_ = table.Append("Store path", valueOrNA(config.StorePath))

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func valueOrNA(value string) string {
	if value == "" {
		return constants.NotAvailable
	}

	return value
}
