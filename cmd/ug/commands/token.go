package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/fivetwenty-io/usergrid-client/internal/auth"
	"github.com/fivetwenty-io/usergrid-client/internal/constants"
	"github.com/fivetwenty-io/usergrid-client/pkg/usergrid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// TokenStatus describes the credential the CLI would send.
type TokenStatus struct {
	AuthMode  string     `json:"auth_mode"            yaml:"auth_mode"`
	Principal string     `json:"principal,omitempty"  yaml:"principal,omitempty"`
	Token     string     `json:"token,omitempty"      yaml:"token,omitempty"`
	Valid     bool       `json:"valid"                yaml:"valid"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
	ExpiresIn string     `json:"expires_in,omitempty" yaml:"expires_in,omitempty"`
	Source    string     `json:"source,omitempty"     yaml:"source,omitempty"`
}

// NewTokenCommand creates the token command group.
func NewTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage authentication tokens",
		Long:  "Commands for inspecting and using the stored authentication token",
	}

	cmd.AddCommand(newTokenStatusCommand())
	cmd.AddCommand(newTokenPrintCommand())

	return cmd
}

func newTokenStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show token status and expiration",
		Long:  "Display the credential used for requests and when it expires",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, closeClient, err := CreateClient(ctx)
			if err != nil {
				return err
			}
			defer closeClient()

			status := tokenStatus(client, time.Now())

			return renderTokenStatus(cmd.OutOrStdout(), status, viper.GetString("output"))
		},
	}
}

func newTokenPrintCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "print",
		Short: "Print the access token",
		Long:  "Print the access token used for requests, for use with other tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, closeClient, err := CreateClient(ctx)
			if err != nil {
				return err
			}
			defer closeClient()

			credential := client.AuthForRequests()
			if credential == nil {
				return constants.ErrNotAuthenticated
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), credential.AccessToken())

			return nil
		},
	}
}

// tokenStatus reports on the credential client resolves for requests.
// When the server never gave an expiry, the JWT exp claim is used.
func tokenStatus(client usergrid.Client, now time.Time) *TokenStatus {
	mode := client.AuthMode()
	status := &TokenStatus{AuthMode: mode.String()}

	var credential *usergrid.Auth

	switch mode {
	case usergrid.AuthModeUser:
		if user := client.CurrentUser(); user != nil {
			status.Principal = user.UsernameOrEmail()
		}

		if userAuth := client.UserAuth(); userAuth != nil {
			credential = userAuth.Auth
		}
	case usergrid.AuthModeApp:
		if appAuth := client.AppAuth(); appAuth != nil {
			status.Principal = appAuth.ClientID
			credential = appAuth.Auth
		}
	case usergrid.AuthModeNone:
		return status
	}

	if credential == nil || !credential.HasToken() {
		return status
	}

	token, expiry := credential.Snapshot()
	status.Token = maskToken(token)
	status.Valid = credential.IsValid()
	status.Source = "server"

	if expiry.IsZero() {
		status.Source = "none"

		if jwtExpiry, err := auth.TokenExpiration(token); err == nil {
			expiry = jwtExpiry
			status.Source = "jwt"
		}
	}

	if !expiry.IsZero() {
		status.ExpiresAt = &expiry
		status.ExpiresIn = formatRemaining(expiry.Sub(now))
	}

	return status
}

func maskToken(token string) string {
	if len(token) <= constants.TokenPrefixSize {
		return constants.MaskedSecret
	}

	return token[:constants.TokenPrefixSize] + constants.MaskedSecret
}

func formatRemaining(remaining time.Duration) string {
	if remaining <= 0 {
		return "expired"
	}

	return remaining.Truncate(time.Second).String()
}

func renderTokenStatus(w io.Writer, status *TokenStatus, format string) error {
	switch format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		return encoder.Encode(status)
	case constants.FormatYAML:
		return yaml.NewEncoder(w).Encode(status)
	}

	expiresAt := constants.NotAvailable
	if status.ExpiresAt != nil {
		expiresAt = status.ExpiresAt.Format(time.RFC3339)
	}

	table := tablewriter.NewWriter(w)
	table.Header("Property", "Value")

	_ = table.Append("Auth mode", status.AuthMode)
	_ = table.Append("Principal", valueOrNA(status.Principal))
	_ = table.Append("Token", valueOrNA(status.Token))
	_ = table.Append("Valid", fmt.Sprint(status.Valid))
	_ = table.Append("Expires at", expiresAt)
	_ = table.Append("Expires in", valueOrNA(status.ExpiresIn))
	_ = table.Append("Expiry source", valueOrNA(status.Source))

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}
