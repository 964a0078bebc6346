package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fivetwenty-io/usergrid-client/internal/constants"
	"github.com/fivetwenty-io/usergrid-client/pkg/usergrid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// NewLoginCommand creates the login command
func NewLoginCommand() *cobra.Command {
	var (
		username     string
		password     string
		clientID     string
		clientSecret string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login to a Usergrid application",
		Long:  "Authenticate as a user, or as the application with --client-id and --client-secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			config := loadConfig()
			appLogin := clientID != "" && clientSecret != ""

			if appLogin {
				config.AuthMode = usergrid.AuthModeApp.String()
				config.ClientID = clientID
			} else {
				config.AuthMode = usergrid.AuthModeUser.String()

				var err error

				username, err = promptLine(cmd.InOrStdin(), out, "Username: ", username)
				if err != nil {
					return err
				}

				if password == "" {
					password, err = promptPassword(out, "Password: ")
					if err != nil {
						return err
					}
				}
			}

			err := saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			client, closeClient, err := CreateClient(ctx)
			if err != nil {
				return err
			}
			defer closeClient()

			if appLogin {
				client.SetAppAuth(usergrid.NewAppAuth(clientID, clientSecret))

				_, err = client.AuthenticateApp(ctx, nil)
				if err != nil {
					return fmt.Errorf("failed to authenticate application: %w", err)
				}

				_, _ = fmt.Fprintf(out, "Logged in to %s as application %s\n", client.ClientAppURL(), clientID)

				return nil
			}

			_, err = client.AuthenticateUser(ctx, usergrid.NewUserAuth(username, password), true)
			if err != nil {
				return fmt.Errorf("failed to authenticate %s: %w", username, err)
			}

			_, _ = fmt.Fprintf(out, "Logged in to %s as %s\n", client.ClientAppURL(), username)

			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "username or email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	cmd.Flags().StringVar(&clientID, "client-id", "", "application client ID")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "application client secret")
	cmd.MarkFlagsRequiredTogether("client-id", "client-secret")

	return cmd
}

// NewLogoutCommand creates the logout command
func NewLogoutCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Logout from the Usergrid application",
		Long:  "Revoke the current user's token and forget it locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, closeClient, err := CreateClient(ctx)
			if err != nil {
				return err
			}
			defer closeClient()

			user := client.CurrentUser()
			if user == nil {
				return constants.ErrNotAuthenticated
			}

			if all {
				_, err = client.LogoutUserAllTokens(ctx, user.UUIDOrUsername())
			} else {
				_, err = client.LogoutCurrentUser(ctx)
			}

			if err != nil {
				return fmt.Errorf("failed to logout: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Successfully logged out")

			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "revoke every token of the current user")

	return cmd
}

// NewPasswdCommand creates the passwd command.
func NewPasswdCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "passwd",
		Short: "Change the current user's password",
		Long:  "Change the password of the logged in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			client, closeClient, err := CreateClient(ctx)
			if err != nil {
				return err
			}
			defer closeClient()

			user := client.CurrentUser()
			if user == nil {
				return constants.ErrNotAuthenticated
			}

			oldPassword, err := promptPassword(out, "Current password: ")
			if err != nil {
				return err
			}

			newPassword, err := promptPassword(out, "New password: ")
			if err != nil {
				return err
			}

			confirm, err := promptPassword(out, "Confirm new password: ")
			if err != nil {
				return err
			}

			if newPassword != confirm {
				return constants.ErrPasswordMismatch
			}

			_, err = client.ResetPassword(ctx, user, oldPassword, newPassword)
			if err != nil {
				return fmt.Errorf("failed to change password: %w", err)
			}

			_, _ = fmt.Fprintln(out, "Password changed")

			return nil
		},
	}
}

// promptLine returns value, or reads a line from in when value is empty.
func promptLine(in io.Reader, out io.Writer, prompt, value string) (string, error) {
	if value != "" {
		return value, nil
	}

	_, _ = fmt.Fprint(out, prompt)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	return strings.TrimSpace(line), nil
}

func promptPassword(out io.Writer, prompt string) (string, error) {
	_, _ = fmt.Fprint(out, prompt)

	bytePassword, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	_, _ = fmt.Fprintln(out)

	return string(bytePassword), nil
}
