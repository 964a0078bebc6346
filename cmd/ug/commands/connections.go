package commands

import (
	"fmt"

	"github.com/fivetwenty-io/usergrid-client/pkg/usergrid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewConnectCommand creates the connect command.
func NewConnectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "connect TYPE UUID_OR_NAME RELATIONSHIP TO_TYPE TO_UUID_OR_NAME",
		Short: "Connect two entities",
		Long:  "Create a named connection from one entity to another",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, closeClient, err := CreateClient(ctx)
			if err != nil {
				return err
			}
			defer closeClient()

			_, err = client.Connect(ctx, args[0], args[1], args[2], args[3], args[4])
			if err != nil {
				return fmt.Errorf("failed to connect %s/%s: %w", args[0], args[1], err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Connected %s/%s %s %s/%s\n", args[0], args[1], args[2], args[3], args[4])

			return nil
		},
	}
}

// NewDisconnectCommand creates the disconnect command.
func NewDisconnectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect TYPE UUID_OR_NAME RELATIONSHIP TO_TYPE TO_UUID_OR_NAME",
		Short: "Disconnect two entities",
		Long:  "Remove a named connection between two entities",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, closeClient, err := CreateClient(ctx)
			if err != nil {
				return err
			}
			defer closeClient()

			_, err = client.Disconnect(ctx, args[0], args[1], args[2], args[3], args[4])
			if err != nil {
				return fmt.Errorf("failed to disconnect %s/%s: %w", args[0], args[1], err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Disconnected %s/%s %s %s/%s\n", args[0], args[1], args[2], args[3], args[4])

			return nil
		},
	}
}

// NewConnectionsCommand creates the connections command.
func NewConnectionsCommand() *cobra.Command {
	var (
		incoming bool
		ql       string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "connections TYPE UUID_OR_NAME RELATIONSHIP",
		Short: "List connected entities",
		Long:  "List the entities an entity connects to, or with --in the entities connecting to it",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, closeClient, err := CreateClient(ctx)
			if err != nil {
				return err
			}
			defer closeClient()

			query := usergrid.NewQuery().Limit(limit).QL(ql)

			resp, err := client.GetConnections(ctx, connectionDirection(incoming), args[0], args[1], args[2], query)
			if err != nil {
				return fmt.Errorf("failed to list %s connections of %s/%s: %w", args[2], args[0], args[1], err)
			}

			return renderResponse(cmd.OutOrStdout(), resp, viper.GetString("output"))
		},
	}

	cmd.Flags().BoolVar(&incoming, "in", false, "list entities connecting to this one")
	cmd.Flags().StringVarP(&ql, "ql", "q", "", "where clause filter")
	cmd.Flags().IntVarP(&limit, "limit", "l", usergrid.DefaultQueryLimit, "entities per page")

	return cmd
}

func connectionDirection(incoming bool) usergrid.Direction {
	if incoming {
		return usergrid.DirectionConnecting
	}

	return usergrid.DirectionConnections
}
