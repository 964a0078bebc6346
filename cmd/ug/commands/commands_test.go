package commands

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigCommand(t *testing.T) {
	t.Parallel()

	cmd := NewConfigCommand()
	assert.Equal(t, "config", cmd.Use)
	assert.Equal(t, "Manage CLI configuration", cmd.Short)

	subcommands := cmd.Commands()
	assert.Len(t, subcommands, 3)

	var commandNames []string
	for _, subcmd := range subcommands {
		commandNames = append(commandNames, subcmd.Name())
	}

	assert.Contains(t, commandNames, "show")
	assert.Contains(t, commandNames, "set")
	assert.Contains(t, commandNames, "unset")
}

func TestNewGetCommand(t *testing.T) {
	t.Parallel()

	cmd := NewGetCommand()
	assert.Equal(t, "get TYPE [UUID_OR_NAME]", cmd.Use)
	assert.NotNil(t, cmd.RunE)
	require.NoError(t, cmd.Args(cmd, []string{"pets"}))
	require.NoError(t, cmd.Args(cmd, []string{"pets", "fido"}))
	require.Error(t, cmd.Args(cmd, []string{}))
	require.Error(t, cmd.Args(cmd, []string{"pets", "fido", "extra"}))

	limitFlag := cmd.Flags().Lookup("limit")
	require.NotNil(t, limitFlag)
	assert.Equal(t, "l", limitFlag.Shorthand)
	assert.Equal(t, "10", limitFlag.DefValue)
	assert.NotNil(t, cmd.Flags().Lookup("ql"))
	assert.NotNil(t, cmd.Flags().Lookup("all"))
}

func TestBodyCommands(t *testing.T) {
	t.Parallel()

	for _, cmd := range []*cobra.Command{NewCreateCommand(), NewUpdateCommand()} {
		for _, flagName := range []string{"data", "file"} {
			assert.NotNil(t, cmd.Flags().Lookup(flagName), "Flag %s should exist on %s", flagName, cmd.Name())
		}
	}

	update := NewUpdateCommand()
	assert.NotNil(t, update.Flags().Lookup("ql"))
}

func TestNewDeleteCommand(t *testing.T) {
	t.Parallel()

	cmd := NewDeleteCommand()
	assert.Equal(t, "delete TYPE [UUID_OR_NAME]", cmd.Use)

	forceFlag := cmd.Flags().Lookup("force")
	require.NotNil(t, forceFlag)
	assert.Equal(t, "f", forceFlag.Shorthand)
	assert.Equal(t, "false", forceFlag.DefValue)
}

func TestDeleteCommand_RequiresTarget(t *testing.T) {
	t.Parallel()

	cmd := NewDeleteCommand()

	err := cmd.RunE(cmd, []string{"pets"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no entity given")

	require.NoError(t, cmd.Flags().Set("ql", "color = 'black'"))

	err = cmd.RunE(cmd, []string{"pets"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "confirmation required")
}

func TestConnectionCommands(t *testing.T) {
	t.Parallel()

	connect := NewConnectCommand()
	require.NoError(t, connect.Args(connect, []string{"users", "alice", "likes", "pets", "fido"}))
	require.Error(t, connect.Args(connect, []string{"users", "alice", "likes"}))

	disconnect := NewDisconnectCommand()
	require.NoError(t, disconnect.Args(disconnect, []string{"users", "alice", "likes", "pets", "fido"}))

	connections := NewConnectionsCommand()
	assert.Equal(t, "connections TYPE UUID_OR_NAME RELATIONSHIP", connections.Use)
	assert.NotNil(t, connections.Flags().Lookup("in"))

	assert.Equal(t, "connecting", string(connectionDirection(true)))
	assert.Equal(t, "connections", string(connectionDirection(false)))
}

func TestAuthCommands(t *testing.T) {
	t.Parallel()

	login := NewLoginCommand()
	assert.Equal(t, "login", login.Use)

	for _, flagName := range []string{"username", "password", "client-id", "client-secret"} {
		assert.NotNil(t, login.Flags().Lookup(flagName), "Flag %s should exist", flagName)
	}

	logout := NewLogoutCommand()
	assert.NotNil(t, logout.Flags().Lookup("all"))

	token := NewTokenCommand()
	assert.NotNil(t, findSubcommand(token, "status"))
	assert.NotNil(t, findSubcommand(token, "print"))

	users := NewUsersCommand()
	assert.Equal(t, []string{"user"}, users.Aliases)
	assert.NotNil(t, findSubcommand(users, "create"))
	assert.NotNil(t, findSubcommand(users, "available"))
}
