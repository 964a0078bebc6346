//go:build integration

package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWorkflow_EntityLifecycle creates, reads, connects and deletes entities through the CLI
func TestWorkflow_EntityLifecycle(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)
	config.SkipIfMissingBinary(t)

	runner := NewCommandRunner(config, t)
	require.NoError(t, runner.Login())

	petName := GenerateTestName("workflow-pet")
	ownerName := GenerateTestName("workflow-owner")

	defer func() {
		runner.CleanupEntity("pets", petName)
		runner.CleanupEntity("owners", ownerName)
	}()

	// 1. Create entities
	stdout, stderr, err := runner.Run("create", "pets", "--data", `{"name":"`+petName+`","color":"black"}`)
	require.NoError(t, err, "Failed to create pet: %s", stderr)
	assert.Contains(t, stdout, petName)

	_, stderr, err = runner.Run("create", "owners", "--data", `{"name":"`+ownerName+`"}`)
	require.NoError(t, err, "Failed to create owner: %s", stderr)

	// 2. Read back with JSON output
	stdout, stderr, err = runner.Run("get", "pets", petName, "--output", "json")
	require.NoError(t, err, "Failed to get pet: %s", stderr)
	AssertJSONOutput(t, stdout)
	assert.Contains(t, stdout, "black")

	// 3. Update
	_, stderr, err = runner.Run("update", "pets", petName, "--data", `{"color":"brown"}`)
	require.NoError(t, err, "Failed to update pet: %s", stderr)

	stdout, stderr, err = runner.Run("query", "pets", "name = '"+petName+"'", "--output", "yaml")
	require.NoError(t, err, "Failed to query pets: %s", stderr)
	AssertYAMLOutput(t, stdout)
	assert.Contains(t, stdout, "brown")

	// 4. Connect, list and disconnect
	_, stderr, err = runner.Run("connect", "owners", ownerName, "owns", "pets", petName)
	require.NoError(t, err, "Failed to connect: %s", stderr)

	stdout, stderr, err = runner.Run("connections", "owners", ownerName, "owns")
	require.NoError(t, err, "Failed to list connections: %s", stderr)
	assert.Contains(t, stdout, petName)

	stdout, stderr, err = runner.Run("connections", "pets", petName, "owns", "--in")
	require.NoError(t, err, "Failed to list incoming connections: %s", stderr)
	assert.Contains(t, stdout, ownerName)

	_, stderr, err = runner.Run("disconnect", "owners", ownerName, "owns", "pets", petName)
	require.NoError(t, err, "Failed to disconnect: %s", stderr)

	// 5. Delete
	stdout, stderr, err = runner.Run("delete", "pets", petName)
	require.NoError(t, err, "Failed to delete pet: %s", stderr)
	assert.Contains(t, stdout, "Deleted 1 entities")
}

// TestWorkflow_ErrorScenarios checks failures are reported, not swallowed
func TestWorkflow_ErrorScenarios(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)
	config.SkipIfMissingBinary(t)

	runner := NewCommandRunner(config, t)

	_, stderr, err := runner.Run("get", "pets", GenerateTestName("missing"))
	require.Error(t, err)
	assert.Contains(t, stderr, "failed to get pets")

	_, _, err = runner.Run("create", "pets", "--data", "[1,2,3]")
	require.Error(t, err)

	_, stderr, err = runner.Run("delete", "pets", "--ql", "color = 'black'")
	require.Error(t, err)
	assert.Contains(t, stderr, "confirmation required")
}

// TestWorkflow_OutputFormats checks every output format parses
func TestWorkflow_OutputFormats(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)
	config.SkipIfMissingBinary(t)

	runner := NewCommandRunner(config, t)

	stdout, stderr, err := runner.Run("version", "--output", "json")
	require.NoError(t, err, "Failed to get version: %s", stderr)
	AssertJSONOutput(t, stdout)

	stdout, stderr, err = runner.Run("config", "show", "--output", "yaml")
	require.NoError(t, err, "Failed to show config: %s", stderr)
	AssertYAMLOutput(t, stdout)
	assert.Contains(t, stdout, config.AppID)
}
