//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	BaseURL  string
	OrgID    string
	AppID    string
	Username string
	Password string
	UgPath   string
	Verbose  bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		BaseURL:  os.Getenv("USERGRID_BASE_URL"),
		OrgID:    os.Getenv("USERGRID_ORG_ID"),
		AppID:    os.Getenv("USERGRID_APP_ID"),
		Username: os.Getenv("USERGRID_USERNAME"),
		Password: os.Getenv("USERGRID_PASSWORD"),
		UgPath:   getUgPath(),
		Verbose:  os.Getenv("UG_VERBOSE") == "true",
	}
}

// getUgPath determines the path to the ug binary
func getUgPath() string {
	if path := os.Getenv("UG_BINARY_PATH"); path != "" {
		return path
	}

	for _, candidate := range []string{"../../ug", "./ug", "../ug"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "ug"
}

// SkipIfMissingConfig skips test if required config is missing
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.BaseURL == "" || config.OrgID == "" || config.AppID == "" {
		t.Skip("USERGRID_BASE_URL, USERGRID_ORG_ID or USERGRID_APP_ID not set, skipping integration test")
	}
}

// SkipIfMissingBinary skips test if the ug binary cannot be found
func (config *TestConfig) SkipIfMissingBinary(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath(config.UgPath); err != nil {
		t.Skipf("ug binary not found at %s, skipping integration test", config.UgPath)
	}
}

// CommandRunner runs ug with an isolated configuration file
type CommandRunner struct {
	config     *TestConfig
	configFile string
	t          *testing.T
}

// NewCommandRunner creates a command runner writing its config under t.TempDir
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	t.Helper()

	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yml")
	content := fmt.Sprintf("base_url: %s\norg: %s\napp: %s\nstore: bolt\nstore_path: %s\n",
		config.BaseURL, config.OrgID, config.AppID, filepath.Join(dir, "credentials.db"))
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0o600))

	return &CommandRunner{
		config:     config,
		configFile: configFile,
		t:          t,
	}
}

// Run executes a ug command and returns output
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	args = append([]string{"--config", runner.configFile}, args...)

	// #nosec G204
	cmd := exec.Command(runner.config.UgPath, args...)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.UgPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// Login logs in with the configured user, if any
func (runner *CommandRunner) Login() error {
	if runner.config.Username == "" {
		return nil
	}

	_, stderr, err := runner.Run("login", "--username", runner.config.Username, "--password", runner.config.Password)
	if err != nil {
		return fmt.Errorf("failed to login: %s", stderr)
	}

	return nil
}

// GenerateTestName creates a unique test resource name
func GenerateTestName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// CleanupEntity attempts to delete a test entity
func (runner *CommandRunner) CleanupEntity(entityType, name string) {
	stdout, stderr, err := runner.Run("delete", entityType, name)
	if err != nil && runner.config.Verbose {
		runner.t.Logf("Cleanup warning for %s %s: %s\nStderr: %s", entityType, name, stdout, stderr)
	}
}

// AssertJSONOutput fails unless output is valid JSON
func AssertJSONOutput(t *testing.T, output string) {
	t.Helper()

	var decoded interface{}
	require.NoError(t, json.Unmarshal([]byte(output), &decoded), "Output should be valid JSON")
}

// AssertYAMLOutput fails unless output is valid YAML
func AssertYAMLOutput(t *testing.T, output string) {
	t.Helper()

	var decoded interface{}
	require.NoError(t, yaml.Unmarshal([]byte(output), &decoded), "Output should be valid YAML")
}
