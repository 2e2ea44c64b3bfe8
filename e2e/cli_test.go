package e2e_test

import (
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lostbeltno7/GameGuardian/internal/api"
	"github.com/lostbeltno7/GameGuardian/internal/factory"
	"github.com/lostbeltno7/GameGuardian/internal/services/auth"
	"github.com/lostbeltno7/GameGuardian/internal/testutil"
)

const (
	e2eAPIKey   = "e2e-api-key"
	e2eAdminKey = "e2e-admin-key"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(t.TempDir(), "guardianctl-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/guardianctl")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--api-key", e2eAPIKey,
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		require.NotEqual(t, dir, parent, "go.mod not found")
		dir = parent
	}
}

func startServer(t *testing.T) *httptest.Server {
	t.Helper()

	adminHash, err := auth.HashAdminKey(e2eAdminKey)
	require.NoError(t, err)

	// The CLI stamps real wall-clock timestamps, so the server side
	// needs a real clock too
	app, err := factory.New(factory.Config{
		Logger: testutil.NopLogger(),
		Auth: auth.Config{
			APIKey:       e2eAPIKey,
			AdminKeyHash: adminHash,
		},
	})
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:      testutil.NopLogger(),
		Storage:     app.Storage,
		Verifier:    app.Verifier,
		Escalator:   app.Escalator,
		AuthService: app.AuthService,
		Clock:       app.Clock,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func TestCLIAgainstServer(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}

	srv := startServer(t)
	cli := newCLIRunner(t, srv.URL)

	t.Run("health", func(t *testing.T) {
		out, err := cli.run("health")
		require.NoError(t, err, out)
		assert.Contains(t, out, "Status: ok")
	})

	t.Run("register player", func(t *testing.T) {
		out, err := cli.run("player", "register",
			"--player", "e2e-player",
			"--device", "e2e-device",
			"--data", "health=100,coins=50")
		require.NoError(t, err, out)
		assert.Contains(t, out, "registered")
	})

	t.Run("sync plausible values", func(t *testing.T) {
		// Unchanged values are always plausible regardless of elapsed time
		out, err := cli.run("sync",
			"--player", "e2e-player",
			"--value", "health=100,coins=50")
		require.NoError(t, err, out)
		assert.Contains(t, out, "Status: valid")
	})

	t.Run("sync implausible values", func(t *testing.T) {
		out, err := cli.run("sync",
			"--player", "e2e-player",
			"--value", "coins=9999999")
		require.NoError(t, err, out)
		assert.Contains(t, out, "Status: invalid")
		assert.Contains(t, out, "Coins increased too fast")
	})

	t.Run("critical report bans", func(t *testing.T) {
		out, err := cli.run("report",
			"--type", "debugger_detected",
			"--severity", "critical",
			"--device", "e2e-device",
			"--player", "e2e-player")
		require.NoError(t, err, out)
		assert.Contains(t, out, "Action: ban")
	})

	t.Run("suspended player short-circuits", func(t *testing.T) {
		out, err := cli.run("sync",
			"--player", "e2e-player",
			"--value", "coins=55")
		require.NoError(t, err, out)
		assert.Contains(t, out, "Status: suspended")
	})

	t.Run("management lookup", func(t *testing.T) {
		out, err := cli.run("player", "get", "e2e-player",
			"--admin-key", e2eAdminKey)
		require.NoError(t, err, out)
		assert.Contains(t, out, "Status: suspended")
		assert.Contains(t, out, "debugger_detected")
	})

	t.Run("local scan", func(t *testing.T) {
		// Detections depend on the host, so only check that every
		// probe ran and reported something.
		out, err := cli.run("scan")
		require.NoError(t, err, out)
		for _, probe := range []string{"tool", "memory", "debugger", "emulator"} {
			assert.Contains(t, out, probe)
		}
	})

	t.Run("hash key", func(t *testing.T) {
		out, err := cli.run("hash-key", "some-admin-key")
		require.NoError(t, err, out)
		assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "$2"), "bcrypt hash expected: %s", out)
	})
}
