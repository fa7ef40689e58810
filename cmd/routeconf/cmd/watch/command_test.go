package watch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/routeconf"
	"github.com/agentstation/routeconf/cmd/application"
	"github.com/agentstation/routeconf/pkg/errors"
)

func TestWatchCommand_RequiresRoutersFile(t *testing.T) {
	cmd := NewCommand(&application.Mock{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--router", "10.0.0.1"})

	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestWatchCommand_ReconcilesOnChange(t *testing.T) {
	dir := t.TempDir()
	store := filepath.Join(dir, "routers.csv")
	file := filepath.Join(dir, "routers.yaml")
	metricsFile := filepath.Join(dir, "routeconf.prom")
	require.NoError(t, os.WriteFile(file, []byte("- address: 10.0.0.1\n"), 0o600))

	app := &application.Mock{
		RunConfigFunc: func() routeconf.Config {
			cfg := routeconf.DefaultConfig()
			cfg.ProgramPath = filepath.Join(dir, "unused")
			cfg.StorePath = store
			cfg.GlobalUsername = "admin"
			cfg.GlobalPassword = "pw"
			cfg.RunProgram = false
			return cfg
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := NewCommand(app)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"-f", file, "--debounce", "20ms", "--metrics-file", metricsFile})

	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	storeHas := func(addr string) func() bool {
		return func() bool {
			data, err := os.ReadFile(store)
			return err == nil && strings.Contains(string(data), addr)
		}
	}

	require.Eventually(t, storeHas("10.0.0.1"), 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(file, []byte("- address: 10.0.0.1\n- address: 10.0.0.2\n"), 0o600))
	require.Eventually(t, storeHas("10.0.0.2"), 5*time.Second, 20*time.Millisecond)

	// One registry serves the whole watch, so runs accumulate.
	require.Eventually(t, func() bool {
		return successfulRuns(metricsFile) >= 2
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func successfulRuns(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	const prefix = `routeconf_runs_total{result="success"} `
	for _, line := range strings.Split(string(data), "\n") {
		if value, ok := strings.CutPrefix(line, prefix); ok {
			n, _ := strconv.Atoi(value)
			return n
		}
	}
	return 0
}
