package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agentstation/routeconf/internal/cmd/exitcode"
	"github.com/agentstation/routeconf/pkg/logging"
)

// TestApp_New verifies app initialization.
func TestApp_New(t *testing.T) {
	isolateConfig(t)

	app, err := New("1.0.0", "abc123", "2024-01-01", "test")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if app.Version() != "1.0.0" {
		t.Errorf("Version() = %s, want 1.0.0", app.Version())
	}
	if app.Commit() != "abc123" {
		t.Errorf("Commit() = %s, want abc123", app.Commit())
	}
	if app.Date() != "2024-01-01" {
		t.Errorf("Date() = %s, want 2024-01-01", app.Date())
	}
	if app.BuiltBy() != "test" {
		t.Errorf("BuiltBy() = %s, want test", app.BuiltBy())
	}
	if app.Logger() == nil {
		t.Error("Logger() returned nil")
	}
	if app.Config() == nil {
		t.Error("Config() returned nil")
	}
	if !app.RunConfig().RunProgram {
		t.Error("RunConfig().RunProgram should default to true")
	}
}

// TestApp_Options verifies functional options override the loaded state.
func TestApp_Options(t *testing.T) {
	isolateConfig(t)

	config := &Config{Format: "yaml", MetricsFile: "/tmp/m.prom", StoreFormat: "csv"}
	app, err := New("dev", "", "", "", WithConfig(config), WithLogger(nil))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if app.OutputFormat() != "yaml" {
		t.Errorf("OutputFormat() = %q, want yaml", app.OutputFormat())
	}
	if app.MetricsFile() != "/tmp/m.prom" {
		t.Errorf("MetricsFile() = %q", app.MetricsFile())
	}
	if app.Logger() == nil {
		t.Fatal("WithLogger(nil) should install a nop logger")
	}
	if err := app.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() = %v", err)
	}
}

func executeRoot(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := app.createRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// TestApp_VersionCommand verifies the version command output.
func TestApp_VersionCommand(t *testing.T) {
	isolateConfig(t)
	app, err := New("1.2.3", "deadbeef", "2025-01-01", "make", WithLogger(logging.NewNopLogger()))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	out, err := executeRoot(t, app, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	for _, want := range []string{"routeconf version 1.2.3", "commit: deadbeef", "built by: make"} {
		if !strings.Contains(out, want) {
			t.Errorf("version output missing %q:\n%s", want, out)
		}
	}
}

// TestApp_InvalidFormat verifies --format is validated before commands run.
func TestApp_InvalidFormat(t *testing.T) {
	isolateConfig(t)
	app, err := New("dev", "", "", "")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	_, err = executeRoot(t, app, "--format", "xml", "version")
	if err == nil {
		t.Fatal("expected an error for --format xml")
	}
	if code := exitcode.For(err); code != exitcode.Validation {
		t.Errorf("exit code = %d, want %d", code, exitcode.Validation)
	}
}

// TestApp_ConfigFlag verifies --config reloads configuration for commands.
func TestApp_ConfigFlag(t *testing.T) {
	isolateConfig(t)
	dir := t.TempDir()

	storePath := filepath.Join(dir, "routers.csv")
	if err := os.WriteFile(storePath, []byte("#ip,username,password\n10.0.0.1,admin,secret\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	configPath := filepath.Join(dir, "routeconf.yaml")
	if err := os.WriteFile(configPath, []byte("store_path: "+storePath+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	app, err := New("dev", "", "", "")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	out, err := executeRoot(t, app, "--config", configPath, "--log-level", "error", "-o", "json", "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	var listing struct {
		Routers []struct {
			Address  string `json:"address"`
			Username string `json:"username"`
			Password string `json:"password"`
		} `json:"routers"`
	}
	if err := json.Unmarshal([]byte(out), &listing); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(listing.Routers) != 1 || listing.Routers[0].Address != "10.0.0.1" {
		t.Fatalf("routers = %+v", listing.Routers)
	}
	if listing.Routers[0].Password == "secret" {
		t.Error("password should be masked")
	}
	if app.Config().ConfigFile != configPath {
		t.Errorf("ConfigFile = %q, want %q", app.Config().ConfigFile, configPath)
	}
}

// TestApp_ConfigFlagMissing verifies an explicit config file must exist.
func TestApp_ConfigFlagMissing(t *testing.T) {
	isolateConfig(t)
	app, err := New("dev", "", "", "")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	_, err = executeRoot(t, app, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "version")
	if err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}
