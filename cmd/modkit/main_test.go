package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kbukum/modkit/errors"
)

const testConfig = `
name: modkit-test
environment: development
logging:
  level: error
  output: stderr
modules:
  - greeter
greeting: Howdy
inspect:
  enabled: false
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCatalogCmd(t *testing.T) {
	out, err := run(t, "catalog", "--config", writeConfig(t, testConfig))
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	for _, want := range []string{"* greeter", "  inspect", "  logging", "  store"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestLoadCmd(t *testing.T) {
	out, err := run(t, "load", "--config", writeConfig(t, testConfig), "--greet", "ada,bob")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for _, want := range []string{
		"ORDER",
		"demo.LoggingModule",
		"demo.StoreModule",
		"demo.GreeterModule",
		"demo.store",
		"Howdy, ada!",
		"Howdy, bob!",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Count(out, "demo.LoggingModule ") != 1 {
		t.Errorf("logging module should be listed once:\n%s", out)
	}
}

func TestLoadCmd_ArgsOverrideConfig(t *testing.T) {
	out, err := run(t, "load", "--config", writeConfig(t, testConfig), "store")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if strings.Contains(out, "GreeterModule") {
		t.Errorf("greeter should not load:\n%s", out)
	}
	if !strings.Contains(out, "demo.StoreModule") {
		t.Errorf("store should load:\n%s", out)
	}
}

func TestLoadCmd_UnknownModule(t *testing.T) {
	_, err := run(t, "load", "--config", writeConfig(t, testConfig), "nope")
	if !errors.HasCode(err, errors.ErrCodeModuleUnknown) {
		t.Errorf("expected MODULE_UNKNOWN, got %v", err)
	}
}

func TestLoadCmd_InvalidModuleName(t *testing.T) {
	_, err := run(t, "load", "--config", writeConfig(t, testConfig), "Not A Name")
	if !errors.HasCode(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("expected INVALID_CONFIG, got %v", err)
	}
}

func TestAppConfigDefaults(t *testing.T) {
	cfg := &AppConfig{}
	cfg.ApplyDefaults()
	if cfg.Name != serviceName {
		t.Errorf("Name = %q", cfg.Name)
	}
	if cfg.Inspect.Addr() != "127.0.0.1:8089" {
		t.Errorf("inspect addr = %q", cfg.Inspect.Addr())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestAppConfigObservabilityNeedsEndpoint(t *testing.T) {
	cfg := &AppConfig{}
	cfg.ApplyDefaults()
	cfg.Observability.Enabled = true
	cfg.Observability.Endpoint = ""
	if err := cfg.Validate(); !errors.HasCode(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("expected INVALID_CONFIG, got %v", err)
	}
}
