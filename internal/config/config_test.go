package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != 1 {
		t.Errorf("expected version 1, got %d", cfg.Version)
	}
	if cfg.Session.Policy != PolicyError {
		t.Errorf("expected default policy %q, got %q", PolicyError, cfg.Session.Policy)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
	if len(cfg.Servers) != 0 {
		t.Errorf("defaults must not bake in server commands, got %v", cfg.Servers)
	}
}

func TestExampleConfig(t *testing.T) {
	cfg := ExampleConfig()

	if err := cfg.Validate(); err != nil {
		t.Errorf("example config should validate: %v", err)
	}
	for _, tag := range []string{"python", "typescript", "javascript", "rust", "go", "java", "cpp", "c"} {
		sc, ok := cfg.Server(tag)
		if !ok {
			t.Errorf("no example server for %s", tag)
			continue
		}
		if sc.Command == "" {
			t.Errorf("empty example command for %s", tag)
		}
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("missing config file should fall back to defaults: %v", err)
	}
	if cfg.Limits.DefaultMaxItems != 100 {
		t.Errorf("expected default limits, got %d", cfg.Limits.DefaultMaxItems)
	}
}

func TestLoadConfigPartialFile(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".lspmcp")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}

	content := `session:
  policy: replace
servers:
  python:
    command: pylsp
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Session.Policy != PolicyReplace {
		t.Errorf("expected policy replace, got %q", cfg.Session.Policy)
	}
	if cfg.Session.RequestTimeoutMs != 30000 {
		t.Errorf("unset field should keep default, got %d", cfg.Session.RequestTimeoutMs)
	}

	py, ok := cfg.Server("python")
	if !ok || py.Command != "pylsp" {
		t.Errorf("expected configured python server, got %+v", py)
	}
	if _, ok := cfg.Server("go"); ok {
		t.Error("languages absent from the file must stay unconfigured")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	root := t.TempDir()

	cfg := DefaultConfig()
	cfg.Session.Policy = PolicyReplace
	cfg.Limits.DefaultMaxItems = 50
	if err := cfg.Save(root); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Session.Policy != PolicyReplace {
		t.Errorf("expected saved policy, got %q", loaded.Session.Policy)
	}
	if loaded.Limits.DefaultMaxItems != 50 {
		t.Errorf("expected saved limit, got %d", loaded.Limits.DefaultMaxItems)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"valid replace policy", func(c *Config) { c.Session.Policy = PolicyReplace }, false},
		{"bad version", func(c *Config) { c.Version = 2 }, true},
		{"bad policy", func(c *Config) { c.Session.Policy = "maybe" }, true},
		{"zero timeout", func(c *Config) { c.Session.RequestTimeoutMs = 0 }, true},
		{"negative max items", func(c *Config) { c.Limits.DefaultMaxItems = -1 }, true},
		{"cap below default", func(c *Config) { c.Limits.MaxMaxItems = 10 }, true},
		{"negative context lines", func(c *Config) { c.Limits.DefaultContextLines = -1 }, true},
		{"known server tag", func(c *Config) { c.Servers["go"] = ServerConfig{Command: "gopls"} }, false},
		{"unknown server tag", func(c *Config) { c.Servers["cobol"] = ServerConfig{Command: "cobol-ls"} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}
