package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Directory.File != "rubrica.csv" {
		t.Errorf("default file = %q, want %q", cfg.Directory.File, "rubrica.csv")
	}
	if cfg.Directory.SkipMalformed {
		t.Error("default skip_malformed = true, want false")
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("default log level = %q, want %q", cfg.Log.Level, "warn")
	}
	if cfg.Log.Format != "text" {
		t.Errorf("default log format = %q, want %q", cfg.Log.Format, "text")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}
}

func TestLoad_ValidFile(t *testing.T) {
	cfgPath := writeConfig(t, t.TempDir(), `
directory:
  file: /tmp/contacts.csv
  skip_malformed: true
log:
  level: debug
  format: json
display:
  plain: true
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := Config{
		Directory: Directory{File: "/tmp/contacts.csv", SkipMalformed: true},
		Log:       Log{Level: "debug", Format: "json"},
		Display:   Display{Plain: true},
	}
	if *cfg != want {
		t.Errorf("Load() = %+v, want %+v", *cfg, want)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load("/nonexistent/rubrica.yaml")
	if err != nil {
		t.Fatalf("Load() should return defaults for missing file, got error: %v", err)
	}
	want := DefaultConfig()
	if *cfg != want {
		t.Errorf("Load(missing) = %+v, want defaults %+v", *cfg, want)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	cfgPath := writeConfig(t, t.TempDir(), "{{invalid yaml")

	_, err := Load(cfgPath)
	if err == nil {
		t.Fatal("Load(invalid YAML) should return error")
	}
	if !strings.Contains(err.Error(), cfgPath) {
		t.Errorf("error = %q, want path %q", err, cfgPath)
	}
}

func TestLoad_PartialConfig(t *testing.T) {
	cfgPath := writeConfig(t, t.TempDir(), `
log:
  level: info
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level = %q, want %q", cfg.Log.Level, "info")
	}
	// Unset fields should retain defaults.
	if cfg.Log.Format != "text" {
		t.Errorf("log format = %q, want default %q", cfg.Log.Format, "text")
	}
	if cfg.Directory.File != "rubrica.csv" {
		t.Errorf("file = %q, want default %q", cfg.Directory.File, "rubrica.csv")
	}
}

func TestLoad_UnknownField(t *testing.T) {
	cfgPath := writeConfig(t, t.TempDir(), `
directory:
  fiel: typo.csv
`)

	if _, err := Load(cfgPath); err == nil {
		t.Fatal("Load(unknown field) should return error")
	}
	if _, err := LoadLayered(cfgPath); err == nil {
		t.Fatal("LoadLayered(unknown field) should return error")
	}
}

func TestLoad_CommentOnlyFile(t *testing.T) {
	cfgPath := writeConfig(t, t.TempDir(), "# nothing configured yet\n")

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load(comment-only) error = %v", err)
	}
	if *cfg != DefaultConfig() {
		t.Errorf("Load(comment-only) = %+v, want defaults", *cfg)
	}

	layered, err := LoadLayered(cfgPath)
	if err != nil {
		t.Fatalf("LoadLayered(comment-only) error = %v", err)
	}
	if *layered != DefaultConfig() {
		t.Errorf("LoadLayered(comment-only) = %+v, want defaults", *layered)
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	cfgPath := writeConfig(t, t.TempDir(), "")

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load(empty) error = %v", err)
	}
	if *cfg != DefaultConfig() {
		t.Errorf("Load(empty) = %+v, want defaults", *cfg)
	}
}

func TestLoadLayered_Priority(t *testing.T) {
	// Given a user config that sets the file and log level
	userCfg := writeConfig(t, t.TempDir(), `
directory:
  file: /home/me/contacts.csv
log:
  level: info
`)
	// And a project config that only overrides the log level
	projectCfg := writeConfig(t, t.TempDir(), `
log:
  level: debug
`)

	// When both layers are loaded
	cfg, err := LoadLayered(userCfg, projectCfg)
	if err != nil {
		t.Fatalf("LoadLayered() error = %v", err)
	}

	// Then the project layer wins where it is set and the user layer elsewhere
	if cfg.Directory.File != "/home/me/contacts.csv" {
		t.Errorf("file = %q, want %q (from user config)", cfg.Directory.File, "/home/me/contacts.csv")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q, want %q (from project config)", cfg.Log.Level, "debug")
	}
	if cfg.Log.Format != "text" {
		t.Errorf("log format = %q, want default %q", cfg.Log.Format, "text")
	}
}

func TestLoadLayered_FalseOverridesTrue(t *testing.T) {
	userCfg := writeConfig(t, t.TempDir(), `
directory:
  skip_malformed: true
display:
  plain: true
`)
	projectCfg := writeConfig(t, t.TempDir(), `
directory:
  skip_malformed: false
`)

	cfg, err := LoadLayered(userCfg, projectCfg)
	if err != nil {
		t.Fatalf("LoadLayered() error = %v", err)
	}
	if cfg.Directory.SkipMalformed {
		t.Error("skip_malformed = true, want false from project layer")
	}
	if !cfg.Display.Plain {
		t.Error("plain = false, want true from user layer")
	}
}

func TestLoadLayered_AllMissing(t *testing.T) {
	cfg, err := LoadLayered("/nonexistent/a.yaml", "/nonexistent/b.yaml")
	if err != nil {
		t.Fatalf("LoadLayered() error = %v", err)
	}
	if *cfg != DefaultConfig() {
		t.Errorf("LoadLayered(all missing) = %+v, want defaults", *cfg)
	}
}

func TestApplyEnv(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    func(Config) Config
		wantErr bool
	}{
		{
			name: "file override",
			env:  map[string]string{"RUBRICA_FILE": "/data/book.csv"},
			want: func(c Config) Config { c.Directory.File = "/data/book.csv"; return c },
		},
		{
			name: "skip malformed",
			env:  map[string]string{"RUBRICA_SKIP_MALFORMED": "true"},
			want: func(c Config) Config { c.Directory.SkipMalformed = true; return c },
		},
		{
			name: "log level and format",
			env:  map[string]string{"RUBRICA_LOG_LEVEL": "debug", "RUBRICA_LOG_FORMAT": "json"},
			want: func(c Config) Config { c.Log.Level = "debug"; c.Log.Format = "json"; return c },
		},
		{
			name: "empty values leave config unchanged",
			env:  map[string]string{"RUBRICA_FILE": "", "RUBRICA_LOG_LEVEL": ""},
			want: func(c Config) Config { return c },
		},
		{
			name:    "invalid bool",
			env:     map[string]string{"RUBRICA_SKIP_MALFORMED": "sometimes"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg := DefaultConfig()
			err := cfg.ApplyEnv()
			if (err != nil) != tt.wantErr {
				t.Fatalf("ApplyEnv() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if want := tt.want(DefaultConfig()); cfg != want {
				t.Errorf("ApplyEnv() = %+v, want %+v", cfg, want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "uppercase level", mutate: func(c *Config) { c.Log.Level = "DEBUG" }},
		{name: "json format", mutate: func(c *Config) { c.Log.Format = "json" }},
		{name: "empty file", mutate: func(c *Config) { c.Directory.File = "  " }, wantErr: "directory.file"},
		{name: "bad level", mutate: func(c *Config) { c.Log.Level = "loud" }, wantErr: "log.level"},
		{name: "bad format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: "log.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}
