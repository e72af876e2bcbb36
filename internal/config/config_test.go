package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rs/zerolog"
)

func TestSetLogger(t *testing.T) {
	logger := zerolog.New(os.Stdout).Level(zerolog.InfoLevel)
	SetLogger(logger)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config content: %v", err)
	}
	return path
}

func TestApplyDefaults(t *testing.T) {
	t.Run("Config struct defaults", func(t *testing.T) {
		config := &Config{}
		applyDefaults(config)

		if config.Remote.BaseURL != "https://post-api-4qzj.onrender.com/api" {
			t.Errorf("Expected default base URL, got %q", config.Remote.BaseURL)
		}
		if config.Remote.UserAgent != "the-feed" {
			t.Errorf("Expected user agent 'the-feed', got %q", config.Remote.UserAgent)
		}

		if config.UI.Title != "Facebook Posts" {
			t.Errorf("Expected title 'Facebook Posts', got %q", config.UI.Title)
		}
		if config.UI.Theme != DarkTheme {
			t.Errorf("Expected theme %q, got %q", DarkTheme, config.UI.Theme)
		}
		if config.UI.Width != 72 {
			t.Errorf("Expected width 72, got %d", config.UI.Width)
		}
		if config.UI.SyntaxTheme != "" {
			t.Errorf("Expected empty syntax theme, got %q", config.UI.SyntaxTheme)
		}

		if config.Store.Port != "12600" {
			t.Errorf("Expected port '12600', got %q", config.Store.Port)
		}
		if config.Store.BasePath != "/api" {
			t.Errorf("Expected base path '/api', got %q", config.Store.BasePath)
		}
		if config.Store.Backend != BackendSQLite {
			t.Errorf("Expected backend %q, got %q", BackendSQLite, config.Store.Backend)
		}
		if config.Store.Compression != CompressionZstd {
			t.Errorf("Expected compression %q, got %q", CompressionZstd, config.Store.Compression)
		}
		if config.Store.S3.Prefix != "posts/" {
			t.Errorf("Expected S3 prefix 'posts/', got %q", config.Store.S3.Prefix)
		}

		if config.Logging.Level != "info" {
			t.Errorf("Expected logging level 'info', got %q", config.Logging.Level)
		}
	})

	t.Run("Custom struct with various field types", func(t *testing.T) {
		type TestStruct struct {
			StringField string   `default:"test-string"`
			BoolField   bool     `default:"true"`
			IntField    int      `default:"42"`
			SliceField  []string `default:"a,b,c"`
			NoDefault   string
		}

		test := &TestStruct{}
		applyDefaults(test)

		if test.StringField != "test-string" {
			t.Errorf("Expected string field 'test-string', got %q", test.StringField)
		}
		if !test.BoolField {
			t.Error("Expected bool field to be true")
		}
		if test.IntField != 42 {
			t.Errorf("Expected int field 42, got %d", test.IntField)
		}
		if !reflect.DeepEqual(test.SliceField, []string{"a", "b", "c"}) {
			t.Errorf("Expected slice [a b c], got %v", test.SliceField)
		}
		if test.NoDefault != "" {
			t.Errorf("Expected no default field to be empty, got %q", test.NoDefault)
		}
	})

	t.Run("Invalid default values", func(t *testing.T) {
		type InvalidStruct struct {
			BadBool bool `default:"not-a-bool"`
			BadInt  int  `default:"not-an-int"`
		}

		test := &InvalidStruct{}
		applyDefaults(test)

		if test.BadBool {
			t.Error("Expected invalid bool default to remain false")
		}
		if test.BadInt != 0 {
			t.Errorf("Expected invalid int default to remain 0, got %d", test.BadInt)
		}
	})

	t.Run("Non-struct input", func(t *testing.T) {
		stringVar := "test"
		applyDefaults(&stringVar)
		applyDefaults(stringVar)
		applyDefaults(42)
		applyDefaults(nil)
	})
}

func TestLoad(t *testing.T) {
	SetLogger(zerolog.New(os.Stdout).Level(zerolog.ErrorLevel))

	t.Run("Load non-existent config file", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		if err != nil {
			t.Fatalf("Expected no error for non-existent config file, got %v", err)
		}
		if cfg.UI.Title != "Facebook Posts" {
			t.Errorf("Expected default title, got %q", cfg.UI.Title)
		}
	})

	t.Run("Load valid config file", func(t *testing.T) {
		path := writeConfig(t, `
remote:
  base_url: "http://localhost:12600/api"
ui:
  theme: "light"
  width: 100
store:
  backend: "memory"
logging:
  level: "debug"
`)

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Expected no error loading valid config, got %v", err)
		}

		if cfg.Remote.BaseURL != "http://localhost:12600/api" {
			t.Errorf("Expected base URL from file, got %q", cfg.Remote.BaseURL)
		}
		if cfg.UI.Theme != LightTheme {
			t.Errorf("Expected light theme, got %q", cfg.UI.Theme)
		}
		if cfg.UI.Width != 100 {
			t.Errorf("Expected width 100, got %d", cfg.UI.Width)
		}
		if cfg.Store.Backend != BackendMemory {
			t.Errorf("Expected memory backend, got %q", cfg.Store.Backend)
		}
		if cfg.Logging.Level != "debug" {
			t.Errorf("Expected debug level, got %q", cfg.Logging.Level)
		}

		// Unspecified fields keep their defaults
		if cfg.UI.Title != "Facebook Posts" {
			t.Errorf("Expected default title, got %q", cfg.UI.Title)
		}
		if cfg.Store.Compression != CompressionZstd {
			t.Errorf("Expected default compression, got %q", cfg.Store.Compression)
		}
	})

	t.Run("Load invalid YAML file", func(t *testing.T) {
		path := writeConfig(t, "remote:\n  base_url: [unterminated\n")

		if _, err := Load(path); err == nil {
			t.Error("Expected error for invalid YAML")
		}
	})

	t.Run("Load rejects unknown enums", func(t *testing.T) {
		tests := []struct {
			name    string
			content string
		}{
			{"backend", "store:\n  backend: \"postgres\"\n"},
			{"compression", "store:\n  compression: \"lz4\"\n"},
			{"theme", "ui:\n  theme: \"solarized\"\n"},
			{"empty base url", "remote:\n  base_url: \"  \"\n"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if _, err := Load(writeConfig(t, tt.content)); err == nil {
					t.Errorf("Expected validation error for %s", tt.name)
				}
			})
		}
	})
}

func TestPath(t *testing.T) {
	t.Run("default path", func(t *testing.T) {
		t.Setenv(EnvConfigPath, "")
		if got := Path(); got != DefaultConfigPath {
			t.Errorf("Expected %q, got %q", DefaultConfigPath, got)
		}
	})

	t.Run("env override", func(t *testing.T) {
		t.Setenv(EnvConfigPath, "/etc/feed.yaml")
		if got := Path(); got != "/etc/feed.yaml" {
			t.Errorf("Expected env path, got %q", got)
		}
	})
}
