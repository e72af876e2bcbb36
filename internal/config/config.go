// Package config loads the YAML configuration shared by the feed client and the reference post
// store, applying `default` struct tag values for anything the file leaves out.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var configLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	configLogger = l
}

// Config represents the complete configuration structure
type Config struct {
	Remote  RemoteConfig  `yaml:"remote"`
	UI      UIConfig      `yaml:"ui"`
	Store   StoreConfig   `yaml:"store"`
	Logging LoggingConfig `yaml:"logging"`
}

type LoggingConfig struct {
	Level string `yaml:"level" default:"info"`
}

// RemoteConfig points the client at the Remote Post Store. The base URL is read once at
// start-up; the collection lives at BaseURL + PostsPath.
type RemoteConfig struct {
	BaseURL   string `yaml:"base_url" default:"https://post-api-4qzj.onrender.com/api"`
	UserAgent string `yaml:"user_agent" default:"the-feed"`
}

type UIConfig struct {
	Title       string `yaml:"title" default:"Facebook Posts"`
	Theme       string `yaml:"theme" default:"dark"`
	Width       int    `yaml:"width" default:"72"`
	DateFormat  string `yaml:"date_format" default:"Jan 2, 2006 3:04 PM"`
	SyntaxTheme string `yaml:"syntax_theme" default:""`
}

type StoreConfig struct {
	Host        string   `yaml:"host" default:"127.0.0.1"`
	Port        string   `yaml:"port" default:"12600"`
	BasePath    string   `yaml:"base_path" default:"/api"`
	Backend     string   `yaml:"backend" default:"sqlite"`
	SQLitePath  string   `yaml:"sqlite_path" default:"./posts.db"`
	Compression string   `yaml:"compression" default:"zstd"`
	S3          S3Config `yaml:"s3"`
}

// S3Config configures the S3 store backend. Credentials come from the environment
// (EnvS3AccessKeyID, EnvS3SecretAccessKey), never from the file.
type S3Config struct {
	Bucket   string `yaml:"bucket" default:"posts"`
	Endpoint string `yaml:"endpoint" default:""`
	Region   string `yaml:"region" default:"auto"`
	Prefix   string `yaml:"prefix" default:"posts/"`
}

// Default returns a Config with every default tag applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads the YAML file at path on top of the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			configLogger.Info().Str("path", path).Msg("Config file not found, using defaults")
			return cfg, nil
		}
		return nil, fmt.Errorf(ErrReadConfigFmt, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf(ErrParseConfigFmt, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	configLogger.Debug().Str("path", path).Msg("Config loaded")
	return cfg, nil
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendSQLite, BackendMemory, BackendS3:
	default:
		return fmt.Errorf(ErrUnknownBackendFmt, c.Store.Backend)
	}

	switch c.Store.Compression {
	case CompressionZstd, CompressionGzip, CompressionNone:
	default:
		return fmt.Errorf(ErrUnknownCompressionFmt, c.Store.Compression)
	}

	switch c.UI.Theme {
	case DarkTheme, LightTheme:
	default:
		return fmt.Errorf(ErrUnknownThemeFmt, c.UI.Theme)
	}

	if strings.TrimSpace(c.Remote.BaseURL) == "" {
		return errors.New(ErrEmptyBaseURL)
	}

	return nil
}

// Path returns the config file location, honoring EnvConfigPath.
func Path() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return DefaultConfigPath
}

func ApplyDefaults(config interface{}) {
	applyDefaults(config)
}

func applyDefaults(config interface{}) {
	v := reflect.ValueOf(config)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.IsValid() || !field.CanSet() {
			continue
		}

		if field.Kind() == reflect.Struct {
			applyDefaults(field.Addr().Interface())
			continue
		}

		defaultValue := fieldType.Tag.Get("default")
		if defaultValue == "" {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(defaultValue)
		case reflect.Bool:
			if val, err := strconv.ParseBool(defaultValue); err == nil {
				field.SetBool(val)
			}
		case reflect.Int:
			if val, err := strconv.ParseInt(defaultValue, 10, 64); err == nil {
				field.SetInt(val)
			}
		case reflect.Slice:
			if field.Len() == 0 && field.Type().Elem().Kind() == reflect.String {
				parts := strings.Split(defaultValue, ",")
				slice := reflect.MakeSlice(field.Type(), len(parts), len(parts))
				for j, part := range parts {
					slice.Index(j).SetString(strings.TrimSpace(part))
				}
				field.Set(slice)
			}
		default:
			configLogger.Warn().
				Str("field_name", fieldType.Name).
				Str("field_type", field.Kind().String()).
				Msg("Unsupported field type for default value")
		}
	}
}
