package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/s0up4200/restoctl/iiko"
)

// Environment variables that override the config file
const (
	EnvBaseURL        = "IIKO_BASE_URL"
	EnvLogin          = "IIKO_LOGIN"
	EnvHashedPassword = "IIKO_HASHED_PASSWORD"
	EnvPassword       = "IIKO_PASSWORD"
	EnvTimeout        = "IIKO_TIMEOUT"
)

// Load loads the configuration from .env, an optional file and the environment.
// An explicit configPath must exist; the default locations are optional.
func Load(configPath string) (*Config, error) {
	// a missing .env is the normal case
	_ = godotenv.Load()

	v := viper.New()

	// Set default values
	setDefaults(v)
	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("error binding environment: %w", err)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".restoctl"))
		}

		v.AddConfigPath("/etc/restoctl/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	hooks := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		secondsToDurationHook(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hooks); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.url", "http://localhost:8080/resto/api")
	v.SetDefault("server.timeout", iiko.DefaultTimeout)
	v.SetDefault("server.logout_on_exit", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)

	v.SetDefault("output.format", "table")
}

// secondsToDurationHook reads a bare number as seconds, so both
// IIKO_TIMEOUT=30 and IIKO_TIMEOUT=30s mean thirty seconds
func secondsToDurationHook() mapstructure.DecodeHookFuncType {
	durationType := reflect.TypeOf(time.Duration(0))
	return func(from, to reflect.Type, data any) (any, error) {
		if to != durationType || from == durationType {
			return data, nil
		}

		switch from.Kind() {
		case reflect.String:
			raw := strings.TrimSpace(data.(string))
			if n, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsInf(n, 0) && !math.IsNaN(n) {
				return time.Duration(n * float64(time.Second)), nil
			}
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return time.Duration(reflect.ValueOf(data).Int()) * time.Second, nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return time.Duration(reflect.ValueOf(data).Uint()) * time.Second, nil
		case reflect.Float32, reflect.Float64:
			return time.Duration(reflect.ValueOf(data).Float() * float64(time.Second)), nil
		}
		return data, nil
	}
}

func bindEnv(v *viper.Viper) error {
	bindings := map[string]string{
		"server.url":           EnvBaseURL,
		"server.login":         EnvLogin,
		"server.password_hash": EnvHashedPassword,
		"server.password":      EnvPassword,
		"server.timeout":       EnvTimeout,
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return err
		}
	}
	return nil
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.Server.URL == "" {
		return fmt.Errorf("server.url is required")
	}

	if cfg.Server.Login == "" {
		return fmt.Errorf("server.login is required")
	}

	switch {
	case cfg.Server.Password == "" && cfg.Server.PasswordHash == "":
		return fmt.Errorf("one of server.password or server.password_hash must be set")
	case cfg.Server.Password != "" && cfg.Server.PasswordHash != "":
		return fmt.Errorf("server.password and server.password_hash are mutually exclusive")
	}

	if cfg.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", cfg.Server.Timeout)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	cfg.Output.Format = strings.ToLower(cfg.Output.Format)
	if !IsOutputFormat(cfg.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be table, json or yaml)", cfg.Output.Format)
	}

	for name, expression := range cfg.Filter.Presets {
		if strings.TrimSpace(expression) == "" {
			return fmt.Errorf("filter preset %q is empty", name)
		}
	}

	return nil
}

// IsOutputFormat reports whether format is a supported output format
func IsOutputFormat(format string) bool {
	switch format {
	case "table", "json", "yaml":
		return true
	}
	return false
}

// Credential returns the hashed password sent to the server on login
func (s ServerConfig) Credential() string {
	if s.PasswordHash != "" {
		return strings.ToLower(s.PasswordHash)
	}
	return iiko.HashPassword(s.Password)
}

// ClientConfig converts the server section into iiko client settings
func (s ServerConfig) ClientConfig() iiko.Config {
	return iiko.Config{
		BaseURL:  s.URL,
		Login:    s.Login,
		Password: s.Credential(),
		Timeout:  s.Timeout,
	}
}
