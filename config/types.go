package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	Output  OutputConfig  `mapstructure:"output"`
	Filter  FilterConfig  `mapstructure:"filter"`
}

// ServerConfig holds iiko server connection details.
// Exactly one of Password and PasswordHash must be set.
type ServerConfig struct {
	URL          string        `mapstructure:"url"`
	Login        string        `mapstructure:"login"`
	Password     string        `mapstructure:"password"`
	PasswordHash string        `mapstructure:"password_hash"`
	Timeout      time.Duration `mapstructure:"timeout"`
	LogoutOnExit bool          `mapstructure:"logout_on_exit"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// OutputConfig controls how command results are printed
type OutputConfig struct {
	Format string `mapstructure:"format"`
}

// FilterConfig contains named filter expressions
type FilterConfig struct {
	Presets map[string]string `mapstructure:"presets"`
}
