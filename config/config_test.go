package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/restoctl/iiko"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range []string{EnvBaseURL, EnvLogin, EnvHashedPassword, EnvPassword, EnvTimeout} {
		t.Setenv(env, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
server:
  url: https://chain.iiko.it/resto/api
  login: admin
  password: secret
  timeout: 45s
logging:
  level: debug
output:
  format: JSON
filter:
  presets:
    stores: Type == "STORE"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://chain.iiko.it/resto/api", cfg.Server.URL)
	assert.Equal(t, "admin", cfg.Server.Login)
	assert.Equal(t, 45*time.Second, cfg.Server.Timeout)
	assert.True(t, cfg.Server.LogoutOnExit)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, `Type == "STORE"`, cfg.Filter.Presets["stores"])
	assert.Equal(t, iiko.HashPassword("secret"), cfg.Server.Credential())
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
server:
  url: http://file.example/resto/api
  login: from-file
`)

	t.Setenv(EnvBaseURL, "http://env.example/resto/api")
	t.Setenv(EnvLogin, "from-env")
	t.Setenv(EnvHashedPassword, "5BAA61E4C9B93F3F0682250B6CF8331B7EE68FD8")
	t.Setenv(EnvTimeout, "10s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://env.example/resto/api", cfg.Server.URL)
	assert.Equal(t, "from-env", cfg.Server.Login)
	assert.Equal(t, 10*time.Second, cfg.Server.Timeout)
	assert.Equal(t, "5baa61e4c9b93f3f0682250b6cf8331b7ee68fd8", cfg.Server.Credential())

	client := cfg.Server.ClientConfig()
	assert.Equal(t, "from-env", client.Login)
	assert.Equal(t, cfg.Server.Credential(), client.Password)
	assert.Equal(t, 10*time.Second, client.Timeout)
}

func TestLoadTimeout(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  string
		want time.Duration
	}{
		{name: "default", want: iiko.DefaultTimeout},
		{name: "env seconds", env: "30", want: 30 * time.Second},
		{name: "env fractional seconds", env: "1.5", want: 1500 * time.Millisecond},
		{name: "env duration", env: "2m", want: 2 * time.Minute},
		{name: "file seconds", file: "45", want: 45 * time.Second},
		{name: "file duration", file: "90s", want: 90 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)

			content := "server:\n  url: http://localhost/resto/api\n  login: admin\n  password: secret\n"
			if tt.file != "" {
				content += "  timeout: " + tt.file + "\n"
			}
			path := writeConfig(t, content)
			if tt.env != "" {
				t.Setenv(EnvTimeout, tt.env)
			}

			cfg, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Server.Timeout)
		})
	}

	t.Run("garbage", func(t *testing.T) {
		clearEnv(t)
		path := writeConfig(t, "server:\n  login: admin\n  password: secret\n")
		t.Setenv(EnvTimeout, "soon")

		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestLoadMissingExplicitFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{
				URL:      "http://localhost:8080/resto/api",
				Login:    "admin",
				Password: "secret",
				Timeout:  30 * time.Second,
			},
			Logging: LoggingConfig{Level: "info", Format: "console"},
			Output:  OutputConfig{Format: "table"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(cfg *Config) {},
		},
		{
			name:    "missing url",
			mutate:  func(cfg *Config) { cfg.Server.URL = "" },
			wantErr: "server.url is required",
		},
		{
			name:    "missing login",
			mutate:  func(cfg *Config) { cfg.Server.Login = "" },
			wantErr: "server.login is required",
		},
		{
			name:    "no credential",
			mutate:  func(cfg *Config) { cfg.Server.Password = "" },
			wantErr: "must be set",
		},
		{
			name:    "both credentials",
			mutate:  func(cfg *Config) { cfg.Server.PasswordHash = "abc" },
			wantErr: "mutually exclusive",
		},
		{
			name:    "zero timeout",
			mutate:  func(cfg *Config) { cfg.Server.Timeout = 0 },
			wantErr: "server.timeout must be positive",
		},
		{
			name:    "bad log level",
			mutate:  func(cfg *Config) { cfg.Logging.Level = "trace" },
			wantErr: "invalid logging level",
		},
		{
			name:    "bad log format",
			mutate:  func(cfg *Config) { cfg.Logging.Format = "xml" },
			wantErr: "invalid logging format",
		},
		{
			name:    "bad output format",
			mutate:  func(cfg *Config) { cfg.Output.Format = "csv" },
			wantErr: "invalid output format",
		},
		{
			name:    "empty preset",
			mutate:  func(cfg *Config) { cfg.Filter.Presets = map[string]string{"all": " "} },
			wantErr: `filter preset "all" is empty`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
