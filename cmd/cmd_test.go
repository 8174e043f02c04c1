package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/s0up4200/restoctl/config"
)

func TestRender(t *testing.T) {
	data := []map[string]string{{"name": "Main Street"}}
	view := func() table {
		return table{header: []string{"name", "type"}, rows: [][]string{{"Main Street", "DEPARTMENT"}}}
	}

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, render(&buf, "table", data, view))
		assert.Contains(t, buf.String(), "NAME")
		assert.Contains(t, buf.String(), "Main Street  DEPARTMENT")
	})

	t.Run("empty table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, render(&buf, "table", nil, func() table { return table{header: []string{"name"}} }))
		assert.Equal(t, "No results.\n", buf.String())
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, render(&buf, "json", data, view))
		var decoded []map[string]string
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, data, decoded)
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, render(&buf, "yaml", data, view))
		var decoded []map[string]string
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, data, decoded)
	})
}

func TestParseTimeFlag(t *testing.T) {
	tests := []struct {
		value   string
		want    time.Time
		wantErr bool
	}{
		{value: "2024-03-05", want: time.Date(2024, time.March, 5, 0, 0, 0, 0, time.Local)},
		{value: "2024-03-05T10:30:00Z", want: time.Date(2024, time.March, 5, 10, 30, 0, 0, time.UTC)},
		{value: "2024-03-05T10:30:00.250", want: time.Date(2024, time.March, 5, 10, 30, 0, 250_000_000, time.Local)},
		{value: "05.03.2024", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := parseTimeFlag(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(*got), "got %s", got)
		})
	}
}

func TestSetupLogger(t *testing.T) {
	logger := setupLogger(config.LoggingConfig{Level: "warn", Format: "json"})
	assert.NotNil(t, logger)
}

func TestSuppliersListCommand(t *testing.T) {
	for _, env := range []string{config.EnvBaseURL, config.EnvLogin, config.EnvHashedPassword, config.EnvPassword, config.EnvTimeout} {
		t.Setenv(env, "")
	}

	var auths, logouts atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/resto/api/auth", func(w http.ResponseWriter, r *http.Request) {
		auths.Add(1)
		_, _ = io.WriteString(w, "cli-token")
	})
	mux.HandleFunc("/resto/api/logout", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "cli-token", r.PostForm.Get("key"))
		logouts.Add(1)
	})
	mux.HandleFunc("/resto/api/suppliers", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "cli-token", r.URL.Query().Get("key"))
		_, _ = io.WriteString(w, `<employees>
			<employee><code>S1</code><name>Fresh Farm</name></employee>
			<employee><code>S2</code><name>Dairy Co</name></employee>
		</employees>`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  url: `+server.URL+`/resto/api
  login: admin
  password: secret
logging:
  level: error
`), 0o600))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--config", path, "-o", "json", "suppliers", "list", "--filter", `like(Name, "farm")`})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		filterExpr = ""
		client = nil
	})

	require.NoError(t, rootCmd.ExecuteContext(context.Background()))

	var suppliers []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &suppliers))
	require.Len(t, suppliers, 1)
	assert.Equal(t, "S1", suppliers[0]["code"])

	require.True(t, client.HasSession())
	shutdown()
	assert.False(t, client.HasSession())
	assert.Equal(t, int32(1), auths.Load())
	assert.Equal(t, int32(1), logouts.Load())
}
