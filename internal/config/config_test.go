package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"PORT", "API_KEY", "REGISTRY_URL", "REGISTRY_TIMEOUT_SECONDS", "REGISTRY_CACHE", "PLOT_DIR", "LOG_FILE", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.Equal(t, time.Duration(0), cfg.Registry.Timeout())
}

func TestLoad_YAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "cfg.yaml", `
port: "9090"
api_key: secret
registry:
  url: http://h2o.internal:54321
  timeout_seconds: 30
  cache: true
plot:
  width: 8
  height: 6
  dir: out
log:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, "secret", cfg.APIKey)
	require.Equal(t, "http://h2o.internal:54321", cfg.Registry.URL)
	require.Equal(t, 30*time.Second, cfg.Registry.Timeout())
	require.True(t, cfg.Registry.Cache)
	require.Equal(t, 8.0, cfg.Plot.Width)
	require.Equal(t, "out", cfg.Plot.Dir)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_TOML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "cfg.toml", `
port = "7000"

[registry]
url = "https://models.example.com"

[plot]
width = 12.5
height = 12.5
dir = "figures"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "7000", cfg.Port)
	require.Equal(t, "https://models.example.com", cfg.Registry.URL)
	require.Equal(t, 12.5, cfg.Plot.Height)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "cfg.yaml", "port: \"9090\"\n")
	t.Setenv("PORT", "9191")
	t.Setenv("REGISTRY_URL", "http://other:54321")
	t.Setenv("REGISTRY_TIMEOUT_SECONDS", "5")
	t.Setenv("REGISTRY_CACHE", "true")
	t.Setenv("PLOT_DIR", "/tmp/plots")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "9191", cfg.Port)
	require.Equal(t, "http://other:54321", cfg.Registry.URL)
	require.Equal(t, 5*time.Second, cfg.Registry.Timeout())
	require.True(t, cfg.Registry.Cache)
	require.Equal(t, "/tmp/plots", cfg.Plot.Dir)
	require.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]struct {
		file string
		body string
		env  map[string]string
	}{
		"bad level":      {env: map[string]string{"LOG_LEVEL": "verbose"}},
		"bad port":       {env: map[string]string{"PORT": "http"}},
		"bad url":        {file: "cfg.yaml", body: "registry:\n  url: not a url\n"},
		"negative width": {file: "cfg.toml", body: "[plot]\nwidth = -1\n"},
		"unknown format": {file: "cfg.json", body: "{}"},
		"malformed yaml": {file: "cfg.yaml", body: "port: [\n"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			path := ""
			if tc.file != "" {
				path = writeFile(t, tc.file, tc.body)
			}
			_, err := Load(path)
			require.Error(t, err)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		clearEnv(t)
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
	})
}
