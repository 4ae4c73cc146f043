package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate keeps the default search paths away from real config files.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	return dir
}

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("mangapdf", pflag.ContinueOnError)
	fs.StringP("output", "o", "", "")
	fs.IntP("jobs", "j", 6, "")
	fs.IntP("retries", "r", 5, "")
	fs.Duration("retry-delay", 10*time.Second, "")
	fs.Duration("pause", time.Second, "")
	fs.String("backend", BackendExternal, "")
	fs.Float64("rate", 0, "")
	fs.Bool("tui", false, "")
	return fs
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := NewLoader().Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "jobs: 3\nbackend: pdfcpu\nretry_delay: 2s\nrate: 1.5\n")

	loader := NewLoader()
	cfg, err := loader.Load("")
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Jobs)
	assert.Equal(t, BackendPDFCPU, cfg.Backend)
	assert.Equal(t, 2*time.Second, cfg.RetryDelay)
	assert.Equal(t, 1.5, cfg.Rate)
	assert.Equal(t, 5, cfg.Retries)
	assert.Equal(t, "config.yaml", filepath.Base(loader.ConfigFileUsed()))
}

func TestLoad_Precedence(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, "jobs: 3\nretries: 2\npause: 5s\n")
	t.Setenv("MANGAPDF_JOBS", "9")
	t.Setenv("MANGAPDF_RETRIES", "7")

	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"-j", "12", "--output", "out.pdf"}))

	loader := NewLoader()
	require.NoError(t, loader.BindFlags(fs))
	cfg, err := loader.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Jobs, "flag beats env")
	assert.Equal(t, 7, cfg.Retries, "env beats file")
	assert.Equal(t, 5*time.Second, cfg.Pause, "file beats default")
	assert.Equal(t, "out.pdf", cfg.Output)
	assert.Equal(t, BackendExternal, cfg.Backend)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("explicit file missing", func(t *testing.T) {
		dir := isolate(t)
		_, err := NewLoader().Load(filepath.Join(dir, "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed file", func(t *testing.T) {
		dir := isolate(t)
		path := writeConfig(t, dir, "jobs: [1, 2\n")
		_, err := NewLoader().Load(path)
		assert.Error(t, err)
	})

	t.Run("invalid values", func(t *testing.T) {
		isolate(t)
		t.Setenv("MANGAPDF_BACKEND", "ghostscript")
		_, err := NewLoader().Load("")
		assert.ErrorIs(t, err, ErrInvalidConfig)
		assert.ErrorContains(t, err, "ghostscript")
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"pdfcpu backend", func(c *Config) { c.Backend = BackendPDFCPU }, ""},
		{"zero jobs", func(c *Config) { c.Jobs = 0 }, "jobs"},
		{"zero retries", func(c *Config) { c.Retries = 0 }, "retries"},
		{"negative delay", func(c *Config) { c.RetryDelay = -time.Second }, "retry delay"},
		{"negative pause", func(c *Config) { c.Pause = -1 }, "pause"},
		{"negative rate", func(c *Config) { c.Rate = -2 }, "rate"},
		{"unknown backend", func(c *Config) { c.Backend = "latex" }, "unknown backend"},
		{"empty api", func(c *Config) { c.API = "" }, "api"},
		{"known device", func(c *Config) { c.Device = "kindle-paperwhite3" }, ""},
		{"unknown device", func(c *Config) { c.Device = "etch-a-sketch" }, "unknown device"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoad_DeviceFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("MANGAPDF_DEVICE", "kobo-clara")

	cfg, err := NewLoader().Load("")
	require.NoError(t, err)
	assert.Equal(t, "kobo-clara", cfg.Device)
}
