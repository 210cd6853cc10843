package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestRead_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("APP_DB_DRIVER", "memory")

	c, err := Read(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 3000, c.App.HTTP.Port)
	assert.Equal(t, "memory", c.DB.Driver)
	assert.Equal(t, "fixed", c.Rates.Policy)
	assert.Equal(t, "", c.Admin.Token)
	assert.Equal(t, 60, c.Redis.TTLSec)

	r, err := c.Rates.FixedRate()
	require.NoError(t, err)
	assert.Equal(t, "5.5", r.String())
}

func TestRead_FileAndEnvOverrides(t *testing.T) {
	p := writeYAML(t, `
app:
  http:
    port: 8080
db:
  driver: postgres
  dsn: host=db
admin:
  token: from-file
rates:
  policy: live
  fixed: "5.1"
`)
	t.Setenv("ADMIN_TOKEN", "from-env")
	t.Setenv("PORT", "9090")

	c, err := Read(p)
	require.NoError(t, err)
	assert.Equal(t, "from-env", c.Admin.Token)
	assert.Equal(t, 9090, c.App.HTTP.Port)
	assert.Equal(t, "host=db", c.DB.DSN)
	assert.Equal(t, "live", c.Rates.Policy)
	assert.Equal(t, "5.1", c.Rates.Fixed)
}

func TestRead_PrefixedEnvWins(t *testing.T) {
	p := writeYAML(t, "db:\n  driver: memory\n")
	t.Setenv("APP_ADMIN_TOKEN", "prefixed")
	t.Setenv("ADMIN_TOKEN", "plain")

	c, err := Read(p)
	require.NoError(t, err)
	assert.Equal(t, "prefixed", c.Admin.Token)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			DB:    DB{Driver: "memory"},
			Rates: Rates{Policy: "fixed", Fixed: "5.5"},
		}
	}
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "ok", mutate: func(*Config) {}},
		{name: "bad driver", mutate: func(c *Config) { c.DB.Driver = "sqlite" }, wantErr: "db.driver"},
		{name: "missing dsn", mutate: func(c *Config) { c.DB.Driver = "postgres" }, wantErr: "db.dsn"},
		{name: "bad policy", mutate: func(c *Config) { c.Rates.Policy = "daily" }, wantErr: "rates.policy"},
		{name: "bad fixed", mutate: func(c *Config) { c.Rates.Fixed = "abc" }, wantErr: "rates.fixed"},
		{name: "zero fixed", mutate: func(c *Config) { c.Rates.Fixed = "0" }, wantErr: "rates.fixed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestRead_MalformedFile(t *testing.T) {
	p := writeYAML(t, "app: [unterminated")
	_, err := Read(p)
	assert.Error(t, err)
}
