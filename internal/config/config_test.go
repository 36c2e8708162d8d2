package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motorlane/pipeline-api/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "America/New_York", cfg.App.Timezone)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "0 3 * * *", cfg.Jobs.PurgeCron)
	assert.Equal(t, 30, cfg.Jobs.PurgeAfterDays)
	assert.False(t, cfg.Jobs.PurgeEnabled)

	loc, err := cfg.App.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", loc.String())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("DATABASE_HOST", "db.internal")
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
}

func TestConnectionString(t *testing.T) {
	d := &config.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		Name:     "pipeline",
		User:     "pipeline_user",
		Password: "secret",
		SSLMode:  "disable",
	}
	assert.Equal(t,
		"host=localhost port=5432 user=pipeline_user password=secret dbname=pipeline sslmode=disable",
		d.ConnectionString())
}
