package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, "https://ftugate.ftu.edu.vn", cfg.Upstream.BaseURL)
	assert.Equal(t, "/api/auth/login", cfg.Upstream.LoginPath)
	assert.Equal(t, "/cq/hanoi/api/dkmh/w-xulydkmhsinhvien", cfg.Upstream.RegisterPath)
	assert.Equal(t, 99999, cfg.Upstream.SectionPageLimit)
	assert.Zero(t, cfg.Upstream.Timeout)
	assert.Equal(t, 12*time.Hour, cfg.Dashboard.TokenTTL)
	assert.Equal(t, 3, cfg.Search.MinQueryLength)
	assert.Equal(t, 5, cfg.Search.MaxGroups)
	assert.Equal(t, "danh_sach_mon_hoc", cfg.Export.FilenamePrefix)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Nil(t, cfg.CORS.AllowedOrigins)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("UPSTREAM_BASE_URL", "http://localhost:9000/")
	t.Setenv("UPSTREAM_TIMEOUT", "15s")
	t.Setenv("UPSTREAM_SECTION_PAGE_LIMIT", "-1")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("DASHBOARD_TOKEN_TTL", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000", cfg.Upstream.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, 99999, cfg.Upstream.SectionPageLimit)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 12*time.Hour, cfg.Dashboard.TokenTTL)
}
