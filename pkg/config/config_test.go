package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	cfg := fromViper(v)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, "01/02/2006", cfg.Documents.DateLayout)
	assert.Equal(t, time.UTC, cfg.Documents.Location())
	assert.Equal(t, CacheDriverMemory, cfg.Cache.Driver)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 1, cfg.Snapshots.Workers)
	assert.False(t, cfg.Snapshots.Enabled)
}

func TestOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("CACHE_DRIVER", " Redis ")
	v.Set("CACHE_TTL", "not-a-duration")
	v.Set("SNAPSHOT_WORKERS", 0)
	v.Set("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	v.Set("DATE_TIMEZONE", "Nowhere/Invalid")
	cfg := fromViper(v)

	assert.Equal(t, CacheDriverRedis, cfg.Cache.Driver)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 1, cfg.Snapshots.Workers)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, time.UTC, cfg.Documents.Location())
}
