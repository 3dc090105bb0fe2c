package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 100, cfg.Import.ChunkSize)
	assert.Equal(t, int64(10*1024*1024), cfg.Import.MaxUploadBytes)
	assert.True(t, cfg.Import.AsyncEnabled)
	assert.Equal(t, 24*time.Hour, cfg.Import.JobTTL)
	assert.Equal(t, 5*time.Minute, cfg.Athletes.CacheTTL)
	assert.Zero(t, cfg.Import.ChunksPerSecond)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("IMPORT_CHUNK_SIZE", 25)
	v.Set("IMPORT_CHUNKS_PER_SECOND", 2.5)
	v.Set("IMPORT_MAX_UPLOAD_BYTES", 0)
	v.Set("IMPORT_JOB_TTL", "not-a-duration")
	v.Set("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	v.Set("JWT_ISSUER", "identity")

	cfg := fromViper(v)

	assert.Equal(t, 25, cfg.Import.ChunkSize)
	assert.Equal(t, 2.5, cfg.Import.ChunksPerSecond)
	assert.Equal(t, int64(10*1024*1024), cfg.Import.MaxUploadBytes)
	assert.Equal(t, 24*time.Hour, cfg.Import.JobTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "identity", cfg.JWT.Issuer)
}
