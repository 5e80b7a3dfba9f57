package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/image-compressor/internal/format"
	"github.com/aliskhannn/image-compressor/internal/model"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
workers: 2
threads: 6
active_profile: web
profiles:
  - name: default
  - name: web
    jpeg_quality: 70
    should_convert: true
    convert_extension: avif
    should_resize: true
    resize_width: 1920
    resize_height: 1080
    add_postfix: false
trash:
  backend: bucket
  prefix: originals
retry:
  delay: 250ms
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 6, cfg.TotalThreads())
	assert.True(t, cfg.LockPaths)
	assert.Equal(t, "bucket", cfg.Trash.Backend)
	assert.Equal(t, "originals", cfg.Trash.Prefix)
	assert.Equal(t, 250*time.Millisecond, cfg.Retry.Delay)
	assert.Equal(t, 3, cfg.Retry.Attempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce)
	assert.Equal(t, "compress-results", cfg.Kafka.ResultsTopic)

	require.Len(t, cfg.Profiles, 2)
	assert.Equal(t, model.DefaultProfile(), cfg.Profiles[0])

	web, err := cfg.Profile("")
	require.NoError(t, err)
	assert.Equal(t, "web", web.Name)
	assert.Equal(t, 70, web.JPEGQuality)
	assert.Equal(t, 80, web.PNGQuality)
	assert.True(t, web.ConvertEnabled)
	assert.Equal(t, format.AVIF, web.ConvertFormat)
	assert.True(t, web.ResizeEnabled)
	assert.Equal(t, 1920, web.MaxWidth)
	assert.False(t, web.PostfixEnabled)
	assert.Equal(t, ".min", web.Postfix)

	_, err = cfg.Profile("print")
	require.ErrorIs(t, err, ErrProfileNotFound)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "workers: 2\n")
	t.Setenv("IMGC_WORKERS", "9")
	t.Setenv("DB_PASSWORD", "s3cret")
	t.Setenv("IMGC_STORAGE_SECRET_KEY", "minio-secret")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Workers)
	assert.Equal(t, "s3cret", cfg.Database.Master.Pass)
	assert.Equal(t, "minio-secret", cfg.Storage.SecretKey)
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "local", cfg.Trash.Backend)
	assert.Equal(t, []model.Profile{model.DefaultProfile()}, cfg.Profiles)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr())
	assert.Empty(t, cfg.Server.AllowedOrigins)
}

func TestLoadErrors(t *testing.T) {
	tests := map[string]string{
		"bad quality":       "profiles:\n  - name: default\n    png_quality: 101\n",
		"unknown format":    "profiles:\n  - name: default\n    convert_extension: bmp\n",
		"unknown option":    "profiles:\n  - name: default\n    sharpen: true\n",
		"unnamed profile":   "profiles:\n  - jpeg_quality: 50\n",
		"duplicate":         "profiles:\n  - name: default\n  - name: default\n",
		"missing active":    "active_profile: web\n",
		"bad trash":         "trash:\n  backend: s3\n",
		"no workers":        "workers: 0\n",
		"profiles not list": "profiles: default\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			require.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
}

func TestDSN(t *testing.T) {
	n := DatabaseNode{Host: "db", Port: "5432", User: "u", Pass: "p", Name: "images", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/images?sslmode=disable", n.DSN())
}
