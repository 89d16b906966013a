//go:build test_unit

package main

import (
	"os"
	"path/filepath"
	"testing"

	ncmdump "github.com/ncmdump/go-ncmdump"
	"github.com/ncmdump/go-ncmdump/audio"
	"github.com/ncmdump/go-ncmdump/source"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig([]string{"a.ncm", "b.ncm"})
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, 1, cfg.ChunkWorkers)
	assert.Equal(t, audio.DefaultChunkSize, cfg.ChunkSize)
	assert.Equal(t, uint64(3), cfg.HTTP.Retries)
	assert.Equal(t, int64(source.DefaultChunkSize), cfg.HTTP.ChunkSize)
	assert.Empty(t, cfg.Output)
	assert.False(t, cfg.Cover)
	assert.Equal(t, []string{"a.ncm", "b.ncm"}, cfg.Inputs)
}

func TestLoadConfigFlags(t *testing.T) {
	cfg, err := loadConfig([]string{"-o", "/tmp/out", "-w", "4", "-v", "--cover", "--metadata", "xml", "--chunk_workers", "3", "x.ncm"})
	require.NoError(t, err)

	assert.Equal(t, "/tmp/out", cfg.Output)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 3, cfg.ChunkWorkers)
	assert.True(t, cfg.Verbose)
	assert.True(t, cfg.Cover)
	assert.Equal(t, "xml", cfg.Metadata)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 6\noutput: /music\nhttp:\n  retries: 7\n"), 0o644))

	cfg, err := loadConfig([]string{"--config", path, "x.ncm"})
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Workers)
	assert.Equal(t, "/music", cfg.Output)
	assert.Equal(t, uint64(7), cfg.HTTP.Retries)

	// flags win over the file
	cfg, err = loadConfig([]string{"--config", path, "-w", "2", "x.ncm"})
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers)

	_, err = loadConfig([]string{"--config", filepath.Join(t.TempDir(), "missing.yml"), "x.ncm"})
	assert.ErrorContains(t, err, "failed reading configuration file")
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no files", nil, ErrNoFile.Error()},
		{"zero workers", []string{"-w", "0", "a.ncm"}, ErrWorkers.Error()},
		{"too many workers", []string{"-w", "9", "a.ncm"}, ErrWorkers.Error()},
		{"bad chunk workers", []string{"--chunk_workers", "0", "a.ncm"}, "chunk workers"},
		{"bad log level", []string{"--log_level", "loud", "a.ncm"}, "invalid log level"},
		{"bad metadata", []string{"--metadata", "yaml", "a.ncm"}, "unknown metadata format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(tt.args)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestNewLogger(t *testing.T) {
	cfg, err := loadConfig([]string{"--log_level", "debug", "x.ncm"})
	require.NoError(t, err)

	logger, err := newLogger(cfg)
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.Log.Logger.GetLevel())

	entry := logger.WithFields(ncmdump.Fields{"input": "x.ncm"}).(LogrusAdapter)
	assert.Equal(t, "x.ncm", entry.Log.Data["input"])

	cfg.LogLevel = "loud"
	_, err = newLogger(cfg)
	assert.Error(t, err)
}
