//go:build test_unit

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.ncm"))
	touch(t, filepath.Join(dir, "b.NCM"))
	touch(t, filepath.Join(dir, "c.mp3"))
	touch(t, filepath.Join(dir, "sub", "d.ncm"))
	touch(t, filepath.Join(dir, "other", "e.bin"))
	touch(t, filepath.Join(dir, "sub", "f.qmcflac"))

	inputs, err := expandInputs([]string{
		filepath.Join(dir, "*.ncm"),
		filepath.Join(dir, "sub"),
		filepath.Join(dir, "other", "e.bin"),
		filepath.Join(dir, "a.ncm"),
		filepath.Join(dir, "missing.ncm"),
		"https://example.com/song.ncm",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "a.ncm"),
		filepath.Join(dir, "sub", "d.ncm"),
		filepath.Join(dir, "sub", "f.qmcflac"),
		filepath.Join(dir, "other", "e.bin"),
		filepath.Join(dir, "missing.ncm"),
		"https://example.com/song.ncm",
	}, inputs)

	inputs, err = expandInputs([]string{dir})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "a.ncm"),
		filepath.Join(dir, "b.NCM"),
		filepath.Join(dir, "sub", "d.ncm"),
		filepath.Join(dir, "sub", "f.qmcflac"),
	}, inputs)

	_, err = expandInputs([]string{"[invalid"})
	assert.Error(t, err)
}

func TestOutputBase(t *testing.T) {
	assert.Equal(t, filepath.Join("music", "song"), outputBase(filepath.Join("music", "song.ncm"), ""))
	assert.Equal(t, filepath.Join("out", "song"), outputBase(filepath.Join("music", "song.ncm"), "out"))
	assert.Equal(t, "track", outputBase("https://example.com/files/track.ncm?sig=1", ""))
	assert.Equal(t, filepath.Join("out", "download"), outputBase("https://example.com/", "out"))
}
