// Package source provides the byte sources containers are opened from: local
// files and remote files fetched with ranged HTTP requests.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	ncmdump "github.com/ncmdump/go-ncmdump"
)

type Source interface {
	ncmdump.SizedReaderAt
	io.Closer
}

type Options struct {
	// ChunkSize is the size of the ranged requests for remote sources.
	ChunkSize int64
	// MaxRetries bounds the retries of a single remote chunk.
	MaxRetries uint64
	// Client is used for remote sources, http.DefaultClient if nil.
	Client *http.Client
}

func (o Options) withDefaults() Options {
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	return o
}

// IsRemote tells whether location should be fetched over HTTP.
func IsRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// Open returns a source for a local path or an http(s) URL.
func Open(ctx context.Context, log ncmdump.Logger, location string, opts Options) (Source, error) {
	if IsRemote(location) {
		r, err := NewHttpChunkedReader(ctx, log, opts.Client, location, opts)
		if err != nil {
			return nil, fmt.Errorf("failed opening remote source: %w", err)
		}
		return r, nil
	}

	return OpenFile(location)
}

// File is a local file source.
type File struct {
	*os.File
	size int64
}

func OpenFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed opening file: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed getting file info: %w", err)
	} else if stat.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("%s is a directory", path)
	}

	return &File{File: f, size: stat.Size()}, nil
}

func (f *File) Size() int64 {
	return f.size
}
