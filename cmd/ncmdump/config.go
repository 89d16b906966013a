package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/ncmdump/go-ncmdump/audio"
	"github.com/ncmdump/go-ncmdump/source"
	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
	"golang.org/x/exp/slices"
)

const (
	minWorkers = 1
	maxWorkers = 8
)

var (
	ErrNoFile  = errors.New("no file can be converted")
	ErrWorkers = fmt.Errorf("workers must be between %d and %d", minWorkers, maxWorkers)
)

var metadataFormats = []string{"", "json", "xml"}

type Config struct {
	LogLevel     string `koanf:"log_level"`
	Output       string `koanf:"output"`
	Verbose      bool   `koanf:"verbose"`
	Workers      int    `koanf:"workers"`
	ChunkWorkers int    `koanf:"chunk_workers"`
	ChunkSize    int    `koanf:"chunk_size"`
	Cover        bool   `koanf:"cover"`
	Metadata     string `koanf:"metadata"`
	HTTP         struct {
		Retries   uint64 `koanf:"retries"`
		ChunkSize int64  `koanf:"chunk_size"`
	} `koanf:"http"`

	Inputs []string `koanf:"-"`
}

func (c *Config) validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	} else if c.Workers < minWorkers || c.Workers > maxWorkers {
		return ErrWorkers
	} else if c.ChunkWorkers < 1 {
		return fmt.Errorf("chunk workers must be positive: %d", c.ChunkWorkers)
	} else if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive: %d", c.ChunkSize)
	} else if !slices.Contains(metadataFormats, c.Metadata) {
		return fmt.Errorf("unknown metadata format: %s", c.Metadata)
	} else if len(c.Inputs) == 0 {
		return ErrNoFile
	}

	return nil
}

func (c *Config) sourceOptions() source.Options {
	return source.Options{ChunkSize: c.HTTP.ChunkSize, MaxRetries: c.HTTP.Retries}
}

func loadConfig(args []string) (*Config, error) {
	f := flag.NewFlagSet("ncmdump", flag.ContinueOnError)
	f.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Usage: ncmdump [flags] FILES...\n\n")
		f.PrintDefaults()
	}

	configPath := f.String("config", "", "path to a yaml configuration file")
	f.StringP("output", "o", "", "output directory, defaults to the directory of each input")
	f.BoolP("verbose", "v", false, "log every processed file")
	f.IntP("workers", "w", minWorkers, fmt.Sprintf("files converted at once (%d-%d)", minWorkers, maxWorkers))
	f.Int("chunk_workers", 1, "goroutines decrypting a single file")
	f.Int("chunk_size", audio.DefaultChunkSize, "bytes decrypted per chunk")
	f.Bool("cover", false, "also write the cover image next to the audio")
	f.String("metadata", "", "also write the metadata record (json or xml)")
	f.String("log_level", "info", "log level")
	if err := f.Parse(args); err != nil {
		return nil, err
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"log_level":       "info",
		"workers":         minWorkers,
		"chunk_workers":   1,
		"chunk_size":      audio.DefaultChunkSize,
		"http.retries":    3,
		"http.chunk_size": source.DefaultChunkSize,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed loading defaults: %w", err)
	}

	if *configPath != "" {
		if err := k.Load(file.Provider(*configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed reading configuration file: %w", err)
		}
	}

	if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
		return nil, fmt.Errorf("failed loading command line flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed parsing configuration: %w", err)
	}

	cfg.Inputs = f.Args()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
