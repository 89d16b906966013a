package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync/atomic"

	ncmdump "github.com/ncmdump/go-ncmdump"
	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

func run(ctx context.Context, logger ncmdump.Logger, cfg *Config) error {
	inputs, err := expandInputs(cfg.Inputs)
	if err != nil {
		return err
	} else if len(inputs) == 0 {
		return ErrNoFile
	}

	dumper := &Dumper{log: logger, cfg: cfg}

	var failed, converted, written atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)

	for _, input := range inputs {
		g.Go(func() error {
			res, err := dumper.Dump(gctx, input)
			if err != nil {
				failed.Add(1)
				logger.WithError(err).WithField("input", input).Error("failed converting file")
				return nil
			}

			converted.Add(1)
			written.Add(res.Written)

			entry := logger.WithFields(ncmdump.Fields{"input": input, "kind": res.Kind, "format": res.Format})
			if cfg.Verbose {
				entry.Infof("converted to %s (%d bytes)", res.Output, res.Written)
			} else {
				entry.Debugf("converted to %s (%d bytes)", res.Output, res.Written)
			}
			return nil
		})
	}

	_ = g.Wait()

	logger.Infof("converted %d of %d files, %d bytes written", converted.Load(), len(inputs), written.Load())
	if failed.Load() > 0 {
		return errors.New("some files could not be converted")
	}

	return ctx.Err()
}

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	} else if err != nil {
		log.WithError(err).Fatal("failed loading configuration")
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed creating logger")
	}

	logger.Debug(ncmdump.SystemInfoString())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, logger, cfg); err != nil {
		logger.WithError(err).Error("conversion finished with errors")
		stop()
		os.Exit(1)
	}
}
