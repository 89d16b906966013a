package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/gofrs/flock"
	ncmdump "github.com/ncmdump/go-ncmdump"
	"github.com/ncmdump/go-ncmdump/audio"
	"github.com/ncmdump/go-ncmdump/container"
	"github.com/ncmdump/go-ncmdump/metadata"
	"github.com/ncmdump/go-ncmdump/qmc"
	"github.com/ncmdump/go-ncmdump/source"
)

type Dumper struct {
	log ncmdump.Logger
	cfg *Config
}

// InputKind tells which decoder handled an input.
type InputKind int

const (
	InputNCM InputKind = iota
	InputQMC
)

func (k InputKind) String() string {
	switch k {
	case InputNCM:
		return "ncm"
	case InputQMC:
		return "qmc"
	default:
		return fmt.Sprintf("InputKind(%d)", int(k))
	}
}

type DumpResult struct {
	Output    string
	Kind      InputKind
	Format    audio.Format
	Written   int64
	Truncated bool
}

// Dump converts a single ncm or qmc file and writes the audio, and optionally the
// cover and metadata, next to it or into the output directory.
func (d *Dumper) Dump(ctx context.Context, input string) (*DumpResult, error) {
	log := d.log.WithField("input", input)

	src, err := source.Open(ctx, log, input, d.cfg.sourceOptions())
	if err != nil {
		return nil, err
	}

	defer func() { _ = src.Close() }()

	in, err := d.open(log, src)
	if err != nil {
		return nil, err
	}

	ext := in.format.Extension()
	if ext == "" {
		log.Warnf("could not detect audio format, assuming %s", audio.FormatMP3)
		ext = audio.FormatMP3.Extension()
	}

	base := outputBase(input, d.cfg.Output)
	if d.cfg.Output != "" {
		if err := os.MkdirAll(d.cfg.Output, 0o755); err != nil {
			return nil, fmt.Errorf("failed creating output directory: %w", err)
		}
	}

	lock := flock.New(base + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed locking output: %w", err)
	} else if !locked {
		return nil, fmt.Errorf("output %s is being written by another process", base)
	}

	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lock.Path())
	}()

	res := &DumpResult{Output: base + ext, Format: in.format, Kind: in.kind}
	if res.Written, err = d.writeAudio(ctx, in.audio, res.Output); errors.Is(err, audio.ErrTruncated) {
		res.Truncated = true
		log.WithError(&container.TruncatedContainerError{
			What:      "audio payload",
			Offset:    in.payloadOffset,
			Declared:  in.audio.Size(),
			Available: res.Written,
		}).Warn("audio payload is incomplete, kept what could be decrypted")
	} else if err != nil {
		return nil, err
	}

	if d.cfg.Cover && in.cover != nil {
		if err := os.WriteFile(base+in.cover.Extension(), in.cover.Data, 0o644); err != nil {
			return nil, fmt.Errorf("failed writing cover: %w", err)
		}
	}

	// qmc files carry no metadata, only the audio is written for them
	if d.cfg.Metadata != "" && in.record != nil {
		// the cover is embedded only when it is not written on its own
		var art *metadata.Artwork
		if !d.cfg.Cover {
			art = in.cover
		}

		sidecar := metadata.NewSidecar(in.record, art)

		var data []byte
		switch d.cfg.Metadata {
		case "json":
			data = sidecar.ToJSONFormat()
		case "xml":
			data = sidecar.ToXMLFormat()
		}

		if err := os.WriteFile(base+"."+d.cfg.Metadata, data, 0o644); err != nil {
			return nil, fmt.Errorf("failed writing metadata: %w", err)
		}
	}

	return res, nil
}

// decodedInput is what either decoder hands over to the writers.
type decodedInput struct {
	kind          InputKind
	audio         *audio.Decryptor
	payloadOffset int64
	format        audio.Format
	record        *metadata.Record
	cover         *metadata.Artwork
}

// open sniffs the input: containers are recognized by their magic, anything
// else must decrypt to known audio with the static qmc cipher.
func (d *Dumper) open(log ncmdump.Logger, src source.Source) (*decodedInput, error) {
	if container.HasMagic(src) {
		c, err := container.Open(log, src)
		if err != nil {
			return nil, fmt.Errorf("failed opening container: %w", err)
		}

		format, err := c.Format()
		if err != nil {
			return nil, err
		}

		return &decodedInput{
			kind:          InputNCM,
			audio:         c.Audio(),
			payloadOffset: c.PayloadOffset,
			format:        format,
			record:        c.Metadata,
			cover:         c.Cover,
		}, nil
	}

	f, err := qmc.Open(log, src)
	if errors.Is(err, qmc.ErrUnknownFormat) {
		return nil, &container.FormatError{Offset: 0, Reason: "neither an ncm container nor a qmc file"}
	} else if err != nil {
		return nil, fmt.Errorf("failed opening qmc file: %w", err)
	}

	return &decodedInput{kind: InputQMC, audio: f.Audio(), format: f.Format}, nil
}

func (d *Dumper) writeAudio(ctx context.Context, dec *audio.Decryptor, path string) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed creating output: %w", err)
	}

	n, err := audio.ParallelCopy(ctx, f, dec, dec.Size(), d.cfg.ChunkSize, d.cfg.ChunkWorkers)
	if err != nil && !errors.Is(err, audio.ErrTruncated) {
		_ = f.Close()
		_ = os.Remove(path)
		return 0, fmt.Errorf("failed writing audio: %w", err)
	}

	// drop anything past a truncation point
	if truncErr := f.Truncate(n); truncErr != nil {
		_ = f.Close()
		return n, fmt.Errorf("failed truncating output: %w", truncErr)
	} else if closeErr := f.Close(); closeErr != nil {
		return n, fmt.Errorf("failed closing output: %w", closeErr)
	}

	return n, err
}
