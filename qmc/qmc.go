package qmc

import (
	"errors"
	"fmt"
	"io"

	ncmdump "github.com/ncmdump/go-ncmdump"
	"github.com/ncmdump/go-ncmdump/audio"
)

// ErrUnknownFormat is returned by Open when the decrypted audio does not start
// with a known signature, which means the input is not a static cipher file.
var ErrUnknownFormat = errors.New("qmc: no known audio signature after decryption")

// File is a static cipher file opened for decoding.
type File struct {
	Format audio.Format

	source io.ReaderAt
	size   int64
}

// Open checks that r decrypts to a known audio format. Nothing but the first
// few bytes is read.
func Open(log ncmdump.Logger, r ncmdump.SizedReaderAt) (*File, error) {
	log = ncmdump.OrNull(log)

	f := &File{source: r, size: r.Size()}
	head, err := f.Audio().Head(audio.HeadSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed reading audio head: %w", err)
	}

	if f.Format = audio.DetectFormat(head); f.Format == audio.FormatUnknown {
		return nil, ErrUnknownFormat
	}

	log.Debugf("qmc audio of %d bytes, format %s", f.size, f.Format)
	return f, nil
}

// Audio returns the decrypted audio, which spans the whole file.
func (f *File) Audio() *audio.Decryptor {
	return audio.NewDecryptor(f.source, 0, f.size, StaticCipher{})
}

func (f *File) Size() int64 {
	return f.size
}
