// Package container opens encrypted audio containers: it walks the fixed
// layout, recovers the audio key and the metadata, and exposes the audio
// payload as a lazily decrypted reader.
//
// Layout, all integers little-endian:
//
//	magic (10) | gap (2) | key length (4) | key blob
//	meta length (4) | meta blob | crc32 (4) | gap (5)
//	cover length (4) | cover image | audio payload ...
package container

import (
	"errors"
	"fmt"
	"io"

	ncmdump "github.com/ncmdump/go-ncmdump"
	"github.com/ncmdump/go-ncmdump/audio"
	"github.com/ncmdump/go-ncmdump/keys"
	"github.com/ncmdump/go-ncmdump/keystream"
	"github.com/ncmdump/go-ncmdump/metadata"
)

type Container struct {
	Key      []byte
	Table    keystream.Table
	MetaKind keys.MetaKind
	Metadata *metadata.Record
	Cover    *metadata.Artwork

	// CRC is read but never checked, decoding does not depend on it.
	CRC uint32

	PayloadOffset int64
	PayloadSize   int64

	// Warnings holds the non-fatal problems met while opening, currently
	// only *MetadataParseError values.
	Warnings []error

	source io.ReaderAt
}

// Open parses the container read from r. Only the header sections are read,
// the audio payload is left in place and decrypted on demand through Audio.
func Open(log ncmdump.Logger, r ncmdump.SizedReaderAt) (*Container, error) {
	log = ncmdump.OrNull(log)

	cur := NewCursor(r)
	if err := cur.ReadMagic(); err != nil {
		return nil, err
	} else if err := cur.Skip("header gap", headerGapSize); err != nil {
		return nil, err
	}

	c := &Container{source: r}

	keyBlob, err := cur.ReadBlock("key blob")
	if err != nil {
		return nil, err
	}

	c.Key, err = keys.RecoverKey(keyBlob)
	if err != nil {
		return nil, &CorruptKeyError{Err: err}
	}

	c.Table, err = keystream.New(c.Key)
	if err != nil {
		return nil, &CorruptKeyError{Err: err}
	}

	log.Tracef("recovered %d bytes key from %d bytes blob", len(c.Key), len(keyBlob))

	metaOffset := cur.Offset()
	metaBlob, err := cur.ReadBlock("metadata blob")
	if err != nil {
		return nil, err
	}

	c.Metadata = c.readMetadata(log, metaBlob)
	log.Tracef("metadata blob at offset %d, %d bytes", metaOffset, len(metaBlob))

	if c.CRC, err = cur.ReadUint32("crc"); err != nil {
		return nil, err
	} else if err := cur.Skip("trailer gap", trailerGap); err != nil {
		return nil, err
	}

	log.Debugf("container crc32 %08x (not verified)", c.CRC)

	coverBlock, err := cur.ReadBlock("cover image")
	if err != nil {
		return nil, err
	}

	c.Cover = metadata.ExtractArtwork(coverBlock)
	c.PayloadOffset, c.PayloadSize = cur.Remaining()

	log.WithFields(ncmdump.Fields{
		"meta_kind":  c.MetaKind,
		"cover_size": len(coverBlock),
		"warnings":   len(c.Warnings),
	}).Debugf("audio payload at offset %d, %d bytes", c.PayloadOffset, c.PayloadSize)
	return c, nil
}

func (c *Container) readMetadata(log ncmdump.Logger, blob []byte) *metadata.Record {
	if len(blob) == 0 {
		return &metadata.Record{}
	}

	text, kind, err := keys.RecoverMetadata(blob)
	if err != nil {
		c.warn(log, &MetadataParseError{Stage: "decrypt", Err: err})
		return &metadata.Record{}
	}

	c.MetaKind = kind

	rec, err := metadata.Parse(text)
	if err != nil {
		c.warn(log, &MetadataParseError{Stage: "parse", Err: err})
	}

	return rec
}

func (c *Container) warn(log ncmdump.Logger, err error) {
	c.Warnings = append(c.Warnings, err)
	log.WithError(err).Warn("ignoring metadata error")
}

// Audio returns the decrypted audio payload.
func (c *Container) Audio() *audio.Decryptor {
	return audio.NewDecryptor(c.source, c.PayloadOffset, c.PayloadSize, &c.Table)
}

// Format guesses the decrypted audio format from its first bytes, falling back
// to the format named in the metadata record. FormatUnknown is not an error.
func (c *Container) Format() (audio.Format, error) {
	head, err := c.Audio().Head(audio.HeadSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return audio.FormatUnknown, fmt.Errorf("failed reading audio head: %w", err)
	}

	if f := audio.DetectFormat(head); f != audio.FormatUnknown {
		return f, nil
	}

	return audio.FormatFromName(c.Metadata.Format), nil
}
