package container

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	ncmdump "github.com/ncmdump/go-ncmdump"
)

const (
	Magic = "CTENFDAM\x01\x70"

	headerGapSize = 2
	crcSize       = 4
	trailerGap    = 5
	lengthSize    = 4
)

// HasMagic reports whether r starts with the container magic.
func HasMagic(r io.ReaderAt) bool {
	buf := make([]byte, len(Magic))
	n, _ := r.ReadAt(buf, 0)
	return n == len(buf) && string(buf) == Magic
}

// Cursor reads the container sections in order. It is bounds checked against
// the size of the source and never reads past the section it was asked for.
type Cursor struct {
	r      io.ReaderAt
	size   int64
	offset int64
}

func NewCursor(r ncmdump.SizedReaderAt) *Cursor {
	return &Cursor{r: r, size: r.Size()}
}

// Offset returns the position of the next read.
func (c *Cursor) Offset() int64 {
	return c.offset
}

func (c *Cursor) available() int64 {
	if c.offset >= c.size {
		return 0
	}
	return c.size - c.offset
}

func (c *Cursor) readFull(what string, n int64) ([]byte, error) {
	if n > c.available() {
		return nil, &TruncatedContainerError{What: what, Offset: c.offset, Declared: n, Available: c.available()}
	}

	buf := make([]byte, n)
	if n == 0 {
		return buf, nil
	}

	read, err := c.r.ReadAt(buf, c.offset)
	if read < len(buf) {
		if err == nil || err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("failed reading %s at offset %d: %w", what, c.offset, err)
	}

	c.offset += n
	return buf, nil
}

// ReadMagic checks the fixed magic at the start of the container.
func (c *Cursor) ReadMagic() error {
	start := c.offset
	if c.available() < int64(len(Magic)) {
		return &FormatError{Offset: start, Reason: "too short for magic"}
	}

	magic, err := c.readFull("magic", int64(len(Magic)))
	if err != nil {
		return err
	}

	if !bytes.Equal(magic, []byte(Magic)) {
		return &FormatError{Offset: start, Reason: fmt.Sprintf("bad magic %q", magic)}
	}

	return nil
}

// ReadUint32 reads a little-endian u32.
func (c *Cursor) ReadUint32(what string) (uint32, error) {
	buf, err := c.readFull(what, lengthSize)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(buf), nil
}

// ReadBlock reads a u32 little-endian length followed by that many bytes.
func (c *Cursor) ReadBlock(what string) ([]byte, error) {
	length, err := c.ReadUint32(what + " length")
	if err != nil {
		return nil, err
	}

	return c.readFull(what, int64(length))
}

// Skip advances past n bytes without reading them.
func (c *Cursor) Skip(what string, n int64) error {
	if n < 0 {
		return &FormatError{Offset: c.offset, Reason: fmt.Sprintf("negative skip for %s", what)}
	} else if n > c.available() {
		return &TruncatedContainerError{What: what, Offset: c.offset, Declared: n, Available: c.available()}
	}

	c.offset += n
	return nil
}

// Remaining returns the region from the current offset to the end of the
// source. Nothing is read.
func (c *Cursor) Remaining() (offset, length int64) {
	return c.offset, c.available()
}
