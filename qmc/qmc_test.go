//go:build test_unit

package qmc

import (
	"bytes"
	"io"
	"testing"

	ncmdump "github.com/ncmdump/go-ncmdump"
	"github.com/ncmdump/go-ncmdump/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedWalk produces masks one by one the way stream decoders do, skipping
// the positions where the walk restarts.
type seedWalk struct {
	x, y, dx, index int
}

func newSeedWalk() *seedWalk {
	return &seedWalk{x: -1, y: 8, dx: 1}
}

func (s *seedWalk) next() byte {
	s.index++

	var mask byte
	switch {
	case s.x < 0:
		s.dx, s.y, mask = 1, (8-s.y)%8, 0xc3
	case s.x > 6:
		s.dx, s.y, mask = -1, 7-s.y, 0xd8
	default:
		mask = seedMap[s.y][s.x]
	}

	s.x += s.dx
	if s.index == 0x8000 || (s.index > 0x8000 && (s.index+1)%0x8000 == 0) {
		return s.next()
	}

	return mask
}

func TestMaskMatchesSeedWalk(t *testing.T) {
	walk := newSeedWalk()
	for offset := uint64(0); offset < maskPeriod; offset++ {
		require.Equal(t, walk.next(), Mask(offset), "offset %d", offset)
	}
}

func TestMaskValues(t *testing.T) {
	first := []byte{0xc3, 0x4a, 0xd6, 0xca, 0x90, 0x67, 0xf7, 0x52, 0xd8, 0xa1, 0x66, 0x62, 0x9f, 0x5b, 0x09, 0x00}
	for i, want := range first {
		assert.Equal(t, want, Mask(uint64(i)), "offset %d", i)
	}

	testCases := []struct {
		offset uint64
		want   byte
	}{
		{0x7ffe, 0xd6},
		{0x7fff, 0x4a},
		{0x8000, 0x4a},
		{0x8001, 0xd6},
		{0x10000, 0xd6},
		{0x12345, 0xf0},
		{1 << 32, 0x90},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, Mask(tc.offset), "offset %#x", tc.offset)
	}
}

func TestStaticCipherChunks(t *testing.T) {
	plain := bytes.Repeat([]byte("static cipher payload "), 3000)

	whole := make([]byte, len(plain))
	StaticCipher{}.XOR(0, whole, plain)

	chunked := make([]byte, len(plain))
	for off := 0; off < len(plain); off += 4093 {
		end := min(off+4093, len(plain))
		StaticCipher{}.XOR(uint64(off), chunked[off:end], plain[off:end])
	}
	assert.Equal(t, whole, chunked)

	// the cipher is its own inverse
	StaticCipher{}.XOR(0, whole, whole)
	assert.Equal(t, plain, whole)
}

func encrypt(plain []byte) []byte {
	enc := make([]byte, len(plain))
	StaticCipher{}.XOR(0, enc, plain)
	return enc
}

func TestOpen(t *testing.T) {
	plain := append([]byte("fLaC"), bytes.Repeat([]byte{0x11, 0x22}, 40000)...)

	f, err := Open(ncmdump.NullLogger{}, bytes.NewReader(encrypt(plain)))
	require.NoError(t, err)
	assert.Equal(t, audio.FormatFLAC, f.Format)
	assert.Equal(t, int64(len(plain)), f.Size())

	got, err := io.ReadAll(f.Audio().NewReader())
	require.NoError(t, err)
	assert.Equal(t, plain, got)
}

func TestOpenUnknown(t *testing.T) {
	_, err := Open(nil, bytes.NewReader(encrypt([]byte("not audio at all"))))
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Open(nil, bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
