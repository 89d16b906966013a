//go:build test_unit

package keystream

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef")

func referenceTable(key []byte) [Size]byte {
	s := make([]int, Size)
	for i := range s {
		s[i] = i
	}

	j := 0
	for i := 0; i < Size; i++ {
		j = (s[i] + int(key[i%len(key)]) + j) & 0xff
		s[i], s[j] = s[j], s[i]
	}

	var out [Size]byte
	for i := 0; i < Size; i++ {
		out[i] = byte(s[(s[i]+s[(i+1)&0xff])&0xff])
	}
	return out
}

func TestNewEmptyKey(t *testing.T) {
	_, err := New(nil)
	require.ErrorIs(t, err, ErrEmptyKey)

	_, err = New([]byte{})
	require.ErrorIs(t, err, ErrEmptyKey)
}

func TestNewMatchesReference(t *testing.T) {
	for _, key := range [][]byte{
		testKey,
		{0x00},
		{0xff, 0xfe, 0xfd},
		bytes.Repeat([]byte{0xaa}, 300),
	} {
		table, err := New(key)
		require.NoError(t, err)
		assert.Equal(t, referenceTable(key), [Size]byte(table))
	}
}

func TestNewDeterministic(t *testing.T) {
	a, err := New(testKey)
	require.NoError(t, err)
	b, err := New(testKey)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := New([]byte("fedcba9876543210"))
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestByteAtPeriodic(t *testing.T) {
	table, err := New(testKey)
	require.NoError(t, err)

	for _, o := range []uint64{0, 1, 127, 255, 256, 4097, 1 << 40, ^uint64(0) - Size} {
		assert.Equal(t, table.ByteAt(o), table.ByteAt(o+Size), "offset %d", o)
		assert.Equal(t, table[o%Size], table.ByteAt(o), "offset %d", o)
	}
}

func TestByteAtMaxOffset(t *testing.T) {
	table, err := New(testKey)
	require.NoError(t, err)
	assert.Equal(t, table[Size-1], table.ByteAt(^uint64(0)))
}

func TestXOR(t *testing.T) {
	table, err := New(testKey)
	require.NoError(t, err)

	src := make([]byte, 600)
	for i := range src {
		src[i] = byte(i * 7)
	}

	dst := make([]byte, len(src))
	n := table.XOR(1000, dst, src)
	require.Equal(t, len(src), n)

	for k := range src {
		if dst[k] != src[k]^table.ByteAt(uint64(1000+k)) {
			t.Fatalf("dst[%d] = %#x, wanted %#x", k, dst[k], src[k]^table.ByteAt(uint64(1000+k)))
		}
	}

	// in place
	buf := bytes.Clone(src)
	table.XOR(1000, buf, buf)
	assert.Equal(t, dst, buf)

	// short destination
	n = table.XOR(0, make([]byte, 10), src)
	assert.Equal(t, 10, n)
}
