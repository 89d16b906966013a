// Package keystream derives the 256-byte table that the audio payload is
// XOR-ed with. The table is a pure function of the recovered key and is
// addressed by payload offset, so any byte range can be decrypted without
// processing what comes before it.
package keystream

import "errors"

const Size = 256

var ErrEmptyKey = errors.New("keystream: empty key")

// Table is the derived keystream. It is a value type: once built it is only
// ever read, so copies can be shared freely between goroutines.
type Table [Size]byte

// New schedules the key into a permutation and derives the keystream table
// from it.
func New(key []byte) (Table, error) {
	var t Table
	if len(key) == 0 {
		return t, ErrEmptyKey
	}

	var box [Size]byte
	for i := 0; i < Size; i++ {
		box[i] = byte(i)
	}

	j := 0
	for i := 0; i < Size; i++ {
		j = (int(box[i]) + int(key[i%len(key)]) + j) % Size
		box[i], box[j] = box[j], box[i]
	}

	for i := 0; i < Size; i++ {
		t[i] = box[(int(box[i])+int(box[(i+1)%Size]))%Size]
	}

	return t, nil
}

// ByteAt returns the keystream byte for the given payload offset.
func (t *Table) ByteAt(offset uint64) byte {
	return t[offset%Size]
}

// XOR applies the keystream to src, starting at the given payload offset, and
// writes the result to dst. dst and src may be the same slice. It returns the
// number of bytes written, min(len(dst), len(src)).
func (t *Table) XOR(offset uint64, dst, src []byte) int {
	n := len(src)
	if len(dst) < n {
		n = len(dst)
	}

	pos := int(offset % Size)
	for k := 0; k < n; k++ {
		dst[k] = src[k] ^ t[pos]
		if pos++; pos == Size {
			pos = 0
		}
	}

	return n
}
