// Package ncmtest builds synthetic containers for tests. It encodes with the
// same fixed keys and masks the decoder uses, so the decoder can be checked
// against an independent encoder instead of against itself.
package ncmtest

import (
	"bytes"
	"crypto/aes"
	"encoding/base64"
	"encoding/binary"
)

const (
	Magic = "CTENFDAM\x01\x70"

	coreKey = "hzHRAmso5kInbaxW"
	metaKey = "#14ljk_!\\]&0U<'("
)

// Pad appends PKCS#7 padding for 16-byte blocks.
func Pad(data []byte) []byte {
	n := aes.BlockSize - len(data)%aes.BlockSize
	return append(bytes.Clone(data), bytes.Repeat([]byte{byte(n)}, n)...)
}

// EncryptECB encrypts already padded data.
func EncryptECB(key string, data []byte) []byte {
	block, err := aes.NewCipher([]byte(key))
	if err != nil {
		panic(err)
	}

	out := make([]byte, len(data))
	for off := 0; off < len(data); off += aes.BlockSize {
		block.Encrypt(out[off:off+aes.BlockSize], data[off:off+aes.BlockSize])
	}
	return out
}

func Mask(data []byte, mask byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ mask
	}
	return out
}

// KeyBlob returns the obfuscated blob that recovers to key.
func KeyBlob(key []byte) []byte {
	plain := append([]byte("neteasecloudmusic"), key...)
	return RawKeyBlob(Pad(plain))
}

// RawKeyBlob encrypts and masks plain as is, without adding prefix or padding.
func RawKeyBlob(plain []byte) []byte {
	return Mask(EncryptECB(coreKey, plain), 0x64)
}

// MetaBlob returns the obfuscated blob that recovers to prefix followed by text.
func MetaBlob(prefix string, text []byte) []byte {
	plain := append([]byte(prefix), text...)
	enc := EncryptECB(metaKey, Pad(plain))
	armored := "163 key(Don't modify):" + base64.StdEncoding.EncodeToString(enc)
	return Mask([]byte(armored), 0x63)
}

// Options describes a container to build. Nil blobs are written with a zero
// length.
type Options struct {
	Magic    []byte
	KeyBlob  []byte
	MetaBlob []byte
	CRC      uint32
	Cover    []byte
	Audio    []byte
}

// Build lays out a container in the on-disk order.
func Build(opts Options) []byte {
	var buf bytes.Buffer

	if opts.Magic != nil {
		buf.Write(opts.Magic)
	} else {
		buf.WriteString(Magic)
	}
	buf.Write([]byte{0x00, 0x00})

	writeBlock(&buf, opts.KeyBlob)
	writeBlock(&buf, opts.MetaBlob)

	_ = binary.Write(&buf, binary.LittleEndian, opts.CRC)
	buf.Write(make([]byte, 5))

	writeBlock(&buf, opts.Cover)
	buf.Write(opts.Audio)
	return buf.Bytes()
}

func writeBlock(buf *bytes.Buffer, data []byte) {
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(data)))
	buf.Write(data)
}

// Encrypt XORs plain audio with the given keystream table bytes starting at
// payload offset 0.
func Encrypt(table [256]byte, plain []byte) []byte {
	out := make([]byte, len(plain))
	for i, b := range plain {
		out[i] = b ^ table[i%256]
	}
	return out
}
