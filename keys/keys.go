// Package keys recovers the audio key and the metadata text embedded in a
// container. Both blobs go through the same pipeline: unmask, optionally
// base64 decode, AES-128-ECB decrypt with a fixed key, strip PKCS#7 padding
// and finally strip a literal prefix.
package keys

import (
	"bytes"
	"crypto/aes"
	"encoding/base64"
	"errors"
	"fmt"
)

const (
	coreKey = "hzHRAmso5kInbaxW"
	metaKey = "#14ljk_!\\]&0U<'("

	coreMask byte = 0x64
	metaMask byte = 0x63

	corePrefix = "neteasecloudmusic"

	// metaArmor precedes the base64 text of the metadata blob.
	metaArmor = "163 key(Don't modify):"

	MusicPrefix = "music:"
	DjPrefix    = "dj:"
)

var (
	ErrBlockSize = errors.New("ciphertext is not a multiple of the block size")
	ErrPadding   = errors.New("invalid padding")
	ErrPrefix    = errors.New("missing literal prefix")
	ErrEmptyKey  = errors.New("recovered key is empty")
	ErrBase64    = errors.New("invalid base64 text")
)

// MetaKind tells which prefix the metadata text carried.
type MetaKind int

const (
	MetaMusic MetaKind = iota
	MetaDj
)

func (k MetaKind) String() string {
	switch k {
	case MetaMusic:
		return "music"
	case MetaDj:
		return "dj"
	default:
		return fmt.Sprintf("MetaKind(%d)", int(k))
	}
}

// RecoverKey turns the obfuscated key blob into the audio key. The blob is not
// modified.
func RecoverKey(blob []byte) ([]byte, error) {
	plain, err := decryptECB(coreKey, unmask(blob, coreMask))
	if err != nil {
		return nil, err
	}

	if !bytes.HasPrefix(plain, []byte(corePrefix)) {
		return nil, fmt.Errorf("key blob: %w %q", ErrPrefix, corePrefix)
	}

	key := plain[len(corePrefix):]
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}

	return key, nil
}

// RecoverMetadata turns the obfuscated metadata blob into its JSON text. The
// blob is not modified.
func RecoverMetadata(blob []byte) ([]byte, MetaKind, error) {
	armored := unmask(blob, metaMask)
	armored = bytes.TrimPrefix(armored, []byte(metaArmor))

	raw := make([]byte, base64.StdEncoding.DecodedLen(len(armored)))
	n, err := base64.StdEncoding.Decode(raw, armored)
	if err != nil {
		return nil, MetaMusic, fmt.Errorf("%w: %v", ErrBase64, err)
	}

	plain, err := decryptECB(metaKey, raw[:n])
	if err != nil {
		return nil, MetaMusic, err
	}

	switch {
	case bytes.HasPrefix(plain, []byte(MusicPrefix)):
		return plain[len(MusicPrefix):], MetaMusic, nil
	case bytes.HasPrefix(plain, []byte(DjPrefix)):
		return plain[len(DjPrefix):], MetaDj, nil
	default:
		return nil, MetaMusic, fmt.Errorf("metadata blob: %w %q", ErrPrefix, MusicPrefix)
	}
}

func unmask(blob []byte, mask byte) []byte {
	out := make([]byte, len(blob))
	for i, b := range blob {
		out[i] = b ^ mask
	}
	return out
}

// decryptECB decrypts data in place, one block at a time, and strips the
// PKCS#7 padding.
func decryptECB(key string, data []byte) ([]byte, error) {
	block, err := aes.NewCipher([]byte(key))
	if err != nil {
		return nil, fmt.Errorf("failed initializing cipher: %w", err)
	}

	bs := block.BlockSize()
	if len(data) == 0 || len(data)%bs != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrBlockSize, len(data))
	}

	for off := 0; off < len(data); off += bs {
		block.Decrypt(data[off:off+bs], data[off:off+bs])
	}

	return pkcs7Unpad(data, bs)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty data", ErrPadding)
	}

	padLen := int(data[len(data)-1])
	if padLen < 1 || padLen > blockSize || padLen > len(data) {
		return nil, fmt.Errorf("%w: length %d", ErrPadding, padLen)
	}

	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, fmt.Errorf("%w: unexpected byte %#x", ErrPadding, b)
		}
	}

	return data[:len(data)-padLen], nil
}
