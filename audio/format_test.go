//go:build test_unit

package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		head []byte
		want Format
	}{
		{"flac", []byte("fLaC\x00\x00\x00\x22"), FormatFLAC},
		{"mp3 id3", []byte("ID3\x04\x00"), FormatMP3},
		{"mp3 frame sync", []byte{0xff, 0xfb, 0x90, 0x64}, FormatMP3},
		{"ogg", []byte("OggS\x00\x02"), FormatOgg},
		{"m4a", []byte("\x00\x00\x00\x20ftypM4A "), FormatM4A},
		{"wav", []byte("RIFF\x24\x08\x00\x00WAVEfmt "), FormatWAV},
		{"riff not wave", []byte("RIFF\x24\x08\x00\x00AVI "), FormatUnknown},
		{"empty", nil, FormatUnknown},
		{"garbage", []byte{0x12, 0x34, 0x56, 0x78}, FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFormat(tt.head))
		})
	}
}

func TestFormatExtension(t *testing.T) {
	assert.Equal(t, ".flac", FormatFLAC.Extension())
	assert.Equal(t, ".mp3", FormatMP3.Extension())
	assert.Equal(t, ".ogg", FormatOgg.Extension())
	assert.Equal(t, ".m4a", FormatM4A.Extension())
	assert.Equal(t, ".wav", FormatWAV.Extension())
	assert.Empty(t, FormatUnknown.Extension())
	assert.Empty(t, Format(42).Extension())
	assert.Equal(t, "Unknown", Format(42).String())
	assert.Equal(t, "FLAC", FormatFLAC.String())
}

func TestFormatFromName(t *testing.T) {
	assert.Equal(t, FormatFLAC, FormatFromName("flac"))
	assert.Equal(t, FormatMP3, FormatFromName(" MP3 "))
	assert.Equal(t, FormatOgg, FormatFromName(".ogg"))
	assert.Equal(t, FormatUnknown, FormatFromName(""))
	assert.Equal(t, FormatUnknown, FormatFromName("ape"))
}
