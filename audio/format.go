package audio

import (
	"bytes"
	"strings"

	"golang.org/x/exp/slices"
)

// Format is a best-effort guess of the decrypted audio container, used only to
// pick an output extension.
type Format int

const (
	FormatUnknown Format = iota
	FormatFLAC
	FormatMP3
	FormatOgg
	FormatM4A
	FormatWAV
)

var formatNames = []string{"", "flac", "mp3", "ogg", "m4a", "wav"}

// HeadSize is enough decrypted bytes for DetectFormat.
const HeadSize = 12

func (f Format) String() string {
	switch f {
	case FormatFLAC:
		return "FLAC"
	case FormatMP3:
		return "MP3"
	case FormatOgg:
		return "Ogg"
	case FormatM4A:
		return "M4A"
	case FormatWAV:
		return "WAV"
	default:
		return "Unknown"
	}
}

// Extension returns the file extension with the leading dot, empty for
// FormatUnknown.
func (f Format) Extension() string {
	if f <= FormatUnknown || int(f) >= len(formatNames) {
		return ""
	}
	return "." + formatNames[f]
}

// DetectFormat matches the first decrypted bytes against known signatures.
func DetectFormat(head []byte) Format {
	switch {
	case bytes.HasPrefix(head, []byte("fLaC")):
		return FormatFLAC
	case bytes.HasPrefix(head, []byte("ID3")):
		return FormatMP3
	case bytes.HasPrefix(head, []byte("OggS")):
		return FormatOgg
	case len(head) >= 8 && bytes.Equal(head[4:8], []byte("ftyp")):
		return FormatM4A
	case len(head) >= 12 && bytes.HasPrefix(head, []byte("RIFF")) && bytes.Equal(head[8:12], []byte("WAVE")):
		return FormatWAV
	case len(head) >= 2 && head[0] == 0xff && head[1]&0xe0 == 0xe0:
		// MPEG audio frame sync without an ID3 tag
		return FormatMP3
	default:
		return FormatUnknown
	}
}

// FormatFromName maps a format name such as the one stored in the metadata
// record ("flac", "MP3", ".ogg") to a Format.
func FormatFromName(name string) Format {
	name = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), ".")
	if name == "" {
		return FormatUnknown
	}

	if idx := slices.Index(formatNames, name); idx > 0 {
		return Format(idx)
	}
	return FormatUnknown
}
