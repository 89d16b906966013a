package metadata

import "bytes"

// Artwork is the cover image block of a container, kept verbatim.
type Artwork struct {
	// MIMEType is a hint sniffed from the first bytes, empty if unknown.
	MIMEType string
	Data     []byte
}

// ExtractArtwork wraps the raw cover block. An empty block means the
// container has no cover and yields nil.
func ExtractArtwork(block []byte) *Artwork {
	if len(block) == 0 {
		return nil
	}

	return &Artwork{MIMEType: sniffImage(block), Data: block}
}

// Extension returns a file extension for the image, defaulting to .jpg.
func (a *Artwork) Extension() string {
	switch a.MIMEType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

func sniffImage(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte{0xff, 0xd8, 0xff}):
		return "image/jpeg"
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return "image/png"
	case bytes.HasPrefix(data, []byte("GIF87a")), bytes.HasPrefix(data, []byte("GIF89a")):
		return "image/gif"
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return "image/webp"
	default:
		return ""
	}
}
