package go_ncmdump

import "io"

// SizedReaderAt is a random access byte source with a known length. Containers
// are always opened from one of these so that the audio payload can be read
// lazily at any offset.
type SizedReaderAt interface {
	io.ReaderAt

	Size() int64
}
