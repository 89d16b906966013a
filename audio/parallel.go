package audio

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"
)

const DefaultChunkSize = 512 * 1024

// ErrTruncated is returned by ParallelCopy when the source ended before the
// expected size. Everything before the returned count was still written.
var ErrTruncated = errors.New("payload truncated")

// ParallelCopy copies size bytes from src to dst using up to workers
// goroutines, each handling disjoint chunks of chunkSize bytes. When src is a
// Decryptor every chunk is decrypted independently and written to its own
// region of dst, so no locking is needed.
//
// It returns the length of the longest fully copied prefix. Cancelling ctx
// stops scheduling new chunks, chunks already in flight are simply dropped.
func ParallelCopy(ctx context.Context, dst io.WriterAt, src io.ReaderAt, size int64, chunkSize, workers int) (int64, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if workers <= 0 {
		workers = 1
	}
	if size <= 0 {
		return 0, nil
	}

	numChunks := int((size + int64(chunkSize) - 1) / int64(chunkSize))
	copied := make([]int, numChunks)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for idx := 0; idx < numChunks; idx++ {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			off := int64(idx) * int64(chunkSize)
			length := int64(chunkSize)
			if off+length > size {
				length = size - off
			}

			buf := make([]byte, length)
			n, err := src.ReadAt(buf, off)
			if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
				return fmt.Errorf("failed reading chunk at %d: %w", off, err)
			}

			if n > 0 {
				if _, err := dst.WriteAt(buf[:n], off); err != nil {
					return fmt.Errorf("failed writing chunk at %d: %w", off, err)
				}
			}

			copied[idx] = n
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	} else if err := ctx.Err(); err != nil {
		return 0, err
	}

	var total int64
	for idx, n := range copied {
		total += int64(n)

		expected := int64(chunkSize)
		if last := int64(idx+1) * int64(chunkSize); last > size {
			expected = size - int64(idx)*int64(chunkSize)
		}

		if int64(n) < expected {
			return total, fmt.Errorf("%w: copied %d of %d bytes", ErrTruncated, total, size)
		}
	}

	return total, nil
}
