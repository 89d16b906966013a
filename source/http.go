package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	ncmdump "github.com/ncmdump/go-ncmdump"
)

const DefaultChunkSize = 512 * 1024

var contentRangeRegexp = regexp.MustCompile("^bytes (\\d+)-(\\d+)/(\\d+)$")

func parseContentRange(resp *http.Response) (start int64, end int64, size int64, err error) {
	header := resp.Header.Get("Content-Range")
	if len(header) == 0 {
		return 0, 0, 0, fmt.Errorf("invalid first chunk response status: no Content-Range header")
	}

	match := contentRangeRegexp.FindStringSubmatch(header)
	if len(match) == 0 {
		return 0, 0, 0, fmt.Errorf("invalid content range header: %s", header)
	} else if start, err = strconv.ParseInt(match[1], 10, 0); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid content range start: %w", err)
	} else if end, err = strconv.ParseInt(match[2], 10, 0); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid content range end: %w", err)
	} else if size, err = strconv.ParseInt(match[3], 10, 0); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid content range size: %w", err)
	}

	return start, end, size, nil
}

// HttpChunkedReader reads a remote container with ranged requests. Chunks are
// fetched lazily, retried with exponential backoff and cached, so the payload
// can be decrypted in parallel without downloading it twice.
type HttpChunkedReader struct {
	log    ncmdump.Logger
	ctx    context.Context
	client *http.Client
	url    string

	chunkSize  int64
	maxRetries uint64

	chunks     [][]byte
	chunksLock []sync.Mutex

	statsLock sync.Mutex
	stats     FetchStats

	len int64
	pos int64
}

// FetchStats summarizes the chunk downloads done so far.
type FetchStats struct {
	Chunks     int
	Retries    int
	TotalTime  time.Duration
	MaxLatency time.Duration
}

func NewHttpChunkedReader(ctx context.Context, log ncmdump.Logger, client *http.Client, url string, opts Options) (*HttpChunkedReader, error) {
	opts = opts.withDefaults()
	if client == nil {
		client = http.DefaultClient
	}

	r := &HttpChunkedReader{
		log:        ncmdump.OrNull(log),
		ctx:        ctx,
		client:     client,
		url:        url,
		chunkSize:  opts.ChunkSize,
		maxRetries: opts.MaxRetries,
	}

	// request the first chunk, needed for the complete content length
	first, size, err := r.fetchRange(0, r.chunkSize-1)
	if err != nil {
		return nil, fmt.Errorf("failed requesting first chunk: %w", err)
	}

	r.len = size

	// create the necessary amount of chunks
	numChunks := r.len / r.chunkSize
	if r.len%r.chunkSize != 0 {
		numChunks++
	}
	if numChunks == 0 {
		numChunks = 1
	}

	r.chunks = make([][]byte, numChunks)
	r.chunksLock = make([]sync.Mutex, numChunks)
	r.chunks[0] = first

	r.log.WithField("url", url).Debugf("fetched first chunk of %d, total size is %d bytes", len(r.chunks), r.len)
	return r, nil
}

func statusError(resp *http.Response) error {
	err := fmt.Errorf("invalid response status: %s", resp.Status)
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		// the server ignored the range, asking again will not help
		return backoff.Permanent(fmt.Errorf("range request not honored: %w", err))
	} else if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
		return backoff.Permanent(err)
	}
	return err
}

func (r *HttpChunkedReader) retry(op func() error) error {
	attempt := 0
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), r.maxRetries), r.ctx)
	return backoff.Retry(func() error {
		if attempt++; attempt > 1 {
			r.statsLock.Lock()
			r.stats.Retries++
			r.statsLock.Unlock()
		}

		return op()
	}, b)
}

func (r *HttpChunkedReader) requestRange(start, end int64) (*http.Response, error) {
	req, err := http.NewRequestWithContext(r.ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed creating request: %w", err))
	}

	req.Header.Set("User-Agent", ncmdump.UserAgent())
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", start, end))
	return r.client.Do(req)
}

// fetchPart requests [start, end] once and returns whatever prefix of it the
// server sent, together with the complete resource size.
func (r *HttpChunkedReader) fetchPart(start, end int64) (data []byte, size int64, err error) {
	err = r.retry(func() error {
		resp, err := r.requestRange(start, end)
		if err != nil {
			return err
		}

		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusPartialContent {
			return statusError(resp)
		}

		var from, to int64
		from, to, size, err = parseContentRange(resp)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("invalid content range response: %w", err))
		} else if from != start || to < from || to > end {
			return backoff.Permanent(fmt.Errorf("unexpected content range %d-%d for request %d-%d", from, to, start, end))
		}

		data, err = r.readBody(resp)
		if err != nil {
			return err
		} else if int64(len(data)) != to-from+1 {
			return fmt.Errorf("content range %d-%d, got %d bytes: %w", from, to, len(data), io.ErrUnexpectedEOF)
		}

		return nil
	})
	return data, size, err
}

// fetchRange downloads [start, end], clipped to the resource size. Servers
// may answer with a shorter range than requested, the rest is requested
// again until the whole range is available.
func (r *HttpChunkedReader) fetchRange(start, end int64) (data []byte, size int64, err error) {
	size = -1
	for pos := start; pos <= end; {
		part, total, err := r.fetchPart(pos, end)
		if err != nil {
			return nil, 0, err
		}

		if size < 0 {
			size = total
		} else if total != size {
			return nil, 0, fmt.Errorf("resource size changed from %d to %d bytes", size, total)
		}

		if end > size-1 {
			end = size - 1
		}

		data = append(data, part...)
		pos += int64(len(part))
	}

	return data, size, nil
}

func (r *HttpChunkedReader) readBody(resp *http.Response) ([]byte, error) {
	lr := &LatencyReader{Reader: resp.Body, Callback: func(d time.Duration) {
		r.statsLock.Lock()
		defer r.statsLock.Unlock()

		r.stats.Chunks++
		r.stats.TotalTime += d
		if d > r.stats.MaxLatency {
			r.stats.MaxLatency = d
		}
	}}

	return io.ReadAll(lr)
}

func (r *HttpChunkedReader) fetchChunk(idx int) ([]byte, error) {
	r.chunksLock[idx].Lock()
	defer r.chunksLock[idx].Unlock()

	if r.chunks[idx] != nil {
		return r.chunks[idx], nil
	}

	start := int64(idx) * r.chunkSize
	data, size, err := r.fetchRange(start, start+r.chunkSize-1)
	if err != nil {
		return nil, fmt.Errorf("failed downloading chunk %d: %w", idx, err)
	} else if size != r.len {
		return nil, fmt.Errorf("failed downloading chunk %d: resource size changed from %d to %d bytes", idx, r.len, size)
	}

	r.chunks[idx] = data
	r.log.Tracef("fetched chunk %d/%d, size: %d", idx, len(r.chunks)-1, len(data))
	return data, nil
}

func (r *HttpChunkedReader) Read(p []byte) (n int, err error) {
	n, err = r.ReadAt(p, r.pos)
	r.pos += int64(n)
	return n, err
}

func (r *HttpChunkedReader) ReadAt(p []byte, pos int64) (n int, err error) {
	if pos < 0 {
		return 0, fmt.Errorf("negative read position: %d", pos)
	}

	chunk, off := int(pos/r.chunkSize), int(pos%r.chunkSize)

	n = 0
	for len(p) > 0 {
		if chunk >= len(r.chunks) || pos+int64(n) >= r.len {
			return n, io.EOF
		}

		// fetch the chunk in case we don't have it yet
		data, err := r.fetchChunk(chunk)
		if err != nil {
			return n, err
		}

		if off >= len(data) || (int64(len(data)) < r.chunkSize && chunk < len(r.chunks)-1) {
			// the server returned less than announced
			return n, io.ErrUnexpectedEOF
		}

		c := data[off:]
		if len(c) >= len(p) {
			// the chunk is bigger than our output buffer, just copy everything and return
			n += copy(p, c[:len(p)])
			return n, nil
		}

		// the chunk is smaller than the available output buffer space, copy the chunk and advance
		n += copy(p, c)
		p = p[len(c):]

		// try to advance to next chunk
		chunk++
		off = 0
	}

	return n, nil
}

func (r *HttpChunkedReader) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekCurrent:
		offset += r.pos
	case io.SeekStart:
	case io.SeekEnd:
		offset += r.len
	default:
		return 0, fmt.Errorf("invalid seek whence: %d", whence)
	}

	if offset < 0 || offset > r.len {
		return 0, fmt.Errorf("invalid seek position")
	}

	r.pos = offset
	return r.pos, nil
}

func (r *HttpChunkedReader) Size() int64 {
	return r.len
}

// Stats returns a snapshot of the download statistics.
func (r *HttpChunkedReader) Stats() FetchStats {
	r.statsLock.Lock()
	defer r.statsLock.Unlock()
	return r.stats
}

func (r *HttpChunkedReader) Close() error {
	stats := r.Stats()
	r.log.Debugf("downloaded %d chunks in %v (max latency %v, %d retries)", stats.Chunks, stats.TotalTime, stats.MaxLatency, stats.Retries)
	return nil
}
