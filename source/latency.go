package source

import (
	"errors"
	"io"
	"time"
)

// LatencyReader measures the time from the first Read to the end of the
// stream and reports it through Callback.
type LatencyReader struct {
	io.Reader
	Callback func(time.Duration)

	start   time.Time
	latency time.Duration
	done    bool
}

func (r *LatencyReader) Read(b []byte) (int, error) {
	if r.start.IsZero() {
		r.start = time.Now()
	}

	n, err := r.Reader.Read(b)
	if errors.Is(err, io.EOF) && !r.done {
		r.done = true
		r.latency = time.Since(r.start)
		if r.Callback != nil {
			r.Callback(r.latency)
		}
	}

	return n, err
}

// Latency returns the measured time, zero until the stream has ended.
func (r *LatencyReader) Latency() time.Duration {
	return r.latency
}
