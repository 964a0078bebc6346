package http

import (
	"bytes"
	"io"
	"sync"

	"github.com/fivetwenty-io/usergrid-client/internal/constants"
	"github.com/fivetwenty-io/usergrid-client/pkg/usergrid"
)

// progressReader reports bytes read in chunks of at most
// constants.ProgressChunkSize. expected is -1 when unknown.
type progressReader struct {
	reader      io.Reader
	expected    int64
	transferred int64
	onProgress  usergrid.ProgressFunc
}

func newProgressReader(reader io.Reader, expected int64, onProgress usergrid.ProgressFunc) *progressReader {
	if expected < 0 {
		expected = -1
	}

	return &progressReader{
		reader:     reader,
		expected:   expected,
		onProgress: onProgress,
	}
}

func (p *progressReader) Read(buf []byte) (int, error) {
	if len(buf) > constants.ProgressChunkSize {
		buf = buf[:constants.ProgressChunkSize]
	}

	n, err := p.reader.Read(buf)
	if n > 0 {
		p.transferred += int64(n)
		p.onProgress(p.transferred, p.expected)
	}

	return n, err //nolint:wrapcheck
}

// Len lets retryablehttp size the request body.
func (p *progressReader) Len() int {
	if r, ok := p.reader.(*bytes.Reader); ok {
		return r.Len()
	}

	return int(p.expected)
}

// callbackQueue runs callbacks one at a time in enqueue order. A drain
// goroutine is started on demand and exits when the queue is empty.
type callbackQueue struct {
	mu      sync.Mutex
	pending []func()
	running bool
}

func newCallbackQueue() *callbackQueue {
	return &callbackQueue{
		pending: make([]func(), 0, constants.CallbackQueueSize),
	}
}

func (q *callbackQueue) enqueue(fn func()) {
	q.mu.Lock()
	q.pending = append(q.pending, fn)

	if q.running {
		q.mu.Unlock()

		return
	}

	q.running = true
	q.mu.Unlock()

	go q.drain()
}

func (q *callbackQueue) drain() {
	for {
		q.mu.Lock()

		if len(q.pending) == 0 {
			q.running = false
			q.mu.Unlock()

			return
		}

		fn := q.pending[0]
		q.pending[0] = nil
		q.pending = q.pending[1:]
		q.mu.Unlock()

		fn()
	}
}
