// Package telemetry records jobs as OpenTelemetry spans and reports their
// progress through the logger.
package telemetry

import (
	"bytes"
	"sync"
	"time"

	"go.trai.ch/zerr"
)

var errBatcherClosed = zerr.New("line batcher is closed")

const (
	// DefaultSizeLimit is the buffered byte count that forces a flush.
	DefaultSizeLimit = 4096
	// DefaultTimeLimit is the interval after which buffered lines are flushed.
	DefaultTimeLimit = 50 * time.Millisecond
)

// LineBatcher collects command output and hands it on in whole lines,
// either when enough bytes are buffered or when the time limit passes.
// A trailing partial line is held back until Close.
type LineBatcher struct {
	sizeLimit int
	timeLimit time.Duration
	onFlush   func(lines []string)

	mu     sync.Mutex
	buffer bytes.Buffer
	ticker *time.Ticker
	stopCh chan struct{}
	closed bool
}

// NewLineBatcher starts a batcher. Non-positive limits select the defaults.
// Close must be called to stop the background flusher.
func NewLineBatcher(sizeLimit int, timeLimit time.Duration, onFlush func([]string)) *LineBatcher {
	if sizeLimit <= 0 {
		sizeLimit = DefaultSizeLimit
	}
	if timeLimit <= 0 {
		timeLimit = DefaultTimeLimit
	}
	lb := &LineBatcher{
		sizeLimit: sizeLimit,
		timeLimit: timeLimit,
		onFlush:   onFlush,
		ticker:    time.NewTicker(timeLimit),
		stopCh:    make(chan struct{}),
	}
	go lb.run()
	return lb
}

// Write buffers p.
func (lb *LineBatcher) Write(p []byte) (int, error) {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	if lb.closed {
		return 0, errBatcherClosed
	}
	n, _ := lb.buffer.Write(p)
	if lb.buffer.Len() >= lb.sizeLimit {
		lb.flushLocked(false)
		lb.ticker.Reset(lb.timeLimit)
	}
	return n, nil
}

// Flush hands on every complete buffered line.
func (lb *LineBatcher) Flush() {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	if !lb.closed {
		lb.flushLocked(false)
	}
}

// Close stops the flusher and hands on everything left, partial line included.
func (lb *LineBatcher) Close() error {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	if lb.closed {
		return nil
	}
	lb.closed = true
	close(lb.stopCh)
	lb.flushLocked(true)
	return nil
}

func (lb *LineBatcher) run() {
	for {
		select {
		case <-lb.ticker.C:
			lb.Flush()
		case <-lb.stopCh:
			lb.ticker.Stop()
			return
		}
	}
}

// flushLocked must be called with mu held. Without final, a partial line
// stays buffered unless it alone exceeds the size limit.
func (lb *LineBatcher) flushLocked(final bool) {
	data := lb.buffer.Bytes()
	end := bytes.LastIndexByte(data, '\n') + 1
	if final || (end == 0 && len(data) >= lb.sizeLimit) {
		end = len(data)
	}
	if end == 0 {
		return
	}

	chunk := bytes.TrimSuffix(data[:end], []byte("\n"))
	lines := make([]string, 0, bytes.Count(chunk, []byte("\n"))+1)
	for _, line := range bytes.Split(chunk, []byte("\n")) {
		lines = append(lines, string(bytes.TrimSuffix(line, []byte("\r"))))
	}
	rest := append([]byte(nil), data[end:]...)
	lb.buffer.Reset()
	lb.buffer.Write(rest)

	if lb.onFlush != nil {
		lb.onFlush(lines)
	}
}
