package logging

import (
	"os"
	"sync"
)

// RingBuffer keeps the last N bytes written to it. It backs the SIGUSR1
// crash dump so recent log lines survive even when file logging lags.
type RingBuffer struct {
	mu      sync.Mutex
	data    []byte
	next    int
	wrapped bool
}

// NewRingBuffer allocates a buffer of size bytes (4MB when size <= 0).
func NewRingBuffer(size int) *RingBuffer {
	if size <= 0 {
		size = 4 * 1024 * 1024
	}
	return &RingBuffer{data: make([]byte, size)}
}

// Write implements io.Writer and never fails.
func (r *RingBuffer) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(p)
	size := len(r.data)
	if n >= size {
		copy(r.data, p[n-size:])
		r.next = 0
		r.wrapped = true
		return n, nil
	}

	first := copy(r.data[r.next:], p)
	if first < n {
		copy(r.data, p[first:])
		r.wrapped = true
	}
	r.next = (r.next + n) % size
	if r.next == 0 && n > 0 {
		r.wrapped = true
	}
	return n, nil
}

// Bytes returns a copy of the contents, oldest byte first.
func (r *RingBuffer) Bytes() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.wrapped {
		return append([]byte(nil), r.data[:r.next]...)
	}
	out := make([]byte, 0, len(r.data))
	out = append(out, r.data[r.next:]...)
	return append(out, r.data[:r.next]...)
}

// DumpToFile writes Bytes() to path.
func (r *RingBuffer) DumpToFile(path string) error {
	return os.WriteFile(path, r.Bytes(), 0o600)
}
