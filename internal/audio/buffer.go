package audio

import (
	"sync"
)

// RingBuffer is a thread-safe ring buffer for audio data.
// One slot is kept free, so a buffer of size n holds n-1 bytes.
type RingBuffer struct {
	buffer []byte
	size   int
	read   int
	write  int
	mu     sync.RWMutex
}

// NewRingBuffer creates a new ring buffer with the specified size
func NewRingBuffer(size int) *RingBuffer {
	if size < 2 {
		size = 2
	}
	return &RingBuffer{
		buffer: make([]byte, size),
		size:   size,
	}
}

// NewPreRollBuffer holds the most recent capacity bytes
func NewPreRollBuffer(capacity int) *RingBuffer {
	return NewRingBuffer(capacity + 1)
}

func (rb *RingBuffer) writeLocked(data []byte) int {
	written := 0
	for i := 0; i < len(data); i++ {
		if (rb.write+1)%rb.size == rb.read {
			break
		}
		rb.buffer[rb.write] = data[i]
		rb.write = (rb.write + 1) % rb.size
		written++
	}
	return written
}

// Push writes data, discarding the oldest bytes when the buffer is full
func (rb *RingBuffer) Push(data []byte) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	capacity := rb.size - 1
	if len(data) > capacity {
		data = data[len(data)-capacity:]
	}
	if over := rb.available() + len(data) - capacity; over > 0 {
		rb.read = (rb.read + over) % rb.size
	}
	rb.writeLocked(data)
}

// Read reads data from the ring buffer
// Returns the number of bytes read
func (rb *RingBuffer) Read(data []byte) int {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	read := 0
	for i := 0; i < len(data); i++ {
		if rb.read == rb.write {
			break
		}
		data[i] = rb.buffer[rb.read]
		rb.read = (rb.read + 1) % rb.size
		read++
	}

	return read
}

// Drain returns and removes everything buffered, oldest first
func (rb *RingBuffer) Drain() []byte {
	out := make([]byte, rb.Available())
	n := rb.Read(out)
	return out[:n]
}

// Available returns the number of bytes available to read
func (rb *RingBuffer) Available() int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.available()
}

func (rb *RingBuffer) available() int {
	if rb.write >= rb.read {
		return rb.write - rb.read
	}
	return rb.size - rb.read + rb.write
}
