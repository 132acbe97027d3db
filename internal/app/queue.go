package app

import "sync"

// LineQueue is an unbounded FIFO of lines with a single producer (the
// pump) and a single consumer (the session loop). Push never blocks and
// never drops; back-pressure is unbounded growth, an accepted risk when
// the consumer stalls.
type LineQueue struct {
	mu    sync.Mutex
	lines []string
}

// NewLineQueue creates an empty queue.
func NewLineQueue() *LineQueue {
	return &LineQueue{}
}

// Push appends line at the tail.
func (q *LineQueue) Push(line string) {
	q.mu.Lock()
	q.lines = append(q.lines, line)
	q.mu.Unlock()
}

// TryPop removes and returns the head line without waiting.
// ok is false when the queue is empty.
func (q *LineQueue) TryPop() (line string, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.lines) == 0 {
		return "", false
	}
	line = q.lines[0]
	q.lines[0] = "" // release the string to the GC
	q.lines = q.lines[1:]
	return line, true
}

// Len returns the number of queued lines.
func (q *LineQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.lines)
}
