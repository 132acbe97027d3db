package ports

// LineSink receives every line the session observes, in arrival order,
// before any filter runs. Claimed lines reach the sink too.
// Only the single consumer loop writes; implementations need no locking.
type LineSink interface {
	// WriteLine appends one line with its inherent newline terminator
	// restored.
	WriteLine(line string) error

	// Close flushes and releases the sink.
	Close() error
}
