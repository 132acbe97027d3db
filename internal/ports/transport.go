package ports

// Transport is the byte-stream link to the embedded device.
// Implementations must provide non-blocking read semantics: the stream
// pump polls in a tight loop and must never stall on a quiet link.
type Transport interface {
	// ReadAvailable returns all currently buffered bytes without blocking.
	// A zero-length result with nil error means no data was pending.
	// Chunk boundaries are arbitrary and carry no line semantics.
	ReadAvailable() ([]byte, error)

	// Write sends bytes to the device.
	Write(p []byte) (int, error)

	// Close releases the device. Reads and writes after Close return
	// domain.ErrTransportClosed.
	Close() error
}
