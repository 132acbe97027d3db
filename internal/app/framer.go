package app

import "strings"

// Framer reassembles the transport's arbitrary chunks into complete lines.
// Lines are split on '\n' only. Each emitted line has one trailing '\r'
// stripped and any carriage returns embedded in the body normalized to
// '\n', so CRLF and LF sources produce identical records.
type Framer struct {
	buf string
}

// NewFramer creates an empty framer.
func NewFramer() *Framer {
	return &Framer{}
}

// Feed appends fragment to the pending buffer and returns every complete
// line it terminates, in arrival order. The remainder stays buffered for
// the next call. No maximum line length is enforced, so a stream that
// never sends a newline grows the buffer without bound.
func (f *Framer) Feed(fragment string) []string {
	f.buf += fragment

	var lines []string
	for {
		nl := strings.IndexByte(f.buf, '\n')
		if nl < 0 {
			return lines
		}
		lines = append(lines, normalizeLine(f.buf[:nl]))
		f.buf = f.buf[nl+1:]
	}
}

// Pending returns the buffered partial line, if any.
func (f *Framer) Pending() string {
	return f.buf
}

func normalizeLine(segment string) string {
	segment = strings.TrimSuffix(segment, "\r")
	return strings.ReplaceAll(segment, "\r", "\n")
}
