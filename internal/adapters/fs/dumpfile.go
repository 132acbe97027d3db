// Package fs implements ports.LineSink on a local file.
package fs

import (
	"fmt"
	"os"
)

// DumpFile is a flat append log receiving every line the session observes,
// including lines claimed by filters and suppressed from console output.
// The file is truncated at open; each line is stored with its inherent
// newline terminator restored. Only the single consumer loop writes, so no
// locking is needed.
type DumpFile struct {
	file *os.File
	path string
}

// OpenDumpFile creates or truncates the dump file at path.
func OpenDumpFile(path string) (*DumpFile, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open dump file %s: %w", path, err)
	}
	return &DumpFile{file: f, path: path}, nil
}

// WriteLine appends line followed by a newline.
func (d *DumpFile) WriteLine(line string) error {
	if _, err := d.file.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("write dump file %s: %w", d.path, err)
	}
	return nil
}

// Close flushes and releases the file.
func (d *DumpFile) Close() error {
	return d.file.Close()
}

// Path returns the path the dump file was opened with.
func (d *DumpFile) Path() string {
	return d.path
}
