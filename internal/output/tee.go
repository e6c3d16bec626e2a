package output

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Tee duplicates every line to an in-memory file buffer and, optionally, a console.
// The destination file is only created when Close is called, so an aborted
// run never leaves a half-written manifest behind.
type Tee struct {
	path    string
	buf     bytes.Buffer
	console io.Writer
	closed  bool
}

// NewTee creates a Tee targeting path. A nil console disables echoing.
func NewTee(path string, console io.Writer) *Tee {
	return &Tee{path: path, console: console}
}

// Path returns the destination file path.
func (t *Tee) Path() string {
	return t.path
}

// Write implements io.Writer.
func (t *Tee) Write(p []byte) (int, error) {
	if t.closed {
		return 0, fmt.Errorf("write to closed tee %s", t.path)
	}
	n, _ := t.buf.Write(p)
	if t.console != nil {
		if _, err := t.console.Write(p); err != nil {
			return n, err
		}
	}
	return n, nil
}

// Writeln writes text followed by a newline.
func (t *Tee) Writeln(text string) error {
	_, err := t.Write([]byte(text + "\n"))
	return err
}

// Bytes returns the buffered file content.
func (t *Tee) Bytes() []byte {
	return t.buf.Bytes()
}

// Close flushes the buffer to the destination file, creating parent directories.
func (t *Tee) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	if t.path == "" {
		return nil
	}
	if dir := filepath.Dir(t.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(t.path, t.buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", t.path, err)
	}
	return nil
}
