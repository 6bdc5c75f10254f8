// Package sink appends diagnostic records to a local file.
package sink

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File appends each record as indented JSON followed by a blank line.
type File struct {
	path string
	mu   sync.Mutex
}

// NewFile returns a sink writing to path. The file is created on first write.
func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Write(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	data = append(data, '\n', '\n')

	f.mu.Lock()
	defer f.mu.Unlock()

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create sink directory: %w", err)
		}
	}
	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open sink: %w", err)
	}
	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		return fmt.Errorf("write sink: %w", err)
	}
	return file.Close()
}

// Nop discards records.
type Nop struct{}

func (Nop) Write(any) error { return nil }

// Writer is implemented by File and Nop.
type Writer interface {
	Write(v any) error
}

// New returns a File for a non-empty path and Nop otherwise.
func New(path string) Writer {
	if path == "" {
		return Nop{}
	}
	return NewFile(path)
}
