package emit

import (
	"fmt"
	"os"
	"path/filepath"
)

// OutputFile is a table destination that only replaces the target path on
// Commit. It is created up front so an unwritable destination fails the run
// before any input is processed.
type OutputFile struct {
	path string
	tmp  *os.File
	done bool
}

// Create opens a temporary file next to path.
func Create(path string) (*OutputFile, error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		return nil, fmt.Errorf("open output: %s is a directory", path)
	}
	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	return &OutputFile{path: path, tmp: tmp}, nil
}

// Path returns the final destination.
func (f *OutputFile) Path() string { return f.path }

// Write implements io.Writer on the temporary file.
func (f *OutputFile) Write(p []byte) (int, error) {
	return f.tmp.Write(p)
}

// Commit flushes the temporary file and renames it over the destination.
func (f *OutputFile) Commit() error {
	if f.done {
		return nil
	}
	f.done = true
	if err := f.tmp.Chmod(0o644); err != nil {
		f.cleanup()
		return fmt.Errorf("write output: %w", err)
	}
	if err := f.tmp.Close(); err != nil {
		os.Remove(f.tmp.Name())
		return fmt.Errorf("write output: %w", err)
	}
	if err := os.Rename(f.tmp.Name(), f.path); err != nil {
		os.Remove(f.tmp.Name())
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// Close discards the temporary file unless Commit succeeded. Safe to defer.
func (f *OutputFile) Close() error {
	if f.done {
		return nil
	}
	f.done = true
	return f.cleanup()
}

func (f *OutputFile) cleanup() error {
	f.tmp.Close()
	return os.Remove(f.tmp.Name())
}
