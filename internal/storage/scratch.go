package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Scratch is the working directory for short-lived per-call files
// (transcoder input/output, video frames). Callers never rely on its contents.
//
// Names carry a random UUID instead of a timestamp: several transcodes run at
// once and must never share a path.
type Scratch struct {
	dir string
}

// NewScratch creates a Scratch rooted at dir, ensuring the directory exists.
// If a regular file occupies the path it is moved aside to "<dir>.bak".
func NewScratch(dir string) (*Scratch, error) {
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		if err := os.Rename(dir, dir+".bak"); err != nil {
			return nil, fmt.Errorf("moving file out of scratch path: %w", err)
		}
	}
	// 0755: owner rwx, group rx, others rx.
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating scratch directory: %w", err)
	}
	return &Scratch{dir: dir}, nil
}

// Dir returns the scratch root.
func (s *Scratch) Dir() string {
	return s.dir
}

// Path returns a fresh, unique path like {dir}/{prefix}_{uuid}{ext}.
// Nothing is created on disk.
func (s *Scratch) Path(prefix, ext string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s%s", prefix, uuid.NewString(), ext))
}

// WriteTemp stores data under a fresh unique name and returns its path.
func (s *Scratch) WriteTemp(prefix, ext string, data []byte) (string, error) {
	path := s.Path(prefix, ext)
	// 0600: the files may hold user media; nobody else needs to read them.
	if err := os.WriteFile(path, data, 0600); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("writing scratch file: %w", err)
	}
	return path, nil
}

// Remove deletes the given scratch files. Missing files are not an error.
func (s *Scratch) Remove(paths ...string) error {
	var errs []error
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Entries lists the file names currently in the scratch directory.
func (s *Scratch) Entries() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading scratch directory: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}
