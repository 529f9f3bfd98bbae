// Package scan walks a physical directory tree and produces an ordered
// listing of observed files. Scans are deterministic: output is sorted by
// path so repeated runs over an unchanged tree are identical.
package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/ve-data-science/vedatool/internal/utils"
)

// ErrNotADirectory indicates the scan target does not exist or is not a
// traversable directory.
var ErrNotADirectory = errors.New("scan: not a directory")

// Scanner walks a root directory producing Entry listings.
type Scanner struct {
	root      string
	ignore    *IgnoreList
	include   string
	checksums bool
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithChecksums enables MD5 computation per file. This is the expensive
// path; size/timestamp-only mode is the default for large trees.
func WithChecksums() Option {
	return func(s *Scanner) {
		s.checksums = true
	}
}

// WithInclude restricts the listing to paths matching a doublestar glob.
func WithInclude(pattern string) Option {
	return func(s *Scanner) {
		s.include = pattern
	}
}

// WithIgnore replaces the default ignore rules.
func WithIgnore(il *IgnoreList) Option {
	return func(s *Scanner) {
		s.ignore = il
	}
}

func NewScanner(root string, opts ...Option) *Scanner {
	s := &Scanner{root: root}
	for _, opt := range opts {
		opt(s)
	}
	if s.ignore == nil {
		s.ignore = NewIgnoreList(root)
	}
	return s
}

// Scan walks the root recursively and returns observed entries sorted by
// path, tagged OriginLocal.
func (s *Scanner) Scan() ([]*Entry, error) {
	if !utils.DirExists(s.root) {
		return nil, fmt.Errorf("%w: %s", ErrNotADirectory, s.root)
	}

	var entries []*Entry

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("walk error: %w", walkErr)
		}

		relPath, err := filepath.Rel(s.root, path)
		if err != nil {
			return fmt.Errorf("walk rel path: %w", err)
		}
		relPath = utils.NormPath(relPath)

		if d.IsDir() {
			if path != s.root && s.ignore.ShouldIgnore(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		entry, err := s.observe(path, relPath, d)
		if err != nil {
			slog.Warn("skipping file", "path", path, "error", err)
			return nil
		}
		if entry != nil {
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", s.root, err)
	}

	sortEntries(entries)
	return entries, nil
}

// ScanDir lists only the regular files directly inside dir, relative to dir.
// Used by manifest validation, which works one directory at a time.
func (s *Scanner) ScanDir(dir string) ([]*Entry, error) {
	if !utils.DirExists(dir) {
		return nil, fmt.Errorf("%w: %s", ErrNotADirectory, dir)
	}

	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	var entries []*Entry
	for _, d := range dirents {
		if d.IsDir() {
			continue
		}
		entry, err := s.observe(filepath.Join(dir, d.Name()), d.Name(), d)
		if err != nil {
			slog.Warn("skipping file", "path", d.Name(), "error", err)
			continue
		}
		if entry != nil {
			entries = append(entries, entry)
		}
	}

	sortEntries(entries)
	return entries, nil
}

func (s *Scanner) observe(path, relPath string, d fs.DirEntry) (*Entry, error) {
	if s.ignore.ShouldIgnore(relPath) {
		return nil, nil
	}
	if s.include != "" {
		ok, err := doublestar.Match(s.include, relPath)
		if err != nil {
			return nil, fmt.Errorf("include pattern: %w", err)
		}
		if !ok {
			return nil, nil
		}
	}

	info, err := d.Info()
	if err != nil {
		return nil, err
	}

	entry := &Entry{
		Path:    relPath,
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Origin:  OriginLocal,
	}

	if s.checksums {
		sum, err := utils.FileHash(path)
		if err != nil {
			return nil, err
		}
		entry.Checksum = sum
	}

	return entry, nil
}

func sortEntries(entries []*Entry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})
}

// ToMap indexes entries by path.
func ToMap(entries []*Entry) map[string]*Entry {
	m := make(map[string]*Entry, len(entries))
	for _, e := range entries {
		m[e.Path] = e
	}
	return m
}
