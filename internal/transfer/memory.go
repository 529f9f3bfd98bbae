package transfer

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"
)

// Memory is an in-memory Client used by tests and dry runs. Each endpoint is
// a flat map of file paths; directory entries are synthesized during List.
type Memory struct {
	mu        sync.Mutex
	endpoints map[string]map[string]*ListEntry

	// Copies records every accepted copy request in order.
	Copies []CopyRequest

	// Error overrides, applied before any state change.
	AuthErr error
	ListErr error
	CopyErr error
}

var _ Client = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		endpoints: make(map[string]map[string]*ListEntry),
	}
}

// AddFile registers a file on an endpoint under an absolute path.
func (m *Memory) AddFile(endpoint, filePath string, size int64, modTime time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	files, ok := m.endpoints[endpoint]
	if !ok {
		files = make(map[string]*ListEntry)
		m.endpoints[endpoint] = files
	}
	files[path.Clean(filePath)] = &ListEntry{
		Name:         path.Base(filePath),
		Type:         TypeFile,
		Size:         size,
		LastModified: modTime,
	}
}

// HasFile reports whether an endpoint holds a file at path.
func (m *Memory) HasFile(endpoint, filePath string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.endpoints[endpoint][path.Clean(filePath)]
	return ok
}

func (m *Memory) Authenticate(ctx context.Context) error {
	return m.AuthErr
}

func (m *Memory) List(ctx context.Context, endpoint, dirPath string) ([]*ListEntry, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	prefix := path.Clean(dirPath)
	if prefix != "/" {
		prefix += "/"
	}

	seen := make(map[string]*ListEntry)
	for p, entry := range m.endpoints[endpoint] {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		rest := strings.TrimPrefix(p, prefix)
		if idx := strings.Index(rest, "/"); idx >= 0 {
			// file in a subdirectory: surface the directory entry
			name := rest[:idx]
			seen[name] = &ListEntry{Name: name, Type: TypeDir}
		} else {
			seen[rest] = entry
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]*ListEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, seen[name])
	}
	return entries, nil
}

func (m *Memory) Copy(ctx context.Context, req *CopyRequest) error {
	if m.CopyErr != nil {
		return m.CopyErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	src := m.endpoints[req.SourceEndpoint][path.Clean(req.SourcePath)]
	if src == nil {
		return fmt.Errorf("%w: source not found: %s", ErrRemoteUnavailable, req.SourcePath)
	}

	dst, ok := m.endpoints[req.DestinationEndpoint]
	if !ok {
		dst = make(map[string]*ListEntry)
		m.endpoints[req.DestinationEndpoint] = dst
	}
	copied := *src
	copied.Name = path.Base(req.DestinationPath)
	dst[path.Clean(req.DestinationPath)] = &copied

	m.Copies = append(m.Copies, *req)
	return nil
}
