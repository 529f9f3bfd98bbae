// Package transfer defines the narrow interface this tool consumes from the
// external transfer service: authentication, endpoint directory listing, and
// a copy primitive. The reconciliation engine and the sync executor are
// written against this interface so they can be tested with the in-memory
// implementation, never against the real service.
package transfer

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrRemoteUnavailable marks transient transfer-service failures.
	// Safe to retry; local state is never corrupted by one.
	ErrRemoteUnavailable = errors.New("transfer: remote unavailable")

	// ErrRemoteAuth marks fatal authentication failures. Requires
	// re-running configuration, not retrying.
	ErrRemoteAuth = errors.New("transfer: authentication failed")
)

// EntryType distinguishes files from directories in a listing.
type EntryType string

const (
	TypeFile EntryType = "file"
	TypeDir  EntryType = "dir"
)

// ListEntry is one item of an endpoint directory listing.
type ListEntry struct {
	Name         string    `json:"name"`
	Type         EntryType `json:"type"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// CopyRequest describes one file copy between two endpoints.
type CopyRequest struct {
	SourceEndpoint      string `json:"source_endpoint"`
	DestinationEndpoint string `json:"destination_endpoint"`
	SourcePath          string `json:"source_path"`
	DestinationPath     string `json:"destination_path"`
}

// Client is the transfer capability consumed by the rest of the tool.
type Client interface {
	// Authenticate establishes a session with the transfer service.
	Authenticate(ctx context.Context) error

	// List returns the entries directly under path on an endpoint.
	List(ctx context.Context, endpoint, path string) ([]*ListEntry, error)

	// Copy transfers one file between endpoints, blocking until the
	// service reports the task finished.
	Copy(ctx context.Context, req *CopyRequest) error
}
