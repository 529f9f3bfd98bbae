package scan

import "time"

// Origin tags which store an observed entry came from.
type Origin string

const (
	OriginLocal  Origin = "local"
	OriginRemote Origin = "remote"
)

// Entry is one file found during a scan of a local tree or a remote listing.
// Entries are produced fresh on every scan and never persisted.
type Entry struct {
	// Path relative to the scanned root, always forward-slashed.
	Path string

	// Size in bytes.
	Size int64

	// ModTime is the last-modified timestamp.
	ModTime time.Time

	// Origin of the observation.
	Origin Origin

	// Checksum is the MD5 content hash. Only populated for local entries
	// when checksum scanning was requested; remote listings do not expose
	// one cheaply.
	Checksum string
}
