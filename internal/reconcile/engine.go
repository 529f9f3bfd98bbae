// Package reconcile computes, for every file known to the manifest tree,
// the local store, or the remote store, a single synchronization status and
// the minimal set of transfer actions needed to converge them.
//
// The engine is a pure function of its three inputs plus the optional
// journal snapshot: it holds no hidden history, so repeated runs over
// unchanged inputs yield identical results.
package reconcile

import (
	"time"

	"github.com/ve-data-science/vedatool/internal/scan"
)

// DefaultModTimeTolerance is the window within which two timestamps count
// as equal when no checksums are available. Remote listings and some
// filesystems round to whole seconds.
const DefaultModTimeTolerance = time.Second

// Options tune a reconciliation run.
type Options struct {
	// ModTimeTolerance for timestamp-only equality. Zero means
	// DefaultModTimeTolerance.
	ModTimeTolerance time.Duration

	// Journal is the last-known in-sync observation per path, used to
	// detect paths modified on both sides. May be nil, in which case a
	// content difference with tied timestamps is reported as a conflict.
	Journal map[string]*JournalEntry
}

func (o Options) tolerance() time.Duration {
	if o.ModTimeTolerance == 0 {
		return DefaultModTimeTolerance
	}
	return o.ModTimeTolerance
}

// Reconcile classifies every path in the union of the three inputs.
//
// Precedence: paths absent from the manifest are flagged undeclared (their
// store comparison is preserved in Underlying); declared paths absent from
// both stores are missing; paths in exactly one store need a copy; paths in
// both are compared by content, then by timestamp, and a strictly newer
// side wins. When the evidence is ambiguous the engine reports a conflict
// rather than guessing a transfer direction.
func Reconcile(manifestPaths []string, local, remote []*scan.Entry, opts Options) Result {
	localByPath := scan.ToMap(local)
	remoteByPath := scan.ToMap(remote)

	declared := make(map[string]struct{}, len(manifestPaths))
	allPaths := make(map[string]struct{}, len(manifestPaths))
	for _, p := range manifestPaths {
		declared[p] = struct{}{}
		allPaths[p] = struct{}{}
	}
	for p := range localByPath {
		allPaths[p] = struct{}{}
	}
	for p := range remoteByPath {
		allPaths[p] = struct{}{}
	}

	tol := opts.tolerance()
	result := make(Result, len(allPaths))

	for path := range allPaths {
		localEntry := localByPath[path]
		remoteEntry := remoteByPath[path]
		_, isDeclared := declared[path]

		state := &PathState{
			Path:     path,
			Declared: isDeclared,
			Local:    localEntry,
			Remote:   remoteEntry,
		}

		compared := classify(localEntry, remoteEntry, opts.Journal[path], tol)

		if !isDeclared {
			state.Status = StatusUndeclared
			state.Underlying = compared
		} else {
			state.Status = compared
		}

		result[path] = state
	}

	return result
}

func classify(local, remote *scan.Entry, last *JournalEntry, tol time.Duration) Status {
	switch {
	case local == nil && remote == nil:
		return StatusMissing
	case remote == nil:
		return StatusLocalOnly
	case local == nil:
		return StatusRemoteOnly
	}

	if contentEqual(local, remote, tol) {
		return StatusInSync
	}

	// Both present and differing. If both sides changed since the last
	// recorded in-sync observation, the direction is ambiguous no matter
	// what the timestamps say.
	if last != nil && modifiedSince(local, last, tol) && modifiedSince(remote, last, tol) {
		return StatusConflict
	}

	switch {
	case local.ModTime.After(remote.ModTime.Add(tol)):
		return StatusStaleRemote
	case remote.ModTime.After(local.ModTime.Add(tol)):
		return StatusStaleLocal
	default:
		// content differs but timestamps tie: no safe direction
		return StatusConflict
	}
}

// contentEqual compares by checksum when both sides have one, otherwise by
// size plus timestamp within the tolerance window.
func contentEqual(a, b *scan.Entry, tol time.Duration) bool {
	if a.Checksum != "" && b.Checksum != "" {
		return a.Checksum == b.Checksum
	}
	return a.Size == b.Size && within(a.ModTime, b.ModTime, tol)
}

// modifiedSince reports whether an observed entry differs from the recorded
// last-synced state, preferring checksum evidence over size and timestamp.
func modifiedSince(e *scan.Entry, last *JournalEntry, tol time.Duration) bool {
	if e.Checksum != "" && last.MD5 != "" {
		return e.Checksum != last.MD5
	}
	if e.Size != last.Size {
		return true
	}
	return !within(e.ModTime, last.ModTime, tol)
}

func within(a, b time.Time, tol time.Duration) bool {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d <= tol
}
