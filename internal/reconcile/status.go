package reconcile

import (
	"sort"

	"github.com/ve-data-science/vedatool/internal/scan"
)

// Status is the computed synchronization state of one path.
type Status string

const (
	// StatusInSync: present both sides, equal by checksum or, when no
	// checksum is available, by size and timestamp within tolerance.
	StatusInSync Status = "in_sync"
	// StatusLocalOnly: present locally only, needs upload.
	StatusLocalOnly Status = "local_only"
	// StatusRemoteOnly: present remotely only, needs download.
	StatusRemoteOnly Status = "remote_only"
	// StatusStaleLocal: both present, remote is newer.
	StatusStaleLocal Status = "stale_local"
	// StatusStaleRemote: both present, local is newer.
	StatusStaleRemote Status = "stale_remote"
	// StatusConflict: both sides modified since the last known-equal
	// state, direction ambiguous. Never acted on automatically.
	StatusConflict Status = "conflict"
	// StatusUndeclared: present in a store but absent from the manifest.
	StatusUndeclared Status = "undeclared"
	// StatusMissing: declared in the manifest but absent from both stores.
	StatusMissing Status = "missing"
)

// PathState is the reconciliation outcome for one path.
type PathState struct {
	Path     string
	Status   Status
	Declared bool

	// Underlying preserves the store comparison for undeclared paths,
	// which are flagged but still compared for completeness.
	Underlying Status

	Local  *scan.Entry
	Remote *scan.Entry
}

// Result maps every path in the input union to exactly one state.
type Result map[string]*PathState

// Paths returns all reconciled paths in sorted order.
func (r Result) Paths() []string {
	paths := make([]string, 0, len(r))
	for p := range r {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Filter returns the states matching any of the given statuses, sorted by path.
func (r Result) Filter(statuses ...Status) []*PathState {
	var out []*PathState
	for _, path := range r.Paths() {
		state := r[path]
		for _, s := range statuses {
			if state.Status == s {
				out = append(out, state)
				break
			}
		}
	}
	return out
}

// Counts tallies states per status.
func (r Result) Counts() map[Status]int {
	counts := make(map[Status]int)
	for _, state := range r {
		counts[state.Status]++
	}
	return counts
}

// Clean reports whether every path is in sync.
func (r Result) Clean() bool {
	for _, state := range r {
		if state.Status != StatusInSync {
			return false
		}
	}
	return true
}
