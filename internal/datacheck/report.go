package datacheck

import (
	"fmt"
	"sort"
)

// ProblemKind classifies one validation finding.
type ProblemKind string

const (
	// ProblemMissing: declared in the manifest but absent on disk.
	ProblemMissing ProblemKind = "missing"
	// ProblemUndeclared: present on disk but absent from the manifest.
	ProblemUndeclared ProblemKind = "undeclared"
	// ProblemMismatched: declared size/checksum differs from observed.
	ProblemMismatched ProblemKind = "mismatched"
	// ProblemUnmanifested: a data directory with no manifest document.
	ProblemUnmanifested ProblemKind = "unmanifested"
	// ProblemBadManifest: the manifest document itself failed to parse.
	ProblemBadManifest ProblemKind = "bad_manifest"
)

// Problem is one validation finding, local to one directory.
type Problem struct {
	Dir    string
	Path   string
	Kind   ProblemKind
	Detail string
}

func (p Problem) String() string {
	loc := p.Dir
	if p.Path != "" {
		loc = loc + "/" + p.Path
	}
	if p.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", p.Kind, loc, p.Detail)
	}
	return fmt.Sprintf("%s: %s", p.Kind, loc)
}

// Report aggregates validation findings across a directory tree. Problems
// are collected, not raised: a single run reports every problem in the tree.
type Report struct {
	Checked  int
	Problems []Problem
}

func (r *Report) add(p Problem) {
	r.Problems = append(r.Problems, p)
}

func (r *Report) merge(other *Report) {
	r.Checked += other.Checked
	r.Problems = append(r.Problems, other.Problems...)
}

// OK reports whether every checked directory validated cleanly.
func (r *Report) OK() bool {
	return len(r.Problems) == 0
}

// Sorted returns the findings ordered by directory then path.
func (r *Report) Sorted() []Problem {
	out := make([]Problem, len(r.Problems))
	copy(out, r.Problems)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Dir != out[j].Dir {
			return out[i].Dir < out[j].Dir
		}
		return out[i].Path < out[j].Path
	})
	return out
}
