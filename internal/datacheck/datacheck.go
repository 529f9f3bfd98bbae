// Package datacheck validates data directories against their manifest
// documents: every file on disk must be declared, every declared file must
// exist, and declared sizes/checksums must match what is observed.
package datacheck

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/ve-data-science/vedatool/internal/manifest"
	"github.com/ve-data-science/vedatool/internal/scan"
	"github.com/ve-data-science/vedatool/internal/utils"
)

// Checker validates manifests against the directory tree they describe.
type Checker struct {
	// RepoRoot anchors the repository-relative directory names recorded in
	// manifests.
	RepoRoot string

	// Checksums enables MD5 verification of entries that declare one.
	Checksums bool
}

// CheckDirectory validates a single data directory against its manifest.
// Fails with scan.ErrNotADirectory when the target is not traversable; all
// other findings are collected into the report.
func (c *Checker) CheckDirectory(dir string) (*Report, error) {
	report := &Report{Checked: 1}
	relDir := c.relDir(dir)

	scanner := scan.NewScanner(dir)
	observed, err := scanner.ScanDir(dir)
	if err != nil {
		return nil, err
	}

	if !utils.FileExists(manifest.PathFor(dir)) {
		report.add(Problem{Dir: relDir, Kind: ProblemUnmanifested})
		return report, nil
	}

	m, err := manifest.Load(dir)
	if err != nil {
		report.add(Problem{Dir: relDir, Kind: ProblemBadManifest, Detail: err.Error()})
		return report, nil
	}

	// The directory recorded in the manifest must be congruent with where
	// the document actually lives.
	if !dirCongruent(utils.NormPath(dir), utils.NormPath(m.Directory)) {
		report.add(Problem{
			Dir:    relDir,
			Kind:   ProblemMismatched,
			Detail: fmt.Sprintf("manifest directory %q does not match location", m.Directory),
		})
	}

	observedByPath := scan.ToMap(observed)

	for _, f := range m.Files {
		entry, found := observedByPath[f.Path]
		if !found {
			report.add(Problem{Dir: relDir, Path: f.Path, Kind: ProblemMissing})
			continue
		}
		delete(observedByPath, f.Path)

		if f.Size != nil && *f.Size != entry.Size {
			report.add(Problem{
				Dir:    relDir,
				Path:   f.Path,
				Kind:   ProblemMismatched,
				Detail: fmt.Sprintf("declared size %d, observed %d", *f.Size, entry.Size),
			})
		}

		if c.Checksums && f.MD5 != "" {
			sum, err := utils.FileHash(filepath.Join(dir, f.Path))
			if err != nil {
				report.add(Problem{Dir: relDir, Path: f.Path, Kind: ProblemMismatched, Detail: err.Error()})
				continue
			}
			if sum != f.MD5 {
				report.add(Problem{
					Dir:    relDir,
					Path:   f.Path,
					Kind:   ProblemMismatched,
					Detail: fmt.Sprintf("declared md5 %s, observed %s", f.MD5, sum),
				})
			}
		}
	}

	for path := range observedByPath {
		report.add(Problem{Dir: relDir, Path: path, Kind: ProblemUndeclared})
	}

	return report, nil
}

// CheckTree descends the directory tree rooted at root, validating every
// directory. Directories without a manifest are reported as unmanifested
// rather than silently skipped, so coverage gaps stay visible. An invalid
// root is the only fatal condition.
func (c *Checker) CheckTree(root string) (*Report, error) {
	if !utils.DirExists(root) {
		return nil, fmt.Errorf("%w: %s", scan.ErrNotADirectory, root)
	}

	report := &Report{}
	ignore := scan.NewIgnoreList(root)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() {
			return nil
		}

		if path != root {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			if ignore.ShouldIgnore(utils.NormPath(rel)) {
				return filepath.SkipDir
			}
		}

		sub, err := c.CheckDirectory(path)
		if err != nil {
			// fatal for this subtree only
			if errors.Is(err, scan.ErrNotADirectory) {
				slog.Warn("skipping unreadable directory", "path", path, "error", err)
				return filepath.SkipDir
			}
			return err
		}
		report.merge(sub)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return report, nil
}

// dirCongruent reports whether the trailing path components of dir equal
// declared, compared component-wise so "a/site" never matches ".../data/site".
func dirCongruent(dir, declared string) bool {
	dirParts := strings.Split(dir, "/")
	declaredParts := strings.Split(declared, "/")
	if len(declaredParts) > len(dirParts) {
		return false
	}
	tail := dirParts[len(dirParts)-len(declaredParts):]
	for i, part := range declaredParts {
		if tail[i] != part {
			return false
		}
	}
	return true
}

func (c *Checker) relDir(dir string) string {
	if c.RepoRoot == "" {
		return utils.NormPath(dir)
	}
	rel, err := filepath.Rel(c.RepoRoot, dir)
	if err != nil {
		return utils.NormPath(dir)
	}
	return utils.NormPath(rel)
}
