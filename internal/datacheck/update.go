package datacheck

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/ve-data-science/vedatool/internal/manifest"
	"github.com/ve-data-science/vedatool/internal/scan"
	"github.com/ve-data-science/vedatool/internal/utils"
)

// DeclaredPaths walks the tree rooted at root and returns the union of all
// manifest-declared file paths, relative to root and sorted. Directories
// without a manifest contribute nothing; CheckTree reports those
// separately.
func DeclaredPaths(root string) ([]string, error) {
	if !utils.DirExists(root) {
		return nil, fmt.Errorf("%w: %s", scan.ErrNotADirectory, root)
	}

	pathSet := make(map[string]struct{})
	ignore := scan.NewIgnoreList(root)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = utils.NormPath(rel)
		if path != root && ignore.ShouldIgnore(rel) {
			return filepath.SkipDir
		}

		if !utils.FileExists(manifest.PathFor(path)) {
			return nil
		}
		m, err := manifest.Load(path)
		if err != nil {
			// CheckTree reports malformed manifests; here they just
			// contribute no declared paths.
			slog.Debug("skipping malformed manifest", "dir", path, "error", err)
			return nil
		}

		for _, f := range m.Files {
			declared := f.Path
			if rel != "." {
				declared = rel + "/" + f.Path
			}
			pathSet[declared] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(pathSet))
	for p := range pathSet {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}

// UpdateManifests regenerates manifests below root: files found on disk are
// added to their directory's manifest, a stub manifest is created where none
// exists, and existing entries are never removed. Returns the number of
// manifests written.
func (c *Checker) UpdateManifests(root string) (int, error) {
	if !utils.DirExists(root) {
		return 0, fmt.Errorf("%w: %s", scan.ErrNotADirectory, root)
	}

	updated := 0
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

		changed, err := c.updateOne(path)
		if err != nil {
			return err
		}
		if changed {
			updated++
		}
		return nil
	})
	if err != nil {
		return updated, err
	}

	return updated, nil
}

func (c *Checker) updateOne(dir string) (bool, error) {
	scanner := scan.NewScanner(dir)
	observed, err := scanner.ScanDir(dir)
	if err != nil {
		return false, err
	}

	var m *manifest.Manifest
	if utils.FileExists(manifest.PathFor(dir)) {
		m, err = manifest.Load(dir)
		if err != nil {
			return false, fmt.Errorf("cannot update %s: %w", manifest.PathFor(dir), err)
		}
	} else {
		m = &manifest.Manifest{Directory: c.relDir(dir)}
	}

	declared := make(map[string]struct{}, len(m.Files))
	for _, f := range m.Files {
		declared[f.Path] = struct{}{}
	}

	changed := !utils.FileExists(manifest.PathFor(dir))
	for _, entry := range observed {
		if _, ok := declared[entry.Path]; ok {
			continue
		}
		size := entry.Size
		m.Files = append(m.Files, &manifest.File{Path: entry.Path, Size: &size})
		changed = true
		slog.Info("manifest entry added", "dir", c.relDir(dir), "path", entry.Path)
	}

	if !changed {
		return false, nil
	}
	if err := m.Save(dir); err != nil {
		return false, err
	}
	return true, nil
}
