package scripts

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ve-data-science/vedatool/internal/utils"
)

// scriptExtensions are the file types that must carry a metadata block.
var scriptExtensions = map[string]bool{
	".r":   true,
	".py":  true,
	".md":  true,
	".rmd": true,
}

// DefaultIgnoreFiles match the script extensions but never carry metadata.
var DefaultIgnoreFiles = []string{"__init__.py", "README.md"}

// Problem is one script that failed validation.
type Problem struct {
	// Path is relative to the repository root.
	Path   string
	Reason string
}

// Report is the outcome of checking a script tree.
type Report struct {
	Checked  int
	Problems []Problem
}

func (r *Report) OK() bool {
	return len(r.Problems) == 0
}

func (r *Report) add(path, reason string) {
	r.Problems = append(r.Problems, Problem{Path: path, Reason: reason})
}

// Checker validates script metadata under a repository.
type Checker struct {
	// RepoRoot anchors reported paths and declared input/output locations.
	RepoRoot string

	// CheckFileLocations also verifies that every declared input and
	// output file exists under the repository.
	CheckFileLocations bool

	// IgnoreFiles are base names skipped during the walk. Nil means
	// DefaultIgnoreFiles.
	IgnoreFiles []string
}

// CheckTree recursively validates every script file under dir.
func (c *Checker) CheckTree(dir string) (*Report, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("script directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("script path %s is a file, not a directory", dir)
	}

	ignored := c.IgnoreFiles
	if ignored == nil {
		ignored = DefaultIgnoreFiles
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !scriptExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		for _, name := range ignored {
			if d.Name() == name {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk script directory %s: %w", dir, err)
	}
	sort.Strings(files)

	slog.Info("checking scripts", "dir", dir, "count", len(files))

	report := &Report{}
	for _, file := range files {
		report.Checked++
		rel := c.relPath(file)

		meta, err := ReadMetadata(file)
		if err != nil {
			slog.Error("script invalid", "path", rel, "error", err)
			report.add(rel, err.Error())
			continue
		}
		slog.Info("script ok", "path", rel)

		if c.CheckFileLocations {
			c.checkLocations(report, rel, meta)
		}
	}
	return report, nil
}

// checkLocations verifies that declared input and output files exist,
// resolving their paths against the repository root.
func (c *Checker) checkLocations(report *Report, scriptRel string, meta *Metadata) {
	declared := append(append([]FileDetails{}, meta.InputFiles...), meta.OutputFiles...)
	for _, f := range declared {
		target := filepath.Join(c.RepoRoot, filepath.FromSlash(f.Path), f.Name)
		if !utils.FileExists(target) {
			report.add(scriptRel, fmt.Sprintf("declared file not found: %s", utils.NormPath(filepath.Join(f.Path, f.Name))))
		}
	}
}

func (c *Checker) relPath(path string) string {
	if c.RepoRoot == "" {
		return utils.NormPath(path)
	}
	rel, err := filepath.Rel(c.RepoRoot, path)
	if err != nil {
		return utils.NormPath(path)
	}
	return utils.NormPath(rel)
}
