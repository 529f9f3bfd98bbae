package scan

import (
	"bufio"
	"log/slog"
	"os"
	"path/filepath"

	gitignore "github.com/sabhiram/go-gitignore"
	"github.com/ve-data-science/vedatool/internal/manifest"
	"github.com/ve-data-science/vedatool/internal/utils"
)

// IgnoreFilename is the optional per-repository ignore rules file.
const IgnoreFilename = ".vedataignore"

var defaultIgnoreLines = []string{
	// hidden/system files
	".*",
	".DS_Store",
	"Thumbs.db",
	// never sync the manifests themselves
	manifest.Filename,
	// scratch files
	"*.tmp",
	"*.log",
}

// IgnoreList decides which paths the scanner and the sync engine skip.
// Rules use gitignore syntax, combining built-in defaults with an optional
// .vedataignore file at the scan root.
type IgnoreList struct {
	baseDir string
	ignore  *gitignore.GitIgnore
}

func NewIgnoreList(baseDir string) *IgnoreList {
	il := &IgnoreList{baseDir: baseDir}
	il.Load()
	return il
}

// DefaultIgnore returns an ignore list with only the built-in rules, for
// callers with no local directory to read rules from.
func DefaultIgnore() *IgnoreList {
	return &IgnoreList{
		ignore: gitignore.CompileIgnoreLines(defaultIgnoreLines...),
	}
}

func (il *IgnoreList) Load() {
	ignorePath := filepath.Join(il.baseDir, IgnoreFilename)
	ignoreLines := defaultIgnoreLines

	if utils.FileExists(ignorePath) {
		rules := 0
		file, err := os.Open(ignorePath)
		if err != nil {
			slog.Warn("failed to open ignore file", "path", ignorePath, "error", err)
		} else {
			defer file.Close()

			scanner := bufio.NewScanner(file)
			for scanner.Scan() {
				line := scanner.Text()
				if line != "" {
					ignoreLines = append(ignoreLines, line)
					rules++
				}
			}
			if err := scanner.Err(); err != nil {
				slog.Warn("error reading ignore file", "path", ignorePath, "error", err)
			} else {
				slog.Debug("loaded ignore file", "path", ignorePath, "rules", rules)
			}
		}
	}

	il.ignore = gitignore.CompileIgnoreLines(ignoreLines...)
}

func (il *IgnoreList) ShouldIgnore(path string) bool {
	return il.ignore.MatchesPath(path)
}
