package scripts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const metadataYAML = `title: Rainfall cleaning
description: Cleans the raw rainfall gauge data.
author:
  - A. Researcher
virtual_ecosystem_module:
  - abiotic
status: final
package_dependencies:
  - dplyr
usage_notes: Run after downloading the raw gauge export.
input_files:
  - name: rainfall_raw.csv
    path: data/primary/rainfall
    description: Raw gauge export
output_files:
  - name: rainfall_clean.csv
    path: data/derived/rainfall
    description: Cleaned series
`

func writeScript(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func rScript(body string) string {
	out := "#| ---\n"
	for _, line := range splitLines([]byte(body)) {
		if line == "" {
			out += "#|\n"
		} else {
			out += "#| " + line + "\n"
		}
	}
	return out + "#| ---\n\nlibrary(dplyr)\n"
}

func pyScript(body string) string {
	return "\"\"\"\n" + body + "---\n\"\"\"\n\nimport pandas as pd\n"
}

func mdNotebook(body string) string {
	indented := ""
	for _, line := range splitLines([]byte(body)) {
		if line != "" {
			indented += "  " + line + "\n"
		}
	}
	return "---\ntitle: Notebook\nve_data_science:\n" + indented + "---\n\n# Analysis\n"
}

func TestReadMetadata_Formats(t *testing.T) {
	dir := t.TempDir()

	cases := []struct {
		name string
		file string
	}{
		{"r script", writeScript(t, dir, "clean.R", rScript(metadataYAML))},
		{"python script", writeScript(t, dir, "clean.py", pyScript(metadataYAML))},
		{"markdown notebook", writeScript(t, dir, "clean.md", mdNotebook(metadataYAML))},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			meta, err := ReadMetadata(tc.file)
			require.NoError(t, err)
			assert.Equal(t, "Rainfall cleaning", meta.Title)
			assert.Equal(t, []string{"A. Researcher"}, meta.Author)
			require.Len(t, meta.InputFiles, 1)
			assert.Equal(t, "rainfall_raw.csv", meta.InputFiles[0].Name)
			require.Len(t, meta.OutputFiles, 1)
			assert.Equal(t, "data/derived/rainfall", meta.OutputFiles[0].Path)
		})
	}
}

func TestReadMetadata_Errors(t *testing.T) {
	dir := t.TempDir()

	cases := []struct {
		name    string
		file    string
		extract bool
	}{
		{
			name:    "r script without fences",
			file:    writeScript(t, dir, "nofence.R", "library(dplyr)\n"),
			extract: true,
		},
		{
			name:    "r script fence not on first line",
			file:    writeScript(t, dir, "late.R", "# intro\n"+rScript(metadataYAML)),
			extract: true,
		},
		{
			name:    "r script with unprefixed line inside block",
			file:    writeScript(t, dir, "broken.R", "#| ---\n#| title: x\nnot a comment\n#| ---\n"),
			extract: true,
		},
		{
			name:    "python script without docstring",
			file:    writeScript(t, dir, "bare.py", "import os\n"),
			extract: true,
		},
		{
			name:    "notebook without section",
			file:    writeScript(t, dir, "plain.md", "---\ntitle: Notebook\n---\n\nbody\n"),
			extract: true,
		},
		{
			name: "missing required field",
			file: writeScript(t, dir, "missing.py", pyScript("title: Only a title\n")),
		},
		{
			name: "unknown field rejected",
			file: writeScript(t, dir, "extra.py", pyScript(metadataYAML+"surprise: true\n")),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadMetadata(tc.file)
			require.Error(t, err)
			if tc.extract {
				var extractErr *ExtractError
				assert.ErrorAs(t, err, &extractErr)
			}
		})
	}
}

func TestReadMetadata_EmptyFileLists(t *testing.T) {
	dir := t.TempDir()
	doc := `title: Minimal
description: No declared files.
author: [A. Researcher]
virtual_ecosystem_module: [core]
status: draft
package_dependencies: []
usage_notes: Nothing to note.
`
	meta, err := ReadMetadata(writeScript(t, dir, "minimal.py", pyScript(doc)))
	require.NoError(t, err)
	assert.Empty(t, meta.InputFiles)
	assert.Empty(t, meta.OutputFiles)
}

func TestCheckTree(t *testing.T) {
	repo := t.TempDir()
	analysis := filepath.Join(repo, "analysis")

	writeScript(t, analysis, "good.R", rScript(metadataYAML))
	writeScript(t, analysis, "nested/also_good.py", pyScript(metadataYAML))
	writeScript(t, analysis, "bad.R", "library(dplyr)\n")
	writeScript(t, analysis, "README.md", "# not a script\n")
	writeScript(t, analysis, ".hidden/skipped.R", "ignored\n")
	writeScript(t, analysis, "notes.txt", "not a script type\n")

	checker := &Checker{RepoRoot: repo}
	report, err := checker.CheckTree(analysis)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Checked)
	assert.False(t, report.OK())
	require.Len(t, report.Problems, 1)
	assert.Equal(t, "analysis/bad.R", report.Problems[0].Path)
}

func TestCheckTree_FileLocations(t *testing.T) {
	repo := t.TempDir()
	analysis := filepath.Join(repo, "analysis")
	writeScript(t, analysis, "clean.R", rScript(metadataYAML))

	// only the input exists; the declared output was never produced
	inputDir := filepath.Join(repo, "data", "primary", "rainfall")
	require.NoError(t, os.MkdirAll(inputDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(inputDir, "rainfall_raw.csv"), []byte("x"), 0o644))

	checker := &Checker{RepoRoot: repo, CheckFileLocations: true}
	report, err := checker.CheckTree(analysis)
	require.NoError(t, err)

	require.Len(t, report.Problems, 1)
	assert.Contains(t, report.Problems[0].Reason, "data/derived/rainfall/rainfall_clean.csv")
}

func TestCheckTree_MissingDirectory(t *testing.T) {
	checker := &Checker{RepoRoot: t.TempDir()}
	_, err := checker.CheckTree(filepath.Join(checker.RepoRoot, "nope"))
	assert.Error(t, err)
}
