package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodDoc = `directory: data/primary/carbon_use_efficiency
author: Jane Field
description: Carbon use efficiency source data
files:
  - path: data_file1.csv
    description: CUE measurements
    source: https://example.org/data_file1.csv
    md5: e1e72bc35b6a23f3937d507623c1177f
  - path: nested/data_file2.csv
    source: scripts/build_file2.py
    size: 2048
`

func TestParse_Good(t *testing.T) {
	m, err := Parse([]byte(goodDoc))
	require.NoError(t, err)

	assert.Equal(t, "data/primary/carbon_use_efficiency", m.Directory)
	require.Len(t, m.Files, 2)
	assert.Equal(t, []string{"data_file1.csv", "nested/data_file2.csv"}, m.Paths())

	f := m.Lookup("nested/data_file2.csv")
	require.NotNil(t, f)
	require.NotNil(t, f.Size)
	assert.Equal(t, int64(2048), *f.Size)
	assert.Nil(t, m.Lookup("absent.csv"))
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want any
	}{
		{
			name: "empty document",
			doc:  "",
			want: &SchemaError{},
		},
		{
			name: "missing directory",
			doc:  "files:\n  - path: a.csv\n",
			want: &SchemaError{},
		},
		{
			name: "missing file path",
			doc:  "directory: data/x\nfiles:\n  - description: no path\n",
			want: &SchemaError{},
		},
		{
			name: "unknown field",
			doc:  "directory: data/x\nfiles:\n  - paht: a.csv\n",
			want: &SchemaError{},
		},
		{
			name: "duplicate path",
			doc:  "directory: data/x\nfiles:\n  - path: a.csv\n  - path: a.csv\n",
			want: &DuplicatePathError{},
		},
		{
			name: "absolute path",
			doc:  "directory: data/x\nfiles:\n  - path: /etc/passwd\n",
			want: &PathTraversalError{},
		},
		{
			name: "parent traversal",
			doc:  "directory: data/x\nfiles:\n  - path: ../../secrets.csv\n",
			want: &PathTraversalError{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			require.Error(t, err)
			switch tc.want.(type) {
			case *SchemaError:
				var e *SchemaError
				assert.ErrorAs(t, err, &e)
			case *DuplicatePathError:
				var e *DuplicatePathError
				assert.ErrorAs(t, err, &e)
			case *PathTraversalError:
				var e *PathTraversalError
				assert.ErrorAs(t, err, &e)
			}
		})
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	m, err := Parse([]byte(goodDoc))
	require.NoError(t, err)

	data, err := m.Marshal()
	require.NoError(t, err)

	again, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, m, again)
}

func TestLoadSave(t *testing.T) {
	dir := t.TempDir()
	m, err := Parse([]byte(goodDoc))
	require.NoError(t, err)

	require.NoError(t, m.Save(dir))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, m, loaded)
}

func TestLoad_NoManifest(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.Error(t, err)
}
