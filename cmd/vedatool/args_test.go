package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectoryCommands_AcceptOnePositionalAtMost(t *testing.T) {
	cases := []struct {
		name string
		cmd  *cobra.Command
	}{
		{"data", newDataCmd()},
		{"scripts", newScriptsCmd()},
		{"manifests", newManifestsCmd()},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.NotNil(t, tc.cmd.Args)
			assert.NoError(t, tc.cmd.Args(tc.cmd, nil))
			assert.NoError(t, tc.cmd.Args(tc.cmd, []string{"data/primary"}))
			assert.Error(t, tc.cmd.Args(tc.cmd, []string{"data/primary", "data/derived"}),
				"a second directory argument must be rejected, not ignored")
		})
	}
}

func TestScriptsCommand_FileLocationCheckIsOptIn(t *testing.T) {
	cmd := newScriptsCmd()
	flag := cmd.Flags().Lookup("check-file-locations")
	require.NotNil(t, flag)
	assert.Equal(t, "false", flag.DefValue)
}
