package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ve-data-science/vedatool/internal/datacheck"
)

func init() {
	rootCmd.AddCommand(newManifestsCmd())
}

func newManifestsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifests [directory]",
		Short: "Add missing manifest entries for data files on disk",
		Long: "Creates stub manifests for unmanifested directories and appends entries\n" +
			"for undeclared files. Existing entries are never changed or removed;\n" +
			"descriptions must still be filled in by hand.",
		Args: cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := loadConfig(cmd)
			if err != nil {
				fail(err)
			}

			root := cfg.DataDir()
			if len(args) == 1 {
				root = args[0]
			}

			checker := &datacheck.Checker{RepoRoot: cfg.RepositoryPath}
			updated, err := checker.UpdateManifests(root)
			if err != nil {
				fail(err)
			}

			if updated == 0 {
				fmt.Println(green("Manifests already cover every data file"))
				return
			}
			fmt.Printf("Updated %s manifest(s), fill in the new descriptions\n", cyan(fmt.Sprint(updated)))
		},
	}

	return cmd
}
