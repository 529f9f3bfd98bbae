package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/ve-data-science/vedatool/internal/datacheck"
)

func init() {
	rootCmd.AddCommand(newDataCmd())
}

func newDataCmd() *cobra.Command {
	var checksum bool

	cmd := &cobra.Command{
		Use:   "data [directory]",
		Short: "Validate data files against their manifests",
		Long: "Checks that every data directory carries a manifest, that every manifest\n" +
			"entry has a matching file, and that no file goes undeclared.\n" +
			"Validates the whole data tree unless a directory is given.",
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

			checker := &datacheck.Checker{RepoRoot: cfg.RepositoryPath, Checksums: checksum}
			report, err := checker.CheckTree(root)
			if err != nil {
				fail(err)
			}

			for _, problem := range report.Sorted() {
				fmt.Printf("  %s %s\n", red("✗"), problem)
			}
			fmt.Printf("%d directories checked, %d problems\n", report.Checked, len(report.Problems))

			if !report.OK() {
				os.Exit(1)
			}
			fmt.Println(green("Data files are consistent with their manifests"))
		},
	}

	cmd.Flags().SortFlags = false
	cmd.Flags().BoolVar(&checksum, "checksum", false, "verify declared MD5 checksums")

	return cmd
}
