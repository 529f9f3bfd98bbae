package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/ve-data-science/vedatool/internal/scripts"
)

func init() {
	rootCmd.AddCommand(newScriptsCmd())
}

func newScriptsCmd() *cobra.Command {
	var checkLocations bool

	cmd := &cobra.Command{
		Use:   "scripts [directory]",
		Short: "Validate the metadata headers of analysis scripts",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := loadConfig(cmd)
			if err != nil {
				fail(err)
			}

			root := cfg.AnalysisDir()
			if len(args) == 1 {
				root = args[0]
			}

			checker := &scripts.Checker{
				RepoRoot:           cfg.RepositoryPath,
				CheckFileLocations: checkLocations,
			}
			report, err := checker.CheckTree(root)
			if err != nil {
				fail(err)
			}

			for _, problem := range report.Problems {
				fmt.Printf("  %s %s: %s\n", red("✗"), problem.Path, problem.Reason)
			}
			fmt.Printf("%d scripts checked, %d problems\n", report.Checked, len(report.Problems))

			if !report.OK() {
				os.Exit(1)
			}
			fmt.Println(green("All script metadata is valid"))
		},
	}

	cmd.Flags().SortFlags = false
	cmd.Flags().BoolVar(&checkLocations, "check-file-locations", false, "verify declared input and output files exist")

	return cmd
}
