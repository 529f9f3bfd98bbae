package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
	"github.com/ve-data-science/vedatool/internal/executor"
	"github.com/ve-data-science/vedatool/internal/reconcile"
	"github.com/ve-data-science/vedatool/internal/transfer"
	"github.com/ve-data-science/vedatool/internal/utils"
)

func init() {
	rootCmd.AddCommand(newSyncCmd())
}

func newSyncCmd() *cobra.Command {
	var dryRun bool
	var checksum bool
	var workers int

	cmd := &cobra.Command{
		Use:     "sync",
		Aliases: []string{"globus_sync"},
		Short:   "Transfer files until local and remote data trees converge",
		Long: "Reconciles the manifests, the local data tree and the remote collection,\n" +
			"then uploads or downloads files with an unambiguous direction. Conflicts\n" +
			"and undeclared files are reported and left untouched.",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := loadConfig(cmd)
			if err != nil {
				fail(err)
			}

			if err := utils.EnsureDir(cfg.StateDir()); err != nil {
				fail(err)
			}
			lock := flock.New(filepath.Join(cfg.StateDir(), "sync.lock"))
			locked, err := lock.TryLock()
			if err != nil {
				fail(fmt.Errorf("acquire sync lock: %w", err))
			}
			if !locked {
				fail(fmt.Errorf("another sync is already running for %s", cfg.RepositoryPath))
			}
			defer lock.Unlock()

			client := transfer.NewHTTPClient(cfg.ServerURL, cfg.ClientID)
			result, journal, err := gatherState(cmd.Context(), cfg, client, checksum)
			if err != nil {
				fail(err)
			}
			defer journal.Close()

			plan := result.Plan()
			if plan.IsEmpty() {
				fmt.Print(result.Render())
				fmt.Println(green("Nothing to transfer"))
				exitSync(result, nil)
			}

			if dryRun {
				fmt.Print(result.Render())
				for _, action := range plan.Actions {
					fmt.Printf("  would %s %s (%s)\n", cyan(string(action.Type)), action.Path, humanize.Bytes(uint64(action.Size)))
				}
				fmt.Printf("Dry run: %d transfer(s) planned\n", len(plan.Actions))
				exitSync(result, nil)
			}

			report, err := executor.New(
				client,
				executor.Endpoint{ID: cfg.LocalEndpoint, Root: cfg.DataDir()},
				executor.Endpoint{ID: cfg.RemoteEndpoint, Root: remoteDataRoot},
				executor.WithJournal(journal),
				executor.WithWorkers(workers),
			).Execute(cmd.Context(), result)
			if err != nil {
				fail(err)
			}

			for _, outcome := range report.Outcomes {
				if outcome.Err != nil {
					fmt.Printf("  %s %s %s: %s\n", red("✗"), outcome.Action.Type, outcome.Action.Path, outcome.Err)
				} else {
					fmt.Printf("  %s %s %s\n", green("✓"), outcome.Action.Type, outcome.Action.Path)
				}
			}
			fmt.Printf("%d transfer(s), %d failed\n", len(report.Outcomes), len(report.Failed()))

			exitSync(result, report)
		},
	}

	cmd.Flags().SortFlags = false
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "plan transfers without submitting them")
	cmd.Flags().BoolVar(&checksum, "checksum", false, "hash local files so journal comparisons use MD5, not size and mtime")
	cmd.Flags().IntVar(&workers, "workers", executor.DefaultWorkers, "concurrent transfer submissions")

	return cmd
}

// exitSync terminates the command, exiting non-zero when transfers failed
// or when paths needing human attention remain.
func exitSync(result reconcile.Result, report *executor.Report) {
	if report != nil && !report.OK() {
		os.Exit(1)
	}
	if len(result.Filter(reconcile.StatusConflict, reconcile.StatusUndeclared, reconcile.StatusMissing)) > 0 {
		os.Exit(1)
	}
	os.Exit(0)
}
