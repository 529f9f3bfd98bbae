package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/ve-data-science/vedatool/internal/config"
	"github.com/ve-data-science/vedatool/internal/datacheck"
	"github.com/ve-data-science/vedatool/internal/reconcile"
	"github.com/ve-data-science/vedatool/internal/remote"
	"github.com/ve-data-science/vedatool/internal/scan"
	"github.com/ve-data-science/vedatool/internal/transfer"
	"github.com/ve-data-science/vedatool/internal/utils"
)

// remoteDataRoot is the path of the data tree on the remote collection,
// which mirrors the repository layout.
const remoteDataRoot = "/data"

func init() {
	rootCmd.AddCommand(newStatusCmd())
}

func newStatusCmd() *cobra.Command {
	var checksum bool

	cmd := &cobra.Command{
		Use:     "status",
		Aliases: []string{"globus_status"},
		Short:   "Compare local data files with the shared remote collection",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := loadConfig(cmd)
			if err != nil {
				fail(err)
			}

			client := transfer.NewHTTPClient(cfg.ServerURL, cfg.ClientID)
			result, journal, err := gatherState(cmd.Context(), cfg, client, checksum)
			if err != nil {
				fail(err)
			}
			defer journal.Close()

			fmt.Print(result.Render())

			if !result.Clean() {
				os.Exit(1)
			}
		},
	}

	cmd.Flags().SortFlags = false
	cmd.Flags().BoolVar(&checksum, "checksum", false, "hash local files so journal comparisons use MD5, not size and mtime")

	return cmd
}

// gatherState collects the three reconciliation inputs: manifest-declared
// paths, the local data tree, and the remote collection listing. It also
// opens the sync journal, seeding it on first use so a pre-existing clone
// does not report every later edit as a conflict.
func gatherState(ctx context.Context, cfg *config.Config, client transfer.Client, checksum bool) (reconcile.Result, *reconcile.Journal, error) {
	declared, err := datacheck.DeclaredPaths(cfg.DataDir())
	if err != nil {
		return nil, nil, fmt.Errorf("read manifests: %w", err)
	}

	opts := []scan.Option{}
	if checksum {
		opts = append(opts, scan.WithChecksums())
	}
	local, err := scan.NewScanner(cfg.DataDir(), opts...).Scan()
	if err != nil {
		return nil, nil, fmt.Errorf("scan local data tree: %w", err)
	}

	if err := client.Authenticate(ctx); err != nil {
		return nil, nil, fmt.Errorf("authenticate with transfer service: %w", err)
	}
	remoteEntries, err := remote.NewCatalog(client, cfg.RemoteEndpoint, remoteDataRoot).List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list remote collection: %w", err)
	}

	if err := utils.EnsureDir(cfg.StateDir()); err != nil {
		return nil, nil, err
	}
	journal := reconcile.NewJournal(filepath.Join(cfg.StateDir(), "journal.db"))
	if err := journal.Open(); err != nil {
		return nil, nil, err
	}

	count, err := journal.Count()
	if err != nil {
		journal.Close()
		return nil, nil, err
	}
	if count == 0 {
		if err := journal.Rebuild(local, remoteEntries, reconcile.DefaultModTimeTolerance); err != nil {
			journal.Close()
			return nil, nil, fmt.Errorf("seed sync journal: %w", err)
		}
	}

	state, err := journal.State()
	if err != nil {
		journal.Close()
		return nil, nil, err
	}

	result := reconcile.Reconcile(declared, local, remoteEntries, reconcile.Options{Journal: state})
	return result, journal, nil
}
