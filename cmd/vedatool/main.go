package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/ve-data-science/vedatool/internal/config"
	"github.com/ve-data-science/vedatool/internal/version"
)

var (
	red   = color.New(color.FgHiRed, color.Bold).SprintFunc()
	green = color.New(color.FgHiGreen).SprintFunc()
	cyan  = color.New(color.FgHiCyan).SprintFunc()
)

var rootCmd = &cobra.Command{
	Use:     "vedatool",
	Short:   "Manage and synchronize the Virtual Ecosystem data science repository",
	Version: version.Detailed(),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().SortFlags = false
	rootCmd.PersistentFlags().StringP("config", "c", config.DefaultPath(), "config file path")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
}

func main() {
	cobra.OnInitialize(setupLogging)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func setupLogging() {
	level := slog.LevelInfo
	if verbose, _ := rootCmd.PersistentFlags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}

	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})
	slog.SetDefault(slog.New(handler))
}

// loadConfig resolves the config file path from the flag and environment
// and loads it. A missing file is reported with the configure hint intact.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	viper.SetEnvPrefix("VEDATOOL")
	viper.AutomaticEnv()
	viper.BindPFlag("config", cmd.Flags().Lookup("config"))

	path := viper.GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, config.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// fail prints a CLI error and exits non-zero, matching the style of the
// subcommand output rather than the structured log.
func fail(err error) {
	fmt.Printf("%s: %s\n", red("ERROR"), err)
	os.Exit(1)
}
