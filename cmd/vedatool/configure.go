package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/ve-data-science/vedatool/internal/config"
	"github.com/ve-data-science/vedatool/internal/utils"
)

func init() {
	rootCmd.AddCommand(newConfigureCmd())
}

func newConfigureCmd() *cobra.Command {
	var repoPath string
	var serverURL string
	var clientID string
	var remoteEndpoint string
	var localEndpoint string
	var force bool

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Write the vedatool configuration file",
		Run: func(cmd *cobra.Command, args []string) {
			configPath := cmd.Flag("config").Value.String()

			if cfg, err := config.Load(configPath); err == nil && !force {
				fmt.Println("Already configured, use --force to overwrite")
				showConfig(cfg)
				os.Exit(0)
			} else if err != nil && !errors.Is(err, config.ErrNotFound) && !force {
				fail(err)
			}

			resolved, err := utils.ResolvePath(repoPath)
			if err != nil {
				fail(err)
			}

			cfg := &config.Config{
				RepositoryPath: resolved,
				ServerURL:      serverURL,
				ClientID:       clientID,
				RemoteEndpoint: remoteEndpoint,
				LocalEndpoint:  localEndpoint,
			}
			if err := cfg.Validate(); err != nil {
				fail(err)
			}
			if err := cfg.Save(configPath, force); err != nil {
				fail(err)
			}
			cfg.Path = configPath

			fmt.Println("Configuration saved")
			showConfig(cfg)
		},
	}

	cmd.Flags().SortFlags = false
	cmd.Flags().StringVarP(&repoPath, "repository-path", "r", "", "path of the local repository clone")
	cmd.Flags().StringVarP(&serverURL, "server-url", "s", "", "transfer service base URL")
	cmd.Flags().StringVar(&clientID, "client-id", "", "transfer service client id")
	cmd.Flags().StringVar(&remoteEndpoint, "remote-endpoint", "", "shared remote collection id")
	cmd.Flags().StringVar(&localEndpoint, "local-endpoint", "", "local collection id")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing config")

	cmd.MarkFlagRequired("repository-path")
	cmd.MarkFlagRequired("server-url")
	cmd.MarkFlagRequired("client-id")
	cmd.MarkFlagRequired("remote-endpoint")
	cmd.MarkFlagRequired("local-endpoint")

	return cmd
}

func showConfig(cfg *config.Config) {
	if cfg.Path != "" {
		fmt.Printf("Config:          %s\n", green(cfg.Path))
	}
	fmt.Printf("Repository:      %s\n", cyan(cfg.RepositoryPath))
	fmt.Printf("Server:          %s\n", cyan(cfg.ServerURL))
	fmt.Printf("Remote endpoint: %s\n", cyan(cfg.RemoteEndpoint))
	fmt.Printf("Local endpoint:  %s\n", cyan(cfg.LocalEndpoint))
}
