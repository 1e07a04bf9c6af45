package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mywallet/internal/cli"
	"mywallet/internal/config"
	applog "mywallet/internal/log"
)

var (
	version = "dev"

	envFile string
	cfgFile string

	rootCmd = &cobra.Command{
		Use:           "mywallet",
		Short:         "Personal bookkeeping client",
		Long:          "mywallet serves the bookkeeping web client and offers terminal access to the same ledger.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "optional config file (yaml, toml or json)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(transactionsCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(sheetsCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	ctx, stop := cli.SignalContext(context.Background())
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads the configuration and the logger every command starts
// from.
func bootstrap() (*config.Config, *applog.Logger, error) {
	cfg, err := cli.LoadConfig(envFile, cfgFile)
	if err != nil {
		return nil, nil, err
	}
	return cfg, cli.SetupLogger(cfg), nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "mywallet", version)
		},
	}
}
