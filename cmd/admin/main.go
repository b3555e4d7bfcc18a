package main

import (
	"context"
	"fmt"
	"os"

	"github.com/shaygp/boxd/internal/config"
	"github.com/shaygp/boxd/internal/container"
	"github.com/shaygp/boxd/internal/database"
	"github.com/shaygp/boxd/internal/logger"
	"github.com/shaygp/boxd/internal/output"
	"github.com/spf13/cobra"
)

var (
	outputFormat = "text"
	out          *output.Printer
)

var rootCmd = &cobra.Command{
	Use:   "boxd-admin",
	Short: "boxd admin - operator tools for the social store",
	Long: `boxd admin runs maintenance jobs against the social store directly.
It talks to the database, not the HTTP API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(outputFormat)
		if err != nil {
			return err
		}
		out = output.New(cmd.OutOrStdout(), format)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", outputFormat, "Output format: text, table or json")

	rootCmd.AddCommand(recountCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(tokenCmd)
}

// bootstrap connects to the configured store and wires the services. Admin
// jobs skip the profile cache.
func bootstrap() (*config.Config, *container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, nil, err
	}

	db, err := database.Initialize(cfg)
	if err != nil {
		return nil, nil, err
	}
	c, err := container.New(cfg, db, nil)
	if err != nil {
		_ = database.Close()
		return nil, nil, err
	}
	c.OnCleanup(func(context.Context) error { return database.Close() })
	c.OnCleanup(func(context.Context) error { return logger.Close() })
	return cfg, c, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
