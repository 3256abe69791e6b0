package main

import (
	"context"
	"os"

	"github.com/retrieverlabs/goretriever/cmd/goretriever/commands"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	// Setup logging
	setupLogging()
	ctx := log.Logger.WithContext(context.Background())

	// Create user logger
	userLogger := commands.NewUserLogger(ctx)

	// Create root command
	rootCmd := &cobra.Command{
		Use:   "goretriever",
		Short: "A wrapper around the retriever data-download tool",
		Long: `goretriever wraps the external retriever binary: it installs datasets
into databases or flat files, downloads raw data, lists and updates dataset
scripts and manages the retriever's local cache.`,
	}

	// Add shared flags
	rootOpts := addRootFlags(rootCmd)

	// Add commands
	rootCmd.AddCommand(
		commands.NewInstallCmd(rootOpts),
		commands.NewFetchCmd(rootOpts),
		commands.NewDownloadCmd(rootOpts),
		commands.NewDatasetsCmd(rootOpts),
		commands.NewUpdateCmd(rootOpts),
		commands.NewResetCmd(rootOpts),
		commands.NewStatusCmd(rootOpts),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		userLogger.LogValidation(false, "Command failed", err)
		os.Exit(1)
	}
}
