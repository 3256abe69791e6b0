package main

import (
	"os"

	"github.com/retrieverlabs/goretriever/cmd/goretriever/opts"
	"github.com/retrieverlabs/goretriever/pkg/log"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// addRootFlags adds shared flags to the root command and returns the
// options struct they populate
func addRootFlags(cmd *cobra.Command) *opts.RootOpts {
	rootOpts := &opts.RootOpts{
		Console: log.New(os.Stdout, zerolog.InfoLevel),
	}

	cmd.PersistentFlags().StringVarP(&rootOpts.ConnFile, "conn", "c", "", "connection profile (conn_file, .yaml or .hcl)")
	cmd.PersistentFlags().StringVarP(&rootOpts.Engine, "engine", "e", "", "install target engine (csv, json, xml, sqlite, msaccess, mysql, postgres)")
	cmd.PersistentFlags().StringVar(&rootOpts.LogFile, "log-file", "", "append subprocess output to this file")
	cmd.PersistentFlags().BoolVarP(&rootOpts.Debug, "debug", "d", false, "enable debug logging")

	return rootOpts
}

// setupLogging configures zerolog for the process
func setupLogging() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if os.Getenv("GORETRIEVER_DEBUG") != "" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}
