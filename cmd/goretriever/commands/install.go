package commands

import (
	"github.com/retrieverlabs/goretriever/cmd/goretriever/opts"
	"github.com/retrieverlabs/goretriever/pkg/log"
	"github.com/retrieverlabs/goretriever/pkg/retriever"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

// NewInstallCmd creates a new install command
func NewInstallCmd(rootOpts *opts.RootOpts) *cobra.Command {
	var (
		dataDir   string
		tableName string
		notCached bool
		parallel  int
	)

	cmd := &cobra.Command{
		Use:   "install [datasets...]",
		Short: "Install datasets into a database or flat files",
		Long: `Install runs the retriever binary for each named dataset.
The target engine comes from --engine or the connection profile; server
engines read their credentials from the profile given with --conn.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "install").Logger().WithContext(ctx)

			profile, err := rootOpts.LoadProfile(ctx)
			if err != nil {
				return err
			}
			eng, err := rootOpts.ResolveEngine(profile)
			if err != nil {
				return err
			}

			connection := profile.Connection
			if dataDir != "" {
				connection.DataDir = dataDir
			}
			if tableName != "" {
				connection.TableName = tableName
			}

			client, err := retriever.New(ctx)
			if err != nil {
				return err
			}

			installOpts := retriever.InstallOptions{
				LogFile:   rootOpts.LogFile,
				Debug:     rootOpts.Debug,
				NotCached: notCached,
			}

			if len(args) > 1 {
				rootOpts.Console.Header("installing datasets")
				if err := client.InstallMany(ctx, args, eng, connection, installOpts, parallel); err != nil {
					return err
				}
				rootOpts.Console.Successf("installed %d datasets", len(args))
				return nil
			}

			dataset := args[0]
			rootOpts.Console.StartDatasetOperation(ctx, log.DatasetOperation{
				Dataset: dataset,
				Engine:  eng.String(),
				Target:  connection.DSN(eng),
			})
			defer rootOpts.Console.EndDatasetOperation(ctx)

			if err := client.Install(ctx, dataset, eng, connection, installOpts); err != nil {
				return errors.Errorf("installing dataset: %w", err)
			}

			rootOpts.Console.Successf("installed %s", dataset)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataDir, "data-dir", "", "directory for file-engine output")
	cmd.Flags().StringVar(&tableName, "table-name", "", "table name template passed to the retriever")
	cmd.Flags().BoolVar(&notCached, "not-cached", false, "ignore cached raw data and download fresh")
	cmd.Flags().IntVar(&parallel, "parallel", 1, "datasets to install concurrently")

	return cmd
}
