package commands

import (
	"github.com/retrieverlabs/goretriever/cmd/goretriever/opts"
	"github.com/retrieverlabs/goretriever/pkg/log"
	"github.com/retrieverlabs/goretriever/pkg/retriever"
	"github.com/retrieverlabs/goretriever/pkg/table"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

// NewFetchCmd creates a new fetch command
func NewFetchCmd(rootOpts *opts.RootOpts) *cobra.Command {
	var (
		dataDir  string
		keepData bool
	)

	cmd := &cobra.Command{
		Use:   "fetch <dataset>",
		Short: "Install a dataset to CSV and summarize its tables",
		Long: `Fetch installs a dataset into a scratch directory as CSV, loads the
produced files into memory and prints one line per table. Use --keep-data
with --data-dir to keep the CSVs around afterwards.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "fetch").Logger().WithContext(ctx)

			dataset := args[0]

			client, err := retriever.New(ctx)
			if err != nil {
				return err
			}

			rootOpts.Console.StartDatasetOperation(ctx, log.DatasetOperation{
				Dataset: dataset,
				Engine:  "csv",
				Target:  "memory",
			})
			defer rootOpts.Console.EndDatasetOperation(ctx)

			tables, err := client.Fetch(ctx, dataset, retriever.FetchOptions{
				DataDir:  dataDir,
				KeepData: keepData,
				LogFile:  rootOpts.LogFile,
			})
			if err != nil {
				return errors.Errorf("fetching dataset: %w", err)
			}

			for _, name := range table.Keys(tables) {
				rootOpts.Console.LogTableOperation(ctx, log.TableOperation{
					Name:  name,
					Rows:  tables[name].NumRows(),
					IsNew: true,
				})
			}

			rootOpts.Console.Successf("fetched %s (%d tables)", dataset, len(tables))
			return nil
		},
	}

	cmd.Flags().StringVar(&dataDir, "data-dir", "", "reuse this directory instead of a temp dir")
	cmd.Flags().BoolVar(&keepData, "keep-data", false, "keep the produced CSV files on disk")

	return cmd
}
