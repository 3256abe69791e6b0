package commands

import (
	"github.com/pterm/pterm"
	"github.com/retrieverlabs/goretriever/cmd/goretriever/opts"
	"github.com/retrieverlabs/goretriever/pkg/retriever"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

// NewDatasetsCmd creates a new datasets command
func NewDatasetsCmd(rootOpts *opts.RootOpts) *cobra.Command {
	var (
		keywords []string
		licenses []string
	)

	cmd := &cobra.Command{
		Use:   "datasets",
		Short: "List the dataset scripts the retriever knows about",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "datasets").Logger().WithContext(ctx)

			client, err := retriever.New(ctx)
			if err != nil {
				return err
			}

			names, err := client.Datasets(ctx, retriever.DatasetOptions{
				Keywords: keywords,
				Licenses: licenses,
			})
			if err != nil {
				return errors.Errorf("listing datasets: %w", err)
			}

			items := make([]pterm.BulletListItem, 0, len(names))
			for _, name := range names {
				items = append(items, pterm.BulletListItem{Level: 0, Text: name})
			}
			if err := pterm.DefaultBulletList.WithItems(items).Render(); err != nil {
				return errors.Errorf("rendering dataset list: %w", err)
			}

			rootOpts.Console.Infof("%d datasets available", len(names))
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&keywords, "keyword", "k", nil, "filter by keyword (repeatable)")
	cmd.Flags().StringArrayVarP(&licenses, "license", "l", nil, "filter by license (repeatable)")

	return cmd
}
