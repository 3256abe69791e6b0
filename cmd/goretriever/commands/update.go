package commands

import (
	"github.com/retrieverlabs/goretriever/cmd/goretriever/opts"
	"github.com/retrieverlabs/goretriever/pkg/retriever"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

// NewUpdateCmd creates a new update command
func NewUpdateCmd(rootOpts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Refresh the retriever's dataset-script catalog",
		Long: `Update asks the retriever binary to refresh its dataset scripts and
digests the run's log output into the list of scripts that changed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "update").Logger().WithContext(ctx)

			client, err := retriever.New(ctx)
			if err != nil {
				return err
			}

			report, err := client.UpdateScripts(ctx, rootOpts.LogFile)
			if err != nil {
				return errors.Errorf("updating scripts: %w", err)
			}

			userLogger := NewUserLogger(ctx)
			for _, script := range report.Scripts {
				userLogger.LogChange(Change{Type: ScriptUpdated, Subject: script})
			}
			rootOpts.Console.Success(report.Summary())
			return nil
		},
	}

	return cmd
}
