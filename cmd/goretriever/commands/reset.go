package commands

import (
	"github.com/pterm/pterm"
	"github.com/retrieverlabs/goretriever/cmd/goretriever/opts"
	"github.com/retrieverlabs/goretriever/pkg/cache"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

// NewResetCmd creates a new reset command
func NewResetCmd(rootOpts *opts.RootOpts) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset <scripts|data|connections|all>",
		Short: "Delete cached retriever state from the home directory",
		Long: `Reset removes cached state under the retriever home directory
(RETRIEVER_HOME or ~/.retriever). The scope picks what goes: downloaded
dataset scripts, raw data files, saved connections, or all of them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "reset").Logger().WithContext(ctx)

			scope, err := cache.ParseScope(args[0])
			if err != nil {
				return err
			}

			if !force {
				confirmed, err := pterm.DefaultInteractiveConfirm.
					WithDefaultText("Delete cached " + args[0] + "?").
					Show()
				if err != nil {
					return errors.Errorf("reading confirmation: %w", err)
				}
				if !confirmed {
					rootOpts.Console.Warning("reset aborted")
					return nil
				}
			}

			removed, err := cache.Reset(ctx, scope)
			if err != nil {
				return errors.Errorf("resetting cache: %w", err)
			}

			userLogger := NewUserLogger(ctx)
			for _, path := range removed {
				userLogger.LogChange(Change{Type: CacheRemoved, Subject: path})
			}
			if len(removed) == 0 {
				rootOpts.Console.Info("nothing to remove")
				return nil
			}
			rootOpts.Console.Successf("removed %d cache directories", len(removed))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "skip the confirmation prompt")

	return cmd
}
