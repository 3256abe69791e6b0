package commands

import (
	"github.com/retrieverlabs/goretriever/cmd/goretriever/opts"
	"github.com/retrieverlabs/goretriever/pkg/retriever"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

// NewDownloadCmd creates a new download command
func NewDownloadCmd(rootOpts *opts.RootOpts) *cobra.Command {
	var (
		path   string
		subDir bool
		globs  []string
	)

	cmd := &cobra.Command{
		Use:   "download <dataset>",
		Short: "Download a dataset's raw files without loading them",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "download").Logger().WithContext(ctx)

			dataset := args[0]

			client, err := retriever.New(ctx)
			if err != nil {
				return err
			}

			files, err := client.Download(ctx, dataset, retriever.DownloadOptions{
				Path:    path,
				SubDir:  subDir,
				Globs:   globs,
				LogFile: rootOpts.LogFile,
			})
			if err != nil {
				return errors.Errorf("downloading dataset: %w", err)
			}

			userLogger := NewUserLogger(ctx)
			for _, file := range files {
				userLogger.LogChange(Change{Type: DatasetInstalled, Subject: file, Description: "downloaded"})
			}
			rootOpts.Console.Successf("downloaded %d files from %s", len(files), dataset)
			return nil
		},
		Args: cobra.ExactArgs(1),
	}

	cmd.Flags().StringVar(&path, "path", ".", "directory to download into")
	cmd.Flags().BoolVar(&subDir, "sub-dir", false, "keep the retriever's subdirectory layout")
	cmd.Flags().StringArrayVar(&globs, "glob", nil, "only report files matching this pattern (repeatable)")

	return cmd
}
