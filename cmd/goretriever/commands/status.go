package commands

import (
	"fmt"

	"github.com/retrieverlabs/goretriever/cmd/goretriever/opts"
	"github.com/retrieverlabs/goretriever/pkg/cache"
	"github.com/retrieverlabs/goretriever/pkg/release"
	"github.com/retrieverlabs/goretriever/pkg/retriever"
	"github.com/retrieverlabs/goretriever/pkg/runner"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewStatusCmd creates a new status command
func NewStatusCmd(rootOpts *opts.RootOpts) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the wrapped binary, its version and cached state",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "status").Logger().WithContext(ctx)

			console := rootOpts.Console
			console.Header("retriever status")

			binary, err := runner.Locate(ctx)
			if err != nil {
				console.Error("retriever binary not found")
				console.Info("install the retriever or set " + runner.EnvPath)
				return nil
			}
			console.Infof("binary: %s", binary)

			client := retriever.NewWithRunner(runner.NewWithBinary(binary))
			version, err := client.Version(ctx)
			if err != nil {
				console.Warningf("could not query version: %v", err)
			} else {
				console.Infof("version: %s", version)
			}

			home, err := cache.Home()
			if err == nil {
				console.Infof("home: %s", home)
			}

			infos, err := cache.Scan(ctx)
			if err != nil {
				console.Warningf("could not scan cache: %v", err)
			}
			for _, info := range infos {
				console.Infof("cache %s: %d files, %s", info.Name, info.Files, humanBytes(info.Bytes))
			}

			if remote && version != "" {
				staleness, err := release.NewChecker().Check(ctx, version)
				if err != nil {
					console.Warningf("could not check upstream releases: %v", err)
				} else if staleness.Outdated {
					console.Warningf("retriever %s is available (installed %s)", staleness.Latest, staleness.Installed)
				} else {
					console.Success("retriever is up to date")
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "also check GitHub for a newer retriever release")

	return cmd
}

// humanBytes renders a byte count for terminal output
func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
