package cli

import (
	"io"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

type options struct {
	configPath string
	logLevel   string
	dryRun     bool

	out    io.Writer
	errOut io.Writer
}

// NewRootCmd builds the trackersync command tree. Running it without a
// subcommand performs a sync.
func NewRootCmd() *cobra.Command {
	o := &options{}

	cmd := &cobra.Command{
		Use:           "trackersync",
		Short:         "Sync a markdown task list with GitHub issues",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			o.out = cmd.OutOrStdout()
			o.errOut = cmd.ErrOrStderr()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.runSync(cmd.Context())
		},
	}

	cmd.Version = version
	cmd.PersistentFlags().StringVar(&o.configPath, "config", "config.yaml", "path to config file")
	cmd.PersistentFlags().StringVar(&o.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&o.dryRun, "dry-run", false, "print what would change without changing anything")

	cmd.AddCommand(
		newSyncCmd(o),
		newWatchCmd(o),
		newIDsCmd(o),
		newProjectCmd(o),
		newConfigCmd(o),
	)

	return cmd
}
