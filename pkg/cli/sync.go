package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/trackersync/pkg/reconcile"
)

func newSyncCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run one sync between the tracker file and GitHub",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.runSync(cmd.Context())
		},
	}
}

func (o *options) runSync(ctx context.Context) error {
	rt, err := o.setup(ctx, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	_, err = o.syncOnce(ctx, rt)
	return err
}

func (o *options) syncOnce(ctx context.Context, rt *runtime) (*reconcile.Report, error) {
	n := newNarrator(o.out)
	n.Banner("GitHub Tracker Sync: " + rt.cfg.Repo())

	report, err := reconcile.Run(ctx, o.session(rt, n))
	if err != nil {
		return report, err
	}
	n.Summary(report)
	slog.Info("sync finished", "created", report.Created, "updated", report.Updated, "pulled", report.Pulled, "warnings", len(report.Warnings))
	return report, nil
}
