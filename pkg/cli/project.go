package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/trackersync/pkg/reconcile"
)

func newProjectCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage the GitHub project issues are linked into",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "create",
		Short: "Create the project and add every existing issue to it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.runProjectCreate(cmd.Context())
		},
	})
	return cmd
}

func (o *options) runProjectCreate(ctx context.Context) error {
	rt, err := o.setup(ctx, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	n := newNarrator(o.out)
	n.Banner(fmt.Sprintf("Creating project: %s", rt.cfg.ProjectName))

	res, err := reconcile.BootstrapProject(ctx, o.session(rt, n))
	if err != nil {
		return err
	}
	if o.dryRun {
		return nil
	}

	fmt.Fprintln(o.out)
	n.Banner("Project setup complete")
	fmt.Fprintf(o.out, "  added %d issues, %d failed\n", res.Added, res.Failed)
	fmt.Fprintf(o.out, "  View project: %s\n", res.Project.URL)
	fmt.Fprintf(o.out, "  Set project_id: %s in %s to pin it\n", res.Project.ID, rt.cfg.Path)
	return nil
}
