package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/harrisonrobin/trackersync/pkg/markdown"
	"github.com/harrisonrobin/trackersync/pkg/model"
)

func newIDsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ids",
		Short: "Give every task without an id a generated one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.runIDs(cmd.Context())
		},
	}
}

func (o *options) runIDs(ctx context.Context) error {
	rt, err := o.setup(ctx, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	path := rt.cfg.TrackerPath()
	tasks, err := markdown.ParseFile(path)
	if err != nil {
		return err
	}
	gen := newIDGenerator(rt.cfg.IDPrefix, tasks)

	var assigned []markdown.Assignment
	if o.dryRun {
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		_, assigned = markdown.ApplyIDs(strings.Split(string(content), "\n"), rt.cfg.ExcludeSections, gen)
	} else {
		assigned, err = markdown.AssignIDs(path, rt.cfg.ExcludeSections, gen)
		if err != nil {
			return err
		}
	}

	verb := "Assigned"
	if o.dryRun {
		verb = "Would assign"
	}
	for _, a := range assigned {
		fmt.Fprintf(o.out, "%s %s to %q\n", verb, a.ID, a.Title)
	}
	if len(assigned) == 0 {
		fmt.Fprintln(o.out, "Every task already has an id")
	}
	return nil
}

// newIDGenerator returns ids of the form PREFIX-xxxxxxxx that collide
// with no existing id.
func newIDGenerator(prefix string, tasks []model.Task) func() string {
	used := make(map[string]bool, len(tasks))
	for i := range tasks {
		if id := tasks[i].ID(); id != "" {
			used[id] = true
		}
	}
	return func() string {
		for {
			raw := strings.ReplaceAll(uuid.NewString(), "-", "")
			id := fmt.Sprintf("%s-%s", prefix, raw[:8])
			if !used[id] {
				used[id] = true
				return id
			}
		}
	}
}
