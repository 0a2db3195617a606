package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/trackersync/pkg/config"
)

func newConfigCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage trackersync configuration",
	}
	cmd.AddCommand(newConfigInitCmd(o))
	return cmd
}

func newConfigInitCmd(o *options) *cobra.Command {
	var owner, repo, project, tracker string
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with defaults filled in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			cfg.RepoOwner = owner
			cfg.RepoName = repo
			cfg.ProjectName = project
			if tracker != "" {
				cfg.TrackerFile = tracker
			}

			if err := config.Save(o.configPath, cfg, force); err != nil {
				return err
			}
			fmt.Fprintf(o.out, "Wrote %s\n", o.configPath)
			if err := cfg.Validate(); err != nil {
				fmt.Fprintf(o.out, "Edit it before syncing: %v\n", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "repository owner")
	cmd.Flags().StringVar(&repo, "repo", "", "repository name")
	cmd.Flags().StringVar(&project, "project", "", "project name")
	cmd.Flags().StringVar(&tracker, "tracker", "", "tracker file, relative to the config file")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}
