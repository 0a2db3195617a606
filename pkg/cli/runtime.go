package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/harrisonrobin/trackersync/pkg/auth"
	"github.com/harrisonrobin/trackersync/pkg/config"
	"github.com/harrisonrobin/trackersync/pkg/github"
	"github.com/harrisonrobin/trackersync/pkg/ledger"
	"github.com/harrisonrobin/trackersync/pkg/reconcile"
)

// runtime is what a command needs once config, logging and credentials
// are in place.
type runtime struct {
	cfg    *config.Config
	client *github.Client
	ledger *ledger.Ledger
	logs   io.Closer
}

func (rt *runtime) Close() error {
	if rt.logs == nil {
		return nil
	}
	return rt.logs.Close()
}

// setup loads config and configures logging. With remote set it also
// reads the token and builds the GitHub client. All checks happen before
// any network call.
func (o *options) setup(ctx context.Context, remote bool) (*runtime, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	logs, warning, err := configureLogger(o.logLevel, cfg.LogLevel, cfg.LogFile, o.errOut)
	if err != nil {
		return nil, err
	}
	if warning != "" {
		fmt.Fprintln(o.errOut, warning)
	}
	rt := &runtime{cfg: cfg, logs: logs}

	rt.ledger, err = ledger.Open(ledger.PathFor(cfg.TrackerPath()))
	if err != nil {
		rt.Close()
		return nil, err
	}

	if !remote {
		return rt, nil
	}

	token, err := auth.TokenFromEnv()
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.client, err = github.NewClient(ctx, token, cfg.RepoOwner, cfg.RepoName, cfg.APIURL)
	if err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}

func (o *options) session(rt *runtime, n reconcile.Narrator) *reconcile.Session {
	return reconcile.NewSession(rt.client, reconcile.Options{
		TrackerPath:     rt.cfg.TrackerPath(),
		ProjectName:     rt.cfg.ProjectName,
		ProjectID:       rt.cfg.ProjectID,
		ExcludeSections: rt.cfg.ExcludeSections,
		Delay:           rt.cfg.RateLimitDelay,
		DryRun:          o.dryRun,
		Ledger:          rt.ledger,
		Narrator:        n,
	})
}
