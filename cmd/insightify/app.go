package main

import (
	"context"
	"os"

	"github.com/rohankatakam/insightify/internal/activity"
	"github.com/rohankatakam/insightify/internal/config"
	"github.com/rohankatakam/insightify/internal/errors"
	"github.com/rohankatakam/insightify/internal/git"
	"github.com/rohankatakam/insightify/internal/github"
	"github.com/rohankatakam/insightify/internal/llm"
	"github.com/rohankatakam/insightify/internal/notify"
	"github.com/rohankatakam/insightify/internal/output"
	"github.com/rohankatakam/insightify/internal/runner"
	"github.com/rohankatakam/insightify/internal/storage"
)

// validate logs warnings for ctx and fails on errors.
func validate(c *config.Config, ctx config.ValidationContext) error {
	result := c.Validate(ctx)
	for _, w := range result.Warnings {
		logger.Warn(w)
	}
	return result.Err()
}

func newSource(c *config.Config) (activity.Source, error) {
	switch c.Source.Type {
	case "local":
		return git.NewLocalSource(c.Source.Local.Paths, c.Source.Local.AuthorEmail, logger), nil
	case "", "github":
		client, err := github.NewClient(github.Options{
			Token:          c.GitHub.Token,
			Username:       c.GitHub.Username,
			RateLimit:      c.GitHub.RateLimit,
			IncludePrivate: c.GitHub.IncludePrivate,
		}, logger)
		if err != nil {
			return nil, errors.SourceError(err, "failed to create GitHub client")
		}
		return client, nil
	default:
		return nil, errors.ConfigErrorf("unknown source type %q", c.Source.Type)
	}
}

func newDispatcher(c *config.Config) *notify.Dispatcher {
	var notifiers []notify.Notifier
	if c.Discord.Enabled && c.Discord.WebhookURL != "" {
		notifiers = append(notifiers, notify.NewDiscord(c.Discord.WebhookURL, c.Discord.Username, c.Discord.AvatarURL))
	}
	if notify.EmailConfigured(c.Email) {
		notifiers = append(notifiers, notify.NewEmail(c.Email, logger))
	}
	if c.Desktop.Enabled {
		notifiers = append(notifiers, notify.NewDesktop())
	}
	d := notify.NewDispatcher(logger, notifiers...)
	logger.WithField("channels", d.Channels()).Debug("delivery channels configured")
	return d
}

// newRunner wires the collaborators shared by daily and monthly. The caller
// closes the returned store.
func newRunner(ctx context.Context, c *config.Config, withInsights bool) (*runner.Runner, storage.Store, error) {
	loc, err := c.Location()
	if err != nil {
		return nil, nil, errors.ConfigError(err.Error())
	}

	store, err := storage.Open(ctx, c.Storage, logger)
	if err != nil {
		return nil, nil, errors.StorageError(err, "failed to open storage")
	}

	r := &runner.Runner{
		Store:      store,
		Dispatcher: newDispatcher(c),
		Formatter:  output.NewFormatter(output.DefaultStyle(os.Stdout)),
		Out:        os.Stdout,
		Location:   loc,
		Logger:     logger,
	}

	if withInsights {
		client, err := llm.NewClient(ctx, c.LLM, logger)
		if err != nil {
			logger.WithError(err).Warn("LLM client unavailable, insights will use the fallback summary")
		} else if client.IsEnabled() {
			r.Producer = client
		}
	}
	return r, store, nil
}
