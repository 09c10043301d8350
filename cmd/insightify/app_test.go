package main

import (
	"testing"

	"github.com/rohankatakam/insightify/internal/config"
	"github.com/rohankatakam/insightify/internal/errors"
	"github.com/rohankatakam/insightify/internal/git"
	"github.com/rohankatakam/insightify/internal/github"
	"github.com/rohankatakam/insightify/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLogger(t *testing.T) {
	t.Helper()
	l, err := logging.New(logging.Config{Level: "error"})
	require.NoError(t, err)
	logger = l
}

func TestNewSource(t *testing.T) {
	setupLogger(t)
	c := config.Default()

	src, err := newSource(c)
	require.NoError(t, err)
	assert.IsType(t, &github.Client{}, src)

	c.Source.Type = "local"
	c.Source.Local.Paths = []string{t.TempDir()}
	src, err = newSource(c)
	require.NoError(t, err)
	assert.IsType(t, &git.LocalSource{}, src)

	c.Source.Type = "svn"
	_, err = newSource(c)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestNewDispatcher_ChannelsFollowConfig(t *testing.T) {
	setupLogger(t)
	c := config.Default()

	assert.Empty(t, newDispatcher(c).Channels())

	c.Discord.WebhookURL = "https://discord.com/api/webhooks/1/abc"
	c.Email.From = "me@example.com"
	c.Email.To = "me@example.com"
	c.Email.Password = "app-password"
	c.Desktop.Enabled = true
	assert.Equal(t, []string{"discord", "email", "desktop"}, newDispatcher(c).Channels())

	c.Discord.Enabled = false
	c.Email.Enabled = false
	assert.Equal(t, []string{"desktop"}, newDispatcher(c).Channels())
}

func TestValidate_DailyNeedsCredentials(t *testing.T) {
	setupLogger(t)
	c := config.Default()
	c.LLM.Provider = "none"

	err := validate(c, config.ValidationContextDaily)
	require.Error(t, err)
	assert.True(t, errors.IsFatal(err))

	c.GitHub.Token = "ghp_test"
	c.GitHub.Username = "octocat"
	assert.NoError(t, validate(c, config.ValidationContextDaily))
}
