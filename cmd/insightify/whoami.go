package main

import (
	"fmt"

	"github.com/rohankatakam/insightify/internal/config"
	"github.com/rohankatakam/insightify/internal/errors"
	"github.com/rohankatakam/insightify/internal/github"
	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Display the tracked GitHub user's profile",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func runWhoami(cmd *cobra.Command, args []string) error {
	if err := validate(cfg, config.ValidationContextProfile); err != nil {
		return err
	}

	client, err := github.NewClient(github.Options{
		Token:     cfg.GitHub.Token,
		Username:  cfg.GitHub.Username,
		RateLimit: cfg.GitHub.RateLimit,
	}, logger)
	if err != nil {
		return errors.SourceError(err, "failed to create GitHub client")
	}

	profile, err := client.UserProfile(cmd.Context())
	if err != nil {
		return errors.SourceError(err, "failed to fetch profile")
	}

	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println("GitHub Profile")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()
	fmt.Printf("Login:           %s\n", profile.Login)
	fmt.Printf("Name:            %s\n", orDash(profile.Name))
	fmt.Printf("Public repos:    %d\n", profile.PublicRepos)
	fmt.Printf("Followers:       %d\n", profile.Followers)
	fmt.Printf("Following:       %d\n", profile.Following)
	fmt.Printf("Bio:             %s\n", orDash(profile.Bio))
	fmt.Printf("Avatar:          %s\n", orDash(profile.AvatarURL))
	fmt.Printf("Profile:         %s\n", orDash(profile.HTMLURL))
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
