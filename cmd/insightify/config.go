package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rohankatakam/insightify/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage Insightify configuration",
	Long:  `View and modify Insightify configuration settings.`,
}

var (
	useKeychain bool
	noKeychain  bool
	showSource  bool
)

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Get configuration value",
	Long: `Get a configuration value, optionally showing where it's stored.

Examples:
  # Get the configured timezone
  insightify config get timezone

  # Show where the Gemini key is stored
  insightify config get llm.gemini_key --show-source`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set configuration value",
	Long: `Set a configuration value. Credentials (github.token, llm.gemini_key,
llm.openai_key, llm.compatible_key, email.password) can go to the OS keychain.

Examples:
  # Store the GitHub token in the OS keychain (secure, recommended)
  insightify config set github.token ghp_... --use-keychain

  # Store it in the config file (plaintext, for CI/CD)
  insightify config set github.token ghp_... --no-keychain

  # If neither flag specified, will prompt user`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration values",
	RunE:  runConfigList,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration file",
	RunE:  runConfigInit,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configInitCmd)

	configSetCmd.Flags().BoolVar(&useKeychain, "use-keychain", false, "Store credential in OS keychain (secure)")
	configSetCmd.Flags().BoolVar(&noKeychain, "no-keychain", false, "Store credential in config file (plaintext)")
	configGetCmd.Flags().BoolVar(&showSource, "show-source", false, "Show where a credential is stored")
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return runConfigList(cmd, args)
	}
	key := args[0]

	value, ok := config.Lookup(cfg.Redacted(), key)
	if !ok {
		fmt.Printf("Configuration key '%s' not found\n", key)
		return nil
	}
	fmt.Printf("%s = %v\n", key, value)

	if showSource && config.IsSecretKey(key) {
		fmt.Printf("Source: %s\n", config.SecretSource(cfg, key, config.NewKeyringManager()))
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	configPath := getConfigPath()

	if !config.IsSecretKey(key) {
		if _, ok := config.Lookup(cfg, key); !ok {
			return fmt.Errorf("unknown configuration key: %s", key)
		}
		if err := config.SetValue(configPath, key, value); err != nil {
			return err
		}
		fmt.Printf("✅ Set %s = %s\n", key, value)
		return nil
	}

	km := config.NewKeyringManager()
	storeInKeychain := useKeychain
	if !useKeychain && !noKeychain && km.IsAvailable() && config.IsInteractive() {
		storeInKeychain = confirm("Store in OS keychain (secure)? (Y/n): ", true)
	}

	if storeInKeychain && km.IsAvailable() {
		err := km.Set(key, value)
		if err == nil {
			fmt.Printf("✅ %s saved to OS keychain (secure)\n", key)
			return nil
		}
		fmt.Printf("⚠️  Failed to save to keychain: %v\n", err)
		fmt.Println("Saving to config file instead...")
	}

	if err := config.SetValue(configPath, key, value); err != nil {
		return err
	}
	fmt.Printf("✅ %s saved to %s (plaintext)\n", key, configPath)
	if km.IsAvailable() {
		fmt.Println("   💡 For better security, use: --use-keychain flag")
	}
	return nil
}

func runConfigList(cmd *cobra.Command, args []string) error {
	out, err := cfg.YAML()
	if err != nil {
		return err
	}
	fmt.Println("📋 Insightify Configuration")
	fmt.Println("════════════════════════")
	fmt.Print(out)
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Configuration file already exists at %s\n", configPath)
		if !confirm("Overwrite? [y/N]: ", false) {
			fmt.Println("Initialization cancelled")
			return nil
		}
	}

	newCfg := config.Default()
	km := config.NewKeyringManager()
	keychain := km.IsAvailable()

	if config.IsInteractive() {
		newCfg.GitHub.Username = prompt("GitHub username: ")
		newCfg.Timezone = promptDefault("Timezone", newCfg.Timezone)

		secrets := []struct{ key, label string }{
			{config.SecretGitHubToken, "GitHub token"},
			{config.SecretGeminiKey, "Gemini API key"},
		}
		for _, s := range secrets {
			value, err := config.ReadSecret(os.Stdout, s.label+" (leave empty to skip): ")
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", s.label, err)
			}
			if value == "" {
				continue
			}
			if keychain {
				if err := km.Set(s.key, value); err == nil {
					fmt.Printf("✅ %s saved to OS keychain\n", s.label)
					continue
				}
			}
			switch s.key {
			case config.SecretGitHubToken:
				newCfg.GitHub.Token = value
			case config.SecretGeminiKey:
				newCfg.LLM.GeminiKey = value
			}
		}
	}

	if res := newCfg.Validate(config.ValidationContextAll); len(res.Errors) > 0 {
		for _, e := range res.Errors {
			fmt.Printf("  ⚠️  %s\n", e)
		}
	}

	if err := newCfg.Save(configPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("✅ Created configuration file: %s\n", configPath)
	fmt.Println("\n💡 Next steps:")
	fmt.Println("  1. Set your Discord webhook: insightify config set discord.webhook_url <url>")
	fmt.Println("  2. Optionally configure email: insightify config set email.from <address>")
	fmt.Println("  3. Run 'insightify daily' to record today's activity")
	return nil
}

// Helper functions

func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".insightify", "config.yaml")
}

var stdin = bufio.NewReader(os.Stdin)

func prompt(label string) string {
	fmt.Print(label)
	line, _ := stdin.ReadString('\n')
	return strings.TrimSpace(line)
}

func promptDefault(label, def string) string {
	if v := prompt(fmt.Sprintf("%s [%s]: ", label, def)); v != "" {
		return v
	}
	return def
}

func confirm(label string, def bool) bool {
	switch strings.ToLower(prompt(label)) {
	case "":
		return def
	case "y", "yes":
		return true
	default:
		return false
	}
}
