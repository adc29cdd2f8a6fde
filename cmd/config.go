package cmd

import (
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/darmiel/zenkey/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Interact with the configuration",
	Long:  `Utilities for validating the application and sandbox configuration files`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Prints the configuration as the other commands see it, after merging
--config, flags, environment and saved credentials. The client secret is masked.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := f.LoadConfig()
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(redacted(cfg))
		if err != nil {
			return fmt.Errorf("encoding configuration: %w", err)
		}
		fmt.Print(string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
}

// redacted returns a copy of cfg with the client secret masked.
func redacted(cfg *config.Config) *config.Config {
	c := *cfg
	if n := len(c.ClientSecret); n > 0 {
		keep := min(n/4, 4)
		c.ClientSecret = c.ClientSecret[:keep] + strings.Repeat("*", n-keep)
	}
	return &c
}
