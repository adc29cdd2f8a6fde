package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/zenkey/internal/config"
)

var validateSandbox bool

// configValidateCmd represents the config validate command
var configValidateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Validate a configuration file",
	Long: `Parses and validates an application config file, including its policy
expressions. With --sandbox the file is validated as a sandbox carrier config.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if validateSandbox {
			sandbox, err := config.LoadSandbox(args[0])
			if err != nil {
				return logError(err, "", "Sandbox configuration is invalid.")
			}
			logSuccess("Sandbox configuration is valid (%d carrier(s), %d asset link(s)).",
				len(sandbox.Carriers), len(sandbox.AssetLinks))
			return nil
		}

		cfg, err := config.Load(args[0])
		if err != nil {
			return logError(err, "", "Configuration is invalid.")
		}
		log.Debug().
			Str("verifier", cfg.Verifier.Type).
			Int("policies", len(cfg.Policies)).
			Msg("configuration loaded")
		logSuccess("Configuration is valid.")
		if cfg.App.PackageName == "" {
			fmt.Println(faint("  no app.package_name set, 'zenkey verify' needs --package"))
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configValidateCmd)

	configValidateCmd.Flags().BoolVar(&validateSandbox, "sandbox", false, "Validate as sandbox carrier config")
}
