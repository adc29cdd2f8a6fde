package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/darmiel/zenkey/internal/buildinfo"
	"github.com/darmiel/zenkey/internal/logging"
)

// global flags
var (
	userConfig string
	cfgFile    string
)

const (
	DiscoveryEndpointKey = "discovery_endpoint"
	ClientIDKey          = "client_id"
	ClientSecretKey      = "client_secret"
	ServerAddrKey        = "server"
)

var rootCmd = &cobra.Command{
	Use:   "zenkey",
	Short: fmt.Sprintf("ZenKey discovery toolkit (version: %s, commit: %s)", buildinfo.Version, buildinfo.CommitHash),
	Long: `zenkey resolves the OpenID configuration of a user's mobile carrier and
	verifies that the carrier's authorization endpoint vouches for an application
	via Digital Asset Links.`,
	Version: buildinfo.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, configErr := initConfig()
		logging.Init(nil)
		if configErr != nil { // handle error after logging is initialized
			return configErr
		}
		if configPath != "" {
			log.Debug().Msgf("using config file: %s", configPath)
		}
		return nil
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		var quiet BeQuietError
		if !errors.As(err, &quiet) {
			log.Error().Err(err).Msg("execution failed")
		}
		os.Exit(1)
	}
}

func init() {
	// setup pre-flag logger
	logging.InitDefault()

	rootCmd.PersistentFlags().StringVar(&userConfig, "user-config", "",
		"User configuration file for default values (default is $HOME/.zenkey.yaml)")
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"Application config file (client id, discovery endpoint, verifier, policies)")

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	_ = viper.BindPFlag(logging.LevelKey, rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.PersistentFlags().String("log-format", "console", "Log format (console, json)")
	_ = viper.BindPFlag(logging.FormatKey, rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.PersistentFlags().Bool("no-color", false, "Disable color output")
	_ = viper.BindPFlag(logging.NoColorKey, rootCmd.PersistentFlags().Lookup("no-color"))

	rootCmd.PersistentFlags().String("discovery-endpoint", "", "Base URL of the discovery service")
	_ = viper.BindPFlag(DiscoveryEndpointKey, rootCmd.PersistentFlags().Lookup("discovery-endpoint"))

	rootCmd.PersistentFlags().String("client-id", "", "Client id registered with the discovery service")
	_ = viper.BindPFlag(ClientIDKey, rootCmd.PersistentFlags().Lookup("client-id"))

	viper.SetEnvPrefix("ZENKEY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))

	viper.AutomaticEnv()

	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
}

func initConfig() (string, error) {
	// reads in config file and ENV variables if set.
	if userConfig != "" {
		viper.SetConfigFile(userConfig)
	} else {
		// search order: current dir, $HOME, XDG config
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}

		config, err := os.UserConfigDir()
		if err == nil {
			viper.AddConfigPath(config + "/zenkey")
		}

		viper.SetConfigType("yaml")
		viper.SetConfigName(".zenkey")
	}

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		var notFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &notFoundError) {
			return "", err
		}
	} else {
		return viper.ConfigFileUsed(), nil
	}

	return "", nil
}
