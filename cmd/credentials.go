package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/darmiel/zenkey/internal/cliconfig"
)

var (
	credentialsSecret   string
	credentialsRedirect string
)

var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Manage saved client credentials",
	Long: `Client credentials are saved per discovery host in ~/.zenkey/config.json
and used whenever --client-id or the config file does not provide them.`,
}

func discoveryEndpoint() (string, error) {
	endpoint := viper.GetString(DiscoveryEndpointKey)
	if endpoint == "" {
		return "", fmt.Errorf("discovery endpoint not configured, provide via --discovery-endpoint or env")
	}
	return endpoint, nil
}

var credentialsSetCmd = &cobra.Command{
	Use:     "set CLIENT-ID",
	Short:   "Save the client credentials for a discovery endpoint",
	Example: `  zenkey credentials set ccid-123 --discovery-endpoint https://discover.example --secret s3cr3t`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint, err := discoveryEndpoint()
		if err != nil {
			return err
		}
		cfg, err := cliconfig.Load()
		if err != nil {
			return fmt.Errorf("loading credentials: %w", err)
		}
		if err := cfg.SetCredential(endpoint, &cliconfig.Credential{
			ClientID:     args[0],
			ClientSecret: credentialsSecret,
			RedirectURI:  credentialsRedirect,
		}); err != nil {
			return err
		}
		if err := cliconfig.Save(cfg); err != nil {
			return logError(err, "", "could not save credentials")
		}
		logSuccess("saved credentials for %s", bold(endpoint))
		return nil
	},
}

var credentialsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the saved client id for a discovery endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint, err := discoveryEndpoint()
		if err != nil {
			return err
		}
		cfg, err := cliconfig.Load()
		if err != nil {
			return fmt.Errorf("loading credentials: %w", err)
		}
		cred, err := cfg.GetCredential(endpoint)
		if err != nil {
			return err
		}
		secret := faint("(none)")
		if cred.ClientSecret != "" {
			secret = faint("(saved)")
		}
		fmt.Printf("  %s:    %s\n", faint("Client ID"), bold(cred.ClientID))
		fmt.Printf("  %s:       %s\n", faint("Secret"), secret)
		fmt.Printf("  %s: %s\n", faint("Redirect URI"), orDash(cred.RedirectURI))
		return nil
	},
}

var credentialsRemoveCmd = &cobra.Command{
	Use:     "remove",
	Aliases: []string{"rm"},
	Short:   "Remove the saved credentials of a discovery endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint, err := discoveryEndpoint()
		if err != nil {
			return err
		}
		cfg, err := cliconfig.Load()
		if err != nil {
			return fmt.Errorf("loading credentials: %w", err)
		}
		removed, err := cfg.RemoveCredential(endpoint)
		if err != nil {
			return err
		}
		if !removed {
			return cliconfig.ErrCredentialNotFound
		}
		if err := cliconfig.Save(cfg); err != nil {
			return logError(err, "", "could not save credentials")
		}
		logSuccess("removed credentials for %s", bold(endpoint))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(credentialsCmd)
	credentialsCmd.AddCommand(credentialsSetCmd, credentialsShowCmd, credentialsRemoveCmd)

	credentialsSetCmd.Flags().StringVar(&credentialsSecret, "secret", "", "Client secret (needed for the code exchange)")
	credentialsSetCmd.Flags().StringVar(&credentialsRedirect, "redirect-uri", "", "Redirect URI registered for the client")
}
