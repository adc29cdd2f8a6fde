package cmd

import (
	"fmt"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	exchangeCode     string
	exchangeVerifier string
	exchangeNonce    string
	exchangeJSON     bool
)

var exchangeCmd = &cobra.Command{
	Use:   "exchange",
	Short: "Exchange an authorization code for tokens",
	Long: `Resolves the carrier again and trades the authorization code at its token
endpoint. The ID token is verified if the carrier publishes a jwks_uri,
otherwise its claims are shown unverified.`,
	Example: `  zenkey exchange -c zenkey.yaml --mcc-mnc 310260 --code abc --code-verifier xyz --nonce 123`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := f.LoadConfig()
		if err != nil {
			return err
		}
		cli, err := f.GetClient(cfg)
		if err != nil {
			return err
		}
		carrier, err := resolveCarrier(cmd.Context(), cli)
		if err != nil {
			return err
		}
		ac, err := authCodeClient(cmd.Context(), cfg, carrier)
		if err != nil {
			return err
		}

		tokens, err := ac.Exchange(cmd.Context(), exchangeCode, exchangeVerifier, exchangeNonce)
		if err != nil {
			return logError(err, "", "code exchange failed")
		}
		if exchangeJSON {
			return printJSON(tokens)
		}

		if tokens.Verified {
			logSuccess("ID token verified against %s", bold(carrier.JWKSURI))
		} else {
			log.Warn().Msg("carrier publishes no jwks_uri, ID token claims are unverified")
		}
		fmt.Printf("  %s: %s\n", faint("Access Token"), truncate(tokens.AccessToken, 48))
		if !tokens.Expiry.IsZero() {
			fmt.Printf("  %s:      %s (in %s)\n", faint("Expires"), tokens.Expiry.Format(time.RFC3339),
				time.Until(tokens.Expiry).Round(time.Second))
		}
		fmt.Println(bold("\n── ID Token Claims ──"))
		fmt.Print(spew.Sdump(tokens.Claims))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exchangeCmd)

	f.bindCarrierFlags(exchangeCmd.Flags())
	exchangeCmd.Flags().StringVar(&exchangeCode, "code", "", "Authorization code returned by the carrier")
	exchangeCmd.Flags().StringVar(&exchangeVerifier, "code-verifier", "", "PKCE verifier printed by 'zenkey authorize'")
	exchangeCmd.Flags().StringVar(&exchangeNonce, "nonce", "", "Nonce printed by 'zenkey authorize'")
	exchangeCmd.Flags().BoolVar(&exchangeJSON, "json", false, "Print tokens as JSON")

	_ = exchangeCmd.MarkFlagRequired("code")
}
