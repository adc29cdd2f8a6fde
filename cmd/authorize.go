package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/darmiel/zenkey/internal/authcode"
)

var (
	authorizeLoginHint string
	authorizeJSON      bool
)

var authorizeCmd = &cobra.Command{
	Use:   "authorize",
	Short: "Build the authorization URL for a carrier",
	Long: `Resolves the carrier and prints an authorization code request (PKCE S256,
state and nonce). Keep state, nonce and code verifier for 'zenkey exchange'.`,
	Example: `  zenkey authorize -c zenkey.yaml --mcc-mnc 310260`,
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

		req := ac.AuthorizationRequest(authcode.RequestOptions{
			LoginHint: authorizeLoginHint,
			MCCMNC:    carrier.MCCMNC,
		})
		if authorizeJSON {
			return printJSON(req)
		}

		fmt.Println(bold("\n── Authorization Request ──"))
		fmt.Printf("  %s:      %s\n", faint("Issuer"), carrier.Issuer)
		fmt.Printf("  %s:       %s\n", faint("State"), req.State)
		fmt.Printf("  %s:       %s\n", faint("Nonce"), req.Nonce)
		fmt.Printf("  %s: %s\n", faint("PKCE Verifier"), req.CodeVerifier)
		fmt.Println()
		fmt.Println(req.URL)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authorizeCmd)

	f.bindCarrierFlags(authorizeCmd.Flags())
	authorizeCmd.Flags().StringVar(&authorizeLoginHint, "login-hint", "", "Login hint (e.g. the user's phone number)")
	authorizeCmd.Flags().BoolVar(&authorizeJSON, "json", false, "Print the request as JSON")
}
