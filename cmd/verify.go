package cmd

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/zenkey/internal/core"
	"github.com/darmiel/zenkey/internal/service"
)

var (
	verifyPackage      string
	verifyFingerprints []string
	verifyJSON         bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Run discovery and verify the application against the carrier",
	Long: `Resolves the carrier configuration and checks that the carrier's
authorization endpoint declares this application (package name and signing
certificate fingerprint) in its Digital Asset Links.

The application identity comes from --fingerprint, or from the signing
certificates in app.certificates_dir of the config file.`,
	Example: `  zenkey verify -c zenkey.yaml --mcc-mnc 310260

  zenkey verify --mcc-mnc 310260 --package com.example.app \
    --fingerprint 14:6D:E9:83:C5:73:06:50:D8:EE:B9:95:2F:34:FC:64:16:A0:83:42:E6:1D:BE:A8:8A:04:96:B2:3F:CF:44:E5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := f.LoadConfig()
		if err != nil {
			return err
		}
		flow, err := f.GetFlow(cfg)
		if err != nil {
			return err
		}

		req := service.VerifyRequest{
			MCCMNC:      f.mccMncHint(),
			Prompt:      f.Prompt,
			PackageName: verifyPackage,
		}
		if req.PackageName == "" {
			req.PackageName = cfg.App.PackageName
		}
		if len(verifyFingerprints) > 0 {
			req.App = &core.AppIdentity{PackageName: req.PackageName, Fingerprints: verifyFingerprints}
		}

		outcome, err := flow.WithObserver(func(t service.Transition) {
			log.Debug().Str("flow_id", t.FlowID).Msgf("%s -> %s", t.From, t.To)
		}).Run(cmd.Context(), req)
		if err != nil {
			return err
		}

		if verifyJSON {
			if err := printJSON(outcomeView(outcome)); err != nil {
				return err
			}
		} else {
			printOutcome(outcome)
		}
		if outcome.State != service.StateVerified {
			return BeQuietError{}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	f.bindCarrierFlags(verifyCmd.Flags())
	verifyCmd.Flags().StringVarP(&verifyPackage, "package", "p", "", "Package name of the application (default from config)")
	verifyCmd.Flags().StringSliceVar(&verifyFingerprints, "fingerprint", nil,
		"SHA-256 signing certificate fingerprint, skips the certificate directory (repeatable)")
	verifyCmd.Flags().BoolVar(&verifyJSON, "json", false, "Print the outcome as JSON")
}

type outcomeJSON struct {
	*service.Outcome
	State string `json:"state"`
	Error string `json:"error,omitempty"`
}

func outcomeView(o *service.Outcome) outcomeJSON {
	v := outcomeJSON{Outcome: o, State: o.State.String()}
	if o.Err != nil {
		v.Error = o.Err.Error()
	}
	return v
}

func printOutcome(o *service.Outcome) {
	fmt.Println(bold("\n── Verification ──"))
	fmt.Printf("  %s:      %s\n", faint("Flow"), o.ID)
	fmt.Printf("  %s:   %s\n", faint("Package"), o.App.PackageName)
	fmt.Printf("  %s:     %s\n", faint("State"), stateLabel(o.State))

	if c := o.Configuration; c != nil {
		fmt.Printf("  %s:    %s\n", faint("Issuer"), c.Issuer)
		fmt.Printf("  %s: %s\n", faint("Authorize"), c.AuthorizationEndpoint)
		fmt.Printf("  %s:   %s\n", faint("MCC/MNC"), orDash(c.MCCMNC))
	}
	if nf := o.NotFound; nf != nil {
		redirect := ""
		if nf.DiscoverUIEndpoint != nil {
			redirect = *nf.DiscoverUIEndpoint
		}
		fmt.Printf("  %s:  %s\n", faint("Redirect"), orDash(redirect))
	}
	if v := o.Verification; v != nil {
		fmt.Printf("  %s:  %s\n", faint("Verifier"), v.Verifier)
		if v.MatchedFingerprint != "" {
			fmt.Printf("  %s:   %s\n", faint("Matched"), v.MatchedFingerprint)
		}
		if v.Reason != "" {
			fmt.Printf("  %s:    %s\n", faint("Reason"), v.Reason)
		}
	}
	if o.Err != nil {
		fmt.Printf("  %s:     %s\n", faint("Error"), red(o.Err.Error()))
	}
	fmt.Println(faint("  " + strings.Repeat("─", 16)))
}

func stateLabel(s service.State) string {
	switch s {
	case service.StateVerified:
		return greenCheck + " " + green(s.String())
	case service.StateUnverified, service.StateDiscoveryFailed, service.StateAssetLinksFailed:
		return redCross + " " + red(s.String())
	default:
		return bold(s.String())
	}
}
