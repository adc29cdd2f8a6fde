package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/zenkey/internal/certs"
)

var fingerprintRaw bool

var fingerprintCmd = &cobra.Command{
	Use:     "fingerprint CERTIFICATE-FILE",
	Aliases: []string{"fp"},
	Short:   `Calculate the SHA-256 fingerprint of a signing certificate`,
	Long: `Calculates the fingerprint of an application signing certificate the way
it appears in sha256_cert_fingerprints of an asset links statement.

The file may contain a DER certificate or one or more PEM certificates.`,
	Example: `  # Fingerprint of a certificate file
  zenkey fingerprint signing.der

  # Fingerprint of a certificate from stdin
  cat signing.pem | zenkey fingerprint -`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			data []byte
			err  error
		)
		if args[0] != "-" {
			data, err = os.ReadFile(args[0])
		} else {
			log.Debug().Msg("Reading certificate from stdin")
			data, err = io.ReadAll(cmd.InOrStdin())
		}
		if err != nil {
			return fmt.Errorf("reading certificate: %w", err)
		}
		if len(data) == 0 {
			return fmt.Errorf("certificate cannot be empty")
		}

		signatures := certs.DecodeCertificates(data)
		if len(signatures) == 0 {
			return fmt.Errorf("no certificate found in input")
		}
		fingerprints := make([]string, 0, len(signatures))
		for i, sig := range signatures {
			fp, err := certs.FingerprintOf(sig)
			if err != nil {
				return logError(err, "", fmt.Sprintf("certificate #%d is invalid", i+1))
			}
			fingerprints = append(fingerprints, fp)
		}

		if fingerprintRaw {
			for _, fp := range fingerprints {
				fmt.Println(fp)
			}
			return nil
		}

		t := newTable()
		t.AppendHeader(table.Row{"#", "SHA-256 Fingerprint"})
		for i, fp := range fingerprints {
			t.AppendRow(table.Row{i + 1, bold(fp)})
		}
		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fingerprintCmd)

	fingerprintCmd.Flags().BoolVarP(&fingerprintRaw, "raw", "r", false,
		"Output only the fingerprint values without additional text")
}
