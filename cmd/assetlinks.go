package cmd

import (
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/zenkey/internal/assetlinks"
)

var assetLinksJSON bool

var assetLinksCmd = &cobra.Command{
	Use:   "assetlinks AUTHORIZATION-ENDPOINT",
	Short: "List the packages declared by a carrier's asset links",
	Long: `Fetches /.well-known/assetlinks.json from the origin of an authorization
endpoint and prints the declared packages with their certificate fingerprints.`,
	Example: `  zenkey assetlinks https://oidc.carrier.example/authorize`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := f.LoadConfig()
		if err != nil {
			return err
		}
		cli, err := f.GetClient(cfg)
		if err != nil {
			return err
		}

		url, err := assetlinks.URLFor(args[0])
		if err != nil {
			return logError(err, "", "invalid authorization endpoint")
		}
		log.Debug().Str("url", url).Msg("fetching asset links")

		packages, err := cli.FetchPackages(cmd.Context(), args[0])
		if err != nil {
			return logError(err, "", "fetching asset links failed")
		}
		if assetLinksJSON {
			return printJSON(packages)
		}
		if len(packages) == 0 {
			log.Info().Msg("No packages declared")
			return nil
		}

		names := make([]string, 0, len(packages))
		for name := range packages {
			names = append(names, name)
		}
		sort.Strings(names)

		t := newTable()
		t.AppendHeader(table.Row{"Package", "SHA-256 Fingerprints"})
		for _, name := range names {
			t.AppendRow(table.Row{bold(name), strings.Join(packages[name], "\n")})
		}
		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(assetLinksCmd)

	assetLinksCmd.Flags().BoolVar(&assetLinksJSON, "json", false, "Print packages as JSON")
}
