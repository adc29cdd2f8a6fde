package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/zenkey/internal/core"
	"github.com/darmiel/zenkey/internal/discovery"
	"github.com/darmiel/zenkey/internal/transport"
)

var (
	discoverDryRun bool
	discoverJSON   bool
)

var discoverCmd = &cobra.Command{
	Use:   "discover [mcc_mnc...]",
	Short: "Resolve the OpenID configuration of one or more carriers",
	Long: `Asks the discovery service for the OpenID configuration of a carrier.

Without arguments the request carries no carrier hint and the discovery
service usually answers with its carrier selection UI. With more than one
MCC/MNC the lookups run in parallel.`,
	Example: `  # Resolve a single carrier
  zenkey discover 310260 --discovery-endpoint https://discover.example --client-id ccid-123

  # Print the request without sending it
  zenkey discover 310260 --dry-run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := f.LoadConfig()
		if err != nil {
			return err
		}
		cli, err := f.GetClient(cfg)
		if err != nil {
			return err
		}

		if discoverDryRun {
			reqs, err := dryRunRequests(cli.Resolver(), args, f.Prompt)
			if err != nil {
				return logError(err, "", "cannot build discovery request")
			}
			for _, req := range reqs {
				fmt.Println(req.Method, req.URL.String())
			}
			return nil
		}

		var resolutions []discovery.Resolution
		switch len(args) {
		case 0, 1:
			var mccMnc *string
			if len(args) == 1 {
				mccMnc = &args[0]
			}
			result, err := cli.ResolveConfiguration(cmd.Context(), mccMnc, f.Prompt)
			if err != nil {
				return logError(err, "", "discovery failed")
			}
			code := ""
			if mccMnc != nil {
				code = *mccMnc
			}
			resolutions = append(resolutions, discovery.Resolution{MCCMNC: code, Result: result})
		default:
			log.Debug().Int("candidates", len(args)).Msg("resolving carriers in parallel")
			resolutions = cli.ResolveAll(cmd.Context(), args, f.Prompt)
		}

		if discoverJSON {
			return printJSON(resolutionsView(resolutions))
		}
		printResolutions(resolutions)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)

	discoverCmd.Flags().BoolVar(&f.Prompt, "prompt", false, "Ask the discovery service to show the carrier selection UI")
	discoverCmd.Flags().BoolVar(&discoverDryRun, "dry-run", false, "Print the discovery request instead of sending it")
	discoverCmd.Flags().BoolVar(&discoverJSON, "json", false, "Print results as JSON")
}

// dryRunRequests builds one discovery request per MCC/MNC, or a single request
// without carrier hint if none is given.
func dryRunRequests(r *discovery.Resolver, args []string, prompt bool) ([]*transport.Request, error) {
	if len(args) == 0 {
		req, err := r.BuildRequest(nil, prompt)
		if err != nil {
			return nil, err
		}
		return []*transport.Request{req}, nil
	}
	reqs := make([]*transport.Request, 0, len(args))
	for i := range args {
		req, err := r.BuildRequest(&args[i], prompt)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", args[i], err)
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

type resolutionView struct {
	MCCMNC        string                    `json:"mcc_mnc"`
	Configuration *core.OpenIDConfiguration `json:"configuration,omitempty"`
	NotFound      *core.ProviderNotFound    `json:"not_found,omitempty"`
	Error         string                    `json:"error,omitempty"`
}

func resolutionsView(resolutions []discovery.Resolution) []resolutionView {
	out := make([]resolutionView, 0, len(resolutions))
	for _, r := range resolutions {
		v := resolutionView{MCCMNC: r.MCCMNC}
		switch {
		case r.Err != nil:
			v.Error = r.Err.Error()
		case r.Result.IsNotFound():
			v.NotFound = r.Result.NotFound
		default:
			v.Configuration = r.Result.Configuration
		}
		out = append(out, v)
	}
	return out
}

func printResolutions(resolutions []discovery.Resolution) {
	t := newTable()
	t.AppendHeader(table.Row{"MCC/MNC", "Result", "Issuer", "Authorization Endpoint", "Redirect"})
	for _, r := range resolutions {
		switch {
		case r.Err != nil:
			t.AppendRow(table.Row{orDash(r.MCCMNC), red("error"), truncate(r.Err.Error(), 60), "", ""})
		case r.Result.IsNotFound():
			redirect := ""
			if r.Result.NotFound.DiscoverUIEndpoint != nil {
				redirect = *r.Result.NotFound.DiscoverUIEndpoint
			}
			t.AppendRow(table.Row{orDash(r.MCCMNC), faint(r.Result.NotFound.Error), "", "", orDash(redirect)})
		default:
			c := r.Result.Configuration
			t.AppendRow(table.Row{orDash(r.MCCMNC), green("configuration"), bold(c.Issuer), c.AuthorizationEndpoint, ""})
		}
	}
	t.Render()
}
