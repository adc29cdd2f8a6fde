package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/darmiel/zenkey/internal/buildinfo"
	"github.com/darmiel/zenkey/pkg/client"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show information about the zenkey installation or a sandbox carrier",
	RunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetString(ServerAddrKey) == "" {
			return infoLocally(cmd, args)
		}
		return infoRemote(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().String("server", "", "Address of a running sandbox carrier")
	_ = viper.BindPFlag(ServerAddrKey, infoCmd.Flags().Lookup("server"))
}

func infoRemote(cmd *cobra.Command, _ []string) error {
	server := viper.GetString(ServerAddrKey)
	cli := client.New(server, "")
	log.Info().Msg("Fetching build info from sandbox carrier...")
	info, correlation, err := cli.SandboxInfo(cmd.Context(), server)
	if err != nil {
		return logError(err, correlation, "failed to get info from server")
	}
	printInfo(info)
	return nil
}

func infoLocally(_ *cobra.Command, _ []string) error {
	log.Info().Msg("Showing local build info...")
	info := buildinfo.GetBuildInfo()
	printInfo(&info)
	return nil
}

func printInfo(info *buildinfo.Info) {
	fmt.Println(bold("\n── " + info.Service + " Build Information ──"))
	fmt.Printf("  %s:    %s\n", faint("Version"), info.Version)
	fmt.Printf("  %s:     %s\n", faint("Commit"), info.CommitHash)
}
