package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/zenkey/internal/api"
	"github.com/darmiel/zenkey/internal/config"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve SANDBOX-CONFIG",
	Short: "Run a sandbox carrier",
	Long: `Runs a local carrier that answers discovery and asset links requests
from a sandbox config file. Point --discovery-endpoint at it to test the
whole flow without a real carrier.`,
	Example: `  zenkey serve sandbox.yaml --addr :8080`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		sandbox, err := config.LoadSandbox(args[0])
		if err != nil {
			return fmt.Errorf("loading sandbox config: %w", err)
		}
		log.Info().
			Int("carriers", len(sandbox.Carriers)).
			Int("asset_links", len(sandbox.AssetLinks)).
			Msg("Loaded sandbox config")

		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		srv, err := api.NewServer(sandbox, registry)
		if err != nil {
			return fmt.Errorf("setting up server: %w", err)
		}

		server := &http.Server{
			Addr:              addr,
			Handler:           srv.Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			log.Info().Msgf("Starting sandbox carrier on %s...", addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal().Err(err).Msg("Server crashed")
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info().Msg("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}

		log.Info().Msg("Server exited")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":8080", "address to listen on")
}
