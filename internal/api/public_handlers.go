package api

import (
	"net/http"

	"github.com/darmiel/zenkey/internal/api/presenter"
	"github.com/darmiel/zenkey/internal/buildinfo"
)

type aboutResponse struct {
	buildinfo.Info
	Carriers   int `json:"carriers"`
	AssetLinks int `json:"asset_links"`
}

// handleHealth reports liveness only; it never touches the sandbox config.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleAbout responds with build info and the size of the loaded sandbox.
func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	presenter.JSON(w, r, aboutResponse{
		Info:       buildinfo.GetBuildInfo(),
		Carriers:   len(s.sandbox.Carriers),
		AssetLinks: len(s.sandbox.AssetLinks),
	}, http.StatusOK)
}
