package api

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/darmiel/zenkey/internal/api/presenter"
	"github.com/darmiel/zenkey/internal/core"
	"github.com/darmiel/zenkey/internal/discovery"
)

const (
	ErrInvalidRequest   = "invalid_request"
	ErrProviderNotFound = "provider_not_found"
)

// handleDiscovery answers an OpenID configuration lookup for a carrier.
func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	q := r.URL.Query()
	clientID := q.Get(discovery.ParamClientID)
	mccMnc := q.Get(discovery.ParamMCCMNC)

	logger.UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Str("client_id", clientID).Str("mcc_mnc", mccMnc)
	})

	if !s.sandbox.AcceptsClient(clientID) {
		logger.Warn().Msg("rejected discovery request with unknown client id")
		presenter.OAuthError(w, r, ErrInvalidRequest, "", http.StatusBadRequest)
		return
	}

	// prompt=true forces the carrier selection UI even if the carrier is known
	prompt := q.Get(discovery.ParamPrompt) == "true"

	carrier, ok := s.sandbox.CarrierFor(mccMnc)
	if !ok || prompt {
		logger.Debug().Bool("prompt", prompt).Msg("no carrier for request")
		presenter.OAuthError(w, r, ErrProviderNotFound, s.sandbox.DiscoverUI, http.StatusNotFound)
		return
	}

	presenter.JSON(w, r, core.OpenIDConfiguration{
		Issuer:                carrier.Issuer,
		AuthorizationEndpoint: carrier.AuthorizationEndpoint,
		MCCMNC:                mccMnc,
		TokenEndpoint:         carrier.TokenEndpoint,
		UserinfoEndpoint:      carrier.UserinfoEndpoint,
		JWKSURI:               carrier.JWKSURI,
	}, http.StatusOK)
}

type assetLinkTarget struct {
	Namespace    string   `json:"namespace"`
	PackageName  string   `json:"package_name"`
	Fingerprints []string `json:"sha256_cert_fingerprints"`
}

type assetLinkStatement struct {
	Relation []string        `json:"relation"`
	Target   assetLinkTarget `json:"target"`
}

// handleAssetLinks serves the configured Digital Asset Links statements.
func (s *Server) handleAssetLinks(w http.ResponseWriter, r *http.Request) {
	if len(s.sandbox.AssetLinks) == 0 {
		presenter.Error(w, r, "no asset links configured", http.StatusNotFound)
		return
	}
	statements := make([]assetLinkStatement, 0, len(s.sandbox.AssetLinks))
	for _, link := range s.sandbox.AssetLinks {
		statements = append(statements, assetLinkStatement{
			Relation: []string{"delegate_permission/common.handle_all_urls"},
			Target: assetLinkTarget{
				Namespace:    "android_app",
				PackageName:  link.PackageName,
				Fingerprints: link.Fingerprints,
			},
		})
	}
	presenter.JSON(w, r, statements, http.StatusOK)
}
