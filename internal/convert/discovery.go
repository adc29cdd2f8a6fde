package convert

import (
	"github.com/darmiel/zenkey/internal/core"
)

const (
	keyError       = "error"
	keyRedirectURI = "redirect_uri"
)

type discoveryPayload struct {
	Issuer                string `mapstructure:"issuer" validate:"required,url"`
	AuthorizationEndpoint string `mapstructure:"authorization_endpoint" validate:"required,url"`
	MCCMNC                string `mapstructure:"mcc_mnc"`
	TokenEndpoint         string `mapstructure:"token_endpoint" validate:"omitempty,url"`
	UserinfoEndpoint      string `mapstructure:"userinfo_endpoint" validate:"omitempty,url"`
	JWKSURI               string `mapstructure:"jwks_uri" validate:"omitempty,url"`
}

// DiscoveryResponse converts an openid_configuration body.
//
// A body containing the "error" key always yields the provider-not-found
// variant, whatever else it contains. Its redirect is taken from
// "redirect_uri" when that is a non-empty string and is nil otherwise; an
// error-tagged body never fails because of its redirect field.
// Any other body must carry issuer and authorization_endpoint.
func DiscoveryResponse(body []byte) (*core.DiscoveryResult, error) {
	var raw map[string]any
	if err := unmarshal(body, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, malformed("expected a json object")
	}

	if code, ok := raw[keyError]; ok {
		return core.NotFoundResult(errorCode(code), redirectOf(raw)), nil
	}

	var payload discoveryPayload
	if err := decode(raw, &payload); err != nil {
		return nil, malformed("decoding configuration: %w", err)
	}
	if err := validate.Struct(payload); err != nil {
		return nil, malformed("validating configuration: %w", err)
	}

	return core.ConfigurationResult(core.OpenIDConfiguration{
		Issuer:                payload.Issuer,
		AuthorizationEndpoint: payload.AuthorizationEndpoint,
		MCCMNC:                payload.MCCMNC,
		TokenEndpoint:         payload.TokenEndpoint,
		UserinfoEndpoint:      payload.UserinfoEndpoint,
		JWKSURI:               payload.JWKSURI,
	}), nil
}

func errorCode(v any) string {
	s, _ := v.(string)
	return s
}

func redirectOf(raw map[string]any) *string {
	s, ok := raw[keyRedirectURI].(string)
	if !ok || s == "" {
		return nil
	}
	return &s
}
