package convert

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darmiel/zenkey/internal/core"
)

func ptr(s string) *string { return &s }

func TestDiscoveryResponse(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    *core.DiscoveryResult
		wantErr bool
	}{
		{
			name: "configuration",
			body: `{"issuer":"https://iss.carrier.example","authorization_endpoint":"https://iss.carrier.example/authorize","mcc_mnc":"310260"}`,
			want: core.ConfigurationResult(core.OpenIDConfiguration{
				Issuer:                "https://iss.carrier.example",
				AuthorizationEndpoint: "https://iss.carrier.example/authorize",
				MCCMNC:                "310260",
			}),
		},
		{
			name: "configuration without mcc_mnc echo",
			body: `{"issuer":"https://iss.carrier.example","authorization_endpoint":"https://iss.carrier.example/authorize"}`,
			want: core.ConfigurationResult(core.OpenIDConfiguration{
				Issuer:                "https://iss.carrier.example",
				AuthorizationEndpoint: "https://iss.carrier.example/authorize",
			}),
		},
		{
			name: "configuration with optional endpoints",
			body: `{
				"issuer":"https://iss.carrier.example",
				"authorization_endpoint":"https://iss.carrier.example/authorize",
				"token_endpoint":"https://iss.carrier.example/token",
				"userinfo_endpoint":"https://iss.carrier.example/userinfo",
				"jwks_uri":"https://iss.carrier.example/jwks",
				"scopes_supported":["openid"]
			}`,
			want: core.ConfigurationResult(core.OpenIDConfiguration{
				Issuer:                "https://iss.carrier.example",
				AuthorizationEndpoint: "https://iss.carrier.example/authorize",
				TokenEndpoint:         "https://iss.carrier.example/token",
				UserinfoEndpoint:      "https://iss.carrier.example/userinfo",
				JWKSURI:               "https://iss.carrier.example/jwks",
			}),
		},
		{
			name: "not found with redirect",
			body: `{"error":"x","redirect_uri":"redirect"}`,
			want: core.NotFoundResult("x", ptr("redirect")),
		},
		{
			name: "not found without redirect",
			body: `{"error":"x"}`,
			want: core.NotFoundResult("x", nil),
		},
		{
			name: "error key wins over configuration fields",
			body: `{"error":"provider_not_found","issuer":"https://iss.carrier.example","authorization_endpoint":"https://iss.carrier.example/authorize"}`,
			want: core.NotFoundResult("provider_not_found", nil),
		},
		{
			// an error-tagged body degrades to "no redirect" instead of failing
			name: "not found with non-string redirect",
			body: `{"error":"x","redirect_uri":42}`,
			want: core.NotFoundResult("x", nil),
		},
		{
			name: "not found with empty redirect",
			body: `{"error":"x","redirect_uri":""}`,
			want: core.NotFoundResult("x", nil),
		},
		{
			name: "not found with null error",
			body: `{"error":null}`,
			want: core.NotFoundResult("", nil),
		},
		{name: "empty object", body: `{}`, wantErr: true},
		{name: "missing issuer", body: `{"authorization_endpoint":"https://a.example/authorize"}`, wantErr: true},
		{name: "missing authorization endpoint", body: `{"issuer":"https://a.example"}`, wantErr: true},
		{name: "empty issuer", body: `{"issuer":"","authorization_endpoint":"https://a.example/authorize"}`, wantErr: true},
		{name: "issuer not a url", body: `{"issuer":"issuer","authorization_endpoint":"https://a.example/authorize"}`, wantErr: true},
		{name: "issuer wrong type", body: `{"issuer":1,"authorization_endpoint":"https://a.example/authorize"}`, wantErr: true},
		{name: "mcc_mnc wrong type", body: `{"issuer":"https://a.example","authorization_endpoint":"https://a.example/authorize","mcc_mnc":310260}`, wantErr: true},
		{name: "upper case keys", body: `{"ISSUER":"https://a.example","AUTHORIZATION_ENDPOINT":"https://a.example/authorize"}`, wantErr: true},
		{name: "mixed case authorization endpoint", body: `{"issuer":"https://a.example","Authorization_Endpoint":"https://a.example/authorize"}`, wantErr: true},
		{name: "array", body: `[]`, wantErr: true},
		{name: "null", body: `null`, wantErr: true},
		{name: "not json", body: `<html></html>`, wantErr: true},
		{name: "empty body", body: ``, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DiscoveryResponse([]byte(tt.body))
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, core.ErrMalformedResponse)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("DiscoveryResponse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDiscoveryResponseErrorKeyAlwaysNotFound(t *testing.T) {
	bodies := []string{
		`{"error":"a"}`,
		`{"error":"a","redirect_uri":"https://ui.example"}`,
		`{"error":{"nested":true},"issuer":"https://i.example"}`,
		`{"error":"","mcc_mnc":"310260"}`,
		`{"error":false,"redirect_uri":["x"]}`,
	}
	for _, body := range bodies {
		got, err := DiscoveryResponse([]byte(body))
		require.NoError(t, err, body)
		assert.True(t, got.IsNotFound(), body)
		assert.Nil(t, got.Configuration, body)
		require.NotNil(t, got.NotFound, body)
	}
}
