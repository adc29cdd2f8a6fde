// Package authcode drives the OAuth2 authorization code flow against a
// carrier configuration resolved by discovery.
package authcode

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/xid"
	"golang.org/x/oauth2"

	"github.com/darmiel/zenkey/internal/core"
)

var (
	ErrNoTokenEndpoint = errors.New("configuration has no token endpoint")
	ErrNoIDToken       = errors.New("token response has no id_token")
	ErrNonceMismatch   = errors.New("id token nonce does not match")
)

type Options struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string

	// HTTPClient is used for the token exchange and key set fetches.
	// Defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// Client builds authorization requests and exchanges codes for one carrier.
type Client struct {
	cfg        core.OpenIDConfiguration
	oauth      *oauth2.Config
	verifier   *oidc.IDTokenVerifier
	httpClient *http.Client
}

// New builds a client from a resolved configuration. No second discovery
// call is made: the endpoints come from cfg.
func New(ctx context.Context, cfg core.OpenIDConfiguration, opts Options) (*Client, error) {
	if cfg.Issuer == "" || cfg.AuthorizationEndpoint == "" {
		return nil, fmt.Errorf("configuration needs issuer and authorization endpoint")
	}
	if opts.ClientID == "" {
		return nil, fmt.Errorf("client id is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	scopes := opts.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID}
	}

	providerConfig := &oidc.ProviderConfig{
		IssuerURL:   cfg.Issuer,
		AuthURL:     cfg.AuthorizationEndpoint,
		TokenURL:    cfg.TokenEndpoint,
		UserInfoURL: cfg.UserinfoEndpoint,
		JWKSURL:     cfg.JWKSURI,
	}
	provider := providerConfig.NewProvider(oidc.ClientContext(ctx, httpClient))

	c := &Client{
		cfg: cfg,
		oauth: &oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			RedirectURL:  opts.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       scopes,
		},
		httpClient: httpClient,
	}
	if cfg.JWKSURI != "" {
		c.verifier = provider.Verifier(&oidc.Config{ClientID: opts.ClientID})
	}
	return c, nil
}

// RequestOptions are optional parameters of the authorization request.
type RequestOptions struct {
	LoginHint string
	// MCCMNC is forwarded so the carrier can skip its own carrier lookup.
	MCCMNC string
	Prompt string
}

// AuthRequest is what the host application has to keep until the carrier
// redirects back with a code.
type AuthRequest struct {
	URL          string `json:"url"`
	State        string `json:"state"`
	Nonce        string `json:"nonce"`
	CodeVerifier string `json:"code_verifier"`
}

// AuthorizationRequest builds the authorization URL with PKCE (S256), a
// fresh state and a fresh nonce.
func (c *Client) AuthorizationRequest(opts RequestOptions) *AuthRequest {
	req := &AuthRequest{
		State:        xid.New().String(),
		Nonce:        uuid.NewString(),
		CodeVerifier: oauth2.GenerateVerifier(),
	}
	params := []oauth2.AuthCodeOption{
		oauth2.S256ChallengeOption(req.CodeVerifier),
		oidc.Nonce(req.Nonce),
	}
	if opts.LoginHint != "" {
		params = append(params, oauth2.SetAuthURLParam("login_hint", opts.LoginHint))
	}
	if opts.MCCMNC != "" {
		params = append(params, oauth2.SetAuthURLParam("mccmnc", opts.MCCMNC))
	}
	if opts.Prompt != "" {
		params = append(params, oauth2.SetAuthURLParam("prompt", opts.Prompt))
	}
	req.URL = c.oauth.AuthCodeURL(req.State, params...)
	return req
}

// Tokens is the result of a code exchange.
type Tokens struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token,omitempty"`
	IDToken      string         `json:"id_token"`
	Expiry       time.Time      `json:"expiry"`
	Claims       map[string]any `json:"claims"`

	// Verified is true if the ID token signature, issuer, audience and nonce
	// were checked against the carrier's key set.
	Verified bool `json:"verified"`
}

// Exchange trades an authorization code for tokens. If the configuration has
// a jwks_uri the ID token is verified, otherwise its claims are decoded
// without verification and Tokens.Verified is false.
func (c *Client) Exchange(ctx context.Context, code, codeVerifier, nonce string) (*Tokens, error) {
	if c.cfg.TokenEndpoint == "" {
		return nil, ErrNoTokenEndpoint
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	var opts []oauth2.AuthCodeOption
	if codeVerifier != "" {
		opts = append(opts, oauth2.VerifierOption(codeVerifier))
	}
	token, err := c.oauth.Exchange(ctx, code, opts...)
	if err != nil {
		return nil, fmt.Errorf("exchanging code: %w", err)
	}

	rawID, _ := token.Extra("id_token").(string)
	if rawID == "" {
		return nil, ErrNoIDToken
	}
	out := &Tokens{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		IDToken:      rawID,
		Expiry:       token.Expiry,
	}

	if c.verifier == nil {
		claims, err := unverifiedClaims(rawID)
		if err != nil {
			return nil, err
		}
		out.Claims = claims
		return out, nil
	}

	idToken, err := c.verifier.Verify(oidc.ClientContext(ctx, c.httpClient), rawID)
	if err != nil {
		return nil, fmt.Errorf("verifying id token: %w", err)
	}
	if nonce != "" && idToken.Nonce != nonce {
		return nil, ErrNonceMismatch
	}
	if err := idToken.Claims(&out.Claims); err != nil {
		return nil, fmt.Errorf("extracting id token claims: %w", err)
	}
	out.Verified = true
	return out, nil
}

// unverifiedClaims decodes the claims of a JWT without checking its signature.
func unverifiedClaims(raw string) (map[string]any, error) {
	token, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("parsing id token: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid id token claims")
	}
	return claims, nil
}
