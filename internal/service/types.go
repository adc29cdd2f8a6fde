package service

import "github.com/darmiel/zenkey/internal/core"

type VerifyRequest struct {
	// MCCMNC is optional. Without it the discovery service decides (or
	// answers with a redirect to the carrier selection UI).
	MCCMNC *string

	// Prompt asks the discovery service to prompt the user.
	Prompt bool

	// PackageName is looked up in the certificate store. Ignored if App
	// is set.
	PackageName string

	// App skips the certificate store lookup.
	App *core.AppIdentity
}

// Outcome is the terminal result of a flow.
type Outcome struct {
	// ID identifies the flow run in logs.
	ID string `json:"id"`

	State State `json:"-"`

	App           core.AppIdentity          `json:"app"`
	Configuration *core.OpenIDConfiguration `json:"configuration,omitempty"`
	NotFound      *core.ProviderNotFound    `json:"not_found,omitempty"`
	Verification  *core.Verification        `json:"verification,omitempty"`

	// Err is set for DiscoveryFailed and AssetLinksFailed.
	Err error `json:"-"`
}

// Transition is reported to observers on every state change.
type Transition struct {
	FlowID string
	From   State
	To     State
}

// Observer receives transitions synchronously.
type Observer func(Transition)
