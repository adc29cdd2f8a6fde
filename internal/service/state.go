package service

// State is a state of the discovery and verification flow.
//
//	Idle -> DiscoveryInFlight -> ConfigurationResolved | ProviderNotFound | DiscoveryFailed
//	ConfigurationResolved -> AssetLinksInFlight -> Verified | Unverified | AssetLinksFailed
//
// A policy rejection moves ConfigurationResolved straight to Unverified.
type State int

const (
	StateIdle State = iota
	StateDiscoveryInFlight
	StateConfigurationResolved
	StateProviderNotFound
	StateDiscoveryFailed
	StateAssetLinksInFlight
	StateVerified
	StateUnverified
	StateAssetLinksFailed
)

var stateNames = map[State]string{
	StateIdle:                  "idle",
	StateDiscoveryInFlight:     "discovery_in_flight",
	StateConfigurationResolved: "configuration_resolved",
	StateProviderNotFound:      "provider_not_found",
	StateDiscoveryFailed:       "discovery_failed",
	StateAssetLinksInFlight:    "asset_links_in_flight",
	StateVerified:              "verified",
	StateUnverified:            "unverified",
	StateAssetLinksFailed:      "asset_links_failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether the flow ends in s.
func (s State) Terminal() bool {
	switch s {
	case StateProviderNotFound, StateDiscoveryFailed, StateVerified, StateUnverified, StateAssetLinksFailed:
		return true
	default:
		return false
	}
}

var transitions = map[State][]State{
	StateIdle:                  {StateDiscoveryInFlight},
	StateDiscoveryInFlight:     {StateConfigurationResolved, StateProviderNotFound, StateDiscoveryFailed},
	StateConfigurationResolved: {StateAssetLinksInFlight, StateUnverified},
	StateAssetLinksInFlight:    {StateVerified, StateUnverified, StateAssetLinksFailed},
}

// CanTransition reports whether to is reachable from from in one step.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
