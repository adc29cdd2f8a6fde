package buildinfo

var (
	Version    = "v0.1.0"
	CommitHash = "unknown"
)

type Info struct {
	About      string `json:"about,omitempty"`
	Service    string `json:"service,omitempty"`
	Version    string `json:"version,omitempty"`
	CommitHash string `json:"commit_hash,omitempty"`
}

func GetBuildInfo() Info {
	return Info{
		About:      "https://github.com/darmiel/zenkey",
		Service:    "ZenKey",
		Version:    Version,
		CommitHash: CommitHash,
	}
}

// UserAgent is sent with every outgoing discovery and asset links request.
func UserAgent() string {
	return "zenkey/" + Version
}
