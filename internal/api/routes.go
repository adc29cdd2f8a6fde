package api

const (
	HealthCheckRoute = "/healthz"
	AboutRoute       = "/about"
	MetricsRoute     = "/metrics"

	DiscoveryRoute  = "/.well-known/openid_configuration"
	AssetLinksRoute = "/.well-known/assetlinks.json"
)
