package convert

import (
	"github.com/darmiel/zenkey/internal/core"
)

type assetStatement struct {
	Target *assetTarget `mapstructure:"target" validate:"required"`
}

type assetTarget struct {
	PackageName  string   `mapstructure:"package_name" validate:"required"`
	Fingerprints []string `mapstructure:"sha256_cert_fingerprints" validate:"required"`
}

// AssetLinks converts an assetlinks.json body into package fingerprints.
// One malformed statement fails the whole body. A package declared twice
// keeps the fingerprints of its last statement.
func AssetLinks(body []byte) (core.PackageFingerprints, error) {
	var raw []any
	if err := unmarshal(body, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, malformed("expected a json array")
	}

	packages := make(core.PackageFingerprints, len(raw))
	for idx, elem := range raw {
		if _, ok := elem.(map[string]any); !ok {
			return nil, malformed("statement #%d is not an object", idx)
		}
		var stmt assetStatement
		if err := decode(elem, &stmt); err != nil {
			return nil, malformed("decoding statement #%d: %w", idx, err)
		}
		if err := validate.Struct(stmt); err != nil {
			return nil, malformed("validating statement #%d: %w", idx, err)
		}
		packages[stmt.Target.PackageName] = stmt.Target.Fingerprints
	}
	return packages, nil
}
