// Package convert turns raw discovery and asset links bodies into typed
// results. All functions are pure.
package convert

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/darmiel/zenkey/internal/core"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// decode maps a generic JSON value onto out without weak typing, so a number
// where a string is expected is an error. Keys must match their tag exactly.
func decode(input, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:    out,
		TagName:   "mapstructure",
		MatchName: exactName,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

func exactName(mapKey, fieldName string) bool {
	return mapKey == fieldName
}

func malformed(format string, args ...any) error {
	return &core.MalformedResponseError{Err: fmt.Errorf(format, args...)}
}

func unmarshal(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return &core.MalformedResponseError{Err: fmt.Errorf("parsing json: %w", err)}
	}
	return nil
}
