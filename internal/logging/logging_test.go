package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	t.Cleanup(func() {
		viper.Reset()
		InitDefault()
	})

	tests := []struct {
		name      string
		level     string
		format    string
		wantLevel zerolog.Level
		wantJSON  bool
	}{
		{name: "defaults", wantLevel: zerolog.InfoLevel},
		{name: "debug console", level: "debug", format: "console", wantLevel: zerolog.DebugLevel},
		{name: "upper case json", level: "WARN", format: "JSON", wantLevel: zerolog.WarnLevel, wantJSON: true},
		{name: "unknown level", level: "loud", wantLevel: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			viper.Set(LevelKey, tt.level)
			viper.Set(FormatKey, tt.format)
			viper.Set(NoColorKey, true)

			var buf bytes.Buffer
			Init(&buf)
			assert.Equal(t, tt.wantLevel, zerolog.GlobalLevel())

			buf.Reset()
			log.Error().Str("k", "v").Msg("hello")
			require.NotZero(t, buf.Len())

			var decoded map[string]any
			isJSON := json.Unmarshal(buf.Bytes(), &decoded) == nil
			assert.Equal(t, tt.wantJSON, isJSON)
			assert.Contains(t, buf.String(), "hello")
		})
	}
}
