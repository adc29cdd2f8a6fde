package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/rs/zerolog/log"

	"github.com/darmiel/zenkey/internal/core"
)

var (
	bold  = color.New(color.Bold).SprintFunc()
	faint = color.New(color.Faint).SprintFunc()
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()

	greenCheck = green("✔")
	redCross   = red("✘")
)

// BeQuietError fails the command without logging again; the command has
// already reported what went wrong.
type BeQuietError struct{}

func (BeQuietError) Error() string {
	return "command failed"
}

func logSuccess(format string, args ...any) {
	log.Info().Msgf("%s %s", greenCheck, fmt.Sprintf(format, args...))
}

// logError reports err and returns a BeQuietError. Transport and response
// failures are spelled out since they are the common case.
func logError(err error, correlation, msg string) error {
	ev := log.Error().Err(err)
	if correlation != "" {
		ev = ev.Str("correlation_id", correlation)
	}
	switch {
	case errors.Is(err, core.ErrTransport):
		ev = ev.Str("kind", "transport")
	case errors.Is(err, core.ErrMalformedResponse):
		ev = ev.Str("kind", "malformed_response")
	case errors.Is(err, core.ErrMalformedEndpoint):
		ev = ev.Str("kind", "malformed_endpoint")
	case errors.Is(err, core.ErrCertificate):
		ev = ev.Str("kind", "certificate")
	}
	ev.Msgf("%s %s", redCross, msg)
	return BeQuietError{}
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	s := table.StyleRounded
	s.Format.Header = text.FormatDefault
	t.SetStyle(s)
	return t
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

func orDash(s string) string {
	if s == "" {
		return faint("-")
	}
	return s
}
