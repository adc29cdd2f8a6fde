package transport

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTripper(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	client := &http.Client{Transport: &RoundTripper{
		Header: http.Header{
			"User-Agent": {"zenkey/test"},
			"X-Client":   {"default"},
		},
		Logger: &logger,
	}}

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/token", nil)
	require.NoError(t, err)
	req.Header.Set("X-Client", "explicit")

	resp, err := client.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "zenkey/test", got.Get("User-Agent"))
	assert.Equal(t, "explicit", got.Get("X-Client"))
	assert.Empty(t, req.Header.Get("User-Agent"))
	assert.Contains(t, buf.String(), "request.completed")
	assert.Contains(t, buf.String(), "/token")
}
