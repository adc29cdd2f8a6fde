package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/darmiel/zenkey/internal/api/middleware"
	"github.com/darmiel/zenkey/internal/api/presenter"
	"github.com/darmiel/zenkey/internal/transport"
)

type APIError struct {
	StatusCode    int
	CorrelationID string
	Message       string
}

func (e APIError) Error() string {
	return fmt.Sprintf("api error: '%s' (status: %d, correlation: %s)", e.Message, e.StatusCode, e.CorrelationID)
}

func parseErrorResponse(resp *transport.Response) error {
	var errResp presenter.ErrorResponse
	if json.Unmarshal(resp.Body, &errResp) == nil && errResp.Error != "" {
		return APIError{
			StatusCode:    resp.StatusCode,
			CorrelationID: correlationFromResponse(resp),
			Message:       errResp.Error,
		}
	}
	return fmt.Errorf("api error: *unparsed '%s' (status %d)", string(resp.Body), resp.StatusCode)
}

func correlationFromResponse(resp *transport.Response) string {
	return resp.Header.Get(middleware.CorrelationIDHeader)
}

// get fetches rawURL through the client's transport and decodes a JSON body.
func (c *Client) get(ctx context.Context, rawURL string, result any) (string, error) {
	req, err := transport.Get(rawURL, transport.WithTimeouts(c.connectTimeout, c.readTimeout))
	if err != nil {
		return "", err
	}
	resp, err := c.transport.Execute(ctx, req)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		return correlationFromResponse(resp), parseErrorResponse(resp)
	}
	if result != nil {
		if err := json.Unmarshal(resp.Body, result); err != nil {
			return correlationFromResponse(resp), fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return correlationFromResponse(resp), nil
}
