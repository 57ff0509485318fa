package platformsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

func (c *Client) url(path string) string {
	return c.BaseURL + path
}

// doJSON performs an unauthenticated request with an optional JSON body and
// decodes the response into target (nil target discards the body).
func (c *Client) doJSON(ctx context.Context, method, path string, body, target any, expectedStatus int) error {
	return c.roundTrip(ctx, method, path, "", body, target, expectedStatus)
}

func (c *Client) roundTrip(ctx context.Context, method, path, bearer string, body, target any, expectedStatus int) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("platformsdk: encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return fmt.Errorf("platformsdk: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("platformsdk: send request: %w", err)
	}
	return decodeResponse(resp, target, expectedStatus)
}

// decodeResponse decodes a JSON response into target, returning an *APIError
// when the status code does not match.
func decodeResponse(resp *http.Response, target any, expectedStatus int) error {
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("platformsdk: read response: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		return parseErrorResponse(resp.StatusCode, raw)
	}
	if target == nil {
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("platformsdk: decode response: %w", err)
	}
	return nil
}
