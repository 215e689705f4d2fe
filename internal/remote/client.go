// Package remote implements the HTTP clients for the external collaborator
// services: the product catalog, the bill and sales-return persistence
// services, the payment-status updater and the bill-document renderer. The
// wire formats are owned by those services; this package only moves payloads
// and surfaces their error messages verbatim.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// APIError carries a remote failure. Its message is shown to the user as-is
// when the remote provided one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("remote service returned status %d", e.Status)
}

// Client is the shared transport for all collaborator calls.
type Client struct {
	http       *http.Client
	catalogURL string
	billingURL string
}

// NewClient constructs a Client. A nil httpClient selects a default with a
// 30 second timeout; the engine itself imposes no tighter deadline.
func NewClient(catalogURL, billingURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		http:       httpClient,
		catalogURL: catalogURL,
		billingURL: billingURL,
	}
}

// do issues one JSON request and decodes the response into out when non-nil.
func (c *Client) do(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// opErr wraps transport-level failures with the operation name. Errors the
// remote answered with its own message pass through untouched so the message
// reaches the user verbatim.
func opErr(op string, err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}

// decodeError pulls the remote's own message out of a failure body. The
// collaborators answer either {"error": ...} or {"message": ...}; anything
// else falls back to a generic status line.
func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return apiErr
	}
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Error != "" {
			apiErr.Message = body.Error
		} else if body.Message != "" {
			apiErr.Message = body.Message
		}
	}
	return apiErr
}
