package registrationclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"registration-service/internal/registration"
)

var (
	ErrRejected = errors.New("registration rejected")
	ErrServer   = errors.New("registration server error")
)

// Client posts registrations to the submission endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewClientWithHTTP uses hc for transport, e.g. an httptest server client.
func NewClientWithHTTP(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: baseURL, httpClient: hc}
}

type response struct {
	OK    bool            `json:"ok"`
	ID    string          `json:"id"`
	Error json.RawMessage `json:"error"`
}

// Submit returns the id of the stored registration. A 400 with a field map
// comes back as *registration.ValidationError, a 400 with a message wraps
// ErrRejected and anything else non-2xx wraps ErrServer.
func (c *Client) Submit(ctx context.Context, req registration.Request) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/api/register", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	var out response
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: status %d: undecodable response: %v", ErrServer, resp.StatusCode, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 && out.OK {
		return out.ID, nil
	}

	if resp.StatusCode == http.StatusBadRequest {
		var fields map[string]string
		if err := json.Unmarshal(out.Error, &fields); err == nil && len(fields) > 0 {
			return "", &registration.ValidationError{Fields: fields}
		}
		return "", fmt.Errorf("%w: %s", ErrRejected, errorMessage(out.Error))
	}

	return "", fmt.Errorf("%w: status %d: %s", ErrServer, resp.StatusCode, errorMessage(out.Error))
}

func errorMessage(raw json.RawMessage) string {
	var msg string
	if err := json.Unmarshal(raw, &msg); err == nil && msg != "" {
		return msg
	}
	return "submission failed"
}
