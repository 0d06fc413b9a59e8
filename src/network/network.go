package network

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"trading-dashboard/src/helpers"
	"trading-dashboard/src/logger"

	"github.com/go-resty/resty/v2"
)

// FetchClient performs the dashboard's one-shot GETs against the backend.
// Requests are not retried and carry no timeout of their own; the caller's
// context bounds them.
type FetchClient struct {
	client *resty.Client
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewFetchClient(baseURL string, log *logger.Logger) *FetchClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeaders(map[string]string{
			"Accept":     "application/json",
			"User-Agent": "trading-dashboard",
		})

	return &FetchClient{
		client: client,
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

// Get returns the body of path. Network failures and non-2xx statuses are
// reported as *helpers.TransportError.
func (c *FetchClient) Get(ctx context.Context, path string) ([]byte, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		Get(path)

	if err != nil {
		c.Logger.Warning("GET %s failed: %v", path, err)
		return nil, &helpers.TransportError{Operation: "GET " + path, Reason: helpers.ReasonError, Cause: err}
	}
	if !resp.IsSuccess() {
		c.Logger.Warning("GET %s: bad status %d", path, resp.StatusCode())
		return nil, &helpers.TransportError{
			Operation: "GET " + path,
			Reason:    helpers.ReasonError,
			Cause:     fmt.Errorf("bad status: %d", resp.StatusCode()),
		}
	}

	return resp.Body(), nil
}

// -----------------------------------------------------------------------------

// GetJSON fetches path and decodes the body into out.
func (c *FetchClient) GetJSON(ctx context.Context, path string, out interface{}) error {
	body, err := c.Get(ctx, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &helpers.ValidationError{Index: -1, Reason: fmt.Sprintf("%s: %v", path, err)}
	}
	return nil
}
