package fabricmeta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/chenjicheng/upmc-release/internal/logger"
)

const (
	// loaderEndpoint lists loader versions, newest first.
	loaderEndpoint = "/v2/versions/loader"

	// retryMaxAttempts is the number of tries for a metadata request, including the first.
	retryMaxAttempts = 3

	// retryBaseDelay is the wait before the first retry; later waits double it.
	retryBaseDelay = 3 * time.Second
)

var (
	errNoVersions    = errors.New("metadata service returned no versions")
	errBadHTTPStatus = errors.New("unexpected http status")
)

// LoaderVersion is a single record returned by the metadata service.
type LoaderVersion struct {
	// Version is the loader version string, e.g. "0.18.4".
	Version string `json:"version"`
	// Stable marks versions the service considers release quality.
	Stable bool `json:"stable"`
}

// Client queries the loader version metadata service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retryDelay time.Duration
}

// NewClient creates a metadata client with a bounded request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		retryDelay: retryBaseDelay,
	}
}

// LatestLoader returns the newest loader version flagged stable, falling back
// to the first record when nothing is flagged. Requests are retried with
// exponential backoff before the error is surfaced to the caller.
func (c *Client) LatestLoader(ctx context.Context) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= retryMaxAttempts; attempt++ {
		if attempt > 1 {
			delay := c.retryDelay << (attempt - 2)

			logger.InfoKV(ctx, "Retrying metadata request",
				"attempt", attempt, "delay", delay.String())

			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		version, err := c.fetchLatestLoader(ctx)
		if err == nil {
			return version, nil
		}

		lastErr = err
	}

	return "", lastErr
}

// fetchLatestLoader performs a single metadata request.
func (c *Client) fetchLatestLoader(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+loaderEndpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build metadata request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("query metadata service: %w", err)
	}

	// Best-effort cleanup.
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s", errBadHTTPStatus, resp.Status)
	}

	var versions []LoaderVersion
	if err = json.NewDecoder(resp.Body).Decode(&versions); err != nil {
		return "", fmt.Errorf("decode metadata response: %w", err)
	}

	if len(versions) == 0 {
		return "", errNoVersions
	}

	for _, v := range versions {
		if v.Stable {
			return v.Version, nil
		}
	}

	return versions[0].Version, nil
}
