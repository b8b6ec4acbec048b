package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"golang.org/x/time/rate"

	"stocksense/internal/metrics"
	"stocksense/pkg/errors"
	"stocksense/pkg/logger"
)

// httpClient is the shared transport for the remote providers:
// rate-limited, bounded by timeout, JSON-decoding.
type httpClient struct {
	name    string
	baseURL string
	apiKey  string
	keyName string // query parameter carrying the API key
	client  *http.Client
	limiter *rate.Limiter
	log     *logger.Logger
}

func newHTTPClient(name, baseURL, apiKey, keyName string, timeout time.Duration, perSecond float64) *httpClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if perSecond <= 0 {
		perSecond = 5
	}
	return &httpClient{
		name:    name,
		baseURL: baseURL,
		apiKey:  apiKey,
		keyName: keyName,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(perSecond), int(perSecond)),
		log:     logger.Get().With("provider", name),
	}
}

// getJSON performs one rate-limited GET and decodes the response.
// Errors are wrapped with the matching sentinel so callers can branch
// on the failure class.
func (c *httpClient) getJSON(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	started := time.Now()
	defer func() {
		metrics.ProviderLatency.WithLabelValues(c.name, endpoint).Observe(time.Since(started).Seconds())
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return errors.Wrapf(errors.ErrRateLimited, "%s: limiter wait: %v", c.name, err)
	}

	if params == nil {
		params = url.Values{}
	}
	if c.apiKey != "" {
		params.Set(c.keyName, c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return errors.Wrapf(errors.ErrInternal, "%s: build request: %v", c.name, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil || os.IsTimeout(err) {
			return errors.Wrapf(errors.ErrTimeout, "%s: %s: %v", c.name, endpoint, err)
		}
		return errors.Wrapf(errors.ErrNetwork, "%s: %s: %v", c.name, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Wrapf(errors.ErrUnavailable, "%s: %s returned %s", c.name, endpoint, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(errors.ErrParse, "%s: decode %s: %v", c.name, endpoint, err)
	}

	return nil
}

// fellBack records a degraded call and logs the reason
func (c *httpClient) fellBack(endpoint string, err error) string {
	metrics.ProviderCalls.WithLabelValues(c.name, endpoint, string(SourceFallback)).Inc()
	reason := fmt.Sprintf("%v", err)
	c.log.Warnw("provider call fell back to canned data", "endpoint", endpoint, "reason", reason)
	return reason
}

func (c *httpClient) live(endpoint string) {
	metrics.ProviderCalls.WithLabelValues(c.name, endpoint, string(SourceLive)).Inc()
}
