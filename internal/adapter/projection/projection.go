// Package projection triggers the order-book projection service over HTTP.
package projection

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/olyamironova/exchange-engine/internal/port"
)

var _ port.Projection = (*Client)(nil)

// Client POSTs a refresh trigger to the projection service's endpoint.
// The core never inspects the response; a failure is logged and dropped.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func New(baseURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Second},
		logger:  logger,
	}
}

func (c *Client) RefreshAsset(ctx context.Context, asset string) {
	url := fmt.Sprintf("%s/internal/projection/refresh/%s", c.baseURL, asset)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		c.logger.Warn("projection: build request failed", zap.String("asset", asset), zap.Error(err))
		return
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("projection: refresh request failed", zap.String("asset", asset), zap.Error(err))
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		c.logger.Warn("projection: refresh returned non-2xx", zap.String("asset", asset), zap.Int("status", resp.StatusCode))
	}
}
