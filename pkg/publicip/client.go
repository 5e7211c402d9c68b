package publicip

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/comanda-ar/comanda-gateway/pkg/config"
	"github.com/comanda-ar/comanda-gateway/pkg/logger"
)

// Client resolves the caller's public network address through an ipify-style
// lookup service. The lookup is strictly best-effort: any failure yields an
// empty address, never an error, because checkout must not be blocked on it.
type Client struct {
	http   *http.Client
	url    string
	logger *logger.Logger
}

// NewClient builds the lookup client from config.
func NewClient(cfg config.PublicIPConfig, logg *logger.Logger) *Client {
	return &Client{
		http:   &http.Client{Timeout: cfg.Timeout},
		url:    cfg.LookupURL,
		logger: logg,
	}
}

// Lookup returns the public address or "" when it cannot be determined.
func (c *Client) Lookup(ctx context.Context) string {
	if c == nil || strings.TrimSpace(c.url) == "" {
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		c.warn(ctx, "building ip lookup request failed")
		return ""
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.warn(ctx, "ip lookup request failed")
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.warn(ctx, "ip lookup returned non-ok status")
		return ""
	}

	var payload struct {
		IP string `json:"ip"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.warn(ctx, "ip lookup returned malformed payload")
		return ""
	}
	return strings.TrimSpace(payload.IP)
}

func (c *Client) warn(ctx context.Context, msg string) {
	if c.logger != nil {
		c.logger.Warn(ctx, msg)
	}
}
