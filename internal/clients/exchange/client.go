// Package exchange fetches live material prices from the game's public
// exchange API.
package exchange

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/titguild/guildboard/internal/modules/pricing"
)

// Client for the public mat-prices endpoint
type Client struct {
	url        string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a new exchange API client.
func NewClient(url string, log zerolog.Logger) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log.With().Str("client", "exchange").Logger(),
	}
}

// matPricesResponse mirrors the exchange wire format. Prices arrive in
// cents; the feed sometimes serializes them as floats, so they decode as
// float64 and are truncated after conversion.
type matPricesResponse struct {
	Prices []struct {
		MatID        string  `json:"matId"`
		MatName      string  `json:"matName"`
		CurrentPrice float64 `json:"currentPrice"`
		AvgPrice     float64 `json:"avgPrice"`
	} `json:"prices"`
}

// FetchQuotes retrieves the current quote table keyed by material name.
// Cent values are converted to whole currency units here, at the boundary;
// nothing downstream ever sees cents. On failure the empty table is
// returned along with the error so callers can keep rendering stale data.
func (c *Client) FetchQuotes() (pricing.QuoteTable, error) {
	c.log.Debug().Str("url", c.url).Msg("Fetching material prices")

	resp, err := c.httpClient.Get(c.url)
	if err != nil {
		return pricing.QuoteTable{}, fmt.Errorf("exchange request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return pricing.QuoteTable{}, fmt.Errorf("exchange returned status %d", resp.StatusCode)
	}

	var payload matPricesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return pricing.QuoteTable{}, fmt.Errorf("failed to decode exchange response: %w", err)
	}

	quotes := make(pricing.QuoteTable, len(payload.Prices))
	for _, item := range payload.Prices {
		if item.MatName == "" {
			continue
		}
		quotes[item.MatName] = pricing.Quote{
			CurrentPrice: int64(item.CurrentPrice / 100),
			AveragePrice: int64(item.AvgPrice / 100),
		}
	}

	c.log.Debug().Int("materials", len(quotes)).Msg("Quotes fetched")
	return quotes, nil
}
