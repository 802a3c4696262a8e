package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// PriceFetcher looks up the current token price in USD.
type PriceFetcher interface {
	Price(ctx context.Context) (float64, error)
}

const defaultPriceURL = "https://api.coingecko.com/api/v3/simple/price?ids=wrapped-quil&vs_currencies=usd"

// CoinGeckoClient fetches the wrapped-QUIL spot price. Calls are bounded by
// Timeout; callers treat any failure as "price unavailable this run".
type CoinGeckoClient struct {
	URL     string
	Timeout time.Duration
}

func (c *CoinGeckoClient) Price(ctx context.Context) (float64, error) {
	url := c.URL
	if url == "" {
		url = defaultPriceURL
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("price lookup: unexpected status %d", resp.StatusCode)
	}

	var body map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, err
	}
	return body["wrapped-quil"]["usd"], nil
}
