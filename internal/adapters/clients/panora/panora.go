// Package panora is the price-oracle client. It quotes USD prices for Aptos
// tokens by their on-chain address.
package panora

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cradle-labs/tuma-integrator/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Client calls the Panora price API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient builds a price-oracle client against the given base URL.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type priceResponse struct {
	ChainID        json.Number `json:"chainId"`
	PanoraID       string      `json:"panoraId"`
	TokenAddress   *string     `json:"tokenAddress"`
	FaAddress      *string     `json:"faAddress"`
	Name           string      `json:"name"`
	Symbol         string      `json:"symbol"`
	Decimals       uint64      `json:"decimals"`
	USDPrice       string      `json:"usdPrice"`
	NativePrice    string      `json:"nativePrice"`
	PriceChange24H string      `json:"priceChange24H"`
}

// USDPrice returns the oracle's quote in USD per one whole token.
func (c *Client) USDPrice(ctx context.Context, tokenAddress string) (decimal.Decimal, error) {
	endpoint := fmt.Sprintf("%s/prices?%s", c.baseURL, url.Values{"tokenAddress": {tokenAddress}}.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to build price request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: price oracle unreachable: %v", apperrors.ErrConnection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("price oracle returned status %d for token %s", resp.StatusCode, tokenAddress)
	}

	var body priceResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode price response: %w", err)
	}

	price, err := decimal.NewFromString(body.USDPrice)
	if err != nil {
		return decimal.Zero, fmt.Errorf("oracle quoted unparseable usd price %q: %w", body.USDPrice, err)
	}
	return price, nil
}
