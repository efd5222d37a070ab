// Package pretium is the fiat rail client: exchange-rate quotes, mobile
// money collection (fiat in) and disbursement (fiat out).
package pretium

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cradle-labs/tuma-integrator/internal/apperrors"
	"github.com/cradle-labs/tuma-integrator/internal/core/ports"
	"github.com/shopspring/decimal"
)

// Client calls the Pretium settlement API. One client carries the callback
// URLs registered with the provider for each leg direction.
type Client struct {
	baseURL            string
	apiKey             string
	onRampCallbackURL  string
	offRampCallbackURL string
	httpClient         *http.Client
}

// NewClient builds a fiat rail client.
func NewClient(baseURL, apiKey, onRampCallbackURL, offRampCallbackURL string) *Client {
	return &Client{
		baseURL:            strings.TrimRight(baseURL, "/"),
		apiKey:             apiKey,
		onRampCallbackURL:  onRampCallbackURL,
		offRampCallbackURL: offRampCallbackURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type responseWrapper struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type exchangeRateData struct {
	BuyingRate  decimal.Decimal `json:"buying_rate"`
	SellingRate decimal.Decimal `json:"selling_rate"`
	QuotedRate  decimal.Decimal `json:"quoted_rate"`
}

type railReceiptData struct {
	TransactionCode string  `json:"transaction_code"`
	Status          string  `json:"status"`
	Message         string  `json:"message"`
	ReceiptNumber   *string `json:"receipt_number,omitempty"`
}

// QuotedRate returns the provider's quoted rate for a fiat currency,
// expressed as local currency units per USD.
func (c *Client) QuotedRate(ctx context.Context, currencySymbol string) (decimal.Decimal, error) {
	var data exchangeRateData
	err := c.post(ctx, "/exchange-rate", map[string]string{"currency_code": currencySymbol}, &data)
	if err != nil {
		return decimal.Zero, err
	}
	return data.QuotedRate, nil
}

// Collect initiates a mobile money collection from the payer identified by
// the shortcode. The returned transaction code keys the later callback.
func (c *Client) Collect(ctx context.Context, params ports.CollectParams) (*ports.RailReceipt, error) {
	payload := map[string]string{
		"shortcode":      params.Shortcode,
		"amount":         params.Amount,
		"mobile_network": params.MobileNetwork,
		"callback_url":   c.onRampCallbackURL,
	}
	return c.sendRail(ctx, fmt.Sprintf("/%s/collect", strings.ToLower(params.CurrencyCode)), payload)
}

// Disburse pays fiat out to a mobile wallet, buy-goods till or pay-bill
// destination depending on params.Type.
func (c *Client) Disburse(ctx context.Context, params ports.DisburseParams) (*ports.RailReceipt, error) {
	payload := map[string]string{
		"amount":         params.Amount,
		"type":           params.Type,
		"mobile_network": params.MobileNetwork,
		"callback_url":   c.offRampCallbackURL,
	}
	if params.PayBill != "" {
		payload["pay_bill"] = params.PayBill
		payload["account_number"] = params.AccountNumber
	} else {
		payload["shortcode"] = params.Shortcode
	}
	return c.sendRail(ctx, fmt.Sprintf("/%s/disburse", strings.ToLower(params.CurrencyCode)), payload)
}

func (c *Client) sendRail(ctx context.Context, path string, payload map[string]string) (*ports.RailReceipt, error) {
	var data railReceiptData
	if err := c.post(ctx, path, payload, &data); err != nil {
		return nil, err
	}
	if strings.EqualFold(data.Status, "FAILED") {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrRailRejected, data.Message)
	}
	return &ports.RailReceipt{
		TransactionCode: data.TransactionCode,
		Status:          data.Status,
		Message:         data.Message,
		ReceiptNumber:   data.ReceiptNumber,
	}, nil
}

func (c *Client) post(ctx context.Context, path string, payload map[string]string, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode rail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build rail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: fiat rail unreachable: %v", apperrors.ErrConnection, err)
	}
	defer resp.Body.Close()

	var wrapper responseWrapper
	if err := json.NewDecoder(resp.Body).Decode(&wrapper); err != nil {
		return fmt.Errorf("failed to decode rail response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: rail returned status %d: %s", apperrors.ErrRailRejected, resp.StatusCode, wrapper.Message)
	}
	if out != nil {
		if err := json.Unmarshal(wrapper.Data, out); err != nil {
			return fmt.Errorf("failed to decode rail response data: %w", err)
		}
	}
	return nil
}
