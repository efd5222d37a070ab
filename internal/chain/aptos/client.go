package aptos

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cradle-labs/tuma-integrator/internal/apperrors"
)

// AccountResource is one on-chain resource attached to an account.
type AccountResource struct {
	Type string                     `json:"type"`
	Data map[string]json.RawMessage `json:"data"`
}

// FullnodeClient is the chain RPC surface the wallet depends on. The wire
// encoding behind it is not this core's concern.
type FullnodeClient interface {
	AccountResources(ctx context.Context, address string) ([]AccountResource, error)
	SubmitTransaction(ctx context.Context, txn *SignedTransaction) (map[string]any, error)
	SimulateTransaction(ctx context.Context, txn *SignedTransaction) (json.RawMessage, error)
	TransactionByHash(ctx context.Context, hash string) (map[string]any, error)
}

const bcsSignedTxnContentType = "application/x.aptos.signed_transaction+bcs"

// RestClient talks to an Aptos fullnode's v1 REST API.
type RestClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ FullnodeClient = (*RestClient)(nil)

// NewRestClient builds a fullnode client. apiKey may be empty.
func NewRestClient(baseURL, apiKey string) *RestClient {
	return &RestClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// AccountResources fetches the full resource list for an account.
func (c *RestClient) AccountResources(ctx context.Context, address string) ([]AccountResource, error) {
	var resources []AccountResource
	err := c.get(ctx, fmt.Sprintf("/v1/accounts/%s/resources", address), &resources)
	if err != nil {
		return nil, err
	}
	return resources, nil
}

// SubmitTransaction posts the BCS-encoded signed transaction.
func (c *RestClient) SubmitTransaction(ctx context.Context, txn *SignedTransaction) (map[string]any, error) {
	var out map[string]any
	err := c.postBCS(ctx, "/v1/transactions", txn.Encode(), &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SimulateTransaction dry-runs the transaction. The signature is stripped as
// the simulation endpoint requires an unauthenticated submission.
func (c *RestClient) SimulateTransaction(ctx context.Context, txn *SignedTransaction) (json.RawMessage, error) {
	unsigned := SignedTransaction{
		Raw:       txn.Raw,
		PublicKey: txn.PublicKey,
		Signature: make([]byte, len(txn.Signature)),
	}
	var out json.RawMessage
	err := c.postBCS(ctx, "/v1/transactions/simulate", unsigned.Encode(), &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// TransactionByHash fetches the transaction's current view; a pending
// transaction is reported with type pending_transaction.
func (c *RestClient) TransactionByHash(ctx context.Context, hash string) (map[string]any, error) {
	var out map[string]any
	err := c.get(ctx, fmt.Sprintf("/v1/transactions/by_hash/%s", hash), &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RestClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build fullnode request: %w", err)
	}
	return c.do(req, out)
}

func (c *RestClient) postBCS(ctx context.Context, path string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build fullnode request: %w", err)
	}
	req.Header.Set("Content-Type", bcsSignedTxnContentType)
	return c.do(req, out)
}

func (c *RestClient) do(req *http.Request, out any) error {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: fullnode unreachable: %v", apperrors.ErrConnection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("fullnode returned status %d: %s", resp.StatusCode, string(detail))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode fullnode response: %w", err)
	}
	return nil
}
