package aptos

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cradle-labs/tuma-integrator/internal/apperrors"
	"github.com/cradle-labs/tuma-integrator/internal/core/ports"
	"github.com/cradle-labs/tuma-integrator/internal/utils/fixedpoint"
)

const (
	maxGasAmount     = 50000
	gasUnitPrice     = 100
	expirationWindow = 600 * time.Second

	issuerModuleName        = "issuer"
	transferCoinsFunction   = "transfer_coins"
	transferFungibleFn      = "transfer_fungible"
	fungibleMetadataTypeTag = "0x1::fungible_asset::Metadata"
	accountResourceType     = "0x1::account::Account"

	defaultConfirmAttempts = 5
	defaultConfirmInterval = time.Second
)

// Wallet owns one signing key and submits transfers through the issuer
// module published at the configured contract address.
//
// Sequence-number resolution is not safe under concurrent submission for the
// same signer: two in-flight submissions would read the same sequence number
// and the chain would reject one. The wallet therefore serializes
// resolve-sequence + submit behind a mutex. The mutex is never held across
// confirmation polling.
type Wallet struct {
	client FullnodeClient
	signer *Signer
	logger *slog.Logger

	chainID         uint8
	module          ModuleID
	metadataTypeTag TypeTag
	confirmAttempts int
	confirmInterval time.Duration

	submitMu sync.Mutex
}

var _ ports.ChainTransactor = (*Wallet)(nil)

// Option adjusts wallet construction.
type Option func(*Wallet)

// WithConfirmPolicy overrides the confirmation polling bounds.
func WithConfirmPolicy(attempts int, interval time.Duration) Option {
	return func(w *Wallet) {
		w.confirmAttempts = attempts
		w.confirmInterval = interval
	}
}

// NewWallet builds a wallet for the issuer module at contractAddress.
func NewWallet(client FullnodeClient, signer *Signer, chainID uint8, contractAddress string, logger *slog.Logger, opts ...Option) (*Wallet, error) {
	moduleAddr, err := ParseAddress(contractAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid contract address: %w", err)
	}
	metadataTag, err := ParseTypeTag(fungibleMetadataTypeTag)
	if err != nil {
		return nil, err
	}
	w := &Wallet{
		client:          client,
		signer:          signer,
		logger:          logger,
		chainID:         chainID,
		module:          ModuleID{Address: moduleAddr, Name: issuerModuleName},
		metadataTypeTag: metadataTag,
		confirmAttempts: defaultConfirmAttempts,
		confirmInterval: defaultConfirmInterval,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Address returns the signer's account address.
func (w *Wallet) Address() string {
	return w.signer.Address().String()
}

// ResolveSequenceNumber reads the signer's current sequence number from its
// account resource. Callers must hold the submission lock; see Wallet docs.
func (w *Wallet) ResolveSequenceNumber(ctx context.Context) (uint64, error) {
	resources, err := w.client.AccountResources(ctx, w.Address())
	if err != nil {
		return 0, err
	}
	for _, r := range resources {
		if r.Type != accountResourceType {
			continue
		}
		raw, ok := r.Data["sequence_number"]
		if !ok {
			break
		}
		var seqStr string
		if err := json.Unmarshal(raw, &seqStr); err != nil {
			return 0, fmt.Errorf("malformed sequence number in account resource: %w", err)
		}
		seq, err := strconv.ParseUint(seqStr, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("malformed sequence number %q: %w", seqStr, err)
		}
		return seq, nil
	}
	return 0, fmt.Errorf("account resource for %s carries no sequence number", w.Address())
}

// BuildTransfer constructs the entry-function payload for a transfer. The
// amount is encoded to integer units at the token's declared scale before
// this is called.
func (w *Wallet) BuildTransfer(params ports.ChainTransferParams) (*EntryFunction, error) {
	token := params.Token
	if token.Chain != "aptos" {
		return nil, fmt.Errorf("%w: %s settles on %q", apperrors.ErrChainNotSupported, token.ID, token.Chain)
	}
	if token.Address == "" {
		return nil, fmt.Errorf("%w: currency %s has no on-chain address", apperrors.ErrValidation, token.ID)
	}
	scale, err := token.Scale()
	if err != nil {
		return nil, err
	}
	amountUnits, err := fixedpoint.Encode(params.Amount.String(), scale)
	if err != nil {
		return nil, err
	}
	to, err := ParseAddress(params.To)
	if err != nil {
		return nil, fmt.Errorf("%w: bad recipient address: %v", apperrors.ErrValidation, err)
	}
	correlation := EncodeBytes([]byte(params.CorrelationID))

	if token.IsFungibleAsset {
		metadata, err := ParseAddress(token.Address)
		if err != nil {
			return nil, fmt.Errorf("%w: bad asset metadata address: %v", apperrors.ErrValidation, err)
		}
		return &EntryFunction{
			Module:   w.module,
			Function: transferFungibleFn,
			TypeArgs: []TypeTag{w.metadataTypeTag},
			Args: [][]byte{
				metadata[:],
				to[:],
				EncodeU64(amountUnits),
				correlation,
			},
		}, nil
	}

	payload := &EntryFunction{
		Module:   w.module,
		Function: transferCoinsFunction,
		Args: [][]byte{
			to[:],
			EncodeU64(amountUnits),
			correlation,
		},
	}
	// a coin-typed token names its Move struct type in the catalog address
	if strings.Contains(token.Address, "::") {
		coinType, err := ParseTypeTag(token.Address)
		if err != nil {
			return nil, fmt.Errorf("%w: bad coin type: %v", apperrors.ErrValidation, err)
		}
		payload.TypeArgs = []TypeTag{coinType}
	}
	return payload, nil
}

// Submit signs and submits the payload, returning the transaction hash. The
// simulation dry-run is best effort: its outcome is logged and never blocks
// submission.
func (w *Wallet) Submit(ctx context.Context, payload *EntryFunction) (string, error) {
	w.submitMu.Lock()
	defer w.submitMu.Unlock()

	sequenceNumber, err := w.ResolveSequenceNumber(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to resolve sequence number: %w", err)
	}

	raw := RawTransaction{
		Sender:                  w.signer.Address(),
		SequenceNumber:          sequenceNumber,
		Payload:                 *payload,
		MaxGasAmount:            maxGasAmount,
		GasUnitPrice:            gasUnitPrice,
		ExpirationTimestampSecs: uint64(time.Now().Add(expirationWindow).Unix()),
		ChainID:                 w.chainID,
	}

	signed := &SignedTransaction{
		Raw:       raw,
		PublicKey: w.signer.PublicKey(),
		Signature: w.signer.Sign(raw.SigningMessage()),
	}

	if sim, simErr := w.client.SimulateTransaction(ctx, signed); simErr != nil {
		w.logger.Warn("transaction simulation failed",
			slog.String("function", payload.Function),
			slog.String("error", simErr.Error()))
	} else {
		w.logger.Info("transaction simulation result",
			slog.String("function", payload.Function),
			slog.String("result", string(sim)))
	}

	result, err := w.client.SubmitTransaction(ctx, signed)
	if err != nil {
		return "", err
	}
	hash, ok := result["hash"].(string)
	if !ok {
		return "", fmt.Errorf("submit response carries no transaction hash")
	}
	return hash, nil
}

// Confirm polls the transaction's status. An explicit success flag resolves
// immediately; a pending transaction is retried after the configured
// interval. Any other response, or exhausting the attempts, yields false:
// a non-retriable "not confirmed" outcome, not an error.
func (w *Wallet) Confirm(ctx context.Context, hash string) (bool, error) {
	for attempt := 0; attempt < w.confirmAttempts; attempt++ {
		view, err := w.client.TransactionByHash(ctx, hash)
		if err != nil {
			return false, err
		}
		if success, ok := view["success"].(bool); ok {
			return success, nil
		}
		if txType, ok := view["type"].(string); ok && txType == "pending_transaction" {
			if attempt < w.confirmAttempts-1 {
				time.Sleep(w.confirmInterval)
			}
			continue
		}
		return false, nil
	}
	return false, nil
}

// SendTransfer builds, submits and confirms one settlement leg. A false
// confirmation is surfaced as ErrChainUnconfirmed; the caller must not
// resubmit, since the sequence number may already be spent and a
// resubmission risks a double transfer.
func (w *Wallet) SendTransfer(ctx context.Context, params ports.ChainTransferParams) (string, error) {
	payload, err := w.BuildTransfer(params)
	if err != nil {
		return "", err
	}
	hash, err := w.Submit(ctx, payload)
	if err != nil {
		return "", err
	}
	confirmed, err := w.Confirm(ctx, hash)
	if err != nil {
		return "", err
	}
	if !confirmed {
		return "", fmt.Errorf("%w: transaction %s", apperrors.ErrChainUnconfirmed, hash)
	}
	return hash, nil
}
