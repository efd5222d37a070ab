package aptos

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Signer is a long-lived ed25519 signing key and its derived account
// address. It is the one shared mutable-adjacent resource of the core: all
// sequence-bound submissions for one signer must be serialized by the owning
// Wallet.
type Signer struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
	address    AccountAddress
}

// NewSignerFromHex builds a signer from a hex-encoded 32-byte ed25519 seed,
// with or without the 0x prefix.
func NewSignerFromHex(encoded string) (*Signer, error) {
	cleaned := strings.TrimPrefix(strings.TrimSpace(encoded), "0x")
	seed, err := hex.DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("invalid private key encoding: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("private key must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}

	privateKey := ed25519.NewKeyFromSeed(seed)
	publicKey := privateKey.Public().(ed25519.PublicKey)

	// single-key authentication scheme: address = sha3-256(pubkey || 0x00)
	authKey := sha3.Sum256(append(append([]byte{}, publicKey...), 0x00))

	var address AccountAddress
	copy(address[:], authKey[:])

	return &Signer{
		privateKey: privateKey,
		publicKey:  publicKey,
		address:    address,
	}, nil
}

// Address returns the signer's derived account address.
func (s *Signer) Address() AccountAddress {
	return s.address
}

// PublicKey returns the raw ed25519 public key bytes.
func (s *Signer) PublicKey() []byte {
	return s.publicKey
}

// Sign signs an already-prefixed signing message.
func (s *Signer) Sign(message []byte) []byte {
	return ed25519.Sign(s.privateKey, message)
}
