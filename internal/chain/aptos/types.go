// Package aptos builds, signs, submits and confirms transfer transactions on
// the Aptos chain through an injected fullnode client and signing key.
package aptos

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Network chain ids.
const (
	ChainIDMainnet uint8 = 1
	ChainIDTestnet uint8 = 2
)

// AccountAddress is a 32-byte on-chain address.
type AccountAddress [32]byte

// ParseAddress decodes a hex address with or without the 0x prefix. Short
// forms (e.g. 0xa) are left-padded, matching the chain's canonical form.
func ParseAddress(s string) (AccountAddress, error) {
	var addr AccountAddress
	cleaned := strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if cleaned == "" || len(cleaned) > 64 {
		return addr, fmt.Errorf("invalid account address %q", s)
	}
	if len(cleaned)%2 != 0 {
		cleaned = "0" + cleaned
	}
	raw, err := hex.DecodeString(cleaned)
	if err != nil {
		return addr, fmt.Errorf("invalid account address %q: %w", s, err)
	}
	copy(addr[32-len(raw):], raw)
	return addr, nil
}

// String renders the full-width canonical hex form.
func (a AccountAddress) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// ModuleID identifies a Move module by publisher address and name.
type ModuleID struct {
	Address AccountAddress
	Name    string
}

// TypeTag is a Move struct type reference such as
// 0x1::fungible_asset::Metadata. Generic type parameters are not needed for
// the transfer payloads this integrator builds.
type TypeTag struct {
	Address AccountAddress
	Module  string
	Name    string
}

// ParseTypeTag decodes an address::module::name type string.
func ParseTypeTag(s string) (TypeTag, error) {
	parts := strings.Split(s, "::")
	if len(parts) != 3 {
		return TypeTag{}, fmt.Errorf("invalid type tag %q", s)
	}
	addr, err := ParseAddress(parts[0])
	if err != nil {
		return TypeTag{}, err
	}
	return TypeTag{Address: addr, Module: parts[1], Name: parts[2]}, nil
}

// EntryFunction is a call payload targeting one Move entry function.
type EntryFunction struct {
	Module   ModuleID
	Function string
	TypeArgs []TypeTag
	Args     [][]byte
}

// RawTransaction is the unsigned transaction envelope.
type RawTransaction struct {
	Sender                  AccountAddress
	SequenceNumber          uint64
	Payload                 EntryFunction
	MaxGasAmount            uint64
	GasUnitPrice            uint64
	ExpirationTimestampSecs uint64
	ChainID                 uint8
}

// SignedTransaction pairs the raw transaction with its ed25519
// authenticator.
type SignedTransaction struct {
	Raw       RawTransaction
	PublicKey []byte
	Signature []byte
}
