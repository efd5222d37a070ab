package aptos

import (
	"bytes"
	"encoding/binary"

	"golang.org/x/crypto/sha3"
)

// Minimal BCS (binary canonical serialization) subset covering the transfer
// payloads this integrator submits. Field order follows the chain's raw
// transaction layout.

const (
	payloadVariantEntryFunction = 2
	typeTagVariantStruct        = 7
	authenticatorVariantEd25519 = 0
)

var rawTransactionSalt = []byte("APTOS::RawTransaction")

type bcsEncoder struct {
	buf bytes.Buffer
}

func (e *bcsEncoder) uleb128(v uint64) {
	for v >= 0x80 {
		e.buf.WriteByte(byte(v&0x7f) | 0x80)
		v >>= 7
	}
	e.buf.WriteByte(byte(v))
}

func (e *bcsEncoder) u8(v uint8) {
	e.buf.WriteByte(v)
}

func (e *bcsEncoder) u64(v uint64) {
	var le [8]byte
	binary.LittleEndian.PutUint64(le[:], v)
	e.buf.Write(le[:])
}

func (e *bcsEncoder) bytes(b []byte) {
	e.uleb128(uint64(len(b)))
	e.buf.Write(b)
}

func (e *bcsEncoder) str(s string) {
	e.bytes([]byte(s))
}

func (e *bcsEncoder) address(a AccountAddress) {
	e.buf.Write(a[:])
}

func (e *bcsEncoder) typeTag(t TypeTag) {
	e.uleb128(typeTagVariantStruct)
	e.address(t.Address)
	e.str(t.Module)
	e.str(t.Name)
	e.uleb128(0) // no generic type parameters
}

func (e *bcsEncoder) entryFunction(f EntryFunction) {
	e.uleb128(payloadVariantEntryFunction)
	e.address(f.Module.Address)
	e.str(f.Module.Name)
	e.str(f.Function)
	e.uleb128(uint64(len(f.TypeArgs)))
	for _, t := range f.TypeArgs {
		e.typeTag(t)
	}
	e.uleb128(uint64(len(f.Args)))
	for _, a := range f.Args {
		e.bytes(a)
	}
}

func (e *bcsEncoder) rawTransaction(t RawTransaction) {
	e.address(t.Sender)
	e.u64(t.SequenceNumber)
	e.entryFunction(t.Payload)
	e.u64(t.MaxGasAmount)
	e.u64(t.GasUnitPrice)
	e.u64(t.ExpirationTimestampSecs)
	e.u8(t.ChainID)
}

// Encode serializes the raw transaction.
func (t RawTransaction) Encode() []byte {
	var e bcsEncoder
	e.rawTransaction(t)
	return e.buf.Bytes()
}

// SigningMessage is the byte string the sender signs: the sha3-256 domain
// separator for raw transactions followed by the BCS bytes.
func (t RawTransaction) SigningMessage() []byte {
	prefix := sha3.Sum256(rawTransactionSalt)
	return append(prefix[:], t.Encode()...)
}

// Encode serializes the signed transaction for submission.
func (t SignedTransaction) Encode() []byte {
	var e bcsEncoder
	e.rawTransaction(t.Raw)
	e.uleb128(authenticatorVariantEd25519)
	e.bytes(t.PublicKey)
	e.bytes(t.Signature)
	return e.buf.Bytes()
}

// EncodeU64 returns the little-endian byte form used for amount arguments.
func EncodeU64(v uint64) []byte {
	var le [8]byte
	binary.LittleEndian.PutUint64(le[:], v)
	return le[:]
}

// EncodeBytes returns a length-prefixed byte vector argument.
func EncodeBytes(b []byte) []byte {
	var e bcsEncoder
	e.bytes(b)
	return e.buf.Bytes()
}
