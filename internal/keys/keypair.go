// Package keys handles NEAR ed25519 key pairs and their textual forms.
package keys

import (
	"crypto/ed25519"
	"encoding/hex"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

const (
	// KeyTypeED25519 is the borsh tag of an ed25519 key
	KeyTypeED25519 uint8 = 0

	keyPrefix      = "ed25519:"
	PrivateKeySize = ed25519.PrivateKeySize
)

// PublicKey is a raw ed25519 public key
type PublicKey [ed25519.PublicKeySize]byte

// ParsePublicKey parses "ed25519:<base58>" (the prefix is optional)
func ParsePublicKey(s string) (PublicKey, error) {
	var pk PublicKey
	raw, err := base58.Decode(strings.TrimPrefix(s, keyPrefix))
	if err != nil {
		return pk, errors.Wrap(err, "invalid public key")
	}
	if len(raw) != len(pk) {
		return pk, errors.Errorf("invalid public key length %d", len(raw))
	}
	copy(pk[:], raw)
	return pk, nil
}

// String returns the NEAR form "ed25519:<base58>"
func (p PublicKey) String() string {
	return keyPrefix + base58.Encode(p[:])
}

// Verify checks an ed25519 signature of message
func (p PublicKey) Verify(message, signature []byte) bool {
	return ed25519.Verify(p[:], message, signature)
}

// ImplicitAccountID returns the 64-hex-char implicit account id owned by p
func (p PublicKey) ImplicitAccountID() string {
	return hex.EncodeToString(p[:])
}

// KeyPair holds a 64-byte ed25519 private key. Call Zero when done.
type KeyPair struct {
	priv solana.PrivateKey
}

// Generate creates a random key pair
func Generate() (*KeyPair, error) {
	priv, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate key pair")
	}
	return &KeyPair{priv: priv}, nil
}

// FromString parses "ed25519:<base58 of 64 bytes>"
func FromString(s string) (*KeyPair, error) {
	raw, err := base58.Decode(strings.TrimPrefix(s, keyPrefix))
	if err != nil {
		return nil, errors.Wrap(err, "invalid private key")
	}
	defer clear(raw)
	return FromBytes(raw)
}

// FromBytes copies a 64-byte ed25519 private key (seed || public key).
// The caller keeps ownership of b.
func FromBytes(b []byte) (*KeyPair, error) {
	if len(b) != PrivateKeySize {
		return nil, errors.Errorf("invalid private key length: expected %d bytes", PrivateKeySize)
	}

	// the embedded public half must match the seed
	derived := ed25519.NewKeyFromSeed(b[:ed25519.SeedSize])
	defer clear(derived)
	if !derived.Public().(ed25519.PublicKey).Equal(ed25519.PublicKey(b[ed25519.SeedSize:])) {
		return nil, errors.New("private key does not match its public key")
	}

	priv := make(solana.PrivateKey, PrivateKeySize)
	copy(priv, b)
	return &KeyPair{priv: priv}, nil
}

// fromSeed builds a key pair from a 32-byte ed25519 seed
func fromSeed(seed []byte) *KeyPair {
	return &KeyPair{priv: solana.PrivateKey(ed25519.NewKeyFromSeed(seed))}
}

// PublicKey returns the public half
func (k *KeyPair) PublicKey() PublicKey {
	return PublicKey(k.priv.PublicKey())
}

// Sign signs message with the private key
func (k *KeyPair) Sign(message []byte) ([64]byte, error) {
	if len(k.priv) != PrivateKeySize {
		return [64]byte{}, errors.New("key pair has been zeroed")
	}
	sig, err := k.priv.Sign(message)
	if err != nil {
		return [64]byte{}, errors.Wrap(err, "failed to sign")
	}
	return sig, nil
}

// Bytes returns a copy of the 64-byte private key. Caller must clear it.
func (k *KeyPair) Bytes() []byte {
	out := make([]byte, len(k.priv))
	copy(out, k.priv)
	return out
}

// String returns "ed25519:<base58>" of the private key
func (k *KeyPair) String() string {
	return keyPrefix + base58.Encode(k.priv)
}

// Zero wipes the private key
func (k *KeyPair) Zero() {
	clear(k.priv)
	k.priv = nil
}
