package keys

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip39"
)

// DefaultDerivationPath is the NEAR wallet path (coin type 397)
const DefaultDerivationPath = "m/44'/397'/0'"

const hardenedOffset = 0x80000000

// NewSeedPhrase returns a fresh 12-word BIP-39 mnemonic
func NewSeedPhrase() (string, error) {
	entropy, err := bip39.NewEntropy(128)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate entropy")
	}
	defer clear(entropy)
	return bip39.NewMnemonic(entropy)
}

// FromSeedPhrase derives the key pair of a BIP-39 mnemonic along path (SLIP-10, ed25519).
// An empty path means DefaultDerivationPath.
func FromSeedPhrase(phrase, path string) (*KeyPair, error) {
	phrase = strings.Join(strings.Fields(strings.ToLower(phrase)), " ")
	if !bip39.IsMnemonicValid(phrase) {
		return nil, errors.New("invalid seed phrase")
	}
	if path == "" {
		path = DefaultDerivationPath
	}

	seed := bip39.NewSeed(phrase, "")
	defer clear(seed)

	return FromSeed(seed, path)
}

// FromSeed derives an ed25519 key from a raw BIP-39 seed along path
func FromSeed(seed []byte, path string) (*KeyPair, error) {
	indexes, err := parsePath(path)
	if err != nil {
		return nil, err
	}

	key, chainCode := slip10Master(seed)
	for _, idx := range indexes {
		nextKey, nextChain := slip10Child(key, chainCode, idx)
		clear(key)
		clear(chainCode)
		key, chainCode = nextKey, nextChain
	}
	defer clear(key)
	defer clear(chainCode)

	return fromSeed(key), nil
}

func slip10Master(seed []byte) (key, chainCode []byte) {
	mac := hmac.New(sha512.New, []byte("ed25519 seed"))
	mac.Write(seed)
	sum := mac.Sum(nil)
	return sum[:32], sum[32:]
}

// ed25519 only supports hardened children
func slip10Child(key, chainCode []byte, index uint32) ([]byte, []byte) {
	data := make([]byte, 0, 37)
	data = append(data, 0x00)
	data = append(data, key...)
	data = binary.BigEndian.AppendUint32(data, index)
	defer clear(data)

	mac := hmac.New(sha512.New, chainCode)
	mac.Write(data)
	sum := mac.Sum(nil)
	return sum[:32], sum[32:]
}

func parsePath(path string) ([]uint32, error) {
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] != "m" {
		return nil, errors.Errorf("derivation path must start with m: %q", path)
	}

	indexes := make([]uint32, 0, len(parts)-1)
	for _, p := range parts[1:] {
		if !strings.HasSuffix(p, "'") {
			return nil, errors.Errorf("ed25519 derivation needs hardened indexes: %q", path)
		}
		n, err := strconv.ParseUint(strings.TrimSuffix(p, "'"), 10, 31)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid path segment %q", p)
		}
		indexes = append(indexes, uint32(n)+hardenedOffset)
	}
	return indexes, nil
}
