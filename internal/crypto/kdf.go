package crypto

import (
	"crypto/rand"
	"io"

	"github.com/AlexZinkM/narwallet/internal/model"

	"github.com/pkg/errors"
	"golang.org/x/crypto/scrypt"
)

const (
	// scrypt parameters for the vault
	// Security is prioritized over performance
	//
	// N=2^18 (~256MB RAM, 0.5-2s) keeps brute force expensive while
	// still running on low-memory machines.
	scryptN      = 1 << 18
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
	SaltLen      = 32
	NonceLen     = 12
)

// DefaultKDFParams returns the scrypt parameters used for new vaults
func DefaultKDFParams() model.KDFParams {
	return model.KDFParams{N: scryptN, R: scryptR, P: scryptP, KeyLen: scryptKeyLen}
}

// RandomBytes returns n bytes from crypto/rand
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, errors.Wrap(err, "failed to read random bytes")
	}
	return b, nil
}

// DeriveKey derives the vault encryption key from password.
// password must be []byte for security (caller should zero it after use)
func DeriveKey(password, salt []byte, params model.KDFParams) ([]byte, error) {
	if params.KeyLen != 32 {
		return nil, errors.Errorf("unsupported key length %d", params.KeyLen)
	}
	key, err := scrypt.Key(password, salt, params.N, params.R, params.P, params.KeyLen)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive key")
	}
	return key, nil
}
