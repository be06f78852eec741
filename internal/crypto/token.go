package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/crypto/hkdf"
)

const TokenLen = sha256.Size

// DeriveUnlockToken computes HMAC-SHA256(secret, userID || expiresAt).
// secret is per-issue random material, so the token is unrelated to the password
// and to the vault key and cannot be inverted into either.
func DeriveUnlockToken(secret []byte, userID string, expiresAtMillis int64) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(userID))
	var exp [8]byte
	binary.BigEndian.PutUint64(exp[:], uint64(expiresAtMillis))
	mac.Write(exp[:])
	return mac.Sum(nil)
}

// TokenSealingKey derives the AES-256 key that seals the auto-unlock snapshot
func TokenSealingKey(token, salt []byte, userID string) ([]byte, error) {
	kdf := hkdf.New(sha256.New, token, salt, []byte("auto-unlock/"+userID))

	key := make([]byte, scryptKeyLen)
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, errors.Wrap(err, "failed to derive token key")
	}
	return key, nil
}
