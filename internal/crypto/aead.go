package crypto

import (
	"crypto/aes"
	"crypto/cipher"

	"github.com/pkg/errors"
)

// ErrDecrypt is returned for any authentication failure of a sealed blob.
// It never says whether the key, nonce or ciphertext was wrong.
var ErrDecrypt = errors.New("failed to decrypt")

// Seal encrypts plaintext with AES-256-GCM under a fresh random nonce.
// aad is bound to the ciphertext but not encrypted.
func Seal(key, plaintext, aad []byte) (nonce, ciphertext []byte, err error) {
	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}

	nonce, err = RandomBytes(NonceLen)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to generate nonce")
	}

	return nonce, aesGCM.Seal(nil, nonce, plaintext, aad), nil
}

// Open decrypts a blob produced by Seal. The caller owns (and should clear) the result.
func Open(key, nonce, ciphertext, aad []byte) ([]byte, error) {
	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != aesGCM.NonceSize() {
		return nil, ErrDecrypt
	}

	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create cipher")
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create GCM")
	}
	return aesGCM, nil
}
