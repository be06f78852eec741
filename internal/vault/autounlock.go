package vault

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strconv"
	"time"

	"github.com/AlexZinkM/narwallet/internal/crypto"
	"github.com/AlexZinkM/narwallet/internal/metrics"
	"github.com/AlexZinkM/narwallet/internal/model"
	"github.com/AlexZinkM/narwallet/internal/storage"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ttlSetter is implemented by side stores that expire keys on their own
type ttlSetter interface {
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func autoUnlockAAD(userID string, expiresAtMillis int64) []byte {
	return []byte(autoUnlockKey(userID) + "/" + strconv.FormatInt(expiresAtMillis, 10))
}

// IssueAutoUnlockToken arms a password-less unlock of s for ttl.
//
// The token is HMAC-SHA256 over the user and expiry keyed with fresh random
// material, and only seals a snapshot of the decrypted accounts in a side
// record. It cannot be turned back into the password or the vault key, and a
// session restored from it cannot re-seal the vault. Holding the token is
// still as good as holding the accounts' private keys until it expires, so
// this is a weaker, opt-in convenience mode.
func (v *Vault) IssueAutoUnlockToken(ctx context.Context, s *Session, ttl time.Duration) (*model.UnlockToken, error) {
	if ttl <= 0 {
		return nil, model.NewValidationError("ttl", "must be positive")
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	s.mu.RLock()
	if err := s.checkOpen(); err != nil {
		s.mu.RUnlock()
		return nil, err
	}
	snapshot, err := json.Marshal(s.state)
	s.mu.RUnlock()
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode vault state")
	}
	defer clear(snapshot)

	expiresAt := v.clock.Now().Add(ttl)
	expMillis := expiresAt.UnixMilli()

	secret, err := crypto.RandomBytes(crypto.TokenLen)
	if err != nil {
		return nil, err
	}
	token := crypto.DeriveUnlockToken(secret, s.UserID, expMillis)
	clear(secret)
	defer clear(token)

	salt, err := crypto.RandomBytes(crypto.SaltLen)
	if err != nil {
		return nil, err
	}
	key, err := crypto.TokenSealingKey(token, salt, s.UserID)
	if err != nil {
		return nil, err
	}
	defer clear(key)

	nonce, cipherText, err := crypto.Seal(key, snapshot, autoUnlockAAD(s.UserID, expMillis))
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(&model.AutoUnlockRecord{
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		CipherText: base64.StdEncoding.EncodeToString(cipherText),
		ExpiresAt:  expMillis,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode auto-unlock record")
	}

	if ts, ok := v.side.(ttlSetter); ok {
		err = ts.SetWithTTL(ctx, autoUnlockKey(s.UserID), data, ttl)
	} else {
		err = v.side.Set(ctx, autoUnlockKey(s.UserID), data)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to store auto-unlock record")
	}

	log.Info().Str("user", s.UserID).Time("expires_at", expiresAt).Msg("Auto-unlock armed")
	return &model.UnlockToken{
		Token:     base64.RawURLEncoding.EncodeToString(token),
		ExpiresAt: time.UnixMilli(expMillis),
	}, nil
}

// UnlockWithToken restores the session sealed by IssueAutoUnlockToken. The
// side record is consumed by the attempt whether it succeeds or not.
func (v *Vault) UnlockWithToken(ctx context.Context, userID, token string) (*Session, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	s, err := v.unlockWithToken(ctx, userID, token)
	if err != nil {
		metrics.VaultUnlocks.WithLabelValues("token", metrics.ResultError).Inc()
		return nil, err
	}
	metrics.VaultUnlocks.WithLabelValues("token", metrics.ResultOK).Inc()

	v.setActive(s)
	log.Info().Str("user", userID).Str("session", s.ID).Msg("Vault unlocked with auto-unlock token")
	return s, nil
}

func (v *Vault) unlockWithToken(ctx context.Context, userID, token string) (*Session, error) {
	key := autoUnlockKey(userID)
	data, err := v.side.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, model.NewAuthError(model.ErrTokenInvalid)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read auto-unlock record")
	}
	if err := v.side.Remove(ctx, key); err != nil {
		return nil, errors.Wrap(err, "failed to consume auto-unlock record")
	}

	var record model.AutoUnlockRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, model.NewAuthError(model.ErrTokenInvalid)
	}

	// checked at use time, never cached
	if !v.clock.Now().Before(time.UnixMilli(record.ExpiresAt)) {
		return nil, model.NewAuthError(model.ErrTokenExpired)
	}

	rawToken, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil || len(rawToken) != crypto.TokenLen {
		return nil, model.NewAuthError(model.ErrTokenInvalid)
	}
	defer clear(rawToken)

	salt, nonce, cipherText, err := decodeSealed(record.Salt, record.Nonce, record.CipherText)
	if err != nil {
		return nil, model.NewAuthError(model.ErrTokenInvalid)
	}

	sealKey, err := crypto.TokenSealingKey(rawToken, salt, userID)
	if err != nil {
		return nil, err
	}
	defer clear(sealKey)

	plaintext, err := crypto.Open(sealKey, nonce, cipherText, autoUnlockAAD(userID, record.ExpiresAt))
	if err != nil {
		return nil, model.NewAuthError(model.ErrTokenInvalid)
	}
	defer clear(plaintext)

	state, err := decodeState(plaintext)
	if err != nil {
		return nil, err
	}

	s := newSession(userID, state)
	s.tokenDerived = true
	return s, nil
}
