// Package vault keeps the user's accounts encrypted at rest and hands out
// unlocked sessions. At most one session is unlocked at a time.
package vault

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"sync"
	"time"

	"github.com/AlexZinkM/narwallet/internal/common"
	"github.com/AlexZinkM/narwallet/internal/crypto"
	"github.com/AlexZinkM/narwallet/internal/metrics"
	"github.com/AlexZinkM/narwallet/internal/model"
	"github.com/AlexZinkM/narwallet/internal/storage"

	"github.com/dropbox/godropbox/time2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	// DataVersion is the schema of the persisted index and records. Any other
	// version found on load resets the storage.
	DataVersion = 2

	recordVersion = 1
	indexKey      = "index"
)

func vaultKey(userID string) string      { return "vault/" + userID }
func autoUnlockKey(userID string) string { return "autounlock/" + userID }

// State is the lifecycle state of the vault
type State string

const (
	StateUninitialized State = "uninitialized"
	StateLocked        State = "locked"
	StateUnlocked      State = "unlocked"
)

// Vault is the encrypted account store. It is safe for concurrent use.
type Vault struct {
	store   storage.Store
	side    storage.Store // auto-unlock records, defaults to store
	clock   time2.Clock
	kdf     model.KDFParams
	network string

	mu     sync.Mutex
	active *Session
}

// Option configures a Vault
type Option func(*Vault)

// WithClock sets the clock auto-unlock expiry is checked against
func WithClock(clock time2.Clock) Option {
	return func(v *Vault) { v.clock = clock }
}

// WithKDFParams overrides the scrypt parameters of newly sealed records
func WithKDFParams(params model.KDFParams) Option {
	return func(v *Vault) { v.kdf = params }
}

// WithSideStore keeps auto-unlock records in a separate store
func WithSideStore(side storage.Store) Option {
	return func(v *Vault) { v.side = side }
}

// WithNetwork sets the initial network of newly created users
func WithNetwork(network string) Option {
	return func(v *Vault) { v.network = network }
}

// New creates a vault persisting into store
func New(store storage.Store, opts ...Option) *Vault {
	v := &Vault{
		store:   store,
		clock:   time2.DefaultClock,
		kdf:     crypto.DefaultKDFParams(),
		network: "mainnet",
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.side == nil {
		v.side = store
	}
	return v
}

// Load reads the user index. A missing index is an empty one; an index of
// another DataVersion is discarded together with the records it lists.
func (v *Vault) Load(ctx context.Context) (*model.VaultIndex, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loadIndex(ctx)
}

func (v *Vault) loadIndex(ctx context.Context) (*model.VaultIndex, error) {
	data, err := v.store.Get(ctx, indexKey)
	if errors.Is(err, storage.ErrNotFound) {
		return &model.VaultIndex{DataVersion: DataVersion}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read vault index")
	}

	var index model.VaultIndex
	if err := json.Unmarshal(data, &index); err != nil || index.DataVersion != DataVersion {
		log.Warn().
			Int("found_version", index.DataVersion).
			Int("expected_version", DataVersion).
			Msg("Vault data version mismatch, resetting storage")
		return v.reset(ctx, &index)
	}
	return &index, nil
}

// reset removes everything old lists and writes a fresh index
func (v *Vault) reset(ctx context.Context, old *model.VaultIndex) (*model.VaultIndex, error) {
	for _, user := range old.Users {
		if err := v.store.Remove(ctx, vaultKey(user)); err != nil {
			return nil, errors.Wrapf(err, "failed to remove vault of %s", user)
		}
		if err := v.side.Remove(ctx, autoUnlockKey(user)); err != nil {
			return nil, errors.Wrapf(err, "failed to remove auto-unlock record of %s", user)
		}
	}
	fresh := &model.VaultIndex{DataVersion: DataVersion}
	if err := v.saveIndex(ctx, fresh); err != nil {
		return nil, err
	}
	return fresh, nil
}

func (v *Vault) saveIndex(ctx context.Context, index *model.VaultIndex) error {
	data, err := json.Marshal(index)
	if err != nil {
		return errors.Wrap(err, "failed to encode vault index")
	}
	if err := v.store.Set(ctx, indexKey, data); err != nil {
		return errors.Wrap(err, "failed to write vault index")
	}
	return nil
}

// State reports the lifecycle state of the vault
func (v *Vault) State(ctx context.Context) (State, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.active != nil {
		return StateUnlocked, nil
	}
	index, err := v.loadIndex(ctx)
	if err != nil {
		return "", err
	}
	if len(index.Users) == 0 {
		return StateUninitialized, nil
	}
	return StateLocked, nil
}

// Active returns the unlocked session, if any
func (v *Vault) Active() *Session {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.active
}

// Create registers userID, derives its key from password and returns the
// unlocked session of the new, empty vault.
func (v *Vault) Create(ctx context.Context, userID string, password []byte) (*Session, error) {
	if !common.IsValidEmail(userID) {
		return nil, model.NewValidationError("user", "must be an email address")
	}
	if err := common.ValidatePassword(password); err != nil {
		return nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	index, err := v.loadIndex(ctx)
	if err != nil {
		return nil, err
	}
	if index.HasUser(userID) {
		return nil, model.NewValidationError("user", "already exists")
	}

	salt, err := crypto.RandomBytes(crypto.SaltLen)
	if err != nil {
		return nil, err
	}
	key, err := crypto.DeriveKey(password, salt, v.kdf)
	if err != nil {
		return nil, err
	}

	s := newSession(userID, model.NewSecureState(v.network))
	s.key, s.salt, s.kdf = key, salt, v.kdf
	if err := v.writeRecord(ctx, s); err != nil {
		s.close()
		return nil, err
	}

	index.Users = append(index.Users, userID)
	index.CurrentUser = userID
	if err := v.saveIndex(ctx, index); err != nil {
		s.close()
		return nil, err
	}

	v.setActive(s)
	log.Info().Str("user", userID).Msg("Vault created")
	return s, nil
}

// Unlock decrypts userID's vault with password. A wrong password fails with
// AuthError and reveals nothing of the vault.
func (v *Vault) Unlock(ctx context.Context, userID string, password []byte) (*Session, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	// a version reset empties the index, so the record is never read after it
	index, err := v.loadIndex(ctx)
	if err != nil {
		return nil, err
	}
	if !index.HasUser(userID) {
		metrics.VaultUnlocks.WithLabelValues("password", metrics.ResultError).Inc()
		return nil, model.NewValidationError("user", "unknown user "+userID)
	}

	s, err := v.unlock(ctx, userID, password)
	if err != nil {
		metrics.VaultUnlocks.WithLabelValues("password", metrics.ResultError).Inc()
		return nil, err
	}
	metrics.VaultUnlocks.WithLabelValues("password", metrics.ResultOK).Inc()

	if index.CurrentUser != userID {
		index.CurrentUser = userID
		if err := v.saveIndex(ctx, index); err != nil {
			s.close()
			return nil, err
		}
	}
	v.setActive(s)
	log.Info().Str("user", userID).Str("session", s.ID).Msg("Vault unlocked")
	return s, nil
}

func (v *Vault) unlock(ctx context.Context, userID string, password []byte) (*Session, error) {
	record, err := v.readRecord(ctx, userID)
	if err != nil {
		return nil, err
	}

	salt, nonce, cipherText, err := decodeSealed(record.Salt, record.Nonce, record.CipherText)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode vault record")
	}

	key, err := crypto.DeriveKey(password, salt, record.KDF)
	if err != nil {
		return nil, err
	}

	plaintext, err := crypto.Open(key, nonce, cipherText, []byte(vaultKey(userID)))
	if err != nil {
		clear(key)
		return nil, model.NewAuthError(model.ErrInvalidPassword)
	}
	defer clear(plaintext)

	state, err := decodeState(plaintext)
	if err != nil {
		clear(key)
		return nil, err
	}

	s := newSession(userID, state)
	s.key, s.salt, s.kdf = key, salt, record.KDF
	return s, nil
}

// Lock wipes the session's key and accounts and disarms the user's auto-unlock token
func (v *Vault) Lock(ctx context.Context, s *Session) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lock(ctx, s)
}

// Close wipes the session like Lock but leaves an armed auto-unlock token in
// place, so the user can come back with it until it expires.
func (v *Vault) Close(s *Session) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.release(s)
	log.Info().Str("user", s.UserID).Str("session", s.ID).Msg("Vault session closed")
}

// Disarm removes the auto-unlock token of the current user. It is the explicit
// lock for a vault whose session was already closed.
func (v *Vault) Disarm(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	index, err := v.loadIndex(ctx)
	if err != nil {
		return err
	}
	if index.CurrentUser == "" {
		return nil
	}
	if err := v.side.Remove(ctx, autoUnlockKey(index.CurrentUser)); err != nil {
		return errors.Wrap(err, "failed to disarm auto-unlock token")
	}
	log.Info().Str("user", index.CurrentUser).Msg("Auto-unlock disarmed")
	return nil
}

// Touch records activity on s, postponing LockIdle
func (v *Vault) Touch(s *Session) {
	now := v.clock.Now()
	s.mu.Lock()
	s.lastUsed = now
	s.mu.Unlock()
}

// LockIdle closes the active session when it saw no activity for idle. An
// armed auto-unlock token survives. It reports whether a session was closed.
func (v *Vault) LockIdle(idle time.Duration) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	s := v.active
	if s == nil || idle <= 0 {
		return false
	}
	s.mu.RLock()
	lastUsed := s.lastUsed
	s.mu.RUnlock()
	if v.clock.Now().Sub(lastUsed) < idle {
		return false
	}

	log.Info().Str("user", s.UserID).Dur("idle", idle).Msg("Locking idle vault")
	v.release(s)
	return true
}

// release closes s without touching its auto-unlock record
func (v *Vault) release(s *Session) {
	s.close()
	if v.active == s {
		v.active = nil
	}
}

// lock closes s and disarms any token of its user, including one armed by an
// earlier session that was closed
func (v *Vault) lock(ctx context.Context, s *Session) error {
	v.release(s)
	if err := v.side.Remove(ctx, autoUnlockKey(s.UserID)); err != nil {
		return errors.Wrap(err, "failed to disarm auto-unlock token")
	}
	log.Info().Str("user", s.UserID).Str("session", s.ID).Msg("Vault locked")
	return nil
}

// Save seals the session state under a fresh nonce and persists it in one write
func (v *Vault) Save(ctx context.Context, s *Session) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := s.checkPasswordSession(); err != nil {
		return err
	}
	if err := v.writeRecord(ctx, s); err != nil {
		return err
	}
	s.markClean()
	return nil
}

// ChangePassword re-derives the key from newPassword with a new salt and re-seals
func (v *Vault) ChangePassword(ctx context.Context, s *Session, newPassword []byte) error {
	if err := common.ValidatePassword(newPassword); err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if err := s.checkPasswordSession(); err != nil {
		return err
	}

	salt, err := crypto.RandomBytes(crypto.SaltLen)
	if err != nil {
		return err
	}
	key, err := crypto.DeriveKey(newPassword, salt, v.kdf)
	if err != nil {
		return err
	}

	if err := v.sealRecord(ctx, s, key, salt, v.kdf); err != nil {
		clear(key)
		return err
	}
	s.setKey(key, salt, v.kdf)
	s.markClean()
	log.Info().Str("user", s.UserID).Msg("Vault password changed")
	return nil
}

// setActive makes s the only unlocked session
func (v *Vault) setActive(s *Session) {
	if v.active != nil && v.active != s {
		v.active.close()
	}
	s.mu.Lock()
	s.lastUsed = v.clock.Now()
	s.mu.Unlock()
	v.active = s
}

func (v *Vault) readRecord(ctx context.Context, userID string) (*model.VaultRecord, error) {
	data, err := v.store.Get(ctx, vaultKey(userID))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, model.NewValidationError("user", "unknown user "+userID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read vault record")
	}

	var record model.VaultRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, errors.Wrap(err, "failed to decode vault record")
	}
	if record.Version != recordVersion {
		return nil, errors.Errorf("unsupported vault record version %d", record.Version)
	}
	return &record, nil
}

// writeRecord seals the session state under the session key
func (v *Vault) writeRecord(ctx context.Context, s *Session) error {
	s.mu.RLock()
	key, salt, kdf := s.key, s.salt, s.kdf
	s.mu.RUnlock()
	return v.sealRecord(ctx, s, key, salt, kdf)
}

// sealRecord seals the session state with key and stores it under vault/<user>
func (v *Vault) sealRecord(ctx context.Context, s *Session, key, salt []byte, kdf model.KDFParams) error {
	s.mu.RLock()
	plaintext, err := json.Marshal(s.state)
	s.mu.RUnlock()
	if err != nil {
		return errors.Wrap(err, "failed to encode vault state")
	}
	defer clear(plaintext)

	nonce, cipherText, err := crypto.Seal(key, plaintext, []byte(vaultKey(s.UserID)))
	if err != nil {
		return err
	}

	data, err := json.Marshal(&model.VaultRecord{
		Version:    recordVersion,
		KDF:        kdf,
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		CipherText: base64.StdEncoding.EncodeToString(cipherText),
	})
	if err != nil {
		return errors.Wrap(err, "failed to encode vault record")
	}
	if err := v.store.Set(ctx, vaultKey(s.UserID), data); err != nil {
		return errors.Wrap(err, "failed to write vault record")
	}
	return nil
}

func decodeSealed(salt, nonce, cipherText string) ([]byte, []byte, []byte, error) {
	s, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "salt")
	}
	n, err := base64.StdEncoding.DecodeString(nonce)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "nonce")
	}
	c, err := base64.StdEncoding.DecodeString(cipherText)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "cipher text")
	}
	return s, n, c, nil
}

func decodeState(plaintext []byte) (*model.SecureState, error) {
	var state model.SecureState
	if err := json.Unmarshal(plaintext, &state); err != nil {
		return nil, errors.Wrap(err, "failed to decode vault state")
	}
	if state.Accounts == nil {
		state.Accounts = make(map[string]map[string]*model.Account)
	}
	return &state, nil
}
