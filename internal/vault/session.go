package vault

import (
	"sync"
	"time"

	"github.com/AlexZinkM/narwallet/internal/keys"
	"github.com/AlexZinkM/narwallet/internal/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Session is an unlocked vault. It is passed explicitly to every operation
// that needs decrypted key material and is useless once locked.
type Session struct {
	ID     string
	UserID string

	mu    sync.RWMutex
	state *model.SecureState
	key   []byte // nil when restored from an auto-unlock token
	salt  []byte
	kdf   model.KDFParams

	tokenDerived bool
	dirty        bool
	closed       bool
	lastUsed     time.Time
}

func newSession(userID string, state *model.SecureState) *Session {
	return &Session{
		ID:     uuid.NewString(),
		UserID: userID,
		state:  state,
	}
}

// TokenDerived reports whether the session was restored from an auto-unlock
// token. Such sessions cannot persist changes.
func (s *Session) TokenDerived() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokenDerived
}

// Dirty reports whether the state changed since the last save
func (s *Session) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Closed reports whether the session was locked
func (s *Session) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Options returns the user's preferences
func (s *Session) Options() (model.Options, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return model.Options{}, model.NewAuthError(model.ErrLocked)
	}
	return model.Options{
		Network:           s.state.InitialNetwork,
		AutoUnlockSeconds: s.state.AutoUnlockSeconds,
		AdvancedMode:      s.state.AdvancedMode,
	}, nil
}

// Accounts returns the accounts of network in display order, without private keys
func (s *Session) Accounts(network string) ([]model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, model.NewAuthError(model.ErrLocked)
	}

	list := s.state.NetworkAccounts(network)
	out := make([]model.Account, len(list))
	for i, acc := range list {
		out[i] = acc.Public()
	}
	return out, nil
}

// Account returns one account without its private key
func (s *Session) Account(network, accountID string) (model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, err := s.account(network, accountID)
	if err != nil {
		return model.Account{}, err
	}
	return acc.Public(), nil
}

// KeyPair returns a copy of the account's signing key. Caller must Zero it.
func (s *Session) KeyPair(network, accountID string) (*keys.KeyPair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, err := s.account(network, accountID)
	if err != nil {
		return nil, err
	}
	if acc.Kind != model.AccountKindFullAccess || len(acc.PrivateKey) == 0 {
		return nil, model.NewAuthError(model.ErrReadOnlyAccount)
	}
	kp, err := keys.FromBytes(acc.PrivateKey)
	if err != nil {
		return nil, errors.Wrapf(err, "stored key of %s is corrupt", accountID)
	}
	return kp, nil
}

func (s *Session) account(network, accountID string) (*model.Account, error) {
	if s.closed {
		return nil, model.NewAuthError(model.ErrLocked)
	}
	acc, ok := s.state.Accounts[network][accountID]
	if !ok {
		return nil, model.NewValidationError("account", accountID+" is not in the wallet")
	}
	return acc, nil
}

func (s *Session) checkOpen() error {
	if s.closed {
		return model.NewAuthError(model.ErrLocked)
	}
	return nil
}

// checkPasswordSession allows only open sessions unlocked with the password
func (s *Session) checkPasswordSession() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	if s.tokenDerived {
		return model.NewAuthError(model.ErrPasswordRequired)
	}
	return nil
}

func (s *Session) setKey(key, salt []byte, kdf model.KDFParams) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.key)
	s.key, s.salt, s.kdf = key, salt, kdf
}

func (s *Session) markClean() {
	s.mu.Lock()
	s.dirty = false
	s.mu.Unlock()
}

// close wipes everything secret
func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != nil {
		s.state.Wipe()
		s.state = nil
	}
	clear(s.key)
	s.key = nil
	s.closed = true
}

// Mutate applies fn to a copy of the session state and keeps the copy only
// when fn succeeds. The state is then dirty until the next Save.
func (v *Vault) Mutate(s *Session, fn func(state *model.SecureState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(); err != nil {
		return err
	}

	next := cloneState(s.state)
	if err := fn(next); err != nil {
		next.Wipe()
		return err
	}

	s.state.Wipe()
	s.state = next
	s.dirty = true
	return nil
}

func cloneState(src *model.SecureState) *model.SecureState {
	dst := *src
	dst.Accounts = make(map[string]map[string]*model.Account, len(src.Accounts))
	for network, byID := range src.Accounts {
		m := make(map[string]*model.Account, len(byID))
		for id, acc := range byID {
			cp := *acc
			if acc.PrivateKey != nil {
				cp.PrivateKey = append([]byte(nil), acc.PrivateKey...)
			}
			m[id] = &cp
		}
		dst.Accounts[network] = m
	}
	return &dst
}
