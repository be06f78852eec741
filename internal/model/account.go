package model

import "sort"

// AccountKind tells what the wallet can do with an account
type AccountKind string

const (
	AccountKindFullAccess AccountKind = "full-access"
	AccountKindReadOnly   AccountKind = "read-only"
)

// Account is one NEAR account held in the vault. Identity is (Network, ID).
type Account struct {
	ID         string      `json:"id"`
	Network    string      `json:"network"`
	Kind       AccountKind `json:"kind"`
	PublicKey  string      `json:"publicKey,omitempty"`  // ed25519:<base58>
	PrivateKey []byte      `json:"privateKey,omitempty"` // 64 bytes (stored as base64 in JSON)
	Order      int         `json:"order"`
}

// Public returns a copy of the account without private key material.
func (a *Account) Public() Account {
	out := *a
	out.PrivateKey = nil
	return out
}

// Wipe zeroes the private key in place.
func (a *Account) Wipe() {
	clear(a.PrivateKey)
	a.PrivateKey = nil
}

// SecureState is the decrypted content of a user's vault.
type SecureState struct {
	Accounts          map[string]map[string]*Account `json:"accounts"` // network -> account id -> account
	InitialNetwork    string                         `json:"initialNetwork"`
	AutoUnlockSeconds int                            `json:"autoUnlockSeconds"`
	AdvancedMode      bool                           `json:"advancedMode"`
}

// Options are the user's non-secret preferences kept inside SecureState
type Options struct {
	Network           string `json:"network"`
	AutoUnlockSeconds int    `json:"autoUnlockSeconds"`
	AdvancedMode      bool   `json:"advancedMode"`
}

// NewSecureState returns an empty state for a freshly created user.
func NewSecureState(network string) *SecureState {
	return &SecureState{
		Accounts:       make(map[string]map[string]*Account),
		InitialNetwork: network,
	}
}

// NetworkAccounts returns the accounts of network sorted by display order.
func (s *SecureState) NetworkAccounts(network string) []*Account {
	accounts := make([]*Account, 0, len(s.Accounts[network]))
	for _, acc := range s.Accounts[network] {
		accounts = append(accounts, acc)
	}
	sort.Slice(accounts, func(i, j int) bool {
		if accounts[i].Order == accounts[j].Order {
			return accounts[i].ID < accounts[j].ID
		}
		return accounts[i].Order < accounts[j].Order
	})
	return accounts
}

// Wipe zeroes every private key and drops all accounts.
func (s *SecureState) Wipe() {
	for _, byID := range s.Accounts {
		for _, acc := range byID {
			acc.Wipe()
		}
	}
	s.Accounts = nil
}
