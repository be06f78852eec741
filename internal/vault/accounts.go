package vault

import (
	"github.com/AlexZinkM/narwallet/internal/common"
	"github.com/AlexZinkM/narwallet/internal/keys"
	"github.com/AlexZinkM/narwallet/internal/model"
)

// AddAccount stores kp as the full-access key of accountID on network.
// Re-adding an existing account replaces its key and keeps its position.
func (v *Vault) AddAccount(s *Session, network, accountID string, kp *keys.KeyPair) (model.Account, error) {
	if err := common.ValidateAccountID("account", accountID); err != nil {
		return model.Account{}, err
	}

	var added model.Account
	err := v.Mutate(s, func(state *model.SecureState) error {
		acc := putAccount(state, network, accountID)
		acc.Wipe()
		acc.Kind = model.AccountKindFullAccess
		acc.PublicKey = kp.PublicKey().String()
		acc.PrivateKey = kp.Bytes()
		added = acc.Public()
		return nil
	})
	return added, err
}

// AddReadOnlyAccount tracks accountID without any key
func (v *Vault) AddReadOnlyAccount(s *Session, network, accountID string) (model.Account, error) {
	if err := common.ValidateAccountID("account", accountID); err != nil {
		return model.Account{}, err
	}

	var added model.Account
	err := v.Mutate(s, func(state *model.SecureState) error {
		if existing, ok := state.Accounts[network][accountID]; ok && existing.Kind == model.AccountKindFullAccess {
			return model.NewValidationError("account", accountID+" already has a full-access key")
		}
		acc := putAccount(state, network, accountID)
		acc.Kind = model.AccountKindReadOnly
		added = acc.Public()
		return nil
	})
	return added, err
}

// ImportAccount adds an account from an "ed25519:..." private key. An empty
// accountID imports the implicit account of the key.
func (v *Vault) ImportAccount(s *Session, network, accountID, privateKey string) (model.Account, error) {
	kp, err := keys.FromString(privateKey)
	if err != nil {
		return model.Account{}, model.NewValidationError("privateKey", err.Error())
	}
	defer kp.Zero()
	return v.AddAccount(s, network, implicitIfEmpty(accountID, kp), kp)
}

// ImportFromSeedPhrase adds an account from a BIP-39 phrase using the NEAR
// derivation path
func (v *Vault) ImportFromSeedPhrase(s *Session, network, accountID, phrase string) (model.Account, error) {
	kp, err := keys.FromSeedPhrase(phrase, keys.DefaultDerivationPath)
	if err != nil {
		return model.Account{}, model.NewValidationError("seedPhrase", err.Error())
	}
	defer kp.Zero()
	return v.AddAccount(s, network, implicitIfEmpty(accountID, kp), kp)
}

// RemoveAccount deletes an account and wipes its key
func (v *Vault) RemoveAccount(s *Session, network, accountID string) error {
	return v.Mutate(s, func(state *model.SecureState) error {
		acc, ok := state.Accounts[network][accountID]
		if !ok {
			return model.NewValidationError("account", accountID+" is not in the wallet")
		}
		acc.Wipe()
		delete(state.Accounts[network], accountID)
		return nil
	})
}

// Reorder puts accountIDs first, in the given order, and renumbers every
// account of network from 1. Accounts not listed keep their relative order.
func (v *Vault) Reorder(s *Session, network string, accountIDs []string) error {
	return v.Mutate(s, func(state *model.SecureState) error {
		byID := state.Accounts[network]
		seen := make(map[string]bool, len(accountIDs))
		ordered := make([]*model.Account, 0, len(byID))
		for _, id := range accountIDs {
			acc, ok := byID[id]
			if !ok {
				return model.NewValidationError("account", id+" is not in the wallet")
			}
			if seen[id] {
				return model.NewValidationError("account", id+" is listed twice")
			}
			seen[id] = true
			ordered = append(ordered, acc)
		}
		for _, acc := range state.NetworkAccounts(network) {
			if !seen[acc.ID] {
				ordered = append(ordered, acc)
			}
		}
		for i, acc := range ordered {
			acc.Order = i + 1
		}
		return nil
	})
}

// SetOptions replaces the user's preferences. A zero AutoUnlockSeconds
// falls back to the server default.
func (v *Vault) SetOptions(s *Session, opts model.Options) error {
	if !common.IsValidAccountID(opts.Network) {
		return model.NewValidationError("network", "must be a network name such as mainnet")
	}
	if opts.AutoUnlockSeconds < 0 {
		return model.NewValidationError("autoUnlockSeconds", "cannot be negative")
	}
	return v.Mutate(s, func(state *model.SecureState) error {
		state.InitialNetwork = opts.Network
		state.AutoUnlockSeconds = opts.AutoUnlockSeconds
		state.AdvancedMode = opts.AdvancedMode
		return nil
	})
}

// putAccount returns the existing account or appends a new one at the end
func putAccount(state *model.SecureState, network, accountID string) *model.Account {
	byID, ok := state.Accounts[network]
	if !ok {
		byID = make(map[string]*model.Account)
		state.Accounts[network] = byID
	}
	if acc, ok := byID[accountID]; ok {
		return acc
	}

	maxOrder := 0
	for _, acc := range byID {
		if acc.Order > maxOrder {
			maxOrder = acc.Order
		}
	}
	acc := &model.Account{ID: accountID, Network: network, Order: maxOrder + 1}
	byID[accountID] = acc
	return acc
}

func implicitIfEmpty(accountID string, kp *keys.KeyPair) string {
	if accountID == "" {
		return kp.PublicKey().ImplicitAccountID()
	}
	return accountID
}
