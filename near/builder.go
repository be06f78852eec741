// Package near builds, signs and submits NEAR transactions for accounts held
// in an unlocked vault session.
package near

import (
	"context"
	"sync"

	"github.com/AlexZinkM/narwallet/internal/client"
	"github.com/AlexZinkM/narwallet/internal/common"
	"github.com/AlexZinkM/narwallet/internal/keys"
	"github.com/AlexZinkM/narwallet/internal/model"
	"github.com/AlexZinkM/narwallet/internal/tx"
	"github.com/AlexZinkM/narwallet/internal/vault"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// AccessKeyQuerier is the part of the ledger client the builder needs
type AccessKeyQuerier interface {
	QueryAccessKey(ctx context.Context, accountID string, publicKey keys.PublicKey) (*client.AccessKeyInfo, error)
}

// Builder turns actions into signed transactions. It queries the access key
// on every build and remembers the last nonce it used per key, so serial or
// concurrent builds against the same remote nonce never repeat one.
type Builder struct {
	ledger  AccessKeyQuerier
	network string

	mu        sync.Mutex
	lastNonce map[string]uint64 // signer/public key -> last nonce handed out
}

// NewBuilder creates a builder signing for accounts of network
func NewBuilder(ledger AccessKeyQuerier, network string) *Builder {
	return &Builder{
		ledger:    ledger,
		network:   network,
		lastNonce: make(map[string]uint64),
	}
}

// BuildAndSign signs a transaction from signerID to receiverID. The signer's
// private key is copied out of the session for the duration of the call only.
func (b *Builder) BuildAndSign(ctx context.Context, s *vault.Session, signerID, receiverID string, actions []tx.Action) (*tx.SignedTransaction, error) {
	if err := common.ValidateAccountID("signer", signerID); err != nil {
		return nil, err
	}
	if err := common.ValidateAccountID("receiver", receiverID); err != nil {
		return nil, err
	}
	if len(actions) == 0 {
		return nil, model.NewValidationError("actions", "at least one action is required")
	}

	signer, err := s.Account(b.network, signerID)
	if err != nil {
		return nil, err
	}
	if signer.Kind != model.AccountKindFullAccess {
		return nil, model.NewAuthError(model.ErrReadOnlyAccount)
	}
	publicKey, err := keys.ParsePublicKey(signer.PublicKey)
	if err != nil {
		return nil, errors.Wrapf(err, "stored key of %s is corrupt", signerID)
	}

	info, err := b.ledger.QueryAccessKey(ctx, signerID, publicKey)
	if err != nil {
		return nil, err
	}
	if !info.Permission.FullAccess {
		return nil, model.NewAuthError(errors.Wrapf(model.ErrNotFullAccess, "account %s", signerID))
	}

	blockHash, err := info.BlockHashBytes()
	if err != nil {
		return nil, &model.ProtocolError{Op: "access_key", Err: err}
	}

	// the private key is copied out only after the network round trip
	kp, err := s.KeyPair(b.network, signerID)
	if err != nil {
		return nil, err
	}
	defer kp.Zero()

	nonce := b.nextNonce(signerID, publicKey, info.Nonce)
	signed, err := tx.Sign(&tx.Transaction{
		SignerID:   signerID,
		PublicKey:  publicKey,
		Nonce:      nonce,
		ReceiverID: receiverID,
		BlockHash:  blockHash,
		Actions:    actions,
	}, kp)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("signer", signerID).
		Str("receiver", receiverID).
		Uint64("nonce", nonce).
		Int("actions", len(actions)).
		Msg("Transaction signed")
	return signed, nil
}

// nextNonce returns max(remote, last used) + 1 and records it
func (b *Builder) nextNonce(signerID string, publicKey keys.PublicKey, remote uint64) uint64 {
	key := signerID + "/" + publicKey.String()

	b.mu.Lock()
	defer b.mu.Unlock()

	nonce := remote
	if last := b.lastNonce[key]; last > nonce {
		nonce = last
	}
	nonce++
	b.lastNonce[key] = nonce
	return nonce
}
