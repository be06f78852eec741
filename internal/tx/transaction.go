// Package tx builds the borsh wire form of NEAR transactions and signs them.
package tx

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"

	"github.com/AlexZinkM/narwallet/internal/keys"

	bin "github.com/gagliardetto/binary"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

// Transaction is the unsigned transaction. Field order is the wire order.
type Transaction struct {
	SignerID   string
	PublicKey  keys.PublicKey
	Nonce      uint64
	ReceiverID string
	BlockHash  [32]byte
	Actions    []Action
}

// Signature is an ed25519 signature over sha256(borsh(Transaction))
type Signature struct {
	KeyType uint8
	Data    [64]byte
}

// SignedTransaction is what broadcast_tx_commit accepts
type SignedTransaction struct {
	Transaction Transaction
	Signature   Signature
}

func (t *Transaction) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := writeString(enc, t.SignerID); err != nil {
		return err
	}
	if err := enc.WriteUint8(keys.KeyTypeED25519); err != nil {
		return err
	}
	if err := writeFixed(enc, t.PublicKey[:]); err != nil {
		return err
	}
	if err := enc.WriteUint64(t.Nonce, binary.LittleEndian); err != nil {
		return err
	}
	if err := writeString(enc, t.ReceiverID); err != nil {
		return err
	}
	if err := writeFixed(enc, t.BlockHash[:]); err != nil {
		return err
	}
	if err := enc.WriteUint32(uint32(len(t.Actions)), binary.LittleEndian); err != nil {
		return err
	}
	for i, a := range t.Actions {
		if err := encodeAction(enc, a); err != nil {
			return errors.Wrapf(err, "action %d", i)
		}
	}
	return nil
}

func (t *Transaction) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if t.SignerID, err = readString(dec); err != nil {
		return errors.Wrap(err, "signer id")
	}
	keyType, err := dec.ReadUint8()
	if err != nil {
		return err
	}
	if keyType != keys.KeyTypeED25519 {
		return errors.Errorf("unsupported key type %d", keyType)
	}
	if err = readFixed(dec, t.PublicKey[:]); err != nil {
		return errors.Wrap(err, "public key")
	}
	if t.Nonce, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return errors.Wrap(err, "nonce")
	}
	if t.ReceiverID, err = readString(dec); err != nil {
		return errors.Wrap(err, "receiver id")
	}
	if err = readFixed(dec, t.BlockHash[:]); err != nil {
		return errors.Wrap(err, "block hash")
	}
	n, err := dec.ReadUint32(binary.LittleEndian)
	if err != nil {
		return errors.Wrap(err, "action count")
	}
	// every action is at least its tag byte
	if int(n) > dec.Remaining() {
		return errors.Errorf("action count %d exceeds remaining bytes", n)
	}
	t.Actions = make([]Action, 0, n)
	for i := uint32(0); i < n; i++ {
		a, err := decodeAction(dec)
		if err != nil {
			return errors.Wrapf(err, "action %d", i)
		}
		t.Actions = append(t.Actions, a)
	}
	return nil
}

// Encode returns the borsh bytes of the transaction. The same transaction
// always yields the same bytes.
func (t *Transaction) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := t.MarshalWithEncoder(bin.NewBorshEncoder(&buf)); err != nil {
		return nil, errors.Wrap(err, "failed to serialize transaction")
	}
	return buf.Bytes(), nil
}

// Hash returns sha256 of the encoded transaction
func (t *Transaction) Hash() ([32]byte, error) {
	data, err := t.Encode()
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(data), nil
}

// DecodeTransaction parses the output of Transaction.Encode
func DecodeTransaction(data []byte) (*Transaction, error) {
	dec := bin.NewBorshDecoder(data)
	t := new(Transaction)
	if err := t.UnmarshalWithDecoder(dec); err != nil {
		return nil, errors.Wrap(err, "failed to decode transaction")
	}
	if dec.Remaining() != 0 {
		return nil, errors.Errorf("%d trailing bytes after transaction", dec.Remaining())
	}
	return t, nil
}

func (st *SignedTransaction) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := st.Transaction.MarshalWithEncoder(enc); err != nil {
		return err
	}
	if err := enc.WriteUint8(st.Signature.KeyType); err != nil {
		return err
	}
	return writeFixed(enc, st.Signature.Data[:])
}

func (st *SignedTransaction) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if err = st.Transaction.UnmarshalWithDecoder(dec); err != nil {
		return err
	}
	if st.Signature.KeyType, err = dec.ReadUint8(); err != nil {
		return errors.Wrap(err, "signature key type")
	}
	return readFixed(dec, st.Signature.Data[:])
}

// Encode returns the borsh bytes of the signed transaction
func (st *SignedTransaction) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := st.MarshalWithEncoder(bin.NewBorshEncoder(&buf)); err != nil {
		return nil, errors.Wrap(err, "failed to serialize signed transaction")
	}
	return buf.Bytes(), nil
}

// Base64 returns the encoded signed transaction as broadcast_tx_commit expects it
func (st *SignedTransaction) Base64() (string, error) {
	data, err := st.Encode()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DecodeSignedTransaction parses the output of SignedTransaction.Encode
func DecodeSignedTransaction(data []byte) (*SignedTransaction, error) {
	dec := bin.NewBorshDecoder(data)
	st := new(SignedTransaction)
	if err := st.UnmarshalWithDecoder(dec); err != nil {
		return nil, errors.Wrap(err, "failed to decode signed transaction")
	}
	if dec.Remaining() != 0 {
		return nil, errors.Errorf("%d trailing bytes after signed transaction", dec.Remaining())
	}
	return st, nil
}

// Hash returns the base58 transaction hash the explorer shows
func (st *SignedTransaction) Hash() (string, error) {
	h, err := st.Transaction.Hash()
	if err != nil {
		return "", err
	}
	return base58.Encode(h[:]), nil
}

// Verify checks the signature against the transaction's public key
func (st *SignedTransaction) Verify() bool {
	h, err := st.Transaction.Hash()
	if err != nil {
		return false
	}
	return st.Transaction.PublicKey.Verify(h[:], st.Signature.Data[:])
}

// Sign hashes the encoded transaction and signs the hash with kp
func Sign(t *Transaction, kp *keys.KeyPair) (*SignedTransaction, error) {
	if kp.PublicKey() != t.PublicKey {
		return nil, errors.New("key pair does not match transaction public key")
	}

	h, err := t.Hash()
	if err != nil {
		return nil, err
	}

	sig, err := kp.Sign(h[:])
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign transaction")
	}

	return &SignedTransaction{
		Transaction: *t,
		Signature:   Signature{KeyType: keys.KeyTypeED25519, Data: sig},
	}, nil
}
