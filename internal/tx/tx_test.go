package tx

import (
	"encoding/base64"
	"encoding/hex"
	"testing"

	"github.com/AlexZinkM/narwallet/internal/keys"

	"github.com/holiman/uint256"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const transferVector = "09000000746573742e6e65617200917b3d268d4b58f7fec1b150bd68d69be3ee5d4cc39855e341538465bb77860d" +
	"01000000000000000d00000077686174657665722e6e6561720fa473fd26901df296be6adc4cc4df34d040efa2435224b6986910e630c2fef6" +
	"010000000301000000000000000000000000000000"

func vectorTransaction(t *testing.T) *Transaction {
	t.Helper()

	pub, err := keys.ParsePublicKey("ed25519:Anu7LYDfpLtkP7E16LT9imXF694BdQaa9ufVkQiwTQxC")
	require.NoError(t, err)

	rawHash, err := base58.Decode("244ZQ9cgj3CQ6bWBdytfrJMuMQ1jdXLFGnr4HhvtCTnM")
	require.NoError(t, err)
	var blockHash [32]byte
	copy(blockHash[:], rawHash)

	return &Transaction{
		SignerID:   "test.near",
		PublicKey:  pub,
		Nonce:      1,
		ReceiverID: "whatever.near",
		BlockHash:  blockHash,
		Actions:    []Action{NewTransfer(uint256.NewInt(1))},
	}
}

func TestTransactionEncodeVector(t *testing.T) {
	data, err := vectorTransaction(t).Encode()
	require.NoError(t, err)
	assert.Equal(t, transferVector, hex.EncodeToString(data))
}

func TestTransactionEncodeDeterministic(t *testing.T) {
	tx := vectorTransaction(t)
	a, err := tx.Encode()
	require.NoError(t, err)
	b, err := tx.Encode()
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestTransactionRoundTrip(t *testing.T) {
	tx := vectorTransaction(t)
	tx.Nonce = 77
	deposit, err := uint256.FromDecimal("1000000000000000000000000")
	require.NoError(t, err)
	tx.Actions = append(tx.Actions,
		NewFunctionCall("ft_transfer", []byte(`{"receiver_id":"bob.near"}`), 30_000_000_000_000, deposit),
		NewDeleteAccount("bob.near"),
	)

	data, err := tx.Encode()
	require.NoError(t, err)

	decoded, err := DecodeTransaction(data)
	require.NoError(t, err)
	assert.Equal(t, tx, decoded)
}

func TestActionRoundTrip(t *testing.T) {
	max128 := new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 128), uint256.NewInt(1))

	cases := []Action{
		NewTransfer(uint256.NewInt(0)),
		NewTransfer(max128),
		NewFunctionCall("get", []byte{}, 0, uint256.NewInt(0)),
		NewDeleteAccount("x.near"),
	}
	for _, a := range cases {
		data, err := EncodeAction(a)
		require.NoError(t, err)
		assert.Equal(t, byte(a.Kind()), data[0])

		decoded, err := DecodeAction(data)
		require.NoError(t, err)
		assert.Equal(t, a, decoded)
	}
}

func TestTransferOverflow(t *testing.T) {
	big := new(uint256.Int).Lsh(uint256.NewInt(1), 128)
	_, err := EncodeAction(NewTransfer(big))
	assert.Error(t, err)
}

func TestDecodeActionErrors(t *testing.T) {
	_, err := DecodeAction([]byte{byte(ActionStake)})
	assert.Error(t, err)

	_, err = DecodeAction(nil)
	assert.Error(t, err)

	data, err := EncodeAction(NewDeleteAccount("a.near"))
	require.NoError(t, err)
	_, err = DecodeAction(append(data, 0))
	assert.Error(t, err)

	// length prefix larger than the payload
	_, err = DecodeAction([]byte{byte(ActionDeleteAccount), 0xff, 0, 0, 0, 'a'})
	assert.Error(t, err)
}

func TestDecodeTransactionTruncated(t *testing.T) {
	data, err := vectorTransaction(t).Encode()
	require.NoError(t, err)

	for _, n := range []int{0, 4, 20, len(data) - 1} {
		_, err := DecodeTransaction(data[:n])
		assert.Error(t, err, "prefix of %d bytes", n)
	}
}

func TestSignAndVerify(t *testing.T) {
	kp, err := keys.Generate()
	require.NoError(t, err)

	tx := vectorTransaction(t)
	tx.PublicKey = kp.PublicKey()

	signed, err := Sign(tx, kp)
	require.NoError(t, err)
	assert.Equal(t, keys.KeyTypeED25519, signed.Signature.KeyType)
	assert.True(t, signed.Verify())

	hash, err := tx.Hash()
	require.NoError(t, err)
	assert.True(t, kp.PublicKey().Verify(hash[:], signed.Signature.Data[:]))

	txHash, err := signed.Hash()
	require.NoError(t, err)
	assert.Equal(t, base58.Encode(hash[:]), txHash)

	encoded, err := signed.Base64()
	require.NoError(t, err)
	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)

	decoded, err := DecodeSignedTransaction(raw)
	require.NoError(t, err)
	assert.Equal(t, signed, decoded)
	assert.True(t, decoded.Verify())

	// tampering breaks the signature
	decoded.Transaction.Nonce++
	assert.False(t, decoded.Verify())
}

func TestSignRejectsForeignKey(t *testing.T) {
	kp, err := keys.Generate()
	require.NoError(t, err)

	_, err = Sign(vectorTransaction(t), kp)
	assert.Error(t, err)
}
