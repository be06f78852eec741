package vault

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/AlexZinkM/narwallet/internal/keys"
	"github.com/AlexZinkM/narwallet/internal/model"
	"github.com/AlexZinkM/narwallet/internal/storage"

	"github.com/dropbox/godropbox/time2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testUser     = "alice@example.com"
	testNetwork  = "testnet"
	testPassword = "correct horse"
)

var testKDF = model.KDFParams{N: 1 << 10, R: 8, P: 1, KeyLen: 32}

func newTestVault(t *testing.T, opts ...Option) (*Vault, *storage.MemoryStore, *time2.MockClock) {
	t.Helper()
	store := storage.NewMemoryStore()
	clock := time2.NewMockClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	opts = append([]Option{WithClock(clock), WithKDFParams(testKDF), WithNetwork(testNetwork)}, opts...)
	return New(store, opts...), store, clock
}

func createWithAccount(t *testing.T, v *Vault) (*Session, *keys.KeyPair) {
	t.Helper()
	ctx := context.Background()

	s, err := v.Create(ctx, testUser, []byte(testPassword))
	require.NoError(t, err)

	kp, err := keys.Generate()
	require.NoError(t, err)
	_, err = v.AddAccount(s, testNetwork, "alice.testnet", kp)
	require.NoError(t, err)
	require.NoError(t, v.Save(ctx, s))
	return s, kp
}

func TestCreateAndUnlockRoundTrip(t *testing.T) {
	v, _, _ := newTestVault(t)
	ctx := context.Background()

	state, err := v.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateUninitialized, state)

	s, kp := createWithAccount(t, v)
	_, err = v.AddReadOnlyAccount(s, testNetwork, "watch.testnet")
	require.NoError(t, err)
	assert.True(t, s.Dirty())
	require.NoError(t, v.Save(ctx, s))
	assert.False(t, s.Dirty())
	require.NoError(t, v.Lock(ctx, s))

	state, err = v.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateLocked, state)

	unlocked, err := v.Unlock(ctx, testUser, []byte(testPassword))
	require.NoError(t, err)
	assert.Same(t, unlocked, v.Active())

	accounts, err := unlocked.Accounts(testNetwork)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "alice.testnet", accounts[0].ID)
	assert.Equal(t, kp.PublicKey().String(), accounts[0].PublicKey)
	assert.Nil(t, accounts[0].PrivateKey)
	assert.Equal(t, model.AccountKindReadOnly, accounts[1].Kind)

	restored, err := unlocked.KeyPair(testNetwork, "alice.testnet")
	require.NoError(t, err)
	defer restored.Zero()
	assert.Equal(t, kp.PublicKey(), restored.PublicKey())

	_, err = unlocked.KeyPair(testNetwork, "watch.testnet")
	assert.ErrorIs(t, err, model.ErrReadOnlyAccount)
}

func TestUnlockWrongPassword(t *testing.T) {
	v, _, _ := newTestVault(t)
	ctx := context.Background()
	s, _ := createWithAccount(t, v)
	require.NoError(t, v.Lock(ctx, s))

	got, err := v.Unlock(ctx, testUser, []byte("wrong password"))
	assert.Nil(t, got)
	require.Error(t, err)
	assert.True(t, model.IsAuthError(err))
	assert.ErrorIs(t, err, model.ErrInvalidPassword)
	assert.Nil(t, v.Active())
}

func TestUnlockReturnsLastSavedState(t *testing.T) {
	v, _, _ := newTestVault(t)
	ctx := context.Background()
	s, _ := createWithAccount(t, v)

	// unsaved edits are lost on lock
	_, err := v.AddReadOnlyAccount(s, testNetwork, "unsaved.testnet")
	require.NoError(t, err)
	require.NoError(t, v.Lock(ctx, s))

	unlocked, err := v.Unlock(ctx, testUser, []byte(testPassword))
	require.NoError(t, err)
	accounts, err := unlocked.Accounts(testNetwork)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "alice.testnet", accounts[0].ID)
}

func TestCreateValidation(t *testing.T) {
	v, _, _ := newTestVault(t)
	ctx := context.Background()

	_, err := v.Create(ctx, "not-an-email", []byte(testPassword))
	assert.True(t, model.IsValidationError(err))

	_, err = v.Create(ctx, testUser, []byte("short"))
	assert.True(t, model.IsValidationError(err))

	_, err = v.Create(ctx, testUser, []byte(testPassword))
	require.NoError(t, err)
	_, err = v.Create(ctx, testUser, []byte(testPassword))
	assert.True(t, model.IsValidationError(err))

	index, err := v.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{testUser}, index.Users)
	assert.Equal(t, testUser, index.CurrentUser)
}

func TestUnlockUnknownUser(t *testing.T) {
	v, _, _ := newTestVault(t)
	_, err := v.Unlock(context.Background(), "nobody@example.com", []byte(testPassword))
	assert.True(t, model.IsValidationError(err))
}

func TestLockWipesSession(t *testing.T) {
	v, _, _ := newTestVault(t)
	ctx := context.Background()
	s, _ := createWithAccount(t, v)

	require.NoError(t, v.Lock(ctx, s))
	assert.True(t, s.Closed())
	assert.Nil(t, v.Active())

	_, err := s.Accounts(testNetwork)
	assert.ErrorIs(t, err, model.ErrLocked)
	_, err = s.KeyPair(testNetwork, "alice.testnet")
	assert.ErrorIs(t, err, model.ErrLocked)
	assert.ErrorIs(t, v.Save(ctx, s), model.ErrLocked)
	assert.ErrorIs(t, v.RemoveAccount(s, testNetwork, "alice.testnet"), model.ErrLocked)

	// locking twice is harmless
	assert.NoError(t, v.Lock(ctx, s))
}

func TestNewUnlockReplacesActiveSession(t *testing.T) {
	v, _, _ := newTestVault(t)
	ctx := context.Background()
	first, _ := createWithAccount(t, v)

	second, err := v.Unlock(ctx, testUser, []byte(testPassword))
	require.NoError(t, err)
	assert.True(t, first.Closed())
	assert.Same(t, second, v.Active())
}

func TestSavePersistsCiphertextOnly(t *testing.T) {
	v, store, _ := newTestVault(t)
	ctx := context.Background()
	s, kp := createWithAccount(t, v)

	before, err := store.Get(ctx, vaultKey(testUser))
	require.NoError(t, err)
	assert.NotContains(t, string(before), "alice.testnet")
	assert.NotContains(t, string(before), kp.PublicKey().String())

	var first model.VaultRecord
	require.NoError(t, json.Unmarshal(before, &first))
	assert.Equal(t, testKDF, first.KDF)

	require.NoError(t, v.Save(ctx, s))
	after, err := store.Get(ctx, vaultKey(testUser))
	require.NoError(t, err)
	var second model.VaultRecord
	require.NoError(t, json.Unmarshal(after, &second))
	assert.NotEqual(t, first.Nonce, second.Nonce)
	assert.Equal(t, first.Salt, second.Salt)
}

func TestChangePassword(t *testing.T) {
	v, _, _ := newTestVault(t)
	ctx := context.Background()
	s, _ := createWithAccount(t, v)

	assert.True(t, model.IsValidationError(v.ChangePassword(ctx, s, []byte("tiny"))))
	require.NoError(t, v.ChangePassword(ctx, s, []byte("new secret")))
	require.NoError(t, v.Lock(ctx, s))

	_, err := v.Unlock(ctx, testUser, []byte(testPassword))
	assert.ErrorIs(t, err, model.ErrInvalidPassword)

	unlocked, err := v.Unlock(ctx, testUser, []byte("new secret"))
	require.NoError(t, err)
	accounts, err := unlocked.Accounts(testNetwork)
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
}

func TestDataVersionMismatchResets(t *testing.T) {
	v, store, _ := newTestVault(t)
	ctx := context.Background()
	s, _ := createWithAccount(t, v)
	require.NoError(t, v.Lock(ctx, s))

	stale, err := json.Marshal(&model.VaultIndex{CurrentUser: testUser, Users: []string{testUser}, DataVersion: 1})
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, indexKey, stale))

	index, err := v.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, index.Users)
	assert.Equal(t, DataVersion, index.DataVersion)

	_, err = store.Get(ctx, vaultKey(testUser))
	assert.ErrorIs(t, err, storage.ErrNotFound)

	state, err := v.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateUninitialized, state)
}

func TestUnlockAfterVersionChange(t *testing.T) {
	v, store, _ := newTestVault(t)
	ctx := context.Background()
	s, _ := createWithAccount(t, v)
	require.NoError(t, v.Lock(ctx, s))

	stale, err := json.Marshal(&model.VaultIndex{CurrentUser: testUser, Users: []string{testUser}, DataVersion: 1})
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, indexKey, stale))

	_, err = v.Unlock(ctx, testUser, []byte(testPassword))
	assert.True(t, model.IsValidationError(err))
	assert.Nil(t, v.Active())

	index, err := v.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, index.CurrentUser)
	assert.Empty(t, index.Users)
}

func TestLockIdle(t *testing.T) {
	v, _, clock := newTestVault(t)
	s, _ := createWithAccount(t, v)

	clock.Advance(4 * time.Minute)
	assert.False(t, v.LockIdle(5*time.Minute))

	v.Touch(s)
	clock.Advance(4 * time.Minute)
	assert.False(t, v.LockIdle(5*time.Minute))

	clock.Advance(time.Minute)
	assert.True(t, v.LockIdle(5*time.Minute))
	assert.True(t, s.Closed())
	assert.Nil(t, v.Active())

	assert.False(t, v.LockIdle(5*time.Minute))
}
