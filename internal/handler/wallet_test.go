package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AlexZinkM/narwallet/internal/client"
	"github.com/AlexZinkM/narwallet/internal/keys"
	"github.com/AlexZinkM/narwallet/internal/model"
	"github.com/AlexZinkM/narwallet/internal/storage"
	"github.com/AlexZinkM/narwallet/internal/tx"
	"github.com/AlexZinkM/narwallet/internal/vault"
	"github.com/AlexZinkM/narwallet/near"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testNetwork  = "testnet"
	testUser     = "alice@example.com"
	testPassword = "correct horse"
)

type fakeLedger struct {
	outcome *client.FinalExecutionOutcome
	pools   []client.StakingPool
}

func (f *fakeLedger) QueryAccessKey(ctx context.Context, accountID string, publicKey keys.PublicKey) (*client.AccessKeyInfo, error) {
	return &client.AccessKeyInfo{
		Nonce:      1,
		Permission: client.AccessKeyPermission{FullAccess: true},
		BlockHash:  base58.Encode(bytes.Repeat([]byte{1}, 32)),
	}, nil
}

func (f *fakeLedger) QueryAccount(ctx context.Context, accountID string) (*client.AccountState, error) {
	return &client.AccountState{Amount: "2000000000000000000000000", Locked: "0"}, nil
}

func (f *fakeLedger) Submit(ctx context.Context, signed *tx.SignedTransaction) (*client.FinalExecutionOutcome, error) {
	return f.outcome, nil
}

func (f *fakeLedger) ListStakingPools(ctx context.Context) ([]client.StakingPool, error) {
	return f.pools, nil
}

func (f *fakeLedger) GetStakingPoolAccountInfo(ctx context.Context, accountID, pool string) (*client.StakingPoolAccountInfo, error) {
	return &client.StakingPoolAccountInfo{
		AccountID:       accountID,
		StakedBalance:   "10000000000000000000000000",
		UnstakedBalance: "0",
		CanWithdraw:     true,
	}, nil
}

func successOutcome() *client.FinalExecutionOutcome {
	empty := ""
	return &client.FinalExecutionOutcome{Status: client.ExecutionStatus{SuccessValue: &empty}}
}

func newTestHandler(t *testing.T) (*WalletHandler, *fakeLedger) {
	t.Helper()
	v := vault.New(storage.NewMemoryStore(),
		vault.WithKDFParams(model.KDFParams{N: 1 << 10, R: 8, P: 1, KeyLen: 32}),
		vault.WithNetwork(testNetwork))
	ledger := &fakeLedger{outcome: successOutcome()}
	return NewWalletHandler(v, near.NewWallet(ledger, nil, testNetwork), 0), ledger
}

func do(t *testing.T, fn http.HandlerFunc, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rec := httptest.NewRecorder()
	fn(rec, httptest.NewRequest(method, target, &buf))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func createUser(t *testing.T, h *WalletHandler) {
	t.Helper()
	rec := do(t, h.CreateUser, http.MethodPost, "/vault/create", model.CreateUserRequest{UserID: testUser, Password: testPassword})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func importKey(t *testing.T, h *WalletHandler, accountID string) {
	t.Helper()
	kp, err := keys.Generate()
	require.NoError(t, err)
	rec := do(t, h.ImportAccount, http.MethodPost, "/accounts/import", model.ImportAccountRequest{AccountID: accountID, PrivateKey: kp.String()})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestLockedVaultIsUnauthorized(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(t, h.ListAccounts, http.MethodGet, "/accounts", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decode[model.ErrorResponse](t, rec)
	assert.Equal(t, CodeAuth, resp.Code)

	rec = do(t, h.Send, http.MethodPost, "/send", model.SendRequest{From: "alice.testnet", To: "bob.testnet", Amount: 1})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := do(t, h.CreateUser, http.MethodGet, "/vault/create", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCreateImportAndList(t *testing.T) {
	h, _ := newTestHandler(t)
	createUser(t, h)

	importKey(t, h, "alice.testnet")
	rec := do(t, h.ImportAccount, http.MethodPost, "/accounts/import", model.ImportAccountRequest{AccountID: "watch.testnet"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.AccountKindReadOnly, decode[model.Account](t, rec).Kind)

	rec = do(t, h.ListAccounts, http.MethodGet, "/accounts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "privateKey")
	list := decode[model.AccountsResponse](t, rec)
	assert.Equal(t, testNetwork, list.Network)
	require.Len(t, list.Accounts, 2)
	assert.Equal(t, "alice.testnet", list.Accounts[0].ID)

	rec = do(t, h.ReorderAccounts, http.MethodPost, "/accounts/reorder", model.ReorderRequest{AccountIDs: []string{"watch.testnet", "alice.testnet"}})
	require.Equal(t, http.StatusOK, rec.Code)
	list = decode[model.AccountsResponse](t, do(t, h.ListAccounts, http.MethodGet, "/accounts", nil))
	assert.Equal(t, "watch.testnet", list.Accounts[0].ID)

	rec = do(t, h.RemoveAccount, http.MethodPost, "/accounts/remove", model.RemoveAccountRequest{AccountID: "watch.testnet"})
	require.Equal(t, http.StatusOK, rec.Code)
	list = decode[model.AccountsResponse](t, do(t, h.ListAccounts, http.MethodGet, "/accounts", nil))
	assert.Len(t, list.Accounts, 1)
}

func TestImportRejectsBothKeyKinds(t *testing.T) {
	h, _ := newTestHandler(t)
	createUser(t, h)

	rec := do(t, h.ImportAccount, http.MethodPost, "/accounts/import", model.ImportAccountRequest{
		AccountID:  "alice.testnet",
		PrivateKey: "ed25519:x",
		SeedPhrase: "a b c",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, CodeValidation, decode[model.ErrorResponse](t, rec).Code)
}

func TestUnlockAfterLock(t *testing.T) {
	h, _ := newTestHandler(t)
	createUser(t, h)
	importKey(t, h, "alice.testnet")

	rec := do(t, h.Lock, http.MethodPost, "/vault/lock", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h.Unlock, http.MethodPost, "/vault/unlock", model.UnlockRequest{UserID: testUser, Password: "wrong password"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h.Unlock, http.MethodPost, "/vault/unlock", model.UnlockRequest{UserID: testUser})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h.Unlock, http.MethodPost, "/vault/unlock", model.UnlockRequest{UserID: testUser, Password: testPassword})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[model.SessionResponse](t, rec)
	assert.Equal(t, testUser, resp.UserID)
	assert.NotEmpty(t, resp.SessionID)
	assert.False(t, resp.TokenDerived)

	list := decode[model.AccountsResponse](t, do(t, h.ListAccounts, http.MethodGet, "/accounts", nil))
	assert.Len(t, list.Accounts, 1)
}

func TestAutoUnlockTokenSession(t *testing.T) {
	h, _ := newTestHandler(t)
	createUser(t, h)
	importKey(t, h, "alice.testnet")

	rec := do(t, h.AutoUnlock, http.MethodPost, "/vault/auto-unlock", model.AutoUnlockRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h.AutoUnlock, http.MethodPost, "/vault/auto-unlock", model.AutoUnlockRequest{Seconds: 60})
	require.Equal(t, http.StatusOK, rec.Code)
	token := decode[model.UnlockToken](t, rec)
	require.NotEmpty(t, token.Token)

	// a new unlock replaces the session without disarming the token
	do(t, h.Unlock, http.MethodPost, "/vault/unlock", model.UnlockRequest{UserID: testUser, Password: testPassword})

	rec = do(t, h.Unlock, http.MethodPost, "/vault/unlock", model.UnlockRequest{UserID: testUser, Token: token.Token})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[model.SessionResponse](t, rec).TokenDerived)

	rec = do(t, h.Send, http.MethodPost, "/send", model.SendRequest{From: "alice.testnet", To: "bob.testnet", Amount: 1})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h.ImportAccount, http.MethodPost, "/accounts/import", model.ImportAccountRequest{AccountID: "watch.testnet"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), model.ErrPasswordRequired.Error())

	rec = do(t, h.ChangePassword, http.MethodPost, "/vault/password", model.ChangePasswordRequest{NewPassword: "another secret"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChangePassword(t *testing.T) {
	h, _ := newTestHandler(t)
	createUser(t, h)

	rec := do(t, h.ChangePassword, http.MethodPost, "/vault/password", model.ChangePasswordRequest{NewPassword: "short"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h.ChangePassword, http.MethodPost, "/vault/password", model.ChangePasswordRequest{NewPassword: "another secret"})
	require.Equal(t, http.StatusOK, rec.Code)

	do(t, h.Lock, http.MethodPost, "/vault/lock", nil)
	rec = do(t, h.Unlock, http.MethodPost, "/vault/unlock", model.UnlockRequest{UserID: testUser, Password: testPassword})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = do(t, h.Unlock, http.MethodPost, "/vault/unlock", model.UnlockRequest{UserID: testUser, Password: "another secret"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSendAndCall(t *testing.T) {
	h, ledger := newTestHandler(t)
	createUser(t, h)
	importKey(t, h, "alice.testnet")

	rec := do(t, h.Send, http.MethodPost, "/send", model.SendRequest{From: "alice.testnet", To: "bob.testnet", Amount: 0.5})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, decode[model.TxResponse](t, rec).TxHash)

	rec = do(t, h.Send, http.MethodPost, "/send", model.SendRequest{From: "alice.testnet", To: "bob.testnet", Amount: -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	ledger.outcome = &client.FinalExecutionOutcome{
		Status: client.ExecutionStatus{Failure: []byte(`{"ActionError":{"index":0,"kind":{"FunctionCallError":{"ExecutionError":"Smart contract panicked: nope"}}}}`)},
	}
	rec = do(t, h.Call, http.MethodPost, "/call", model.CallRequest{From: "alice.testnet", Contract: "app.testnet", Method: "fail"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decode[model.ErrorResponse](t, rec)
	assert.Equal(t, CodeExecution, resp.Code)
	assert.True(t, strings.HasPrefix(resp.Error, model.TransactionFailedMarker))
	assert.Contains(t, resp.Error, "Smart contract panicked: nope")
}

func TestDeleteAccountForgetsIt(t *testing.T) {
	h, _ := newTestHandler(t)
	createUser(t, h)
	importKey(t, h, "alice.testnet")

	rec := do(t, h.DeleteAccount, http.MethodPost, "/accounts/delete", model.DeleteAccountRequest{AccountID: "alice.testnet", Beneficiary: "bob.testnet"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	list := decode[model.AccountsResponse](t, do(t, h.ListAccounts, http.MethodGet, "/accounts", nil))
	assert.Empty(t, list.Accounts)
}

func TestGenerateAccount(t *testing.T) {
	h, _ := newTestHandler(t)
	createUser(t, h)

	rec := do(t, h.GenerateAccount, http.MethodPost, "/accounts/generate", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[model.GenerateAccountResponse](t, rec)
	assert.Len(t, resp.Account.ID, 64)
	assert.Len(t, strings.Fields(resp.SeedPhrase), 12)
	assert.Nil(t, resp.Account.PrivateKey)
}

func TestBalanceQRAndPools(t *testing.T) {
	h, ledger := newTestHandler(t)
	fee := 5.0
	ledger.pools = []client.StakingPool{
		{AccountID: "a.poolv1.testnet", StakeNear: "100.0000", Uptime: 99, Fee: &fee},
		{AccountID: "b.testnet", StakeNear: "1.0000", Err: errors.New("no staking contract")},
	}

	rec := do(t, h.GetBalance, http.MethodGet, "/balance?account=bob.testnet", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2.0000", decode[model.BalanceResponse](t, rec).Total)

	rec = do(t, h.GetBalance, http.MethodGet, "/balance?account=BOB", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h.AccountQR, http.MethodGet, "/accounts/qr?account=bob.testnet", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	png, err := base64.StdEncoding.DecodeString(decode[model.QRResponse](t, rec).QRCode)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	rec = do(t, h.ListPools, http.MethodGet, "/pools", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	pools := decode[[]model.PoolResponse](t, rec)
	require.Len(t, pools, 2)
	assert.Equal(t, 5.0, *pools[0].Fee)
	assert.Equal(t, "no staking contract", pools[1].Error)

	rec = do(t, h.PoolBalance, http.MethodGet, "/pools/balance?account=bob.testnet&pool=a.poolv1.testnet", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	balance := decode[model.PoolBalanceResponse](t, rec)
	assert.Equal(t, "10.0000", balance.Staked)
	assert.Equal(t, "0.0000", balance.Unstaked)
	assert.True(t, balance.CanWithdraw)
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{model.NewValidationError("amount", "bad"), http.StatusBadRequest, CodeValidation},
		{model.NewAuthError(model.ErrInvalidPassword), http.StatusUnauthorized, CodeAuth},
		{&model.NetworkError{Op: "query", Err: errors.New("EOF")}, http.StatusBadGateway, CodeNetwork},
		{&model.ProtocolError{Op: "query", Err: errors.New("bad")}, http.StatusBadGateway, CodeProtocol},
		{model.NewLedgerExecutionError("x"), http.StatusUnprocessableEntity, CodeExecution},
		{errors.New("boom"), http.StatusInternalServerError, CodeInternal},
	}
	for _, tt := range tests {
		status, code := statusOf(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.Equal(t, tt.code, code, tt.err.Error())
	}
}

func TestOptions(t *testing.T) {
	h, _ := newTestHandler(t)
	createUser(t, h)

	rec := do(t, h.GetOptions, http.MethodGet, "/vault/options", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.Options{Network: testNetwork}, decode[model.Options](t, rec))

	seconds, advanced := 120, true
	rec = do(t, h.SetOptions, http.MethodPost, "/vault/options", model.OptionsRequest{AutoUnlockSeconds: &seconds, AdvancedMode: &advanced})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, model.Options{Network: testNetwork, AutoUnlockSeconds: 120, AdvancedMode: true}, decode[model.Options](t, rec))
	assert.False(t, h.vault.Active().Dirty())

	negative := -1
	rec = do(t, h.SetOptions, http.MethodPost, "/vault/options", model.OptionsRequest{AutoUnlockSeconds: &negative})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// the user's lifetime is used when the request names none
	before := time.Now()
	rec = do(t, h.AutoUnlock, http.MethodPost, "/vault/auto-unlock", model.AutoUnlockRequest{})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	token := decode[model.UnlockToken](t, rec)
	assert.WithinDuration(t, before.Add(120*time.Second), token.ExpiresAt, 5*time.Second)

	rec = do(t, h.Unlock, http.MethodPost, "/vault/unlock", model.UnlockRequest{UserID: testUser, Token: token.Token})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = do(t, h.SetOptions, http.MethodPost, "/vault/options", model.OptionsRequest{AdvancedMode: &advanced})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListAccountsUsesSelectedNetwork(t *testing.T) {
	h, _ := newTestHandler(t)
	createUser(t, h)
	importKey(t, h, "alice.testnet")

	mainnet := "mainnet"
	rec := do(t, h.SetOptions, http.MethodPost, "/vault/options", model.OptionsRequest{Network: &mainnet})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h.ListAccounts, http.MethodGet, "/accounts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[model.AccountsResponse](t, rec)
	assert.Equal(t, "mainnet", resp.Network)
	assert.Empty(t, resp.Accounts)

	rec = do(t, h.ListAccounts, http.MethodGet, "/accounts?network=testnet", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode[model.AccountsResponse](t, rec)
	assert.Equal(t, testNetwork, resp.Network)
	require.Len(t, resp.Accounts, 1)
	assert.Equal(t, "alice.testnet", resp.Accounts[0].ID)
}

func TestTokenSurvivesCloseUntilExplicitLock(t *testing.T) {
	h, _ := newTestHandler(t)
	createUser(t, h)

	arm := func() model.UnlockToken {
		rec := do(t, h.AutoUnlock, http.MethodPost, "/vault/auto-unlock", model.AutoUnlockRequest{Seconds: 600})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		return decode[model.UnlockToken](t, rec)
	}

	token := arm()
	h.vault.Close(h.vault.Active())
	rec := do(t, h.Unlock, http.MethodPost, "/vault/unlock", model.UnlockRequest{UserID: testUser, Token: token.Token})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[model.SessionResponse](t, rec).TokenDerived)

	token = arm()
	h.vault.Close(h.vault.Active())
	rec = do(t, h.Lock, http.MethodPost, "/vault/lock", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h.Unlock, http.MethodPost, "/vault/unlock", model.UnlockRequest{UserID: testUser, Token: token.Token})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
