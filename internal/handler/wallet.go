package handler

import (
	"net/http"
	"time"

	"github.com/AlexZinkM/narwallet/internal/common"
	"github.com/AlexZinkM/narwallet/internal/model"
	"github.com/AlexZinkM/narwallet/internal/vault"
	"github.com/AlexZinkM/narwallet/near"
)

// WalletHandler serves the vault and the NEAR wallet of one network
type WalletHandler struct {
	vault         *vault.Vault
	wallet        *near.Wallet
	autoUnlockTTL time.Duration
}

// NewWalletHandler creates a WalletHandler. autoUnlockTTL is used when an
// auto-unlock request does not name a lifetime; zero disables that default.
func NewWalletHandler(v *vault.Vault, w *near.Wallet, autoUnlockTTL time.Duration) *WalletHandler {
	return &WalletHandler{
		vault:         v,
		wallet:        w,
		autoUnlockTTL: autoUnlockTTL,
	}
}

// session returns the unlocked session or an AuthError
func (h *WalletHandler) session() (*vault.Session, error) {
	s := h.vault.Active()
	if s == nil || s.Closed() {
		return nil, model.NewAuthError(model.ErrLocked)
	}
	h.vault.Touch(s)
	return s, nil
}

// writableSession is session for requests that change the vault. A session
// restored from an auto-unlock token cannot re-seal it, so it is refused
// before anything changes.
func (h *WalletHandler) writableSession() (*vault.Session, error) {
	s, err := h.session()
	if err != nil {
		return nil, err
	}
	if s.TokenDerived() {
		return nil, model.NewAuthError(model.ErrPasswordRequired)
	}
	return s, nil
}

// CreateUser handles POST /vault/create
// @Summary      Create vault user
// @Description  Registers a user, derives the vault key from the password and unlocks the new empty vault
// @Tags         vault
// @Accept       json
// @Produce      json
// @Param        request  body      model.CreateUserRequest  true  "User and password"
// @Success      200      {object}  model.SessionResponse
// @Failure      400      {object}  model.ErrorResponse
// @Router       /vault/create [post]
func (h *WalletHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req model.CreateUserRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	password := []byte(req.Password)
	defer clear(password)

	s, err := h.vault.Create(r.Context(), req.UserID, password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(s))
}

// Unlock handles POST /vault/unlock
// @Summary      Unlock vault
// @Description  Unlocks a user's vault with the password or with an auto-unlock token. Replaces any open session.
// @Tags         vault
// @Accept       json
// @Produce      json
// @Param        request  body      model.UnlockRequest  true  "User and password or token"
// @Success      200      {object}  model.SessionResponse
// @Failure      401      {object}  model.ErrorResponse
// @Router       /vault/unlock [post]
func (h *WalletHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req model.UnlockRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	var (
		s   *vault.Session
		err error
	)
	switch {
	case req.Token != "":
		s, err = h.vault.UnlockWithToken(r.Context(), req.UserID, req.Token)
	case req.Password != "":
		password := []byte(req.Password)
		defer clear(password)
		s, err = h.vault.Unlock(r.Context(), req.UserID, password)
	default:
		err = model.NewValidationError("password", "password or token is required")
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(s))
}

// Lock handles POST /vault/lock
// @Summary      Lock vault
// @Description  Wipes the open session's keys and disarms the user's auto-unlock token
// @Tags         vault
// @Produce      json
// @Success      200  {object}  model.StatusResponse
// @Router       /vault/lock [post]
func (h *WalletHandler) Lock(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	s := h.vault.Active()
	if s == nil {
		if err := h.vault.Disarm(r.Context()); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, model.StatusResponse{Success: true, Message: "Vault already locked"})
		return
	}
	if err := h.vault.Lock(r.Context(), s); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.StatusResponse{Success: true, Message: "Vault locked"})
}

// AutoUnlock handles POST /vault/auto-unlock
// @Summary      Issue auto-unlock token
// @Description  Issues a time-limited token that unlocks a read/sign-only session without the password
// @Tags         vault
// @Accept       json
// @Produce      json
// @Param        request  body      model.AutoUnlockRequest  true  "Token lifetime in seconds, 0 for the user option or the configured default"
// @Success      200      {object}  model.UnlockToken
// @Failure      401      {object}  model.ErrorResponse
// @Router       /vault/auto-unlock [post]
func (h *WalletHandler) AutoUnlock(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req model.AutoUnlockRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	s, err := h.session()
	if err != nil {
		writeError(w, err)
		return
	}

	ttl, err := h.autoUnlockLifetime(s, req.Seconds)
	if err != nil {
		writeError(w, err)
		return
	}
	if ttl <= 0 {
		writeError(w, model.NewValidationError("seconds", "auto-unlock is disabled, pass a positive lifetime"))
		return
	}

	token, err := h.vault.IssueAutoUnlockToken(r.Context(), s, ttl)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, token)
}

// autoUnlockLifetime picks the requested lifetime, then the user's option,
// then the server default
func (h *WalletHandler) autoUnlockLifetime(s *vault.Session, seconds int) (time.Duration, error) {
	if seconds != 0 {
		return time.Duration(seconds) * time.Second, nil
	}
	opts, err := s.Options()
	if err != nil {
		return 0, err
	}
	if opts.AutoUnlockSeconds > 0 {
		return time.Duration(opts.AutoUnlockSeconds) * time.Second, nil
	}
	return h.autoUnlockTTL, nil
}

// GetOptions handles GET /vault/options
// @Summary      Get vault options
// @Description  Returns the user's selected network, auto-unlock lifetime and advanced mode flag
// @Tags         vault
// @Produce      json
// @Success      200  {object}  model.Options
// @Failure      401  {object}  model.ErrorResponse
// @Router       /vault/options [get]
func (h *WalletHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	s, err := h.session()
	if err != nil {
		writeError(w, err)
		return
	}
	opts, err := s.Options()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

// SetOptions handles POST /vault/options
// @Summary      Update vault options
// @Description  Updates the given options and saves the vault. Omitted fields keep their value.
// @Tags         vault
// @Accept       json
// @Produce      json
// @Param        request  body      model.OptionsRequest  true  "Options to change"
// @Success      200      {object}  model.Options
// @Failure      400      {object}  model.ErrorResponse
// @Failure      401      {object}  model.ErrorResponse
// @Router       /vault/options [post]
func (h *WalletHandler) SetOptions(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req model.OptionsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	s, err := h.writableSession()
	if err != nil {
		writeError(w, err)
		return
	}

	opts, err := s.Options()
	if err != nil {
		writeError(w, err)
		return
	}
	if req.Network != nil {
		opts.Network = *req.Network
	}
	if req.AutoUnlockSeconds != nil {
		opts.AutoUnlockSeconds = *req.AutoUnlockSeconds
	}
	if req.AdvancedMode != nil {
		opts.AdvancedMode = *req.AdvancedMode
	}

	if err := h.vault.SetOptions(s, opts); err != nil {
		writeError(w, err)
		return
	}
	if err := h.vault.Save(r.Context(), s); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

// ChangePassword handles POST /vault/password
// @Summary      Change vault password
// @Description  Re-derives the vault key from a new password and re-seals the vault
// @Tags         vault
// @Accept       json
// @Produce      json
// @Param        request  body      model.ChangePasswordRequest  true  "New password"
// @Success      200      {object}  model.StatusResponse
// @Failure      401      {object}  model.ErrorResponse
// @Router       /vault/password [post]
func (h *WalletHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req model.ChangePasswordRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	password := []byte(req.NewPassword)
	defer clear(password)

	s, err := h.writableSession()
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.vault.ChangePassword(r.Context(), s, password); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.StatusResponse{Success: true, Message: "Password changed"})
}

// ListAccounts handles GET /accounts
// @Summary      List accounts
// @Description  Lists the accounts of a network in display order, without key material. Defaults to the user's selected network.
// @Tags         accounts
// @Produce      json
// @Param        network  query     string  false  "Network name"
// @Success      200      {object}  model.AccountsResponse
// @Failure      401      {object}  model.ErrorResponse
// @Router       /accounts [get]
func (h *WalletHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	s, err := h.session()
	if err != nil {
		writeError(w, err)
		return
	}
	network := r.URL.Query().Get("network")
	if network == "" {
		opts, err := s.Options()
		if err != nil {
			writeError(w, err)
			return
		}
		network = opts.Network
	}
	if network == "" {
		network = h.wallet.Network()
	}

	accounts, err := s.Accounts(network)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.AccountsResponse{Network: network, Accounts: accounts})
}

// ImportAccount handles POST /accounts/import
// @Summary      Import account
// @Description  Imports an account from a private key or a seed phrase. With neither the account is added read-only.
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        request  body      model.ImportAccountRequest  true  "Account and key"
// @Success      200      {object}  model.Account
// @Failure      400      {object}  model.ErrorResponse
// @Router       /accounts/import [post]
func (h *WalletHandler) ImportAccount(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req model.ImportAccountRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.PrivateKey != "" && req.SeedPhrase != "" {
		writeError(w, model.NewValidationError("privateKey", "pass either a private key or a seed phrase"))
		return
	}

	s, err := h.writableSession()
	if err != nil {
		writeError(w, err)
		return
	}

	network := h.wallet.Network()
	var acc model.Account
	switch {
	case req.PrivateKey != "":
		acc, err = h.vault.ImportAccount(s, network, req.AccountID, req.PrivateKey)
	case req.SeedPhrase != "":
		acc, err = h.vault.ImportFromSeedPhrase(s, network, req.AccountID, req.SeedPhrase)
	default:
		acc, err = h.vault.AddReadOnlyAccount(s, network, req.AccountID)
	}
	if err == nil {
		err = h.vault.Save(r.Context(), s)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acc)
}

// GenerateAccount handles POST /accounts/generate
// @Summary      Generate implicit account
// @Description  Generates a seed phrase and adds its implicit account. The phrase is returned once.
// @Tags         accounts
// @Produce      json
// @Success      200  {object}  model.GenerateAccountResponse
// @Failure      401  {object}  model.ErrorResponse
// @Router       /accounts/generate [post]
func (h *WalletHandler) GenerateAccount(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	s, err := h.writableSession()
	if err != nil {
		writeError(w, err)
		return
	}
	acc, phrase, err := near.CreateImplicitAccount(h.vault, s, h.wallet.Network())
	if err == nil {
		err = h.vault.Save(r.Context(), s)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.GenerateAccountResponse{Account: acc, SeedPhrase: phrase})
}

// ReorderAccounts handles POST /accounts/reorder
// @Summary      Reorder accounts
// @Description  Sets the display order of the wallet's accounts
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        request  body      model.ReorderRequest  true  "Account ids in the new order"
// @Success      200      {object}  model.StatusResponse
// @Failure      400      {object}  model.ErrorResponse
// @Router       /accounts/reorder [post]
func (h *WalletHandler) ReorderAccounts(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req model.ReorderRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	s, err := h.writableSession()
	if err != nil {
		writeError(w, err)
		return
	}

	err = h.vault.Reorder(s, h.wallet.Network(), req.AccountIDs)
	if err == nil {
		err = h.vault.Save(r.Context(), s)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.StatusResponse{Success: true, Message: "Accounts reordered"})
}

// RemoveAccount handles POST /accounts/remove
// @Summary      Remove account
// @Description  Forgets an account locally. Nothing is sent to the network.
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        request  body      model.RemoveAccountRequest  true  "Account id"
// @Success      200      {object}  model.StatusResponse
// @Failure      400      {object}  model.ErrorResponse
// @Router       /accounts/remove [post]
func (h *WalletHandler) RemoveAccount(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req model.RemoveAccountRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	s, err := h.writableSession()
	if err != nil {
		writeError(w, err)
		return
	}

	err = h.vault.RemoveAccount(s, h.wallet.Network(), req.AccountID)
	if err == nil {
		err = h.vault.Save(r.Context(), s)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.StatusResponse{Success: true, Message: "Account removed", Address: req.AccountID})
}

// DeleteAccount handles POST /accounts/delete
// @Summary      Delete account on chain
// @Description  Deletes the account on chain, sends its balance to the beneficiary and removes it from the vault
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        request  body      model.DeleteAccountRequest  true  "Account and beneficiary"
// @Success      200      {object}  model.TxResponse
// @Failure      422      {object}  model.ErrorResponse
// @Router       /accounts/delete [post]
func (h *WalletHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req model.DeleteAccountRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	s, err := h.writableSession()
	if err != nil {
		writeError(w, err)
		return
	}

	resp, err := h.wallet.DeleteAccount(r.Context(), s, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	err = h.vault.RemoveAccount(s, h.wallet.Network(), req.AccountID)
	if err == nil {
		err = h.vault.Save(r.Context(), s)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// AccountQR handles GET /accounts/qr
// @Summary      Account QR code
// @Description  Renders the account id as a base64 PNG QR code for receiving funds
// @Tags         accounts
// @Produce      json
// @Param        account  query     string  true  "Account id"
// @Success      200      {object}  model.QRResponse
// @Failure      400      {object}  model.ErrorResponse
// @Router       /accounts/qr [get]
func (h *WalletHandler) AccountQR(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	accountID := r.URL.Query().Get("account")
	qr, err := near.AccountQRCode(accountID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.QRResponse{AccountID: accountID, QRCode: qr})
}

// GetBalance handles GET /balance
// @Summary      Get account balance
// @Description  Gets the NEAR balance of an account with its USD value when the price is available
// @Tags         near
// @Produce      json
// @Param        account  query     string  true  "Account id"
// @Success      200      {object}  model.BalanceResponse
// @Failure      502      {object}  model.ErrorResponse
// @Router       /balance [get]
func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	balance, err := h.wallet.GetBalance(r.Context(), r.URL.Query().Get("account"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balance)
}

// Send handles POST /send
// @Summary      Send NEAR
// @Description  Transfers NEAR from a vault account. The transaction is submitted once and never retried.
// @Tags         near
// @Accept       json
// @Produce      json
// @Param        request  body      model.SendRequest  true  "Transfer"
// @Success      200      {object}  model.TxResponse
// @Failure      422      {object}  model.ErrorResponse
// @Router       /send [post]
func (h *WalletHandler) Send(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req model.SendRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	s, err := h.session()
	if err != nil {
		writeError(w, err)
		return
	}

	resp, err := h.wallet.Send(r.Context(), s, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Call handles POST /call
// @Summary      Call contract method
// @Description  Calls a change method of a contract from a vault account
// @Tags         near
// @Accept       json
// @Produce      json
// @Param        request  body      model.CallRequest  true  "Function call"
// @Success      200      {object}  model.TxResponse
// @Failure      422      {object}  model.ErrorResponse
// @Router       /call [post]
func (h *WalletHandler) Call(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req model.CallRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	s, err := h.session()
	if err != nil {
		writeError(w, err)
		return
	}

	resp, err := h.wallet.CallMethod(r.Context(), s, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListPools handles GET /pools
// @Summary      List staking pools
// @Description  Lists current validators by stake with their fees
// @Tags         staking
// @Produce      json
// @Success      200  {array}   model.PoolResponse
// @Failure      502  {object}  model.ErrorResponse
// @Router       /pools [get]
func (h *WalletHandler) ListPools(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	pools, err := h.wallet.StakingPools(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]model.PoolResponse, 0, len(pools))
	for _, p := range pools {
		item := model.PoolResponse{
			AccountID: p.AccountID,
			Stake:     p.StakeNear,
			Slashed:   p.Slashed,
			Uptime:    p.Uptime,
			Fee:       p.Fee,
		}
		if p.Err != nil {
			item.Error = p.Err.Error()
		}
		resp = append(resp, item)
	}
	writeJSON(w, http.StatusOK, resp)
}

// PoolBalance handles GET /pools/balance
// @Summary      Get delegated balance
// @Description  Gets what an account has staked and unstaked in a pool
// @Tags         staking
// @Produce      json
// @Param        account  query     string  true  "Delegator account id"
// @Param        pool     query     string  true  "Staking pool account id"
// @Success      200      {object}  model.PoolBalanceResponse
// @Failure      502      {object}  model.ErrorResponse
// @Router       /pools/balance [get]
func (h *WalletHandler) PoolBalance(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	accountID := r.URL.Query().Get("account")
	pool := r.URL.Query().Get("pool")
	info, err := h.wallet.PoolBalance(r.Context(), accountID, pool)
	if err != nil {
		writeError(w, err)
		return
	}

	staked, err := common.FormatYocto(info.StakedBalance)
	if err != nil {
		writeError(w, &model.ProtocolError{Op: "get_account", Err: err})
		return
	}
	unstaked, err := common.FormatYocto(info.UnstakedBalance)
	if err != nil {
		writeError(w, &model.ProtocolError{Op: "get_account", Err: err})
		return
	}
	writeJSON(w, http.StatusOK, model.PoolBalanceResponse{
		AccountID:   accountID,
		Pool:        pool,
		Staked:      staked,
		Unstaked:    unstaked,
		CanWithdraw: info.CanWithdraw,
	})
}

func sessionResponse(s *vault.Session) model.SessionResponse {
	return model.SessionResponse{
		Success:      true,
		UserID:       s.UserID,
		SessionID:    s.ID,
		TokenDerived: s.TokenDerived(),
	}
}
