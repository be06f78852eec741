package near

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/AlexZinkM/narwallet/internal/client"
	"github.com/AlexZinkM/narwallet/internal/common"
	"github.com/AlexZinkM/narwallet/internal/model"
	"github.com/AlexZinkM/narwallet/internal/tx"
	"github.com/AlexZinkM/narwallet/internal/vault"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	// TGas is 10^12 gas units
	TGas = uint64(1_000_000_000_000)
	// DefaultCallTGas is attached to calls that don't say otherwise
	DefaultCallTGas = 30
	// MaxCallTGas is the per-transaction gas limit of the protocol
	MaxCallTGas = 300
)

// Ledger is everything the wallet needs from the NEAR node
type Ledger interface {
	AccessKeyQuerier
	QueryAccount(ctx context.Context, accountID string) (*client.AccountState, error)
	Submit(ctx context.Context, signed *tx.SignedTransaction) (*client.FinalExecutionOutcome, error)
	ListStakingPools(ctx context.Context) ([]client.StakingPool, error)
	GetStakingPoolAccountInfo(ctx context.Context, accountID, pool string) (*client.StakingPoolAccountInfo, error)
}

// PriceFeed quotes NEAR in USD
type PriceFeed interface {
	GetNEARtoUSDrate(ctx context.Context) (float64, error)
}

// Wallet sends transactions and reads balances for one network
type Wallet struct {
	ledger  Ledger
	prices  PriceFeed
	builder *Builder
	network string
}

// NewWallet creates a wallet. prices may be nil.
func NewWallet(ledger Ledger, prices PriceFeed, network string) *Wallet {
	return &Wallet{
		ledger:  ledger,
		prices:  prices,
		builder: NewBuilder(ledger, network),
		network: network,
	}
}

// Network returns the network the wallet signs for
func (w *Wallet) Network() string {
	return w.network
}

// Builder returns the wallet's transaction builder
func (w *Wallet) Builder() *Builder {
	return w.builder
}

// Send transfers amount NEAR (at most 4 decimals kept) from one vault account to another account
func (w *Wallet) Send(ctx context.Context, s *vault.Session, req *model.SendRequest) (*model.TxResponse, error) {
	if !common.IsValidAmount(req.Amount) || req.Amount == 0 {
		return nil, model.NewValidationError("amount", "must be a positive number")
	}
	deposit, err := common.NearToYocto(req.Amount)
	if err != nil {
		return nil, err
	}
	if deposit.IsZero() {
		return nil, model.NewValidationError("amount", "rounds to zero at 4 decimals")
	}

	return w.execute(ctx, s, req.From, req.To, tx.NewTransfer(deposit))
}

// CallMethod calls a change method of a contract
func (w *Wallet) CallMethod(ctx context.Context, s *vault.Session, req *model.CallRequest) (*model.TxResponse, error) {
	if req.Method == "" {
		return nil, model.NewValidationError("method", "is required")
	}

	tgas := req.TGas
	if tgas == 0 {
		tgas = DefaultCallTGas
	}
	if tgas > MaxCallTGas {
		return nil, model.NewValidationError("tgas", fmt.Sprintf("at most %d", MaxCallTGas))
	}

	deposit := new(uint256.Int)
	if req.Deposit != 0 {
		var err error
		if deposit, err = common.NearToYocto(req.Deposit); err != nil {
			return nil, err
		}
	}

	args := []byte("{}")
	if req.Args != nil {
		var err error
		if args, err = json.Marshal(req.Args); err != nil {
			return nil, model.NewValidationError("args", err.Error())
		}
	}
	return w.execute(ctx, s, req.From, req.Contract, tx.NewFunctionCall(req.Method, args, tgas*TGas, deposit))
}

// DeleteAccount deletes a vault account on chain, sending its balance to the beneficiary
func (w *Wallet) DeleteAccount(ctx context.Context, s *vault.Session, req *model.DeleteAccountRequest) (*model.TxResponse, error) {
	if err := common.ValidateAccountID("beneficiary", req.Beneficiary); err != nil {
		return nil, err
	}
	if req.Beneficiary == req.AccountID {
		return nil, model.NewValidationError("beneficiary", "must differ from the deleted account")
	}
	return w.execute(ctx, s, req.AccountID, req.AccountID, tx.NewDeleteAccount(req.Beneficiary))
}

// execute signs, submits and interprets one transaction. It is never retried.
func (w *Wallet) execute(ctx context.Context, s *vault.Session, signerID, receiverID string, actions ...tx.Action) (*model.TxResponse, error) {
	signed, err := w.builder.BuildAndSign(ctx, s, signerID, receiverID, actions)
	if err != nil {
		return nil, err
	}
	txHash, err := signed.Hash()
	if err != nil {
		return nil, err
	}

	outcome, err := w.ledger.Submit(ctx, signed)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to send transaction %s", txHash)
	}

	result, err := client.InterpretOutcome(outcome)
	if err != nil {
		log.Warn().Err(err).Str("tx_hash", txHash).Msg("Transaction failed")
		return nil, err
	}
	return &model.TxResponse{TxHash: txHash, Result: result}, nil
}

// GetBalance gets the balance of accountID with its USD value when the price feed answers
func (w *Wallet) GetBalance(ctx context.Context, accountID string) (*model.BalanceResponse, error) {
	if err := common.ValidateAccountID("account", accountID); err != nil {
		return nil, err
	}

	state, err := w.ledger.QueryAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	total, err := common.FormatYocto(state.Amount)
	if err != nil {
		return nil, &model.ProtocolError{Op: "account", Err: err}
	}
	locked, err := common.FormatYocto(state.Locked)
	if err != nil {
		return nil, &model.ProtocolError{Op: "account", Err: err}
	}

	resp := &model.BalanceResponse{AccountID: accountID, Total: total, Locked: locked}
	if w.prices == nil {
		return resp, nil
	}

	rate, err := w.prices.GetNEARtoUSDrate(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("NEAR price unavailable")
		return resp, nil
	}

	// float only for display
	totalFloat, _ := strconv.ParseFloat(total, 64)
	resp.Rate = strconv.FormatFloat(rate, 'f', 2, 64)
	resp.USD = fmt.Sprintf("%.2f", totalFloat*rate)
	return resp, nil
}

// StakingPools lists current validators with their fees
func (w *Wallet) StakingPools(ctx context.Context) ([]client.StakingPool, error) {
	return w.ledger.ListStakingPools(ctx)
}

// PoolBalance gets what accountID has delegated to pool
func (w *Wallet) PoolBalance(ctx context.Context, accountID, pool string) (*client.StakingPoolAccountInfo, error) {
	if err := common.ValidateAccountID("account", accountID); err != nil {
		return nil, err
	}
	if err := common.ValidateAccountID("pool", pool); err != nil {
		return nil, err
	}
	return w.ledger.GetStakingPoolAccountInfo(ctx, accountID, pool)
}
