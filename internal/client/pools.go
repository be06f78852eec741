package client

import (
	"context"
	"math"
	"sort"

	"github.com/AlexZinkM/narwallet/internal/common"
	"github.com/AlexZinkM/narwallet/internal/model"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// poolQueryLimit bounds concurrent fee queries while listing pools
const poolQueryLimit = 8

// ValidatorInfo is one entry of current_validators
type ValidatorInfo struct {
	AccountID         string `json:"account_id"`
	PublicKey         string `json:"public_key"`
	IsSlashed         bool   `json:"is_slashed"`
	Stake             string `json:"stake"`
	NumProducedBlocks uint64 `json:"num_produced_blocks"`
	NumExpectedBlocks uint64 `json:"num_expected_blocks"`
}

// ValidatorsResult is the result of the validators method
type ValidatorsResult struct {
	CurrentValidators []ValidatorInfo `json:"current_validators"`
	NextValidators    []struct {
		AccountID string `json:"account_id"`
		Stake     string `json:"stake"`
	} `json:"next_validators"`
	EpochStartHeight uint64 `json:"epoch_start_height"`
}

// StakingPoolAccountInfo is a staking pool's view of one delegator
type StakingPoolAccountInfo struct {
	AccountID       string `json:"account_id"`
	UnstakedBalance string `json:"unstaked_balance"`
	StakedBalance   string `json:"staked_balance"`
	CanWithdraw     bool   `json:"can_withdraw"`
}

// RewardFeeFraction is the pool's commission. The zero value means the pool
// did not report one.
type RewardFeeFraction struct {
	Numerator   uint64 `json:"numerator"`
	Denominator uint64 `json:"denominator"`
}

// Percent returns the fee in percent, false when the fraction is empty
func (f RewardFeeFraction) Percent() (float64, bool) {
	if f.Denominator == 0 {
		return 0, false
	}
	return float64(f.Numerator) * 100 / float64(f.Denominator), true
}

// StakingPool is a current validator with its fee, as listed for delegators
type StakingPool struct {
	AccountID string
	Stake     string // yocto
	StakeNear string
	Slashed   bool
	Uptime    int // percent of expected blocks produced
	Fee       *float64
	Err       error // fee query failure, the pool most likely has no staking contract
}

// GetValidators gets the validators of the latest epoch
func (c *NearClient) GetValidators(ctx context.Context) (*ValidatorsResult, error) {
	var res ValidatorsResult
	if err := c.callRead(ctx, &res, "validators", []interface{}{nil}); err != nil {
		return nil, errors.Wrap(err, "failed to get validators")
	}
	return &res, nil
}

// GetStakingPoolAccountInfo gets accountID's balances in pool. A pool that
// does not know the account yields an empty info with zero balances.
func (c *NearClient) GetStakingPoolAccountInfo(ctx context.Context, accountID, pool string) (*StakingPoolAccountInfo, error) {
	var info StakingPoolAccountInfo
	err := c.View(ctx, pool, "get_account", map[string]string{"account_id": accountID}, &info)
	if errors.Is(err, ErrNoResult) {
		return &StakingPoolAccountInfo{AccountID: accountID, UnstakedBalance: "0", StakedBalance: "0"}, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// GetStakingPoolFeeFraction gets the pool's reward fee fraction. A pool
// returning nothing yields the empty fraction.
func (c *NearClient) GetStakingPoolFeeFraction(ctx context.Context, pool string) (RewardFeeFraction, error) {
	var fee RewardFeeFraction
	err := c.View(ctx, pool, "get_reward_fee_fraction", nil, &fee)
	if errors.Is(err, ErrNoResult) {
		return RewardFeeFraction{}, nil
	}
	if err != nil {
		return RewardFeeFraction{}, err
	}
	if fee.Denominator == 0 {
		return RewardFeeFraction{}, &model.ProtocolError{Op: "get_reward_fee_fraction", Err: errors.New("zero denominator")}
	}
	return fee, nil
}

// ListStakingPools lists the current validators sorted by stake, descending,
// with their fees queried concurrently. A failing fee query only marks its
// own pool.
func (c *NearClient) ListStakingPools(ctx context.Context) ([]StakingPool, error) {
	validators, err := c.GetValidators(ctx)
	if err != nil {
		return nil, err
	}

	pools := make([]StakingPool, len(validators.CurrentValidators))
	for i, v := range validators.CurrentValidators {
		pools[i] = StakingPool{
			AccountID: v.AccountID,
			Stake:     v.Stake,
			Slashed:   v.IsSlashed,
		}
		if v.NumExpectedBlocks > 0 {
			pools[i].Uptime = int(math.Round(float64(v.NumProducedBlocks) * 100 / float64(v.NumExpectedBlocks)))
		}
		if s, err := common.FormatYocto(v.Stake); err == nil {
			pools[i].StakeNear = s
		}
	}

	var g errgroup.Group
	g.SetLimit(poolQueryLimit)
	for i := range pools {
		p := &pools[i]
		g.Go(func() error {
			fee, err := c.GetStakingPoolFeeFraction(ctx, p.AccountID)
			if err != nil {
				log.Debug().Err(err).Str("pool", p.AccountID).Msg("Fee query failed")
				p.Err = err
				return nil
			}
			if pct, ok := fee.Percent(); ok {
				p.Fee = &pct
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.SliceStable(pools, func(i, j int) bool {
		return stakeOf(pools[i]).Gt(stakeOf(pools[j]))
	})
	return pools, nil
}

func stakeOf(p StakingPool) *uint256.Int {
	v, err := common.ParseYocto(p.Stake)
	if err != nil {
		return new(uint256.Int)
	}
	return v
}
