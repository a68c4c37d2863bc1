package xstake

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/xuperchain/xstake/kernel/contract"
	"github.com/xuperchain/xstake/kernel/engines/xuperos/common"
)

type Contract struct {
	contractCtx *Context
}

func NewContract(ctx *Context) *Contract {
	return &Contract{
		contractCtx: ctx,
	}
}

func (c *Contract) store(ctx contract.KContext) *store {
	return newStore(ctx, c.contractCtx.Codec)
}

func msgArg(ctx contract.KContext) ([]byte, error) {
	value, ok := ctx.Args()[common.ArgMsg]
	if !ok || len(value) == 0 {
		return nil, errors.Wrap(ErrDecode, "msg param can not be empty")
	}
	return value, nil
}

func (c *Contract) validateAddr(ctx contract.KContext, field, addr string) error {
	if err := ctx.AddrValidate(addr); err != nil {
		return stdError(err, "invalid %s %q", field, addr)
	}
	return nil
}

// Instantiate 初始化合约配置, 调用者成为owner
func (c *Contract) Instantiate(ctx contract.KContext) (*contract.Response, error) {
	value, err := msgArg(ctx)
	if err != nil {
		return nil, err
	}
	msg := new(InstantiateMsg)
	if err := json.Unmarshal(value, msg); err != nil {
		return nil, decodeError(err, "decode instantiate msg")
	}

	s := c.store(ctx)
	exist, err := s.has(keyConfig)
	if err != nil {
		return nil, err
	}
	if exist {
		return nil, ErrAlreadyInitialized
	}

	owner := ctx.Initiator()
	if err := c.validateAddr(ctx, "owner", owner); err != nil {
		return nil, err
	}
	if err := c.validateAddr(ctx, "staking_token", msg.StakingToken); err != nil {
		return nil, err
	}
	if msg.PenaltyPercentage > 100 {
		return nil, errors.Wrapf(ErrInvalidConfig, "penalty_percentage %d exceeds 100", msg.PenaltyPercentage)
	}

	cfg := &Config{
		Owner:             owner,
		StakingToken:      msg.StakingToken,
		UnbondPeriod:      msg.UnbondPeriod,
		ActivityInterval:  msg.ActivityInterval,
		PenaltyPercentage: msg.PenaltyPercentage,
	}
	if err := s.SaveConfig(cfg); err != nil {
		return nil, err
	}
	if err := s.SaveState(&State{TotalBondAmount: NewUint128(0)}); err != nil {
		return nil, err
	}
	if err := s.SaveContractInfo(&ContractInfo{Contract: ContractName, Version: ContractVersion}); err != nil {
		return nil, err
	}

	c.contractCtx.XLog.Info("xstake instantiated", "owner", owner, "stakingToken", cfg.StakingToken,
		"activityInterval", cfg.ActivityInterval, "penaltyPercentage", cfg.PenaltyPercentage)
	resp := &contract.Response{Status: Success}
	resp.AddAttribute(AttrAction, ActionInstantiate).AddAttribute(AttrOwner, owner)
	return resp, nil
}

func (c *Contract) Execute(ctx contract.KContext) (*contract.Response, error) {
	value, err := msgArg(ctx)
	if err != nil {
		return nil, err
	}
	msg, err := ParseExecuteMsg(value)
	if err != nil {
		return nil, err
	}

	switch m := msg.(type) {
	case *ReceiveMsg:
		return c.receive(ctx, m)
	case *UnbondMsg:
		return c.unbond(ctx, m.Amount)
	case *ClaimMsg:
		return nil, errors.Wrap(ErrNotImplemented, "claim")
	case *KeepAliveMsg:
		return c.keepAlive(ctx)
	case *DeadmanDelayMsg:
		return c.deadmanDelay(ctx, m.Addr)
	case *UpdateConfigMsg:
		return c.updateConfig(ctx, m)
	default:
		return nil, errors.Wrapf(ErrDecode, "unsupported execute msg %T", msg)
	}
}

// receive 只接受 staking token 合约转发的 bond 请求
func (c *Contract) receive(ctx contract.KContext, msg *ReceiveMsg) (*contract.Response, error) {
	s := c.store(ctx)
	cfg, err := s.LoadConfig()
	if err != nil {
		return nil, err
	}
	if ctx.Initiator() != cfg.StakingToken {
		return nil, errors.Wrapf(ErrUnauthorized, "receive from %s", ctx.Initiator())
	}

	if err := c.validateAddr(ctx, "sender", msg.Sender); err != nil {
		return nil, err
	}
	hook, err := ParseHookMsg(msg.Msg)
	if err != nil {
		return nil, err
	}
	if err := c.validateAddr(ctx, "backup_addr", hook.BackupAddr); err != nil {
		return nil, err
	}
	return c.bond(ctx, s, cfg, msg.Sender, hook.BackupAddr, msg.Amount)
}

func (c *Contract) bond(ctx contract.KContext, s *store, cfg *Config, staker, backup string,
	amount Uint128) (*contract.Response, error) {
	if amount.IsZero() {
		return nil, ErrInvalidAmount
	}

	now := ctx.BlockTime()
	stake, err := s.UpdateStake(staker, func(old *Stake) (*Stake, error) {
		if old == nil {
			old = &Stake{Amount: NewUint128(0)}
		}
		total, err := old.Amount.CheckedAdd(amount)
		if err != nil {
			return nil, stdError(err, "bond of %s", staker)
		}
		return &Stake{
			Amount:         total,
			BackupAddr:     backup,
			TimeUntil:      now + cfg.ActivityInterval,
			LastTimeActive: now,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	_, err = s.UpdateState(func(st State) (State, error) {
		total, err := st.TotalBondAmount.CheckedAdd(amount)
		if err != nil {
			return st, stdError(err, "total bond amount")
		}
		st.TotalBondAmount = total
		return st, nil
	})
	if err != nil {
		return nil, err
	}

	c.contractCtx.XLog.Info("xstake bond", "staker", staker, "amount", amount, "newAmount", stake.Amount)
	resp := &contract.Response{Status: Success}
	resp.AddAttribute(AttrAction, ActionBond).
		AddAttribute(AttrOwner, staker).
		AddAttribute(AttrAmount, amount.String()).
		AddAttribute(AttrNewAmount, stake.Amount.String())
	return resp, nil
}

func (c *Contract) unbond(ctx contract.KContext, amount Uint128) (*contract.Response, error) {
	if amount.IsZero() {
		return nil, ErrInvalidAmount
	}

	s := c.store(ctx)
	cfg, err := s.LoadConfig()
	if err != nil {
		return nil, err
	}
	staker := ctx.Initiator()
	stake, err := s.LoadStake(staker)
	if err != nil {
		return nil, err
	}
	if stake.Amount.Lt(amount) {
		return nil, errors.Wrapf(ErrInsufficientFunds, "%s holds %s, requested %s", staker, stake.Amount, amount)
	}

	now := ctx.BlockTime()
	early := IsEarly(stake, now)
	left, err := stake.Amount.CheckedSub(amount)
	if err != nil {
		return nil, errors.Wrap(ErrSubtractionOverflow, err.Error())
	}
	stake.Amount = left
	stake.LastTimeActive = now
	if err := s.SaveStake(staker, stake); err != nil {
		return nil, err
	}
	if err := subTotal(s, amount); err != nil {
		return nil, err
	}

	transfers := newTransferBuilder(cfg.StakingToken)
	if early {
		penalty := Penalty(amount, cfg.PenaltyPercentage)
		net, _ := amount.CheckedSub(penalty)
		if err := transfers.Add(cfg.Owner, penalty); err != nil {
			return nil, err
		}
		if err := transfers.Add(staker, net); err != nil {
			return nil, err
		}
	} else if err := transfers.Add(staker, amount); err != nil {
		return nil, err
	}

	c.contractCtx.XLog.Info("xstake unbond", "staker", staker, "amount", amount, "early", early)
	resp := &contract.Response{Status: Success}
	resp.AddAttribute(AttrAction, ActionWithdraw).
		AddAttribute(AttrOwner, staker).
		AddAttribute(AttrWithdrawnAmount, amount.String())
	transfers.AttachTo(resp)
	return resp, nil
}

func subTotal(s *store, amount Uint128) error {
	_, err := s.UpdateState(func(st State) (State, error) {
		total, err := st.TotalBondAmount.CheckedSub(amount)
		if err != nil {
			return st, errors.Wrap(ErrSubtractionOverflow, err.Error())
		}
		st.TotalBondAmount = total
		return st, nil
	})
	return err
}

func (c *Contract) keepAlive(ctx contract.KContext) (*contract.Response, error) {
	s := c.store(ctx)
	staker := ctx.Initiator()
	stake, err := s.LoadStake(staker)
	if err != nil {
		return nil, err
	}
	stake.LastTimeActive = ctx.BlockTime()
	if err := s.SaveStake(staker, stake); err != nil {
		return nil, err
	}

	resp := &contract.Response{Status: Success}
	resp.AddAttribute(AttrAction, ActionKeepAlive).AddAttribute(AttrOwner, staker)
	return resp, nil
}

// deadmanDelay 备份地址接管长时间不活跃的质押
func (c *Contract) deadmanDelay(ctx contract.KContext, staker string) (*contract.Response, error) {
	if err := c.validateAddr(ctx, "addr", staker); err != nil {
		return nil, err
	}
	s := c.store(ctx)
	cfg, err := s.LoadConfig()
	if err != nil {
		return nil, err
	}
	stake, err := s.LoadStake(staker)
	if err != nil {
		return nil, err
	}

	now := ctx.BlockTime()
	if ctx.Initiator() != stake.BackupAddr {
		return nil, errors.Wrapf(ErrUnauthorized, "%s is not the backup of %s", ctx.Initiator(), staker)
	}
	if IsActive(stake, cfg, now) {
		return nil, errors.Wrapf(ErrUnauthorized, "%s is still active", staker)
	}
	if stake.Amount.IsZero() {
		return nil, errors.Wrapf(ErrInvalidAmount, "nothing to seize from %s", staker)
	}

	seized := stake.Amount
	stake.Amount = NewUint128(0)
	if err := s.SaveStake(staker, stake); err != nil {
		return nil, err
	}
	if err := subTotal(s, seized); err != nil {
		return nil, err
	}

	transfers := newTransferBuilder(cfg.StakingToken)
	if err := transfers.Add(stake.BackupAddr, seized); err != nil {
		return nil, err
	}

	c.contractCtx.XLog.Info("xstake deadman takeover", "staker", staker, "backup", stake.BackupAddr, "amount", seized)
	resp := &contract.Response{Status: Success}
	resp.AddAttribute(AttrAction, ActionDeadmanDelay).
		AddAttribute(AttrStaker, staker).
		AddAttribute(AttrBackupAddr, stake.BackupAddr).
		AddAttribute(AttrAmount, seized.String())
	transfers.AttachTo(resp)
	return resp, nil
}

func (c *Contract) updateConfig(ctx contract.KContext, msg *UpdateConfigMsg) (*contract.Response, error) {
	s := c.store(ctx)
	_, err := s.UpdateConfig(func(cfg *Config) error {
		if ctx.Initiator() != cfg.Owner {
			return &PermissionDeniedError{Addr: ctx.Initiator()}
		}
		if msg.StakingPeriod != nil {
			cfg.UnbondPeriod = *msg.StakingPeriod
		}
		if msg.ActivityInterval != nil {
			cfg.ActivityInterval = *msg.ActivityInterval
		}
		if msg.PenaltyPercentage != nil {
			if *msg.PenaltyPercentage > 100 {
				return errors.Wrapf(ErrInvalidConfig, "penalty_percentage %d exceeds 100", *msg.PenaltyPercentage)
			}
			cfg.PenaltyPercentage = *msg.PenaltyPercentage
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := &contract.Response{Status: Success}
	resp.AddAttribute(AttrAction, ActionUpdateConfig)
	return resp, nil
}
