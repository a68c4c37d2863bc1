package xstake

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/xuperchain/xstake/kernel/contract"
)

// Query 只读, 返回json
func (c *Contract) Query(ctx contract.KContext) (*contract.Response, error) {
	value, err := msgArg(ctx)
	if err != nil {
		return nil, err
	}
	msg, err := ParseQueryMsg(value)
	if err != nil {
		return nil, err
	}

	s := c.store(ctx)
	var res interface{}
	switch m := msg.(type) {
	case *ConfigQuery:
		res, err = s.LoadConfig()
	case *StateQuery:
		var st *State
		if st, err = s.LoadState(); err == nil {
			res = &StateResponse{TotalBondAmount: st.TotalBondAmount}
		}
	case *StakerInfoQuery:
		res, err = c.stakerInfo(ctx, s, m.Staker)
	case *StakersQuery:
		res, err = c.stakers(ctx, s, m)
	case *ContractInfoQuery:
		res, err = s.LoadContractInfo()
	default:
		return nil, errors.Wrapf(ErrDecode, "unsupported query msg %T", msg)
	}
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(res)
	if err != nil {
		return nil, stdError(err, "marshal query result")
	}
	return &contract.Response{
		Status: Success,
		Body:   body,
	}, nil
}

func (c *Contract) stakerInfo(ctx contract.KContext, s *store, staker string) (*StakerInfoResponse, error) {
	if err := c.validateAddr(ctx, "staker", staker); err != nil {
		return nil, err
	}
	stake, err := s.LoadStake(staker)
	if err != nil {
		return nil, err
	}
	info := newStakerInfo(staker, stake)
	return &info, nil
}

func (c *Contract) stakers(ctx contract.KContext, s *store, q *StakersQuery) (*StakersResponse, error) {
	// 0 与未指定相同
	limit := DefaultLimit
	if q.Limit != nil && *q.Limit > 0 {
		limit = int(*q.Limit)
		if limit > MaxLimit {
			limit = MaxLimit
		}
	}
	startAfter := ""
	if q.StartAfter != nil {
		if err := c.validateAddr(ctx, "start_after", *q.StartAfter); err != nil {
			return nil, err
		}
		startAfter = *q.StartAfter
	}

	list, err := s.RangeStakes(startAfter, limit)
	if err != nil {
		return nil, err
	}
	return &StakersResponse{Stakers: list}, nil
}
