package xstake

import (
	"github.com/pkg/errors"

	"github.com/xuperchain/xstake/kernel/contract"
	"github.com/xuperchain/xstake/kernel/contract/sandbox"
)

// store reads and writes the contract cells inside the invocation sandbox.
// Nothing reaches the ledger until the engine commits the sandbox.
type store struct {
	state contract.XMState
	codec Codec
}

func newStore(state contract.XMState, codec Codec) *store {
	return &store{state: state, codec: codec}
}

// get returns (nil, nil) when key is absent.
func (s *store) get(key string) ([]byte, error) {
	value, err := s.state.Get(bucket, []byte(key))
	if err != nil {
		if sandbox.IsNotFound(err) {
			return nil, nil
		}
		return nil, stdError(err, "read %s", key)
	}
	return value, nil
}

func (s *store) load(key string, v interface{}) error {
	value, err := s.get(key)
	if err != nil {
		return err
	}
	if value == nil {
		return errors.Wrapf(ErrNotFound, "%s not found", key)
	}
	if err := s.codec.Unmarshal(value, v); err != nil {
		return stdError(err, "unmarshal %s", key)
	}
	return nil
}

func (s *store) save(key string, v interface{}) error {
	value, err := s.codec.Marshal(v)
	if err != nil {
		return stdError(err, "marshal %s", key)
	}
	if err := s.state.Put(bucket, []byte(key), value); err != nil {
		return stdError(err, "write %s", key)
	}
	return nil
}

func (s *store) has(key string) (bool, error) {
	value, err := s.get(key)
	return value != nil, err
}

func (s *store) LoadConfig() (*Config, error) {
	cfg := new(Config)
	if err := s.load(keyConfig, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *store) SaveConfig(cfg *Config) error {
	return s.save(keyConfig, cfg)
}

func (s *store) UpdateConfig(fn func(cfg *Config) error) (*Config, error) {
	cfg, err := s.LoadConfig()
	if err != nil {
		return nil, err
	}
	if err := fn(cfg); err != nil {
		return nil, err
	}
	return cfg, s.SaveConfig(cfg)
}

func (s *store) LoadState() (*State, error) {
	st := new(State)
	if err := s.load(keyState, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *store) SaveState(st *State) error {
	return s.save(keyState, st)
}

// UpdateState is the only mutation path for State.
func (s *store) UpdateState(fn func(st State) (State, error)) (*State, error) {
	old, err := s.LoadState()
	if err != nil {
		return nil, err
	}
	st, err := fn(*old)
	if err != nil {
		return nil, err
	}
	return &st, s.SaveState(&st)
}

// MayLoadStake returns nil when the staker has no row.
func (s *store) MayLoadStake(staker string) (*Stake, error) {
	value, err := s.get(KeyOfStake(staker))
	if err != nil || value == nil {
		return nil, err
	}
	stake := new(Stake)
	if err := s.codec.Unmarshal(value, stake); err != nil {
		return nil, stdError(err, "unmarshal stake of %s", staker)
	}
	return stake, nil
}

func (s *store) LoadStake(staker string) (*Stake, error) {
	stake, err := s.MayLoadStake(staker)
	if err != nil {
		return nil, err
	}
	if stake == nil {
		return nil, errors.Wrapf(ErrNotFound, "stake of %s not found", staker)
	}
	return stake, nil
}

func (s *store) SaveStake(staker string, stake *Stake) error {
	return s.save(KeyOfStake(staker), stake)
}

// UpdateStake passes nil to fn when the staker has no row yet.
func (s *store) UpdateStake(staker string, fn func(old *Stake) (*Stake, error)) (*Stake, error) {
	old, err := s.MayLoadStake(staker)
	if err != nil {
		return nil, err
	}
	stake, err := fn(old)
	if err != nil {
		return nil, err
	}
	return stake, s.SaveStake(staker, stake)
}

// RangeStakes lists at most limit rows in address order, strictly after startAfter.
func (s *store) RangeStakes(startAfter string, limit int) ([]StakerInfoResponse, error) {
	start := []byte(prefixStake)
	if startAfter != "" {
		start = []byte(KeyOfStake(startAfter) + "\x00")
	}
	// '/' + 1
	end := []byte(prefixStake[:len(prefixStake)-1] + "0")

	iter, err := s.state.Select(bucket, start, end)
	if err != nil {
		return nil, stdError(err, "select stakes")
	}
	defer iter.Close()

	res := make([]StakerInfoResponse, 0, limit)
	for len(res) < limit && iter.Next() {
		staker := string(iter.Key()[len(prefixStake):])
		stake := new(Stake)
		if err := s.codec.Unmarshal(iter.Value(), stake); err != nil {
			return nil, stdError(err, "unmarshal stake of %s", staker)
		}
		res = append(res, newStakerInfo(staker, stake))
	}
	if err := iter.Error(); err != nil {
		return nil, stdError(err, "iterate stakes")
	}
	return res, nil
}

func (s *store) LoadContractInfo() (*ContractInfo, error) {
	info := new(ContractInfo)
	if err := s.load(keyContractInfo, info); err != nil {
		return nil, err
	}
	return info, nil
}

func (s *store) SaveContractInfo(info *ContractInfo) error {
	return s.save(keyContractInfo, info)
}
