package xstake

const (
	XStakeContract = "XStake"

	// cw2 风格的合约版本信息
	ContractName    = "crates.io:deadman-stake"
	ContractVersion = "0.1.0"

	// 合约入口
	Instantiate = "Instantiate"
	Execute     = "Execute"
	Query       = "Query"

	//Success 成功
	Success = 200
)

// 存储布局, 所有数据都在同一个bucket下
const (
	bucket = XStakeContract

	keyConfig       = "config"
	keyState        = "state"
	keyContractInfo = "contract_info"
	prefixStake     = "stake/"
)

func KeyOfStake(addr string) string {
	return prefixStake + addr
}

// response attribute keys
const (
	AttrAction          = "action"
	AttrOwner           = "owner"
	AttrAmount          = "amount"
	AttrNewAmount       = "new_amount"
	AttrWithdrawnAmount = "withdrawed_amount"
	AttrStaker          = "staker"
	AttrBackupAddr      = "backup_addr"

	ActionBond         = "bond"
	ActionWithdraw     = "withdraw"
	ActionKeepAlive    = "keep_alive"
	ActionDeadmanDelay = "deadman_delay"
	ActionUpdateConfig = "update_config"
	ActionInstantiate  = "instantiate"
)

// staker listing limits
const (
	DefaultLimit = 10
	MaxLimit     = 30
)

type Config struct {
	Owner             string `json:"owner"`
	StakingToken      string `json:"staking_token"`
	UnbondPeriod      uint64 `json:"unbond_period"`
	ActivityInterval  uint64 `json:"activity_interval"`
	PenaltyPercentage uint64 `json:"penalty_percentage"`
}

type State struct {
	TotalBondAmount Uint128 `json:"total_bond_amount"`
}

type Stake struct {
	Amount         Uint128 `json:"amount"`
	BackupAddr     string  `json:"backup_addr"`
	TimeUntil      uint64  `json:"time_until"`
	LastTimeActive uint64  `json:"last_time_active"`
}

type ContractInfo struct {
	Contract string `json:"contract"`
	Version  string `json:"version"`
}

type ConfigResponse = Config

type StateResponse struct {
	TotalBondAmount Uint128 `json:"total_bond_amount"`
}

type StakerInfoResponse struct {
	Staker         string  `json:"staker"`
	TimeUntil      uint64  `json:"time_until"`
	BackupAddr     string  `json:"backup_addr"`
	Amount         Uint128 `json:"amount"`
	LastTimeActive uint64  `json:"last_time_active"`
}

type StakersResponse struct {
	Stakers []StakerInfoResponse `json:"stakers"`
}

func newStakerInfo(staker string, s *Stake) StakerInfoResponse {
	return StakerInfoResponse{
		Staker:         staker,
		TimeUntil:      s.TimeUntil,
		BackupAddr:     s.BackupAddr,
		Amount:         s.Amount,
		LastTimeActive: s.LastTimeActive,
	}
}
