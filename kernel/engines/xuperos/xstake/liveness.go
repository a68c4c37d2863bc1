package xstake

// IsActive reports whether the staker refreshed its clock within the
// activity interval.
func IsActive(stake *Stake, cfg *Config, now uint64) bool {
	return now < stake.LastTimeActive+cfg.ActivityInterval
}

// IsEarly reports whether an unbond at now is penalized.
func IsEarly(stake *Stake, now uint64) bool {
	return now < stake.TimeUntil
}

// Penalty returns floor(amount * pct / 100), never more than amount.
func Penalty(amount Uint128, pct uint64) Uint128 {
	if pct >= 100 {
		return amount
	}
	return amount.MulDivFloor(pct, 100)
}
