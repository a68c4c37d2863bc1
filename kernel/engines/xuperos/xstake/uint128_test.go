package xstake

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const maxUint128Str = "340282366920938463463374607431768211455"

func TestUint128Arithmetic(t *testing.T) {
	max, err := ParseUint128(maxUint128Str)
	require.NoError(t, err)
	assert.Equal(t, maxUint128Str, max.String())

	_, err = max.CheckedAdd(NewUint128(1))
	assert.Error(t, err)

	_, err = NewUint128(1).CheckedSub(NewUint128(2))
	assert.Error(t, err)

	r, err := NewUint128(10).CheckedSub(NewUint128(3))
	require.NoError(t, err)
	assert.Equal(t, "7", r.String())

	for _, in := range []string{"", "-1", "1.5", "0x10", "340282366920938463463374607431768211456"} {
		_, err := ParseUint128(in)
		assert.Error(t, err, in)
	}
}

func TestPenalty(t *testing.T) {
	max, _ := ParseUint128(maxUint128Str)
	testCases := []struct {
		amount Uint128
		pct    uint64
		want   string
	}{
		{NewUint128(1000), 10, "100"},
		{NewUint128(999), 10, "99"},
		{NewUint128(1), 99, "0"},
		{NewUint128(1000), 0, "0"},
		{NewUint128(1000), 100, "1000"},
		{NewUint128(1000), 150, "1000"},
		{max, 50, "170141183460469231731687303715884105727"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, Penalty(tc.amount, tc.pct).String())
	}
}

func TestUint128Codec(t *testing.T) {
	st := &Stake{Amount: NewUint128(123), BackupAddr: "bob", TimeUntil: 5, LastTimeActive: 1}
	data, err := json.Marshal(st)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"123","backup_addr":"bob","time_until":5,"last_time_active":1}`, string(data))

	codec, err := NewCodec(CodecCBOR)
	require.NoError(t, err)
	data, err = codec.Marshal(st)
	require.NoError(t, err)
	got := new(Stake)
	require.NoError(t, codec.Unmarshal(data, got))
	assert.Equal(t, st, got)

	_, err = NewCodec("xml")
	assert.Error(t, err)
}
