package xstake

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExecuteMsg(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want ExecuteMsg
	}{
		{"keep_alive string", `"keep_alive"`, &KeepAliveMsg{}},
		{"keep_alive object", `{"keep_alive":{}}`, &KeepAliveMsg{}},
		{"claim", `{"claim":{}}`, &ClaimMsg{}},
		{"unbond", `{"unbond":{"amount":"42"}}`, &UnbondMsg{Amount: NewUint128(42)}},
		{"deadman", `{"deadman_delay":{"addr":"alice"}}`, &DeadmanDelayMsg{Addr: "alice"}},
		{"receive", `{"receive":{"sender":"alice","amount":"7","msg":"eyJib25kIjp7fX0="}}`,
			&ReceiveMsg{Sender: "alice", Amount: NewUint128(7), Msg: []byte(`{"bond":{}}`)}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseExecuteMsg([]byte(tc.in))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	period := uint64(9)
	got, err := ParseExecuteMsg([]byte(`{"update_config":{"staking_period":9}}`))
	require.NoError(t, err)
	assert.Equal(t, &UpdateConfigMsg{StakingPeriod: &period}, got)
}

func TestParseExecuteMsgInvalid(t *testing.T) {
	for _, in := range []string{
		``,
		`"bond"`,
		`{"unbond":{"amount":"1"},"claim":{}}`,
		`{"unbond":{"amount":1}}`,
		`{"unbond":{"amount":"-1"}}`,
		`{"unbond":{"amount":"340282366920938463463374607431768211456"}}`,
		`{"unbond":{"amount":"1","extra":true}}`,
		`{"deadman_delay":null}`,
		`{"unbond"}`,
	} {
		_, err := ParseExecuteMsg([]byte(in))
		assert.True(t, errors.Is(err, ErrDecode), "input %q err %v", in, err)
	}
}

func TestEncodeExecuteMsg(t *testing.T) {
	data, err := EncodeExecuteMsg(&KeepAliveMsg{})
	require.NoError(t, err)
	assert.Equal(t, `"keep_alive"`, string(data))

	data, err = EncodeExecuteMsg(&UnbondMsg{Amount: NewUint128(3)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"unbond":{"amount":"3"}}`, string(data))

	msg, err := ParseExecuteMsg(data)
	require.NoError(t, err)
	assert.Equal(t, &UnbondMsg{Amount: NewUint128(3)}, msg)
}

func TestParseHookAndQuery(t *testing.T) {
	hook, err := ParseHookMsg([]byte(`{"bond":{"backup_addr":"bob"}}`))
	require.NoError(t, err)
	assert.Equal(t, "bob", hook.BackupAddr)

	_, err = ParseHookMsg([]byte(`{"unbond":{"amount":"1"}}`))
	assert.True(t, errors.Is(err, ErrDecode))

	q, err := ParseQueryMsg([]byte(`"state"`))
	require.NoError(t, err)
	assert.Equal(t, &StateQuery{}, q)

	q, err = ParseQueryMsg([]byte(`{"staker_info":{"staker":"alice"}}`))
	require.NoError(t, err)
	assert.Equal(t, &StakerInfoQuery{Staker: "alice"}, q)

	data, err := EncodeQueryMsg(&ConfigQuery{})
	require.NoError(t, err)
	assert.Equal(t, `"config"`, string(data))

	data, err = EncodeTransferMsg("bob", NewUint128(5))
	require.NoError(t, err)
	assert.JSONEq(t, `{"transfer":{"recipient":"bob","amount":"5"}}`, string(data))
}
