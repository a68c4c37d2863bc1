package xstake

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xuperchain/xstake/kernel/contract"
	"github.com/xuperchain/xstake/kernel/engines/xuperos/common"
)

const (
	owner = "creator"
	token = "luna"
	alice = "alice"
	bob   = "bob"
)

func newTestContract(t *testing.T, codec string) (*Contract, *FakeKContext) {
	ctx, err := NewXStakeCtx(codec)
	require.NoError(t, err)
	return NewContract(ctx), NewFakeKContext(nil, map[string]map[string][]byte{})
}

func instantiate(t *testing.T, c *Contract, kctx *FakeKContext, pct uint64) {
	msg, err := json.Marshal(&InstantiateMsg{
		StakingToken:      token,
		UnbondPeriod:      7200,
		ActivityInterval:  3600,
		PenaltyPercentage: pct,
	})
	require.NoError(t, err)
	_, err = c.Instantiate(kctx.with(owner, 0, msg))
	require.NoError(t, err)
}

func execute(t *testing.T, c *Contract, kctx *FakeKContext, caller string, now uint64, msg ExecuteMsg) (*contract.Response, error) {
	data, err := EncodeExecuteMsg(msg)
	require.NoError(t, err)
	return c.Execute(kctx.with(caller, now, data))
}

func receiveBond(t *testing.T, staker string, amount uint64, backup string) *ReceiveMsg {
	hook, err := EncodeHookMsg(&BondHookMsg{BackupAddr: backup})
	require.NoError(t, err)
	return &ReceiveMsg{Sender: staker, Amount: NewUint128(amount), Msg: hook}
}

func query(t *testing.T, c *Contract, kctx *FakeKContext, q QueryMsg, out interface{}) error {
	data, err := EncodeQueryMsg(q)
	require.NoError(t, err)
	resp, err := c.Query(kctx.with(owner, 0, data))
	if err != nil {
		return err
	}
	require.NoError(t, json.Unmarshal(resp.Body, out))
	return nil
}

func stakeOf(t *testing.T, c *Contract, kctx *FakeKContext, staker string) StakerInfoResponse {
	var info StakerInfoResponse
	require.NoError(t, query(t, c, kctx, &StakerInfoQuery{Staker: staker}, &info))
	return info
}

func totalBond(t *testing.T, c *Contract, kctx *FakeKContext) Uint128 {
	var st StateResponse
	require.NoError(t, query(t, c, kctx, &StateQuery{}, &st))
	return st.TotalBondAmount
}

// checkTotal asserts the total equals the sum of every stake row.
func checkTotal(t *testing.T, c *Contract, kctx *FakeKContext) {
	limit := uint32(MaxLimit)
	var res StakersResponse
	require.NoError(t, query(t, c, kctx, &StakersQuery{Limit: &limit}, &res))
	sum := NewUint128(0)
	for _, s := range res.Stakers {
		var err error
		sum, err = sum.CheckedAdd(s.Amount)
		require.NoError(t, err)
	}
	assert.Equal(t, 0, sum.Cmp(totalBond(t, c, kctx)), "sum %s", sum)
}

func assertTransfers(t *testing.T, resp *contract.Response, want ...TransferMsg) {
	require.Len(t, resp.Messages, len(want))
	for i, w := range want {
		assert.Equal(t, token, resp.Messages[i].Contract)
		var got map[string]TransferMsg
		require.NoError(t, json.Unmarshal(resp.Messages[i].Msg, &got))
		assert.Equal(t, w.Recipient, got["transfer"].Recipient)
		assert.Equal(t, w.Amount.String(), got["transfer"].Amount.String())
	}
}

func transfer(recipient string, amount uint64) TransferMsg {
	return TransferMsg{Recipient: recipient, Amount: NewUint128(amount)}
}

func TestInstantiateAndConfig(t *testing.T) {
	for _, codec := range []string{CodecJSON, CodecCBOR} {
		t.Run(codec, func(t *testing.T) {
			c, kctx := newTestContract(t, codec)
			instantiate(t, c, kctx, 2)

			var cfg ConfigResponse
			require.NoError(t, query(t, c, kctx, &ConfigQuery{}, &cfg))
			assert.Equal(t, ConfigResponse{
				Owner:             owner,
				StakingToken:      token,
				UnbondPeriod:      7200,
				ActivityInterval:  3600,
				PenaltyPercentage: 2,
			}, cfg)
			assert.True(t, totalBond(t, c, kctx).IsZero())

			var info ContractInfo
			require.NoError(t, query(t, c, kctx, &ContractInfoQuery{}, &info))
			assert.Equal(t, ContractVersion, info.Version)

			msg, _ := json.Marshal(&InstantiateMsg{StakingToken: token})
			_, err := c.Instantiate(kctx.with(owner, 1, msg))
			assert.True(t, errors.Is(err, ErrAlreadyInitialized))
		})
	}
}

func TestInstantiateInvalid(t *testing.T) {
	c, kctx := newTestContract(t, CodecJSON)
	msg, _ := json.Marshal(&InstantiateMsg{StakingToken: token, PenaltyPercentage: 101})
	_, err := c.Instantiate(kctx.with(owner, 0, msg))
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	msg, _ = json.Marshal(&InstantiateMsg{StakingToken: "LUNA"})
	_, err = c.Instantiate(kctx.with(owner, 0, msg))
	assert.True(t, errors.Is(err, ErrStd))

	_, err = c.Instantiate(kctx.with(owner, 0, []byte("{")))
	assert.True(t, errors.Is(err, ErrDecode))
	assert.Empty(t, kctx.data)
}

func bondTwice(t *testing.T, codec string, pct uint64) (*Contract, *FakeKContext) {
	c, kctx := newTestContract(t, codec)
	instantiate(t, c, kctx, pct)

	resp, err := execute(t, c, kctx, token, 1000, receiveBond(t, alice, 1000, bob))
	require.NoError(t, err)
	assert.Empty(t, resp.Messages)
	v, _ := resp.Attribute(AttrNewAmount)
	assert.Equal(t, "1000", v)
	checkTotal(t, c, kctx)

	resp, err = execute(t, c, kctx, token, 2000, receiveBond(t, alice, 500, bob))
	require.NoError(t, err)
	v, _ = resp.Attribute(AttrNewAmount)
	assert.Equal(t, "1500", v)
	checkTotal(t, c, kctx)
	return c, kctx
}

func TestBondAccumulates(t *testing.T) {
	for _, codec := range []string{CodecJSON, CodecCBOR} {
		t.Run(codec, func(t *testing.T) {
			c, kctx := bondTwice(t, codec, 2)
			assert.Equal(t, StakerInfoResponse{
				Staker:         alice,
				TimeUntil:      5600,
				BackupAddr:     bob,
				Amount:         NewUint128(1500),
				LastTimeActive: 2000,
			}, stakeOf(t, c, kctx, alice))
			assert.Equal(t, "1500", totalBond(t, c, kctx).String())
		})
	}
}

func TestEarlyUnbondPenalty(t *testing.T) {
	c, kctx := bondTwice(t, CodecJSON, 2)
	pct := uint64(10)
	_, err := execute(t, c, kctx, owner, 2500, &UpdateConfigMsg{PenaltyPercentage: &pct})
	require.NoError(t, err)

	resp, err := execute(t, c, kctx, alice, 3000, &UnbondMsg{Amount: NewUint128(1000)})
	require.NoError(t, err)
	assertTransfers(t, resp, transfer(owner, 100), transfer(alice, 900))
	v, _ := resp.Attribute(AttrWithdrawnAmount)
	assert.Equal(t, "1000", v)

	info := stakeOf(t, c, kctx, alice)
	assert.Equal(t, "500", info.Amount.String())
	assert.Equal(t, uint64(3000), info.LastTimeActive)
	assert.Equal(t, "500", totalBond(t, c, kctx).String())
	checkTotal(t, c, kctx)
}

func TestMaturedUnbond(t *testing.T) {
	c, kctx := bondTwice(t, CodecCBOR, 10)
	resp, err := execute(t, c, kctx, alice, 6000, &UnbondMsg{Amount: NewUint128(500)})
	require.NoError(t, err)
	assertTransfers(t, resp, transfer(alice, 500))
	assert.Equal(t, "1000", stakeOf(t, c, kctx, alice).Amount.String())
	checkTotal(t, c, kctx)
}

func TestUnbondPenaltyEdges(t *testing.T) {
	testCases := []struct {
		pct  uint64
		want []TransferMsg
	}{
		{0, []TransferMsg{transfer(alice, 1000)}},
		{100, []TransferMsg{transfer(owner, 1000)}},
		{3, []TransferMsg{transfer(owner, 30), transfer(alice, 970)}},
	}
	for _, tc := range testCases {
		c, kctx := newTestContract(t, CodecJSON)
		instantiate(t, c, kctx, tc.pct)
		_, err := execute(t, c, kctx, token, 1000, receiveBond(t, alice, 1000, bob))
		require.NoError(t, err)

		resp, err := execute(t, c, kctx, alice, 1001, &UnbondMsg{Amount: NewUint128(1000)})
		require.NoError(t, err)
		assertTransfers(t, resp, tc.want...)
		checkTotal(t, c, kctx)
	}
}

func TestBondThenMaturedUnbondRoundTrip(t *testing.T) {
	c, kctx := newTestContract(t, CodecJSON)
	instantiate(t, c, kctx, 50)
	_, err := execute(t, c, kctx, token, 100, receiveBond(t, alice, 777, bob))
	require.NoError(t, err)
	resp, err := execute(t, c, kctx, alice, 100+3600, &UnbondMsg{Amount: NewUint128(777)})
	require.NoError(t, err)
	assertTransfers(t, resp, transfer(alice, 777))
	assert.True(t, totalBond(t, c, kctx).IsZero())
	assert.True(t, stakeOf(t, c, kctx, alice).Amount.IsZero())
}

func TestUnbondErrors(t *testing.T) {
	c, kctx := bondTwice(t, CodecJSON, 2)
	before := kctx.snapshot()

	_, err := execute(t, c, kctx, alice, 3000, &UnbondMsg{Amount: NewUint128(0)})
	assert.True(t, errors.Is(err, ErrInvalidAmount))
	_, err = execute(t, c, kctx, bob, 3000, &UnbondMsg{Amount: NewUint128(1)})
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = execute(t, c, kctx, alice, 3000, &UnbondMsg{Amount: NewUint128(1501)})
	assert.True(t, errors.Is(err, ErrInsufficientFunds))
	_, err = execute(t, c, kctx, bob, 3000, &KeepAliveMsg{})
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = execute(t, c, kctx, alice, 3000, &ClaimMsg{})
	assert.True(t, errors.Is(err, ErrNotImplemented))
	assert.Equal(t, 501, common.CastError(err).HTTPStatus())

	assert.Equal(t, before, kctx.data)
}

func TestUnauthorizedBond(t *testing.T) {
	c, kctx := bondTwice(t, CodecJSON, 2)
	before := kctx.snapshot()

	_, err := execute(t, c, kctx, "mallory", 3000, receiveBond(t, alice, 1000, bob))
	assert.True(t, errors.Is(err, ErrUnauthorized))

	// 授权检查先于信封解码
	bad := &ReceiveMsg{Sender: alice, Amount: NewUint128(1), Msg: []byte("garbage")}
	_, err = execute(t, c, kctx, "mallory", 3000, bad)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	_, err = execute(t, c, kctx, token, 3000, bad)
	assert.True(t, errors.Is(err, ErrDecode))

	_, err = execute(t, c, kctx, token, 3000, receiveBond(t, alice, 0, bob))
	assert.True(t, errors.Is(err, ErrInvalidAmount))
	_, err = execute(t, c, kctx, token, 3000, receiveBond(t, alice, 5, "BOB"))
	assert.True(t, errors.Is(err, ErrStd))

	assert.Equal(t, before, kctx.data)
}

func TestDeadmanTakeover(t *testing.T) {
	c, kctx := newTestContract(t, CodecJSON)
	instantiate(t, c, kctx, 2)
	_, err := execute(t, c, kctx, token, 1000, receiveBond(t, alice, 1000, bob))
	require.NoError(t, err)

	_, err = execute(t, c, kctx, "mallory", 5000, &DeadmanDelayMsg{Addr: alice})
	assert.True(t, errors.Is(err, ErrUnauthorized))
	_, err = execute(t, c, kctx, bob, 4599, &DeadmanDelayMsg{Addr: alice})
	assert.True(t, errors.Is(err, ErrUnauthorized))

	resp, err := execute(t, c, kctx, bob, 5000, &DeadmanDelayMsg{Addr: alice})
	require.NoError(t, err)
	assertTransfers(t, resp, transfer(bob, 1000))
	v, _ := resp.Attribute(AttrBackupAddr)
	assert.Equal(t, bob, v)

	info := stakeOf(t, c, kctx, alice)
	assert.True(t, info.Amount.IsZero())
	assert.Equal(t, bob, info.BackupAddr)
	assert.True(t, totalBond(t, c, kctx).IsZero())
	checkTotal(t, c, kctx)

	before := kctx.snapshot()
	_, err = execute(t, c, kctx, bob, 6000, &DeadmanDelayMsg{Addr: alice})
	assert.True(t, errors.Is(err, ErrInvalidAmount))
	assert.Equal(t, before, kctx.data)

	// drained row can be bonded again
	_, err = execute(t, c, kctx, token, 7000, receiveBond(t, alice, 10, bob))
	require.NoError(t, err)
	assert.Equal(t, "10", stakeOf(t, c, kctx, alice).Amount.String())
	checkTotal(t, c, kctx)
}

// bond at 1000: time_until = last_time_active + activity_interval = 4600
func TestLivenessBoundaries(t *testing.T) {
	testCases := []struct {
		name string
		now  uint64
		want []TransferMsg
	}{
		{"one second early", 4599, []TransferMsg{transfer(owner, 10), transfer(alice, 90)}},
		{"at time_until", 4600, []TransferMsg{transfer(alice, 100)}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, kctx := newTestContract(t, CodecJSON)
			instantiate(t, c, kctx, 10)
			_, err := execute(t, c, kctx, token, 1000, receiveBond(t, alice, 1000, bob))
			require.NoError(t, err)

			resp, err := execute(t, c, kctx, alice, tc.now, &UnbondMsg{Amount: NewUint128(100)})
			require.NoError(t, err)
			assertTransfers(t, resp, tc.want...)

			// unbond refreshed the clock, the staker stays active until now+3600
			deadline := tc.now + 3600
			_, err = execute(t, c, kctx, bob, deadline-1, &DeadmanDelayMsg{Addr: alice})
			assert.True(t, errors.Is(err, ErrUnauthorized))
			resp, err = execute(t, c, kctx, bob, deadline, &DeadmanDelayMsg{Addr: alice})
			require.NoError(t, err)
			assertTransfers(t, resp, transfer(bob, 900))
			checkTotal(t, c, kctx)
		})
	}
}

func TestDeadmanAtExactDeadline(t *testing.T) {
	c, kctx := newTestContract(t, CodecJSON)
	instantiate(t, c, kctx, 2)
	_, err := execute(t, c, kctx, token, 1000, receiveBond(t, alice, 1000, bob))
	require.NoError(t, err)

	resp, err := execute(t, c, kctx, bob, 4600, &DeadmanDelayMsg{Addr: alice})
	require.NoError(t, err)
	assertTransfers(t, resp, transfer(bob, 1000))
	assert.True(t, totalBond(t, c, kctx).IsZero())
}

func TestKeepAliveDefeatsDeadman(t *testing.T) {
	c, kctx := newTestContract(t, CodecJSON)
	instantiate(t, c, kctx, 2)
	_, err := execute(t, c, kctx, token, 1000, receiveBond(t, alice, 1000, bob))
	require.NoError(t, err)

	resp, err := execute(t, c, kctx, alice, 4000, &KeepAliveMsg{})
	require.NoError(t, err)
	v, _ := resp.Attribute(AttrAction)
	assert.Equal(t, ActionKeepAlive, v)
	assert.Equal(t, "1000", stakeOf(t, c, kctx, alice).Amount.String())

	_, err = execute(t, c, kctx, bob, 5000, &DeadmanDelayMsg{Addr: alice})
	assert.True(t, errors.Is(err, ErrUnauthorized))

	_, err = execute(t, c, kctx, bob, 7600, &DeadmanDelayMsg{Addr: alice})
	assert.NoError(t, err)
}

func TestUpdateConfig(t *testing.T) {
	c, kctx := newTestContract(t, CodecJSON)
	instantiate(t, c, kctx, 2)

	period, pct := uint64(10), uint64(5)
	_, err := execute(t, c, kctx, alice, 1, &UpdateConfigMsg{StakingPeriod: &period})
	var denied *PermissionDeniedError
	require.True(t, errors.As(err, &denied))
	assert.Equal(t, alice, denied.Addr)
	assert.True(t, errors.Is(err, ErrPermissionDenied))
	assert.Equal(t, "Permission Denied: alice does not have the permissions to change contract config", denied.Error())

	_, err = execute(t, c, kctx, owner, 1, &UpdateConfigMsg{StakingPeriod: &period, PenaltyPercentage: &pct})
	require.NoError(t, err)
	var cfg ConfigResponse
	require.NoError(t, query(t, c, kctx, &ConfigQuery{}, &cfg))
	assert.Equal(t, uint64(10), cfg.UnbondPeriod)
	assert.Equal(t, uint64(3600), cfg.ActivityInterval)
	assert.Equal(t, uint64(5), cfg.PenaltyPercentage)

	tooMuch := uint64(101)
	_, err = execute(t, c, kctx, owner, 1, &UpdateConfigMsg{PenaltyPercentage: &tooMuch})
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestQueryStakers(t *testing.T) {
	c, kctx := newTestContract(t, CodecJSON)
	instantiate(t, c, kctx, 2)
	for i, staker := range []string{"dave", alice, "carol", bob} {
		_, err := execute(t, c, kctx, token, uint64(i+1), receiveBond(t, staker, uint64(i+1)*10, "eve"))
		require.NoError(t, err)
	}
	checkTotal(t, c, kctx)

	limit := uint32(2)
	var res StakersResponse
	require.NoError(t, query(t, c, kctx, &StakersQuery{Limit: &limit}, &res))
	require.Len(t, res.Stakers, 2)
	assert.Equal(t, alice, res.Stakers[0].Staker)
	assert.Equal(t, bob, res.Stakers[1].Staker)

	after := bob
	require.NoError(t, query(t, c, kctx, &StakersQuery{StartAfter: &after}, &res))
	require.Len(t, res.Stakers, 2)
	assert.Equal(t, "carol", res.Stakers[0].Staker)
	assert.Equal(t, "dave", res.Stakers[1].Staker)

	zero := uint32(0)
	require.NoError(t, query(t, c, kctx, &StakersQuery{Limit: &zero}, &res))
	assert.Len(t, res.Stakers, 4)

	var info StakerInfoResponse
	err := query(t, c, kctx, &StakerInfoQuery{Staker: "nobody"}, &info)
	assert.True(t, errors.Is(err, ErrNotFound))
}
