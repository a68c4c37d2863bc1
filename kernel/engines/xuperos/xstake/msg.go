package xstake

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

type InstantiateMsg struct {
	StakingToken      string `json:"staking_token" mapstructure:"staking_token"`
	UnbondPeriod      uint64 `json:"unbond_period" mapstructure:"unbond_period"`
	ActivityInterval  uint64 `json:"activity_interval" mapstructure:"activity_interval"`
	PenaltyPercentage uint64 `json:"penalty_percentage" mapstructure:"penalty_percentage"`
}

// ExecuteMsg is one of the execute variants below. The set is closed.
type ExecuteMsg interface {
	executeTag() string
}

// ReceiveMsg is the envelope delivered by the staking token contract.
// Msg carries a HookMsg, base64 encoded on the wire.
type ReceiveMsg struct {
	Sender string  `json:"sender"`
	Amount Uint128 `json:"amount"`
	Msg    []byte  `json:"msg"`
}

type UnbondMsg struct {
	Amount Uint128 `json:"amount"`
}

type ClaimMsg struct{}

type KeepAliveMsg struct{}

type DeadmanDelayMsg struct {
	Addr string `json:"addr"`
}

type UpdateConfigMsg struct {
	StakingPeriod     *uint64 `json:"staking_period,omitempty"`
	ActivityInterval  *uint64 `json:"activity_interval,omitempty"`
	PenaltyPercentage *uint64 `json:"penalty_percentage,omitempty"`
}

func (ReceiveMsg) executeTag() string      { return "receive" }
func (UnbondMsg) executeTag() string       { return "unbond" }
func (ClaimMsg) executeTag() string        { return "claim" }
func (KeepAliveMsg) executeTag() string    { return "keep_alive" }
func (DeadmanDelayMsg) executeTag() string { return "deadman_delay" }
func (UpdateConfigMsg) executeTag() string { return "update_config" }

// BondHookMsg is the only payload accepted inside a ReceiveMsg.
type BondHookMsg struct {
	BackupAddr string `json:"backup_addr"`
}

// QueryMsg is one of the query variants below.
type QueryMsg interface {
	queryTag() string
}

type ConfigQuery struct{}

type StateQuery struct{}

type StakerInfoQuery struct {
	Staker string `json:"staker"`
}

type StakersQuery struct {
	StartAfter *string `json:"start_after,omitempty"`
	Limit      *uint32 `json:"limit,omitempty"`
}

type ContractInfoQuery struct{}

func (ConfigQuery) queryTag() string       { return "config" }
func (StateQuery) queryTag() string        { return "state" }
func (StakerInfoQuery) queryTag() string   { return "staker_info" }
func (StakersQuery) queryTag() string      { return "stakers" }
func (ContractInfoQuery) queryTag() string { return "contract_info" }

// splitTagged accepts either a bare string ("keep_alive") or an object with
// exactly one key ({"unbond":{...}}).
func splitTagged(data []byte) (string, json.RawMessage, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return "", nil, errors.New("empty message")
	}
	if data[0] == '"' {
		var tag string
		if err := json.Unmarshal(data, &tag); err != nil {
			return "", nil, err
		}
		return tag, nil, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return "", nil, err
	}
	if len(obj) != 1 {
		return "", nil, fmt.Errorf("expected exactly one variant, got %d", len(obj))
	}
	for tag, body := range obj {
		return tag, body, nil
	}
	return "", nil, errors.New("unreachable")
}

func decodeBody(body json.RawMessage, v interface{}) error {
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// decodeRequired is decodeBody for variants that carry fields.
func decodeRequired(tag string, body json.RawMessage, v interface{}) error {
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return fmt.Errorf("variant %s requires a body", tag)
	}
	return decodeBody(body, v)
}

func ParseExecuteMsg(data []byte) (ExecuteMsg, error) {
	tag, body, err := splitTagged(data)
	if err != nil {
		return nil, decodeError(err, "parse execute msg")
	}

	var msg ExecuteMsg
	switch tag {
	case "receive":
		m := ReceiveMsg{}
		err, msg = decodeRequired(tag, body, &m), &m
	case "unbond":
		m := UnbondMsg{}
		err, msg = decodeRequired(tag, body, &m), &m
	case "claim":
		m := ClaimMsg{}
		err, msg = decodeBody(body, &m), &m
	case "keep_alive":
		m := KeepAliveMsg{}
		err, msg = decodeBody(body, &m), &m
	case "deadman_delay":
		m := DeadmanDelayMsg{}
		err, msg = decodeRequired(tag, body, &m), &m
	case "update_config":
		m := UpdateConfigMsg{}
		err, msg = decodeRequired(tag, body, &m), &m
	default:
		return nil, errors.Wrapf(ErrDecode, "unknown execute variant %q", tag)
	}
	if err != nil {
		return nil, decodeError(err, "decode %s", tag)
	}
	return msg, nil
}

func ParseQueryMsg(data []byte) (QueryMsg, error) {
	tag, body, err := splitTagged(data)
	if err != nil {
		return nil, decodeError(err, "parse query msg")
	}

	var msg QueryMsg
	switch tag {
	case "config":
		m := ConfigQuery{}
		err, msg = decodeBody(body, &m), &m
	case "state":
		m := StateQuery{}
		err, msg = decodeBody(body, &m), &m
	case "staker_info":
		m := StakerInfoQuery{}
		err, msg = decodeRequired(tag, body, &m), &m
	case "stakers":
		m := StakersQuery{}
		err, msg = decodeBody(body, &m), &m
	case "contract_info":
		m := ContractInfoQuery{}
		err, msg = decodeBody(body, &m), &m
	default:
		return nil, errors.Wrapf(ErrDecode, "unknown query variant %q", tag)
	}
	if err != nil {
		return nil, decodeError(err, "decode %s", tag)
	}
	return msg, nil
}

// ParseHookMsg decodes the payload of a receive envelope.
func ParseHookMsg(data []byte) (*BondHookMsg, error) {
	tag, body, err := splitTagged(data)
	if err != nil {
		return nil, decodeError(err, "parse hook msg")
	}
	if tag != "bond" {
		return nil, errors.Wrapf(ErrDecode, "unknown hook variant %q", tag)
	}
	m := &BondHookMsg{}
	if err := decodeRequired(tag, body, m); err != nil {
		return nil, decodeError(err, "decode bond")
	}
	return m, nil
}

func encodeTagged(tag string, body interface{}) ([]byte, error) {
	return json.Marshal(map[string]interface{}{tag: body})
}

// EncodeExecuteMsg is the inverse of ParseExecuteMsg. keep_alive is a unit
// variant and encodes as a bare string.
func EncodeExecuteMsg(msg ExecuteMsg) ([]byte, error) {
	switch m := msg.(type) {
	case KeepAliveMsg, *KeepAliveMsg:
		return json.Marshal(m.executeTag())
	default:
		return encodeTagged(m.executeTag(), m)
	}
}

func EncodeQueryMsg(msg QueryMsg) ([]byte, error) {
	switch m := msg.(type) {
	case StakerInfoQuery, *StakerInfoQuery, StakersQuery, *StakersQuery:
		return encodeTagged(m.queryTag(), m)
	default:
		return json.Marshal(m.queryTag())
	}
}

func EncodeHookMsg(msg *BondHookMsg) ([]byte, error) {
	return encodeTagged("bond", msg)
}

// TransferMsg is the cw20 transfer sent to the staking token.
type TransferMsg struct {
	Recipient string  `json:"recipient"`
	Amount    Uint128 `json:"amount"`
}

func EncodeTransferMsg(recipient string, amount Uint128) ([]byte, error) {
	return encodeTagged("transfer", &TransferMsg{Recipient: recipient, Amount: amount})
}
