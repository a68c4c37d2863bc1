package xstake

import (
	"github.com/xuperchain/xstake/kernel/contract"
)

// transferBuilder collects outbound transfers addressed to the staking token.
type transferBuilder struct {
	token string
	msgs  []*contract.SubMsg
}

func newTransferBuilder(token string) *transferBuilder {
	return &transferBuilder{token: token}
}

// Add skips zero amounts.
func (b *transferBuilder) Add(recipient string, amount Uint128) error {
	if amount.IsZero() {
		return nil
	}
	msg, err := EncodeTransferMsg(recipient, amount)
	if err != nil {
		return stdError(err, "encode transfer to %s", recipient)
	}
	b.msgs = append(b.msgs, &contract.SubMsg{Contract: b.token, Msg: msg})
	return nil
}

func (b *transferBuilder) AttachTo(resp *contract.Response) {
	for _, msg := range b.msgs {
		resp.AddMessage(msg)
	}
}
