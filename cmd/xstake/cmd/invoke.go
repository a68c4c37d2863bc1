package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/xuperchain/xstake/kernel/contract"
	"github.com/xuperchain/xstake/kernel/engines/xuperos/common"
	"github.com/xuperchain/xstake/kernel/engines/xuperos/xstake"
	"github.com/xuperchain/xstake/lib/utils"
)

// 单次调用共用的命令行参数
type invokeFlags struct {
	envCfgPath string
	contract   string
	sender     string
	txId       string
	blockTime  uint64
	msg        string
}

func (f *invokeFlags) bind(cmd *cobra.Command, withTx bool) {
	cmd.Flags().StringVarP(&f.envCfgPath, "conf", "c", "", "engine environment config file path")
	cmd.Flags().StringVar(&f.contract, "contract", "", "kernel contract name, default from engine config")
	cmd.Flags().StringVarP(&f.msg, "msg", "m", "", "json encoded message")
	if withTx {
		cmd.Flags().StringVarP(&f.sender, "sender", "s", "", "authenticated caller address")
		cmd.Flags().StringVar(&f.txId, "txid", "", "invocation id, generated when empty")
		cmd.Flags().Uint64Var(&f.blockTime, "block-time", 0, "block time in unix seconds, now when zero")
	}
}

func (f *invokeFlags) request(msg []byte) *common.InvokeRequest {
	req := &common.InvokeRequest{
		TxID:      f.txId,
		Sender:    f.sender,
		BlockTime: f.blockTime,
		Contract:  f.contract,
		Msg:       msg,
	}
	if req.TxID == "" {
		req.TxID = utils.GenTxId()
	}
	if req.BlockTime == 0 {
		req.BlockTime = uint64(time.Now().Unix())
	}
	return req
}

type invokeCmd struct {
	BaseCmd
}

func GetExecuteCmd() *invokeCmd {
	ins := new(invokeCmd)
	flags := new(invokeFlags)

	ins.cmd = &cobra.Command{
		Use:     "execute",
		Short:   "Execute a contract message and commit the result.",
		Example: `xstake execute -c conf/env.yaml -s alice -m '"keep_alive"'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := xstake.ParseExecuteMsg([]byte(flags.msg)); err != nil {
				return err
			}
			return runInvoke(flags, common.MethodExecute, []byte(flags.msg))
		},
	}
	flags.bind(ins.cmd, true)
	return ins
}

func GetQueryCmd() *invokeCmd {
	ins := new(invokeCmd)
	flags := new(invokeFlags)

	ins.cmd = &cobra.Command{
		Use:     "query",
		Short:   "Query contract state.",
		Example: `xstake query -c conf/env.yaml -m '{"staker_info":{"staker":"alice"}}'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := xstake.ParseQueryMsg([]byte(flags.msg)); err != nil {
				return err
			}
			return runInvoke(flags, common.MethodQuery, []byte(flags.msg))
		},
	}
	flags.bind(ins.cmd, false)
	return ins
}

func runInvoke(flags *invokeFlags, method string, msg []byte) error {
	engine, err := openEngine(flags.envCfgPath)
	if err != nil {
		return err
	}
	defer engine.Close()

	var invoke func(context.Context, *common.InvokeRequest) (*contract.Response, error)
	switch method {
	case common.MethodInstantiate:
		invoke = engine.Instantiate
	case common.MethodExecute:
		invoke = engine.Execute
	case common.MethodQuery:
		invoke = engine.Query
	default:
		return fmt.Errorf("unknown method %s", method)
	}

	resp, err := invoke(context.Background(), flags.request(msg))
	if err != nil {
		return err
	}
	return printJSON(render(resp))
}

// contractResponse renders the body as json instead of base64.
type contractResponse struct {
	Status     int                  `json:"status"`
	Message    string               `json:"message,omitempty"`
	Body       json.RawMessage      `json:"body,omitempty"`
	Attributes []contract.Attribute `json:"attributes,omitempty"`
	Messages   []*contract.SubMsg   `json:"messages,omitempty"`
}

func render(resp *contract.Response) *contractResponse {
	out := &contractResponse{
		Status:     resp.Status,
		Message:    resp.Message,
		Attributes: resp.Attributes,
		Messages:   resp.Messages,
	}
	if len(resp.Body) > 0 && json.Valid(resp.Body) {
		out.Body = resp.Body
	}
	return out
}
