package xstake

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/xuperchain/xstake/kernel/contract"
	"github.com/xuperchain/xstake/kernel/ledger"
	"github.com/xuperchain/xstake/lib/metrics"
)

const (
	ConfigName = "xstake.yaml"
)

// XStakeConfig 节点本地的合约默认配置, 只在命令行init且未指定参数时使用
type XStakeConfig struct {
	Instantiate InstantiateMsg `mapstructure:"instantiate"`
}

type Manager struct {
	Ctx      *Context
	Contract *Contract
}

func NewManager(ctx *Context, register contract.KernRegistry) (*Manager, error) {
	if ctx == nil || !ctx.IsValid() || ctx.Codec == nil || register == nil {
		return nil, errors.New("xstake contract ctx set error")
	}

	x := NewContract(ctx)
	kMethods := map[string]contract.KernMethod{
		Instantiate: x.Instantiate,
		Execute:     x.Execute,
		Query:       x.Query,
	}

	for method, f := range kMethods {
		if _, err := register.GetKernMethod(XStakeContract, method); err != nil {
			register.RegisterKernMethod(XStakeContract, method, f)
		}
	}
	return &Manager{Ctx: ctx, Contract: x}, nil
}

// ObserveCommit refreshes the bonded gauge from committed state.
func (m *Manager) ObserveCommit(reader ledger.XMReader) {
	data, err := reader.Get(bucket, []byte(keyState))
	if err != nil || data.IsEmpty() {
		return
	}
	st := new(State)
	if err := m.Ctx.Codec.Unmarshal(data.GetPureData().GetValue(), st); err != nil {
		m.Ctx.XLog.Warn("decode committed state failed", "err", err)
		return
	}
	metrics.StateBondedGauge.WithLabelValues(XStakeContract).Set(st.TotalBondAmount.Float64())
}

func LoadConfig(fname string) (*XStakeConfig, error) {
	viperObj := viper.New()
	viperObj.SetConfigFile(fname)
	err := viperObj.ReadInConfig()
	if err != nil {
		return nil, fmt.Errorf("read config failed.path:%s,err:%v", fname, err)
	}

	cfg := &XStakeConfig{}
	if err = viperObj.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmatshal config failed.path:%s,err:%v", fname, err)
	}
	return cfg, nil
}
