package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	xconf "github.com/xuperchain/xstake/kernel/common/xconfig"
	"github.com/xuperchain/xstake/kernel/engines/xuperos/common"
	"github.com/xuperchain/xstake/kernel/engines/xuperos/xstake"
	"github.com/xuperchain/xstake/lib/utils"
)

type InitCmd struct {
	BaseCmd
}

func GetInitCmd() *InitCmd {
	initCmdIns := new(InitCmd)

	flags := new(invokeFlags)
	msg := new(xstake.InstantiateMsg)

	initCmdIns.cmd = &cobra.Command{
		Use:     "init",
		Short:   "Instantiate the staking contract, the sender becomes owner.",
		Example: "xstake init -c conf/env.yaml -s creator --staking-token luna --penalty-percentage 2",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := fillInstantiateMsg(cmd, flags.envCfgPath, msg); err != nil {
				return err
			}
			data, err := json.Marshal(msg)
			if err != nil {
				return err
			}
			return runInvoke(flags, common.MethodInstantiate, data)
		},
	}

	flags.bind(initCmdIns.cmd, true)
	initCmdIns.cmd.Flags().StringVar(&msg.StakingToken, "staking-token", "", "address of the staking token contract")
	initCmdIns.cmd.Flags().Uint64Var(&msg.UnbondPeriod, "unbond-period", 0, "unbond period in seconds")
	initCmdIns.cmd.Flags().Uint64Var(&msg.ActivityInterval, "activity-interval", 0, "activity interval in seconds")
	initCmdIns.cmd.Flags().Uint64Var(&msg.PenaltyPercentage, "penalty-percentage", 0, "early unbond penalty, 0-100")
	return initCmdIns
}

// 未通过命令行指定的参数从 xstake.yaml 读取
func fillInstantiateMsg(cmd *cobra.Command, envCfgPath string, msg *xstake.InstantiateMsg) error {
	flagNames := []string{"staking-token", "unbond-period", "activity-interval", "penalty-percentage"}
	allSet := true
	for _, name := range flagNames {
		if !cmd.Flags().Changed(name) {
			allSet = false
			break
		}
	}
	if allSet {
		return nil
	}

	envConf, err := xconf.LoadEnvConf(envCfgPath)
	if err != nil {
		return err
	}
	fname := envConf.GenConfFilePath(envConf.StakeConf)
	if !utils.FileIsExist(fname) {
		if msg.StakingToken == "" {
			return fmt.Errorf("staking-token is required, no default config at %s", fname)
		}
		return nil
	}
	defConf, err := xstake.LoadConfig(fname)
	if err != nil {
		return err
	}

	if !cmd.Flags().Changed("staking-token") {
		msg.StakingToken = defConf.Instantiate.StakingToken
	}
	if !cmd.Flags().Changed("unbond-period") {
		msg.UnbondPeriod = defConf.Instantiate.UnbondPeriod
	}
	if !cmd.Flags().Changed("activity-interval") {
		msg.ActivityInterval = defConf.Instantiate.ActivityInterval
	}
	if !cmd.Flags().Changed("penalty-percentage") {
		msg.PenaltyPercentage = defConf.Instantiate.PenaltyPercentage
	}
	return nil
}
