package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	xconf "github.com/xuperchain/xstake/kernel/common/xconfig"
	"github.com/xuperchain/xstake/kernel/engines/xuperos"
	engconf "github.com/xuperchain/xstake/kernel/engines/xuperos/config"
	"github.com/xuperchain/xstake/lib/logs"
)

type BaseCmd struct {
	// cobra command
	cmd *cobra.Command
}

func (t *BaseCmd) GetCmd() *cobra.Command {
	return t.cmd
}

// 所有命令共用的输出, 测试时可替换
var output io.Writer = os.Stdout

func loadConf(envCfgPath string) (*xconf.EnvConf, *engconf.EngineConf, error) {
	// 加载环境配置
	envConf, err := xconf.LoadEnvConf(envCfgPath)
	if err != nil {
		return nil, nil, err
	}

	// 加载引擎配置
	engConf, err := engconf.LoadEngineConf(envConf.GenConfFilePath(envConf.EngineConf))
	if err != nil {
		return nil, nil, err
	}

	return envConf, engConf, nil
}

// 加载配置, 初始化日志, 打开引擎
func openEngine(envCfgPath string) (*xuperos.XuperOSEngine, error) {
	envConf, engConf, err := loadConf(envCfgPath)
	if err != nil {
		return nil, err
	}

	err = logs.InitLog(envConf.GenConfFilePath(envConf.LogConf), envConf.GenDirAbsPath(envConf.LogDir))
	if err != nil {
		return nil, fmt.Errorf("init log failed.err:%v", err)
	}

	return xuperos.NewEngine(envConf, engConf)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(output)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
