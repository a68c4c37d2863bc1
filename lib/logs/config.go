package logs

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/xuperchain/xstake/lib/utils"
)

// LogConf is the log config of the process
type LogConf struct {
	Module   string `yaml:"module,omitempty"`
	Filename string `yaml:"filename,omitempty"`
	// logfmt or json
	Fmt string `yaml:"fmt,omitempty"`
	// debug, trace, info, warn, error
	Level string `yaml:"level,omitempty"`
	// rotate interval in minutes
	RotateInterval int `yaml:"rotateInterval,omitempty"`
	// rotated files kept, in hours
	RotateBackups int  `yaml:"rotateBackups,omitempty"`
	Console       bool `yaml:"console,omitempty"`
	Async         bool `yaml:"async,omitempty"`
	BufSize       int  `yaml:"bufSize,omitempty"`
}

func LoadLogConf(cfgFile string) (*LogConf, error) {
	cfg := GetDefLogConf()
	err := cfg.loadConf(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load log config failed.err:%s", err)
	}

	return cfg, nil
}

func GetDefLogConf() *LogConf {
	return &LogConf{
		Module:   "xstake",
		Filename: "xstake",
		Fmt:      "logfmt",
		Level:    "info",
		// rotate every 60 minutes
		RotateInterval: 60,
		// keep old log files for 7 days
		RotateBackups: 168,
		Console:       true,
		Async:         false,
		BufSize:       102400,
	}
}

func (t *LogConf) loadConf(cfgFile string) error {
	if cfgFile == "" || !utils.FileIsExist(cfgFile) {
		return fmt.Errorf("config file set error.path:%s", cfgFile)
	}

	viperObj := viper.New()
	viperObj.SetConfigFile(cfgFile)
	err := viperObj.ReadInConfig()
	if err != nil {
		return fmt.Errorf("read config failed.path:%s,err:%v", cfgFile, err)
	}

	if err = viperObj.Unmarshal(t); err != nil {
		return fmt.Errorf("unmatshal config failed.path:%s,err:%v", cfgFile, err)
	}

	return nil
}
