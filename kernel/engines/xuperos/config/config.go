package config

import (
	"fmt"
	"reflect"
	"time"

	"github.com/docker/go-units"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/xuperchain/xstake/kernel/common/xaddress"
	"github.com/xuperchain/xstake/lib/storage/kvdb"
	"github.com/xuperchain/xstake/lib/utils"
)

const (
	DefaultKVEngine              = kvdb.KVEngineTypeLDB
	DefaultStorageDir            = "xstake"
	DefaultMemCacheSize          = ByteSize(128 << 20)
	DefaultFileHandlersCacheSize = 64
	DefaultReadCacheSize         = 1024
	DefaultTxIdCacheExpiredTime  = 10 * time.Minute
	DefaultCodec                 = "json"
	DefaultHTTPAddr              = ":8098"
	DefaultContract              = "XStake"
)

// ByteSize is a size in bytes. In config files it is a human readable
// string such as "64MB" or "1GiB".
type ByteSize int64

// MiB rounds down, never below 1.
func (b ByteSize) MiB() int {
	mib := int(b >> 20)
	if mib < 1 {
		return 1
	}
	return mib
}

type EngineConf struct {
	// kv引擎: leveldb | badger | memory
	KVEngine string `yaml:"kvEngine,omitempty"`
	// 数据目录, 相对于EnvConf.DataDir
	StorageDir            string   `yaml:"storageDir,omitempty"`
	MemCacheSize          ByteSize `yaml:"memCacheSize,omitempty"`
	FileHandlersCacheSize int      `yaml:"fileHandlersCacheSize,omitempty"`
	// 已提交数据读缓存的条目数
	ReadCacheSize int `yaml:"readCacheSize,omitempty"`

	// TxIdCacheExpiredTime expired time for tx id dedup cache
	TxIdCacheExpiredTime time.Duration `yaml:"txidCacheExpiredTime,omitempty"`

	// 地址校验: plain | bech32 | hex
	AddressStyle string `yaml:"addressStyle,omitempty"`
	AddressHRP   string `yaml:"addressHrp,omitempty"`

	// 合约数据编码: json | cbor
	Codec string `yaml:"codec,omitempty"`

	HTTPAddr string `yaml:"httpAddr,omitempty"`
	// 请求未指定合约时使用
	DefaultContract string `yaml:"defaultContract,omitempty"`
}

func LoadEngineConf(cfgFile string) (*EngineConf, error) {
	cfg := GetDefEngineConf()
	err := cfg.loadConf(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load engine config failed.err:%s", err)
	}
	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load engine config failed.err:%s", err)
	}

	return cfg, nil
}

func GetDefEngineConf() *EngineConf {
	return &EngineConf{
		KVEngine:              DefaultKVEngine,
		StorageDir:            DefaultStorageDir,
		MemCacheSize:          DefaultMemCacheSize,
		FileHandlersCacheSize: DefaultFileHandlersCacheSize,
		ReadCacheSize:         DefaultReadCacheSize,
		TxIdCacheExpiredTime:  DefaultTxIdCacheExpiredTime,
		AddressStyle:          xaddress.StylePlain,
		AddressHRP:            xaddress.DefaultHRP,
		Codec:                 DefaultCodec,
		HTTPAddr:              DefaultHTTPAddr,
		DefaultContract:       DefaultContract,
	}
}

func (t *EngineConf) Validate() error {
	switch t.KVEngine {
	case kvdb.KVEngineTypeLDB, kvdb.KVEngineTypeBadger, kvdb.KVEngineTypeMemory:
	default:
		return fmt.Errorf("unsupported kvEngine:%s", t.KVEngine)
	}
	switch t.AddressStyle {
	case xaddress.StylePlain, xaddress.StyleBech32, xaddress.StyleHex:
	default:
		return fmt.Errorf("unsupported addressStyle:%s", t.AddressStyle)
	}
	switch t.Codec {
	case "json", "cbor":
	default:
		return fmt.Errorf("unsupported codec:%s", t.Codec)
	}
	if t.TxIdCacheExpiredTime <= 0 {
		return fmt.Errorf("txidCacheExpiredTime must be positive")
	}
	return nil
}

// byteSizeHook decodes "64MB" style strings and plain numbers into ByteSize.
func byteSizeHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to != reflect.TypeOf(ByteSize(0)) {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		n, err := units.RAMInBytes(v)
		if err != nil {
			return nil, fmt.Errorf("invalid size %q: %v", v, err)
		}
		return ByteSize(n), nil
	case int:
		return ByteSize(v), nil
	case int64:
		return ByteSize(v), nil
	case float64:
		return ByteSize(v), nil
	default:
		return data, nil
	}
}

func (t *EngineConf) loadConf(cfgFile string) error {
	if cfgFile == "" || !utils.FileIsExist(cfgFile) {
		return fmt.Errorf("config file set error.path:%s", cfgFile)
	}

	viperObj := viper.New()
	viperObj.SetConfigFile(cfgFile)
	err := viperObj.ReadInConfig()
	if err != nil {
		return fmt.Errorf("read config failed.path:%s,err:%v", cfgFile, err)
	}

	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		byteSizeHook,
		mapstructure.StringToTimeDurationHookFunc(),
	))
	if err = viperObj.Unmarshal(t, hook); err != nil {
		return fmt.Errorf("unmatshal config failed.path:%s,err:%v", cfgFile, err)
	}

	return nil
}
