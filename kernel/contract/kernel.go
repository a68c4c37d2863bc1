package contract

// KernRegistry maps contract and method names to native handlers.
type KernRegistry interface {
	RegisterKernMethod(contract, method string, handler KernMethod)
	GetKernMethod(contract, method string) (KernMethod, error)
}

type KernMethod func(ctx KContext) (*Response, error)

type KContext interface {
	// 交易相关数据
	Args() map[string][]byte
	Initiator() string
	// 区块时间, unix seconds
	BlockTime() uint64
	ContractName() string
	// AddrValidate returns an error when addr is not a valid normalized address
	AddrValidate(addr string) error

	// 状态修改接口
	StateSandbox
}
