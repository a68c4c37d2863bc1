package contract

import (
	"fmt"
	"sync"
)

type registryImpl struct {
	mutex   sync.RWMutex
	methods map[string]map[string]KernMethod
}

// NewKernRegistry returns an empty registry.
func NewKernRegistry() KernRegistry {
	return &registryImpl{
		methods: make(map[string]map[string]KernMethod),
	}
}

// RegisterKernMethod panics when the contract name is invalid or the method is registered twice.
func (r *registryImpl) RegisterKernMethod(contract, method string, handler KernMethod) {
	if err := ValidContractName(contract); err != nil {
		panic(err)
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	contractMap, ok := r.methods[contract]
	if !ok {
		contractMap = make(map[string]KernMethod)
		r.methods[contract] = contractMap
	}
	_, ok = contractMap[method]
	if ok {
		panic(fmt.Sprintf("kernel method %s for %s exists", method, contract))
	}
	contractMap[method] = handler
}

func (r *registryImpl) GetKernMethod(contract, method string) (KernMethod, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	contractMap, ok := r.methods[contract]
	if !ok {
		return nil, fmt.Errorf("kernel contract %s not found", contract)
	}
	contractMethod, ok := contractMap[method]
	if !ok {
		return nil, fmt.Errorf("kernel method %s for %s not found", method, contract)
	}
	return contractMethod, nil
}
