package kvdb

import (
	"fmt"
	"sync"
)

// KVParameter structure for kv instance parameters
type KVParameter struct {
	DBPath       string
	KVEngineType string
	StorageType  string
	// in MiB
	MemCacheSize          int
	FileHandlersCacheSize int
}

const (
	KVEngineTypeLDB    = "leveldb"
	KVEngineTypeBadger = "badger"
	// leveldb on an in-memory storage, nothing touches disk
	KVEngineTypeMemory = "memory"
)

const (
	StorageTypeSingle = "single"
	StorageTypeMemory = "memory"
)

var (
	servsMu  sync.RWMutex
	services = make(map[string]NewStorageFunc)
)

type NewStorageFunc func(*KVParameter) (Database, error)

func Register(name string, f NewStorageFunc) {
	servsMu.Lock()
	defer servsMu.Unlock()

	if f == nil {
		panic("storage: Register new func is nil")
	}
	if _, dup := services[name]; dup {
		panic("storage: Register called twice for func " + name)
	}
	services[name] = f
}

// Drivers lists the registered engine names.
func Drivers() []string {
	servsMu.RLock()
	defer servsMu.RUnlock()

	names := make([]string, 0, len(services))
	for name := range services {
		names = append(names, name)
	}
	return names
}

func CreateKVInstance(kvParam *KVParameter) (Database, error) {
	if kvParam == nil {
		return nil, fmt.Errorf("kv parameter is nil")
	}

	servsMu.RLock()
	f, ok := services[kvParam.KVEngineType]
	servsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("kv engine not registered.engine:%s", kvParam.KVEngineType)
	}

	instance, err := f(kvParam)
	if err != nil {
		return nil, fmt.Errorf("create kv instance failed.engine:%s,err:%v", kvParam.KVEngineType, err)
	}
	return instance, nil
}

// GetDBPath return the value of DBPath
func (param *KVParameter) GetDBPath() string {
	return param.DBPath
}

// GetKVEngineType return the value of KVEngineType
func (param *KVParameter) GetKVEngineType() string {
	return param.KVEngineType
}

// GetStorageType return the value of GetStorageType
func (param *KVParameter) GetStorageType() string {
	return param.StorageType
}

// GetMemCacheSize return the value of MemCacheSize
func (param *KVParameter) GetMemCacheSize() int {
	return param.MemCacheSize
}

// GetFileHandlersCacheSize return the value of FileHandlersCacheSize
func (param *KVParameter) GetFileHandlersCacheSize() int {
	return param.FileHandlersCacheSize
}
