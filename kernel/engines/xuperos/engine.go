package xuperos

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	xaddr "github.com/xuperchain/xstake/kernel/common/xaddress"
	xconf "github.com/xuperchain/xstake/kernel/common/xconfig"
	xctx "github.com/xuperchain/xstake/kernel/common/xcontext"
	"github.com/xuperchain/xstake/kernel/contract"
	"github.com/xuperchain/xstake/kernel/contract/sandbox"
	"github.com/xuperchain/xstake/kernel/engines/xuperos/common"
	engconf "github.com/xuperchain/xstake/kernel/engines/xuperos/config"
	"github.com/xuperchain/xstake/kernel/engines/xuperos/xstake"
	"github.com/xuperchain/xstake/kernel/ledger"
	"github.com/xuperchain/xstake/lib/logs"
	"github.com/xuperchain/xstake/lib/metrics"
	"github.com/xuperchain/xstake/lib/storage/kvdb"
	"github.com/xuperchain/xstake/lib/timer"

	_ "github.com/xuperchain/xstake/lib/storage/kvdb/badger"
	_ "github.com/xuperchain/xstake/lib/storage/kvdb/leveldb"
)

// CommitHook is called with the committed state after every successful commit.
type CommitHook func(reader ledger.XMReader)

// xuperos执行引擎, 以事务方式串行执行内置合约调用
// 成功的调用原子提交读写集, 失败的调用丢弃沙盒
type XuperOSEngine struct {
	// 引擎运行环境上下文
	engCtx *common.EngineCtx
	// 日志
	log logs.Logger

	db       kvdb.Database
	reader   *sandbox.KVReader
	registry contract.KernRegistry
	addrVal  xaddr.Validator
	txProc   *txProcessor
	stake    *xstake.Manager

	// Execute/Instantiate 持有写锁, Query 持有读锁
	mutex       sync.RWMutex
	closed      bool
	commitHooks []CommitHook
}

var _ common.Engine = (*XuperOSEngine)(nil)

// NewEngine 初始化引擎: 打开存储, 注册内置合约
func NewEngine(envCfg *xconf.EnvConf, engCfg *engconf.EngineConf) (*XuperOSEngine, error) {
	if envCfg == nil || engCfg == nil {
		return nil, common.ErrParameter.More("env or engine config is nil")
	}

	engCtx, err := createEngCtx(envCfg, engCfg)
	if err != nil {
		return nil, err
	}
	t := &XuperOSEngine{
		engCtx:   engCtx,
		log:      engCtx.XLog,
		registry: contract.NewKernRegistry(),
		txProc:   newTxProcessor(engCtx),
	}

	t.addrVal, err = xaddr.NewValidator(engCfg.AddressStyle, engCfg.AddressHRP)
	if err != nil {
		return nil, common.ErrLoadEngConfFailed.More("%v", err)
	}

	kvParam := &kvdb.KVParameter{
		DBPath:                envCfg.GenDataAbsPath(engCfg.StorageDir),
		KVEngineType:          engCfg.KVEngine,
		StorageType:           kvdb.StorageTypeSingle,
		MemCacheSize:          engCfg.MemCacheSize.MiB(),
		FileHandlersCacheSize: engCfg.FileHandlersCacheSize,
	}
	t.db, err = kvdb.CreateKVInstance(kvParam)
	if err != nil {
		t.log.Error("open storage failed", "path", kvParam.DBPath, "engine", kvParam.KVEngineType, "err", err)
		return nil, common.ErrOpenStorageFailed.More("%v", err)
	}
	t.reader, err = sandbox.NewKVReader(t.db, engCfg.ReadCacheSize)
	if err != nil {
		t.db.Close()
		return nil, common.ErrOpenStorageFailed.More("%v", err)
	}

	// 注册质押合约
	stakeCtx, err := xstake.NewXStakeCtx(engCfg.Codec)
	if err != nil {
		t.db.Close()
		return nil, common.ErrContractNewCtxFailed.More("%v", err)
	}
	t.stake, err = xstake.NewManager(stakeCtx, t.registry)
	if err != nil {
		t.db.Close()
		return nil, common.ErrContractNewCtxFailed.More("%v", err)
	}
	t.AddCommitHook(t.stake.ObserveCommit)
	t.stake.ObserveCommit(t.reader)

	t.log.Info("init engine succ", "kvEngine", engCfg.KVEngine, "path", kvParam.DBPath,
		"codec", engCfg.Codec, "addressStyle", engCfg.AddressStyle)
	return t, nil
}

func createEngCtx(envCfg *xconf.EnvConf, engCfg *engconf.EngineConf) (*common.EngineCtx, error) {
	baseCtx, err := xctx.NewBaseCtx("", common.BCEngineName)
	if err != nil {
		return nil, common.ErrNewLogFailed.More("%v", err)
	}

	engCtx := &common.EngineCtx{}
	engCtx.BaseCtx = *baseCtx
	engCtx.EnvCfg = envCfg
	engCtx.EngCfg = engCfg
	return engCtx, nil
}

// 获取执行引擎环境
func (t *XuperOSEngine) Context() *common.EngineCtx {
	return t.engCtx
}

// Registry exposes the kernel registry so callers can add native contracts.
func (t *XuperOSEngine) Registry() contract.KernRegistry {
	return t.registry
}

// Reader returns a view of the committed state.
func (t *XuperOSEngine) Reader() ledger.XMReader {
	return t.reader
}

// AddCommitHook 非并发安全, 需在服务启动前调用
func (t *XuperOSEngine) AddCommitHook(hook CommitHook) {
	t.commitHooks = append(t.commitHooks, hook)
}

func (t *XuperOSEngine) Instantiate(ctx context.Context, req *common.InvokeRequest) (*contract.Response, error) {
	return t.invoke(ctx, common.MethodInstantiate, req, true)
}

func (t *XuperOSEngine) Execute(ctx context.Context, req *common.InvokeRequest) (*contract.Response, error) {
	return t.invoke(ctx, common.MethodExecute, req, true)
}

// Query 在沙盒中执行, 结果永不提交
func (t *XuperOSEngine) Query(ctx context.Context, req *common.InvokeRequest) (*contract.Response, error) {
	return t.invoke(ctx, common.MethodQuery, req, false)
}

// 关闭执行引擎, 需要幂等
func (t *XuperOSEngine) Close() error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	t.log.Info("engine closed")
	return t.db.Close()
}

func (t *XuperOSEngine) invoke(ctx context.Context, method string, req *common.InvokeRequest,
	commit bool) (*contract.Response, error) {
	if req == nil {
		return nil, common.ErrParameter.More("request is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, common.ErrParameter.More("%v", err)
	}
	contractName := req.Contract
	if contractName == "" {
		contractName = t.engCtx.EngCfg.DefaultContract
	}

	tm := timer.NewXTimer()
	if commit {
		if err := t.txProc.verifyTx(req.TxID, contractName); err != nil {
			return nil, err
		}
		t.mutex.Lock()
		defer t.mutex.Unlock()
	} else {
		t.mutex.RLock()
		defer t.mutex.RUnlock()
	}
	t.log.Debug("invoke contract", "contract", contractName, "method", method,
		"txid", req.TxID, "sender", req.Sender, "blockTime", req.BlockTime)

	resp, err := t.run(contractName, method, req, commit, tm)
	t.observe(contractName, method, resp, err, tm)
	if err != nil {
		if commit {
			t.txProc.forget(req.TxID)
		}
		t.log.Warn("invoke contract failed, rollback", "contract", contractName, "method", method,
			"txid", req.TxID, "sender", req.Sender, "err", err)
		return nil, err
	}

	if commit {
		t.log.Info("invoke contract succ, committed", "contract", contractName, "method", method,
			"txid", req.TxID, "sender", req.Sender, "messages", len(resp.Messages), "timer", tm.Print())
	}
	return resp, nil
}

// run 在独立沙盒中执行一次调用, commit为true且成功时提交读写集
func (t *XuperOSEngine) run(contractName, method string, req *common.InvokeRequest, commit bool,
	tm *timer.XTimer) (*contract.Response, error) {
	if t.closed {
		return nil, common.ErrEngineClosed
	}

	handler, err := t.registry.GetKernMethod(contractName, method)
	if err != nil {
		return nil, common.ErrContractNotFound.More("%v", err)
	}

	state := sandbox.NewXModelCache(t.reader)
	kctx, err := contract.NewKContext(&contract.ContextConfig{
		State:         state,
		Initiator:     req.Sender,
		BlockTime:     req.BlockTime,
		ContractName:  contractName,
		Args:          map[string][]byte{common.ArgMsg: req.Msg},
		AddrValidator: t.addrVal,
	})
	if err != nil {
		return nil, common.ErrContractNewCtxFailed.More("%v", err)
	}
	tm.Mark("prepare")

	resp, err := handler(kctx)
	tm.Mark("invoke")
	if err != nil {
		state.Discard()
		return nil, err
	}
	if resp == nil {
		state.Discard()
		return nil, common.ErrContractInvokeFailed.More("nil response")
	}
	if resp.HasError() {
		state.Discard()
		return nil, common.ErrContractInvokeFailed.More("status %d: %s", resp.Status, resp.Message)
	}
	if !commit {
		return resp, nil
	}

	if err := t.reader.Commit(state.RWSet(), []byte(req.TxID)); err != nil {
		t.log.Error("commit rwset failed", "txid", req.TxID, "err", err)
		return nil, common.ErrCommitFailed.More("%v", err)
	}
	tm.Mark("commit")
	for _, hook := range t.commitHooks {
		hook(t.reader)
	}
	return resp, nil
}

func (t *XuperOSEngine) observe(contractName, method string, resp *contract.Response, err error, tm *timer.XTimer) {
	code := "0"
	if err != nil {
		code = strconv.Itoa(common.CastError(err).Code)
	}
	kind := "execute"
	if method == common.MethodQuery {
		kind = "query"
	}
	metrics.ContractInvokeCounter.WithLabelValues(kind, contractName, method, code).Inc()
	metrics.ContractInvokeHistogram.WithLabelValues(kind, contractName, method).Observe(tm.Elapsed().Seconds())
	for _, point := range tm.Points() {
		metrics.TimerMarkHistogram.WithLabelValues(method, point.Tag).Observe(point.Delta.Seconds())
		if point.Tag == "commit" {
			metrics.CommitBatchHistogram.WithLabelValues(contractName).Observe(point.Delta.Seconds())
		}
	}
	if err == nil && resp != nil && method != common.MethodQuery {
		metrics.ContractTransferCounter.WithLabelValues(contractName).Add(float64(len(resp.Messages)))
	}
}

// String 用于调试输出
func (t *XuperOSEngine) String() string {
	cfg := t.engCtx.EngCfg
	return fmt.Sprintf("xuperos{kv:%s,codec:%s,addr:%s}", cfg.KVEngine, cfg.Codec, t.addrVal.Style())
}
