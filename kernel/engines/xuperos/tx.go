// 交易去重
package xuperos

import (
	"github.com/patrickmn/go-cache"

	"github.com/xuperchain/xstake/kernel/engines/xuperos/common"
	"github.com/xuperchain/xstake/lib/logs"
	"github.com/xuperchain/xstake/lib/metrics"
)

// 负责交易id去重, 失败的交易会被遗忘以便重试
type txProcessor struct {
	log logs.Logger

	handled *cache.Cache
}

func newTxProcessor(ctx *common.EngineCtx) *txProcessor {
	obj := &txProcessor{
		log:     ctx.XLog,
		handled: cache.New(ctx.EngCfg.TxIdCacheExpiredTime, common.TxIdCacheGcTime),
	}

	return obj
}

// 验证交易id, 通过后即标记为已处理
func (t *txProcessor) verifyTx(txId, contractName string) error {
	if txId == "" {
		return common.ErrTxIdNil
	}

	// Add 在key已存在时失败, 并发提交同一个id只有一个能通过
	if err := t.handled.Add(txId, true, cache.DefaultExpiration); err != nil {
		metrics.TxDuplicateCounter.WithLabelValues(contractName).Inc()
		t.log.Warn("reject duplicate tx", "txid", txId)
		return common.ErrTxDuplicate
	}
	return nil
}

func (t *txProcessor) forget(txId string) {
	t.handled.Delete(txId)
}
