package metrics

import (
	"sync"

	prom "github.com/prometheus/client_golang/prometheus"
)

const (
	Namespace = "xstake"

	SubsystemEngine   = "engine"
	SubsystemContract = "contract"
	SubsystemState    = "state"
	SubsystemTimer    = "timer"

	LabelContractName   = "contract_name"
	LabelContractMethod = "contract_method"
	LabelContractCode   = "contract_code"
	LabelInvokeKind     = "kind"

	LabelTimerMark = "mark"
)

// engine
var (
	// 重复交易
	TxDuplicateCounter = prom.NewCounterVec(
		prom.CounterOpts{
			Namespace: Namespace,
			Subsystem: SubsystemEngine,
			Name:      "tx_duplicate_total",
			Help:      "Total number of rejected duplicate tx ids.",
		},
		[]string{LabelContractName})
	CommitBatchHistogram = prom.NewHistogramVec(
		prom.HistogramOpts{
			Namespace: Namespace,
			Subsystem: SubsystemEngine,
			Name:      "commit_seconds",
			Help:      "Histogram of sandbox commit latency.",
			Buckets:   prom.DefBuckets,
		},
		[]string{LabelContractName})
)

// contract
var (
	ContractInvokeCounter = prom.NewCounterVec(
		prom.CounterOpts{
			Namespace: Namespace,
			Subsystem: SubsystemContract,
			Name:      "invoke_total",
			Help:      "Total number of invoke contract.",
		},
		[]string{LabelInvokeKind, LabelContractName, LabelContractMethod, LabelContractCode})
	ContractInvokeHistogram = prom.NewHistogramVec(
		prom.HistogramOpts{
			Namespace: Namespace,
			Subsystem: SubsystemContract,
			Name:      "invoke_seconds",
			Help:      "Histogram of invoke contract latency.",
			Buckets:   prom.DefBuckets,
		},
		[]string{LabelInvokeKind, LabelContractName, LabelContractMethod})
	ContractTransferCounter = prom.NewCounterVec(
		prom.CounterOpts{
			Namespace: Namespace,
			Subsystem: SubsystemContract,
			Name:      "transfer_msg_total",
			Help:      "Total number of outbound transfer messages emitted.",
		},
		[]string{LabelContractName})
)

// state
var (
	StateBondedGauge = prom.NewGaugeVec(
		prom.GaugeOpts{
			Namespace: Namespace,
			Subsystem: SubsystemState,
			Name:      "bonded_total",
			Help:      "Total bonded amount after the last commit, as float.",
		},
		[]string{LabelContractName})
)

// timer
var (
	TimerMarkHistogram = prom.NewHistogramVec(
		prom.HistogramOpts{
			Namespace: Namespace,
			Subsystem: SubsystemTimer,
			Name:      "mark_seconds",
			Help:      "Histogram of time spent between timer marks.",
			Buckets:   prom.DefBuckets,
		},
		[]string{LabelContractMethod, LabelTimerMark})
)

var registerOnce sync.Once

// RegisterMetrics registers all collectors with the default registry. Safe to call repeatedly.
func RegisterMetrics() {
	registerOnce.Do(func() {
		// engine
		prom.MustRegister(TxDuplicateCounter)
		prom.MustRegister(CommitBatchHistogram)
		// contract
		prom.MustRegister(ContractInvokeCounter)
		prom.MustRegister(ContractInvokeHistogram)
		prom.MustRegister(ContractTransferCounter)
		// state
		prom.MustRegister(StateBondedGauge)
		// timer
		prom.MustRegister(TimerMarkHistogram)
	})
}
