package metrics

import (
	"time"

	"github.com/goodnatureofminers/chainspend/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	phaseBuild     = "build"
	phaseBroadcast = "broadcast"
)

var (
	spendStepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "spend",
		Name:      "steps_total",
		Help:      "Count of spend steps by phase.",
	}, []string{"step", "phase", "network", "status"})
	spendStepDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "spend",
		Name:      "step_duration_seconds",
		Help:      "Duration of spend steps by phase.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"step", "phase", "network", "status"})
	spendFeeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "spend",
		Name:      "fee_satoshis_total",
		Help:      "Fees paid by broadcast spends.",
	}, []string{"network"})
	blocksMinedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "spend",
		Name:      "blocks_mined_total",
		Help:      "Blocks generated during spend runs.",
	}, []string{"network"})
)

// Spend tracks metrics for building and broadcasting spends.
type Spend struct {
	network model.Network
}

// NewSpend constructs a metrics collector for spend runs.
func NewSpend(network model.Network) *Spend {
	if network == "" {
		network = "unknown"
	}
	return &Spend{network: network}
}

// ObserveBuild records building and signing one transaction.
func (m Spend) ObserveBuild(step model.SpendStep, err error, started time.Time) {
	m.observe(step, phaseBuild, err, started)
}

// ObserveBroadcast records submitting one transaction; successful broadcasts add fee.
func (m Spend) ObserveBroadcast(step model.SpendStep, fee uint64, err error, started time.Time) {
	m.observe(step, phaseBroadcast, err, started)
	if err == nil {
		spendFeeTotal.WithLabelValues(string(m.network)).Add(float64(fee))
	}
}

// ObserveMined records generated blocks.
func (m Spend) ObserveMined(blocks int) {
	blocksMinedTotal.WithLabelValues(string(m.network)).Add(float64(blocks))
}

func (m Spend) observe(step model.SpendStep, phase string, err error, started time.Time) {
	status := statusOf(err)
	spendStepsTotal.WithLabelValues(string(step), phase, string(m.network), status).Inc()
	spendStepDuration.WithLabelValues(string(step), phase, string(m.network), status).Observe(time.Since(started).Seconds())
}
