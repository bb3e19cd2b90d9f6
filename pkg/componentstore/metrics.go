package componentstore

// metrics.go contains a thin abstraction over Prometheus so that Storage
// can be used with or without metrics. When the caller passes a
// *prometheus.Registry via WithMetrics, labeled collectors are created and
// registered; otherwise a no-op sink is used and the hot path does not pay
// for metric updates.
//
// All metrics are storage-instance-level and carry a "storage_id" label.
// Each Storage registers its own collectors on the registry it is given,
// so one registry serves one Storage: passing a registry that already
// holds another Storage's collectors to WithMetrics panics.
//
// ┌────────────────────────────────┬──────┐
// │ Metric                         │ Type │
// ├─────────────────────────────────┼──────┤
// │ componentstore_creates_total    │ Ctr  │
// │ componentstore_syncs_total      │ Ctr  │
// │ componentstore_recycled_total   │ Ctr  │
// │ componentstore_dead_upgrades_total │ Ctr │
// │ componentstore_live_slots       │ Gge  │
// │ componentstore_free_slots       │ Gge  │
// └─────────────────────────────────┴──────┘
//
// © 2025 componentstore authors. MIT License.

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// metricsSink abstracts the concrete backend (Prometheus vs noop) away
// from Storage; it is not exposed outside the package.
type metricsSink interface {
	incCreate(storageID uint8)
	incSync(storageID uint8)
	incRecycled(storageID uint8, n int)
	incDeadUpgrade(storageID uint8)
	setLiveSlots(storageID uint8, n int)
	setFreeSlots(storageID uint8, n int)
}

type noopMetrics struct{}

func (noopMetrics) incCreate(uint8)            {}
func (noopMetrics) incSync(uint8)              {}
func (noopMetrics) incRecycled(uint8, int)     {}
func (noopMetrics) incDeadUpgrade(uint8)       {}
func (noopMetrics) setLiveSlots(uint8, int)    {}
func (noopMetrics) setFreeSlots(uint8, int)    {}

type promMetrics struct {
	creates      *prometheus.CounterVec
	syncs        *prometheus.CounterVec
	recycled     *prometheus.CounterVec
	deadUpgrades *prometheus.CounterVec
	liveSlots    *prometheus.GaugeVec
	freeSlots    *prometheus.GaugeVec
}

func newPromMetrics(reg *prometheus.Registry) *promMetrics {
	label := []string{"storage_id"}

	pm := &promMetrics{
		creates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "componentstore",
			Name:      "creates_total",
			Help:      "Number of components created.",
		}, label),
		syncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "componentstore",
			Name:      "syncs_total",
			Help:      "Number of SyncPending calls.",
		}, label),
		recycled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "componentstore",
			Name:      "recycled_total",
			Help:      "Number of slots recycled to the free list.",
		}, label),
		deadUpgrades: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "componentstore",
			Name:      "dead_upgrades_total",
			Help:      "Number of WeakHandle.Upgrade calls that found a dead component.",
		}, label),
		liveSlots: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "componentstore",
			Name:      "live_slots",
			Help:      "Slots with a positive refcount, updated on Create and SyncPending.",
		}, label),
		freeSlots: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "componentstore",
			Name:      "free_slots",
			Help:      "Slots currently on the free list.",
		}, label),
	}

	reg.MustRegister(pm.creates, pm.syncs, pm.recycled, pm.deadUpgrades, pm.liveSlots, pm.freeSlots)
	return pm
}

func (m *promMetrics) incCreate(id uint8) {
	m.creates.WithLabelValues(strconv.Itoa(int(id))).Inc()
}
func (m *promMetrics) incSync(id uint8) {
	m.syncs.WithLabelValues(strconv.Itoa(int(id))).Inc()
}
func (m *promMetrics) incRecycled(id uint8, n int) {
	m.recycled.WithLabelValues(strconv.Itoa(int(id))).Add(float64(n))
}
func (m *promMetrics) incDeadUpgrade(id uint8) {
	m.deadUpgrades.WithLabelValues(strconv.Itoa(int(id))).Inc()
}
func (m *promMetrics) setLiveSlots(id uint8, n int) {
	m.liveSlots.WithLabelValues(strconv.Itoa(int(id))).Set(float64(n))
}
func (m *promMetrics) setFreeSlots(id uint8, n int) {
	m.freeSlots.WithLabelValues(strconv.Itoa(int(id))).Set(float64(n))
}

// newMetricsSink decides which implementation to use based on whether the
// caller opted in via WithMetrics.
func newMetricsSink(reg *prometheus.Registry) metricsSink {
	if reg == nil {
		return noopMetrics{}
	}
	return newPromMetrics(reg)
}
