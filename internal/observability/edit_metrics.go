package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/annel0/voxel-edit/internal/history"
	"github.com/annel0/voxel-edit/internal/voxel"
)

// EditMetrics Prometheus-метрики движка правок и истории.
//
// Метрики:
// * voxel_edits_total{op}: counter
// * voxel_cells_changed_total{op}: counter
// * voxel_edit_duration_seconds{op}: histogram
// * voxel_loot_containers_total: counter
// * voxel_loot_scattered_stacks_total: counter
// * voxel_history_replays_total{dir,result}: counter
// * voxel_history_persist_errors_total: counter
type EditMetrics struct {
	edits         *prometheus.CounterVec
	cellsChanged  *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	containers    prometheus.Counter
	scattered     prometheus.Counter
	replays       *prometheus.CounterVec
	persistErrors prometheus.Counter
}

var (
	_ voxel.Observer         = (*EditMetrics)(nil)
	_ history.ReplayObserver = (*EditMetrics)(nil)
)

// NewEditMetrics создаёт метрики и регистрирует их в reg
func NewEditMetrics(reg prometheus.Registerer) *EditMetrics {
	m := &EditMetrics{
		edits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voxel",
			Name:      "edits_total",
			Help:      "Число выполненных правок по операциям.",
		}, []string{"op"}),
		cellsChanged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voxel",
			Name:      "cells_changed_total",
			Help:      "Число изменённых клеток по операциям.",
		}, []string{"op"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "voxel",
			Name:      "edit_duration_seconds",
			Help:      "Длительность правки.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"op"}),
		containers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxel",
			Name:      "loot_containers_total",
			Help:      "Число поставленных сундуков для лута.",
		}),
		scattered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxel",
			Name:      "loot_scattered_stacks_total",
			Help:      "Стопок лута, выброшенных в мир.",
		}),
		replays: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voxel",
			Name:      "history_replays_total",
			Help:      "Попытки undo/redo; result=applied|noop.",
		}, []string{"dir", "result"}),
		persistErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxel",
			Name:      "history_persist_errors_total",
			Help:      "Ошибки чтения и записи сохранённой истории.",
		}),
	}

	reg.MustRegister(m.edits, m.cellsChanged, m.duration, m.containers, m.scattered, m.replays, m.persistErrors)
	return m
}

// ObserveEdit реализует voxel.Observer
func (m *EditMetrics) ObserveEdit(op string, action *voxel.Action, elapsed time.Duration) {
	m.edits.WithLabelValues(op).Inc()
	m.cellsChanged.WithLabelValues(op).Add(float64(action.Changed()))
	m.duration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// ObserveLoot реализует voxel.Observer
func (m *EditMetrics) ObserveLoot(containers, scatteredStacks int) {
	m.containers.Add(float64(containers))
	m.scattered.Add(float64(scatteredStacks))
}

// ObserveReplay реализует history.ReplayObserver
func (m *EditMetrics) ObserveReplay(direction string, restored int) {
	result := "applied"
	if restored == 0 {
		result = "noop"
	}
	m.replays.WithLabelValues(direction, result).Inc()
}

// ObservePersistError реализует history.ReplayObserver
func (m *EditMetrics) ObservePersistError() {
	m.persistErrors.Inc()
}
