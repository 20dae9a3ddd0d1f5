package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PlacementMetrics содержит метрики workflow размещения заказа.
type PlacementMetrics struct {
	// Счётчики исходов
	placementsStarted  prometheus.Counter
	placementsPlaced   prometheus.Counter
	placementsDegraded prometheus.Counter
	placementsFailed   *prometheus.CounterVec

	// Гистограммы времени выполнения
	placementDuration prometheus.Histogram
	stepDuration      *prometheus.HistogramVec

	// Вызовы провайдера вознаграждений
	gatewayCalls        *prometheus.CounterVec
	gatewayCallDuration *prometheus.HistogramVec

	timelineEvents prometheus.Counter
	outboxEvents   prometheus.Counter

	activePlacements prometheus.Gauge
}

// NewPlacementMetrics регистрирует метрики в prometheus.DefaultRegisterer.
func NewPlacementMetrics() *PlacementMetrics {
	return NewPlacementMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewPlacementMetricsWithRegisterer регистрирует метрики в переданном registerer.
// Повторная регистрация возвращает уже существующие коллекторы.
func NewPlacementMetricsWithRegisterer(registerer prometheus.Registerer) *PlacementMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &PlacementMetrics{
		placementsStarted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "oms_placements_started_total",
			Help: "Total number of order placements started",
		}),
		placementsPlaced: registerCounter(registerer, prometheus.CounterOpts{
			Name: "oms_placements_placed_total",
			Help: "Total number of order placements completed with loyalty confirmed",
		}),
		placementsDegraded: registerCounter(registerer, prometheus.CounterOpts{
			Name: "oms_placements_degraded_total",
			Help: "Total number of placements persisted without loyalty confirmation",
		}),
		placementsFailed: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "oms_placements_failed_total",
			Help: "Total number of failed placements grouped by reason",
		}, []string{"reason"}),
		placementDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "oms_placement_duration_seconds",
			Help:    "Duration of order placements in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		stepDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "oms_placement_step_duration_seconds",
			Help:    "Duration of individual placement steps in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"step"}),
		gatewayCalls: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "oms_rewards_gateway_calls_total",
			Help: "Total number of rewards gateway calls grouped by operation and result",
		}, []string{"operation", "result"}),
		gatewayCallDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "oms_rewards_gateway_call_duration_seconds",
			Help:    "Duration of rewards gateway calls in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		}, []string{"operation"}),
		timelineEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "oms_timeline_events_total",
			Help: "Total number of timeline events recorded",
		}),
		outboxEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "oms_outbox_events_total",
			Help: "Total number of outbox events enqueued",
		}),
		activePlacements: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "oms_active_placements",
			Help: "Number of placements currently in flight",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordPlacementStarted увеличивает счётчик запусков и число активных размещений.
func (m *PlacementMetrics) RecordPlacementStarted() {
	m.placementsStarted.Inc()
	m.activePlacements.Inc()
}

// RecordPlacementFinished уменьшает число активных размещений и пишет длительность.
func (m *PlacementMetrics) RecordPlacementFinished(duration time.Duration) {
	m.activePlacements.Dec()
	m.placementDuration.Observe(duration.Seconds())
}

// RecordPlaced: заказ записан, лояльность подтверждена.
func (m *PlacementMetrics) RecordPlaced() {
	m.placementsPlaced.Inc()
}

// RecordDegraded: заказ записан, подтверждение лояльности не прошло.
func (m *PlacementMetrics) RecordDegraded() {
	m.placementsDegraded.Inc()
}

// RecordFailed увеличивает счётчик отказов с причиной.
func (m *PlacementMetrics) RecordFailed(reason string) {
	m.placementsFailed.WithLabelValues(reason).Inc()
}

// RecordStepDuration записывает время выполнения шага.
func (m *PlacementMetrics) RecordStepDuration(step string, duration time.Duration) {
	m.stepDuration.WithLabelValues(step).Observe(duration.Seconds())
}

// RecordGatewayCall учитывает вызов провайдера; result: "ok" или вид ошибки.
func (m *PlacementMetrics) RecordGatewayCall(operation, result string, duration time.Duration) {
	m.gatewayCalls.WithLabelValues(operation, result).Inc()
	m.gatewayCallDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordTimelineEvent увеличивает счётчик событий timeline.
func (m *PlacementMetrics) RecordTimelineEvent() {
	m.timelineEvents.Inc()
}

// RecordOutboxEvent увеличивает счётчик событий outbox.
func (m *PlacementMetrics) RecordOutboxEvent() {
	m.outboxEvents.Inc()
}
