package placement

import (
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"

	"github.com/vladislavdragonenkov/loyalty-oms/internal/domain"
	"github.com/vladislavdragonenkov/loyalty-oms/internal/metrics"
)

const defaultCallTimeout = 3 * time.Second

// EventPublisher публикует события размещения напрямую в брокер.
// Реализуется kafka.Producer.
type EventPublisher interface {
	PublishEvent(topic, key string, event any) error
}

// Option настраивает Workflow.
type Option func(*Workflow)

// WithLogger задаёт logger.
func WithLogger(logger *log.Entry) Option {
	return func(w *Workflow) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithMetrics включает prometheus-метрики.
func WithMetrics(m *metrics.PlacementMetrics) Option {
	return func(w *Workflow) {
		w.metrics = m
	}
}

// WithOutbox включает запись событий в transactional outbox.
func WithOutbox(repo domain.OutboxRepository) Option {
	return func(w *Workflow) {
		w.outbox = repo
	}
}

// WithTimeline включает запись таймлайна заказа.
func WithTimeline(repo domain.TimelineRepository) Option {
	return func(w *Workflow) {
		w.timeline = repo
	}
}

// WithEventPublisher включает прямую публикацию событий в topic.
func WithEventPublisher(publisher EventPublisher, topic string) Option {
	return func(w *Workflow) {
		w.events = publisher
		if topic != "" {
			w.eventsTopic = topic
		}
	}
}

// WithCallTimeout ограничивает каждый вызов провайдера вознаграждений.
func WithCallTimeout(timeout time.Duration) Option {
	return func(w *Workflow) {
		if timeout > 0 {
			w.callTimeout = timeout
		}
	}
}

// WithTracer задаёт otel tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(w *Workflow) {
		if tracer != nil {
			w.tracer = tracer
		}
	}
}
