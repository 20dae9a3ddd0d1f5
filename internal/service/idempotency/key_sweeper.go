// Package idempotency обслуживает хранилище idempotency-ключей PlaceOrder.
package idempotency

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/loyalty-oms/internal/domain"
	"github.com/vladislavdragonenkov/loyalty-oms/internal/metrics"
)

const (
	defaultSweepInterval  = time.Minute
	defaultSweepBatchSize = 500
	// defaultMaxBatches ограничивает один проход, остаток уходит на следующий тик.
	defaultMaxBatches = 20
)

// SweeperConfig задаёт параметры KeySweeper. Нулевые поля заменяются значениями по умолчанию.
type SweeperConfig struct {
	// KeyTTL: срок жизни ключа PlaceOrder, попадает только в логи.
	KeyTTL     time.Duration
	Interval   time.Duration
	BatchSize  int
	MaxBatches int
	Logger     *log.Entry
	Metrics    *metrics.CleanupMetrics
	// Now подменяет часы в тестах.
	Now func() time.Time
}

// SweepResult описывает один проход очистки.
type SweepResult struct {
	Cutoff  time.Time
	Deleted int
	Batches int
	// Backlog: проход упёрся в MaxBatches, просроченные ключи ещё остались.
	Backlog  bool
	Duration time.Duration
}

// KeySweeper удаляет ключи PlaceOrder с истёкшим TTL. Пока запись лежит в хранилище,
// повтор с тем же ключом получает сохранённый ответ, поэтому удаляется только просроченное.
type KeySweeper struct {
	repo       domain.IdempotencyRepository
	metrics    *metrics.CleanupMetrics
	logger     *log.Entry
	keyTTL     time.Duration
	interval   time.Duration
	batchSize  int
	maxBatches int
	now        func() time.Time
}

// NewKeySweeper создаёт KeySweeper поверх репозитория ключей.
func NewKeySweeper(repo domain.IdempotencyRepository, cfg SweeperConfig) *KeySweeper {
	s := &KeySweeper{
		repo:       repo,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
		keyTTL:     cfg.KeyTTL,
		interval:   cfg.Interval,
		batchSize:  cfg.BatchSize,
		maxBatches: cfg.MaxBatches,
		now:        cfg.Now,
	}
	if s.logger == nil {
		s.logger = log.WithField("component", "idempotency-key-sweeper")
	}
	if s.metrics == nil {
		s.metrics = metrics.NewCleanupMetrics(nil)
	}
	if s.interval <= 0 {
		s.interval = defaultSweepInterval
	}
	if s.batchSize <= 0 {
		s.batchSize = defaultSweepBatchSize
	}
	if s.maxBatches <= 0 {
		s.maxBatches = defaultMaxBatches
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	return s
}

// Run чистит ключи сразу и затем каждые Interval до отмены ctx.
// Если прошлый проход оставил backlog, следующий запускается без ожидания тика.
func (s *KeySweeper) Run(ctx context.Context) {
	if s.repo == nil {
		s.logger.Warn("idempotency key sweeper is disabled: repository is nil")
		return
	}
	s.logger.WithFields(log.Fields{
		"interval": s.interval.String(),
		"key_ttl":  s.keyTTL.String(),
	}).Info("idempotency key sweeper started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		result, err := s.Sweep(ctx)
		s.report(result, err)
		if ctx.Err() != nil {
			return
		}
		if result.Backlog && err == nil {
			continue
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Sweep удаляет ключи с TTL не позже текущего момента, не больше MaxBatches порций.
func (s *KeySweeper) Sweep(ctx context.Context) (result SweepResult, err error) {
	started := time.Now()
	result.Cutoff = s.now()
	defer func() { result.Duration = time.Since(started) }()

	for result.Batches < s.maxBatches {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		deleted, err := s.repo.DeleteExpired(ctx, result.Cutoff, s.batchSize)
		if err != nil {
			return result, err
		}
		result.Batches++
		result.Deleted += deleted
		s.metrics.RecordDeleted(deleted)
		if deleted < s.batchSize {
			return result, nil
		}
	}
	result.Backlog = true
	return result, nil
}

func (s *KeySweeper) report(result SweepResult, err error) {
	fields := log.Fields{
		"cutoff":  result.Cutoff.Format(time.RFC3339),
		"deleted": result.Deleted,
		"batches": result.Batches,
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		s.metrics.RecordRun("error", result.Deleted)
		s.logger.WithFields(fields).WithError(err).Warn("idempotency key sweep failed")
		return
	}

	s.metrics.RecordRun("ok", result.Deleted)
	switch {
	case result.Backlog:
		s.logger.WithFields(fields).Warn("expired idempotency keys exceed one sweep, continuing")
	case result.Deleted > 0:
		s.logger.WithFields(fields).Debug("expired idempotency keys removed")
	}
}
