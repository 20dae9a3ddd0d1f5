package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/loyalty-oms/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/loyalty-oms/internal/health"
	"github.com/vladislavdragonenkov/loyalty-oms/internal/storage/memory"
	"github.com/vladislavdragonenkov/loyalty-oms/internal/storage/mysql"
	"github.com/vladislavdragonenkov/loyalty-oms/internal/storage/postgres"
	redisstore "github.com/vladislavdragonenkov/loyalty-oms/internal/storage/redis"
)

// runtimeDependencies: хранилища, выбранные конфигурацией, и их проверки здоровья.
type runtimeDependencies struct {
	users           domain.UserRepository
	orders          domain.OrderRepository
	outboxRepo      domain.OutboxRepository
	timelineRepo    domain.TimelineRepository
	idempotencyRepo domain.IdempotencyRepository

	checkers map[string]healthcheck.Checker
	closers  []func() error
}

// Close освобождает подключения в обратном порядке открытия.
func (d *runtimeDependencies) Close() error {
	if d == nil {
		return nil
	}
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}

func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeDependencies, error) {
	deps := &runtimeDependencies{checkers: make(map[string]healthcheck.Checker)}

	driver := strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	if driver == "" {
		driver = StorageDriverMemory
	}

	switch driver {
	case StorageDriverMemory:
		deps.users = memory.NewUserRepository()
		deps.orders = memory.NewOrderRepository()
		deps.outboxRepo = memory.NewOutboxRepository()
		deps.timelineRepo = memory.NewTimelineRepository()
		deps.idempotencyRepo = memory.NewIdempotencyRepository()
		logger.Info("storage driver: memory")

	case StorageDriverPostgres:
		if strings.TrimSpace(cfg.PostgresDSN) == "" {
			return nil, fmt.Errorf("postgres dsn is required for storage driver %q", driver)
		}
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		deps.closers = append(deps.closers, store.Close)
		if cfg.PostgresAutoMigrate {
			if err := store.EnsureSchema(ctx); err != nil {
				_ = deps.Close()
				return nil, fmt.Errorf("apply postgres migrations: %w", err)
			}
		}
		deps.users = postgres.NewUserRepository(store)
		deps.orders = postgres.NewOrderRepository(store)
		deps.outboxRepo = postgres.NewOutboxRepository(store)
		deps.timelineRepo = postgres.NewTimelineRepository(store)
		deps.idempotencyRepo = postgres.NewIdempotencyRepository(store)
		deps.checkers["storage"] = healthcheck.NewSimpleChecker("postgres", store.Ping)
		logger.Info("storage driver: postgres")

	case StorageDriverMySQL:
		if strings.TrimSpace(cfg.MySQLDSN) == "" {
			return nil, fmt.Errorf("mysql dsn is required for storage driver %q", driver)
		}
		store, err := mysql.Open(ctx, cfg.MySQLDSN)
		if err != nil {
			return nil, err
		}
		deps.closers = append(deps.closers, store.Close)
		if cfg.MySQLAutoMigrate {
			if err := store.EnsureSchema(ctx); err != nil {
				_ = deps.Close()
				return nil, fmt.Errorf("apply mysql schema: %w", err)
			}
		}
		deps.users = mysql.NewUserRepository(store)
		deps.orders = mysql.NewOrderRepository(store)
		// Для MySQL вспомогательные журналы остаются в памяти процесса.
		deps.outboxRepo = memory.NewOutboxRepository()
		deps.timelineRepo = memory.NewTimelineRepository()
		deps.idempotencyRepo = memory.NewIdempotencyRepository()
		deps.checkers["storage"] = healthcheck.NewSimpleChecker("mysql", store.Ping)
		logger.Info("storage driver: mysql")

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}

	switch strings.ToLower(strings.TrimSpace(cfg.UserStore)) {
	case "":
	case UserStoreRedis:
		client, err := redisstore.Connect(ctx, redisstore.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			_ = deps.Close()
			return nil, err
		}
		deps.closers = append(deps.closers, client.Close)
		deps.users = redisstore.NewUserRepository(client)
		deps.checkers["redis"] = healthcheck.NewSimpleChecker("redis", func(ctx context.Context) error {
			return redisstore.Ping(ctx, client)
		})
		logger.WithField("addr", cfg.RedisAddr).Info("user store: redis")
	default:
		_ = deps.Close()
		return nil, fmt.Errorf("unsupported user store %q", cfg.UserStore)
	}

	return deps, nil
}

// OpenUserRepository открывает хранилище пользователей, выбранное cfg.
// Вызывающий обязан вызвать closeFn.
func OpenUserRepository(ctx context.Context, cfg Config, logger *log.Entry) (repo domain.UserRepository, closeFn func() error, err error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}
	deps, err := initRuntimeDependencies(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return deps.users, deps.Close, nil
}
