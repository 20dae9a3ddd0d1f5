package app

import (
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/loyalty-oms/internal/domain"
	"github.com/vladislavdragonenkov/loyalty-oms/internal/service/rewards"
)

// rewardsGateways: шлюзы провайдера вознаграждений для размещения и для reconciler.
// У каждого свой circuit breaker, чтобы backlog сверки не закрывал размещение.
type rewardsGateways struct {
	placement  domain.RewardsGateway
	reconciler domain.RewardsGateway
	// breaker защищает размещение и попадает в health; nil для mock.
	breaker *rewards.CircuitBreaker
}

// initRewardsGateway собирает клиента провайдера вознаграждений за circuit breaker.
// Пустой base URL включает in-process mock без breaker.
func initRewardsGateway(cfg Config, logger *log.Entry) (rewardsGateways, error) {
	if cfg.RewardsBaseURL == "" {
		percent := decimal.NewFromFloat(cfg.RewardsMockDiscountPercent)
		logger.WithField("discount_percent", percent.String()).Warn("rewards base url is empty, using mock rewards gateway")
		mock := rewards.NewMockGateway()
		if percent.IsPositive() {
			mock = rewards.NewPercentMockGateway(percent)
		}
		return rewardsGateways{placement: mock, reconciler: mock}, nil
	}

	client, err := rewards.NewClient(rewards.Config{
		BaseURL: cfg.RewardsBaseURL,
		APIKey:  cfg.RewardsAPIKey,
		Timeout: cfg.RewardsCallTimeout,
		Logger:  logger.WithField("component", "rewards-client"),
	})
	if err != nil {
		return rewardsGateways{}, err
	}

	placementBreaker := rewards.NewCircuitBreaker(cfg.RewardsBreakerThreshold, cfg.RewardsBreakerCooldown,
		logger.WithFields(log.Fields{"component": "rewards-breaker", "consumer": "placement"}))
	reconcilerBreaker := rewards.NewCircuitBreaker(cfg.RewardsBreakerThreshold, cfg.RewardsBreakerCooldown,
		logger.WithFields(log.Fields{"component": "rewards-breaker", "consumer": "loyalty-reconciler"}))

	logger.WithField("base_url", cfg.RewardsBaseURL).Info("rewards gateway initialized")
	return rewardsGateways{
		placement:  rewards.NewBreakerGateway(client, placementBreaker),
		reconciler: rewards.NewBreakerGateway(client, reconcilerBreaker),
		breaker:    placementBreaker,
	}, nil
}
