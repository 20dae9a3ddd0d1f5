package app

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/loyalty-oms/internal/domain"
	"github.com/vladislavdragonenkov/loyalty-oms/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/loyalty-oms/internal/service/loyalty"
)

const reconcilerMaxRetries = 3

// initKafkaProducer инициализирует Kafka producer если brokers не пустой.
// Возвращает nil, nil если brokers пустой.
func initKafkaProducer(brokers []string, logger *log.Entry) (*kafka.Producer, error) {
	if len(brokers) == 0 {
		return nil, nil
	}

	producer, err := kafka.NewProducer(brokers, logger.WithField("component", "kafka-producer"))
	if err != nil {
		return nil, err
	}

	logger.WithField("brokers", brokers).Info("kafka producer initialized")
	return producer, nil
}

// closeKafka закрывает Kafka producer если он не nil.
func closeKafka(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}

	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
	} else {
		logger.Info("kafka producer closed")
	}
}

// initLoyaltyReconciler подписывает reconciler на outbox-события заказов.
func initLoyaltyReconciler(cfg Config, producer *kafka.Producer, gateway domain.RewardsGateway, timeline domain.TimelineRepository, logger *log.Entry) (*kafka.Consumer, error) {
	if !cfg.KafkaEnabled() || !cfg.KafkaReconcilerEnabled {
		return nil, nil
	}

	reconciler := loyalty.NewReconciler(gateway, timeline, cfg.RewardsCallTimeout, logger.WithField("component", "loyalty-reconciler"))
	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaConsumerGroup, []string{kafka.TopicOrderEvents}, reconciler.Handle, kafka.ConsumerOptions{
		DLQProducer: producer,
		MaxRetries:  reconcilerMaxRetries,
		RetryDelay:  cfg.OutboxRetryDelay,
		Logger:      logger.WithField("component", "kafka-consumer"),
	})
	if err != nil {
		return nil, fmt.Errorf("create loyalty reconciler consumer: %w", err)
	}
	return consumer, nil
}
