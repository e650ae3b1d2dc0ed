package kafka

import (
	"Larder/internal/api/config"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

// ConsumerManager 管理所有 Kafka 消费者
type ConsumerManager struct {
	canalConsumer sarama.ConsumerGroup
	canalHandler  sarama.ConsumerGroupHandler
	topic         string
}

// NewConsumerManager 构造函数
func NewConsumerManager(cfg *config.Config, cache CacheEvicter) (*ConsumerManager, error) {
	saramaCfg := newSaramaConfig(cfg.Kafka)

	canalConsumer, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.KafkaCanalConsumer.GroupID, saramaCfg)
	if err != nil {
		return nil, err
	}

	return &ConsumerManager{
		canalConsumer: canalConsumer,
		canalHandler:  NewCounterCacheHandler(cache),
		topic:         cfg.KafkaCanalConsumer.Topic,
	}, nil
}

// Start 启动所有消费者，阻塞到 ctx 结束
func (m *ConsumerManager) Start(ctx context.Context) error {
	go func() {
		log.Info("Canal consumer started", "topic", m.topic)
		for {
			if err := m.canalConsumer.Consume(ctx, []string{m.topic}, m.canalHandler); err != nil {
				log.Error("Error from consumer", "err", err)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	go func() {
		for err := range m.canalConsumer.Errors() {
			log.Error("Canal consumer error", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("Kafka Manager shutting down...")

	if err := m.canalConsumer.Close(); err != nil {
		log.Error("Failed to close canal consumer", "err", err)
	}
	return nil
}
