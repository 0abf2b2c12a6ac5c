package kafka

import (
	"context"
	log "log/slog"

	"Plume/internal/api/config"

	"github.com/IBM/sarama"
)

// ConsumerManager 管理 Kafka 消费者
type ConsumerManager struct {
	ingestConsumer sarama.ConsumerGroup
	ingestHandler  sarama.ConsumerGroupHandler
	ingestTopic    string
}

// NewConsumerManager 构造函数
func NewConsumerManager(cfg *config.Config) (*ConsumerManager, error) {
	saramaCfg := newSaramaConfig(cfg.Kafka)

	ingestConsumer, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.KafkaIngestConsumer.GroupID, saramaCfg)
	if err != nil {
		return nil, err
	}

	return &ConsumerManager{
		ingestConsumer: ingestConsumer,
		ingestHandler:  NewIngestHandler(),
		ingestTopic:    cfg.KafkaIngestConsumer.Topic,
	}, nil
}

// Start 启动所有消费者，阻塞到 ctx 结束
func (m *ConsumerManager) Start(ctx context.Context) error {
	go func() {
		for err := range m.ingestConsumer.Errors() {
			log.Error("Ingest consumer error", "err", err)
		}
	}()

	go func() {
		log.Info("Ingest consumer started", "topic", m.ingestTopic)
		for {
			if err := m.ingestConsumer.Consume(ctx, []string{m.ingestTopic}, m.ingestHandler); err != nil {
				log.Error("Error from consumer", "err", err)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	<-ctx.Done()
	log.Info("Kafka Manager shutting down...")

	if err := m.ingestConsumer.Close(); err != nil {
		log.Error("Failed to close ingest consumer", "err", err)
		return err
	}
	return nil
}
