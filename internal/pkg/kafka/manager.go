package kafka

import (
	"Volunteer/internal/api/config"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

// ConsumerManager 管理所有 Kafka 消费者
type ConsumerManager struct {
	teamConsumer sarama.ConsumerGroup
	teamHandler  sarama.ConsumerGroupHandler
}

// NewConsumerManager 未开启 kafka 时返回 nil
func NewConsumerManager(cfg *config.Config, syncer MemberSyncer) (*ConsumerManager, error) {
	if !cfg.Kafka.Enable {
		return nil, nil
	}
	saramaCfg := newSaramaConfig(cfg.Kafka)

	teamConsumer, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.KafkaTeamConsumer.GroupID, saramaCfg)
	if err != nil {
		return nil, err
	}

	return &ConsumerManager{
		teamConsumer: teamConsumer,
		teamHandler:  NewTeamMemberHandler(syncer),
	}, nil
}

// Start 阻塞直到 ctx 取消
func (m *ConsumerManager) Start(ctx context.Context, cfg *config.Config) error {
	go func() {
		for err := range m.teamConsumer.Errors() {
			log.Error("Error from team consumer", "err", err)
		}
	}()

	go func() {
		topic := cfg.KafkaTeamConsumer.Topic
		log.Info("Team member consumer started", "topic", topic)
		for {
			if err := m.teamConsumer.Consume(ctx, []string{topic}, m.teamHandler); err != nil {
				log.Error("Error from consumer", "err", err)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	<-ctx.Done()
	log.Info("Kafka Manager shutting down...")

	if err := m.teamConsumer.Close(); err != nil {
		log.Error("Failed to close team consumer", "err", err)
	}
	return nil
}
