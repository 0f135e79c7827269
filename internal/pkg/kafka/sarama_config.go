package kafka

import (
	"Volunteer/internal/api/config"
	"time"

	"github.com/IBM/sarama"
)

const clientID = "volunteer-im"

// newSaramaConfig 未配置的超时使用 sarama 默认值
func newSaramaConfig(kafkaCfg config.KafkaConfig) *sarama.Config {
	c := sarama.NewConfig()
	c.ClientID = clientID

	if kafkaCfg.Sasl.Enable {
		c.Net.SASL.Enable = true
		c.Net.SASL.Mechanism = sarama.SASLTypePlaintext
		c.Net.SASL.User = kafkaCfg.Sasl.Username
		c.Net.SASL.Password = kafkaCfg.Sasl.Password
	}

	c.Consumer.Return.Errors = true
	// 成员变更不能漏，首次加入从最早位点开始
	c.Consumer.Offsets.Initial = sarama.OffsetOldest
	c.Consumer.Offsets.AutoCommit.Enable = true
	c.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategySticky()}

	consumer := kafkaCfg.Consumer
	setSeconds(&c.Consumer.Group.Session.Timeout, consumer.SessionTimeout)
	setSeconds(&c.Consumer.Group.Heartbeat.Interval, consumer.HeartbeatInterval)
	setSeconds(&c.Consumer.Group.Rebalance.Timeout, consumer.RebalanceTimeout)
	setSeconds(&c.Consumer.MaxProcessingTime, consumer.MaxProcessingTime)

	return c
}

func setSeconds(dst *time.Duration, seconds int) {
	if seconds > 0 {
		*dst = time.Duration(seconds) * time.Second
	}
}
