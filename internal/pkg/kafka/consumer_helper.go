package kafka

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
)

const (
	batchSize    = 32
	batchTimeout = 1 * time.Second
	maxBackoff   = 5 * time.Second
)

var (
	errTableMismatch = errors.New("canal table mismatch")
	errEmptyData     = errors.New("canal data is empty")
)

type LogicFunc func(ctx context.Context, msg *sarama.ConsumerMessage) error

// pullMessageBatch 攒批处理，满批或超时即提交
func pullMessageBatch(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim, logic LogicFunc) error {
	batch := make([]*sarama.ConsumerMessage, 0, batchSize)
	ticker := time.NewTicker(batchTimeout)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				if len(batch) > 0 {
					processBatch(session.Context(), session, batch, logic)
				}
				return nil
			}
			batch = append(batch, msg)
			if len(batch) >= batchSize {
				processBatch(session.Context(), session, batch, logic)
				batch = make([]*sarama.ConsumerMessage, 0, batchSize)
				ticker.Reset(batchTimeout)
			}
		case <-ticker.C:
			if len(batch) > 0 {
				processBatch(session.Context(), session, batch, logic)
				batch = make([]*sarama.ConsumerMessage, 0, batchSize)
			}
		case <-session.Context().Done():
			return nil
		}
	}
}

// offsetMarker 便于测试替换 session
type offsetMarker interface {
	MarkMessage(msg *sarama.ConsumerMessage, metadata string)
}

// processBatch 并发处理一批消息，失败的消息指数退避重试直到成功或会话结束
func processBatch(ctx context.Context, marker offsetMarker, messages []*sarama.ConsumerMessage, logic LogicFunc) {
	var wg sync.WaitGroup

	for _, msg := range messages {
		wg.Add(1)
		go func(m *sarama.ConsumerMessage) {
			defer wg.Done()
			retryInterval := 100 * time.Millisecond
			for {
				err := logic(ctx, m)
				if err == nil {
					return
				}
				log.Error("process message error", "topic", m.Topic, "offset", m.Offset, "err", err)
				select {
				case <-ctx.Done():
					return
				case <-time.After(retryInterval):
				}
				retryInterval = min(retryInterval*2, maxBackoff)
			}
		}(msg)
	}

	wg.Wait()

	if len(messages) > 0 && ctx.Err() == nil {
		marker.MarkMessage(messages[len(messages)-1], "")
	}
}

// ToCanalMessage 解析 canal 消息并校验表名
func ToCanalMessage(msg *sarama.ConsumerMessage, tableName string) (*CanalMessage, error) {
	var canalMsg CanalMessage
	if err := json.Unmarshal(msg.Value, &canalMsg); err != nil {
		return nil, fmt.Errorf("unmarshal canal message: %w", err)
	}
	if canalMsg.Table != tableName {
		return nil, errTableMismatch
	}
	if len(canalMsg.Data) == 0 {
		return nil, errEmptyData
	}
	return &canalMsg, nil
}
