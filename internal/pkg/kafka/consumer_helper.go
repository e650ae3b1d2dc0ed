package kafka

import (
	"Larder/internal/pkg/logger"
	"context"
	log "log/slog"
	"sync"
	"time"

	"github.com/IBM/sarama"
)

const (
	batchSize     = 32
	batchTimeout  = 1 * time.Second
	retryInterval = 100 * time.Millisecond
	maxRetryDelay = 5 * time.Second
)

type LogicFunc func(ctx context.Context, msg *sarama.ConsumerMessage) error

// batcher 按数量或超时攒批，整批处理完后提交最后一条的 offset
type batcher struct {
	size    int
	timeout time.Duration
	logic   LogicFunc
}

func newBatcher(logic LogicFunc) *batcher {
	return &batcher{size: batchSize, timeout: batchTimeout, logic: logic}
}

// pullMessageBatch 拉取一批消息并执行业务逻辑
func pullMessageBatch(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim, logic LogicFunc) error {
	return newBatcher(logic).run(session, claim)
}

func (b *batcher) run(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	batch := make([]*sarama.ConsumerMessage, 0, b.size)
	ticker := time.NewTicker(b.timeout)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		b.process(session, batch)
		batch = make([]*sarama.ConsumerMessage, 0, b.size)
	}

	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				flush()
				return nil
			}
			batch = append(batch, msg)
			if len(batch) >= b.size {
				flush()
				ticker.Reset(b.timeout)
			}
		case <-ticker.C:
			flush()
		case <-session.Context().Done():
			return nil
		}
	}
}

// process 并发处理一批消息，失败的消息退避重试直到成功或会话结束
func (b *batcher) process(session sarama.ConsumerGroupSession, messages []*sarama.ConsumerMessage) {
	var wg sync.WaitGroup
	for _, msg := range messages {
		wg.Add(1)
		go func(m *sarama.ConsumerMessage) {
			defer wg.Done()
			b.handleWithRetry(session.Context(), m)
		}(msg)
	}
	wg.Wait()

	if session.Context().Err() != nil {
		return
	}
	session.MarkMessage(messages[len(messages)-1], "")
	// 关闭了自动提交，需要手动提交
	session.Commit()
}

func (b *batcher) handleWithRetry(sessionCtx context.Context, m *sarama.ConsumerMessage) {
	ctx := logger.WithTraceID(sessionCtx, "")
	delay := retryInterval
	for {
		err := b.logic(ctx, m)
		if err == nil {
			return
		}
		log.ErrorContext(ctx, "process message error", "topic", m.Topic, "offset", m.Offset, "err", err)

		select {
		case <-sessionCtx.Done():
			return
		case <-time.After(delay):
		}
		delay *= 2
		if delay > maxRetryDelay {
			delay = maxRetryDelay
		}
	}
}
