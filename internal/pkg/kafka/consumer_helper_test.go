package kafka

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
)

type fakeSession struct {
	ctx     context.Context
	mu      sync.Mutex
	marked  []int64
	commits int
}

func (s *fakeSession) Claims() map[string][]int32 { return nil }
func (s *fakeSession) MemberID() string { return "m" }
func (s *fakeSession) GenerationID() int32 { return 1 }
func (s *fakeSession) MarkOffset(string, int32, int64, string) {}
func (s *fakeSession) ResetOffset(string, int32, int64, string) {}
func (s *fakeSession) Context() context.Context { return s.ctx }

func (s *fakeSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marked = append(s.marked, msg.Offset)
}

func (s *fakeSession) Commit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commits++
}

type fakeClaim struct {
	ch chan *sarama.ConsumerMessage
}

func (c *fakeClaim) Topic() string { return "larder_canal" }
func (c *fakeClaim) Partition() int32 { return 0 }
func (c *fakeClaim) InitialOffset() int64 { return 0 }
func (c *fakeClaim) HighWaterMarkOffset() int64 { return 0 }
func (c *fakeClaim) Messages() <-chan *sarama.ConsumerMessage { return c.ch }

func TestBatcherMarksLastOffsetPerBatch(t *testing.T) {
	session := &fakeSession{ctx: context.Background()}
	claim := &fakeClaim{ch: make(chan *sarama.ConsumerMessage, 5)}
	for i := int64(0); i < 5; i++ {
		claim.ch <- &sarama.ConsumerMessage{Offset: i}
	}
	close(claim.ch)

	var handled atomic.Int32
	b := &batcher{size: 2, timeout: time.Hour, logic: func(context.Context, *sarama.ConsumerMessage) error {
		handled.Add(1)
		return nil
	}}

	assert.NoError(t, b.run(session, claim))
	assert.Equal(t, int32(5), handled.Load())
	assert.Equal(t, []int64{1, 3, 4}, session.marked)
	assert.Equal(t, 3, session.commits)
}

func TestBatcherRetriesFailedMessage(t *testing.T) {
	session := &fakeSession{ctx: context.Background()}
	claim := &fakeClaim{ch: make(chan *sarama.ConsumerMessage, 1)}
	claim.ch <- &sarama.ConsumerMessage{Offset: 7}
	close(claim.ch)

	var attempts atomic.Int32
	b := &batcher{size: 10, timeout: time.Hour, logic: func(context.Context, *sarama.ConsumerMessage) error {
		if attempts.Add(1) < 2 {
			return errors.New("transient")
		}
		return nil
	}}

	assert.NoError(t, b.run(session, claim))
	assert.Equal(t, int32(2), attempts.Load())
	assert.Equal(t, []int64{7}, session.marked)
}

func TestBatcherDoesNotCommitAfterSessionEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	session := &fakeSession{ctx: ctx}

	b := &batcher{size: 10, timeout: time.Hour, logic: func(context.Context, *sarama.ConsumerMessage) error {
		cancel()
		return errors.New("store down")
	}}
	b.process(session, []*sarama.ConsumerMessage{{Offset: 1}})

	assert.Empty(t, session.marked)
	assert.Zero(t, session.commits)
}
