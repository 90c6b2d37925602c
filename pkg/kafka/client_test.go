package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"genom-go/internal/config"
	"genom-go/pkg/tasks"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReader 依次返回预置的消息，取完后返回 context.Canceled。
type fakeReader struct {
	mu        sync.Mutex
	msgs      []kafka.Message
	committed []int64
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return kafka.Message{}, err
	}
	if len(r.msgs) == 0 {
		return kafka.Message{}, context.Canceled
	}
	m := r.msgs[0]
	r.msgs = r.msgs[1:]
	return m, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// scriptedProcessor 按事件 ID 返回预置的错误序列，序列用完后返回 nil。
type scriptedProcessor struct {
	mu     sync.Mutex
	errs   map[string][]error
	calls  []string
	onCall func()
}

func (p *scriptedProcessor) Process(_ context.Context, event tasks.TaxonomyEvent) error {
	p.mu.Lock()
	p.calls = append(p.calls, event.EventID)
	var err error
	if queue := p.errs[event.EventID]; len(queue) > 0 {
		err = queue[0]
		p.errs[event.EventID] = queue[1:]
	}
	onCall := p.onCall
	p.mu.Unlock()
	if onCall != nil {
		onCall()
	}
	return err
}

func message(t *testing.T, offset int64, eventID string) kafka.Message {
	t.Helper()
	value, err := json.Marshal(tasks.TaxonomyEvent{EventID: eventID, Action: tasks.ActionTaxonomyCommitted, Editor: "curator"})
	require.NoError(t, err)
	return kafka.Message{Offset: offset, Value: value}
}

func withBackoff(t *testing.T, d time.Duration) {
	t.Helper()
	prev := retryBackoff
	retryBackoff = d
	t.Cleanup(func() { retryBackoff = prev })
}

var errTransient = errors.New("elasticsearch unavailable")

func TestConsume_RetriesUntilSuccessBeforeCommitting(t *testing.T) {
	withBackoff(t, 0)
	r := &fakeReader{msgs: []kafka.Message{message(t, 10, "e1")}}
	p := &scriptedProcessor{errs: map[string][]error{"e1": {errTransient, errTransient}}}

	consume(context.Background(), r, p)

	assert.Equal(t, []string{"e1", "e1", "e1"}, p.calls)
	assert.Equal(t, []int64{10}, r.committed)
	assert.True(t, r.closed)
}

func TestConsume_GivesUpAfterMaxAttempts(t *testing.T) {
	withBackoff(t, 0)
	r := &fakeReader{msgs: []kafka.Message{message(t, 10, "e1"), message(t, 11, "e2")}}
	p := &scriptedProcessor{errs: map[string][]error{"e1": {errTransient, errTransient, errTransient, errTransient}}}

	consume(context.Background(), r, p)

	assert.Equal(t, []string{"e1", "e1", "e1", "e2"}, p.calls, "later messages wait for the failing one")
	assert.Equal(t, []int64{10, 11}, r.committed)
}

func TestConsume_MalformedMessageIsCommitted(t *testing.T) {
	withBackoff(t, 0)
	r := &fakeReader{msgs: []kafka.Message{{Offset: 3, Value: []byte("{not json")}, message(t, 4, "e2")}}
	p := &scriptedProcessor{errs: map[string][]error{}}

	consume(context.Background(), r, p)

	assert.Equal(t, []string{"e2"}, p.calls)
	assert.Equal(t, []int64{3, 4}, r.committed)
}

func TestConsume_ShutdownDuringRetryLeavesOffsetUncommitted(t *testing.T) {
	withBackoff(t, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := &fakeReader{msgs: []kafka.Message{message(t, 10, "e1"), message(t, 11, "e2")}}
	p := &scriptedProcessor{errs: map[string][]error{"e1": {errTransient}}, onCall: cancel}

	done := make(chan struct{})
	go func() {
		defer close(done)
		consume(ctx, r, p)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not stop after cancellation")
	}

	assert.Equal(t, []string{"e1"}, p.calls)
	assert.Empty(t, r.committed)
	assert.True(t, r.closed)
}

func TestNewProducer_ShortBatchTimeout(t *testing.T) {
	p := NewProducer(config.KafkaConfig{Brokers: "localhost:9092", Topic: "taxonomy-events"})
	defer p.Close()

	assert.Equal(t, publishBatchTimeout, p.writer.BatchTimeout)
	assert.Less(t, p.writer.BatchTimeout, time.Second)
	assert.Equal(t, "taxonomy-events", p.writer.Topic)
}
