package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/DRSN-tech/inventory-backend/internal/cfg"
	"github.com/DRSN-tech/inventory-backend/internal/usecase"
	"github.com/DRSN-tech/inventory-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOutboxRepo struct {
	mu        sync.Mutex
	pending   []*usecase.OutboxEvent
	processed []int64
	released  []int64
}

func (f *fakeOutboxRepo) Create(context.Context, *usecase.OutboxEvent) (*usecase.OutboxEvent, error) {
	return nil, errors.New("not used")
}

func (f *fakeOutboxRepo) GetAndMarkAsProcessing(_ context.Context, limit int) ([]*usecase.OutboxEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if limit > len(f.pending) {
		limit = len(f.pending)
	}
	batch := f.pending[:limit]
	f.pending = f.pending[limit:]
	return batch, nil
}

func (f *fakeOutboxRepo) MarkAsProcessed(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.processed = append(f.processed, id)
	return nil
}

func (f *fakeOutboxRepo) ReleaseProcessing(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released = append(f.released, id)
	return nil
}

func (f *fakeOutboxRepo) ReleaseStale(context.Context, int) (int64, error) {
	return 0, nil
}

type fakeProducer struct {
	sent    []*usecase.WriteRawMessageReq
	failIDs map[string]bool
}

func (f *fakeProducer) WriteRawMessage(_ context.Context, req *usecase.WriteRawMessageReq) error {
	if f.failIDs[req.EventID] {
		return errors.New("kafka: broker not available")
	}
	f.sent = append(f.sent, req)
	return nil
}

func newEvent(id int64, eventID string) *usecase.OutboxEvent {
	return &usecase.OutboxEvent{
		ID:        id,
		EventID:   eventID,
		EventType: usecase.LedgerEntryRecorded,
		ProductID: 7,
		Payload:   []byte(`{"change_amount":1}`),
		Status:    usecase.Processing,
	}
}

func TestOutboxWorker_DrainSendsAllEvents(t *testing.T) {
	repo := &fakeOutboxRepo{pending: []*usecase.OutboxEvent{newEvent(1, "a"), newEvent(2, "b"), newEvent(3, "c")}}
	producer := &fakeProducer{}
	w := NewOutboxWorker(repo, logger.NewNop(), producer, &cfg.KafkaCfg{BatchSize: 2}, "")

	w.drain(context.Background())

	assert.Equal(t, []int64{1, 2, 3}, repo.processed)
	require.Len(t, producer.sent, 3)
	assert.Equal(t, int64(7), producer.sent[0].ProductID)
	assert.Equal(t, usecase.LedgerEntryRecorded, producer.sent[0].EventType)
}

func TestOutboxWorker_FailedEventIsReleased(t *testing.T) {
	repo := &fakeOutboxRepo{pending: []*usecase.OutboxEvent{newEvent(1, "a"), newEvent(2, "b"), newEvent(3, "c")}}
	producer := &fakeProducer{failIDs: map[string]bool{"a": true}}
	w := NewOutboxWorker(repo, logger.NewNop(), producer, &cfg.KafkaCfg{BatchSize: 2}, "")

	hasMore, err := w.processBatch(context.Background())
	require.NoError(t, err)
	assert.False(t, hasMore)
	assert.Equal(t, []int64{1}, repo.released)
	assert.Equal(t, []int64{2}, repo.processed)
	assert.Len(t, repo.pending, 1)
}

func TestNewMessage(t *testing.T) {
	msg := newMessage(usecase.NewWriteRawMessageReq(newEvent(1, "evt-1")))

	assert.Equal(t, []byte("7"), msg.Key)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "evt-1", string(msg.Headers[0].Value))
	assert.Equal(t, string(usecase.LedgerEntryRecorded), string(msg.Headers[1].Value))
}

func TestIsRetryableError(t *testing.T) {
	assert.True(t, isRetryableError(errors.New("dial tcp: Connection Refused")))
	assert.False(t, isRetryableError(errors.New("message too large")))
	assert.False(t, isRetryableError(nil))
}
