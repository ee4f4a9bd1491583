package kafka

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/inventory-backend/internal/cfg"
	"github.com/DRSN-tech/inventory-backend/internal/repository/pgdb"
	"github.com/DRSN-tech/inventory-backend/internal/usecase"
	"github.com/DRSN-tech/inventory-backend/pkg/e"
	"github.com/DRSN-tech/inventory-backend/pkg/jitter"
	"github.com/DRSN-tech/inventory-backend/pkg/logger"
	"github.com/jackc/pgx/v5"
)

const (
	reconnectBaseBackoff = time.Second
	reconnectMaxBackoff  = 30 * time.Second
	notifyWaitTimeout    = 30 * time.Second
)

// OutboxWorker переносит события журнала из outbox_events в Kafka.
// Будится по NOTIFY, страхуется периодическим опросом.
type OutboxWorker struct {
	repo      usecase.OutboxRepository
	logger    logger.Logger
	producer  usecase.MessageProducer
	cfg       *cfg.KafkaCfg
	stop      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
	dbConnStr string
	drainMu   sync.Mutex
}

func NewOutboxWorker(
	repo usecase.OutboxRepository,
	logger logger.Logger,
	producer usecase.MessageProducer,
	cfg *cfg.KafkaCfg,
	dbConnStr string,
) *OutboxWorker {
	return &OutboxWorker{
		repo:      repo,
		logger:    logger,
		producer:  producer,
		cfg:       cfg,
		stop:      make(chan struct{}),
		dbConnStr: dbConnStr,
	}
}

func (w *OutboxWorker) Start(ctx context.Context) {
	w.wg.Add(2)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()

	go func() {
		defer w.wg.Done()
		w.listenOutboxNotifications(ctx)
	}()
}

// Stop останавливает воркер и ждёт завершения горутин.
func (w *OutboxWorker) Stop(ctx context.Context) error {
	w.stopOnce.Do(func() { close(w.stop) })

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run разбирает накопившиеся события при старте и затем опрашивает outbox по таймеру.
func (w *OutboxWorker) run(ctx context.Context) {
	w.logger.Infof("Draining pending outbox events on startup...")
	w.drain(ctx)

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Infof("Worker stopped by context cancellation")
			return
		case <-w.stop:
			return
		case <-ticker.C:
			if n, err := w.repo.ReleaseStale(ctx, int(w.cfg.StaleAfter.Seconds())); err != nil {
				w.logger.Warnf("release stale outbox events failed: %v", err)
			} else if n > 0 {
				w.logger.Warnf("released %d stale outbox events", n)
			}
			w.drain(ctx)
		}
	}
}

func (w *OutboxWorker) listenOutboxNotifications(ctx context.Context) {
	var conn *pgx.Conn

	connect := func() error {
		c, err := pgx.Connect(ctx, w.dbConnStr)
		if err != nil {
			return e.Wrap("failed to connect for LISTEN", err)
		}

		if _, err := c.Exec(ctx, "LISTEN "+pgdb.OutboxChannel); err != nil {
			_ = c.Close(ctx)
			return e.Wrap("failed to LISTEN", err)
		}

		conn = c
		w.logger.Infof("Subscribed to '%s' channel", pgdb.OutboxChannel)
		return nil
	}

	// Переподключение с экспоненциальной задержкой и jitter
	reconnect := func() bool {
		for attempt := 0; ; attempt++ {
			err := connect()
			if err == nil {
				return true
			}
			w.logger.Warnf("LISTEN connect failed (attempt %d): %v", attempt+1, err)

			select {
			case <-ctx.Done():
				return false
			case <-w.stop:
				return false
			case <-time.After(jitter.ExponentialBackoff(reconnectBaseBackoff, reconnectMaxBackoff, attempt, jitter.DefaultJitter)):
			}
		}
	}

	if !reconnect() {
		return
	}
	defer func() {
		if conn != nil {
			_ = conn.Close(context.Background())
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		default:
		}

		waitCtx, cancel := context.WithTimeout(ctx, notifyWaitTimeout)
		notif, err := conn.WaitForNotification(waitCtx)
		cancel()

		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				continue
			}
			w.logger.Warnf("Connection lost: %v. Reconnecting...", err)
			_ = conn.Close(ctx)
			conn = nil

			if !reconnect() {
				return
			}
			continue
		}

		if notif != nil && notif.Channel == pgdb.OutboxChannel {
			w.logger.Debugf("Received outbox notification, draining outbox events")
			w.drain(ctx)
		}
	}
}

// drain обрабатывает пачки, пока outbox не опустеет. Одновременно работает один drain.
func (w *OutboxWorker) drain(ctx context.Context) {
	w.drainMu.Lock()
	defer w.drainMu.Unlock()

	for {
		hasMore, err := w.processBatch(ctx)
		if err != nil {
			w.logger.Warnf("Batch processing failed: %v", err)
			return
		}
		if !hasMore {
			return
		}
	}
}

// processBatch отправляет одну пачку. hasMore == false, если пачка пуста
// или хотя бы одно событие не ушло: повтор будет на следующем тике.
func (w *OutboxWorker) processBatch(ctx context.Context) (bool, error) {
	events, err := w.repo.GetAndMarkAsProcessing(ctx, w.cfg.BatchSize)
	if err != nil {
		return false, err
	}

	if len(events) == 0 {
		return false, nil
	}

	hasMore := true
	for _, event := range events {
		if err := w.processEvent(ctx, event); err != nil {
			w.logger.Warnf("outbox event %s not sent: %v", event.EventID, err)
			if err := w.repo.ReleaseProcessing(ctx, event.ID); err != nil {
				w.logger.Warnf("release outbox event failed: %v", err)
			}
			hasMore = false
			continue
		}
		if err := w.repo.MarkAsProcessed(ctx, event.ID); err != nil {
			w.logger.Warnf("mark processed failed: %v", err)
		}
	}

	return hasMore, nil
}

func (w *OutboxWorker) processEvent(ctx context.Context, event *usecase.OutboxEvent) error {
	if err := w.producer.WriteRawMessage(ctx, usecase.NewWriteRawMessageReq(event)); err != nil {
		if isRetryableError(err) {
			return e.Wrap("Temporary Kafka failure, will retry", err)
		}
		return e.Wrap("Permanent Kafka failure", err)
	}
	return nil
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	retryablePhrases := []string{
		"connection refused",
		"i/o timeout",
		"network is unreachable",
		"broker not available",
		"connection reset",
		"broken pipe",
		"no such host",
	}
	for _, phrase := range retryablePhrases {
		if strings.Contains(errStr, phrase) {
			return true
		}
	}
	return false
}
