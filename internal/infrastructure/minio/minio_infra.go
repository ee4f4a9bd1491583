package minio

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/DRSN-tech/inventory-backend/internal/cfg"
	"github.com/DRSN-tech/inventory-backend/internal/domain"
	"github.com/DRSN-tech/inventory-backend/internal/infrastructure"
	"github.com/DRSN-tech/inventory-backend/internal/usecase"
	"github.com/DRSN-tech/inventory-backend/pkg/e"
	"github.com/DRSN-tech/inventory-backend/pkg/jitter"
	"github.com/DRSN-tech/inventory-backend/pkg/logger"
	"github.com/google/uuid"
)

const (
	cleanupAttempts    = 3
	cleanupBaseBackoff = time.Second
	cleanupMaxBackoff  = 8 * time.Second
	cleanupTimeout     = 30 * time.Second
)

// MinioInfrastructure выгружает журнал товара в MinIO: CSV с записями и JSON-манифест.
// Если один из объектов не загрузился, уже загруженные удаляются в фоне.
type MinioInfrastructure struct {
	objectRepo  usecase.ObjectRepository
	cfg         *cfg.MinIOCfg
	logger      logger.Logger
	shutdownCtx context.Context
	wg          sync.WaitGroup
	now         func() time.Time
}

func NewMinioInfrastructure(objectRepo usecase.ObjectRepository, cfg *cfg.MinIOCfg, logger logger.Logger, shutdownCtx context.Context) *MinioInfrastructure {
	return &MinioInfrastructure{
		objectRepo:  objectRepo,
		cfg:         cfg,
		logger:      logger,
		shutdownCtx: shutdownCtx,
		now:         time.Now,
	}
}

// ledgerManifest описывает одну выгрузку журнала
type ledgerManifest struct {
	ProductID  int64     `json:"product_id"`
	ObjectKey  string    `json:"object_key"`
	Entries    int       `json:"entries"`
	TotalIn    int64     `json:"total_in"`
	TotalOut   int64     `json:"total_out"`
	NetChange  int64     `json:"net_change"`
	ExportedAt time.Time `json:"exported_at"`
}

// ExportLedger загружает CSV и манифест параллельно. При первой ошибке
// отменяет оставшуюся загрузку и запускает очистку загруженного.
func (m *MinioInfrastructure) ExportLedger(ctx context.Context, productID int64, entries []domain.Transaction) (*usecase.ExportLedgerRes, error) {
	const op = "MinioInfrastructure.ExportLedger"

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	exportedAt := m.now().UTC()
	prefix := fmt.Sprintf("ledger/%d/%s-%s", productID, exportedAt.Format("20060102T150405Z"), uuid.NewString())
	csvKey := prefix + ".csv"
	manifestKey := prefix + ".json"

	csvData, err := infrastructure.EncodeLedgerCSV(entries)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	summary := domain.Summarize(productID, entries)
	manifestData, err := json.Marshal(ledgerManifest{
		ProductID:  productID,
		ObjectKey:  csvKey,
		Entries:    len(entries),
		TotalIn:    summary.TotalIn,
		TotalOut:   summary.TotalOut,
		NetChange:  summary.NetChange,
		ExportedAt: exportedAt,
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	objects := []*domain.Object{
		domain.NewObject(m.cfg.BucketName, csvKey, csvData, infrastructure.ContentTypeCSV),
		domain.NewObject(m.cfg.BucketName, manifestKey, manifestData, infrastructure.ContentTypeJSON),
	}

	keyCh := make(chan string, len(objects))
	errCh := make(chan error, len(objects))

	var uploadWg sync.WaitGroup
	for _, object := range objects {
		uploadWg.Add(1)
		go func() {
			defer uploadWg.Done()

			key, err := m.objectRepo.Upload(ctx, object)
			if err != nil {
				errCh <- fmt.Errorf("upload %s failed: %w", object.ObjectKey, err)
				return
			}

			keyCh <- key
		}()
	}

	go func() {
		uploadWg.Wait()
		close(errCh)
		close(keyCh)
	}()

	keys := make([]string, 0, len(objects))
	ok := false
	defer func() {
		if !ok {
			// дочитываем ключи, загруженные уже после отмены
			for key := range keyCh {
				keys = append(keys, key)
			}
			m.CleanupObjects(keys)
		}
	}()

	for completed := 0; completed < len(objects); {
		select {
		case key, open := <-keyCh:
			if open {
				keys = append(keys, key)
				completed++
			}
		case err, open := <-errCh:
			if open {
				cancel()
				return nil, e.Wrap(op, err)
			}
		case <-ctx.Done():
			return nil, e.Wrap(op, ctx.Err())
		}
	}

	ok = true
	return usecase.NewExportLedgerRes(m.cfg.BucketName, csvKey, manifestKey, len(entries)), nil
}

// CleanupObjects запускает фоновую очистку указанных ключей MinIO
func (m *MinioInfrastructure) CleanupObjects(keys []string) {
	if len(keys) == 0 {
		return
	}
	m.wg.Add(1)
	go m.cleanupUploadedKeys(keys)
}

// cleanupUploadedKeys удаляет объекты с экспоненциальной задержкой и jitter.
func (m *MinioInfrastructure) cleanupUploadedKeys(keys []string) {
	defer m.wg.Done()
	const op = "MinioInfrastructure.cleanupUploadedKeys"
	m.logger.Infof("%s: cleaning up %d uploaded keys", op, len(keys))

	ctx, cancel := context.WithTimeout(m.shutdownCtx, cleanupTimeout)
	defer cancel()

	for _, key := range keys {
		for attempt := 0; attempt < cleanupAttempts; attempt++ {
			err := m.objectRepo.Delete(ctx, key)
			if err == nil {
				break
			}
			m.logger.Warnf("%s: delete %s failed (attempt %d): %v", op, key, attempt+1, err)

			if attempt == cleanupAttempts-1 {
				break
			}

			select {
			case <-time.After(jitter.ExponentialBackoff(cleanupBaseBackoff, cleanupMaxBackoff, attempt, jitter.DefaultJitter)):
			case <-ctx.Done():
				m.logger.Warnf("cleanup interrupted by shutdown, key=%v", key)
				return
			}
		}
	}
}

// WaitForCleanup ожидает завершения всех фоновых задач очистки с учётом таймаута завершения приложения.
func (m *MinioInfrastructure) WaitForCleanup(shutdownTimeoutCtx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-shutdownTimeoutCtx.Done():
		return fmt.Errorf("minio cleanup timeout during shutdown: %w", shutdownTimeoutCtx.Err())
	}
}
