package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/DRSN-tech/inventory-backend/internal/cfg"
	v1Grpc "github.com/DRSN-tech/inventory-backend/internal/delivery/v1/grpc"
	v1Http "github.com/DRSN-tech/inventory-backend/internal/delivery/v1/http"
	"github.com/DRSN-tech/inventory-backend/internal/infrastructure/kafka"
	minioInfra "github.com/DRSN-tech/inventory-backend/internal/infrastructure/minio"
	s3Repo "github.com/DRSN-tech/inventory-backend/internal/repository/minio"
	"github.com/DRSN-tech/inventory-backend/internal/repository/pgdb"
	pgdbConv "github.com/DRSN-tech/inventory-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/inventory-backend/internal/repository/redis"
	redisConv "github.com/DRSN-tech/inventory-backend/internal/repository/redis/converter"
	"github.com/DRSN-tech/inventory-backend/internal/usecase"
	"github.com/DRSN-tech/inventory-backend/pkg/clients"
	"github.com/DRSN-tech/inventory-backend/pkg/closer"
	"github.com/DRSN-tech/inventory-backend/pkg/e"
	"github.com/DRSN-tech/inventory-backend/pkg/logger"
	"github.com/DRSN-tech/inventory-backend/pkg/postgres"
	"github.com/DRSN-tech/inventory-backend/pkg/tr"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
)

const (
	startupTimeout      = 15 * time.Second
	shutdownTimeout     = 15 * time.Second
	forcedCloseTimeout  = 3 * time.Second
	ensureTopicTimeout  = 10 * time.Second
	minioCleanupTimeout = 5 * time.Second
)

// App содержит собранное приложение: серверы, фоновые воркеры и всё, что нужно закрыть при остановке.
type App struct {
	cfg    *config.Config
	logger logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	closer *closer.Closer

	httpSrv *v1Http.Server
	grpcSrv *v1Grpc.GRPCServer
	worker  *kafka.OutboxWorker
}

// NewApp подключается к хранилищам, собирает use case'ы и серверы.
// Ресурсы регистрируются в closer по мере создания и закрываются в обратном порядке.
func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	a := &App{
		cfg:    cfg,
		logger: log,
		ctx:    ctx,
		cancel: cancel,
		closer: closer.NewCloser(forcedCloseTimeout),
	}

	if err := a.init(); err != nil {
		cancel()
		closeCtx, closeCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer closeCancel()
		if cerr := a.closer.Close(closeCtx); cerr != nil {
			log.Errorf(cerr, "failed to release resources after init error")
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return a, nil
}

func (a *App) init() error {
	startCtx, startCancel := context.WithTimeout(a.ctx, startupTimeout)
	defer startCancel()

	db, err := initPGDB(startCtx, a.logger, a.cfg)
	if err != nil {
		return err
	}
	a.closer.Add(db.Close)

	txManager := tr.NewManager(db.Pool)

	productRepo := pgdb.NewProductRepo(db.Pool, pgdbConv.NewProductConverterImpl())
	inventoryRepo := pgdb.NewInventoryRepo(db.Pool, pgdbConv.NewInventoryConverterImpl(), pgdbConv.NewProductConverterImpl())
	transactionRepo := pgdb.NewTransactionRepo(db.Pool, pgdbConv.NewTransactionConverterImpl())
	outboxRepo := pgdb.NewOutboxEventRepo(db.Pool, pgdbConv.NewOutboxEventConverterImpl())

	redisClient, err := clients.NewRedisClient(a.cfg.Redis)
	if err != nil {
		return e.Wrap("failed to initialize redis client", err)
	}
	a.closer.Add(redisClient.Close)
	if err := redisClient.Ping(startCtx); err != nil {
		// Без кэша каталог работает напрямую с БД
		a.logger.Warnf("redis is unavailable, product cache disabled until it recovers: %v", err)
	}
	cacheRepo := redis.NewCacheRepo(redisClient, redisConv.NewProductConverterImpl(), a.cfg.Redis, a.logger)

	exportInfra, err := a.initExport(startCtx)
	if err != nil {
		return err
	}

	if err := a.initOutbox(outboxRepo); err != nil {
		return err
	}

	productUC := usecase.NewProductUC(productRepo, cacheRepo, a.cfg.Inventory, a.logger)
	inventoryUC := usecase.NewInventoryUC(inventoryRepo, productUC, a.cfg.Inventory, a.logger)
	adjustmentUC := usecase.NewAdjustmentUC(inventoryRepo, transactionRepo, outboxRepo, txManager, a.logger)
	transactionUC := usecase.NewTransactionUC(transactionRepo, outboxRepo, productUC, txManager, exportInfra, a.cfg.Inventory, a.logger)

	a.grpcSrv = v1Grpc.NewGRPCServer(a.cfg.Grpc, a.logger)
	a.grpcSrv.RegisterServices(productUC, transactionUC)
	a.closer.Add(a.grpcSrv.Stop)

	r := chi.NewRouter()
	v1Http.NewRouter(r, a.logger, a.cfg.Http.SwaggerHost).
		WithDefaultLimit(a.cfg.Inventory.DefaultLimit).
		Init(productUC, inventoryUC, adjustmentUC, transactionUC, db)
	a.httpSrv = v1Http.NewServer(r, a.cfg.Http)
	a.closer.Add(a.httpSrv.Stop)

	return nil
}

// initExport поднимает выгрузку журнала в MinIO. Без MINIO_ENDPOINT выгрузка выключена.
func (a *App) initExport(ctx context.Context) (usecase.LedgerExportInfra, error) {
	if !a.cfg.Minio.Enabled {
		a.logger.Infof("MinIO is not configured, ledger export disabled")
		return nil, nil
	}

	minioClient, err := clients.NewMinIOClient(a.cfg.Minio)
	if err != nil {
		return nil, e.Wrap("failed to initialize minio client", err)
	}

	if err := clients.EnsureBucket(ctx, minioClient, a.cfg.Minio.BucketName); err != nil {
		return nil, e.Wrap("failed to initialize MinIO bucket", err)
	}

	infra := minioInfra.NewMinioInfrastructure(s3Repo.NewObjectRepo(minioClient, a.cfg.Minio), a.cfg.Minio, a.logger, a.ctx)
	a.closer.Add(func(ctx context.Context) error {
		waitCtx, cancel := context.WithTimeout(ctx, minioCleanupTimeout)
		defer cancel()
		if err := infra.WaitForCleanup(waitCtx); err != nil {
			a.logger.Warnf("MinIO cleanup did not finish before shutdown, some exported objects may remain: %v", err)
		}
		return nil
	})

	return infra, nil
}

// initOutbox запускает перенос событий журнала в Kafka.
// Без KAFKA_BROKERS события копятся в outbox_events до появления брокера.
func (a *App) initOutbox(outboxRepo usecase.OutboxRepository) error {
	if !a.cfg.Kafka.Enabled {
		a.logger.Infof("Kafka is not configured, ledger events stay in outbox")
		return nil
	}

	producer, err := kafka.NewProducer(a.logger, a.cfg.Kafka)
	if err != nil {
		return e.Wrap("failed to initialize kafka producer", err)
	}
	a.closer.Add(func(context.Context) error { return producer.Close() })

	if err := producer.EnsureTopic(ensureTopicTimeout); err != nil {
		a.logger.Warnf("failed to ensure kafka topic %s: %v", a.cfg.Kafka.Topic, err)
	}

	a.worker = kafka.NewOutboxWorker(outboxRepo, a.logger, producer, a.cfg.Kafka, a.cfg.Db.DSN())
	a.closer.Add(a.worker.Stop)

	return nil
}

// Run запускает серверы и блокируется до сигнала остановки или падения сервера.
func (a *App) Run() error {
	defer a.cancel()

	if a.worker != nil {
		a.worker.Start(a.ctx)
	}

	errCh := make(chan error, 2)
	go func() {
		a.logger.Infof("gRPC server starting on %s:%s", a.cfg.Grpc.NetworkMode, a.cfg.Grpc.Port)
		if err := a.grpcSrv.Start(); err != nil {
			errCh <- e.Wrap("gRPC server failed", err)
		}
	}()

	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil {
			errCh <- e.Wrap("HTTP server failed", err)
		}
	}()

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "server fatal error")
	case <-a.ctx.Done():
		a.logger.Infof("Received shutdown signal, stopping gracefully...")
	}
	a.cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := a.closer.Close(shutdownCtx); err != nil {
		a.logger.Errorf(err, "shutdown finished with errors")
		appErr = errors.Join(appErr, err)
	}

	a.logger.Infof("Application shutdown complete")
	return appErr
}

func initPGDB(ctx context.Context, logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(ctx, cfg.Db)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(cfg.Db.MigrationsURL, logger); err != nil {
		logger.Errorf(err, "failed to run migrations")
		db.Pool.Close()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
