package main

import (
	"context"
	"os"
	"time"

	"github.com/DRSN-tech/inventory-backend/internal/app"
	config "github.com/DRSN-tech/inventory-backend/internal/cfg"
	"github.com/DRSN-tech/inventory-backend/pkg/logger"
	"github.com/DRSN-tech/inventory-backend/pkg/observability"
	"go.uber.org/zap/zapcore"
)

const telemetryShutdownTimeout = 5 * time.Second

//	@title			Inventory Backend API
//	@version		1.0
//	@description	Каталог товаров, остатки и журнал движения.
//	@BasePath		/api/v1
func main() {
	os.Exit(run())
}

func run() int {
	// Логгер до загрузки конфига: уровень и формат ещё неизвестны
	bootLog, err := logger.NewZapLogger("info", false)
	if err != nil {
		return 1
	}

	cfg, err := config.Load(bootLog)
	if err != nil {
		bootLog.Errorf(err, "failed to load config")
		return 1
	}

	telemetry, err := observability.Setup(context.Background(), cfg.Otel)
	if err != nil {
		bootLog.Errorf(err, "failed to setup OpenTelemetry, continuing without export")
		telemetry = &observability.Telemetry{}
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
		defer cancel()
		if err := telemetry.Shutdown(ctx); err != nil {
			bootLog.Errorf(err, "failed to shutdown OpenTelemetry")
		}
	}()

	var cores []zapcore.Core
	if core := telemetry.LogCore(); core != nil {
		cores = append(cores, core)
	}

	log, err := logger.NewZapLogger(cfg.Log.Level, cfg.Log.Development, cores...)
	if err != nil {
		bootLog.Errorf(err, "failed to build logger")
		return 1
	}
	defer func() { _ = log.Sync() }()

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Errorf(err, "failed to initialize app")
		return 1
	}

	if err := application.Run(); err != nil {
		return 1
	}

	return 0
}
