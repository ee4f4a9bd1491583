package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger — логгер приложения. Ошибка передаётся в Errorf отдельным аргументом,
// чтобы попасть в структурированное поле "error".
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(err error, format string, args ...any)
	Sync() error
}

type zapLogger struct {
	s *zap.SugaredLogger
}

// NewZapLogger создаёт логгер поверх zap.
// level: debug|info|warn|error, development включает человекочитаемый вывод.
// extra дублирует записи в дополнительные ядра, например в мост otelzap.
func NewZapLogger(level string, development bool, extra ...zapcore.Core) (Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var zcfg zap.Config
	if development {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
		zcfg.EncoderConfig.TimeKey = "ts"
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)

	opts := []zap.Option{zap.AddCallerSkip(1)}
	if len(extra) > 0 {
		opts = append(opts, zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewTee(append([]zapcore.Core{core}, extra...)...)
		}))
	}

	l, err := zcfg.Build(opts...)
	if err != nil {
		return nil, err
	}

	return &zapLogger{s: l.Sugar()}, nil
}

// NewNop возвращает логгер, который ничего не пишет. Используется в тестах.
func NewNop() Logger {
	return &zapLogger{s: zap.NewNop().Sugar()}
}

func (l *zapLogger) Debugf(format string, args ...any) {
	l.s.Debugf(format, args...)
}

func (l *zapLogger) Infof(format string, args ...any) {
	l.s.Infof(format, args...)
}

func (l *zapLogger) Warnf(format string, args ...any) {
	l.s.Warnf(format, args...)
}

func (l *zapLogger) Errorf(err error, format string, args ...any) {
	l.s.Errorw(fmt.Sprintf(format, args...), zap.Error(err))
}

func (l *zapLogger) Sync() error {
	return l.s.Sync()
}
