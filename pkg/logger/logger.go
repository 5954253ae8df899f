package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	instance *zap.SugaredLogger
	once     sync.Once
)

type Config struct {
	Development bool
}

// New builds the process logger. Only the first call configures it.
func New(cfg Config) (*zap.SugaredLogger, error) {
	var err error
	once.Do(func() {
		var l *zap.Logger
		if cfg.Development {
			l, err = zap.NewDevelopment()
		} else {
			l, err = zap.NewProduction()
		}
		if err != nil {
			return
		}
		instance = l.Sugar()
	})
	return instance, err
}

// L returns the process logger, or a no-op logger when New was never called.
func L() *zap.SugaredLogger {
	if instance == nil {
		return Nop()
	}
	return instance
}

func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
