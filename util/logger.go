package util

import (
	"go.uber.org/zap"
)

// Log is replaced by InitLogger on startup. Tests run with the no-op logger.
var Log = zap.NewNop()

func InitLogger(env string) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if env == "local" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	Log = logger
	return logger, nil
}
