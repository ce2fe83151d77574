package logger

import (
	"go-league/internal/config"
	"go-league/internal/database"

	"go.uber.org/zap"
)

// NewLogger builds the console logger and, when a database is available,
// tees warnings and errors into the engine_logs collection.
func NewLogger(cfg *config.Config, mongodb *database.MongodbDB) (*zap.Logger, error) {
	var zapConfig zap.Config
	if cfg.IsProduction() {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	// Caller function names end up in the persisted entries
	zapConfig.EncoderConfig.FunctionKey = "func"

	baseLogger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}

	if mongodb == nil || mongodb.DB == nil {
		return baseLogger, nil
	}

	dbWriter := NewDBLogWriter(mongodb, cfg)
	finalCore := NewDBCore(baseLogger.Core(), dbWriter)

	return zap.New(finalCore, zap.AddCaller()).With(zap.String("app", cfg.AppId)), nil
}

// NewConsoleLogger is used by command line tools that run without MongoDB.
func NewConsoleLogger(cfg *config.Config) (*zap.Logger, error) {
	return NewLogger(cfg, nil)
}
