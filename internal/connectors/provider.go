package connectors

import (
	"context"
	"time"

	"go-league/internal/config"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewDataStore opens the league data store and closes it with the app.
func NewDataStore(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (*SQLConnector, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c, err := NewSQLConnectorFromConfig(ctx, cfg.DataStore)
	if err != nil {
		return nil, err
	}
	logger.Info("Connected to league data store", zap.String("type", c.GetType()))

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("Closing league data store")
			return c.Disconnect(ctx)
		},
	})
	return c, nil
}
