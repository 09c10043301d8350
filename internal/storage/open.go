package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/rohankatakam/insightify/internal/config"
	"github.com/rohankatakam/insightify/internal/models"
	"github.com/rohankatakam/insightify/internal/rollup"
	"github.com/sirupsen/logrus"
)

// Open builds the backend selected by cfg.Type.
func Open(ctx context.Context, cfg config.StorageConfig, logger logrus.FieldLogger) (Store, error) {
	switch cfg.Type {
	case "", "file":
		return NewFileStore(cfg.DataDirectory, logger)
	case "bolt":
		return NewBoltStore(cfg.BoltPath, logger)
	case "sqlite":
		return NewSQLiteStore(cfg.SQLitePath, logger)
	case "postgres":
		return NewPostgresStore(ctx, cfg.PostgresDSN, logger)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}

// LoadMonth reads the stored daily record of every day in month, in date
// order. Missing days are absent from the result; unreadable ones are
// logged and skipped.
func LoadMonth(ctx context.Context, store Store, month rollup.Month, logger logrus.FieldLogger) ([]*models.DailyRecord, error) {
	var records []*models.DailyRecord
	for _, date := range month.Days() {
		record, err := store.GetDaily(ctx, date)
		switch {
		case err == nil:
			records = append(records, record)
		case errors.Is(err, ErrNotFound):
			continue
		case errors.Is(err, ErrCorrupt):
			logger.WithFields(logrus.Fields{"date": date, "error": err}).Warn("skipping unreadable daily record")
		default:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			logger.WithFields(logrus.Fields{"date": date, "error": err}).Warn("failed to load daily record")
		}
	}
	return records, nil
}
