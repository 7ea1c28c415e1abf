package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/isometry/payment-webhook/internal/models"
)

// Postgres writes records to a PostgreSQL table with INSERT ... ON CONFLICT (tx_ref) DO UPDATE.
// The table must have a unique constraint on tx_ref.
type Postgres struct {
	db    *gorm.DB
	table string
}

// OpenPostgres connects to the database at dsn. Failed and slow statements are logged to log.
func OpenPostgres(dsn, table string, log *slog.Logger) (*Postgres, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.NewSlogLogger(log, logger.Config{
			SlowThreshold:        time.Second,
			ParameterizedQueries: true,
			LogLevel:             logger.Warn,
		}),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to postgres")
	}
	return NewPostgres(db, table), nil
}

// NewPostgres returns a Postgres store on an existing connection.
func NewPostgres(db *gorm.DB, table string) *Postgres {
	return &Postgres{db: db, table: table}
}

func (s *Postgres) Upsert(ctx context.Context, record models.TransactionRecord) error {
	err := s.db.WithContext(ctx).
		Table(s.table).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tx_ref"}},
			UpdateAll: true,
		}).
		Create(&record).Error
	return errors.Wrapf(err, "failed to upsert transaction %s", record.TxRef)
}
