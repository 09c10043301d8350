package storage

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/rohankatakam/insightify/internal/models"
	"github.com/sirupsen/logrus"
)

// PostgresStore implements storage using PostgreSQL
type PostgresStore struct {
	db     *sqlx.DB
	host   string
	logger logrus.FieldLogger
}

// NewPostgresStore creates a new PostgreSQL storage
func NewPostgresStore(ctx context.Context, dsn string, logger logrus.FieldLogger) (*PostgresStore, error) {
	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	host := "postgres"
	if u, err := url.Parse(dsn); err == nil && u.Host != "" {
		host = "postgres://" + u.Host + u.Path
	}

	store := &PostgresStore{
		db:     db,
		host:   host,
		logger: logger.WithField("component", "postgres-store"),
	}
	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return store, nil
}

func (s *PostgresStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS daily_records (
		date TEXT PRIMARY KEY,
		total_commits INTEGER NOT NULL,
		estimated_hours DOUBLE PRECISION NOT NULL,
		payload JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS monthly_reports (
		month TEXT PRIMARY KEY,
		total_commits INTEGER NOT NULL,
		total_hours DOUBLE PRECISION NOT NULL,
		payload JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func (s *PostgresStore) SaveDaily(ctx context.Context, record *models.DailyRecord) error {
	if err := checkDaily(record); err != nil {
		return err
	}
	row, err := newDailyRow(record)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO daily_records (date, total_commits, estimated_hours, payload, updated_at)
		VALUES (:date, :total_commits, :estimated_hours, :payload, :updated_at)
		ON CONFLICT (date) DO UPDATE SET
			total_commits = EXCLUDED.total_commits,
			estimated_hours = EXCLUDED.estimated_hours,
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := s.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("save daily record: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetDaily(ctx context.Context, date string) (*models.DailyRecord, error) {
	var payload string
	err := s.db.GetContext(ctx, &payload, `SELECT payload FROM daily_records WHERE date = $1`, date)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get daily record: %w", err)
	}
	return decodeDaily(date, []byte(payload))
}

func (s *PostgresStore) ListDays(ctx context.Context, prefix string) ([]string, error) {
	var days []string
	err := s.db.SelectContext(ctx, &days,
		`SELECT date FROM daily_records WHERE date LIKE $1 ORDER BY date`, prefix+"%")
	if err != nil {
		return nil, fmt.Errorf("list days: %w", err)
	}
	return days, nil
}

func (s *PostgresStore) SaveMonthly(ctx context.Context, record *models.MonthlyRecord) error {
	if err := checkMonth(record.MonthStr); err != nil {
		return err
	}
	row, err := newMonthlyRow(record)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO monthly_reports (month, total_commits, total_hours, payload, updated_at)
		VALUES (:month, :total_commits, :total_hours, :payload, :updated_at)
		ON CONFLICT (month) DO UPDATE SET
			total_commits = EXCLUDED.total_commits,
			total_hours = EXCLUDED.total_hours,
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := s.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("save monthly report: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetMonthly(ctx context.Context, month string) (*models.MonthlyRecord, error) {
	var payload string
	err := s.db.GetContext(ctx, &payload, `SELECT payload FROM monthly_reports WHERE month = $1`, month)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get monthly report: %w", err)
	}
	return decodeMonthly(month, []byte(payload))
}

func (s *PostgresStore) Describe() string {
	return s.host
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
