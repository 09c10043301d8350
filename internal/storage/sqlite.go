package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rohankatakam/insightify/internal/models"
	"github.com/sirupsen/logrus"
)

// dailyRow is the SQL shape of a daily record. The full record lives in
// payload; the scalar columns are there for ad-hoc queries.
type dailyRow struct {
	Date           string    `db:"date"`
	TotalCommits   int       `db:"total_commits"`
	EstimatedHours float64   `db:"estimated_hours"`
	Payload        string    `db:"payload"`
	UpdatedAt      time.Time `db:"updated_at"`
}

type monthlyRow struct {
	Month        string    `db:"month"`
	TotalCommits int       `db:"total_commits"`
	TotalHours   float64   `db:"total_hours"`
	Payload      string    `db:"payload"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func newDailyRow(record *models.DailyRecord) (*dailyRow, error) {
	data, err := encodeRecord(record)
	if err != nil {
		return nil, err
	}
	return &dailyRow{
		Date:           record.Date,
		TotalCommits:   record.TotalCommits,
		EstimatedHours: record.EstimatedHours,
		Payload:        string(data),
		UpdatedAt:      time.Now().UTC(),
	}, nil
}

func newMonthlyRow(record *models.MonthlyRecord) (*monthlyRow, error) {
	data, err := encodeRecord(record)
	if err != nil {
		return nil, err
	}
	return &monthlyRow{
		Month:        record.MonthStr,
		TotalCommits: record.TotalCommits,
		TotalHours:   record.TotalHours,
		Payload:      string(data),
		UpdatedAt:    time.Now().UTC(),
	}, nil
}

// SQLiteStore implements storage using SQLite (for local use)
type SQLiteStore struct {
	db     *sqlx.DB
	path   string
	logger logrus.FieldLogger
}

// NewSQLiteStore creates a new SQLite storage
func NewSQLiteStore(path string, logger logrus.FieldLogger) (*SQLiteStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("connect to sqlite: %w", err)
	}

	db.Exec("PRAGMA journal_mode = WAL")

	store := &SQLiteStore{
		db:     db,
		path:   path,
		logger: logger.WithField("component", "sqlite-store"),
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS daily_records (
		date TEXT PRIMARY KEY,
		total_commits INTEGER NOT NULL,
		estimated_hours REAL NOT NULL,
		payload TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS monthly_reports (
		month TEXT PRIMARY KEY,
		total_commits INTEGER NOT NULL,
		total_hours REAL NOT NULL,
		payload TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) SaveDaily(ctx context.Context, record *models.DailyRecord) error {
	if err := checkDaily(record); err != nil {
		return err
	}
	row, err := newDailyRow(record)
	if err != nil {
		return err
	}

	query := `
		INSERT OR REPLACE INTO daily_records
		(date, total_commits, estimated_hours, payload, updated_at)
		VALUES (:date, :total_commits, :estimated_hours, :payload, :updated_at)
	`
	if _, err := s.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("save daily record: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetDaily(ctx context.Context, date string) (*models.DailyRecord, error) {
	var row dailyRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM daily_records WHERE date = ?`, date)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get daily record: %w", err)
	}
	return decodeDaily(date, []byte(row.Payload))
}

func (s *SQLiteStore) ListDays(ctx context.Context, prefix string) ([]string, error) {
	var days []string
	err := s.db.SelectContext(ctx, &days,
		`SELECT date FROM daily_records WHERE substr(date, 1, ?) = ? ORDER BY date`, len(prefix), prefix)
	if err != nil {
		return nil, fmt.Errorf("list days: %w", err)
	}
	return days, nil
}

func (s *SQLiteStore) SaveMonthly(ctx context.Context, record *models.MonthlyRecord) error {
	if err := checkMonth(record.MonthStr); err != nil {
		return err
	}
	row, err := newMonthlyRow(record)
	if err != nil {
		return err
	}

	query := `
		INSERT OR REPLACE INTO monthly_reports
		(month, total_commits, total_hours, payload, updated_at)
		VALUES (:month, :total_commits, :total_hours, :payload, :updated_at)
	`
	if _, err := s.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("save monthly report: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetMonthly(ctx context.Context, month string) (*models.MonthlyRecord, error) {
	var row monthlyRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM monthly_reports WHERE month = ?`, month)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get monthly report: %w", err)
	}
	return decodeMonthly(month, []byte(row.Payload))
}

func (s *SQLiteStore) Describe() string {
	return "sqlite:" + s.path
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
