package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rohankatakam/insightify/internal/models"
	"github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
)

const (
	dailyBucket   = "daily_records"
	monthlyBucket = "monthly_reports"
)

// BoltStore keeps records in a single embedded bbolt file.
type BoltStore struct {
	db     *bolt.DB
	path   string
	logger logrus.FieldLogger
}

// NewBoltStore opens (or creates) the database at path.
func NewBoltStore(path string, logger logrus.FieldLogger) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{dailyBucket, monthlyBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}

	return &BoltStore{db: db, path: path, logger: logger.WithField("component", "bolt-store")}, nil
}

func (s *BoltStore) SaveDaily(ctx context.Context, record *models.DailyRecord) error {
	if err := checkDaily(record); err != nil {
		return err
	}
	return s.put(dailyBucket, record.Date, record)
}

func (s *BoltStore) GetDaily(ctx context.Context, date string) (*models.DailyRecord, error) {
	data, err := s.get(dailyBucket, date)
	if err != nil {
		return nil, err
	}
	return decodeDaily(date, data)
}

func (s *BoltStore) ListDays(ctx context.Context, prefix string) ([]string, error) {
	var days []string
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(dailyBucket)).Cursor()
		p := []byte(prefix)
		for k, _ := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, _ = c.Next() {
			days = append(days, string(k))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list days: %w", err)
	}
	return days, nil
}

func (s *BoltStore) SaveMonthly(ctx context.Context, record *models.MonthlyRecord) error {
	if err := checkMonth(record.MonthStr); err != nil {
		return err
	}
	return s.put(monthlyBucket, record.MonthStr, record)
}

func (s *BoltStore) GetMonthly(ctx context.Context, month string) (*models.MonthlyRecord, error) {
	data, err := s.get(monthlyBucket, month)
	if err != nil {
		return nil, err
	}
	return decodeMonthly(month, data)
}

func (s *BoltStore) Describe() string {
	return s.path
}

// Close closes the database connection
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) put(bucket, key string, v interface{}) error {
	data, err := encodeRecord(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucket)).Put([]byte(key), data)
	})
}

func (s *BoltStore) get(bucket, key string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucket)).Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		// bbolt memory is only valid inside the transaction
		data = append([]byte(nil), v...)
		return nil
	})
	return data, err
}
