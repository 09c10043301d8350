package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rohankatakam/insightify/internal/models"
	"github.com/sirupsen/logrus"
)

// FileStore keeps one JSON document per record under a data directory:
// YYYY-MM-DD.json for days and monthly_report_YYYY-MM.json for months.
type FileStore struct {
	dir    string
	logger logrus.FieldLogger
}

// NewFileStore creates the data directory if needed.
func NewFileStore(dir string, logger logrus.FieldLogger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileStore{dir: dir, logger: logger.WithField("component", "file-store")}, nil
}

// DailyPath is where the record for date is written.
func (s *FileStore) DailyPath(date string) string {
	return filepath.Join(s.dir, date+".json")
}

// MonthlyPath is where the record for month is written.
func (s *FileStore) MonthlyPath(month string) string {
	return filepath.Join(s.dir, "monthly_report_"+month+".json")
}

func (s *FileStore) SaveDaily(ctx context.Context, record *models.DailyRecord) error {
	if err := checkDaily(record); err != nil {
		return err
	}
	data, err := encodeRecord(record)
	if err != nil {
		return err
	}
	path := s.DailyPath(record.Date)
	if err := writeAtomic(path, data); err != nil {
		return err
	}
	s.logger.WithField("path", path).Debug("daily record written")
	return nil
}

func (s *FileStore) GetDaily(ctx context.Context, date string) (*models.DailyRecord, error) {
	if err := checkDate(date); err != nil {
		return nil, err
	}
	data, err := s.read(s.DailyPath(date))
	if err != nil {
		return nil, err
	}
	return decodeDaily(date, data)
}

func (s *FileStore) ListDays(ctx context.Context, prefix string) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read data directory: %w", err)
	}

	var days []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		date := strings.TrimSuffix(e.Name(), ".json")
		if dateKey.MatchString(date) && strings.HasPrefix(date, prefix) {
			days = append(days, date)
		}
	}
	sort.Strings(days)
	return days, nil
}

func (s *FileStore) SaveMonthly(ctx context.Context, record *models.MonthlyRecord) error {
	if err := checkMonth(record.MonthStr); err != nil {
		return err
	}
	data, err := encodeRecord(record)
	if err != nil {
		return err
	}
	return writeAtomic(s.MonthlyPath(record.MonthStr), data)
}

func (s *FileStore) GetMonthly(ctx context.Context, month string) (*models.MonthlyRecord, error) {
	if err := checkMonth(month); err != nil {
		return nil, err
	}
	data, err := s.read(s.MonthlyPath(month))
	if err != nil {
		return nil, err
	}
	return decodeMonthly(month, data)
}

func (s *FileStore) Describe() string {
	return s.dir
}

func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// writeAtomic replaces path with data via a synced temp file in the same
// directory, so readers see either the old or the new document.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
