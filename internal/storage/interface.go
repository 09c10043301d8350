package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/rohankatakam/insightify/internal/models"
)

// Common errors
var (
	ErrNotFound = errors.New("not found")
	ErrCorrupt  = errors.New("corrupt record")
)

// Store persists daily and monthly artifacts. Daily records are keyed by
// "YYYY-MM-DD", monthly records by "YYYY-MM". Saving overwrites.
type Store interface {
	// Daily operations
	SaveDaily(ctx context.Context, record *models.DailyRecord) error
	GetDaily(ctx context.Context, date string) (*models.DailyRecord, error)

	// ListDays returns the stored dates starting with prefix, sorted.
	ListDays(ctx context.Context, prefix string) ([]string, error)

	// Monthly operations
	SaveMonthly(ctx context.Context, record *models.MonthlyRecord) error
	GetMonthly(ctx context.Context, month string) (*models.MonthlyRecord, error)

	// Describe names where records live, for console output.
	Describe() string

	// Close connection
	Close() error
}

var (
	dateKey  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	monthKey = regexp.MustCompile(`^\d{4}-\d{2}$`)
)

func checkDate(date string) error {
	if !dateKey.MatchString(date) {
		return fmt.Errorf("invalid date key %q", date)
	}
	return nil
}

// checkDaily rejects records whose total disagrees with the sum of their
// repositories.
func checkDaily(record *models.DailyRecord) error {
	if record == nil {
		return fmt.Errorf("nil daily record")
	}
	if err := checkDate(record.Date); err != nil {
		return err
	}
	if sum := record.RepositoryCommits(); sum != record.TotalCommits {
		return fmt.Errorf("daily record %s: total_commits %d does not match repository sum %d", record.Date, record.TotalCommits, sum)
	}
	return nil
}

func checkMonth(month string) error {
	if !monthKey.MatchString(month) {
		return fmt.Errorf("invalid month key %q", month)
	}
	return nil
}

func encodeRecord(v interface{}) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return data, nil
}

func decodeDaily(key string, data []byte) (*models.DailyRecord, error) {
	var record models.DailyRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: daily %s: %v", ErrCorrupt, key, err)
	}
	return &record, nil
}

func decodeMonthly(key string, data []byte) (*models.MonthlyRecord, error) {
	var record models.MonthlyRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: monthly %s: %v", ErrCorrupt, key, err)
	}
	return &record, nil
}
