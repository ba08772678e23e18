package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

type Storage struct {
	baseDir string
	mu      sync.Mutex
}

const (
	dailyMetricsDir = "daily"
	dateLayout      = "2006-01-02"
)

func NewStorage(baseDir string) (*Storage, error) {
	dailyDir := filepath.Join(baseDir, dailyMetricsDir)
	if err := os.MkdirAll(dailyDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create daily metrics directory: %w", err)
	}

	return &Storage{
		baseDir: baseDir,
	}, nil
}

func (s *Storage) dailyPath(date string) string {
	return filepath.Join(s.baseDir, dailyMetricsDir, date+".json")
}

// Update loads the day, applies fn and writes it back.
func (s *Storage) Update(date string, fn func(*DailyMetrics)) (*DailyMetrics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	daily, err := s.GetDailyMetrics(date)
	if err != nil {
		// A corrupt day file is replaced.
		daily = &DailyMetrics{Date: date}
	}
	fn(daily)
	if err := s.saveDailyMetrics(daily); err != nil {
		return daily, err
	}
	return daily, nil
}

func (s *Storage) GetDailyMetrics(date string) (*DailyMetrics, error) {
	data, err := os.ReadFile(s.dailyPath(date))
	if os.IsNotExist(err) {
		return &DailyMetrics{Date: date}, nil
	}
	if err != nil {
		return nil, err
	}

	var daily DailyMetrics
	if err := json.Unmarshal(data, &daily); err != nil {
		return nil, fmt.Errorf("parse %s: %w", date, err)
	}
	return &daily, nil
}

func (s *Storage) saveDailyMetrics(metrics *DailyMetrics) error {
	data, err := json.MarshalIndent(metrics, "", "  ")
	if err != nil {
		return err
	}

	// Write then rename.
	path := s.dailyPath(metrics.Date)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (s *Storage) GetTotalMetrics() (*TotalMetrics, error) {
	all, err := s.GetAllDailyMetrics()
	if err != nil {
		return nil, err
	}

	total := &TotalMetrics{ByAction: make(map[string]int)}
	for _, day := range all {
		total.Delivered += day.Delivered
		total.Dropped += day.Dropped
		total.Ignored += day.Ignored
		total.Pulses += day.Pulses
		for a, n := range day.ByAction {
			total.ByAction[a] += n
		}
		if day.Gestures() > 0 || day.Pulses > 0 {
			total.ActiveDays++
		}
	}
	return total, nil
}

// GetRecentDays returns the last days, oldest first, including today.
func (s *Storage) GetRecentDays(days int) ([]*DailyMetrics, error) {
	var recent []*DailyMetrics
	for i := days - 1; i >= 0; i-- {
		date := time.Now().AddDate(0, 0, -i).Format(dateLayout)
		daily, err := s.GetDailyMetrics(date)
		if err != nil {
			continue // Skip problematic days
		}
		recent = append(recent, daily)
	}
	return recent, nil
}

func (s *Storage) ClearAllMetrics() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := os.ReadDir(filepath.Join(s.baseDir, dailyMetricsDir))
	if err != nil {
		return nil // Directory doesn't exist, nothing to clear
	}

	for _, file := range files {
		if !file.IsDir() && filepath.Ext(file.Name()) == ".json" {
			if err := os.Remove(filepath.Join(s.baseDir, dailyMetricsDir, file.Name())); err != nil {
				return fmt.Errorf("failed to remove %s: %w", file.Name(), err)
			}
		}
	}
	return nil
}

// GetAllDailyMetrics returns every stored day in date order, skipping files
// that do not parse.
func (s *Storage) GetAllDailyMetrics() ([]*DailyMetrics, error) {
	files, err := os.ReadDir(filepath.Join(s.baseDir, dailyMetricsDir))
	if err != nil {
		return []*DailyMetrics{}, nil
	}

	var dates []string
	for _, file := range files {
		if !file.IsDir() && filepath.Ext(file.Name()) == ".json" {
			dates = append(dates, file.Name()[:len(file.Name())-len(".json")])
		}
	}
	sort.Strings(dates)

	var all []*DailyMetrics
	for _, date := range dates {
		daily, err := s.GetDailyMetrics(date)
		if err != nil {
			continue
		}
		all = append(all, daily)
	}
	return all, nil
}
