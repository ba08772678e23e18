// Package metrics keeps per-day counts of gesture outcomes on disk.
package metrics

import (
	"time"

	"github.com/bezmoradi/gestured/internal/gesture"
)

type DailyMetrics struct {
	Date      string         `json:"date"`
	Delivered int            `json:"delivered"`
	Dropped   int            `json:"dropped"`
	Ignored   int            `json:"ignored"`
	Pulses    int            `json:"pulses"`
	ByAction  map[string]int `json:"by_action"`
	LastSeen  time.Time      `json:"last_seen"`
}

// Gestures counts every gesture that reached the dispatcher's slot.
func (d *DailyMetrics) Gestures() int {
	return d.Delivered + d.Dropped + d.Ignored
}

func (d *DailyMetrics) add(o gesture.Outcome) {
	switch o.Result {
	case gesture.ResultDelivered:
		d.Delivered++
		if d.ByAction == nil {
			d.ByAction = make(map[string]int)
		}
		d.ByAction[o.Action.String()]++
	case gesture.ResultDropped:
		d.Dropped++
	case gesture.ResultIgnored:
		d.Ignored++
	}
	if o.At.After(d.LastSeen) {
		d.LastSeen = o.At
	}
}

type TotalMetrics struct {
	Delivered  int            `json:"delivered"`
	Dropped    int            `json:"dropped"`
	Ignored    int            `json:"ignored"`
	Pulses     int            `json:"pulses"`
	ActiveDays int            `json:"active_days"`
	ByAction   map[string]int `json:"by_action"`
}

func (t *TotalMetrics) Gestures() int {
	return t.Delivered + t.Dropped + t.Ignored
}

// TopAction is the most delivered action, ties broken by name.
func (t *TotalMetrics) TopAction() (string, int) {
	var name string
	var count int
	for a, n := range t.ByAction {
		if n > count || (n == count && a < name) {
			name, count = a, n
		}
	}
	return name, count
}

type MetricsManager struct {
	storage *Storage
}

func NewMetricsManager(storagePath string) (*MetricsManager, error) {
	storage, err := NewStorage(storagePath)
	if err != nil {
		return nil, err
	}
	return &MetricsManager{storage: storage}, nil
}

// RecordOutcome adds o to the day it happened on and returns that day.
func (mm *MetricsManager) RecordOutcome(o gesture.Outcome) (*DailyMetrics, error) {
	if o.At.IsZero() {
		o.At = time.Now()
	}
	return mm.storage.Update(o.At.Format(dateLayout), func(d *DailyMetrics) {
		d.add(o)
	})
}

// RecordPulse counts an ambient display pulse from a hand wave.
func (mm *MetricsManager) RecordPulse(at time.Time) error {
	_, err := mm.storage.Update(at.Format(dateLayout), func(d *DailyMetrics) {
		d.Pulses++
	})
	return err
}

func (mm *MetricsManager) GetTodayMetrics() (*DailyMetrics, error) {
	return mm.storage.GetDailyMetrics(time.Now().Format(dateLayout))
}

func (mm *MetricsManager) GetTotalMetrics() (*TotalMetrics, error) {
	return mm.storage.GetTotalMetrics()
}

func (mm *MetricsManager) GetRecentDays(days int) ([]*DailyMetrics, error) {
	return mm.storage.GetRecentDays(days)
}

func (mm *MetricsManager) ClearAllMetrics() error {
	return mm.storage.ClearAllMetrics()
}
