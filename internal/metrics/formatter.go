package metrics

import (
	"fmt"
	"sort"
	"time"

	"github.com/bezmoradi/gestured/internal/gesture"
)

type TimeFormatter struct{}

func NewTimeFormatter() *TimeFormatter {
	return &TimeFormatter{}
}

func (tf *TimeFormatter) FormatDurationShort(duration time.Duration) string {
	if duration < time.Second {
		return "0s"
	}

	hours := int(duration.Hours())
	minutes := int(duration.Minutes()) % 60
	seconds := int(duration.Seconds()) % 60

	if hours > 0 {
		if minutes > 0 {
			return fmt.Sprintf("%dh %dm", hours, minutes)
		}
		return fmt.Sprintf("%dh", hours)
	}

	if minutes > 0 {
		if seconds > 0 {
			return fmt.Sprintf("%dm %ds", minutes, seconds)
		}
		return fmt.Sprintf("%dm", minutes)
	}

	return fmt.Sprintf("%ds", seconds)
}

type StatsFormatter struct {
	timeFormatter *TimeFormatter
}

func NewStatsFormatter() *StatsFormatter {
	return &StatsFormatter{
		timeFormatter: NewTimeFormatter(),
	}
}

// FormatOutcomeLines describes one gesture and, when known, today's totals.
func (sf *StatsFormatter) FormatOutcomeLines(o gesture.Outcome, today *DailyMetrics) []string {
	var lines []string
	switch o.Result {
	case gesture.ResultDelivered:
		lines = append(lines, fmt.Sprintf("✅ %s", o.Action))
	case gesture.ResultDropped:
		lines = append(lines, fmt.Sprintf("🙈 %s dropped (sensor covered)", o.Action))
	case gesture.ResultIgnored:
		lines = append(lines, fmt.Sprintf("⏳ %s ignored (gesture in flight)", o.Action))
	}

	if today != nil && today.Gestures() > 0 {
		lines = append(lines, fmt.Sprintf("📈 Today: %d delivered, %d dropped, %d ignored",
			today.Delivered, today.Dropped, today.Ignored))
	}
	return lines
}

func (sf *StatsFormatter) FormatUptime(since time.Time) string {
	return "up " + sf.timeFormatter.FormatDurationShort(time.Since(since))
}

func (sf *StatsFormatter) FormatTotalStats(total *TotalMetrics) string {
	if total.Gestures() == 0 && total.Pulses == 0 {
		return "📊 No usage statistics yet. Draw a gesture to get started!"
	}

	stats := "📊 Total Statistics:\n"
	stats += fmt.Sprintf("   Gestures: %d\n", total.Gestures())
	stats += fmt.Sprintf("   Delivered: %d\n", total.Delivered)
	stats += fmt.Sprintf("   Dropped (in pocket): %d\n", total.Dropped)
	stats += fmt.Sprintf("   Ignored (in flight): %d\n", total.Ignored)
	stats += fmt.Sprintf("   Hand wave pulses: %d\n", total.Pulses)
	stats += fmt.Sprintf("   Active days: %d", total.ActiveDays)
	if name, n := total.TopAction(); n > 0 {
		stats += fmt.Sprintf("\n   Favourite: %s (%d)", name, n)
	}
	return stats
}

func (sf *StatsFormatter) FormatActionBreakdown(total *TotalMetrics) string {
	if len(total.ByAction) == 0 {
		return ""
	}
	names := make([]string, 0, len(total.ByAction))
	for name := range total.ByAction {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if total.ByAction[names[i]] != total.ByAction[names[j]] {
			return total.ByAction[names[i]] > total.ByAction[names[j]]
		}
		return names[i] < names[j]
	})

	out := "🎯 By action:"
	for _, name := range names {
		out += fmt.Sprintf("\n   %-14s %d", name, total.ByAction[name])
	}
	return out
}

func (sf *StatsFormatter) FormatWeeklyStats(week []*DailyMetrics) string {
	if len(week) == 0 {
		return "📅 No weekly data available yet."
	}

	delivered, gestures, activeDays := 0, 0, 0
	for _, day := range week {
		if day.Gestures() > 0 {
			activeDays++
			gestures += day.Gestures()
			delivered += day.Delivered
		}
	}

	if activeDays == 0 {
		return "📅 No activity this week yet."
	}

	stats := "📅 This Week:\n"
	stats += fmt.Sprintf("   Active days: %d/%d\n", activeDays, len(week))
	stats += fmt.Sprintf("   Gestures: %d\n", gestures)
	stats += fmt.Sprintf("   Delivered: %d", delivered)
	return stats
}
