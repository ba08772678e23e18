package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bezmoradi/gestured/internal/gesture"
)

func newManager(t *testing.T) (*MetricsManager, string) {
	dir := t.TempDir()
	mm, err := NewMetricsManager(dir)
	require.NoError(t, err)
	return mm, dir
}

func TestRecordOutcomeCountsPerDay(t *testing.T) {
	mm, _ := newManager(t)
	now := time.Now()

	_, err := mm.RecordOutcome(gesture.Outcome{Action: gesture.ActionHome, Result: gesture.ResultDelivered, At: now})
	require.NoError(t, err)
	_, err = mm.RecordOutcome(gesture.Outcome{Action: gesture.ActionHome, Result: gesture.ResultDelivered, At: now})
	require.NoError(t, err)
	_, err = mm.RecordOutcome(gesture.Outcome{Action: gesture.ActionCamera, Result: gesture.ResultDropped, At: now})
	require.NoError(t, err)
	today, err := mm.RecordOutcome(gesture.Outcome{Action: gesture.ActionBack, Result: gesture.ResultIgnored, At: now})
	require.NoError(t, err)

	assert.Equal(t, 2, today.Delivered)
	assert.Equal(t, 1, today.Dropped)
	assert.Equal(t, 1, today.Ignored)
	assert.Equal(t, 4, today.Gestures())
	assert.Equal(t, map[string]int{"home": 2}, today.ByAction)

	stored, err := mm.GetTodayMetrics()
	require.NoError(t, err)
	assert.Equal(t, today.Delivered, stored.Delivered)
}

func TestTotalsAcrossDays(t *testing.T) {
	mm, _ := newManager(t)
	yesterday := time.Now().AddDate(0, 0, -1)

	_, err := mm.RecordOutcome(gesture.Outcome{Action: gesture.ActionFlashlight, Result: gesture.ResultDelivered, At: yesterday})
	require.NoError(t, err)
	_, err = mm.RecordOutcome(gesture.Outcome{Action: gesture.ActionHome, Result: gesture.ResultDelivered})
	require.NoError(t, err)
	_, err = mm.RecordOutcome(gesture.Outcome{Action: gesture.ActionHome, Result: gesture.ResultDelivered})
	require.NoError(t, err)
	require.NoError(t, mm.RecordPulse(time.Now()))

	total, err := mm.GetTotalMetrics()
	require.NoError(t, err)
	assert.Equal(t, 3, total.Delivered)
	assert.Equal(t, 1, total.Pulses)
	assert.Equal(t, 2, total.ActiveDays)
	name, n := total.TopAction()
	assert.Equal(t, "home", name)
	assert.Equal(t, 2, n)

	recent, err := mm.GetRecentDays(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, 1, recent[0].Delivered)
	assert.Equal(t, 2, recent[1].Delivered)
}

func TestCorruptDayIsSkippedAndReplaced(t *testing.T) {
	mm, dir := newManager(t)
	date := time.Now().Format(dateLayout)
	require.NoError(t, os.WriteFile(filepath.Join(dir, dailyMetricsDir, date+".json"), []byte("{"), 0644))

	total, err := mm.GetTotalMetrics()
	require.NoError(t, err)
	assert.Zero(t, total.Gestures())

	today, err := mm.RecordOutcome(gesture.Outcome{Action: gesture.ActionHome, Result: gesture.ResultDelivered})
	require.NoError(t, err)
	assert.Equal(t, 1, today.Delivered)
}

func TestClearAllMetrics(t *testing.T) {
	mm, _ := newManager(t)
	_, err := mm.RecordOutcome(gesture.Outcome{Action: gesture.ActionHome, Result: gesture.ResultDelivered})
	require.NoError(t, err)

	require.NoError(t, mm.ClearAllMetrics())
	total, err := mm.GetTotalMetrics()
	require.NoError(t, err)
	assert.Zero(t, total.Gestures())
}

func TestFormatters(t *testing.T) {
	sf := NewStatsFormatter()

	assert.Contains(t, sf.FormatTotalStats(&TotalMetrics{}), "No usage statistics")
	total := &TotalMetrics{Delivered: 3, Dropped: 1, ActiveDays: 1, ByAction: map[string]int{"home": 2, "back": 1}}
	out := sf.FormatTotalStats(total)
	assert.Contains(t, out, "Gestures: 4")
	assert.Contains(t, out, "Favourite: home (2)")

	breakdown := sf.FormatActionBreakdown(total)
	assert.Less(t, strings.Index(breakdown, "home"), strings.Index(breakdown, "back"))

	lines := sf.FormatOutcomeLines(gesture.Outcome{Action: gesture.ActionCamera, Result: gesture.ResultDropped},
		&DailyMetrics{Dropped: 1})
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "camera dropped")

	assert.Equal(t, "📅 No activity this week yet.", sf.FormatWeeklyStats([]*DailyMetrics{{}, {}}))
}

func TestFormatDurationShort(t *testing.T) {
	tf := NewTimeFormatter()
	assert.Equal(t, "0s", tf.FormatDurationShort(0))
	assert.Equal(t, "45s", tf.FormatDurationShort(45*time.Second))
	assert.Equal(t, "2m 5s", tf.FormatDurationShort(125*time.Second))
	assert.Equal(t, "1h", tf.FormatDurationShort(time.Hour))
	assert.Equal(t, "1h 30m", tf.FormatDurationShort(90*time.Minute))
}
