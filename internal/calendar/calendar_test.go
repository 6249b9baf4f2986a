package calendar

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christopherklint97/planr/internal/store"
)

var day = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

func testBlocks() []store.TimeBlock {
	return []store.TimeBlock{
		{ID: 2, Title: "High Task", StartTime: day.Add(10*time.Hour + 15*time.Minute), EndTime: day.Add(10*time.Hour + 45*time.Minute), IsAISuggested: true},
		{ID: 1, Title: "Urgent Task, part 1", StartTime: day.Add(9 * time.Hour), EndTime: day.Add(10 * time.Hour), IsAISuggested: true},
		{ID: 3, Title: "Lunch", StartTime: day.Add(12 * time.Hour), EndTime: day.Add(13 * time.Hour)},
	}
}

func TestExport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, testBlocks(), day))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR"))
	assert.Contains(t, out, "PRODID:"+productID)
	assert.Contains(t, out, "UID:block-1@planr")
	assert.Contains(t, out, "DTSTART:20240115T090000Z")
	assert.Contains(t, out, "DTEND:20240115T100000Z")
	assert.Equal(t, 3, strings.Count(out, "BEGIN:VEVENT"))
}

func TestExportDecode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, testBlocks(), day))

	events, err := Decode(&buf, day, day.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, "Urgent Task, part 1", events[0].Summary)
	assert.Equal(t, "block-1@planr", events[0].UID)
	assert.True(t, events[0].StartTime.Equal(day.Add(9*time.Hour)))
	assert.True(t, events[0].EndTime.Equal(day.Add(10*time.Hour)))
	assert.True(t, events[0].AISuggested)
	assert.Equal(t, "Lunch", events[2].Summary)
	assert.False(t, events[2].AISuggested)
}

func TestFetchFileFiltersWindow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.ics")
	require.NoError(t, ExportFile(path, testBlocks(), day))

	events, err := Fetch(context.Background(), path, day.Add(11*time.Hour), day.Add(18*time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Lunch", events[0].Summary)
}

func TestFetchMissingFile(t *testing.T) {
	_, err := Fetch(context.Background(), filepath.Join(t.TempDir(), "missing.ics"), day, day.Add(time.Hour))
	assert.Error(t, err)
}
