package planner

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christopherklint97/planr/internal/models"
)

func minutes(n int) *int { return &n }

func item(id int64, title string, p models.Priority, est *int) WorkItem {
	return WorkItem{ID: id, Title: title, Priority: p, Status: models.StatusPending, EstimatedMinutes: est}
}

func day(t *testing.T, start, end string) Window {
	t.Helper()
	w, err := NewWindow(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), start, end)
	require.NoError(t, err)
	return w
}

func at(hour, minute int) time.Time {
	return time.Date(2024, 1, 15, hour, minute, 0, 0, time.UTC)
}

func TestGenerate_PriorityOrderWithBuffer(t *testing.T) {
	items := []WorkItem{
		item(1, "Urgent Task", models.PriorityUrgent, minutes(60)),
		item(2, "High Task", models.PriorityHigh, minutes(30)),
		item(3, "Medium Task", models.PriorityMedium, minutes(45)),
	}

	blocks := Generate(items, day(t, "09:00", "17:00"))

	require.Len(t, blocks, 3)
	want := []Block{
		{WorkItemID: 1, Title: "Urgent Task", Start: at(9, 0), End: at(10, 0), AISuggested: true},
		{WorkItemID: 2, Title: "High Task", Start: at(10, 15), End: at(10, 45), AISuggested: true},
		{WorkItemID: 3, Title: "Medium Task", Start: at(11, 0), End: at(11, 45), AISuggested: true},
	}
	assert.Equal(t, want, blocks)
}

func TestGenerate_SortsByPriorityStably(t *testing.T) {
	items := []WorkItem{
		item(1, "low", models.PriorityLow, minutes(10)),
		item(2, "medium-a", models.PriorityMedium, minutes(10)),
		item(3, "urgent", models.PriorityUrgent, minutes(10)),
		item(4, "medium-b", models.PriorityMedium, minutes(10)),
		item(5, "high", models.PriorityHigh, minutes(10)),
		item(6, "medium-c", models.PriorityMedium, minutes(10)),
	}

	blocks := Generate(items, day(t, "09:00", "17:00"))

	var titles []string
	for _, b := range blocks {
		titles = append(titles, b.Title)
	}
	assert.Equal(t, []string{"urgent", "high", "medium-a", "medium-b", "medium-c", "low"}, titles)
}

func TestGenerate_SingleItemStaysInsideWindow(t *testing.T) {
	blocks := Generate([]WorkItem{item(1, "Focus", models.PriorityMedium, minutes(60))}, day(t, "09:00", "17:00"))

	require.Len(t, blocks, 1)
	assert.GreaterOrEqual(t, blocks[0].Start.Hour(), 9)
	assert.LessOrEqual(t, blocks[0].End.Hour(), 17)
	assert.Equal(t, 60*time.Minute, blocks[0].End.Sub(blocks[0].Start))
}

func TestGenerate_SkipsUnschedulable(t *testing.T) {
	done := item(4, "Done", models.PriorityUrgent, minutes(30))
	done.Status = models.StatusCompleted
	started := item(5, "Started", models.PriorityUrgent, minutes(30))
	started.Status = models.StatusInProgress

	items := []WorkItem{
		item(1, "A", models.PriorityHigh, minutes(30)),
		item(2, "B", models.PriorityUrgent, nil),
		item(3, "C", models.PriorityUrgent, minutes(0)),
		item(6, "D", models.PriorityUrgent, minutes(-20)),
		done,
		started,
	}

	blocks := Generate(items, day(t, "09:00", "17:00"))

	require.Len(t, blocks, 1)
	assert.Equal(t, "A", blocks[0].Title)
	assert.Equal(t, at(9, 0), blocks[0].Start)
}

func TestGenerate_StopsAtFirstMiss(t *testing.T) {
	items := []WorkItem{
		item(1, "fits", models.PriorityUrgent, minutes(60)),
		item(2, "too long", models.PriorityHigh, minutes(120)),
		item(3, "would fit", models.PriorityLow, minutes(15)),
	}

	blocks := Generate(items, day(t, "09:00", "11:00"))

	require.Len(t, blocks, 1)
	assert.Equal(t, "fits", blocks[0].Title)
}

func TestGenerate_BlockMayEndExactlyAtWindowEnd(t *testing.T) {
	items := []WorkItem{
		item(1, "first", models.PriorityHigh, minutes(45)),
		item(2, "second", models.PriorityHigh, minutes(60)),
	}

	blocks := Generate(items, day(t, "09:00", "11:00"))

	require.Len(t, blocks, 2)
	assert.Equal(t, at(11, 0), blocks[1].End)
}

func TestGenerate_EmptyResults(t *testing.T) {
	items := []WorkItem{item(1, "A", models.PriorityHigh, minutes(30))}

	assert.Empty(t, Generate(nil, day(t, "09:00", "17:00")))
	assert.Empty(t, Generate(items, day(t, "09:00", "09:00")))
	assert.Empty(t, Generate(items, day(t, "17:00", "09:00")))
}

func TestGenerate_Invariants(t *testing.T) {
	var items []WorkItem
	prios := []models.Priority{models.PriorityLow, models.PriorityUrgent, models.PriorityMedium, models.PriorityHigh}
	for i := 0; i < 40; i++ {
		items = append(items, item(int64(i), "task", prios[i%len(prios)], minutes(5+(i*7)%50)))
	}
	w := day(t, "08:30", "18:15")

	first := Generate(items, w)
	second := Generate(items, w)
	assert.Equal(t, first, second)
	require.NotEmpty(t, first)

	byID := make(map[int64]WorkItem)
	for _, it := range items {
		byID[it.ID] = it
	}
	for i, b := range first {
		assert.True(t, b.AISuggested)
		assert.Equal(t, time.Duration(*byID[b.WorkItemID].EstimatedMinutes)*time.Minute, b.End.Sub(b.Start))
		assert.False(t, b.Start.Before(w.Start))
		assert.False(t, b.End.After(w.End))
		if i > 0 {
			assert.False(t, first[i-1].End.Add(Buffer).After(b.Start))
			assert.GreaterOrEqual(t, byID[first[i-1].WorkItemID].Priority.Rank(), byID[b.WorkItemID].Priority.Rank())
		}
	}
}

func TestGenerate_DoesNotReorderInput(t *testing.T) {
	items := []WorkItem{
		item(1, "low", models.PriorityLow, minutes(10)),
		item(2, "urgent", models.PriorityUrgent, minutes(10)),
	}
	Generate(items, day(t, "09:00", "17:00"))
	assert.Equal(t, "low", items[0].Title)
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		hour    int
		minute  int
		wantErr bool
	}{
		{"09:00", 9, 0, false},
		{"17:30", 17, 30, false},
		{"7:05", 7, 5, false},
		{" 23:59 ", 23, 59, false},
		{"00:00", 0, 0, false},
		{"24:00", 0, 0, true},
		{"12:60", 0, 0, true},
		{"noon", 0, 0, true},
		{"9", 0, 0, true},
		{"ab:cd", 0, 0, true},
		{"", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			h, m, err := ParseClock(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidClock))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.hour, h)
			assert.Equal(t, tt.minute, m)
		})
	}
}

func TestNewWindow(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	date := time.Date(2024, 3, 4, 22, 45, 0, 0, loc)

	w, err := NewWindow(date, "08:15", "16:45")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 4, 8, 15, 0, 0, loc), w.Start)
	assert.Equal(t, time.Date(2024, 3, 4, 16, 45, 0, 0, loc), w.End)

	_, err = NewWindow(date, "8am", "17:00")
	assert.ErrorIs(t, err, ErrInvalidClock)
	_, err = NewWindow(date, "08:00", "25:00")
	assert.ErrorIs(t, err, ErrInvalidClock)
}

func TestGenerate_HugeEstimateDoesNotFit(t *testing.T) {
	w, err := NewWindow(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), "09:00", "17:00")
	require.NoError(t, err)

	huge := 200_000_000
	items := []WorkItem{
		{ID: 1, Title: "Forever", Priority: models.PriorityHigh, Status: models.StatusPending, EstimatedMinutes: &huge},
	}
	assert.Empty(t, Generate(items, w))

	exact := 8 * 60
	items[0].EstimatedMinutes = &exact
	blocks := Generate(items, w)
	require.Len(t, blocks, 1)
	assert.Equal(t, w.End, blocks[0].End)
}
