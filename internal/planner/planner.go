// Package planner packs pending work into a day's working hours.
package planner

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/christopherklint97/planr/internal/models"
)

// Buffer is the gap left between consecutive generated blocks.
const Buffer = 15 * time.Minute

var ErrInvalidClock = errors.New("invalid clock time")

// WorkItem is a snapshot of a task as seen by the planner.
type WorkItem struct {
	ID               int64
	Title            string
	Priority         models.Priority
	Status           models.Status
	EstimatedMinutes *int
}

// Block is a generated calendar entry for one work item.
type Block struct {
	WorkItemID  int64
	Title       string
	Start       time.Time
	End         time.Time
	AISuggested bool
}

// Window is the half-open working interval [Start, End) for a single day.
type Window struct {
	Start time.Time
	End   time.Time
}

// ParseClock splits an "HH:MM" 24-hour time into hour and minute.
func ParseClock(s string) (hour, minute int, err error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, 0, fmt.Errorf("%w %q: expected HH:MM", ErrInvalidClock, s)
	}
	hour, err = strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("%w %q: hour out of range", ErrInvalidClock, s)
	}
	minute, err = strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w %q: minute out of range", ErrInvalidClock, s)
	}
	return hour, minute, nil
}

// NewWindow builds the working window for date's calendar day, in date's
// location. An end at or before the start is allowed and yields empty plans.
func NewWindow(date time.Time, start, end string) (Window, error) {
	sh, sm, err := ParseClock(start)
	if err != nil {
		return Window{}, fmt.Errorf("parsing work start: %w", err)
	}
	eh, em, err := ParseClock(end)
	if err != nil {
		return Window{}, fmt.Errorf("parsing work end: %w", err)
	}

	y, mo, d := date.Date()
	loc := date.Location()
	return Window{
		Start: time.Date(y, mo, d, sh, sm, 0, 0, loc),
		End:   time.Date(y, mo, d, eh, em, 0, 0, loc),
	}, nil
}

// Schedulable reports whether an item can be planned: it must be pending and
// carry a positive estimate.
func (it WorkItem) Schedulable() bool {
	return it.Status == models.StatusPending && it.EstimatedMinutes != nil && *it.EstimatedMinutes > 0
}

// fits reports whether the item's estimate fits in the time left before
// end. Minutes are compared directly so huge estimates cannot overflow.
func (it WorkItem) fits(cursor, end time.Time) bool {
	left := end.Sub(cursor)
	if left < 0 {
		return false
	}
	return int64(*it.EstimatedMinutes) <= int64(left/time.Minute)
}

// Generate lays schedulable items out back to back from the window start,
// highest priority first, with Buffer between blocks. Equal priorities keep
// their input order. Planning stops at the first item that would run past
// the window end; later items are not tried.
func Generate(items []WorkItem, w Window) []Block {
	queue := make([]WorkItem, 0, len(items))
	for _, it := range items {
		if it.Schedulable() {
			queue = append(queue, it)
		}
	}

	slices.SortStableFunc(queue, func(a, b WorkItem) int {
		return b.Priority.Rank() - a.Priority.Rank()
	})

	var blocks []Block
	cursor := w.Start
	for _, it := range queue {
		if !it.fits(cursor, w.End) {
			break
		}
		end := cursor.Add(time.Duration(*it.EstimatedMinutes) * time.Minute)
		blocks = append(blocks, Block{
			WorkItemID:  it.ID,
			Title:       it.Title,
			Start:       cursor,
			End:         end,
			AISuggested: true,
		})
		cursor = end.Add(Buffer)
	}

	return blocks
}
