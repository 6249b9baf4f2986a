package calendar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	ical "github.com/emersion/go-ical"

	"github.com/christopherklint97/planr/internal/store"
)

const (
	productID       = "-//planr//planr//EN"
	propAISuggested = "X-PLANR-AI-SUGGESTED"
)

// Event represents a parsed calendar event.
type Event struct {
	UID         string
	Summary     string
	StartTime   time.Time
	EndTime     time.Time
	AISuggested bool
}

// Export writes time blocks as an iCalendar document, one VEVENT per block.
func Export(w io.Writer, blocks []store.TimeBlock, stamp time.Time) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	for _, b := range blocks {
		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, fmt.Sprintf("block-%d@planr", b.ID))
		event.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
		event.Props.SetDateTime(ical.PropDateTimeStart, b.StartTime.UTC())
		event.Props.SetDateTime(ical.PropDateTimeEnd, b.EndTime.UTC())
		event.Props.SetText(ical.PropSummary, b.Title)
		if b.IsAISuggested {
			event.Props.SetText(propAISuggested, "TRUE")
		}
		cal.Children = append(cal.Children, event.Component)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encoding calendar: %w", err)
	}
	return nil
}

// ExportFile writes blocks to an .ics file at path.
func ExportFile(path string, blocks []store.TimeBlock, stamp time.Time) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating calendar file: %w", err)
	}
	if err := Export(f, blocks, stamp); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Fetch retrieves and parses iCalendar events from a URL or file path,
// returning events that overlap with the given time window, by start time.
func Fetch(ctx context.Context, source string, windowStart, windowEnd time.Time) ([]Event, error) {
	var r io.ReadCloser

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetching calendar: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("calendar fetch returned status %d", resp.StatusCode)
		}
		r = resp.Body
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("opening calendar file: %w", err)
		}
		r = f
	}
	defer r.Close()

	return Decode(r, windowStart, windowEnd)
}

// Decode parses every calendar in r and keeps events overlapping
// [windowStart, windowEnd).
func Decode(r io.Reader, windowStart, windowEnd time.Time) ([]Event, error) {
	dec := ical.NewDecoder(r)
	var events []Event

	for {
		cal, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing calendar: %w", err)
		}

		for _, component := range cal.Children {
			if component.Name != ical.CompEvent {
				continue
			}
			event := ical.Event{Component: component}

			start, err := event.DateTimeStart(nil)
			if err != nil {
				continue // skip malformed events
			}
			end, err := event.DateTimeEnd(nil)
			if err != nil {
				continue
			}

			if start.Before(windowEnd) && end.After(windowStart) {
				summary, _ := event.Props.Text(ical.PropSummary)
				if summary == "" {
					continue
				}
				uid, _ := event.Props.Text(ical.PropUID)
				flag, _ := event.Props.Text(propAISuggested)
				events = append(events, Event{
					UID:         uid,
					Summary:     summary,
					StartTime:   start,
					EndTime:     end,
					AISuggested: strings.EqualFold(flag, "true"),
				})
			}
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].StartTime.Before(events[j].StartTime)
	})
	return events, nil
}
