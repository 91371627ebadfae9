package parser

import (
	"bytes"
	customerrors "duty-report/errors"
	"duty-report/metrics"
	"duty-report/models"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ScheduleMarker is the inline script tag the portal prints on the line
// before the schedule data.
const ScheduleMarker = `<script data-cfasync="false" src="/cdn-cgi/scripts/5c5dd728/cloudflare-static/email-decode.min.js"></script><script type="text/javascript">`

// SchedulePrefixLen is the width of the non-JSON lead-in on the schedule line.
const SchedulePrefixLen = 81

const (
	eventsKey       = "Events"
	scheduleTrailer = `, ActiveTyyppi: "", ActiveId: "", DialogEnabled: 0};`
)

// RepairQuasiJSON turns the portal's object literal into JSON.
//
// The line must carry exactly SchedulePrefixLen bytes of lead-in followed by
// the bare Events key; anything else is rejected with ErrPrefixMismatch
// rather than producing silently wrong output. Only the first occurrence of
// Events is quoted, so the word may appear inside event text.
func RepairQuasiJSON(line string) (string, error) {
	line = strings.TrimRight(line, "\r")
	if len(line) <= SchedulePrefixLen {
		return "", &customerrors.ParseError{Detail: line, Err: customerrors.ErrPrefixMismatch}
	}

	body := line[SchedulePrefixLen:]
	if strings.HasPrefix(body, "{") || !strings.HasPrefix(strings.TrimLeft(body, " \t"), eventsKey) {
		return "", &customerrors.ParseError{Detail: line, Err: customerrors.ErrPrefixMismatch}
	}

	repaired := "{" + strings.Replace(body, eventsKey, `"`+eventsKey+`"`, 1)
	return strings.Replace(repaired, scheduleTrailer, "}", 1), nil
}

// ExtractEvents locates the embedded schedule in a page and returns the
// undecoded elements of its Events array.
func ExtractEvents(page string) ([]json.RawMessage, error) {
	lines := Lines(page)

	idx, ok := LineIndex(lines, ScheduleMarker)
	if !ok {
		return nil, &customerrors.ParseError{Err: customerrors.ErrMarkerNotFound}
	}
	if idx+1 >= len(lines) {
		return nil, &customerrors.ParseError{Err: customerrors.ErrTruncatedDocument}
	}

	repaired, err := RepairQuasiJSON(lines[idx+1])
	if err != nil {
		return nil, err
	}

	var root map[string]json.RawMessage
	if err := json.Unmarshal([]byte(repaired), &root); err != nil {
		return nil, &customerrors.ParseError{
			Detail: repaired,
			Err:    fmt.Errorf("%w: %v", customerrors.ErrInvalidJSON, err),
		}
	}

	raw, ok := root[eventsKey]
	if !ok || !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("[")) {
		return nil, &customerrors.ParseError{Err: customerrors.ErrMissingEventsField}
	}

	var events []json.RawMessage
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil, &customerrors.ParseError{Err: fmt.Errorf("%w: %v", customerrors.ErrMissingEventsField, err)}
	}
	return events, nil
}

// DecodeEvents decodes raw schedule elements. The first bad element aborts.
func DecodeEvents(raw []json.RawMessage) ([]models.Event, error) {
	events := make([]models.Event, 0, len(raw))
	for i, r := range raw {
		var ev models.Event
		if err := json.Unmarshal(r, &ev); err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		events = append(events, ev)
	}
	return events, nil
}

// ParseSchedule extracts and decodes every event on a schedule page.
func ParseSchedule(page string) ([]models.Event, error) {
	start := time.Now()
	defer func() {
		metrics.ParserDurationSeconds.Observe(time.Since(start).Seconds())
	}()

	raw, err := ExtractEvents(page)
	if err != nil {
		metrics.ParserErrorsTotal.WithLabelValues(errorType(err)).Inc()
		return nil, err
	}

	events, err := DecodeEvents(raw)
	if err != nil {
		metrics.ParserErrorsTotal.WithLabelValues(errorType(err)).Inc()
		return nil, err
	}

	metrics.ParserEventsTotal.Add(float64(len(events)))
	return events, nil
}

func errorType(err error) string {
	switch {
	case errors.Is(err, customerrors.ErrMarkerNotFound):
		return "marker_not_found"
	case errors.Is(err, customerrors.ErrTruncatedDocument):
		return "truncated_document"
	case errors.Is(err, customerrors.ErrPrefixMismatch):
		return "prefix_mismatch"
	case errors.Is(err, customerrors.ErrInvalidJSON):
		return "invalid_json"
	case errors.Is(err, customerrors.ErrMissingEventsField):
		return "missing_events"
	case errors.Is(err, customerrors.ErrInvalidTimeRange):
		return "invalid_time_range"
	default:
		return "decode"
	}
}
