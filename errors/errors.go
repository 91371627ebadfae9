package errors

import (
	"fmt"
	"strings"
)

// AuthError reports a failed step of the portal login handshake.
// No partial session is ever returned alongside it.
type AuthError struct {
	Step string
	Err  error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth failed at %s: %v", e.Step, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// FetchError wraps a failed read-only request made with an authenticated session.
// ID is only meaningful for schedule fetches.
type FetchError struct {
	Op   string
	Kind string
	ID   uint32
	Err  error
}

func (e *FetchError) Error() string {
	if e.Op != "schedule" {
		return fmt.Sprintf("fetch %s %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("fetch %s %s/%d: %v", e.Op, e.Kind, e.ID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError describes why an embedded schedule could not be pulled out of a page.
// Detail carries the repaired text when the JSON parser rejected it.
type ParseError struct {
	Detail string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("schedule parse error: %v", e.Err)
	}
	return fmt.Sprintf("schedule parse error: %v (input: %s)", e.Err, truncate(e.Detail, 120))
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ExtractError wraps a failure to read an anchor out of an HTML fragment.
type ExtractError struct {
	Marker string
	Line   string
	Err    error
}

func (e *ExtractError) Error() string {
	if e.Line == "" {
		return fmt.Sprintf("extract %q: %v", e.Marker, e.Err)
	}
	return fmt.Sprintf("extract %q: %v (line: %s)", e.Marker, e.Err, truncate(strings.TrimSpace(e.Line), 120))
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

// DecodeError names the event field that could not be decoded.
type DecodeError struct {
	Field string
	Value string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("decode event field %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("decode event field %s: %v (value: %q)", e.Field, e.Err, e.Value)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// GroupingError reports the position in the sorted input where the
// weekday/break ordering was violated.
type GroupingError struct {
	Index   int
	Weekday string
	Start   int
	Err     error
}

func (e *GroupingError) Error() string {
	return fmt.Sprintf("grouping error at event %d (%s %d): %v", e.Index, e.Weekday, e.Start, e.Err)
}

func (e *GroupingError) Unwrap() error {
	return e.Err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

var (
	ErrMalformedIndex   = fmt.Errorf("index_json has no SessionID")
	ErrNoSessionCookie  = fmt.Errorf("login response has no Wilma2SID cookie")
	ErrUnexpectedStatus = fmt.Errorf("unexpected status")

	ErrMarkerNotFound     = fmt.Errorf("schedule marker not found")
	ErrTruncatedDocument  = fmt.Errorf("document ends after schedule marker")
	ErrPrefixMismatch     = fmt.Errorf("schedule line does not have the expected prefix")
	ErrInvalidJSON        = fmt.Errorf("repaired schedule is not valid JSON")
	ErrMissingEventsField = fmt.Errorf("schedule has no Events array")

	ErrNoMatchingLine = fmt.Errorf("no line contains marker")
	ErrNoAnchor       = fmt.Errorf("fragment has no anchor")
	ErrNoHref         = fmt.Errorf("anchor has no href")
	ErrMalformedHref  = fmt.Errorf("malformed href")
	ErrInvalidID      = fmt.Errorf("invalid person id")

	ErrMissingField      = fmt.Errorf("missing field")
	ErrMalformedStaff    = fmt.Errorf("malformed staff entry")
	ErrInvalidTimeRange  = fmt.Errorf("invalid time range")
	ErrUnknownBreakPlace = fmt.Errorf("unknown break place")

	ErrUnknownWeekday    = fmt.Errorf("unknown weekday")
	ErrUnknownBreakStart = fmt.Errorf("start is not a break start")
	ErrWeekdayOutOfOrder = fmt.Errorf("weekday out of order")
	ErrWeekdayGap        = fmt.Errorf("weekday skipped")
	ErrBreakOutOfOrder   = fmt.Errorf("break start out of order")
)
