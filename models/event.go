package models

import (
	"bytes"
	customerrors "duty-report/errors"
	"encoding/json"
	"fmt"
	"strings"
)

// SupervisionMarker appears in the title of every break-duty event.
const SupervisionMarker = "Valvonta"

// Event is one entry of a person's weekly schedule.
// Start and End are minutes since midnight. The portal assigns at most a
// primary and a secondary staff member; either may be empty.
type Event struct {
	Title     string
	Detail    string
	Start     int
	End       int
	Weekday   string
	Primary   string
	Secondary string
}

// NewEvent builds an event with up to two assignees.
func NewEvent(title, detail string, start, end int, weekday, primary, secondary string) Event {
	return Event{
		Title:     title,
		Detail:    detail,
		Start:     start,
		End:       end,
		Weekday:   weekday,
		Primary:   primary,
		Secondary: secondary,
	}
}

// StaffNames lists the assigned names in order, skipping empty ones.
func (e Event) StaffNames() []string {
	out := make([]string, 0, 2)
	for _, n := range []string{e.Primary, e.Secondary} {
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}

// IsSupervision reports whether the event is a break-duty assignment.
func (e Event) IsSupervision() bool {
	return strings.Contains(e.Title, SupervisionMarker)
}

// BreakPlace classifies the event's title.
func (e Event) BreakPlace() (BreakPlace, error) {
	return ParseBreakPlace(e.Title)
}

func (e Event) String() string {
	return fmt.Sprintf("%s %d-%d %s (%s)", e.Weekday, e.Start, e.End, e.Title, strings.Join(e.StaffNames(), ", "))
}

// wrapped is the portal's one-level {"0": "..."} text wrapper.
type wrapped struct {
	Value *string `json:"0"`
}

type staffEntry struct {
	Name         *string `json:"nimi"`
	Abbreviation string  `json:"lyhenne,omitempty"`
}

type staffInner struct {
	Entry *staffEntry `json:"0,omitempty"`
}

type staffOuter struct {
	Inner *staffInner `json:"0,omitempty"`
}

type eventWire struct {
	Text       *wrapped    `json:"Text"`
	LongText   *wrapped    `json:"LongText"`
	Start      *int        `json:"Start"`
	End        *int        `json:"End"`
	Day        *string     `json:"Day"`
	Teacher    *staffOuter `json:"Teacher,omitempty"`
	PersonInfo *staffOuter `json:"PersonInfo,omitempty"`
}

// eventInput defers the staff fields so the unassigned shapes can be told
// apart from malformed ones.
type eventInput struct {
	Text       *wrapped        `json:"Text"`
	LongText   *wrapped        `json:"LongText"`
	Start      *int            `json:"Start"`
	End        *int            `json:"End"`
	Day        *string         `json:"Day"`
	Teacher    json.RawMessage `json:"Teacher"`
	PersonInfo json.RawMessage `json:"PersonInfo"`
}

// UnmarshalJSON decodes the portal's event shape. Missing wrappers and
// out-of-range times are reported as DecodeError.
func (e *Event) UnmarshalJSON(data []byte) error {
	var w eventInput
	if err := json.Unmarshal(data, &w); err != nil {
		return &customerrors.DecodeError{Field: "event", Err: err}
	}

	title, err := unwrap("Text", w.Text)
	if err != nil {
		return err
	}
	detail, err := unwrap("LongText", w.LongText)
	if err != nil {
		return err
	}
	if w.Start == nil {
		return &customerrors.DecodeError{Field: "Start", Err: customerrors.ErrMissingField}
	}
	if w.End == nil {
		return &customerrors.DecodeError{Field: "End", Err: customerrors.ErrMissingField}
	}
	if *w.Start < 0 || *w.Start >= *w.End || *w.End > 1439 {
		return &customerrors.DecodeError{
			Field: "Start",
			Value: fmt.Sprintf("%d-%d", *w.Start, *w.End),
			Err:   customerrors.ErrInvalidTimeRange,
		}
	}
	if w.Day == nil {
		return &customerrors.DecodeError{Field: "Day", Err: customerrors.ErrMissingField}
	}

	primary, err := decodeStaff("Teacher", w.Teacher)
	if err != nil {
		return err
	}
	secondary, err := decodeStaff("PersonInfo", w.PersonInfo)
	if err != nil {
		return err
	}

	*e = NewEvent(title, detail, *w.Start, *w.End, *w.Day, primary, secondary)
	return nil
}

// MarshalJSON writes the same shape UnmarshalJSON reads, so the cache
// round-trips through one decoder.
func (e Event) MarshalJSON() ([]byte, error) {
	start, end, day := e.Start, e.End, e.Weekday
	title, detail := e.Title, e.Detail
	return json.Marshal(eventWire{
		Text:       &wrapped{Value: &title},
		LongText:   &wrapped{Value: &detail},
		Start:      &start,
		End:        &end,
		Day:        &day,
		Teacher:    newStaff(e.Primary),
		PersonInfo: newStaff(e.Secondary),
	})
}

func unwrap(field string, w *wrapped) (string, error) {
	if w == nil || w.Value == nil {
		return "", &customerrors.DecodeError{Field: field, Err: customerrors.ErrMissingField}
	}
	return *w.Value, nil
}

// decodeStaff reads one assignee. The portal sends [], "", null, {} or
// {"0": {}} for an unassigned slot; any other shape must carry a name.
func decodeStaff(field string, raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	switch string(trimmed) {
	case "", "null", "[]", `""`, "{}":
		return "", nil
	}

	var s staffOuter
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return "", &customerrors.DecodeError{
			Field: field,
			Value: string(trimmed),
			Err:   fmt.Errorf("%w: %v", customerrors.ErrMalformedStaff, err),
		}
	}
	if s.Inner == nil || s.Inner.Entry == nil {
		return "", nil
	}
	if s.Inner.Entry.Name == nil {
		return "", &customerrors.DecodeError{Field: field + ".nimi", Value: string(trimmed), Err: customerrors.ErrMissingField}
	}
	return *s.Inner.Entry.Name, nil
}

func newStaff(name string) *staffOuter {
	if name == "" {
		return nil
	}
	return &staffOuter{Inner: &staffInner{Entry: &staffEntry{Name: &name}}}
}
