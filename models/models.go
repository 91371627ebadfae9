package models

// ScheduleKind is the profile listing a person was discovered under.
type ScheduleKind string

const (
	Teachers  ScheduleKind = "teachers"
	Personnel ScheduleKind = "personnel"
)

// Person identifies one schedule to fetch.
type Person struct {
	Kind ScheduleKind
	ID   uint32
}

// Coverage is the break-duty report for a whole week.
// Days is indexed like Weekdays.
type Coverage struct {
	Days [5]DayCoverage
}

// DayCoverage holds the break slots of one weekday in start order.
type DayCoverage struct {
	Weekday string
	Slots   []SlotCoverage
}

// SlotCoverage is one break on one day. Events point into the slice the
// report was built from and must not outlive it.
type SlotCoverage struct {
	BreakIndex int
	Start      int
	End        int
	Events     []*Event
	Missing    []BreakPlace
}

// Slot finds the slot starting at start on the given weekday index.
func (c *Coverage) Slot(weekday, start int) (*SlotCoverage, bool) {
	if weekday < 0 || weekday >= len(c.Days) {
		return nil, false
	}
	for i := range c.Days[weekday].Slots {
		if c.Days[weekday].Slots[i].Start == start {
			return &c.Days[weekday].Slots[i], true
		}
	}
	return nil, false
}

// SlotCount is the number of break slots across the week.
func (c *Coverage) SlotCount() int {
	n := 0
	for _, d := range c.Days {
		n += len(d.Slots)
	}
	return n
}
