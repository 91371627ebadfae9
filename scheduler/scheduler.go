package scheduler

import (
	customerrors "duty-report/errors"
	"duty-report/metrics"
	"duty-report/models"
	"fmt"
	"sort"
	"time"
)

// FilterSupervision keeps the break-duty events, preserving order.
func FilterSupervision(events []models.Event) []models.Event {
	out := make([]models.Event, 0, len(events))
	for _, ev := range events {
		if ev.IsSupervision() {
			out = append(out, ev)
		}
	}
	return out
}

// SortEvents orders events by weekday, then start time. The sort is stable,
// so events sharing both keys keep their input order.
func SortEvents(events []models.Event) error {
	days := make(map[string]int, len(models.Weekdays))
	for i, ev := range events {
		wd, ok := models.WeekdayIndex(ev.Weekday)
		if !ok {
			return &customerrors.GroupingError{Index: i, Weekday: ev.Weekday, Start: ev.Start, Err: customerrors.ErrUnknownWeekday}
		}
		days[ev.Weekday] = wd
	}

	sort.SliceStable(events, func(i, j int) bool {
		di, dj := days[events[i].Weekday], days[events[j].Weekday]
		if di != dj {
			return di < dj
		}
		return events[i].Start < events[j].Start
	})
	return nil
}

// BuildCoverage filters, sorts and groups a full event list into a report.
// The input slice is left untouched.
func BuildCoverage(events []models.Event) (*models.Coverage, error) {
	duties := FilterSupervision(events)
	if err := SortEvents(duties); err != nil {
		return nil, err
	}
	return GroupCoverage(duties)
}

// GroupCoverage partitions sorted supervision events into per-day break
// slots and works out which places each slot leaves unstaffed.
//
// Weekdays must appear in order and may advance by one day at a time; within
// a day, break starts must not go backwards. Any violation is a
// GroupingError rather than a silently wrong bucket. The returned report
// holds pointers into events.
func GroupCoverage(events []models.Event) (*models.Coverage, error) {
	start := time.Now()
	metrics.ResetCoverageGauges()

	var cov models.Coverage
	for i, name := range models.Weekdays {
		cov.Days[i].Weekday = name
	}

	currentDay := 0
	currentBreak := -1

	for i := range events {
		ev := &events[i]

		wd, ok := models.WeekdayIndex(ev.Weekday)
		if !ok {
			return nil, groupingError(i, ev, customerrors.ErrUnknownWeekday)
		}
		bi, ok := models.BreakIndex(ev.Start)
		if !ok {
			return nil, groupingError(i, ev, customerrors.ErrUnknownBreakStart)
		}
		if _, err := ev.BreakPlace(); err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}

		switch {
		case wd < currentDay:
			return nil, groupingError(i, ev, customerrors.ErrWeekdayOutOfOrder)
		case wd > currentDay+1:
			return nil, groupingError(i, ev, customerrors.ErrWeekdayGap)
		case wd == currentDay+1:
			currentDay = wd
			currentBreak = -1
		}

		day := &cov.Days[currentDay]
		switch {
		case bi < currentBreak:
			return nil, groupingError(i, ev, customerrors.ErrBreakOutOfOrder)
		case bi > currentBreak:
			day.Slots = append(day.Slots, models.SlotCoverage{
				BreakIndex: bi,
				Start:      ev.Start,
				End:        ev.End,
			})
			currentBreak = bi
		}

		slot := &day.Slots[len(day.Slots)-1]
		slot.Events = append(slot.Events, ev)
	}

	for d := range cov.Days {
		missingToday := 0
		for s := range cov.Days[d].Slots {
			slot := &cov.Days[d].Slots[s]
			slot.Missing = MissingPlaces(slot.Events)
			missingToday += len(slot.Missing)
		}
		metrics.MissingPlaces.WithLabelValues(cov.Days[d].Weekday).Set(float64(missingToday))
	}

	metrics.SupervisionEvents.Set(float64(len(events)))
	metrics.BreakSlots.Set(float64(cov.SlotCount()))
	metrics.GroupingDurationSeconds.Observe(time.Since(start).Seconds())

	return &cov, nil
}

// MissingPlaces lists the coverage places no event in the slot is assigned to.
// Events whose title does not classify count for no place.
func MissingPlaces(events []*models.Event) []models.BreakPlace {
	staffed := make(map[models.BreakPlace]bool, len(models.CoveragePlaces))
	for _, ev := range events {
		if p, err := ev.BreakPlace(); err == nil {
			staffed[p] = true
		}
	}

	missing := make([]models.BreakPlace, 0, len(models.CoveragePlaces))
	for _, p := range models.CoveragePlaces {
		if !staffed[p] {
			missing = append(missing, p)
		}
	}
	return missing
}

func groupingError(i int, ev *models.Event, err error) error {
	return &customerrors.GroupingError{Index: i, Weekday: ev.Weekday, Start: ev.Start, Err: err}
}
