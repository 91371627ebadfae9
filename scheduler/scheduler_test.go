package scheduler_test

import (
	"errors"
	"testing"

	customerrors "duty-report/errors"
	"duty-report/models"
	"duty-report/scheduler"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func duty(day string, start int, title string, staff ...string) models.Event {
	var primary, secondary string
	if len(staff) > 0 {
		primary = staff[0]
	}
	if len(staff) > 1 {
		secondary = staff[1]
	}
	return models.NewEvent(title, "", start, start+15, day, primary, secondary)
}

func TestBuildCoverage_SingleSlot(t *testing.T) {
	events := []models.Event{
		duty("Maanantai", 525, "Valvonta YK", "Aalto Anna"),
		duty("Maanantai", 525, "Valvonta AK", "Berg Bo"),
	}

	cov, err := scheduler.BuildCoverage(events)
	require.NoError(t, err)

	require.Len(t, cov.Days[0].Slots, 1)
	slot := cov.Days[0].Slots[0]
	assert.Equal(t, 525, slot.Start)
	assert.Len(t, slot.Events, 2)
	assert.Equal(t, []models.BreakPlace{
		models.IikoonLinna,
		models.FrontYard,
		models.WingAndShed,
		models.D,
	}, slot.Missing)

	for d := 1; d < len(cov.Days); d++ {
		assert.Empty(t, cov.Days[d].Slots, cov.Days[d].Weekday)
	}
}

func TestBuildCoverage_Week(t *testing.T) {
	events := []models.Event{
		duty("Tiistai", 615, "Valvonta Linna", "C"),
		duty("Maanantai", 615, "Valvonta E + S", "B"),
		duty("Maanantai", 525, "Valvonta YK", "A"),
		duty("Maanantai", 540, "MAA5", "A"),
		duty("Tiistai", 525, "Valvonta D", "D"),
		duty("Keskiviikko", 525, "Valvonta E", "E"),
	}

	cov, err := scheduler.BuildCoverage(events)
	require.NoError(t, err)

	tests := map[string]struct {
		day     int
		starts  []int
		missing [][]models.BreakPlace
	}{
		"Monday": {
			day:    0,
			starts: []int{525, 615},
			missing: [][]models.BreakPlace{
				{models.IikoonLinna, models.Downstairs, models.FrontYard, models.WingAndShed, models.D},
				{models.IikoonLinna, models.Downstairs, models.Upstairs, models.FrontYard, models.D},
			},
		},
		"Tuesday": {
			day:    1,
			starts: []int{525, 615},
			missing: [][]models.BreakPlace{
				{models.IikoonLinna, models.Downstairs, models.Upstairs, models.FrontYard, models.WingAndShed},
				{models.Downstairs, models.Upstairs, models.FrontYard, models.WingAndShed, models.D},
			},
		},
		"WednesdayWingOnly": {
			day:     2,
			starts:  []int{525},
			missing: [][]models.BreakPlace{models.CoveragePlaces},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			slots := cov.Days[tt.day].Slots
			require.Len(t, slots, len(tt.starts))
			for i, s := range slots {
				assert.Equal(t, tt.starts[i], s.Start)
				assert.Equal(t, tt.missing[i], s.Missing)
			}
		})
	}

	assert.Equal(t, 5, cov.SlotCount())
	assert.Equal(t, "Valvonta YK", events[2].Title, "input must not be reordered")
}

func TestBuildCoverage_FirstDayWithoutDuties(t *testing.T) {
	cov, err := scheduler.BuildCoverage([]models.Event{duty("Tiistai", 525, "Valvonta YK")})
	require.NoError(t, err)
	assert.Empty(t, cov.Days[0].Slots)
	assert.Len(t, cov.Days[1].Slots, 1)
}

func TestBuildCoverage_Empty(t *testing.T) {
	cov, err := scheduler.BuildCoverage(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, cov.SlotCount())
	assert.Equal(t, "Perjantai", cov.Days[4].Weekday)
}

func TestSortEvents_Stable(t *testing.T) {
	events := []models.Event{
		duty("Tiistai", 525, "Valvonta YK", "first"),
		duty("Maanantai", 615, "Valvonta AK", "x"),
		duty("Tiistai", 525, "Valvonta YK", "second"),
		duty("Maanantai", 525, "Valvonta AK", "y"),
		duty("Tiistai", 525, "Valvonta YK", "third"),
	}

	require.NoError(t, scheduler.SortEvents(events))

	var order []string
	for _, ev := range events {
		order = append(order, ev.StaffNames()[0])
	}
	assert.Equal(t, []string{"y", "x", "first", "second", "third"}, order)
}

func TestSortEvents_UnknownWeekday(t *testing.T) {
	err := scheduler.SortEvents([]models.Event{duty("Lauantai", 525, "Valvonta YK")})
	assert.ErrorIs(t, err, customerrors.ErrUnknownWeekday)
}

func TestGroupCoverage_Errors(t *testing.T) {
	tests := map[string]struct {
		events        []models.Event
		expectedError error
	}{
		"WeekdayGap": {
			events: []models.Event{
				duty("Maanantai", 525, "Valvonta YK"),
				duty("Keskiviikko", 525, "Valvonta YK"),
			},
			expectedError: customerrors.ErrWeekdayGap,
		},
		"StartsOnWednesday": {
			events:        []models.Event{duty("Keskiviikko", 525, "Valvonta YK")},
			expectedError: customerrors.ErrWeekdayGap,
		},
		"WeekdayBackwards": {
			events: []models.Event{
				duty("Tiistai", 525, "Valvonta YK"),
				duty("Maanantai", 525, "Valvonta YK"),
			},
			expectedError: customerrors.ErrWeekdayOutOfOrder,
		},
		"BreakBackwards": {
			events: []models.Event{
				duty("Maanantai", 615, "Valvonta YK"),
				duty("Maanantai", 525, "Valvonta YK"),
			},
			expectedError: customerrors.ErrBreakOutOfOrder,
		},
		"NotABreakStart": {
			events:        []models.Event{duty("Maanantai", 530, "Valvonta YK")},
			expectedError: customerrors.ErrUnknownBreakStart,
		},
		"UnknownWeekday": {
			events:        []models.Event{duty("Sunnuntai", 525, "Valvonta YK")},
			expectedError: customerrors.ErrUnknownWeekday,
		},
		"UnknownPlace": {
			events:        []models.Event{duty("Maanantai", 525, "Valvonta ruokala")},
			expectedError: customerrors.ErrUnknownBreakPlace,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cov, err := scheduler.GroupCoverage(tt.events)
			assert.Nil(t, cov)
			assert.ErrorIs(t, err, tt.expectedError)
		})
	}
}

func TestGroupCoverage_ErrorPosition(t *testing.T) {
	_, err := scheduler.GroupCoverage([]models.Event{
		duty("Maanantai", 525, "Valvonta YK"),
		duty("Maanantai", 705, "Valvonta YK"),
		duty("Maanantai", 660, "Valvonta AK"),
	})

	var gerr *customerrors.GroupingError
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, 2, gerr.Index)
	assert.Equal(t, 660, gerr.Start)
}

func TestGroupCoverage_BorrowsEvents(t *testing.T) {
	events := []models.Event{duty("Maanantai", 525, "Valvonta YK", "A")}

	cov, err := scheduler.GroupCoverage(events)
	require.NoError(t, err)
	assert.Same(t, &events[0], cov.Days[0].Slots[0].Events[0])
}
