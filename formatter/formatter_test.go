package formatter_test

import (
	"strings"
	"testing"

	"duty-report/formatter"
	"duty-report/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCoverage() *models.Coverage {
	yk := models.NewEvent("Valvonta YK", "", 525, 540, "Maanantai", "Aalto Anna", "Berg Bo")
	ak := models.NewEvent("Valvonta AK", "", 525, 540, "Maanantai", "Cedercreutz Cay", "")

	var cov models.Coverage
	for i, name := range models.Weekdays {
		cov.Days[i].Weekday = name
	}
	missing := []models.BreakPlace{models.IikoonLinna, models.FrontYard, models.WingAndShed, models.D}
	cov.Days[0].Slots = []models.SlotCoverage{{
		Start:   525,
		End:     540,
		Events:  []*models.Event{&yk, &ak},
		Missing: missing,
	}}
	return &cov
}

func TestFormatMinutes(t *testing.T) {
	tests := map[string]struct {
		minutes  int
		expected string
	}{
		"QuarterToNine": {minutes: 525, expected: "8:45"},
		"Nine":          {minutes: 540, expected: "9:00"},
		"Midnight":      {minutes: 0, expected: "0:00"},
		"LastMinute":    {minutes: 1439, expected: "23:59"},
		"LeadingZero":   {minutes: 605, expected: "10:05"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatter.FormatMinutes(tt.minutes))
		})
	}
}

func TestParseClock(t *testing.T) {
	got, err := formatter.ParseClock("8:45")
	require.NoError(t, err)
	assert.Equal(t, 525, got)

	for _, bad := range []string{"", "845", "8:5", "24:00", "8:60", "x:45", "-1:00"} {
		_, err := formatter.ParseClock(bad)
		assert.Error(t, err, bad)
	}
}

func TestClockRoundTrip_BreakStarts(t *testing.T) {
	for _, start := range models.BreakStarts {
		got, err := formatter.ParseClock(formatter.FormatMinutes(start))
		require.NoError(t, err)
		assert.Equal(t, start, got)
	}
}

func TestFormatText(t *testing.T) {
	output := formatter.FormatText(sampleCoverage())

	expected := "Maanantai | 8:45-9:00\n" +
		"  Yläkerta (Aalto Anna, Berg Bo)\n" +
		"  Alakerta (Cedercreutz Cay)\n" +
		"puuttuu: Iikoon linna, Etupiha, E-siipi + vaja, D\n\n"
	assert.Equal(t, expected, output)
}

func TestFormatText_Empty(t *testing.T) {
	var cov models.Coverage
	assert.Empty(t, formatter.FormatText(&cov))
}

func TestFormatJSON(t *testing.T) {
	output := formatter.FormatJSON(sampleCoverage())

	for _, s := range []string{
		`"weekday": "Maanantai"`,
		`"start": "8:45"`,
		`"place": "Yläkerta"`,
		`"Aalto Anna"`,
		`"Iikoon linna"`,
		`"weekday": "Perjantai"`,
	} {
		assert.Contains(t, output, s)
	}
}

func TestFormatCSV(t *testing.T) {
	output := formatter.FormatCSV(sampleCoverage())
	lines := strings.Split(strings.TrimSpace(output), "\n")

	require.Len(t, lines, 2)
	assert.Equal(t, "Weekday,Start,End,Duties,Missing", lines[0])
	assert.Equal(t,
		`Maanantai,8:45,9:00,"Yläkerta(Aalto Anna,Berg Bo); Alakerta(Cedercreutz Cay)",Iikoon linna; Etupiha; E-siipi + vaja; D`,
		lines[1])
}
