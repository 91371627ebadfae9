package formatter

import (
	"duty-report/models"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ReportData is the serialisable form of a coverage report.
type ReportData struct {
	Days []DayData `json:"days"`
}

// DayData holds one weekday's break slots.
type DayData struct {
	Weekday string     `json:"weekday"`
	Slots   []SlotData `json:"slots"`
}

// SlotData is one break with its assigned duties and unstaffed places.
type SlotData struct {
	Start   string              `json:"start"`
	End     string              `json:"end"`
	Duties  []DutyData          `json:"duties"`
	Missing []models.BreakPlace `json:"missing"`
}

// DutyData is one supervision assignment.
type DutyData struct {
	Place string   `json:"place"`
	Staff []string `json:"staff"`
}

// FormatMinutes renders minutes since midnight as "H:MM".
func FormatMinutes(minutes int) string {
	return fmt.Sprintf("%d:%02d", minutes/60, minutes%60)
}

// ParseClock parses "H:MM" into minutes since midnight.
func ParseClock(s string) (int, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(m) != 2 {
		return 0, fmt.Errorf("invalid time %q: want H:MM", s)
	}
	hours, err := strconv.Atoi(h)
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	mins, err := strconv.Atoi(m)
	if err != nil || mins < 0 || mins > 59 {
		return 0, fmt.Errorf("invalid minutes in %q", s)
	}
	return hours*60 + mins, nil
}

// prepareReportData flattens the report for the JSON and CSV formatters.
func prepareReportData(cov *models.Coverage) *ReportData {
	data := &ReportData{Days: make([]DayData, 0, len(cov.Days))}
	for _, day := range cov.Days {
		dd := DayData{Weekday: day.Weekday, Slots: make([]SlotData, 0, len(day.Slots))}
		for _, slot := range day.Slots {
			dd.Slots = append(dd.Slots, prepareSlot(slot))
		}
		data.Days = append(data.Days, dd)
	}
	return data
}

func prepareSlot(slot models.SlotCoverage) SlotData {
	sd := SlotData{
		Start:   FormatMinutes(slot.Start),
		End:     FormatMinutes(slot.End),
		Duties:  make([]DutyData, 0, len(slot.Events)),
		Missing: slot.Missing,
	}
	for _, ev := range slot.Events {
		sd.Duties = append(sd.Duties, DutyData{Place: placeName(ev), Staff: ev.StaffNames()})
	}
	return sd
}

// FormatText returns the plain-text report, one block per break slot.
func FormatText(cov *models.Coverage) string {
	var sb strings.Builder
	for _, day := range cov.Days {
		for _, slot := range day.Slots {
			sb.WriteString(FormatSlot(day.Weekday, slot))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// FormatSlot renders a single break slot.
func FormatSlot(weekday string, slot models.SlotCoverage) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s | %s-%s\n", weekday, FormatMinutes(slot.Start), FormatMinutes(slot.End)))
	for _, ev := range slot.Events {
		sb.WriteString(fmt.Sprintf("  %s (%s)\n", placeName(ev), strings.Join(ev.StaffNames(), ", ")))
	}
	sb.WriteString(fmt.Sprintf("puuttuu: %s\n", joinPlaces(slot.Missing, ", ")))
	return sb.String()
}

// FormatJSON returns the JSON representation of the report
func FormatJSON(cov *models.Coverage) string {
	data := prepareReportData(cov)
	jsonBytes, _ := json.MarshalIndent(data.Days, "", "  ")
	return string(jsonBytes)
}

// FormatCSV returns the CSV representation of the report, one row per slot.
func FormatCSV(cov *models.Coverage) string {
	data := prepareReportData(cov)
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	writer.Write([]string{"Weekday", "Start", "End", "Duties", "Missing"})

	for _, day := range data.Days {
		for _, slot := range day.Slots {
			writer.Write([]string{
				day.Weekday,
				slot.Start,
				slot.End,
				formatDuties(slot.Duties),
				joinPlaces(slot.Missing, "; "),
			})
		}
	}

	writer.Flush()
	return sb.String()
}

// formatDuties builds "Place(name1,name2); Place(name)"
func formatDuties(duties []DutyData) string {
	parts := make([]string, 0, len(duties))
	for _, d := range duties {
		parts = append(parts, fmt.Sprintf("%s(%s)", d.Place, strings.Join(d.Staff, ",")))
	}
	return strings.Join(parts, "; ")
}

func joinPlaces(places []models.BreakPlace, sep string) string {
	names := make([]string, 0, len(places))
	for _, p := range places {
		names = append(names, p.String())
	}
	return strings.Join(names, sep)
}

func placeName(ev *models.Event) string {
	p, err := ev.BreakPlace()
	if err != nil {
		return ev.Title
	}
	return p.String()
}
