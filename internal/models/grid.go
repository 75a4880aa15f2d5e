package models

import "fmt"

// The generation grid is fixed: five school days of six 50-minute periods
// starting at 07:30. Saturday is never scheduled.
const (
	DaysPerWeek     = 5
	PeriodsPerDay   = 6
	PeriodLengthMin = 50
	DayStartHour    = 7
	DayStartMinute  = 30
)

// GridDays lists the days of the generation grid in order.
var GridDays = []string{DayMon, DayTue, DayWed, DayThu, DayFri}

// PeriodStart returns the HH:MM start of a 0-based period index.
func PeriodStart(period int) string {
	return clockAt(period * PeriodLengthMin)
}

// PeriodEnd returns the HH:MM end of a 0-based period index.
func PeriodEnd(period int) string {
	return clockAt(period*PeriodLengthMin + PeriodLengthMin)
}

func clockAt(offsetMin int) string {
	total := DayStartHour*60 + DayStartMinute + offsetMin
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
