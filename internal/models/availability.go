package models

import "time"

// Weekday codes used across availability rows and emitted lessons. Saturday
// exists in the domain but is excluded from the generation grid.
const (
	DayMon = "MON"
	DayTue = "TUE"
	DayWed = "WED"
	DayThu = "THU"
	DayFri = "FRI"
	DaySat = "SAT"
)

// TeacherAvailability marks a teacher's day as available or blocked.
// StartTime/EndTime are stored by the admin UI but the generator applies the
// block to the whole day; period-level blocking is a future extension.
type TeacherAvailability struct {
	ID        int64     `db:"id" json:"id"`
	TeacherID int64     `db:"teacher_id" json:"teacher_id"`
	Day       string    `db:"day" json:"day"`
	Available bool      `db:"available" json:"available"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
