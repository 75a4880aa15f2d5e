package models

import "time"

// Shift enumerates the part of the day a class group attends.
type Shift string

const (
	ShiftMorning   Shift = "MORNING"
	ShiftAfternoon Shift = "AFTERNOON"
	ShiftEvening   Shift = "EVENING"
	ShiftFullDay   Shift = "FULL_DAY"
)

// ClassGroup is a cohort of students that shares every lesson of the week.
type ClassGroup struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Shift     Shift     `db:"shift" json:"shift"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
