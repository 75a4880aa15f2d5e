package models

import "time"

// Teacher carries the workload rules the generator has to honour.
// MaxWeeklyLoad and ActivityHours are hours; TransitMinutes is the travel time
// between sites in minutes.
type Teacher struct {
	ID             int64     `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	MaxWeeklyLoad  int       `db:"max_weekly_load" json:"max_weekly_load"`
	ActivityHours  int       `db:"activity_hours" json:"activity_hours"`
	MaxConsecutive int       `db:"max_consecutive" json:"max_consecutive"`
	MaxDaily       int       `db:"max_daily" json:"max_daily"`
	TransitMinutes int       `db:"transit_minutes" json:"transit_minutes"`
	Active         bool      `db:"active" json:"active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}
