package models

import "time"

// LessonAssignment is one generated lesson: a class group meets a teacher for
// a subject in a room, on a day, at a 1-based period ordinal of the fixed
// grid. StartTime/EndTime are HH:MM strings derived from the grid.
type LessonAssignment struct {
	ID           int64     `db:"id" json:"id"`
	DraftID      int64     `db:"draft_id" json:"draft_id"`
	ClassGroupID int64     `db:"class_group_id" json:"class_group_id"`
	SubjectID    int64     `db:"subject_id" json:"subject_id"`
	TeacherID    int64     `db:"teacher_id" json:"teacher_id"`
	RoomID       int64     `db:"room_id" json:"room_id"`
	Day          string    `db:"day" json:"day"`
	StartTime    string    `db:"start_time" json:"start_time"`
	EndTime      string    `db:"end_time" json:"end_time"`
	Ordinal      int       `db:"ordinal" json:"ordinal"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
