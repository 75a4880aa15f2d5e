package models

import "time"

// CurriculumRow is a weekly contract: this class group receives this subject,
// taught by this teacher, LessonsPerWeek times.
type CurriculumRow struct {
	ID             int64     `db:"id" json:"id"`
	ClassGroupID   int64     `db:"class_group_id" json:"class_group_id"`
	SubjectID      int64     `db:"subject_id" json:"subject_id"`
	TeacherID      int64     `db:"teacher_id" json:"teacher_id"`
	LessonsPerWeek int       `db:"lessons_per_week" json:"lessons_per_week"`
	Active         bool      `db:"active" json:"active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}
