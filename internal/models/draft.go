package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// DraftStatus tracks the lifecycle of a timetable draft.
type DraftStatus string

const (
	DraftStatusDraft      DraftStatus = "DRAFT"
	DraftStatusInProgress DraftStatus = "IN_PROGRESS"
	DraftStatusCompleted  DraftStatus = "COMPLETED"
	DraftStatusApproved   DraftStatus = "APPROVED"
)

// TimetableDraft aggregates one generation attempt: lesson counts, quality
// score and the pendency list produced by diagnostics.
type TimetableDraft struct {
	ID            int64          `db:"id" json:"id"`
	Name          string         `db:"name" json:"name"`
	Status        DraftStatus    `db:"status" json:"status"`
	TotalLessons  int            `db:"total_lessons" json:"total_lessons"`
	PlacedLessons int            `db:"placed_lessons" json:"placed_lessons"`
	Pendencies    types.JSONText `db:"pendencies" json:"pendencies,omitempty"`
	QualityScore  int            `db:"quality_score" json:"quality_score"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// PendencySeverity ranks how serious a pendency is.
type PendencySeverity string

const (
	SeverityLow  PendencySeverity = "LOW"
	SeverityMed  PendencySeverity = "MED"
	SeverityHigh PendencySeverity = "HIGH"
)

// Pendency kinds emitted by diagnostics.
const (
	PendencyLessonsNotPlaced         = "LESSONS_NOT_PLACED"
	PendencyInsufficientAvailability = "INSUFFICIENT_AVAILABILITY"
	PendencyRoomCapacityPressure     = "ROOM_CAPACITY_PRESSURE"
	PendencyMultiSiteTransitRisk     = "MULTI_SITE_TRANSIT_RISK"
	PendencyInfeasible               = "INFEASIBLE"
)

// Pendency is a structured diagnostic about why a timetable is incomplete or
// risky. TeacherID and Extra are kind-specific.
type Pendency struct {
	Kind       string           `json:"kind"`
	Severity   PendencySeverity `json:"severity"`
	Message    string           `json:"message"`
	Suggestion string           `json:"suggestion,omitempty"`
	TeacherID  *int64           `json:"teacher_id,omitempty"`
	Extra      map[string]any   `json:"extra,omitempty"`
}
