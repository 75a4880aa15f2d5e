package dto

import "github.com/uraniaedu/urania-api/internal/models"

// GenerateTimetableRequest tunes one generation run. Unset toggles fall back
// to the scheduler defaults from config.
type GenerateTimetableRequest struct {
	MaxSeconds          int   `json:"maxSeconds" validate:"omitempty,min=1,max=3600"`
	LimitGaps           *bool `json:"limitGaps"`
	RespectTransit      *bool `json:"respectTransit"`
	UniformDistribution *bool `json:"uniformDistribution"`
}

// GenerateTimetableResponse reports the outcome of a generation run,
// successful or not, so callers can always render diagnostics.
type GenerateTimetableResponse struct {
	Success        bool              `json:"success"`
	Message        string            `json:"message"`
	DraftID        int64             `json:"draftId"`
	Status         string            `json:"status"`
	TotalLessons   int               `json:"totalLessons"`
	PlacedLessons  int               `json:"placedLessons"`
	QualityScore   int               `json:"qualityScore"`
	ElapsedSeconds float64           `json:"elapsedSeconds"`
	Pendencies     []models.Pendency `json:"pendencies"`
}
