package service

import (
	"fmt"
	"math"
	"sort"

	"github.com/uraniaedu/urania-api/internal/cpsat"
	"github.com/uraniaedu/urania-api/internal/models"
)

// qualityScore rates a generated timetable 0-100: placement rate (40),
// per-day balance (30), teacher gaps (20) and a reserved preference term (10,
// constant until teacher preferences are modeled).
func qualityScore(total, placed int, lessons []models.LessonAssignment, teachers []models.Teacher) int {
	if total == 0 || placed == 0 {
		return 0
	}

	score := 40 * placed / total

	score += balanceScore(lessons)
	score += gapScore(lessons, len(teachers))
	score += 10

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// balanceScore rewards an even lesson count across the five grid days:
// 30 minus five points per standard-deviation unit.
func balanceScore(lessons []models.LessonAssignment) int {
	perDay := make(map[string]int, models.DaysPerWeek)
	for _, lesson := range lessons {
		perDay[lesson.Day]++
	}

	mean := float64(len(lessons)) / float64(models.DaysPerWeek)
	variance := 0.0
	for _, day := range models.GridDays {
		diff := float64(perDay[day]) - mean
		variance += diff * diff
	}
	variance /= float64(models.DaysPerWeek)
	sigma := math.Sqrt(variance)

	score := 30 - int(sigma*5)
	if score < 0 {
		return 0
	}
	return score
}

// gapScore counts free periods flanked by lessons in each teacher's day and
// scales the count against an expected worst case of two gaps per teacher-day.
func gapScore(lessons []models.LessonAssignment, teacherCount int) int {
	gaps := countTeacherGaps(lessons)

	expected := teacherCount * models.DaysPerWeek * 2
	if expected < 1 {
		expected = 1
	}
	score := 20 - 20*gaps/expected
	if score < 0 {
		return 0
	}
	return score
}

// countTeacherGaps tallies positions where a teacher has a lesson, then a
// hole, then a lesson again on the same day.
func countTeacherGaps(lessons []models.LessonAssignment) int {
	type teacherDay struct {
		teacher int64
		day     string
	}
	occupied := make(map[teacherDay][models.PeriodsPerDay]bool)
	for _, lesson := range lessons {
		key := teacherDay{teacher: lesson.TeacherID, day: lesson.Day}
		periods := occupied[key]
		if lesson.Ordinal >= 1 && lesson.Ordinal <= models.PeriodsPerDay {
			periods[lesson.Ordinal-1] = true
		}
		occupied[key] = periods
	}

	gaps := 0
	for _, periods := range occupied {
		for p := 1; p+1 < models.PeriodsPerDay; p++ {
			if periods[p-1] && !periods[p] && periods[p+1] {
				gaps++
			}
		}
	}
	return gaps
}

// diagnose builds the ranked pendency list for a run: unplaced lessons first,
// then structural pressure findings by severity, and a generic infeasibility
// note when the solver failed and nothing else explains it.
func diagnose(snap *domainSnapshot, total, placed int, status cpsat.Status) []models.Pendency {
	var analysis []models.Pendency
	analysis = append(analysis, availabilityPendencies(snap)...)
	analysis = append(analysis, capacityPendencies(snap, total)...)
	analysis = append(analysis, transitPendencies(snap)...)

	sort.SliceStable(analysis, func(i, j int) bool {
		return severityRank(analysis[i].Severity) > severityRank(analysis[j].Severity)
	})

	var pendencies []models.Pendency
	if placed < total {
		missing := total - placed
		rate := 0.0
		if total > 0 {
			rate = float64(placed) / float64(total) * 100
		}
		pendencies = append(pendencies, models.Pendency{
			Kind:     models.PendencyLessonsNotPlaced,
			Severity: models.SeverityHigh,
			Message:  fmt.Sprintf("%d lesson(s) could not be placed", missing),
			Extra:    map[string]any{"placement_rate": fmt.Sprintf("%.1f%%", rate)},
		})
	}
	pendencies = append(pendencies, analysis...)

	if len(pendencies) == 0 && (status == cpsat.StatusInfeasible || status == cpsat.StatusUnknown) {
		pendencies = append(pendencies, models.Pendency{
			Kind:       models.PendencyInfeasible,
			Severity:   models.SeverityHigh,
			Message:    "constraints are too restrictive or the data is inconsistent",
			Suggestion: "review teacher availability, weekly load and transit settings",
		})
	}
	return pendencies
}

func severityRank(s models.PendencySeverity) int {
	switch s {
	case models.SeverityHigh:
		return 3
	case models.SeverityMed:
		return 2
	default:
		return 1
	}
}

// availabilityPendencies flags teachers whose weekly demand eats more than
// 80% of their open slots. Blocked slots are estimated a full day per
// available=false row, mirroring the day-level block the model applies.
func availabilityPendencies(snap *domainSnapshot) []models.Pendency {
	var out []models.Pendency
	for i := range snap.Teachers {
		teacher := &snap.Teachers[i]

		weeklyLoad := 0
		for _, row := range snap.Curriculum {
			if row.TeacherID == teacher.ID {
				weeklyLoad += row.LessonsPerWeek
			}
		}
		if weeklyLoad == 0 {
			continue
		}

		blockedSlots := 0
		for _, row := range snap.Availability[teacher.ID] {
			if !row.Available {
				blockedSlots += models.PeriodsPerDay
			}
		}
		openSlots := models.DaysPerWeek*models.PeriodsPerDay - blockedSlots

		if float64(weeklyLoad) > float64(openSlots)*0.8 {
			teacherID := teacher.ID
			out = append(out, models.Pendency{
				Kind:       models.PendencyInsufficientAvailability,
				Severity:   models.SeverityMed,
				Message:    fmt.Sprintf("teacher %s has few open slots for the assigned load", teacher.Name),
				Suggestion: "free some blocked days or reduce the weekly load",
				TeacherID:  &teacherID,
			})
		}
	}
	return out
}

// capacityPendencies flags room occupancy above 80% of the weekly grid.
func capacityPendencies(snap *domainSnapshot, total int) []models.Pendency {
	capacity := len(snap.Rooms) * models.DaysPerWeek * models.PeriodsPerDay
	if float64(total) <= float64(capacity)*0.8 {
		return nil
	}
	occupancy := 0.0
	if capacity > 0 {
		occupancy = float64(total) / float64(capacity) * 100
	}
	return []models.Pendency{{
		Kind:       models.PendencyRoomCapacityPressure,
		Severity:   models.SeverityMed,
		Message:    fmt.Sprintf("room occupancy is very high (%.1f%%)", occupancy),
		Suggestion: "add more rooms or move class groups to another shift",
	}}
}

// transitPendencies flags teachers with long transit times when lessons span
// more than one site.
func transitPendencies(snap *domainSnapshot) []models.Pendency {
	if len(snap.siteIDs()) <= 1 {
		return nil
	}
	var out []models.Pendency
	for i := range snap.Teachers {
		teacher := &snap.Teachers[i]
		if teacher.TransitMinutes <= 45 {
			continue
		}
		teaches := false
		for _, row := range snap.Curriculum {
			if row.TeacherID == teacher.ID {
				teaches = true
				break
			}
		}
		if !teaches {
			continue
		}
		teacherID := teacher.ID
		out = append(out, models.Pendency{
			Kind:       models.PendencyMultiSiteTransitRisk,
			Severity:   models.SeverityLow,
			Message:    fmt.Sprintf("teacher %s has a long transit time (%dmin)", teacher.Name, teacher.TransitMinutes),
			Suggestion: "keep the teacher's lessons on a single site",
			TeacherID:  &teacherID,
		})
	}
	return out
}
