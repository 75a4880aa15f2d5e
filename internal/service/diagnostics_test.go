package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uraniaedu/urania-api/internal/cpsat"
	"github.com/uraniaedu/urania-api/internal/models"
)

func lessonAt(teacher int64, day string, ordinal int) models.LessonAssignment {
	return models.LessonAssignment{
		TeacherID: teacher,
		Day:       day,
		StartTime: models.PeriodStart(ordinal - 1),
		EndTime:   models.PeriodEnd(ordinal - 1),
		Ordinal:   ordinal,
	}
}

func TestQualityScoreBounds(t *testing.T) {
	teachers := []models.Teacher{{ID: 1}}

	assert.Equal(t, 0, qualityScore(0, 0, nil, teachers))
	assert.Equal(t, 0, qualityScore(10, 0, nil, teachers))

	// Full placement, one lesson per day, no gaps: perfect score.
	var lessons []models.LessonAssignment
	for _, day := range models.GridDays {
		lessons = append(lessons, lessonAt(1, day, 1))
	}
	assert.Equal(t, 100, qualityScore(5, 5, lessons, teachers))

	// Every score stays inside [0, 100].
	uneven := []models.LessonAssignment{
		lessonAt(1, models.DayMon, 1),
		lessonAt(1, models.DayMon, 3),
		lessonAt(1, models.DayMon, 5),
	}
	score := qualityScore(3, 3, uneven, teachers)
	assert.GreaterOrEqual(t, score, 0)
	assert.LessOrEqual(t, score, 100)
}

func TestQualityScorePenalisesGaps(t *testing.T) {
	teachers := []models.Teacher{{ID: 1}}
	gappy := []models.LessonAssignment{
		lessonAt(1, models.DayMon, 1),
		lessonAt(1, models.DayMon, 3),
	}
	compact := []models.LessonAssignment{
		lessonAt(1, models.DayMon, 1),
		lessonAt(1, models.DayMon, 2),
	}
	assert.Less(t, qualityScore(2, 2, gappy, teachers), qualityScore(2, 2, compact, teachers))
}

func TestCountTeacherGaps(t *testing.T) {
	lessons := []models.LessonAssignment{
		lessonAt(1, models.DayMon, 1),
		lessonAt(1, models.DayMon, 3),
		lessonAt(1, models.DayTue, 2),
		lessonAt(1, models.DayTue, 3),
		lessonAt(2, models.DayMon, 1),
		lessonAt(2, models.DayMon, 5),
	}
	// Teacher 1 has one gap on Monday, none on Tuesday; teacher 2's Monday
	// hole spans three periods and only the flanked positions count.
	assert.Equal(t, 1, countTeacherGaps(lessons))
}

func TestDiagnoseOrdersPendencies(t *testing.T) {
	snap := &domainSnapshot{
		Teachers: []models.Teacher{
			{ID: 1, Name: "Ana", TransitMinutes: 90},
		},
		Rooms: []models.Room{
			{ID: 30, SiteID: 1},
			{ID: 31, SiteID: 2},
		},
		Curriculum: []models.CurriculumRow{
			{ID: 1, ClassGroupID: 20, SubjectID: 40, TeacherID: 1, LessonsPerWeek: 25},
		},
		Availability: map[int64][]models.TeacherAvailability{
			1: {{TeacherID: 1, Day: models.DayMon, Available: false}},
		},
	}

	pendencies := diagnose(snap, 25, 10, cpsat.StatusFeasible)
	require.NotEmpty(t, pendencies)
	assert.Equal(t, models.PendencyLessonsNotPlaced, pendencies[0].Kind)
	assert.Equal(t, models.SeverityHigh, pendencies[0].Severity)

	for i := 1; i+1 < len(pendencies); i++ {
		assert.GreaterOrEqual(t,
			severityRank(pendencies[i].Severity),
			severityRank(pendencies[i+1].Severity),
		)
	}

	kinds := make(map[string]bool)
	for _, p := range pendencies {
		kinds[p.Kind] = true
	}
	// 25 lessons against 24 open slots trips the availability check; the
	// 90-minute transit over two sites trips the risk check.
	assert.True(t, kinds[models.PendencyInsufficientAvailability])
	assert.True(t, kinds[models.PendencyMultiSiteTransitRisk])
}

func TestDiagnoseRoomCapacityPressure(t *testing.T) {
	snap := &domainSnapshot{
		Teachers: []models.Teacher{{ID: 1, Name: "Ana"}},
		Rooms:    []models.Room{{ID: 30, SiteID: 1}},
		Curriculum: []models.CurriculumRow{
			{ID: 1, ClassGroupID: 20, SubjectID: 40, TeacherID: 2, LessonsPerWeek: 28},
		},
		Availability: map[int64][]models.TeacherAvailability{},
	}

	pendencies := diagnose(snap, 28, 28, cpsat.StatusOptimal)
	found := false
	for _, p := range pendencies {
		if p.Kind == models.PendencyRoomCapacityPressure {
			found = true
			assert.Equal(t, models.SeverityMed, p.Severity)
		}
	}
	assert.True(t, found)
}

func TestDiagnoseInfeasibleFallback(t *testing.T) {
	snap := &domainSnapshot{
		Teachers:     []models.Teacher{{ID: 1, Name: "Ana"}},
		Rooms:        []models.Room{{ID: 30, SiteID: 1}},
		Availability: map[int64][]models.TeacherAvailability{},
	}

	pendencies := diagnose(snap, 0, 0, cpsat.StatusInfeasible)
	require.Len(t, pendencies, 1)
	assert.Equal(t, models.PendencyInfeasible, pendencies[0].Kind)
	assert.Equal(t, models.SeverityHigh, pendencies[0].Severity)

	// A clean feasible run produces no pendencies at all.
	snap.Curriculum = []models.CurriculumRow{
		{ID: 1, ClassGroupID: 20, SubjectID: 40, TeacherID: 1, LessonsPerWeek: 2},
	}
	assert.Empty(t, diagnose(snap, 2, 2, cpsat.StatusOptimal))
}
