package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/uraniaedu/urania-api/internal/models"
	appErrors "github.com/uraniaedu/urania-api/pkg/errors"
)

type fakeLessonLister struct {
	lessons []models.LessonAssignment
	calls   int
}

func (f *fakeLessonLister) ListByDraft(ctx context.Context, draftID, classGroupID int64) ([]models.LessonAssignment, error) {
	f.calls++
	if classGroupID == 0 {
		return f.lessons, nil
	}
	var filtered []models.LessonAssignment
	for _, lesson := range f.lessons {
		if lesson.ClassGroupID == classGroupID {
			filtered = append(filtered, lesson)
		}
	}
	return filtered, nil
}

type fakeSubjects struct{ subjects []models.Subject }

func (f fakeSubjects) ListActive(ctx context.Context) ([]models.Subject, error) {
	return f.subjects, nil
}

func newTimetableFixture() (*TimetableService, *fakeDraftStore, *fakeLessonLister) {
	domain := trivialDomain()
	drafts := &fakeDraftStore{draft: &models.TimetableDraft{ID: 7, Name: "first semester", Status: models.DraftStatusCompleted}}
	lessons := &fakeLessonLister{lessons: []models.LessonAssignment{
		{ID: 1, DraftID: 7, ClassGroupID: 20, SubjectID: 40, TeacherID: 10, RoomID: 30, Day: models.DayMon, StartTime: "07:30", EndTime: "08:20", Ordinal: 1},
		{ID: 2, DraftID: 7, ClassGroupID: 20, SubjectID: 40, TeacherID: 10, RoomID: 30, Day: models.DayTue, StartTime: "07:30", EndTime: "08:20", Ordinal: 1},
	}}
	svc := NewTimetableService(
		drafts,
		lessons,
		fakeClassGroups{domain},
		fakeSubjects{subjects: []models.Subject{{ID: 40, Name: "Mathematics", Active: true}}},
		fakeTeachers{domain},
		fakeRooms{domain},
		nil,
		zap.NewNop(),
	)
	return svc, drafts, lessons
}

func TestTimetableServiceGetDraftNotFound(t *testing.T) {
	svc, drafts, _ := newTimetableFixture()
	drafts.findErr = sql.ErrNoRows

	_, err := svc.GetDraft(context.Background(), 7)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestTimetableServiceListLessonsFiltered(t *testing.T) {
	svc, _, _ := newTimetableFixture()

	all, err := svc.ListLessons(context.Background(), 7, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	none, err := svc.ListLessons(context.Background(), 7, 999)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTimetableServiceExportCSV(t *testing.T) {
	svc, _, _ := newTimetableFixture()

	raw, err := svc.ExportCSV(context.Background(), 7)
	require.NoError(t, err)

	content := string(raw)
	assert.True(t, strings.HasPrefix(content, "Class Group,Day,Period,Start,End,Subject,Teacher,Room"))
	assert.Contains(t, content, "6A,MON,1,07:30,08:20,Mathematics,Ana,Room 101")
}

func TestTimetableServiceExportPDF(t *testing.T) {
	svc, _, _ := newTimetableFixture()

	raw, err := svc.ExportPDF(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "%PDF"))
}
