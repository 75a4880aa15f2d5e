package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/uraniaedu/urania-api/internal/models"
	"github.com/uraniaedu/urania-api/pkg/cache"
	appErrors "github.com/uraniaedu/urania-api/pkg/errors"
	"github.com/uraniaedu/urania-api/pkg/export"
)

type draftFinder interface {
	FindByID(ctx context.Context, id int64) (*models.TimetableDraft, error)
}

type lessonLister interface {
	ListByDraft(ctx context.Context, draftID, classGroupID int64) ([]models.LessonAssignment, error)
}

type subjectReader interface {
	ListActive(ctx context.Context) ([]models.Subject, error)
}

// TimetableService serves generated timetables: draft lookups, cached lesson
// listings and CSV/PDF rendering.
type TimetableService struct {
	drafts      draftFinder
	lessons     lessonLister
	classGroups classGroupReader
	subjects    subjectReader
	teachers    teacherReader
	rooms       roomReader
	cache       *cache.Store
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	logger      *zap.Logger
}

// NewTimetableService wires timetable read dependencies.
func NewTimetableService(
	drafts draftFinder,
	lessons lessonLister,
	classGroups classGroupReader,
	subjects subjectReader,
	teachers teacherReader,
	rooms roomReader,
	store *cache.Store,
	logger *zap.Logger,
) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{
		drafts:      drafts,
		lessons:     lessons,
		classGroups: classGroups,
		subjects:    subjects,
		teachers:    teachers,
		rooms:       rooms,
		cache:       store,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		logger:      logger,
	}
}

// GetDraft returns a draft with its generation statistics.
func (s *TimetableService) GetDraft(ctx context.Context, id int64) (*models.TimetableDraft, error) {
	draft, err := s.drafts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable draft not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable draft")
	}
	return draft, nil
}

// ListLessons returns the lessons of a draft, optionally narrowed to one
// class group. Full listings are served through the cache.
func (s *TimetableService) ListLessons(ctx context.Context, draftID, classGroupID int64) ([]models.LessonAssignment, error) {
	if _, err := s.GetDraft(ctx, draftID); err != nil {
		return nil, err
	}

	if classGroupID == 0 {
		var cached []models.LessonAssignment
		if s.cache.GetJSON(ctx, lessonsCacheKey(draftID), &cached) {
			return cached, nil
		}
	}

	lessons, err := s.lessons.ListByDraft(ctx, draftID, classGroupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lessons")
	}

	if classGroupID == 0 {
		s.cache.SetJSON(ctx, lessonsCacheKey(draftID), lessons)
	}
	return lessons, nil
}

// ExportCSV renders a draft's full timetable as CSV.
func (s *TimetableService) ExportCSV(ctx context.Context, draftID int64) ([]byte, error) {
	_, dataset, err := s.dataset(ctx, draftID)
	if err != nil {
		return nil, err
	}
	raw, err := s.csv.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return raw, nil
}

// ExportPDF renders a draft's full timetable as a tabular PDF.
func (s *TimetableService) ExportPDF(ctx context.Context, draftID int64) ([]byte, error) {
	draft, dataset, err := s.dataset(ctx, draftID)
	if err != nil {
		return nil, err
	}
	raw, err := s.pdf.Render(dataset, draft.Name)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	return raw, nil
}

func (s *TimetableService) dataset(ctx context.Context, draftID int64) (*models.TimetableDraft, export.Dataset, error) {
	draft, err := s.GetDraft(ctx, draftID)
	if err != nil {
		return nil, export.Dataset{}, err
	}
	lessons, err := s.ListLessons(ctx, draftID, 0)
	if err != nil {
		return nil, export.Dataset{}, err
	}

	groupNames, err := s.classGroupNames(ctx)
	if err != nil {
		return nil, export.Dataset{}, err
	}
	subjectNames, err := s.subjectNames(ctx)
	if err != nil {
		return nil, export.Dataset{}, err
	}
	teacherNames, err := s.teacherNames(ctx)
	if err != nil {
		return nil, export.Dataset{}, err
	}
	roomNames, err := s.roomNames(ctx)
	if err != nil {
		return nil, export.Dataset{}, err
	}

	headers := []string{"Class Group", "Day", "Period", "Start", "End", "Subject", "Teacher", "Room"}
	rows := make([]map[string]string, 0, len(lessons))
	for _, lesson := range lessons {
		rows = append(rows, map[string]string{
			"Class Group": nameOr(groupNames, lesson.ClassGroupID),
			"Day":         lesson.Day,
			"Period":      strconv.Itoa(lesson.Ordinal),
			"Start":       lesson.StartTime,
			"End":         lesson.EndTime,
			"Subject":     nameOr(subjectNames, lesson.SubjectID),
			"Teacher":     nameOr(teacherNames, lesson.TeacherID),
			"Room":        nameOr(roomNames, lesson.RoomID),
		})
	}
	return draft, export.Dataset{Headers: headers, Rows: rows}, nil
}

func (s *TimetableService) classGroupNames(ctx context.Context) (map[int64]string, error) {
	groups, err := s.classGroups.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class groups")
	}
	names := make(map[int64]string, len(groups))
	for _, g := range groups {
		names[g.ID] = g.Name
	}
	return names, nil
}

func (s *TimetableService) subjectNames(ctx context.Context) (map[int64]string, error) {
	subjects, err := s.subjects.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subjects")
	}
	names := make(map[int64]string, len(subjects))
	for _, subject := range subjects {
		names[subject.ID] = subject.Name
	}
	return names, nil
}

func (s *TimetableService) teacherNames(ctx context.Context) (map[int64]string, error) {
	teachers, err := s.teachers.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teachers")
	}
	names := make(map[int64]string, len(teachers))
	for _, teacher := range teachers {
		names[teacher.ID] = teacher.Name
	}
	return names, nil
}

func (s *TimetableService) roomNames(ctx context.Context) (map[int64]string, error) {
	rooms, err := s.rooms.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	names := make(map[int64]string, len(rooms))
	for _, room := range rooms {
		names[room.ID] = room.Name
	}
	return names, nil
}

func nameOr(names map[int64]string, id int64) string {
	if name, ok := names[id]; ok {
		return name
	}
	return fmt.Sprintf("#%d", id)
}
