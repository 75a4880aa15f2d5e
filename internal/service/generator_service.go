package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/uraniaedu/urania-api/internal/cpsat"
	"github.com/uraniaedu/urania-api/internal/dto"
	"github.com/uraniaedu/urania-api/internal/models"
	"github.com/uraniaedu/urania-api/pkg/cache"
	"github.com/uraniaedu/urania-api/pkg/config"
	appErrors "github.com/uraniaedu/urania-api/pkg/errors"
	"github.com/uraniaedu/urania-api/pkg/metrics"
)

type curriculumReader interface {
	ListActive(ctx context.Context) ([]models.CurriculumRow, error)
}

type teacherReader interface {
	ListActive(ctx context.Context) ([]models.Teacher, error)
}

type classGroupReader interface {
	ListActive(ctx context.Context) ([]models.ClassGroup, error)
}

type roomReader interface {
	ListActive(ctx context.Context) ([]models.Room, error)
}

type availabilityReader interface {
	ListAll(ctx context.Context) (map[int64][]models.TeacherAvailability, error)
}

type draftStore interface {
	FindByID(ctx context.Context, id int64) (*models.TimetableDraft, error)
	UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id int64, status models.DraftStatus) error
	UpdateStats(ctx context.Context, exec sqlx.ExtContext, id int64, status models.DraftStatus, total, placed int, pendencies types.JSONText, score int) error
}

type lessonStore interface {
	DeleteByDraft(ctx context.Context, exec sqlx.ExtContext, draftID int64) error
	InsertBatch(ctx context.Context, exec sqlx.ExtContext, lessons []models.LessonAssignment) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// GeneratorService runs the constraint-based timetable generation pipeline:
// snapshot the domain, build the model, solve within the wall-clock budget,
// extract the assignment transactionally and attach diagnostics.
type GeneratorService struct {
	curriculum   curriculumReader
	teachers     teacherReader
	classGroups  classGroupReader
	rooms        roomReader
	availability availabilityReader
	drafts       draftStore
	lessons      lessonStore
	tx           txProvider
	validator    *validator.Validate
	logger       *zap.Logger
	metrics      *metrics.Metrics
	cache        *cache.Store
	cfg          config.SchedulerConfig
}

// NewGeneratorService wires generator dependencies.
func NewGeneratorService(
	curriculum curriculumReader,
	teachers teacherReader,
	classGroups classGroupReader,
	rooms roomReader,
	availability availabilityReader,
	drafts draftStore,
	lessons lessonStore,
	tx txProvider,
	validate *validator.Validate,
	logger *zap.Logger,
	m *metrics.Metrics,
	store *cache.Store,
	cfg config.SchedulerConfig,
) *GeneratorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxSeconds <= 0 {
		cfg.MaxSeconds = 300
	}
	return &GeneratorService{
		curriculum:   curriculum,
		teachers:     teachers,
		classGroups:  classGroups,
		rooms:        rooms,
		availability: availability,
		drafts:       drafts,
		lessons:      lessons,
		tx:           tx,
		validator:    validate,
		logger:       logger,
		metrics:      m,
		cache:        store,
		cfg:          cfg,
	}
}

// Generate runs one generation attempt for a draft. Solver failures come back
// as structured success=false responses; repository failures restore the
// draft status and propagate.
func (s *GeneratorService) Generate(ctx context.Context, draftID int64, req dto.GenerateTimetableRequest) (resp *dto.GenerateTimetableResponse, err error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generation payload")
	}

	draft, err := s.drafts.FindByID(ctx, draftID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable draft not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable draft")
	}

	curriculum, err := s.curriculum.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load curriculum")
	}
	if len(curriculum) == 0 {
		return &dto.GenerateTimetableResponse{
			Success: false,
			Message: "no curriculum",
			DraftID: draftID,
			Status:  cpsat.StatusUnknown.String(),
		}, nil
	}

	prevStatus := draft.Status
	if err := s.drafts.UpdateStatus(ctx, nil, draftID, models.DraftStatusInProgress); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark draft in progress")
	}
	s.invalidate(ctx, draftID)

	// From here on repository failures before extraction restore the pre-call
	// status; extraction failures and anything unexpected send the draft back
	// to DRAFT with no lessons.
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("generation panic", zap.Int64("draft_id", draftID), zap.Any("panic", r))
			s.rollback(ctx, draftID, models.DraftStatusDraft)
			resp = &dto.GenerateTimetableResponse{
				Success: false,
				Message: fmt.Sprintf("failed to generate timetable: %v", r),
				DraftID: draftID,
				Status:  cpsat.StatusUnknown.String(),
			}
			err = nil
		}
	}()

	if err := s.lessons.DeleteByDraft(ctx, nil, draftID); err != nil {
		s.rollback(ctx, draftID, prevStatus)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear previous lessons")
	}

	snap, err := s.snapshot(ctx, curriculum)
	if err != nil {
		s.rollback(ctx, draftID, prevStatus)
		return nil, err
	}

	opts := s.resolveOptions(req)

	buildStart := time.Now()
	tm := buildTimetableModel(snap, opts)
	s.metrics.RecordModelBuild(time.Since(buildStart).Seconds())

	budget := time.Duration(s.cfg.MaxSeconds) * time.Second
	if req.MaxSeconds > 0 {
		budget = time.Duration(req.MaxSeconds) * time.Second
	}

	s.logger.Info("solving timetable model",
		zap.Int64("draft_id", draftID),
		zap.Int("variables", tm.model.NumVars()),
		zap.Int("curriculum_rows", len(curriculum)),
		zap.Duration("budget", budget),
	)

	result := cpsat.Solve(ctx, tm.model, cpsat.Options{MaxDuration: budget})
	total := snap.totalLessons()

	if result.Status == cpsat.StatusOptimal || result.Status == cpsat.StatusFeasible {
		return s.extract(ctx, draftID, draft.Name, snap, tm, result, total)
	}

	pendencies := diagnose(snap, total, 0, result.Status)
	if err := s.persistStats(ctx, draftID, models.DraftStatusInProgress, total, 0, pendencies, 0); err != nil {
		s.rollback(ctx, draftID, prevStatus)
		return nil, err
	}
	s.metrics.RecordRun(result.Status.String(), result.Elapsed.Seconds(), 0, 0)

	return &dto.GenerateTimetableResponse{
		Success:        false,
		Message:        "unable to generate a legal timetable",
		DraftID:        draftID,
		Status:         result.Status.String(),
		TotalLessons:   total,
		PlacedLessons:  0,
		QualityScore:   0,
		ElapsedSeconds: result.Elapsed.Seconds(),
		Pendencies:     pendencies,
	}, nil
}

// snapshot loads the rest of the domain after the curriculum read.
func (s *GeneratorService) snapshot(ctx context.Context, curriculum []models.CurriculumRow) (*domainSnapshot, error) {
	teachers, err := s.teachers.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teachers")
	}
	classGroups, err := s.classGroups.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class groups")
	}
	rooms, err := s.rooms.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	availability, err := s.availability.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher availability")
	}
	return &domainSnapshot{
		Curriculum:   curriculum,
		Teachers:     teachers,
		ClassGroups:  classGroups,
		Rooms:        rooms,
		Availability: availability,
	}, nil
}

// extract decodes the solver assignment and persists lessons plus draft
// statistics in one transaction.
func (s *GeneratorService) extract(
	ctx context.Context,
	draftID int64,
	draftName string,
	snap *domainSnapshot,
	tm *timetableModel,
	result *cpsat.Result,
	total int,
) (*dto.GenerateTimetableResponse, error) {
	assignments := decodeAssignments(draftID, snap, tm, result)
	placed := len(assignments)

	status := models.DraftStatusInProgress
	if placed == total {
		status = models.DraftStatusCompleted
	}

	pendencies := diagnose(snap, total, placed, result.Status)
	score := qualityScore(total, placed, assignments, snap.Teachers)

	raw, err := json.Marshal(pendencies)
	if err != nil {
		s.rollback(ctx, draftID, models.DraftStatusDraft)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode pendencies")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		s.rollback(ctx, draftID, models.DraftStatusDraft)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin extraction transaction")
	}

	if err := s.writeSolution(ctx, tx, draftID, status, assignments, total, placed, raw, score); err != nil {
		_ = tx.Rollback()
		s.rollback(ctx, draftID, models.DraftStatusDraft)
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		s.rollback(ctx, draftID, models.DraftStatusDraft)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit extraction transaction")
	}

	s.invalidate(ctx, draftID)
	s.metrics.RecordRun(result.Status.String(), result.Elapsed.Seconds(), placed, score)
	s.logger.Info("timetable generated",
		zap.Int64("draft_id", draftID),
		zap.String("draft", draftName),
		zap.String("status", result.Status.String()),
		zap.Int("placed", placed),
		zap.Int("total", total),
		zap.Int("score", score),
		zap.Int64("nodes", result.Nodes),
	)

	message := "timetable generated successfully"
	if len(pendencies) > 0 {
		message = fmt.Sprintf("timetable generated with %d pendency(ies)", len(pendencies))
	}

	return &dto.GenerateTimetableResponse{
		Success:        placed == total,
		Message:        message,
		DraftID:        draftID,
		Status:         result.Status.String(),
		TotalLessons:   total,
		PlacedLessons:  placed,
		QualityScore:   score,
		ElapsedSeconds: result.Elapsed.Seconds(),
		Pendencies:     pendencies,
	}, nil
}

func (s *GeneratorService) writeSolution(
	ctx context.Context,
	tx *sqlx.Tx,
	draftID int64,
	status models.DraftStatus,
	assignments []models.LessonAssignment,
	total, placed int,
	pendencies types.JSONText,
	score int,
) error {
	if err := s.lessons.DeleteByDraft(ctx, tx, draftID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear lessons")
	}
	if err := s.lessons.InsertBatch(ctx, tx, assignments); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist lessons")
	}
	if err := s.drafts.UpdateStats(ctx, tx, draftID, status, total, placed, pendencies, score); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update draft statistics")
	}
	return nil
}

func (s *GeneratorService) persistStats(ctx context.Context, draftID int64, status models.DraftStatus, total, placed int, pendencies []models.Pendency, score int) error {
	raw, err := json.Marshal(pendencies)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode pendencies")
	}
	if err := s.drafts.UpdateStats(ctx, nil, draftID, status, total, placed, raw, score); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update draft statistics")
	}
	return nil
}

// rollback best-effort restores a draft's status after a failed run.
func (s *GeneratorService) rollback(ctx context.Context, draftID int64, status models.DraftStatus) {
	if err := s.drafts.UpdateStatus(ctx, nil, draftID, status); err != nil {
		s.logger.Error("failed to roll back draft status", zap.Int64("draft_id", draftID), zap.Error(err))
	}
}

func (s *GeneratorService) invalidate(ctx context.Context, draftID int64) {
	s.cache.Delete(ctx, lessonsCacheKey(draftID))
}

func (s *GeneratorService) resolveOptions(req dto.GenerateTimetableRequest) buildOptions {
	opts := buildOptions{
		LimitGaps:           s.cfg.LimitGaps,
		RespectTransit:      s.cfg.RespectTransit,
		UniformDistribution: s.cfg.UniformDistribution,
	}
	if req.LimitGaps != nil {
		opts.LimitGaps = *req.LimitGaps
	}
	if req.RespectTransit != nil {
		opts.RespectTransit = *req.RespectTransit
	}
	if req.UniformDistribution != nil {
		opts.UniformDistribution = *req.UniformDistribution
	}
	return opts
}

// decodeAssignments maps true variables back to concrete lessons on the grid.
func decodeAssignments(draftID int64, snap *domainSnapshot, tm *timetableModel, result *cpsat.Result) []models.LessonAssignment {
	var assignments []models.LessonAssignment
	for _, lv := range tm.vars {
		if !result.Value(lv.id) {
			continue
		}
		row := snap.Curriculum[lv.rowIdx]
		room := snap.Rooms[lv.roomIdx]
		assignments = append(assignments, models.LessonAssignment{
			DraftID:      draftID,
			ClassGroupID: row.ClassGroupID,
			SubjectID:    row.SubjectID,
			TeacherID:    row.TeacherID,
			RoomID:       room.ID,
			Day:          models.GridDays[lv.day],
			StartTime:    models.PeriodStart(lv.period),
			EndTime:      models.PeriodEnd(lv.period),
			Ordinal:      lv.period + 1,
		})
	}
	return assignments
}

func lessonsCacheKey(draftID int64) string {
	return fmt.Sprintf("draft:%d:lessons", draftID)
}
