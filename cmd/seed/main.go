// Command seed provisions the schema and loads a small demonstration dataset:
// two sites, a handful of rooms, five teachers, three class groups and a full
// weekly curriculum, plus one empty draft ready for generation.
package main

import (
	"context"
	"log"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/uraniaedu/urania-api/internal/models"
	"github.com/uraniaedu/urania-api/internal/repository"
	"github.com/uraniaedu/urania-api/pkg/config"
	"github.com/uraniaedu/urania-api/pkg/database"
	"github.com/uraniaedu/urania-api/pkg/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS sites (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS rooms (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	type TEXT NOT NULL DEFAULT 'REGULAR',
	capacity INT NOT NULL DEFAULT 30,
	site_id BIGINT NOT NULL REFERENCES sites(id),
	active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS teachers (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	max_weekly_load INT NOT NULL DEFAULT 40,
	activity_hours INT NOT NULL DEFAULT 0,
	max_consecutive INT NOT NULL DEFAULT 3,
	max_daily INT NOT NULL DEFAULT 6,
	transit_minutes INT NOT NULL DEFAULT 0,
	active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS class_groups (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	shift TEXT NOT NULL DEFAULT 'MORNING',
	active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS subjects (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	color TEXT NOT NULL DEFAULT '#3b82f6',
	active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS curriculum_rows (
	id BIGSERIAL PRIMARY KEY,
	class_group_id BIGINT NOT NULL REFERENCES class_groups(id),
	subject_id BIGINT NOT NULL REFERENCES subjects(id),
	teacher_id BIGINT NOT NULL REFERENCES teachers(id),
	lessons_per_week INT NOT NULL CHECK (lessons_per_week >= 1),
	active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS teacher_availability (
	id BIGSERIAL PRIMARY KEY,
	teacher_id BIGINT NOT NULL REFERENCES teachers(id),
	day TEXT NOT NULL,
	available BOOLEAN NOT NULL DEFAULT TRUE,
	start_time TEXT NOT NULL DEFAULT '07:30',
	end_time TEXT NOT NULL DEFAULT '12:30',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS timetable_drafts (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'DRAFT',
	total_lessons INT NOT NULL DEFAULT 0,
	placed_lessons INT NOT NULL DEFAULT 0,
	pendencies JSONB,
	quality_score INT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS lesson_assignments (
	id BIGSERIAL PRIMARY KEY,
	draft_id BIGINT NOT NULL REFERENCES timetable_drafts(id) ON DELETE CASCADE,
	class_group_id BIGINT NOT NULL,
	subject_id BIGINT NOT NULL,
	teacher_id BIGINT NOT NULL,
	room_id BIGINT NOT NULL,
	day TEXT NOT NULL,
	start_time TEXT NOT NULL,
	end_time TEXT NOT NULL,
	ordinal INT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_lesson_assignments_draft ON lesson_assignments (draft_id);
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck
	sugar := logr.Sugar()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		sugar.Fatalw("failed to initialise database", "error", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		sugar.Fatalw("failed to apply schema", "error", err)
	}
	sugar.Infow("schema applied")

	var existing int
	if err := db.GetContext(ctx, &existing, `SELECT COUNT(*) FROM class_groups`); err != nil {
		sugar.Fatalw("failed to inspect database", "error", err)
	}
	if existing > 0 {
		sugar.Infow("database already seeded, skipping")
		return
	}

	if err := seed(ctx, db); err != nil {
		sugar.Fatalw("failed to seed demo data", "error", err)
	}

	draftRepo := repository.NewDraftRepository(db)
	draftID, err := draftRepo.Create(ctx, "2026 first semester")
	if err != nil {
		sugar.Fatalw("failed to create draft", "error", err)
	}
	sugar.Infow("demo data loaded", "draft_id", draftID)
}

func seed(ctx context.Context, db *sqlx.DB) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	var mainSite, annexSite int64
	if err := tx.QueryRowxContext(ctx, `INSERT INTO sites (name) VALUES ('Main campus') RETURNING id`).Scan(&mainSite); err != nil {
		return err
	}
	if err := tx.QueryRowxContext(ctx, `INSERT INTO sites (name) VALUES ('Annex') RETURNING id`).Scan(&annexSite); err != nil {
		return err
	}

	rooms := []struct {
		name     string
		roomType models.RoomType
		capacity int
		site     int64
	}{
		{"Room 101", models.RoomRegular, 35, mainSite},
		{"Room 102", models.RoomRegular, 35, mainSite},
		{"Science lab", models.RoomLab, 25, mainSite},
		{"Gymnasium", models.RoomGym, 60, annexSite},
	}
	for _, room := range rooms {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO rooms (name, type, capacity, site_id) VALUES ($1, $2, $3, $4)`,
			room.name, room.roomType, room.capacity, room.site); err != nil {
			return err
		}
	}

	teachers := []struct {
		name        string
		weekly      int
		activity    int
		consecutive int
		daily       int
		transit     int
	}{
		{"Ana Souza", 40, 8, 3, 5, 0},
		{"Bruno Lima", 30, 6, 4, 6, 60},
		{"Carla Mendes", 40, 0, 3, 5, 0},
		{"Diego Alves", 20, 4, 2, 4, 0},
		{"Elisa Castro", 40, 10, 3, 6, 30},
	}
	teacherIDs := make([]int64, 0, len(teachers))
	for _, t := range teachers {
		var id int64
		if err := tx.QueryRowxContext(ctx,
			`INSERT INTO teachers (name, max_weekly_load, activity_hours, max_consecutive, max_daily, transit_minutes)
VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
			t.name, t.weekly, t.activity, t.consecutive, t.daily, t.transit).Scan(&id); err != nil {
			return err
		}
		teacherIDs = append(teacherIDs, id)
	}

	groups := []string{"6A", "6B", "7A"}
	groupIDs := make([]int64, 0, len(groups))
	for _, name := range groups {
		var id int64
		if err := tx.QueryRowxContext(ctx,
			`INSERT INTO class_groups (name, shift) VALUES ($1, 'MORNING') RETURNING id`, name).Scan(&id); err != nil {
			return err
		}
		groupIDs = append(groupIDs, id)
	}

	subjects := []struct {
		name  string
		color string
	}{
		{"Mathematics", "#ef4444"},
		{"Portuguese", "#3b82f6"},
		{"Science", "#22c55e"},
		{"History", "#eab308"},
		{"Physical education", "#a855f7"},
	}
	subjectIDs := make([]int64, 0, len(subjects))
	for _, subject := range subjects {
		var id int64
		if err := tx.QueryRowxContext(ctx,
			`INSERT INTO subjects (name, color) VALUES ($1, $2) RETURNING id`, subject.name, subject.color).Scan(&id); err != nil {
			return err
		}
		subjectIDs = append(subjectIDs, id)
	}

	// Every class group gets the full set of subjects; lessons per week vary
	// by discipline the way the demo school runs them.
	lessonsPerWeek := []int{5, 5, 3, 2, 2}
	for _, groupID := range groupIDs {
		for i, subjectID := range subjectIDs {
			teacherID := teacherIDs[i%len(teacherIDs)]
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO curriculum_rows (class_group_id, subject_id, teacher_id, lessons_per_week)
VALUES ($1, $2, $3, $4)`,
				groupID, subjectID, teacherID, lessonsPerWeek[i]); err != nil {
				return err
			}
		}
	}

	// Ana is out on Mondays, Diego on Fridays.
	availability := []struct {
		teacher int64
		day     string
	}{
		{teacherIDs[0], models.DayMon},
		{teacherIDs[3], models.DayFri},
	}
	for _, row := range availability {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO teacher_availability (teacher_id, day, available) VALUES ($1, $2, FALSE)`,
			row.teacher, row.day); err != nil {
			return err
		}
	}

	return tx.Commit()
}
