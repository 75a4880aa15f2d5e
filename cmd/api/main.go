package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/uraniaedu/urania-api/internal/handler"
	"github.com/uraniaedu/urania-api/internal/repository"
	"github.com/uraniaedu/urania-api/internal/service"
	"github.com/uraniaedu/urania-api/pkg/cache"
	"github.com/uraniaedu/urania-api/pkg/config"
	"github.com/uraniaedu/urania-api/pkg/database"
	"github.com/uraniaedu/urania-api/pkg/logger"
	"github.com/uraniaedu/urania-api/pkg/metrics"
	authmiddleware "github.com/uraniaedu/urania-api/pkg/middleware/auth"
	corsmiddleware "github.com/uraniaedu/urania-api/pkg/middleware/cors"
	reqidmiddleware "github.com/uraniaedu/urania-api/pkg/middleware/requestid"
)

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to initialise database", "error", err)
	}
	defer db.Close()

	var store *cache.Store
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to initialise redis", "error", err)
		}
		defer redisClient.Close()
		store = cache.NewStore(redisClient, cfg.Scheduler.CacheTTL)
	}

	m := metrics.New()

	curriculumRepo := repository.NewCurriculumRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	classGroupRepo := repository.NewClassGroupRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	draftRepo := repository.NewDraftRepository(db)
	lessonRepo := repository.NewLessonRepository(db)

	validate := validator.New()

	generatorSvc := service.NewGeneratorService(
		curriculumRepo,
		teacherRepo,
		classGroupRepo,
		roomRepo,
		availabilityRepo,
		draftRepo,
		lessonRepo,
		db,
		validate,
		logr,
		m,
		store,
		cfg.Scheduler,
	)
	timetableSvc := service.NewTimetableService(
		draftRepo,
		lessonRepo,
		classGroupRepo,
		subjectRepo,
		teacherRepo,
		roomRepo,
		store,
		logr,
	)

	generatorHandler := handler.NewGeneratorHandler(generatorSvc)
	timetableHandler := handler.NewTimetableHandler(timetableSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))

	api := r.Group(cfg.APIPrefix)

	drafts := api.Group("/drafts")
	drafts.GET("/:id", timetableHandler.GetDraft)
	drafts.GET("/:id/lessons", timetableHandler.ListLessons)
	drafts.GET("/:id/export/csv", timetableHandler.ExportCSV)
	drafts.GET("/:id/export/pdf", timetableHandler.ExportPDF)

	protected := drafts.Group("")
	protected.Use(authmiddleware.Middleware(cfg.JWT.Secret))
	protected.POST("/:id/generate", generatorHandler.Generate)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("starting server", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server stopped", "error", err)
	}
}
