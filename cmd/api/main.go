package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-grading-api/api/swagger"
	"github.com/noah-isme/sma-grading-api/internal/handler"
	"github.com/noah-isme/sma-grading-api/internal/repository"
	"github.com/noah-isme/sma-grading-api/internal/router"
	"github.com/noah-isme/sma-grading-api/internal/service"
	"github.com/noah-isme/sma-grading-api/migrations"
	"github.com/noah-isme/sma-grading-api/pkg/config"
	"github.com/noah-isme/sma-grading-api/pkg/database"
	"github.com/noah-isme/sma-grading-api/pkg/logger"
	"github.com/noah-isme/sma-grading-api/pkg/observability"
)

// @title SMA Grading API
// @version 1.0.0
// @description Scores, question scores and skill statistics for school classes.
// @BasePath /
// @schemes http

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

	flush, err := observability.InitSentry(cfg.Sentry.DSN, cfg.Env, cfg.Sentry.Release)
	if err != nil {
		logr.Warn("sentry disabled", zap.Error(err))
	} else {
		defer flush()
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(context.Background(), db, migrations.FS); err != nil {
			logr.Fatal("failed to migrate database", zap.Error(err))
		}
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	teacherRepo := repository.NewTeacherRepository(db)
	classRepo := repository.NewClassRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	termRepo := repository.NewTermRepository(db)
	skillRepo := repository.NewSkillRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	scoreRepo := repository.NewScoreRepository(db)
	questionRepo := repository.NewQuestionScoreRepository(db)
	reportRepo := repository.NewReportRepository(db)

	teacherSvc := service.NewTeacherService(teacherRepo, validate, logr)
	classSvc := service.NewClassService(classRepo, teacherRepo, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, validate, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, validate, logr)
	termSvc := service.NewTermService(termRepo, validate, logr)
	skillSvc := service.NewSkillService(skillRepo, validate, logr)
	scoreSvc := service.NewScoreService(scoreRepo, enrollmentRepo, subjectRepo, metrics, validate, logr)
	questionSvc := service.NewQuestionScoreService(questionRepo, skillRepo, metrics, validate, logr)
	reportSvc := service.NewReportService(reportRepo, metrics, logr)
	exportSvc := service.NewExportService(reportRepo, metrics, logr, nil, nil, nil)

	r := router.New(cfg, logr, metrics, router.Handlers{
		Teachers:       handler.NewTeacherHandler(teacherSvc),
		Classes:        handler.NewClassHandler(classSvc),
		Students:       handler.NewStudentHandler(studentSvc, reportSvc, skillSvc),
		Subjects:       handler.NewSubjectHandler(subjectSvc),
		Terms:          handler.NewTermHandler(termSvc),
		Skills:         handler.NewSkillHandler(skillSvc, reportSvc),
		Scores:         handler.NewScoreHandler(scoreSvc, reportSvc, exportSvc),
		QuestionScores: handler.NewQuestionScoreHandler(questionSvc),
		Metrics:        handler.NewMetricsHandler(metrics, db),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
