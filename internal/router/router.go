// Package router assembles the gin engine of the grading API.
package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-grading-api/internal/handler"
	"github.com/noah-isme/sma-grading-api/internal/middleware"
	"github.com/noah-isme/sma-grading-api/internal/service"
	"github.com/noah-isme/sma-grading-api/pkg/config"
	"github.com/noah-isme/sma-grading-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-grading-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-grading-api/pkg/middleware/requestid"
)

// Handlers groups the HTTP handlers mounted by New.
type Handlers struct {
	Teachers       *handler.TeacherHandler
	Classes        *handler.ClassHandler
	Students       *handler.StudentHandler
	Subjects       *handler.SubjectHandler
	Terms          *handler.TermHandler
	Skills         *handler.SkillHandler
	Scores         *handler.ScoreHandler
	QuestionScores *handler.QuestionScoreHandler
	Metrics        *handler.MetricsHandler
}

// New builds the engine with the shared middleware chain and every route.
func New(cfg *config.Config, logr *zap.Logger, metrics *service.MetricsService, h Handlers) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	teachers := api.Group("/teachers")
	teachers.GET("", h.Teachers.List)
	teachers.GET("/:id", h.Teachers.Get)
	teachers.GET("/cpf/:cpf", h.Teachers.GetByCPF)
	teachers.POST("", h.Teachers.Create)
	teachers.PUT("/:id", h.Teachers.Update)
	teachers.DELETE("/:id", h.Teachers.Delete)

	classes := api.Group("/classes")
	classes.GET("", h.Classes.List)
	classes.GET("/:id", h.Classes.Get)
	classes.GET("/teacher/:teacherId", h.Classes.ListByTeacher)
	classes.POST("", h.Classes.Create)
	classes.PUT("/:id", h.Classes.Update)
	classes.DELETE("/:id", h.Classes.Delete)

	students := api.Group("/students")
	students.GET("", h.Students.List)
	students.GET("/:id", h.Students.Get)
	students.GET("/:id/scores/:termId", h.Students.TermScores)
	students.GET("/:id/skills/:termId", h.Students.TermSkills)
	students.GET("/class/:classId", h.Students.ListByClass)
	students.GET("/term/:termId/teacher/:teacherId", h.Students.ListByTermAndTeacher)
	students.GET("/with-scores/:classId/:termId", h.Students.WithScores)
	students.POST("", h.Students.Create)
	students.PUT("/:id", h.Students.Update)
	students.DELETE("/:id", h.Students.Delete)

	subjects := api.Group("/subjects")
	subjects.GET("", h.Subjects.List)
	subjects.GET("/:id", h.Subjects.Get)
	subjects.GET("/class/:classId", h.Subjects.ListByClass)
	subjects.GET("/terms", h.Subjects.ListWithTerms)
	subjects.GET("/terms/class/:classId", h.Subjects.ListWithTermsByClass)
	subjects.POST("", h.Subjects.Create)
	subjects.PUT("/:id", h.Subjects.Update)
	subjects.DELETE("/:id", h.Subjects.Delete)

	terms := api.Group("/terms")
	terms.GET("/:id", h.Terms.Get)
	terms.GET("/subject/:subjectId", h.Terms.ListBySubject)
	terms.GET("/class/:classId", h.Terms.ListByClass)
	terms.POST("", h.Terms.Create)
	terms.PUT("/:id", h.Terms.Update)
	terms.DELETE("/:id", h.Terms.Delete)

	skills := api.Group("/skills")
	skills.GET("", h.Skills.List)
	skills.GET("/:id", h.Skills.Get)
	skills.GET("/student/:studentId", h.Skills.ListByStudent)
	skills.GET("/stats/:classId/:termId/:kind", h.Skills.Stats)
	skills.GET("/students/:classId/:termId/:kind", h.Skills.StudentStats)
	skills.GET("/top5/:classId/:termId/:kind", h.Skills.Top5)
	skills.GET("/top5-errors/:classId/:termId", h.Skills.Top5Errors)
	skills.POST("", h.Skills.Create)
	skills.POST("/create-if-not-exists", h.Skills.CreateIfNotExists)
	skills.PUT("/:id", h.Skills.Update)
	skills.DELETE("/:id", h.Skills.Delete)

	scores := api.Group("/scores")
	scores.POST("/:studentId/:termId", h.Scores.Submit)
	scores.POST("/:studentId/:termId/subject/:subjectId/class/:classId", h.Scores.SubmitForSubject)
	scores.PUT("/:studentId/:termId", h.Scores.Update)
	scores.PUT("/:studentId/:termId/:kind", h.Scores.Update)
	scores.GET("/average/:classId/:termId/:kind", h.Scores.Average)
	scores.GET("/total/:classId/:termId", h.Scores.Total)
	scores.GET("/chart/:classId/:termId", h.Scores.Chart)
	scores.GET("/student/:studentId", h.Scores.ByStudent)
	scores.GET("/student/:studentId/term/:termId/class/:classId", h.Scores.ByStudentClass)
	scores.GET("/student/:studentId/term/:termId/subject/:subjectId/class/:classId", h.Scores.ByStudentSubject)
	scores.GET("/class/:classId/term/:termId/subject/:subjectId", h.Scores.ClassRoster)
	scores.GET("/kind/:kind/class/:classId/term/:termId/subject/:subjectId", h.Scores.ByKind)
	scores.GET("/export/:classId/:termId", h.Scores.Export)

	questions := api.Group("/question-scores")
	questions.POST("/:studentId/:termId", h.QuestionScores.Submit)
	questions.POST("/:studentId/:termId/:kind", h.QuestionScores.Submit)
	questions.GET("/:studentId/:termId", h.QuestionScores.Get)

	return r
}
