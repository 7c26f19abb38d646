package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/linguaschool/admin-api/internal/handler"
	"github.com/linguaschool/admin-api/internal/middleware"
	"github.com/linguaschool/admin-api/internal/repository"
	"github.com/linguaschool/admin-api/internal/service"
	"github.com/linguaschool/admin-api/pkg/cache"
	"github.com/linguaschool/admin-api/pkg/config"
	"github.com/linguaschool/admin-api/pkg/database"
	"github.com/linguaschool/admin-api/pkg/logger"
	corsmiddleware "github.com/linguaschool/admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/linguaschool/admin-api/pkg/middleware/requestid"
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, calendar snapshots disabled", "error", err)
		redisClient = nil
	}
	snapshots := cache.NewSnapshotStore(redisClient, "calendar:", cfg.Calendar.SnapshotTTL)

	validate := validator.New()

	languageRepo := repository.NewLanguageRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	classRepo := repository.NewClassRepository(db)
	blockRepo := repository.NewUnavailabilityRepository(db)
	weeklyRepo := repository.NewWeeklyAvailabilityRepository(db)

	metricsSvc := service.NewMetricsService()
	calendarSvc := service.NewCalendarService(classRepo, blockRepo, teacherRepo, snapshots, logr)
	calendarSvc.SetMetrics(metricsSvc)

	languageSvc := service.NewLanguageService(languageRepo)
	teacherSvc := service.NewTeacherService(teacherRepo, classRepo, calendarSvc, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, calendarSvc, validate, logr)
	classSvc := service.NewClassService(classRepo, teacherRepo, languageRepo, calendarSvc, validate, logr)
	blockSvc := service.NewUnavailabilityService(blockRepo, teacherRepo, calendarSvc, validate, logr)
	weeklySvc := service.NewWeeklyAvailabilityService(weeklyRepo, teacherRepo, studentRepo, calendarSvc, validate, logr)

	languageHandler := handler.NewLanguageHandler(languageSvc)
	teacherHandler := handler.NewTeacherHandler(teacherSvc, weeklySvc)
	studentHandler := handler.NewStudentHandler(studentSvc, weeklySvc)
	classHandler := handler.NewClassHandler(classSvc)
	blockHandler := handler.NewUnavailabilityHandler(blockSvc)
	weeklyHandler := handler.NewWeeklyAvailabilityHandler(weeklySvc)
	calendarHandler := handler.NewCalendarHandler(calendarSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(corsmiddleware.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedHeaders: cfg.CORS.AllowedHeaders,
	}))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "postgres": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/languages", languageHandler.List)
		api.GET("/languages/:id", languageHandler.Get)

		api.GET("/teachers", teacherHandler.List)
		api.POST("/teachers", teacherHandler.Create)
		api.GET("/teachers/:id", teacherHandler.Get)
		api.PUT("/teachers/:id", teacherHandler.Update)
		api.DELETE("/teachers/:id", teacherHandler.Delete)
		api.GET("/teachers/:id/unavailability", blockHandler.ListForTeacher)
		api.GET("/teachers/:id/weekly-availability", teacherHandler.ListWeeklyAvailability)
		api.PUT("/teachers/:id/weekly-availability", teacherHandler.ReplaceWeeklyAvailability)

		api.GET("/students", studentHandler.List)
		api.POST("/students", studentHandler.Create)
		api.GET("/students/:id", studentHandler.Get)
		api.PUT("/students/:id", studentHandler.Update)
		api.DELETE("/students/:id", studentHandler.Delete)
		api.GET("/students/:id/weekly-availability", studentHandler.ListWeeklyAvailability)
		api.PUT("/students/:id/weekly-availability", studentHandler.ReplaceWeeklyAvailability)

		api.GET("/classes", classHandler.List)
		api.POST("/classes", classHandler.Create)
		api.GET("/classes/:id", classHandler.Get)
		api.PUT("/classes/:id", classHandler.Update)
		api.DELETE("/classes/:id", classHandler.Delete)

		api.GET("/unavailability", blockHandler.List)
		api.POST("/unavailability", blockHandler.Create)
		api.DELETE("/unavailability", blockHandler.DeleteByTeacherAndDate)
		api.DELETE("/unavailability/:id", blockHandler.Delete)

		api.PUT("/weekly-availability/:id", weeklyHandler.UpdateSlot)
		api.DELETE("/weekly-availability/:id", weeklyHandler.DeleteSlot)

		api.GET("/calendar/agenda", calendarHandler.Agenda)
		api.GET("/calendar/days", calendarHandler.Days)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
