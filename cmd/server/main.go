package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/nidoapp/nido-api/api/swagger"
	"github.com/nidoapp/nido-api/internal/handler"
	"github.com/nidoapp/nido-api/internal/middleware"
	"github.com/nidoapp/nido-api/internal/models"
	"github.com/nidoapp/nido-api/internal/repository"
	"github.com/nidoapp/nido-api/internal/service"
	"github.com/nidoapp/nido-api/pkg/cache"
	"github.com/nidoapp/nido-api/pkg/config"
	"github.com/nidoapp/nido-api/pkg/database"
	"github.com/nidoapp/nido-api/pkg/logger"
	corsmiddleware "github.com/nidoapp/nido-api/pkg/middleware/cors"
	reqidmiddleware "github.com/nidoapp/nido-api/pkg/middleware/requestid"
	"github.com/nidoapp/nido-api/pkg/storage"
)

// @title Nido API
// @version 1.0.0
// @description Daycare management backend: groups, students, attendance, gallery and notices
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.NewUploadStore(cfg.Uploads.Dir, cfg.Uploads.URLPrefix)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare uploads directory", "error", err)
	}

	metricsSvc := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	cacheEnabled := cfg.Cache.Enabled
	if cacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
			cacheEnabled = false
		} else {
			defer redisClient.Close() //nolint:errcheck
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cacheEnabled)

	reclaimer := service.NewFileReclaimer(store, cfg.Uploads.QueueWorkers, cfg.Uploads.DeleteRetry, cfg.Uploads.DeleteDelay, logr)
	reclaimer.Start(ctx)
	defer reclaimer.Stop()

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	groupTeacherRepo := repository.NewGroupTeacherRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, logr)
	groupSvc := service.NewGroupService(groupRepo, cacheSvc, logr)
	assignmentSvc := service.NewAssignmentService(groupTeacherRepo, groupRepo, logr)
	studentSvc := service.NewStudentService(studentRepo, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, groupRepo, logr)
	activitySvc := service.NewActivityService(activityRepo, store, reclaimer, cacheSvc, metricsSvc, cfg.Uploads.MaxFileSize, logr)
	scheduleSvc := service.NewScheduleService(scheduleRepo, store, reclaimer, metricsSvc, cfg.Uploads.MaxFileSize, logr)
	announcementSvc := service.NewAnnouncementService(announcementRepo, logr)

	seedCtx, cancelSeed := context.WithTimeout(ctx, 10*time.Second)
	if err := authSvc.SeedAdmin(seedCtx, cfg.Admin.Username, cfg.Admin.Password); err != nil {
		cancelSeed()
		logr.Sugar().Fatalw("failed to seed admin account", "error", err)
	}
	cancelSeed()

	retentionSvc := service.NewRetentionService(attendanceRepo, activityRepo, reclaimer, metricsSvc, cacheSvc, service.RetentionConfig{
		AttendanceWindow:   cfg.Retention.AttendanceWindow,
		AttendanceInterval: cfg.Retention.AttendanceInterval,
		ActivityWindow:     cfg.Retention.ActivityWindow,
		ActivityInterval:   cfg.Retention.ActivityInterval,
	}, logr)
	retentionSvc.Start(ctx)

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	groupHandler := handler.NewGroupHandler(groupSvc, assignmentSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	activityHandler := handler.NewActivityHandler(activitySvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	announcementHandler := handler.NewAnnouncementHandler(announcementSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.MaxMultipartMemory = cfg.Uploads.MaxFileSize

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.POST("/login", authHandler.Login)
	r.Static(cfg.Uploads.URLPrefix, store.Dir())

	api := r.Group(cfg.APIPrefix)
	api.POST("/register", authHandler.Register)

	auth := api.Group("")
	auth.Use(middleware.JWT(authSvc))
	auth.GET("/me", authHandler.Me)

	staff := auth.Group("")
	staff.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher))
	{
		staff.GET("/groups", groupHandler.List)
		staff.GET("/groups/:id/teachers", groupHandler.ListTeachers)
		staff.GET("/students", studentHandler.List)
		staff.POST("/students", studentHandler.Create)
		staff.DELETE("/students/:id", studentHandler.Delete)
		staff.POST("/attendance", attendanceHandler.Record)
		staff.GET("/attendance/history", attendanceHandler.History)
		staff.GET("/attendance/history/export", attendanceHandler.ExportHistory)
		staff.GET("/activities", activityHandler.List)
		staff.POST("/activities", activityHandler.Upload)
		staff.DELETE("/activities/:id", activityHandler.Delete)
		staff.GET("/schedules", scheduleHandler.List)
		staff.POST("/schedules", scheduleHandler.Upload)
		staff.DELETE("/schedules/:id", scheduleHandler.Delete)
		staff.GET("/announcement", announcementHandler.Latest)
		staff.POST("/announcement", announcementHandler.Publish)
		staff.DELETE("/announcement", announcementHandler.Clear)
	}

	admin := auth.Group("")
	admin.Use(middleware.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/users/pending", userHandler.ListPending)
		admin.GET("/users/teachers", userHandler.ListTeachers)
		admin.POST("/users/approve/:id", userHandler.Approve)
		admin.DELETE("/users/:id", userHandler.Delete)
		admin.POST("/groups", groupHandler.Create)
		admin.DELETE("/groups/:id", groupHandler.Delete)
		admin.POST("/groups/:id/teachers", groupHandler.AssignTeacher)
		admin.DELETE("/groups/:id/teachers/:userId", groupHandler.UnassignTeacher)
	}

	registerSPAFallback(r, cfg)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

// registerSPAFallback serves the built client bundle on any unmatched route,
// with index.html as the catch-all so client-side routing works on refresh.
func registerSPAFallback(r *gin.Engine, cfg *config.Config) {
	index := filepath.Join(cfg.SPA.Dir, "index.html")
	r.NoRoute(func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.HasPrefix(path, cfg.APIPrefix+"/") || strings.HasPrefix(path, cfg.Uploads.URLPrefix+"/") {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "route not found", "status": http.StatusNotFound}})
			return
		}

		candidate := filepath.Join(cfg.SPA.Dir, filepath.Clean("/"+path))
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			c.File(candidate)
			return
		}

		c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
		c.Header("Pragma", "no-cache")
		c.Header("Expires", "0")
		c.File(index)
	})
}
