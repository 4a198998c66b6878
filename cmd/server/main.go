// Package main runs the project management HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/teamforge/backend/config"
	"github.com/teamforge/backend/internal/auth"
	"github.com/teamforge/backend/internal/comments"
	"github.com/teamforge/backend/internal/companies"
	"github.com/teamforge/backend/internal/dashboard"
	"github.com/teamforge/backend/internal/memberships"
	"github.com/teamforge/backend/internal/middleware"
	"github.com/teamforge/backend/internal/projects"
	"github.com/teamforge/backend/internal/rbac"
	"github.com/teamforge/backend/internal/sprints"
	"github.com/teamforge/backend/internal/tasks"
	"github.com/teamforge/backend/internal/timeentries"
	"github.com/teamforge/backend/internal/worker"
	"github.com/teamforge/backend/internal/workspaces"
	"github.com/teamforge/backend/pkg/database"
	"github.com/teamforge/backend/pkg/queue"
	"github.com/teamforge/backend/pkg/redis"
	"github.com/teamforge/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	resetStore := auth.NewResetStore(rdb.Client, time.Duration(cfg.App.ResetTokenTTLMins)*time.Minute)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, resetStore, jobQueue, cfg.App.FrontendBaseURL, logger)

	// Memberships (the integrity layer every tenant mutation goes through)
	membershipRepo := memberships.NewRepository(pool)
	membershipSvc := memberships.NewService(membershipRepo, logger)
	membershipHandler := memberships.NewHandler(membershipSvc, membershipRepo, authRepo)

	// Companies
	companyRepo := companies.NewRepository(pool)
	companySvc := companies.NewService(companyRepo, authRepo, logger)
	companyHandler := companies.NewHandler(companySvc, authHandler, logger)

	// Workspaces
	workspaceRepo := workspaces.NewRepository(pool)
	workspaceHandler := workspaces.NewHandler(workspaceRepo, membershipRepo, membershipSvc)

	// Projects, sprints, tasks
	projectHandler := projects.NewHandler(projects.NewRepository(pool))
	sprintHandler := sprints.NewHandler(sprints.NewRepository(pool))
	taskHandler := tasks.NewHandler(tasks.NewRepository(pool))

	// Time tracking, comments, dashboard
	timeHandler := timeentries.NewHandler(timeentries.NewRepository(pool))
	commentHandler := comments.NewHandler(comments.NewRepository(pool))
	dashboardHandler := dashboard.NewHandler(dashboard.NewRepository(pool))

	// Email delivery worker
	emailProcessor := worker.NewEmailProcessor(cfg.Email, jobQueue, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/forgot-password", authHandler.ForgotPassword)
		authGroup.POST("/reset-password", authHandler.ResetPassword)
	}

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		api.GET("/auth/me", authHandler.Me)
		api.GET("/users", middleware.RequireSuperAdmin(), authHandler.List)

		// Platform operator surface
		admin := api.Group("/admin", middleware.RequireSuperAdmin())
		{
			admin.POST("/companies", companyHandler.Provision)
			admin.GET("/companies", companyHandler.List)
			admin.POST("/companies/delete-approval", companyHandler.ResolveDelete)
		}

		// Company admin surface
		api.GET("/companies/:companyId", companyHandler.Get)
		api.PATCH("/companies/:companyId", companyHandler.Update)
		api.POST("/companies/:companyId/delete-request", companyHandler.RequestDelete)

		// Workspaces (membership-independent). Join lives outside the
		// /workspaces/:id subtree since the router rejects a static segment
		// next to the wildcard.
		api.GET("/workspaces", workspaceHandler.ListMine)
		api.POST("/join", workspaceHandler.Join)

		// Everything below resolves the caller's membership first; role and
		// capability checks hang off that resolved membership.
		ws := api.Group("/workspaces/:id", middleware.RequireMember(membershipRepo))
		{
			ws.GET("", workspaceHandler.Get)
			ws.PATCH("", middleware.RequirePermission(rbac.CapWorkspaceEdit), workspaceHandler.Update)
			ws.POST("/invite-code/rotate", middleware.RequirePermission(rbac.CapSettingsManage), workspaceHandler.RotateInviteCode)

			// Members
			ws.GET("/members", membershipHandler.List)
			ws.POST("/members", middleware.RequirePermission(rbac.CapMemberInvite), membershipHandler.Invite)
			ws.PATCH("/members/:memberId/role", middleware.RequirePermission(rbac.CapMemberRoleChange), membershipHandler.ChangeRole)
			// Removal stays open at the route level: members may remove
			// themselves, and the service enforces admin rights for the rest.
			ws.DELETE("/members/:memberId", membershipHandler.Remove)

			// Projects
			ws.GET("/projects", projectHandler.List)
			ws.POST("/projects", middleware.RequirePermission(rbac.CapProjectCreate), projectHandler.Create)
			ws.GET("/projects/:projectId", projectHandler.Get)
			ws.PATCH("/projects/:projectId", middleware.RequirePermission(rbac.CapProjectEdit), projectHandler.Update)
			ws.DELETE("/projects/:projectId", middleware.RequirePermission(rbac.CapProjectDelete), projectHandler.Delete)

			// Sprints
			ws.GET("/projects/:projectId/sprints", sprintHandler.ListByProject)
			ws.POST("/projects/:projectId/sprints", middleware.RequirePermission(rbac.CapSprintCreate), sprintHandler.Create)
			ws.GET("/sprints/:sprintId/tasks", taskHandler.ListBySprint)
			ws.PATCH("/sprints/:sprintId", middleware.RequirePermission(rbac.CapSprintEdit), sprintHandler.Update)
			ws.DELETE("/sprints/:sprintId", middleware.RequirePermission(rbac.CapSprintDelete), sprintHandler.Delete)

			// Tasks (edit-any vs edit-own is decided in the handler)
			ws.GET("/projects/:projectId/tasks", taskHandler.ListByProject)
			ws.POST("/projects/:projectId/tasks", middleware.RequirePermission(rbac.CapTaskCreate), taskHandler.Create)
			ws.GET("/tasks/:taskId", taskHandler.Get)
			ws.PATCH("/tasks/:taskId", taskHandler.Update)
			ws.DELETE("/tasks/:taskId", middleware.RequirePermission(rbac.CapTaskDelete), taskHandler.Delete)

			// Time tracking
			ws.GET("/tasks/:taskId/time", timeHandler.ListByTask)
			ws.POST("/tasks/:taskId/time", middleware.RequirePermission(rbac.CapTimeLog), timeHandler.Create)
			ws.POST("/time/:entryId/approve", middleware.RequirePermission(rbac.CapTimeApprove), timeHandler.Approve)
			ws.DELETE("/time/:entryId", timeHandler.Delete)

			// Comments
			ws.GET("/tasks/:taskId/comments", commentHandler.ListByTask)
			ws.POST("/tasks/:taskId/comments", commentHandler.Create)
			ws.PATCH("/comments/:commentId", commentHandler.Update)
			ws.DELETE("/comments/:commentId", commentHandler.Delete)

			// Dashboard
			ws.GET("/dashboard", middleware.RequirePermission(rbac.CapDashboardView), dashboardHandler.Summary)
			ws.GET("/dashboard/members", middleware.RequirePermission(rbac.CapDashboardFull), dashboardHandler.MemberLoads)
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// In-process email worker. The standalone cmd/worker binary covers
	// deployments that scale delivery separately.
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go emailProcessor.Run(workerCtx)

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
