package router

import (
	"registry-web/internal/config"
	"registry-web/internal/handler"
	"registry-web/internal/middleware"
	"registry-web/internal/repository"
	"registry-web/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

func SetupAPIRoutes(
	router fiber.Router,
	db *sqlx.DB,
	rdb *redis.Client,
	cfg *config.Config,
) {
	// Repositories
	userRepo := repository.NewUserRepository(db)
	uploadRepo := repository.NewUploadRepository(db)
	recordRepo := repository.NewRecordRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Services
	authService := service.NewAuthService(userRepo, cfg)
	importService := service.NewImportService(service.SQLRecordStore{Repo: recordRepo}, userRepo)
	progressStore := service.NewProgressStore(rdb, cfg.ProgressTTL)

	// Asynq client (optional, only when Redis is available)
	var asynqClient *asynq.Client
	if rdb != nil {
		asynqClient = asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.AsynqRedisAddr,
			Password: cfg.AsynqRedisPassword,
			DB:       cfg.AsynqRedisDB,
		})
	}

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	uploadHandler := handler.NewUploadHandler(uploadRepo, importService, progressStore, asynqClient, cfg)
	recordHandler := handler.NewRecordHandler(recordRepo, importService)
	notificationHandler := handler.NewNotificationHandler(notificationRepo)

	// Public routes
	auth := router.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/register", authHandler.Register)
	auth.Post("/logout", authHandler.Logout)

	// Protected routes
	protected := router.Group("", middleware.AuthMiddleware(cfg))

	protected.Get("/auth/me", authHandler.Me)

	// Upload and import routes
	uploads := protected.Group("/uploads")
	uploads.Post("/", uploadHandler.UploadFile)
	uploads.Get("/", uploadHandler.GetSessions)
	uploads.Get("/:id", uploadHandler.GetSessionDetail)
	uploads.Post("/:id/preview", uploadHandler.PreviewDuplicates)
	uploads.Post("/:id/import", uploadHandler.StartImport)
	uploads.Delete("/:id", uploadHandler.DeleteSession)

	// Job progress routes
	jobs := protected.Group("/jobs")
	jobs.Get("/:jobId/progress", uploadHandler.GetProgress)
	jobs.Get("/:jobId/error-report", uploadHandler.DownloadErrorReport)

	// Record routes
	records := protected.Group("/records")
	records.Get("/owners/suggest", recordHandler.SuggestOwners)
	records.Get("/:entityType", recordHandler.List)
	records.Get("/:entityType/:id", recordHandler.Get)

	// Notification routes
	notifications := protected.Group("/notifications")
	notifications.Get("/", notificationHandler.List)
	notifications.Put("/:id/read", notificationHandler.MarkRead)
}
