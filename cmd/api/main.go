package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pollwise/config"
	"pollwise/internal/domain/contest"
	"pollwise/internal/domain/notification"
	"pollwise/internal/domain/poll"
	"pollwise/internal/domain/settings"
	"pollwise/internal/domain/share"
	"pollwise/internal/domain/user"
	"pollwise/internal/domain/vote"
	"pollwise/internal/handler"
	"pollwise/internal/middleware"
	"pollwise/internal/redis"
	"pollwise/internal/repository"
	"pollwise/internal/scheduler"
	"pollwise/internal/services"
	"pollwise/internal/storage"
	"pollwise/pkg/database"
	"pollwise/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()

	mode := logger.DevelopmentMode
	if cfg.AppMode == "release" || cfg.AppMode == "production" {
		mode = logger.ProductionMode
		gin.SetMode(gin.ReleaseMode)
	}
	l := logger.New(mode)
	logger.SetGlobalLogger(l)

	database.Connect(cfg)
	defer database.Close()

	if err := database.DB.AutoMigrate(
		&user.User{},
		&user.RoleInvitation{},
		&user.PopupDismissal{},
		&poll.Poll{},
		&vote.Vote{},
		&share.ShareEvent{},
		&contest.Winner{},
		&notification.PendingNotification{},
		&settings.Settings{},
	); err != nil {
		log.Fatalf("Failed to apply GORM migrations: %v", err)
	}

	redis.Initialize(redis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
	})
	redisClient := redis.GetClient()
	resultsCache := redis.NewResultsCache(redisClient)
	rateLimiter := redis.NewRateLimiter(redisClient)
	if err := resultsCache.Ping(context.Background()); err != nil {
		l.Errorf("redis unreachable, caching and rate limits degrade: %v", err)
	}

	// Repositories
	pollRepo := repository.NewPollRepository(database.DB)
	voteRepo := repository.NewVoteRepository(database.DB)
	shareRepo := repository.NewShareRepository(database.DB)
	winnerRepo := repository.NewWinnerRepository(database.DB)
	notifRepo := repository.NewNotificationRepository(database.DB)
	userRepo := repository.NewUserRepository(database.DB)
	settingsRepo := repository.NewSettingsRepository(database.DB)

	// Outbound mail
	var mailer services.Mailer
	if cfg.SendgridAPIKey != "" {
		mailer = services.NewSendgridMailer(cfg.SendgridAPIKey, cfg.MailFromName, cfg.MailFromEmail, l)
	} else {
		l.Infof("no Sendgrid key configured, mail goes to the log")
		mailer = services.NewLogMailer(l)
	}

	// Services
	notificationService := services.NewNotificationService(notifRepo, settingsRepo, winnerRepo, mailer, l)
	pollService := services.NewPollService(pollRepo, userRepo, notificationService)
	voteService := services.NewVoteService(pollRepo, voteRepo, settingsRepo, resultsCache)
	shareService := services.NewShareService(pollRepo, shareRepo, settingsRepo)
	contestService := services.NewContestService(pollRepo, voteRepo, winnerRepo, userRepo, notificationService, nil)
	roleService := services.NewRoleService(userRepo, notificationService)
	settingsService := services.NewSettingsService(settingsRepo, resultsCache)
	exportService := services.NewExportService(pollRepo, voteRepo, shareRepo, winnerRepo, settingsRepo)
	authService := services.NewAuthService(userRepo, cfg)

	var uploadService *services.UploadService
	if cfg.S3Bucket != "" {
		s3Client, err := storage.NewClient(context.Background(), storage.S3Config{
			Region:     cfg.S3Region,
			Bucket:     cfg.S3Bucket,
			AccessKey:  cfg.S3AccessKey,
			SecretKey:  cfg.S3SecretKey,
			Endpoint:   cfg.S3Endpoint,
			PublicBase: cfg.S3PublicBase,
		})
		if err != nil {
			log.Fatalf("Failed to set up S3 storage: %v", err)
		}
		uploadService = services.NewUploadService(s3Client)
	} else {
		l.Infof("no S3 bucket configured, image uploads disabled")
		uploadService = services.NewUploadService(nil)
	}

	// Scheduler
	runner := scheduler.NewRunner(l)
	jobs := scheduler.NewJobs(pollRepo, voteRepo, shareRepo, winnerRepo, userRepo, settingsRepo,
		pollService, contestService, notificationService, cfg.AdminUsername, l)
	jobs.RegisterAll(runner,
		time.Duration(cfg.WeeklyJobMin)*time.Minute,
		time.Duration(cfg.ContestJobMin)*time.Minute,
		time.Duration(cfg.RetentionJobMin)*time.Minute,
		time.Duration(cfg.FlushJobMin)*time.Minute,
	)
	runner.Start()
	defer runner.Stop()

	// HTTP
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggingMiddleware(l))
	r.Use(middleware.ErrorHandler(l))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handler.RegisterRoutes(r, handler.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		User:    handler.NewUserHandler(userRepo),
		Poll:    handler.NewPollHandler(pollService),
		Vote:    handler.NewVoteHandler(voteService),
		Share:   handler.NewShareHandler(shareService),
		Contest: handler.NewContestHandler(contestService),
		Upload:  handler.NewUploadHandler(uploadService),
		Role:    handler.NewRoleHandler(roleService),
		Admin:   handler.NewAdminHandler(pollService, settingsService, exportService, runner.Log()),
	}, handler.Middlewares{
		Auth:          middleware.AuthMiddleware(authService),
		OptionalAuth:  middleware.OptionalAuthMiddleware(authService),
		AuthRateLimit: middleware.AuthRateLimitMiddleware(rateLimiter),
		VoteRateLimit: middleware.VoteRateLimitMiddleware(rateLimiter),
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.AppPort),
		Handler: r,
	}

	go func() {
		l.Infof("starting server on port %s", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Infof("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		l.Errorf("server shutdown: %v", err)
	}
}
