package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/ppdb-api/api/swagger"
	"github.com/noah-isme/ppdb-api/internal/handler"
	"github.com/noah-isme/ppdb-api/internal/middleware"
	"github.com/noah-isme/ppdb-api/internal/models"
	"github.com/noah-isme/ppdb-api/internal/repository"
	"github.com/noah-isme/ppdb-api/internal/service"
	"github.com/noah-isme/ppdb-api/pkg/cache"
	"github.com/noah-isme/ppdb-api/pkg/config"
	"github.com/noah-isme/ppdb-api/pkg/database"
	"github.com/noah-isme/ppdb-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/ppdb-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/ppdb-api/pkg/middleware/requestid"
	"github.com/noah-isme/ppdb-api/pkg/storage"
)

// @title PPDB API
// @version 1.0.0
// @description Student admission portal backend
// @BasePath /api
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close() //nolint:errcheck

	uploadStore, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init upload storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Uploads.SignedURLSecret, cfg.Uploads.SignedURLTTL)

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	waveRepo := repository.NewWaveRepository(db)
	regRepo := repository.NewRegistrationRepository(db)
	otpStore := repository.NewOTPStore(redisClient, cfg.OTP.Retention)

	metricsSvc := service.NewMetricsService()
	notificationSvc := service.NewNotificationService(cfg.WhatsApp, cfg.Notify, metricsSvc, logr)
	notifyCtx, cancelNotify := context.WithCancel(context.Background())
	notificationSvc.Start(notifyCtx)
	defer func() {
		cancelNotify()
		notificationSvc.Stop()
	}()

	otpSvc := service.NewOTPService(otpStore, userRepo, notificationSvc, cfg.OTP.TTL, logr)
	authSvc := service.NewAuthService(userRepo, otpSvc, cfg.JWT, validate, logr)
	waveSvc := service.NewWaveService(waveRepo, validate, logr)
	regSvc := service.NewRegistrationService(regRepo, waveSvc, notificationSvc, metricsSvc, validate, logr)

	seedSvc := service.NewSeedService(userRepo, waveRepo, cfg.Seed, logr)
	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 30*time.Second)
	if err := seedSvc.Run(seedCtx); err != nil {
		logr.Sugar().Fatalw("failed to seed initial data", "error", err)
	}
	cancelSeed()

	authHandler := handler.NewAuthHandler(authSvc, otpSvc)
	regHandler := handler.NewRegistrationHandler(regSvc)
	waveHandler := handler.NewWaveHandler(waveSvc)
	adminHandler := handler.NewAdminHandler(regSvc)
	uploadHandler := handler.NewUploadHandler(uploadStore, signer, cfg.Uploads.MaxFileSizeBytes)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		auth := api.Group("/auth")
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/verify-otp", authHandler.VerifyOTP)
		auth.POST("/resend-otp", authHandler.ResendOTP)
		auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
		auth.PUT("/settings", middleware.JWT(authSvc), authHandler.UpdateAccount)

		api.GET("/waves", waveHandler.List)
		api.PUT("/waves", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin), waveHandler.Replace)

		student := api.Group("", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleStudent))
		student.GET("/registration", regHandler.GetProfile)
		student.PUT("/registration", regHandler.UpdateSections)
		student.POST("/uploads", uploadHandler.Upload)

		admin := api.Group("/admin", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin))
		admin.GET("/verifications", adminHandler.ListVerifications)
		admin.GET("/verifications/:id", adminHandler.GetVerification)
		admin.POST("/verifications/:id", adminHandler.Verify)
		admin.GET("/uploads/sign", uploadHandler.Sign)

		api.GET("/uploads/download", uploadHandler.Download)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
