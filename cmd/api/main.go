package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"staybook/internal/config"
	"staybook/internal/db"
	"staybook/internal/email"
	apihttp "staybook/internal/http"
	"staybook/internal/repository"
	"staybook/internal/service"
	"staybook/internal/storage"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	ctxPing, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	err = db.Ping(ctxPing, pool)
	cancelPing()
	if err != nil {
		logger.Fatal("db ping", zap.Error(err))
	}

	userRepo := repository.NewPgUserRepository(pool)
	otpRepo := repository.NewPgOtpRepository(pool)
	hotelRepo := repository.NewPgHotelRepository(pool)
	roomRepo := repository.NewPgRoomRepository(pool)
	bookingRepo := repository.NewPgBookingRepository(pool)
	notificationRepo := repository.NewPgNotificationRepository(pool)
	reviewRepo := repository.NewPgReviewRepository(pool)

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	otpLimiter := service.NewOTPRateLimiter(time.Hour, cfg.OTPRequestsPerHour)
	var tokenStore service.RefreshTokenStore
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			otpLimiter = service.NewRedisOTPRateLimiter(redisClient, time.Hour, cfg.OTPRequestsPerHour)
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
		}
		cancel()
	}

	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
	)
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}

	var avatarStore storage.Provider
	if cfg.CloudinaryURL != "" {
		provider, err := storage.NewCloudinaryProvider(cfg.CloudinaryURL)
		if err != nil {
			logger.Warn("cloudinary init failed", zap.Error(err))
		} else {
			avatarStore = provider
		}
	}
	if avatarStore == nil {
		provider, err := storage.NewLocalProvider(cfg.UploadDir, cfg.UploadBaseURL)
		if err != nil {
			logger.Warn("local avatar storage init failed", zap.Error(err))
		} else {
			avatarStore = provider
		}
	}

	authSvc := service.NewAuthService(logger, userRepo, otpRepo, emailSender, otpLimiter, service.AuthPolicy{
		OTPTTL: time.Duration(cfg.OTPTTLMinutes) * time.Minute,
		MinAge: cfg.MinAge,
		MaxAge: cfg.MaxAge,
	})
	notificationSvc := service.NewNotificationService(logger, notificationRepo)
	bookingSvc := service.NewBookingService(logger, bookingRepo, roomRepo, reviewRepo, notificationSvc)
	hotelSvc := service.NewHotelService(logger, hotelRepo, roomRepo, reviewRepo)
	userSvc := service.NewUserService(logger, userRepo, avatarStore)

	authHandler := apihttp.NewAuthHandler(logger, authSvc, jwtSvc)
	hotelHandler := apihttp.NewHotelHandler(logger, hotelSvc)
	userHandler := apihttp.NewUserHandler(logger, userSvc)
	bookingHandler := apihttp.NewBookingHandler(logger, bookingSvc)
	notificationHandler := apihttp.NewNotificationHandler(logger, notificationSvc)
	router := apihttp.NewRouter(logger, jwtSvc, authHandler, hotelHandler, userHandler, bookingHandler, notificationHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
