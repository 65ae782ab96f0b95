package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"staybook/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	jwtServ *service.JWTService,
	authH *AuthHandler,
	hotelH *HotelHandler,
	userH *UserHandler,
	bookingH *BookingHandler,
	notifH *NotificationHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	auth := r.Group("/auth")
	auth.POST("/register", authH.Register)
	auth.POST("/login", authH.Login)
	auth.POST("/forgot-password", authH.ForgotPassword)
	auth.POST("/verify-otp", authH.VerifyOTP)
	auth.POST("/reset-password", authH.ResetPassword)
	auth.POST("/refresh", authH.RefreshToken)
	auth.POST("/logout", authH.Logout)

	hotels := r.Group("/hotels")
	hotels.GET("", hotelH.List)
	hotels.GET("/search", hotelH.Search)
	hotels.GET("/:id", hotelH.Get)

	private := r.Group("")
	private.Use(JWTAuthMiddleware(jwtServ))

	private.GET("/me", userH.Me)
	private.PATCH("/me", userH.UpdateMe)
	private.POST("/me/avatar", userH.UploadAvatar)

	bookings := private.Group("/bookings")
	bookings.POST("", bookingH.Create)
	bookings.GET("", bookingH.List)
	bookings.GET("/upcoming", bookingH.Upcoming)
	bookings.GET("/past", bookingH.Past)
	bookings.GET("/:id", bookingH.Get)
	bookings.POST("/:id/cancel", bookingH.Cancel)
	bookings.POST("/:id/review", bookingH.Review)

	notifications := private.Group("/notifications")
	notifications.GET("", notifH.List)
	notifications.GET("/unread-count", notifH.UnreadCount)
	notifications.POST("/:id/read", notifH.MarkRead)
	notifications.POST("/read-all", notifH.MarkAllRead)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
