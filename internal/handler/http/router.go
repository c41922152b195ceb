package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/shopforge/account-service/internal/config"
	"github.com/shopforge/account-service/internal/domain/models"
	"github.com/shopforge/account-service/internal/handler/http/middleware"
	"github.com/shopforge/account-service/internal/infrastructure/ratelimit"
)

// RouterDeps bundles everything the router needs.
type RouterDeps struct {
	Config  *config.Config
	Logger  *zap.Logger
	Auth    *AuthHandler
	OTP     *OTPHandler
	Admin   *AdminHandler
	CSRF    *CSRFHandler
	Health  *HealthHandler
	Guards  *middleware.GuardChain
	CSRFMid *middleware.CSRFGuard
	Limiter *ratelimit.Limiter
}

// CSRFExemptPaths are reachable before a client could have fetched a token.
func CSRFExemptPaths() []string {
	return []string{
		"/api/v1/auth/register",
		"/api/v1/auth/login",
		"/api/v1/auth/refresh-token",
		"/api/v1/otp/verify-otp",
		"/api/v1/otp/resend-otp",
		"/api/v1/auth/forgot-password",
		"/api/v1/auth/verify-reset",
		"/api/v1/auth/reset-password",
	}
}

// NewRouter assembles the gin engine: global middleware, the public auth
// surface, the session-bound surface and the admin surface.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(deps.Logger))
	router.Use(middleware.LoggingMiddleware(deps.Logger))
	if deps.Config.Metrics.Enabled {
		router.Use(middleware.MetricsMiddleware())
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     deps.Config.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", deps.Config.Security.CSRF.HeaderName},
		AllowCredentials: true,
	}))
	router.Use(deps.CSRFMid.Protect())

	router.GET("/healthz", deps.Health.Live)
	router.GET("/readyz", deps.Health.Ready)
	if deps.Config.Metrics.Enabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	v1 := router.Group("/api/v1")
	v1.GET("/csrf/token", deps.CSRF.Token)

	auth := v1.Group("/auth")
	{
		auth.POST("/register",
			middleware.RateLimitByIP(deps.Limiter.AllowRegistration, deps.Logger),
			deps.Auth.Register)
		auth.POST("/login",
			middleware.RateLimitByIP(deps.Limiter.AllowLogin, deps.Logger),
			deps.Auth.Login)
		auth.POST("/refresh-token", deps.Auth.Refresh)
		auth.POST("/forgot-password",
			middleware.RateLimitByIP(deps.Limiter.AllowCodeRequest, deps.Logger),
			deps.OTP.ForgotPassword)
		auth.POST("/verify-reset", deps.OTP.VerifyReset)
		auth.POST("/reset-password", deps.OTP.ResetPassword)
	}

	otp := v1.Group("/otp")
	{
		otp.POST("/verify-otp", deps.OTP.VerifyOTP)
		otp.POST("/resend-otp",
			middleware.RateLimitByIP(deps.Limiter.AllowCodeRequest, deps.Logger),
			deps.OTP.ResendOTP)
	}

	session := v1.Group("")
	session.Use(
		deps.Guards.Authenticate(),
		deps.Guards.RequireNotSuspended(),
		deps.Guards.RequireLiveSession(),
		middleware.RateLimitByAccount(deps.Limiter.AllowAPI, deps.Logger),
	)
	{
		session.POST("/auth/logout", deps.Auth.Logout)
		session.POST("/auth/change-password", deps.Auth.ChangePassword)
		session.GET("/auth/me", deps.Auth.Me)
	}

	admin := v1.Group("/admin")
	admin.Use(
		deps.Guards.Authenticate(),
		deps.Guards.RequireNotSuspended(),
		deps.Guards.RequireLiveSession(),
		middleware.RateLimitByAccount(deps.Limiter.AllowAPI, deps.Logger),
		deps.Guards.RequireRole(models.RoleAdmin),
	)
	{
		admin.GET("/accounts", deps.Admin.List)
		admin.GET("/accounts/:id", deps.Admin.Get)
		admin.POST("/accounts/:id/suspend", deps.Admin.Suspend)
		admin.POST("/accounts/:id/resume", deps.Admin.Resume)
		admin.POST("/accounts/:id/unblock", deps.Admin.Unblock)
		admin.POST("/accounts/:id/restore", deps.Admin.Restore)
		admin.DELETE("/accounts/:id", deps.Admin.Delete)
		admin.DELETE("/accounts/:id/purge", deps.Admin.Purge)
	}

	return router
}
