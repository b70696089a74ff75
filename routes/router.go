package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yuchia/temple-checkin/config"
	"github.com/yuchia/temple-checkin/controllers"
	"github.com/yuchia/temple-checkin/middleware"
	"github.com/yuchia/temple-checkin/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	templeController := controllers.NewTempleController(db)
	amuletController := controllers.NewAmuletController(db)
	checkinController := controllers.NewCheckinController(db)
	userController := controllers.NewUserController(db)
	adminController := controllers.NewAdminController(db)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/refresh", authController.Refresh)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.POST("/bind-amulet", middleware.AuthRequired(), middleware.ActiveUserRequired(db), authController.BindAmulet)
	authGroup.DELETE("/unbind-amulet/:id", middleware.AuthRequired(), middleware.ActiveUserRequired(db), authController.UnbindAmulet)

	// Public temple directory
	templesGroup := api.Group("/temples")
	templesGroup.GET("", templeController.List)
	templesGroup.GET("/nearby", templeController.Nearby)
	templesGroup.GET("/:id", templeController.Get)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.ActiveUserRequired(db), middleware.RateLimitMiddleware())

	protected.GET("/amulets", amuletController.List)
	protected.POST("/amulets", amuletController.Create)
	protected.PUT("/amulets/:id", amuletController.Update)
	protected.DELETE("/amulets/:id", amuletController.Delete)

	protected.POST("/checkin", checkinController.Create)
	protected.GET("/checkin/history", checkinController.History)
	protected.GET("/checkin/stats", checkinController.Stats)

	protected.GET("/users/profile", userController.GetProfile)
	protected.PUT("/users/profile", userController.UpdateProfile)
	protected.GET("/users/stats", userController.Stats)

	admin := api.Group("/admin")
	admin.Use(middleware.AuthRequired(), middleware.AdminRequired(db))
	admin.GET("/temples", adminController.ListTemples)
	admin.POST("/temples", adminController.CreateTemple)
	admin.PUT("/temples/:id", adminController.UpdateTemple)
	admin.DELETE("/temples/:id", adminController.DeleteTemple)
	admin.GET("/users", adminController.ListUsers)
	admin.POST("/users/:id/toggle-status", adminController.ToggleUserStatus)
	admin.GET("/stats", adminController.Stats)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, "找不到該資源")
	})

	return r
}
