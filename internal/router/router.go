package router

import (
	"github.com/geoattend/internal/config"
	"github.com/geoattend/internal/handler"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(gdb *gorm.DB, cfg config.AppConfig) *gin.Engine {
	r := gin.Default()

	// 配置会话中间件
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("geoattend_session", store))

	// 开发环境跨域支持
	if len(cfg.CORSAllowOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = cfg.CORSAllowOrigins
		corsCfg.AllowCredentials = true
		r.Use(cors.New(corsCfg))
	}

	api := handler.NewAPI(gdb, cfg)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// 考勤路由（无需登录）
	attendance := r.Group("/api/attendance")
	{
		attendance.POST("/checkin", api.CheckIn)
		attendance.POST("/checkout", api.CheckOut)
		attendance.GET("/history", api.History)
		attendance.GET("/history/map", api.HistoryMap)
	}

	// 管理端路由
	admin := r.Group("/api/admin")
	{
		admin.POST("/login", api.Login)
		admin.POST("/logout", api.Logout)

		// 需要认证的管理路由
		auth := admin.Group("")
		auth.Use(api.AuthRequired())
		{
			auth.GET("/records", api.Records)
			auth.GET("/records/map", api.RecordsMap)
			auth.GET("/records/export", api.ExportCSV)
			auth.GET("/usernames", api.Usernames)
		}
	}

	return r
}
