package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmdiary/internal/server/handlers"
)

// Handlers groups the HTTP adapters mounted by the router.
type Handlers struct {
	FarmAuth    *handlers.AuthHandler
	WeatherAuth *handlers.AuthHandler
	Diary       *handlers.DiaryHandler
	Reports     *handlers.ReportHandler
	Weather     *handlers.WeatherHandler
	// Metrics serves /metrics; promhttp.Handler() when nil.
	Metrics http.Handler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	metrics := h.Metrics
	if metrics == nil {
		metrics = promhttp.Handler()
	}
	r.GET("/metrics", gin.WrapH(metrics))

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.FarmAuth.Register)
	authGroup.POST("/login", h.FarmAuth.Login)
	authGroup.POST("/logout", h.FarmAuth.Logout)
	authGroup.GET("/me", h.FarmAuth.Me)

	farm := api.Group("", h.FarmAuth.RequireSession())
	farm.GET("/activities", h.Diary.ListActivities)
	farm.POST("/activities", h.Diary.CreateActivity)
	farm.DELETE("/activities/:id", h.Diary.DeleteActivity)

	farm.GET("/crops", h.Diary.ListCrops)
	farm.POST("/crops", h.Diary.CreateCrop)
	farm.DELETE("/crops/:id", h.Diary.DeleteCrop)
	farm.GET("/crops/:id/status", h.Diary.CropStatus)

	farm.GET("/weather", h.Diary.ListWeather)
	farm.POST("/weather", h.Diary.CreateWeather)
	farm.DELETE("/weather/:id", h.Diary.DeleteWeather)

	farm.GET("/expenses", h.Diary.ListExpenses)
	farm.POST("/expenses", h.Diary.CreateExpense)
	farm.DELETE("/expenses/:id", h.Diary.DeleteExpense)

	farm.GET("/sales", h.Diary.ListSales)
	farm.POST("/sales", h.Diary.CreateSale)
	farm.DELETE("/sales/:id", h.Diary.DeleteSale)

	farm.GET("/support", h.Diary.ListSupport)
	farm.POST("/support", h.Diary.CreateSupport)
	farm.DELETE("/support/:id", h.Diary.DeleteSupport)

	farm.DELETE("/data", h.Diary.ClearData)

	farm.GET("/summary/monthly", h.Reports.MonthlySummary)
	farm.GET("/reports/years", h.Reports.Years)
	farm.GET("/reports/yearly", h.Reports.Yearly)
	farm.GET("/reports/yearly/print", h.Reports.YearlyPrint)
	farm.GET("/reports/yearly/export.xlsx", h.Reports.YearlyXLSX)
	farm.GET("/analytics", h.Reports.Analytics)

	wp := api.Group("/weatherpro")
	wp.POST("/auth/register", h.WeatherAuth.Register)
	wp.POST("/auth/login", h.WeatherAuth.Login)
	wp.POST("/auth/logout", h.WeatherAuth.Logout)

	wpUser := wp.Group("", h.WeatherAuth.RequireSession())
	wpUser.GET("/search", h.Weather.Search)
	wpUser.GET("/current", h.Weather.Current)
	wpUser.GET("/logs", h.Weather.Logs)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
