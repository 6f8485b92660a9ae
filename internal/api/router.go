package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
)

// Handler bundles the services the HTTP surface is built on.
type Handler struct {
	transactions *services.TransactionService
	refresh      *services.RefreshService
	budgets      *services.BudgetService
	logger       *log.Logger
}

func NewHandler(transactions *services.TransactionService, refresh *services.RefreshService, budgets *services.BudgetService, logger *log.Logger) *Handler {
	return &Handler{
		transactions: transactions,
		refresh:      refresh,
		budgets:      budgets,
		logger:       logger.WithComponent(log.ComponentAPI),
	}
}

// NewRouter builds the main API router. A nil limiter disables rate
// limiting, which is what the tests use.
func NewRouter(h *Handler, allowedOrigins []string, limiter *ratelimit.Limiter) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(trace.Middleware())
	router.Use(security.Headers(security.DefaultHeadersConfig()))
	if limiter != nil {
		router.Use(limiter.Middleware())
	}

	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(allowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = allowedOrigins
		corsConfig.AllowCredentials = true
	}
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", h.Healthz)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/transactions", h.ListTransactions)
		v1.POST("/transactions", h.CreateTransaction)
		v1.GET("/transactions/:id", h.GetTransaction)
		v1.DELETE("/transactions/:id", h.DeleteTransaction)
		v1.PATCH("/transactions/:id/received", h.SetReceived)

		v1.GET("/dashboard", h.Dashboard)
		v1.POST("/refresh", h.Refresh)

		v1.GET("/budgets", h.ListBudgets)
		v1.POST("/budgets", h.SetBudget)
		v1.DELETE("/budgets/:id", h.DeleteBudget)

		v1.GET("/goals", h.ListGoals)
		v1.POST("/goals", h.CreateGoal)
		v1.PATCH("/goals/:id/saved", h.UpdateGoalSaved)
		v1.DELETE("/goals/:id", h.DeleteGoal)
	}

	return router
}
