package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

// NewSweepRouter builds the trigger surface of the recurring worker: a
// single POST / that runs one top-up cycle on demand. It answers any
// origin so schedulers and consoles can poke it directly.
func NewSweepRouter(refresh *services.RefreshService, logger *log.Logger) *gin.Engine {
	sweepLogger := logger.WithComponent(log.ComponentSweep)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(sweepLogger))
	router.Use(cors.Default())

	router.POST("/", func(c *gin.Context) {
		created, err := refresh.TopUp(c.Request.Context(), core.Today())
		if err != nil {
			sweepLogger.ErrorContext(c.Request.Context(), "Scheduled top-up failed",
				"created", created,
				"error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": fmt.Sprintf("materialized %d recurring instances", created),
			"count":   created,
		})
	})

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unsupported endpoint"})
	})

	return router
}

func requestLogger(logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.InfoContext(c.Request.Context(), "Request handled",
			log.FieldMethod, c.Request.Method,
			log.FieldPath, c.Request.URL.Path,
			log.FieldStatus, c.Writer.Status(),
			log.FieldDuration, time.Since(start).Milliseconds())
	}
}
