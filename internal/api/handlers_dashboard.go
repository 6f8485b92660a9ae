package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"fintrack/internal/core"
)

// Dashboard returns the month's income/expense totals and the expense
// breakdown by category. Year and month default to the current month.
func (h *Handler) Dashboard(c *gin.Context) {
	year, month, err := yearMonthFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := h.transactions.Summary(c.Request.Context(), year, month)
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "Failed to load month summary", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
		return
	}

	c.JSON(http.StatusOK, toDashboardResponse(summary))
}

// Refresh tops up the current month's recurring instances and returns
// the refreshed transaction list.
func (h *Handler) Refresh(c *gin.Context) {
	snap, err := h.refresh.Refresh(c.Request.Context(), core.Today())
	if err != nil && snap.Transactions == nil {
		h.logger.ErrorContext(c.Request.Context(), "Refresh failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh"})
		return
	}
	if err != nil {
		// Partial failure: some series were skipped this cycle but the
		// snapshot is still usable.
		h.logger.WarnContext(c.Request.Context(), "Refresh completed partially", "error", err)
	}

	c.JSON(http.StatusOK, refreshResponse{
		Created:      snap.Created,
		Transactions: toTransactionResponses(snap.Transactions),
	})
}

// Healthz reports liveness.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func yearMonthFromQuery(c *gin.Context) (int, int, error) {
	now := time.Now()
	year, month := now.Year(), int(now.Month())

	if v := c.Query("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, errInvalidYear
		}
		year = parsed
	}
	if v := c.Query("month"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 12 {
			return 0, 0, errInvalidMonth
		}
		month = parsed
	}
	return year, month, nil
}
