package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fintrack/internal/core"
)

var (
	errInvalidYear  = errors.New("invalid year parameter")
	errInvalidMonth = errors.New("invalid month parameter")
)

// SetBudget upserts a per-category spending limit for a month.
func (h *Handler) SetBudget(c *gin.Context) {
	var req budgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	limit, err := core.ParseDecimalToCents(req.Limit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit: " + err.Error()})
		return
	}

	budget, err := h.budgets.SetBudget(c.Request.Context(), core.Budget{
		Category:   req.Category,
		Year:       req.Year,
		Month:      req.Month,
		LimitCents: limit,
	})
	if err != nil {
		if isValidationError(err) || err.Error() == "invalid month" {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "Failed to set budget", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set budget"})
		return
	}

	c.JSON(http.StatusCreated, budgetResponse{
		ID:         budget.ID,
		Category:   budget.Category,
		Year:       budget.Year,
		Month:      budget.Month,
		LimitCents: budget.LimitCents,
	})
}

// ListBudgets returns each budget of the month with its actual spend.
func (h *Handler) ListBudgets(c *gin.Context) {
	year, month, err := yearMonthFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	statuses, err := h.budgets.BudgetStatuses(c.Request.Context(), year, month)
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "Failed to list budgets", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list budgets"})
		return
	}

	out := make([]budgetResponse, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, budgetResponse{
			ID:         s.Budget.ID,
			Category:   s.Budget.Category,
			Year:       s.Budget.Year,
			Month:      s.Budget.Month,
			LimitCents: s.Budget.LimitCents,
			SpentCents: s.SpentCents,
			Over:       s.Over(),
		})
	}

	c.JSON(http.StatusOK, gin.H{"budgets": out})
}

// DeleteBudget removes a budget by ID.
func (h *Handler) DeleteBudget(c *gin.Context) {
	if err := h.budgets.DeleteBudget(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Budget not found"})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "Failed to delete budget", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete budget"})
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateGoal stores a saving goal.
func (h *Handler) CreateGoal(c *gin.Context) {
	var req goalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	target, err := core.ParseDecimalToCents(req.Target)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid target: " + err.Error()})
		return
	}

	goal := core.Goal{Name: req.Name, TargetCents: target}
	if req.DueDate != "" {
		due, err := core.ParseDate(req.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid due date"})
			return
		}
		goal.DueDate = due
	}

	created, err := h.budgets.CreateGoal(c.Request.Context(), goal)
	if err != nil {
		if isValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "Failed to create goal", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create goal"})
		return
	}

	c.JSON(http.StatusCreated, toGoalResponse(created))
}

// ListGoals returns every saving goal.
func (h *Handler) ListGoals(c *gin.Context) {
	goals, err := h.budgets.ListGoals(c.Request.Context())
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "Failed to list goals", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list goals"})
		return
	}

	out := make([]goalResponse, 0, len(goals))
	for _, g := range goals {
		out = append(out, toGoalResponse(g))
	}
	c.JSON(http.StatusOK, gin.H{"goals": out})
}

// UpdateGoalSaved sets the amount saved toward a goal.
func (h *Handler) UpdateGoalSaved(c *gin.Context) {
	var req goalSavedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	saved, err := core.ParseDecimalToCents(req.Saved)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid saved amount: " + err.Error()})
		return
	}

	if err := h.budgets.UpdateGoalSaved(c.Request.Context(), c.Param("id"), saved); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Goal not found"})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "Failed to update goal", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update goal"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"saved_cents": saved})
}

// DeleteGoal removes a goal by ID.
func (h *Handler) DeleteGoal(c *gin.Context) {
	if err := h.budgets.DeleteGoal(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Goal not found"})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "Failed to delete goal", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete goal"})
		return
	}
	c.Status(http.StatusNoContent)
}
