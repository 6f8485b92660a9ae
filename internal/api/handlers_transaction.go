package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"fintrack/internal/core"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

// CreateTransaction stores a new transaction. A recurring one comes back
// as its full forward batch.
func (h *Handler) CreateTransaction(c *gin.Context) {
	var req createTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := req.toTransaction()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rows, err := h.transactions.Create(c.Request.Context(), tx)
	if err != nil {
		if isValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "Failed to create transaction", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create transaction"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transactions": toTransactionResponses(rows)})
}

// ListTransactions returns transactions, optionally filtered by query
// parameters: type, category, account, recurring, from, to.
func (h *Handler) ListTransactions(c *gin.Context) {
	filter, err := filterFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	txs, err := h.transactions.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "Failed to list transactions", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list transactions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": toTransactionResponses(txs)})
}

// GetTransaction returns a single transaction by ID.
func (h *Handler) GetTransaction(c *gin.Context) {
	tx, err := h.transactions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "Failed to get transaction", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get transaction"})
		return
	}

	c.JSON(http.StatusOK, toTransactionResponse(tx))
}

// DeleteTransaction removes a transaction. The scope query parameter
// chooses between single (default) and series; series removes every row
// of the recurring series dated today or later.
func (h *Handler) DeleteTransaction(c *gin.Context) {
	scope := services.DeleteScope(c.DefaultQuery("scope", string(services.ScopeSingle)))

	deleted, err := h.transactions.Delete(c.Request.Context(), c.Param("id"), scope, core.Today())
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
			return
		}
		if scope.Validate() != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "Failed to delete transaction", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete transaction"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// SetReceived toggles the received flag of a transaction.
func (h *Handler) SetReceived(c *gin.Context) {
	var req setReceivedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.transactions.SetReceived(c.Request.Context(), c.Param("id"), req.Received); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "Failed to update received flag", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update transaction"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": req.Received})
}

func filterFromQuery(c *gin.Context) (storage.TransactionFilter, error) {
	var f storage.TransactionFilter

	f.Type = core.TxType(c.Query("type"))
	f.Category = c.Query("category")
	f.Account = c.Query("account")

	if v := c.Query("recurring"); v != "" {
		recurring, err := strconv.ParseBool(v)
		if err != nil {
			return f, errors.New("invalid recurring parameter")
		}
		f.IsRecurring = &recurring
	}
	if v := c.Query("from"); v != "" {
		from, err := core.ParseDate(v)
		if err != nil {
			return f, errors.New("invalid from date")
		}
		f.From = from
	}
	if v := c.Query("to"); v != "" {
		to, err := core.ParseDate(v)
		if err != nil {
			return f, errors.New("invalid to date")
		}
		f.To = to
	}
	return f, nil
}

func isValidationError(err error) bool {
	return errors.Is(err, core.ErrInvalidType) ||
		errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrEmptyDescription) ||
		errors.Is(err, core.ErrEmptyCategory) ||
		errors.Is(err, core.ErrEmptyAccount)
}
