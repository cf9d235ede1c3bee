package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"escrowd/internal/escrow"
	"escrowd/internal/ledger"
	"escrowd/internal/metrics"
	"escrowd/internal/repository"
)

type EscrowHandler struct {
	engine  *escrow.Engine
	ledger  ledger.Ledger
	journal *repository.JournalRepository
	logger  *zap.Logger
}

func NewEscrowHandler(engine *escrow.Engine, lgr ledger.Ledger, journal *repository.JournalRepository, logger *zap.Logger) *EscrowHandler {
	return &EscrowHandler{
		engine:  engine,
		ledger:  lgr,
		journal: journal,
		logger:  logger,
	}
}

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, escrow.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, escrow.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, escrow.ErrInvalidAmount),
		errors.Is(err, escrow.ErrMilestoneMismatch),
		errors.Is(err, escrow.ErrInvalidState),
		errors.Is(err, escrow.ErrNotCancellable):
		return http.StatusBadRequest
	case errors.Is(err, escrow.ErrInsufficientFunds),
		errors.Is(err, ledger.ErrInsufficientBalance):
		return http.StatusPaymentRequired
	case errors.Is(err, escrow.ErrReentrantCall):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *EscrowHandler) fail(c *gin.Context, operation string, err error) {
	metrics.RecordOperation(operation, err)
	h.logger.Warn("escrow operation failed",
		zap.String("operation", operation),
		zap.Error(err),
	)
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

// Create handles POST /escrows
func (h *EscrowHandler) Create(c *gin.Context) {
	var req struct {
		Freelancer  string   `json:"freelancer" binding:"required"`
		Asset       string   `json:"asset" binding:"required"`
		TotalAmount uint64   `json:"total_amount"`
		Milestones  []uint64 `json:"milestones"`
		Cancellable bool     `json:"cancellable"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	id, err := h.engine.Create(c.Request.Context(), identity(c), req.Freelancer, req.Asset, req.TotalAmount, req.Milestones, req.Cancellable)
	if err != nil {
		h.fail(c, "create", err)
		return
	}

	metrics.RecordOperation("create", nil)
	c.JSON(http.StatusCreated, gin.H{"escrow_id": id})
}

// Get handles GET /escrows/:id
func (h *EscrowHandler) Get(c *gin.Context) {
	id, ok := escrowID(c)
	if !ok {
		return
	}

	rec, err := h.engine.Get(id)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, rec)
}

// Count handles GET /escrows
func (h *EscrowHandler) Count(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"count": h.engine.Count()})
}

// Fund handles POST /escrows/:id/fund
func (h *EscrowHandler) Fund(c *gin.Context) {
	id, ok := escrowID(c)
	if !ok {
		return
	}
	var req struct {
		Amount uint64 `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.engine.Fund(c.Request.Context(), identity(c), id, req.Amount); err != nil {
		h.fail(c, "fund", err)
		return
	}

	metrics.RecordOperation("fund", nil)
	c.JSON(http.StatusOK, gin.H{"status": "funded"})
}

// Approve handles POST /escrows/:id/milestones/:index/approve
func (h *EscrowHandler) Approve(c *gin.Context) {
	id, ok := escrowID(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid milestone index"})
		return
	}

	if err := h.engine.Approve(c.Request.Context(), identity(c), id, index); err != nil {
		h.fail(c, "approve", err)
		return
	}

	metrics.RecordOperation("approve", nil)
	c.JSON(http.StatusOK, gin.H{"status": "approved"})
}

// Release handles POST /escrows/:id/release
func (h *EscrowHandler) Release(c *gin.Context) {
	id, ok := escrowID(c)
	if !ok {
		return
	}

	if err := h.engine.Release(c.Request.Context(), identity(c), id); err != nil {
		h.fail(c, "release", err)
		return
	}

	metrics.RecordOperation("release", nil)
	c.JSON(http.StatusOK, gin.H{"status": "released"})
}

// Cancel handles POST /escrows/:id/cancel
func (h *EscrowHandler) Cancel(c *gin.Context) {
	id, ok := escrowID(c)
	if !ok {
		return
	}

	if err := h.engine.Cancel(c.Request.Context(), identity(c), id); err != nil {
		h.fail(c, "cancel", err)
		return
	}

	metrics.RecordOperation("cancel", nil)
	c.JSON(http.StatusOK, gin.H{"status": "canceled"})
}

// Events handles GET /escrows/:id/events (audit trail from the journal)
func (h *EscrowHandler) Events(c *gin.Context) {
	id, ok := escrowID(c)
	if !ok {
		return
	}

	entries, err := h.journal.ListByEscrow(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load events"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": entries})
}

// Balance handles GET /balance?asset=...
func (h *EscrowHandler) Balance(c *gin.Context) {
	asset := c.Query("asset")
	if asset == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "asset is required"})
		return
	}

	balance, err := h.ledger.Balance(c.Request.Context(), identity(c), asset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read balance"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"asset": asset, "balance": balance})
}

func escrowID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid escrow id"})
		return 0, false
	}
	return id, true
}
