package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/fishprofit/internal/domain/models"
	"github.com/mamadbah2/fishprofit/internal/domain/profit"
	"github.com/mamadbah2/fishprofit/internal/service/ledger"
	"github.com/mamadbah2/fishprofit/internal/service/reporting"
)

// Ledger is the batch and sale surface the HTTP API forwards intents to.
type Ledger interface {
	ListBatches() []ledger.Entry
	GetBatch(id string) (ledger.Entry, error)
	AddBatch(ctx context.Context) (ledger.Entry, error)
	UpdateBatchField(ctx context.Context, id, field, value string) (ledger.Entry, error)
	RemoveBatch(ctx context.Context, id string) error
	AddSale(ctx context.Context, batchID string, grams, totalPrice float64) (models.Sale, error)
	RemoveSale(ctx context.Context, batchID, saleID string) error
	SetMonthlyCost(ctx context.Context, field, value string) (models.MonthlyCosts, error)
	Summary() profit.Summary
}

// Exporter pushes the batch collection to the spreadsheet.
type Exporter interface {
	ExportToSheet(ctx context.Context) (int, error)
}

// BatchHandler serves the batch, sale and month views as JSON.
type BatchHandler struct {
	ledger   Ledger
	exporter Exporter
	logger   *zap.Logger
}

// NewBatchHandler constructs the HTTP handler adapter.
func NewBatchHandler(ledger Ledger, exporter Exporter, logger *zap.Logger) *BatchHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchHandler{ledger: ledger, exporter: exporter, logger: logger}
}

// List returns every batch with its metrics.
func (h *BatchHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"batches": h.ledger.ListBatches()})
}

// Create starts a new zero-valued batch.
func (h *BatchHandler) Create(c *gin.Context) {
	e, err := h.ledger.AddBatch(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

// Get returns one batch with its metrics.
func (h *BatchHandler) Get(c *gin.Context) {
	e, err := h.ledger.GetBatch(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// Update applies a single field edit.
func (h *BatchHandler) Update(c *gin.Context) {
	var req models.FieldUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid field update payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	e, err := h.ledger.UpdateBatchField(c.Request.Context(), c.Param("id"), req.Field, string(req.Value))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// Delete removes a batch.
func (h *BatchHandler) Delete(c *gin.Context) {
	if err := h.ledger.RemoveBatch(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MinPrice returns the minimum price per kg for the margin query parameter.
func (h *BatchHandler) MinPrice(c *gin.Context) {
	margin, err := strconv.ParseFloat(c.DefaultQuery("margin", "0.4"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "margin must be a number"})
		return
	}

	e, err := h.ledger.GetBatch(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"batchId":           e.ID,
		"targetMargin":      margin,
		"minPriceForMargin": e.Metrics.MinPriceForMargin(margin),
	})
}

// AddSale records a sale against a batch.
func (h *BatchHandler) AddSale(c *gin.Context) {
	var req models.SaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid sale payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "gramsAmount and totalPrice are required"})
		return
	}

	sale, err := h.ledger.AddSale(c.Request.Context(), c.Param("id"), *req.GramsAmount, *req.TotalPrice)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}

// RemoveSale deletes one sale of a batch.
func (h *BatchHandler) RemoveSale(c *gin.Context) {
	if err := h.ledger.RemoveSale(c.Request.Context(), c.Param("id"), c.Param("saleID")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Month returns the monthly costs and the aggregate net profit.
func (h *BatchHandler) Month(c *gin.Context) {
	c.JSON(http.StatusOK, h.ledger.Summary())
}

// UpdateMonth sets rent, ads or other.
func (h *BatchHandler) UpdateMonth(c *gin.Context) {
	var req models.FieldUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid month payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if _, err := h.ledger.SetMonthlyCost(c.Request.Context(), req.Field, string(req.Value)); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.ledger.Summary())
}

// Export appends the current batches to the spreadsheet.
func (h *BatchHandler) Export(c *gin.Context) {
	if h.exporter == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": reporting.ErrExportDisabled.Error()})
		return
	}

	n, err := h.exporter.ExportToSheet(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": n})
}

func (h *BatchHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrBatchNotFound), errors.Is(err, ledger.ErrSaleNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrUnknownField), errors.Is(err, ledger.ErrInvalidValue):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, reporting.ErrExportDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
