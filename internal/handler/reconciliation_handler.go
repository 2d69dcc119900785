package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Tekthree/ticket-shameless-sub001/internal/domain"
	"github.com/Tekthree/ticket-shameless-sub001/internal/dto"
	"github.com/Tekthree/ticket-shameless-sub001/internal/service"
)

// ReconciliationHandler handles ticket-count verification endpoints
type ReconciliationHandler struct {
	reconciliationService service.ReconciliationService
}

// NewReconciliationHandler creates a new ReconciliationHandler
func NewReconciliationHandler(reconciliationService service.ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{
		reconciliationService: reconciliationService,
	}
}

// VerifyCounts handles POST /tickets/verify-counts
// Compares the stored counter against the order ledger for one event. With
// fix=true it also writes the recomputed count back and returns the
// before/after pair.
func (h *ReconciliationHandler) VerifyCounts(c *gin.Context) {
	var req dto.VerifyCountsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if valid, msg := req.Validate(); !valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	var (
		result *domain.ReconciliationResult
		err    error
	)
	if req.Fix {
		result, err = h.reconciliationService.Fix(c.Request.Context(), req.EventID)
	} else {
		result, err = h.reconciliationService.Check(c.Request.Context(), req.EventID)
	}
	if err != nil {
		switch {
		case domain.IsValidationError(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case domain.IsNotFoundError(err):
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify ticket counts"})
		}
		return
	}

	c.JSON(http.StatusOK, &dto.VerifyCountsResponse{
		Success: true,
		Fixed:   result.Fixed,
		Counts:  result.Counts,
		Before:  result.Before,
		After:   result.After,
	})
}

// VerifyAllCounts handles POST /admin/tickets/verify-counts/all
// Sweeps every event. With fix=true drifted counters are corrected. One
// event's failure shows up in the report instead of failing the sweep.
func (h *ReconciliationHandler) VerifyAllCounts(c *gin.Context) {
	fix := c.Query("fix") == "true"

	var (
		report *domain.ReconciliationReport
		err    error
	)
	if fix {
		report, err = h.reconciliationService.FixAll(c.Request.Context())
	} else {
		report, err = h.reconciliationService.CheckAll(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify ticket counts"})
		return
	}

	c.JSON(http.StatusOK, &dto.VerifyAllResponse{
		Success: true,
		Report:  *report,
	})
}
