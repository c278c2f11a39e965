package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"vinvest/internal/models"
	"vinvest/internal/services"
)

// PortfolioSnapshotHandler handles portfolio snapshot requests.
type PortfolioSnapshotHandler struct {
	snapshotService services.PortfolioSnapshotServicer
	now             services.Clock
}

// NewPortfolioSnapshotHandler creates a new PortfolioSnapshotHandler.
func NewPortfolioSnapshotHandler(snapshotService services.PortfolioSnapshotServicer, now services.Clock) *PortfolioSnapshotHandler {
	if now == nil {
		now = time.Now
	}
	return &PortfolioSnapshotHandler{snapshotService: snapshotService, now: now}
}

// ComputeSnapshotsRequest represents the request payload for computing
// snapshots. RecordedAt defaults to the current time.
type ComputeSnapshotsRequest struct {
	RecordedAt *time.Time `json:"recorded_at"`
}

// ComputeSnapshots handles computing and recording portfolio snapshots.
// @Summary     Compute portfolio snapshots
// @Description Compute and record portfolio snapshots for all users (pipeline endpoint)
// @Tags        pipeline
// @Accept      json
// @Produce     json
// @Param       X-API-Key  header   string                   true  "Pipeline API key"
// @Param       request    body     ComputeSnapshotsRequest  false "Snapshot parameters"
// @Success     200        {object} services.SnapshotRun
// @Failure     400        {object} ErrorResponse            "Invalid input"
// @Failure     401        {object} ErrorResponse            "Invalid API key"
// @Failure     503        {object} ErrorResponse            "Pipeline not configured"
// @Router      /pipeline/snapshots [post]
func (h *PortfolioSnapshotHandler) ComputeSnapshots(c *gin.Context) {
	var req ComputeSnapshotsRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	recordedAt := h.now()
	if req.RecordedAt != nil {
		recordedAt = *req.RecordedAt
	}

	run, err := h.snapshotService.ComputeAndRecordSnapshots(c.Request.Context(), recordedAt)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, run)
}

// GetHistory returns the user's portfolio totals, oldest first.
// @Summary     Portfolio history
// @Tags        holdings
// @Accept      json
// @Produce     json
// @Param       request body UserRequest true "User"
// @Success     200 {array}  models.PortfolioSnapshot
// @Router      /porfolio-history [post]
func (h *PortfolioSnapshotHandler) GetHistory(c *gin.Context) {
	var req UserRequest
	if !bindUserJSON(c, &req, func() string { return req.User }) {
		return
	}

	history, err := h.snapshotService.GetHistory(req.User)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if history == nil {
		history = []models.PortfolioSnapshot{}
	}

	c.JSON(http.StatusOK, history)
}
