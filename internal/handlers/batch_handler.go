package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"donor-batch-ledger/internal/services/batchentry"
)

type BatchHandler struct {
	service *batchentry.Service
	log     zerolog.Logger
}

func NewBatchHandler(s *batchentry.Service, log zerolog.Logger) *BatchHandler {
	return &BatchHandler{service: s, log: log}
}

// batch loads the batch named by :batchId, writing the error response when
// it cannot.
func (h *BatchHandler) batch(c *gin.Context) (*batchentry.Batch, bool) {
	id, ok := parseUUID(c, "batchId", "batch")
	if !ok {
		return nil, false
	}
	b, err := h.service.GetBatch(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "batch not found"})
		return nil, false
	}
	return b, true
}

func (h *BatchHandler) CreateBatch(c *gin.Context) {
	var payload struct {
		Kind     batchentry.Kind      `json:"kind"`
		Defaults *batchentry.Defaults `json:"defaults"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if payload.Kind == "" {
		payload.Kind = batchentry.KindDonation
	}
	b, err := h.service.CreateBatch(payload.Kind, payload.Defaults)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"batch_id": b.ID.String(), "batch": b.View()})
}

func (h *BatchHandler) GetBatch(c *gin.Context) {
	b, ok := h.batch(c)
	if !ok {
		return
	}
	resp := gin.H{"batch": b.View()}
	if res, ok := h.service.LastResult(b.ID); ok {
		resp["last_result"] = res
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BatchHandler) DeleteBatch(c *gin.Context) {
	id, ok := parseUUID(c, "batchId", "batch")
	if !ok {
		return
	}
	if err := h.service.DeleteBatch(id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "batch deleted"})
}

// SetDefaults replaces the batch defaults. Rows resolved earlier keep the
// values they were merged with.
func (h *BatchHandler) SetDefaults(c *gin.Context) {
	b, ok := h.batch(c)
	if !ok {
		return
	}
	var d batchentry.Defaults
	if err := c.ShouldBindJSON(&d); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if err := b.SetDefaults(d); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "defaults updated", "defaults": b.Defaults()})
}

func (h *BatchHandler) AddRow(c *gin.Context) {
	b, ok := h.batch(c)
	if !ok {
		return
	}
	c.JSON(http.StatusCreated, gin.H{"row": b.AddRow()})
}

// UpdateRow records a typed donor id and/or explicit overrides. Neither
// triggers a lookup; call ResolveRow for that.
func (h *BatchHandler) UpdateRow(c *gin.Context) {
	b, ok := h.batch(c)
	if !ok {
		return
	}
	rowID, ok := parseUUID(c, "rowId", "row")
	if !ok {
		return
	}
	var payload struct {
		DonorID   *int64                `json:"donor_id"`
		Overrides *batchentry.Overrides `json:"overrides"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	var (
		row batchentry.Row
		err error
	)
	if payload.DonorID != nil {
		if row, err = b.EnterDonorID(rowID, payload.DonorID); err != nil {
			respondError(c, h.log, err)
			return
		}
	}
	if payload.Overrides != nil {
		if row, err = b.SetOverrides(rowID, *payload.Overrides); err != nil {
			respondError(c, h.log, err)
			return
		}
	}
	if payload.DonorID == nil && payload.Overrides == nil {
		var found bool
		if row, found = b.Row(rowID); !found {
			respondError(c, h.log, batchentry.ErrRowNotFound)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"row": row})
}

func (h *BatchHandler) RemoveRow(c *gin.Context) {
	b, ok := h.batch(c)
	if !ok {
		return
	}
	rowID, ok := parseUUID(c, "rowId", "row")
	if !ok {
		return
	}
	if err := b.RemoveRow(rowID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"batch": b.View()})
}

type donorPayload struct {
	DonorID int64 `json:"donor_id"`
}

// ResolveRow looks the donor up. A missing donor is not an error; the row
// comes back Invalid with the reason.
func (h *BatchHandler) ResolveRow(c *gin.Context) {
	b, ok := h.batch(c)
	if !ok {
		return
	}
	rowID, ok := parseUUID(c, "rowId", "row")
	if !ok {
		return
	}
	var payload donorPayload
	if err := c.ShouldBindJSON(&payload); err != nil || payload.DonorID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid donor ID"})
		return
	}
	row, err := b.ResolveRow(c.Request.Context(), rowID, payload.DonorID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"row": row, "focus": b.Focus()})
}

func (h *BatchHandler) SelectDonor(c *gin.Context) {
	batchID, ok := parseUUID(c, "batchId", "batch")
	if !ok {
		return
	}
	rowID, ok := parseUUID(c, "rowId", "row")
	if !ok {
		return
	}
	var payload donorPayload
	if err := c.ShouldBindJSON(&payload); err != nil || payload.DonorID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid donor ID"})
		return
	}
	row, err := h.service.SelectDonor(c.Request.Context(), batchID, rowID, payload.DonorID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"row": row})
}

func (h *BatchHandler) MergeRow(c *gin.Context) {
	b, ok := h.batch(c)
	if !ok {
		return
	}
	rowID, ok := parseUUID(c, "rowId", "row")
	if !ok {
		return
	}
	row, err := b.MergeDefaultsIntoRow(rowID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"row": row})
}

// Commit writes the batch. A store outage stops the run; the partial result
// is returned alongside the error.
func (h *BatchHandler) Commit(c *gin.Context) {
	id, ok := parseUUID(c, "batchId", "batch")
	if !ok {
		return
	}
	var payload struct {
		CampaignID     *int64 `json:"campaign_id"`
		PendingOnly    bool   `json:"pending_only"`
		ClearOnSuccess bool   `json:"clear_on_success"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
	}
	res, err := h.service.Commit(c.Request.Context(), id, batchentry.CommitOptions{
		CampaignID:     payload.CampaignID,
		PendingOnly:    payload.PendingOnly,
		ClearOnSuccess: payload.ClearOnSuccess,
	})
	if err != nil {
		code := statusOf(err)
		if code == http.StatusInternalServerError {
			h.log.Error().Err(err).Str("batch", id.String()).Msg("batch commit stopped")
		}
		c.JSON(code, gin.H{"error": err.Error(), "result": res})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "batch committed",
		"succeeded":    res.Succeeded,
		"failed":       res.Failed,
		"total_amount": res.TotalAmount.StringFixed(2),
		"result":       res,
	})
}

func (h *BatchHandler) Clear(c *gin.Context) {
	b, ok := h.batch(c)
	if !ok {
		return
	}
	b.Clear()
	c.JSON(http.StatusOK, gin.H{"message": "batch cleared", "batch": b.View()})
}

// ListCommits returns recent commit audit entries; ?limit= defaults to 50.
func (h *BatchHandler) ListCommits(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}
	commits, err := h.service.Commits(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": commits, "count": len(commits)})
}
