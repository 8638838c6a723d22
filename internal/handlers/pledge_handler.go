package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"donor-batch-ledger/internal/models"
	"donor-batch-ledger/internal/repository"
	"donor-batch-ledger/internal/services/pledges"
)

type PledgeHandler struct {
	*CRUD[models.Pledge]
	pledges repository.PledgeRepo
	service *pledges.Service
}

func NewPledgeHandler(repo repository.PledgeRepo, service *pledges.Service, log zerolog.Logger) *PledgeHandler {
	return &PledgeHandler{
		CRUD:    newCRUD[models.Pledge](repo, "pledge", func(v *models.Pledge, id int64) { v.ID = id }, log),
		pledges: repo,
		service: service,
	}
}

// List filters by ?donor_id=, ?campaign_id= or ?status=.
func (h *PledgeHandler) List(c *gin.Context) {
	donorID, ok := queryID(c, "donor_id")
	if !ok {
		return
	}
	campaignID, ok := queryID(c, "campaign_id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	var (
		items []models.Pledge
		err   error
	)
	switch {
	case donorID != nil:
		items, err = h.pledges.GetForDonor(ctx, *donorID)
	case campaignID != nil:
		items, err = h.pledges.GetForCampaign(ctx, *campaignID)
	case c.Query("status") != "":
		status := models.PledgeStatus(c.Query("status"))
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		items, err = h.pledges.GetByStatus(ctx, status)
	default:
		items, err = h.pledges.GetAll(ctx)
	}
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if items == nil {
		items = []models.Pledge{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

func (h *PledgeHandler) SetBalance(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var payload struct {
		Balance decimal.Decimal      `json:"balance"`
		Status  *models.PledgeStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	p, err := h.service.SetBalance(c.Request.Context(), id, payload.Balance, payload.Status)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "pledge balance updated", "pledge": p})
}

func (h *PledgeHandler) ApplyPayment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var payload struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	p, err := h.service.ApplyPayment(c.Request.Context(), id, payload.Amount)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "payment applied", "pledge": p})
}
