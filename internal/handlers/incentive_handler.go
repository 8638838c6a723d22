package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"donor-batch-ledger/internal/models"
	"donor-batch-ledger/internal/repository"
)

type IncentiveHandler struct {
	*CRUD[models.DonationIncentive]
	incentives repository.IncentiveRepo
}

func NewIncentiveHandler(incentives repository.IncentiveRepo, log zerolog.Logger) *IncentiveHandler {
	return &IncentiveHandler{
		CRUD:       newCRUD[models.DonationIncentive](incentives, "incentive", func(v *models.DonationIncentive, id int64) { v.ID = id }, log),
		incentives: incentives,
	}
}

// List filters by ?status= or ?name=.
func (h *IncentiveHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		items []models.DonationIncentive
		err   error
	)
	switch {
	case c.Query("status") != "":
		status := models.IncentiveStatus(c.Query("status"))
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		items, err = h.incentives.GetByStatus(ctx, status)
	case c.Query("name") != "":
		items, err = h.incentives.FindByName(ctx, c.Query("name"))
	default:
		items, err = h.incentives.GetAll(ctx)
	}
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if items == nil {
		items = []models.DonationIncentive{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}
