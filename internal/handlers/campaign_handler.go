package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"donor-batch-ledger/internal/models"
	"donor-batch-ledger/internal/repository"
)

type CampaignHandler struct {
	*CRUD[models.Campaign]
	campaigns repository.CampaignRepo
}

func NewCampaignHandler(campaigns repository.CampaignRepo, log zerolog.Logger) *CampaignHandler {
	return &CampaignHandler{
		CRUD:      newCRUD[models.Campaign](campaigns, "campaign", func(v *models.Campaign, id int64) { v.ID = id }, log),
		campaigns: campaigns,
	}
}

// List filters by ?code=, ?status= or ?name=, in that order of precedence.
func (h *CampaignHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		items []models.Campaign
		err   error
	)
	switch {
	case c.Query("code") != "":
		var one *models.Campaign
		one, err = h.campaigns.GetByCode(ctx, c.Query("code"))
		if one != nil {
			items = []models.Campaign{*one}
		}
	case c.Query("status") != "":
		status := models.CampaignStatus(c.Query("status"))
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		items, err = h.campaigns.GetByStatus(ctx, status)
	case c.Query("name") != "":
		items, err = h.campaigns.FindByName(ctx, c.Query("name"))
	default:
		items, err = h.campaigns.GetAll(ctx)
	}
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if items == nil {
		items = []models.Campaign{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}
