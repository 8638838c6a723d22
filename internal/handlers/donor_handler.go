package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"donor-batch-ledger/internal/models"
	"donor-batch-ledger/internal/repository"
	"donor-batch-ledger/internal/services/matching"
)

type DonorHandler struct {
	*CRUD[models.Donor]
	donors    repository.DonorRepo
	donations repository.DonationRepo
	pledges   repository.PledgeRepo
}

func NewDonorHandler(donors repository.DonorRepo, donations repository.DonationRepo, pledges repository.PledgeRepo, log zerolog.Logger) *DonorHandler {
	return &DonorHandler{
		CRUD:      newCRUD[models.Donor](donors, "donor", func(d *models.Donor, id int64) { d.ID = id }, log),
		donors:    donors,
		donations: donations,
		pledges:   pledges,
	}
}

// Search ranks donors whose name or company contains q.
func (h *DonorHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}
	found, err := matching.Search(c.Request.Context(), h.donors, q)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": found, "count": len(found)})
}

// Giving returns the donor's donations, pledges and donation total.
func (h *DonorHandler) Giving(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	donor, err := h.donors.GetOne(ctx, id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if donor == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "donor not found"})
		return
	}
	donations, err := h.donations.GetForDonor(ctx, id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	pledges, err := h.pledges.GetForDonor(ctx, id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	total, err := h.donations.TotalForDonor(ctx, id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"donor":     donor,
		"donations": donations,
		"pledges":   pledges,
		"total":     total,
	})
}
