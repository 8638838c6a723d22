package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"donor-batch-ledger/internal/models"
	"donor-batch-ledger/internal/repository"
	"donor-batch-ledger/internal/services/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type DonationHandler struct {
	*CRUD[models.Donation]
	donations repository.DonationRepo
	exporter  *report.Exporter
}

func NewDonationHandler(repo repository.DonationRepo, exporter *report.Exporter, log zerolog.Logger) *DonationHandler {
	return &DonationHandler{
		CRUD:      newCRUD[models.Donation](repo, "donation", func(v *models.Donation, id int64) { v.ID = id }, log),
		donations: repo,
		exporter:  exporter,
	}
}

// List filters by ?donor_id=, ?campaign_id=, ?incentive_id= or ?status=
// (payment status).
func (h *DonationHandler) List(c *gin.Context) {
	donorID, ok := queryID(c, "donor_id")
	if !ok {
		return
	}
	campaignID, ok := queryID(c, "campaign_id")
	if !ok {
		return
	}
	incentiveID, ok := queryID(c, "incentive_id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	var (
		items []models.Donation
		err   error
	)
	switch {
	case donorID != nil:
		items, err = h.donations.GetForDonor(ctx, *donorID)
	case campaignID != nil:
		items, err = h.donations.GetForCampaign(ctx, *campaignID)
	case incentiveID != nil:
		items, err = h.donations.GetForIncentive(ctx, *incentiveID)
	case c.Query("status") != "":
		status := models.PaymentStatus(c.Query("status"))
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		items, err = h.donations.GetByStatus(ctx, status)
	default:
		items, err = h.donations.GetAll(ctx)
	}
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if items == nil {
		items = []models.Donation{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

func (h *DonationHandler) UpdateReceipt(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var payload struct {
		Status models.ReceiptStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if err := h.donations.UpdateReceiptStatus(c.Request.Context(), id, payload.Status); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "receipt status updated", "status": payload.Status})
}

// Receipts lists donations in one receipt status (?status=, REQUESTED by
// default) with the number of receipts still waiting to print.
func (h *DonationHandler) Receipts(c *gin.Context) {
	status := models.ReceiptStatus(c.DefaultQuery("status", string(models.ReceiptRequested)))
	if !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}
	ctx := c.Request.Context()
	items, err := h.donations.GetReceiptRequests(ctx, status)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	pending, err := h.donations.CountPendingReceipts(ctx)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if items == nil {
		items = []models.Donation{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items), "pending": pending})
}

// Report streams an XLSX of the donations dated in [from, to). Dates are
// YYYY-MM-DD; ?campaign_id= narrows it to one campaign.
func (h *DonationHandler) Report(c *gin.Context) {
	from, err := time.ParseInLocation("2006-01-02", c.Query("from"), time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date, expected YYYY-MM-DD"})
		return
	}
	to, err := time.ParseInLocation("2006-01-02", c.Query("to"), time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date, expected YYYY-MM-DD"})
		return
	}
	campaignID, ok := queryID(c, "campaign_id")
	if !ok {
		return
	}
	_, ok = queryID(c, "incentive_id")
	if !ok {
		return
	}

	var buf bytes.Buffer
	sum, err := h.exporter.Donations(c.Request.Context(), report.Range{From: from, To: to, CampaignID: campaignID}, &buf)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	name := fmt.Sprintf("donations_%s_%s.xlsx", from.Format("20060102"), to.Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Header("X-Donation-Count", fmt.Sprint(sum.Count))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
