package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	handler "donor-batch-ledger/internal/handlers"
	"donor-batch-ledger/internal/repository"
	"donor-batch-ledger/internal/services/batchentry"
	"donor-batch-ledger/internal/services/pledges"
	"donor-batch-ledger/internal/services/report"
)

// Deps is everything the HTTP surface is built from. Tests pass memory
// repositories here.
type Deps struct {
	Donors     repository.DonorRepo
	Campaigns  repository.CampaignRepo
	Donations  repository.DonationRepo
	Pledges    repository.PledgeRepo
	Incentives repository.IncentiveRepo
	Commits    repository.BatchCommitRepo
	// Defaults supplies the starting defaults of a new batch.
	Defaults func(batchentry.Kind) batchentry.Defaults
	Log      zerolog.Logger
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	batchService := batchentry.NewService(batchentry.Repos{
		Donors:    d.Donors,
		Campaigns: d.Campaigns,
		Donations: d.Donations,
		Pledges:   d.Pledges,
		Commits:   d.Commits,
	}, d.Defaults, d.Log)
	pledgeService := pledges.NewService(d.Pledges, d.Log)
	exporter := report.NewExporter(d.Donations, d.Donors, d.Campaigns, d.Log)

	batchHandler := handler.NewBatchHandler(batchService, d.Log)
	donorHandler := handler.NewDonorHandler(d.Donors, d.Donations, d.Pledges, d.Log)
	campaignHandler := handler.NewCampaignHandler(d.Campaigns, d.Log)
	donationHandler := handler.NewDonationHandler(d.Donations, exporter, d.Log)
	pledgeHandler := handler.NewPledgeHandler(d.Pledges, pledgeService, d.Log)
	incentiveHandler := handler.NewIncentiveHandler(d.Incentives, d.Log)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Batch entry sessions
	batches := api.Group("/batches")
	batches.POST("", batchHandler.CreateBatch)
	batches.GET("/commits", batchHandler.ListCommits)
	batches.GET("/:batchId", batchHandler.GetBatch)
	batches.DELETE("/:batchId", batchHandler.DeleteBatch)
	batches.PUT("/:batchId/defaults", batchHandler.SetDefaults)
	batches.POST("/:batchId/commit", batchHandler.Commit)
	batches.POST("/:batchId/clear", batchHandler.Clear)

	// Row-level routes
	rows := batches.Group("/:batchId/rows")
	rows.POST("", batchHandler.AddRow)
	rows.PATCH("/:rowId", batchHandler.UpdateRow)
	rows.DELETE("/:rowId", batchHandler.RemoveRow)
	rows.POST("/:rowId/resolve", batchHandler.ResolveRow)
	rows.POST("/:rowId/select", batchHandler.SelectDonor)
	rows.POST("/:rowId/merge", batchHandler.MergeRow)

	donors := api.Group("/donors")
	{
		donors.POST("", donorHandler.Create)
		donors.GET("", donorHandler.List)
		donors.GET("/search", donorHandler.Search)
		donors.GET("/:id", donorHandler.Get)
		donors.GET("/:id/giving", donorHandler.Giving)
		donors.PUT("/:id", donorHandler.Update)
		donors.DELETE("/:id", donorHandler.Delete)
	}

	campaigns := api.Group("/campaigns")
	{
		campaigns.POST("", campaignHandler.Create)
		campaigns.GET("", campaignHandler.List)
		campaigns.GET("/:id", campaignHandler.Get)
		campaigns.PUT("/:id", campaignHandler.Update)
		campaigns.DELETE("/:id", campaignHandler.Delete)
	}

	donations := api.Group("/donations")
	{
		donations.POST("", donationHandler.Create)
		donations.GET("", donationHandler.List)
		donations.GET("/receipts", donationHandler.Receipts)
		donations.GET("/report", donationHandler.Report)
		donations.GET("/:id", donationHandler.Get)
		donations.PUT("/:id", donationHandler.Update)
		donations.PATCH("/:id/receipt", donationHandler.UpdateReceipt)
		donations.DELETE("/:id", donationHandler.Delete)
	}

	pledgeRoutes := api.Group("/pledges")
	{
		pledgeRoutes.POST("", pledgeHandler.Create)
		pledgeRoutes.GET("", pledgeHandler.List)
		pledgeRoutes.GET("/:id", pledgeHandler.Get)
		pledgeRoutes.PUT("/:id", pledgeHandler.Update)
		pledgeRoutes.PUT("/:id/balance", pledgeHandler.SetBalance)
		pledgeRoutes.POST("/:id/payments", pledgeHandler.ApplyPayment)
		pledgeRoutes.DELETE("/:id", pledgeHandler.Delete)
	}

	incentives := api.Group("/incentives")
	{
		incentives.POST("", incentiveHandler.Create)
		incentives.GET("", incentiveHandler.List)
		incentives.GET("/:id", incentiveHandler.Get)
		incentives.PUT("/:id", incentiveHandler.Update)
		incentives.DELETE("/:id", incentiveHandler.Delete)
	}
}
