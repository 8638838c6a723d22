package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"donor-batch-ledger/internal/batchfile"
	"donor-batch-ledger/internal/models"
	"donor-batch-ledger/internal/repository"
	"donor-batch-ledger/internal/services/batchentry"
	"donor-batch-ledger/internal/services/matching"
	"donor-batch-ledger/internal/services/report"
	"donor-batch-ledger/internal/store"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations and list the applied ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(st *store.Store) error {
				applied, err := st.AppliedMigrations(cmd.Context())
				if err != nil {
					return err
				}
				for _, name := range applied {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			})
		},
	}
}

func newCommitCmd(a *app) *cobra.Command {
	var (
		file       string
		campaignID int64
	)
	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Enter and commit a batch file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := batchfile.Load(file)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("campaign") {
				f.Campaign = &campaignID
			}
			defaults, err := f.BatchDefaults(batchentry.DefaultsFromConfig(a.cfg, f.Kind, time.Now()))
			if err != nil {
				return err
			}
			return a.withStore(cmd.Context(), func(st *store.Store) error {
				return commitFile(cmd, a, st, f, defaults)
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "batch file (YAML)")
	cmd.Flags().Int64Var(&campaignID, "campaign", 0, "campaign id for every row, overrides the file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func commitFile(cmd *cobra.Command, a *app, st *store.Store, f *batchfile.File, defaults batchentry.Defaults) error {
	svc := batchentry.NewService(batchentry.Repos{
		Donors:    repository.NewDonorRepository(st),
		Campaigns: repository.NewCampaignRepository(st),
		Donations: repository.NewDonationRepository(st),
		Pledges:   repository.NewPledgeRepository(st),
		Commits:   repository.NewBatchCommitRepository(st),
	}, func(k batchentry.Kind) batchentry.Defaults {
		return batchentry.DefaultsFromConfig(a.cfg, k, time.Now())
	}, a.log)

	ctx := cmd.Context()
	b, err := svc.CreateBatch(f.Kind, &defaults)
	if err != nil {
		return err
	}
	if err := f.Fill(ctx, b); err != nil {
		return err
	}
	res, err := svc.Commit(ctx, b.ID, batchentry.CommitOptions{CampaignID: f.Campaign})
	printResult(cmd, b, res)
	if err != nil {
		return err
	}
	if res.Failed > 0 {
		return fmt.Errorf("%d of %d rows failed", res.Failed, res.Failed+res.Succeeded)
	}
	return nil
}

func printResult(cmd *cobra.Command, b *batchentry.Batch, res batchentry.Result) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DONOR\tAMOUNT\tSTATUS\tMESSAGE")
	for _, o := range res.Outcomes {
		donor := "-"
		if r, ok := b.Row(o.RowID); ok && r.Donor != nil {
			donor = strings.ReplaceAll(r.Donor.FullName(), "\n", " / ")
		} else if o.DonorID != nil {
			donor = fmt.Sprintf("#%d", *o.DonorID)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", donor, o.Amount.StringFixed(2), o.Status, o.Message)
	}
	_ = w.Flush()
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d succeeded, %d failed, total %s\n",
		res.Succeeded, res.Failed, res.TotalAmount.StringFixed(2))
}

func newDonorsCmd(a *app) *cobra.Command {
	donors := &cobra.Command{
		Use:   "donors",
		Short: "Look up donors",
	}
	donors.AddCommand(&cobra.Command{
		Use:   "search TEXT",
		Short: "Find donors by name or company, best match first",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(st *store.Store) error {
				found, err := matching.Search(cmd.Context(), repository.NewDonorRepository(st), strings.Join(args, " "))
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tCITY\tSCORE")
				for _, c := range found {
					d := c.Donor
					fmt.Fprintf(w, "%d\t%s\t%s\t%.0f\n", d.ID, strings.ReplaceAll(d.FullName(), "\n", " / "), models.Deref(d.City), c.Score)
				}
				return w.Flush()
			})
		},
	})
	return donors
}

func newReportCmd(a *app) *cobra.Command {
	var (
		from, to, out string
		campaignID    int64
	)
	donations := &cobra.Command{
		Use:   "donations",
		Short: "Export donations dated in [from, to) to an XLSX workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rg := report.Range{}
			var err error
			if rg.From, err = time.ParseInLocation("2006-01-02", from, time.Local); err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			if rg.To, err = time.ParseInLocation("2006-01-02", to, time.Local); err != nil {
				return fmt.Errorf("--to: %w", err)
			}
			if cmd.Flags().Changed("campaign") {
				rg.CampaignID = &campaignID
			}
			return a.withStore(cmd.Context(), func(st *store.Store) error {
				return writeReport(cmd, a, st, rg, out)
			})
		},
	}
	donations.Flags().StringVar(&from, "from", "", "first day, YYYY-MM-DD")
	donations.Flags().StringVar(&to, "to", "", "day after the last, YYYY-MM-DD")
	donations.Flags().StringVarP(&out, "out", "o", "donations.xlsx", "output file")
	donations.Flags().Int64Var(&campaignID, "campaign", 0, "only this campaign")
	_ = donations.MarkFlagRequired("from")
	_ = donations.MarkFlagRequired("to")

	rep := &cobra.Command{
		Use:   "report",
		Short: "Export reports",
	}
	rep.AddCommand(donations)
	return rep
}

func writeReport(cmd *cobra.Command, a *app, st *store.Store, rg report.Range, out string) error {
	fh, err := os.Create(out)
	if err != nil {
		return err
	}
	exp := report.NewExporter(
		repository.NewDonationRepository(st),
		repository.NewDonorRepository(st),
		repository.NewCampaignRepository(st),
		a.log,
	)
	sum, err := exp.Donations(cmd.Context(), rg, fh)
	if cerr := fh.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(out)
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d donations, total %s, written to %s\n", sum.Count, sum.Total.StringFixed(2), out)
	return nil
}
