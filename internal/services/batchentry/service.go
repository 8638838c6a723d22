package batchentry

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"donor-batch-ledger/internal/models"
	"donor-batch-ledger/internal/repository"
)

// Service keeps the open batches of the process and commits them.
type Service struct {
	donors    repository.DonorRepo
	campaigns repository.CampaignRepo
	commits   repository.BatchCommitRepo
	committer *Committer
	defaults  func(Kind) Defaults
	log       zerolog.Logger

	sessions sync.Map // batchID -> *Batch
	results  sync.Map // batchID -> Result of the last commit
}

type Repos struct {
	Donors    repository.DonorRepo
	Campaigns repository.CampaignRepo
	Donations repository.DonationRepo
	Pledges   repository.PledgeRepo
	Commits   repository.BatchCommitRepo
}

// NewService wires the repositories. defaults supplies the starting
// defaults of a new batch of the given kind.
func NewService(r Repos, defaults func(Kind) Defaults, log zerolog.Logger) *Service {
	log = log.With().Str("component", "batchentry").Logger()
	return &Service{
		donors:    r.Donors,
		campaigns: r.Campaigns,
		commits:   r.Commits,
		committer: NewCommitter(r.Donations, r.Pledges, log),
		defaults:  defaults,
		log:       log,
	}
}

// CreateBatch opens a batch. A nil d uses the configured defaults.
func (s *Service) CreateBatch(kind Kind, d *Defaults) (*Batch, error) {
	if !kind.Valid() {
		return nil, &ValidationError{Reason: fmt.Sprintf("unknown batch kind %q", kind)}
	}
	defaults := s.defaults(kind)
	if d != nil {
		defaults = *d
	}
	if err := defaults.Validate(kind); err != nil {
		return nil, err
	}
	b := NewBatch(kind, defaults, s.donors)
	s.sessions.Store(b.ID, b)
	s.log.Info().Str("batch", b.ID.String()).Str("kind", string(kind)).Msg("batch opened")
	return b, nil
}

func (s *Service) GetBatch(id uuid.UUID) (*Batch, error) {
	v, ok := s.sessions.Load(id)
	if !ok {
		return nil, ErrBatchNotFound
	}
	return v.(*Batch), nil
}

func (s *Service) DeleteBatch(id uuid.UUID) error {
	if _, ok := s.sessions.LoadAndDelete(id); !ok {
		return ErrBatchNotFound
	}
	s.results.Delete(id)
	return nil
}

// SelectDonor loads donorID and resolves the row with it, as picking a
// donor from a search does.
func (s *Service) SelectDonor(ctx context.Context, batchID, rowID uuid.UUID, donorID int64) (Row, error) {
	b, err := s.GetBatch(batchID)
	if err != nil {
		return Row{}, err
	}
	donor, err := s.donors.GetOne(ctx, donorID)
	if err != nil {
		return Row{}, err
	}
	if donor == nil {
		return Row{}, &ValidationError{Reason: ReasonDonorNotFound}
	}
	return b.SelectDonor(ctx, rowID, *donor)
}

type CommitOptions struct {
	CampaignID *int64
	// PendingOnly skips rows that succeeded in an earlier run.
	PendingOnly bool
	// ClearOnSuccess resets the batch when every committed row succeeded.
	ClearOnSuccess bool
}

// Commit runs the batch through the committer and records an audit entry.
// A failed audit write is logged and does not change the result.
func (s *Service) Commit(ctx context.Context, batchID uuid.UUID, opts CommitOptions) (Result, error) {
	b, err := s.GetBatch(batchID)
	if err != nil {
		return Result{}, err
	}
	if opts.CampaignID != nil {
		c, err := s.campaigns.GetOne(ctx, *opts.CampaignID)
		if err != nil {
			return Result{}, err
		}
		if c == nil {
			return Result{}, &ValidationError{Reason: fmt.Sprintf("campaign %d not found", *opts.CampaignID)}
		}
	}

	var res Result
	if opts.PendingOnly {
		res, err = s.committer.CommitPending(ctx, b, opts.CampaignID)
	} else {
		res, err = s.committer.CommitBatch(ctx, b, opts.CampaignID)
	}
	s.results.Store(batchID, res)
	s.audit(context.WithoutCancel(ctx), b, opts.CampaignID, res)

	if err == nil && opts.ClearOnSuccess && res.AllSucceeded() {
		b.Clear()
	}
	return res, err
}

// LastResult returns the result of the most recent commit of the batch.
func (s *Service) LastResult(batchID uuid.UUID) (Result, bool) {
	v, ok := s.results.Load(batchID)
	if !ok {
		return Result{}, false
	}
	return v.(Result), true
}

// Commits lists recent audit entries, newest first.
func (s *Service) Commits(ctx context.Context, limit int) ([]models.BatchCommit, error) {
	return s.commits.List(ctx, limit)
}

func (s *Service) audit(ctx context.Context, b *Batch, campaignID *int64, res Result) {
	if s.commits == nil {
		return
	}
	outcomes, err := json.Marshal(res.Outcomes)
	if err != nil {
		s.log.Error().Err(err).Msg("encode commit outcomes")
		return
	}
	status := models.CommitCompleted
	if res.Aborted {
		status = models.CommitAborted
	}
	completed := res.CompletedAt
	if completed.IsZero() {
		completed = time.Now()
	}
	entry := models.BatchCommit{
		ID:             uuid.New(),
		SessionID:      b.ID,
		Kind:           string(b.Kind),
		CampaignID:     campaignID,
		RowCount:       res.Succeeded + res.Failed,
		SucceededCount: res.Succeeded,
		FailedCount:    res.Failed,
		TotalAmount:    res.TotalAmount,
		Outcomes:       datatypes.JSON(outcomes),
		Status:         status,
		StartedAt:      res.StartedAt,
		CompletedAt:    &completed,
	}
	if err := s.commits.Insert(ctx, entry); err != nil {
		s.log.Error().Err(err).Str("batch", b.ID.String()).Msg("batch commit audit not saved")
	}
}
