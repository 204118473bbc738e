package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sniperbusiness/ebook-funnel/internal/entity"
	"github.com/sniperbusiness/ebook-funnel/internal/infra/metrics"
)

const (
	// MaxVerificationBatch bounds the external calls a single trigger may cause.
	MaxVerificationBatch = 10
	// VerificationDelay separates two consecutive membership checks of a batch.
	VerificationDelay = 3 * time.Second
)

type VerifyMembershipUseCase struct {
	Repo    ProspectRepository
	Checker MembershipChecker
	Delay   time.Duration

	// Now and Sleep are replaced in tests.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error

	log *zap.SugaredLogger
	// batchMu keeps the scheduled worker and manual triggers from running batches concurrently.
	batchMu sync.Mutex
}

func NewVerifyMembershipUseCase(repo ProspectRepository, checker MembershipChecker, log *zap.SugaredLogger) *VerifyMembershipUseCase {
	return &VerifyMembershipUseCase{
		Repo:    repo,
		Checker: checker,
		Delay:   VerificationDelay,
		Now:     func() time.Time { return time.Now().UTC() },
		Sleep:   sleepContext,
		log:     log,
	}
}

// VerifyProspect checks one prospect against SBC. It returns nil, nil when the
// prospect does not exist and the unchanged record when membership is already known.
func (uc *VerifyMembershipUseCase) VerifyProspect(ctx context.Context, id string) (*entity.Prospect, error) {
	prospect, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrProspectNotFound) {
			uc.log.Warnw("prospect not found", "prospect_id", id)
			return nil, nil
		}
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to load prospect: " + err.Error(), Err: err}
	}

	if prospect.MembershipFound {
		uc.log.Infow("prospect already verified as member, skipping", "prospect_id", id)
		return prospect, nil
	}

	found := uc.Checker.CheckMembership(ctx, prospect.Email, prospect.Whatsapp)

	updated, err := uc.Repo.ApplyVerification(ctx, prospect.ID, found, uc.Now())
	if err != nil {
		if errors.Is(err, entity.ErrProspectNotFound) {
			return nil, nil
		}
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to record verification: " + err.Error(), Err: err}
	}

	if found {
		uc.log.Infow("✅ prospect verified as member", "prospect_id", id, "email", prospect.Email)
	}
	return updated, nil
}

// BatchVerify checks up to batchSize due prospects one after the other, pausing
// between calls. Check failures count as "not a member"; only selection errors and
// cancellation end the run early, in which case the counts reached so far are returned.
func (uc *VerifyMembershipUseCase) BatchVerify(ctx context.Context, batchSize int) (entity.VerificationResult, error) {
	uc.batchMu.Lock()
	defer uc.batchMu.Unlock()

	var result entity.VerificationResult
	batchSize = ClampBatchSize(batchSize)

	cutoff := uc.Now().Add(-entity.VerificationCooldown)
	prospects, err := uc.Repo.FindDueForVerification(ctx, cutoff, batchSize)
	if err != nil {
		return result, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to select prospects: " + err.Error(), Err: err}
	}

	uc.log.Infow("batch verification started", "due", len(prospects), "batch_size", batchSize)

	for i, prospect := range prospects {
		found := uc.Checker.CheckMembership(ctx, prospect.Email, prospect.Whatsapp)

		if _, err := uc.Repo.ApplyVerification(ctx, prospect.ID, found, uc.Now()); err != nil {
			uc.log.Errorw("failed to record verification", "prospect_id", prospect.ID, "error", err)
		} else if found {
			result.NewMembers++
			uc.log.Infow("✅ prospect verified as member", "prospect_id", prospect.ID, "email", prospect.Email)
		}
		result.Checked++

		if i < len(prospects)-1 {
			if err := uc.Sleep(ctx, uc.Delay); err != nil {
				uc.log.Warnw("batch verification interrupted", "checked", result.Checked, "error", err)
				metrics.RecordVerificationBatch(result.NewMembers)
				return result, fmt.Errorf("batch verification interrupted: %w", err)
			}
		}
	}

	metrics.RecordVerificationBatch(result.NewMembers)
	uc.log.Infow("batch verification complete", "checked", result.Checked, "new_members", result.NewMembers)
	return result, nil
}

// ClampBatchSize maps non-positive sizes to the default and caps the rest at MaxVerificationBatch.
func ClampBatchSize(size int) int {
	if size <= 0 || size > MaxVerificationBatch {
		return MaxVerificationBatch
	}
	return size
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
