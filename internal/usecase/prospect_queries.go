package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/sniperbusiness/ebook-funnel/internal/entity"
)

type ListProspectsUseCase struct {
	Repo ProspectRepository
}

func NewListProspectsUseCase(repo ProspectRepository) *ListProspectsUseCase {
	return &ListProspectsUseCase{Repo: repo}
}

// Execute lists prospects matching the filter, newest first.
func (uc *ListProspectsUseCase) Execute(ctx context.Context, input ListProspectsInput) ([]*entity.Prospect, error) {
	if validationErrors := ValidateProspectFilter(input); len(validationErrors) > 0 {
		return nil, validationFailed(validationErrors)
	}

	prospects, err := uc.Repo.FindAll(ctx, entity.ProspectFilter{
		AdminID:   input.AdminID,
		EbookID:   input.EbookID,
		SbcStatus: entity.SbcStatus(input.SbcStatus),
		Date:      input.Date,
	})
	if err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to list prospects: " + err.Error(), Err: err}
	}
	return prospects, nil
}

type UpdateStatusUseCase struct {
	Repo ProspectRepository
}

func NewUpdateStatusUseCase(repo ProspectRepository) *UpdateStatusUseCase {
	return &UpdateStatusUseCase{Repo: repo}
}

// Execute sets the status manually; any valid status is accepted. A missing
// prospect yields nil, nil.
func (uc *UpdateStatusUseCase) Execute(ctx context.Context, input UpdateStatusInput) (*entity.Prospect, error) {
	status, err := entity.ParseSbcStatus(input.Status)
	if err != nil {
		return nil, &DomainError{Code: "INVALID_STATUS", Message: "status must be NON_INSCRIT, INSCRIT or ABONNE"}
	}

	prospect, err := uc.Repo.UpdateStatus(ctx, input.ProspectID, status)
	if err != nil {
		if errors.Is(err, entity.ErrProspectNotFound) {
			return nil, nil
		}
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to update status: " + err.Error(), Err: err}
	}
	return prospect, nil
}

type ProspectStatsUseCase struct {
	Repo ProspectRepository
	Now  func() time.Time
}

func NewProspectStatsUseCase(repo ProspectRepository) *ProspectStatsUseCase {
	return &ProspectStatsUseCase{
		Repo: repo,
		Now:  func() time.Time { return time.Now().UTC() },
	}
}

// Stats returns funnel counters, scoped to adminID when it is not empty.
func (uc *ProspectStatsUseCase) Stats(ctx context.Context, adminID string) (*entity.ProspectStats, error) {
	found := true
	counts, err := uc.count(ctx,
		entity.ProspectFilter{AdminID: adminID},
		entity.ProspectFilter{AdminID: adminID, SbcStatus: entity.StatusInscrit},
		entity.ProspectFilter{AdminID: adminID, SbcStatus: entity.StatusAbonne},
		entity.ProspectFilter{AdminID: adminID, MembershipFound: &found},
	)
	if err != nil {
		return nil, err
	}

	total, inscribed, subscribers, verified := counts[0], counts[1], counts[2], counts[3]
	return &entity.ProspectStats{
		Total:                  total,
		Inscribed:              inscribed,
		Subscribers:            subscribers,
		VerifiedMembers:        verified,
		ConversionRate:         entity.Percentage(inscribed+subscribers, total),
		VerifiedConversionRate: entity.Percentage(verified, total),
	}, nil
}

// VerificationStats reports how far membership verification has progressed.
func (uc *ProspectStatsUseCase) VerificationStats(ctx context.Context, adminID string) (*entity.VerificationStats, error) {
	found, notFound := true, false
	cutoff := uc.Now().Add(-entity.VerificationCooldown)

	counts, err := uc.count(ctx,
		entity.ProspectFilter{AdminID: adminID},
		entity.ProspectFilter{AdminID: adminID, MembershipFound: &found},
		entity.ProspectFilter{AdminID: adminID, MembershipFound: &notFound, DueBefore: &cutoff},
	)
	if err != nil {
		return nil, err
	}

	last, err := uc.Repo.LatestVerifiedAt(ctx, adminID)
	if err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to load last verification: " + err.Error(), Err: err}
	}

	total, verified, pending := counts[0], counts[1], counts[2]
	return &entity.VerificationStats{
		Total:                  total,
		VerifiedMembers:        verified,
		PendingVerification:    pending,
		VerifiedConversionRate: entity.Percentage(verified, total),
		LastVerifiedAt:         last,
	}, nil
}

func (uc *ProspectStatsUseCase) count(ctx context.Context, filters ...entity.ProspectFilter) ([]int, error) {
	counts := make([]int, len(filters))
	for i, f := range filters {
		n, err := uc.Repo.Count(ctx, f)
		if err != nil {
			return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to count prospects: " + err.Error(), Err: err}
		}
		counts[i] = n
	}
	return counts, nil
}
