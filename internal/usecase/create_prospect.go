package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sniperbusiness/ebook-funnel/internal/entity"
	"github.com/sniperbusiness/ebook-funnel/internal/infra/metrics"
)

const defaultDeliveryTimeout = 2 * time.Minute

type CreateProspectUseCase struct {
	Repo            ProspectRepository
	Dispatcher      EbookDispatcher
	DeliveryTimeout time.Duration

	log *zap.SugaredLogger
	// inflight tracks detached deliveries so shutdown and tests can wait for them.
	inflight sync.WaitGroup
}

func NewCreateProspectUseCase(
	repo ProspectRepository,
	dispatcher EbookDispatcher,
	deliveryTimeout time.Duration,
	log *zap.SugaredLogger,
) *CreateProspectUseCase {
	if deliveryTimeout <= 0 {
		deliveryTimeout = defaultDeliveryTimeout
	}
	return &CreateProspectUseCase{
		Repo:            repo,
		Dispatcher:      dispatcher,
		DeliveryTimeout: deliveryTimeout,
		log:             log,
	}
}

// Execute persists the prospect and returns as soon as the write succeeds.
// Ebook delivery runs in a detached goroutine: its outcome is logged and never
// reaches the caller.
func (uc *CreateProspectUseCase) Execute(ctx context.Context, input CreateProspectInput) (*entity.Prospect, error) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	input.Whatsapp = strings.TrimSpace(input.Whatsapp)

	if validationErrors := ValidateCreateProspectInput(input); len(validationErrors) > 0 {
		return nil, validationFailed(validationErrors)
	}

	prospect, err := entity.NewProspect(
		strings.TrimSpace(input.FirstName),
		strings.TrimSpace(input.LastName),
		input.Whatsapp,
		input.Email,
		strings.TrimSpace(input.EbookID),
		strings.TrimSpace(input.AdminID),
	)
	if err != nil {
		return nil, &DomainError{Code: "VALIDATION_ERROR", Message: err.Error()}
	}

	if err := uc.Repo.Create(ctx, prospect); err != nil {
		return nil, &TechnicalError{
			Code:    "DATABASE_ERROR",
			Message: "failed to persist prospect: " + err.Error(),
			Err:     err,
		}
	}
	metrics.RecordProspectCreated()

	uc.dispatchInBackground(ctx, prospect)

	return prospect, nil
}

func (uc *CreateProspectUseCase) dispatchInBackground(ctx context.Context, prospect *entity.Prospect) {
	if uc.Dispatcher == nil {
		return
	}

	// The request context is cancelled once the response is written.
	deliveryCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.DeliveryTimeout)
	snapshot := *prospect

	uc.inflight.Add(1)
	go func() {
		defer uc.inflight.Done()
		defer cancel()

		if err := uc.Dispatcher.Dispatch(deliveryCtx, &snapshot); err != nil {
			metrics.RecordEbookDelivery("failed")
			uc.log.Errorw("❌ failed to send ebooks", "prospect_id", snapshot.ID, "email", snapshot.Email, "error", err)
		}
	}()
}

// Wait blocks until every detached delivery started so far has finished.
func (uc *CreateProspectUseCase) Wait() {
	uc.inflight.Wait()
}
