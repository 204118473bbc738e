package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sniperbusiness/ebook-funnel/internal/entity"
)

// BatchVerifier runs one membership verification batch.
type BatchVerifier interface {
	BatchVerify(ctx context.Context, batchSize int) (entity.VerificationResult, error)
}

// VerificationWorker triggers batch verification on a fixed interval.
type VerificationWorker struct {
	verifier     BatchVerifier
	batchSize    int
	tickInterval time.Duration
	log          *zap.SugaredLogger
}

func NewVerificationWorker(verifier BatchVerifier, batchSize int, interval time.Duration, log *zap.SugaredLogger) *VerificationWorker {
	return &VerificationWorker{
		verifier:     verifier,
		batchSize:    batchSize,
		tickInterval: interval,
		log:          log,
	}
}

// Start runs a batch immediately and then on every tick until ctx is cancelled.
func (w *VerificationWorker) Start(ctx context.Context) {
	if w.tickInterval <= 0 {
		w.log.Infow("verification worker disabled")
		return
	}

	w.log.Infow("🕒 verification worker started", "interval", w.tickInterval.String(), "batch_size", w.batchSize)

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.runBatch(ctx)

	for {
		select {
		case <-ctx.Done():
			w.log.Infow("verification worker stopped")
			return
		case <-ticker.C:
			w.runBatch(ctx)
		}
	}
}

func (w *VerificationWorker) runBatch(ctx context.Context) {
	result, err := w.verifier.BatchVerify(ctx, w.batchSize)
	if err != nil {
		w.log.Errorw("❌ scheduled verification failed", "checked", result.Checked, "error", err)
		return
	}

	if result.Checked > 0 {
		w.log.Infow("✅ scheduled verification done", "checked", result.Checked, "new_members", result.NewMembers)
	}
}
