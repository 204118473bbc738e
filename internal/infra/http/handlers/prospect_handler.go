package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sniperbusiness/ebook-funnel/internal/infra/http/middleware"
	"github.com/sniperbusiness/ebook-funnel/internal/usecase"
)

type ProspectHandler struct {
	CreateUC       *usecase.CreateProspectUseCase
	ListUC         *usecase.ListProspectsUseCase
	UpdateStatusUC *usecase.UpdateStatusUseCase
	StatsUC        *usecase.ProspectStatsUseCase
	VerifyUC       *usecase.VerifyMembershipUseCase

	// BatchWriteTimeout replaces the server write deadline on verify-batch,
	// which sleeps between checks and outlives the default.
	BatchWriteTimeout time.Duration

	rateLimiter *RateLimiter
	log         *zap.SugaredLogger
}

func NewProspectHandler(
	createUC *usecase.CreateProspectUseCase,
	listUC *usecase.ListProspectsUseCase,
	updateStatusUC *usecase.UpdateStatusUseCase,
	statsUC *usecase.ProspectStatsUseCase,
	verifyUC *usecase.VerifyMembershipUseCase,
	log *zap.SugaredLogger,
) *ProspectHandler {
	return &ProspectHandler{
		CreateUC:          createUC,
		ListUC:            listUC,
		UpdateStatusUC:    updateStatusUC,
		StatsUC:           statsUC,
		VerifyUC:          verifyUC,
		BatchWriteTimeout: BatchWriteTimeout(usecase.MaxVerificationBatch, usecase.VerificationDelay, 10*time.Second),
		rateLimiter:       NewRateLimiter(10, time.Minute), // 10 req/min por IP
		log:               log,
	}
}

// BatchWriteTimeout is the worst-case duration of a verify-batch request:
// every lookup hitting its timeout plus the delay between lookups.
func BatchWriteTimeout(batch int, delay, lookupTimeout time.Duration) time.Duration {
	return time.Duration(batch)*(delay+lookupTimeout) + 5*time.Second
}

// RateLimiter exposes the limiter so the caller can run its cleanup loop.
func (h *ProspectHandler) RateLimiter() *RateLimiter {
	return h.rateLimiter
}

// Create handles POST /prospects.
func (h *ProspectHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.rateLimiter.Allow(getClientIP(r)) {
		writeErrorResponse(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests. Please try again later.")
		return
	}

	var input usecase.CreateProspectInput
	if err := decode(r, &input); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "invalid JSON body")
		return
	}

	prospect, err := h.CreateUC.Execute(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, prospect)
}

// List handles GET /prospects?ebookId&date&sbcStatus.
func (h *ProspectHandler) List(w http.ResponseWriter, r *http.Request) {
	admin, _ := middleware.AdminFromContext(r.Context())
	q := r.URL.Query()

	prospects, err := h.ListUC.Execute(r.Context(), usecase.ListProspectsInput{
		AdminID:   admin.Scope(),
		EbookID:   q.Get("ebookId"),
		Date:      q.Get("date"),
		SbcStatus: q.Get("sbcStatus"),
	})
	if err != nil {
		writeUseCaseError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, prospects)
}

func (h *ProspectHandler) Stats(w http.ResponseWriter, r *http.Request) {
	admin, _ := middleware.AdminFromContext(r.Context())

	stats, err := h.StatsUC.Stats(r.Context(), admin.Scope())
	if err != nil {
		writeUseCaseError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// UpdateStatus handles PUT /prospects/{id}/status. An unknown id yields a null body.
func (h *ProspectHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var input usecase.UpdateStatusInput
	if err := decode(r, &input); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "invalid JSON body")
		return
	}
	input.ProspectID = chi.URLParam(r, "id")

	prospect, err := h.UpdateStatusUC.Execute(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, prospect)
}

// VerifyOne handles POST /prospects/verify/{id}.
func (h *ProspectHandler) VerifyOne(w http.ResponseWriter, r *http.Request) {
	prospect, err := h.VerifyUC.VerifyProspect(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeUseCaseError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, prospect)
}

// VerifyBatch handles POST /prospects/verify-batch?batchSize=n. Missing, invalid
// or oversized sizes fall back to the maximum batch.
func (h *ProspectHandler) VerifyBatch(w http.ResponseWriter, r *http.Request) {
	size := usecase.MaxVerificationBatch
	if raw := r.URL.Query().Get("batchSize"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			size = n
		}
	}

	if h.BatchWriteTimeout > 0 {
		rc := http.NewResponseController(w)
		if err := rc.SetWriteDeadline(time.Now().Add(h.BatchWriteTimeout)); err != nil && !errors.Is(err, http.ErrNotSupported) {
			h.log.Warnw("extend write deadline", "error", err)
		}
	}

	result, err := h.VerifyUC.BatchVerify(r.Context(), usecase.ClampBatchSize(size))
	if err != nil {
		writeUseCaseError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *ProspectHandler) VerificationStats(w http.ResponseWriter, r *http.Request) {
	admin, _ := middleware.AdminFromContext(r.Context())

	stats, err := h.StatsUC.VerificationStats(r.Context(), admin.Scope())
	if err != nil {
		writeUseCaseError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
