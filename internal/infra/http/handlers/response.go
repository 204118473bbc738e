package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/sniperbusiness/ebook-funnel/internal/usecase"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}

// writeUseCaseError maps domain errors to 400 and everything else to 500.
// Technical details stay in the log.
func writeUseCaseError(w http.ResponseWriter, log *zap.SugaredLogger, err error) {
	var de *usecase.DomainError
	if errors.As(err, &de) {
		writeErrorResponse(w, http.StatusBadRequest, de.Code, de.Message)
		return
	}

	code := "INTERNAL_ERROR"
	var te *usecase.TechnicalError
	if errors.As(err, &te) {
		code = te.Code
	}
	log.Errorw("request failed", "code", code, "error", err)
	writeErrorResponse(w, http.StatusInternalServerError, code, "internal error")
}

func decode(r *http.Request, into any) error {
	return json.NewDecoder(r.Body).Decode(into)
}
