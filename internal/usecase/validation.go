package usecase

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"
)

var nonDigits = regexp.MustCompile(`\D`)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func ValidateCreateProspectInput(input CreateProspectInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.FirstName) == "" {
		errors = append(errors, ValidationError{"firstName", "is required"})
	} else if len(input.FirstName) > 100 {
		errors = append(errors, ValidationError{"firstName", "must not exceed 100 characters"})
	}

	if strings.TrimSpace(input.LastName) == "" {
		errors = append(errors, ValidationError{"lastName", "is required"})
	} else if len(input.LastName) > 100 {
		errors = append(errors, ValidationError{"lastName", "must not exceed 100 characters"})
	}

	if strings.TrimSpace(input.Whatsapp) == "" {
		errors = append(errors, ValidationError{"whatsapp", "is required"})
	} else if !isValidPhoneNumber(input.Whatsapp) {
		errors = append(errors, ValidationError{"whatsapp", "must be a valid phone number"})
	}

	if strings.TrimSpace(input.Email) == "" {
		errors = append(errors, ValidationError{"email", "is required"})
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		errors = append(errors, ValidationError{"email", "is invalid"})
	}

	if strings.TrimSpace(input.EbookID) == "" {
		errors = append(errors, ValidationError{"ebookId", "is required"})
	}

	return errors
}

func ValidateProspectFilter(input ListProspectsInput) []ValidationError {
	var errors []ValidationError

	if input.SbcStatus != "" && !isValidStatus(input.SbcStatus) {
		errors = append(errors, ValidationError{"sbcStatus", "must be NON_INSCRIT, INSCRIT or ABONNE"})
	}
	if input.Date != "" && !isValidDate(input.Date) {
		errors = append(errors, ValidationError{"date", "must be a valid date (YYYY-MM-DD)"})
	}

	return errors
}

// isValidPhoneNumber requires at least one digit and no more than the 15 E.164 allows.
// Short numbers such as "+111" are accepted.
func isValidPhoneNumber(phone string) bool {
	cleaned := nonDigits.ReplaceAllString(phone, "")
	return len(cleaned) >= 1 && len(cleaned) <= 15
}

func isValidDate(dateStr string) bool {
	_, err := time.Parse("2006-01-02", dateStr)
	return err == nil
}

func isValidStatus(status string) bool {
	switch status {
	case "NON_INSCRIT", "INSCRIT", "ABONNE":
		return true
	}
	return false
}

func validationFailed(validationErrors []ValidationError) *DomainError {
	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		msgs = append(msgs, e.Field+" ("+e.Message+")")
	}
	return &DomainError{
		Code:    "VALIDATION_ERROR",
		Message: "validation failed: " + strings.Join(msgs, ", "),
	}
}
