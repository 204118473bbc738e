package entity

import (
	"math"
	"time"
)

// VerificationResult summarizes one batch verification run.
type VerificationResult struct {
	Checked    int `json:"checked"`
	NewMembers int `json:"newMembers"`
}

type ProspectStats struct {
	Total                  int     `json:"total"`
	Inscribed              int     `json:"inscribed"`
	Subscribers            int     `json:"subscribers"`
	VerifiedMembers        int     `json:"verifiedMembers"`
	ConversionRate         float64 `json:"conversionRate"`
	VerifiedConversionRate float64 `json:"verifiedConversionRate"`
}

type VerificationStats struct {
	Total                  int        `json:"total"`
	VerifiedMembers        int        `json:"verifiedMembers"`
	PendingVerification    int        `json:"pendingVerification"`
	VerifiedConversionRate float64    `json:"verifiedConversionRate"`
	LastVerifiedAt         *time.Time `json:"lastVerifiedAt"`
}

// Percentage returns part/total*100 rounded to two decimals, 0 when total is 0.
func Percentage(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*100*100) / 100
}
