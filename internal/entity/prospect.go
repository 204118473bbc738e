package entity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrProspectNotFound = errors.New("prospect not found")
	ErrInvalidStatus    = errors.New("invalid sbc status")
)

// SbcStatus is the funnel stage of a prospect relative to the SBC platform.
type SbcStatus string

const (
	StatusNonInscrit SbcStatus = "NON_INSCRIT"
	StatusInscrit    SbcStatus = "INSCRIT"
	StatusAbonne     SbcStatus = "ABONNE"
)

func (s SbcStatus) Valid() bool {
	switch s {
	case StatusNonInscrit, StatusInscrit, StatusAbonne:
		return true
	}
	return false
}

func ParseSbcStatus(raw string) (SbcStatus, error) {
	s := SbcStatus(raw)
	if !s.Valid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// VerificationCooldown is the minimum time between two membership checks of the same prospect.
const VerificationCooldown = 24 * time.Hour

type Prospect struct {
	ID              string     `json:"id"`
	FirstName       string     `json:"firstName"`
	LastName        string     `json:"lastName"`
	Whatsapp        string     `json:"whatsapp"`
	Email           string     `json:"email"`
	EbookID         string     `json:"ebookId"`
	AdminID         string     `json:"adminId,omitempty"`
	SbcStatus       SbcStatus  `json:"sbcStatus"`
	LastVerifiedAt  *time.Time `json:"lastVerifiedAt"`
	MembershipFound bool       `json:"membershipFound"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func NewProspect(firstName, lastName, whatsapp, email, ebookID, adminID string) (*Prospect, error) {
	now := time.Now().UTC()
	p := &Prospect{
		ID:        uuid.New().String(),
		FirstName: firstName,
		LastName:  lastName,
		Whatsapp:  whatsapp,
		Email:     email,
		EbookID:   ebookID,
		AdminID:   adminID,
		SbcStatus: StatusNonInscrit,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Prospect) Validate() error {
	if p.FirstName == "" {
		return errors.New("firstName is required")
	}
	if p.LastName == "" {
		return errors.New("lastName is required")
	}
	if p.Whatsapp == "" {
		return errors.New("whatsapp is required")
	}
	if p.Email == "" {
		return errors.New("email is required")
	}
	if p.EbookID == "" {
		return errors.New("ebookId is required")
	}
	return nil
}

// ProspectFilter narrows prospect listings and counts. Zero values mean "any".
type ProspectFilter struct {
	AdminID   string
	EbookID   string
	SbcStatus SbcStatus
	// Date matches prospects created on that calendar day (UTC), format YYYY-MM-DD.
	Date string

	MembershipFound *bool
	// DueBefore restricts to prospects never verified or verified before this instant.
	DueBefore *time.Time
}

type ProspectRepositoryInterface interface {
	Create(ctx context.Context, p *Prospect) error
	FindByID(ctx context.Context, id string) (*Prospect, error)
	FindAll(ctx context.Context, filter ProspectFilter) ([]*Prospect, error)
	UpdateStatus(ctx context.Context, id string, status SbcStatus) (*Prospect, error)
	// ApplyVerification stamps LastVerifiedAt in one write. Membership is never
	// reset and the status only moves NON_INSCRIT -> INSCRIT.
	ApplyVerification(ctx context.Context, id string, found bool, at time.Time) (*Prospect, error)
	// FindDueForVerification returns non-members never verified or verified before cutoff.
	FindDueForVerification(ctx context.Context, cutoff time.Time, limit int) ([]*Prospect, error)
	Count(ctx context.Context, filter ProspectFilter) (int, error)
	LatestVerifiedAt(ctx context.Context, adminID string) (*time.Time, error)
}
