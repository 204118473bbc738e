package usecase

import (
	"context"

	"github.com/sniperbusiness/ebook-funnel/internal/entity"
)

type ProspectRepository = entity.ProspectRepositoryInterface

type EbookRepository = entity.EbookRepositoryInterface

// MembershipChecker never fails: lookup problems are reported as "not a member".
type MembershipChecker interface {
	CheckMembership(ctx context.Context, email, phone string) bool
}

// EbookDispatcher delivers, or enqueues the delivery of, the ebooks of a new prospect.
type EbookDispatcher interface {
	Dispatch(ctx context.Context, prospect *entity.Prospect) error
}
