package usecase

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sniperbusiness/ebook-funnel/internal/entity"
	"github.com/sniperbusiness/ebook-funnel/internal/infra/mail"
)

// MockProspectRepository
type MockProspectRepository struct {
	mock.Mock
}

func (m *MockProspectRepository) Create(ctx context.Context, p *entity.Prospect) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProspectRepository) FindByID(ctx context.Context, id string) (*entity.Prospect, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Prospect), args.Error(1)
}

func (m *MockProspectRepository) FindAll(ctx context.Context, filter entity.ProspectFilter) ([]*entity.Prospect, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Prospect), args.Error(1)
}

func (m *MockProspectRepository) UpdateStatus(ctx context.Context, id string, status entity.SbcStatus) (*entity.Prospect, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Prospect), args.Error(1)
}

func (m *MockProspectRepository) ApplyVerification(ctx context.Context, id string, found bool, at time.Time) (*entity.Prospect, error) {
	args := m.Called(ctx, id, found, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Prospect), args.Error(1)
}

func (m *MockProspectRepository) FindDueForVerification(ctx context.Context, cutoff time.Time, limit int) ([]*entity.Prospect, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Prospect), args.Error(1)
}

func (m *MockProspectRepository) Count(ctx context.Context, filter entity.ProspectFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockProspectRepository) LatestVerifiedAt(ctx context.Context, adminID string) (*time.Time, error) {
	args := m.Called(ctx, adminID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

// MockEbookRepository
type MockEbookRepository struct {
	mock.Mock
}

func (m *MockEbookRepository) FindAll(ctx context.Context) ([]*entity.Ebook, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Ebook), args.Error(1)
}

func (m *MockEbookRepository) FindVisible(ctx context.Context) ([]*entity.Ebook, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Ebook), args.Error(1)
}

func (m *MockEbookRepository) FindByID(ctx context.Context, id string) (*entity.Ebook, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Ebook), args.Error(1)
}

// MockMembershipChecker
type MockMembershipChecker struct {
	mock.Mock
}

func (m *MockMembershipChecker) CheckMembership(ctx context.Context, email, phone string) bool {
	args := m.Called(ctx, email, phone)
	return args.Bool(0)
}

// MockTransport
type MockTransport struct {
	mock.Mock
	dryRun bool
}

func (m *MockTransport) Send(ctx context.Context, msg *mail.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockTransport) DryRun() bool { return m.dryRun }

// MockDispatcher
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, prospect *entity.Prospect) error {
	args := m.Called(ctx, prospect)
	return args.Error(0)
}
