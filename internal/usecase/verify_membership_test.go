package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sniperbusiness/ebook-funnel/internal/entity"
)

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type sleepRecorder struct {
	calls []time.Duration
	err   error
}

func (s *sleepRecorder) Sleep(ctx context.Context, d time.Duration) error {
	s.calls = append(s.calls, d)
	return s.err
}

func newVerifyUC(repo *MockProspectRepository, checker *MockMembershipChecker, sleeper *sleepRecorder) *VerifyMembershipUseCase {
	uc := NewVerifyMembershipUseCase(repo, checker, zap.NewNop().Sugar())
	uc.Now = func() time.Time { return fixedNow }
	uc.Sleep = sleeper.Sleep
	return uc
}

func prospect(id string, status entity.SbcStatus) *entity.Prospect {
	return &entity.Prospect{
		ID:        id,
		FirstName: "Awa",
		LastName:  "Diop",
		Whatsapp:  "237690000000",
		Email:     id + "@example.com",
		EbookID:   "ebook-1",
		SbcStatus: status,
	}
}

func TestVerifyProspect_NotFound(t *testing.T) {
	repo := new(MockProspectRepository)
	checker := new(MockMembershipChecker)
	uc := newVerifyUC(repo, checker, &sleepRecorder{})

	repo.On("FindByID", mock.Anything, "missing").Return(nil, entity.ErrProspectNotFound)

	got, err := uc.VerifyProspect(context.Background(), "missing")

	assert.NoError(t, err)
	assert.Nil(t, got)
	checker.AssertNotCalled(t, "CheckMembership", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyProspect_AlreadyMemberIsSkipped(t *testing.T) {
	repo := new(MockProspectRepository)
	checker := new(MockMembershipChecker)
	uc := newVerifyUC(repo, checker, &sleepRecorder{})

	member := prospect("p1", entity.StatusInscrit)
	member.MembershipFound = true
	repo.On("FindByID", mock.Anything, "p1").Return(member, nil)

	got, err := uc.VerifyProspect(context.Background(), "p1")

	require.NoError(t, err)
	assert.Same(t, member, got)
	checker.AssertNotCalled(t, "CheckMembership", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "ApplyVerification", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyProspect_MemberFound(t *testing.T) {
	repo := new(MockProspectRepository)
	checker := new(MockMembershipChecker)
	uc := newVerifyUC(repo, checker, &sleepRecorder{})

	p := prospect("p1", entity.StatusNonInscrit)
	updated := *p
	updated.MembershipFound = true
	updated.SbcStatus = entity.StatusInscrit
	updated.LastVerifiedAt = &fixedNow

	repo.On("FindByID", mock.Anything, "p1").Return(p, nil)
	checker.On("CheckMembership", mock.Anything, p.Email, p.Whatsapp).Return(true)
	repo.On("ApplyVerification", mock.Anything, "p1", true, fixedNow).Return(&updated, nil)

	got, err := uc.VerifyProspect(context.Background(), "p1")

	require.NoError(t, err)
	assert.Equal(t, entity.StatusInscrit, got.SbcStatus)
	assert.True(t, got.MembershipFound)
	repo.AssertExpectations(t)
	checker.AssertExpectations(t)
}

func TestVerifyProspect_LookupFailureStillStampsVerification(t *testing.T) {
	repo := new(MockProspectRepository)
	checker := new(MockMembershipChecker)
	uc := newVerifyUC(repo, checker, &sleepRecorder{})

	p := prospect("p1", entity.StatusNonInscrit)
	updated := *p
	updated.LastVerifiedAt = &fixedNow

	repo.On("FindByID", mock.Anything, "p1").Return(p, nil)
	checker.On("CheckMembership", mock.Anything, p.Email, p.Whatsapp).Return(false)
	repo.On("ApplyVerification", mock.Anything, "p1", false, fixedNow).Return(&updated, nil)

	got, err := uc.VerifyProspect(context.Background(), "p1")

	require.NoError(t, err)
	assert.False(t, got.MembershipFound)
	assert.Equal(t, entity.StatusNonInscrit, got.SbcStatus)
	require.NotNil(t, got.LastVerifiedAt)
	assert.Equal(t, fixedNow, *got.LastVerifiedAt)
}

func TestVerifyProspect_StoreError(t *testing.T) {
	repo := new(MockProspectRepository)
	uc := newVerifyUC(repo, new(MockMembershipChecker), &sleepRecorder{})

	repo.On("FindByID", mock.Anything, "p1").Return(nil, errors.New("connection refused"))

	got, err := uc.VerifyProspect(context.Background(), "p1")

	assert.Nil(t, got)
	assert.ErrorAs(t, err, new(*TechnicalError))
}

func TestBatchVerify_CapsBatchSize(t *testing.T) {
	repo := new(MockProspectRepository)
	uc := newVerifyUC(repo, new(MockMembershipChecker), &sleepRecorder{})

	cutoff := fixedNow.Add(-entity.VerificationCooldown)
	repo.On("FindDueForVerification", mock.Anything, cutoff, MaxVerificationBatch).Return([]*entity.Prospect{}, nil)

	result, err := uc.BatchVerify(context.Background(), 15)

	require.NoError(t, err)
	assert.Equal(t, entity.VerificationResult{}, result)
	repo.AssertExpectations(t)
}

func TestBatchVerify_SequentialWithDelay(t *testing.T) {
	repo := new(MockProspectRepository)
	checker := new(MockMembershipChecker)
	sleeper := &sleepRecorder{}
	uc := newVerifyUC(repo, checker, sleeper)

	p1 := prospect("p1", entity.StatusNonInscrit)
	p2 := prospect("p2", entity.StatusNonInscrit)
	cutoff := fixedNow.Add(-entity.VerificationCooldown)

	repo.On("FindDueForVerification", mock.Anything, cutoff, 2).Return([]*entity.Prospect{p1, p2}, nil)
	checker.On("CheckMembership", mock.Anything, p1.Email, p1.Whatsapp).Return(true).Once()
	checker.On("CheckMembership", mock.Anything, p2.Email, p2.Whatsapp).Return(false).Once()
	repo.On("ApplyVerification", mock.Anything, "p1", true, fixedNow).Return(p1, nil)
	repo.On("ApplyVerification", mock.Anything, "p2", false, fixedNow).Return(p2, nil)

	result, err := uc.BatchVerify(context.Background(), 2)

	require.NoError(t, err)
	assert.Equal(t, entity.VerificationResult{Checked: 2, NewMembers: 1}, result)
	assert.Equal(t, []time.Duration{VerificationDelay}, sleeper.calls)
	repo.AssertExpectations(t)
	checker.AssertExpectations(t)
}

func TestBatchVerify_StoreFailureDoesNotAbort(t *testing.T) {
	repo := new(MockProspectRepository)
	checker := new(MockMembershipChecker)
	uc := newVerifyUC(repo, checker, &sleepRecorder{})

	p1 := prospect("p1", entity.StatusNonInscrit)
	p2 := prospect("p2", entity.StatusNonInscrit)

	repo.On("FindDueForVerification", mock.Anything, mock.Anything, MaxVerificationBatch).Return([]*entity.Prospect{p1, p2}, nil)
	checker.On("CheckMembership", mock.Anything, mock.Anything, mock.Anything).Return(true)
	repo.On("ApplyVerification", mock.Anything, "p1", true, fixedNow).Return(nil, errors.New("deadlock detected"))
	repo.On("ApplyVerification", mock.Anything, "p2", true, fixedNow).Return(p2, nil)

	result, err := uc.BatchVerify(context.Background(), 0)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Checked)
	assert.Equal(t, 1, result.NewMembers)
}

func TestBatchVerify_CancelledBetweenChecks(t *testing.T) {
	repo := new(MockProspectRepository)
	checker := new(MockMembershipChecker)
	sleeper := &sleepRecorder{err: context.Canceled}
	uc := newVerifyUC(repo, checker, sleeper)

	p1 := prospect("p1", entity.StatusNonInscrit)
	p2 := prospect("p2", entity.StatusNonInscrit)

	repo.On("FindDueForVerification", mock.Anything, mock.Anything, MaxVerificationBatch).Return([]*entity.Prospect{p1, p2}, nil)
	checker.On("CheckMembership", mock.Anything, p1.Email, p1.Whatsapp).Return(false)
	repo.On("ApplyVerification", mock.Anything, "p1", false, fixedNow).Return(p1, nil)

	result, err := uc.BatchVerify(context.Background(), 10)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, result.Checked)
	checker.AssertNumberOfCalls(t, "CheckMembership", 1)
}

func TestBatchVerify_SelectionError(t *testing.T) {
	repo := new(MockProspectRepository)
	uc := newVerifyUC(repo, new(MockMembershipChecker), &sleepRecorder{})

	repo.On("FindDueForVerification", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

	_, err := uc.BatchVerify(context.Background(), 5)

	assert.ErrorAs(t, err, new(*TechnicalError))
}

func TestClampBatchSize(t *testing.T) {
	assert.Equal(t, 10, ClampBatchSize(0))
	assert.Equal(t, 10, ClampBatchSize(-3))
	assert.Equal(t, 10, ClampBatchSize(15))
	assert.Equal(t, 1, ClampBatchSize(1))
	assert.Equal(t, 10, ClampBatchSize(10))
}

func TestSleepContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sleepContext(ctx, time.Hour)

	assert.ErrorIs(t, err, context.Canceled)
}
