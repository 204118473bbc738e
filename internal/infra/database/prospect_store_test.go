package database

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sniperbusiness/ebook-funnel/internal/entity"
)

// openTestDB connects to the Postgres named by FUNNEL_TEST_DB_URL, migrates it
// and empties the prospects table. Tests are skipped when the variable is unset.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	url := os.Getenv("FUNNEL_TEST_DB_URL")
	if url == "" {
		t.Skip("FUNNEL_TEST_DB_URL not set")
	}

	ctx := context.Background()
	db, err := NewDBConnection(ctx, Config{URL: url, MaxOpenConns: 2, MaxIdleConns: 1, ConnLifetime: time.Minute})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(ctx, db))
	_, err = db.ExecContext(ctx, `TRUNCATE prospects`)
	require.NoError(t, err)

	return db
}

func seedProspect(t *testing.T, repo *ProspectRepository, status entity.SbcStatus, member bool, verifiedAt *time.Time) *entity.Prospect {
	t.Helper()

	p, err := entity.NewProspect("Awa", "Diop", "+111", "a@x.com", "ebook-1", "admin-1")
	require.NoError(t, err)
	p.SbcStatus = status
	p.MembershipFound = member
	p.LastVerifiedAt = verifiedAt

	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func dbNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func TestProspectRepository_ApplyVerification(t *testing.T) {
	repo := NewProspectRepository(openTestDB(t))
	ctx := context.Background()

	t.Run("new member is promoted to INSCRIT", func(t *testing.T) {
		p := seedProspect(t, repo, entity.StatusNonInscrit, false, nil)
		at := dbNow()

		got, err := repo.ApplyVerification(ctx, p.ID, true, at)

		require.NoError(t, err)
		assert.True(t, got.MembershipFound)
		assert.Equal(t, entity.StatusInscrit, got.SbcStatus)
		require.NotNil(t, got.LastVerifiedAt)
		assert.WithinDuration(t, at, *got.LastVerifiedAt, time.Millisecond)
	})

	t.Run("ABONNE is kept", func(t *testing.T) {
		p := seedProspect(t, repo, entity.StatusAbonne, false, nil)

		got, err := repo.ApplyVerification(ctx, p.ID, true, dbNow())

		require.NoError(t, err)
		assert.True(t, got.MembershipFound)
		assert.Equal(t, entity.StatusAbonne, got.SbcStatus)
	})

	t.Run("membership is never reset", func(t *testing.T) {
		p := seedProspect(t, repo, entity.StatusNonInscrit, false, nil)
		_, err := repo.ApplyVerification(ctx, p.ID, true, dbNow().Add(-time.Minute))
		require.NoError(t, err)

		later := dbNow()
		got, err := repo.ApplyVerification(ctx, p.ID, false, later)

		require.NoError(t, err)
		assert.True(t, got.MembershipFound)
		assert.Equal(t, entity.StatusInscrit, got.SbcStatus)
		assert.WithinDuration(t, later, *got.LastVerifiedAt, time.Millisecond)
	})

	t.Run("failed lookup only stamps the check", func(t *testing.T) {
		p := seedProspect(t, repo, entity.StatusNonInscrit, false, nil)

		got, err := repo.ApplyVerification(ctx, p.ID, false, dbNow())

		require.NoError(t, err)
		assert.False(t, got.MembershipFound)
		assert.Equal(t, entity.StatusNonInscrit, got.SbcStatus)
		assert.NotNil(t, got.LastVerifiedAt)
	})

	t.Run("unknown ids are not found", func(t *testing.T) {
		_, err := repo.ApplyVerification(ctx, "7f0d5a4e-0000-4000-8000-000000000000", true, dbNow())
		assert.ErrorIs(t, err, entity.ErrProspectNotFound)

		_, err = repo.ApplyVerification(ctx, "not-a-uuid", true, dbNow())
		assert.ErrorIs(t, err, entity.ErrProspectNotFound)
	})
}

func TestProspectRepository_FindDueForVerification(t *testing.T) {
	repo := NewProspectRepository(openTestDB(t))
	ctx := context.Background()

	now := dbNow()
	recent := now.Add(-23 * time.Hour)
	stale := now.Add(-25 * time.Hour)
	cutoff := now.Add(-entity.VerificationCooldown)

	never := seedProspect(t, repo, entity.StatusNonInscrit, false, nil)
	old := seedProspect(t, repo, entity.StatusNonInscrit, false, &stale)
	seedProspect(t, repo, entity.StatusNonInscrit, false, &recent)
	seedProspect(t, repo, entity.StatusInscrit, true, nil)
	seedProspect(t, repo, entity.StatusAbonne, true, &stale)

	due, err := repo.FindDueForVerification(ctx, cutoff, 10)
	require.NoError(t, err)

	ids := make([]string, 0, len(due))
	for _, p := range due {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{never.ID, old.ID}, ids)

	limited, err := repo.FindDueForVerification(ctx, cutoff, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, never.ID, limited[0].ID)

	notMember := false
	pending, err := repo.Count(ctx, entity.ProspectFilter{MembershipFound: &notMember, DueBefore: &cutoff})
	require.NoError(t, err)
	assert.Equal(t, 2, pending)
}

func TestProspectRepository_UpdateStatusAllowsAnyStatus(t *testing.T) {
	repo := NewProspectRepository(openTestDB(t))
	ctx := context.Background()

	p := seedProspect(t, repo, entity.StatusAbonne, true, nil)

	got, err := repo.UpdateStatus(ctx, p.ID, entity.StatusNonInscrit)

	require.NoError(t, err)
	assert.Equal(t, entity.StatusNonInscrit, got.SbcStatus)
	assert.True(t, got.MembershipFound)
}
