package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/sniperbusiness/ebook-funnel/internal/entity"
)

// lib/pq error code names: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	uniqueViolation   = "23505"
	invalidTextFormat = "22P02"
)

const prospectColumns = `id, first_name, last_name, whatsapp, email, ebook_id, admin_id, sbc_status, last_verified_at, membership_found, created_at, updated_at`

type ProspectRepository struct {
	DB *sql.DB
}

func NewProspectRepository(db *sql.DB) *ProspectRepository {
	return &ProspectRepository{DB: db}
}

func (r *ProspectRepository) Create(ctx context.Context, p *entity.Prospect) error {
	query := `
		INSERT INTO prospects (
			id, first_name, last_name, whatsapp, email, ebook_id, admin_id,
			sbc_status, last_verified_at, membership_found, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.DB.ExecContext(ctx, query,
		p.ID,
		p.FirstName,
		p.LastName,
		p.Whatsapp,
		p.Email,
		p.EbookID,
		nullString(p.AdminID),
		string(p.SbcStatus),
		p.LastVerifiedAt,
		p.MembershipFound,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("create prospect: id %s already exists: %w", p.ID, err)
		}
		return fmt.Errorf("create prospect: %w", err)
	}
	return nil
}

func (r *ProspectRepository) FindByID(ctx context.Context, id string) (*entity.Prospect, error) {
	query := `SELECT ` + prospectColumns + ` FROM prospects WHERE id = $1`

	p, err := scanProspect(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, entity.ErrProspectNotFound)
	}
	return p, nil
}

func (r *ProspectRepository) FindAll(ctx context.Context, filter entity.ProspectFilter) ([]*entity.Prospect, error) {
	where, args, err := whereClause(filter)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + prospectColumns + ` FROM prospects` + where + ` ORDER BY created_at DESC`
	return r.query(ctx, query, args...)
}

func (r *ProspectRepository) UpdateStatus(ctx context.Context, id string, status entity.SbcStatus) (*entity.Prospect, error) {
	query := `
		UPDATE prospects
		SET sbc_status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + prospectColumns

	p, err := scanProspect(r.DB.QueryRowContext(ctx, query, id, string(status)))
	if err != nil {
		return nil, notFound(err, entity.ErrProspectNotFound)
	}
	return p, nil
}

// ApplyVerification records a membership check in a single statement. Membership
// is OR-ed so a confirmed member is never reset, and only NON_INSCRIT advances to INSCRIT.
func (r *ProspectRepository) ApplyVerification(ctx context.Context, id string, found bool, at time.Time) (*entity.Prospect, error) {
	query := `
		UPDATE prospects
		SET
			last_verified_at = $2,
			membership_found = membership_found OR $3::boolean,
			sbc_status = CASE
				WHEN $3::boolean AND sbc_status = 'NON_INSCRIT' THEN 'INSCRIT'
				ELSE sbc_status
			END,
			updated_at = $2
		WHERE id = $1
		RETURNING ` + prospectColumns

	p, err := scanProspect(r.DB.QueryRowContext(ctx, query, id, at, found))
	if err != nil {
		return nil, notFound(err, entity.ErrProspectNotFound)
	}
	return p, nil
}

func (r *ProspectRepository) FindDueForVerification(ctx context.Context, cutoff time.Time, limit int) ([]*entity.Prospect, error) {
	query := `
		SELECT ` + prospectColumns + `
		FROM prospects
		WHERE membership_found = FALSE
			AND (last_verified_at IS NULL OR last_verified_at < $1)
		ORDER BY last_verified_at NULLS FIRST, created_at
		LIMIT $2
	`
	return r.query(ctx, query, cutoff, limit)
}

func (r *ProspectRepository) Count(ctx context.Context, filter entity.ProspectFilter) (int, error) {
	where, args, err := whereClause(filter)
	if err != nil {
		return 0, err
	}

	var n int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM prospects`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count prospects: %w", err)
	}
	return n, nil
}

func (r *ProspectRepository) LatestVerifiedAt(ctx context.Context, adminID string) (*time.Time, error) {
	query := `SELECT MAX(last_verified_at) FROM prospects`
	args := []any{}
	if adminID != "" {
		query += ` WHERE admin_id = $1`
		args = append(args, adminID)
	}

	var last sql.NullTime
	if err := r.DB.QueryRowContext(ctx, query, args...).Scan(&last); err != nil {
		return nil, fmt.Errorf("latest verification: %w", err)
	}
	if !last.Valid {
		return nil, nil
	}
	t := last.Time.UTC()
	return &t, nil
}

func (r *ProspectRepository) query(ctx context.Context, query string, args ...any) ([]*entity.Prospect, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query prospects: %w", err)
	}
	defer rows.Close()

	prospects := []*entity.Prospect{}
	for rows.Next() {
		p, err := scanProspect(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prospect: %w", err)
		}
		prospects = append(prospects, p)
	}
	return prospects, rows.Err()
}

// whereClause translates a filter into a WHERE clause with positional arguments.
func whereClause(f entity.ProspectFilter) (string, []any, error) {
	var conds []string
	var args []any

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.AdminID != "" {
		add("admin_id = $%d", f.AdminID)
	}
	if f.EbookID != "" {
		add("ebook_id = $%d", f.EbookID)
	}
	if f.SbcStatus != "" {
		add("sbc_status = $%d", string(f.SbcStatus))
	}
	if f.Date != "" {
		day, err := time.Parse("2006-01-02", f.Date)
		if err != nil {
			return "", nil, fmt.Errorf("invalid date filter %q: %w", f.Date, err)
		}
		add("created_at >= $%d", day)
		add("created_at < $%d", day.Add(24*time.Hour))
	}
	if f.MembershipFound != nil {
		add("membership_found = $%d", *f.MembershipFound)
	}
	if f.DueBefore != nil {
		add("(last_verified_at IS NULL OR last_verified_at < $%d)", *f.DueBefore)
	}

	if len(conds) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProspect(row rowScanner) (*entity.Prospect, error) {
	var (
		p          entity.Prospect
		adminID    sql.NullString
		status     string
		verifiedAt sql.NullTime
	)

	err := row.Scan(
		&p.ID,
		&p.FirstName,
		&p.LastName,
		&p.Whatsapp,
		&p.Email,
		&p.EbookID,
		&adminID,
		&status,
		&verifiedAt,
		&p.MembershipFound,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.AdminID = adminID.String
	p.SbcStatus = entity.SbcStatus(status)
	if verifiedAt.Valid {
		t := verifiedAt.Time.UTC()
		p.LastVerifiedAt = &t
	}
	return &p, nil
}

// notFound maps missing rows, and ids that are not valid uuids, to sentinel.
func notFound(err, sentinel error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == invalidTextFormat {
		return sentinel
	}
	return err
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
