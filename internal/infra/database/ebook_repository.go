package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sniperbusiness/ebook-funnel/internal/entity"
)

const ebookColumns = `id, title, description, cover_url, pdf_url, is_visible, created_at, updated_at`

type EbookRepository struct {
	DB *sql.DB
}

func NewEbookRepository(db *sql.DB) *EbookRepository {
	return &EbookRepository{DB: db}
}

func (r *EbookRepository) FindAll(ctx context.Context) ([]*entity.Ebook, error) {
	return r.query(ctx, `SELECT `+ebookColumns+` FROM ebooks ORDER BY created_at DESC`)
}

func (r *EbookRepository) FindVisible(ctx context.Context) ([]*entity.Ebook, error) {
	return r.query(ctx, `SELECT `+ebookColumns+` FROM ebooks WHERE is_visible = TRUE ORDER BY created_at DESC`)
}

func (r *EbookRepository) FindByID(ctx context.Context, id string) (*entity.Ebook, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+ebookColumns+` FROM ebooks WHERE id = $1`, id)

	e, err := scanEbook(row)
	if err != nil {
		return nil, notFound(err, entity.ErrEbookNotFound)
	}
	return e, nil
}

func (r *EbookRepository) query(ctx context.Context, query string, args ...any) ([]*entity.Ebook, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ebooks: %w", err)
	}
	defer rows.Close()

	ebooks := []*entity.Ebook{}
	for rows.Next() {
		e, err := scanEbook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ebook: %w", err)
		}
		ebooks = append(ebooks, e)
	}
	return ebooks, rows.Err()
}

func scanEbook(row rowScanner) (*entity.Ebook, error) {
	var e entity.Ebook
	err := row.Scan(
		&e.ID,
		&e.Title,
		&e.Description,
		&e.CoverURL,
		&e.PDFURL,
		&e.IsVisible,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
