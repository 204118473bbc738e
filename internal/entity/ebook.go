package entity

import (
	"context"
	"errors"
	"time"
)

var ErrEbookNotFound = errors.New("ebook not found")

type Ebook struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CoverURL    string    `json:"coverUrl,omitempty"`
	PDFURL      string    `json:"pdfUrl"`
	IsVisible   bool      `json:"isVisible"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type EbookRepositoryInterface interface {
	FindAll(ctx context.Context) ([]*Ebook, error)
	FindVisible(ctx context.Context) ([]*Ebook, error)
	FindByID(ctx context.Context, id string) (*Ebook, error)
}
