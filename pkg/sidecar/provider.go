package sidecar

import (
	"context"

	"github.com/shishobooks/shoka/pkg/metadata"
	"github.com/shishobooks/shoka/pkg/models"
)

// Provider proposes the contents of a book's sidecar file as its metadata.
type Provider struct{}

func NewProvider() *Provider {
	return &Provider{}
}

func (*Provider) Name() string {
	return models.DataSourceSidecar
}

func (*Provider) Extract(_ context.Context, book *models.Book, _ *models.Media) (*metadata.BookPatch, error) {
	s, err := Read(Path(book.URL))
	if err != nil || s == nil {
		return nil, err
	}
	return &s.BookPatch, nil
}
