package metadata

import (
	"context"

	"github.com/shishobooks/shoka/pkg/models"
)

// Provider inspects a book and proposes a patch for its metadata. A nil
// patch with a nil error means the provider has nothing to say. Providers
// must not write anything themselves.
type Provider interface {
	Name() string
	Extract(ctx context.Context, book *models.Book, media *models.Media) (*BookPatch, error)
}
