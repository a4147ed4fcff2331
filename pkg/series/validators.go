package series

import (
	"time"

	"github.com/shishobooks/shoka/pkg/models"
)

type ListSeriesQuery struct {
	Limit     int  `query:"limit" json:"limit,omitempty" default:"24" validate:"min=1,max=50"`
	Offset    int  `query:"offset" json:"offset,omitempty" validate:"min=0"`
	LibraryID *int `query:"library_id" json:"library_id,omitempty" validate:"omitempty,min=1"`
}

type BookPayload struct {
	LibraryID        int       `json:"library_id" validate:"required,min=1"`
	Name             string    `json:"name" mod:"trim" validate:"required,max=500"`
	URL              string    `json:"url" mod:"trim" validate:"required,locator"`
	FileLastModified time.Time `json:"file_last_modified"`
	FileSize         int64     `json:"file_size" validate:"min=0"`
}

func (p BookPayload) Book() *models.Book {
	return &models.Book{
		LibraryID:        p.LibraryID,
		Name:             p.Name,
		URL:              p.URL,
		FileLastModified: p.FileLastModified,
		FileSize:         p.FileSize,
	}
}

type BooksPayload struct {
	Books []BookPayload `json:"books" mod:"dive" validate:"dive"`
}

func (p BooksPayload) Models() []*models.Book {
	bs := make([]*models.Book, 0, len(p.Books))
	for _, b := range p.Books {
		bs = append(bs, b.Book())
	}
	return bs
}

type RemoveBooksPayload struct {
	URLs []string `json:"urls" validate:"required,min=1,dive,required"`
}

type CreateSeriesPayload struct {
	Name             string        `json:"name" mod:"trim" validate:"required,max=500"`
	URL              string        `json:"url" mod:"trim" validate:"required,locator"`
	FileLastModified time.Time     `json:"file_last_modified"`
	Books            []BookPayload `json:"books" mod:"dive" validate:"dive"`
}
