package repository

import (
	"context"

	"doctorportal-be/internal/models"
)

// ContactSource reads raw contact documents from the backing store. Get
// returns an apperrors NotFound error when the document does not exist, which
// callers must be able to tell apart from transport failures.
type ContactSource interface {
	List(ctx context.Context, session models.Session) ([]models.RawDocument, error)
	Get(ctx context.Context, session models.Session, id string) (*models.RawDocument, error)
}
