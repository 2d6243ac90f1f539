package contract

import (
	"context"

	"condo-assistant-be/internal/entity"
	"condo-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
)

type DocumentRepository interface {
	Create(ctx context.Context, document *entity.Document) error
	Update(ctx context.Context, document *entity.Document) error
	// UpdateStatus writes only the lifecycle columns so a long analysis
	// run never clobbers page data written by a concurrent update.
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, errorMessage string) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
