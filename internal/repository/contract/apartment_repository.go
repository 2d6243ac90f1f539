package contract

import (
	"context"

	"condo-assistant-be/internal/entity"
	"condo-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ApartmentRepository interface {
	Create(ctx context.Context, apartment *entity.Apartment) error
	Update(ctx context.Context, apartment *entity.Apartment) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Apartment, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Apartment, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
