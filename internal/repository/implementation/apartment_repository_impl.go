package implementation

import (
	"context"
	"errors"

	"condo-assistant-be/internal/entity"
	"condo-assistant-be/internal/mapper"
	"condo-assistant-be/internal/model"
	"condo-assistant-be/internal/repository/contract"
	"condo-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ApartmentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ApartmentMapper
}

func NewApartmentRepository(db *gorm.DB) contract.ApartmentRepository {
	return &ApartmentRepositoryImpl{
		db:     db,
		mapper: mapper.NewApartmentMapper(),
	}
}

func (r *ApartmentRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ApartmentRepositoryImpl) Create(ctx context.Context, apartment *entity.Apartment) error {
	m := r.mapper.ToModel(apartment)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*apartment = *r.mapper.ToEntity(m)
	return nil
}

func (r *ApartmentRepositoryImpl) Update(ctx context.Context, apartment *entity.Apartment) error {
	m := r.mapper.ToModel(apartment)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*apartment = *r.mapper.ToEntity(m)
	return nil
}

func (r *ApartmentRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Apartment{}, id).Error
}

func (r *ApartmentRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Apartment, error) {
	var m model.Apartment
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ApartmentRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Apartment, error) {
	var models []*model.Apartment
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Apartment, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *ApartmentRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.Apartment{}).Count(&count).Error
	return count, err
}
