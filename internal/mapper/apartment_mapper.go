package mapper

import (
	"time"

	"condo-assistant-be/internal/entity"
	"condo-assistant-be/internal/model"

	"gorm.io/gorm"
)

type ApartmentMapper struct{}

func NewApartmentMapper() *ApartmentMapper {
	return &ApartmentMapper{}
}

func (m *ApartmentMapper) ToEntity(a *model.Apartment) *entity.Apartment {
	if a == nil {
		return nil
	}

	var deletedAt *time.Time
	if a.DeletedAt.Valid {
		t := a.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !a.UpdatedAt.IsZero() {
		t := a.UpdatedAt
		updatedAt = &t
	}

	return &entity.Apartment{
		Id:        a.Id,
		Name:      a.Name,
		Address:   a.Address,
		UserId:    a.UserId,
		CreatedAt: a.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: a.DeletedAt.Valid,
	}
}

func (m *ApartmentMapper) ToModel(a *entity.Apartment) *model.Apartment {
	if a == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if a.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *a.DeletedAt, Valid: true}
	} else if a.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if a.UpdatedAt != nil {
		updatedAt = *a.UpdatedAt
	}

	return &model.Apartment{
		Id:        a.Id,
		Name:      a.Name,
		Address:   a.Address,
		UserId:    a.UserId,
		CreatedAt: a.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
	}
}
