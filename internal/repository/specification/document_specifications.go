package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByApartmentID struct {
	ApartmentID uuid.UUID
}

func (s ByApartmentID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("apartment_id = ?", s.ApartmentID)
}

type ByOcrStatus struct {
	Status string
}

func (s ByOcrStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("ocr_status = ?", s.Status)
}
