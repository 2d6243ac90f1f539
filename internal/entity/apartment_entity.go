package entity

import (
	"time"

	"github.com/google/uuid"
)

type Apartment struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string
	Address   string
	UserId    uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
