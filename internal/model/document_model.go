package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Document struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ApartmentId    uuid.UUID      `gorm:"type:uuid;not null;index"`
	FileName       string         `gorm:"type:text;not null"`
	FilePath       string         `gorm:"type:text;not null"`
	OcrStatus      string         `gorm:"type:varchar(20);not null;default:pending;index"`
	OcrText        string         `gorm:"type:text"`
	OcrPages       datatypes.JSON `gorm:"type:jsonb"`
	OcrSearchIndex datatypes.JSON `gorm:"type:jsonb"`
	OutputPrefix   string         `gorm:"type:text"`
	ErrorMessage   string         `gorm:"type:text"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

func (Document) TableName() string {
	return "documents"
}
