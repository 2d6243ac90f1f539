package entity

import (
	"time"

	"condo-assistant-be/pkg/chatstream"

	"github.com/google/uuid"
)

type ChatMessage struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Content       string
	Role          string
	Sources       []chatstream.Source
	ChatSessionId uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt     time.Time
	UpdatedAt     *time.Time
	DeletedAt     *time.Time
	IsDeleted     bool
}
