package entity

import (
	"time"

	"condo-assistant-be/pkg/ocr"

	"github.com/google/uuid"
)

// Document lifecycle states for the analysis pipeline.
const (
	DocumentStatusPending    = "pending"
	DocumentStatusProcessing = "processing"
	DocumentStatusCompleted  = "completed"
	DocumentStatusFailed     = "failed"
)

type Document struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey"`
	ApartmentId uuid.UUID `gorm:"type:uuid;index"`
	FileName    string
	FilePath    string
	OcrStatus   string
	// Extracted full text, annotated page tree and flattened search
	// index, populated once analysis completes. OcrText falls back to
	// the raw shard text when no structure was recognized.
	OcrText        string
	OcrPages       []*ocr.Page
	OcrSearchIndex []ocr.SearchIndexEntry
	// Output prefix of the last analysis run, kept so re-processing can
	// reuse existing shards without resubmitting jobs.
	OutputPrefix string
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    *time.Time
	DeletedAt    *time.Time
	IsDeleted    bool
}
