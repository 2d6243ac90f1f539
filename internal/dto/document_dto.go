package dto

import (
	"time"

	"condo-assistant-be/pkg/ocr"

	"github.com/google/uuid"
)

type RegisterDocumentRequest struct {
	ApartmentId uuid.UUID `json:"apartment_id" validate:"required"`
	FileName    string    `json:"file_name" validate:"required"`
	FilePath    string    `json:"file_path" validate:"required"`
}

type RegisterDocumentResponse struct {
	Id        uuid.UUID `json:"id"`
	OcrStatus string    `json:"ocr_status"`
}

type ProcessDocumentRequest struct {
	Id    uuid.UUID
	Reuse bool `json:"reuse"`
}

type DocumentResponse struct {
	Id           uuid.UUID  `json:"id"`
	ApartmentId  uuid.UUID  `json:"apartment_id"`
	FileName     string     `json:"file_name"`
	FilePath     string     `json:"file_path"`
	OcrStatus    string     `json:"ocr_status"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
}

type DocumentPagesResponse struct {
	Id      uuid.UUID   `json:"id"`
	OcrText string      `json:"ocr_text"`
	Pages   []*ocr.Page `json:"pages"`
}

// PublishIngestDocumentMessage triggers the asynchronous analysis
// workflow for one document.
type PublishIngestDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
	Reuse      bool      `json:"reuse"`
}
