package mapper

import (
	"encoding/json"
	"time"

	"condo-assistant-be/internal/entity"
	"condo-assistant-be/internal/model"
	"condo-assistant-be/pkg/ocr"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}

	var deletedAt *time.Time
	if d.DeletedAt.Valid {
		t := d.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !d.UpdatedAt.IsZero() {
		t := d.UpdatedAt
		updatedAt = &t
	}

	var pages []*ocr.Page
	if len(d.OcrPages) > 0 {
		// Unparseable page JSON leaves the viewer without highlights but
		// keeps the record readable.
		_ = json.Unmarshal(d.OcrPages, &pages)
	}

	var searchIndex []ocr.SearchIndexEntry
	if len(d.OcrSearchIndex) > 0 {
		_ = json.Unmarshal(d.OcrSearchIndex, &searchIndex)
	}

	return &entity.Document{
		Id:             d.Id,
		ApartmentId:    d.ApartmentId,
		FileName:       d.FileName,
		FilePath:       d.FilePath,
		OcrStatus:      d.OcrStatus,
		OcrText:        d.OcrText,
		OcrPages:       pages,
		OcrSearchIndex: searchIndex,
		OutputPrefix:   d.OutputPrefix,
		ErrorMessage:   d.ErrorMessage,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
		IsDeleted:      d.DeletedAt.Valid,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if d.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *d.DeletedAt, Valid: true}
	} else if d.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if d.UpdatedAt != nil {
		updatedAt = *d.UpdatedAt
	}

	var pages datatypes.JSON
	if d.OcrPages != nil {
		if raw, err := json.Marshal(d.OcrPages); err == nil {
			pages = datatypes.JSON(raw)
		}
	}

	var searchIndex datatypes.JSON
	if d.OcrSearchIndex != nil {
		if raw, err := json.Marshal(d.OcrSearchIndex); err == nil {
			searchIndex = datatypes.JSON(raw)
		}
	}

	return &model.Document{
		Id:             d.Id,
		ApartmentId:    d.ApartmentId,
		FileName:       d.FileName,
		FilePath:       d.FilePath,
		OcrStatus:      d.OcrStatus,
		OcrText:        d.OcrText,
		OcrPages:       pages,
		OcrSearchIndex: searchIndex,
		OutputPrefix:   d.OutputPrefix,
		ErrorMessage:   d.ErrorMessage,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
	}
}

func (m *DocumentMapper) ToEntities(documents []*model.Document) []*entity.Document {
	entities := make([]*entity.Document, len(documents))
	for i, d := range documents {
		entities[i] = m.ToEntity(d)
	}
	return entities
}
