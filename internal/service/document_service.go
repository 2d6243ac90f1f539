package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"condo-assistant-be/internal/dto"
	"condo-assistant-be/internal/entity"
	"condo-assistant-be/internal/repository/specification"
	"condo-assistant-be/internal/repository/unitofwork"
	"condo-assistant-be/pkg/events"
	pktNats "condo-assistant-be/pkg/nats"

	"github.com/google/uuid"
)

type IDocumentService interface {
	Register(ctx context.Context, userId uuid.UUID, req *dto.RegisterDocumentRequest) (*dto.RegisterDocumentResponse, error)
	Reprocess(ctx context.Context, userId uuid.UUID, req *dto.ProcessDocumentRequest) error
	GetAll(ctx context.Context, userId uuid.UUID, apartmentId uuid.UUID) ([]*dto.DocumentResponse, error)
	GetPages(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.DocumentPagesResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type documentService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
) IDocumentService {
	return &documentService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
	}
}

func (s *documentService) Register(ctx context.Context, userId uuid.UUID, req *dto.RegisterDocumentRequest) (*dto.RegisterDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	apartment, err := uow.ApartmentRepository().FindOne(ctx,
		specification.ByID{ID: req.ApartmentId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if apartment == nil {
		return nil, fmt.Errorf("apartment not found or access denied")
	}

	document := entity.Document{
		Id:          uuid.New(),
		ApartmentId: req.ApartmentId,
		FileName:    req.FileName,
		FilePath:    req.FilePath,
		OcrStatus:   entity.DocumentStatusPending,
		CreatedAt:   time.Now(),
	}

	if err := uow.DocumentRepository().Create(ctx, &document); err != nil {
		return nil, err
	}

	if err := s.publishIngestion(ctx, document.Id, false); err != nil {
		return nil, err
	}

	// Publish Event for Notification System
	if s.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: "DOCUMENT_REGISTERED",
			Data: map[string]interface{}{
				"document_id":  document.Id,
				"apartment_id": document.ApartmentId,
				"file_name":    document.FileName,
				"user_id":      userId,
			},
			OccurredAt: time.Now(),
		}
		// We log error but don't fail the request as notification is auxiliary
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			fmt.Printf("[WARN] Failed to publish DOCUMENT_REGISTERED event: %v\n", err)
		}
	}

	return &dto.RegisterDocumentResponse{
		Id:        document.Id,
		OcrStatus: document.OcrStatus,
	}, nil
}

func (s *documentService) Reprocess(ctx context.Context, userId uuid.UUID, req *dto.ProcessDocumentRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	document, err := s.findOwnedDocument(ctx, uow, userId, req.Id)
	if err != nil {
		return err
	}

	// The status field is the only duplicate-submission guard.
	if document.OcrStatus == entity.DocumentStatusProcessing {
		return fmt.Errorf("document is already being processed")
	}

	if req.Reuse && document.OutputPrefix == "" {
		return fmt.Errorf("no previous analysis results to reuse")
	}

	if err := uow.DocumentRepository().UpdateStatus(ctx, document.Id, entity.DocumentStatusPending, ""); err != nil {
		return err
	}

	return s.publishIngestion(ctx, document.Id, req.Reuse)
}

func (s *documentService) GetAll(ctx context.Context, userId uuid.UUID, apartmentId uuid.UUID) ([]*dto.DocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	apartment, err := uow.ApartmentRepository().FindOne(ctx,
		specification.ByID{ID: apartmentId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if apartment == nil {
		return nil, fmt.Errorf("apartment not found or access denied")
	}

	documents, err := uow.DocumentRepository().FindAll(ctx,
		specification.ByApartmentID{ApartmentID: apartmentId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.DocumentResponse, 0, len(documents))
	for _, d := range documents {
		response = append(response, &dto.DocumentResponse{
			Id:           d.Id,
			ApartmentId:  d.ApartmentId,
			FileName:     d.FileName,
			FilePath:     d.FilePath,
			OcrStatus:    d.OcrStatus,
			ErrorMessage: d.ErrorMessage,
			CreatedAt:    d.CreatedAt,
			UpdatedAt:    d.UpdatedAt,
		})
	}

	return response, nil
}

func (s *documentService) GetPages(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.DocumentPagesResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	document, err := s.findOwnedDocument(ctx, uow, userId, id)
	if err != nil {
		return nil, err
	}

	return &dto.DocumentPagesResponse{
		Id:      document.Id,
		OcrText: document.OcrText,
		Pages:   document.OcrPages,
	}, nil
}

func (s *documentService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	document, err := s.findOwnedDocument(ctx, uow, userId, id)
	if err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.DocumentRepository().Delete(ctx, document.Id); err != nil {
		return err
	}
	if err := uow.DocumentChunkRepository().DeleteByDocumentId(ctx, document.Id); err != nil {
		return err
	}

	return uow.Commit()
}

func (s *documentService) findOwnedDocument(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, id uuid.UUID) (*entity.Document, error) {
	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, fmt.Errorf("document not found")
	}

	apartment, err := uow.ApartmentRepository().FindOne(ctx,
		specification.ByID{ID: document.ApartmentId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if apartment == nil {
		return nil, fmt.Errorf("document not found or access denied")
	}

	return document, nil
}

func (s *documentService) publishIngestion(ctx context.Context, documentId uuid.UUID, reuse bool) error {
	payload := dto.PublishIngestDocumentMessage{
		DocumentId: documentId,
		Reuse:      reuse,
	}
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.publisherService.Publish(ctx, payloadJson)
}
