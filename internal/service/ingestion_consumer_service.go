package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"condo-assistant-be/internal/dto"
	"condo-assistant-be/internal/entity"
	"condo-assistant-be/internal/pkg/mailer"
	"condo-assistant-be/internal/repository/specification"
	"condo-assistant-be/internal/repository/unitofwork"
	"condo-assistant-be/internal/websocket"
	"condo-assistant-be/pkg/docai"
	"condo-assistant-be/pkg/embedding"
	"condo-assistant-be/pkg/events"
	pktNats "condo-assistant-be/pkg/nats"
	"condo-assistant-be/pkg/ocr"
	"condo-assistant-be/pkg/rag"
	"condo-assistant-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// IngestionConfig carries the analysis service settings the workflow
// needs per run.
type IngestionConfig struct {
	Bucket             string
	LayoutProcessor    string
	OcrProcessor       string // optional second pass for geometry backfill
	AlertEmail         string // optional operator alert address
	GeometryMode       ocr.GeometryMode
	ChunkSize          int
	ChunkOverlap       int
	SearchIndexMaxSize int
}

type IIngestionConsumerService interface {
	Consume(ctx context.Context) error
}

type ingestionConsumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	docaiClient       *docai.Client
	embeddingProvider embedding.EmbeddingProvider
	contextBuilder    *rag.Builder
	wsHub             *websocket.Hub
	emailService      mailer.IEmailService
	eventPublisher    *pktNats.Publisher
	cfg               IngestionConfig
}

func NewIngestionConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	docaiClient *docai.Client,
	embeddingProvider embedding.EmbeddingProvider,
	contextBuilder *rag.Builder,
	wsHub *websocket.Hub,
	emailService mailer.IEmailService,
	eventPublisher *pktNats.Publisher,
	cfg IngestionConfig,
) IIngestionConsumerService {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1500
	}
	if cfg.ChunkOverlap <= 0 {
		cfg.ChunkOverlap = 200
	}
	if cfg.SearchIndexMaxSize <= 0 {
		cfg.SearchIndexMaxSize = ocr.DefaultIndexCap
	}
	return &ingestionConsumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		docaiClient:       docaiClient,
		embeddingProvider: embeddingProvider,
		contextBuilder:    contextBuilder,
		wsHub:             wsHub,
		emailService:      emailService,
		eventPublisher:    eventPublisher,
		cfg:               cfg,
	}
}

func (cs *ingestionConsumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *ingestionConsumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishIngestDocumentMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Processing document analysis for DocumentId: %s (reuse=%v)", payload.DocumentId, payload.Reuse)

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: payload.DocumentId})
	if err != nil {
		log.Printf("[ERROR] Failed to get document %s: %v", payload.DocumentId, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	if document == nil {
		log.Printf("[ERROR] Document not found: %s", payload.DocumentId)
		msg.Ack() // Document deleted? Ack.
		return
	}

	if err := uow.DocumentRepository().UpdateStatus(ctx, document.Id, entity.DocumentStatusProcessing, ""); err != nil {
		log.Printf("[ERROR] Failed to mark document %s as processing: %v", document.Id, err)
		msg.Nack()
		return
	}
	cs.notifyStatus(ctx, uow, document, entity.DocumentStatusProcessing, "")

	if err := cs.runIngestion(ctx, uow, document, payload.Reuse); err != nil {
		log.Printf("[ERROR] Ingestion failed for document %s: %v", document.Id, err)
		if statusErr := uow.DocumentRepository().UpdateStatus(ctx, document.Id, entity.DocumentStatusFailed, err.Error()); statusErr != nil {
			log.Printf("[ERROR] Failed to mark document %s as failed: %v", document.Id, statusErr)
		}
		cs.notifyStatus(ctx, uow, document, entity.DocumentStatusFailed, err.Error())
		cs.alertFailure(document, err)
		cs.publishEvent(ctx, "DOCUMENT_FAILED", document, err.Error())
		// Retrying is an explicit re-trigger decision, not automatic.
		msg.Ack()
		return
	}

	cs.notifyStatus(ctx, uow, document, entity.DocumentStatusCompleted, "")
	cs.publishEvent(ctx, "DOCUMENT_PROCESSED", document, "")
	cs.contextBuilder.InvalidateFullContext(ctx, document.ApartmentId)

	log.Printf("[SUCCESS] Document processed: %s", document.Id)
	msg.Ack()
}

// runIngestion executes the whole analysis workflow: batch jobs (or
// shard reuse), structural extraction, geometry merge, search index,
// chunk embedding, persistence.
func (cs *ingestionConsumerService) runIngestion(ctx context.Context, uow unitofwork.UnitOfWork, document *entity.Document, reuse bool) error {
	if cs.docaiClient == nil {
		return fmt.Errorf("document analysis client not configured")
	}

	outputPrefix := document.OutputPrefix
	if !reuse {
		var err error
		outputPrefix, err = cs.submitJobs(ctx, document)
		if err != nil {
			return err
		}
	}
	if outputPrefix == "" {
		return fmt.Errorf("no analysis output prefix recorded")
	}

	primaryPages, rawText, err := cs.extractPages(ctx, outputPrefix+"layout/")
	if err != nil {
		return err
	}

	if cs.cfg.OcrProcessor != "" {
		secondaryPages, _, err := cs.extractPages(ctx, outputPrefix+"ocr/")
		if err != nil {
			// The second pass only improves geometry. Keep going.
			log.Printf("[WARN] OCR pass results unavailable for document %s: %v", document.Id, err)
		} else {
			matched := ocr.MergeGeometry(primaryPages, secondaryPages)
			log.Printf("[INFO] Geometry merge backfilled %d blocks for document %s", matched, document.Id)
		}
	}

	searchIndex := ocr.BuildSearchIndex(primaryPages, cs.cfg.SearchIndexMaxSize)

	document.OcrText = documentFullText(primaryPages, rawText)
	document.OcrPages = primaryPages
	document.OcrSearchIndex = searchIndex
	document.OutputPrefix = outputPrefix
	document.OcrStatus = entity.DocumentStatusCompleted
	document.ErrorMessage = ""
	if err := uow.DocumentRepository().Update(ctx, document); err != nil {
		return fmt.Errorf("persist analysis results: %w", err)
	}

	cs.embedChunks(ctx, uow, document, searchIndex)

	return nil
}

// submitJobs uploads the source PDF when needed, starts the layout job
// plus the optional OCR job, and waits for both.
func (cs *ingestionConsumerService) submitJobs(ctx context.Context, document *entity.Document) (string, error) {
	inputUri := document.FilePath
	if !strings.HasPrefix(inputUri, "gs://") {
		f, err := os.Open(document.FilePath)
		if err != nil {
			return "", fmt.Errorf("open source file: %w", err)
		}
		defer f.Close()

		objectName := fmt.Sprintf("uploads/%s/%s", document.Id, document.FileName)
		inputUri, err = cs.docaiClient.UploadObject(ctx, cs.cfg.Bucket, objectName, f, "application/pdf")
		if err != nil {
			return "", err
		}
	}

	runId := time.Now().UTC().Format("20060102T150405")
	outputPrefix := fmt.Sprintf("gs://%s/results/%s/%s/", cs.cfg.Bucket, document.Id, runId)

	jobs := []docai.JobSpec{
		{ProcessorName: cs.cfg.LayoutProcessor, OutputPrefix: outputPrefix + "layout/"},
	}
	if cs.cfg.OcrProcessor != "" {
		jobs = append(jobs, docai.JobSpec{ProcessorName: cs.cfg.OcrProcessor, OutputPrefix: outputPrefix + "ocr/"})
	}

	if err := cs.docaiClient.RunJobs(ctx, inputUri, jobs); err != nil {
		return "", err
	}

	return outputPrefix, nil
}

// extractPages parses every result shard under prefix. The raw shard
// text comes back alongside the structured pages so callers can fall
// back to it when no structure was recognized.
func (cs *ingestionConsumerService) extractPages(ctx context.Context, prefix string) ([]*ocr.Page, string, error) {
	shards, err := cs.docaiClient.FetchShardDocuments(ctx, prefix)
	if err != nil {
		return nil, "", err
	}

	extractor := ocr.NewExtractor(cs.cfg.GeometryMode, log.Default())

	var pages []*ocr.Page
	var raw strings.Builder
	for _, shard := range shards {
		pages = append(pages, extractor.Extract(shard)...)
		if shard.Text != "" {
			if raw.Len() > 0 {
				raw.WriteString("\n")
			}
			raw.WriteString(shard.Text)
		}
	}
	return pages, raw.String(), nil
}

// documentFullText prefers the assembled block text; an unrecognized
// response shape degrades to the raw shard text instead of completing
// with nothing.
func documentFullText(pages []*ocr.Page, rawText string) string {
	if text := ocr.FullText(pages); text != "" {
		return text
	}
	return rawText
}

// embedChunks replaces the document's chunk embeddings with ones built
// from the fresh search index. Failures here degrade retrieval quality
// but never fail the ingestion: full-context mode still works.
func (cs *ingestionConsumerService) embedChunks(ctx context.Context, uow unitofwork.UnitOfWork, document *entity.Document, searchIndex []ocr.SearchIndexEntry) {
	type pageText struct {
		page       int
		firstBlock int
		text       strings.Builder
	}

	var pageOrder []int
	byPage := make(map[int]*pageText)
	for blockId, e := range searchIndex {
		pt, ok := byPage[e.PageNumber]
		if !ok {
			pt = &pageText{page: e.PageNumber, firstBlock: blockId}
			byPage[e.PageNumber] = pt
			pageOrder = append(pageOrder, e.PageNumber)
		}
		if pt.text.Len() > 0 {
			pt.text.WriteString("\n")
		}
		pt.text.WriteString(e.Text)
	}

	var newChunks []*entity.DocumentChunk
	for _, page := range pageOrder {
		pt := byPage[page]
		chunks := utils.SplitText(pt.text.String(), cs.cfg.ChunkSize, cs.cfg.ChunkOverlap)
		for i, chunk := range chunks {
			res, err := cs.embeddingProvider.Generate(chunk, embedding.TaskRetrievalDocument)
			if err != nil {
				log.Printf("[WARN] Embedding failed for document %s page %d chunk %d, skipping vector index: %v", document.Id, page, i, err)
				return
			}
			newChunks = append(newChunks, &entity.DocumentChunk{
				Id:             uuid.New(),
				Content:        chunk,
				EmbeddingValue: res.Embedding.Values,
				DocumentId:     document.Id,
				PageNumber:     page,
				BlockIndex:     pt.firstBlock,
				ChunkIndex:     len(newChunks),
				CreatedAt:      time.Now(),
			})
		}
	}

	if err := uow.Begin(ctx); err != nil {
		log.Printf("[WARN] Failed to begin chunk transaction for document %s: %v", document.Id, err)
		return
	}
	defer uow.Rollback()

	if err := uow.DocumentChunkRepository().DeleteByDocumentId(ctx, document.Id); err != nil {
		log.Printf("[WARN] Failed to delete old chunks for document %s: %v", document.Id, err)
		return
	}
	if len(newChunks) > 0 {
		if err := uow.DocumentChunkRepository().CreateBulk(ctx, newChunks); err != nil {
			log.Printf("[WARN] Failed to create chunks for document %s: %v", document.Id, err)
			return
		}
	}
	if err := uow.Commit(); err != nil {
		log.Printf("[WARN] Failed to commit chunks for document %s: %v", document.Id, err)
		return
	}

	log.Printf("[INFO] Stored %d chunk embeddings for document %s", len(newChunks), document.Id)
}

func (cs *ingestionConsumerService) notifyStatus(ctx context.Context, uow unitofwork.UnitOfWork, document *entity.Document, status string, errorMessage string) {
	if cs.wsHub == nil {
		return
	}

	apartment, err := uow.ApartmentRepository().FindOne(ctx, specification.ByID{ID: document.ApartmentId})
	if err != nil || apartment == nil {
		log.Printf("[WARN] Cannot resolve apartment %s for status push: %v", document.ApartmentId, err)
		return
	}

	cs.wsHub.Send(apartment.UserId, websocket.StatusUpdate{
		DocumentId:   document.Id,
		FileName:     document.FileName,
		OcrStatus:    status,
		ErrorMessage: errorMessage,
	})
}

func (cs *ingestionConsumerService) alertFailure(document *entity.Document, cause error) {
	if cs.emailService == nil || cs.cfg.AlertEmail == "" {
		return
	}
	if err := cs.emailService.SendIngestionFailureAlert(cs.cfg.AlertEmail, document.FileName, document.Id.String(), cause.Error()); err != nil {
		log.Printf("[WARN] Failed to send failure alert: %v", err)
	}
}

func (cs *ingestionConsumerService) publishEvent(ctx context.Context, eventType string, document *entity.Document, detail string) {
	if cs.eventPublisher == nil {
		return
	}
	evt := events.BaseEvent{
		Type: eventType,
		Data: map[string]interface{}{
			"document_id":  document.Id,
			"apartment_id": document.ApartmentId,
			"file_name":    document.FileName,
			"detail":       detail,
		},
		OccurredAt: time.Now(),
	}
	if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
		log.Printf("[WARN] Failed to publish %s event: %v", eventType, err)
	}
}
