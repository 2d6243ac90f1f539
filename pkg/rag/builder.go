package rag

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"condo-assistant-be/internal/entity"
	"condo-assistant-be/internal/repository/specification"
	"condo-assistant-be/internal/repository/unitofwork"
	"condo-assistant-be/pkg/store"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// NoDocumentsPlaceholder stands in for the context block when the
// apartment has no completed documents.
const NoDocumentsPlaceholder = "提供された文書はありません。"

const fullContextCacheTTL = 10 * time.Minute

// Builder assembles the grounded context block for answer generation.
// Two retrieval modes: similarity search over embedded chunks, or the
// concatenated search indexes of every completed document.
type Builder struct {
	retriever *Retriever
	redis     *redis.Client
	logger    *log.Logger
}

func NewBuilder(retriever *Retriever, redisClient *redis.Client, logger *log.Logger) *Builder {
	return &Builder{
		retriever: retriever,
		redis:     redisClient,
		logger:    logger,
	}
}

// Result carries the assembled context and the passages behind it
type Result struct {
	Context  string
	Passages []store.Passage
}

// Build produces the context string for the given apartment and query.
// Embedding or search failure degrades to an empty context so the chat
// can still answer without source material.
func (b *Builder) Build(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	apartmentId uuid.UUID,
	query string,
	mode string,
) (*Result, error) {

	if mode == store.ModeFullContext {
		return b.buildFullContext(ctx, uow, apartmentId)
	}
	return b.buildSimilarity(ctx, uow, apartmentId, query)
}

func (b *Builder) buildSimilarity(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	apartmentId uuid.UUID,
	query string,
) (*Result, error) {

	passages, err := b.retriever.Execute(ctx, uow, apartmentId, query, DefaultConfig())
	if err != nil {
		b.logger.Printf("[WARN] Retrieval failed, continuing with empty context: %v", err)
		return &Result{Context: NoDocumentsPlaceholder}, nil
	}

	if len(passages) == 0 {
		b.logger.Printf("[DEBUG] No relevant chunks found for the query")
		return &Result{Context: NoDocumentsPlaceholder}, nil
	}

	lines := make([]string, len(passages))
	for i, p := range passages {
		lines[i] = FormatSimilarityPassage(p)
	}

	b.logger.Printf("[DEBUG] Context loaded via vector search: %d chunks", len(passages))

	return &Result{
		Context:  strings.Join(lines, "\n\n"),
		Passages: passages,
	}, nil
}

func (b *Builder) buildFullContext(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	apartmentId uuid.UUID,
) (*Result, error) {

	cacheKey := fullContextCacheKey(apartmentId)
	if b.redis != nil {
		if cached, err := b.redis.Get(ctx, cacheKey).Result(); err == nil && cached != "" {
			b.logger.Printf("[DEBUG] Full context served from cache for apartment %s", apartmentId)
			return &Result{Context: cached}, nil
		}
	}

	documents, err := uow.DocumentRepository().FindAll(ctx,
		specification.ByApartmentID{ApartmentID: apartmentId},
		specification.ByOcrStatus{Status: entity.DocumentStatusCompleted},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		b.logger.Printf("[WARN] Document listing failed, continuing with empty context: %v", err)
		return &Result{Context: NoDocumentsPlaceholder}, nil
	}

	built := BuildFullContext(documents)
	if built == "" {
		return &Result{Context: NoDocumentsPlaceholder}, nil
	}

	if b.redis != nil {
		if err := b.redis.Set(ctx, cacheKey, built, fullContextCacheTTL).Err(); err != nil {
			b.logger.Printf("[WARN] Failed to cache full context: %v", err)
		}
	}

	return &Result{Context: built}, nil
}

// InvalidateFullContext drops the cached context block after a
// document finishes (or re-runs) ingestion.
func (b *Builder) InvalidateFullContext(ctx context.Context, apartmentId uuid.UUID) {
	if b.redis == nil {
		return
	}
	if err := b.redis.Del(ctx, fullContextCacheKey(apartmentId)).Err(); err != nil {
		b.logger.Printf("[WARN] Failed to invalidate full context cache: %v", err)
	}
}

func fullContextCacheKey(apartmentId uuid.UUID) string {
	return "ragctx:full:" + apartmentId.String()
}

// FormatSimilarityPassage renders one retrieved chunk with its
// provenance prefix. The model is instructed to copy the prefix
// verbatim into citations, so the format must stay stable.
func FormatSimilarityPassage(p store.Passage) string {
	return fmt.Sprintf("[SourceID: %s, Page: %d, File: %s]: %s", p.FileId, p.Page, p.Title, p.Content)
}

// BuildFullContext concatenates every document's flattened search
// index, each entry carrying the same provenance-prefix convention
// with the block's position in the index.
func BuildFullContext(documents []*entity.Document) string {
	var sb strings.Builder
	for _, doc := range documents {
		for blockId, e := range doc.OcrSearchIndex {
			if sb.Len() > 0 {
				sb.WriteString("\n\n")
			}
			sb.WriteString(fmt.Sprintf("[SourceID: %s, Page: %d, Block: %d]: %s", doc.Id, e.PageNumber, blockId, e.Text))
		}
	}
	return sb.String()
}
