package rag

import (
	"context"
	"fmt"
	"log"

	"condo-assistant-be/internal/repository/specification"
	"condo-assistant-be/internal/repository/unitofwork"
	"condo-assistant-be/pkg/embedding"
	"condo-assistant-be/pkg/store"

	"github.com/google/uuid"
)

// Retriever handles vector search over an apartment's document chunks
type Retriever struct {
	embeddingProvider embedding.EmbeddingProvider
	logger            *log.Logger
}

// NewRetriever creates a new chunk retriever
func NewRetriever(embeddingProvider embedding.EmbeddingProvider, logger *log.Logger) *Retriever {
	return &Retriever{
		embeddingProvider: embeddingProvider,
		logger:            logger,
	}
}

// Config encapsulates search parameters
type Config struct {
	Threshold float64
	TopK      int
}

// DefaultConfig returns default search configuration
func DefaultConfig() Config {
	return Config{
		Threshold: 0.3,
		TopK:      20,
	}
}

// Execute runs vector search and returns scored passages with provenance
func (r *Retriever) Execute(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	apartmentId uuid.UUID,
	query string,
	config Config,
) ([]store.Passage, error) {

	// Generate embedding
	embeddingRes, err := r.embeddingProvider.Generate(query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}

	// Execute vector search
	scoredResults, err := uow.DocumentChunkRepository().SearchSimilarWithScore(
		ctx,
		embeddingRes.Embedding.Values,
		config.TopK,
		apartmentId,
		config.Threshold,
	)
	if err != nil {
		r.logger.Printf("[ERROR] Vector search failed: %v", err)
		return nil, err
	}

	r.logger.Printf("[DEBUG] Raw search results: %d chunks", len(scoredResults))

	passages := make([]store.Passage, 0, len(scoredResults))
	for _, res := range scoredResults {
		passages = append(passages, store.Passage{
			FileId:  res.Chunk.DocumentId.String(),
			Page:    res.Chunk.PageNumber,
			BlockId: res.Chunk.BlockIndex,
			Content: res.Chunk.Content,
			Score:   float32(res.Similarity),
		})
	}

	// Hydrate with source file names
	if err := r.hydratePassages(ctx, uow, passages); err != nil {
		r.logger.Printf("[WARN] Failed to hydrate passages: %v", err)
	}

	return passages, nil
}

func (r *Retriever) hydratePassages(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	passages []store.Passage,
) error {

	if len(passages) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var documentIds []uuid.UUID
	for _, p := range passages {
		if seen[p.FileId] {
			continue
		}
		seen[p.FileId] = true
		documentIds = append(documentIds, uuid.MustParse(p.FileId))
	}

	documents, err := uow.DocumentRepository().FindAll(ctx, specification.ByIDs{IDs: documentIds})
	if err != nil {
		return err
	}

	nameMap := make(map[string]string)
	for _, d := range documents {
		nameMap[d.Id.String()] = d.FileName
	}

	for i := range passages {
		if name, ok := nameMap[passages[i].FileId]; ok {
			passages[i].Title = name
		}
	}

	return nil
}
