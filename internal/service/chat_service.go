package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"condo-assistant-be/internal/constant"
	"condo-assistant-be/internal/dto"
	"condo-assistant-be/internal/entity"
	"condo-assistant-be/internal/repository/memory"
	"condo-assistant-be/internal/repository/specification"
	"condo-assistant-be/internal/repository/unitofwork"
	"condo-assistant-be/pkg/chatbot"
	"condo-assistant-be/pkg/chatstream"
	"condo-assistant-be/pkg/rag"
	"condo-assistant-be/pkg/store"

	"github.com/google/uuid"
)

const sessionTitleMaxLen = 50

// CompletionResult carries what the controller needs after the stream
// has been written out.
type CompletionResult struct {
	SessionId uuid.UUID
	Mode      chatstream.GenerationMode
}

// CompletionTurn carries everything a prepared chat turn resolved
// before the response body started streaming.
type CompletionTurn struct {
	session       *entity.ChatSession
	systemPrompt  string
	histories     []*chatbot.ChatHistory
	retrievalMode string
	query         string
	passages      []store.Passage
}

// IChatService defines the assistant chat interface
type IChatService interface {
	CreateSession(ctx context.Context, userId uuid.UUID, request *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error)
	GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error)
	DeleteSession(ctx context.Context, userId uuid.UUID, request *dto.DeleteSessionRequest) error

	// PrepareCompletion resolves the session, assembles the retrieval
	// context and persists the user message. It runs before the body
	// starts streaming so a failure can still surface as a plain HTTP
	// error instead of an empty 200.
	PrepareCompletion(ctx context.Context, userId uuid.UUID, request *dto.ChatCompletionRequest) (*CompletionTurn, error)

	// StreamCompletion generates the answer for a prepared turn,
	// writing protocol records to out as fragments arrive. Failures
	// past this point reach the client as error records on the stream.
	StreamCompletion(ctx context.Context, turn *CompletionTurn, out *chatstream.StreamWriter) (*CompletionResult, error)

	// GenerationMode reports which generation call StreamCompletion
	// will use, needed before streaming starts because it rides a
	// response header.
	GenerationMode() chatstream.GenerationMode
}

type chatService struct {
	uowFactory     unitofwork.RepositoryFactory
	chatbotClient  *chatbot.GeminiClient
	contextBuilder *rag.Builder
	sessionRepo    *memory.SessionRepository
	generationMode chatstream.GenerationMode
	retrievalMode  string
	ragLogger      *log.Logger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	chatbotClient *chatbot.GeminiClient,
	contextBuilder *rag.Builder,
	sessionRepo *memory.SessionRepository,
	generationMode chatstream.GenerationMode,
	retrievalMode string,
) IChatService {
	if retrievalMode == "" {
		retrievalMode = store.ModeSimilarity
	}
	return &chatService{
		uowFactory:     uowFactory,
		chatbotClient:  chatbotClient,
		contextBuilder: contextBuilder,
		sessionRepo:    sessionRepo,
		generationMode: generationMode,
		retrievalMode:  retrievalMode,
		ragLogger:      initRagLogger(),
	}
}

func (cs *chatService) GenerationMode() chatstream.GenerationMode {
	return cs.generationMode
}

func initRagLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "llm_rag.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[LLM-RAG] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}

// CreateSession creates a new chat session bound to one apartment
func (cs *chatService) CreateSession(ctx context.Context, userId uuid.UUID, request *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	apartment, err := uow.ApartmentRepository().FindOne(ctx,
		specification.ByID{ID: request.ApartmentId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if apartment == nil {
		return nil, fmt.Errorf("apartment not found or access denied")
	}

	now := time.Now()
	chatSession := entity.ChatSession{
		Id:          uuid.New(),
		UserId:      userId,
		ApartmentId: request.ApartmentId,
		Title:       "Unnamed session",
		CreatedAt:   now,
	}

	if err := uow.ChatSessionRepository().Create(ctx, &chatSession); err != nil {
		return nil, err
	}

	return &dto.CreateSessionResponse{Id: chatSession.Id}, nil
}

// GetAllSessions retrieves all chat sessions owned by the user
func (cs *chatService) GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	chatSessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.GetAllSessionsResponse, 0, len(chatSessions))
	for _, s := range chatSessions {
		response = append(response, &dto.GetAllSessionsResponse{
			Id:          s.Id,
			ApartmentId: s.ApartmentId,
			Title:       s.Title,
			CreatedAt:   s.CreatedAt,
			UpdatedAt:   s.UpdatedAt,
		})
	}

	return response, nil
}

// GetChatHistory retrieves chat history for a session
func (cs *chatService) GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	sess, err := cs.findOwnedSession(ctx, uow, userId, sessionId)
	if err != nil {
		return nil, err
	}

	chatMessages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sess.Id},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	resp := make([]*dto.GetChatHistoryResponse, 0, len(chatMessages))
	for _, msg := range chatMessages {
		resp = append(resp, &dto.GetChatHistoryResponse{
			Id:        msg.Id,
			Role:      msg.Role,
			Content:   msg.Content,
			Sources:   msg.Sources,
			CreatedAt: msg.CreatedAt,
		})
	}

	return resp, nil
}

// DeleteSession removes a chat session and its messages
func (cs *chatService) DeleteSession(ctx context.Context, userId uuid.UUID, request *dto.DeleteSessionRequest) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	sess, err := cs.findOwnedSession(ctx, uow, userId, request.ChatSessionId)
	if err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChatSessionRepository().Delete(ctx, sess.Id); err != nil {
		return err
	}
	if err := uow.ChatMessageRepository().DeleteByChatSessionId(ctx, sess.Id); err != nil {
		return err
	}

	cs.sessionRepo.Delete(sess.Id.String())

	return uow.Commit()
}

// PrepareCompletion does everything for one chat turn that can still
// fail with a plain HTTP error: session resolution, context assembly,
// prompt building, user-message persistence. The user message is
// persisted here, before generation, so a failed generation still
// leaves the user turn in history, matching a retryable client flow.
func (cs *chatService) PrepareCompletion(
	ctx context.Context,
	userId uuid.UUID,
	request *dto.ChatCompletionRequest,
) (*CompletionTurn, error) {

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	query := lastUserContent(request.Messages)
	if query == "" {
		return nil, fmt.Errorf("no user message in request")
	}

	var sess *entity.ChatSession
	var err error
	if request.SessionId != nil {
		sess, err = cs.findOwnedSession(ctx, uow, userId, *request.SessionId)
	} else {
		sess, err = cs.createSessionForTurn(ctx, uow, userId, query)
	}
	if err != nil {
		return nil, err
	}

	apartmentName := ""
	apartment, err := uow.ApartmentRepository().FindOne(ctx, specification.ByID{ID: sess.ApartmentId})
	if err == nil && apartment != nil {
		apartmentName = apartment.Name
	}

	retrievalMode := cs.resolveRetrievalMode(sess)

	contextResult, err := cs.contextBuilder.Build(ctx, uow, sess.ApartmentId, query, retrievalMode)
	if err != nil {
		// Builder degrades internally; an error here is unexpected.
		cs.ragLogger.Printf("[ERROR] Context build failed: %v", err)
		contextResult = &rag.Result{Context: rag.NoDocumentsPlaceholder}
	}

	userMessage := entity.ChatMessage{
		Id:            uuid.New(),
		Content:       query,
		Role:          constant.ChatMessageRoleUser,
		ChatSessionId: sess.Id,
		CreatedAt:     time.Now(),
	}
	if err := uow.ChatMessageRepository().Create(ctx, &userMessage); err != nil {
		return nil, err
	}

	return &CompletionTurn{
		session:       sess,
		systemPrompt:  constant.BuildChatSystemPrompt(apartmentName, contextResult.Context),
		histories:     toChatHistories(request.Messages),
		retrievalMode: retrievalMode,
		query:         query,
		passages:      contextResult.Passages,
	}, nil
}

// StreamCompletion runs the generation call for a prepared turn:
// streamed fragments, citation settlement, assistant-message
// persistence.
func (cs *chatService) StreamCompletion(
	ctx context.Context,
	turn *CompletionTurn,
	out *chatstream.StreamWriter,
) (*CompletionResult, error) {

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	sess := turn.session

	structured := cs.generationMode == chatstream.ModeStructured
	accumulator := chatstream.NewAccumulator(cs.generationMode)

	streamErr := cs.chatbotClient.StreamGenerate(ctx, turn.systemPrompt, turn.histories, structured,
		func(text string) error {
			if err := out.WriteFragment(text); err != nil {
				return err
			}
			// Mirror the emitted record into the accumulator so the
			// settled answer matches what the client assembled.
			encoded, err := json.Marshal(text)
			if err != nil {
				return err
			}
			accumulator.Feed([]byte(chatstream.RecordFragment + ":" + string(encoded) + "\n"))
			return nil
		})
	if streamErr != nil {
		cs.ragLogger.Printf("[ERROR] Generation failed for session %s: %v", sess.Id, streamErr)
		out.WriteError("An error occurred while generating the answer")
		return nil, streamErr
	}

	if err := out.WriteFinish("stop"); err != nil {
		return nil, err
	}
	accumulator.Close()

	final := accumulator.Finalize()

	assistantMessage := entity.ChatMessage{
		Id:            uuid.New(),
		Content:       final.Answer,
		Role:          constant.ChatMessageRoleModel,
		Sources:       final.Sources,
		ChatSessionId: sess.Id,
		CreatedAt:     time.Now(),
	}
	if err := uow.ChatMessageRepository().Create(ctx, &assistantMessage); err != nil {
		cs.ragLogger.Printf("[WARN] Failed to persist assistant message for session %s: %v", sess.Id, err)
	}

	cs.rememberTurn(sess, turn.retrievalMode, turn.query, turn.passages)

	return &CompletionResult{SessionId: sess.Id, Mode: cs.generationMode}, nil
}

func (cs *chatService) findOwnedSession(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, sessionId uuid.UUID) (*entity.ChatSession, error) {
	sess, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("session not found or access denied")
	}
	return sess, nil
}

// createSessionForTurn backs a sessionless completion request with a
// fresh session titled after the first user turn. The user's most
// recently created apartment anchors retrieval.
func (cs *chatService) createSessionForTurn(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, query string) (*entity.ChatSession, error) {
	apartment, err := uow.ApartmentRepository().FindOne(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}
	if apartment == nil {
		return nil, fmt.Errorf("no apartment registered")
	}

	sess := &entity.ChatSession{
		Id:          uuid.New(),
		UserId:      userId,
		ApartmentId: apartment.Id,
		Title:       truncateTitle(query),
		CreatedAt:   time.Now(),
	}
	if err := uow.ChatSessionRepository().Create(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// resolveRetrievalMode prefers a per-session override set earlier in
// the conversation, falling back to the service default.
func (cs *chatService) resolveRetrievalMode(sess *entity.ChatSession) string {
	if cached, found := cs.sessionRepo.Get(sess.Id.String()); found && cached.Mode != "" {
		return cached.Mode
	}
	return cs.retrievalMode
}

func (cs *chatService) rememberTurn(sess *entity.ChatSession, mode string, query string, passages []store.Passage) {
	cached, found := cs.sessionRepo.Get(sess.Id.String())
	if !found {
		cached = &store.Session{
			ID:          sess.Id.String(),
			UserID:      sess.UserId.String(),
			ApartmentID: sess.ApartmentId.String(),
		}
	}
	cached.Mode = mode
	cached.LastQuery = query
	cached.LastPassages = passages
	cs.sessionRepo.Save(cached)
}

func lastUserContent(messages []dto.ChatCompletionMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == constant.ChatMessageRoleUser {
			return messages[i].Content
		}
	}
	return ""
}

func toChatHistories(messages []dto.ChatCompletionMessage) []*chatbot.ChatHistory {
	histories := make([]*chatbot.ChatHistory, 0, len(messages))
	for _, m := range messages {
		role := m.Role
		if role == "assistant" || role == constant.ChatMessageRoleSystem {
			role = constant.ChatMessageRoleModel
		}
		histories = append(histories, &chatbot.ChatHistory{
			Chat: m.Content,
			Role: role,
		})
	}
	return histories
}

func truncateTitle(s string) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= sessionTitleMaxLen {
		return string(runes)
	}
	return string(runes[:sessionTitleMaxLen])
}
