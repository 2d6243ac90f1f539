package bootstrap

import (
	"context"
	"log"
	"os"

	"condo-assistant-be/internal/config"
	"condo-assistant-be/internal/controller"
	"condo-assistant-be/internal/handler"
	"condo-assistant-be/internal/pkg/logger"
	"condo-assistant-be/internal/pkg/mailer"
	"condo-assistant-be/internal/repository/memory"
	"condo-assistant-be/internal/repository/unitofwork"
	"condo-assistant-be/internal/service"
	"condo-assistant-be/internal/websocket"
	"condo-assistant-be/pkg/chatbot"
	"condo-assistant-be/pkg/chatstream"
	"condo-assistant-be/pkg/docai"
	"condo-assistant-be/pkg/embedding"
	"condo-assistant-be/pkg/ocr"
	"condo-assistant-be/pkg/rag"

	pktNats "condo-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ApartmentController controller.IApartmentController
	DocumentController  controller.IDocumentController
	ChatController      controller.IChatController

	// Background Services (Exposed for main.go to run)
	IngestionConsumerService service.IIngestionConsumerService

	// WebSockets
	StatusStreamHandler *handler.StatusStreamHandler
	WebSocketHub        *websocket.Hub

	// Application-wide structured logger
	AppLogger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	appLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	uowFactory := unitofwork.NewRepositoryFactory(db)

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.Email,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	embeddingProvider := embedding.NewGeminiProvider(cfg.Keys.GoogleGemini, cfg.Chat.EmbeddingModel)
	chatbotClient := chatbot.NewGeminiClient(cfg.Keys.GoogleGemini, cfg.Chat.Model)

	// In-memory working state per chat session
	sessionRepo := memory.NewSessionRepository()

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/status_stream.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// Document analysis client. A missing credential disables batch
	// processing but keeps the rest of the API alive.
	var docaiClient *docai.Client
	credentials, err := os.ReadFile(cfg.DocAi.CredentialsFile)
	if err != nil {
		log.Printf("[WARN] Document analysis disabled, cannot read credentials: %v", err)
	} else {
		ts, err := docai.NewTokenSource(context.Background(), credentials)
		if err != nil {
			log.Printf("[WARN] Document analysis disabled: %v", err)
		} else {
			docaiClient, err = docai.NewClient(context.Background(), ts, cfg.DocAi.Location, docai.DefaultConfig(), log.Default())
			if err != nil {
				log.Printf("[WARN] Document analysis disabled: %v", err)
			}
		}
	}

	// Retrieval pipeline
	ragLogger := log.New(os.Stdout, "[RAG] ", log.LstdFlags)
	retriever := rag.NewRetriever(embeddingProvider, ragLogger)
	contextBuilder := rag.NewBuilder(retriever, rdb, ragLogger)

	// 3. Services
	publisherService := service.NewPublisherService(cfg.App.IngestTopic, pubSub)
	ingestionConsumerService := service.NewIngestionConsumerService(
		pubSub,
		cfg.App.IngestTopic,
		uowFactory,
		docaiClient,
		embeddingProvider,
		contextBuilder,
		wsHub,
		emailService,
		natsPub,
		service.IngestionConfig{
			Bucket:          cfg.DocAi.Bucket,
			LayoutProcessor: cfg.DocAi.LayoutProcessor,
			OcrProcessor:    cfg.DocAi.OcrProcessor,
			AlertEmail:      cfg.App.AlertEmail,
			GeometryMode:    ocr.GeometryMode(cfg.DocAi.GeometryMode),
		},
	)

	apartmentService := service.NewApartmentService(uowFactory)
	documentService := service.NewDocumentService(uowFactory, publisherService, natsPub)

	generationMode := chatstream.ModeFreeText
	if cfg.Chat.Structured {
		generationMode = chatstream.ModeStructured
	}
	chatService := service.NewChatService(
		uowFactory,
		chatbotClient,
		contextBuilder,
		sessionRepo,
		generationMode,
		cfg.Chat.RetrievalMode,
	)

	statusStreamHandler := handler.NewStatusStreamHandler(wsHub, wsLogger)

	// 4. Controllers
	return &Container{
		StatusStreamHandler: statusStreamHandler,
		WebSocketHub:        wsHub,
		AppLogger:           appLogger,

		ApartmentController: controller.NewApartmentController(apartmentService),
		DocumentController:  controller.NewDocumentController(documentService),
		ChatController:      controller.NewChatController(chatService),

		IngestionConsumerService: ingestionConsumerService,
	}
}
