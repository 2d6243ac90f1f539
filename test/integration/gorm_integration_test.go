package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"condo-assistant-be/internal/entity"
	"condo-assistant-be/internal/repository/specification"
	"condo-assistant-be/internal/repository/unitofwork"
	"condo-assistant-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.ApartmentRepository())
	assert.NotNil(t, uow.DocumentRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	t.Run("Check Document Chunk Repository", func(t *testing.T) {
		count, err := uow.DocumentChunkRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("DocumentChunk count: %d", count)
	})

	t.Run("Check Transactional Document Registration", func(t *testing.T) {
		userId := uuid.New()
		apartmentId := uuid.New()

		apartment := &entity.Apartment{
			Id:     apartmentId,
			Name:   "Integration Court",
			UserId: userId,
		}
		err := uow.ApartmentRepository().Create(context.Background(), apartment)
		assert.NoError(t, err)

		// Transaction Test
		ctx := context.Background()
		err = uow.Begin(ctx)
		assert.NoError(t, err)
		defer uow.Rollback()

		documentId := uuid.New()
		document := &entity.Document{
			Id:          documentId,
			ApartmentId: apartmentId,
			FileName:    "integration.pdf",
			FilePath:    "uploads/integration.pdf",
			OcrStatus:   entity.DocumentStatusPending,
		}
		err = uow.DocumentRepository().Create(ctx, document)
		assert.NoError(t, err)

		session := &entity.ChatSession{
			Id:          uuid.New(),
			UserId:      userId,
			ApartmentId: apartmentId,
			Title:       "Integration session",
		}
		err = uow.ChatSessionRepository().Create(ctx, session)
		assert.NoError(t, err)

		err = uow.Commit()
		assert.NoError(t, err)

		found, err := uow.DocumentRepository().FindOne(context.Background(), specification.ByID{ID: documentId})
		assert.NoError(t, err)
		assert.NotNil(t, found)
		assert.Equal(t, entity.DocumentStatusPending, found.OcrStatus)

		t.Log("Successfully created Document and Session in Transaction")
	})
}
