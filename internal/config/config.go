package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Keys     APIKeys
	DocAi    DocAiConfig
	Chat     ChatConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	IngestTopic        string
	AlertEmail         string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type APIKeys struct {
	GoogleGemini string
}

// DocAiConfig holds the batch analysis settings: the regional endpoint,
// the processor resource names and the bucket shared by uploads and
// shard output.
type DocAiConfig struct {
	CredentialsFile string
	Location        string
	LayoutProcessor string
	OcrProcessor    string
	Bucket          string
	GeometryMode    string // "direct" or "yflip"
}

type ChatConfig struct {
	Model          string
	EmbeddingModel string
	Structured     bool
	RetrievalMode  string // "SIMILARITY" or "FULL_CONTEXT"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			IngestTopic:        getEnv("INGEST_DOCUMENT_TOPIC_NAME", "INGEST_DOCUMENT"),
			AlertEmail:         getEnv("INGEST_ALERT_EMAIL", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "CondoAssistant"),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
		},
		DocAi: DocAiConfig{
			CredentialsFile: getEnv("DOCAI_CREDENTIALS_FILE", "service-account.json"),
			Location:        getEnv("DOCAI_LOCATION", "us"),
			LayoutProcessor: getEnv("DOCAI_LAYOUT_PROCESSOR", ""),
			OcrProcessor:    getEnv("DOCAI_OCR_PROCESSOR", ""),
			Bucket:          getEnv("DOCAI_BUCKET", ""),
			GeometryMode:    getEnv("OCR_GEOMETRY_MODE", "direct"),
		},
		Chat: ChatConfig{
			Model:          getEnv("CHAT_MODEL", "gemini-2.0-flash"),
			EmbeddingModel: getEnv("EMBEDDING_MODEL", "text-embedding-004"),
			Structured:     getEnvAsBool("CHAT_STRUCTURED_OUTPUT", true),
			RetrievalMode:  getEnv("CHAT_RETRIEVAL_MODE", "SIMILARITY"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
