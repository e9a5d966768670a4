package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL  string
	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string
	OpenAIAPIKey string
	EmbedModel   string
	EmbedDim     int
	AIAPIKey     string
	GenModel     string
	Port         string

	// Ingestion pipeline tunables.
	ChunkMaxChars   int
	ChunkOverlap    int
	EmbedBatchSize  int
	InsertBatchSize int
	RetryAttempts   int
}

// LoadConfig loads the environment variables and returns config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		AwsAccessKey: getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey: getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:    getEnv("AWS_REGION", "us-east-2"),
		BucketName:   getEnv("BUCKET_NAME", "pdfs"),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		EmbedModel:   getEnv("EMBED_MODEL", "text-embedding-3-small"),
		EmbedDim:     getEnvInt("EMBED_DIM", 1536),
		AIAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GenModel:     getEnv("GEN_MODEL", "gemini-1.5-flash"),
		Port:         getEnv("PORT", "8080"),

		ChunkMaxChars:   getEnvInt("CHUNK_MAX_CHARS", 1600),
		ChunkOverlap:    getEnvInt("CHUNK_OVERLAP", 200),
		EmbedBatchSize:  getEnvInt("EMBED_BATCH_SIZE", 64),
		InsertBatchSize: getEnvInt("INSERT_BATCH_SIZE", 200),
		RetryAttempts:   getEnvInt("RETRY_ATTEMPTS", 3),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	if cfg.ChunkMaxChars <= cfg.ChunkOverlap {
		log.Fatalf("CHUNK_MAX_CHARS (%d) must be greater than CHUNK_OVERLAP (%d)", cfg.ChunkMaxChars, cfg.ChunkOverlap)
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}
