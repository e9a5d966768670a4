package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dimsonMba/MTSU-Connect/internal/config"
	"github.com/dimsonMba/MTSU-Connect/internal/core"
	db "github.com/dimsonMba/MTSU-Connect/internal/core/database"
	"github.com/dimsonMba/MTSU-Connect/internal/core/ingestion"
	"github.com/dimsonMba/MTSU-Connect/internal/core/llm"
	"github.com/dimsonMba/MTSU-Connect/internal/core/objectstore"
)

type App struct {
	DBClient     core.DbClient
	ObjectClient core.ObjectClient
	Ingestor     *ingestion.Ingestor
	LLM          *llm.GeminiLLM
	Server       *Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Database initialized and ready.")

	objClient, err := objectstore.NewS3Client(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Object client initialized and ready.")

	embedder := llm.NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.EmbedModel)

	llmProvider, err := llm.NewGeminiLLM(appCtx, cfg.AIAPIKey, cfg.GenModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the LLM client, %w", err)
	}

	ingCfg := &ingestion.Config{
		MaxChunkChars:   cfg.ChunkMaxChars,
		ChunkOverlap:    cfg.ChunkOverlap,
		EmbedBatchSize:  cfg.EmbedBatchSize,
		InsertBatchSize: cfg.InsertBatchSize,
	}
	ingestor := ingestion.NewIngestor(dbClient, objClient, embedder, cfg.BucketName, ingCfg)

	server := NewServer(cfg, dbClient, ingestor, embedder, llmProvider)

	return &App{
		DBClient:     dbClient,
		ObjectClient: objClient,
		Ingestor:     ingestor,
		LLM:          llmProvider,
		Server:       server,
	}, nil
}

func (a *App) Close() {
	if a.LLM != nil {
		_ = a.LLM.Close()
	}
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
