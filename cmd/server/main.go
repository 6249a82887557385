package main

import (
	"context"
	"log"
	"os"
	"time"

	"pdfqa-backend/chunker"
	"pdfqa-backend/config"
	"pdfqa-backend/embedding"
	"pdfqa-backend/handlers"
	"pdfqa-backend/pdf"
	"pdfqa-backend/service"
	"pdfqa-backend/storage"
	"pdfqa-backend/store"

	"github.com/google/generative-ai-go/genai"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

func main() {
	// Load .env file from project root (relative to cmd/server/)
	// Try current directory first, then project root
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found, using environment variables")
		}
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize storage
	fileStorage, err := storage.NewStorageFromEnv()
	if err != nil {
		logger.Fatalf("Failed to initialize storage: %v", err)
	}
	logger.Info("Storage initialized")

	embedder, err := embedding.New(cfg.Embedder)
	if err != nil {
		logger.Fatalf("Failed to initialize embedder: %v", err)
	}

	geminiClient, err := initGemini()
	if err != nil {
		logger.Fatalf("Failed to initialize Gemini: %v", err)
	}

	ttl := time.Duration(cfg.Session.TTLMinutes) * time.Minute
	sessionStore, cleanup, err := initSessionStore(ttl, time.Duration(cfg.Session.SweepIntervalMinutes)*time.Minute, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize session store: %v", err)
	}
	defer cleanup()

	// Initialize services
	ingestService := service.NewIngestService(
		service.IngestWithStorage(fileStorage),
		service.IngestWithExtractor(pdf.NewExtractor(logger)),
		service.IngestWithSplitter(chunker.NewSplitter(cfg.Chunker.ChunkSize, cfg.Chunker.ChunkOverlap)),
		service.IngestWithEmbedder(embedder),
		service.IngestWithSessionStore(sessionStore),
		service.IngestWithLogger(logger),
	)

	answerService := service.NewAnswerService(
		service.AnswerWithSessionStore(sessionStore),
		service.AnswerWithEmbedder(embedder),
		service.AnswerWithGenerator(service.NewGeminiGenerator(geminiClient, cfg.Generation.Model)),
		service.AnswerWithTopK(cfg.Retrieval.TopK),
		service.AnswerWithTemperature(*cfg.Generation.Temperature),
		service.AnswerWithLogger(logger),
	)

	// Initialize handlers and routes
	documentHandler := handlers.NewDocumentHandler(ingestService, cfg.Upload.MaxFileSizeMB*1024*1024)
	questionHandler := handlers.NewQuestionHandler(answerService)
	r := handlers.SetupRouter(documentHandler, questionHandler)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Infof("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}

// initSessionStore picks Postgres when DATABASE_URL is set, otherwise an
// in-process store.
func initSessionStore(ttl, sweepInterval time.Duration, logger *logrus.Logger) (store.SessionStore, func(), error) {
	connString := os.Getenv("DATABASE_URL")
	if connString == "" {
		logger.Info("DATABASE_URL not set, using in-memory session store")
		memStore := store.NewMemoryStore(ttl, sweepInterval)
		return memStore, memStore.Close, nil
	}

	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, nil, err
	}

	// Enable pgvector extension
	if _, err := pool.Exec(context.Background(), "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		logger.Warnf("Failed to create pgvector extension: %v", err)
		logger.Warn("This may be normal if extension is already installed or requires superuser privileges")
	}

	logger.Info("Postgres connection established with pgvector support")
	return store.NewPostgresStore(pool, ttl), pool.Close, nil
}

func initGemini() (*genai.Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Println("Warning: GEMINI_API_KEY not set")
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	log.Println("Gemini client initialized")
	return client, nil
}
