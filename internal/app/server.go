package app

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dimsonMba/MTSU-Connect/internal/api/handlers"
	"github.com/dimsonMba/MTSU-Connect/internal/config"
	"github.com/dimsonMba/MTSU-Connect/internal/core"
	"github.com/dimsonMba/MTSU-Connect/internal/metrics"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, db core.DbClient, ing handlers.Ingestor, emb core.EmbeddingProvider, llm core.LLMProvider) *Server {
	ingestHandler := handlers.NewIngestHandler(ing)
	askHandler := handlers.NewAskHandler(db, emb, llm)
	flashcardHandler := handlers.NewFlashcardHandler(db, llm)
	docHandler := handlers.NewDocumentHandler(db)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(requestMetrics)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8888"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(api chi.Router) {
		api.Post("/ingest", ingestHandler.Ingest)
		api.Post("/ask", askHandler.Ask)
		api.Post("/flashcards/generate", flashcardHandler.Generate)
		api.Get("/flashcards", flashcardHandler.List)
		api.Post("/documents", docHandler.CreateDocument)
		api.Get("/documents/{id}", docHandler.GetDocument)
	})

	r.Handle("/metrics", metrics.Handler())

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv}
}

// Start runs the HTTP server until Shutdown or a listener error.
func (s *Server) Start() error {
	log.Printf("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}

func requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		metrics.RecordHTTPRequest(r.URL.Path, ww.Status())
	})
}
