package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dimsonMba/MTSU-Connect/internal/app"
	"github.com/dimsonMba/MTSU-Connect/internal/config"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle SIGINT/SIGTERM for graceful shutdown
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		<-c
		cancel()
	}()

	cfg := config.LoadConfig()
	application, err := app.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer application.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return application.Server.Start()
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()
		return application.Server.Shutdown(shutdownCtx)
	})

	log.Println("API is running; DB connected and bootstrapped.")
	if err := g.Wait(); err != nil {
		log.Fatalf("server error: %v", err)
	}
	log.Println("shut down cleanly")
}
