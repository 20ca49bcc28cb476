package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/relicworks/itemgate/pkg/app/analyze"
	"github.com/relicworks/itemgate/pkg/config"
	handlers "github.com/relicworks/itemgate/pkg/handlers/http"
	"github.com/relicworks/itemgate/pkg/infra/gemini"
	infraLogger "github.com/relicworks/itemgate/pkg/infra/logger"
	"github.com/relicworks/itemgate/pkg/ratelimit"
	"github.com/relicworks/itemgate/pkg/server"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	logger := infraLogger.NewLogger()

	cfg, err := config.Load("./config")
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	// One store backs both limiters; built here so every request shares it.
	store := ratelimit.NewStore()
	if cfg.RateLimit.JanitorEnabled {
		store.StartJanitor(ctx, cfg.RateLimit.JanitorInterval, cfg.RateLimit.JanitorGrace)
	}

	clientLimiter := ratelimit.NewClientLimiter(
		store, cfg.RateLimit.ClientLimit, cfg.RateLimit.ClientWindow, nil,
	)
	dailyLimiter := ratelimit.NewDailyLimiter(store, cfg.RateLimit.DailyLimit, nil)

	// A missing credential is surfaced per request as a configuration error
	// rather than refusing to start, so the health endpoint stays useful.
	var model analyze.ModelClient
	if cfg.Gemini.APIKey == "" {
		logger.Warn("GEMINI_API_KEY is not set, analyze requests will fail with a configuration error")
	} else {
		geminiClient, err := gemini.NewClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			logger.Fatalf("failed to initialize gemini client: %v", err)
		}
		model = geminiClient
	}

	analyzer := analyze.NewAnalyzer(analyze.AnalyzerDI{
		Logger:        logger,
		ClientLimiter: clientLimiter,
		DailyLimiter:  dailyLimiter,
		Model:         model,
		Prompts:       analyze.NewPromptBuilder(nil),
		Timeout:       cfg.Gemini.Timeout,
	})

	handlerTransport := handlers.HandlerTransport{
		AnalyzeItemHandler: handlers.NewAnalyzeItemHandler(logger, analyzer),
	}

	srv := server.NewAppServer(server.AppServerDI{
		Config:           cfg,
		Logger:           logger,
		HandlerTransport: handlerTransport,
	})

	go func() {
		if err := srv.Run(); err != nil {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	fmt.Println("shutting down server...")
	if err := srv.Shutdown(); err != nil {
		fmt.Println("error shutting down server:", err)
		os.Exit(1)
	}
	fmt.Println("server gracefully stopped")
}
