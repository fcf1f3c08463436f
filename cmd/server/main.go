package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"petpal/internal/api"
	"petpal/internal/artifacts"
	"petpal/internal/config"
	"petpal/internal/core"
	"petpal/internal/speech"
	"petpal/internal/store"
)

func main() {
	// Load configuration
	config.LoadConfig()

	// Setup logging
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if config.AppConfig.LogLevel == "DEBUG" {
		log.Println("Service starting in DEBUG mode")
	}

	// Initialize database store
	dbStore, err := store.NewSQLiteStore(config.AppConfig.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer dbStore.Close()

	// Initialize LLM service
	llmService, err := core.NewLLMService(context.Background(), config.AppConfig.GeminiAPIKey)
	if err != nil {
		log.Fatalf("Failed to initialize LLM service: %v", err)
	}
	defer llmService.Close()

	// Audio artifacts: public directory, TTL deletion, orphan sweeping
	artifactManager, err := artifacts.NewManager(
		config.AppConfig.StaticDir,
		time.Duration(config.AppConfig.AudioTTLSeconds)*time.Second,
	)
	if err != nil {
		log.Fatalf("Failed to initialize artifact manager: %v", err)
	}
	defer artifactManager.Close()

	// Speech synthesis cascade, best backend first. The cascade and the
	// theme rotator each get their own rand.Rand: the generator is not
	// safe for concurrent use and the two run under different locks.
	cascade := speech.NewCascade(artifactManager, rand.New(rand.NewSource(time.Now().UnixNano())),
		speech.NewElevenLabsBackend(config.AppConfig.ElevenLabsAPIKey, config.AppConfig.ElevenLabsVoiceID),
		speech.NewOpenAIBackend(config.AppConfig.OpenAIAPIKey),
		speech.NewGTranslateBackend(),
	)

	// Conversation orchestration
	prompts := &core.PromptBuilder{PetName: config.AppConfig.PetName}
	orchestrator := core.NewOrchestrator(
		dbStore,
		core.NewUserContextTracker(),
		core.NewThemeRotator(rand.New(rand.NewSource(time.Now().UnixNano()))),
		llmService,
		cascade,
		prompts,
	)

	throttle := core.NewRequestThrottle(time.Duration(config.AppConfig.CooldownSeconds) * time.Second)

	// Initialize API Handler and Router
	apiHandler := api.NewAPIHandler(orchestrator, throttle)
	router := api.NewRouter(apiHandler, config.AppConfig.StaticDir)

	// Start HTTP server
	serverAddr := fmt.Sprintf(":%s", config.AppConfig.HTTPPort)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // generation plus the TTS cascade can take a while
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		log.Printf("Starting server on %s. Press Ctrl+C to quit.", serverAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", serverAddr, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting gracefully")
}
