package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anuraag-b/voice-gateway/internal/audit"
	"github.com/anuraag-b/voice-gateway/internal/cache"
	"github.com/anuraag-b/voice-gateway/internal/chat"
	"github.com/anuraag-b/voice-gateway/internal/llm"
	"github.com/anuraag-b/voice-gateway/internal/speech"
	"github.com/anuraag-b/voice-gateway/internal/spotify"
	"github.com/anuraag-b/voice-gateway/internal/tools"
	"github.com/anuraag-b/voice-gateway/internal/weather"
	"github.com/anuraag-b/voice-gateway/internal/wiki"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// main is the composition root: it loads configuration, initializes every
// service, injects dependencies, verifies the catalog/dispatch invariant,
// and starts the server.
func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	buildInfo := GetBuildInfo()
	log.Printf("Starting voice gateway | Version: %s | Commit: %s", buildInfo.Version, buildInfo.GitCommit)

	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Configuration error: %v", err)
	}
	log.Println("Configuration loaded.")

	// Redis is optional; without it the lookup cache misses and the audit
	// trail only writes to the log sink.
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Fatalf("FATAL: Could not connect to Redis at %s: %v", cfg.RedisAddr, err)
		}
		log.Println("Redis connected.")
	}

	sinks := []audit.Sink{audit.NewLogSink(os.Stdout)}
	if rdb != nil {
		sinks = append(sinks, audit.NewRedisSink(rdb, cfg.AuditStream))
	}
	trail := audit.NewTrail(cfg.EnableToolAuditing, sinks...)

	store := cache.New(rdb, cfg.CacheTTL)
	spotifyClient := spotify.New(cfg.SpotifyClientID, cfg.SpotifyClientSecret, cfg.SpotifyRedirectURI)
	weatherClient := weather.New(cfg.OpenWeatherAPIKey, store)
	wikiClient := wiki.New(store)
	transcriber := speech.NewHTTPTranscriber(cfg.SpeechServerURL)
	modelClient := llm.NewOllamaClient(cfg.OllamaURL, cfg.OllamaModel, cfg.OllamaTimeout)

	registry := tools.NewRegistry(trail)
	registerTools(registry, spotifyClient, weatherClient, wikiClient)
	if err := registry.CheckConsistency(); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	log.Printf("Tool registry initialized with %d tools.", registry.Count())

	chatService := chat.NewService(modelClient, registry)
	handler := NewGatewayHandler(chatService, registry, transcriber, spotifyClient, cfg)
	log.Println("All services initialized.")

	gin.SetMode(os.Getenv("GIN_MODE"))
	engine := gin.Default()

	chatGroup := engine.Group("/chat")
	{
		chatGroup.POST("/message", handler.HandleChatMessage)
		chatGroup.GET("/tools", handler.HandleListTools)
		chatGroup.POST("/speak", handler.HandleSpeak)
	}
	spotifyGroup := engine.Group("/spotify")
	{
		spotifyGroup.GET("/login", handler.HandleSpotifyLogin)
		spotifyGroup.GET("/callback", handler.HandleSpotifyCallback)
	}
	engine.GET("/healthz", handler.HandleHealthz)

	srv := &http.Server{Addr: fmt.Sprintf(":%s", cfg.Port), Handler: engine}
	runServerWithGracefulShutdown(srv)
}

// registerTools fills the dispatch table. Every whitelisted tool must be
// registered here; CheckConsistency fails startup when the catalog and this
// table drift apart.
func registerTools(registry *tools.Registry, spotifyClient *spotify.Client, weatherClient *weather.Client, wikiClient *wiki.Client) {
	registry.Register(tools.PlaySong, func(ctx context.Context, args map[string]any) (map[string]any, error) {
		return spotifyClient.PlaySong(ctx, tools.StringArg(args, "song"))
	})
	registry.Register(tools.PausePlayback, func(ctx context.Context, _ map[string]any) (map[string]any, error) {
		return spotifyClient.Pause(ctx)
	})
	registry.Register(tools.ResumePlayback, func(ctx context.Context, _ map[string]any) (map[string]any, error) {
		return spotifyClient.Resume(ctx)
	})
	registry.Register(tools.NextTrack, func(ctx context.Context, _ map[string]any) (map[string]any, error) {
		return spotifyClient.NextTrack(ctx)
	})
	registry.Register(tools.PreviousTrack, func(ctx context.Context, _ map[string]any) (map[string]any, error) {
		return spotifyClient.PreviousTrack(ctx)
	})
	registry.Register(tools.GetCurrentTrack, func(ctx context.Context, _ map[string]any) (map[string]any, error) {
		return spotifyClient.CurrentTrack(ctx)
	})

	registry.Register(tools.CheckWeather, func(ctx context.Context, args map[string]any) (map[string]any, error) {
		return weatherClient.Current(ctx, tools.StringArg(args, "city"))
	})
	registry.Register(tools.GetForecast, func(ctx context.Context, args map[string]any) (map[string]any, error) {
		return weatherClient.Forecast(ctx, tools.StringArg(args, "city"), tools.IntArg(args, "days", 5))
	})

	registry.Register(tools.SearchWiki, func(ctx context.Context, args map[string]any) (map[string]any, error) {
		return wikiClient.Search(ctx, tools.StringArg(args, "query"), tools.IntArg(args, "sentences", 3))
	})
	registry.Register(tools.GetWikiSummary, func(ctx context.Context, args map[string]any) (map[string]any, error) {
		return wikiClient.Summary(ctx, tools.StringArg(args, "page_title"))
	})
}

// runServerWithGracefulShutdown handles the server lifecycle.
func runServerWithGracefulShutdown(srv *http.Server) {
	go func() {
		log.Printf("Gateway is listening on http://localhost%s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Listen error: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server shutdown failed:", err)
	}

	log.Println("Server exited gracefully.")
}
