package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/agastia7500-collab/arima/internal/config"
	"github.com/agastia7500-collab/arima/internal/handler"
	"github.com/agastia7500-collab/arima/internal/pipeline"
	"github.com/agastia7500-collab/arima/internal/race"
	"github.com/agastia7500-collab/arima/internal/session"
	"github.com/agastia7500-collab/arima/internal/stats"
	"github.com/agastia7500-collab/arima/pkg/llm"
)

const sessionTTL = 30 * time.Minute

func main() {

	godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()

	registry, err := race.Load(cfg.RosterPath)
	if err != nil {
		log.Fatalf("error loading roster: %v", err)
	}
	slog.Info("roster loaded", "entrants", registry.Len())

	var client llm.Completer
	if cfg.APIKey == "" {
		slog.Warn("no API key configured, prediction features disabled")
	} else {
		switch cfg.Provider {
		case config.ProviderAnthropic:
			client = llm.NewAnthropicClient(cfg.APIKey)
		default:
			client = llm.NewOpenAIClient(cfg.APIKey)
		}
		slog.Info("llm client ready", "provider", cfg.Provider)
	}

	sessions := session.NewManager(sessionTTL)
	go sessions.SweepLoop(context.Background(), 5*time.Minute)

	h := handler.New(sessions, registry, stats.NewLoader(), client, cfg.StatsPath, pipeline.Events2025)

	r := gin.Default()

	allowedOrigins := []string{"http://localhost:3000"}
	if cfg.FrontendURL != "" {
		allowedOrigins = append(allowedOrigins, cfg.FrontendURL)
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}))

	r.LoadHTMLGlob("web/templates/*")
	r.Static("/static", "web/static")

	r.GET("/", h.GetPage)
	r.POST("/run/comprehensive", h.RunComprehensive)
	r.POST("/run/evaluate", h.RunEvaluate)
	r.POST("/run/sign", h.RunSign)
	r.POST("/upload", h.UploadStats)
	r.GET("/health", h.GetHealth)

	err = r.Run(":" + cfg.Port)
	if err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}
