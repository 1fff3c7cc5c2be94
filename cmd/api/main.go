package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"proposalapi/docs"
	"proposalapi/internal/config"
	"proposalapi/internal/database"
	"proposalapi/internal/database/migration"
	handlers "proposalapi/internal/http/handler"
	"proposalapi/internal/http/middleware"
	"proposalapi/internal/llm"
	"proposalapi/internal/otel"
	"proposalapi/internal/repository/postgres"
	"proposalapi/internal/scrape"
	"proposalapi/internal/service"
	"proposalapi/internal/storage"
)

// @title Proposal Generation API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Tracing (degrades to no-op when the exporter is unavailable)
	shutdownTracing, err := otel.Init(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(context.Background())

	// PostgreSQL connection (pooled via database/sql, otelsql-instrumented)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, time.UTC, cfg.Database.Host); err != nil {
		log.Fatalf("failed to run migration: %v", err)
	}

	// S3-compatible object storage for the uploaded PDFs
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	// The provider clients read their API keys from the environment.
	if os.Getenv("OPENAI_API_KEY") == "" {
		log.Println(`{"level":"warn","msg":"OPENAI_API_KEY is not set, OpenAI models and summarization will fail"}`)
	}
	if os.Getenv("ANTHROPIC_API_KEY") == "" {
		log.Println(`{"level":"warn","msg":"ANTHROPIC_API_KEY is not set, Anthropic models will fail"}`)
	}

	// Repositories and services
	attRepo := postgres.NewAttachmentPostgres(db)
	registry := llm.NewRegistry(cfg.LLM)
	scraper := scrape.New(cfg.Scrape)
	summarizer := service.NewSummarizer(registry, cfg.LLM)

	attSvc := service.NewAttachmentService(objStore, attRepo, cfg.Upload.MaxSizeBytes)
	propSvc := service.NewProposalService(registry, summarizer, attSvc, scraper)
	tplSvc := service.NewTemplateService(cfg.TemplateDir)
	maintSvc := service.NewMaintenanceService(attRepo, objStore, cfg.Upload)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    int(cfg.Upload.MaxSizeBytes) + 1024*1024,
	})

	// Global middleware
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.Origins(), ","),
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Content-Type,X-Request-ID",
	}))

	promMiddleware, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("failed to register prometheus metrics: %v", err)
	}
	app.Use(promMiddleware.Handler())
	app.Get("/metrics", func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())(c.Context())
		return nil
	})

	handlers.RegisterRoutes(app, db, handlers.Services{
		Templates:   tplSvc,
		Proposals:   propSvc,
		Attachments: attSvc,
		Extractor:   scraper,
		Maintenance: maintSvc,
	})

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	// Retention sweep in the background
	go maintSvc.Run(ctx)

	// Serve until a shutdown signal arrives
	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf(`{"level":"error","msg":"shutdown failed","error":%q}`, err.Error())
		}
	}
}
