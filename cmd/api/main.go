package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Facturas-api/internal/application/invoicing"
	"github.com/jhoicas/Facturas-api/internal/application/ports"
	"github.com/jhoicas/Facturas-api/internal/application/usecase"
	infraai "github.com/jhoicas/Facturas-api/internal/infrastructure/ai"
	infrapdf "github.com/jhoicas/Facturas-api/internal/infrastructure/pdf"
	infrastorage "github.com/jhoicas/Facturas-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/Facturas-api/internal/interfaces/http"
	"github.com/jhoicas/Facturas-api/pkg/config"
	"github.com/jhoicas/Facturas-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
		App:   cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("storage", cfg.Storage.Driver).
		Str("ai_provider", cfg.AI.Provider).
		Msg("iniciando aplicación")

	ctx := context.Background()

	// Backend de persistencia clave/valor
	var store ports.Storage
	switch cfg.Storage.Driver {
	case "postgres":
		pool, perr := infrastorage.NewPool(ctx, cfg.Storage.DB)
		if perr != nil {
			log.Fatal().Err(perr).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		store, err = infrastorage.NewPostgresStore(ctx, pool)
		if err != nil {
			log.Fatal().Err(err).Msg("inicializar tabla kv_store")
		}
	default:
		store, err = infrastorage.NewFileStore(cfg.Storage.Dir)
		if err != nil {
			log.Fatal().Err(err).Msg("inicializar directorio de datos")
		}
	}

	invoiceStore := invoicing.NewInvoiceStore(store, cfg.Storage.Key, log)
	invoiceStore.LoadAll(ctx)

	// Proveedor LLM para el prellenado de facturas
	var llm ports.LLMService
	switch cfg.AI.Provider {
	case "anthropic":
		llm = infraai.NewAnthropicService(cfg.AI.APIKey, cfg.AI.Model)
	case "gemini":
		llm = infraai.NewGeminiService(cfg.AI.APIKey, cfg.AI.Model)
	default:
		llm = infraai.NewHuggingFaceService(cfg.AI.APIKey, cfg.AI.Model)
	}
	aiUC := usecase.NewAIUseCase(llm, time.Duration(cfg.AI.TimeoutSeconds)*time.Second)

	pdfGenerator := infrapdf.NewMarotoPDFGenerator()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Store: invoiceStore,
		AIUC:  aiUC,
		PDF:   pdfGenerator,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	// Esperar las escrituras asíncronas pendientes antes de salir.
	invoiceStore.Flush()

	log.Info().Msg("aplicación detenida")
}
