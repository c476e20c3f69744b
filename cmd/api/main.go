package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/yokitheyo/fileconverter/internal/config"
	"github.com/yokitheyo/fileconverter/internal/domain"
	httpHandler "github.com/yokitheyo/fileconverter/internal/handler/http"
	"github.com/yokitheyo/fileconverter/internal/handler/middleware"
	"github.com/yokitheyo/fileconverter/internal/infrastructure/converter"
	"github.com/yokitheyo/fileconverter/internal/infrastructure/scratch"
	"github.com/yokitheyo/fileconverter/internal/usecase"
)

func main() {
	zlog.Init()
	zlog.Logger.Info().Msg("Starting File Converter API Server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(os.Getenv("APP_CONFIG"))
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to load config")
	}

	if err := zlog.SetLevel(cfg.Logging.Level); err != nil {
		zlog.Logger.Fatal().Err(err).Str("level", cfg.Logging.Level).Msg("invalid log level")
	}

	// Optional capabilities are resolved once here and injected.
	ffmpegPath, videoOK := converter.LookupFFmpeg(&cfg.Video)
	caps := domain.Capabilities{Video: videoOK}

	workspace, err := scratch.NewWorkspace(&cfg.Scratch)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("Failed to initialize scratch workspace")
	}

	conversionUsecase := usecase.NewConversionUsecase(
		converter.NewImageConverter(&cfg.Conversion),
		converter.NewDocumentConverter(),
		converter.NewAudioConverter(ffmpegPath),
		workspace,
		caps,
		&cfg.Conversion,
	)

	engine := newEngine(cfg, conversionUsecase)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSec) * time.Second,
	}

	go func() {
		zlog.Logger.Info().
			Str("addr", cfg.Server.Addr).
			Bool("video", caps.Video).
			Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Logger.Fatal().Err(err).Msg("Failed to start API server")
		}
	}()

	<-ctx.Done()
	zlog.Logger.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Logger.Error().Err(err).Msg("HTTP server shutdown failed")
	} else {
		zlog.Logger.Info().Msg("HTTP server stopped gracefully")
	}

	zlog.Logger.Info().Msg("API shutdown complete")
}

func newEngine(cfg *config.Config, service domain.ConversionService) *ginext.Engine {
	engine := ginext.New(cfg.Server.GinMode)
	engine.Use(
		middleware.RequestIDMiddleware(),
		middleware.ErrorHandlerMiddleware(),
		middleware.LoggerMiddleware(),
		middleware.CORSMiddleware(cfg.CORS.AllowedOrigins),
	)

	engine.GET("/health", func(c *ginext.Context) {
		c.JSON(http.StatusOK, ginext.H{"status": "ok"})
	})

	convertHandler := httpHandler.NewConvertHandler(service, cfg.Server.MaxUploadSizeMB)
	convertHandler.RegisterRoutes(engine)

	engine.GET("/", func(c *ginext.Context) {
		c.File(filepath.Join(cfg.Server.StaticDir, "index.html"))
	})
	engine.Static("/static", cfg.Server.StaticDir)

	return engine
}
