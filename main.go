package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/tomascufaro/whatsup-assistant/internal/agent"
	"github.com/tomascufaro/whatsup-assistant/internal/config"
	"github.com/tomascufaro/whatsup-assistant/internal/llm"
	"github.com/tomascufaro/whatsup-assistant/internal/logging"
	"github.com/tomascufaro/whatsup-assistant/internal/memory"
	"github.com/tomascufaro/whatsup-assistant/internal/tool"
	transport "github.com/tomascufaro/whatsup-assistant/internal/transport/http"
	"github.com/tomascufaro/whatsup-assistant/internal/whatsapp"
	"github.com/tomascufaro/whatsup-assistant/policy"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	logger.Info().
		Int("http_port", cfg.HTTPPort).
		Str("llm_endpoint", cfg.LLMEndpointURL).
		Bool("tools_enabled", cfg.ToolsEnabled).
		Msg("starting assistant")

	// Initialize model client
	llmClient := llm.NewHTTPClient(cfg.LLMEndpointURL, cfg.LLMAPIKey, cfg.LLMTimeout, logger)

	// Initialize conversation memory
	mem := memory.NewManager(memory.NewInMemoryStore(), cfg.MaxTurns)

	// Initialize tools and the policy engine
	var registry *tool.Registry
	var policyEngine *policy.Engine
	if cfg.ToolsEnabled {
		db, err := tool.OpenDB(cfg.ToolDBPath)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to open tool database")
		}
		defer db.Close()

		registry, err = tool.NewRegistry(
			tool.NewClientDatabase(db),
			tool.NewCalendar(db),
			tool.NewEmail(tool.SMTPConfig{
				Host:     cfg.SMTPHost,
				Port:     cfg.SMTPPort,
				Username: cfg.SMTPUsername,
				Password: cfg.SMTPPassword,
				From:     cfg.SMTPFrom,
			}),
		)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build tool registry")
		}

		policyEngine, err = policy.NewEngine(context.Background(), policy.DefaultPolicy)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize policy engine")
		}
	}

	// Initialize orchestrator
	a := agent.New(mem, llmClient, registry, policyEngine, agent.Config{
		MaxToolSteps:       cfg.MaxToolSteps,
		MaxTokens:          cfg.LLMMaxTokens,
		Temperature:        cfg.LLMTemperature,
		AllowedEmailDomain: cfg.EmailAllowedDomain,
	}, logger)

	// Initialize the Meta sender only when credentials are present; the
	// Twilio flow replies in-band and needs none.
	var sender transport.MessageSender
	if cfg.MetaAccessToken != "" && cfg.MetaPhoneNumberID != "" {
		sender = whatsapp.NewSender(cfg.MetaAccessToken, cfg.MetaPhoneNumberID, logger)
	}

	h := transport.NewHandler(a, sender, cfg.MetaVerifyToken, logger)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	h.RegisterRoutes(e)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	logger.Info().Int("port", cfg.HTTPPort).Msg("server started")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server gracefully")
	}

	logger.Info().Msg("assistant stopped")
}
