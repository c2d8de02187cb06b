package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/florencygajera/nl2sql-chatbot-backend/pkg/config"
	"github.com/florencygajera/nl2sql-chatbot-backend/pkg/database"
	"github.com/florencygajera/nl2sql-chatbot-backend/pkg/executor"
	"github.com/florencygajera/nl2sql-chatbot-backend/pkg/handlers"
	"github.com/florencygajera/nl2sql-chatbot-backend/pkg/llm"
	"github.com/florencygajera/nl2sql-chatbot-backend/pkg/logging"
	"github.com/florencygajera/nl2sql-chatbot-backend/pkg/middleware"
	"github.com/florencygajera/nl2sql-chatbot-backend/pkg/schema"
	"github.com/florencygajera/nl2sql-chatbot-backend/pkg/services"
	"github.com/florencygajera/nl2sql-chatbot-backend/pkg/sqlguard"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	cfg, err := config.Load("config.yaml", Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("llm_model", cfg.LLM.Model))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connStr := cfg.Database.ConnectionString()
	if err := database.RunMigrations(connStr, cfg.Database.MigrationsPath, logger); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            connStr,
		MaxConnections: cfg.Database.MaxConnections,
		MinConnections: cfg.Database.MinConnections,
	})
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	llmClient, err := llm.NewClient(&cfg.LLM, logger)
	if err != nil {
		logger.Fatal("LLM client construction failed", zap.Error(err))
	}

	guard := sqlguard.New(sqlguard.Config{
		ForbiddenKeywords: sqlguard.DefaultConfig().ForbiddenKeywords,
		DefaultRowLimit:   cfg.Guard.DefaultRowLimit,
		MaxRowLimit:       cfg.Guard.MaxRowLimit,
		CommentDelimiters: sqlguard.DefaultConfig().CommentDelimiters,
	})

	exec := executor.New(db, executor.Config{
		MaxRows:          cfg.Guard.MaxRowLimit,
		AcquireTimeout:   cfg.Database.AcquireTimeout(),
		StatementTimeout: cfg.Database.StatementTimeout(),
	}, logger)

	chatService := services.NewChatService(
		schema.NewIntrospector(db.Pool, logger),
		llm.NewGenerator(llmClient, logger),
		guard,
		exec,
		logger,
	)

	mux := http.NewServeMux()
	handlers.NewChatHandler(chatService, logger).RegisterRoutes(mux)
	handlers.NewHealthHandler(db, guard, cfg.Version, logger).RegisterRoutes(mux)

	handler := middleware.WithRequestID(
		middleware.RequestLogger(logger)(
			middleware.Recovery(logger)(mux)))

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.BindAddr, cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("addr", server.Addr), zap.String("version", cfg.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		os.Exit(1)
	}
}
