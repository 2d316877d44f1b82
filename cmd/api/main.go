package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/dialog-engine/internal/api/http"
	"github.com/spec-kit/dialog-engine/internal/api/http/handlers"
	"github.com/spec-kit/dialog-engine/internal/auth"
	"github.com/spec-kit/dialog-engine/internal/config"
	"github.com/spec-kit/dialog-engine/internal/engine"
	"github.com/spec-kit/dialog-engine/internal/eventlog"
	"github.com/spec-kit/dialog-engine/internal/events"
	"github.com/spec-kit/dialog-engine/internal/funnel"
	"github.com/spec-kit/dialog-engine/internal/generator"
	"github.com/spec-kit/dialog-engine/internal/handoff"
	"github.com/spec-kit/dialog-engine/internal/knowledge"
	"github.com/spec-kit/dialog-engine/internal/nlu"
	"github.com/spec-kit/dialog-engine/internal/observability"
	"github.com/spec-kit/dialog-engine/internal/persistence"
	"github.com/spec-kit/dialog-engine/internal/repository"
	"github.com/spec-kit/dialog-engine/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	rdb := persistence.NewRedis(cfg.Redis, logger)
	defer rdb.Close()

	kb, err := knowledge.Load(cfg.Knowledge.FilePath)
	if err != nil {
		logger.Fatal("failed to load knowledge base", zap.Error(err))
	}

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	eventRepo := repository.NewEventRepository(pool)
	contextStore := repository.NewContextStore(rdb.Client, cfg.Engine.ContextTTL())
	turnRegistry := repository.NewTurnRegistry(rdb.Client, cfg.Engine.TurnDedupTTL())

	dispatcher := events.NewInMemoryDispatcher()
	eventlog.NewRecorder(dispatcher, eventRepo, logger)

	ticketManager := handoff.NewTicketManager(handoff.TicketManagerOptions{
		Tickets:    ticketRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
		Attempts:   cfg.Engine.TicketRetries,
	})
	slaTracker := handoff.NewSLATracker(ticketRepo, dispatcher, logger)

	extractor := nlu.NewExtractor()

	router := funnel.NewRouter(
		extractor,
		funnel.NewAcquisitionHandler(kb),
		funnel.NewQualificationHandler(),
		funnel.NewOfferHandler(kb),
		funnel.NewClosingHandler(),
		funnel.NewSupportHandler(),
		funnel.NewComplaintsHandler(),
		funnel.NewRetentionHandler(),
	)

	eng := engine.New(engine.Options{
		Classifier:        nlu.NewClassifier(),
		Extractor:         extractor,
		Gate:              handoff.NewGate(),
		Tickets:           ticketManager,
		Router:            router,
		Knowledge:         kb,
		Generator:         generator.NewOpenAIClient(cfg.Generator, logger),
		Contexts:          contextStore,
		Turns:             turnRegistry,
		Dispatcher:        dispatcher,
		Logger:            logger,
		HistoryWindow:     cfg.Engine.HistoryWindow,
		FastPathThreshold: cfg.Knowledge.FastPathThreshold,
		GenerateTimeout:   cfg.Generator.Timeout(),
	})

	slaWorker := worker.NewSLAWorker(slaTracker, ticketManager, cfg.SLA.SweepInterval(), logger)
	go slaWorker.Run(ctx)

	metrics := observability.NewMetrics()
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTLMinutes)
	authMiddleware := auth.NewMiddleware(tokenManager)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, rdb),
		Messages:       handlers.NewMessagesHandler(eng, metrics),
		Tickets:        handlers.NewTicketsHandler(ticketRepo, ticketManager, eng),
		Events:         handlers.NewEventsHandler(eventRepo),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)
	cancel()

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
