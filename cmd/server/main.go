package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/funneldesk/backend/api/handler"
	"github.com/funneldesk/backend/domain"
	"github.com/funneldesk/backend/internal/config"
	"github.com/funneldesk/backend/internal/infrastructure/journal"
	"github.com/funneldesk/backend/internal/infrastructure/monitor"
	pgInfra "github.com/funneldesk/backend/internal/infrastructure/postgres"
	redisInfra "github.com/funneldesk/backend/internal/infrastructure/redis"
	"github.com/funneldesk/backend/internal/middleware"
	"github.com/funneldesk/backend/internal/router"
	"github.com/funneldesk/backend/internal/services"
	"github.com/funneldesk/backend/internal/services/lifecycle"
	"github.com/funneldesk/backend/pkg/httpcontext"
	"github.com/funneldesk/backend/pkg/logger"
	"github.com/funneldesk/backend/repository/postgres"
	redisRepo "github.com/funneldesk/backend/repository/redis"
	authUC "github.com/funneldesk/backend/usecase/auth"
	funnelUC "github.com/funneldesk/backend/usecase/funnel"
	goalUC "github.com/funneldesk/backend/usecase/goal"
	observationUC "github.com/funneldesk/backend/usecase/observation"
	reportUC "github.com/funneldesk/backend/usecase/report"
	settingsUC "github.com/funneldesk/backend/usecase/settings"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	journalStore, err := journal.Open(cfg.Journal.Path, "transitions")
	if err != nil {
		zapLogger.Fatal("failed to open transition journal", zap.Error(err))
	}
	manager.Register("journal", func(ctx context.Context) error {
		return journalStore.Close()
	})

	mon := monitor.New(pool, redisClient, journalStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	leadRepo := postgres.NewLeadRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	observationRepo := postgres.NewObservationRepository(pool)
	goalRepo := postgres.NewGoalRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.Auth.SessionTTL)
	leadCache := redisRepo.NewLeadCache(redisClient, cfg.Cache.LeadTTL)

	drainer := services.NewJournalDrainer(journalStore, auditRepo, mon, zapLogger, services.DrainerConfig{
		Schedule:  cfg.Journal.DrainSchedule,
		BatchSize: cfg.Journal.DrainBatch,
	})
	drainer.Start()
	manager.Register("journal_drainer", func(ctx context.Context) error {
		drainer.Stop(ctx)
		return nil
	})

	recorder := services.NewAuditRecorder(journalStore)
	refresher := pgInfra.NewRefresher(pool, zapLogger)

	thresholds := settingsUC.NewStore(domain.Thresholds{
		RedMax:    cfg.Alerts.RedMax,
		YellowMax: cfg.Alerts.YellowMax,
	}, userRepo, zapLogger)

	authUseCase := authUC.New(userRepo, sessionRepo, cfg.JWT.Secret, cfg.JWT.Issuer, cfg.Auth.SessionTTL, zapLogger)
	funnelUseCase := funnelUC.New(leadRepo, userRepo, leadCache, recorder, refresher, zapLogger)
	observationUseCase := observationUC.New(observationRepo, userRepo, refresher, zapLogger)
	goalUseCase := goalUC.New(goalRepo, userRepo, refresher, zapLogger)
	reportUseCase := reportUC.New(funnelUseCase, goalRepo, thresholds, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:        apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Lead:        apiHandler.NewLeadHandler(funnelUseCase, ctxAdapter, zapLogger),
		Report:      apiHandler.NewReportHandler(reportUseCase, ctxAdapter, zapLogger),
		Observation: apiHandler.NewObservationHandler(observationUseCase, ctxAdapter, zapLogger),
		Goal:        apiHandler.NewGoalHandler(goalUseCase, ctxAdapter, zapLogger),
		Catalog:     apiHandler.NewCatalogHandler(funnelUseCase, productRepo, ctxAdapter, zapLogger),
		Settings:    apiHandler.NewSettingsHandler(thresholds, ctxAdapter, zapLogger),
		Health:      apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
