package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"weathercover/internal/config"
	"weathercover/internal/database/postgres"
	"weathercover/internal/database/redis"
	"weathercover/internal/engine"
	"weathercover/internal/event"
	"weathercover/internal/handlers"
	"weathercover/internal/models"
	"weathercover/internal/observability"
	"weathercover/internal/repository"
	"weathercover/internal/services"
	"weathercover/internal/worker"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const persistorQueueSize = 1024

func setupLogging() (*os.File, error) {
	logDir := filepath.Join("/weathercover", "log", "insurance_service")
	err := os.MkdirAll(logDir, 0o755)
	if err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}

	logFileName := fmt.Sprintf("log_%s.log", time.Now().Format("2006-01-02"))
	file, err := os.OpenFile(filepath.Join(logDir, logFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(io.MultiWriter(os.Stdout, file), nil))
	slog.SetDefault(logger)
	log.SetOutput(file)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	return file, nil
}

func main() {
	logFile, err := setupLogging()
	if err != nil {
		fmt.Printf("Failed to set up file logging, using stdout: %v\n", err)
	} else {
		defer logFile.Close()
	}

	cfg := config.New()

	slog.Info("Connecting to PostgreSQL",
		"host", cfg.PostgresCfg.Host,
		"port", cfg.PostgresCfg.Port,
		"dbname", cfg.PostgresCfg.DBname)
	db, err := postgres.ConnectAndCreateDB(cfg.PostgresCfg)
	if err != nil {
		slog.Error("error connecting to database, running without durability mirror", "error", err)
		go postgres.RetryConnectOnFailed(30*time.Second, &db, cfg.PostgresCfg)
	}

	redisClient, err := redis.NewRedisClient(cfg.RedisCfg.Host, cfg.RedisCfg.Port, cfg.RedisCfg.Password, cfg.RedisCfg.DB)
	if err != nil {
		slog.Error("error connecting to Redis, running without cache", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	rabbitConn, err := event.ConnectRabbitMQ(cfg.RabbitMQCfg)
	var publisher *event.Publisher
	if err != nil {
		slog.Error("error connecting to RabbitMQ, running without events", "error", err)
	} else {
		publisher = event.NewPublisher(rabbitConn)
		defer rabbitConn.Close()
	}

	eng := engine.New(engine.Config{
		Owner: cfg.Owner,
		Params: models.Params{
			MinPremium:         cfg.EngineCfg.MinPremium,
			PolicyDuration:     cfg.EngineCfg.PolicyDuration,
			ProtocolFeePercent: cfg.EngineCfg.ProtocolFeePercent,
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var persistor *worker.Persistor
	var wg sync.WaitGroup
	if db != nil {
		policyRepo := repository.NewPolicyRepository(db)
		readingRepo := repository.NewReadingRepository(db)
		positionRepo := repository.NewPositionRepository(db)
		proposalRepo := repository.NewProposalRepository(db)
		poolRepo := repository.NewPoolRepository(db)
		payoutRepo := repository.NewPayoutRepository(db)

		snapshot, err := repository.LoadSnapshot(policyRepo, readingRepo, positionRepo, proposalRepo, poolRepo)
		if err != nil {
			slog.Error("failed to restore state from mirror, starting empty", "error", err)
		} else {
			eng.Restore(snapshot)
			slog.Info("State restored from mirror",
				"policies", len(snapshot.Policies),
				"positions", len(snapshot.Positions),
				"proposals", len(snapshot.Proposals))
		}

		persistor = worker.NewPersistor(persistorQueueSize, policyRepo, readingRepo, positionRepo, proposalRepo, poolRepo, payoutRepo)
		wg.Add(1)
		go persistor.Start(ctx, &wg)
	}

	metrics := observability.NewMetrics()
	stats := eng.Stats()
	metrics.SetPoolGauges(stats.TotalLiquidity, stats.ReservedFunds, stats.TotalShares, stats.ActivePolicies)

	policyService := services.NewPolicyService(eng, persistor, publisher, metrics)
	claimService := services.NewClaimService(eng, policyService, persistor, publisher, metrics)
	poolService := services.NewPoolService(eng, persistor, metrics)
	governanceService := services.NewGovernanceService(eng, persistor, publisher)
	oracleService := services.NewOracleService(eng, redisClient, persistor, publisher, metrics)

	// Metrics live on their own port, off the API surface.
	metricsMux := http.NewServeMux()
	metricsMux.Handle("GET /metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:         ":" + cfg.MetricsPort,
		Handler:      metricsMux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("Metrics server listening", "port", cfg.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server stopped", "error", err)
		}
	}()

	app := fiber.New()
	app.Get("/checkhealth", func(c fiber.Ctx) error {
		return c.Status(fiber.StatusOK).SendString("Insurance service is healthy")
	})

	handlers.NewPolicyHandler(policyService, claimService).Register(app)
	handlers.NewPoolHandler(poolService).Register(app)
	handlers.NewGovernanceHandler(governanceService).Register(app)
	handlers.NewOracleHandler(oracleService, claimService).Register(app)

	go func() {
		slog.Info("Insurance service listening", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("error during shutdown", "error", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("error shutting down metrics server", "error", err)
	}
	wg.Wait()
}
