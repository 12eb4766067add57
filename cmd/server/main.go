// Command server runs the AI API governance gateway.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/delang-zeta/ai-gateway/internal/application/admission"
	"github.com/delang-zeta/ai-gateway/internal/application/aiservice"
	"github.com/delang-zeta/ai-gateway/internal/application/processing"
	"github.com/delang-zeta/ai-gateway/internal/config"
	"github.com/delang-zeta/ai-gateway/internal/infrastructure/audit"
	"github.com/delang-zeta/ai-gateway/internal/infrastructure/breaker"
	"github.com/delang-zeta/ai-gateway/internal/infrastructure/costs"
	"github.com/delang-zeta/ai-gateway/internal/infrastructure/identity"
	"github.com/delang-zeta/ai-gateway/internal/infrastructure/integration"
	"github.com/delang-zeta/ai-gateway/internal/infrastructure/monitoring"
	"github.com/delang-zeta/ai-gateway/internal/infrastructure/ratelimit"
	"github.com/delang-zeta/ai-gateway/internal/infrastructure/results"
	"github.com/delang-zeta/ai-gateway/internal/infrastructure/secrets"
	gatewayhttp "github.com/delang-zeta/ai-gateway/internal/interfaces/http"
	"github.com/delang-zeta/ai-gateway/internal/interfaces/http/handlers"
	"github.com/delang-zeta/ai-gateway/pkg/logger"
)

const shutdownGrace = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("load configuration: " + err.Error())
	}

	log, err := monitoring.NewLogger(cfg.Log)
	if err != nil {
		panic("initialize logger: " + err.Error())
	}
	defer monitoring.Sync(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := monitoring.InitTracing(cfg.Tracing)
	if err != nil {
		log.Fatal(ctx, "initialize tracing", err)
	}

	metrics := monitoring.NewMetrics()

	secretSource, err := secrets.NewVaultSource(cfg.Vault, log)
	if err != nil {
		log.Fatal(ctx, "connect to vault", err)
	}

	var emitters []audit.Emitter
	if cfg.Audit.KafkaEnabled {
		emitters = append(emitters, audit.NewKafkaEmitter(cfg.Audit.KafkaBrokers, cfg.Audit.KafkaTopic))
	}
	if cfg.Audit.ArchiveEnabled {
		archive, err := audit.NewGormArchive(cfg.Audit.ArchiveDriver, cfg.Audit.ArchiveDSN)
		if err != nil {
			log.Fatal(ctx, "open audit archive", err)
		}
		emitters = append(emitters, archive)
	}
	auditSvc := audit.NewService(log, emitters...)
	defer func() {
		if err := auditSvc.Close(); err != nil {
			log.Warn(context.Background(), "audit shutdown", logger.Error(err))
		}
	}()

	verifier := identity.NewVerifier(secretSource, log)
	limiter := ratelimit.NewWindowLimiter(cfg.Services, log)
	ledger := costs.NewLedger(costs.NewMemoryStore(), cfg.Services, log)
	estimator := costs.NewEstimator(cfg.CostRates)

	chainBreaker := breaker.New("chain", cfg.Breaker.FailureThreshold, cfg.Breaker.Cooldown(), log)
	chain := integration.NewSimulatedChain(log)
	resultsCache := results.NewRedisCache(cfg.Redis, log)

	pipeline := admission.NewPipeline(verifier, limiter, ledger, auditSvc, metrics, log)
	processor := processing.NewProcessor(chain, chainBreaker, resultsCache, auditSvc, log)
	aiSvc := aiservice.NewService(secretSource, log)

	engine := gatewayhttp.NewRouter(cfg.Server, gatewayhttp.Handlers{
		Gateway: handlers.NewGatewayHandler(pipeline, aiSvc, estimator, auditSvc),
		Results: handlers.NewResultsHandler(pipeline, processor),
		Health:  handlers.NewHealthHandler(aiSvc, resultsCache, chainBreaker),
	}, metrics, log)
	server := gatewayhttp.NewServer(cfg.Server, engine)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info(groupCtx, "gateway listening", logger.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-groupCtx.Done():
				return nil
			case <-ticker.C:
				metrics.SetBreakerOpen(chainBreaker.Open())
			}
		}
	})

	group.Go(func() error {
		<-groupCtx.Done()
		log.Info(context.Background(), "shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn(context.Background(), "server shutdown", logger.Error(err))
		}
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Warn(context.Background(), "tracing shutdown", logger.Error(err))
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		log.Error(context.Background(), "gateway exited with error", err)
		os.Exit(1)
	}
	log.Info(context.Background(), "gateway stopped")
}
