// Command swarmd runs the consensus engine: job queue workers, event bus,
// and fan-out gateway in one process. Wiring mirrors the teacher's
// walletserver/main.go layering (config.Load -> services -> controllers
// -> routes), generalized to this service's Store/Embedder/Bus/Clock
// ports.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"swarmconsensus/core"
	"swarmconsensus/internal/embedding"
	"swarmconsensus/internal/eventbus"
	"swarmconsensus/internal/gateway"
	"swarmconsensus/internal/queue"
	"swarmconsensus/internal/store"
	"swarmconsensus/pkg/config"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Debugf("swarmd: no .env file found: %v", err)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		logrus.Fatalf("swarmd: load config: %v", err)
	}
	configureLogging(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgStore, err := store.Open(ctx, cfg.Store.DSN, int32(cfg.Store.MaxConns))
	if err != nil {
		logrus.Fatalf("swarmd: open store: %v", err)
	}
	defer pgStore.Close()

	bus := newBus(cfg)

	embedder := newEmbedder(cfg)

	clock := core.SystemClock{}
	engine := core.NewEngine(pgStore, embedder, bus, clock)

	q := queue.New()
	pool := queue.NewPool(q, engine, cfg.Engine.Workers)
	pool.Start(ctx)

	auth := gateway.NewInMemoryAuthenticator()
	gw := gateway.New(bus, auth)
	if err := gw.Start(ctx); err != nil {
		logrus.Fatalf("swarmd: start gateway: %v", err)
	}

	httpServer := &http.Server{Addr: cfg.Gateway.ListenAddr, Handler: gw.Router()}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Errorf("swarmd: gateway http server: %v", err)
		}
	}()

	handshakeRouter := mux.NewRouter()
	gateway.RegisterHandshake(handshakeRouter, auth)
	handshakeServer := &http.Server{Addr: cfg.Gateway.HandshakeAddr, Handler: handshakeRouter}
	go func() {
		if err := handshakeServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Errorf("swarmd: handshake http server: %v", err)
		}
	}()

	logrus.Infof("swarmd: listening on %s (gateway), %s (handshake), %d workers",
		cfg.Gateway.ListenAddr, cfg.Gateway.HandshakeAddr, cfg.Engine.Workers)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logrus.Info("swarmd: shutting down")
	gw.Shutdown()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = httpServer.Shutdown(shutdownCtx)
	_ = handshakeServer.Shutdown(shutdownCtx)
}

func configureLogging(cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err == nil {
			logrus.SetOutput(f)
		} else {
			logrus.Warnf("swarmd: could not open log file %s: %v", cfg.Logging.File, err)
		}
	}
}

func newBus(cfg *config.Config) core.Bus {
	if cfg.EventBus.Mode == "pubsub" {
		b, err := eventbus.NewPubSubBus(cfg.EventBus.ListenAddr)
		if err != nil {
			logrus.Fatalf("swarmd: start pubsub bus: %v", err)
		}
		return b
	}
	return eventbus.NewChannelBus()
}

func newEmbedder(cfg *config.Config) core.Embedder {
	if cfg.Embedding.Endpoint == "" {
		return nil // SemanticWeights falls back to token Jaccard when embedder is nil
	}
	logger, _ := zap.NewProduction()
	grpcEmbedder, err := embedding.Dial(cfg.Embedding.Endpoint, noopEmbedClient{}, cfg.Embedding.MaxOutstanding, logger)
	if err != nil {
		logrus.Warnf("swarmd: embedding client unavailable, falling back: %v", err)
		return nil
	}
	var limited core.Embedder = grpcEmbedder
	if cfg.Embedding.RatePerSecond > 0 {
		burst := cfg.Embedding.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limited = embedding.NewRateLimited(grpcEmbedder, cfg.Embedding.RatePerSecond, burst)
	}

	cached, err := embedding.NewCached(limited, cfg.Embedding.CacheSize)
	if err != nil {
		logrus.Warnf("swarmd: embedding cache init failed: %v", err)
		return limited
	}
	return cached
}

// noopEmbedClient is a placeholder embedding.Client until the real
// protobuf-generated client is wired in; deployments provide their own
// embedding.Client implementation pointed at the actual embedding service.
type noopEmbedClient struct{}

func (noopEmbedClient) Embed(_ context.Context, req *embedding.EmbedRequest) (*embedding.EmbedResponse, error) {
	return &embedding.EmbedResponse{Vectors: make([][]float64, len(req.Texts))}, nil
}
