package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-storefront/internal/api"
	"github.com/ariefcatur/go-storefront/internal/config"
	"github.com/ariefcatur/go-storefront/internal/httpx"
	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/logx"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/storefront"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	// The backend stores prices as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logx.New(cfg.LogLevel, cfg.LogFormat, cfg.ServiceName)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	local, closeLocal, err := storefront.OpenStorage(ctx, cfg)
	if err != nil {
		logger.Fatal("local storage", zap.String("driver", cfg.StorageDriver), zap.Error(err))
	}
	defer closeLocal()

	// Kafka producer, only when order events are enabled
	var (
		prod   *kafkax.Producer
		events *orders.Publisher
	)
	if cfg.KafkaEnabled {
		prod = kafkax.NewProducer(cfg.KafkaBrokers, 1024, logger.Named("kafka"))
		prod.Start()
		events = &orders.Publisher{Sink: prod, Service: cfg.ServiceName}
	}

	rate, err := cfg.Tax()
	if err != nil {
		logger.Fatal("tax rate", zap.String("tax_rate", cfg.TaxRate), zap.Error(err))
	}
	app, err := storefront.Open(ctx, storefront.Options{
		Backend: api.New(cfg.APIBaseURL, cfg.APITimeout, logger.Named("api")),
		Local:   local,
		TaxRate: rate,
		Events:  events,
		Log:     logger,
	})
	if err != nil {
		logger.Fatal("open storefront", zap.Error(err))
	}
	if err := app.Catalog.Refresh(ctx); err != nil {
		// the console still serves cart and session without the backend
		logger.Warn("initial catalog load failed", zap.String("api", cfg.APIBaseURL), zap.Error(err))
	}

	router := httpx.NewRouter(logger.Named("http"))
	(&httpx.Handler{App: app}).Register(router)
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr), zap.String("storage", cfg.StorageDriver),
			zap.Bool("kafka", cfg.KafkaEnabled))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	if prod != nil {
		prod.Close()
		prod.WaitClosed()
	}
}
