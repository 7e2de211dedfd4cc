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

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/YARN-DEV/NOREG/internal/cartstore"
	"github.com/YARN-DEV/NOREG/internal/checkout"
	"github.com/YARN-DEV/NOREG/internal/payment"
	"github.com/YARN-DEV/NOREG/internal/server"
)

type Config struct {
	HTTPPort        string
	PublicOrigin    string
	MirrorBackend   string // "bolt" or "redis"
	BoltPath        string
	RedisAddr       string
	TaxRate         string
	ProviderTimeout time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	StripeSecretKey   string
	SquareAccessToken string
	SquareLocationID  string
	SquareEnvironment string
	MarketplaceURL    string
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		PublicOrigin:    getEnv("PUBLIC_ORIGIN", "http://localhost:3000"),
		MirrorBackend:   getEnv("CART_MIRROR", "bolt"),
		BoltPath:        getEnv("CART_BOLT_PATH", "carts.db"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		TaxRate:         getEnv("TAX_RATE", "0.08"),
		ProviderTimeout: 30 * time.Second,
		RequestTimeout:  60 * time.Second,
		ShutdownTimeout: 10 * time.Second,

		StripeSecretKey:   os.Getenv("STRIPE_SECRET_KEY"),
		SquareAccessToken: os.Getenv("SQUARE_ACCESS_TOKEN"),
		SquareLocationID:  os.Getenv("SQUARE_LOCATION_ID"),
		SquareEnvironment: getEnv("SQUARE_ENVIRONMENT", "sandbox"),
		MarketplaceURL:    os.Getenv("MARKETPLACE_URL"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()

	taxRate, err := decimal.NewFromString(cfg.TaxRate)
	if err != nil {
		log.Fatalf("invalid TAX_RATE %q: %v", cfg.TaxRate, err)
	}

	var mirror cartstore.Mirror
	switch cfg.MirrorBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		mirror = cartstore.NewRedisMirror(client)
	default:
		boltMirror, err := cartstore.NewBoltMirror(cfg.BoltPath)
		if err != nil {
			log.Fatalf("failed to open cart mirror: %v", err)
		}
		defer boltMirror.Close()
		mirror = boltMirror
	}

	carts := cartstore.NewManager(mirror)
	defer carts.Close()

	adapters := map[string]payment.Adapter{
		payment.ProviderStripe: payment.NewStripeAdapter(cfg.StripeSecretKey, nil),
		payment.ProviderSquare: payment.NewSquareAdapter(payment.SquareConfig{
			AccessToken: cfg.SquareAccessToken,
			LocationID:  cfg.SquareLocationID,
			Environment: cfg.SquareEnvironment,
		}, nil),
		payment.ProviderMarketplace: payment.NewMarketplaceAdapter(cfg.MarketplaceURL),
	}

	builder := checkout.NewBuilder(
		cfg.PublicOrigin+"/success",
		cfg.PublicOrigin+"/cart?canceled=1",
	)
	orchestrator := checkout.NewOrchestrator(builder, adapters, taxRate, cfg.ProviderTimeout)

	cartHandler := server.NewCartHandler(carts, taxRate)
	checkoutHandler := server.NewCheckoutHandler(carts, orchestrator)
	router := server.NewRouter(cartHandler, checkoutHandler, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "shop-core"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 65 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("shop core starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}
