package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/amirsalarsafaei/sqlc-pgx-monitoring/dbtracer"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"paygate/config"
	"paygate/internal/db"
	"paygate/internal/dedup"
	"paygate/internal/gateway"
	"paygate/internal/payments"
	"paygate/internal/payments/handlers"
)

func main() {
	appConfig, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	if appConfig.Telemetry.Enabled {
		cleanup := config.InitTracer(appConfig.Telemetry)
		defer cleanup()
	}

	logger := setupLogger(appConfig)

	e := echo.New()

	if appConfig.Telemetry.Enabled {
		e.Use(otelecho.Middleware(appConfig.Telemetry.ServiceName))
	}
	e.Use(middleware.Recover())

	dbpool := setupDbPool(appConfig)
	defer dbpool.Close()

	if _, err := dbpool.Exec(context.Background(), db.Schema); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	redisClient := setupRedisClient(appConfig)
	dedupStore := dedup.New(redisClient, appConfig.Redis.DedupTTL(), logger)

	gatewayClient := gateway.NewClient(gateway.Config{
		SecretKey:     appConfig.Gateway.SecretKey,
		InitializeURL: appConfig.Gateway.InitializeURL,
		CallbackURL:   appConfig.Gateway.CallbackURL,
	}, setupHttpClient(appConfig), logger)

	store := payments.NewPostgresStore(dbpool)
	service := payments.NewService(store, gatewayClient, payments.CurrencyRules{
		Default: appConfig.Payments.BaseCurrency,
		Allowed: appConfig.Payments.AllowedList(),
	}, logger)

	createHandler := handlers.NewCreatePaymentHandler(service)
	statusHandler := handlers.NewPaymentStatusHandler(service)
	webhookHandler := handlers.NewWebhookHandler(service, dedupStore)

	e.POST("/payments", createHandler.Handle)
	e.GET("/payments/:id", statusHandler.Handle)
	e.POST("/payments/webhook", webhookHandler.Handle)
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	err = e.Start(fmt.Sprintf("%s:%d", appConfig.Server.Host, appConfig.Server.Port))
	if err != nil {
		log.Fatal(err)
	}
}

func setupLogger(appConfig *config.AppConfig) *slog.Logger {
	logLevel := slog.LevelInfo
	if appConfig.Telemetry.Enabled {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

func setupHttpClient(appConfig *config.AppConfig) *http.Client {
	transport := http.DefaultTransport
	if appConfig.Telemetry.Enabled {
		transport = otelhttp.NewTransport(http.DefaultTransport)
	}
	return &http.Client{
		Transport: transport,
		Timeout:   appConfig.Gateway.Timeout(),
	}
}

func setupDbPool(appConfig *config.AppConfig) *pgxpool.Pool {
	dbConfig, err := pgxpool.ParseConfig(appConfig.Postgres.URL)
	if err != nil {
		log.Fatalf("Failed to parse Postgres URL: %v", err)
	}

	if appConfig.Telemetry.Enabled {
		dbTracer, _ := dbtracer.NewDBTracer("payments")
		dbConfig.ConnConfig.Tracer = dbTracer
	}

	dbConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	dbpool, err := pgxpool.NewWithConfig(context.Background(), dbConfig)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	return dbpool
}

func setupRedisClient(appConfig *config.AppConfig) *redis.Client {
	opt, err := redis.ParseURL(appConfig.Redis.URL)
	if err != nil {
		log.Fatalf("Failed to parse Redis URL: %v", err)
	}

	redisClient := redis.NewClient(opt)

	if appConfig.Telemetry.Enabled {
		if err := redisotel.InstrumentTracing(redisClient); err != nil {
			panic(err)
		}

		if err := redisotel.InstrumentMetrics(redisClient); err != nil {
			panic(err)
		}
	}

	return redisClient
}
