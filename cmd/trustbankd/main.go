/**
 * @description
 * This is the main entry point for the banking service. It is responsible for
 * initializing all components: configuration, the database pool, the Redis
 * draft store, the object store for loan documents, the RabbitMQ producer,
 * the repository, the application service and the HTTP server. It wires
 * everything together and starts the service.
 *
 * @dependencies
 * - github.com/jackc/pgx/v5: PostgreSQL driver.
 * - github.com/redis/go-redis/v9: Redis client for draft staging.
 * - internal/api, internal/app, internal/config, internal/store: Internal packages.
 * - pkg/blobstore, pkg/rabbitmq: Object storage and event publishing.
 */

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/trustbank/banking-service/internal/api"
	"github.com/trustbank/banking-service/internal/app"
	"github.com/trustbank/banking-service/internal/config"
	"github.com/trustbank/banking-service/internal/store"
	"github.com/trustbank/banking-service/pkg/blobstore"
	"github.com/trustbank/banking-service/pkg/rabbitmq"
)

func policyFromConfig(cfg config.Config) app.Policy {
	policy := app.DefaultPolicy()
	if v, err := decimal.NewFromString(strings.TrimSpace(cfg.MinLoanAmount)); err == nil {
		policy.MinLoanAmount = v
	}
	if v, err := decimal.NewFromString(strings.TrimSpace(cfg.MaxLoanAmount)); err == nil {
		policy.MaxLoanAmount = v
	}
	if v, err := decimal.NewFromString(strings.TrimSpace(cfg.DepositPercent)); err == nil && v.IsPositive() {
		policy.DepositPercent = v
	}
	if v, err := decimal.NewFromString(strings.TrimSpace(cfg.TransferFee)); err == nil && !v.IsNegative() {
		policy.TransferFee = v
	}
	policy.DraftTTL = time.Duration(cfg.DraftTTLMinutes) * time.Minute
	policy.RequireVerifiedDeposit = cfg.RequireVerifiedDeposit
	return policy
}

func main() {
	// Load a local .env file when present; real deployments set env directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"config load failed\" err=%v", err)
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		log.Fatalf("level=fatal component=bootstrap msg=\"jwt secret must be configured\" env=JWT_SECRET")
	}

	log.Printf("level=info component=bootstrap msg=\"starting banking-service\" port=%s", cfg.ServerPort)

	// Establish a connection pool to the PostgreSQL database.
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database url parse failed\" err=%v", err)
	}
	poolConfig.MaxConns = 50
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	// Disable prepared statement caching to prevent conflicts
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database connection failed\" err=%v", err)
	}
	defer dbpool.Close()
	log.Println("level=info component=bootstrap msg=\"database connected\"")

	// Connect Redis for wizard draft staging. The wizard cannot run without it.
	redisOptions, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"redis url parse failed\" err=%v", err)
	}
	redisClient := redis.NewClient(redisOptions)
	defer redisClient.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"redis ping failed\" err=%v", err)
	}
	log.Println("level=info component=bootstrap msg=\"redis connected\"")

	// Initialize the RabbitMQ producer to publish workflow events.
	var producer rabbitmq.Publisher
	eventProducer, err := rabbitmq.NewEventProducer(cfg.RabbitMQURL)
	if err != nil {
		log.Printf("level=warn component=bootstrap msg=\"rabbitmq producer unavailable; using fallback\" err=%v", err)
		producer = &rabbitmq.EventProducerFallback{}
	} else {
		defer eventProducer.Close()
		producer = eventProducer
		log.Println("level=info component=bootstrap msg=\"rabbitmq producer connected\"")
	}

	// Initialize the object store for loan document uploads. Missing storage
	// config degrades uploads rather than blocking startup.
	var uploader blobstore.Uploader
	if strings.TrimSpace(cfg.S3AccessKeyID) == "" {
		log.Println("level=warn component=bootstrap msg=\"object storage not configured; document uploads disabled\"")
	} else {
		s3Store, err := blobstore.NewS3Store(context.Background(), blobstore.Config{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			PublicBaseURL:   cfg.S3PublicBaseURL,
			UsePathStyle:    cfg.S3UsePathStyle,
		})
		if err != nil {
			log.Fatalf("level=fatal component=bootstrap msg=\"object storage init failed\" err=%v", err)
		}
		uploader = s3Store
		log.Println("level=info component=bootstrap msg=\"object storage connected\"")
	}

	// Initialize the data access layer and the application service.
	repository := store.NewPostgresRepository(dbpool)
	drafts := app.NewRedisLoanDraftStore(redisClient, cfg.DraftKeyPrefix)
	service := app.NewService(repository, drafts, uploader, producer, policyFromConfig(cfg))

	// Install any missing system settings.
	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelSeed()
	if err := service.SeedSettings(seedCtx); err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"settings seed failed\" err=%v", err)
	}

	// Initialize the API layer.
	auth := api.NewTokenAuthenticator(cfg.JWTSecret, time.Duration(cfg.JWTExpiryHours)*time.Hour)
	handlers := api.NewHandlers(service, auth)
	router := api.Routes(handlers, auth)

	serverAddr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("level=info component=http msg=\"server listening\" addr=%s", serverAddr)

	server := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("level=fatal component=http msg=\"server stopped unexpectedly\" err=%v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("level=info component=http msg=\"shutdown started\"")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("level=error component=http msg=\"shutdown failed\" err=%v", err)
	}

	log.Println("level=info component=http msg=\"shutdown complete\"")
}
