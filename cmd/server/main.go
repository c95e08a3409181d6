package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	auditrepo "budget-control-plane/internal/audit/repository"
	"budget-control-plane/internal/config"
	"budget-control-plane/internal/db"
	"budget-control-plane/internal/devseed"
	membershipservice "budget-control-plane/internal/membership/service"
	orgservice "budget-control-plane/internal/organization/service"
	"budget-control-plane/internal/platform/rbac"
	"budget-control-plane/internal/platform/rbac/cache"
	"budget-control-plane/internal/policy/engine"
	roleservice "budget-control-plane/internal/role/service"
	"budget-control-plane/internal/security"
	"budget-control-plane/internal/server"
	"budget-control-plane/internal/store"
	"budget-control-plane/internal/telemetry"
	telemetryotel "budget-control-plane/internal/telemetry/otel"
	"budget-control-plane/internal/telemetry/producer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	providers, err := telemetryotel.NewProviders(ctx, cfg.OTelEndpoint, cfg.OTelServiceName, cfg.OTelInsecure)
	if err != nil {
		log.Fatalf("otel: %v", err)
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.Printf("otel: shutdown: %v", err)
		}
	}()

	var (
		st     store.Store
		audits auditrepo.Repository
		pinger *sql.DB
	)
	if cfg.DatabaseURL != "" {
		conn, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db: %v", err)
		}
		defer conn.Close()
		st = store.NewPostgres(conn)
		audits = auditrepo.NewPostgresRepository(conn)
		pinger = conn
	} else {
		log.Println("db: DATABASE_URL not set; using in-memory store, data is lost on exit")
		st = store.NewMemory()
	}

	var evaluator engine.Evaluator = engine.NewNativeEvaluator()
	if cfg.AuthzEngine == config.EngineOPA {
		opa, err := engine.NewOPAEvaluator("")
		if err != nil {
			log.Fatalf("authz: %v", err)
		}
		evaluator = opa
	}

	var checkerOpts []rbac.Option
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("cache: redis ping %s: %v", cfg.RedisAddr, err)
		}
		checkerOpts = append(checkerOpts, rbac.WithCache(cache.NewRedis(client, cfg.CacheTTL())))
	}
	checker := rbac.NewChecker(st, evaluator, checkerOpts...)

	kafkaProducer, err := producer.NewKafkaProducer(cfg.KafkaBrokersList(), cfg.AuthzEventsTopic)
	if err != nil {
		log.Fatalf("kafka: %v", err)
	}
	defer kafkaProducer.Close()
	emitters := []telemetry.EventEmitter{telemetryotel.NewEventEmitter(providers.LoggerProvider)}
	if kafkaProducer != nil {
		emitters = append(emitters, kafkaProducer)
	}
	events := telemetry.Fanout(emitters...)

	tokens, err := verifier(cfg)
	if err != nil {
		log.Fatalf("jwt: %v", err)
	}

	orgs := orgservice.NewService(st, checker, events)
	members := membershipservice.NewService(st, checker, events)
	if cfg.DatabaseURL == "" {
		res, err := devseed.Seed(ctx, st, orgs, members)
		if err != nil {
			log.Fatalf("seed: %v", err)
		}
		log.Printf("seed: in-memory organization %s (%s) founded by %s", devseed.OrgName, res.OrgID, devseed.AliceID)
	}

	deps := server.Deps{
		Organizations: orgs,
		Roles:         roleservice.NewService(st, checker, events),
		Memberships:   members,
		Checker:       checker,
		AuditRepo:     audits,
		Tokens:        tokens,
		Events:        events,
	}
	if pinger != nil {
		deps.HealthPinger = pinger
	}
	s := server.NewGRPCServer(deps)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatalf("listen: %v", err)
	}
	defer lis.Close()

	go func() {
		log.Printf("gRPC server listening on %s (authz engine %s)", cfg.GRPCAddr, cfg.AuthzEngine)
		if err := s.Serve(lis); err != nil {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down gRPC server...")
	s.GracefulStop()
	log.Println("gRPC server stopped")
}

// verifier returns a verify-only token provider for the configured public key.
func verifier(cfg *config.Config) (*security.TokenProvider, error) {
	if cfg.JWTPublicKey == "" {
		return nil, errors.New("JWT_PUBLIC_KEY is not set")
	}
	pub, err := security.ParsePublicKey(cfg.JWTPublicKey)
	if err != nil {
		return nil, err
	}
	return security.NewTokenProvider(nil, pub, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL()), nil
}
