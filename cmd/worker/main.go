// Worker consumes authorization change events from Kafka and invalidates the Redis decision cache
// of every organization whose roles or memberships changed.
// Set KAFKA_BROKERS, AUTHZ_EVENTS_TOPIC, KAFKA_GROUP_ID and REDIS_ADDR.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"budget-control-plane/internal/config"
	"budget-control-plane/internal/platform/rbac/cache"
	"budget-control-plane/internal/telemetry/consumer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	brokers := cfg.KafkaBrokersList()
	if len(brokers) == 0 {
		log.Fatal("worker: KAFKA_BROKERS is required")
	}
	if cfg.RedisAddr == "" {
		log.Fatal("worker: REDIS_ADDR is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer client.Close()

	w := consumer.NewWorker(brokers, cfg.AuthzEventsTopic, cfg.KafkaGroupID, cache.NewRedis(client, cfg.CacheTTL()))
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("worker: shutting down...")
		cancel()
	}()

	log.Printf("worker: consuming from %s (group %s), invalidating cache at %s", cfg.AuthzEventsTopic, cfg.KafkaGroupID, cfg.RedisAddr)
	if err := w.Run(ctx); err != nil {
		log.Printf("worker: %v", err)
	}
	log.Println("worker: stopped")
}
