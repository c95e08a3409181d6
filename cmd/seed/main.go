// seed inserts development sample data for local testing. Run after cmd/migrate.
// Idempotent: the organization is created only if the dev founder has no membership yet.
// When JWT_PRIVATE_KEY is set, it also prints access tokens for the dev users.
package main

import (
	"context"
	"fmt"
	"log"

	"budget-control-plane/internal/config"
	"budget-control-plane/internal/db"
	"budget-control-plane/internal/devseed"
	membershipservice "budget-control-plane/internal/membership/service"
	orgservice "budget-control-plane/internal/organization/service"
	"budget-control-plane/internal/platform/rbac"
	"budget-control-plane/internal/security"
	"budget-control-plane/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	ctx := context.Background()
	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	st := store.NewPostgres(conn)
	checker := rbac.NewChecker(st, nil)
	res, err := devseed.Seed(ctx, st,
		orgservice.NewService(st, checker, nil),
		membershipservice.NewService(st, checker, nil))
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	if res.Created {
		fmt.Printf("seeded organization %s (%s)\n", devseed.OrgName, res.OrgID)
	} else {
		fmt.Printf("organization %s already seeded, skipping\n", res.OrgID)
	}
	fmt.Printf("send x-org-id: %s\n", res.OrgID)

	if cfg.JWTPrivateKey == "" {
		fmt.Println("JWT_PRIVATE_KEY not set; no dev tokens printed")
		return
	}
	priv, err := security.ParsePrivateKey(cfg.JWTPrivateKey)
	if err != nil {
		log.Fatalf("jwt: private key: %v", err)
	}
	tokens := security.NewTokenProvider(priv, priv.Public(), cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL())
	for _, userID := range []string{devseed.AliceID, devseed.BobID, devseed.CarolID} {
		token, expiresAt, err := tokens.IssueAccess(userID)
		if err != nil {
			log.Fatalf("jwt: issue for %s: %v", userID, err)
		}
		fmt.Printf("%s (expires %s):\n  %s\n", userID, expiresAt.Format("15:04:05"), token)
	}
}
