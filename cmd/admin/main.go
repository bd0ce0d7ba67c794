// Package main provides operator utilities for supervisor capacity.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"capstone/internal/bootstrap"
	"capstone/internal/cache"
	"capstone/internal/config"
	"capstone/internal/featureflags"
	"capstone/internal/repository"
	"capstone/internal/service"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/admin/main.go reconcile <supervisor_id>  - Recompute one supervisor's capacity")
		fmt.Println("  go run ./cmd/admin/main.go reconcile-all              - Recompute every supervisor's capacity")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	store := repository.NewStore(rt.DB,
		repository.WithMaxAttempts(cfg.TxMaxAttempts),
		repository.WithBackoff(cfg.TxRetryBackoff()),
	)
	views := service.NewCapacityViewService(store,
		cache.NewCapacityCache(rt.Redis, cfg.CapacityCacheTTL()),
		featureflags.NewManager(cfg.FeatureFlags))
	apps := service.NewApplicationService(store, views)

	switch command := os.Args[1]; command {
	case "reconcile":
		if len(os.Args) < 3 {
			fmt.Println("Usage: go run ./cmd/admin/main.go reconcile <supervisor_id>")
			os.Exit(1)
		}
		id, err := strconv.ParseUint(os.Args[2], 10, 64)
		if err != nil || id == 0 {
			log.Fatalf("Invalid supervisor ID %q", os.Args[2])
		}
		reconcile(ctx, apps, uint(id))

	case "reconcile-all":
		sups, err := store.ListSupervisors(ctx, repository.Page{})
		if err != nil {
			log.Fatalf("Failed to list supervisors: %v", err)
		}
		for _, s := range sups {
			reconcile(ctx, apps, s.ID)
		}

	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

func reconcile(ctx context.Context, apps *service.ApplicationService, supervisorID uint) {
	result, err := apps.ReconcileCapacity(ctx, supervisorID)
	if err != nil {
		log.Fatalf("Reconcile supervisor %d failed: %v", supervisorID, err)
	}
	if !result.Changed() {
		fmt.Printf("✅ Supervisor %d capacity is consistent (%d)\n", supervisorID, result.After)
		return
	}
	fmt.Printf("🔧 Supervisor %d capacity repaired: %d -> %d\n", supervisorID, result.Before, result.After)
}
