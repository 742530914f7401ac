// verify-db checks that the database is reachable, the expected tables
// exist, and every item's quantity matches the summed quantity changes of
// its stock history. It exits non-zero on the first failure, so it can gate
// deploys and back a recurring audit cron.
//
// Usage: go run ./cmd/verify-db
package main

import (
	"context"
	"log"
	"os"

	"inventory-ledger/internal/core"
	"inventory-ledger/internal/db"

	"github.com/joho/godotenv"
)

var requiredTables = []string{
	"inventory_items",
	"stock_history",
	"orders",
	"order_lines",
	"suppliers",
}

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("[CONNECT] %v", err)
	}
	defer pool.Close()
	log.Println("[CONNECT] success")

	for _, table := range requiredTables {
		var exists bool
		if err := pool.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)",
			table,
		).Scan(&exists); err != nil {
			log.Fatalf("[SCHEMA] failed to check table %s: %v", table, err)
		}
		if !exists {
			log.Fatalf("[SCHEMA] table %s is missing, run ./cmd/migrate first", table)
		}
	}
	log.Printf("[SCHEMA] all %d tables present", len(requiredTables))

	store := core.NewLedgerStore(pool)
	violations, err := store.CheckReconciliation(ctx)
	if err != nil {
		log.Fatalf("[RECONCILE] sweep failed: %v", err)
	}
	if len(violations) > 0 {
		for _, v := range violations {
			log.Printf("[RECONCILE] %s", v.Error())
		}
		log.Printf("[RECONCILE] FAILED with %d violation(s)", len(violations))
		os.Exit(1)
	}
	log.Println("[RECONCILE] clean, every item matches its history")
}
