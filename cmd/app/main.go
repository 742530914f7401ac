package main

import (
	"bufio"
	"context"
	"log"
	"os"

	"inventory-ledger/internal/adapters/cli"
	"inventory-ledger/internal/adapters/repl"
	"inventory-ledger/internal/app"
	"inventory-ledger/internal/core"
	"inventory-ledger/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.DefaultPool(ctx)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	store := core.NewLedgerStore(pool)
	policy := core.DefaultRetryPolicy()
	engine := core.NewSettlementService(store, policy, nil)
	itemService := core.NewItemService(pool, policy)
	orderService := core.NewOrderService(pool, engine, policy)
	supplierService := core.NewSupplierService(pool, policy)
	reportingService := core.NewReportingService(pool)

	svc := app.NewAppService(pool, itemService, orderService, supplierService, reportingService, engine)

	// With arguments: one-shot command. Without: interactive session.
	if len(os.Args) > 1 {
		cli.Run(ctx, svc, os.Args[1:])
		return
	}
	repl.Run(ctx, svc, bufio.NewReader(os.Stdin))
}
