package main

import (
	"context"
	"log"
	"net/http"
	"os"

	webAdapter "inventory-ledger/internal/adapters/web"
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
		log.Fatalf("database: %v", err)
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

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins)

	log.Printf("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
