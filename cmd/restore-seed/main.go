// restore-seed is a one-shot tool that resets the database to a small demo
// catalog. It wipes orders, stock history, items, and suppliers, then loads
// a handful of products with matching initial stock entries so the
// reconciliation invariant holds from the first scan.
//
// Usage: go run ./cmd/restore-seed
package main

import (
	"context"
	"log"
	"os"

	"inventory-ledger/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	log.Println("Clearing orders, history, items, and suppliers...")
	_, err = tx.Exec(ctx, `
		DELETE FROM order_lines;
		DELETE FROM orders;
		DELETE FROM stock_history;
		DELETE FROM inventory_items;
		DELETE FROM suppliers;
	`)
	if err != nil {
		log.Fatalf("Failed to clear existing data: %v", err)
	}

	log.Println("Restoring suppliers...")
	_, err = tx.Exec(ctx, `
		INSERT INTO suppliers (name, contact, phone) VALUES
		    ('Northside Beverages', 'Laura Campos', '555-0134'),
		    ('Metro Wholesale',     'Ivan Reyes',   '555-0197'),
		    ('Sunrise Bakery',      '',             '555-0112');
	`)
	if err != nil {
		log.Fatalf("Failed to restore suppliers: %v", err)
	}

	log.Println("Restoring demo catalog...")
	_, err = tx.Exec(ctx, `
		INSERT INTO inventory_items
		    (id, name, description, quantity, purchase_price, sale_price, supplier, min_stock_alert)
		VALUES
		    ('7501055300846', 'Cola 600ml',          '',            48, 9.50,  15.00, 'Northside Beverages', 12),
		    ('7501000112345', 'Corn Chips 62g',      '',            36, 8.00,  13.00, 'Metro Wholesale',     10),
		    ('7501020510126', 'Whole Milk 1L',       '',            24, 16.50, 22.00, 'Metro Wholesale',      6),
		    ('7501008042744', 'Instant Coffee 200g', '',            12, 52.00, 79.00, 'Metro Wholesale',      3),
		    ('7501035910012', 'White Bread Loaf',    'Baked daily', 15, 18.00, 28.00, 'Sunrise Bakery',       5),
		    ('7501005102563', 'Drinking Water 1.5L', '',            60, 6.00,  11.00, 'Northside Beverages', 20),
		    ('0012000001086', 'Energy Drink 473ml',  '',            18, 17.00, 28.50, 'Northside Beverages',  6),
		    ('7502223443215', 'Paper Towels 2pk',    '',            10, 21.00, 34.00, 'Metro Wholesale',      4);
	`)
	if err != nil {
		log.Fatalf("Failed to restore catalog: %v", err)
	}

	log.Println("Seeding initial stock history...")
	_, err = tx.Exec(ctx, `
		INSERT INTO stock_history (item_id, entry_type, quantity_change, details)
		SELECT id, 'initial_stock', quantity, 'Item created in the system.'
		FROM inventory_items;
	`)
	if err != nil {
		log.Fatalf("Failed to seed stock history: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}

	log.Println("Seed data restored successfully.")
	os.Exit(0)
}
