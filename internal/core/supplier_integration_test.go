package core_test

import (
	"context"
	"testing"

	"inventory-ledger/internal/core"
)

func TestSupplierService_AddAndList(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	suppliers := core.NewSupplierService(pool, core.DefaultRetryPolicy())

	sup, err := suppliers.AddSupplier(ctx, core.SupplierInput{
		Name:    "Metro Wholesale",
		Contact: "Ivan Reyes",
		Phone:   "555-0197",
	})
	if err != nil {
		t.Fatalf("AddSupplier failed: %v", err)
	}
	if sup.ID == 0 {
		t.Error("Expected an assigned supplier id")
	}
	if sup.CreatedAt.IsZero() {
		t.Error("Expected created_at to be set")
	}

	// Contact-less entries are fine; ordering is case-insensitive by name
	if _, err := suppliers.AddSupplier(ctx, core.SupplierInput{Name: "aurora dairy"}); err != nil {
		t.Fatalf("AddSupplier failed: %v", err)
	}
	if _, err := suppliers.AddSupplier(ctx, core.SupplierInput{}); err == nil {
		t.Error("Expected rejection of a nameless supplier")
	}

	list, err := suppliers.ListSuppliers(ctx)
	if err != nil {
		t.Fatalf("ListSuppliers failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("Expected 2 suppliers, got %d", len(list))
	}
	if list[0].Name != "aurora dairy" || list[1].Name != "Metro Wholesale" {
		t.Errorf("Unexpected order: %s, %s", list[0].Name, list[1].Name)
	}
	if list[1].Contact != "Ivan Reyes" || list[1].Phone != "555-0197" {
		t.Errorf("Unexpected supplier fields: %+v", list[1])
	}
}
