package repl

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	"inventory-ledger/internal/app"

	"github.com/shopspring/decimal"
)

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	raw, _ := reader.ReadString('\n')
	return strings.TrimSpace(raw)
}

// handleAddItem runs an interactive item registration session.
func handleAddItem(ctx context.Context, reader *bufio.Reader, svc app.ApplicationService) {
	fmt.Println("Registering a new item. Leave optional fields blank.")

	id := prompt(reader, "  Barcode (item id): ")
	if id == "" {
		fmt.Println("Barcode is required. Item not created.")
		return
	}
	name := prompt(reader, "  Name: ")
	if name == "" {
		fmt.Println("Name is required. Item not created.")
		return
	}
	description := prompt(reader, "  Description (optional): ")

	qtyStr := prompt(reader, "  Initial quantity [0]: ")
	qty := 0
	if qtyStr != "" {
		n, err := strconv.Atoi(qtyStr)
		if err != nil || n < 0 {
			fmt.Printf("Invalid quantity: %s\n", qtyStr)
			return
		}
		qty = n
	}

	purchase, ok := promptPrice(reader, "  Purchase price [0]: ")
	if !ok {
		return
	}
	sale, ok := promptPrice(reader, "  Sale price [0]: ")
	if !ok {
		return
	}

	supplier := prompt(reader, "  Supplier (optional): ")

	alertStr := prompt(reader, "  Low-stock alert threshold [0 = off]: ")
	alert := 0
	if alertStr != "" {
		n, err := strconv.Atoi(alertStr)
		if err != nil || n < 0 {
			fmt.Printf("Invalid threshold: %s\n", alertStr)
			return
		}
		alert = n
	}

	result, err := svc.CreateItem(ctx, app.CreateItemRequest{
		ID:            id,
		Name:          name,
		Description:   description,
		Quantity:      qty,
		PurchasePrice: purchase,
		SalePrice:     sale,
		Supplier:      supplier,
		MinStockAlert: alert,
	})
	if err != nil {
		fmt.Printf("Error creating item: %v\n", err)
		return
	}

	fmt.Printf("\nItem %q registered with %d units on hand.\n", result.Item.Name, result.Item.Quantity)
	printItemDetail(result.Item)
}

func promptPrice(reader *bufio.Reader, label string) (decimal.Decimal, bool) {
	raw := prompt(reader, label)
	if raw == "" {
		return decimal.Zero, true
	}
	price, err := decimal.NewFromString(raw)
	if err != nil || price.IsNegative() {
		fmt.Printf("Invalid price: %s\n", raw)
		return decimal.Decimal{}, false
	}
	return price, true
}

// handleNewOrder runs an interactive order creation session.
func handleNewOrder(ctx context.Context, reader *bufio.Reader, svc app.ApplicationService, title string) {
	if title == "" {
		fmt.Println("Creating order (untitled orders are auto-numbered).")
	} else {
		fmt.Printf("Creating order: %s\n", title)
	}
	fmt.Println("Enter order lines. Type 'done' when finished, 'cancel' to abort.")
	fmt.Println("Format per line: <barcode> <quantity>")
	fmt.Println("  Example: 7501001234 2")

	var lines []app.OrderLineInput
	lineNum := 1
	for {
		fmt.Printf("  Line %d: ", lineNum)
		raw, _ := reader.ReadString('\n')
		raw = strings.TrimSpace(raw)
		if strings.ToLower(raw) == "cancel" {
			fmt.Println("Order creation cancelled.")
			return
		}
		if strings.ToLower(raw) == "done" {
			break
		}
		if raw == "" {
			continue
		}

		parts := strings.Fields(raw)
		if len(parts) != 2 {
			fmt.Println("  Invalid format. Use: <barcode> <quantity>")
			continue
		}

		qty, err := strconv.Atoi(parts[1])
		if err != nil || qty <= 0 {
			fmt.Println("  Invalid quantity.")
			continue
		}

		lines = append(lines, app.OrderLineInput{
			ItemID:   parts[0],
			Quantity: qty,
		})
		lineNum++
	}

	if len(lines) == 0 {
		fmt.Println("No lines entered. Order not created.")
		return
	}

	result, err := svc.CreateOrder(ctx, app.CreateOrderRequest{
		Title: title,
		Lines: lines,
	})
	if err != nil {
		fmt.Printf("Error creating order: %v\n", err)
		return
	}

	fmt.Printf("\nOrder created: %s (status: %s)\n", result.Order.Title, result.Order.Status)
	printOrderDetail(result.Order)
	fmt.Printf("Use '/complete %s' to settle it.\n", result.Order.ID)
}

// handleAddSupplier runs an interactive supplier registration session.
func handleAddSupplier(ctx context.Context, reader *bufio.Reader, svc app.ApplicationService) {
	name := prompt(reader, "  Supplier name: ")
	if name == "" {
		fmt.Println("Name is required. Supplier not created.")
		return
	}
	contact := prompt(reader, "  Contact person (optional): ")
	phone := prompt(reader, "  Phone (optional): ")

	result, err := svc.AddSupplier(ctx, app.AddSupplierRequest{
		Name:    name,
		Contact: contact,
		Phone:   phone,
	})
	if err != nil {
		fmt.Printf("Error creating supplier: %v\n", err)
		return
	}
	fmt.Printf("Supplier %q registered (id %d).\n", result.Supplier.Name, result.Supplier.ID)
}
