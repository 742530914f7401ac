package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"inventory-ledger/internal/app"
	"inventory-ledger/internal/core"

	"github.com/shopspring/decimal"
)

// Run executes a one-shot CLI command and exits.
// args is os.Args[1:] — the first element is the subcommand name.
// Structured input (add-item, create-order, sale) is read as JSON from
// stdin so the commands compose with scripts and pipes.
func Run(ctx context.Context, svc app.ApplicationService, args []string) {
	switch args[0] {
	case "dashboard", "dash":
		m, err := svc.GetDashboard(ctx)
		if err != nil {
			log.Fatalf("Failed to get dashboard: %v", err)
		}
		fmt.Printf("Items:             %d\n", m.TotalItems)
		fmt.Printf("Stock value:       %s\n", m.TotalInventoryValue.StringFixed(2))
		fmt.Printf("Low stock:         %d\n", m.LowStockCount)
		fmt.Printf("Processing orders: %d\n", m.ProcessingOrderCount)
		fmt.Printf("Suppliers:         %d\n", m.SupplierCount)

	case "items", "ls":
		result, err := svc.ListItems(ctx)
		if err != nil {
			log.Fatalf("Failed to list items: %v", err)
		}
		printItemTable(result.Items)

	case "scan":
		if len(args) < 2 {
			log.Fatal("Usage: app scan <barcode>")
		}
		result, err := svc.ScanBarcode(ctx, args[1])
		if err != nil {
			log.Fatalf("Scan failed: %v", err)
		}
		fmt.Println(result.Message)
		if result.Item != nil {
			fmt.Printf("  %s — qty %d, sells at %s\n",
				result.Item.Name, result.Item.Quantity, result.Item.SalePrice.StringFixed(2))
		}
		if result.Status != core.ScanFound {
			os.Exit(1)
		}

	case "add-item":
		var in struct {
			ID            string          `json:"id"`
			Name          string          `json:"name"`
			Description   string          `json:"description"`
			Quantity      int             `json:"quantity"`
			PurchasePrice decimal.Decimal `json:"purchase_price"`
			SalePrice     decimal.Decimal `json:"sale_price"`
			Supplier      string          `json:"supplier"`
			MinStockAlert int             `json:"min_stock_alert"`
		}
		if err := json.NewDecoder(os.Stdin).Decode(&in); err != nil {
			log.Fatalf("Invalid JSON: %v", err)
		}
		result, err := svc.CreateItem(ctx, app.CreateItemRequest{
			ID:            in.ID,
			Name:          in.Name,
			Description:   in.Description,
			Quantity:      in.Quantity,
			PurchasePrice: in.PurchasePrice,
			SalePrice:     in.SalePrice,
			Supplier:      in.Supplier,
			MinStockAlert: in.MinStockAlert,
		})
		if err != nil {
			log.Fatalf("Failed to create item: %v", err)
		}
		fmt.Printf("Item %q registered with %d units.\n", result.Item.Name, result.Item.Quantity)

	case "adjust":
		if len(args) < 3 {
			log.Fatal("Usage: app adjust <barcode> <delta> [reason...]")
		}
		delta, err := strconv.Atoi(args[2])
		if err != nil || delta == 0 {
			log.Fatalf("Invalid delta: %s", args[2])
		}
		result, err := svc.AdjustItemQuantity(ctx, app.AdjustQuantityRequest{
			ItemID: args[1],
			Delta:  delta,
			Reason: strings.Join(args[3:], " "),
		})
		if err != nil {
			log.Fatalf("Failed to adjust quantity: %v", err)
		}
		fmt.Printf("%q adjusted by %+d. New quantity: %d\n", result.Item.Name, delta, result.Item.Quantity)

	case "history":
		if len(args) < 2 {
			log.Fatal("Usage: app history <barcode>")
		}
		result, err := svc.GetItemHistory(ctx, args[1])
		if err != nil {
			log.Fatalf("Failed to get history: %v", err)
		}
		for _, e := range result.Entries {
			fmt.Printf("%-17s %-19s %+6d  %s\n",
				e.CreatedAt.Format("2006-01-02 15:04"), e.Type, e.QuantityChange, e.Details)
		}

	case "orders":
		var statusPtr *string
		if len(args) > 1 {
			status := strings.ToLower(args[1])
			statusPtr = &status
		}
		result, err := svc.ListOrders(ctx, statusPtr)
		if err != nil {
			log.Fatalf("Failed to list orders: %v", err)
		}
		for _, o := range result.Orders {
			fmt.Printf("%-38s %-12s %10s  %s\n", o.ID, o.Status, o.Price.StringFixed(2), o.Title)
		}

	case "create-order":
		var in struct {
			Title string `json:"title"`
			Lines []struct {
				ItemID   string `json:"item_id"`
				Quantity int    `json:"quantity"`
			} `json:"lines"`
		}
		if err := json.NewDecoder(os.Stdin).Decode(&in); err != nil {
			log.Fatalf("Invalid JSON: %v", err)
		}
		req := app.CreateOrderRequest{Title: in.Title}
		for _, l := range in.Lines {
			req.Lines = append(req.Lines, app.OrderLineInput{ItemID: l.ItemID, Quantity: l.Quantity})
		}
		result, err := svc.CreateOrder(ctx, req)
		if err != nil {
			log.Fatalf("Failed to create order: %v", err)
		}
		fmt.Printf("Order created: %s (%s), total %s\n",
			result.Order.Title, result.Order.ID, result.Order.Price.StringFixed(2))

	case "complete":
		if len(args) < 2 {
			log.Fatal("Usage: app complete <order-id>")
		}
		result, err := svc.CompleteOrder(ctx, args[1])
		if err != nil {
			log.Fatalf("Settlement failed: %v", err)
		}
		fmt.Println(result.Message)
		for _, a := range result.Alerts {
			fmt.Printf("ALERT: %s\n", a)
		}

	case "cancel":
		if len(args) < 2 {
			log.Fatal("Usage: app cancel <order-id>")
		}
		if err := svc.CancelOrder(ctx, args[1]); err != nil {
			log.Fatalf("Failed to cancel order: %v", err)
		}
		fmt.Println("Order cancelled and removed.")

	case "sale":
		var in struct {
			Lines []struct {
				ItemID   string `json:"item_id"`
				Quantity int    `json:"quantity"`
			} `json:"lines"`
		}
		if err := json.NewDecoder(os.Stdin).Decode(&in); err != nil {
			log.Fatalf("Invalid JSON: %v", err)
		}
		req := app.DirectSaleRequest{}
		for _, l := range in.Lines {
			req.Lines = append(req.Lines, app.SaleLineInput{ItemID: l.ItemID, Quantity: l.Quantity})
		}
		result, err := svc.ProcessDirectSale(ctx, req)
		if err != nil {
			log.Fatalf("Sale failed: %v", err)
		}
		fmt.Println(result.Message)
		for _, a := range result.Alerts {
			fmt.Printf("ALERT: %s\n", a)
		}

	case "suppliers":
		result, err := svc.ListSuppliers(ctx)
		if err != nil {
			log.Fatalf("Failed to list suppliers: %v", err)
		}
		for _, s := range result.Suppliers {
			fmt.Printf("%-5d %-30s %-22s %s\n", s.ID, s.Name, s.Contact, s.Phone)
		}

	case "add-supplier":
		if len(args) < 2 {
			log.Fatal("Usage: app add-supplier <name> [contact] [phone]")
		}
		req := app.AddSupplierRequest{Name: args[1]}
		if len(args) > 2 {
			req.Contact = args[2]
		}
		if len(args) > 3 {
			req.Phone = args[3]
		}
		result, err := svc.AddSupplier(ctx, req)
		if err != nil {
			log.Fatalf("Failed to add supplier: %v", err)
		}
		fmt.Printf("Supplier %q registered (id %d).\n", result.Supplier.Name, result.Supplier.ID)

	case "report":
		req := app.SalesReportRequest{}
		if len(args) > 1 {
			req.From = args[1]
		}
		if len(args) > 2 {
			req.To = args[2]
		}
		report, err := svc.GetSalesReport(ctx, req)
		if err != nil {
			log.Fatalf("Failed to build report: %v", err)
		}
		printReportSummary(report)

	case "low-stock":
		result, err := svc.GetLowStockItems(ctx)
		if err != nil {
			log.Fatalf("Failed to list low stock: %v", err)
		}
		printItemTable(result.Items)

	case "slow-moving":
		days := 0
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 1 {
				log.Fatalf("Invalid day count: %s", args[1])
			}
			days = n
		}
		result, err := svc.GetSlowMovingItems(ctx, days)
		if err != nil {
			log.Fatalf("Failed to list slow movers: %v", err)
		}
		printItemTable(result.Items)

	default:
		log.Fatalf("Unknown command: %s\nAvailable: dashboard, items, scan, add-item, adjust, history, orders, create-order, complete, cancel, sale, suppliers, add-supplier, report, low-stock, slow-moving", args[0])
	}
}

func printItemTable(items []core.InventoryItem) {
	if len(items) == 0 {
		fmt.Println("No items.")
		return
	}
	fmt.Printf("%-14s %-30s %6s %10s %10s %6s\n", "BARCODE", "NAME", "QTY", "BUY", "SELL", "ALERT")
	fmt.Println(strings.Repeat("-", 82))
	for _, it := range items {
		alert := "-"
		if it.MinStockAlert > 0 {
			alert = strconv.Itoa(it.MinStockAlert)
		}
		fmt.Printf("%-14s %-30s %6d %10s %10s %6s\n",
			it.ID, it.Name, it.Quantity,
			it.PurchasePrice.StringFixed(2), it.SalePrice.StringFixed(2), alert)
	}
}

func printReportSummary(report *core.SalesReport) {
	fmt.Printf("Window:        %s → %s\n",
		report.From.Format("2006-01-02"), report.To.Format("2006-01-02"))
	fmt.Printf("Orders:        %d\n", report.OrderCount)
	fmt.Printf("Revenue:       %s\n", report.TotalRevenue.StringFixed(2))
	fmt.Printf("COGS:          %s\n", report.TotalCOGS.StringFixed(2))
	fmt.Printf("Gross profit:  %s (%s%%)\n",
		report.GrossProfit.StringFixed(2), report.ProfitMarginPct.StringFixed(1))
	fmt.Printf("Avg order:     %s\n", report.AvgOrderValue.StringFixed(2))
	for i, t := range report.TopByUnits {
		if i == 0 {
			fmt.Println("Top sellers:")
		}
		fmt.Printf("  %2d. %-34s %6d units\n", i+1, t.Name, t.UnitsSold)
	}
}
