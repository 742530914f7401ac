package repl

import (
	"fmt"
	"strings"

	"inventory-ledger/internal/app"
	"inventory-ledger/internal/core"

	"github.com/shopspring/decimal"
)

func intToDecimal(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

func printDashboard(m *core.DashboardMetrics) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  %-58s\n", "DASHBOARD")
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  %-32s %25d\n", "Items in catalog", m.TotalItems)
	fmt.Printf("  %-32s %25s\n", "Stock value (purchase)", m.TotalInventoryValue.StringFixed(2))
	fmt.Printf("  %-32s %25d\n", "Items at or below threshold", m.LowStockCount)
	fmt.Printf("  %-32s %25d\n", "Processing orders", m.ProcessingOrderCount)
	fmt.Printf("  %-32s %25d\n", "Suppliers", m.SupplierCount)
	fmt.Println(strings.Repeat("=", 62))
}

func printItems(result *app.ItemListResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 78))
	fmt.Println("  INVENTORY")
	fmt.Println(strings.Repeat("=", 78))
	if len(result.Items) == 0 {
		fmt.Println("  No items found.")
		fmt.Println(strings.Repeat("=", 78))
		return
	}
	fmt.Printf("  %-14s %-26s %6s %10s %10s  %s\n", "BARCODE", "NAME", "QTY", "BUY", "SELL", "ALERT")
	fmt.Println(strings.Repeat("-", 78))
	for _, it := range result.Items {
		alert := "-"
		if it.MinStockAlert > 0 {
			alert = fmt.Sprintf("<=%d", it.MinStockAlert)
			if it.Quantity <= it.MinStockAlert {
				alert += " LOW"
			}
		}
		fmt.Printf("  %-14s %-26s %6d %10s %10s  %s\n",
			it.ID, it.Name, it.Quantity,
			it.PurchasePrice.StringFixed(2), it.SalePrice.StringFixed(2), alert)
	}
	fmt.Println(strings.Repeat("=", 78))
}

func printItemDetail(it *core.InventoryItem) {
	fmt.Println()
	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("  Barcode:    %s\n", it.ID)
	fmt.Printf("  Name:       %s\n", it.Name)
	if it.Description != "" {
		fmt.Printf("  Details:    %s\n", it.Description)
	}
	fmt.Printf("  Quantity:   %d\n", it.Quantity)
	fmt.Printf("  Buy price:  %s\n", it.PurchasePrice.StringFixed(2))
	fmt.Printf("  Sell price: %s\n", it.SalePrice.StringFixed(2))
	if it.Supplier != "" {
		fmt.Printf("  Supplier:   %s\n", it.Supplier)
	}
	if it.MinStockAlert > 0 {
		fmt.Printf("  Alert at:   %d\n", it.MinStockAlert)
	}
	fmt.Printf("  Updated:    %s\n", it.UpdatedAt.Format("2006-01-02 15:04"))
	fmt.Println(strings.Repeat("-", 60))
}

func printHistory(result *app.ItemHistoryResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 78))
	fmt.Printf("  STOCK HISTORY — %s\n", result.ItemID)
	fmt.Println(strings.Repeat("=", 78))
	if len(result.Entries) == 0 {
		fmt.Println("  No history recorded.")
		fmt.Println(strings.Repeat("=", 78))
		return
	}
	fmt.Printf("  %-17s %-19s %7s  %s\n", "DATE", "TYPE", "CHANGE", "DETAILS")
	fmt.Println(strings.Repeat("-", 78))
	for _, e := range result.Entries {
		fmt.Printf("  %-17s %-19s %+7d  %s\n",
			e.CreatedAt.Format("2006-01-02 15:04"), e.Type, e.QuantityChange, e.Details)
	}
	fmt.Println(strings.Repeat("=", 78))
}

func printOrders(result *app.OrderListResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("  ORDERS")
	fmt.Println(strings.Repeat("=", 80))
	if len(result.Orders) == 0 {
		fmt.Println("  No orders found.")
		fmt.Println(strings.Repeat("=", 80))
		return
	}
	fmt.Printf("  %-38s %-18s %-12s %10s\n", "ID", "TITLE", "STATUS", "TOTAL")
	fmt.Println(strings.Repeat("-", 80))
	for _, o := range result.Orders {
		fmt.Printf("  %-38s %-18s %-12s %10s\n",
			o.ID, o.Title, o.Status, o.Price.StringFixed(2))
	}
	fmt.Println(strings.Repeat("=", 80))
}

func printOrderDetail(o *core.Order) {
	fmt.Println()
	fmt.Println(strings.Repeat("-", 66))
	fmt.Printf("  Order:   %s\n", o.Title)
	fmt.Printf("  ID:      %s\n", o.ID)
	fmt.Printf("  Status:  %s\n", o.Status)
	fmt.Printf("  Created: %s\n", o.CreatedAt.Format("2006-01-02 15:04"))
	if o.CompletedAt != nil {
		fmt.Printf("  Settled: %s\n", o.CompletedAt.Format("2006-01-02 15:04"))
	}
	fmt.Println(strings.Repeat("-", 66))
	fmt.Printf("  %-14s %-26s %6s %10s\n", "BARCODE", "ITEM", "QTY", "TOTAL")
	fmt.Println(strings.Repeat("-", 66))
	for _, l := range o.Lines {
		lineTotal := l.SalePrice.Mul(intToDecimal(l.Quantity))
		fmt.Printf("  %-14s %-26s %6d %10s\n",
			l.ItemID, l.Name, l.Quantity, lineTotal.StringFixed(2))
	}
	fmt.Println(strings.Repeat("-", 66))
	fmt.Printf("  %-48s %10s\n", "TOTAL", o.Price.StringFixed(2))
	fmt.Println(strings.Repeat("-", 66))
}

func printCart(cart *core.Cart) {
	lines := cart.Lines()
	fmt.Println()
	fmt.Println(strings.Repeat("=", 70))
	fmt.Println("  CART")
	fmt.Println(strings.Repeat("=", 70))
	if len(lines) == 0 {
		fmt.Println("  Cart is empty.")
		fmt.Println(strings.Repeat("=", 70))
		return
	}
	fmt.Printf("  %-14s %-26s %6s %10s %8s\n", "BARCODE", "ITEM", "QTY", "TOTAL", "STOCK")
	fmt.Println(strings.Repeat("-", 70))
	for _, l := range lines {
		lineTotal := l.SalePrice.Mul(intToDecimal(l.Quantity))
		fmt.Printf("  %-14s %-26s %6d %10s %8d\n",
			l.ItemID, l.Name, l.Quantity, lineTotal.StringFixed(2), l.Available)
	}
	fmt.Println(strings.Repeat("-", 70))
	fmt.Printf("  %-48s %10s\n", "TOTAL", cart.Total().StringFixed(2))
	fmt.Println(strings.Repeat("=", 70))
}

func printSuppliers(result *app.SupplierListResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 72))
	fmt.Println("  SUPPLIERS")
	fmt.Println(strings.Repeat("=", 72))
	if len(result.Suppliers) == 0 {
		fmt.Println("  No suppliers registered.")
		fmt.Println(strings.Repeat("=", 72))
		return
	}
	fmt.Printf("  %-5s %-28s %-22s %s\n", "ID", "NAME", "CONTACT", "PHONE")
	fmt.Println(strings.Repeat("-", 72))
	for _, s := range result.Suppliers {
		fmt.Printf("  %-5d %-28s %-22s %s\n", s.ID, s.Name, s.Contact, s.Phone)
	}
	fmt.Println(strings.Repeat("=", 72))
}

func printLowStock(result *app.ItemListResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 66))
	fmt.Println("  LOW STOCK")
	fmt.Println(strings.Repeat("=", 66))
	if len(result.Items) == 0 {
		fmt.Println("  Nothing at or below its threshold.")
		fmt.Println(strings.Repeat("=", 66))
		return
	}
	fmt.Printf("  %-14s %-30s %6s %9s\n", "BARCODE", "NAME", "QTY", "THRESHOLD")
	fmt.Println(strings.Repeat("-", 66))
	for _, it := range result.Items {
		fmt.Printf("  %-14s %-30s %6d %9d\n", it.ID, it.Name, it.Quantity, it.MinStockAlert)
	}
	fmt.Println(strings.Repeat("=", 66))
}

func printReport(rep *core.SalesReport) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("  SALES REPORT  %s → %s\n",
		rep.From.Format("2006-01-02"), rep.To.Format("2006-01-02"))
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("  %-32s %20d\n", "Completed orders", rep.OrderCount)
	fmt.Printf("  %-32s %20s\n", "Revenue", rep.TotalRevenue.StringFixed(2))
	fmt.Printf("  %-32s %20s\n", "Cost of goods sold", rep.TotalCOGS.StringFixed(2))
	fmt.Printf("  %-32s %20s\n", "Gross profit", rep.GrossProfit.StringFixed(2))
	fmt.Printf("  %-32s %19s%%\n", "Margin", rep.ProfitMarginPct.StringFixed(1))
	fmt.Printf("  %-32s %20s\n", "Average order value", rep.AvgOrderValue.StringFixed(2))

	if len(rep.TopByUnits) > 0 {
		fmt.Println(strings.Repeat("-", 70))
		fmt.Println("  TOP BY UNITS SOLD")
		for i, t := range rep.TopByUnits {
			fmt.Printf("  %2d. %-38s %6d units\n", i+1, t.Name, t.UnitsSold)
		}
	}
	if len(rep.TopByProfit) > 0 {
		fmt.Println(strings.Repeat("-", 70))
		fmt.Println("  TOP BY PROFIT")
		for i, t := range rep.TopByProfit {
			fmt.Printf("  %2d. %-38s %12s\n", i+1, t.Name, t.Profit.StringFixed(2))
		}
	}
	if len(rep.Daily) > 0 {
		fmt.Println(strings.Repeat("-", 70))
		fmt.Printf("  %-14s %14s %14s\n", "DAY", "REVENUE", "PROFIT")
		for _, p := range rep.Daily {
			fmt.Printf("  %-14s %14s %14s\n", p.Date, p.Revenue.StringFixed(2), p.Profit.StringFixed(2))
		}
	}
	fmt.Println(strings.Repeat("=", 70))
}

func printSlowMoving(result *app.ItemListResult, days int) {
	if days <= 0 {
		days = 30
	}
	fmt.Println()
	fmt.Println(strings.Repeat("=", 66))
	fmt.Printf("  NO SALES IN %d DAYS\n", days)
	fmt.Println(strings.Repeat("=", 66))
	if len(result.Items) == 0 {
		fmt.Println("  Everything sold recently.")
		fmt.Println(strings.Repeat("=", 66))
		return
	}
	fmt.Printf("  %-14s %-34s %6s\n", "BARCODE", "NAME", "QTY")
	fmt.Println(strings.Repeat("-", 66))
	for _, it := range result.Items {
		fmt.Printf("  %-14s %-34s %6d\n", it.ID, it.Name, it.Quantity)
	}
	fmt.Println(strings.Repeat("=", 66))
}

func printSettlement(res *core.SettlementResult) {
	fmt.Printf("\n%s\n", res.Message)
	for _, a := range res.Alerts {
		fmt.Printf("  ALERT: %s\n", a)
	}
}

func printHelp() {
	fmt.Println()
	fmt.Println("INVENTORY LEDGER — COMMANDS")
	fmt.Println(strings.Repeat("=", 62))
	fmt.Println()
	fmt.Println("  CATALOG")
	fmt.Println("  /items                           List all items")
	fmt.Println("  /item <barcode>                  Show one item")
	fmt.Println("  /history <barcode>               Stock history, newest first")
	fmt.Println("  /add-item                        Register an item (interactive)")
	fmt.Println("  /adjust <barcode> <delta> [why]  Manual stock correction, e.g. /adjust 750100 -3 damaged")
	fmt.Println()
	fmt.Println("  ORDERS")
	fmt.Println("  /orders [status]                 List orders (processing | completed)")
	fmt.Println("  /order <order-id>                Show one order with its lines")
	fmt.Println("  /new-order [title]               Create order (interactive)")
	fmt.Println("  /complete <order-id>             Settle: deduct stock + audit + mark completed")
	fmt.Println("  /cancel <order-id>               Cancel a processing order")
	fmt.Println()
	fmt.Println("  POINT OF SALE")
	fmt.Println("  <barcode>                        Scan: add one unit to the cart (no / prefix)")
	fmt.Println("  /cart                            Review the cart")
	fmt.Println("  /remove <barcode>                Drop a cart line")
	fmt.Println("  /clear                           Empty the cart")
	fmt.Println("  /checkout                        Settle the cart as a direct sale")
	fmt.Println()
	fmt.Println("  SUPPLIERS")
	fmt.Println("  /suppliers                       List suppliers")
	fmt.Println("  /add-supplier                    Register a supplier (interactive)")
	fmt.Println()
	fmt.Println("  REPORTS")
	fmt.Println("  /dash                            Dashboard metrics")
	fmt.Println("  /low                             Items at or below their alert threshold")
	fmt.Println("  /report [from] [to]              Sales report (YYYY-MM-DD, default last 30 days)")
	fmt.Println("  /slow [days]                     Items with no sales (default 30 days)")
	fmt.Println()
	fmt.Println("  SESSION")
	fmt.Println("  /help                            Show this help")
	fmt.Println("  /exit                            Exit")
	fmt.Println(strings.Repeat("=", 62))
}
