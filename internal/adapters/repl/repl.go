package repl

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"inventory-ledger/internal/app"
	"inventory-ledger/internal/core"
)

// Run starts the interactive session loop.
// It reads input from reader, dispatches slash commands deterministically,
// and treats anything else as a barcode scan that adds one unit to the
// session cart. A wedge scanner types the code and sends Enter, so the
// default action needs no prefix at all.
func Run(ctx context.Context, svc app.ApplicationService, reader *bufio.Reader) {
	metrics, err := svc.GetDashboard(ctx)
	if err != nil {
		log.Fatalf("Failed to load dashboard: %v", err)
	}

	fmt.Println("Inventory Ledger")
	fmt.Printf("Items: %d — Stock value: %s — Processing orders: %d\n",
		metrics.TotalItems, metrics.TotalInventoryValue.StringFixed(2), metrics.ProcessingOrderCount)
	fmt.Println("Scan a barcode to start a sale, or use /help for commands.")
	fmt.Println(strings.Repeat("-", 70))

	cart := core.NewCart()
	errExit := fmt.Errorf("exit")

	dispatchSlash := func(input string) error {
		tokens := strings.Fields(strings.TrimPrefix(input, "/"))
		if len(tokens) == 0 {
			return nil
		}
		cmd := strings.ToLower(tokens[0])
		args := tokens[1:]

		switch cmd {
		case "dash", "dashboard":
			metrics, err := svc.GetDashboard(ctx)
			if err != nil {
				return err
			}
			printDashboard(metrics)

		case "items":
			result, err := svc.ListItems(ctx)
			if err != nil {
				return err
			}
			printItems(result)

		case "item":
			if len(args) < 1 {
				fmt.Println("Usage: /item <barcode>")
				return nil
			}
			result, err := svc.GetItem(ctx, args[0])
			if err != nil {
				return err
			}
			printItemDetail(result.Item)

		case "history":
			if len(args) < 1 {
				fmt.Println("Usage: /history <barcode>")
				return nil
			}
			result, err := svc.GetItemHistory(ctx, args[0])
			if err != nil {
				return err
			}
			printHistory(result)

		case "add-item":
			handleAddItem(ctx, reader, svc)

		case "adjust":
			if len(args) < 2 {
				fmt.Println("Usage: /adjust <barcode> <delta> [reason...]")
				fmt.Println("  Delta is signed: /adjust 750100 -3 damaged in transit")
				return nil
			}
			delta, err := strconv.Atoi(args[1])
			if err != nil || delta == 0 {
				fmt.Printf("Invalid delta: %s\n", args[1])
				return nil
			}
			result, err := svc.AdjustItemQuantity(ctx, app.AdjustQuantityRequest{
				ItemID: args[0],
				Delta:  delta,
				Reason: strings.Join(args[2:], " "),
			})
			if err != nil {
				return err
			}
			fmt.Printf("%q adjusted by %+d. New quantity: %d\n",
				result.Item.Name, delta, result.Item.Quantity)

		case "orders":
			var statusPtr *string
			if len(args) > 0 {
				status := strings.ToLower(args[0])
				statusPtr = &status
			}
			result, err := svc.ListOrders(ctx, statusPtr)
			if err != nil {
				return err
			}
			printOrders(result)

		case "order":
			if len(args) < 1 {
				fmt.Println("Usage: /order <order-id>")
				return nil
			}
			result, err := svc.GetOrder(ctx, args[0])
			if err != nil {
				return err
			}
			printOrderDetail(result.Order)

		case "new-order":
			handleNewOrder(ctx, reader, svc, strings.Join(args, " "))

		case "complete":
			if len(args) < 1 {
				fmt.Println("Usage: /complete <order-id>")
				return nil
			}
			result, err := svc.CompleteOrder(ctx, args[0])
			if err != nil {
				return err
			}
			printSettlement(result)

		case "cancel":
			if len(args) < 1 {
				fmt.Println("Usage: /cancel <order-id>")
				return nil
			}
			if err := svc.CancelOrder(ctx, args[0]); err != nil {
				return err
			}
			fmt.Println("Order cancelled and removed.")

		case "cart":
			printCart(cart)

		case "remove":
			if len(args) < 1 {
				fmt.Println("Usage: /remove <barcode>")
				return nil
			}
			cart.Remove(args[0])
			printCart(cart)

		case "clear":
			cart.Clear()
			fmt.Println("Cart cleared.")

		case "checkout":
			if cart.IsEmpty() {
				fmt.Println("Cart is empty. Scan a barcode first.")
				return nil
			}
			req := app.DirectSaleRequest{}
			for _, l := range cart.Lines() {
				req.Lines = append(req.Lines, app.SaleLineInput{ItemID: l.ItemID, Quantity: l.Quantity})
			}
			fmt.Printf("Charging %s for %d line(s)...\n", cart.Total().StringFixed(2), len(cart.Lines()))
			result, err := svc.ProcessDirectSale(ctx, req)
			if err != nil {
				return err
			}
			printSettlement(result)
			cart.Clear()

		case "suppliers":
			result, err := svc.ListSuppliers(ctx)
			if err != nil {
				return err
			}
			printSuppliers(result)

		case "add-supplier":
			handleAddSupplier(ctx, reader, svc)

		case "low":
			result, err := svc.GetLowStockItems(ctx)
			if err != nil {
				return err
			}
			printLowStock(result)

		case "report":
			req := app.SalesReportRequest{}
			if len(args) > 0 {
				req.From = args[0]
			}
			if len(args) > 1 {
				req.To = args[1]
			}
			report, err := svc.GetSalesReport(ctx, req)
			if err != nil {
				return err
			}
			printReport(report)

		case "slow":
			days := 0
			if len(args) > 0 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					fmt.Printf("Invalid day count: %s\n", args[0])
					return nil
				}
				days = n
			}
			result, err := svc.GetSlowMovingItems(ctx, days)
			if err != nil {
				return err
			}
			printSlowMoving(result, days)

		case "help", "h":
			printHelp()

		case "exit", "quit", "e", "q":
			return errExit

		default:
			fmt.Printf("Unknown command: /%s  (type /help for all commands)\n", cmd)
		}
		return nil
	}

	for {
		fmt.Print("\n> ")
		input, _ := reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		// Slash prefix → deterministic command dispatcher.
		if strings.HasPrefix(input, "/") {
			if err := dispatchSlash(input); err != nil {
				if err == errExit {
					fmt.Println("Goodbye!")
					break
				}
				fmt.Printf("Error: %v\n", err)
			}
			continue
		}

		// No slash prefix → barcode scan into the session cart.
		res, err := svc.ScanBarcode(ctx, input)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		if res.Status != core.ScanFound {
			fmt.Println(res.Message)
			continue
		}

		added := cart.Add(res.Item, 1)
		fmt.Println(added.Message)
		if added.Status == core.ScanAdded {
			fmt.Printf("Cart: %d line(s), total %s. /checkout to settle, /cart to review.\n",
				len(cart.Lines()), cart.Total().StringFixed(2))
		}
	}
}
