package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/vladislavdragonenkov/salesbook/internal/analytics"
	"github.com/vladislavdragonenkov/salesbook/internal/domain"
	"github.com/vladislavdragonenkov/salesbook/internal/sales"
)

var errBadItem = errors.New("item must be <product_id>:<quantity>")

// OrdersCreateCmd возвращает команду оформления заказа.
func OrdersCreateCmd(s *session) *Command {
	fs := flag.NewFlagSet("orders create", flag.ContinueOnError)
	fs.String("customer", "", "Customer id (required)")
	fs.StringArray("item", nil, "Order line as <product_id>:<quantity>, repeatable")

	return &Command{
		Flags: fs,
		Usage: "orders create --customer <id> --item <product_id>:<qty> [--item ...]",
		Short: "Create an order at current product prices",
		Long: "Create an order with its line items. Prices are copied from the products, " +
			"totals are computed per line. Nothing is written if any line is invalid.",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			raw, _ := fs.GetStringArray("item")
			lines, err := parseOrderLines(raw)
			if err != nil {
				return err
			}
			a, err := s.open()
			if err != nil {
				return err
			}
			order, err := a.Book.PlaceOrder(stringFlag(fs, "customer"), lines)
			if err != nil {
				return err
			}
			o.Printf("Created order %s: %d items, total %s\n", order.ID, len(lines), order.TotalAmount)
			return nil
		},
	}
}

func parseOrderLines(raw []string) ([]sales.OrderLine, error) {
	lines := make([]sales.OrderLine, 0, len(raw))
	for _, item := range raw {
		productID, qty, ok := strings.Cut(item, ":")
		if !ok || strings.TrimSpace(productID) == "" {
			return nil, fmt.Errorf("%w: %q", errBadItem, item)
		}
		quantity, err := strconv.Atoi(strings.TrimSpace(qty))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", errBadItem, item)
		}
		lines = append(lines, sales.OrderLine{ProductID: strings.TrimSpace(productID), Quantity: quantity})
	}
	return lines, nil
}

// OrdersListCmd возвращает команду вывода заказов.
func OrdersListCmd(s *session) *Command {
	fs := flag.NewFlagSet("orders list", flag.ContinueOnError)
	fs.String("customer", "", "Only orders of this customer id")
	fs.String("since", "", "Only orders placed on or after `YYYY-MM-DD`")

	return &Command{
		Flags: fs,
		Usage: "orders list [flags]",
		Short: "List orders",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			a, err := s.open()
			if err != nil {
				return err
			}

			orders := a.Book.Orders.All()
			if since := stringFlag(fs, "since"); since != "" {
				from, err := time.Parse(analytics.DayLayout, since)
				if err != nil {
					return fmt.Errorf("--since: %w", err)
				}
				if orders, err = a.Book.Since(from); err != nil {
					return err
				}
			}
			if customer := stringFlag(fs, "customer"); customer != "" {
				filtered := orders[:0:0]
				for _, order := range orders {
					if order.CustomerID == customer {
						filtered = append(filtered, order)
					}
				}
				orders = filtered
			}

			printOrders(o, orders)
			return nil
		},
	}
}

// OrdersSortCmd возвращает команду сортировки заказов.
func OrdersSortCmd(s *session) *Command {
	fs := flag.NewFlagSet("orders sort", flag.ContinueOnError)
	fs.String("by", string(sales.SortByDate), "Sort key (date|amount|id)")
	fs.Bool("desc", false, "Sort in descending order")

	return &Command{
		Flags: fs,
		Usage: "orders sort [--by date|amount|id] [--desc]",
		Short: "List orders sorted by date, amount or id",
		Long:  "List orders sorted by a key. Orders with equal keys keep their stored order.",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			key, err := sales.ParseSortKey(stringFlag(fs, "by"))
			if err != nil {
				return err
			}
			desc, _ := fs.GetBool("desc")

			a, err := s.open()
			if err != nil {
				return err
			}
			sorted, err := a.Book.Orders.SortOrders(key, !desc)
			if err != nil {
				return err
			}
			printOrders(o, sorted)
			return nil
		},
	}
}

// OrdersItemsCmd возвращает команду вывода позиций заказа.
func OrdersItemsCmd(s *session) *Command {
	return &Command{
		Flags: flag.NewFlagSet("orders items", flag.ContinueOnError),
		Usage: "orders items <order_id>",
		Short: "Show an order with its line items",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) == 0 {
				return errIDRequired
			}
			a, err := s.open()
			if err != nil {
				return err
			}
			details, err := a.Book.OrderDetails(args[0])
			if err != nil {
				return err
			}

			o.Printf("Order %s from %s\n", details.Order.ID, details.Order.OrderDate)
			o.Printf("Customer: %s\n", details.Order.CustomerInfo)
			o.Printf("Total: %s\n\n", details.Order.TotalAmount)

			rows := make([][]string, 0, len(details.Items))
			for _, item := range details.Items {
				name := item.ProductName
				if name == "" {
					name = "(deleted)"
				}
				rows = append(rows, []string{item.ID, item.ProductID, name, item.Quantity, item.Unit, item.Price, item.Total})
			}
			o.Table([]string{"ID", "PRODUCT", "NAME", "QTY", "UNIT", "PRICE", "TOTAL"}, rows)
			return nil
		},
	}
}

func printOrders(o *IO, orders []domain.Order) {
	rows := make([][]string, 0, len(orders))
	for _, order := range orders {
		rows = append(rows, []string{order.ID, order.CustomerID, order.TotalAmount, order.OrderDate, order.CustomerInfo})
	}
	o.Table([]string{"ID", "CUSTOMER", "TOTAL", "DATE", "CUSTOMER INFO"}, rows)
}
