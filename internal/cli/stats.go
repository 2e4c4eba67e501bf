package cli

import (
	"context"
	"errors"
	"strconv"

	flag "github.com/spf13/pflag"

	"github.com/vladislavdragonenkov/salesbook/internal/analytics"
)

const defaultTopLimit = 5

// StatsTopCmd возвращает команду рейтинга покупателей.
func StatsTopCmd(s *session) *Command {
	fs := flag.NewFlagSet("stats top", flag.ContinueOnError)
	fs.Int("limit", defaultTopLimit, "Number of customers to show")

	return &Command{
		Flags: fs,
		Usage: "stats top [--limit N]",
		Short: "Customers with the most orders",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			limit, _ := fs.GetInt("limit")
			if limit <= 0 {
				return errors.New("--limit must be positive")
			}
			a, err := s.open()
			if err != nil {
				return err
			}

			top := analytics.TopCustomers(a.Book.Orders.All(), a.Book.Customers.All(), limit)
			rows := make([][]string, 0, len(top))
			for _, c := range top {
				rows = append(rows, []string{c.CustomerID, c.Name, strconv.Itoa(c.Orders)})
			}
			o.Table([]string{"CUSTOMER", "NAME", "ORDERS"}, rows)
			return nil
		},
	}
}

// StatsDailyCmd возвращает команду числа заказов по дням.
func StatsDailyCmd(s *session) *Command {
	return &Command{
		Flags: flag.NewFlagSet("stats daily", flag.ContinueOnError),
		Usage: "stats daily",
		Short: "Number of orders per day",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			a, err := s.open()
			if err != nil {
				return err
			}
			days, err := analytics.DailyOrderCounts(a.Book.Orders.All())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(days))
			for _, d := range days {
				rows = append(rows, []string{d.Day, strconv.Itoa(d.Orders)})
			}
			o.Table([]string{"DAY", "ORDERS"}, rows)
			return nil
		},
	}
}

// StatsNetworkCmd возвращает команду графа покупателей по общим товарам.
func StatsNetworkCmd(s *session) *Command {
	return &Command{
		Flags: flag.NewFlagSet("stats network", flag.ContinueOnError),
		Usage: "stats network",
		Short: "Customers linked by products they both ordered",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			a, err := s.open()
			if err != nil {
				return err
			}
			network := analytics.CustomerNetwork(
				a.Book.Orders.All(),
				a.Book.Orders.LineItems().All(),
				a.Book.Customers.All(),
			)
			if len(network.Edges) == 0 {
				o.Println("No links between customers")
				return nil
			}

			names := make(map[string]string, len(network.Nodes))
			for _, node := range network.Nodes {
				names[node.CustomerID] = node.Name
			}
			nameOf := func(id string) string {
				if name, ok := names[id]; ok {
					return name
				}
				return id
			}

			rows := make([][]string, 0, len(network.Edges))
			for _, edge := range network.Edges {
				rows = append(rows, []string{nameOf(edge.From), nameOf(edge.To), strconv.Itoa(edge.Weight)})
			}
			o.Table([]string{"CUSTOMER", "CUSTOMER", "COMMON PRODUCTS"}, rows)
			return nil
		},
	}
}
