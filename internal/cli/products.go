package cli

import (
	"context"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/vladislavdragonenkov/salesbook/internal/domain"
)

// ProductsAddCmd возвращает команду добавления товара.
func ProductsAddCmd(s *session) *Command {
	fs := flag.NewFlagSet("products add", flag.ContinueOnError)
	fs.String("name", "", "Product name (required)")
	fs.String("price", "", "Price, a positive number (required)")
	fs.String("unit", "", "Unit of measure (required)")

	return &Command{
		Flags: fs,
		Usage: "products add --name <name> --price <price> --unit <unit>",
		Short: "Add a product",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			a, err := s.open()
			if err != nil {
				return err
			}
			added, err := a.Book.Products.Add(domain.Product{
				Name:  stringFlag(fs, "name"),
				Price: stringFlag(fs, "price"),
				Unit:  stringFlag(fs, "unit"),
			})
			if err != nil {
				return err
			}
			o.Println("Added product", added.ID)
			return nil
		},
	}
}

// ProductsListCmd возвращает команду вывода товаров.
func ProductsListCmd(s *session) *Command {
	return &Command{
		Flags: flag.NewFlagSet("products list", flag.ContinueOnError),
		Usage: "products list",
		Short: "List products",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			a, err := s.open()
			if err != nil {
				return err
			}
			printProducts(o, a.Book.Products.All())
			return nil
		},
	}
}

// ProductsSearchCmd возвращает команду поиска товаров.
func ProductsSearchCmd(s *session) *Command {
	return &Command{
		Flags: flag.NewFlagSet("products search", flag.ContinueOnError),
		Usage: "products search <text>",
		Short: "Search products by name or unit",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) == 0 {
				return errQueryRequired
			}
			a, err := s.open()
			if err != nil {
				return err
			}
			printProducts(o, a.Book.Products.Search(strings.Join(args, " ")))
			return nil
		},
	}
}

// ProductsDeleteCmd возвращает команду удаления товара.
// Позиции заказов хранят цену на момент заказа и удалением товара не затрагиваются.
func ProductsDeleteCmd(s *session) *Command {
	return &Command{
		Flags: flag.NewFlagSet("products delete", flag.ContinueOnError),
		Usage: "products delete <id>",
		Short: "Delete a product",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) == 0 {
				return errIDRequired
			}
			a, err := s.open()
			if err != nil {
				return err
			}
			if err := a.Book.Products.Delete(args[0]); err != nil {
				return err
			}
			o.Println("Deleted product", args[0])
			return nil
		},
	}
}

func printProducts(o *IO, products []domain.Product) {
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		rows = append(rows, []string{p.ID, p.Name, p.Price, p.Unit})
	}
	o.Table([]string{"ID", "NAME", "PRICE", "UNIT"}, rows)
}
