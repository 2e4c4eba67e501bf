package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/vladislavdragonenkov/salesbook/internal/app"
	"github.com/vladislavdragonenkov/salesbook/internal/domain"
)

var (
	errEntityRequired = errors.New("entity and file are required")
	errUnknownEntity  = errors.New("unknown entity")
)

// Обязательные колонки импортируемых файлов.
var importRequired = map[string][]string{
	"customers": {"last_name", "first_name", "phone"},
	"products":  {"name", "price", "unit"},
}

// ImportCmd возвращает команду импорта.
func ImportCmd(s *session) *Command {
	return &Command{
		Flags: flag.NewFlagSet("import", flag.ContinueOnError),
		Usage: "import <customers|products> <file>",
		Short: "Import customers or products from CSV or JSON",
		Long: "Import records from a .json file (array of objects or one object) or a CSV file with a header. " +
			"Every record is validated, invalid records are skipped. Incoming ids are ignored.",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) < 2 {
				return errEntityRequired
			}
			entity, path := args[0], args[1]
			required, ok := importRequired[entity]
			if !ok {
				return fmt.Errorf("%w: %s (use customers|products)", errUnknownEntity, entity)
			}

			a, err := s.open()
			if err != nil {
				return err
			}
			var dst domain.RowAdder = a.Book.Customers
			if entity == "products" {
				dst = a.Book.Products
			}

			var count int
			if isJSON(path) {
				count, err = a.Transfer.ImportJSON(path, dst, required)
			} else {
				count, err = a.Transfer.ImportCSV(path, dst, required)
			}
			if err != nil {
				return err
			}
			o.Printf("Imported %d %s\n", count, entity)
			return nil
		},
	}
}

// ExportCmd возвращает команду экспорта.
func ExportCmd(s *session) *Command {
	return &Command{
		Flags: flag.NewFlagSet("export", flag.ContinueOnError),
		Usage: "export <customers|products|orders|order_items> <file>",
		Short: "Export records to CSV or JSON",
		Long:  "Export all records of an entity. A .json file gets an indented JSON array, anything else CSV.",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) < 2 {
				return errEntityRequired
			}
			entity, path := args[0], args[1]

			a, err := s.open()
			if err != nil {
				return err
			}
			n, err := exportEntity(a, entity, path)
			if err != nil {
				return err
			}
			o.Printf("Exported %d %s to %s\n", n, entity, path)
			return nil
		},
	}
}

type exportSource interface {
	Fields() []string
	Rows() []map[string]string
	Len() int
}

func exportEntity(a *app.App, entity, path string) (int, error) {
	var (
		src     exportSource
		records any
	)
	switch entity {
	case "customers":
		src, records = a.Book.Customers, nonNil(a.Book.Customers.All())
	case "products":
		src, records = a.Book.Products, nonNil(a.Book.Products.All())
	case "orders":
		src, records = a.Book.Orders, nonNil(a.Book.Orders.All())
	case "order_items":
		items := a.Book.Orders.LineItems()
		src, records = items, nonNil(items.All())
	default:
		return 0, fmt.Errorf("%w: %s (use customers|products|orders|order_items)", errUnknownEntity, entity)
	}

	if isJSON(path) {
		return src.Len(), a.Transfer.ExportJSON(path, records)
	}
	return src.Len(), a.Transfer.ExportCSV(path, src.Fields(), src.Rows())
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
