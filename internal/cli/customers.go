package cli

import (
	"context"
	"errors"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/vladislavdragonenkov/salesbook/internal/domain"
)

var (
	errIDRequired    = errors.New("id is required")
	errQueryRequired = errors.New("search text is required")
)

// CustomersAddCmd возвращает команду добавления покупателя.
func CustomersAddCmd(s *session) *Command {
	fs := flag.NewFlagSet("customers add", flag.ContinueOnError)
	fs.String("last", "", "Last name (required)")
	fs.String("first", "", "First name (required)")
	fs.String("middle", "", "Middle name")
	fs.String("phone", "", "Phone, +7XXXXXXXXXX or 8XXXXXXXXXX (required)")
	fs.String("email", "", "E-mail")

	return &Command{
		Flags: fs,
		Usage: "customers add --last <name> --first <name> --phone <phone> [flags]",
		Short: "Add a customer",
		Long:  "Validate and add a customer. All violated rules are reported at once.",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			a, err := s.open()
			if err != nil {
				return err
			}
			customer := domain.Customer{
				LastName:   stringFlag(fs, "last"),
				FirstName:  stringFlag(fs, "first"),
				MiddleName: stringFlag(fs, "middle"),
				Phone:      stringFlag(fs, "phone"),
				Email:      stringFlag(fs, "email"),
			}
			added, err := a.Book.Customers.Add(customer)
			if err != nil {
				return err
			}
			o.Println("Added customer", added.ID)
			return nil
		},
	}
}

// CustomersListCmd возвращает команду вывода покупателей.
func CustomersListCmd(s *session) *Command {
	return &Command{
		Flags: flag.NewFlagSet("customers list", flag.ContinueOnError),
		Usage: "customers list",
		Short: "List customers",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			a, err := s.open()
			if err != nil {
				return err
			}
			printCustomers(o, a.Book.Customers.All())
			return nil
		},
	}
}

// CustomersSearchCmd возвращает команду поиска покупателей.
func CustomersSearchCmd(s *session) *Command {
	return &Command{
		Flags: flag.NewFlagSet("customers search", flag.ContinueOnError),
		Usage: "customers search <text>",
		Short: "Search customers by name, phone or e-mail",
		Long:  "Case-insensitive substring search over last, first and middle name, phone and e-mail.",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) == 0 {
				return errQueryRequired
			}
			a, err := s.open()
			if err != nil {
				return err
			}
			printCustomers(o, a.Book.Customers.Search(strings.Join(args, " ")))
			return nil
		},
	}
}

// CustomersDeleteCmd возвращает команду удаления покупателя.
func CustomersDeleteCmd(s *session) *Command {
	return &Command{
		Flags: flag.NewFlagSet("customers delete", flag.ContinueOnError),
		Usage: "customers delete <id>",
		Short: "Delete a customer without orders",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) == 0 {
				return errIDRequired
			}
			a, err := s.open()
			if err != nil {
				return err
			}
			if err := a.Book.DeleteCustomer(args[0]); err != nil {
				return err
			}
			o.Println("Deleted customer", args[0])
			return nil
		},
	}
}

func printCustomers(o *IO, customers []domain.Customer) {
	rows := make([][]string, 0, len(customers))
	for _, c := range customers {
		rows = append(rows, []string{c.ID, c.LastName, c.FirstName, c.MiddleName, c.Phone, c.Email})
	}
	o.Table([]string{"ID", "LAST NAME", "FIRST NAME", "MIDDLE NAME", "PHONE", "EMAIL"}, rows)
}

func stringFlag(fs *flag.FlagSet, name string) string {
	v, _ := fs.GetString(name)
	return v
}
