package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"
)

// Command описывает команду CLI.
type Command struct {
	// Flags — флаги команды.
	Flags *flag.FlagSet

	// Usage — строка использования после "salesbook": имя команды, аргументы, флаги.
	// Например: "customers add --last <name> --first <name> --phone <phone>".
	Usage string

	// Short — описание в одну строку для общего списка команд.
	Short string

	// Long — полное описание; если пусто, выводится Short.
	Long string

	// Exec выполняет команду после разбора флагов.
	Exec func(ctx context.Context, o *IO, args []string) error
}

// Name возвращает имя команды: слова Usage до первого аргумента или флага.
func (c *Command) Name() string {
	var words []string
	for _, word := range strings.Fields(c.Usage) {
		if strings.HasPrefix(word, "<") || strings.HasPrefix(word, "[") || strings.HasPrefix(word, "-") {
			break
		}
		words = append(words, word)
	}
	return strings.Join(words, " ")
}

// HelpLine возвращает строку для общего списка команд.
func (c *Command) HelpLine() string {
	return fmt.Sprintf("  %-28s %s", c.Name(), c.Short)
}

// PrintHelp выводит справку "salesbook <cmd> --help".
func (c *Command) PrintHelp(o *IO) {
	o.Println("Usage: salesbook", c.Usage)
	o.Println()

	desc := c.Long
	if desc == "" {
		desc = c.Short
	}
	o.Println(desc)

	if c.Flags != nil && c.Flags.HasFlags() {
		o.Println()
		o.Println("Flags:")

		var buf strings.Builder
		c.Flags.SetOutput(&buf)
		c.Flags.PrintDefaults()
		o.Printf("%s", buf.String())
	}
}

// Run разбирает флаги и выполняет команду. Возвращает код завершения.
func (c *Command) Run(ctx context.Context, o *IO, args []string) int {
	c.Flags.SetOutput(&strings.Builder{})

	err := c.Flags.Parse(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			c.PrintHelp(o)
			return 0
		}
		o.ErrPrintln("error:", err)
		o.ErrPrintln()
		c.PrintHelp(o)
		return 1
	}

	if err := c.Exec(ctx, o, c.Flags.Args()); err != nil {
		o.ErrPrintln("error:", err)
		return 1
	}
	return 0
}
