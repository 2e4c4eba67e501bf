package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// IO разделяет вывод команды и сообщения об ошибках.
type IO struct {
	out    io.Writer
	errOut io.Writer
}

// NewIO создаёт IO.
func NewIO(out, errOut io.Writer) *IO {
	return &IO{out: out, errOut: errOut}
}

// Println пишет в stdout.
func (o *IO) Println(a ...any) {
	_, _ = fmt.Fprintln(o.out, a...)
}

// Printf пишет форматированный вывод в stdout.
func (o *IO) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(o.out, format, a...)
}

// ErrPrintln пишет в stderr.
func (o *IO) ErrPrintln(a ...any) {
	_, _ = fmt.Fprintln(o.errOut, a...)
}

// Table выводит выровненную по колонкам таблицу с заголовком.
func (o *IO) Table(header []string, rows [][]string) {
	w := tabwriter.NewWriter(o.out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, row := range rows {
		_, _ = fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	_ = w.Flush()
}
