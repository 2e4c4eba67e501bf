// Package cli реализует команды salesbook.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/vladislavdragonenkov/salesbook/internal/app"
	"github.com/vladislavdragonenkov/salesbook/internal/sales"
)

var errUnknownCommand = errors.New("unknown command")

// Run — точка входа CLI. args[0] — имя программы. Возвращает код завершения.
func Run(ctx context.Context, out, errOut io.Writer, args []string, env map[string]string) int {
	return run(ctx, out, errOut, args, env, nil)
}

func run(ctx context.Context, out, errOut io.Writer, args []string, env map[string]string, opts []sales.OrderOption) int {
	o := NewIO(out, errOut)

	global, rest, err := parseGlobalFlags(args)
	if err != nil {
		o.ErrPrintln("error:", err)
		return 1
	}
	if global.help || len(rest) == 0 {
		printUsage(o, nil)
		return 0
	}

	cfg, err := app.LoadConfig(app.LoadConfigInput{
		WorkDir:    global.workDir,
		ConfigPath: global.configPath,
		Env:        env,
		Overrides:  global.overrides,
	})
	if err != nil {
		o.ErrPrintln("error:", err)
		return 1
	}

	logger, err := app.NewLogger(cfg, errOut)
	if err != nil {
		o.ErrPrintln("error:", err)
		return 1
	}

	s := &session{cfg: cfg, logger: logger, opts: opts}
	code := s.dispatch(ctx, o, rest)
	if err := s.close(); err != nil {
		o.ErrPrintln("error:", err)
		return 1
	}
	return code
}

type globalFlags struct {
	workDir    string
	configPath string
	overrides  app.Config
	help       bool
}

func parseGlobalFlags(args []string) (globalFlags, []string, error) {
	var g globalFlags

	fs := flag.NewFlagSet("salesbook", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SetInterspersed(false)
	fs.StringVarP(&g.workDir, "cwd", "C", "", "Run as if started in `dir`")
	fs.StringVarP(&g.configPath, "config", "c", "", "Config `file` (JSON with comments)")
	fs.StringVar(&g.overrides.DataDir, "data-dir", "", "Directory with data files")
	fs.StringVar(&g.overrides.LogLevel, "log-level", "", "Log level (debug|info|warning|error)")
	fs.StringVar(&g.overrides.LogFormat, "log-format", "", "Log format (text|json)")
	fs.StringVar(&g.overrides.MetricsFile, "metrics-file", "", "Write Prometheus metrics to `file` on exit")
	fs.BoolVarP(&g.help, "help", "h", false, "Show help")

	if len(args) > 0 {
		args = args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return globalFlags{}, nil, err
	}
	return g, fs.Args(), nil
}

// session держит настройки одного запуска и лениво открытое приложение.
type session struct {
	cfg    app.Config
	logger *log.Logger
	opts   []sales.OrderOption
	app    *app.App
	// newEditor создаёт источник строк для shell; nil — терминал через liner.
	newEditor func() lineEditor
}

func (s *session) open() (*app.App, error) {
	if s.app != nil {
		return s.app, nil
	}
	a, err := app.Open(s.cfg, s.logger, s.opts...)
	if err != nil {
		return nil, err
	}
	s.app = a
	return a, nil
}

func (s *session) close() error {
	if s.app == nil {
		return nil
	}
	err := s.app.Close()
	s.app = nil
	return err
}

// commands создаёт новый набор команд; флаги каждой команды разбираются один раз.
func (s *session) commands() []*Command {
	cmds := []*Command{
		CustomersAddCmd(s),
		CustomersListCmd(s),
		CustomersSearchCmd(s),
		CustomersDeleteCmd(s),
		ProductsAddCmd(s),
		ProductsListCmd(s),
		ProductsSearchCmd(s),
		ProductsDeleteCmd(s),
		OrdersCreateCmd(s),
		OrdersListCmd(s),
		OrdersSortCmd(s),
		OrdersItemsCmd(s),
		ImportCmd(s),
		ExportCmd(s),
		StatsTopCmd(s),
		StatsDailyCmd(s),
		StatsNetworkCmd(s),
		CheckCmd(s),
		VersionCmd(),
	}
	return append(cmds, ShellCmd(s))
}

// dispatch находит команду по первым словам args и выполняет её.
func (s *session) dispatch(ctx context.Context, o *IO, args []string) int {
	cmds := s.commands()
	sort.SliceStable(cmds, func(i, j int) bool {
		return len(strings.Fields(cmds[i].Name())) > len(strings.Fields(cmds[j].Name()))
	})

	for _, cmd := range cmds {
		words := strings.Fields(cmd.Name())
		if len(args) < len(words) || !equalWords(words, args[:len(words)]) {
			continue
		}
		return cmd.Run(ctx, o, args[len(words):])
	}

	if group := groupCommands(cmds, args[0]); len(group) > 0 {
		if len(args) > 1 {
			o.ErrPrintln("error:", fmt.Errorf("%w: %s %s", errUnknownCommand, args[0], args[1]))
		}
		printUsage(o, group)
		if len(args) > 1 {
			return 1
		}
		return 0
	}

	o.ErrPrintln("error:", fmt.Errorf("%w: %s", errUnknownCommand, args[0]))
	return 1
}

func equalWords(want, got []string) bool {
	for i := range want {
		if want[i] != got[i] {
			return false
		}
	}
	return true
}

func groupCommands(cmds []*Command, group string) []*Command {
	var out []*Command
	for _, cmd := range cmds {
		if first, _, found := strings.Cut(cmd.Name(), " "); found && first == group {
			out = append(out, cmd)
		}
	}
	return out
}

func printUsage(o *IO, cmds []*Command) {
	if cmds == nil {
		cmds = (&session{}).commands()
	}

	o.Println("Usage: salesbook [global flags] <command> [args]")
	o.Println()
	o.Println("Commands:")
	for _, cmd := range cmds {
		o.Println(cmd.HelpLine())
	}
	o.Println()
	o.Println("Global flags:")
	o.Println("  -C, --cwd <dir>          Run as if started in dir")
	o.Println("  -c, --config <file>      Config file (default salesbook.json)")
	o.Println("      --data-dir <dir>     Directory with data files")
	o.Println("      --log-level <level>  Log level (debug|info|warning|error)")
	o.Println("      --log-format <fmt>   Log format (text|json)")
	o.Println("      --metrics-file <f>   Write Prometheus metrics on exit")
}
