package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/peterh/liner"
	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
)

const shellPrompt = "salesbook> "

var errUnterminatedQuote = errors.New("unterminated quote")

// lineEditor читает строки интерактивного режима.
type lineEditor interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	Close() error
}

// ShellCmd возвращает команду интерактивного режима.
func ShellCmd(s *session) *Command {
	return &Command{
		Flags: flag.NewFlagSet("shell", flag.ContinueOnError),
		Usage: "shell",
		Short: "Interactive mode: run commands without the salesbook prefix",
		Long: "Read commands line by line, e.g. `customers search иван`. Data files are loaded once. " +
			"Quote arguments with spaces. Type `help` for commands, `exit` or Ctrl-D to leave.",
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			if _, err := s.open(); err != nil {
				return err
			}
			editor := s.newEditor
			if editor == nil {
				editor = s.linerEditor
			}
			return s.repl(ctx, o, editor())
		},
	}
}

func (s *session) repl(ctx context.Context, o *IO, editor lineEditor) error {
	defer editor.Close()

	for ctx.Err() == nil {
		line, err := editor.Prompt(shellPrompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				o.Println()
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		editor.AppendHistory(line)

		args, err := splitLine(line)
		if err != nil {
			o.ErrPrintln("error:", err)
			continue
		}

		switch args[0] {
		case "exit", "quit":
			return nil
		case "help", "?":
			printUsage(o, nil)
		case "shell":
			o.ErrPrintln("error: already in shell")
		default:
			s.dispatch(ctx, o, args)
		}
	}
	return ctx.Err()
}

// historyEditor — liner с историей в файле.
type historyEditor struct {
	*liner.State
	path   string
	logger *log.Entry
}

func (s *session) linerEditor() lineEditor {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	state.SetCompleter(s.complete)

	editor := &historyEditor{
		State:  state,
		path:   s.cfg.HistoryPath(),
		logger: s.logger.WithField("component", "shell"),
	}
	editor.loadHistory()
	return editor
}

// loadHistory читает историю из файла; отсутствующий файл не ошибка.
func (e *historyEditor) loadHistory() {
	if e.path == "" {
		return
	}
	f, err := os.Open(e.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			e.logger.WithError(err).WithField("file", e.path).Warn("cannot open shell history")
		}
		return
	}
	defer f.Close()

	if _, err := e.ReadHistory(f); err != nil {
		e.logger.WithError(err).WithField("file", e.path).Warn("cannot read shell history")
	}
}

// saveHistory перезаписывает файл истории целиком.
func (e *historyEditor) saveHistory() {
	if e.path == "" {
		return
	}
	var buf bytes.Buffer
	if _, err := e.WriteHistory(&buf); err != nil {
		e.logger.WithError(err).Warn("cannot serialize shell history")
		return
	}
	if err := atomic.WriteFile(e.path, &buf); err != nil {
		e.logger.WithError(err).WithField("file", e.path).Warn("cannot write shell history")
	}
}

// Close сохраняет историю и восстанавливает режим терминала.
func (e *historyEditor) Close() error {
	e.saveHistory()
	return e.State.Close()
}

// complete дополняет имена команд.
func (s *session) complete(line string) []string {
	var out []string
	for _, cmd := range s.commands() {
		if name := cmd.Name(); strings.HasPrefix(name, line) {
			out = append(out, name)
		}
	}
	return out
}

// splitLine разбивает строку на аргументы по пробелам с учётом кавычек.
func splitLine(line string) ([]string, error) {
	var (
		args    []string
		current strings.Builder
		quote   rune
		inArg   bool
	)
	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			current.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
			inArg = true
		case r == ' ' || r == '\t':
			if inArg {
				args = append(args, current.String())
				current.Reset()
				inArg = false
			}
		default:
			current.WriteRune(r)
			inArg = true
		}
	}
	if quote != 0 {
		return nil, errUnterminatedQuote
	}
	if inArg {
		args = append(args, current.String())
	}
	return args, nil
}
