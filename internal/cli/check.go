package cli

import (
	"context"
	"errors"

	flag "github.com/spf13/pflag"

	"github.com/vladislavdragonenkov/salesbook/internal/app"
	"github.com/vladislavdragonenkov/salesbook/internal/health"
	"github.com/vladislavdragonenkov/salesbook/internal/version"
)

var errUnhealthy = errors.New("data files are unhealthy")

// CheckCmd возвращает команду проверки файлов данных.
func CheckCmd(s *session) *Command {
	return &Command{
		Flags: flag.NewFlagSet("check", flag.ContinueOnError),
		Usage: "check",
		Short: "Check data files and print a JSON report",
		Long: "Check that every data file is readable and has the expected header. " +
			"Missing files are reported as degraded, unreadable ones as unhealthy (exit code 1).",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			registry := app.NewHealthRegistry(s.cfg)
			response, err := registry.WriteJSON(o.out)
			if err != nil {
				return err
			}
			if response.Status == health.StatusUnhealthy {
				return errUnhealthy
			}
			return nil
		},
	}
}

// VersionCmd возвращает команду вывода версии.
func VersionCmd() *Command {
	return &Command{
		Flags: flag.NewFlagSet("version", flag.ContinueOnError),
		Usage: "version",
		Short: "Print version information",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			o.Println(version.String())
			return nil
		},
	}
}
