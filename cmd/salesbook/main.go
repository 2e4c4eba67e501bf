package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/vladislavdragonenkov/salesbook/internal/cli"
)

// environ возвращает переменные окружения процесса в виде map.
func environ() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Run(ctx, os.Stdout, os.Stderr, os.Args, environ())
	stop()
	os.Exit(code)
}
