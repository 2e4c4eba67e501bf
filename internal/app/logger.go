package app

import (
	"io"

	log "github.com/sirupsen/logrus"
)

// NewLogger настраивает формат и уровень логирования по конфигурации.
// Логи пишутся в out, обычно в stderr, чтобы не смешиваться с выводом команд.
func NewLogger(cfg Config, out io.Writer) (*log.Logger, error) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	logger := log.New()
	logger.SetOutput(out)
	logger.SetLevel(level)
	if cfg.LogFormat == LogFormatJSON {
		logger.SetFormatter(&log.JSONFormatter{})
	} else {
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return logger, nil
}
