package app

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/salesbook/internal/domain"
	"github.com/vladislavdragonenkov/salesbook/internal/health"
)

func quietLogger() *log.Logger {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.LogLevel = "info"
	cfg.LogFormat = LogFormatJSON

	logger, err := NewLogger(cfg, &buf)
	require.NoError(t, err)
	assert.Equal(t, log.InfoLevel, logger.GetLevel())

	logger.WithField("component", "test").Debug("hidden")
	logger.WithField("component", "test").Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"component":"test"`)

	cfg.LogLevel = "nope"
	_, err = NewLogger(cfg, &buf)
	require.Error(t, err)
}

func TestOpen_CreatesFilesAndLoads(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadConfig(LoadConfigInput{WorkDir: dir, Overrides: Config{DataDir: "data"}})
	require.NoError(t, err)

	a, err := Open(cfg, quietLogger())
	require.NoError(t, err)
	assert.NotEmpty(t, a.RunID)

	for _, name := range []string{"customers.csv", "products.csv", "orders.csv", "order_items.csv"} {
		_, err := os.Stat(filepath.Join(dir, "data", name))
		require.NoError(t, err, name)
	}
	assert.Equal(t, health.StatusHealthy, a.Health.Evaluate().Status)

	_, err = a.Book.Products.Add(domain.Product{Name: "Чай", Price: "10", Unit: "шт"})
	require.NoError(t, err)

	reopened, err := Open(cfg, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, 1, reopened.Book.Products.Len())
	assert.NotEqual(t, a.RunID, reopened.RunID)
}

func TestOpen_MalformedDataFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "orders.csv", "id,customer_id\n1,\"broken\n")
	cfg, err := LoadConfig(LoadConfigInput{WorkDir: dir})
	require.NoError(t, err)

	_, err = Open(cfg, quietLogger())
	require.Error(t, err)
}

func TestClose_WritesMetricsFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadConfig(LoadConfigInput{WorkDir: dir, Overrides: Config{MetricsFile: "salesbook.prom"}})
	require.NoError(t, err)

	a, err := Open(cfg, quietLogger())
	require.NoError(t, err)
	_, err = a.Book.Customers.Add(domain.Customer{LastName: "Иванов", FirstName: "Иван", Phone: "89991234567"})
	require.NoError(t, err)
	require.NoError(t, a.Close())

	data, err := os.ReadFile(filepath.Join(dir, "salesbook.prom"))
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.Contains(text, `salesbook_store_records{store="customers"} 1`), text)
	assert.Contains(t, text, `salesbook_store_operations_total{op="add",result="ok",store="customers"} 1`)
}

func TestClose_NoMetricsFile(t *testing.T) {
	cfg, err := LoadConfig(LoadConfigInput{WorkDir: t.TempDir()})
	require.NoError(t, err)
	a, err := Open(cfg, quietLogger())
	require.NoError(t, err)
	require.NoError(t, a.Close())
}
