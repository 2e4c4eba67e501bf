package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/tailscale/hujson"

	"github.com/vladislavdragonenkov/salesbook/internal/sales"
)

const (
	// ConfigFileName — файл настроек в рабочем каталоге, JSON с комментариями.
	ConfigFileName = "salesbook.json"
	// EnvFileName — файл переменных окружения в рабочем каталоге.
	EnvFileName = ".env"
	// EnvPrefix — префикс переменных окружения приложения.
	EnvPrefix = "SALESBOOK_"
)

const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

var (
	ErrConfigInvalid      = errors.New("invalid config")
	ErrConfigFileNotFound = errors.New("config file not found")
)

// Config описывает настройки приложения.
type Config struct {
	DataDir       string `json:"data_dir,omitempty"`
	CustomersFile string `json:"customers_file,omitempty"`
	ProductsFile  string `json:"products_file,omitempty"`
	OrdersFile    string `json:"orders_file,omitempty"`
	LineItemsFile string `json:"order_items_file,omitempty"`
	LogLevel      string `json:"log_level,omitempty"`
	LogFormat     string `json:"log_format,omitempty"`
	// MetricsFile — куда выгружать метрики в текстовом формате Prometheus; пусто — не выгружать.
	MetricsFile string `json:"metrics_file,omitempty"`
	HistoryFile string `json:"history_file,omitempty"`

	// WorkDir — рабочий каталог, относительно которого разрешаются пути.
	WorkDir string `json:"-"`
	// Sources перечисляет прочитанные файлы настроек.
	Sources []string `json:"-"`
}

// DefaultConfig возвращает настройки по умолчанию: файлы данных в текущем каталоге.
func DefaultConfig() Config {
	return Config{
		DataDir:       ".",
		CustomersFile: "customers.csv",
		ProductsFile:  "products.csv",
		OrdersFile:    "orders.csv",
		LineItemsFile: "order_items.csv",
		LogLevel:      log.WarnLevel.String(),
		LogFormat:     LogFormatText,
		HistoryFile:   ".salesbook_history",
	}
}

// Paths возвращает абсолютные пути файлов хранилищ.
func (c Config) Paths() sales.Paths {
	return sales.Paths{
		Customers: c.dataPath(c.CustomersFile),
		Products:  c.dataPath(c.ProductsFile),
		Orders:    c.dataPath(c.OrdersFile),
		LineItems: c.dataPath(c.LineItemsFile),
	}
}

// HistoryPath возвращает путь файла истории интерактивного режима.
func (c Config) HistoryPath() string {
	return c.resolve(c.HistoryFile)
}

// MetricsPath возвращает путь выгрузки метрик или пустую строку.
func (c Config) MetricsPath() string {
	return c.resolve(c.MetricsFile)
}

func (c Config) dataPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.resolve(c.DataDir), name)
}

func (c Config) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.WorkDir, path)
}

// Validate проверяет значения настроек.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DataDir) == "" {
		errs = append(errs, errors.New("data_dir is empty"))
	}
	for name, file := range map[string]string{
		"customers_file":   c.CustomersFile,
		"products_file":    c.ProductsFile,
		"orders_file":      c.OrdersFile,
		"order_items_file": c.LineItemsFile,
	} {
		if strings.TrimSpace(file) == "" {
			errs = append(errs, fmt.Errorf("%s is empty", name))
		}
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.LogFormat != LogFormatText && c.LogFormat != LogFormatJSON {
		errs = append(errs, fmt.Errorf("log_format must be %q or %q, got %q", LogFormatText, LogFormatJSON, c.LogFormat))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigInvalid, err)
	}
	return nil
}

// LoadConfigInput — входные данные LoadConfig.
type LoadConfigInput struct {
	// WorkDir — рабочий каталог; пусто — os.Getwd.
	WorkDir string
	// ConfigPath — явно указанный файл настроек, обязан существовать.
	ConfigPath string
	// Env — переменные окружения процесса.
	Env map[string]string
	// Overrides — значения из флагов командной строки, непустые поля побеждают.
	Overrides Config
}

// LoadConfig собирает настройки по слоям, каждый следующий перекрывает предыдущий:
// значения по умолчанию, файл salesbook.json (или ConfigPath), файл .env,
// переменные окружения SALESBOOK_*, флаги командной строки.
func LoadConfig(input LoadConfigInput) (Config, error) {
	workDir := input.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
		workDir = wd
	}
	workDir, err := filepath.Abs(workDir)
	if err != nil {
		return Config{}, fmt.Errorf("resolve working directory: %w", err)
	}

	cfg := DefaultConfig()

	fileCfg, source, err := loadConfigFile(workDir, input.ConfigPath)
	if err != nil {
		return Config{}, err
	}
	cfg = mergeConfig(cfg, fileCfg)
	if source != "" {
		cfg.Sources = append(cfg.Sources, source)
	}

	envFile := filepath.Join(workDir, EnvFileName)
	dotenv, err := godotenv.Read(envFile)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		dotenv = nil
	case err != nil:
		return Config{}, fmt.Errorf("%w %s: %w", ErrConfigInvalid, envFile, err)
	default:
		cfg.Sources = append(cfg.Sources, envFile)
	}
	cfg = mergeConfig(cfg, configFromEnv(dotenv))
	cfg = mergeConfig(cfg, configFromEnv(input.Env))
	cfg = mergeConfig(cfg, input.Overrides)

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.WorkDir = workDir

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadConfigFile(workDir, configPath string) (Config, string, error) {
	path := configPath
	mustExist := path != ""
	if !mustExist {
		path = ConfigFileName
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(workDir, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if mustExist {
				return Config{}, "", fmt.Errorf("%w: %s", ErrConfigFileNotFound, configPath)
			}
			return Config{}, "", nil
		}
		return Config{}, "", fmt.Errorf("read config %s: %w", path, err)
	}

	cfg, err := parseConfig(data)
	if err != nil {
		return Config{}, "", fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}
	return cfg, path, nil
}

func parseConfig(data []byte) (Config, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", err)
	}
	return cfg, nil
}

func configFromEnv(env map[string]string) Config {
	get := func(name string) string {
		return strings.TrimSpace(env[EnvPrefix+name])
	}
	return Config{
		DataDir:       get("DATA_DIR"),
		CustomersFile: get("CUSTOMERS_FILE"),
		ProductsFile:  get("PRODUCTS_FILE"),
		OrdersFile:    get("ORDERS_FILE"),
		LineItemsFile: get("ORDER_ITEMS_FILE"),
		LogLevel:      get("LOG_LEVEL"),
		LogFormat:     get("LOG_FORMAT"),
		MetricsFile:   get("METRICS_FILE"),
		HistoryFile:   get("HISTORY_FILE"),
	}
}

func mergeConfig(base, overlay Config) Config {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&base.DataDir, overlay.DataDir)
	set(&base.CustomersFile, overlay.CustomersFile)
	set(&base.ProductsFile, overlay.ProductsFile)
	set(&base.OrdersFile, overlay.OrdersFile)
	set(&base.LineItemsFile, overlay.LineItemsFile)
	set(&base.LogLevel, overlay.LogLevel)
	set(&base.LogFormat, overlay.LogFormat)
	set(&base.MetricsFile, overlay.MetricsFile)
	set(&base.HistoryFile, overlay.HistoryFile)
	return base
}
