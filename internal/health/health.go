package health

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/salesbook/internal/storage/filestore"
)

// Status представляет статус компонента
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
)

// Check представляет проверку здоровья компонента
type Check struct {
	Name       string `json:"name"`
	Status     Status `json:"status"`
	Message    string `json:"message,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// Response — сводный отчёт по всем проверкам
type Response struct {
	Status    Status           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Checks    map[string]Check `json:"checks,omitempty"`
	Version   string           `json:"version,omitempty"`
}

// Checker интерфейс для проверки здоровья компонента
type Checker interface {
	Check() Check
}

// Registry хранит зарегистрированные проверки
type Registry struct {
	mu       sync.RWMutex
	checkers map[string]Checker
	version  string
	now      func() time.Time
}

// NewRegistry создаёт пустой реестр проверок
func NewRegistry(version string) *Registry {
	return &Registry{
		checkers: make(map[string]Checker),
		version:  version,
		now:      time.Now,
	}
}

// Register регистрирует проверку компонента
func (r *Registry) Register(name string, checker Checker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers[name] = checker
}

// Names возвращает имена проверок по алфавиту
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.checkers))
	for name := range r.checkers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Evaluate выполняет все проверки. Общий статус — худший из статусов компонентов.
func (r *Registry) Evaluate() Response {
	r.mu.RLock()
	checkers := make(map[string]Checker, len(r.checkers))
	for k, v := range r.checkers {
		checkers[k] = v
	}
	r.mu.RUnlock()

	checks := make(map[string]Check, len(checkers))
	overallStatus := StatusHealthy

	for name, checker := range checkers {
		check := checker.Check()
		checks[name] = check

		if check.Status == StatusUnhealthy {
			overallStatus = StatusUnhealthy
		} else if check.Status == StatusDegraded && overallStatus == StatusHealthy {
			overallStatus = StatusDegraded
		}
	}

	return Response{
		Status:    overallStatus,
		Timestamp: r.now(),
		Checks:    checks,
		Version:   r.version,
	}
}

// WriteJSON выполняет проверки и пишет отчёт в w
func (r *Registry) WriteJSON(w io.Writer) (Response, error) {
	response := r.Evaluate()
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return response, enc.Encode(response)
}

// FuncChecker оборачивает функцию проверки: ошибка — unhealthy,
// иначе healthy с сообщением, которое вернула функция.
type FuncChecker struct {
	name string
	fn   func() (string, error)
}

// NewFuncChecker создаёт проверку на основе функции
func NewFuncChecker(name string, fn func() (string, error)) *FuncChecker {
	return &FuncChecker{name: name, fn: fn}
}

// Check выполняет проверку
func (c *FuncChecker) Check() Check {
	start := time.Now()
	message, err := c.fn()
	check := Check{Name: c.name, Status: StatusHealthy, Message: message}
	if err != nil {
		check.Status = StatusUnhealthy
		check.Message = err.Error()
	}
	check.DurationMs = time.Since(start).Milliseconds()
	return check
}

// FileChecker проверяет файл данных: он читается и его заголовок совпадает с ожидаемым.
// Отсутствующий файл — degraded: он будет создан при первой записи.
type FileChecker struct {
	name   string
	path   string
	header []string
}

// NewFileChecker создаёт проверку файла данных
func NewFileChecker(name, path string, header []string) *FileChecker {
	return &FileChecker{name: name, path: path, header: header}
}

// Check выполняет проверку
func (c *FileChecker) Check() Check {
	start := time.Now()
	check := Check{Name: c.name, Status: StatusHealthy}

	header, rows, err := filestore.ReadRows(c.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		check.Status = StatusDegraded
		check.Message = fmt.Sprintf("%s does not exist", c.path)
	case err != nil:
		check.Status = StatusUnhealthy
		check.Message = err.Error()
	case header == nil:
		check.Status = StatusDegraded
		check.Message = fmt.Sprintf("%s is empty", c.path)
	case !slices.Equal(header, c.header):
		check.Status = StatusUnhealthy
		check.Message = fmt.Sprintf("unexpected header %v, want %v", header, c.header)
	default:
		check.Message = fmt.Sprintf("%d records", len(rows))
	}

	check.DurationMs = time.Since(start).Milliseconds()
	return check
}
