package filestore

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/salesbook/internal/domain"
	"github.com/vladislavdragonenkov/salesbook/internal/metrics"
)

// Schema описывает тип записей конкретного хранилища.
type Schema[T domain.Record[T]] struct {
	// Name — имя хранилища для логов и метрик (customers, products, ...).
	Name string
	// Fields — порядок колонок файла, первая колонка всегда id.
	Fields []string
	// Decode собирает запись из строки файла.
	Decode func(row map[string]string) T
	// Validate возвращает все нарушенные правила записи.
	Validate func(item T) []error
}

// Store — упорядоченная коллекция записей одного типа, один к одному
// связанная с CSV-файлом. Порядок записей совпадает с порядком строк файла.
//
// Store не потокобезопасен: предполагается один процесс и один писатель.
// Коллекция в памяти всегда совпадает с последним успешно записанным файлом.
type Store[T domain.Record[T]] struct {
	path    string
	schema  Schema[T]
	items   []T
	logger  *log.Entry
	metrics *metrics.StoreMetrics
}

// New создаёт пустое хранилище; данные читаются только явным вызовом Load.
func New[T domain.Record[T]](path string, schema Schema[T], logger *log.Entry, m *metrics.StoreMetrics) *Store[T] {
	if logger == nil {
		logger = log.New().WithField("component", "filestore")
	}
	return &Store[T]{
		path:    path,
		schema:  schema,
		logger:  logger.WithFields(log.Fields{"store": schema.Name, "file": path}),
		metrics: m,
	}
}

// Name возвращает имя хранилища.
func (s *Store[T]) Name() string { return s.schema.Name }

// Path возвращает путь к файлу хранилища.
func (s *Store[T]) Path() string { return s.path }

// Fields возвращает порядок колонок файла.
func (s *Store[T]) Fields() []string { return slices.Clone(s.schema.Fields) }

// Load заново читает файл и заменяет коллекцию в памяти.
// Отсутствующий файл — пустая коллекция, а не ошибка.
func (s *Store[T]) Load() ([]T, error) {
	s.items = nil

	_, rows, err := ReadRows(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug("data file does not exist, starting empty")
		s.metrics.SetRecords(s.schema.Name, 0)
		return s.items, nil
	}
	if err != nil {
		s.logger.WithError(err).Warn("failed to load data file")
		s.metrics.RecordOperation(s.schema.Name, "load", metrics.ResultError)
		return s.items, fmt.Errorf("load %s: %w", s.schema.Name, err)
	}

	items := make([]T, 0, len(rows))
	for _, row := range rows {
		items = append(items, s.schema.Decode(row))
	}
	s.items = items

	s.logger.WithField("records", len(items)).Debug("data file loaded")
	s.metrics.RecordOperation(s.schema.Name, "load", metrics.ResultOK)
	s.metrics.SetRecords(s.schema.Name, len(items))
	return s.items, nil
}

// Save перезаписывает файл целиком текущей коллекцией.
func (s *Store[T]) Save() error {
	start := time.Now()

	rows := make([][]string, 0, len(s.items))
	for _, item := range s.items {
		rows = append(rows, item.Row())
	}

	if err := WriteRows(s.path, s.schema.Fields, rows); err != nil {
		s.logger.WithError(err).Warn("failed to save data file")
		s.metrics.RecordOperation(s.schema.Name, "save", metrics.ResultError)
		return fmt.Errorf("save %s: %w", s.schema.Name, err)
	}

	s.metrics.RecordSaveDuration(s.schema.Name, time.Since(start))
	s.metrics.RecordOperation(s.schema.Name, "save", metrics.ResultOK)
	s.metrics.SetRecords(s.schema.Name, len(s.items))
	return nil
}

// NextID возвращает максимальный числовой id + 1 или "1" для пустого хранилища.
// Нечисловой id в коллекции означает повреждённые данные и возвращается как ErrMalformedID.
func (s *Store[T]) NextID() (string, error) {
	if len(s.items) == 0 {
		return "1", nil
	}

	maxID := math.MinInt
	for _, item := range s.items {
		id, err := strconv.Atoi(strings.TrimSpace(item.RecordID()))
		if err != nil {
			return "", fmt.Errorf("%w: %s id %q", domain.ErrMalformedID, s.schema.Name, item.RecordID())
		}
		maxID = max(maxID, id)
	}
	return strconv.Itoa(maxID + 1), nil
}

// Validate проверяет запись правилами хранилища без изменения состояния.
func (s *Store[T]) Validate(item T) error {
	if errs := s.schema.Validate(item); len(errs) > 0 {
		return &domain.ValidationError{Entity: s.schema.Name, Violations: errs}
	}
	return nil
}

// Add валидирует запись, присваивает id, добавляет её в конец коллекции и сохраняет файл.
// При нарушении правил возвращается *domain.ValidationError, коллекция и файл не меняются.
func (s *Store[T]) Add(item T) (T, error) {
	added, err := s.AddBatch([]T{item})
	if err != nil {
		return item, err
	}
	return added[0], nil
}

// AddBatch добавляет несколько записей одной перезаписью файла.
// Либо добавляются все записи, либо ни одной.
func (s *Store[T]) AddBatch(batch []T) ([]T, error) {
	if len(batch) == 0 {
		return nil, nil
	}
	for _, item := range batch {
		if errs := s.schema.Validate(item); len(errs) > 0 {
			s.metrics.RecordOperation(s.schema.Name, "add", metrics.ResultInvalid)
			s.metrics.RecordViolations(s.schema.Name, errs)
			return nil, &domain.ValidationError{Entity: s.schema.Name, Violations: errs}
		}
	}

	next, err := s.NextID()
	if err != nil {
		s.logger.WithError(err).Error("cannot allocate record id")
		return nil, err
	}
	id, _ := strconv.Atoi(next)

	before := len(s.items)
	added := make([]T, 0, len(batch))
	for i, item := range batch {
		item = item.WithID(strconv.Itoa(id + i))
		added = append(added, item)
	}
	s.items = append(s.items, added...)

	if err := s.Save(); err != nil {
		s.items = s.items[:before]
		s.metrics.RecordOperation(s.schema.Name, "add", metrics.ResultError)
		return nil, err
	}

	s.metrics.RecordOperation(s.schema.Name, "add", metrics.ResultOK)
	return added, nil
}

// AddRow декодирует строку импорта и добавляет её через Add.
func (s *Store[T]) AddRow(row map[string]string) error {
	_, err := s.Add(s.schema.Decode(row))
	return err
}

// All возвращает живую коллекцию без копирования: изменения среза видны хранилищу.
func (s *Store[T]) All() []T {
	return s.items
}

// Len возвращает количество записей.
func (s *Store[T]) Len() int {
	return len(s.items)
}

// Rows возвращает записи в виде "колонка → значение" для экспорта.
func (s *Store[T]) Rows() []map[string]string {
	rows := make([]map[string]string, 0, len(s.items))
	for _, item := range s.items {
		rows = append(rows, domain.Fields(s.schema.Fields, item))
	}
	return rows
}

// FindByID ищет запись линейным проходом по id; пробелы по краям id не учитываются.
func (s *Store[T]) FindByID(id string) (T, bool) {
	id = strings.TrimSpace(id)
	for _, item := range s.items {
		if strings.TrimSpace(item.RecordID()) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Filter возвращает новый срез записей, удовлетворяющих условию.
func (s *Store[T]) Filter(keep func(T) bool) []T {
	out := make([]T, 0, len(s.items))
	for _, item := range s.items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// Delete удаляет запись по id и перезаписывает файл.
// ErrNotFound, если записи нет; при ошибке записи коллекция восстанавливается.
func (s *Store[T]) Delete(id string) error {
	id = strings.TrimSpace(id)
	idx := slices.IndexFunc(s.items, func(item T) bool { return strings.TrimSpace(item.RecordID()) == id })
	if idx < 0 {
		s.metrics.RecordOperation(s.schema.Name, "delete", metrics.ResultNotFound)
		return fmt.Errorf("%w: %s id %s", domain.ErrNotFound, s.schema.Name, id)
	}

	removed := s.items[idx]
	s.items = slices.Delete(s.items, idx, idx+1)

	if err := s.Save(); err != nil {
		s.items = slices.Insert(s.items, idx, removed)
		s.metrics.RecordOperation(s.schema.Name, "delete", metrics.ResultError)
		return err
	}

	s.metrics.RecordOperation(s.schema.Name, "delete", metrics.ResultOK)
	return nil
}
