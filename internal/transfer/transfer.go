// Package transfer переносит записи хранилищ во внешние CSV и JSON файлы и обратно.
package transfer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/natefinch/atomic"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/salesbook/internal/domain"
	"github.com/vladislavdragonenkov/salesbook/internal/storage/filestore"
)

// Failed — количество импортированных записей при неудачном импорте.
const Failed = -1

var (
	// ErrMissingField — в импортируемых данных нет обязательной колонки.
	ErrMissingField = errors.New("required field is missing")
	// ErrNotObject — элемент JSON не является объектом.
	ErrNotObject = errors.New("json element is not an object")
)

// Manager выполняет импорт и экспорт.
type Manager struct {
	logger *log.Entry
}

// New создаёт Manager.
func New(logger *log.Entry) *Manager {
	if logger == nil {
		logger = log.New().WithField("component", "transfer")
	}
	return &Manager{logger: logger}
}

// ExportCSV записывает строки в CSV-файл с заголовком fields.
// Значения колонок, которых нет в fields, не выгружаются.
func (m *Manager) ExportCSV(path string, fields []string, rows []map[string]string) error {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		record := make([]string, len(fields))
		for i, name := range fields {
			record[i] = row[name]
		}
		records = append(records, record)
	}

	if err := filestore.WriteRows(path, fields, records); err != nil {
		m.logger.WithError(err).WithField("file", path).Warn("csv export failed")
		return err
	}
	m.logger.WithFields(log.Fields{"file": path, "rows": len(rows)}).Info("csv exported")
	return nil
}

// ExportJSON записывает v в JSON с отступом в четыре пробела.
// Не-ASCII символы и HTML-символы пишутся как есть.
func (m *Manager) ExportJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}

	if err := atomic.WriteFile(path, &buf); err != nil {
		m.logger.WithError(err).WithField("file", path).Warn("json export failed")
		return fmt.Errorf("write %s: %w", path, err)
	}
	m.logger.WithField("file", path).Info("json exported")
	return nil
}

// ImportCSV добавляет строки CSV-файла в dst и возвращает число принятых записей.
// Отсутствующий или нечитаемый файл, а также нехватка обязательной колонки
// дают Failed и ошибку; в этом случае ничего не добавляется.
// Строки, не прошедшие проверку, пропускаются.
func (m *Manager) ImportCSV(path string, dst domain.RowAdder, required []string) (int, error) {
	header, rows, err := filestore.ReadRows(path)
	if err != nil {
		m.logger.WithError(err).WithField("file", path).Warn("csv import failed")
		return Failed, fmt.Errorf("import %s: %w", path, err)
	}
	if len(rows) > 0 {
		for _, name := range required {
			if !slices.Contains(header, name) {
				return Failed, fmt.Errorf("import %s: %w: %s", path, ErrMissingField, name)
			}
		}
	}
	return m.addRows(path, rows, dst), nil
}

// ImportJSON добавляет объекты JSON-файла в dst. Файл содержит массив объектов
// или один объект. Скаляры переводятся в строки, числа сохраняют запись из файла.
func (m *Manager) ImportJSON(path string, dst domain.RowAdder, required []string) (int, error) {
	raw, err := readFile(path)
	if err != nil {
		m.logger.WithError(err).WithField("file", path).Warn("json import failed")
		return Failed, fmt.Errorf("import %s: %w", path, err)
	}

	rows, err := decodeObjects(raw)
	if err != nil {
		m.logger.WithError(err).WithField("file", path).Warn("json import failed")
		return Failed, fmt.Errorf("import %s: %w", path, err)
	}

	for i, row := range rows {
		for _, name := range required {
			if _, ok := row[name]; !ok {
				return Failed, fmt.Errorf("import %s: element %d: %w: %s", path, i, ErrMissingField, name)
			}
		}
	}
	return m.addRows(path, rows, dst), nil
}

func (m *Manager) addRows(path string, rows []map[string]string, dst domain.RowAdder) int {
	added := 0
	for i, row := range rows {
		if err := dst.AddRow(row); err != nil {
			m.logger.WithError(err).WithFields(log.Fields{"file": path, "row": i + 1}).Warn("row skipped")
			continue
		}
		added++
	}
	m.logger.WithFields(log.Fields{"file": path, "rows": len(rows), "added": added}).Info("import finished")
	return added
}

func readFile(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return filestore.DecodeText(raw)
}

func decodeObjects(raw []byte) ([]map[string]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("decode json: unexpected data after top-level value")
	}

	elements, ok := doc.([]any)
	if !ok {
		elements = []any{doc}
	}

	rows := make([]map[string]string, 0, len(elements))
	for i, element := range elements {
		object, ok := element.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("element %d: %w", i, ErrNotObject)
		}
		row := make(map[string]string, len(object))
		for key, value := range object {
			row[key] = stringify(value)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func stringify(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case json.Number:
		return value.String()
	case bool:
		return strconv.FormatBool(value)
	default:
		nested, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprint(value)
		}
		return string(nested)
	}
}
