package filestore

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/natefinch/atomic"
	"golang.org/x/text/encoding/charmap"
)

// ErrEmptyHeader возвращается для файла без строки заголовка.
var ErrEmptyHeader = errors.New("csv header is missing")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeText переводит содержимое файла в UTF-8.
// Сначала файл читается как UTF-8, при некорректных последовательностях —
// как Windows-1251 (старые выгрузки из Excel).
func DecodeText(raw []byte) ([]byte, error) {
	if utf8.Valid(raw) {
		return bytes.TrimPrefix(raw, utf8BOM), nil
	}
	decoded, err := charmap.Windows1251.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, fmt.Errorf("decode windows-1251: %w", err)
	}
	return decoded, nil
}

// ParseRows разбирает CSV с заголовком в список строк "колонка → значение".
// Отсутствующие в строке колонки получают пустые значения.
func ParseRows(data []byte) (header []string, rows []map[string]string, err error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	header, err = reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}
	if len(header) == 0 {
		return nil, nil, ErrEmptyHeader
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read csv row: %w", err)
		}

		row := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}

	return header, rows, nil
}

// ReadRows читает CSV-файл с учётом запасной кодировки.
func ReadRows(path string) ([]string, []map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	data, err := DecodeText(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	header, rows, err := ParseRows(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return header, rows, nil
}

// WriteRows перезаписывает файл целиком: заголовок и строки в UTF-8.
// Запись атомарная, частично записанный файл не остаётся на диске.
func WriteRows(path string, header []string, rows [][]string) error {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}

	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
