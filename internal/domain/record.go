package domain

// Record описывает запись, хранимую построчно в CSV-файле.
// Все поля в сохранённом виде — строки, id — строковое представление целого числа.
type Record[T any] interface {
	// RecordID возвращает идентификатор записи.
	RecordID() string
	// WithID возвращает копию записи с присвоенным идентификатором.
	WithID(id string) T
	// Row возвращает значения полей в порядке колонок файла.
	Row() []string
}

// Fields сопоставляет имена колонок со значениями записи.
func Fields[T Record[T]](names []string, record T) map[string]string {
	row := record.Row()
	out := make(map[string]string, len(names))
	for i, name := range names {
		if i < len(row) {
			out[name] = row[i]
		}
	}
	return out
}
