package domain

// RowAdder принимает запись в виде набора именованных полей (импорт CSV/JSON).
type RowAdder interface {
	AddRow(row map[string]string) error
}

// Repository описывает общие операции хранилища записей одного типа.
type Repository[T Record[T]] interface {
	RowAdder
	// Add валидирует запись, присваивает ей id и сохраняет файл.
	Add(item T) (T, error)
	// All возвращает живую коллекцию записей.
	All() []T
	// FindByID возвращает запись или false, если её нет.
	FindByID(id string) (T, bool)
	// Delete удаляет запись и перезаписывает файл; ErrNotFound, если записи нет.
	Delete(id string) error
}
