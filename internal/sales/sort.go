package sales

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"

	"github.com/vladislavdragonenkov/salesbook/internal/domain"
)

// SortKey — поле, по которому сортируются заказы.
type SortKey string

const (
	SortByDate   SortKey = "date"
	SortByAmount SortKey = "amount"
	SortByID     SortKey = "id"
)

// ParseSortKey разбирает ключ сортировки без учёта регистра.
func ParseSortKey(s string) (SortKey, error) {
	switch key := SortKey(strings.ToLower(strings.TrimSpace(s))); key {
	case SortByDate, SortByAmount, SortByID:
		return key, nil
	default:
		return "", fmt.Errorf("%w: %q (use date|amount|id)", domain.ErrUnsupportedSortKey, s)
	}
}

type keyedOrder struct {
	order domain.Order
	key   float64
}

// SortOrders возвращает новый отсортированный срез заказов, хранимая коллекция не меняется.
// Заказы с равным ключом сохраняют исходный порядок в обоих направлениях.
// Нечитаемая дата, сумма или id означают повреждённые данные и возвращаются ошибкой.
func (s *OrderStore) SortOrders(key SortKey, ascending bool) ([]domain.Order, error) {
	keyed := make([]keyedOrder, 0, s.Len())
	for _, order := range s.All() {
		k, err := sortValue(order, key)
		if err != nil {
			return nil, err
		}
		keyed = append(keyed, keyedOrder{order: order, key: k})
	}

	compare := cmp.Compare[float64]
	if !ascending {
		compare = func(a, b float64) int { return cmp.Compare(b, a) }
	}

	sorted := quickSort(keyed, compare)
	out := make([]domain.Order, 0, len(sorted))
	for _, k := range sorted {
		out = append(out, k.order)
	}
	return out, nil
}

func sortValue(order domain.Order, key SortKey) (float64, error) {
	switch key {
	case SortByDate:
		t, err := order.Date()
		if err != nil {
			return 0, err
		}
		return float64(t.Unix()), nil
	case SortByAmount:
		return order.Amount()
	case SortByID:
		id, err := strconv.Atoi(strings.TrimSpace(order.ID))
		if err != nil {
			return 0, fmt.Errorf("%w: order id %q", domain.ErrMalformedID, order.ID)
		}
		return float64(id), nil
	default:
		return 0, fmt.Errorf("%w: %q", domain.ErrUnsupportedSortKey, key)
	}
}

// quickSort делит элементы на меньшие, равные и большие опорного (средний элемент),
// рекурсивно сортирует крайние части и склеивает результат.
// Каждая часть сохраняет относительный порядок, поэтому сортировка устойчива.
func quickSort(items []keyedOrder, compare func(a, b float64) int) []keyedOrder {
	if len(items) <= 1 {
		return items
	}

	pivot := items[len(items)/2].key
	var less, equal, greater []keyedOrder
	for _, item := range items {
		switch c := compare(item.key, pivot); {
		case c < 0:
			less = append(less, item)
		case c == 0:
			equal = append(equal, item)
		default:
			greater = append(greater, item)
		}
	}

	out := make([]keyedOrder, 0, len(items))
	out = append(out, quickSort(less, compare)...)
	out = append(out, equal...)
	out = append(out, quickSort(greater, compare)...)
	return out
}
