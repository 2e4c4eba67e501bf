// Package analytics строит сводки по заказам: активные покупатели,
// динамика заказов по дням и граф покупателей с общими товарами.
package analytics

import (
	"cmp"
	"slices"

	"github.com/vladislavdragonenkov/salesbook/internal/domain"
)

// DayLayout — формат дня в сводке по датам.
const DayLayout = "2006-01-02"

// CustomerCount — число заказов покупателя.
type CustomerCount struct {
	CustomerID string `json:"customer_id"`
	Name       string `json:"name"`
	Orders     int    `json:"orders"`
}

// TopCustomers возвращает до n покупателей с наибольшим числом заказов.
// При равенстве выше тот, чей заказ встретился раньше. Если покупатель
// удалён, вместо имени выводится его id.
func TopCustomers(orders []domain.Order, customers []domain.Customer, n int) []CustomerCount {
	if n <= 0 {
		return nil
	}

	names := shortNames(customers)
	var counts []CustomerCount
	index := make(map[string]int)
	for _, order := range orders {
		i, ok := index[order.CustomerID]
		if !ok {
			i = len(counts)
			index[order.CustomerID] = i
			name, known := names[order.CustomerID]
			if !known {
				name = order.CustomerID
			}
			counts = append(counts, CustomerCount{CustomerID: order.CustomerID, Name: name})
		}
		counts[i].Orders++
	}

	slices.SortStableFunc(counts, func(a, b CustomerCount) int {
		return cmp.Compare(b.Orders, a.Orders)
	})
	if len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// DayCount — число заказов за день.
type DayCount struct {
	Day    string `json:"day"`
	Orders int    `json:"orders"`
}

// DailyOrderCounts группирует заказы по дню оформления, дни по возрастанию.
// Заказ с повреждённой датой даёт ошибку domain.ErrMalformedField.
func DailyOrderCounts(orders []domain.Order) ([]DayCount, error) {
	perDay := make(map[string]int)
	for _, order := range orders {
		date, err := order.Date()
		if err != nil {
			return nil, err
		}
		perDay[date.Format(DayLayout)]++
	}

	out := make([]DayCount, 0, len(perDay))
	for day, n := range perDay {
		out = append(out, DayCount{Day: day, Orders: n})
	}
	slices.SortFunc(out, func(a, b DayCount) int {
		return cmp.Compare(a.Day, b.Day)
	})
	return out, nil
}

// Node — покупатель в графе.
type Node struct {
	CustomerID string `json:"customer_id"`
	Name       string `json:"name"`
	Degree     int    `json:"degree"`
}

// Edge связывает двух покупателей; Weight — число общих товаров.
type Edge struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Weight int    `json:"weight"`
}

// Network — граф покупателей по общим товарам.
type Network struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// CustomerNetwork строит граф: узлы — все покупатели, ребро соединяет
// двух покупателей, заказывавших хотя бы один общий товар.
// Пары перечисляются в порядке первого заказа покупателя.
func CustomerNetwork(orders []domain.Order, items []domain.LineItem, customers []domain.Customer) Network {
	itemsByOrder := make(map[string][]string)
	for _, item := range items {
		itemsByOrder[item.OrderID] = append(itemsByOrder[item.OrderID], item.ProductID)
	}

	var buyers []string
	products := make(map[string]map[string]struct{})
	for _, order := range orders {
		set, ok := products[order.CustomerID]
		if !ok {
			set = make(map[string]struct{})
			products[order.CustomerID] = set
			buyers = append(buyers, order.CustomerID)
		}
		for _, productID := range itemsByOrder[order.ID] {
			set[productID] = struct{}{}
		}
	}

	network := Network{Nodes: make([]Node, 0, len(customers))}
	degree := make(map[string]int)
	for i := range buyers {
		for j := i + 1; j < len(buyers); j++ {
			common := 0
			for productID := range products[buyers[i]] {
				if _, ok := products[buyers[j]][productID]; ok {
					common++
				}
			}
			if common == 0 {
				continue
			}
			network.Edges = append(network.Edges, Edge{From: buyers[i], To: buyers[j], Weight: common})
			degree[buyers[i]]++
			degree[buyers[j]]++
		}
	}

	for _, c := range customers {
		network.Nodes = append(network.Nodes, Node{CustomerID: c.ID, Name: c.ShortName(), Degree: degree[c.ID]})
	}
	return network
}

func shortNames(customers []domain.Customer) map[string]string {
	names := make(map[string]string, len(customers))
	for _, c := range customers {
		names[c.ID] = c.ShortName()
	}
	return names
}
