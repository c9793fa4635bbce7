// Package aggregate derives inventory values from an already filtered item set.
package aggregate

import (
	"math"

	"gudang/internal/models"

	"github.com/shopspring/decimal"
)

// Row pairs an item with its derived value.
type Row struct {
	models.Item
	Value decimal.Decimal `json:"value"`
	Slug  string          `json:"slug"`
}

// Summary is the aggregated view over a sequence of items. TotalStock stops at
// math.MaxInt rather than wrapping.
type Summary struct {
	Items      []Row           `json:"items"`
	Count      int             `json:"count"`
	TotalStock int             `json:"total_stock"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// RowValue is price × stock.
func RowValue(item models.Item) decimal.Decimal {
	return item.Price.Mul(decimal.NewFromInt(int64(item.Stock)))
}

// TotalValue sums RowValue over items.
func TotalValue(items []models.Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(RowValue(item))
	}
	return total
}

// NewRow derives the value and slug of a single item.
func NewRow(item models.Item) Row {
	return Row{Item: item, Value: RowValue(item), Slug: Slug(item)}
}

// addStock adds non-negative stock counts, saturating at math.MaxInt.
func addStock(total, stock int) int {
	if stock > math.MaxInt-total {
		return math.MaxInt
	}
	return total + stock
}

// Summarize computes per-row values and totals, preserving item order.
func Summarize(items []models.Item) Summary {
	summary := Summary{Items: make([]Row, 0, len(items)), TotalValue: decimal.Zero}
	for _, item := range items {
		row := NewRow(item)
		summary.Items = append(summary.Items, row)
		summary.Count++
		summary.TotalStock = addStock(summary.TotalStock, item.Stock)
		summary.TotalValue = summary.TotalValue.Add(row.Value)
	}
	return summary
}
