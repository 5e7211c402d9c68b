package cart

import (
	"github.com/shopspring/decimal"

	"github.com/comanda-ar/comanda-gateway/pkg/types"
)

// Line is one product entry in a device cart. The JSON field names are the
// persisted layout and double as the order wire format, so they stay in the
// backend's vocabulary.
type Line struct {
	ID       types.FlexID `json:"id"`
	Name     string       `json:"nombre"`
	Price    float64      `json:"precio"`
	Quantity int          `json:"cantidad"`
	Note     string       `json:"sugerency"`
}

// Cart is the ordered list of lines for one device session. At most one line
// exists per product id, and no persisted line ever has quantity <= 0.
type Cart []Line

// TotalQuantity sums the quantities across all lines.
func (c Cart) TotalQuantity() int {
	total := 0
	for _, line := range c {
		total += line.Quantity
	}
	return total
}

// Subtotal computes the display subtotal rounded to 2 decimal places. It is
// never the authoritative charge amount; the backend re-prices on order
// creation.
func (c Cart) Subtotal() float64 {
	total := decimal.Zero
	for _, line := range c {
		lineTotal := decimal.NewFromFloat(line.Price).Mul(decimal.NewFromInt(int64(line.Quantity)))
		total = total.Add(lineTotal)
	}
	return total.Round(2).InexactFloat64()
}

// LineTotal computes one line's display total rounded to 2 decimal places.
func (l Line) LineTotal() float64 {
	return decimal.NewFromFloat(l.Price).
		Mul(decimal.NewFromInt(int64(l.Quantity))).
		Round(2).
		InexactFloat64()
}

// Find returns the index of the line matching id, or -1.
func (c Cart) Find(id types.FlexID) int {
	for i, line := range c {
		if line.ID.Equal(id) {
			return i
		}
	}
	return -1
}

// Quantity returns the quantity held for id, 0 when absent.
func (c Cart) Quantity(id types.FlexID) int {
	if i := c.Find(id); i >= 0 {
		return c[i].Quantity
	}
	return 0
}
