package cart

import "github.com/comanda-ar/comanda-gateway/pkg/types"

// ProductControl tells the menu page which control to render for one product
// card: the bare add button, or the stepper with the current quantity.
type ProductControl struct {
	ProductID   types.FlexID `json:"product_id"`
	ShowAdd     bool         `json:"show_add"`
	ShowStepper bool         `json:"show_stepper"`
	Quantity    int          `json:"quantity"`
}

// ViewLine is one rendered cart row.
type ViewLine struct {
	ID       types.FlexID `json:"id"`
	Name     string       `json:"nombre"`
	Price    float64      `json:"precio"`
	Quantity int          `json:"cantidad"`
	Note     string       `json:"sugerency"`
	Total    float64      `json:"total"`
}

// ViewState is everything the page derives from the cart in one pass. It is
// recomputed from scratch on every read so the rendered state can never
// drift from the stored cart.
type ViewState struct {
	ItemCount int              `json:"item_count"`
	Lines     []ViewLine       `json:"lines"`
	Subtotal  float64          `json:"subtotal"`
	Products  []ProductControl `json:"products,omitempty"`
}

// ComputeViewState derives the full render state from the cart. productIDs
// lists the products visible on the page; each gets a control whether or not
// it is in the cart.
func ComputeViewState(cart Cart, productIDs []types.FlexID) ViewState {
	state := ViewState{
		ItemCount: cart.TotalQuantity(),
		Lines:     make([]ViewLine, 0, len(cart)),
		Subtotal:  cart.Subtotal(),
	}

	for _, line := range cart {
		state.Lines = append(state.Lines, ViewLine{
			ID:       line.ID,
			Name:     line.Name,
			Price:    line.Price,
			Quantity: line.Quantity,
			Note:     line.Note,
			Total:    line.LineTotal(),
		})
	}

	for _, id := range productIDs {
		qty := cart.Quantity(id)
		state.Products = append(state.Products, ProductControl{
			ProductID:   id,
			ShowAdd:     qty == 0,
			ShowStepper: qty > 0,
			Quantity:    qty,
		})
	}

	return state
}
