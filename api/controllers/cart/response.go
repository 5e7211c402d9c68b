package cart

import (
	cartsvc "github.com/comanda-ar/comanda-gateway/internal/cart"
)

// CartResponse is the canonical cart payload handed back after every read
// and mutation, derived fields included.
type CartResponse struct {
	ItemCount int                `json:"item_count"`
	Lines     []cartsvc.ViewLine `json:"lines"`
	Subtotal  float64            `json:"subtotal"`
}

// ConfirmResponse is returned when a destructive action still needs the
// guest's acknowledgment.
type ConfirmResponse struct {
	Confirm bool   `json:"confirm_required"`
	Prompt  string `json:"prompt"`
}

func newCartResponse(current cartsvc.Cart) CartResponse {
	state := cartsvc.ComputeViewState(current, nil)
	return CartResponse{
		ItemCount: state.ItemCount,
		Lines:     state.Lines,
		Subtotal:  state.Subtotal,
	}
}
