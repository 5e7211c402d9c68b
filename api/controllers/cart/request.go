package cart

import "github.com/comanda-ar/comanda-gateway/pkg/types"

// AddItemRequest carries the product card's payload. Field names follow the
// persisted cart layout.
type AddItemRequest struct {
	ID    types.FlexID `json:"id" validate:"required"`
	Name  string       `json:"nombre" validate:"required,max=200"`
	Price float64      `json:"precio" validate:"gte=0"`
}

// ChangeQuantityRequest nudges a line by delta. The stepper sends +1 or -1;
// anything that lands at or below zero removes the line.
type ChangeQuantityRequest struct {
	Delta int `json:"delta" validate:"required"`
}

// SetNoteRequest replaces a line's free-text preference.
type SetNoteRequest struct {
	Note string `json:"sugerency" validate:"max=500"`
}
