package cart

import (
	"testing"

	"github.com/comanda-ar/comanda-gateway/pkg/types"
)

func TestComputeViewStateTotals(t *testing.T) {
	cart := Cart{
		{ID: "1", Name: "Pizza", Price: 10.00, Quantity: 2},
		{ID: "2", Name: "Soda", Price: 2.50, Quantity: 1},
	}

	state := ComputeViewState(cart, nil)

	if state.ItemCount != 3 {
		t.Fatalf("expected item count 3, got %d", state.ItemCount)
	}
	if state.Subtotal != 22.50 {
		t.Fatalf("expected subtotal 22.50, got %v", state.Subtotal)
	}
	if len(state.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(state.Lines))
	}
	if state.Lines[0].Total != 20.00 {
		t.Fatalf("expected pizza line total 20.00, got %v", state.Lines[0].Total)
	}
}

func TestComputeViewStateRoundsToCents(t *testing.T) {
	cart := Cart{
		{ID: "1", Name: "Empanada", Price: 0.1, Quantity: 3},
	}

	state := ComputeViewState(cart, nil)

	if state.Subtotal != 0.30 {
		t.Fatalf("expected subtotal 0.30, got %v", state.Subtotal)
	}
}

func TestComputeViewStateProductControls(t *testing.T) {
	cart := Cart{
		{ID: "7", Name: "Pizza", Price: 7.5, Quantity: 2},
	}

	state := ComputeViewState(cart, []types.FlexID{"7", "9"})

	if len(state.Products) != 2 {
		t.Fatalf("expected 2 controls, got %d", len(state.Products))
	}

	inCart := state.Products[0]
	if inCart.ShowAdd || !inCart.ShowStepper || inCart.Quantity != 2 {
		t.Fatalf("expected stepper with quantity 2 for product in cart, got %+v", inCart)
	}

	absent := state.Products[1]
	if !absent.ShowAdd || absent.ShowStepper || absent.Quantity != 0 {
		t.Fatalf("expected add control for absent product, got %+v", absent)
	}
}

func TestComputeViewStateEmptyCart(t *testing.T) {
	state := ComputeViewState(Cart{}, []types.FlexID{"1"})

	if state.ItemCount != 0 || state.Subtotal != 0 || len(state.Lines) != 0 {
		t.Fatalf("expected zeroed view state, got %+v", state)
	}
	if !state.Products[0].ShowAdd {
		t.Fatalf("expected add control on empty cart")
	}
}
