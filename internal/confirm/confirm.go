package confirm

import "context"

// Confirmer is the acknowledgment capability destructive flows depend on:
// checkout submission and cart-line removal never proceed without an explicit
// yes. HTTP handlers derive it from the request; tests stub it.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

type flag bool

func (f flag) Confirm(context.Context, string) (bool, error) {
	return bool(f), nil
}

// FromFlag wraps an already-collected acknowledgment, the shape an HTTP
// round trip produces: the first request carries no acknowledgment and lands
// on the prompt, the second carries confirmed=true.
func FromFlag(confirmed bool) Confirmer {
	return flag(confirmed)
}
