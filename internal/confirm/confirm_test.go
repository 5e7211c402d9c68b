package confirm

import (
	"context"
	"testing"
)

func TestFromFlag(t *testing.T) {
	t.Parallel()

	ok, err := FromFlag(true).Confirm(context.Background(), "place the order?")
	if err != nil || !ok {
		t.Fatalf("expected confirmed, got %v %v", ok, err)
	}
	ok, err = FromFlag(false).Confirm(context.Background(), "place the order?")
	if err != nil || ok {
		t.Fatalf("expected declined, got %v %v", ok, err)
	}
}
