package tables

import "testing"

func TestFromPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path  string
		want  string
		found bool
	}{
		{"/7/carrito/", "7", true},
		{"/api/v1/t/12/cart", "12", true},
		{"/mesa-3/carrito/", "", false},
		{"/menu/", "", false},
		{"", "", false},
		{"/12a/34/", "34", true},
		{"//05//", "05", true},
	}

	for _, tt := range tests {
		got, found := FromPath(tt.path)
		if got != tt.want || found != tt.found {
			t.Fatalf("FromPath(%q) = %q,%v want %q,%v", tt.path, got, found, tt.want, tt.found)
		}
	}
}
