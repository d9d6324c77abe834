package types

import "testing"

func TestSpaceRef(t *testing.T) {
	tests := []struct {
		ref      SpaceRef
		wantZero bool
		wantStr  string
	}{
		{SpaceRef{}, true, `""`},
		{SpaceByName("  "), true, `"  "`},
		{SpaceByName("Garage"), false, `"Garage"`},
		{SpaceByID(3), false, "#3"},
		{SpaceRef{ID: 3, Name: "Garage"}, false, "#3"},
	}

	for _, tt := range tests {
		t.Run(tt.wantStr, func(t *testing.T) {
			if got := tt.ref.IsZero(); got != tt.wantZero {
				t.Errorf("IsZero() = %v, want %v", got, tt.wantZero)
			}
			if got := tt.ref.String(); got != tt.wantStr {
				t.Errorf("String() = %q, want %q", got, tt.wantStr)
			}
		})
	}
}
