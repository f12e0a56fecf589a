package linking

import (
	"math"
	"testing"
)

func TestStateRoundTrip(t *testing.T) {
	ids := []int64{1, 42, 123456789, math.MaxInt64}

	for _, id := range ids {
		state := EncodeState(id)
		got, err := DecodeState(state)
		if err != nil {
			t.Errorf("DecodeState(EncodeState(%d)) error = %v", id, err)
			continue
		}
		if got != id {
			t.Errorf("DecodeState(EncodeState(%d)) = %d", id, got)
		}
	}
}

func TestDecodeStateInvalid(t *testing.T) {
	tests := []struct {
		name  string
		state string
	}{
		{"empty", ""},
		{"non-numeric", "abc"},
		{"zero", "0"},
		{"negative", "-5"},
		{"fractional", "12.5"},
		{"overflow", "92233720368547758080"},
		{"trailing garbage", "42x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeState(tt.state); err == nil {
				t.Errorf("DecodeState(%q) expected error, got nil", tt.state)
			}
		})
	}
}
