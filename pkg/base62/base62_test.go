package base62

import (
	"errors"
	"testing"
)

func TestEncode_Zero(t *testing.T) {
	code, err := Encode(0)
	if err != nil {
		t.Fatalf("Encode(0) returned error: %v", err)
	}
	if code != "a" {
		t.Fatalf("Encode(0) = %q, want %q", code, "a")
	}
}

func TestEncode_KnownValues(t *testing.T) {
	cases := []struct {
		id   int64
		want string
	}{
		{1, "b"},
		{25, "z"},
		{26, "A"},
		{61, "9"},
		{62, "ba"},
		{63, "bb"},
		{3843, "99"},   // 62^2 - 1
		{3844, "baa"},  // 62^2
		{125000, "GGi"},
	}
	for _, tc := range cases {
		got, err := Encode(tc.id)
		if err != nil {
			t.Fatalf("Encode(%d) returned error: %v", tc.id, err)
		}
		if got != tc.want {
			t.Errorf("Encode(%d) = %q, want %q", tc.id, got, tc.want)
		}
	}
}

func TestEncode_NegativeID(t *testing.T) {
	_, err := Encode(-1)
	if !errors.Is(err, ErrNegativeID) {
		t.Fatalf("expected ErrNegativeID, got %v", err)
	}
}

func TestEncode_Injective(t *testing.T) {
	seen := make(map[string]int64, 10000)
	for id := int64(0); id < 10000; id++ {
		code, err := Encode(id)
		if err != nil {
			t.Fatalf("Encode(%d) returned error: %v", id, err)
		}
		if prev, ok := seen[code]; ok {
			t.Fatalf("collision: ids %d and %d both encode to %q", prev, id, code)
		}
		seen[code] = id
	}
}

func TestEncode_PositiveNeverEqualsZeroCode(t *testing.T) {
	for id := int64(1); id < 5000; id++ {
		code, _ := Encode(id)
		if code == "a" {
			t.Fatalf("Encode(%d) collided with Encode(0)", id)
		}
	}
}
