package currency

import "testing"

func TestDecimals(t *testing.T) {
	cases := []struct {
		code string
		want int
	}{
		{"USD", 2},
		{"usd", 2},
		{"JPY", 0},
		{"KRW", 0},
		{"BHD", 3},
		{"KWD", 3},
		{"XYZ", 2}, // unknown defaults to 2
	}
	for _, c := range cases {
		if got := Decimals(c.code); got != c.want {
			t.Errorf("Decimals(%q) = %d, want %d", c.code, got, c.want)
		}
	}
}

func TestToMajorUnits(t *testing.T) {
	cases := []struct {
		minor int64
		code  string
		want  float64
	}{
		{1999, "USD", 19.99},
		{100, "USD", 1.0},
		{0, "USD", 0},
		{-350, "USD", -3.5},
		{500, "JPY", 500}, // zero-decimal: no scaling
		{500, "KRW", 500},
		{1500, "BHD", 1.5},
		{1, "USD", 0.01},
	}
	for _, c := range cases {
		if got := ToMajorUnits(c.minor, c.code); got != c.want {
			t.Errorf("ToMajorUnits(%d, %q) = %v, want %v", c.minor, c.code, got, c.want)
		}
	}
}

func TestToMajorUnitsExact(t *testing.T) {
	// 1099 cents must be exactly 10.99, the nearest float64 to the
	// decimal value, not an accumulation of division error.
	if got := ToMajorUnits(1099, "USD"); got != 10.99 {
		t.Errorf("ToMajorUnits(1099, USD) = %v, want 10.99", got)
	}
}

func TestMicrosToMajor(t *testing.T) {
	cases := []struct {
		micros int64
		want   float64
	}{
		{1_000_000, 1.0},
		{12_340_000, 12.34},
		{0, 0},
		{2_500_000_000, 2500},
	}
	for _, c := range cases {
		if got := MicrosToMajor(c.micros); got != c.want {
			t.Errorf("MicrosToMajor(%d) = %v, want %v", c.micros, got, c.want)
		}
	}
}
