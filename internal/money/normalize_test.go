package money

import "testing"

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"$5,747.50", "5747.50"},
		{"-$275", "-275"},
		{"₹1,20,000", "120000"},
		{"€ 12.5 ", "12.5"},
		{"£0.99", "0.99"},
		{"1200", "1200"},
		{"", "0"},
		{"$", "0"},
		{"  ", "0"},
		{"N/A", "N/A"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeAmount(tt.in); got != tt.want {
				t.Errorf("NormalizeAmount(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestAddFixed(t *testing.T) {
	tests := []struct {
		a, b string
		want string
	}{
		{"2400", "0", "2400.00"},
		{"5500", "-275", "5225.00"},
		{"$1,000.10", "$0.20", "1000.30"},
		{"garbage", "5", "5.00"},
	}
	for _, tt := range tests {
		if got := AddFixed(tt.a, tt.b); got != tt.want {
			t.Errorf("AddFixed(%q, %q) = %q, want %q", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestEqual(t *testing.T) {
	if !Equal("100", "100.00") {
		t.Error("100 and 100.00 should be equal")
	}
	if Equal("10", "15") {
		t.Error("10 and 15 should differ")
	}
	if !Equal("", "") {
		t.Error("two absent values should compare equal")
	}
	if Equal("", "5") {
		t.Error("absent vs present should differ")
	}
}
