package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		in     string
		want   Currency
		wantOK bool
	}{
		{"", USD, true},
		{"usd", USD, true},
		{" MXN ", MXN, true},
		{"EUR", "EUR", false},
	}
	for _, tt := range tests {
		got, ok := ParseCurrency(tt.in, USD)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseCurrency(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestToUSD(t *testing.T) {
	rate := Null(decimal.RequireFromString("17.50"))

	usd, ok := ToUSD(decimal.NewFromInt(35000), MXN, rate)
	if !ok || !usd.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("MXN conversion = %s, %v", usd, ok)
	}

	usd, ok = ToUSD(decimal.NewFromInt(100), USD, decimal.NullDecimal{})
	if !ok || !usd.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("USD passthrough = %s, %v", usd, ok)
	}

	if _, ok := ToUSD(decimal.NewFromInt(100), MXN, decimal.NullDecimal{}); ok {
		t.Fatal("MXN without a rate must not convert")
	}
}

func TestSum(t *testing.T) {
	got := Sum(Null(decimal.NewFromInt(50000)), decimal.NullDecimal{}, Null(decimal.NewFromInt(800)), Null(decimal.NewFromInt(2000)))
	if !got.Equal(decimal.NewFromInt(52800)) {
		t.Fatalf("Sum = %s", got)
	}
	if !Sum().IsZero() {
		t.Fatal("empty sum should be zero")
	}
}
