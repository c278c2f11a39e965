package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

func newValidate() *validator.Validate {
	v := validator.New()
	Configure(v)
	return v
}

func TestTicker(t *testing.T) {
	type req struct {
		Symbol string `validate:"ticker"`
	}
	v := newValidate()

	valid := []string{"AAPL", "brk.b", "^GSPC", "BTC-USD", "EURUSD=X", "D05.SI"}
	for _, s := range valid {
		if err := v.Struct(req{Symbol: s}); err != nil {
			t.Errorf("expected %q to be valid, got %v", s, err)
		}
	}

	invalid := []string{"", "AA PL", "AAPL;DROP", "..", "-USD", "ABCDEFGHIJKLMNOP"}
	for _, s := range invalid {
		if err := v.Struct(req{Symbol: s}); err == nil {
			t.Errorf("expected %q to be rejected", s)
		}
	}
}

func TestDecimalRules(t *testing.T) {
	type req struct {
		Shares decimal.Decimal `validate:"required,gt=0"`
	}
	v := newValidate()

	tests := []struct {
		name  string
		value decimal.Decimal
		ok    bool
	}{
		{"positive", decimal.RequireFromString("2.5"), true},
		{"zero", decimal.Zero, false},
		{"negative", decimal.RequireFromString("-1"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(req{Shares: tt.value})
			if (err == nil) != tt.ok {
				t.Errorf("Shares=%s: err=%v, want ok=%v", tt.value, err, tt.ok)
			}
		})
	}
}
