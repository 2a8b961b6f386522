package budget

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		want     int64
		currency string
		ok       bool
	}{
		{"iso prefix", "INR 15000", 15000, "INR", true},
		{"iso prefix no space", "INR15000", 15000, "INR", true},
		{"bare number", "5000", 5000, "", true},
		{"k suffix with word currency", "about 15k rupees", 15000, "INR", true},
		{"grouped", "My budget is ₹15,000 max", 15000, "INR", true},
		{"indian grouping", "1,50,000", 150000, "", true},
		{"lakh", "around 1.5 lakh", 150000, "", true},
		{"rs prefix", "Rs. 7500 is what we have", 7500, "INR", true},
		{"dollar", "$1200", 1200, "USD", true},
		{"iso suffix", "20000 usd", 20000, "USD", true},
		{"decimal rounds", "INR 999.6", 1000, "INR", true},
		{"hinted beats earlier bare", "We need 3 pages and can pay INR 8000", 8000, "INR", true},
		{"lowercase common iso", "inr 6000", 6000, "INR", true},
		{"word that is also a code", "I'll try 8000", 8000, "", true},
		{"overflowing amount", "INR 99999999999999999999", 0, "", false},
		{"overflowing multiplier", "99999999999999999999999 crore", 0, "", false},
		{"largest accepted", "INR 10 crore", 100000000, "INR", true},
		{"phone number", "Call me on 9876543210", 0, "", false},
		{"launch date", "We want to launch by March 2026.", 0, "", false},
		{"year with preposition", "the site was built in 2019", 0, "", false},
		{"year-like amount", "I can spend 2000", 2000, "", true},
		{"grouped long amount", "INR 10,00,00,000", 100000000, "INR", true},
		{"no number", "We also need analytics integration.", 0, "", false},
		{"count not money", "We need 5 pages", 0, "", false},
		{"percentage", "maybe 200% faster", 0, "", false},
		{"glued to word", "built with html5", 0, "", false},
		{"decline without amount", "I can't increase the budget.", 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAmount(tt.text)
			assert.Equal(t, tt.ok, ok)
			if !tt.ok {
				return
			}
			assert.Equal(t, tt.want, got.Amount)
			assert.Equal(t, tt.currency, got.Currency)
			assert.Equal(t, tt.text, got.Raw)
		})
	}
}
