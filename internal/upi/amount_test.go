package upi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanAmount(t *testing.T) {
	assert.Equal(t, "1250.50", CleanAmount(" Rs 1,250.50 "))
	assert.Equal(t, "12", CleanAmount("1-2"))
	assert.Equal(t, "", CleanAmount("abc"))
	assert.Equal(t, "1.2.3", CleanAmount("1.2.3"))
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"100", "100.00", true},
		{"7.1", "7.10", true},
		{"1.", "1.00", true},
		{".25", "0.25", true},
		{"2.999", "3.00", true},
		{"", "", false},
		{".", "", false},
		{"0", "", false},
		{"-3", "", false},
		{"1.2.3", "", false},
		{"x", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, ok := ParseAmount(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, FormatAmount(d))
			}
		})
	}
}

func TestValidAmountInput(t *testing.T) {
	for _, s := range []string{"", ".", "1", "1.", ".5", "10.25"} {
		assert.True(t, ValidAmountInput(s), s)
	}
	for _, s := range []string{"1.2.", "..", "a", "1e5", "-1", "1,000", " 1"} {
		assert.False(t, ValidAmountInput(s), s)
	}
}
