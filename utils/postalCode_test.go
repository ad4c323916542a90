package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPostalCode(t *testing.T) {
	tests := []struct {
		name    string
		address string
		want    string
	}{
		{"empty address", "", "Unknown"},
		{"whitespace only", "   ", "Unknown"},
		{"no commas", "NoCommasHere", "Unknown"},
		{"trailing comma yields the part before it", "Springfield,", "Springfield"},
		{"city zip country", "12 Main St, Springfield, 500081, Country", "500081"},
		{"zip country", "Springfield, 500081, Country", "500081"},
		{"two parts", "500081, Country", "500081"},
		{"untrimmed parts", "12 Main St ,  500 081 , Country", "500 081"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractPostalCode(tt.address))
		})
	}
}

func TestNormalizePostalCode(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{"plain digits", "500081", "500081"},
		{"space separated", "500 081", "500081"},
		{"hyphen separated", "500-081", "500081"},
		{"mixed case letters", "SW1A 1AA", "sw1a1aa"},
		{"empty", "", ""},
		{"punctuation only", "--  --", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePostalCode(tt.code))
		})
	}
}

func TestNormalizedComparisonTolerance(t *testing.T) {
	// "500 081", "500-081" and "500081" all refer to the same area
	assert.Equal(t, NormalizePostalCode("500 081"), NormalizePostalCode("500-081"))
	assert.Equal(t, NormalizePostalCode("500-081"), NormalizePostalCode("500081"))
}
