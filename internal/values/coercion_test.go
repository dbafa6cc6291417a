package values

import (
	"encoding/json"
	"testing"
)

func TestToNumber(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		want   float64
		wantOK bool
	}{
		{name: "string integer", value: "25", want: 25, wantOK: true},
		{name: "float passthrough", value: 42.5, want: 42.5, wantOK: true},
		{name: "int", value: 100, want: 100, wantOK: true},
		{name: "int64", value: int64(999), want: 999, wantOK: true},
		{name: "string with whitespace", value: "  42  ", want: 42, wantOK: true},
		{name: "negative fraction", value: "-1.5", want: -1.5, wantOK: true},
		{name: "leading dot", value: ".5", want: 0.5, wantOK: true},
		{name: "exponent", value: "1e3", want: 1000, wantOK: true},
		{name: "json number", value: json.Number("7"), want: 7, wantOK: true},
		{name: "hex rejected", value: "0x10", wantOK: false},
		{name: "NaN rejected", value: "NaN", wantOK: false},
		{name: "text rejected", value: "abc", wantOK: false},
		{name: "empty rejected", value: "", wantOK: false},
		{name: "bool rejected", value: true, wantOK: false},
		{name: "nil rejected", value: nil, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToNumber(tt.value)
			if ok != tt.wantOK {
				t.Fatalf("ToNumber(%v) ok = %v, want %v", tt.value, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ToNumber(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestIsNumericString(t *testing.T) {
	tests := []struct {
		s    string
		want bool
	}{
		{"1", true},
		{"+1", true},
		{"1.", true},
		{" 3.14 ", true},
		{"1e", false},
		{"1,000", false},
		{"Inf", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsNumericString(tt.s); got != tt.want {
			t.Errorf("IsNumericString(%q) = %v, want %v", tt.s, got, tt.want)
		}
	}
}
