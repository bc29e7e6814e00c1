package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"42.50", "42.5", true},
		{"1,23", "1.23", true},
		{"$7", "7", true},
		{"$1.500", "1.5", true},
		{"1.005", "", false},
		{"42.505", "", false},
		{"0,001", "", false},
		{" 2.50 ", "2.5", true},
		{"0", "0", true},
		{"-3", "-3", true},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(decimal.RequireFromString(tc.out)) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"500", "500"},
		{"500.00", "500"},
		{"42.5", "42.50"},
		{"0.1", "0.10"},
		{"-12", "-12"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := FormatAmount(decimal.RequireFromString(tt.in)); got != tt.want {
				t.Errorf("FormatAmount(%s) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
	if got := Dollars(decimal.NewFromInt(300)); got != "$300" {
		t.Errorf("Dollars = %q", got)
	}
}
