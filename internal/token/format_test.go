package token

import "testing"

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		amount   uint64
		decimals uint8
		want     string
	}{
		{12345, 2, "123.45"},
		{100, 2, "1.00"},
		{5, 8, "0.00000005"},
		{0, 3, "0.000"},
		{42, 0, "42"},
		{18446744073709551615, 4, "1844674407370955.1615"},
	}
	for _, tt := range tests {
		if got := FormatAmount(tt.amount, tt.decimals); got != tt.want {
			t.Errorf("FormatAmount(%d, %d) = %q, want %q", tt.amount, tt.decimals, got, tt.want)
		}
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in       string
		decimals uint8
		want     uint64
		wantErr  bool
	}{
		{"123.45", 2, 12345, false},
		{"1", 8, 100000000, false},
		{"0.1", 1, 1, false},
		{"1.50", 1, 15, false},
		{"0", 2, 0, false},
		{"1.234", 2, 0, true},
		{"-1", 2, 0, true},
		{"abc", 2, 0, true},
		{"18446744073709551616", 0, 0, true},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.in, tt.decimals)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseAmount(%q, %d) err = %v, wantErr %v", tt.in, tt.decimals, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAmount(%q, %d) = %d, want %d", tt.in, tt.decimals, got, tt.want)
		}
	}
}

func TestFormatParse_RoundTrip(t *testing.T) {
	for _, amount := range []uint64{0, 1, 99, 1000000, 123456789012} {
		s := FormatAmount(amount, 6)
		got, err := ParseAmount(s, 6)
		if err != nil {
			t.Fatalf("ParseAmount(%q): %v", s, err)
		}
		if got != amount {
			t.Errorf("round trip %d -> %q -> %d", amount, s, got)
		}
	}
}
