package lexer_test

import (
	"errors"
	"testing"

	"github.com/dslang/dslang/pkg/compiler/lexer"
)

func TestParseInt64Valid(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"0", 0},
		{"1", 1},
		{"42", 42},
		{"1000000", 1000000},
		{"9223372036854775807", 9223372036854775807},
	}
	for _, c := range cases {
		got, err := lexer.ParseInt64(c.in)
		if err != nil {
			t.Errorf("ParseInt64(%q) failed: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseInt64(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseInt64Errors(t *testing.T) {
	cases := []struct {
		in   string
		want lexer.ConvError
	}{
		{"", lexer.ConvEmpty},
		{"12a", lexer.ConvInvalidDigit},
		{"1 2", lexer.ConvInvalidDigit},
		{"9223372036854775808", lexer.ConvOverflow},
		{"99999999999999999999", lexer.ConvOverflow},
		{"01", lexer.ConvStartsWithZero},
		{"007", lexer.ConvStartsWithZero},
		{"00", lexer.ConvStartsWithZero},
	}
	for _, c := range cases {
		_, err := lexer.ParseInt64(c.in)
		if err == nil {
			t.Errorf("ParseInt64(%q) succeeded, want %v", c.in, c.want)
			continue
		}
		var conv lexer.ConvError
		if !errors.As(err, &conv) || conv != c.want {
			t.Errorf("ParseInt64(%q) error = %v, want %v", c.in, err, c.want)
		}
	}
}
