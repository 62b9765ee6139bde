package lexer

import "math"

// ConvError classifies a failed integer literal conversion.
type ConvError uint8

const (
	ConvEmpty ConvError = iota
	ConvInvalidDigit
	ConvOverflow
	ConvStartsWithZero
)

func (e ConvError) String() string {
	switch e {
	case ConvEmpty:
		return "Empty"
	case ConvInvalidDigit:
		return "InvalidDigit"
	case ConvOverflow:
		return "Overflow"
	case ConvStartsWithZero:
		return "StartsWithZero"
	}
	return "UnknownConvError"
}

func (e ConvError) Error() string {
	switch e {
	case ConvEmpty:
		return "the input string is empty and cannot be converted to an integer"
	case ConvInvalidDigit:
		return "the input contains a character that is not a valid decimal digit"
	case ConvOverflow:
		return "the numeric value exceeds the representable range of int64"
	case ConvStartsWithZero:
		return "the input starts with a leading zero, which is not allowed"
	}
	return "unknown integer conversion error"
}

// ParseInt64 converts a decimal digit run into an int64. Unlike
// strconv.ParseInt it rejects leading zeros and signs, matching the
// literal grammar: integer literals are bare maximal digit runs.
func ParseInt64(s string) (int64, error) {
	if len(s) == 0 {
		return 0, ConvEmpty
	}
	if s[0] == '0' && len(s) > 1 {
		return 0, ConvStartsWithZero
	}

	var value int64
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, ConvInvalidDigit
		}
		digit := int64(c - '0')
		if value > (math.MaxInt64-digit)/10 {
			return 0, ConvOverflow
		}
		value = value*10 + digit
	}
	return value, nil
}
