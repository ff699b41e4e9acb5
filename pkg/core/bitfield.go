package core

// Unsigned is the set of raw word types bit fields are cut from.
type Unsigned interface {
	~uint8 | ~uint16 | ~uint32
}

// ExtractBits returns width bits of v starting at shift.
func ExtractBits[T Unsigned](v T, shift, width uint) T {
	return (v >> shift) & (T(1)<<width - 1)
}

// TestBit reports whether bit n of v is set.
func TestBit[T Unsigned](v T, n uint) bool {
	return v&(T(1)<<n) != 0
}
