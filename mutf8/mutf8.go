// Package mutf8 implements the JVM modified UTF-8 string encoding.
//
// Modified UTF-8 differs from standard UTF-8 in two ways: U+0000 is encoded
// as the two-byte sequence 0xC0 0x80 (a raw zero byte never appears), and
// supplementary-plane code points are encoded as six bytes, a surrogate
// pair where each half gets its own three-byte form.
package mutf8

import (
	"errors"
	"fmt"
	"unicode/utf16"
	"unicode/utf8"
)

// ErrTruncated is returned when the input ends inside a multi-byte sequence.
var ErrTruncated = errors.New("mutf8: truncated sequence")

// Decode converts modified UTF-8 bytes to a Go string. It is strict: any
// malformed sequence, including an unmatched surrogate half, is an error
// naming the offending bytes.
func Decode(data []byte) (string, error) {
	return decode(data, false)
}

// DecodeLossy converts modified UTF-8 bytes to a Go string, substituting
// U+FFFD for unmatched surrogate halves instead of failing. Structurally
// malformed sequences (bad continuation bytes, truncation) still error.
func DecodeLossy(data []byte) (string, error) {
	return decode(data, true)
}

// Valid reports whether data is well-formed strict modified UTF-8.
func Valid(data []byte) bool {
	_, err := Decode(data)
	return err == nil
}

func decode(data []byte, lossy bool) (string, error) {
	out := make([]rune, 0, len(data))
	i := 0
	for i < len(data) {
		b := data[i]
		switch {
		case b == 0x00:
			// NUL is always encoded as 0xC0 0x80.
			return "", fmt.Errorf("mutf8: raw zero byte at offset %d", i)

		case b < 0x80:
			out = append(out, rune(b))
			i++

		case b&0xE0 == 0xC0:
			if i+1 >= len(data) {
				return "", fmt.Errorf("%w: 2-byte form at offset %d", ErrTruncated, i)
			}
			b1 := data[i+1]
			if b1&0xC0 != 0x80 {
				return "", fmt.Errorf("mutf8: bad continuation byte 0x%02x at offset %d", b1, i+1)
			}
			out = append(out, rune(b&0x1F)<<6|rune(b1&0x3F))
			i += 2

		case b&0xF0 == 0xE0:
			if i+2 >= len(data) {
				return "", fmt.Errorf("%w: 3-byte form at offset %d", ErrTruncated, i)
			}
			b1, b2 := data[i+1], data[i+2]
			if b1&0xC0 != 0x80 {
				return "", fmt.Errorf("mutf8: bad continuation byte 0x%02x at offset %d", b1, i+1)
			}
			if b2&0xC0 != 0x80 {
				return "", fmt.Errorf("mutf8: bad continuation byte 0x%02x at offset %d", b2, i+2)
			}
			r := rune(b&0x0F)<<12 | rune(b1&0x3F)<<6 | rune(b2&0x3F)
			if utf16.IsSurrogate(r) {
				hi := r
				// A high surrogate may begin a 6-byte supplementary pair:
				// a second 3-byte form carrying the low surrogate.
				if hi >= 0xD800 && hi <= 0xDBFF && i+5 < len(data) &&
					data[i+3]&0xF0 == 0xE0 && data[i+4]&0xC0 == 0x80 && data[i+5]&0xC0 == 0x80 {
					lo := rune(data[i+3]&0x0F)<<12 | rune(data[i+4]&0x3F)<<6 | rune(data[i+5]&0x3F)
					if lo >= 0xDC00 && lo <= 0xDFFF {
						out = append(out, utf16.DecodeRune(hi, lo))
						i += 6
						continue
					}
				}
				if !lossy {
					return "", fmt.Errorf("mutf8: unmatched surrogate half U+%04X at offset %d", r, i)
				}
				out = append(out, utf8.RuneError)
				i += 3
				continue
			}
			out = append(out, r)
			i += 3

		default:
			return "", fmt.Errorf("mutf8: invalid leading byte 0x%02x at offset %d", b, i)
		}
	}
	return string(out), nil
}

// Encode converts a Go string to modified UTF-8 bytes. Encoding cannot fail
// for valid host text; invalid UTF-8 in the input is encoded as U+FFFD, the
// same substitution Go's range-over-string performs.
func Encode(s string) []byte {
	out := make([]byte, 0, EncodedLen(s))
	for _, r := range s {
		switch {
		case r >= 0x01 && r <= 0x7F:
			out = append(out, byte(r))

		case r == 0x00 || r <= 0x7FF:
			out = append(out,
				0xC0|byte(r>>6),
				0x80|byte(r&0x3F))

		case r <= 0xFFFF:
			out = append(out,
				0xE0|byte(r>>12),
				0x80|byte(r>>6&0x3F),
				0x80|byte(r&0x3F))

		default:
			hi, lo := utf16.EncodeRune(r)
			out = append(out,
				0xE0|byte(hi>>12),
				0x80|byte(hi>>6&0x3F),
				0x80|byte(hi&0x3F),
				0xE0|byte(lo>>12),
				0x80|byte(lo>>6&0x3F),
				0x80|byte(lo&0x3F))
		}
	}
	return out
}

// EncodedLen returns the number of bytes Encode would produce for s.
func EncodedLen(s string) int {
	n := 0
	for _, r := range s {
		switch {
		case r >= 0x01 && r <= 0x7F:
			n++
		case r == 0x00 || r <= 0x7FF:
			n += 2
		case r <= 0xFFFF:
			n += 3
		default:
			n += 6
		}
	}
	return n
}
