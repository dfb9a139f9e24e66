// Package ndr implements the subset of DCE's Network Data Representation
// transfer syntax needed to marshal MSRPC stub data: conformant-varying
// strings, referent-tracked pointers, discriminated unions, and
// unidimensional conformant arrays, plus the 4-byte alignment padding NDR
// requires between and within structures.
//
// http://pubs.opengroup.org/onlinepubs/9629399/chap14.htm
package ndr

import "errors"

// ErrReferentExhausted is returned when a ReferentSource has allocated
// every value in [1, 2^32-1) and cannot produce another unique referent id.
var ErrReferentExhausted = errors.New("ndr: referent id space exhausted")

// ErrTruncated is returned by decode functions when the input does not
// contain enough bytes for the value being parsed.
var ErrTruncated = errors.New("ndr: truncated input")

// PadLength returns n rounded up to the next multiple of 4.
func PadLength(n int) int {
	return PadLengthTo(n, 4)
}

// PadLengthTo returns n rounded up to the next multiple of "to".
func PadLengthTo(n, to int) int {
	if to <= 0 {
		return n
	}
	rem := n % to
	if rem == 0 {
		return n
	}
	return n + (to - rem)
}

// Pad right-pads b with NUL bytes to the next multiple of 4.
func Pad(b []byte) []byte {
	return PadTo(b, 4)
}

// PadTo right-pads b with NUL bytes to the next multiple of "to".
func PadTo(b []byte, to int) []byte {
	target := PadLengthTo(len(b), to)
	if target == len(b) {
		return b
	}
	out := make([]byte, target)
	copy(out, b)
	return out
}
