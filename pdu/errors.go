package pdu

import "errors"

// ErrMalformed covers insufficient bytes, unknown PDU types, non-zero
// reserved bits, and declared lengths that disagree with observed ones.
var ErrMalformed = errors.New("pdu: malformed PDU")

// ErrTypeMismatch is returned when a specific-body decode function is
// invoked on bytes whose header names a different PDU type.
var ErrTypeMismatch = errors.New("pdu: PDU type mismatch")

// ErrAuthVerifierRequired is returned at encode time when a PDU declares
// a nonzero auth length but no verifier bytes were supplied.
var ErrAuthVerifierRequired = errors.New("pdu: nonzero auth_length with no verifier bytes")

// ErrFragmentationUnsupported is returned when a decoded PDU does not
// carry both FIRST_FRAG and LAST_FRAG: this core handles exactly one
// fragment per logical call.
var ErrFragmentationUnsupported = errors.New("pdu: multi-fragment PDUs are not supported")
