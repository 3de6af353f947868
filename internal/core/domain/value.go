package domain

import (
	"bytes"
	"strconv"
)

// IntegerPrefix is the type prefix that marks an Integer value on the wire.
const IntegerPrefix = ':'

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	// KindRawString is an uninterpreted byte sequence.
	KindRawString Kind = iota
	// KindInteger is an unsigned 64-bit integer.
	KindInteger
)

// String returns the lowercase variant name.
func (k Kind) String() string {
	switch k {
	case KindRawString:
		return "string"
	case KindInteger:
		return "integer"
	default:
		return "unknown"
	}
}

// Value is a tagged union over Integer and RawString.
//
// A Value never changes variant after creation; replacing a stored value
// means storing a new Value.
type Value struct {
	kind    Kind
	integer uint64
	raw     []byte
}

// IntegerValue returns an Integer value.
func IntegerValue(n uint64) Value {
	return Value{kind: KindInteger, integer: n}
}

// RawStringValue returns a RawString value holding a copy of b.
func RawStringValue(b []byte) Value {
	return Value{kind: KindRawString, raw: bytes.Clone(b)}
}

// Kind returns the variant tag.
func (v Value) Kind() Kind {
	return v.kind
}

// Integer returns the integer payload and true if v is an Integer.
func (v Value) Integer() (uint64, bool) {
	if v.kind != KindInteger {
		return 0, false
	}
	return v.integer, true
}

// Bytes returns the raw payload and true if v is a RawString.
// The returned slice must not be modified.
func (v Value) Bytes() ([]byte, bool) {
	if v.kind != KindRawString {
		return nil, false
	}
	return v.raw, true
}

// Equal reports whether two values have the same variant and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	if v.kind == KindInteger {
		return v.integer == o.integer
	}
	return bytes.Equal(v.raw, o.raw)
}

// Encode renders v using the type-prefix convention.
func (v Value) Encode() []byte {
	return v.AppendEncoded(nil)
}

// AppendEncoded appends the type-prefixed encoding of v to dst.
func (v Value) AppendEncoded(dst []byte) []byte {
	if v.kind == KindInteger {
		dst = append(dst, IntegerPrefix)
		return strconv.AppendUint(dst, v.integer, 10)
	}
	return append(dst, v.raw...)
}

// String returns the encoded form for logging.
func (v Value) String() string {
	return string(v.Encode())
}

// DecodeValue decodes a type-prefixed value.
//
// A leading ':' selects Integer and the remainder must be an unsigned decimal
// literal. Anything else, including an empty input, is a RawString holding
// the bytes exactly as given.
func DecodeValue(b []byte) (Value, error) {
	if len(b) == 0 || b[0] != IntegerPrefix {
		return RawStringValue(b), nil
	}

	digits := b[1:]
	if len(digits) == 0 {
		return Value{}, ErrInvalidInteger.WithDetails("missing digits")
	}
	n, err := strconv.ParseUint(string(digits), 10, 64)
	if err != nil {
		return Value{}, ErrInvalidInteger.WithDetails(strconv.Quote(string(digits))).WithCause(err)
	}
	return IntegerValue(n), nil
}
