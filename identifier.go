package strata

import (
	"encoding/hex"
	"errors"
	"math/bits"
)

// ErrInvalidFormat is returned when parsing a malformed identifier string.
var ErrInvalidFormat = errors.New("strata: invalid identifier format")

// Identifier is a 128-bit globally unique value used as the stable external
// name of a component type across modules. It has no relation to the
// process-local ComponentId a registry assigns.
type Identifier struct {
	hi, lo uint64
}

// IdentifierStyle selects a textual layout for Format.
type IdentifierStyle int

const (
	// Simple is 32 contiguous hex characters.
	Simple IdentifierStyle = iota
	// Hyphenated is the 8-4-4-4-12 hex layout with hyphens at positions
	// 8, 13, 18, 23.
	Hyphenated
)

// NewIdentifier builds an Identifier from its two 64-bit halves.
func NewIdentifier(hi, lo uint64) Identifier {
	return Identifier{hi: hi, lo: lo}
}

// Equal reports whether two identifiers name the same value.
func (id Identifier) Equal(other Identifier) bool {
	return id.hi == other.hi && id.lo == other.lo
}

const fxSeed = 0x517cc1b727220a95

// fxMix implements one round of an FxHash-style rotate-left-5/xor/multiply
// mix.
func fxMix(acc, word uint64) uint64 {
	acc = bits.RotateLeft64(acc, 5)
	acc ^= word
	acc *= fxSeed
	return acc
}

// Hash mixes the identifier's two halves into a 64-bit digest. Good
// distribution relies on the identifier itself having good entropy; this
// hash does not attempt to compensate for a poorly chosen identifier.
func (id Identifier) Hash() uint64 {
	acc := fxMix(0, id.hi)
	acc = fxMix(acc, id.lo)
	return acc
}

// ParseIdentifier accepts either the 32-hex "simple" form or the
// 8-4-4-4-12 "hyphenated" form, in any case. Any other length, hyphen
// placement, or non-hex character is ErrInvalidFormat.
func ParseIdentifier(text string) (Identifier, error) {
	switch len(text) {
	case 32:
		return parseHex32(text)
	case 36:
		if text[8] != '-' || text[13] != '-' || text[18] != '-' || text[23] != '-' {
			return Identifier{}, ErrInvalidFormat
		}
		hexOnly := text[0:8] + text[9:13] + text[14:18] + text[19:23] + text[24:36]
		return parseHex32(hexOnly)
	default:
		return Identifier{}, ErrInvalidFormat
	}
}

func parseHex32(hexText string) (Identifier, error) {
	var buf [16]byte
	n, err := hex.Decode(buf[:], []byte(hexText))
	if err != nil || n != 16 {
		return Identifier{}, ErrInvalidFormat
	}
	hi := beUint64(buf[0:8])
	lo := beUint64(buf[8:16])
	return Identifier{hi: hi, lo: lo}, nil
}

func beUint64(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}

// Format renders the identifier as text in the requested style, in either
// lower or upper case.
func (id Identifier) Format(style IdentifierStyle, upper bool) string {
	var buf [16]byte
	putBE64(buf[0:8], id.hi)
	putBE64(buf[8:16], id.lo)

	var hexBuf [32]byte
	hex.Encode(hexBuf[:], buf[:])
	digits := hexBuf[:]
	if upper {
		for i, c := range digits {
			if c >= 'a' && c <= 'f' {
				digits[i] = c - ('a' - 'A')
			}
		}
	}

	switch style {
	case Hyphenated:
		out := make([]byte, 36)
		copy(out[0:8], digits[0:8])
		out[8] = '-'
		copy(out[9:13], digits[8:12])
		out[13] = '-'
		copy(out[14:18], digits[12:16])
		out[18] = '-'
		copy(out[19:23], digits[16:20])
		out[23] = '-'
		copy(out[24:36], digits[20:32])
		return string(out)
	default:
		return string(digits)
	}
}

func putBE64(b []byte, v uint64) {
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
}

// String renders the identifier in its lower-case hyphenated form.
func (id Identifier) String() string {
	return id.Format(Hyphenated, false)
}
