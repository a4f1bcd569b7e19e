package fits

import (
	"strconv"
	"strings"
)

// Kind identifies the parsed type of a header card value.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindInt
	KindFloat
)

// Value is a typed FITS header card value.
type Value struct {
	Kind  Kind
	Str   string
	Bool  bool
	Int   int64
	Float float64
}

// Text renders the value as a string the way it would appear in a flat export.
func (v Value) Text() string {
	switch v.Kind {
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	default:
		return v.Str
	}
}

// AsFloat converts numeric and boolean values to float64. Strings holding a
// parseable number convert as well, matching the tolerant reads the organizer
// performs on EXPTIME/GAIN style cards written as strings by some capture
// software.
func (v Value) AsFloat() (float64, bool) {
	switch v.Kind {
	case KindInt:
		return float64(v.Int), true
	case KindFloat:
		return v.Float, true
	case KindBool:
		if v.Bool {
			return 1.0, true
		}
		return 0.0, true
	default:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
}

// IsNumeric reports whether the card held a native numeric (or boolean) value.
func (v Value) IsNumeric() bool {
	return v.Kind == KindInt || v.Kind == KindFloat || v.Kind == KindBool
}

// Card is one 80-byte header record, decoded.
type Card struct {
	Key     string
	Value   Value
	Comment string
}

// Header holds the primary HDU cards in file order with keyed lookup.
type Header struct {
	cards []Card
	index map[string]int
}

func newHeader() *Header {
	return &Header{index: make(map[string]int)}
}

func (h *Header) append(card Card) {
	h.cards = append(h.cards, card)
	if _, exists := h.index[card.Key]; !exists {
		h.index[card.Key] = len(h.cards) - 1
	}
}

// Cards returns the decoded cards in file order. COMMENT and HISTORY records
// are not retained.
func (h *Header) Cards() []Card {
	return h.cards
}

// Lookup returns the value for the first candidate key present. Candidate
// order expresses the attribute's fallback chain (e.g. FRAME before IMAGETYP).
func (h *Header) Lookup(keys ...string) (Value, bool) {
	for _, key := range keys {
		if idx, ok := h.index[key]; ok {
			return h.cards[idx].Value, true
		}
	}
	return Value{}, false
}

// String returns the first candidate key's value rendered as text.
func (h *Header) String(keys ...string) (string, bool) {
	v, ok := h.Lookup(keys...)
	if !ok {
		return "", false
	}
	return v.Text(), true
}

// Float returns the first candidate key's value converted to float64. A key
// present with an unconvertible value is treated as absent.
func (h *Header) Float(keys ...string) (float64, bool) {
	v, ok := h.Lookup(keys...)
	if !ok {
		return 0, false
	}
	return v.AsFloat()
}

// Int returns the first candidate key's value as int64 when natively integral.
func (h *Header) Int(keys ...string) (int64, bool) {
	v, ok := h.Lookup(keys...)
	if !ok || v.Kind != KindInt {
		return 0, false
	}
	return v.Int, true
}
