package routename

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
)

// ParseError reports a route label that does not match the supported grammar.
type ParseError struct {
	Raw string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid route name: %q", e.Raw)
}

// RouteName is a structured route identifier decomposed from a vendor label.
//
// The zero value is not a valid identifier. RouteName is comparable and can
// be used directly as a map key.
type RouteName struct {
	// Prefix is an optional short alphabetic tag before the number,
	// upper-cased during parsing. Example: "N" in "N3B".
	Prefix string

	// Number is the route number shared by all variants of a route family.
	Number uint32

	// Suffix is an optional single-grapheme alphabetic tag directly after
	// the number, with nothing following it. Example: "G" in "3G".
	Suffix string

	// TrailingText is any remaining text after the number, preserved
	// verbatim including its leading grapheme. Examples: " DOBROVA -
	// ŠOLSKA" in "56 DOBROVA - ŠOLSKA", "(GROS.)" in "76(GROS.)".
	TrailingText string
}

// BaseRouteName is the number-only projection of a RouteName. Variants such
// as "3", "3G" and "N3" all share base 3.
type BaseRouteName uint32

// Parse decomposes a raw route label into a RouteName.
//
// A label that parses entirely as an unsigned integer is number-only. A
// non-numeric first grapheme is stripped as the prefix. The first non-digit
// grapheme of the remainder then decides the shape: a final alphabetic
// grapheme is the suffix; anything else, including an alphabetic grapheme
// with more text after it, starts the trailing text.
func Parse(raw string) (RouteName, error) {
	if raw == "" {
		return RouteName{}, &ParseError{Raw: raw}
	}

	if number, err := strconv.ParseUint(raw, 10, 32); err == nil {
		return RouteName{Number: uint32(number)}, nil
	}

	rest := raw

	var prefix string
	first := firstGrapheme(rest)
	if !isNumericGrapheme(first) {
		prefix = strings.ToUpper(first)
		rest = rest[len(first):]
	}

	splitAt, splitGrapheme := firstNonDigit(rest)
	if splitAt < 0 {
		number, err := strconv.ParseUint(rest, 10, 32)
		if err != nil {
			return RouteName{}, &ParseError{Raw: raw}
		}
		return RouteName{Prefix: prefix, Number: uint32(number)}, nil
	}

	number, err := strconv.ParseUint(rest[:splitAt], 10, 32)
	if err != nil {
		return RouteName{}, &ParseError{Raw: raw}
	}

	tail := rest[splitAt:]
	if isAlphabetic(splitGrapheme) && len(tail) == len(splitGrapheme) {
		return RouteName{
			Prefix: prefix,
			Number: uint32(number),
			Suffix: splitGrapheme,
		}, nil
	}

	return RouteName{
		Prefix:       prefix,
		Number:       uint32(number),
		TrailingText: tail,
	}, nil
}

// MustParse is Parse for static labels in tests and fixtures; it panics on
// a parse error.
func MustParse(raw string) RouteName {
	name, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return name
}

// String renders the canonical label. Trailing text is stored verbatim, so
// formatting a parsed value reproduces a label that reparses equal.
func (n RouteName) String() string {
	var b strings.Builder
	b.WriteString(n.Prefix)
	b.WriteString(strconv.FormatUint(uint64(n.Number), 10))
	b.WriteString(n.Suffix)
	b.WriteString(n.TrailingText)
	return b.String()
}

// Base projects the identifier onto its route family number.
func (n RouteName) Base() BaseRouteName {
	return BaseRouteName(n.Number)
}

// MarshalText encodes the canonical label.
func (n RouteName) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalText parses a label in place.
func (n *RouteName) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

func (b BaseRouteName) String() string {
	return strconv.FormatUint(uint64(b), 10)
}

// ParseBase parses a bare route family number, as returned by the timetable
// endpoint's route_group_number field.
func ParseBase(raw string) (BaseRouteName, error) {
	number, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, &ParseError{Raw: raw}
	}
	return BaseRouteName(number), nil
}

func firstGrapheme(s string) string {
	g := uniseg.NewGraphemes(s)
	if !g.Next() {
		return ""
	}
	return g.Str()
}

// firstNonDigit returns the byte offset and value of the first grapheme that
// is not a decimal digit, or -1 if every grapheme is numeric.
func firstNonDigit(s string) (int, string) {
	offset := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		grapheme := g.Str()
		if !isNumericGrapheme(grapheme) {
			return offset, grapheme
		}
		offset += len(grapheme)
	}
	return -1, ""
}

func isNumericGrapheme(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.ParseUint(s, 10, 32)
	return err == nil
}

func isAlphabetic(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
