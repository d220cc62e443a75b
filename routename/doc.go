// Package routename parses LPP route labels into structured identifiers.
//
// Vendor route labels are inconsistently formatted: a plain number ("19"),
// a number with a letter suffix ("3G"), a prefixed night variant ("N3B"),
// or a number followed by free text ("56 DOBROVA - ŠOLSKA", "76(GROS.)").
// Parse decomposes a label into prefix, number, suffix and trailing text;
// BaseRouteName is the number-only grouping key shared by all variants of
// one route family.
//
// Labels are scanned by Unicode grapheme cluster, not by byte or code
// point, so multi-byte letters and diacritics classify correctly.
package routename
