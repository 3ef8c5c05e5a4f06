// Package unicode classifies characters that can smuggle hidden content
// into skill files: invisible characters, bidirectional overrides, tag
// characters, raw controls, and Latin-lookalike homoglyphs.
package unicode

import (
	"fmt"
	"unicode"
)

// Category identifies a class of Unicode smuggling threat.
type Category string

const (
	CategoryZeroWidth   Category = "zero-width"
	CategoryBidi        Category = "bidi-override"
	CategoryTagChar     Category = "tag-char"
	CategoryControlChar Category = "control-char"
	CategoryHomoglyph   Category = "homoglyph"
)

// Threat is one suspicious character found in a line of text.
type Threat struct {
	Category    Category
	Codepoint   string // e.g. "U+200B"
	Column      int    // 1-indexed rune position in the line
	Description string
	// Blocking separates characters that actively hide or reorder
	// content from ones that merely look confusable.
	Blocking bool
}

// InspectLine returns every smuggling threat present in line, in rune
// order.
func InspectLine(line string) []Threat {
	var threats []Threat
	for col, r := range []rune(line) {
		if t, found := classifyRune(r); found {
			t.Column = col + 1
			threats = append(threats, t)
		}
	}
	return threats
}

func classifyRune(r rune) (Threat, bool) {
	cp := fmt.Sprintf("U+%04X", r)

	if isZeroWidth(r) {
		return Threat{
			Category:    CategoryZeroWidth,
			Codepoint:   cp,
			Description: fmt.Sprintf("Zero-width character %s can hide content from display", cp),
			Blocking:    true,
		}, true
	}
	if isBidiOverride(r) {
		return Threat{
			Category:    CategoryBidi,
			Codepoint:   cp,
			Description: fmt.Sprintf("Bidirectional override %s can make displayed text differ from interpreted text", cp),
			Blocking:    true,
		}, true
	}
	if isTagCharacter(r) {
		return Threat{
			Category:    CategoryTagChar,
			Codepoint:   cp,
			Description: fmt.Sprintf("Unicode tag character %s can smuggle hidden instructions", cp),
			Blocking:    true,
		}, true
	}
	if isUnsafeControl(r) {
		return Threat{
			Category:    CategoryControlChar,
			Codepoint:   cp,
			Description: fmt.Sprintf("Control character %s should not appear in skill files", cp),
			Blocking:    true,
		}, true
	}
	if desc := homoglyphDescription(r, cp); desc != "" {
		return Threat{
			Category:    CategoryHomoglyph,
			Codepoint:   cp,
			Description: desc,
			Blocking:    false,
		}, true
	}
	return Threat{}, false
}

func isZeroWidth(r rune) bool {
	switch r {
	case '​', // ZERO WIDTH SPACE
		'‌', // ZERO WIDTH NON-JOINER
		'‍', // ZERO WIDTH JOINER
		'\uFEFF', // ZERO WIDTH NO-BREAK SPACE (BOM)
		'⁠', // WORD JOINER
		'᠎', // MONGOLIAN VOWEL SEPARATOR
		'‎', // LEFT-TO-RIGHT MARK
		'‏': // RIGHT-TO-LEFT MARK
		return true
	}
	return false
}

func isBidiOverride(r rune) bool {
	switch r {
	case '‪', // LEFT-TO-RIGHT EMBEDDING
		'‫', // RIGHT-TO-LEFT EMBEDDING
		'‬', // POP DIRECTIONAL FORMATTING
		'‭', // LEFT-TO-RIGHT OVERRIDE
		'‮', // RIGHT-TO-LEFT OVERRIDE
		'⁦', // LEFT-TO-RIGHT ISOLATE
		'⁧', // RIGHT-TO-LEFT ISOLATE
		'⁨', // FIRST STRONG ISOLATE
		'⁩': // POP DIRECTIONAL ISOLATE
		return true
	}
	return false
}

// Tag characters (U+E0001..U+E007F) mirror printable ASCII but render as
// nothing, which makes them a favorite carrier for hidden instructions.
func isTagCharacter(r rune) bool {
	return r >= 0xE0001 && r <= 0xE007F
}

func isUnsafeControl(r rune) bool {
	// Tab, newline and carriage return are ordinary text.
	if r == '\t' || r == '\n' || r == '\r' {
		return false
	}
	if r <= 0x1F {
		return true
	}
	if r == 0x7F {
		return true
	}
	// C1 controls
	if r >= 0x80 && r <= 0x9F {
		return true
	}
	return false
}

// homoglyphDescription reports characters from non-Latin scripts that
// visually resemble Latin letters, the raw material of IDN homograph and
// code confusion attacks.
func homoglyphDescription(r rune, cp string) string {
	if unicode.Is(unicode.Cyrillic, r) {
		if latin, ok := cyrillicHomoglyphs[r]; ok {
			return fmt.Sprintf("Cyrillic %s looks like Latin '%c' — possible homoglyph attack", cp, latin)
		}
	}
	if unicode.Is(unicode.Greek, r) {
		if latin, ok := greekHomoglyphs[r]; ok {
			return fmt.Sprintf("Greek %s looks like Latin '%c' — possible homoglyph attack", cp, latin)
		}
	}
	return ""
}

// Cyrillic characters visually confusable with Latin characters.
var cyrillicHomoglyphs = map[rune]rune{
	'а': 'a', // CYRILLIC SMALL LETTER A
	'А': 'A', // CYRILLIC CAPITAL LETTER A
	'В': 'B', // CYRILLIC CAPITAL LETTER VE
	'с': 'c', // CYRILLIC SMALL LETTER ES
	'С': 'C', // CYRILLIC CAPITAL LETTER ES
	'е': 'e', // CYRILLIC SMALL LETTER IE
	'Е': 'E', // CYRILLIC CAPITAL LETTER IE
	'Н': 'H', // CYRILLIC CAPITAL LETTER EN
	'і': 'i', // CYRILLIC SMALL LETTER BYELORUSSIAN-UKRAINIAN I
	'І': 'I', // CYRILLIC CAPITAL LETTER BYELORUSSIAN-UKRAINIAN I
	'К': 'K', // CYRILLIC CAPITAL LETTER KA
	'М': 'M', // CYRILLIC CAPITAL LETTER EM
	'о': 'o', // CYRILLIC SMALL LETTER O
	'О': 'O', // CYRILLIC CAPITAL LETTER O
	'р': 'p', // CYRILLIC SMALL LETTER ER
	'Р': 'P', // CYRILLIC CAPITAL LETTER ER
	'Т': 'T', // CYRILLIC CAPITAL LETTER TE
	'х': 'x', // CYRILLIC SMALL LETTER HA
	'Х': 'X', // CYRILLIC CAPITAL LETTER HA
	'у': 'y', // CYRILLIC SMALL LETTER U
	'У': 'Y', // CYRILLIC CAPITAL LETTER U
}

// Greek characters visually confusable with Latin characters.
var greekHomoglyphs = map[rune]rune{
	'Α': 'A', // GREEK CAPITAL LETTER ALPHA
	'Β': 'B', // GREEK CAPITAL LETTER BETA
	'Ε': 'E', // GREEK CAPITAL LETTER EPSILON
	'Η': 'H', // GREEK CAPITAL LETTER ETA
	'Ι': 'I', // GREEK CAPITAL LETTER IOTA
	'Κ': 'K', // GREEK CAPITAL LETTER KAPPA
	'Μ': 'M', // GREEK CAPITAL LETTER MU
	'Ν': 'N', // GREEK CAPITAL LETTER NU
	'Ο': 'O', // GREEK CAPITAL LETTER OMICRON
	'ο': 'o', // GREEK SMALL LETTER OMICRON
	'Ρ': 'P', // GREEK CAPITAL LETTER RHO
	'Τ': 'T', // GREEK CAPITAL LETTER TAU
	'Χ': 'X', // GREEK CAPITAL LETTER CHI
	'Υ': 'Y', // GREEK CAPITAL LETTER UPSILON
	'Ζ': 'Z', // GREEK CAPITAL LETTER ZETA
}
