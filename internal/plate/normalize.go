// Package plate canonicalizes vehicle plate numbers for matching.
//
// Field devices OCR plates in either Latin or Devanagari script. Matching
// compares plates byte-for-byte, so every intake path funnels through
// Normalize to obtain a single canonical ASCII-uppercase form. The raw OCR
// text is preserved separately for audit.
package plate

import (
	"strings"
	"unicode"
)

// consonants maps Devanagari consonants to their Latin transliteration
// without the inherent vowel. The inherent "A" is appended unless the
// consonant is followed by a dependent vowel sign or a virama.
var consonants = map[rune]string{
	'क': "K", 'ख': "KH", 'ग': "G", 'घ': "GH", 'ङ': "N",
	'च': "CH", 'छ': "CHH", 'ज': "J", 'झ': "JH", 'ञ': "N",
	'ट': "T", 'ठ': "TH", 'ड': "D", 'ढ': "DH", 'ण': "N",
	'त': "T", 'थ': "TH", 'द': "D", 'ध': "DH", 'न': "N",
	'प': "P", 'फ': "PH", 'ब': "B", 'भ': "BH", 'म': "M",
	'य': "Y", 'र': "R", 'ल': "L", 'व': "W",
	'श': "SH", 'ष': "SH", 'स': "S", 'ह': "H",
}

// vowelSigns maps dependent vowel signs (matras) to their Latin vowel.
// A matra replaces the consonant's inherent vowel.
var vowelSigns = map[rune]string{
	'ा': "A", 'ि': "I", 'ी': "I", 'ु': "U", 'ू': "U",
	'े': "E", 'ै': "AI", 'ो': "O", 'ौ': "AU",
}

// nasals are appended after the syllable and do not replace the inherent
// vowel.
var nasals = map[rune]string{
	'ं': "N", 'ँ': "N",
}

// vowels maps independent Devanagari vowels.
var vowels = map[rune]string{
	'अ': "A", 'आ': "A", 'इ': "I", 'ई': "I", 'उ': "U", 'ऊ': "U",
	'ए': "E", 'ऐ': "AI", 'ओ': "O", 'औ': "AU",
}

const virama = '्'

// Normalize maps raw OCR plate text to its canonical form: ASCII uppercase,
// Devanagari transliterated, digits mapped to ASCII, separators and
// whitespace removed. Normalize is idempotent: already-canonical input is
// returned unchanged.
func Normalize(raw string) string {
	runes := []rune(raw)
	var b strings.Builder
	b.Grow(len(raw))

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(unicode.ToUpper(r))
		case (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		case r >= '०' && r <= '९': // Devanagari digits
			b.WriteRune('0' + (r - '०'))
		default:
			if lat, ok := consonants[r]; ok {
				b.WriteString(lat)
				// Inherent vowel unless a matra or virama follows.
				if i+1 < len(runes) {
					next := runes[i+1]
					if next == virama {
						i++
						continue
					}
					if _, matra := vowelSigns[next]; matra {
						continue
					}
				}
				b.WriteString("A")
				continue
			}
			if lat, ok := vowelSigns[r]; ok {
				b.WriteString(lat)
				continue
			}
			if lat, ok := vowels[r]; ok {
				b.WriteString(lat)
				continue
			}
			if lat, ok := nasals[r]; ok {
				b.WriteString(lat)
				continue
			}
			// Separators, whitespace and anything unrecognized are dropped.
		}
	}
	return b.String()
}

// IsNormalized reports whether s is already in canonical form: non-empty
// ASCII uppercase letters and digits only.
func IsNormalized(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
