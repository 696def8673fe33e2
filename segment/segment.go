// Package segment provides the 7-segment encoding used by the STLED316S controller.
//
// Patterns are built from a Glyph, which names segments in the conventional a..g order,
// and a Mapping, which tells which controller output (SEG1..SEG8) drives each segment.
package segment

import "unicode"

// Controller outputs. Bit n of a digit register drives output SEG(n+1).
const (
	SEG1 byte = 0x01
	SEG2 byte = 0x02
	SEG3 byte = 0x04
	SEG4 byte = 0x08
	SEG5 byte = 0x10
	SEG6 byte = 0x20
	SEG7 byte = 0x40
	SEG8 byte = 0x80
)

// Glyph is a segment pattern independent of wiring.
// Bit 0 is segment a, bit 6 is segment g and bit 7 the decimal point.
type Glyph uint8

// Segments of a digit.
//
//	 -a-
//	f   b
//	 -g-
//	e   c
//	 -d-  .dp
const (
	A Glyph = 1 << iota
	B
	C
	D
	E
	F
	G
	DP
)

// Mapping describes which controller output is wired to each segment.
type Mapping struct {
	A, B, C, D, E, F, G, DP byte
}

// Default is the wiring of the common STLED316S modules. HexTable is encoded for it.
var Default = Mapping{A: SEG6, B: SEG5, C: SEG3, D: SEG2, E: SEG1, F: SEG7, G: SEG8, DP: SEG4}

// hexTable is the nibble to pattern table for Default wiring.
var hexTable = [16]byte{0x77, 0x14, 0xB3, 0xB6, 0xD4, 0xE6, 0xE7, 0x34, 0xF7, 0xF6, 0xF5, 0xC7, 0x63, 0x97, 0xE3, 0xE1}

var hexGlyphs = [16]Glyph{
	A | B | C | D | E | F,     // 0
	B | C,                     // 1
	A | B | D | E | G,         // 2
	A | B | C | D | G,         // 3
	B | C | F | G,             // 4
	A | C | D | F | G,         // 5
	A | C | D | E | F | G,     // 6
	A | B | C,                 // 7
	A | B | C | D | E | F | G, // 8
	A | B | C | D | F | G,     // 9
	A | B | C | E | F | G,     // A
	C | D | E | F | G,         // b
	A | D | E | F,             // C
	B | C | D | E | G,         // d
	A | D | E | F | G,         // E
	A | E | F | G,             // F
}

// HexTable returns the nibble to pattern table for Default wiring.
func HexTable() [16]byte {
	return hexTable
}

// Hex returns the Default pattern of the low nibble of n.
func Hex(n uint8) byte {
	return hexTable[n&0x0F]
}

// Encode converts g to the controller pattern for this wiring.
func (m Mapping) Encode(g Glyph) byte {
	var p byte
	for i, out := range [8]byte{m.A, m.B, m.C, m.D, m.E, m.F, m.G, m.DP} {
		if g&(1<<i) != 0 {
			p |= out
		}
	}
	return p
}

// Table returns the nibble to pattern table for this wiring.
func (m Mapping) Table() [16]byte {
	var t [16]byte
	for i, g := range hexGlyphs {
		t[i] = m.Encode(g)
	}
	return t
}

// Rune returns the pattern for r. Letters missing in one case fall back to the
// other. The second result is false when r has no glyph.
func (m Mapping) Rune(r rune) (byte, bool) {
	g, ok := Font[r]
	if !ok {
		g, ok = Font[unicode.ToUpper(r)]
	}
	if !ok {
		g, ok = Font[unicode.ToLower(r)]
	}
	if !ok {
		return 0, false
	}
	return m.Encode(g), true
}
