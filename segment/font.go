package segment

// Font is the set of runes that render legibly on a 7-segment digit.
// Some letters only exist in one case; Mapping.Rune falls back to it.
var Font = map[rune]Glyph{
	' ':  0,
	'-':  G,
	'_':  D,
	'=':  D | G,
	'"':  B | F,
	'\'': B,
	'0':  hexGlyphs[0x0],
	'1':  hexGlyphs[0x1],
	'2':  hexGlyphs[0x2],
	'3':  hexGlyphs[0x3],
	'4':  hexGlyphs[0x4],
	'5':  hexGlyphs[0x5],
	'6':  hexGlyphs[0x6],
	'7':  hexGlyphs[0x7],
	'8':  hexGlyphs[0x8],
	'9':  hexGlyphs[0x9],
	'A':  hexGlyphs[0xA],
	'b':  hexGlyphs[0xB],
	'C':  hexGlyphs[0xC],
	'c':  D | E | G,
	'd':  hexGlyphs[0xD],
	'E':  hexGlyphs[0xE],
	'F':  hexGlyphs[0xF],
	'G':  A | C | D | E | F,
	'H':  B | C | E | F | G,
	'h':  C | E | F | G,
	'I':  E | F,
	'J':  B | C | D | E,
	'L':  D | E | F,
	'n':  C | E | G,
	'O':  A | B | C | D | E | F,
	'o':  C | D | E | G,
	'P':  A | B | E | F | G,
	'q':  A | B | C | F | G,
	'r':  E | G,
	'S':  A | C | D | F | G,
	't':  D | E | F | G,
	'U':  B | C | D | E | F,
	'u':  C | D | E,
	'y':  B | C | D | F | G,
}
