package ddv

// Coefficient word layout, shared by the expanded bitstream and the
// macroblock decoder:
//
//	0xFC00  run (zeros preceding the level in zig-zag order)
//	0x03FF  level (10-bit signed)
//
// eobWord terminates a subblock; escapeWord in a lookup entry means
// the next 16 bits of the bitstream are a literal coefficient word.
const (
	eobWord    = 0xFE00
	escapeWord = 0x7C1F
)

// Luma base quantization table, zig-zag order. The per-frame tables
// are rebuilt from these and the frame quantization scale.
var quantLumaBase = [64]uint32{
	12, 11, 10, 12, 14, 14, 13, 14,
	16, 24, 19, 16, 17, 18, 24, 22,
	22, 24, 26, 40, 51, 58, 40, 29,
	37, 35, 49, 72, 64, 55, 56, 51,
	57, 60, 61, 55, 69, 87, 68, 64,
	78, 92, 95, 87, 81, 109, 80, 56,
	62, 103, 104, 103, 98, 112, 121, 113,
	77, 92, 120, 100, 103, 101, 99, 16,
}

// Chroma base quantization table, zig-zag order.
var quantChromaBase = [64]uint32{
	16, 18, 18, 24, 21, 24, 47, 26,
	26, 47, 99, 66, 56, 66, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
}

// videoZigZag maps a zig-zag scan position to its raster index in an
// 8x8 block.
var videoZigZag = [64]uint8{
	0, 1, 8, 16, 9, 2, 3, 10,
	17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34,
	27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36,
	29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46,
	53, 60, 61, 54, 47, 55, 62, 63,
}

// dctCode is one run/level code of the coefficient codebook. code
// holds the bits bits of the code; the sign bit follows in the stream
// and is not included.
type dctCode struct {
	code  uint16
	bits  uint8
	run   uint8
	level uint8
}

// dctCodes is the run/level codebook the flat lookup tables expand.
// Two more symbols complete it: end-of-block "10" and the escape
// prefix "000001" (16 raw bits follow). Codes shorter than 14 bits
// including sign have fewer than 8 leading zeros and are served by the
// 13-bit table; the rest go through the 17-bit table.
var dctCodes = [111]dctCode{
	{0b11, 2, 0, 1}, // 11

	{0b011, 3, 1, 1}, // 011

	{0b0100, 4, 0, 2}, // 0100
	{0b0101, 4, 2, 1}, // 0101

	{0b00101, 5, 0, 3}, // 0010 1
	{0b00110, 5, 4, 1}, // 0011 0
	{0b00111, 5, 3, 1}, // 0011 1

	{0b000100, 6, 7, 1}, // 0001 00
	{0b000101, 6, 6, 1}, // 0001 01
	{0b000110, 6, 1, 2}, // 0001 10
	{0b000111, 6, 5, 1}, // 0001 11

	{0b0000100, 7, 2, 2}, // 0000 100
	{0b0000101, 7, 9, 1}, // 0000 101
	{0b0000110, 7, 0, 4}, // 0000 110
	{0b0000111, 7, 8, 1}, // 0000 111

	{0b00100000, 8, 13, 1}, // 0010 0000
	{0b00100001, 8, 0, 6},  // 0010 0001
	{0b00100010, 8, 12, 1}, // 0010 0010
	{0b00100011, 8, 11, 1}, // 0010 0011
	{0b00100100, 8, 3, 2},  // 0010 0100
	{0b00100101, 8, 1, 3},  // 0010 0101
	{0b00100110, 8, 0, 5},  // 0010 0110
	{0b00100111, 8, 10, 1}, // 0010 0111

	{0b0000001000, 10, 16, 1}, // 0000 0010 00
	{0b0000001001, 10, 5, 2},  // 0000 0010 01
	{0b0000001010, 10, 0, 7},  // 0000 0010 10
	{0b0000001011, 10, 2, 3},  // 0000 0010 11
	{0b0000001100, 10, 1, 4},  // 0000 0011 00
	{0b0000001101, 10, 15, 1}, // 0000 0011 01
	{0b0000001110, 10, 14, 1}, // 0000 0011 10
	{0b0000001111, 10, 4, 2},  // 0000 0011 11

	{0b000000010000, 12, 0, 11}, // 0000 0001 0000
	{0b000000010001, 12, 8, 2},  // 0000 0001 0001
	{0b000000010010, 12, 4, 3},  // 0000 0001 0010
	{0b000000010011, 12, 0, 10}, // 0000 0001 0011
	{0b000000010100, 12, 2, 4},  // 0000 0001 0100
	{0b000000010101, 12, 7, 2},  // 0000 0001 0101
	{0b000000010110, 12, 21, 1}, // 0000 0001 0110
	{0b000000010111, 12, 20, 1}, // 0000 0001 0111
	{0b000000011000, 12, 0, 9},  // 0000 0001 1000
	{0b000000011001, 12, 19, 1}, // 0000 0001 1001
	{0b000000011010, 12, 18, 1}, // 0000 0001 1010
	{0b000000011011, 12, 1, 5},  // 0000 0001 1011
	{0b000000011100, 12, 3, 3},  // 0000 0001 1100
	{0b000000011101, 12, 0, 8},  // 0000 0001 1101
	{0b000000011110, 12, 6, 2},  // 0000 0001 1110
	{0b000000011111, 12, 17, 1}, // 0000 0001 1111

	{0b0000000010000, 13, 10, 2}, // 0000 0000 1000 0
	{0b0000000010001, 13, 9, 2},  // 0000 0000 1000 1
	{0b0000000010010, 13, 5, 3},  // 0000 0000 1001 0
	{0b0000000010011, 13, 3, 4},  // 0000 0000 1001 1
	{0b0000000010100, 13, 2, 5},  // 0000 0000 1010 0
	{0b0000000010101, 13, 1, 7},  // 0000 0000 1010 1
	{0b0000000010110, 13, 1, 6},  // 0000 0000 1011 0
	{0b0000000010111, 13, 0, 15}, // 0000 0000 1011 1
	{0b0000000011000, 13, 0, 14}, // 0000 0000 1100 0
	{0b0000000011001, 13, 0, 13}, // 0000 0000 1100 1
	{0b0000000011010, 13, 0, 12}, // 0000 0000 1101 0
	{0b0000000011011, 13, 26, 1}, // 0000 0000 1101 1
	{0b0000000011100, 13, 25, 1}, // 0000 0000 1110 0
	{0b0000000011101, 13, 24, 1}, // 0000 0000 1110 1
	{0b0000000011110, 13, 23, 1}, // 0000 0000 1111 0
	{0b0000000011111, 13, 22, 1}, // 0000 0000 1111 1

	{0b00000000010000, 14, 0, 31}, // 0000 0000 0100 00
	{0b00000000010001, 14, 0, 30}, // 0000 0000 0100 01
	{0b00000000010010, 14, 0, 29}, // 0000 0000 0100 10
	{0b00000000010011, 14, 0, 28}, // 0000 0000 0100 11
	{0b00000000010100, 14, 0, 27}, // 0000 0000 0101 00
	{0b00000000010101, 14, 0, 26}, // 0000 0000 0101 01
	{0b00000000010110, 14, 0, 25}, // 0000 0000 0101 10
	{0b00000000010111, 14, 0, 24}, // 0000 0000 0101 11
	{0b00000000011000, 14, 0, 23}, // 0000 0000 0110 00
	{0b00000000011001, 14, 0, 22}, // 0000 0000 0110 01
	{0b00000000011010, 14, 0, 21}, // 0000 0000 0110 10
	{0b00000000011011, 14, 0, 20}, // 0000 0000 0110 11
	{0b00000000011100, 14, 0, 19}, // 0000 0000 0111 00
	{0b00000000011101, 14, 0, 18}, // 0000 0000 0111 01
	{0b00000000011110, 14, 0, 17}, // 0000 0000 0111 10
	{0b00000000011111, 14, 0, 16}, // 0000 0000 0111 11

	{0b000000000010000, 15, 0, 40}, // 0000 0000 0010 000
	{0b000000000010001, 15, 0, 39}, // 0000 0000 0010 001
	{0b000000000010010, 15, 0, 38}, // 0000 0000 0010 010
	{0b000000000010011, 15, 0, 37}, // 0000 0000 0010 011
	{0b000000000010100, 15, 0, 36}, // 0000 0000 0010 100
	{0b000000000010101, 15, 0, 35}, // 0000 0000 0010 101
	{0b000000000010110, 15, 0, 34}, // 0000 0000 0010 110
	{0b000000000010111, 15, 0, 33}, // 0000 0000 0010 111
	{0b000000000011000, 15, 0, 32}, // 0000 0000 0011 000
	{0b000000000011001, 15, 1, 14}, // 0000 0000 0011 001
	{0b000000000011010, 15, 1, 13}, // 0000 0000 0011 010
	{0b000000000011011, 15, 1, 12}, // 0000 0000 0011 011
	{0b000000000011100, 15, 1, 11}, // 0000 0000 0011 100
	{0b000000000011101, 15, 1, 10}, // 0000 0000 0011 101
	{0b000000000011110, 15, 1, 9},  // 0000 0000 0011 110
	{0b000000000011111, 15, 1, 8},  // 0000 0000 0011 111

	{0b0000000000010000, 16, 1, 18}, // 0000 0000 0001 0000
	{0b0000000000010001, 16, 1, 17}, // 0000 0000 0001 0001
	{0b0000000000010010, 16, 1, 16}, // 0000 0000 0001 0010
	{0b0000000000010011, 16, 1, 15}, // 0000 0000 0001 0011
	{0b0000000000010100, 16, 6, 3},  // 0000 0000 0001 0100
	{0b0000000000010101, 16, 16, 2}, // 0000 0000 0001 0101
	{0b0000000000010110, 16, 15, 2}, // 0000 0000 0001 0110
	{0b0000000000010111, 16, 14, 2}, // 0000 0000 0001 0111
	{0b0000000000011000, 16, 13, 2}, // 0000 0000 0001 1000
	{0b0000000000011001, 16, 12, 2}, // 0000 0000 0001 1001
	{0b0000000000011010, 16, 11, 2}, // 0000 0000 0001 1010
	{0b0000000000011011, 16, 31, 1}, // 0000 0000 0001 1011
	{0b0000000000011100, 16, 30, 1}, // 0000 0000 0001 1100
	{0b0000000000011101, 16, 29, 1}, // 0000 0000 0001 1101
	{0b0000000000011110, 16, 28, 1}, // 0000 0000 0001 1110
	{0b0000000000011111, 16, 27, 1}, // 0000 0000 0001 1111
}

// Flat lookup tables expanded from dctCodes at init.
//
// The 17-bit table serves codes with at least 8 leading zeros: the
// decoder skips the 8-bit zero prefix, then the entry's own bit count,
// and emits one word. The 13-bit table serves everything else and
// packs up to three consecutive symbols per entry; packing stops at an
// end-of-block or escape symbol because both pull more bits from the
// live stream.
var (
	vlcLongBits  [1 << 17]uint8
	vlcLongWord  [1 << 17]uint16
	vlcShortBits [1 << 13]uint8
	vlcShortWord [1 << 13][3]uint16
)

// sndBits holds the bit length of each byte value, used by the audio
// companding pair.
var sndBits [256]uint8

func init() {
	buildSndBits()
	buildVlcTables()
}

func buildSndBits() {
	for i := range sndBits {
		n := 0
		for v := i; v > 0; v >>= 1 {
			n++
		}
		sndBits[i] = uint8(n)
	}
}

func rlWord(run, level uint8, negative bool) uint16 {
	l := int(level)
	if negative {
		l = -l
	}
	return uint16(run)<<10 | uint16(l)&0x3FF
}

func buildVlcTables() {
	type symbol struct {
		pattern uint16
		bits    int
		word    uint16
	}

	short := make([]symbol, 0, 2*len(dctCodes)+2)
	short = append(short,
		symbol{0b10, 2, eobWord},
		symbol{0b000001, 6, escapeWord},
	)

	for _, c := range dctCodes {
		n := int(c.bits) + 1 // sign bit included
		if n >= 14 {
			for sign := 0; sign <= 1; sign++ {
				full := uint32(c.code)<<1 | uint32(sign)
				word := rlWord(c.run, c.level, sign != 0)
				base := full << uint(17-n)
				for i := uint32(0); i < 1<<uint(17-n); i++ {
					vlcLongBits[base+i] = uint8(n - 8)
					vlcLongWord[base+i] = word
				}
			}
			continue
		}
		for sign := 0; sign <= 1; sign++ {
			short = append(short, symbol{
				pattern: c.code<<1 | uint16(sign),
				bits:    n,
				word:    rlWord(c.run, c.level, sign != 0),
			})
		}
	}

	for i := 32; i < len(vlcShortBits); i++ {
		pos := 0
		slot := 0
		for slot < 3 {
			var match *symbol
			for k := range short {
				s := &short[k]
				if pos+s.bits > 13 {
					continue
				}
				if uint16(i)>>uint(13-pos-s.bits)&(1<<uint(s.bits)-1) == s.pattern {
					match = s
					break
				}
			}
			if match == nil {
				break
			}
			vlcShortWord[i][slot] = match.word
			pos += match.bits
			slot++
			if match.word == eobWord || match.word == escapeWord {
				break
			}
		}
		vlcShortBits[i] = uint8(pos)
	}
}
