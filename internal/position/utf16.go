// Package position converts between byte offsets and the UTF-16 columns
// used by LSP positions.
package position

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// UTF16ToByteOffset returns the byte offset of a UTF-16 column in line.
// A column inside a surrogate pair clamps to the start of its rune; columns
// past the end clamp to len(line). Invalid bytes count as one unit.
func UTF16ToByteOffset(line string, col int) int {
	units, offset := 0, 0
	for offset < len(line) && units < col {
		r, size := utf8.DecodeRuneInString(line[offset:])
		n := 1
		if r != utf8.RuneError || size != 1 {
			n = utf16.RuneLen(r)
		}
		if units+n > col {
			break
		}
		units += n
		offset += size
	}
	return offset
}

// ByteOffsetToUTF16 returns the UTF-16 column of a byte offset in line.
// An offset inside a multi-byte rune counts up to the start of that rune.
func ByteOffsetToUTF16(line string, offset int) int {
	offset = min(max(offset, 0), len(line))
	units := 0
	for i, r := range line {
		if i >= offset {
			break
		}
		if i+utf8.RuneLen(r) > offset && r != utf8.RuneError {
			break
		}
		units += runeUnits(r)
	}
	return units
}

// StringLengthUTF16 returns the length of s in UTF-16 code units
func StringLengthUTF16(s string) int {
	n := 0
	for _, r := range s {
		n += runeUnits(r)
	}
	return n
}

// ByteOffsetToUTF16Uint32 is ByteOffsetToUTF16 for protocol fields
func ByteOffsetToUTF16Uint32(line string, offset int) uint32 {
	return clamp(ByteOffsetToUTF16(line, offset))
}

// StringLengthUTF16Uint32 is StringLengthUTF16 for protocol fields
func StringLengthUTF16Uint32(s string) uint32 {
	return clamp(StringLengthUTF16(s))
}

// Offset returns the byte offset in text of a zero-based line and UTF-16
// column. Column 0 of the line after the last one is the end of text.
func Offset(text string, line, col int) (int, error) {
	start := 0
	for l := range line {
		i := strings.IndexByte(text[start:], '\n')
		if i < 0 {
			if l == line-1 && col == 0 {
				return len(text), nil
			}
			return 0, fmt.Errorf("line %d out of bounds (total lines: %d)", line, l+1)
		}
		start += i + 1
	}
	end := len(text)
	if i := strings.IndexByte(text[start:], '\n'); i >= 0 {
		end = start + i
	}
	return start + UTF16ToByteOffset(text[start:end], col), nil
}

// End returns the zero-based line and UTF-16 column just past the end of text
func End(text string) (line, col uint32) {
	last := text
	if i := strings.LastIndexByte(text, '\n'); i >= 0 {
		last = text[i+1:]
	}
	return clamp(strings.Count(text, "\n")), StringLengthUTF16Uint32(last)
}

func runeUnits(r rune) int {
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	return 1
}

func clamp(n int) uint32 {
	if n < 0 {
		return 0
	}
	if n > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(n)
}
