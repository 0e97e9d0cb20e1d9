package helpers

import (
	"bennypowers.dev/flatscss/internal/position"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// RangesIntersect checks if two LSP ranges intersect.
// Ranges are treated as half-open intervals [start, end) where the end position is exclusive.
//
// Returns true if the ranges overlap, false otherwise.
//
// Examples:
//   - [0:0, 0:5) and [0:3, 0:7) -> true (overlap from 0:3 to 0:5)
//   - [0:0, 0:5) and [0:5, 0:10) -> false (adjacent but not overlapping)
//   - [0:0, 1:0) and [0:5, 0:10) -> true (first range includes line 0:5)
func RangesIntersect(a, b protocol.Range) bool {
	// Check if a ends before or at the start of b (no intersection)
	if a.End.Line < b.Start.Line {
		return false
	}
	if a.End.Line == b.Start.Line && a.End.Character <= b.Start.Character {
		return false
	}

	// Check if b ends before or at the start of a (no intersection)
	if b.End.Line < a.Start.Line {
		return false
	}
	if b.End.Line == a.Start.Line && b.End.Character <= a.Start.Character {
		return false
	}

	return true
}

// LineRange converts the byte span [loc[0], loc[1]) of a line's text into an
// LSP range on that line, with UTF-16 character offsets
func LineRange(line int, text string, loc []int) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: uint32(line), Character: position.ByteOffsetToUTF16Uint32(text, loc[0])}, //nolint:gosec // G115: line index of an in-memory document
		End:   protocol.Position{Line: uint32(line), Character: position.ByteOffsetToUTF16Uint32(text, loc[1])}, //nolint:gosec // G115: line index of an in-memory document
	}
}

// WholeLine returns the range covering all of a line's text
func WholeLine(line int, text string) protocol.Range {
	return LineRange(line, text, []int{0, len(text)})
}

// ByteOffset converts a UTF-16 character offset on a line to a byte offset
func ByteOffset(text string, character uint32) int {
	return position.UTF16ToByteOffset(text, int(character))
}
