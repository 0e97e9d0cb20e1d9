package segment

import (
	"strings"
)

// RecordKind tells stylesheet records from markup records
type RecordKind int

const (
	// StylesheetRecord holds the SCSS of one selector
	StylesheetRecord RecordKind = iota
	// MarkupRecord holds the markup fragment of a top-level block
	MarkupRecord
)

func (k RecordKind) String() string {
	if k == MarkupRecord {
		return "markup"
	}
	return "stylesheet"
}

// Record is a save-ready {name, code} pair
type Record struct {
	Name string
	Kind RecordKind
	Code string
}

// FileName returns a file name for the record: pseudo-class colons become
// "--", and the extension follows the kind
func (r Record) FileName() string {
	base := strings.ReplaceAll(r.Name, ":", "--")
	if r.Kind == MarkupRecord {
		return base + ".html"
	}
	return base + ".scss"
}

// SaveRecords returns one stylesheet record for every selector in a group
// with declarations, and one markup record for the group itself when markup
// is not blank. A parent emptied by de-nesting, such as ".c-card {\n}", has
// no record.
func SaveRecords(group *Block, markup string) []Record {
	if group == nil {
		return nil
	}
	var records []Record
	Walk(group, func(b *Block) {
		if !hasBody(b.Code) {
			return
		}
		records = append(records, Record{Name: b.Name, Kind: StylesheetRecord, Code: b.Code})
	})
	if strings.TrimSpace(markup) != "" {
		records = append(records, Record{Name: group.Name, Kind: MarkupRecord, Code: markup})
	}
	return records
}

// hasBody reports whether code has anything between its outermost braces
func hasBody(code string) bool {
	start, end := strings.Index(code, "{"), strings.LastIndex(code, "}")
	if start < 0 || end < start {
		return strings.TrimSpace(code) != ""
	}
	return strings.TrimSpace(code[start+1:end]) != ""
}
