// Package delimited parses the comma-delimited export blobs the classroom
// API embeds inside JSON responses. The blobs are close to CSV but mix bare
// LF and CRLF record endings and may omit the trailing newline, so they are
// parsed with an explicit state machine instead of encoding/csv.
package delimited

import (
	"fmt"
	"strings"
)

// Table is one parsed blob: a header row naming the fields and the data
// rows, every row having exactly len(Header) fields.
type Table struct {
	Header []string
	Rows   [][]string
}

// ColumnIndex returns the position of the named header field, or -1. Header
// names are matched case-insensitively with surrounding space ignored.
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

// Parse consumes a delimited blob whose first record is the field-name
// header. Quoted fields may contain commas, newlines, and doubled quotes.
func Parse(blob string) (*Table, error) {
	records, err := splitRecords(blob)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("export blob has no header row")
	}

	table := &Table{Header: records[0], Rows: records[1:]}
	for i, row := range table.Rows {
		if len(row) != len(table.Header) {
			return nil, fmt.Errorf("line %d has %d fields, header has %d", i+2, len(row), len(table.Header))
		}
	}
	return table, nil
}

func splitRecords(blob string) ([][]string, error) {
	var (
		records  [][]string
		fields   []string
		field    strings.Builder
		inQuotes bool
		started  bool
	)

	flushField := func() {
		fields = append(fields, field.String())
		field.Reset()
	}
	flushRecord := func() {
		// Blank lines between records carry no fields and are dropped.
		if !started && len(fields) == 0 && field.Len() == 0 {
			return
		}
		flushField()
		records = append(records, fields)
		fields = nil
		started = false
	}

	for i := 0; i < len(blob); i++ {
		c := blob[i]
		switch {
		case inQuotes:
			if c == '"' {
				if i+1 < len(blob) && blob[i+1] == '"' {
					field.WriteByte('"')
					i++
					continue
				}
				inQuotes = false
				continue
			}
			field.WriteByte(c)
		case c == '"':
			inQuotes = true
			started = true
		case c == ',':
			flushField()
			started = true
		case c == '\r':
			if i+1 < len(blob) && blob[i+1] == '\n' {
				i++
			}
			flushRecord()
		case c == '\n':
			flushRecord()
		default:
			field.WriteByte(c)
			started = true
		}
	}
	if inQuotes {
		return nil, fmt.Errorf("unterminated quoted field")
	}
	// A final record without a trailing newline still counts.
	flushRecord()
	return records, nil
}
