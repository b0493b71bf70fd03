package delimited

import (
	"reflect"
	"testing"
)

func TestParse_PlainRows(t *testing.T) {
	table, err := Parse("room,joined,left\nAlgebra,1000,1500\nBiology,2000,2100\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(table.Header, []string{"room", "joined", "left"}) {
		t.Fatalf("unexpected header: %+v", table.Header)
	}
	if len(table.Rows) != 2 || !reflect.DeepEqual(table.Rows[0], []string{"Algebra", "1000", "1500"}) {
		t.Fatalf("unexpected rows: %+v", table.Rows)
	}
}

func TestParse_QuotedFieldWithCommaAndNewline(t *testing.T) {
	table, err := Parse("name,note\n\"Smith, Jane\",\"line one\nline two\"\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Rows[0][0] != "Smith, Jane" {
		t.Fatalf("comma inside quotes not preserved: %q", table.Rows[0][0])
	}
	if table.Rows[0][1] != "line one\nline two" {
		t.Fatalf("newline inside quotes not preserved: %q", table.Rows[0][1])
	}
}

func TestParse_EscapedQuote(t *testing.T) {
	table, err := Parse("a,b\n\"say \"\"hi\"\"\",x\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Rows[0][0] != `say "hi"` {
		t.Fatalf("unexpected unescaped field: %q", table.Rows[0][0])
	}
}

func TestParse_MixedLineEndingsAndMissingTrailingNewline(t *testing.T) {
	table, err := Parse("a,b\r\n1,2\n3,4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table.Rows) != 2 || table.Rows[1][1] != "4" {
		t.Fatalf("unexpected rows: %+v", table.Rows)
	}
}

func TestParse_BlankLinesAreDropped(t *testing.T) {
	table, err := Parse("a,b\n\n1,2\n\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table.Rows) != 1 {
		t.Fatalf("expected one row, got %+v", table.Rows)
	}
}

func TestParse_FieldCountMismatchNamesLine(t *testing.T) {
	_, err := Parse("a,b\n1,2,3\n")
	if err == nil {
		t.Fatal("expected error for ragged row")
	}
	if got := err.Error(); got != "line 2 has 3 fields, header has 2" {
		t.Fatalf("unexpected error message: %q", got)
	}
}

func TestParse_UnterminatedQuote(t *testing.T) {
	if _, err := Parse("a,b\n\"open,2\n"); err == nil {
		t.Fatal("expected error for unterminated quote")
	}
}

func TestParse_EmptyBlob(t *testing.T) {
	if _, err := Parse(""); err == nil {
		t.Fatal("expected error for empty blob")
	}
}

func TestColumnIndex_CaseInsensitive(t *testing.T) {
	table, err := Parse("Room Name, Joined ,left\nx,y,z\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := table.ColumnIndex("joined"); got != 1 {
		t.Fatalf("expected index 1, got %d", got)
	}
	if got := table.ColumnIndex("missing"); got != -1 {
		t.Fatalf("expected -1, got %d", got)
	}
}

func TestParse_EmptyFields(t *testing.T) {
	table, err := Parse("a,b,c\n,,\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(table.Rows[0], []string{"", "", ""}) {
		t.Fatalf("unexpected row: %+v", table.Rows[0])
	}
}
