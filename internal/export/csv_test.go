package export_test

import (
	"errors"
	"reflect"
	"testing"

	"sanitycsv/internal/export"
)

// ─────────────────────────────────────────────────────────────
// CSV encoder / decoder tests
// ─────────────────────────────────────────────────────────────

func decodeDocs(t *testing.T, raw string) []*export.Document {
	t.Helper()
	docs, err := export.StreamDecoder{}.Decode([]byte(raw))
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	return docs
}

func TestEncodeDocuments_Cells(t *testing.T) {
	docs := decodeDocs(t, `{"s":"say \"hi\"","n":-1.5,"b":false,"z":null,"o":{"y":1,"x":"<a>"},"l":[1,"two"]}
{"s":"plain"}`)

	got, err := export.EncodeDocuments(docs, nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := `"s","n","b","z","o","l"` + "\r\n" +
		`"say ""hi""",-1.5,false,,"{""y"":1,""x"":""<a>""}","[1,""two""]"` + "\r\n" +
		`"plain",,,,,`
	if got != want {
		t.Fatalf("got\n%q\nwant\n%q", got, want)
	}
}

func TestEncodeDocuments_ExplicitFields(t *testing.T) {
	docs := decodeDocs(t, `{"a":1,"b":2,"c":3}`)
	got, err := export.EncodeDocuments(docs, []string{"c", "missing", "a"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if want := "\"c\",\"missing\",\"a\"\r\n3,,1"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEncodeRecords_SingleEmptyColumn(t *testing.T) {
	got, err := export.EncodeRecords([]export.Record{{"a": nil}, {"a": 1.0}}, []string{"a"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if want := "a\r\n\"\"\r\n1"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	table, err := export.DecodeCSV(got)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected the empty row to survive, got %d rows", len(table.Rows))
	}
}

func TestEncodeRecords_SortedHeader(t *testing.T) {
	got, err := export.EncodeRecords([]export.Record{{"b": "x", "a": true}}, nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if want := "a,b\r\ntrue,\"x\""; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEncodeDocuments_NestedKeyOrder(t *testing.T) {
	docs := decodeDocs(t, `{"o":{"z":1,"a":{"k2":[3, {"q":1,"b":2}],"k1":null}}}`)
	got, err := export.EncodeDocuments(docs, nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := `"o"` + "\r\n" + `"{""z"":1,""a"":{""k2"":[3,{""q"":1,""b"":2}],""k1"":null}}"`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEncodeRecords_HeaderQuotedOnlyWhenNeeded(t *testing.T) {
	got, err := export.EncodeRecords([]export.Record{{"a,b": 1.0, "c": 2.0, "": 3.0}}, []string{"a,b", "c", ""})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if want := "\"a,b\",c,\"\"\r\n1,2,3"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDecodeCSV_KeepsCRLFInsideQuotes(t *testing.T) {
	docs := decodeDocs(t, `{"s":"l1\r\nl2","t":"x\ny"}`)
	text, err := export.EncodeDocuments(docs, nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	table, err := export.DecodeCSV(text)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(table.Rows) != 1 {
		t.Fatalf("rows = %d", len(table.Rows))
	}
	if got := table.Rows[0]["s"]; got != "l1\r\nl2" {
		t.Errorf("s = %q", got)
	}
	if got := table.Rows[0]["t"]; got != "x\ny" {
		t.Errorf("t = %q", got)
	}

	out, err := export.EncodeRecords(table.Rows, []string{"s"})
	if err != nil {
		t.Fatalf("encode records: %v", err)
	}
	if want := "s\r\n\"l1\r\nl2\""; out != want {
		t.Errorf("download = %q, want %q", out, want)
	}
}

func TestDecodeCSV_SkipsBlankLines(t *testing.T) {
	table, err := export.DecodeCSV("\"a\",\"b\"\r\n\r\n1,\"x\"\r\n\r\n2,\"y\"\r\n")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(table.Fields, []string{"a", "b"}) {
		t.Errorf("fields = %v", table.Fields)
	}
	if len(table.Rows) != 2 {
		t.Errorf("rows = %d", len(table.Rows))
	}
}

func TestDecodeCSV_Malformed(t *testing.T) {
	for _, text := range []string{
		"\"a\",\"b\"\r\n1,2,3",
		"\"a\"\r\n\"unterminated",
		"\"a\"\r\nx\"y",
	} {
		_, err := export.DecodeCSV(text)
		var pe *export.CSVParseError
		if !errors.As(err, &pe) {
			t.Errorf("%q: expected *CSVParseError, got %v", text, err)
			continue
		}
		if pe.Line < 2 {
			t.Errorf("%q: line = %d", text, pe.Line)
		}
	}
}

func TestDecodeCSV_Empty(t *testing.T) {
	table, err := export.DecodeCSV("")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(table.Fields) != 0 || len(table.Rows) != 0 {
		t.Fatalf("expected empty table, got %+v", table)
	}
}

func TestInferValue(t *testing.T) {
	cases := []struct {
		in   string
		want any
	}{
		{"", nil},
		{"true", true},
		{"TRUE", true},
		{"false", false},
		{"FALSE", false},
		{"True", "True"},
		{"42", 42.0},
		{"-0.5", -0.5},
		{".5", 0.5},
		{"7.", 7.0},
		{"1e3", 1000.0},
		{" 12 ", 12.0},
		{"9007199254740993", "9007199254740993"},
		{"0x1F", "0x1F"},
		{"12abc", "12abc"},
		{"NaN", "NaN"},
		{"hello", "hello"},
	}
	for _, c := range cases {
		if got := export.InferValue(c.in); got != c.want {
			t.Errorf("InferValue(%q) = %v (%T), want %v (%T)", c.in, got, got, c.want, c.want)
		}
	}
}

func TestRoundTrip_FieldsAndRowCount(t *testing.T) {
	docs := decodeDocs(t, `{"id":"001","n":3,"flag":"TRUE","name":"Ann"}
{"id":"002","n":4.25,"flag":"no","name":"Bo, Jr."}
{"id":"003","n":null,"flag":false,"name":"line\nbreak"}`)

	text, err := export.EncodeDocuments(docs, nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	table, err := export.DecodeCSV(text)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if !reflect.DeepEqual(table.Fields, export.Keys(docs[0])) {
		t.Errorf("fields = %v", table.Fields)
	}
	if len(table.Rows) != len(docs) {
		t.Fatalf("rows = %d, want %d", len(table.Rows), len(docs))
	}
	// Numeric-looking and boolean-looking strings are coerced.
	if table.Rows[0]["id"] != 1.0 || table.Rows[0]["flag"] != true {
		t.Errorf("row 0 = %v", table.Rows[0])
	}
	if table.Rows[1]["name"] != "Bo, Jr." || table.Rows[2]["name"] != "line\nbreak" {
		t.Errorf("quoted cells not preserved: %v / %v", table.Rows[1]["name"], table.Rows[2]["name"])
	}
	if table.Rows[2]["n"] != nil {
		t.Errorf("null should decode as nil, got %v", table.Rows[2]["n"])
	}
}
