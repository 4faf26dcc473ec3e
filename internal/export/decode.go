package export

import (
	"encoding/csv"
	"errors"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// ── CSV Decoder ─────────────────────────────────────────────

// DecodeCSV parses CSV text into field names and typed rows.
// The first row is the header; blank lines are skipped; every row must
// have as many cells as the header. Cell types are inferred with InferValue.
func DecodeCSV(text string) (*Table, error) {
	text, marked := markQuotedCRLF(text)
	reader := csv.NewReader(strings.NewReader(text))

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return &Table{Fields: []string{}, Rows: []Record{}}, nil
	}
	if err != nil {
		return nil, csvError(err)
	}

	table := &Table{
		Fields: make([]string, len(header)),
		Rows:   []Record{},
	}
	for i, name := range header {
		table.Fields[i] = unmarkCRLF(name, marked)
	}
	for {
		cells, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvError(err)
		}

		row := make(Record, len(table.Fields))
		for i, name := range table.Fields {
			row[name] = InferValue(unmarkCRLF(cells[i], marked))
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// crlfMark stands in for the \r of a line break inside a quoted cell.
// encoding/csv folds every \r\n into \n, quoted or not.
const crlfMark = "\x00"

// markQuotedCRLF rewrites \r\n inside quoted cells to crlfMark+\n so the
// reader leaves it alone. Text that already contains crlfMark is returned
// unchanged and those line breaks come back as \n.
func markQuotedCRLF(text string) (string, bool) {
	if !strings.Contains(text, "\r\n") || strings.Contains(text, crlfMark) {
		return text, false
	}
	var sb strings.Builder
	sb.Grow(len(text))
	inQuotes, marked := false, false
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '"':
			inQuotes = !inQuotes
		case c == '\r' && inQuotes && i+1 < len(text) && text[i+1] == '\n':
			sb.WriteString(crlfMark)
			marked = true
			continue
		}
		sb.WriteByte(c)
	}
	if !marked {
		return text, false
	}
	return sb.String(), true
}

func unmarkCRLF(cell string, marked bool) string {
	if !marked {
		return cell
	}
	return strings.ReplaceAll(cell, crlfMark+"\n", "\r\n")
}

func csvError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &CSVParseError{Line: pe.Line, Err: pe.Err}
	}
	return &CSVParseError{Err: err}
}

// floatPattern matches the numbers InferValue converts.
var floatPattern = regexp.MustCompile(`^\s*-?(\d+\.?|\.\d+|\d+\.\d+)([eE][-+]?\d+)?\s*$`)

// Integers beyond this magnitude lose precision as float64 and stay text.
const maxExactFloat = 1 << 53

// InferValue converts one CSV cell: "true"/"TRUE"/"false"/"FALSE" become
// booleans, numeric text becomes float64, an empty cell becomes nil and
// anything else is returned unchanged.
func InferValue(s string) any {
	switch s {
	case "":
		return nil
	case "true", "TRUE":
		return true
	case "false", "FALSE":
		return false
	}

	if floatPattern.MatchString(s) {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err == nil && f > -maxExactFloat && f < maxExactFloat {
			return f
		}
	}
	return s
}
