package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ── CSV Encoder ─────────────────────────────────────────────
// String values are always quoted, numbers and booleans are bare, null
// or missing values are empty cells and nested objects or arrays are
// written as compact JSON text in source key order. Lines end in CRLF,
// with no line break after the last row.
//
// The canonical text from EncodeDocuments quotes every header name. The
// download from EncodeRecords writes names bare, joined by commas, and
// only quotes a name that would otherwise break the row.

const lineBreak = "\r\n"

// EncodeDocuments renders docs as CSV. With no explicit fields the header
// is the key order of the first document.
func EncodeDocuments(docs []*Document, fields []string) (string, error) {
	header := fields
	if len(header) == 0 && len(docs) > 0 {
		header = Keys(docs[0])
	}
	return encodeTable(header, quote, len(docs), func(i int, field string) (any, bool) {
		return docs[i].Get(field)
	})
}

// EncodeRecords renders rows as CSV. With no explicit fields the header is
// the sorted key set of the first row.
func EncodeRecords(rows []Record, fields []string) (string, error) {
	header := fields
	if len(header) == 0 && len(rows) > 0 {
		header = make([]string, 0, len(rows[0]))
		for k := range rows[0] {
			header = append(header, k)
		}
		sort.Strings(header)
	}
	return encodeTable(header, headerName, len(rows), func(i int, field string) (any, bool) {
		v, ok := rows[i][field]
		return v, ok
	})
}

func encodeTable(header []string, name func(string) string, n int, value func(i int, field string) (any, bool)) (string, error) {
	var sb strings.Builder
	for j, field := range header {
		if j > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(name(field))
	}

	for i := 0; i < n; i++ {
		sb.WriteString(lineBreak)
		start := sb.Len()
		for j, name := range header {
			if j > 0 {
				sb.WriteByte(',')
			}
			v, ok := value(i, name)
			if !ok {
				continue
			}
			cell, err := formatCell(v)
			if err != nil {
				return "", fmt.Errorf("row %d field %q: %w", i, name, err)
			}
			sb.WriteString(cell)
		}
		// A lone empty cell would read back as a blank line.
		if len(header) == 1 && sb.Len() == start {
			sb.WriteString(`""`)
		}
	}
	return sb.String(), nil
}

// formatCell renders one value as a CSV cell.
func formatCell(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return quote(x), nil
	case bool:
		return strconv.FormatBool(x), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case json.Number:
		return x.String(), nil
	case json.RawMessage:
		var buf bytes.Buffer
		if err := json.Compact(&buf, x); err != nil {
			return "", fmt.Errorf("compact nested value: %w", err)
		}
		return quote(buf.String()), nil
	default:
		text, err := compactJSON(x)
		if err != nil {
			return "", err
		}
		return quote(text), nil
	}
}

func compactJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("encode nested value: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// headerName leaves a column name bare unless it holds a delimiter,
// a quote or a line break.
func headerName(s string) string {
	if s == "" || strings.ContainsAny(s, ",\"\r\n") {
		return quote(s)
	}
	return s
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
