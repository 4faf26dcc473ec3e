package export

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ── Record ─────────────────────────────────────────────────
// Documents come in from the export endpoint, Records come out of the
// CSV decoder. The CSV text in between is the canonical form: the column
// toggles and the final download are both derived from it.

// Document is one entity emitted by the export endpoint.
// Key order is preserved so the CSV header follows the source.
type Document = orderedmap.OrderedMap[string, any]

// NewDocument returns an empty Document.
func NewDocument() *Document {
	return orderedmap.New[string, any]()
}

// Keys returns the document's keys in source order.
func Keys(doc *Document) []string {
	keys := make([]string, 0, doc.Len())
	for pair := doc.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Record is a single decoded CSV row keyed by field name.
type Record map[string]any

// Table is the decoded CSV: ordered field names and rows.
type Table struct {
	Fields []string `json:"fields"`
	Rows   []Record `json:"rows"`
}

// Result is the output of one pipeline run.
// CSV is the canonical text the table was decoded from.
type Result struct {
	Table
	CSV string `json:"csv"`
}
