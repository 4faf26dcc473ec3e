package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/buger/jsonparser"
)

// ── Payload decoding ────────────────────────────────────────
// The export endpoint streams one JSON object per line. Two decoders
// turn that body into Documents:
//
//   ndjson  decodes successive JSON values as a stream (default)
//   repair  strips whitespace, inserts "," between "}{" and wraps in []

// PayloadFormat selects a PayloadDecoder.
type PayloadFormat string

const (
	FormatNDJSON PayloadFormat = "ndjson"
	FormatRepair PayloadFormat = "repair"
)

// PayloadDecoder turns a raw response body into documents.
type PayloadDecoder interface {
	Decode(raw []byte) ([]*Document, error)
}

// NewPayloadDecoder returns the decoder for format. Empty means ndjson.
func NewPayloadDecoder(format PayloadFormat) (PayloadDecoder, error) {
	switch format {
	case "", FormatNDJSON:
		return StreamDecoder{}, nil
	case FormatRepair:
		return RepairDecoder{}, nil
	default:
		return nil, fmt.Errorf("unknown payload format %q", format)
	}
}

// StreamDecoder reads successive JSON values, with or without newlines
// between them. A top-level array is flattened into its elements.
// String contents are never rewritten.
type StreamDecoder struct{}

func (StreamDecoder) Decode(raw []byte) ([]*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	docs := []*Document{}
	for {
		var msg json.RawMessage
		err := dec.Decode(&msg)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &MalformedPayloadError{Err: err}
		}

		if firstByte(msg) == '[' {
			items, err := decodeArray(msg)
			if err != nil {
				return nil, err
			}
			docs = append(docs, items...)
			continue
		}

		doc, err := parseDocument(msg)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// RepairDecoder applies RepairJSON and decodes the resulting array.
// It breaks on string values that contain whitespace or "}{".
type RepairDecoder struct{}

func (RepairDecoder) Decode(raw []byte) ([]*Document, error) {
	repaired := []byte(RepairJSON(string(raw)))
	if !json.Valid(repaired) {
		// Unmarshal once more to surface the syntax error position.
		var v any
		err := json.Unmarshal(repaired, &v)
		if err == nil {
			err = errors.New("invalid json")
		}
		return nil, &MalformedPayloadError{Err: err}
	}
	return decodeArray(repaired)
}

// RepairJSON normalizes concatenated JSON objects into one JSON array text:
// every whitespace character is removed, each "}{" becomes "},{" and the
// result is wrapped in brackets. An empty body becomes "[]".
func RepairJSON(raw string) string {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '\uFEFF' {
			return -1
		}
		return r
	}, raw)
	return "[" + strings.ReplaceAll(stripped, "}{", "},{") + "]"
}

// decodeArray parses every element of a JSON array as a Document.
func decodeArray(data []byte) ([]*Document, error) {
	docs := []*Document{}
	var firstErr error
	_, err := jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
		if firstErr != nil {
			return
		}
		if err != nil {
			firstErr = err
			return
		}
		if dataType != jsonparser.Object {
			firstErr = fmt.Errorf("element %d: expected object, got %s", len(docs), dataType)
			return
		}
		doc, err := parseDocument(value)
		if err != nil {
			firstErr = err
			return
		}
		docs = append(docs, doc)
	})
	if err == nil {
		err = firstErr
	}
	if err != nil {
		var mpe *MalformedPayloadError
		if errors.As(err, &mpe) {
			return nil, err
		}
		return nil, &MalformedPayloadError{Err: err}
	}
	return docs, nil
}

// parseDocument decodes one JSON object, keeping key order.
func parseDocument(raw []byte) (*Document, error) {
	if firstByte(raw) != '{' {
		return nil, &MalformedPayloadError{Err: fmt.Errorf("expected object, got %.20q", raw)}
	}
	doc := NewDocument()
	if err := doc.UnmarshalJSON(raw); err != nil {
		return nil, &MalformedPayloadError{Err: err}
	}
	if err := keepNestedRaw(doc, raw); err != nil {
		return nil, &MalformedPayloadError{Err: err}
	}
	return doc, nil
}

// keepNestedRaw replaces nested objects and arrays with their source text,
// so their keys are written back in the order they arrived.
func keepNestedRaw(doc *Document, raw []byte) error {
	return jsonparser.ObjectEach(raw, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		if dataType != jsonparser.Object && dataType != jsonparser.Array {
			return nil
		}
		name, err := jsonparser.ParseString(key)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, value); err != nil {
			return err
		}
		doc.Set(name, json.RawMessage(buf.Bytes()))
		return nil
	})
}

func firstByte(b []byte) byte {
	b = bytes.TrimLeft(b, " \t\r\n")
	if len(b) == 0 {
		return 0
	}
	return b[0]
}
