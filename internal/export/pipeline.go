package export

import (
	"context"
	"fmt"
)

// ── Conversion Pipeline ─────────────────────────────────────
// Orchestrates: fetch → payload decode → CSV encode → CSV decode.

// Converter is the fetch+convert capability every presentation of the
// export (desktop UI, MCP tools, CLI, scheduled jobs) is built on.
type Converter interface {
	Run(ctx context.Context, url string) (*Result, error)
}

// Pipeline is the Converter backed by a Fetcher and a PayloadDecoder.
type Pipeline struct {
	Fetcher Fetcher
	Decoder PayloadDecoder
}

// NewPipeline returns a pipeline reading over HTTP with the given payload format.
func NewPipeline(fetcher Fetcher, format PayloadFormat) (*Pipeline, error) {
	dec, err := NewPayloadDecoder(format)
	if err != nil {
		return nil, err
	}
	if fetcher == nil {
		fetcher = NewHTTPFetcher(nil)
	}
	return &Pipeline{Fetcher: fetcher, Decoder: dec}, nil
}

// Run fetches url and converts the body.
func (p *Pipeline) Run(ctx context.Context, url string) (*Result, error) {
	raw, err := p.Fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return p.Convert(raw)
}

// Convert turns a raw export body into the canonical CSV text and its
// decoded table. Zero documents yields ErrEmptyResult.
func (p *Pipeline) Convert(raw []byte) (*Result, error) {
	docs, err := p.Decoder.Decode(raw)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrEmptyResult
	}

	text, err := EncodeDocuments(docs, nil)
	if err != nil {
		return nil, fmt.Errorf("encode csv: %w", err)
	}

	table, err := DecodeCSV(text)
	if err != nil {
		return nil, err
	}
	return &Result{Table: *table, CSV: text}, nil
}
