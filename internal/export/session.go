package export

import (
	"context"
	"sync"

	"sanitycsv/internal/domain"
)

// ── Session ────────────────────────────────────────────────
// Column-selection state for one content type.
//
//   idle ──Fetch──▶ loading ──ok──▶ ready ──Reset──▶ idle
//                      └──empty/error──▶ idle
//
// Toggle and Download are only meaningful in ready and never change state.

// State is the session's position in the export flow.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
)

// Snapshot is a copy of the session for rendering.
type Snapshot struct {
	State  State          `json:"state"`
	Fields []domain.Field `json:"fields"`
	Rows   []Record       `json:"rows"`
	CSV    string         `json:"csv"`
}

// Session holds the fields, rows and canonical CSV of one fetch cycle.
type Session struct {
	conv Converter

	mu     sync.Mutex
	state  State
	fields []domain.Field
	rows   []Record
	csv    string
}

// NewSession returns an idle session converting through c.
func NewSession(c Converter) *Session {
	return &Session{conv: c, state: StateIdle}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Fetch runs the converter against url. Only allowed while idle.
// On success every field starts selected; on failure or an empty
// result the session returns to idle with nothing committed.
func (s *Session) Fetch(ctx context.Context, url string) error {
	s.mu.Lock()
	if s.state != StateIdle {
		err := &StateError{State: s.state, Event: "fetch"}
		s.mu.Unlock()
		return err
	}
	s.state = StateLoading
	s.mu.Unlock()

	res, err := s.conv.Run(ctx, url)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateIdle
		return err
	}
	s.fields = domain.NewFields(res.Fields)
	s.rows = res.Rows
	s.csv = res.CSV
	s.state = StateReady
	return nil
}

// Toggle flips the selection of the field at index i.
// An out-of-range index is ignored.
func (s *Session) Toggle(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return &StateError{State: s.state, Event: "toggle"}
	}
	if i < 0 || i >= len(s.fields) {
		return nil
	}
	s.fields[i].Selected = !s.fields[i].Selected
	return nil
}

// SetSelected selects exactly the named fields. Unknown names are ignored.
func (s *Session) SetSelected(names []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return &StateError{State: s.state, Event: "select fields"}
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	for i := range s.fields {
		s.fields[i].Selected = want[s.fields[i].Name]
	}
	return nil
}

// Reset drops fields, rows and csv together. A no-op when idle.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateIdle:
		return nil
	case StateLoading:
		return &StateError{State: s.state, Event: "reset"}
	}
	s.fields = nil
	s.rows = nil
	s.csv = ""
	s.state = StateIdle
	return nil
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		State:  s.state,
		Fields: append([]domain.Field{}, s.fields...),
		Rows:   s.rows,
		CSV:    s.csv,
	}
	if snap.Rows == nil {
		snap.Rows = []Record{}
	}
	return snap
}

// Render re-encodes the rows restricted to the selected fields.
func (s *Session) Render() (string, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return "", 0, &StateError{State: s.state, Event: "download"}
	}
	selected := domain.SelectedNames(s.fields)
	if len(selected) == 0 {
		return "", 0, ErrNoFieldsSelected
	}
	text, err := EncodeRecords(s.rows, selected)
	if err != nil {
		return "", 0, err
	}
	return text, len(s.rows), nil
}

// Selected returns the names of the selected fields.
func (s *Session) Selected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.SelectedNames(s.fields)
}

// Download renders the selected columns and hands {contentName}.csv to saver.
// It returns the saved path (empty when the save was cancelled) and the row count.
func (s *Session) Download(ctx context.Context, saver Saver, contentName string) (string, int, error) {
	text, n, err := s.Render()
	if err != nil {
		return "", 0, err
	}
	path, err := saver.Save(ctx, File{
		Name:     contentName + ".csv",
		MimeType: CSVMimeType,
		Data:     []byte(text),
	})
	if err != nil {
		return "", 0, err
	}
	return path, n, nil
}
