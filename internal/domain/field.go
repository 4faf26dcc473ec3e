package domain

// Field is one CSV column discovered from the header of an export,
// with a user-toggleable inclusion flag.
type Field struct {
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
}

// NewFields builds the field list for a fresh export. Every column starts selected.
func NewFields(names []string) []Field {
	fields := make([]Field, len(names))
	for i, n := range names {
		fields[i] = Field{Name: n, Selected: true}
	}
	return fields
}

// SelectedNames returns the names of the selected fields, in column order.
func SelectedNames(fields []Field) []string {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.Selected {
			names = append(names, f.Name)
		}
	}
	return names
}
