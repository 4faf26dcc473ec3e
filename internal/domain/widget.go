package domain

import "fmt"

// Position is the corner of the studio the widget is pinned to.
type Position string

const (
	PositionTopLeft     Position = "top-left"
	PositionTopRight    Position = "top-right"
	PositionBottomLeft  Position = "bottom-left"
	PositionBottomRight Position = "bottom-right"
)

// ParsePosition validates a position name. An empty string yields the default.
func ParsePosition(s string) (Position, error) {
	switch p := Position(s); p {
	case "":
		return PositionTopRight, nil
	case PositionTopLeft, PositionTopRight, PositionBottomLeft, PositionBottomRight:
		return p, nil
	default:
		return "", fmt.Errorf("unknown position %q", s)
	}
}

// WidgetClasses holds class-name overrides for every part of the widget.
// The frontend appends them to its own classes.
type WidgetClasses struct {
	Root         string        `json:"root,omitempty" yaml:"root"`
	ExportButton string        `json:"exportButton,omitempty" yaml:"export_button"`
	Columns      ColumnClasses `json:"columns" yaml:"columns"`
}

// ColumnClasses styles the column-selection panel.
type ColumnClasses struct {
	Root    string        `json:"root,omitempty" yaml:"root"`
	Title   TitleClasses  `json:"title" yaml:"title"`
	Badges  BadgeClasses  `json:"badges" yaml:"badges"`
	Buttons ButtonClasses `json:"buttons" yaml:"buttons"`
}

type TitleClasses struct {
	Root     string `json:"root,omitempty" yaml:"root"`
	Text     string `json:"text,omitempty" yaml:"text"`
	Subtitle string `json:"subtitle,omitempty" yaml:"subtitle"`
}

type BadgeClasses struct {
	Root           string `json:"root,omitempty" yaml:"root"`
	ActiveButton   string `json:"activeButton,omitempty" yaml:"active_button"`
	InactiveButton string `json:"inactiveButton,omitempty" yaml:"inactive_button"`
	DefaultButton  string `json:"defaultButton,omitempty" yaml:"default_button"`
}

type ButtonClasses struct {
	Root     string `json:"root,omitempty" yaml:"root"`
	Download string `json:"download,omitempty" yaml:"download"`
	Cancel   string `json:"cancel,omitempty" yaml:"cancel"`
}

// WidgetSettings is everything the frontend needs to render the widget.
type WidgetSettings struct {
	ProjectID       string        `json:"projectId"`
	APIVersion      string        `json:"apiVersion"`
	Dataset         string        `json:"dataset"`
	Position        Position      `json:"position"`
	BackgroundColor string        `json:"backgroundColor"`
	Classes         WidgetClasses `json:"classes"`
}
