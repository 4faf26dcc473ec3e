package domain

import "strings"

// PageType is the studio tool a route belongs to.
type PageType string

const (
	PageTypeStructure PageType = "structure"
	PageTypeVision    PageType = "vision"
)

// PageRoute is what the widget reads from the studio URL.
type PageRoute struct {
	PageType    PageType `json:"pageType"`
	ContentName string   `json:"contentName"`
}

// ParsePageRoute derives the page type and content name from a studio path
// of the form /<base>/<pageType>/<contentName>[/...].
// Query strings, fragments and ";documentId" suffixes are ignored.
func ParsePageRoute(path string) PageRoute {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	parts := strings.Split(path, "/")
	if len(parts) < 3 {
		return PageRoute{}
	}
	parts = parts[2:]

	route := PageRoute{PageType: PageType(parts[0])}
	if len(parts) > 1 {
		name, _, _ := strings.Cut(parts[1], ";")
		route.ContentName = name
	}
	return route
}

// Exportable reports whether the export widget should be shown for this route.
func (r PageRoute) Exportable() bool {
	return r.PageType == PageTypeStructure && r.ContentName != ""
}
