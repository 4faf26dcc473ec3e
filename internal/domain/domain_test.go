package domain_test

import (
	"reflect"
	"testing"

	"sanitycsv/internal/domain"
)

func TestParsePageRoute(t *testing.T) {
	cases := []struct {
		path       string
		want       domain.PageRoute
		exportable bool
	}{
		{"/studio/structure/movie", domain.PageRoute{PageType: "structure", ContentName: "movie"}, true},
		{"/studio/structure/movie;abc123", domain.PageRoute{PageType: "structure", ContentName: "movie"}, true},
		{"/studio/structure/movie/edit?x=1#top", domain.PageRoute{PageType: "structure", ContentName: "movie"}, true},
		{"/studio/structure", domain.PageRoute{PageType: "structure"}, false},
		{"/studio/vision/movie", domain.PageRoute{PageType: "vision", ContentName: "movie"}, false},
		{"/studio", domain.PageRoute{}, false},
		{"", domain.PageRoute{}, false},
	}
	for _, c := range cases {
		got := domain.ParsePageRoute(c.path)
		if got != c.want {
			t.Errorf("%q: got %+v, want %+v", c.path, got, c.want)
		}
		if got.Exportable() != c.exportable {
			t.Errorf("%q: Exportable() = %v", c.path, got.Exportable())
		}
	}
}

func TestParsePosition(t *testing.T) {
	if p, err := domain.ParsePosition(""); err != nil || p != domain.PositionTopRight {
		t.Errorf("empty: got %q, %v", p, err)
	}
	if p, err := domain.ParsePosition("bottom-left"); err != nil || p != domain.PositionBottomLeft {
		t.Errorf("bottom-left: got %q, %v", p, err)
	}
	if _, err := domain.ParsePosition("center"); err == nil {
		t.Error("expected error for center")
	}
}

func TestFields(t *testing.T) {
	fields := domain.NewFields([]string{"_id", "title", "year"})
	for _, f := range fields {
		if !f.Selected {
			t.Fatalf("%s should start selected", f.Name)
		}
	}
	fields[1].Selected = false
	if got := domain.SelectedNames(fields); !reflect.DeepEqual(got, []string{"_id", "year"}) {
		t.Errorf("SelectedNames = %v", got)
	}
	if got := domain.SelectedNames(nil); got == nil || len(got) != 0 {
		t.Errorf("SelectedNames(nil) = %#v", got)
	}
}

func TestParseSinkDriver(t *testing.T) {
	for _, d := range []string{"mysql", "postgres", "mongodb", "sqlite"} {
		if _, err := domain.ParseSinkDriver(d); err != nil {
			t.Errorf("%s: %v", d, err)
		}
	}
	if _, err := domain.ParseSinkDriver("oracle"); err == nil {
		t.Error("expected error for oracle")
	}
}

func TestSinkConnection_SecretKey(t *testing.T) {
	c := domain.SinkConnection{Name: "warehouse"}
	if got := c.SecretKey(); got != "sink:warehouse" {
		t.Errorf("SecretKey = %q", got)
	}
}
