package service_test

import (
	"testing"

	"sanitycsv/internal/service"
	"sanitycsv/internal/storage"
)

func TestWindowSettings(t *testing.T) {
	if got := service.NewWindowSettingsService(nil).LoadWindowSize(); got.Width != 960 || got.Height != 720 {
		t.Errorf("nil store defaults = %+v", got)
	}

	store := storage.NewSettingsStore(testDB(t))
	svc := service.NewWindowSettingsService(store)

	if got := svc.LoadWindowSize(); got.Width != 960 || got.Height != 720 {
		t.Errorf("defaults = %+v", got)
	}
	if err := svc.SaveWindowSize(1200, 900); err != nil {
		t.Fatal(err)
	}
	if got := svc.LoadWindowSize(); got.Width != 1200 || got.Height != 900 {
		t.Errorf("saved = %+v", got)
	}

	// Too small to be usable: fall back to defaults.
	svc.SaveWindowSize(100, 50)
	if got := svc.LoadWindowSize(); got.Width != 960 || got.Height != 720 {
		t.Errorf("tiny = %+v", got)
	}
}
