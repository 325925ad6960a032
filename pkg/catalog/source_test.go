package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/HerbHall/cinelens/pkg/models"
)

func newRemoteServer(t *testing.T, failPath string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/lenses.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"l1","display_name":"L1","focal_length":35},{"id":""}]`))
	})
	mux.HandleFunc("/cameras.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"cameras":[{"id":"c1","model":"Alexa"}]}`))
	})
	mux.HandleFunc("/recording_formats.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"f1","camera_id":"c1","recording_width_mm":36,"recording_height_mm":24}]`))
	})
	mux.HandleFunc("/rentals.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"r1","name":"House"}]`))
	})
	mux.HandleFunc("/inventory.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"rental_id":"r1","lens_id":"l1"}]`))
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == failPath {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRemoteSource_Load(t *testing.T) {
	srv := newRemoteServer(t, "")
	src := NewRemoteSource(srv.URL+"/", 5*time.Second)

	snap, rep, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snap.Lenses) != 1 || snap.Lenses[0].FocalLength != "35" {
		t.Errorf("lenses = %+v", snap.Lenses)
	}
	if rep.DroppedLenses != 1 {
		t.Errorf("DroppedLenses = %d, want 1", rep.DroppedLenses)
	}
	if len(snap.Cameras) != 1 || len(snap.RecordingFormats) != 1 || len(snap.Rentals) != 1 || len(snap.Inventory) != 1 {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.RecordingFormats[0].RecordingWidthMm != "36" {
		t.Errorf("RecordingWidthMm = %q, want 36", snap.RecordingFormats[0].RecordingWidthMm)
	}
}

func TestRemoteSource_EndpointFailure(t *testing.T) {
	srv := newRemoteServer(t, "/rentals.json")
	src := NewRemoteSource(srv.URL, 5*time.Second)

	if _, _, err := src.Load(context.Background()); err == nil {
		t.Fatal("expected error when an endpoint fails")
	}
}

func TestFileSource_JSONAndYAML(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "catalog.json")
	if err := os.WriteFile(jsonPath, []byte(`{"lenses":[{"id":"j","focal_length":24}]}`), 0o600); err != nil {
		t.Fatal(err)
	}
	yamlPath := filepath.Join(dir, "catalog.yml")
	if err := os.WriteFile(yamlPath, []byte("lenses:\n  - id: y\n    focal_length: 85\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	for _, tc := range []struct {
		path, id, focal string
	}{
		{jsonPath, "j", "24"},
		{yamlPath, "y", "85"},
	} {
		snap, _, err := FileSource{Path: tc.path}.Load(context.Background())
		if err != nil {
			t.Fatalf("Load(%s): %v", tc.path, err)
		}
		if len(snap.Lenses) != 1 || snap.Lenses[0].ID != tc.id || snap.Lenses[0].FocalLength != tc.focal {
			t.Errorf("Load(%s) lenses = %+v", tc.path, snap.Lenses)
		}
	}
}

func TestFileSource_Missing(t *testing.T) {
	_, _, err := FileSource{Path: filepath.Join(t.TempDir(), "nope.yaml")}.Load(context.Background())
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestRefresher_KeepsPreviousOnFailure(t *testing.T) {
	cat := NewCatalogFrom(Snapshot{Lenses: []models.Lens{{ID: "keep"}}})
	var calls int
	ref := NewRefresher(cat, FileSource{Path: filepath.Join(t.TempDir(), "missing.json")}, zap.NewNop(),
		func(_ string, _ Snapshot, _ DecodeReport, err error) {
			calls++
			if err == nil {
				t.Error("expected reload error to be reported")
			}
		})

	if err := ref.Reload(context.Background()); err == nil {
		t.Fatal("expected Reload error")
	}
	if calls != 1 {
		t.Errorf("onReload calls = %d, want 1", calls)
	}
	lenses, _ := cat.Lenses()
	if len(lenses) != 1 || lenses[0].ID != "keep" {
		t.Errorf("lenses = %+v, want previous snapshot", lenses)
	}
}

func TestRefresher_ReloadInstalls(t *testing.T) {
	cat := NewCatalogFrom(Snapshot{})
	ref := NewRefresher(cat, EmbeddedSource{}, zap.NewNop(), nil)

	if err := ref.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	lenses, _ := cat.Lenses()
	if len(lenses) == 0 {
		t.Error("expected embedded lenses after reload")
	}
}

func TestWatch_TriggersOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	if err := os.WriteFile(path, []byte("lenses: []\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, 20*time.Millisecond, func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("lenses:\n  - id: new\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not report change")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch returned %v", err)
	}
}
