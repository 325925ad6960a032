package catalog_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/HerbHall/cinelens/internal/catalog"
	"github.com/HerbHall/cinelens/internal/testutil"
	pkgcatalog "github.com/HerbHall/cinelens/pkg/catalog"
)

type stubReloader struct {
	cat   *pkgcatalog.Catalog
	err   error
	calls int
}

func (s *stubReloader) Reload(_ context.Context) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	snap := testutil.NewSnapshot()
	snap.Lenses = snap.Lenses[:1]
	s.cat.Replace(snap)
	return nil
}

func setupHandler(t *testing.T) (*http.ServeMux, *stubReloader) {
	t.Helper()
	cat := pkgcatalog.NewCatalogFrom(testutil.NewSnapshot())
	reloader := &stubReloader{cat: cat}
	h := catalog.NewHandler(catalog.NewEngine(cat), reloader, zap.NewNop())
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return mux, reloader
}

func doRequest(mux *http.ServeMux, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, http.NoBody)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestHandleListLenses(t *testing.T) {
	mux, _ := setupHandler(t)

	w := doRequest(mux, "GET", "/api/v1/catalog/lenses?format=S35&focal=wide")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var resp catalog.LensListResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Decode response: %v", err)
	}
	if resp.Count != 2 || len(resp.Lenses) != 2 {
		t.Fatalf("Count = %d, want 2", resp.Count)
	}
	if resp.Lenses[0].ID != "opt-24-290" {
		t.Errorf("first lens = %q, want opt-24-290", resp.Lenses[0].ID)
	}
}

func TestHandleListLenses_BadCriteria(t *testing.T) {
	mux, _ := setupHandler(t)

	for _, path := range []string{
		"/api/v1/catalog/lenses?focal=fisheye",
		"/api/v1/catalog/lenses?lens_format=imax",
		"/api/v1/catalog/groups?rentable=perhaps",
	} {
		w := doRequest(mux, "GET", path)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s status = %d, want %d", path, w.Code, http.StatusBadRequest)
		}
		if ct := w.Header().Get("Content-Type"); ct != "application/problem+json" {
			t.Errorf("%s Content-Type = %q, want application/problem+json", path, ct)
		}
	}
}

func TestHandleListGroups(t *testing.T) {
	mux, _ := setupHandler(t)

	w := doRequest(mux, "GET", "/api/v1/catalog/groups")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var resp catalog.GroupListResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Decode response: %v", err)
	}
	if resp.Count != 2 {
		t.Fatalf("Count = %d, want 2", resp.Count)
	}
	if resp.Groups[0].Manufacturer != "Angénieux" || resp.Groups[1].Manufacturer != "ARRI" {
		t.Errorf("groups = %q, %q; want Angénieux, ARRI", resp.Groups[0].Manufacturer, resp.Groups[1].Manufacturer)
	}
}

func TestHandleGetLens(t *testing.T) {
	mux, _ := setupHandler(t)

	w := doRequest(mux, "GET", "/api/v1/catalog/lenses/sp-18")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var resp catalog.LensDetailResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Decode response: %v", err)
	}
	if resp.FocalCategory != catalog.FocalWide {
		t.Errorf("FocalCategory = %q, want wide", resp.FocalCategory)
	}
	if resp.LensFormatCategory != catalog.LensFormatLF {
		t.Errorf("LensFormatCategory = %q, want lf", resp.LensFormatCategory)
	}
	if len(resp.Rentals) != 2 {
		t.Errorf("Rentals = %d, want 2", len(resp.Rentals))
	}

	w = doRequest(mux, "GET", "/api/v1/catalog/lenses/missing")
	if w.Code != http.StatusNotFound {
		t.Errorf("missing lens status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestHandleCameraRoutes(t *testing.T) {
	mux, _ := setupHandler(t)

	tests := []struct {
		path string
		want int
	}{
		{"/api/v1/catalog/cameras", http.StatusOK},
		{"/api/v1/catalog/cameras/mini-lf", http.StatusOK},
		{"/api/v1/catalog/cameras/mini-lf/formats", http.StatusOK},
		{"/api/v1/catalog/cameras/nope", http.StatusNotFound},
		{"/api/v1/catalog/cameras/nope/formats", http.StatusNotFound},
		{"/api/v1/catalog/formats", http.StatusOK},
		{"/api/v1/catalog/rentals", http.StatusOK},
		{"/api/v1/catalog/rentals/north/lenses", http.StatusOK},
		{"/api/v1/catalog/rentals/nope/lenses", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if w := doRequest(mux, "GET", tt.path); w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestHandleCompatibility(t *testing.T) {
	mux, _ := setupHandler(t)

	w := doRequest(mux, "GET", "/api/v1/catalog/compatibility?lens=sp-18&format=lf-og")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var one catalog.FormatVerdict
	if err := json.NewDecoder(w.Body).Decode(&one); err != nil {
		t.Fatalf("Decode response: %v", err)
	}
	if one.Verdict.Status != catalog.CompatibilityFullCoverage {
		t.Errorf("Status = %q, want full_coverage", one.Verdict.Status)
	}

	w = doRequest(mux, "GET", "/api/v1/catalog/compatibility?lens=sp-18&camera=mini-lf")
	if w.Code != http.StatusOK {
		t.Fatalf("camera status = %d, want %d", w.Code, http.StatusOK)
	}
	var many []catalog.FormatVerdict
	if err := json.NewDecoder(w.Body).Decode(&many); err != nil {
		t.Fatalf("Decode response: %v", err)
	}
	if len(many) != 2 {
		t.Errorf("verdicts = %d, want 2", len(many))
	}

	for path, want := range map[string]int{
		"/api/v1/catalog/compatibility":                     http.StatusBadRequest,
		"/api/v1/catalog/compatibility?lens=sp-18":          http.StatusBadRequest,
		"/api/v1/catalog/compatibility?lens=x&format=lf-og": http.StatusNotFound,
	} {
		if w := doRequest(mux, "GET", path); w.Code != want {
			t.Errorf("%s status = %d, want %d", path, w.Code, want)
		}
	}
}

func TestHandleReload(t *testing.T) {
	mux, reloader := setupHandler(t)

	w := doRequest(mux, "POST", "/api/v1/catalog/reload")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var counts map[string]int
	if err := json.NewDecoder(w.Body).Decode(&counts); err != nil {
		t.Fatalf("Decode response: %v", err)
	}
	if counts["lenses"] != 1 {
		t.Errorf("lenses after reload = %d, want 1", counts["lenses"])
	}

	reloader.err = errors.New("upstream down")
	w = doRequest(mux, "POST", "/api/v1/catalog/reload")
	if w.Code != http.StatusBadGateway {
		t.Errorf("failed reload status = %d, want %d", w.Code, http.StatusBadGateway)
	}
	if reloader.calls != 2 {
		t.Errorf("reload calls = %d, want 2", reloader.calls)
	}
}

func TestReloadRouteOptional(t *testing.T) {
	h := catalog.NewHandler(catalog.NewEngine(pkgcatalog.NewCatalogFrom(pkgcatalog.Snapshot{})), nil, zap.NewNop())
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	if w := doRequest(mux, "POST", "/api/v1/catalog/reload"); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
