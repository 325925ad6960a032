package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

func TestLogger_NotNil(t *testing.T) {
	l := Logger()
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestNewStore_Usable(t *testing.T) {
	db := NewStore(t)
	if db == nil {
		t.Fatal("expected non-nil store")
	}
	if err := db.DB().PingContext(context.Background()); err != nil {
		t.Fatalf("PingContext: %v", err)
	}
}

func TestClock_Advance(t *testing.T) {
	c := NewClock()
	start := c.Now()
	c.Advance(5 * time.Minute)
	if got := c.Now().Sub(start); got != 5*time.Minute {
		t.Errorf("Advance: elapsed = %v, want 5m", got)
	}
}

func TestClock_Set(t *testing.T) {
	c := NewClock()
	target := time.Date(2030, 6, 15, 12, 0, 0, 0, time.UTC)
	c.Set(target)
	if !c.Now().Equal(target) {
		t.Errorf("Set: got %v, want %v", c.Now(), target)
	}
}

func TestNewLens_Defaults(t *testing.T) {
	l := NewLens()
	if l.ID == "" {
		t.Error("expected non-empty ID")
	}
	if l.FocalLength != "50mm" {
		t.Errorf("FocalLength = %q, want 50mm", l.FocalLength)
	}
}

func TestNewLens_WithOptions(t *testing.T) {
	l := NewLens(WithID("x"), WithManufacturer("Cooke"), WithFormat("S35"))
	if l.ID != "x" {
		t.Errorf("ID = %q, want x", l.ID)
	}
	if l.Manufacturer != "Cooke" {
		t.Errorf("Manufacturer = %q, want Cooke", l.Manufacturer)
	}
	if l.Format != "S35" || l.LensFormatCategory != "S35" {
		t.Errorf("Format = %q/%q, want S35/S35", l.Format, l.LensFormatCategory)
	}
}

func TestRandomLenses_Reproducible(t *testing.T) {
	a := RandomLenses(gofakeit.New(7), 20)
	b := RandomLenses(gofakeit.New(7), 20)
	if len(a) != 20 {
		t.Fatalf("len = %d, want 20", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("lens %d differs between identical seeds", i)
		}
	}
}

func TestNewSnapshot_Consistent(t *testing.T) {
	snap := NewSnapshot()
	ids := make(map[string]bool)
	for _, l := range snap.Lenses {
		ids[l.ID] = true
	}
	for _, it := range snap.Inventory {
		if !ids[it.LensID] {
			t.Errorf("inventory references unknown lens %q", it.LensID)
		}
	}
}
