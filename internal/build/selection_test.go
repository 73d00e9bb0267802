package build

import (
	"context"
	"errors"
	"testing"

	"github.com/devplatform/dpcli/internal/api"
)

func testCatalog() []api.Addon {
	return []api.Addon{
		{ID: 1, Name: "cert-manager", InstallOrder: 1},
		{ID: 2, Name: "keycloak", InstallOrder: 2},
		{ID: 3, Name: "gitlab", InstallOrder: 5},
		{ID: 4, Name: "harbor", InstallOrder: 5},
	}
}

// ---------------------------------------------------------------------------
// Derived locking
// ---------------------------------------------------------------------------

func TestLocksDerivedFromToggles(t *testing.T) {
	catalog := testCatalog()

	locked := Locks(Toggles{}, catalog)
	if len(locked) != 0 {
		t.Errorf("no toggles: locked = %v", locked)
	}
	locked = Locks(Toggles{TLS: true}, catalog)
	if !locked[1] || locked[2] {
		t.Errorf("TLS toggle: locked = %v", locked)
	}
	locked = Locks(Toggles{TLS: true, Keycloak: true}, catalog)
	if !locked[1] || !locked[2] {
		t.Errorf("both toggles: locked = %v", locked)
	}
}

func TestToggleOnForcesSelection(t *testing.T) {
	s := NewSelection(testCatalog())
	s.SetTLS(true)
	if !s.Selected(1) {
		t.Error("cert-manager not selected after SetTLS(true)")
	}
	s.SetKeycloak(true)
	if !s.Selected(2) {
		t.Error("keycloak not selected after SetKeycloak(true)")
	}
}

func TestDeselectLockedIsNoop(t *testing.T) {
	s := NewSelection(testCatalog())
	s.SetTLS(true)
	if changed := s.Toggle(1); changed {
		t.Error("deselecting a locked add-on reported a change")
	}
	if !s.Selected(1) {
		t.Error("locked add-on was deselected")
	}
}

func TestToggleOffReleasesLockKeepsSelection(t *testing.T) {
	s := NewSelection(testCatalog())
	s.SetTLS(true)
	s.SetTLS(false)
	if !s.Selected(1) {
		t.Error("turning the toggle off deselected the add-on")
	}
	if s.Locked(1) {
		t.Error("add-on still locked after toggle off")
	}
	if changed := s.Toggle(1); !changed || s.Selected(1) {
		t.Error("unlocked add-on could not be deselected")
	}
}

// ---------------------------------------------------------------------------
// Select all
// ---------------------------------------------------------------------------

func TestSelectAllRoundTrip(t *testing.T) {
	s := NewSelection(testCatalog())
	s.SelectAll()
	if s.Count() != 4 {
		t.Fatalf("Count after SelectAll = %d, want 4", s.Count())
	}
	s.SelectAll()
	if s.Count() != 0 {
		t.Errorf("Count after second SelectAll = %d, want 0", s.Count())
	}
}

func TestSelectAllKeepsLocked(t *testing.T) {
	s := NewSelection(testCatalog())
	s.SetTLS(true)
	s.SelectAll()
	s.SelectAll()
	if !s.Selected(1) {
		t.Error("locked add-on deselected by SelectAll")
	}
	if s.Count() != 1 {
		t.Errorf("Count = %d, want 1 (only the locked add-on)", s.Count())
	}
}

// ---------------------------------------------------------------------------
// Materialization
// ---------------------------------------------------------------------------

func TestSelectedAddonsOrdering(t *testing.T) {
	s := NewSelection(testCatalog())
	s.Toggle(4) // harbor, order 5
	s.Toggle(3) // gitlab, order 5
	s.Toggle(1) // cert-manager, order 1
	s.SetVersion(3, "17.1.0")

	out := s.SelectedAddons()
	if len(out) != 3 {
		t.Fatalf("len = %d, want 3", len(out))
	}
	wantNames := []string{"cert-manager", "gitlab", "harbor"}
	for i, want := range wantNames {
		if out[i].AddonName != want {
			t.Errorf("out[%d] = %s, want %s", i, out[i].AddonName, want)
		}
	}
	if out[1].Version != "17.1.0" {
		t.Errorf("gitlab version = %q", out[1].Version)
	}
	if out[0].Version != "" {
		t.Errorf("cert-manager version = %q, want latest", out[0].Version)
	}
}

func TestSetVersionEmptyMeansLatest(t *testing.T) {
	s := NewSelection(testCatalog())
	s.SetVersion(3, "17.1.0")
	s.SetVersion(3, "  ")
	if v := s.Version(3); v != "" {
		t.Errorf("Version = %q, want empty", v)
	}
}

func TestFindByName(t *testing.T) {
	s := NewSelection(testCatalog())
	if ad, ok := s.FindByName(" gitlab "); !ok || ad.ID != 3 {
		t.Errorf("FindByName(gitlab) = %+v, %v", ad, ok)
	}
	if _, ok := s.FindByName("nope"); ok {
		t.Error("FindByName(nope) found something")
	}
}

// ---------------------------------------------------------------------------
// Version cache
// ---------------------------------------------------------------------------

func TestVersionCacheLoadsOnce(t *testing.T) {
	calls := 0
	vc := NewVersionCache(func(ctx context.Context, addonID int64) ([]api.AddonVersion, error) {
		calls++
		return []api.AddonVersion{{Version: "1.0.0"}}, nil
	})
	for i := 0; i < 3; i++ {
		vs, err := vc.Get(context.Background(), 3)
		if err != nil || len(vs) != 1 {
			t.Fatalf("Get: %v %v", vs, err)
		}
	}
	if calls != 1 {
		t.Errorf("loader called %d times, want 1", calls)
	}
}

func TestVersionCacheDoesNotCacheFailures(t *testing.T) {
	calls := 0
	vc := NewVersionCache(func(ctx context.Context, addonID int64) ([]api.AddonVersion, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("boom")
		}
		return []api.AddonVersion{{Version: "2.0.0"}}, nil
	})
	if _, err := vc.Get(context.Background(), 3); err == nil {
		t.Fatal("expected first load to fail")
	}
	vs, err := vc.Get(context.Background(), 3)
	if err != nil || len(vs) != 1 {
		t.Fatalf("retry failed: %v %v", vs, err)
	}
	if calls != 2 {
		t.Errorf("loader called %d times, want 2", calls)
	}
}
