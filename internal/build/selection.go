// Package build owns the package-builder workflow: the add-on selection
// model with derived locking, local request validation, build submission,
// fixed-interval status polling, and artifact download.
package build

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/devplatform/dpcli/internal/api"
)

// System names of the add-ons forced-selected by the TLS and Keycloak
// toggles. Matching is by the add-on's immutable system name, the stable
// join key of the catalog.
const (
	TLSAddonName      = "cert-manager"
	KeycloakAddonName = "keycloak"
)

// Toggles are the dependent-field switches of the builder.
type Toggles struct {
	TLS      bool
	Keycloak bool
}

// Locks derives the set of locked-selected add-on ids from the current
// toggle state and the catalog. It is a pure function: locking is
// recomputed on every interaction, never stored, so toggle state and lock
// state cannot diverge.
func Locks(t Toggles, catalog []api.Addon) map[int64]bool {
	locked := map[int64]bool{}
	for _, a := range catalog {
		name := strings.TrimSpace(a.Name)
		if t.TLS && name == TLSAddonName {
			locked[a.ID] = true
		}
		if t.Keycloak && name == KeycloakAddonName {
			locked[a.ID] = true
		}
	}
	return locked
}

// Selection is the builder's selection state over one catalog snapshot:
// which add-ons are picked and which explicit version (if any) each one
// uses. The zero value is unusable; construct with NewSelection.
type Selection struct {
	catalog  []api.Addon
	selected map[int64]bool
	versions map[int64]string
	toggles  Toggles
}

// NewSelection builds an empty selection over the catalog.
func NewSelection(catalog []api.Addon) *Selection {
	return &Selection{
		catalog:  catalog,
		selected: map[int64]bool{},
		versions: map[int64]string{},
	}
}

// Catalog returns the catalog snapshot the selection operates on.
func (s *Selection) Catalog() []api.Addon { return s.catalog }

// Toggles returns the current toggle state.
func (s *Selection) Toggles() Toggles { return s.toggles }

// Locked reports whether the add-on is locked-selected by a toggle.
func (s *Selection) Locked(id int64) bool {
	return Locks(s.toggles, s.catalog)[id]
}

// Selected reports whether the add-on is currently selected.
func (s *Selection) Selected(id int64) bool { return s.selected[id] }

// Count returns the number of selected add-ons.
func (s *Selection) Count() int {
	n := 0
	for _, v := range s.selected {
		if v {
			n++
		}
	}
	return n
}

// SetTLS switches the TLS toggle. Turning it on forces the cert-manager
// add-on selected; turning it off releases the lock but does not deselect.
func (s *Selection) SetTLS(on bool) {
	s.toggles.TLS = on
	s.applyLocks()
}

// SetKeycloak switches the Keycloak-SSO toggle with the same lock
// semantics as SetTLS, targeting the keycloak add-on.
func (s *Selection) SetKeycloak(on bool) {
	s.toggles.Keycloak = on
	s.applyLocks()
}

func (s *Selection) applyLocks() {
	for id := range Locks(s.toggles, s.catalog) {
		s.selected[id] = true
	}
}

// Toggle flips one add-on's selection. Deselecting a locked add-on is a
// no-op; the return value reports whether the selection changed.
func (s *Selection) Toggle(id int64) bool {
	if s.selected[id] && s.Locked(id) {
		return false
	}
	s.selected[id] = !s.selected[id]
	return true
}

// SelectAll toggles the whole catalog: when every add-on is already
// selected it deselects all of them except the locked ones, otherwise it
// selects everything.
func (s *Selection) SelectAll() {
	all := true
	for _, a := range s.catalog {
		if !s.selected[a.ID] {
			all = false
			break
		}
	}
	locked := Locks(s.toggles, s.catalog)
	for _, a := range s.catalog {
		if all && !locked[a.ID] {
			s.selected[a.ID] = false
		} else {
			s.selected[a.ID] = true
		}
	}
}

// SetVersion pins an explicit version for one add-on. Empty means "latest
// (automatic)", resolved by the backend at build time.
func (s *Selection) SetVersion(id int64, version string) {
	if strings.TrimSpace(version) == "" {
		delete(s.versions, id)
		return
	}
	s.versions[id] = version
}

// Version returns the pinned version for an add-on, or "" for latest.
func (s *Selection) Version(id int64) string { return s.versions[id] }

// SelectedAddons materializes the selection for a build request, ordered by
// install order then system name so identical selections always serialize
// identically.
func (s *Selection) SelectedAddons() []api.SelectedAddon {
	picked := make([]api.Addon, 0, len(s.catalog))
	for _, a := range s.catalog {
		if s.selected[a.ID] {
			picked = append(picked, a)
		}
	}
	sort.Slice(picked, func(i, j int) bool {
		if picked[i].InstallOrder != picked[j].InstallOrder {
			return picked[i].InstallOrder < picked[j].InstallOrder
		}
		return picked[i].Name < picked[j].Name
	})
	out := make([]api.SelectedAddon, 0, len(picked))
	for _, a := range picked {
		out = append(out, api.SelectedAddon{
			AddonID:   a.ID,
			AddonName: a.Name,
			Version:   s.versions[a.ID],
		})
	}
	return out
}

// FindByName returns the catalog entry with the given system name.
func (s *Selection) FindByName(name string) (api.Addon, bool) {
	name = strings.TrimSpace(name)
	for _, a := range s.catalog {
		if a.Name == name {
			return a, true
		}
	}
	return api.Addon{}, false
}

// VersionLoader fetches the version history of one add-on.
type VersionLoader func(ctx context.Context, addonID int64) ([]api.AddonVersion, error)

// VersionCache lazily loads and caches per-add-on version lists for the
// lifetime of one builder session. Failed loads are not cached so a later
// retry can succeed.
type VersionCache struct {
	load VersionLoader

	mu    sync.Mutex
	cache map[int64][]api.AddonVersion
}

// NewVersionCache wraps a loader with a session cache.
func NewVersionCache(load VersionLoader) *VersionCache {
	return &VersionCache{load: load, cache: map[int64][]api.AddonVersion{}}
}

// Get returns the cached version list for an add-on, loading it on first
// use.
func (vc *VersionCache) Get(ctx context.Context, addonID int64) ([]api.AddonVersion, error) {
	vc.mu.Lock()
	if vs, ok := vc.cache[addonID]; ok {
		vc.mu.Unlock()
		return vs, nil
	}
	vc.mu.Unlock()

	vs, err := vc.load(ctx, addonID)
	if err != nil {
		return nil, err
	}
	vc.mu.Lock()
	vc.cache[addonID] = vs
	vc.mu.Unlock()
	return vs, nil
}
