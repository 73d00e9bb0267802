package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/devplatform/dpcli/internal/api"
	"github.com/devplatform/dpcli/internal/build"
)

func testModel(t *testing.T) model {
	t.Helper()
	m := initialModel(context.Background(), BuilderOptions{
		Namespace:    "devops",
		PollInterval: 10 * time.Millisecond,
		CreatedBy:    "tester",
	})
	next, _ := m.Update(catalogLoadedMsg{addons: []api.Addon{
		{ID: 1, Name: "cert-manager", Category: "SECURITY", InstallOrder: 1},
		{ID: 2, Name: "keycloak", Category: "SECURITY", InstallOrder: 2},
		{ID: 3, Name: "gitlab", Category: "SOURCE", InstallOrder: 5},
	}})
	return next.(model)
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m model, keys ...string) model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(model)
	}
	return m
}

func TestCatalogLoadEntersSelection(t *testing.T) {
	m := testModel(t)
	if m.phase != phaseSelecting {
		t.Fatalf("phase = %d, want selecting", m.phase)
	}
	if len(m.sel.Catalog()) != 3 {
		t.Errorf("catalog size = %d", len(m.sel.Catalog()))
	}
}

func TestCatalogLoadErrorFails(t *testing.T) {
	m := initialModel(context.Background(), BuilderOptions{})
	next, _ := m.Update(catalogLoadedMsg{err: errors.New("backend down")})
	m = next.(model)
	if m.phase != phaseFailed || m.errLine != "backend down" {
		t.Errorf("phase=%d err=%q", m.phase, m.errLine)
	}
}

func TestSpaceTogglesSelection(t *testing.T) {
	m := testModel(t)
	m = press(t, m, " ")
	if !m.sel.Selected(1) {
		t.Error("cursor add-on not selected after space")
	}
	m = press(t, m, " ")
	if m.sel.Selected(1) {
		t.Error("cursor add-on not deselected after second space")
	}
}

func TestTLSKeyLocksCertManager(t *testing.T) {
	m := testModel(t)
	m = press(t, m, "t")
	if !m.sel.Toggles().TLS || !m.sel.Selected(1) || !m.sel.Locked(1) {
		t.Error("t did not lock-select cert-manager")
	}
	// Space on the locked row must not deselect it.
	m = press(t, m, " ")
	if !m.sel.Selected(1) {
		t.Error("locked add-on deselected by space")
	}
	m = press(t, m, "k")
	if !m.sel.Selected(2) {
		t.Error("k did not select keycloak")
	}
}

func TestBuildWithoutSelectionShowsError(t *testing.T) {
	m := testModel(t)
	m.domainInput.SetValue("dev.example.com")
	m = press(t, m, "b")
	if m.phase != phaseSelecting {
		t.Errorf("phase = %d, want selecting (validation must fail locally)", m.phase)
	}
	if m.errLine == "" {
		t.Error("no error line after invalid build")
	}
}

func TestBuildWithoutDomainShowsError(t *testing.T) {
	m := testModel(t)
	m = press(t, m, " ", "b")
	if m.phase != phaseSelecting || m.errLine != build.ErrDomainRequired.Error() {
		t.Errorf("phase=%d err=%q", m.phase, m.errLine)
	}
}

func TestSubmittedEntersPollingAndTerminalStatus(t *testing.T) {
	m := testModel(t)
	m.domainInput.SetValue("dev.example.com")
	m = press(t, m, " ")
	next, _ := m.Update(key("b"))
	m = next.(model)
	if m.phase != phaseBuilding {
		t.Fatalf("phase = %d, want building", m.phase)
	}

	next, _ = m.Update(submittedMsg{b: &api.Build{BuildHash: "cafe01", Status: api.BuildStatusBuilding}})
	m = next.(model)
	if m.hash != "cafe01" {
		t.Errorf("hash = %q", m.hash)
	}

	next, _ = m.Update(statusMsg{st: &api.BuildStatus{BuildHash: "cafe01", Status: api.BuildStatusSuccess, Progress: 100}})
	m = next.(model)
	next, _ = m.Update(finalMsg{b: &api.Build{BuildHash: "cafe01", Status: api.BuildStatusSuccess, TotalSize: 99}})
	m = next.(model)
	if m.phase != phaseDone {
		t.Errorf("phase = %d, want done", m.phase)
	}
}

func TestFailedStatusCarriesMessage(t *testing.T) {
	m := testModel(t)
	m.phase = phaseBuilding
	m.hash = "cafe01"
	next, _ := m.Update(statusMsg{st: &api.BuildStatus{Status: api.BuildStatusFailed, ErrorMessage: "chart missing"}})
	m = next.(model)
	if m.phase != phaseFailed || m.errLine != "chart missing" {
		t.Errorf("phase=%d err=%q", m.phase, m.errLine)
	}
}

func TestStaleVersionLoadDropped(t *testing.T) {
	m := testModel(t)
	stale := versionsLoadedMsg{gen: m.gen - 1, addonID: 3, versions: []api.AddonVersion{{Version: "1.0.0"}}}
	next, _ := m.Update(stale)
	m = next.(model)
	if v := m.sel.Version(3); v != "" {
		t.Errorf("stale load applied a version: %q", v)
	}
}

func TestCycleVersionWrapsToLatest(t *testing.T) {
	m := testModel(t)
	versions := []api.AddonVersion{{Version: "2.0.0"}, {Version: "1.9.0"}}

	m.cycleVersion(3, versions)
	if v := m.sel.Version(3); v != "2.0.0" {
		t.Errorf("first cycle = %q", v)
	}
	m.cycleVersion(3, versions)
	if v := m.sel.Version(3); v != "1.9.0" {
		t.Errorf("second cycle = %q", v)
	}
	m.cycleVersion(3, versions)
	if v := m.sel.Version(3); v != "" {
		t.Errorf("third cycle = %q, want latest (unpinned)", v)
	}
}

func TestPollTickIgnoredOutsideBuilding(t *testing.T) {
	m := testModel(t)
	_, cmd := m.Update(pollTickMsg{})
	if cmd != nil {
		t.Error("poll tick outside building phase produced a command")
	}
}

func TestViewSelecting(t *testing.T) {
	m := testModel(t)
	m = press(t, m, "t")
	view := m.View()
	for _, want := range []string{"Package builder", "cert-manager", "gitlab", "namespace", "domain"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestSelectAllKey(t *testing.T) {
	m := testModel(t)
	m = press(t, m, "a")
	if m.sel.Count() != 3 {
		t.Errorf("Count after a = %d, want 3", m.sel.Count())
	}
}
