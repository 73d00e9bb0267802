package api

import (
	"testing"
	"time"
)

func TestDaysUntil(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		expires string
		want    int
	}{
		{"2026-03-11", 10},
		{"2026-03-01", 0},
		{"2026-02-20", -9},
		{"2026-03-11T00:00:00Z", 10},
		{"not-a-date", 0},
		{"", 0},
	}
	for _, c := range cases {
		if got := DaysUntil(c.expires, now); got != c.want {
			t.Errorf("DaysUntil(%q) = %d, want %d", c.expires, got, c.want)
		}
	}
}

func TestExpiryClassBoundaries(t *testing.T) {
	cases := []struct {
		days int
		want string
	}{
		{-3, "expired"},
		{0, "expired"},
		{7, "expired"},
		{8, "warning"},
		{30, "warning"},
		{31, "active"},
		{365, "active"},
	}
	for _, c := range cases {
		if got := ExpiryClass(c.days); got != c.want {
			t.Errorf("ExpiryClass(%d) = %q, want %q", c.days, got, c.want)
		}
	}
}

func TestAddonListDecodersDegradeToEmpty(t *testing.T) {
	a := Addon{UpstreamImages: `["nginx:1.27","redis:7"]`, Dependencies: `{"broken":`}
	if imgs := a.UpstreamImageList(); len(imgs) != 2 || imgs[0] != "nginx:1.27" {
		t.Errorf("UpstreamImageList = %v", imgs)
	}
	if deps := a.DependencyList(); deps != nil {
		t.Errorf("DependencyList on bad JSON = %v, want nil", deps)
	}
	if imgs := (Addon{}).UpstreamImageList(); imgs != nil {
		t.Errorf("UpstreamImageList on empty = %v, want nil", imgs)
	}
}

func TestBuildSelectedAddonList(t *testing.T) {
	b := Build{SelectedAddons: `[{"addonId":3,"addonName":"gitlab","version":"17.1.0"}]`}
	list := b.SelectedAddonList()
	if len(list) != 1 || list[0].AddonName != "gitlab" || list[0].Version != "17.1.0" {
		t.Errorf("SelectedAddonList = %+v", list)
	}
	if got := (Build{SelectedAddons: "broken"}).SelectedAddonList(); got != nil {
		t.Errorf("broken selection = %v, want nil", got)
	}
}

func TestTerminalStates(t *testing.T) {
	if (Build{Status: BuildStatusBuilding}).Terminal() {
		t.Error("BUILDING must not be terminal")
	}
	if !(Build{Status: BuildStatusSuccess}).Terminal() || !(Build{Status: BuildStatusFailed}).Terminal() {
		t.Error("SUCCESS and FAILED must be terminal")
	}
	if (BuildStatus{Status: BuildStatusBuilding}).Terminal() {
		t.Error("status BUILDING must not be terminal")
	}
}
