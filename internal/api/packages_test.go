package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// fakeBackend serves the package endpoints of one in-progress build.
func fakePackageServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /packages/build", func(w http.ResponseWriter, r *http.Request) {
		var req BuildRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding build request: %v", err)
		}
		if req.Domain == "" {
			t.Error("build request has no domain")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    Build{ID: 1, BuildHash: "cafe01", Status: BuildStatusBuilding},
		})
	})
	mux.HandleFunc("GET /packages/hash/cafe01/status", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    BuildStatus{BuildHash: "cafe01", Status: BuildStatusSuccess, Progress: 100},
		})
	})
	mux.HandleFunc("GET /packages/hash/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "build not found"})
	})
	return httptest.NewServer(mux)
}

func TestStartBuildReturnsHash(t *testing.T) {
	srv := fakePackageServer(t)
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	b, err := c.StartBuild(context.Background(), BuildRequest{
		Addons: []SelectedAddon{{AddonID: 1, AddonName: "gitlab"}},
		Domain: "dev.example.com",
	})
	if err != nil {
		t.Fatalf("StartBuild: %v", err)
	}
	if b.BuildHash != "cafe01" || b.Status != BuildStatusBuilding {
		t.Errorf("build = %+v", b)
	}
}

func TestGetBuildStatusByHash(t *testing.T) {
	srv := fakePackageServer(t)
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	st, err := c.GetBuildStatusByHash(context.Background(), "cafe01")
	if err != nil {
		t.Fatalf("GetBuildStatusByHash: %v", err)
	}
	if st.Status != BuildStatusSuccess || st.Progress != 100 {
		t.Errorf("status = %+v", st)
	}
}

func TestGetBuildStatusUnknownHashIs404(t *testing.T) {
	srv := fakePackageServer(t)
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	_, err := c.GetBuildStatusByHash(context.Background(), "doesnotexist")
	if !IsNotFound(err) {
		t.Errorf("expected not-found, got %v", err)
	}
}

func TestListBuildsPageEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("status"); got != BuildStatusSuccess {
			t.Errorf("status query = %q", got)
		}
		w.Write([]byte(`{"success":true,"data":{"content":[{"id":1,"buildHash":"a"},{"id":2,"buildHash":"b"}],"totalPages":3}}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	builds, pages, err := c.ListBuilds(context.Background(), BuildListParams{Status: BuildStatusSuccess})
	if err != nil {
		t.Fatalf("ListBuilds: %v", err)
	}
	if len(builds) != 2 || pages != 3 {
		t.Errorf("builds=%d pages=%d, want 2/3", len(builds), pages)
	}
}
