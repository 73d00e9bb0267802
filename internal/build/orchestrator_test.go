package build

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/devplatform/dpcli/internal/api"
)

// fakeBackend scripts the backend responses and counts calls.
type fakeBackend struct {
	mu       sync.Mutex
	statuses []api.BuildStatus
	statErr  error
	startErr error
	polls    int
	payload  []byte
	final    *api.Build
}

func (f *fakeBackend) StartBuild(ctx context.Context, req api.BuildRequest) (*api.Build, error) {
	if f.startErr != nil {
		return nil, f.startErr
	}
	return &api.Build{ID: 1, BuildHash: "cafe01", Status: api.BuildStatusBuilding}, nil
}

func (f *fakeBackend) GetBuildStatusByHash(ctx context.Context, hash string) (*api.BuildStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statErr != nil {
		return nil, f.statErr
	}
	i := f.polls
	if i >= len(f.statuses) {
		i = len(f.statuses) - 1
	}
	f.polls++
	st := f.statuses[i]
	return &st, nil
}

func (f *fakeBackend) GetBuildByHash(ctx context.Context, hash string) (*api.Build, error) {
	if f.final != nil {
		return f.final, nil
	}
	return &api.Build{ID: 1, BuildHash: hash, Status: api.BuildStatusSuccess, TotalSize: 42}, nil
}

func (f *fakeBackend) DownloadPackage(ctx context.Context, hash string) ([]byte, error) {
	return f.payload, nil
}

// ---------------------------------------------------------------------------
// Request validation
// ---------------------------------------------------------------------------

func TestValidateRequestRules(t *testing.T) {
	req := api.BuildRequest{}
	if err := ValidateRequest(&req); !errors.Is(err, ErrNothingSelected) {
		t.Errorf("empty selection: %v", err)
	}
	req.Addons = []api.SelectedAddon{{AddonID: 1, AddonName: "gitlab"}}
	if err := ValidateRequest(&req); !errors.Is(err, ErrDomainRequired) {
		t.Errorf("blank domain: %v", err)
	}
	req.Domain = "   "
	if err := ValidateRequest(&req); !errors.Is(err, ErrDomainRequired) {
		t.Errorf("whitespace domain: %v", err)
	}
	req.Domain = "dev.example.com"
	blank := "  "
	req.RegistryURL = &blank
	if err := ValidateRequest(&req); err != nil {
		t.Errorf("valid request: %v", err)
	}
	if req.RegistryURL != nil {
		t.Error("blank registry override not normalized to nil")
	}
}

func TestValidationHappensBeforeSubmit(t *testing.T) {
	fb := &fakeBackend{startErr: errors.New("must not be called")}
	o := NewOrchestrator(fb, time.Millisecond)
	if _, err := o.Submit(context.Background(), api.BuildRequest{}); !errors.Is(err, ErrNothingSelected) {
		t.Errorf("Submit: %v", err)
	}
	if o.State() != StateIdle {
		t.Errorf("state = %s, want idle", o.State())
	}
}

// ---------------------------------------------------------------------------
// Submit / poll lifecycle
// ---------------------------------------------------------------------------

func validRequest() api.BuildRequest {
	return api.BuildRequest{
		Addons: []api.SelectedAddon{{AddonID: 1, AddonName: "gitlab"}},
		Domain: "dev.example.com",
	}
}

func TestSubmitRejectsSecondBuild(t *testing.T) {
	fb := &fakeBackend{statuses: []api.BuildStatus{{Status: api.BuildStatusBuilding}}}
	o := NewOrchestrator(fb, time.Millisecond)
	if _, err := o.Submit(context.Background(), validRequest()); err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	if _, err := o.Submit(context.Background(), validRequest()); !errors.Is(err, ErrBuildInFlight) {
		t.Errorf("second Submit: %v", err)
	}
}

func TestPollToSuccess(t *testing.T) {
	fb := &fakeBackend{statuses: []api.BuildStatus{
		{Status: api.BuildStatusBuilding, Progress: 10},
		{Status: api.BuildStatusBuilding, Progress: 60},
		{Status: api.BuildStatusSuccess, Progress: 100},
	}}
	o := NewOrchestrator(fb, time.Millisecond)
	if _, err := o.Submit(context.Background(), validRequest()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	var seen []int
	final, err := o.Poll(context.Background(), func(st api.BuildStatus) {
		seen = append(seen, st.Progress)
	})
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if final.TotalSize != 42 {
		t.Errorf("final size = %d, want 42", final.TotalSize)
	}
	if o.State() != StateSucceeded {
		t.Errorf("state = %s, want succeeded", o.State())
	}
	if len(seen) != 3 || seen[2] != 100 {
		t.Errorf("progress callbacks = %v", seen)
	}
	if fb.polls != 3 {
		t.Errorf("polls = %d, want 3 (polling must stop at the terminal state)", fb.polls)
	}
}

func TestPollFailedWrapsBackendMessage(t *testing.T) {
	fb := &fakeBackend{statuses: []api.BuildStatus{
		{Status: api.BuildStatusFailed, ErrorMessage: "chart not found: gitlab-17.1.0"},
	}}
	o := NewOrchestrator(fb, time.Millisecond)
	if _, err := o.Submit(context.Background(), validRequest()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	_, err := o.Poll(context.Background(), nil)
	if !errors.Is(err, ErrBuildFailed) {
		t.Fatalf("Poll error = %v, want ErrBuildFailed", err)
	}
	if got := err.Error(); got != "build failed: chart not found: gitlab-17.1.0" {
		t.Errorf("error = %q", got)
	}
	if o.State() != StateFailed {
		t.Errorf("state = %s, want failed", o.State())
	}
}

func TestPollStopsOnFirstTransportError(t *testing.T) {
	fb := &fakeBackend{statErr: errors.New("connection refused")}
	o := NewOrchestrator(fb, time.Millisecond)
	if _, err := o.Submit(context.Background(), validRequest()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	_, err := o.Poll(context.Background(), nil)
	if err == nil || errors.Is(err, ErrBuildFailed) {
		t.Fatalf("Poll error = %v, want transport error", err)
	}
	if o.State() != StateIdle {
		t.Errorf("state = %s, want idle after transport error", o.State())
	}
}

func TestPollCancelledByContext(t *testing.T) {
	fb := &fakeBackend{statuses: []api.BuildStatus{{Status: api.BuildStatusBuilding}}}
	o := NewOrchestrator(fb, 50*time.Millisecond)
	if _, err := o.Submit(context.Background(), validRequest()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	if _, err := o.Poll(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Poll error = %v, want context.Canceled", err)
	}
}

func TestPollWithoutSubmit(t *testing.T) {
	o := NewOrchestrator(&fakeBackend{}, time.Millisecond)
	if _, err := o.Poll(context.Background(), nil); !errors.Is(err, ErrNotBuilt) {
		t.Errorf("Poll: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Download
// ---------------------------------------------------------------------------

func TestDownloadRequiresSuccess(t *testing.T) {
	o := NewOrchestrator(&fakeBackend{}, time.Millisecond)
	if _, _, err := o.Download(context.Background(), t.TempDir()); !errors.Is(err, ErrNotBuilt) {
		t.Errorf("Download: %v", err)
	}
}

func TestDownloadWritesHashNamedFile(t *testing.T) {
	fb := &fakeBackend{
		statuses: []api.BuildStatus{{Status: api.BuildStatusSuccess, Progress: 100}},
		payload:  []byte("tarball-bytes"),
	}
	o := NewOrchestrator(fb, time.Millisecond)
	if _, err := o.Submit(context.Background(), validRequest()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := o.Poll(context.Background(), nil); err != nil {
		t.Fatalf("Poll: %v", err)
	}

	dir := t.TempDir()
	path, size, err := o.Download(context.Background(), dir)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if path != filepath.Join(dir, "cafe01.tar.gz") {
		t.Errorf("path = %q", path)
	}
	if size != int64(len("tarball-bytes")) {
		t.Errorf("size = %d", size)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "tarball-bytes" {
		t.Errorf("file content = %q, err %v", data, err)
	}
}

func TestDownloadToEmptyDirDefaultsToCwd(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })

	fb := &fakeBackend{payload: []byte("x")}
	path, _, err := DownloadTo(context.Background(), fb, "abc", "")
	if err != nil {
		t.Fatalf("DownloadTo: %v", err)
	}
	if path != "abc.tar.gz" {
		t.Errorf("path = %q", path)
	}
	if _, err := os.Stat(filepath.Join(dir, "abc.tar.gz")); err != nil {
		t.Errorf("file missing: %v", err)
	}
}
