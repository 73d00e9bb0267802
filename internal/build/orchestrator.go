package build

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/devplatform/dpcli/internal/api"
)

// DefaultPollInterval is the fixed delay between status polls.
const DefaultPollInterval = 2 * time.Second

// Orchestrator states.
const (
	StateIdle       = "idle"
	StateSubmitting = "submitting"
	StatePolling    = "polling"
	StateSucceeded  = "succeeded"
	StateFailed     = "failed"
)

var (
	// ErrNothingSelected rejects a submission with zero selected add-ons
	// before any network call.
	ErrNothingSelected = errors.New("at least one add-on must be selected")
	// ErrDomainRequired rejects a submission with a blank domain before any
	// network call.
	ErrDomainRequired = errors.New("domain is required")
	// ErrBuildInFlight rejects a second submission while one build is
	// still being tracked.
	ErrBuildInFlight = errors.New("a build is already in progress")
	// ErrNotBuilt rejects a download before a successful build was
	// observed.
	ErrNotBuilt = errors.New("no successful build to download")
	// ErrBuildFailed wraps the backend's failure message on a FAILED
	// terminal status.
	ErrBuildFailed = errors.New("build failed")
)

// Backend is the slice of the API client the orchestrator needs. The api
// Client satisfies it; tests supply a fake.
type Backend interface {
	StartBuild(ctx context.Context, req api.BuildRequest) (*api.Build, error)
	GetBuildStatusByHash(ctx context.Context, hash string) (*api.BuildStatus, error)
	GetBuildByHash(ctx context.Context, hash string) (*api.Build, error)
	DownloadPackage(ctx context.Context, hash string) ([]byte, error)
}

// ProgressFunc receives every successfully polled status.
type ProgressFunc func(api.BuildStatus)

// Orchestrator drives one build at a time: submit, poll to a terminal
// state, download. Cancellation flows through the context passed to Poll;
// there is no other stop channel.
type Orchestrator struct {
	backend  Backend
	interval time.Duration

	mu    sync.Mutex
	state string
	hash  string
	final *api.Build
}

// NewOrchestrator builds an idle orchestrator. interval <= 0 falls back to
// DefaultPollInterval.
func NewOrchestrator(backend Backend, interval time.Duration) *Orchestrator {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Orchestrator{backend: backend, interval: interval, state: StateIdle}
}

// State returns the current workflow state.
func (o *Orchestrator) State() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Hash returns the hash of the tracked build, or "" before submission.
func (o *Orchestrator) Hash() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.hash
}

// Final returns the completed build record after a successful poll.
func (o *Orchestrator) Final() *api.Build {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.final
}

// ValidateRequest applies the local submission rules: at least one add-on
// and a non-blank domain. It also normalizes an empty registry override to
// absent. No network call is made.
func ValidateRequest(req *api.BuildRequest) error {
	if len(req.Addons) == 0 {
		return ErrNothingSelected
	}
	if strings.TrimSpace(req.Domain) == "" {
		return ErrDomainRequired
	}
	if req.RegistryURL != nil && strings.TrimSpace(*req.RegistryURL) == "" {
		req.RegistryURL = nil
	}
	return nil
}

// Submit validates and posts the build request, recording the returned
// hash for polling. A second Submit while a build is in flight returns
// ErrBuildInFlight.
func (o *Orchestrator) Submit(ctx context.Context, req api.BuildRequest) (*api.Build, error) {
	if err := ValidateRequest(&req); err != nil {
		return nil, err
	}

	o.mu.Lock()
	if o.state == StateSubmitting || o.state == StatePolling {
		o.mu.Unlock()
		return nil, ErrBuildInFlight
	}
	o.state = StateSubmitting
	o.final = nil
	o.hash = ""
	o.mu.Unlock()

	b, err := o.backend.StartBuild(ctx, req)
	if err != nil {
		o.setState(StateIdle)
		return nil, err
	}

	o.mu.Lock()
	o.hash = b.BuildHash
	o.state = StatePolling
	o.mu.Unlock()
	return b, nil
}

// Poll fetches the build status on the fixed interval until a terminal
// state. On SUCCESS it fetches and returns the final build record
// (including total size). On FAILED it returns ErrBuildFailed wrapping the
// backend message. The first transport error stops polling immediately —
// no retry — and leaves the orchestrator idle. Context cancellation stops
// the loop the same way.
func (o *Orchestrator) Poll(ctx context.Context, onProgress ProgressFunc) (*api.Build, error) {
	hash := o.Hash()
	if hash == "" {
		return nil, ErrNotBuilt
	}

	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	for {
		st, err := o.backend.GetBuildStatusByHash(ctx, hash)
		if err != nil {
			o.setState(StateIdle)
			return nil, err
		}
		if onProgress != nil {
			onProgress(*st)
		}

		switch st.Status {
		case api.BuildStatusSuccess:
			final, err := o.backend.GetBuildByHash(ctx, hash)
			if err != nil {
				o.setState(StateIdle)
				return nil, err
			}
			o.mu.Lock()
			o.final = final
			o.state = StateSucceeded
			o.mu.Unlock()
			return final, nil
		case api.BuildStatusFailed:
			o.setState(StateFailed)
			if msg := strings.TrimSpace(st.ErrorMessage); msg != "" {
				return nil, fmt.Errorf("%w: %s", ErrBuildFailed, msg)
			}
			return nil, ErrBuildFailed
		}

		select {
		case <-ctx.Done():
			o.setState(StateIdle)
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Download fetches the package binary for the tracked successful build and
// writes it to <dir>/<hash>.tar.gz. It returns the written path and size.
func (o *Orchestrator) Download(ctx context.Context, dir string) (string, int64, error) {
	o.mu.Lock()
	hash := o.hash
	ok := o.state == StateSucceeded
	o.mu.Unlock()
	if !ok || hash == "" {
		return "", 0, ErrNotBuilt
	}
	return DownloadTo(ctx, o.backend, hash, dir)
}

// DownloadTo fetches a package by hash and writes <dir>/<hash>.tar.gz.
// It is also used directly by the CLI for re-downloading past builds.
func DownloadTo(ctx context.Context, backend Backend, hash, dir string) (string, int64, error) {
	data, err := backend.DownloadPackage(ctx, hash)
	if err != nil {
		return "", 0, err
	}
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, hash+".tar.gz")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", 0, fmt.Errorf("writing package file: %w", err)
	}
	return path, int64(len(data)), nil
}

func (o *Orchestrator) setState(s string) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}
