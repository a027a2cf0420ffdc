package tracker

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/amywork777/magicai/internal/client"
	"github.com/amywork777/magicai/internal/model"
)

// Client is the slice of the generation service the tracker needs
type Client interface {
	StartGeneration(ctx context.Context, req *client.GenerateModelRequest) (*client.GenerateModelResponse, error)
	CheckStatus(ctx context.Context, taskID string) (*client.RawStatus, error)
}

// Config holds the polling policy.
type Config struct {
	// MaxRetries is the number of consecutive failed or ambiguous checks
	// tolerated with plain backoff before simulated progress kicks in.
	MaxRetries int
	// PollInterval is the delay between checks on the happy path.
	PollInterval time.Duration
	// RetryInterval is the delay after a transient failure.
	RetryInterval time.Duration
	// RecheckInterval is how long simulated-progress mode waits before
	// going back to real checks with a fresh attempt budget.
	RecheckInterval time.Duration
	// MaxWait bounds the whole poll loop. 0 means unbounded: a stuck
	// backend is carried on simulated progress indefinitely.
	MaxWait time.Duration
	// SimulatedStep and SimulatedJitter shape the fallback progress
	// increment; SimulatedCeiling caps it. 100 is reserved for a
	// confirmed success.
	SimulatedStep    int
	SimulatedJitter  int
	SimulatedCeiling int
}

// DefaultConfig returns the policy used in production.
func DefaultConfig() Config {
	return Config{
		MaxRetries:       3,
		PollInterval:     2 * time.Second,
		RetryInterval:    3 * time.Second,
		RecheckInterval:  10 * time.Second,
		MaxWait:          0,
		SimulatedStep:    3,
		SimulatedJitter:  4,
		SimulatedCeiling: 98,
	}
}

// Result is the normalized output of a succeeded job. ArtifactURL may be
// empty when the endpoint reported success without any output URL.
type Result struct {
	ArtifactURL string
	PreviewURL  string
}

// Job is the tracker's view of one generation request. ID is the task
// identifier assigned by the generation service and is immutable once set.
type Job struct {
	ID        string
	Kind      model.InputKind
	State     model.JobStatus
	Progress  int
	Attempt   int
	Result    *Result
	LastError string
}

// Observer is notified after every job mutation. Calls happen on the
// tracking goroutine, never concurrently for the same job.
type Observer func(*Job)

// Tracker owns the lifecycle of generation jobs from submission to a
// terminal state.
type Tracker struct {
	client  Client
	cfg     Config
	rng     *rand.Rand
	observe Observer
}

// New creates a tracker around a generation client.
func New(c Client, cfg Config, observe Observer) *Tracker {
	if observe == nil {
		observe = func(*Job) {}
	}
	if cfg.SimulatedCeiling <= 0 || cfg.SimulatedCeiling > 99 {
		cfg.SimulatedCeiling = 98
	}
	if cfg.SimulatedStep <= 0 {
		cfg.SimulatedStep = 3
	}
	return &Tracker{
		client:  c,
		cfg:     cfg,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		observe: observe,
	}
}

// Submit starts a new generation job. Submission failures are final — the
// start call is issued exactly once and never retried.
func (t *Tracker) Submit(ctx context.Context, kind model.InputKind, req *client.GenerateModelRequest) (*Job, error) {
	job := &Job{Kind: kind, State: model.JobStatusSubmitting}
	t.observe(job)

	resp, err := t.client.StartGeneration(ctx, req)
	if err != nil {
		job.State = model.JobStatusFailed
		job.LastError = err.Error()
		t.observe(job)
		return job, fmt.Errorf("submission failed: %w", err)
	}

	job.ID = resp.TaskID
	job.State = model.JobStatusPolling
	job.Progress = 0
	job.Attempt = 0
	t.observe(job)
	return job, nil
}

// Track polls the job until it reaches a terminal state or ctx is
// cancelled. Exactly one status check is in flight at a time; the next is
// scheduled only after the previous resolves, so polls never overlap.
func (t *Tracker) Track(ctx context.Context, job *Job) error {
	if job.State.IsTerminal() {
		return nil
	}
	if job.State != model.JobStatusPolling {
		return fmt.Errorf("job %q is not polling (state %s)", job.ID, job.State)
	}

	started := time.Now()
	for {
		if t.cfg.MaxWait > 0 && time.Since(started) > t.cfg.MaxWait {
			job.State = model.JobStatusFailed
			job.LastError = fmt.Sprintf("generation timed out after %v", t.cfg.MaxWait)
			t.observe(job)
			return nil
		}

		raw, err := t.client.CheckStatus(ctx, job.ID)
		delay := t.step(job, raw, err)
		t.observe(job)

		if job.State.IsTerminal() {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

// step applies the outcome of one status check and returns the delay before
// the next one. It is the only place job state changes while polling.
func (t *Tracker) step(job *Job, raw *client.RawStatus, callErr error) time.Duration {
	if callErr != nil {
		job.LastError = callErr.Error()
		return t.degrade(job)
	}

	u := Normalize(raw.HTTPStatus, raw.Body)

	switch u.Kind {
	case UpdateSucceeded:
		job.Result = &Result{
			ArtifactURL: u.ArtifactURL,
			PreviewURL:  u.PreviewURL,
		}
		job.Progress = 100
		job.State = model.JobStatusSucceeded
		return 0

	case UpdateFailed:
		job.State = model.JobStatusFailed
		job.LastError = fmt.Sprintf("generation %s", u.Status)
		return 0

	case UpdateRunning:
		// Progress never regresses, and 100 is reserved for success.
		if u.HasProgress && u.Progress > job.Progress {
			job.Progress = u.Progress
			if job.Progress > 99 {
				job.Progress = 99
			}
		}
		if u.Soft {
			// Usable data on an error reply still counts toward backoff.
			job.LastError = fmt.Sprintf("degraded status reply (http %d)", httpStatusOf(raw))
			job.Attempt++
			if job.Attempt > t.cfg.MaxRetries {
				job.Attempt = 0
				return t.cfg.RecheckInterval
			}
			return t.cfg.RetryInterval
		}
		job.Attempt = 0
		return t.cfg.PollInterval

	case UpdateUnauthorized:
		// A misconfigured backend is recoverable: keep the progress bar
		// moving while a human fixes credentials.
		job.LastError = fmt.Sprintf("status endpoint unauthorized (http %d)", httpStatusOf(raw))
		job.Progress = t.simulate(job.Progress)
		job.Attempt++
		if job.Attempt > t.cfg.MaxRetries {
			job.Attempt = 0
			return t.cfg.RecheckInterval
		}
		return t.cfg.RetryInterval

	default: // UpdateUnrecognized
		job.LastError = fmt.Sprintf("unrecognized status reply (http %d)", httpStatusOf(raw))
		return t.degrade(job)
	}
}

// degrade handles a check that produced no usable status: plain backoff
// until retries are exhausted, then simulated progress with a fresh attempt
// budget. Exhaustion is not a failure.
func (t *Tracker) degrade(job *Job) time.Duration {
	job.Attempt++
	if job.Attempt <= t.cfg.MaxRetries {
		return t.cfg.RetryInterval
	}
	job.Progress = t.simulate(job.Progress)
	job.Attempt = 0
	return t.cfg.RecheckInterval
}

// simulate advances progress by a small bounded increment, capped below 100.
func (t *Tracker) simulate(current int) int {
	jitter := 0
	if t.cfg.SimulatedJitter > 0 {
		jitter = t.rng.Intn(t.cfg.SimulatedJitter + 1)
	}
	next := current + t.cfg.SimulatedStep + jitter
	if next > t.cfg.SimulatedCeiling {
		next = t.cfg.SimulatedCeiling
	}
	if next < current {
		next = current
	}
	return next
}

func httpStatusOf(raw *client.RawStatus) int {
	if raw == nil {
		return 0
	}
	return raw.HTTPStatus
}
