package tracker_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/amywork777/magicai/internal/client"
	"github.com/amywork777/magicai/internal/model"
	"github.com/amywork777/magicai/internal/tracker"
)

// reply scripts one CheckStatus outcome
type reply struct {
	status int
	body   string
	err    error
}

func running(progress int) reply {
	return reply{status: 200, body: fmt.Sprintf(`{"status":"running","progress":%d}`, progress)}
}

func success(modelURL string) reply {
	return reply{status: 200, body: fmt.Sprintf(`{"status":"success","output":{"model":"%s"}}`, modelURL)}
}

func netErr() reply {
	return reply{err: errors.New("connection refused")}
}

// fakeClient plays back scripted replies; the last reply repeats.
type fakeClient struct {
	taskID   string
	startErr error
	starts   int
	checks   int
	replies  []reply
}

func (f *fakeClient) StartGeneration(ctx context.Context, req *client.GenerateModelRequest) (*client.GenerateModelResponse, error) {
	f.starts++
	if f.startErr != nil {
		return nil, f.startErr
	}
	return &client.GenerateModelResponse{TaskID: f.taskID, Status: "queued"}, nil
}

func (f *fakeClient) CheckStatus(ctx context.Context, taskID string) (*client.RawStatus, error) {
	i := f.checks
	if i >= len(f.replies) {
		i = len(f.replies) - 1
	}
	f.checks++
	r := f.replies[i]
	if r.err != nil {
		return nil, r.err
	}
	return &client.RawStatus{HTTPStatus: r.status, Body: []byte(r.body)}, nil
}

func testConfig() tracker.Config {
	cfg := tracker.DefaultConfig()
	cfg.PollInterval = time.Millisecond
	cfg.RetryInterval = time.Millisecond
	cfg.RecheckInterval = time.Millisecond
	return cfg
}

// snapshot records observed job states for later assertions
type snapshot struct {
	state    model.JobStatus
	progress int
	attempt  int
}

func record(history *[]snapshot) tracker.Observer {
	return func(j *tracker.Job) {
		*history = append(*history, snapshot{state: j.State, progress: j.Progress, attempt: j.Attempt})
	}
}

func submitAndTrack(t *testing.T, fc *fakeClient, cfg tracker.Config, history *[]snapshot) *tracker.Job {
	t.Helper()
	tr := tracker.New(fc, cfg, record(history))

	job, err := tr.Submit(context.Background(), model.InputKindText, &client.GenerateModelRequest{Kind: "text", Prompt: "a small boat"})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if err := tr.Track(context.Background(), job); err != nil {
		t.Fatalf("track failed: %v", err)
	}
	return job
}

func TestTrack_TextJobSucceeds(t *testing.T) {
	fc := &fakeClient{taskID: "t1", replies: []reply{
		running(10),
		success("https://x/model.glb"),
	}}

	var history []snapshot
	job := submitAndTrack(t, fc, testConfig(), &history)

	if job.ID != "t1" {
		t.Errorf("expected task id t1, got %q", job.ID)
	}
	if job.State != model.JobStatusSucceeded {
		t.Errorf("expected succeeded, got %s", job.State)
	}
	if job.Progress != 100 {
		t.Errorf("expected progress 100, got %d", job.Progress)
	}
	if job.Result == nil || job.Result.ArtifactURL != "https://x/model.glb" {
		t.Errorf("expected artifact URL, got %+v", job.Result)
	}
	if fc.checks != 2 {
		t.Errorf("expected 2 status checks, got %d", fc.checks)
	}
}

func TestTrack_ExplicitFailureStopsPolling(t *testing.T) {
	fc := &fakeClient{taskID: "t2", replies: []reply{
		{status: 200, body: `{"status":"failed"}`},
	}}

	var history []snapshot
	job := submitAndTrack(t, fc, testConfig(), &history)

	if job.State != model.JobStatusFailed {
		t.Errorf("expected failed, got %s", job.State)
	}
	if fc.checks != 1 {
		t.Errorf("expected exactly 1 check after terminal failure, got %d", fc.checks)
	}
	if job.LastError == "" {
		t.Error("expected lastError to be set")
	}
}

func TestTrack_RetryExhaustionSimulatesInsteadOfFailing(t *testing.T) {
	// Three consecutive network failures consume the retry budget; the 4th
	// check switches to simulated progress without failing the job.
	fc := &fakeClient{taskID: "t3", replies: []reply{
		netErr(), netErr(), netErr(), netErr(),
		success("https://x/model.glb"),
	}}

	var history []snapshot
	job := submitAndTrack(t, fc, testConfig(), &history)

	if job.State != model.JobStatusSucceeded {
		t.Fatalf("expected eventual success, got %s", job.State)
	}

	// Snapshot after the 4th check (2 submit observes + 4 poll observes).
	after4th := history[5]
	if after4th.state != model.JobStatusPolling {
		t.Errorf("expected polling after exhausted retries, got %s", after4th.state)
	}
	if after4th.progress <= 0 || after4th.progress > 98 {
		t.Errorf("expected simulated progress in (0,98], got %d", after4th.progress)
	}
	if after4th.attempt != 0 {
		t.Errorf("expected attempt reset after entering simulated mode, got %d", after4th.attempt)
	}

	after3rd := history[4]
	if after3rd.progress != 0 {
		t.Errorf("expected no progress substitution before retries exhaust, got %d", after3rd.progress)
	}
	if after3rd.attempt != 3 {
		t.Errorf("expected attempt 3 after three failures, got %d", after3rd.attempt)
	}
}

func TestTrack_SoftErrorKeepsRealProgress(t *testing.T) {
	// A 401 whose body still carries a usable status/progress pair is a
	// soft success: the data is used, the job stays polling.
	fc := &fakeClient{taskID: "t4", replies: []reply{
		{status: 401, body: `{"status":"running","progress":45}`},
		success("https://x/model.glb"),
	}}

	var history []snapshot
	job := submitAndTrack(t, fc, testConfig(), &history)

	soft := history[2] // after the first poll
	if soft.state != model.JobStatusPolling {
		t.Errorf("expected polling after soft error, got %s", soft.state)
	}
	if soft.progress != 45 {
		t.Errorf("expected progress 45 from soft error body, got %d", soft.progress)
	}
	if soft.attempt != 1 {
		t.Errorf("expected soft error to advance attempt, got %d", soft.attempt)
	}
	if job.State != model.JobStatusSucceeded {
		t.Errorf("expected success, got %s", job.State)
	}
}

func TestTrack_FallbackArtifactPromoted(t *testing.T) {
	fc := &fakeClient{taskID: "t5", replies: []reply{
		{status: 200, body: `{"status":"success","output":{"base_model":"https://x/base.glb"}}`},
	}}

	var history []snapshot
	job := submitAndTrack(t, fc, testConfig(), &history)

	if job.Result == nil || job.Result.ArtifactURL != "https://x/base.glb" {
		t.Errorf("expected base model promoted to artifact, got %+v", job.Result)
	}
}

func TestTrack_SuccessWithoutArtifactStillSucceeds(t *testing.T) {
	fc := &fakeClient{taskID: "t6", replies: []reply{
		{status: 200, body: `{"status":"success"}`},
	}}

	var history []snapshot
	job := submitAndTrack(t, fc, testConfig(), &history)

	if job.State != model.JobStatusSucceeded {
		t.Errorf("expected succeeded, got %s", job.State)
	}
	if job.Progress != 100 {
		t.Errorf("expected progress 100, got %d", job.Progress)
	}
	if job.Result == nil || job.Result.ArtifactURL != "" {
		t.Errorf("expected empty artifact URL, got %+v", job.Result)
	}
}

func TestTrack_ProgressIsMonotonic(t *testing.T) {
	fc := &fakeClient{taskID: "t7", replies: []reply{
		running(10),
		netErr(),
		{status: 401, body: `{"status":"running","progress":45}`},
		netErr(), netErr(), netErr(), netErr(),
		running(30), // stale lower value must not regress
		success("https://x/model.glb"),
	}}

	var history []snapshot
	job := submitAndTrack(t, fc, testConfig(), &history)

	last := 0
	for i, s := range history {
		if s.progress < last {
			t.Errorf("progress regressed at observation %d: %d -> %d", i, last, s.progress)
		}
		last = s.progress
	}
	if job.Progress != 100 {
		t.Errorf("expected final progress 100, got %d", job.Progress)
	}
}

func TestTrack_ProgressBelowHundredWhilePolling(t *testing.T) {
	// The endpoint claiming 100 while still running must not surface as
	// done: 100 is reserved for a confirmed success.
	fc := &fakeClient{taskID: "t8", replies: []reply{
		running(100),
		success("https://x/model.glb"),
	}}

	var history []snapshot
	job := submitAndTrack(t, fc, testConfig(), &history)

	for _, s := range history {
		if s.progress == 100 && s.state != model.JobStatusSucceeded {
			t.Errorf("observed progress 100 in state %s", s.state)
		}
	}
	if job.Progress != 100 || job.State != model.JobStatusSucceeded {
		t.Errorf("expected succeeded at 100, got %s/%d", job.State, job.Progress)
	}
}

func TestTrack_UnauthorizedSubstitutesProgress(t *testing.T) {
	fc := &fakeClient{taskID: "t9", replies: []reply{
		{status: 401, body: `{"error":"missing credentials"}`},
		{status: 401, body: `{"error":"missing credentials"}`},
		success("https://x/model.glb"),
	}}

	var history []snapshot
	job := submitAndTrack(t, fc, testConfig(), &history)

	second := history[3]
	if second.state != model.JobStatusPolling {
		t.Errorf("expected polling through unauthorized replies, got %s", second.state)
	}
	if second.progress <= 0 {
		t.Error("expected substituted progress while unauthorized")
	}
	if job.State != model.JobStatusSucceeded {
		t.Errorf("expected eventual success, got %s", job.State)
	}
}

func TestTrack_TerminalJobIsNeverPolledAgain(t *testing.T) {
	fc := &fakeClient{taskID: "t10", replies: []reply{
		success("https://x/model.glb"),
	}}

	var history []snapshot
	job := submitAndTrack(t, fc, testConfig(), &history)

	checksAtTerminal := fc.checks
	tr := tracker.New(fc, testConfig(), nil)
	if err := tr.Track(context.Background(), job); err != nil {
		t.Fatalf("re-track returned error: %v", err)
	}
	if fc.checks != checksAtTerminal {
		t.Errorf("terminal job was polled again: %d -> %d checks", checksAtTerminal, fc.checks)
	}
}

func TestSubmit_FailureIsFinalAndNotRetried(t *testing.T) {
	fc := &fakeClient{taskID: "t11", startErr: errors.New("service unavailable")}
	tr := tracker.New(fc, testConfig(), nil)

	job, err := tr.Submit(context.Background(), model.InputKindImage, &client.GenerateModelRequest{Kind: "image", ImageToken: "img-1"})
	if err == nil {
		t.Fatal("expected submit error")
	}
	if job.State != model.JobStatusFailed {
		t.Errorf("expected failed, got %s", job.State)
	}
	if fc.starts != 1 {
		t.Errorf("expected exactly one start call, got %d", fc.starts)
	}
}

func TestTrack_MaxWaitBoundsThePollLoop(t *testing.T) {
	fc := &fakeClient{taskID: "t12", replies: []reply{netErr()}}

	cfg := testConfig()
	cfg.MaxWait = 20 * time.Millisecond

	var history []snapshot
	tr := tracker.New(fc, cfg, record(&history))

	job, err := tr.Submit(context.Background(), model.InputKindText, &client.GenerateModelRequest{Kind: "text", Prompt: "x"})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if err := tr.Track(context.Background(), job); err != nil {
		t.Fatalf("track failed: %v", err)
	}

	if job.State != model.JobStatusFailed {
		t.Errorf("expected failed after max wait, got %s", job.State)
	}
	if job.LastError == "" {
		t.Error("expected timeout error recorded")
	}
}

func TestTrack_ContextCancellationStopsTheLoop(t *testing.T) {
	fc := &fakeClient{taskID: "t13", replies: []reply{running(10)}}
	tr := tracker.New(fc, testConfig(), nil)

	job, err := tr.Submit(context.Background(), model.InputKindText, &client.GenerateModelRequest{Kind: "text", Prompt: "x"})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := tr.Track(ctx, job); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if job.State != model.JobStatusPolling {
		t.Errorf("cancellation must not mark the job terminal, got %s", job.State)
	}
}
