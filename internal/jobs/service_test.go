package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"decision-backend/internal/ai"
	"decision-backend/internal/datafiles"
)

const testReport = `{"decisionSummary":"Proceed with the expansion.","keyMetrics":[{"name":"payback_months","value":"14","interpretation":"within target"}],"scenarios":{"optimistic":"a","realistic":"b","pessimistic":"c"},"recommendations":["Run a pilot first"],"alternatives":["Wait one quarter"]}`

type fakeAI struct {
	mu             sync.Mutex
	interpretCalls int
	analyzeCalls   int
	interpretation ai.Interpretation
	interpretErr   error
	outcomes       []ai.Outcome
	analyzeErr     error
	analyzeGate    chan struct{} // when set, Analyze blocks until closed
}

func (f *fakeAI) Interpret(ctx context.Context, input ai.InterpretInput) (ai.Interpretation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.interpretCalls++
	if f.interpretErr != nil {
		return ai.Interpretation{}, f.interpretErr
	}
	return f.interpretation, nil
}

func (f *fakeAI) Analyze(ctx context.Context, input ai.AnalyzeInput) (ai.Outcome, error) {
	f.mu.Lock()
	call := f.analyzeCalls
	f.analyzeCalls++
	gate := f.analyzeGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.analyzeErr != nil {
		return ai.Outcome{}, f.analyzeErr
	}
	if call >= len(f.outcomes) {
		call = len(f.outcomes) - 1
	}
	return f.outcomes[call], nil
}

func (f *fakeAI) calls() (interpret, analyze int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.interpretCalls, f.analyzeCalls
}

type fakePrompt struct {
	mu       sync.Mutex
	calls    int
	response string
	err      error
}

func (f *fakePrompt) Complete(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

type fakeFiles struct {
	files map[string]datafiles.DataFile
}

func (f *fakeFiles) GetOwned(ctx context.Context, ownerID, fileID string) (datafiles.DataFile, error) {
	file, ok := f.files[fileID]
	if !ok || file.OwnerID != ownerID {
		return datafiles.DataFile{}, datafiles.ErrNotFound
	}
	return file, nil
}

func (f *fakeFiles) PreviewText(ctx context.Context, file datafiles.DataFile) string {
	return fmt.Sprintf("=== %s ===\nsome rows", file.FileName)
}

func defaultInterpretation() ai.Interpretation {
	return ai.Interpretation{
		Intent:       "evaluate expansion",
		DecisionType: "go_no_go",
		Hypotheses: []ai.Hypothesis{
			{ID: "growth_rate", Label: "Growth rate", Kind: "number", Value: "0.12"},
			{ID: "horizon", Label: "Planning horizon", Kind: "text", Value: "3 years"},
		},
	}
}

func reportOutcome() ai.Outcome {
	return ai.Outcome{Report: json.RawMessage(testReport)}
}

func missingOutcome() ai.Outcome {
	return ai.Outcome{MissingInputs: []ai.MissingInput{
		{ID: "monthly_revenue", Description: "Current monthly revenue", Required: true, Kind: "number"},
		{ID: "notes", Description: "Extra context", Required: false, Kind: "text"},
	}}
}

func newTestService(repo Repo, client ai.Client, prompt ai.PromptClient) *Service {
	return &Service{
		Repo:     repo,
		AI:       client,
		Prompt:   prompt,
		Provider: "test",
		Model:    "test-model",
	}
}

func waitForStatus(t *testing.T, repo Repo, jobID, status string) Job {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		job, err := repo.GetByID(context.Background(), jobID)
		if err != nil {
			t.Fatalf("get job: %v", err)
		}
		if job.Status == status {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	job, _ := repo.GetByID(context.Background(), jobID)
	t.Fatalf("job never reached %s, last status %s (code=%s msg=%s)", status, job.Status, job.ErrorCode, job.ErrorMessage)
	return Job{}
}

func TestLaunchRunsToCompletion(t *testing.T) {
	repo := NewMemoryRepo()
	client := &fakeAI{interpretation: defaultInterpretation(), outcomes: []ai.Outcome{reportOutcome()}}
	svc := newTestService(repo, client, nil)

	created, err := svc.Launch(context.Background(), "owner-1", "proj-1", "Should we expand to Austin?", nil)
	if err != nil {
		t.Fatalf("launch: %v", err)
	}
	if created.Status != StatusPending {
		t.Errorf("expected pending at launch, got %s", created.Status)
	}
	if len(created.Steps) != len(stepTemplate) {
		t.Errorf("expected %d steps, got %d", len(stepTemplate), len(created.Steps))
	}

	job := waitForStatus(t, repo, created.ID, StatusCompleted)
	if job.Progress != 100 {
		t.Errorf("expected progress 100, got %d", job.Progress)
	}
	if len(job.Result) == 0 {
		t.Error("expected result to be persisted")
	}
	if len(job.Hypotheses) != 2 {
		t.Errorf("expected interpreted hypotheses persisted, got %d", len(job.Hypotheses))
	}
	if job.CompletedAt == nil || job.StartedAt == nil {
		t.Error("expected started/completed timestamps")
	}
	for _, step := range job.Steps {
		if step.Status != StepStatusCompleted {
			t.Errorf("step %s not completed: %s", step.Name, step.Status)
		}
	}
	interpret, analyze := client.calls()
	if interpret != 1 || analyze != 1 {
		t.Errorf("expected 1 interpret and 1 analyze call, got %d/%d", interpret, analyze)
	}
}

func TestLaunchRequiresQuestion(t *testing.T) {
	svc := newTestService(NewMemoryRepo(), &fakeAI{}, nil)
	if _, err := svc.Launch(context.Background(), "owner-1", "proj-1", "   ", nil); err == nil {
		t.Fatal("expected error for blank question")
	}
}

func TestPipelinePausesForMissingData(t *testing.T) {
	repo := NewMemoryRepo()
	client := &fakeAI{interpretation: defaultInterpretation(), outcomes: []ai.Outcome{missingOutcome()}}
	svc := newTestService(repo, client, nil)

	created, err := svc.Launch(context.Background(), "owner-1", "proj-1", "Should we expand?", nil)
	if err != nil {
		t.Fatalf("launch: %v", err)
	}
	job := waitForStatus(t, repo, created.ID, StatusWaitingForData)
	if len(job.MissingData) != 2 {
		t.Fatalf("expected 2 missing items, got %d", len(job.MissingData))
	}
	if job.MissingData[0].ID != "monthly_revenue" || !job.MissingData[0].Required {
		t.Errorf("unexpected missing item: %+v", job.MissingData[0])
	}
	if job.Progress >= 100 {
		t.Errorf("paused job should not report full progress, got %d", job.Progress)
	}
	if job.CurrentStep != StepCalculatingMetrics {
		t.Errorf("expected to pause on %s, got %s", StepCalculatingMetrics, job.CurrentStep)
	}
}

func TestResumeCompletesJob(t *testing.T) {
	repo := NewMemoryRepo()
	client := &fakeAI{
		interpretation: defaultInterpretation(),
		outcomes:       []ai.Outcome{missingOutcome(), reportOutcome()},
	}
	svc := newTestService(repo, client, nil)

	created, err := svc.Launch(context.Background(), "owner-1", "proj-1", "Should we expand?", nil)
	if err != nil {
		t.Fatalf("launch: %v", err)
	}
	waitForStatus(t, repo, created.ID, StatusWaitingForData)

	resumed, err := svc.Resume(context.Background(), "owner-1", created.ID, map[string]any{"monthly_revenue": 120000})
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if resumed.Status != StatusInProgress && resumed.Status != StatusCompleted {
		t.Errorf("unexpected status right after resume: %s", resumed.Status)
	}

	job := waitForStatus(t, repo, created.ID, StatusCompleted)
	if len(job.MissingData) != 0 {
		t.Errorf("expected missing data cleared, got %d items", len(job.MissingData))
	}
	if job.Progress != 100 {
		t.Errorf("expected progress 100, got %d", job.Progress)
	}
	interpret, analyze := client.calls()
	if interpret != 1 {
		t.Errorf("resume must reuse existing hypotheses, interpret called %d times", interpret)
	}
	if analyze != 2 {
		t.Errorf("expected 2 analyze calls, got %d", analyze)
	}
}

func TestResumeRejectsUncoveredRequired(t *testing.T) {
	repo := NewMemoryRepo()
	client := &fakeAI{interpretation: defaultInterpretation(), outcomes: []ai.Outcome{missingOutcome()}}
	svc := newTestService(repo, client, nil)

	created, err := svc.Launch(context.Background(), "owner-1", "proj-1", "Should we expand?", nil)
	if err != nil {
		t.Fatalf("launch: %v", err)
	}
	waitForStatus(t, repo, created.ID, StatusWaitingForData)

	_, err = svc.Resume(context.Background(), "owner-1", created.ID, map[string]any{"notes": "hi"})
	if !errors.Is(err, ErrMissingRequiredField) {
		t.Fatalf("expected ErrMissingRequiredField, got %v", err)
	}
	if !strings.Contains(err.Error(), "monthly_revenue") {
		t.Errorf("error should name the uncovered item, got %q", err.Error())
	}

	job, _ := repo.GetByID(context.Background(), created.ID)
	if job.Status != StatusWaitingForData {
		t.Errorf("rejected resume must not mutate status, got %s", job.Status)
	}
	if len(job.MissingData) != 2 {
		t.Errorf("rejected resume must keep missing data, got %d items", len(job.MissingData))
	}
}

func TestResumeRejectsNonWaitingStatus(t *testing.T) {
	repo := NewMemoryRepo()
	svc := newTestService(repo, &fakeAI{}, nil)
	seedJob(t, repo, Job{ID: "job-1", OwnerID: "owner-1", ProjectID: "proj-1", Status: StatusCompleted})

	_, err := svc.Resume(context.Background(), "owner-1", "job-1", map[string]any{"x": 1})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

// staleRepo simulates another writer progressing the job between the
// service's read and its conditional update.
type staleRepo struct {
	*MemoryRepo
}

func (r *staleRepo) UpdateIfStatus(ctx context.Context, jobID, expectedStatus string, update JobUpdate) error {
	_ = r.MemoryRepo.Update(ctx, jobID, JobUpdate{Status: stringPtr(StatusInProgress)})
	return r.MemoryRepo.UpdateIfStatus(ctx, jobID, expectedStatus, update)
}

func TestResumeLosesRace(t *testing.T) {
	repo := &staleRepo{MemoryRepo: NewMemoryRepo()}
	svc := newTestService(repo, &fakeAI{}, nil)
	seedJob(t, repo.MemoryRepo, Job{
		ID: "job-1", OwnerID: "owner-1", ProjectID: "proj-1",
		Status:      StatusWaitingForData,
		MissingData: []MissingDataItem{{ID: "monthly_revenue", Required: true, Kind: "number"}},
	})

	_, err := svc.Resume(context.Background(), "owner-1", "job-1", map[string]any{"monthly_revenue": 1})
	if !errors.Is(err, ErrStaleOperation) {
		t.Fatalf("expected ErrStaleOperation, got %v", err)
	}
}

func TestGetScopedToOwner(t *testing.T) {
	repo := NewMemoryRepo()
	svc := newTestService(repo, &fakeAI{}, nil)
	seedJob(t, repo, Job{ID: "job-1", OwnerID: "owner-1", ProjectID: "proj-1", Status: StatusCompleted})

	if _, err := svc.Get(context.Background(), "owner-2", "job-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign owner, got %v", err)
	}
	if _, err := svc.Get(context.Background(), "owner-1", "job-1"); err != nil {
		t.Fatalf("expected owner to see own job, got %v", err)
	}
}

func TestPipelineSkipsUnreadableFiles(t *testing.T) {
	repo := NewMemoryRepo()
	client := &fakeAI{interpretation: defaultInterpretation(), outcomes: []ai.Outcome{reportOutcome()}}
	svc := newTestService(repo, client, nil)
	svc.Files = &fakeFiles{files: map[string]datafiles.DataFile{
		"file-1": {ID: "file-1", OwnerID: "owner-1", FileName: "revenue.csv"},
	}}

	created, err := svc.Launch(context.Background(), "owner-1", "proj-1", "Should we expand?", []string{"file-1", "file-gone"})
	if err != nil {
		t.Fatalf("launch: %v", err)
	}
	job := waitForStatus(t, repo, created.ID, StatusCompleted)

	var filesStep *Step
	for i := range job.Steps {
		if job.Steps[i].Name == StepCheckingFiles {
			filesStep = &job.Steps[i]
		}
	}
	if filesStep == nil {
		t.Fatal("checking_files step missing")
	}
	if !strings.Contains(filesStep.Message, "1 of 2") || !strings.Contains(filesStep.Message, "file-gone") {
		t.Errorf("expected skip note in step message, got %q", filesStep.Message)
	}
}

func TestPipelineFailureClassified(t *testing.T) {
	repo := NewMemoryRepo()
	client := &fakeAI{
		interpretation: defaultInterpretation(),
		analyzeErr:     errors.New("analysis schema mismatch: status missing"),
	}
	svc := newTestService(repo, client, nil)

	created, err := svc.Launch(context.Background(), "owner-1", "proj-1", "Should we expand?", nil)
	if err != nil {
		t.Fatalf("launch: %v", err)
	}
	job := waitForStatus(t, repo, created.ID, StatusError)
	if job.ErrorCode != ErrorCodeAISchemaMismatch {
		t.Errorf("expected %s, got %s", ErrorCodeAISchemaMismatch, job.ErrorCode)
	}
	if job.ErrorMessage == "" {
		t.Error("expected an error message")
	}
	failed := false
	for _, step := range job.Steps {
		if step.Status == StepStatusError {
			failed = true
		}
	}
	if !failed {
		t.Error("expected the failing step to be marked error")
	}
}

// recordingRepo captures every progress value written during a run.
type recordingRepo struct {
	*MemoryRepo
	mu       sync.Mutex
	progress []int
}

func (r *recordingRepo) Update(ctx context.Context, jobID string, update JobUpdate) error {
	if update.Progress != nil {
		r.mu.Lock()
		r.progress = append(r.progress, *update.Progress)
		r.mu.Unlock()
	}
	return r.MemoryRepo.Update(ctx, jobID, update)
}

func TestProgressNeverDecreasesWithinRun(t *testing.T) {
	repo := &recordingRepo{MemoryRepo: NewMemoryRepo()}
	client := &fakeAI{interpretation: defaultInterpretation(), outcomes: []ai.Outcome{reportOutcome()}}
	svc := newTestService(repo, client, nil)

	created, err := svc.Launch(context.Background(), "owner-1", "proj-1", "Should we expand?", nil)
	if err != nil {
		t.Fatalf("launch: %v", err)
	}
	waitForStatus(t, repo, created.ID, StatusCompleted)

	repo.mu.Lock()
	defer repo.mu.Unlock()
	if len(repo.progress) == 0 {
		t.Fatal("expected progress writes")
	}
	for i := 1; i < len(repo.progress); i++ {
		if repo.progress[i] < repo.progress[i-1] {
			t.Fatalf("progress decreased: %v", repo.progress)
		}
	}
	if last := repo.progress[len(repo.progress)-1]; last != 100 {
		t.Errorf("expected final progress 100, got %d", last)
	}
}

func TestChatUnchangedHypothesesNoRelaunch(t *testing.T) {
	repo := NewMemoryRepo()
	client := &fakeAI{}
	prompt := &fakePrompt{response: `{"reply":"The growth assumption already reflects that.","hypotheses":[{"id":"growth_rate","label":"Growth rate","kind":"number","value":"0.12"}]}`}
	svc := newTestService(repo, client, prompt)
	seedJob(t, repo, Job{
		ID: "job-1", OwnerID: "owner-1", ProjectID: "proj-1",
		Status:     StatusCompleted,
		Hypotheses: []Hypothesis{{ID: "growth_rate", Label: "Growth rate", Kind: "number", Value: "0.12"}},
		Result:     json.RawMessage(testReport),
	})

	result, err := svc.Chat(context.Background(), "owner-1", "job-1", "What about a higher growth rate?", nil)
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if result.ShouldRelaunch {
		t.Error("unchanged hypotheses must not relaunch")
	}
	if result.Reply == "" {
		t.Error("expected a reply")
	}
	if _, analyze := client.calls(); analyze != 0 {
		t.Errorf("expected no analyze call, got %d", analyze)
	}
	job, _ := repo.GetByID(context.Background(), "job-1")
	if job.Status != StatusCompleted {
		t.Errorf("job status must stay completed, got %s", job.Status)
	}
}

func TestChatChangedHypothesesRelaunches(t *testing.T) {
	repo := NewMemoryRepo()
	client := &fakeAI{outcomes: []ai.Outcome{reportOutcome()}}
	prompt := &fakePrompt{response: `{"reply":"Rerunning with 20% growth.","hypotheses":[{"id":"growth_rate","label":"Growth rate","kind":"number","value":"0.20"}]}`}
	svc := newTestService(repo, client, prompt)
	seedJob(t, repo, Job{
		ID: "job-1", OwnerID: "owner-1", ProjectID: "proj-1",
		Status:     StatusCompleted,
		Hypotheses: []Hypothesis{{ID: "growth_rate", Label: "Growth rate", Kind: "number", Value: "0.12"}},
		Result:     json.RawMessage(testReport),
	})

	result, err := svc.Chat(context.Background(), "owner-1", "job-1", "Assume 20% growth instead.", nil)
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if !result.ShouldRelaunch {
		t.Fatal("changed hypotheses must relaunch")
	}

	job := waitForStatus(t, repo, "job-1", StatusCompleted)
	if len(job.Hypotheses) != 1 || job.Hypotheses[0].Value != "0.20" {
		t.Errorf("expected updated hypotheses persisted, got %+v", job.Hypotheses)
	}
	interpret, analyze := client.calls()
	if interpret != 0 {
		t.Errorf("relaunch must not reinterpret, interpret called %d times", interpret)
	}
	if analyze != 1 {
		t.Errorf("expected 1 analyze call, got %d", analyze)
	}
}

func TestChatRelaunchClearsPriorOutcome(t *testing.T) {
	repo := NewMemoryRepo()
	gate := make(chan struct{})
	client := &fakeAI{outcomes: []ai.Outcome{reportOutcome()}, analyzeGate: gate}
	prompt := &fakePrompt{response: `{"reply":"Rerunning with 20% growth.","hypotheses":[{"id":"growth_rate","label":"Growth rate","kind":"number","value":"0.20"}]}`}
	svc := newTestService(repo, client, prompt)
	completedAt := time.Now().UTC()
	seedJob(t, repo, Job{
		ID: "job-1", OwnerID: "owner-1", ProjectID: "proj-1",
		Status:      StatusCompleted,
		Progress:    100,
		Hypotheses:  []Hypothesis{{ID: "growth_rate", Label: "Growth rate", Kind: "number", Value: "0.12"}},
		Result:      json.RawMessage(testReport),
		CompletedAt: &completedAt,
	})

	result, err := svc.Chat(context.Background(), "owner-1", "job-1", "Assume 20% growth instead.", nil)
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if !result.ShouldRelaunch {
		t.Fatal("changed hypotheses must relaunch")
	}

	job := waitForStatus(t, repo, "job-1", StatusInProgress)
	if len(job.Result) != 0 {
		t.Errorf("relaunched job must not expose the prior result, got %s", job.Result)
	}
	if job.CompletedAt != nil {
		t.Error("relaunched job must not keep the prior completion timestamp")
	}

	close(gate)
	job = waitForStatus(t, repo, "job-1", StatusCompleted)
	if len(job.Result) == 0 {
		t.Error("expected the new run's result to be persisted")
	}
	if job.CompletedAt == nil {
		t.Error("expected a fresh completion timestamp")
	}
}

func TestChatRelaunchClearsErrorState(t *testing.T) {
	repo := NewMemoryRepo()
	gate := make(chan struct{})
	client := &fakeAI{outcomes: []ai.Outcome{reportOutcome()}, analyzeGate: gate}
	prompt := &fakePrompt{response: `{"reply":"Retrying with a shorter horizon.","hypotheses":[{"id":"horizon","label":"Planning horizon","kind":"text","value":"2 years"}]}`}
	svc := newTestService(repo, client, prompt)
	completedAt := time.Now().UTC()
	seedJob(t, repo, Job{
		ID: "job-1", OwnerID: "owner-1", ProjectID: "proj-1",
		Status:       StatusError,
		Hypotheses:   []Hypothesis{{ID: "horizon", Label: "Planning horizon", Kind: "text", Value: "3 years"}},
		ErrorCode:    ErrorCodeAITimeout,
		ErrorMessage: "ai analyze: openai request timeout",
		CompletedAt:  &completedAt,
	})

	result, err := svc.Chat(context.Background(), "owner-1", "job-1", "Try a two year horizon.", nil)
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if !result.ShouldRelaunch {
		t.Fatal("changed hypotheses must relaunch")
	}

	job := waitForStatus(t, repo, "job-1", StatusInProgress)
	if job.ErrorCode != "" || job.ErrorMessage != "" {
		t.Errorf("relaunched job must not keep the prior failure, got code=%q msg=%q", job.ErrorCode, job.ErrorMessage)
	}
	if job.CompletedAt != nil {
		t.Error("relaunched job must not keep the prior completion timestamp")
	}

	close(gate)
	job = waitForStatus(t, repo, "job-1", StatusCompleted)
	if job.ErrorCode != "" {
		t.Errorf("completed rerun must not carry an error code, got %q", job.ErrorCode)
	}
}

func TestChatRejectsRunningJob(t *testing.T) {
	repo := NewMemoryRepo()
	svc := newTestService(repo, &fakeAI{}, &fakePrompt{response: "{}"})
	seedJob(t, repo, Job{ID: "job-1", OwnerID: "owner-1", ProjectID: "proj-1", Status: StatusInProgress})

	_, err := svc.Chat(context.Background(), "owner-1", "job-1", "status?", nil)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestApplyStatusPatchPartial(t *testing.T) {
	repo := NewMemoryRepo()
	svc := newTestService(repo, &fakeAI{}, nil)
	steps := NewSteps()
	steps[0].Status = StepStatusInProgress
	seedJob(t, repo, Job{
		ID: "job-1", OwnerID: "owner-1", ProjectID: "proj-1",
		Status: StatusInProgress, CurrentStep: StepAnalyzingQuestion,
		Progress: 5, Steps: steps,
	})

	progress := 40
	job, err := svc.ApplyStatusPatch(context.Background(), "owner-1", "job-1", StatusPatch{Progress: &progress})
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if job.Progress != 40 {
		t.Errorf("expected progress 40, got %d", job.Progress)
	}
	if job.Status != StatusInProgress || job.CurrentStep != StepAnalyzingQuestion {
		t.Error("patch must not touch unnamed fields")
	}
	if len(job.Steps) != len(steps) || job.Steps[0].Status != StepStatusInProgress {
		t.Error("patch must not touch steps when not named")
	}
}

func TestApplyStatusPatchMessageTargetsCurrentStep(t *testing.T) {
	repo := NewMemoryRepo()
	svc := newTestService(repo, &fakeAI{}, nil)
	seedJob(t, repo, Job{
		ID: "job-1", OwnerID: "owner-1", ProjectID: "proj-1",
		Status: StatusInProgress, CurrentStep: StepCheckingFiles,
		Steps: NewSteps(),
	})

	message := "parsing revenue.csv"
	job, err := svc.ApplyStatusPatch(context.Background(), "owner-1", "job-1", StatusPatch{Message: &message})
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	for _, step := range job.Steps {
		want := ""
		if step.Name == StepCheckingFiles {
			want = message
		}
		if step.Message != want {
			t.Errorf("step %s message = %q, want %q", step.Name, step.Message, want)
		}
	}
}

func TestApplyStatusPatchRejectsUnknownStatus(t *testing.T) {
	repo := NewMemoryRepo()
	svc := newTestService(repo, &fakeAI{}, nil)
	seedJob(t, repo, Job{ID: "job-1", OwnerID: "owner-1", ProjectID: "proj-1", Status: StatusInProgress})

	bogus := "paused"
	if _, err := svc.ApplyStatusPatch(context.Background(), "owner-1", "job-1", StatusPatch{Status: &bogus}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestClassifyFailure(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{context.DeadlineExceeded, ErrorCodeAITimeout},
		{errors.New("ai analyze: openai request timeout: context deadline exceeded"), ErrorCodeAITimeout},
		{errors.New("ai report: report schema mismatch: decisionSummary is required"), ErrorCodeAISchemaMismatch},
		{errors.New("ai interpret: invalid json from model"), ErrorCodeAISchemaMismatch},
		{errors.New("set in_progress failed: connection refused"), ErrorCodeStorage},
		{errors.New("job lookup: not found"), ErrorCodeStorage},
		{errors.New("panic: something broke"), ErrorCodeInternal},
	}
	for _, tc := range cases {
		if got := classifyFailure(tc.err); got != tc.want {
			t.Errorf("classifyFailure(%q) = %s, want %s", tc.err, got, tc.want)
		}
	}
}

func TestRetryableCode(t *testing.T) {
	retryable := []string{ErrorCodeAITimeout, ErrorCodeStorage}
	final := []string{ErrorCodeValidation, ErrorCodeAISchemaMismatch, ErrorCodeInternal, ""}
	for _, code := range retryable {
		if !RetryableCode(code) {
			t.Errorf("%s should be retryable", code)
		}
	}
	for _, code := range final {
		if RetryableCode(code) {
			t.Errorf("%q should not be retryable", code)
		}
	}
}

func TestGetDerivesRetryable(t *testing.T) {
	repo := NewMemoryRepo()
	svc := newTestService(repo, &fakeAI{}, nil)
	seedJob(t, repo, Job{
		ID: "job-1", OwnerID: "owner-1", ProjectID: "proj-1",
		Status: StatusError, ErrorCode: ErrorCodeAITimeout,
	})

	job, err := svc.Get(context.Background(), "owner-1", "job-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !job.Retryable {
		t.Error("timeout failure should surface as retryable")
	}
}

func seedJob(t *testing.T, repo Repo, job Job) {
	t.Helper()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	if job.Steps == nil {
		job.Steps = NewSteps()
	}
	if err := repo.Create(context.Background(), job); err != nil {
		t.Fatalf("seed job: %v", err)
	}
}
