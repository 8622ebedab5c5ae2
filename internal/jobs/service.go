package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"decision-backend/internal/ai"
	"decision-backend/internal/datafiles"
	"decision-backend/internal/projects"
	"decision-backend/internal/shared/metrics"
	"decision-backend/internal/shared/telemetry"
)

// FileSource provides uploaded data files to the pipeline.
type FileSource interface {
	GetOwned(ctx context.Context, ownerID, fileID string) (datafiles.DataFile, error)
	PreviewText(ctx context.Context, file datafiles.DataFile) string
}

// ClosedSet reports which jobs in a project are closed from active listings.
type ClosedSet interface {
	ClosedIDs(ctx context.Context, projectID string) (map[string]struct{}, error)
}

// Service contains business logic for analysis jobs.
type Service struct {
	Repo     Repo
	Projects *projects.Service
	Files    FileSource
	Closed   ClosedSet
	AI       ai.Client
	Prompt   ai.PromptClient
	Provider string
	Model    string
}

// Launch validates the request, creates the job in pending and kicks off
// asynchronous analysis. The created record is returned immediately; all
// later outcomes are observed through polling.
func (s *Service) Launch(ctx context.Context, ownerID, projectID, question string, fileIDs []string) (Job, error) {
	if strings.TrimSpace(ownerID) == "" || strings.TrimSpace(projectID) == "" {
		return Job{}, errors.New("ownerID and projectID are required")
	}
	if strings.TrimSpace(question) == "" {
		return Job{}, errors.New("question is required")
	}
	if s.Projects != nil {
		if _, err := s.Projects.GetOwned(ctx, ownerID, projectID); err != nil {
			if errors.Is(err, projects.ErrNotFound) {
				return Job{}, fmt.Errorf("project %s: %w", projectID, ErrNotFound)
			}
			return Job{}, err
		}
	}

	job := Job{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		ProjectID:    projectID,
		Question:     strings.TrimSpace(question),
		InputFileIDs: fileIDs,
		Status:       StatusPending,
		Steps:        NewSteps(),
		MissingData:  []MissingDataItem{},
		Hypotheses:   []Hypothesis{},
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, job); err != nil {
		return Job{}, err
	}

	go s.runPipeline(backgroundWithRequestID(ctx), job.ID, nil)

	return job, nil
}

// Get returns a job by ID, scoped to the owner.
func (s *Service) Get(ctx context.Context, ownerID, jobID string) (Job, error) {
	if jobID == "" {
		return Job{}, errors.New("jobID is required")
	}
	job, err := s.Repo.GetByID(ctx, jobID)
	if err != nil {
		return Job{}, err
	}
	if job.OwnerID != ownerID {
		return Job{}, ErrNotFound
	}
	if job.Status == StatusError {
		job.Retryable = RetryableCode(job.ErrorCode)
	}
	return job, nil
}

// List returns a project's jobs newest-first. Closed jobs are excluded
// unless includeClosed is set; a closed job remains reachable via Get.
func (s *Service) List(ctx context.Context, ownerID, projectID string, includeClosed bool, limit, offset int) ([]Job, error) {
	if projectID == "" {
		return nil, errors.New("projectID is required")
	}
	if s.Projects != nil {
		if _, err := s.Projects.GetOwned(ctx, ownerID, projectID); err != nil {
			if errors.Is(err, projects.ErrNotFound) {
				return nil, fmt.Errorf("project %s: %w", projectID, ErrNotFound)
			}
			return nil, err
		}
	}
	items, err := s.Repo.ListByProject(ctx, projectID, limit, offset)
	if err != nil {
		return nil, err
	}
	if includeClosed || s.Closed == nil {
		return items, nil
	}
	closed, err := s.Closed.ClosedIDs(ctx, projectID)
	if err != nil {
		return nil, err
	}
	out := make([]Job, 0, len(items))
	for _, job := range items {
		if _, isClosed := closed[job.ID]; isClosed {
			continue
		}
		out = append(out, job)
	}
	return out, nil
}

// Resume continues a job paused on missing data. Valid only from
// waiting_for_data; every required missing item must be covered by the
// supplied values. A resume that loses the race against a concurrent
// status change returns ErrStaleOperation and mutates nothing.
func (s *Service) Resume(ctx context.Context, ownerID, jobID string, supplied map[string]any) (Job, error) {
	job, err := s.Get(ctx, ownerID, jobID)
	if err != nil {
		return Job{}, err
	}
	if job.Status != StatusWaitingForData {
		return Job{}, fmt.Errorf("resume from %s: %w", job.Status, ErrInvalidTransition)
	}
	if uncovered := UncoveredRequired(job.MissingData, supplied); len(uncovered) > 0 {
		return Job{}, fmt.Errorf("%w: %s", ErrMissingRequiredField, strings.Join(uncovered, ", "))
	}

	update := JobUpdate{
		Status:      stringPtr(StatusInProgress),
		CurrentStep: stringPtr(StepAnalyzingQuestion),
		Progress:    intPtr(restartProgress),
		Steps:       stepsPtr(NewSteps()),
		MissingData: missingPtr([]MissingDataItem{}),
	}
	if err := s.Repo.UpdateIfStatus(ctx, jobID, StatusWaitingForData, update); err != nil {
		return Job{}, err
	}
	metrics.IncJobResumed()
	telemetry.Info("job.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"owner_id":          ownerID,
		"project_id":        job.ProjectID,
		"job_id":            jobID,
		"status":            StatusInProgress,
		"status_transition": StatusWaitingForData + "->" + StatusInProgress,
	})

	go s.runPipeline(backgroundWithRequestID(ctx), jobID, stringifySupplied(supplied))

	return s.Repo.GetByID(ctx, jobID)
}

// StatusPatch carries a partial external status update. Only named fields
// are written; later writes win per field.
type StatusPatch struct {
	Status      *string `json:"status"`
	CurrentStep *string `json:"currentStep"`
	Progress    *int    `json:"progress"`
	Steps       *[]Step `json:"steps"`
	Message     *string `json:"message"`
}

// ApplyStatusPatch applies a partial update from an external worker.
func (s *Service) ApplyStatusPatch(ctx context.Context, ownerID, jobID string, patch StatusPatch) (Job, error) {
	job, err := s.Get(ctx, ownerID, jobID)
	if err != nil {
		return Job{}, err
	}
	if patch.Status != nil && !ValidStatus(*patch.Status) {
		return Job{}, fmt.Errorf("unknown status %q: %w", *patch.Status, ErrInvalidTransition)
	}
	if patch.Progress != nil && (*patch.Progress < 0 || *patch.Progress > 100) {
		return Job{}, errors.New("progress must be between 0 and 100")
	}

	update := JobUpdate{
		Status:      patch.Status,
		CurrentStep: patch.CurrentStep,
		Progress:    patch.Progress,
		Steps:       patch.Steps,
	}
	if patch.Message != nil && patch.Steps == nil {
		steps := cloneSteps(job.Steps)
		name := job.CurrentStep
		if patch.CurrentStep != nil {
			name = *patch.CurrentStep
		}
		for i := range steps {
			if steps[i].Name == name {
				steps[i].Message = *patch.Message
				update.Steps = stepsPtr(steps)
				break
			}
		}
	}
	if update.Empty() {
		return job, nil
	}
	if err := s.Repo.Update(ctx, jobID, update); err != nil {
		return Job{}, err
	}
	return s.Repo.GetByID(ctx, jobID)
}

// StatusOwned returns the job's status, scoped to the owner.
func (s *Service) StatusOwned(ctx context.Context, ownerID, jobID string) (string, error) {
	job, err := s.Get(ctx, ownerID, jobID)
	if err != nil {
		return "", err
	}
	return job.Status, nil
}

// DeleteOwned removes the job record, scoped to the owner. Irreversible.
func (s *Service) DeleteOwned(ctx context.Context, ownerID, jobID string) error {
	if _, err := s.Get(ctx, ownerID, jobID); err != nil {
		return err
	}
	return s.Repo.Delete(ctx, jobID)
}

// ChatMessage is one turn of the follow-up conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatResult is the answer to a follow-up message.
type ChatResult struct {
	Reply          string       `json:"reply"`
	Hypotheses     []Hypothesis `json:"hypotheses"`
	ShouldRelaunch bool         `json:"shouldRelaunchAnalysis"`
}

// Chat answers a follow-up message about a finished job. When the reply
// changes any hypothesis value the job's hypotheses are persisted and the
// pipeline relaunches; an unchanged set triggers no new analysis.
func (s *Service) Chat(ctx context.Context, ownerID, jobID, message string, history []ChatMessage) (ChatResult, error) {
	if strings.TrimSpace(message) == "" {
		return ChatResult{}, errors.New("message is required")
	}
	if s.Prompt == nil {
		return ChatResult{}, errors.New("missing prompt client")
	}
	job, err := s.Get(ctx, ownerID, jobID)
	if err != nil {
		return ChatResult{}, err
	}
	if !Terminal(job.Status) {
		return ChatResult{}, fmt.Errorf("chat while %s: %w", job.Status, ErrInvalidTransition)
	}

	prompt := buildChatPrompt(job, history, message)
	raw, err := s.Prompt.Complete(ctx, prompt)
	if err != nil {
		return ChatResult{}, fmt.Errorf("ai chat: %w", err)
	}

	var parsed struct {
		Reply      string          `json:"reply"`
		Hypotheses []ai.Hypothesis `json:"hypotheses"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return ChatResult{}, fmt.Errorf("ai chat schema mismatch: %w", err)
	}

	proposed := fromAIHypotheses(parsed.Hypotheses)
	changed := HypothesesChanged(job.Hypotheses, proposed)
	result := ChatResult{
		Reply:          parsed.Reply,
		Hypotheses:     proposed,
		ShouldRelaunch: changed,
	}
	if !changed {
		result.Hypotheses = job.Hypotheses
		return result, nil
	}

	// The fresh run must not expose the prior run's outcome while it is
	// pending or in progress, so the terminal fields are cleared here.
	update := JobUpdate{
		Status:           stringPtr(StatusPending),
		CurrentStep:      stringPtr(StepAnalyzingQuestion),
		Progress:         intPtr(restartProgress),
		Steps:            stepsPtr(NewSteps()),
		MissingData:      missingPtr([]MissingDataItem{}),
		Hypotheses:       hypothesesPtr(proposed),
		Result:           resultPtr(nil),
		ErrorCode:        stringPtr(""),
		ErrorMessage:     stringPtr(""),
		ClearCompletedAt: true,
	}
	if err := s.Repo.UpdateIfStatus(ctx, jobID, job.Status, update); err != nil {
		return ChatResult{}, err
	}
	go s.runPipeline(backgroundWithRequestID(ctx), jobID, nil)
	return result, nil
}

func (s *Service) runPipeline(ctx context.Context, jobID string, supplied map[string]string) {
	defer func() {
		if r := recover(); r != nil {
			s.failJob(ctx, jobID, fmt.Errorf("panic: %v", r), nil)
		}
	}()
	startedAt := time.Now().UTC()

	job, err := s.Repo.GetByID(ctx, jobID)
	if err != nil {
		s.failJob(ctx, jobID, fmt.Errorf("job lookup: %w", err), &startedAt)
		return
	}
	if s.AI == nil {
		s.failJob(ctx, jobID, errors.New("missing ai client"), &startedAt)
		return
	}

	from := job.Status
	if err := s.Repo.Update(ctx, jobID, JobUpdate{
		Status:    stringPtr(StatusInProgress),
		StartedAt: &startedAt,
	}); err != nil {
		s.failJob(ctx, jobID, fmt.Errorf("set in_progress failed: %w", err), &startedAt)
		return
	}
	metrics.IncJobStarted()
	s.logStatus(ctx, job, StatusInProgress, from+"->"+StatusInProgress, nil)

	progress := job.Progress
	steps := NewSteps()
	now := func() time.Time { return time.Now().UTC() }

	// analyzing_question
	steps = startStep(steps, 0, now())
	if err := s.persistSteps(ctx, jobID, steps, StepAnalyzingQuestion, &progress); err != nil {
		s.failJob(ctx, jobID, fmt.Errorf("persist steps failed: %w", err), &startedAt)
		return
	}
	hypotheses := job.Hypotheses
	questionMsg := fmt.Sprintf("using %d existing hypotheses", len(hypotheses))
	if len(hypotheses) == 0 {
		interp, err := s.AI.Interpret(ctx, ai.InterpretInput{Question: job.Question})
		if err != nil {
			s.failStepAndJob(ctx, jobID, steps, 0, fmt.Errorf("ai interpret: %w", err), &startedAt, &progress)
			return
		}
		hypotheses = fromAIHypotheses(interp.Hypotheses)
		if err := s.Repo.Update(ctx, jobID, JobUpdate{Hypotheses: hypothesesPtr(hypotheses)}); err != nil {
			s.failJob(ctx, jobID, fmt.Errorf("persist hypotheses failed: %w", err), &startedAt)
			return
		}
		questionMsg = fmt.Sprintf("%s: %d hypotheses proposed", interp.DecisionType, len(hypotheses))
	}
	steps = completeStep(steps, 0, questionMsg, now())

	// checking_files
	steps = startStep(steps, 1, now())
	if err := s.persistSteps(ctx, jobID, steps, StepCheckingFiles, &progress); err != nil {
		s.failJob(ctx, jobID, fmt.Errorf("persist steps failed: %w", err), &startedAt)
		return
	}
	fileContext, filesMsg := s.collectFileContext(ctx, job)
	steps = completeStep(steps, 1, filesMsg, now())

	// analyzing_structure
	steps = startStep(steps, 2, now())
	if err := s.persistSteps(ctx, jobID, steps, StepAnalyzingStructure, &progress); err != nil {
		s.failJob(ctx, jobID, fmt.Errorf("persist steps failed: %w", err), &startedAt)
		return
	}
	steps = completeStep(steps, 2, fmt.Sprintf("%d hypotheses, %d supplied values", len(hypotheses), len(supplied)), now())

	// calculating_metrics
	steps = startStep(steps, 3, now())
	if err := s.persistSteps(ctx, jobID, steps, StepCalculatingMetrics, &progress); err != nil {
		s.failJob(ctx, jobID, fmt.Errorf("persist steps failed: %w", err), &startedAt)
		return
	}
	outcome, err := s.AI.Analyze(ctx, ai.AnalyzeInput{
		Question:     job.Question,
		FileContext:  fileContext,
		Hypotheses:   toAIHypotheses(hypotheses),
		ProvidedData: supplied,
	})
	if err != nil {
		s.failStepAndJob(ctx, jobID, steps, 3, fmt.Errorf("ai analyze: %w", err), &startedAt, &progress)
		return
	}
	if outcome.NeedsData() {
		s.pauseForData(ctx, job, steps, outcome.MissingInputs, &progress)
		return
	}
	steps = completeStep(steps, 3, "metrics computed", now())

	// generating_scenarios
	steps = startStep(steps, 4, now())
	if err := s.persistSteps(ctx, jobID, steps, StepGeneratingScenarios, &progress); err != nil {
		s.failJob(ctx, jobID, fmt.Errorf("persist steps failed: %w", err), &startedAt)
		return
	}
	steps = completeStep(steps, 4, "scenarios generated", now())

	// creating_recommendations
	steps = startStep(steps, 5, now())
	if err := s.persistSteps(ctx, jobID, steps, StepCreatingRecommendations, &progress); err != nil {
		s.failJob(ctx, jobID, fmt.Errorf("persist steps failed: %w", err), &startedAt)
		return
	}
	result, err := ValidateReport(outcome.Report)
	if err != nil {
		s.failStepAndJob(ctx, jobID, steps, 5, fmt.Errorf("ai report: %w", err), &startedAt, &progress)
		return
	}
	steps = completeStep(steps, 5, "recommendations ready", now())

	completedAt := time.Now().UTC()
	final := 100
	if err := s.Repo.Update(ctx, jobID, JobUpdate{
		Status:      stringPtr(StatusCompleted),
		CurrentStep: stringPtr(StepCreatingRecommendations),
		Progress:    &final,
		Steps:       stepsPtr(steps),
		Result:      resultPtr(result),
		CompletedAt: &completedAt,
	}); err != nil {
		s.failJob(ctx, jobID, fmt.Errorf("set result failed: %w", err), &startedAt)
		return
	}
	metrics.IncJobCompleted()
	metrics.ObservePipelineDurationMs(durationMs(&startedAt, &completedAt))
	s.logStatus(ctx, job, StatusCompleted, StatusInProgress+"->"+StatusCompleted, map[string]any{
		"duration_ms": durationMs(&startedAt, &completedAt),
	})
}

// persistSteps writes the step slice with derived progress. Progress never
// moves backwards within a run.
func (s *Service) persistSteps(ctx context.Context, jobID string, steps []Step, currentStep string, progress *int) error {
	derived := DeriveProgress(steps)
	if derived > *progress {
		*progress = derived
	}
	return s.Repo.Update(ctx, jobID, JobUpdate{
		CurrentStep: stringPtr(currentStep),
		Progress:    intPtr(*progress),
		Steps:       stepsPtr(cloneSteps(steps)),
	})
}

func (s *Service) collectFileContext(ctx context.Context, job Job) (string, string) {
	if len(job.InputFileIDs) == 0 {
		return "", "no data files attached"
	}
	if s.Files == nil {
		return "", "file store unavailable, proceeding without files"
	}
	var parts []string
	var skipped []string
	for _, fileID := range job.InputFileIDs {
		file, err := s.Files.GetOwned(ctx, job.OwnerID, fileID)
		if err != nil {
			skipped = append(skipped, fileID)
			telemetry.Warn("job.file.skipped", map[string]any{
				"request_id": requestIDFromContext(ctx),
				"job_id":     job.ID,
				"file_id":    fileID,
				"err":        err.Error(),
			})
			continue
		}
		parts = append(parts, s.Files.PreviewText(ctx, file))
	}
	msg := fmt.Sprintf("%d of %d files loaded", len(parts), len(job.InputFileIDs))
	if len(skipped) > 0 {
		msg += ", skipped: " + strings.Join(skipped, ", ")
	}
	return strings.Join(parts, "\n\n"), msg
}

// pauseForData moves the job into waiting_for_data with the model's
// missing-input list. Steps stop advancing until resume.
func (s *Service) pauseForData(ctx context.Context, job Job, steps []Step, inputs []ai.MissingInput, progress *int) {
	missing := fromAIMissing(inputs)
	if len(steps) > 3 {
		steps[3].Message = "waiting for additional data"
	}
	derived := DeriveProgress(steps)
	if derived > *progress {
		*progress = derived
	}
	if err := s.Repo.Update(ctx, job.ID, JobUpdate{
		Status:      stringPtr(StatusWaitingForData),
		CurrentStep: stringPtr(StepCalculatingMetrics),
		Progress:    intPtr(*progress),
		Steps:       stepsPtr(steps),
		MissingData: missingPtr(missing),
	}); err != nil {
		s.failJob(ctx, job.ID, fmt.Errorf("set waiting_for_data failed: %w", err), nil)
		return
	}
	metrics.IncJobWaitingData()
	s.logStatus(ctx, job, StatusWaitingForData, StatusInProgress+"->"+StatusWaitingForData, map[string]any{
		"missing_items": len(missing),
	})
}

func (s *Service) failStepAndJob(ctx context.Context, jobID string, steps []Step, idx int, err error, startedAt *time.Time, progress *int) {
	steps = failStep(steps, idx, sanitizeError(err), time.Now().UTC())
	if updateErr := s.Repo.Update(ctx, jobID, JobUpdate{
		Progress: intPtr(*progress),
		Steps:    stepsPtr(steps),
	}); updateErr != nil {
		telemetry.Error("job.steps.update_failed", map[string]any{
			"job_id": jobID,
			"err":    updateErr.Error(),
		})
	}
	s.failJob(ctx, jobID, err, startedAt)
}

// failJob records the failure on the job. Uses a background context for
// the write so a canceled request context cannot lose the error state.
func (s *Service) failJob(ctx context.Context, jobID string, err error, startedAt *time.Time) {
	code := classifyFailure(err)
	msg := sanitizeError(err)
	completedAt := time.Now().UTC()
	if updateErr := s.Repo.Update(context.Background(), jobID, JobUpdate{
		Status:       stringPtr(StatusError),
		ErrorCode:    &code,
		ErrorMessage: &msg,
		CompletedAt:  &completedAt,
	}); updateErr != nil {
		telemetry.Error("job.fail.update_failed", map[string]any{
			"job_id": jobID,
			"err":    updateErr.Error(),
			"orig":   msg,
		})
	}
	metrics.IncJobFailed()
	if startedAt != nil {
		metrics.ObservePipelineDurationMs(durationMs(startedAt, &completedAt))
	}
	telemetry.Info("job.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"job_id":            jobID,
		"status":            StatusError,
		"status_transition": StatusInProgress + "->" + StatusError,
		"error_code":        code,
	})
}

func (s *Service) logStatus(ctx context.Context, job Job, status, transition string, extra map[string]any) {
	fields := map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"owner_id":          job.OwnerID,
		"project_id":        job.ProjectID,
		"job_id":            job.ID,
		"status":            status,
		"status_transition": transition,
	}
	for k, v := range extra {
		fields[k] = v
	}
	telemetry.Info("job.status", fields)
}

func durationMs(startedAt, completedAt *time.Time) float64 {
	if startedAt == nil || completedAt == nil {
		return 0
	}
	return float64(completedAt.Sub(*startedAt).Microseconds()) / 1000.0
}

func classifyFailure(err error) string {
	if err == nil {
		return ErrorCodeInternal
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorCodeAITimeout
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "openai request timeout") {
		return ErrorCodeAITimeout
	}
	if strings.Contains(msg, "timeout") && strings.Contains(msg, "ai") {
		return ErrorCodeAITimeout
	}
	if strings.Contains(msg, "schema mismatch") || strings.Contains(msg, "invalid json") {
		return ErrorCodeAISchemaMismatch
	}
	if strings.Contains(msg, "validation") {
		return ErrorCodeValidation
	}
	if strings.Contains(msg, "lookup") || strings.Contains(msg, "persist") ||
		strings.Contains(msg, "failed:") || strings.Contains(msg, "storage") {
		return ErrorCodeStorage
	}
	return ErrorCodeInternal
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 500
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	return msg
}

func buildChatPrompt(job Job, history []ChatMessage, message string) string {
	template, _ := ai.PromptTemplate("chat")
	var b strings.Builder
	b.WriteString(template)
	fmt.Fprintf(&b, "\nQuestion:\n%s\n", job.Question)
	if len(job.Result) > 0 {
		fmt.Fprintf(&b, "\nFinal Report:\n%s\n", string(job.Result))
	}
	if raw, err := json.Marshal(job.Hypotheses); err == nil {
		fmt.Fprintf(&b, "\nWorking Hypotheses:\n%s\n", string(raw))
	}
	if len(history) > 0 {
		b.WriteString("\nChat History:\n")
		for _, turn := range history {
			fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Content)
		}
	}
	fmt.Fprintf(&b, "\nUser Message:\n%s\n", message)
	return b.String()
}

func fromAIHypotheses(in []ai.Hypothesis) []Hypothesis {
	out := make([]Hypothesis, 0, len(in))
	for _, h := range in {
		out = append(out, Hypothesis{ID: h.ID, Label: h.Label, Kind: h.Kind, Value: h.Value})
	}
	return out
}

func toAIHypotheses(in []Hypothesis) []ai.Hypothesis {
	out := make([]ai.Hypothesis, 0, len(in))
	for _, h := range in {
		out = append(out, ai.Hypothesis{ID: h.ID, Label: h.Label, Kind: h.Kind, Value: h.Value})
	}
	return out
}

func fromAIMissing(in []ai.MissingInput) []MissingDataItem {
	out := make([]MissingDataItem, 0, len(in))
	for _, item := range in {
		out = append(out, MissingDataItem{
			ID:          item.ID,
			Description: item.Description,
			Required:    item.Required,
			Kind:        item.Kind,
		})
	}
	return out
}
