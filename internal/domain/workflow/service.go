// Package workflow implements the content-generation workflow coordinator:
// the resumable state machine that drives writing, formatting, ideation, and
// the human approval loop over a persisted conversation.
package workflow

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"contentpilot/workflow-api/internal/domain/conversation"
	"contentpilot/workflow-api/internal/domain/errors"
	"contentpilot/workflow-api/internal/domain/idea"
	"contentpilot/workflow-api/internal/domain/llm"
	"contentpilot/workflow-api/internal/domain/prompt"
	"contentpilot/workflow-api/internal/domain/retry"
	"contentpilot/workflow-api/internal/domain/source"
	"contentpilot/workflow-api/internal/domain/stage"
	"contentpilot/workflow-api/internal/domain/status"
	"contentpilot/workflow-api/internal/domain/template"
	"contentpilot/workflow-api/internal/infrastructure/metrics"
	"contentpilot/workflow-api/internal/infrastructure/observability"
)

// DefaultGenerationBudget is the wall-clock bound on one drafting call.
const DefaultGenerationBudget = 5 * time.Minute

// DraftMinLength is the minimum acceptable drafting output length.
const DraftMinLength = 50

// summaryWindow is how many recent messages feed a summary refresh.
const summaryWindow = 200

// summaryRefreshThreshold is the transcript length past which revision turns
// refresh the running summary.
const summaryRefreshThreshold = 30

// ErrNotWaitingForUser is returned by Continue when the conversation is not
// blocked on user input. No state is mutated and no message is appended.
var ErrNotWaitingForUser = errors.NewPrecondition(errors.CodeNotWaitingForUser,
	"conversation is not waiting for user input; start a new request or generate ideas first")

// StageInvoker runs one generation stage. Satisfied by *stage.Invoker.
type StageInvoker interface {
	Invoke(ctx context.Context, conversationID string, cfg stage.Config, task stage.Task) (string, error)
}

// TemplateResolver resolves drafting templates. Satisfied by
// *template.Resolver.
type TemplateResolver interface {
	Resolve(ctx context.Context, explicitID, category, format string) (*template.Template, error)
}

// Result is the outcome of a coordinator operation.
type Result struct {
	ConversationID string        `json:"conversation_id"`
	Status         status.Status `json:"status"`
	Output         string        `json:"output,omitempty"`
	Ideas          *idea.Batch   `json:"ideas,omitempty"`
}

// Service is the coordinator contract exposed to the HTTP layer and workers.
type Service interface {
	ProcessRequest(ctx context.Context, conversationID, request string) (*Result, error)
	Continue(ctx context.Context, conversationID, feedback string) (*Result, error)
	GenerateIdeas(ctx context.Context, conversationID, sourceRef string) (*Result, error)
	GenerateFromIdea(ctx context.Context, conversationID string, ideaIndex int, templateID string) (*Result, error)
	IsComplete(ctx context.Context, conversationID string) (bool, error)
	GetState(ctx context.Context, conversationID string) (*State, error)
}

// Coordinator drives content workflows over a conversation store.
type Coordinator struct {
	store    conversation.Store
	invoker  StageInvoker
	provider llm.Provider
	registry prompt.Registry
	resolver TemplateResolver
	fetcher  source.Fetcher
	policy   retry.Policy
	budget   time.Duration
	log      zerolog.Logger
}

// Option customizes a Coordinator.
type Option func(*Coordinator)

// WithRetryPolicy overrides the drafting retry policy.
func WithRetryPolicy(p retry.Policy) Option {
	return func(c *Coordinator) { c.policy = p }
}

// NewCoordinator creates a workflow coordinator. fetcher may be nil when no
// reader service is configured; requests with source URLs then proceed
// without fetched material.
func NewCoordinator(
	store conversation.Store,
	invoker StageInvoker,
	provider llm.Provider,
	registry prompt.Registry,
	resolver TemplateResolver,
	fetcher source.Fetcher,
	budget time.Duration,
	log zerolog.Logger,
	opts ...Option,
) *Coordinator {
	if budget <= 0 {
		budget = DefaultGenerationBudget
	}
	c := &Coordinator{
		store:    store,
		invoker:  invoker,
		provider: provider,
		registry: registry,
		resolver: resolver,
		fetcher:  fetcher,
		policy:   retry.DefaultPolicy(),
		budget:   budget,
		log:      log.With().Str("component", "workflow_coordinator").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ProcessRequest runs the full write-then-format pipeline for a new user
// request. An empty conversationID starts a fresh conversation.
func (c *Coordinator) ProcessRequest(ctx context.Context, conversationID, request string) (*Result, error) {
	conv, err := c.findOrCreate(ctx, conversationID, request)
	if err != nil {
		return nil, err
	}
	conversationID = conv.PublicID
	log := c.log.With().Str("conversation_id", conversationID).Logger()

	ctx, span := observability.StartWorkflowSpan(ctx, "process_request", conversationID)
	defer span.End()

	if _, err := c.store.AppendMessage(ctx, conversationID, conversation.NewMessage{
		Role:    conversation.RoleUser,
		Content: request,
	}); err != nil {
		return nil, fmt.Errorf("failed to append request: %w", err)
	}

	inst := source.ParseInstruction(request)
	startedAt := time.Now().UTC()
	if err := c.store.MergeState(ctx, conversationID, map[string]any{
		keyStatus:              string(status.StatusInProgress),
		keyWaitingForUser:      false,
		keyUserRequest:         request,
		keyCategory:            inst.Category,
		keyWriterComplete:      false,
		keyFormatComplete:      false,
		keyUserSatisfied:       false,
		keyCurrentDraft:        "",
		keyFinalOutput:         "",
		keyRetryCount:          0,
		keyLastError:           "",
		keyErrorMessage:        "",
		keyGenerationStartedAt: startedAt.Format(time.RFC3339),
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize workflow state: %w", err)
	}

	doc := c.fetchSource(ctx, log, inst)

	draft, err := c.invoker.Invoke(ctx, conversationID,
		stage.Config{Role: stage.RoleWriter, Effort: llm.EffortDefault},
		stage.Task{Payload: buildWriterPayload(inst, doc), Metadata: map[string]any{"kind": "write"}})
	if err != nil {
		return nil, c.recordFailure(ctx, "process_request", conversationID, err)
	}
	if err := c.store.MergeState(ctx, conversationID, map[string]any{
		keyWriterComplete: true,
		keyCurrentDraft:   draft,
	}); err != nil {
		return nil, fmt.Errorf("failed to record draft: %w", err)
	}

	tmpl, err := c.resolver.Resolve(ctx, "", inst.Category, inst.Format)
	if err != nil {
		log.Warn().Err(err).Msg("Template resolution failed, using default styling")
		tmpl = nil
	}

	formatMeta := map[string]any{"kind": "format"}
	if tmpl != nil {
		formatMeta["template_id"] = tmpl.ID.String()
	}
	output, err := c.invoker.Invoke(ctx, conversationID,
		stage.Config{Role: stage.RoleFormatter, Effort: llm.EffortDefault},
		stage.Task{Payload: buildFormatterPayload(draft, tmpl), Metadata: formatMeta})
	if err != nil {
		return nil, c.recordFailure(ctx, "process_request", conversationID, err)
	}

	doneAt := time.Now().UTC()
	if err := c.store.MergeState(ctx, conversationID, map[string]any{
		keyStatus:           string(status.StatusWaitingApproval),
		keyWaitingForUser:   true,
		keyFormatComplete:   true,
		keyFinalOutput:      output,
		keyGenerationDoneAt: doneAt.Format(time.RFC3339),
		keyGenerationTime:   doneAt.Sub(startedAt).Seconds(),
	}); err != nil {
		return nil, fmt.Errorf("failed to record output: %w", err)
	}

	observability.AddStatusTransition(span, string(status.StatusInProgress), string(status.StatusWaitingApproval))
	metrics.RecordWorkflow("process_request", "success")
	log.Info().Dur("elapsed", doneAt.Sub(startedAt)).Msg("Request processed, waiting for approval")
	return &Result{ConversationID: conversationID, Status: status.StatusWaitingApproval, Output: output}, nil
}

// Continue handles user feedback on a waiting conversation: approval
// completes the workflow, anything else triggers a formatting revision and
// returns to the same waiting state.
func (c *Coordinator) Continue(ctx context.Context, conversationID, feedback string) (*Result, error) {
	state, err := c.readState(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !state.WaitingForUser || state.Status != status.StatusWaitingApproval {
		return nil, ErrNotWaitingForUser
	}

	ctx, span := observability.StartWorkflowSpan(ctx, "continue", conversationID)
	defer span.End()

	if _, err := c.store.AppendMessage(ctx, conversationID, conversation.NewMessage{
		Role:    conversation.RoleUser,
		Content: feedback,
	}); err != nil {
		return nil, fmt.Errorf("failed to append feedback: %w", err)
	}

	if IsSatisfied(feedback) {
		if err := c.store.MergeState(ctx, conversationID, map[string]any{
			keyStatus:         string(status.StatusCompleted),
			keyWaitingForUser: false,
			keyUserSatisfied:  true,
		}); err != nil {
			return nil, fmt.Errorf("failed to complete workflow: %w", err)
		}
		observability.AddStatusTransition(span, string(state.Status), string(status.StatusCompleted))
		metrics.RecordWorkflow("continue", "success")
		c.log.Info().Str("conversation_id", conversationID).Msg("Workflow completed")
		return &Result{ConversationID: conversationID, Status: status.StatusCompleted, Output: state.FinalOutput}, nil
	}

	output, err := c.invoker.Invoke(ctx, conversationID,
		stage.Config{Role: stage.RoleFormatter, Effort: llm.EffortDefault},
		stage.Task{Payload: buildRevisionPayload(state.FinalOutput, feedback), Metadata: map[string]any{"kind": "revise", "feedback": feedback}})
	if err != nil {
		return nil, c.recordFailure(ctx, "continue", conversationID, err)
	}

	if err := c.store.MergeState(ctx, conversationID, map[string]any{
		keyStatus:         string(status.StatusWaitingApproval),
		keyWaitingForUser: true,
		keyFinalOutput:    output,
	}); err != nil {
		return nil, fmt.Errorf("failed to record revision: %w", err)
	}

	c.maybeRefreshSummary(ctx, conversationID)

	metrics.RecordWorkflow("continue", "success")
	return &Result{ConversationID: conversationID, Status: status.StatusWaitingApproval, Output: output}, nil
}

// GenerateIdeas runs the ideation stage over a source document and persists
// the validated batch. sourceRef is a reading-list URL or a raw document id.
func (c *Coordinator) GenerateIdeas(ctx context.Context, conversationID, sourceRef string) (*Result, error) {
	conv, err := c.findOrCreate(ctx, conversationID, "Content ideas")
	if err != nil {
		return nil, err
	}
	conversationID = conv.PublicID
	log := c.log.With().Str("conversation_id", conversationID).Logger()

	ctx, span := observability.StartWorkflowSpan(ctx, "generate_ideas", conversationID)
	defer span.End()

	strategist, err := c.registry.GetCurrent(ctx, stage.RoleStrategist)
	if err != nil {
		return nil, fmt.Errorf("failed to load strategist prompt: %w", err)
	}
	if strategist == nil {
		return nil, c.recordFailure(ctx, "generate_ideas", conversationID,
			errors.NewConfiguration(errors.CodeMissingPrompt, "no strategist prompt registered").
				WithConversation(conversationID))
	}

	doc, err := c.resolveSource(ctx, sourceRef)
	if err != nil {
		return nil, c.recordFailure(ctx, "generate_ideas", conversationID, err)
	}

	content := llm.Truncate(doc.Content, source.ContentBudget)
	input := fmt.Sprintf("Title: %s\nAuthor: %s\n\n%s", doc.Title, doc.Author, content)
	batch, err := c.provider.GenerateIdeaSet(ctx, strategist.Text, input)
	if err != nil {
		return nil, c.recordFailure(ctx, "generate_ideas", conversationID,
			errors.WrapStage(err, "ideation failed").WithConversation(conversationID))
	}

	if batch.SourceTitle == "" {
		batch.SourceTitle = doc.Title
	}
	if batch.SourceAuthor == "" {
		batch.SourceAuthor = doc.Author
	}
	if err := batch.Validate(); err != nil {
		return nil, c.recordFailure(ctx, "generate_ideas", conversationID, err)
	}

	ideasValue, err := ideasToValue(batch)
	if err != nil {
		return nil, err
	}
	if err := c.store.MergeState(ctx, conversationID, map[string]any{
		keyStatus:            string(status.StatusIdeasGenerated),
		keyAwaitingSelection: true,
		keyWaitingForUser:    false,
		keyIdeas:             ideasValue,
		keySourceContent:     content,
	}); err != nil {
		return nil, fmt.Errorf("failed to persist idea batch: %w", err)
	}

	if _, err := c.store.AppendMessage(ctx, conversationID, conversation.NewMessage{
		Role:      conversation.RoleAssistant,
		AgentRole: stage.RoleStrategist,
		Content:   buildIdeaSummary(batch),
		Metadata:  map[string]any{"ideas": ideasValue, "prompt_version": strategist.Version},
	}); err != nil {
		return nil, fmt.Errorf("failed to append idea summary: %w", err)
	}

	metrics.RecordWorkflow("generate_ideas", "success")
	log.Info().Int("ideas", len(batch.Ideas)).Str("source", batch.SourceTitle).Msg("Idea batch generated")
	return &Result{ConversationID: conversationID, Status: status.StatusIdeasGenerated, Ideas: batch}, nil
}

// GenerateFromIdea drafts a full post from a previously generated idea,
// under the retry policy and the wall-clock generation budget.
func (c *Coordinator) GenerateFromIdea(ctx context.Context, conversationID string, ideaIndex int, templateID string) (*Result, error) {
	state, err := c.readState(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	ctx, span := observability.StartWorkflowSpan(ctx, "generate_from_idea", conversationID)
	defer span.End()

	if state.Ideas == nil {
		return nil, c.recordFailure(ctx, "generate_from_idea", conversationID,
			errors.NewPrecondition(errors.CodeNoIdeaBatch, "no idea batch in this conversation; generate ideas first").
				WithConversation(conversationID))
	}
	selected, err := state.Ideas.At(ideaIndex)
	if err != nil {
		return nil, c.recordFailure(ctx, "generate_from_idea", conversationID, err)
	}
	if !selected.RequiredFields() {
		return nil, c.recordFailure(ctx, "generate_from_idea", conversationID,
			errors.NewPrecondition(errors.CodeIdeaMissingFields,
				fmt.Sprintf("idea %d is missing required fields", ideaIndex)).
				WithConversation(conversationID))
	}

	hints := selected.DeriveHints()
	tmpl, err := c.resolver.Resolve(ctx, templateID, hints.Category, hints.Format)
	if err != nil {
		c.log.Warn().Err(err).Str("conversation_id", conversationID).
			Msg("Template resolution failed, using default styling")
		tmpl = nil
	}

	startedAt := time.Now().UTC()
	if err := c.store.MergeState(ctx, conversationID, map[string]any{
		keyStatus:              string(status.StatusInProgress),
		keyWaitingForUser:      false,
		keyAwaitingSelection:   false,
		keyRetryCount:          0,
		keyLastError:           "",
		keyGenerationStartedAt: startedAt.Format(time.RFC3339),
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize drafting state: %w", err)
	}

	payload := buildIdeaDraftPayload(selected, state.Ideas, state.SourceContent, tmpl)
	draftMeta := map[string]any{"kind": "draft_from_idea", "idea_index": ideaIndex}
	if tmpl != nil {
		draftMeta["template_id"] = tmpl.ID.String()
	}

	genCtx, cancel := context.WithDeadline(ctx, startedAt.Add(c.budget))
	defer cancel()

	output, err := retry.ExecuteWithResult(genCtx, c.policy,
		func(ctx context.Context) (string, error) {
			return c.invoker.Invoke(ctx, conversationID,
				stage.Config{Role: stage.RoleFormatter, Effort: llm.EffortHigh},
				stage.Task{
					Payload:   payload,
					Metadata:  draftMeta,
					MinLength: DraftMinLength,
				})
		},
		isRetryable,
		func(ctx context.Context, attempt int, attemptErr error) {
			metrics.StageRetriesTotal.WithLabelValues(stage.RoleFormatter).Inc()
			observability.AddRetryEvent(span, attempt, attemptErr.Error())
			if mergeErr := c.store.MergeState(ctx, conversationID, map[string]any{
				keyRetryCount: attempt,
				keyLastError:  attemptErr.Error(),
			}); mergeErr != nil {
				c.log.Warn().Err(mergeErr).Str("conversation_id", conversationID).
					Msg("Failed to persist retry progress")
			}
		})
	if err != nil {
		observability.RecordError(span, err)
		if genCtx.Err() != nil {
			return nil, c.recordFailure(ctx, "generate_from_idea", conversationID,
				errors.NewTimeout(fmt.Sprintf("drafting exceeded the %s budget", c.budget)).
					WithCause(err).WithConversation(conversationID))
		}
		return nil, c.recordFailure(ctx, "generate_from_idea", conversationID, err)
	}

	selectedValue, err := ideaToValue(selected)
	if err != nil {
		return nil, err
	}
	doneAt := time.Now().UTC()
	if err := c.store.MergeState(ctx, conversationID, map[string]any{
		keyStatus:           string(status.StatusWaitingApproval),
		keyWaitingForUser:   true,
		keyFormatComplete:   true,
		keyFinalOutput:      output,
		keyCurrentDraft:     output,
		keySelectedIdea:     selectedValue,
		keyGenerationDoneAt: doneAt.Format(time.RFC3339),
		keyGenerationTime:   doneAt.Sub(startedAt).Seconds(),
	}); err != nil {
		return nil, fmt.Errorf("failed to record drafted post: %w", err)
	}

	observability.AddStatusTransition(span, string(status.StatusInProgress), string(status.StatusWaitingApproval))
	metrics.RecordWorkflow("generate_from_idea", "success")
	c.log.Info().Str("conversation_id", conversationID).Int("idea_index", ideaIndex).
		Dur("elapsed", doneAt.Sub(startedAt)).Msg("Idea drafted, waiting for approval")
	return &Result{ConversationID: conversationID, Status: status.StatusWaitingApproval, Output: output}, nil
}

// IsComplete reports whether the workflow has finished.
func (c *Coordinator) IsComplete(ctx context.Context, conversationID string) (bool, error) {
	state, err := c.readState(ctx, conversationID)
	if err != nil {
		return false, err
	}
	return state.IsComplete(), nil
}

// GetState returns the typed workflow state for the conversation.
func (c *Coordinator) GetState(ctx context.Context, conversationID string) (*State, error) {
	return c.readState(ctx, conversationID)
}

// UpdateRunningSummary refreshes the stored conversation summary from the
// recent transcript. Failures are non-fatal to the workflow.
func (c *Coordinator) UpdateRunningSummary(ctx context.Context, conversationID string) error {
	messages, err := c.store.ListMessages(ctx, conversationID, summaryWindow, 0)
	if err != nil {
		return fmt.Errorf("failed to list messages for summary: %w", err)
	}
	if len(messages) == 0 {
		return nil
	}

	var transcript strings.Builder
	for _, msg := range messages {
		fmt.Fprintf(&transcript, "%s: %s\n", msg.Role, llm.Truncate(msg.Content, 500))
	}

	summary, err := c.provider.Generate(ctx,
		"Summarize this conversation in a few sentences, keeping the user's goals and any decisions made.",
		[]llm.ChatMessage{{Role: conversation.RoleUser, Content: transcript.String()}},
		llm.EffortDefault)
	if err != nil {
		return fmt.Errorf("failed to summarize conversation: %w", err)
	}
	return c.store.WriteSummary(ctx, conversationID, summary)
}

// maybeRefreshSummary updates the running summary once the transcript has
// grown past the threshold. Failures are logged, never surfaced.
func (c *Coordinator) maybeRefreshSummary(ctx context.Context, conversationID string) {
	messages, err := c.store.ListMessages(ctx, conversationID, summaryRefreshThreshold, 0)
	if err != nil || len(messages) < summaryRefreshThreshold {
		return
	}
	if err := c.UpdateRunningSummary(ctx, conversationID); err != nil {
		c.log.Warn().Err(err).Str("conversation_id", conversationID).
			Msg("Failed to refresh conversation summary")
	}
}

func (c *Coordinator) findOrCreate(ctx context.Context, conversationID, title string) (*conversation.Conversation, error) {
	if conversationID == "" {
		conv, err := c.store.Create(ctx, llm.Truncate(strings.TrimSpace(title), 80))
		if err != nil {
			return nil, fmt.Errorf("failed to create conversation: %w", err)
		}
		return conv, nil
	}
	conv, err := c.store.FindByPublicID(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	if conv == nil {
		return nil, errors.NewPrecondition(errors.CodeConversationNotFound,
			fmt.Sprintf("conversation %q not found", conversationID))
	}
	return conv, nil
}

func (c *Coordinator) readState(ctx context.Context, conversationID string) (*State, error) {
	conv, err := c.store.FindByPublicID(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	if conv == nil {
		return nil, errors.NewPrecondition(errors.CodeConversationNotFound,
			fmt.Sprintf("conversation %q not found", conversationID))
	}
	blob, err := c.store.ReadState(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow state: %w", err)
	}
	return StateFromMap(blob)
}

// fetchSource pulls the source document referenced by the instruction, from
// the explicit url field or a reader URL found in the free text. Fetch
// failures degrade to drafting without source material.
func (c *Coordinator) fetchSource(ctx context.Context, log zerolog.Logger, inst source.Instruction) *source.Document {
	if c.fetcher == nil {
		return nil
	}
	url := inst.URL
	if url == "" {
		url = source.ExtractReaderURL(inst.Raw)
	}
	if url == "" {
		return nil
	}
	docID := source.ExtractDocumentID(url)
	if docID == "" {
		return nil
	}
	doc, err := c.fetcher.FetchDocument(ctx, docID)
	if err != nil {
		log.Warn().Err(err).Str("document_id", docID).Msg("Source fetch failed, drafting without source")
		return nil
	}
	doc.Content = source.CleanContent(doc.Content)
	return doc
}

// resolveSource loads the ideation source document; unlike fetchSource this
// is a hard requirement.
func (c *Coordinator) resolveSource(ctx context.Context, sourceRef string) (*source.Document, error) {
	if c.fetcher == nil {
		return nil, errors.NewConfiguration(errors.CodeSourceUnavailable, "no reader service configured")
	}
	docID := source.ExtractDocumentID(sourceRef)
	if docID == "" {
		docID = strings.TrimSpace(sourceRef)
	}
	if docID == "" {
		return nil, errors.NewPrecondition(errors.CodeSourceUnavailable, "a source document reference is required")
	}
	doc, err := c.fetcher.FetchDocument(ctx, docID)
	if err != nil {
		return nil, errors.NewStage(errors.CodeSourceUnavailable, "failed to fetch source document").WithCause(err)
	}
	doc.Content = source.CleanContent(doc.Content)
	return doc, nil
}

// recordFailure writes the error fields into workflow state before the
// error is surfaced. The precondition "not waiting" check never reaches
// here, so Continue on an active conversation stays side-effect free.
func (c *Coordinator) recordFailure(ctx context.Context, operation, conversationID string, cause error) error {
	c.log.Error().Err(cause).Str("operation", operation).Str("conversation_id", conversationID).Msg("Workflow failed")
	metrics.RecordWorkflow(operation, "error")
	if mergeErr := c.store.MergeState(ctx, conversationID, map[string]any{
		keyStatus:         string(status.StatusError),
		keyWaitingForUser: false,
		keyErrorMessage:   cause.Error(),
		keyErrorTime:      time.Now().UTC().Format(time.RFC3339),
	}); mergeErr != nil {
		c.log.Error().Err(mergeErr).Str("conversation_id", conversationID).
			Msg("Failed to record workflow error state")
	}
	return cause
}

func isRetryable(err error) bool {
	var wfErr *errors.WorkflowError
	if stderrors.As(err, &wfErr) {
		return wfErr.IsRetryable()
	}
	return true
}
