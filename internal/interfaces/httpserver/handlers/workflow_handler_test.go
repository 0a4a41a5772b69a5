package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"contentpilot/workflow-api/internal/domain/conversation"
	"contentpilot/workflow-api/internal/domain/idea"
	"contentpilot/workflow-api/internal/domain/status"
	"contentpilot/workflow-api/internal/domain/workflow"
	"contentpilot/workflow-api/internal/infrastructure/queue"
	"contentpilot/workflow-api/internal/interfaces/httpserver/handlers"
)

// MockWorkflowService is a function-field mock of workflow.Service.
type MockWorkflowService struct {
	ProcessRequestFunc   func(ctx context.Context, conversationID, request string) (*workflow.Result, error)
	ContinueFunc         func(ctx context.Context, conversationID, feedback string) (*workflow.Result, error)
	GenerateIdeasFunc    func(ctx context.Context, conversationID, sourceRef string) (*workflow.Result, error)
	GenerateFromIdeaFunc func(ctx context.Context, conversationID string, ideaIndex int, templateID string) (*workflow.Result, error)
	IsCompleteFunc       func(ctx context.Context, conversationID string) (bool, error)
	GetStateFunc         func(ctx context.Context, conversationID string) (*workflow.State, error)
}

func (m *MockWorkflowService) ProcessRequest(ctx context.Context, conversationID, request string) (*workflow.Result, error) {
	if m.ProcessRequestFunc != nil {
		return m.ProcessRequestFunc(ctx, conversationID, request)
	}
	return nil, nil
}

func (m *MockWorkflowService) Continue(ctx context.Context, conversationID, feedback string) (*workflow.Result, error) {
	if m.ContinueFunc != nil {
		return m.ContinueFunc(ctx, conversationID, feedback)
	}
	return nil, nil
}

func (m *MockWorkflowService) GenerateIdeas(ctx context.Context, conversationID, sourceRef string) (*workflow.Result, error) {
	if m.GenerateIdeasFunc != nil {
		return m.GenerateIdeasFunc(ctx, conversationID, sourceRef)
	}
	return nil, nil
}

func (m *MockWorkflowService) GenerateFromIdea(ctx context.Context, conversationID string, ideaIndex int, templateID string) (*workflow.Result, error) {
	if m.GenerateFromIdeaFunc != nil {
		return m.GenerateFromIdeaFunc(ctx, conversationID, ideaIndex, templateID)
	}
	return nil, nil
}

func (m *MockWorkflowService) IsComplete(ctx context.Context, conversationID string) (bool, error) {
	if m.IsCompleteFunc != nil {
		return m.IsCompleteFunc(ctx, conversationID)
	}
	return false, nil
}

func (m *MockWorkflowService) GetState(ctx context.Context, conversationID string) (*workflow.State, error) {
	if m.GetStateFunc != nil {
		return m.GetStateFunc(ctx, conversationID)
	}
	return &workflow.State{}, nil
}

// MockStore is a function-field mock of conversation.Store. Only the methods
// the workflow handler touches carry behavior.
type MockStore struct {
	CreateFunc func(ctx context.Context, title string) (*conversation.Conversation, error)
}

func (m *MockStore) Create(ctx context.Context, title string) (*conversation.Conversation, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, title)
	}
	return &conversation.Conversation{PublicID: "conv_test"}, nil
}

func (m *MockStore) FindByPublicID(ctx context.Context, publicID string) (*conversation.Conversation, error) {
	return nil, nil
}

func (m *MockStore) List(ctx context.Context, state string, limit, offset int) ([]*conversation.Conversation, error) {
	return nil, nil
}

func (m *MockStore) Archive(ctx context.Context, publicID string) error { return nil }

func (m *MockStore) AppendMessage(ctx context.Context, publicID string, msg conversation.NewMessage) (*conversation.Message, error) {
	return nil, nil
}

func (m *MockStore) ListMessages(ctx context.Context, publicID string, limit int, beforeSequence int64) ([]*conversation.Message, error) {
	return nil, nil
}

func (m *MockStore) ReadState(ctx context.Context, publicID string) (map[string]any, error) {
	return nil, nil
}

func (m *MockStore) MergeState(ctx context.Context, publicID string, partial map[string]any) error {
	return nil
}

func (m *MockStore) ReadSummary(ctx context.Context, publicID string) (string, error) {
	return "", nil
}

func (m *MockStore) WriteSummary(ctx context.Context, publicID string, summary string) error {
	return nil
}

// memoryJobQueue records enqueued jobs for assertions.
type memoryJobQueue struct {
	mu   sync.Mutex
	jobs []*queue.Job
}

func (q *memoryJobQueue) Enqueue(ctx context.Context, job *queue.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if job.PublicID == "" {
		job.PublicID = "job_test"
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *memoryJobQueue) Dequeue(ctx context.Context) (*queue.Job, error) { return nil, nil }

func (q *memoryJobQueue) MarkCompleted(ctx context.Context, publicID string) error { return nil }

func (q *memoryJobQueue) MarkFailed(ctx context.Context, publicID string, err error) error {
	return nil
}

func (q *memoryJobQueue) GetJob(ctx context.Context, publicID string) (*queue.Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, job := range q.jobs {
		if job.PublicID == publicID {
			return job, nil
		}
	}
	return nil, nil
}

func (q *memoryJobQueue) GetQueueDepth(ctx context.Context) (int64, error) { return 0, nil }

func setupWorkflowTestRouter(handler *handlers.WorkflowHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	v1 := r.Group("/v1")
	{
		v1.POST("/workflows/start", handler.Start)
		v1.POST("/workflows/ideas", handler.GenerateIdeas)
		v1.POST("/workflows/:conversation_id/continue", handler.Continue)
		v1.POST("/workflows/:conversation_id/select", handler.SelectIdea)
		v1.GET("/workflows/:conversation_id", handler.GetState)
		v1.GET("/jobs/:job_id", handler.GetJob)
	}
	return r
}

func TestWorkflowHandler_Start(t *testing.T) {
	mockService := &MockWorkflowService{
		ProcessRequestFunc: func(ctx context.Context, conversationID, request string) (*workflow.Result, error) {
			if request != "Write a post about onboarding" {
				t.Errorf("unexpected request: %q", request)
			}
			return &workflow.Result{
				ConversationID: "conv_123",
				Status:         status.StatusWaitingApproval,
				Output:         "Here is your post.",
			}, nil
		},
	}

	handler := handlers.NewWorkflowHandler(mockService, &MockStore{}, nil, zerolog.Nop())
	router := setupWorkflowTestRouter(handler)

	body := bytes.NewBufferString(`{"request": "Write a post about onboarding"}`)
	req, _ := http.NewRequest("POST", "/v1/workflows/start", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response["conversation_id"] != "conv_123" {
		t.Errorf("Expected conversation_id 'conv_123', got %v", response["conversation_id"])
	}
	if response["status"] != string(status.StatusWaitingApproval) {
		t.Errorf("Expected waiting status, got %v", response["status"])
	}
}

func TestWorkflowHandler_StartBackground(t *testing.T) {
	jobQueue := &memoryJobQueue{}
	created := false
	store := &MockStore{
		CreateFunc: func(ctx context.Context, title string) (*conversation.Conversation, error) {
			created = true
			return &conversation.Conversation{PublicID: "conv_bg"}, nil
		},
	}

	handler := handlers.NewWorkflowHandler(&MockWorkflowService{}, store, jobQueue, zerolog.Nop())
	router := setupWorkflowTestRouter(handler)

	body := bytes.NewBufferString(`{"request": "Write a post", "background": true}`)
	req, _ := http.NewRequest("POST", "/v1/workflows/start", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected status 202, got %d: %s", w.Code, w.Body.String())
	}
	if !created {
		t.Error("Expected a conversation to be created before enqueue")
	}
	if len(jobQueue.jobs) != 1 {
		t.Fatalf("Expected 1 enqueued job, got %d", len(jobQueue.jobs))
	}
	job := jobQueue.jobs[0]
	if job.Kind != queue.KindProcessRequest {
		t.Errorf("Expected kind %q, got %q", queue.KindProcessRequest, job.Kind)
	}
	if job.ConversationID != "conv_bg" {
		t.Errorf("Expected conversation 'conv_bg', got %q", job.ConversationID)
	}
	if job.Payload["request"] != "Write a post" {
		t.Errorf("Unexpected payload: %v", job.Payload)
	}
}

func TestWorkflowHandler_GetJob(t *testing.T) {
	jobQueue := &memoryJobQueue{jobs: []*queue.Job{{
		PublicID:       "job_abc",
		Kind:           queue.KindGenerateIdeas,
		ConversationID: "conv_bg",
		Status:         queue.StatusFailed,
		Error:          "provider down",
	}}}

	handler := handlers.NewWorkflowHandler(&MockWorkflowService{}, &MockStore{}, jobQueue, zerolog.Nop())
	router := setupWorkflowTestRouter(handler)

	req, _ := http.NewRequest("GET", "/v1/jobs/job_abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response["job_id"] != "job_abc" {
		t.Errorf("Expected job_id 'job_abc', got %v", response["job_id"])
	}
	if response["status"] != queue.StatusFailed {
		t.Errorf("Expected failed status, got %v", response["status"])
	}
	if response["error"] != "provider down" {
		t.Errorf("Expected job error in response, got %v", response["error"])
	}

	req, _ = http.NewRequest("GET", "/v1/jobs/job_missing", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404 for unknown job, got %d", w.Code)
	}
}

func TestWorkflowHandler_ContinueNotWaiting(t *testing.T) {
	mockService := &MockWorkflowService{
		ContinueFunc: func(ctx context.Context, conversationID, feedback string) (*workflow.Result, error) {
			return nil, workflow.ErrNotWaitingForUser
		},
	}

	handler := handlers.NewWorkflowHandler(mockService, &MockStore{}, nil, zerolog.Nop())
	router := setupWorkflowTestRouter(handler)

	body := bytes.NewBufferString(`{"feedback": "make it shorter"}`)
	req, _ := http.NewRequest("POST", "/v1/workflows/conv_123/continue", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("Expected status 409, got %d: %s", w.Code, w.Body.String())
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response["code"] != "NOT_WAITING_FOR_USER" {
		t.Errorf("Expected code NOT_WAITING_FOR_USER, got %v", response["code"])
	}
}

func TestWorkflowHandler_SelectIdea(t *testing.T) {
	var gotIndex int
	var gotTemplate string
	mockService := &MockWorkflowService{
		GenerateFromIdeaFunc: func(ctx context.Context, conversationID string, ideaIndex int, templateID string) (*workflow.Result, error) {
			gotIndex = ideaIndex
			gotTemplate = templateID
			return &workflow.Result{
				ConversationID: conversationID,
				Status:         status.StatusWaitingApproval,
				Output:         "Drafted post.",
			}, nil
		},
	}

	handler := handlers.NewWorkflowHandler(mockService, &MockStore{}, nil, zerolog.Nop())
	router := setupWorkflowTestRouter(handler)

	body := bytes.NewBufferString(`{"idea_index": 0, "template_id": "tmpl-1"}`)
	req, _ := http.NewRequest("POST", "/v1/workflows/conv_123/select", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if gotIndex != 0 {
		t.Errorf("Expected idea index 0, got %d", gotIndex)
	}
	if gotTemplate != "tmpl-1" {
		t.Errorf("Expected template 'tmpl-1', got %q", gotTemplate)
	}
}

func TestWorkflowHandler_SelectIdeaMissingIndex(t *testing.T) {
	called := false
	mockService := &MockWorkflowService{
		GenerateFromIdeaFunc: func(ctx context.Context, conversationID string, ideaIndex int, templateID string) (*workflow.Result, error) {
			called = true
			return nil, nil
		},
	}

	handler := handlers.NewWorkflowHandler(mockService, &MockStore{}, nil, zerolog.Nop())
	router := setupWorkflowTestRouter(handler)

	body := bytes.NewBufferString(`{"template_id": "tmpl-1"}`)
	req, _ := http.NewRequest("POST", "/v1/workflows/conv_123/select", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", w.Code)
	}
	if called {
		t.Error("Expected service not to be called on invalid input")
	}
}

func TestWorkflowHandler_GetState(t *testing.T) {
	mockService := &MockWorkflowService{
		GetStateFunc: func(ctx context.Context, conversationID string) (*workflow.State, error) {
			return &workflow.State{
				Status:         status.StatusIdeasGenerated,
				WaitingForUser: false,
				Ideas: &idea.Batch{
					SourceTitle: "Pricing psychology",
					Ideas:       []idea.Idea{{PillarCategory: "attract", PillarType: "Transformation"}},
				},
			}, nil
		},
	}

	handler := handlers.NewWorkflowHandler(mockService, &MockStore{}, nil, zerolog.Nop())
	router := setupWorkflowTestRouter(handler)

	req, _ := http.NewRequest("GET", "/v1/workflows/conv_123", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response["conversation_id"] != "conv_123" {
		t.Errorf("Expected conversation_id 'conv_123', got %v", response["conversation_id"])
	}
	state, ok := response["state"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected state object, got %v", response["state"])
	}
	if state["status"] != string(status.StatusIdeasGenerated) {
		t.Errorf("Expected ideas_generated status, got %v", state["status"])
	}
}
