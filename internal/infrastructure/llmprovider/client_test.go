package llmprovider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"contentpilot/workflow-api/internal/domain/idea"
	"contentpilot/workflow-api/internal/domain/llm"
)

func TestClient_GenerateExtractsStringContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.ReasoningEffort != "high" {
			t.Errorf("reasoning_effort = %q, want high", req.ReasoningEffort)
		}
		if req.Messages[0].Role != "system" {
			t.Errorf("first message role = %q, want system", req.Messages[0].Role)
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`{"choices":[{"message":{"content":"  the generated post  "}}]}`)); err != nil {
			t.Fatal(err)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "test-model")
	out, err := client.Generate(context.Background(), "be a writer",
		[]llm.ChatMessage{{Role: "user", Content: "write"}}, llm.EffortHigh)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if out != "the generated post" {
		t.Errorf("Generate() = %q", out)
	}
}

func TestClient_GenerateWalksContentParts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		body := `{"choices":[{"message":{"content":[{"type":"output_text","text":"part one "},{"type":"output_text","text":"part two"}]}}]}`
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "test-model")
	out, err := client.Generate(context.Background(), "", nil, llm.EffortDefault)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if out != "part one part two" {
		t.Errorf("Generate() = %q", out)
	}
}

func TestClient_GenerateIdeaSetRequestsSchema(t *testing.T) {
	batch := map[string]any{
		"source_title":  "Deep Work",
		"source_author": "Cal Newport",
		"ideas":         []any{},
	}
	batchJSON, _ := json.Marshal(batch)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_schema" {
			t.Error("ideation request should carry a json_schema response format")
		}
		if req.ResponseFormat.JSONSchema == nil || !req.ResponseFormat.JSONSchema.Strict {
			t.Error("ideation schema should be strict")
		}

		content, _ := json.Marshal(string(batchJSON))
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`{"choices":[{"message":{"content":` + string(content) + `}}]}`)); err != nil {
			t.Fatal(err)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret", "test-model")
	got, err := client.GenerateIdeaSet(context.Background(), "strategist prompt", "source text")
	if err != nil {
		t.Fatalf("GenerateIdeaSet() error: %v", err)
	}
	if got.SourceTitle != "Deep Work" {
		t.Errorf("SourceTitle = %q", got.SourceTitle)
	}
}

func TestClient_GenerateSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		if _, err := w.Write([]byte(`{"error":{"message":"upstream overloaded"}}`)); err != nil {
			t.Fatal(err)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "test-model")
	_, err := client.Generate(context.Background(), "", nil, llm.EffortDefault)
	if err == nil {
		t.Fatal("Generate() expected error on 502")
	}
}

func TestIdeaBatchSchemaPinsCount(t *testing.T) {
	schema := ideaBatchSchema()
	ideas := schema["properties"].(map[string]any)["ideas"].(map[string]any)
	if ideas["minItems"] != idea.BatchSize || ideas["maxItems"] != idea.BatchSize {
		t.Errorf("ideas bounds = %v..%v, want %d", ideas["minItems"], ideas["maxItems"], idea.BatchSize)
	}
}
