package airia

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExecutePipelineUsesResultString(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/PipelineExecution/pipe-1" {
			t.Errorf("path: got %q", r.URL.Path)
		}
		if got := r.Header.Get("X-API-KEY"); got != "test-key" {
			t.Errorf("api key header: got %q", got)
		}

		var payload executionRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if payload.AsyncOutput {
			t.Error("asyncOutput must be false")
		}
		if payload.UserInput != defaultUserInput {
			t.Errorf("userInput: got %q", payload.UserInput)
		}
		if payload.PromptVariables["session_outline"] == "" {
			t.Error("missing session_outline prompt variable")
		}

		w.Write([]byte(`{"result":"{\"key_takeaways\":[\"a\"]}"}`))
	}))
	defer server.Close()

	client, err := New("test-key", server.URL, "pipe-1", WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	out, err := client.ExecutePipeline(context.Background(), map[string]string{
		"session_outline": `{"sessionId":"933474"}`,
	})
	if err != nil {
		t.Fatalf("ExecutePipeline failed: %v", err)
	}
	if out != `{"key_takeaways":["a"]}` {
		t.Errorf("result: got %q", out)
	}
}

func TestExecutePipelineFallsBackToReportOutputs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":null,"report":[{"outputs":[{"value":"first"},{"value":""}]},{"outputs":[{"value":"second"}]}]}`))
	}))
	defer server.Close()

	client, err := New("key", server.URL, "pipe-1", WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	out, err := client.ExecutePipeline(context.Background(), nil)
	if err != nil {
		t.Fatalf("ExecutePipeline failed: %v", err)
	}
	if out != "first\nsecond" {
		t.Errorf("joined output: got %q", out)
	}
}

func TestExecutePipelineEmptyResponseIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":null}`))
	}))
	defer server.Close()

	client, err := New("key", server.URL, "pipe-1", WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := client.ExecutePipeline(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty pipeline output")
	}
}
