package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	out, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(out, "Wrote sample configuration") {
		t.Errorf("output: %q", out)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[redis]") {
		t.Errorf("sample missing redis section: %q", string(data))
	}

	if _, err := runCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error without --overwrite")
	}
	if _, err := runCommand(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
}

func TestSessionsCommandRendersTable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/research/sessions" {
			t.Errorf("path: got %q", r.URL.Path)
		}
		w.Write([]byte(`{"sessions":[{"sessionId":"933474","track":"Infrastructure","speaker":"Jane Doe","company":"Acme","sessionTitle":"Scaling Inference","description":""}]}`))
	}))
	defer server.Close()

	out, err := runCommand(t, "sessions", "--addr", server.URL)
	if err != nil {
		t.Fatalf("sessions failed: %v", err)
	}
	if !strings.Contains(out, "933474") || !strings.Contains(out, "Scaling Inference") {
		t.Errorf("table output: %q", out)
	}
}

func TestStatusCommandReportsDaemon(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"running":true,"version":"0.3.0","uptimeSeconds":12,"conferenceId":"ai-engineer-worlds-fair-2025"}`))
	}))
	defer server.Close()

	out, err := runCommand(t, "status", "--addr", server.URL)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if !strings.Contains(out, "version 0.3.0") || !strings.Contains(out, "ai-engineer-worlds-fair-2025") {
		t.Errorf("status output: %q", out)
	}
}

func TestPrepCommandSurfacesAPIErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"session 000 not found in conference content"}`))
	}))
	defer server.Close()

	_, err := runCommand(t, "prep", "000", "--addr", server.URL)
	if err == nil || !strings.Contains(err.Error(), "not found in conference content") {
		t.Fatalf("expected api error, got %v", err)
	}
}
