// Package server exposes the HTTP API: session prep, session listings,
// conference records, schedule generation, transcript saving, and live
// transcription session initiation.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"confpilot/internal/config"
	"confpilot/internal/logging"
	"confpilot/internal/prep"
	"confpilot/internal/research"
	"confpilot/internal/schedule"
	"confpilot/internal/services/gladia"
	"confpilot/internal/supabase"
)

// PrepService handles session prep and listings. Satisfied by *prep.Service.
type PrepService interface {
	Prepare(ctx context.Context, req prep.Request) (*prep.Result, error)
	ListSessions(ctx context.Context, conferenceID string) ([]research.SessionOutline, error)
}

// ScheduleService generates personalized schedules.
type ScheduleService interface {
	Generate(ctx context.Context, req schedule.Request) (*schedule.Response, error)
}

// ConferenceStore reads and writes persisted conference data.
type ConferenceStore interface {
	GetConference(ctx context.Context, conferenceID string) (*supabase.Conference, error)
	SaveTranscript(ctx context.Context, record supabase.TranscriptRecord) (int64, error)
}

// TranscriptionService provisions live transcription sessions and reports
// their status.
type TranscriptionService interface {
	InitiateSession(ctx context.Context, cfg gladia.InitiateRequest) (*gladia.Session, error)
	GetSession(ctx context.Context, sessionID string) (*gladia.SessionStatus, error)
}

// Deps carries the server's collaborators. Nil services disable their
// endpoints with a 503 instead of failing startup.
type Deps struct {
	Prep          PrepService
	Schedule      ScheduleService
	Conferences   ConferenceStore
	Transcription TranscriptionService
	Config        *config.Config
	Logger        *slog.Logger
	Version       string
}

// Server is the HTTP API server.
type Server struct {
	bind      string
	logger    *slog.Logger
	deps      Deps
	startedAt time.Time

	listener net.Listener
	server   *http.Server
}

// New builds the API server. Returns nil when no bind address is configured.
func New(deps Deps) *Server {
	bind := ""
	if deps.Config != nil {
		bind = strings.TrimSpace(deps.Config.Paths.APIBind)
	}
	if bind == "" {
		return nil
	}

	srv := &Server{
		bind:      bind,
		logger:    deps.Logger,
		deps:      deps,
		startedAt: time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/api/research/session-prep", srv.handleSessionPrep)
	mux.HandleFunc("/api/research/sessions", srv.handleSessions)
	mux.HandleFunc("/api/conference/", srv.handleConference)
	mux.HandleFunc("/api/schedule", srv.handleSchedule)
	mux.HandleFunc("/api/transcripts/save", srv.handleTranscriptSave)
	mux.HandleFunc("/api/transcribe/initiate", srv.handleTranscribeInitiate)
	mux.HandleFunc("/api/transcribe/status/", srv.handleTranscribeStatus)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start listens and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Stop shuts the server down.
func (s *Server) Stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

type statusResponse struct {
	Running       bool   `json:"running"`
	Version       string `json:"version,omitempty"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
	ConferenceID  string `json:"conferenceId,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	payload := statusResponse{
		Running:       true,
		Version:       s.deps.Version,
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
	}
	if s.deps.Config != nil {
		payload.ConferenceID = s.deps.Config.Conference.DefaultID
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleSessionPrep(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.deps.Prep == nil {
		s.writeError(w, http.StatusServiceUnavailable, "session prep unavailable")
		return
	}

	var req prep.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		s.writeError(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	result, err := s.deps.Prep.Prepare(r.Context(), req)
	if err != nil {
		if strings.Contains(err.Error(), "not found in conference content") {
			s.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.log().Error("session prep failed",
			logging.String("session_id", req.SessionID), logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

type sessionsResponse struct {
	Sessions []research.SessionOutline `json:"sessions"`
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.deps.Prep == nil {
		s.writeError(w, http.StatusServiceUnavailable, "session listing unavailable")
		return
	}

	conferenceID := strings.TrimSpace(r.URL.Query().Get("conferenceId"))
	sessions, err := s.deps.Prep.ListSessions(r.Context(), conferenceID)
	if err != nil {
		s.log().Error("session listing failed", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, sessionsResponse{Sessions: sessions})
}

type conferenceResponse struct {
	Success bool `json:"success"`
	Data    struct {
		ConferenceID    string `json:"conferenceId"`
		URL             string `json:"url"`
		MarkdownContent string `json:"markdownContent"`
		CreatedAt       string `json:"createdAt,omitempty"`
		UpdatedAt       string `json:"updatedAt,omitempty"`
	} `json:"data"`
}

func (s *Server) handleConference(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.deps.Conferences == nil {
		s.writeError(w, http.StatusServiceUnavailable, "conference store unavailable")
		return
	}

	conferenceID := strings.TrimPrefix(r.URL.Path, "/api/conference/")
	if conferenceID == "" || strings.Contains(conferenceID, "/") {
		s.writeError(w, http.StatusBadRequest, "conference id is required")
		return
	}

	conf, err := s.deps.Conferences.GetConference(r.Context(), conferenceID)
	if err != nil {
		if errors.Is(err, supabase.ErrConferenceNotFound) {
			s.writeError(w, http.StatusNotFound, "conference not found")
			return
		}
		s.log().Error("conference fetch failed",
			logging.String("conference_id", conferenceID), logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to fetch conference data")
		return
	}

	payload := conferenceResponse{Success: true}
	payload.Data.ConferenceID = conf.ConferenceID
	payload.Data.URL = conf.URL
	payload.Data.MarkdownContent = conf.MarkdownContent
	payload.Data.CreatedAt = conf.CreatedAt
	payload.Data.UpdatedAt = conf.UpdatedAt
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.deps.Schedule == nil {
		s.writeError(w, http.StatusServiceUnavailable, "schedule generation unavailable")
		return
	}

	var req schedule.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.ConferenceID) == "" {
		s.writeError(w, http.StatusBadRequest, "conferenceId is required")
		return
	}

	resp, err := s.deps.Schedule.Generate(r.Context(), req)
	if err != nil {
		if errors.Is(err, supabase.ErrConferenceNotFound) {
			s.writeError(w, http.StatusNotFound, "conference not found")
			return
		}
		s.log().Error("schedule generation failed",
			logging.String("conference_id", req.ConferenceID), logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

type transcriptSaveRequest struct {
	SessionID       string   `json:"sessionId"`
	Transcripts     []string `json:"transcripts"`
	FullText        string   `json:"fullText"`
	SessionDuration *int64   `json:"sessionDuration,omitempty"`
}

type transcriptSaveResponse struct {
	Success      bool   `json:"success"`
	TranscriptID int64  `json:"transcriptId"`
	Message      string `json:"message"`
}

func (s *Server) handleTranscriptSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.deps.Conferences == nil {
		s.writeError(w, http.StatusServiceUnavailable, "transcript store unavailable")
		return
	}

	var req transcriptSaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" || len(req.Transcripts) == 0 || req.FullText == "" {
		s.writeError(w, http.StatusBadRequest, "missing required fields: sessionId, transcripts, fullText")
		return
	}

	record := supabase.TranscriptRecord{
		SessionID:         req.SessionID,
		TotalTranscripts:  len(req.Transcripts),
		FullText:          req.FullText,
		TranscriptsData:   req.Transcripts,
		SessionDurationMS: req.SessionDuration,
		UserAgent:         r.UserAgent(),
		IPAddress:         clientIP(r),
	}
	id, err := s.deps.Conferences.SaveTranscript(r.Context(), record)
	if err != nil {
		s.log().Error("transcript save failed",
			logging.String("session_id", req.SessionID), logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to save transcripts")
		return
	}
	s.writeJSON(w, http.StatusOK, transcriptSaveResponse{
		Success:      true,
		TranscriptID: id,
		Message:      "Transcripts saved successfully",
	})
}

func (s *Server) handleTranscribeInitiate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.deps.Transcription == nil {
		s.writeError(w, http.StatusServiceUnavailable, "transcription unavailable")
		return
	}

	cfg := s.deps.Config
	initiate := gladia.NewInitiateRequest(gladia.AudioConfig{
		Encoding:   "wav/pcm",
		SampleRate: cfg.Gladia.SampleRate,
		BitDepth:   cfg.Gladia.BitDepth,
		Channels:   cfg.Gladia.Channels,
	}, cfg.Gladia.Model)

	session, err := s.deps.Transcription.InitiateSession(r.Context(), initiate)
	if err != nil {
		status := http.StatusBadGateway
		var classified *gladia.Error
		if errors.As(err, &classified) && classified.Kind == gladia.KindAuth {
			status = http.StatusUnauthorized
		}
		s.log().Error("transcription initiate failed", logging.Error(err))
		s.writeError(w, status, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, session)
}

type transcribeStatusResponse struct {
	Success bool                 `json:"success"`
	Session gladia.SessionStatus `json:"session"`
}

func (s *Server) handleTranscribeStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.deps.Transcription == nil {
		s.writeError(w, http.StatusServiceUnavailable, "transcription unavailable")
		return
	}

	sessionID := strings.TrimPrefix(r.URL.Path, "/api/transcribe/status/")
	if sessionID == "" || strings.Contains(sessionID, "/") {
		s.writeError(w, http.StatusBadRequest, "session id is required")
		return
	}

	status, err := s.deps.Transcription.GetSession(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, gladia.ErrSessionNotFound) {
			s.writeError(w, http.StatusNotFound, "session not found")
			return
		}
		httpStatus := http.StatusBadGateway
		var classified *gladia.Error
		if errors.As(err, &classified) && classified.Kind == gladia.KindAuth {
			httpStatus = http.StatusUnauthorized
		}
		s.log().Error("transcription status failed",
			logging.String("session_id", sessionID), logging.Error(err))
		s.writeError(w, httpStatus, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, transcribeStatusResponse{Success: true, Session: *status})
}

// clientIP prefers the forwarded-for chain's first hop.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return real
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String("component", "api-server"))
	}
	return logging.NewNop()
}
