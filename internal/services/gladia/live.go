package gladia

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"confpilot/internal/logging"
)

// State is the live session lifecycle state.
type State string

const (
	StateIdle          State = "idle"
	StateConnecting    State = "connecting"
	StateConnected     State = "connected"
	StateRecording     State = "recording"
	StateDisconnecting State = "disconnecting"
	StateError         State = "error"
)

// TranscriptKind distinguishes partial from finalized transcript messages.
type TranscriptKind string

const (
	TranscriptPartial   TranscriptKind = "transcript"
	TranscriptPost      TranscriptKind = "post_transcript"
	TranscriptPostFinal TranscriptKind = "post_final_transcript"
)

// Transcript is one utterance received over the live connection.
type Transcript struct {
	Kind TranscriptKind
	Text string
}

// Dialer abstracts websocket dialing so tests can supply a local server.
type Dialer func(ctx context.Context, url string) (*websocket.Conn, error)

func defaultDialer(ctx context.Context, url string) (*websocket.Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	return conn, err
}

// LiveOptions configures a live session.
type LiveOptions struct {
	// ReconnectMaxAttempts bounds reconnection tries after a dropped
	// connection. Zero disables reconnection.
	ReconnectMaxAttempts int
	// ReconnectDelay is the base backoff. Attempt n waits delay * 2^(n-1).
	ReconnectDelay time.Duration
	Dialer         Dialer
	Logger         *slog.Logger
	// OnTranscript receives every transcript utterance in arrival order.
	OnTranscript func(Transcript)
	// OnStateChange observes lifecycle transitions.
	OnStateChange func(State)
	// OnError receives classified failures, including recovered ones.
	OnError func(*Error)
}

// LiveSession streams audio to a provisioned Gladia session over websocket
// and delivers transcripts through callbacks. Methods are safe for
// concurrent use.
type LiveSession struct {
	url  string
	opts LiveOptions

	mu     sync.Mutex
	state  State
	conn   *websocket.Conn
	closed bool
	done   chan struct{}
}

// NewLiveSession prepares a session against the websocket url returned by
// InitiateSession. No connection is made until Connect.
func NewLiveSession(url string, opts LiveOptions) *LiveSession {
	if opts.Dialer == nil {
		opts.Dialer = defaultDialer
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = time.Second
	}
	return &LiveSession{
		url:   url,
		opts:  opts,
		state: StateIdle,
		done:  make(chan struct{}),
	}
}

// State returns the current lifecycle state.
func (s *LiveSession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Done is closed once the session has fully shut down.
func (s *LiveSession) Done() <-chan struct{} {
	return s.done
}

func (s *LiveSession) setState(next State) {
	s.mu.Lock()
	if s.state == next {
		s.mu.Unlock()
		return
	}
	s.state = next
	s.mu.Unlock()
	if s.opts.OnStateChange != nil {
		s.opts.OnStateChange(next)
	}
}

func (s *LiveSession) reportError(err *Error) {
	s.opts.Logger.Warn("live session error",
		logging.String("kind", string(err.Kind)),
		logging.Error(err))
	if s.opts.OnError != nil {
		s.opts.OnError(err)
	}
}

// Connect dials the websocket and starts the read loop.
func (s *LiveSession) Connect(ctx context.Context) error {
	s.setState(StateConnecting)
	conn, err := s.opts.Dialer(ctx, s.url)
	if err != nil {
		s.setState(StateError)
		wrapped := wrapError(KindWebSocket, fmt.Sprintf("dial %s", s.url), err)
		s.reportError(wrapped)
		return wrapped
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	s.setState(StateConnected)

	go s.readLoop(ctx, conn)
	return nil
}

// SendAudioChunk streams one chunk of PCM16 audio, base64 encoded per the
// live protocol.
func (s *LiveSession) SendAudioChunk(pcm []byte) error {
	s.mu.Lock()
	conn := s.conn
	if s.state == StateConnected {
		s.state = StateRecording
		defer func() {
			if s.opts.OnStateChange != nil {
				s.opts.OnStateChange(StateRecording)
			}
		}()
	}
	s.mu.Unlock()

	if conn == nil {
		return wrapError(KindWebSocket, "send audio: not connected", nil)
	}
	msg := map[string]any{
		"type": "audio_chunk",
		"data": map[string]string{
			"chunk": base64.StdEncoding.EncodeToString(pcm),
		},
	}
	if err := conn.WriteJSON(msg); err != nil {
		return wrapError(KindWebSocket, "send audio chunk", err)
	}
	return nil
}

// StopRecording tells the server to finalize pending transcripts. The
// connection stays open so post transcripts can still arrive.
func (s *LiveSession) StopRecording() error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return wrapError(KindWebSocket, "stop recording: not connected", nil)
	}
	s.setState(StateDisconnecting)
	if err := conn.WriteJSON(map[string]string{"action": "stop_recording"}); err != nil {
		return wrapError(KindWebSocket, "send stop_recording", err)
	}
	return nil
}

// Close tears down the connection without waiting for post transcripts.
func (s *LiveSession) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	var err error
	if conn != nil {
		err = conn.Close()
	}
	s.setState(StateIdle)
	close(s.done)
	return err
}

type liveMessage struct {
	Type string `json:"type"`
	Data struct {
		Utterance struct {
			Text string `json:"text"`
		} `json:"utterance"`
	} `json:"data"`
}

func (s *LiveSession) readLoop(ctx context.Context, conn *websocket.Conn) {
	attempt := 0
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed || ctx.Err() != nil {
				return
			}

			wrapped := wrapError(KindWebSocket, "read live message", err)
			s.reportError(wrapped)

			attempt++
			next, reconnectErr := s.reconnect(ctx, attempt)
			if reconnectErr != nil {
				s.setState(StateError)
				s.Close()
				return
			}
			conn = next
			continue
		}
		attempt = 0

		var msg liveMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.reportError(wrapError(KindAPI, "decode live message", err))
			continue
		}

		switch TranscriptKind(msg.Type) {
		case TranscriptPartial, TranscriptPost, TranscriptPostFinal:
			if s.opts.OnTranscript != nil {
				s.opts.OnTranscript(Transcript{
					Kind: TranscriptKind(msg.Type),
					Text: msg.Data.Utterance.Text,
				})
			}
		}
	}
}

// reconnect dials again with exponential backoff. Attempt n waits
// delay * 2^(n-1) before dialing.
func (s *LiveSession) reconnect(ctx context.Context, attempt int) (*websocket.Conn, error) {
	if attempt > s.opts.ReconnectMaxAttempts {
		return nil, wrapError(KindWebSocket,
			fmt.Sprintf("gave up after %d reconnect attempts", s.opts.ReconnectMaxAttempts), nil)
	}

	delay := s.opts.ReconnectDelay * time.Duration(1<<(attempt-1))
	s.opts.Logger.Info("reconnecting live session",
		logging.Int("attempt", attempt),
		logging.Duration("delay", delay))

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}

	s.setState(StateConnecting)
	conn, err := s.opts.Dialer(ctx, s.url)
	if err != nil {
		wrapped := wrapError(KindWebSocket, fmt.Sprintf("reconnect attempt %d", attempt), err)
		s.reportError(wrapped)
		return s.reconnect(ctx, attempt+1)
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	s.setState(StateConnected)
	return conn, nil
}

// ConvertFloat32ToPCM16 converts normalized float samples to little-endian
// 16-bit PCM, clamping out-of-range values.
func ConvertFloat32ToPCM16(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, sample := range samples {
		scaled := math.Round(float64(sample) * 32768)
		if scaled > 32767 {
			scaled = 32767
		}
		if scaled < -32768 {
			scaled = -32768
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(scaled)))
	}
	return out
}
