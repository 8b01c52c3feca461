package gladia

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var testUpgrader = websocket.Upgrader{}

func newWSServer(t *testing.T, handler func(*websocket.Conn)) (*httptest.Server, string) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()
		handler(conn)
	}))
	return server, "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestLiveSessionDeliversTranscripts(t *testing.T) {
	server, wsURL := newWSServer(t, func(conn *websocket.Conn) {
		conn.WriteJSON(map[string]any{
			"type": "transcript",
			"data": map[string]any{"utterance": map[string]string{"text": "hello"}},
		})
		conn.WriteJSON(map[string]any{
			"type": "post_final_transcript",
			"data": map[string]any{"utterance": map[string]string{"text": "hello world"}},
		})
		// Hold the connection so the read loop does not treat close as a drop.
		time.Sleep(200 * time.Millisecond)
	})
	defer server.Close()

	received := make(chan Transcript, 4)
	session := NewLiveSession(wsURL, LiveOptions{
		OnTranscript: func(tr Transcript) { received <- tr },
	})
	if err := session.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer session.Close()

	first := waitTranscript(t, received)
	if first.Kind != TranscriptPartial || first.Text != "hello" {
		t.Errorf("first transcript: %+v", first)
	}
	final := waitTranscript(t, received)
	if final.Kind != TranscriptPostFinal || final.Text != "hello world" {
		t.Errorf("final transcript: %+v", final)
	}
}

func TestLiveSessionSendsBase64AudioAndStop(t *testing.T) {
	messages := make(chan map[string]json.RawMessage, 4)
	server, wsURL := newWSServer(t, func(conn *websocket.Conn) {
		for i := 0; i < 2; i++ {
			var msg map[string]json.RawMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			messages <- msg
		}
	})
	defer server.Close()

	session := NewLiveSession(wsURL, LiveOptions{})
	if err := session.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer session.Close()

	pcm := []byte{0x01, 0x02, 0x03, 0x04}
	if err := session.SendAudioChunk(pcm); err != nil {
		t.Fatalf("SendAudioChunk failed: %v", err)
	}
	if got := session.State(); got != StateRecording {
		t.Errorf("state after first chunk: got %q", got)
	}
	if err := session.StopRecording(); err != nil {
		t.Fatalf("StopRecording failed: %v", err)
	}

	chunk := <-messages
	var chunkType string
	json.Unmarshal(chunk["type"], &chunkType)
	if chunkType != "audio_chunk" {
		t.Errorf("chunk type: got %q", chunkType)
	}
	var data struct {
		Chunk string `json:"chunk"`
	}
	json.Unmarshal(chunk["data"], &data)
	if data.Chunk != base64.StdEncoding.EncodeToString(pcm) {
		t.Errorf("chunk payload: got %q", data.Chunk)
	}

	stop := <-messages
	var action string
	json.Unmarshal(stop["action"], &action)
	if action != "stop_recording" {
		t.Errorf("stop action: got %q", action)
	}
}

func TestLiveSessionReconnectsAfterDrop(t *testing.T) {
	var dials atomic.Int32
	server, wsURL := newWSServer(t, func(conn *websocket.Conn) {
		conn.WriteJSON(map[string]any{
			"type": "transcript",
			"data": map[string]any{"utterance": map[string]string{"text": "after reconnect"}},
		})
		time.Sleep(200 * time.Millisecond)
	})
	defer server.Close()

	received := make(chan Transcript, 2)
	session := NewLiveSession(wsURL, LiveOptions{
		ReconnectMaxAttempts: 3,
		ReconnectDelay:       time.Millisecond,
		OnTranscript:         func(tr Transcript) { received <- tr },
		Dialer: func(ctx context.Context, url string) (*websocket.Conn, error) {
			attempt := dials.Add(1)
			conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
			if err != nil {
				return nil, err
			}
			if attempt == 1 {
				// Drop the first connection immediately to force a reconnect.
				conn.Close()
			}
			return conn, nil
		},
	})
	if err := session.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer session.Close()

	tr := waitTranscript(t, received)
	if tr.Text != "after reconnect" {
		t.Errorf("transcript after reconnect: %+v", tr)
	}
	if dials.Load() < 2 {
		t.Errorf("expected a reconnect dial, got %d dials", dials.Load())
	}
}

func waitTranscript(t *testing.T, ch <-chan Transcript) Transcript {
	t.Helper()
	select {
	case tr := <-ch:
		return tr
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for transcript")
		return Transcript{}
	}
}

func TestErrorRecoverability(t *testing.T) {
	tests := []struct {
		kind        ErrorKind
		recoverable bool
	}{
		{KindNetwork, true},
		{KindWebSocket, true},
		{KindTimeout, true},
		{KindAuth, false},
		{KindSession, false},
		{KindAudio, false},
		{KindAPI, false},
		{KindUnknown, false},
	}
	for _, tc := range tests {
		err := &Error{Kind: tc.kind}
		if err.Recoverable() != tc.recoverable {
			t.Errorf("%s: recoverable = %v, want %v", tc.kind, err.Recoverable(), tc.recoverable)
		}
		if err.UserMessage() == "" {
			t.Errorf("%s: empty user message", tc.kind)
		}
	}
}

func TestConvertFloat32ToPCM16Clamps(t *testing.T) {
	out := ConvertFloat32ToPCM16([]float32{0, 1.5, -1.5, 0.5})
	if len(out) != 8 {
		t.Fatalf("output length: got %d", len(out))
	}
	samples := []int16{
		int16(out[0]) | int16(out[1])<<8,
		int16(out[2]) | int16(out[3])<<8,
		int16(out[4]) | int16(out[5])<<8,
		int16(out[6]) | int16(out[7])<<8,
	}
	if samples[0] != 0 {
		t.Errorf("zero sample: got %d", samples[0])
	}
	if samples[1] != 32767 {
		t.Errorf("positive clamp: got %d", samples[1])
	}
	if samples[2] != -32768 {
		t.Errorf("negative clamp: got %d", samples[2])
	}
	if samples[3] != 16384 {
		t.Errorf("half scale: got %d", samples[3])
	}
}
