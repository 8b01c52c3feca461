package gladia

// ErrorKind classifies a live transcription failure so callers can decide
// whether to retry and what to tell the user.
type ErrorKind string

const (
	KindNetwork   ErrorKind = "network"
	KindAuth      ErrorKind = "auth"
	KindSession   ErrorKind = "session"
	KindAudio     ErrorKind = "audio"
	KindWebSocket ErrorKind = "websocket"
	KindAPI       ErrorKind = "api"
	KindTimeout   ErrorKind = "timeout"
	KindUnknown   ErrorKind = "unknown"
)

var userMessages = map[ErrorKind]string{
	KindNetwork:   "Network connection lost. Retrying...",
	KindAuth:      "Authentication failed. Check the transcription API key.",
	KindSession:   "Transcription session could not be established.",
	KindAudio:     "Audio capture failed. Check the input device.",
	KindWebSocket: "Live connection interrupted. Reconnecting...",
	KindAPI:       "Transcription service rejected the request.",
	KindTimeout:   "Transcription service timed out. Retrying...",
	KindUnknown:   "Something went wrong with live transcription.",
}

// Error is a classified live transcription error.
type Error struct {
	Kind   ErrorKind
	Detail string
	Cause  error
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// UserMessage returns a short message suitable for display.
func (e *Error) UserMessage() string {
	if msg, ok := userMessages[e.Kind]; ok {
		return msg
	}
	return userMessages[KindUnknown]
}

// Recoverable reports whether a reconnect attempt may clear the failure.
// Auth, session, audio, and API errors will just fail again.
func (e *Error) Recoverable() bool {
	switch e.Kind {
	case KindNetwork, KindWebSocket, KindTimeout:
		return true
	default:
		return false
	}
}

func wrapError(kind ErrorKind, detail string, cause error) *Error {
	return &Error{Kind: kind, Detail: detail, Cause: cause}
}
