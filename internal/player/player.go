// Package player drives a single playback session for the channel the user activated.
//
// The Controller owns at most one streaming session at a time. Sessions come from an
// Engine (adaptive streaming negotiated in-process) and render into a Media sink.
// When no engine is available the Controller assigns the stream to the Media directly.
package player

import (
	"net/url"
	"strings"
)

// UnsupportedMessage is shown when neither an engine nor native playback is available
const UnsupportedMessage = "Your environment does not support HLS playback."

// ErrorType classifies a session error
type ErrorType int

const (
	ErrorNetwork ErrorType = iota
	ErrorMedia
	ErrorOther
)

func (t ErrorType) String() string {
	switch t {
	case ErrorNetwork:
		return "network"
	case ErrorMedia:
		return "media"
	default:
		return "other"
	}
}

// EventType is the kind of a session event
type EventType int

const (
	EventManifestParsed EventType = iota
	EventError
)

// Event is emitted by a Session
type Event struct {
	Type  EventType
	Error *ErrorData

	// Set for EventManifestParsed
	Variants     int
	FirstVariant string
}

// ErrorData describes a session error
type ErrorData struct {
	Type    ErrorType
	Fatal   bool
	Details string
	Err     error
}

// Source is a stream address plus the request headers it needs
type Source struct {
	URL       string
	UserAgent string
	Referrer  string
}

// SessionOptions configures a new Session
type SessionOptions struct {
	UserAgent string
	Referrer  string
}

// Engine creates adaptive streaming sessions
type Engine interface {
	// Supported reports whether the engine can run in this environment
	Supported() bool
	// NewSession creates a session delivering its events to handler.
	// handler must be invoked asynchronously, never from inside a Session method.
	NewSession(opts SessionOptions, handler func(Event)) Session
}

// Session is one adaptive streaming session
type Session interface {
	LoadSource(url string)
	AttachMedia(media Media)
	// StartLoad restarts loading of the current source
	StartLoad()
	// RecoverMediaError reattaches the media and resumes playback in place
	RecoverMediaError()
	Destroy()
}

// MediaHandlers receive Media callbacks. Either field may be nil.
type MediaHandlers struct {
	OnLoadedMetadata func()
	OnError          func(err error)
}

// Media is the playback sink, the equivalent of a video element
type Media interface {
	// Available reports whether the sink can render anything at all
	Available() bool
	// CanPlayNative reports whether the sink plays HLS sources without an engine
	CanPlayNative() bool
	// SetHandlers replaces the callbacks; they must be invoked asynchronously
	SetHandlers(h MediaHandlers)
	SetSource(src Source)
	Play() error
	Pause()
	// Clear drops the current source
	Clear()
}

// Notifier shows blocking notices to the user
type Notifier interface {
	Alert(message string)
}

// componentEscaper leaves the characters that URI component encoding keeps literal
var componentEscaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// ProxiedURL returns streamURL escaped as a URI component and appended to the relay endpoint
func ProxiedURL(proxy, streamURL string) string {
	return proxy + componentEscaper.Replace(url.QueryEscape(streamURL))
}
