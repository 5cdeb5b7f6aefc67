// Package hls negotiates HLS streams over HTTP and hands them to a player.Media sink.
package hls

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Taichi-iskw/idcable/internal/httpclient"
	"github.com/Taichi-iskw/idcable/internal/logger"
	"github.com/Taichi-iskw/idcable/internal/player"
)

const (
	// stablePlayback is how long media must run before a failure counts as a fresh one
	stablePlayback = 30 * time.Second

	retryDelay    = time.Second
	maxRetryDelay = 30 * time.Second
)

// Engine creates HLS sessions that fetch manifests with client
type Engine struct {
	client httpclient.Client
	log    logger.Logger
	now    func() time.Time

	// reloads without a parsed manifest back off exponentially up to maxRetryDelay
	retryDelay    time.Duration
	maxRetryDelay time.Duration
}

// NewEngine creates an Engine
func NewEngine(client httpclient.Client, log logger.Logger) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{
		client: client,
		log:    log,
		now:    time.Now,

		retryDelay:    retryDelay,
		maxRetryDelay: maxRetryDelay,
	}
}

// Supported reports whether the engine has an HTTP client to work with
func (e *Engine) Supported() bool {
	return e != nil && e.client != nil
}

// backoff returns the wait before the given load attempt; the first attempt is immediate
func (e *Engine) backoff(attempt int) time.Duration {
	if attempt <= 0 || e.retryDelay <= 0 {
		return 0
	}
	delay := e.retryDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= e.maxRetryDelay || delay <= 0 {
			return e.maxRetryDelay
		}
	}
	if delay > e.maxRetryDelay {
		return e.maxRetryDelay
	}
	return delay
}

// NewSession creates an idle session; loading starts once both a source and media are set
func (e *Engine) NewSession(opts player.SessionOptions, handler func(player.Event)) player.Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &session{
		id:      uuid.NewString(),
		engine:  e,
		opts:    opts,
		handler: handler,
		ctx:     ctx,
		cancel:  cancel,
	}
}

type session struct {
	id      string
	engine  *Engine
	opts    player.SessionOptions
	handler func(player.Event)

	mu            sync.Mutex
	ctx           context.Context
	cancel        context.CancelFunc
	source        string
	media         player.Media
	parsed        bool
	destroyed     bool
	loading       bool
	attempts      int
	mediaFailures int
	attachedAt    time.Time
}

func (s *session) LoadSource(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.source = url
	s.parsed = false
	s.attempts = 0
	if s.media != nil {
		s.startLoadLocked()
	}
}

func (s *session) AttachMedia(media player.Media) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.destroyed {
		return
	}
	s.media = media
	media.SetHandlers(player.MediaHandlers{OnError: s.onMediaError})
	if s.source != "" {
		s.startLoadLocked()
	}
}

func (s *session) StartLoad() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startLoadLocked()
}

// RecoverMediaError hands the source to the media again, or reloads the manifest
// when it was never parsed
func (s *session) RecoverMediaError() {
	s.mu.Lock()
	if s.destroyed || s.media == nil {
		s.mu.Unlock()
		return
	}
	if !s.parsed {
		s.startLoadLocked()
		s.mu.Unlock()
		return
	}
	media := s.media
	src := s.mediaSource()
	s.attachedAt = s.engine.now()
	s.mu.Unlock()

	s.engine.log.Debugf("hls: session %s recovering media", s.id)
	media.SetSource(src)
	if err := media.Play(); err != nil {
		s.engine.log.Warnf("hls: session %s could not resume playback: %v", s.id, err)
	}
}

func (s *session) Destroy() {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	s.destroyed = true
	s.cancel()
	media := s.media
	s.media = nil
	s.mu.Unlock()

	if media != nil {
		media.SetHandlers(player.MediaHandlers{})
		media.Clear()
	}
	s.engine.log.Debugf("hls: session %s destroyed", s.id)
}

// startLoadLocked schedules a manifest fetch unless one is already pending
func (s *session) startLoadLocked() {
	if s.destroyed || s.source == "" || s.loading {
		return
	}
	delay := s.engine.backoff(s.attempts)
	s.attempts++
	s.loading = true
	go s.load(s.ctx, s.source, delay)
}

func (s *session) load(ctx context.Context, src string, delay time.Duration) {
	if delay > 0 {
		s.engine.log.Debugf("hls: session %s reloading in %s", s.id, delay)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}

	headers := map[string]string{
		"User-Agent": s.opts.UserAgent,
		"Referer":    s.opts.Referrer,
	}

	body, err := s.engine.client.Get(ctx, src, headers)
	if ctx.Err() != nil {
		return
	}
	if !s.finishLoad(src) {
		return
	}
	if err != nil {
		s.emitError(player.ErrorNetwork, "manifest load error", err)
		return
	}

	manifest, err := ParseManifest(body)
	if err != nil {
		s.onMediaError(err)
		return
	}

	var first string
	if manifest.Master {
		first, err = ResolveVariant(src, manifest.Variants[0])
		if err != nil {
			s.onMediaError(err)
			return
		}
	}

	s.mu.Lock()
	if s.destroyed || s.media == nil {
		s.mu.Unlock()
		return
	}
	s.parsed = true
	s.attempts = 0
	s.attachedAt = s.engine.now()
	media := s.media
	mediaSrc := s.mediaSource()
	s.mu.Unlock()

	media.SetSource(mediaSrc)
	s.emit(player.Event{
		Type:         player.EventManifestParsed,
		Variants:     len(manifest.Variants),
		FirstVariant: first,
	})
}

// finishLoad clears the pending fetch and reports whether its result still applies.
// A source replaced mid-fetch is loaded afresh.
func (s *session) finishLoad(src string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loading = false
	if s.destroyed {
		return false
	}
	if s.source != src {
		s.startLoadLocked()
		return false
	}
	return true
}

func (s *session) mediaSource() player.Source {
	return player.Source{
		URL:       s.source,
		UserAgent: s.opts.UserAgent,
		Referrer:  s.opts.Referrer,
	}
}

// onMediaError reports a fatal media error; a repeat failure before playback
// stabilized is reported as unrecoverable
func (s *session) onMediaError(err error) {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	if !s.attachedAt.IsZero() && s.engine.now().Sub(s.attachedAt) >= stablePlayback {
		s.mediaFailures = 0
	}
	s.mediaFailures++
	failures := s.mediaFailures
	s.mu.Unlock()

	if failures > 1 {
		s.emitError(player.ErrorOther, "media recovery failed", err)
		return
	}
	s.emitError(player.ErrorMedia, "media error", err)
}

func (s *session) emitError(t player.ErrorType, details string, err error) {
	s.emit(player.Event{
		Type: player.EventError,
		Error: &player.ErrorData{
			Type:    t,
			Fatal:   true,
			Details: details,
			Err:     err,
		},
	})
}

func (s *session) emit(ev player.Event) {
	s.mu.Lock()
	destroyed := s.destroyed
	s.mu.Unlock()
	if destroyed || s.handler == nil {
		return
	}
	s.handler(ev)
}
