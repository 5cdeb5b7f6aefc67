package player

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Taichi-iskw/idcable/internal/errors"
	"github.com/Taichi-iskw/idcable/internal/model"
)

const testProxy = "https://corsproxy.io/?"

// recorder keeps the order of calls across fakes
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(format string, v ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fmt.Sprintf(format, v...))
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *recorder) index(call string) int {
	for i, c := range r.list() {
		if c == call {
			return i
		}
	}
	return -1
}

type fakeEngine struct {
	rec       *recorder
	supported bool
	sessions  []*fakeSession
}

func (e *fakeEngine) Supported() bool {
	return e.supported
}

func (e *fakeEngine) NewSession(opts SessionOptions, handler func(Event)) Session {
	s := &fakeSession{
		rec:     e.rec,
		n:       len(e.sessions) + 1,
		opts:    opts,
		handler: handler,
	}
	e.sessions = append(e.sessions, s)
	return s
}

type fakeSession struct {
	rec        *recorder
	n          int
	opts       SessionOptions
	handler    func(Event)
	source     string
	startLoads int
	recovers   int
	destroyed  bool
}

func (s *fakeSession) LoadSource(url string) {
	s.source = url
	s.rec.add("session%d.LoadSource", s.n)
}

func (s *fakeSession) AttachMedia(Media) {
	s.rec.add("session%d.AttachMedia", s.n)
}

func (s *fakeSession) StartLoad() {
	s.startLoads++
	s.rec.add("session%d.StartLoad", s.n)
}

func (s *fakeSession) RecoverMediaError() {
	s.recovers++
	s.rec.add("session%d.RecoverMediaError", s.n)
}

func (s *fakeSession) Destroy() {
	s.destroyed = true
	s.rec.add("session%d.Destroy", s.n)
}

func (s *fakeSession) emitError(t ErrorType, fatal bool) {
	s.handler(Event{Type: EventError, Error: &ErrorData{Type: t, Fatal: fatal, Err: errors.New("boom")}})
}

func (s *fakeSession) emitParsed() {
	s.handler(Event{Type: EventManifestParsed, Variants: 1})
}

type fakeMedia struct {
	rec         *recorder
	native      bool
	unavailable bool
	playErr     error
	handlers    MediaHandlers
	sources     []Source
	plays       int
}

func (m *fakeMedia) Available() bool {
	return !m.unavailable
}

func (m *fakeMedia) CanPlayNative() bool {
	return m.native
}

func (m *fakeMedia) SetHandlers(h MediaHandlers) {
	m.handlers = h
}

func (m *fakeMedia) SetSource(src Source) {
	m.sources = append(m.sources, src)
	m.rec.add("media.SetSource")
}

func (m *fakeMedia) Play() error {
	m.plays++
	m.rec.add("media.Play")
	return m.playErr
}

func (m *fakeMedia) Pause() {
	m.rec.add("media.Pause")
}

func (m *fakeMedia) Clear() {
	m.rec.add("media.Clear")
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Alert(message string) {
	m.Called(message)
}

var appleNews = model.Channel{
	ID:              "AppleNews.us",
	Name:            "Apple News",
	Country:         "US",
	Categories:      []string{"news"},
	StreamURL:       "https://a.example/live stream.m3u8",
	StreamUserAgent: "VLC/3.0",
	StreamReferrer:  "https://a.example/",
}

var ballSports = model.Channel{
	ID:         "BallSports.uk",
	Name:       "Ball Sports",
	Country:    "UK",
	Categories: []string{},
	StreamURL:  "https://b.example/live.m3u8",
}

func newTestController(t *testing.T, supported, native bool) (*Controller, *fakeEngine, *fakeMedia, *recorder) {
	t.Helper()
	rec := &recorder{}
	engine := &fakeEngine{rec: rec, supported: supported}
	media := &fakeMedia{rec: rec, native: native}
	c := NewController(Options{
		Engine:   engine,
		Media:    media,
		ProxyURL: testProxy,
	})
	return c, engine, media, rec
}

func TestProxiedURL(t *testing.T) {
	tests := []struct {
		name   string
		stream string
		want   string
	}{
		{
			name:   "query and spaces",
			stream: "https://a.example/live stream.m3u8?a=1&b=2",
			want:   "https://corsproxy.io/?https%3A%2F%2Fa.example%2Flive%20stream.m3u8%3Fa%3D1%26b%3D2",
		},
		{
			name:   "unreserved marks stay literal",
			stream: "https://a.example/it's(live)!*.m3u8",
			want:   "https://corsproxy.io/?https%3A%2F%2Fa.example%2Fit's(live)!*.m3u8",
		},
		{
			name:   "literal plus is escaped",
			stream: "https://a.example/a+b.m3u8",
			want:   "https://corsproxy.io/?https%3A%2F%2Fa.example%2Fa%2Bb.m3u8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProxiedURL(testProxy, tt.stream))
		})
	}
}

func TestController_OpenSetsModalBeforeLoad(t *testing.T) {
	c, engine, _, _ := newTestController(t, true, false)

	require.NoError(t, c.Open(appleNews))

	snap := c.Snapshot()
	assert.True(t, snap.Visible)
	assert.Equal(t, "Apple News", snap.Title)
	assert.Equal(t, "news • US", snap.Meta)
	assert.Equal(t, StateOpening, snap.State)
	assert.Equal(t, "AppleNews.us", snap.ChannelID)
	assert.False(t, snap.Proxied)

	require.Len(t, engine.sessions, 1)
	s := engine.sessions[0]
	assert.Equal(t, appleNews.StreamURL, s.source)
	assert.Equal(t, SessionOptions{UserAgent: "VLC/3.0", Referrer: "https://a.example/"}, s.opts)
}

func TestController_MetaFallsBackToGeneral(t *testing.T) {
	c, _, _, _ := newTestController(t, true, false)
	require.NoError(t, c.Open(ballSports))
	assert.Equal(t, "General • UK", c.Snapshot().Meta)
}

func TestController_ManifestParsedPlays(t *testing.T) {
	tests := []struct {
		name    string
		playErr error
	}{
		{name: "autoplay accepted"},
		{name: "autoplay rejected is tolerated", playErr: errors.New("autoplay blocked")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, engine, media, _ := newTestController(t, true, false)
			media.playErr = tt.playErr
			require.NoError(t, c.Open(appleNews))

			engine.sessions[0].emitParsed()

			assert.Equal(t, StatePlaying, c.State())
			assert.Equal(t, 1, media.plays)
		})
	}
}

func TestController_SingleProxyRetry(t *testing.T) {
	c, engine, _, _ := newTestController(t, true, false)
	require.NoError(t, c.Open(appleNews))

	first := engine.sessions[0]
	first.emitError(ErrorNetwork, true)

	require.Len(t, engine.sessions, 2, "first fatal network error reopens through the proxy")
	assert.True(t, first.destroyed)
	second := engine.sessions[1]
	assert.Equal(t, ProxiedURL(testProxy, appleNews.StreamURL), second.source)
	assert.Equal(t, StateOpening, c.State())
	assert.True(t, c.Snapshot().Proxied)

	second.emitError(ErrorNetwork, true)

	assert.Len(t, engine.sessions, 2, "no second relay attempt")
	assert.False(t, second.destroyed)
	assert.Equal(t, 1, second.startLoads)
	assert.Equal(t, StateOpening, c.State())

	second.emitParsed()
	assert.Equal(t, StatePlaying, c.State())

	second.emitError(ErrorNetwork, true)
	assert.Len(t, engine.sessions, 2)
	assert.Equal(t, 2, second.startLoads)
}

func TestController_RetryResetsPerActivation(t *testing.T) {
	c, engine, _, _ := newTestController(t, true, false)
	require.NoError(t, c.Open(appleNews))
	engine.sessions[0].emitError(ErrorNetwork, true)
	require.Len(t, engine.sessions, 2)

	require.NoError(t, c.Open(appleNews))
	require.Len(t, engine.sessions, 3)
	engine.sessions[2].emitError(ErrorNetwork, true)

	assert.Len(t, engine.sessions, 4, "a new activation may retry through the proxy again")
}

func TestController_StaleSessionEventsIgnored(t *testing.T) {
	c, engine, media, _ := newTestController(t, true, false)
	require.NoError(t, c.Open(appleNews))
	first := engine.sessions[0]
	first.emitError(ErrorNetwork, true)

	first.emitParsed()
	first.emitError(ErrorOther, true)

	assert.Equal(t, StateOpening, c.State())
	assert.Equal(t, 0, media.plays)
	assert.False(t, engine.sessions[1].destroyed)
}

func TestController_MediaErrorRecoversInPlace(t *testing.T) {
	c, engine, _, _ := newTestController(t, true, false)
	require.NoError(t, c.Open(appleNews))
	s := engine.sessions[0]
	s.emitParsed()

	s.emitError(ErrorMedia, true)

	assert.Equal(t, 1, s.recovers)
	assert.False(t, s.destroyed)
	assert.Len(t, engine.sessions, 1)
	assert.Equal(t, StatePlaying, c.State())
}

func TestController_OtherErrorDestroys(t *testing.T) {
	c, engine, _, _ := newTestController(t, true, false)
	require.NoError(t, c.Open(appleNews))
	s := engine.sessions[0]

	s.emitError(ErrorOther, true)

	assert.True(t, s.destroyed)
	assert.Equal(t, StateFailed, c.State())
	assert.True(t, c.Snapshot().Visible)

	// The destroyed session cannot drive the controller any more
	s.emitError(ErrorNetwork, true)
	assert.Len(t, engine.sessions, 1)
}

func TestController_NonFatalErrorsIgnored(t *testing.T) {
	c, engine, _, _ := newTestController(t, true, false)
	require.NoError(t, c.Open(appleNews))
	s := engine.sessions[0]

	s.emitError(ErrorNetwork, false)
	s.emitError(ErrorMedia, false)
	s.emitError(ErrorOther, false)

	assert.Len(t, engine.sessions, 1)
	assert.Equal(t, 0, s.recovers)
	assert.False(t, s.destroyed)
	assert.Equal(t, StateOpening, c.State())
}

func TestController_TeardownBeforeOpen(t *testing.T) {
	c, engine, _, rec := newTestController(t, true, false)
	require.NoError(t, c.Open(appleNews))
	engine.sessions[0].emitParsed()

	require.NoError(t, c.Open(ballSports))

	require.Len(t, engine.sessions, 2)
	destroyed := rec.index("session1.Destroy")
	loaded := rec.index("session2.LoadSource")
	require.NotEqual(t, -1, destroyed)
	require.NotEqual(t, -1, loaded)
	assert.Less(t, destroyed, loaded)

	snap := c.Snapshot()
	assert.Equal(t, "Ball Sports", snap.Title)
	assert.Equal(t, StateOpening, snap.State)
}

func TestController_Close(t *testing.T) {
	c, engine, _, rec := newTestController(t, true, false)
	require.NoError(t, c.Open(appleNews))
	engine.sessions[0].emitParsed()

	c.Close()

	snap := c.Snapshot()
	assert.False(t, snap.Visible)
	assert.Equal(t, StateClosed, snap.State)
	assert.True(t, engine.sessions[0].destroyed)

	calls := rec.list()
	assert.Equal(t, []string{"media.Pause", "media.Clear", "session1.Destroy"}, calls[len(calls)-3:])

	// Closing again is a no-op
	before := len(rec.list())
	c.Close()
	assert.Len(t, rec.list(), before)

	// Late events after close are ignored
	engine.sessions[0].emitParsed()
	assert.Equal(t, StateClosed, c.State())
}

func TestController_NativeFallback(t *testing.T) {
	c, engine, media, _ := newTestController(t, false, true)
	require.NoError(t, c.Open(appleNews))

	assert.Empty(t, engine.sessions)
	require.Len(t, media.sources, 1)
	assert.Equal(t, Source{URL: appleNews.StreamURL, UserAgent: "VLC/3.0", Referrer: "https://a.example/"}, media.sources[0])
	require.NotNil(t, media.handlers.OnError)

	media.handlers.OnError(errors.New("decode failed"))
	require.Len(t, media.sources, 2)
	assert.Equal(t, ProxiedURL(testProxy, appleNews.StreamURL), media.sources[1].URL)
	assert.Equal(t, StateOpening, c.State())

	media.handlers.OnError(errors.New("decode failed again"))
	assert.Len(t, media.sources, 2, "proxy retry happens once")

	media.handlers.OnLoadedMetadata()
	assert.Equal(t, StatePlaying, c.State())
	assert.Equal(t, 1, media.plays)
}

func TestController_NativeStaleHandlers(t *testing.T) {
	c, _, media, _ := newTestController(t, false, true)
	require.NoError(t, c.Open(appleNews))
	stale := media.handlers

	require.NoError(t, c.Open(ballSports))
	stale.OnError(errors.New("old channel failed"))

	assert.Len(t, media.sources, 2)
	assert.Equal(t, ballSports.StreamURL, media.sources[1].URL)
}

func TestController_Unsupported(t *testing.T) {
	notifier := &mockNotifier{}
	notifier.On("Alert", UnsupportedMessage).Once()

	c := NewController(Options{
		Media:    &fakeMedia{rec: &recorder{}},
		Notifier: notifier,
		ProxyURL: testProxy,
	})

	err := c.Open(appleNews)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnsupported))
	assert.Equal(t, StateFailed, c.State())
	notifier.AssertExpectations(t)

	c.Close()
	assert.Equal(t, StateClosed, c.State())
}

func TestController_NoMediaSinkWithEngine(t *testing.T) {
	notifier := &mockNotifier{}
	notifier.On("Alert", UnsupportedMessage).Once()

	rec := &recorder{}
	engine := &fakeEngine{rec: rec, supported: true}
	c := NewController(Options{
		Engine:   engine,
		Media:    &fakeMedia{rec: rec, unavailable: true},
		Notifier: notifier,
		ProxyURL: testProxy,
	})

	err := c.Open(appleNews)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnsupported))
	assert.Equal(t, StateFailed, c.State())
	assert.Empty(t, engine.sessions)
	assert.Equal(t, -1, rec.index("media.Play"))
	notifier.AssertExpectations(t)
}

func TestController_OnChange(t *testing.T) {
	var snaps []Snapshot
	rec := &recorder{}
	engine := &fakeEngine{rec: rec, supported: true}
	c := NewController(Options{
		Engine:   engine,
		Media:    &fakeMedia{rec: rec},
		ProxyURL: testProxy,
		OnChange: func(s Snapshot) { snaps = append(snaps, s) },
	})

	require.NoError(t, c.Open(appleNews))
	engine.sessions[0].emitParsed()
	c.Close()

	require.Len(t, snaps, 3)
	assert.Equal(t, StateOpening, snaps[0].State)
	assert.Equal(t, StatePlaying, snaps[1].State)
	assert.Equal(t, StateClosed, snaps[2].State)
}

func TestTransitions_MediaErrorDuringRetrying(t *testing.T) {
	next, ok := transitions[transitionKey{from: StateRetrying, on: trMediaError}]
	require.True(t, ok)
	assert.Equal(t, transition{to: StateRetrying, act: actRecoverMedia}, next)

	_, ok = transitions[transitionKey{from: StateClosed, on: trManifestParsed}]
	assert.False(t, ok)
}
