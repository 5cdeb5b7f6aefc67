package player

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	apperrors "github.com/Taichi-iskw/idcable/internal/errors"
	"github.com/Taichi-iskw/idcable/internal/logger"
	"github.com/Taichi-iskw/idcable/internal/model"
)

// State is the controller state
type State int

const (
	StateClosed State = iota
	StateOpening
	StatePlaying
	StateRetrying
	// StateFailed keeps the modal open after an unrecoverable error until it is closed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpening:
		return "opening"
	case StatePlaying:
		return "playing"
	case StateRetrying:
		return "retrying"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type trigger int

const (
	trOpen trigger = iota
	trManifestParsed
	trNetworkError
	trNetworkErrorRetried
	trMediaError
	trOtherError
	trRetryStarted
	trNativeMetadata
	trNativeError
	trUnsupported
	trClose
)

var triggerNames = map[trigger]string{
	trOpen:                "open",
	trManifestParsed:      "manifest-parsed",
	trNetworkError:        "network-error",
	trNetworkErrorRetried: "network-error-after-retry",
	trMediaError:          "media-error",
	trOtherError:          "other-error",
	trRetryStarted:        "retry-started",
	trNativeMetadata:      "native-metadata",
	trNativeError:         "native-error",
	trUnsupported:         "unsupported",
	trClose:               "close",
}

func (t trigger) String() string {
	return triggerNames[t]
}

type action int

const (
	actNone action = iota
	actAutoplay
	actReopenViaProxy
	actNativeViaProxy
	actStartLoad
	actRecoverMedia
	actDestroy
)

type transitionKey struct {
	from State
	on   trigger
}

type transition struct {
	to  State
	act action
}

// transitions lists every accepted (state, trigger) pair; anything else is ignored
var transitions = map[transitionKey]transition{
	{StateClosed, trOpen}:   {StateOpening, actNone},
	{StateOpening, trOpen}:  {StateOpening, actNone},
	{StatePlaying, trOpen}:  {StateOpening, actNone},
	{StateRetrying, trOpen}: {StateOpening, actNone},
	{StateFailed, trOpen}:   {StateOpening, actNone},

	{StateOpening, trManifestParsed}: {StatePlaying, actAutoplay},
	{StateOpening, trNativeMetadata}: {StatePlaying, actAutoplay},

	{StateOpening, trNetworkError}: {StateRetrying, actReopenViaProxy},
	{StatePlaying, trNetworkError}: {StateRetrying, actReopenViaProxy},
	{StateOpening, trNativeError}:  {StateRetrying, actNativeViaProxy},
	{StatePlaying, trNativeError}:  {StateRetrying, actNativeViaProxy},

	{StateRetrying, trRetryStarted}: {StateOpening, actNone},

	{StateOpening, trNetworkErrorRetried}: {StateOpening, actStartLoad},
	{StatePlaying, trNetworkErrorRetried}: {StateOpening, actStartLoad},

	{StateOpening, trMediaError}:  {StateOpening, actRecoverMedia},
	{StatePlaying, trMediaError}:  {StatePlaying, actRecoverMedia},
	{StateRetrying, trMediaError}: {StateRetrying, actRecoverMedia},

	{StateOpening, trOtherError}:  {StateFailed, actDestroy},
	{StatePlaying, trOtherError}:  {StateFailed, actDestroy},
	{StateRetrying, trOtherError}: {StateFailed, actDestroy},

	{StateOpening, trUnsupported}: {StateFailed, actNone},

	{StateOpening, trClose}:  {StateClosed, actNone},
	{StatePlaying, trClose}:  {StateClosed, actNone},
	{StateRetrying, trClose}: {StateClosed, actNone},
	{StateFailed, trClose}:   {StateClosed, actNone},
}

// Snapshot is the externally visible state of the player modal
type Snapshot struct {
	State     State
	Visible   bool
	Title     string
	Meta      string
	ChannelID string
	Source    string
	Proxied   bool
}

// Options configures a Controller
type Options struct {
	// Engine may be nil when no adaptive streaming engine is available
	Engine   Engine
	Media    Media
	Notifier Notifier
	ProxyURL string
	Logger   logger.Logger
	// OnChange is called after every public operation or session event, outside the lock
	OnChange func(Snapshot)
}

// Controller manages the lifecycle of the single active playback session
type Controller struct {
	mu sync.Mutex

	engine   Engine
	media    Media
	notifier Notifier
	proxyURL string
	log      logger.Logger
	onChange func(Snapshot)

	state          State
	visible        bool
	title          string
	meta           string
	channel        *model.Channel
	source         string
	native         bool
	session        Session
	sessionID      string
	retryAvailable bool
}

// NewController creates a Controller in the closed state
func NewController(opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &Controller{
		engine:   opts.Engine,
		media:    opts.Media,
		notifier: opts.Notifier,
		proxyURL: opts.ProxyURL,
		log:      opts.Logger,
		onChange: opts.OnChange,
		state:    StateClosed,
	}
}

// Open shows the player for ch and starts playback. Any previous session is destroyed first.
// It returns an UNSUPPORTED error when the environment cannot play HLS at all.
func (c *Controller) Open(ch model.Channel) error {
	c.mu.Lock()
	unsupported := c.open(ch)
	snap := c.snapshot()
	c.mu.Unlock()

	if unsupported {
		if c.notifier != nil {
			c.notifier.Alert(UnsupportedMessage)
		}
		c.notify(snap)
		return apperrors.New(apperrors.CodeUnsupported, UnsupportedMessage)
	}
	c.notify(snap)
	return nil
}

func (c *Controller) open(ch model.Channel) bool {
	c.teardown()

	c.channel = &ch
	c.visible = true
	c.title = ch.Name
	c.meta = fmt.Sprintf("%s • %s", ch.PrimaryCategory(), ch.Country)
	c.retryAvailable = true
	c.fire(trOpen)

	// Both paths render through the media sink
	available := c.media != nil && c.media.Available()
	switch {
	case available && c.engine != nil && c.engine.Supported():
		c.native = false
		c.startSession(ch.StreamURL)
	case available && c.media.CanPlayNative():
		c.native = true
		c.startNative(ch.StreamURL)
	default:
		c.log.Error("player: no media sink, or no HLS engine and no native HLS support")
		c.fire(trUnsupported)
		return true
	}
	return false
}

// Close hides the player, stops playback and destroys the session
func (c *Controller) Close() {
	c.mu.Lock()
	if c.state == StateClosed && !c.visible {
		c.mu.Unlock()
		return
	}
	c.visible = false
	c.teardown()
	c.fire(trClose)
	snap := c.snapshot()
	c.mu.Unlock()

	c.notify(snap)
}

// Snapshot returns the current modal state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// State returns the current controller state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) snapshot() Snapshot {
	snap := Snapshot{
		State:   c.state,
		Visible: c.visible,
		Title:   c.title,
		Meta:    c.meta,
		Source:  c.source,
		Proxied: c.channel != nil && c.source != "" && c.source != c.channel.StreamURL,
	}
	if c.channel != nil {
		snap.ChannelID = c.channel.ID
	}
	return snap
}

func (c *Controller) notify(snap Snapshot) {
	if c.onChange != nil {
		c.onChange(snap)
	}
}

// teardown stops the media and destroys the current session, leaving the state alone
func (c *Controller) teardown() {
	if c.media != nil {
		c.media.Pause()
		c.media.Clear()
		if c.native {
			c.media.SetHandlers(MediaHandlers{})
		}
	}
	c.destroySession()
	c.source = ""
}

func (c *Controller) destroySession() {
	if c.session != nil {
		c.log.Debugf("player: destroying session %s", c.sessionID)
		c.session.Destroy()
		c.session = nil
	}
	c.sessionID = ""
}

func (c *Controller) startSession(src string) {
	id := uuid.NewString()
	c.sessionID = id
	c.source = src

	opts := SessionOptions{
		UserAgent: c.channel.StreamUserAgent,
		Referrer:  c.channel.StreamReferrer,
	}
	c.session = c.engine.NewSession(opts, func(ev Event) {
		c.onSessionEvent(id, ev)
	})
	c.log.Debugf("player: session %s loading %s", id, src)
	c.session.LoadSource(src)
	c.session.AttachMedia(c.media)
}

func (c *Controller) startNative(src string) {
	id := uuid.NewString()
	c.sessionID = id

	c.media.SetHandlers(MediaHandlers{
		OnLoadedMetadata: func() { c.onNativeEvent(id, trNativeMetadata, nil) },
		OnError:          func(err error) { c.onNativeEvent(id, trNativeError, err) },
	})
	c.setNativeSource(src)
}

func (c *Controller) setNativeSource(src string) {
	c.source = src
	c.log.Debugf("player: native playback of %s", src)
	c.media.SetSource(Source{
		URL:       src,
		UserAgent: c.channel.StreamUserAgent,
		Referrer:  c.channel.StreamReferrer,
	})
}

func (c *Controller) onSessionEvent(id string, ev Event) {
	c.mu.Lock()
	if id == "" || id != c.sessionID {
		c.mu.Unlock()
		c.log.Debugf("player: dropping event from stale session %s", id)
		return
	}

	switch ev.Type {
	case EventManifestParsed:
		c.log.Debugf("player: manifest parsed, %d variant(s)", ev.Variants)
		c.fire(trManifestParsed)
	case EventError:
		c.onSessionError(ev.Error)
	}
	snap := c.snapshot()
	c.mu.Unlock()

	c.notify(snap)
}

func (c *Controller) onSessionError(data *ErrorData) {
	if data == nil {
		return
	}
	if !data.Fatal {
		c.log.Debugf("player: non-fatal %s error: %s", data.Type, data.Details)
		return
	}

	switch data.Type {
	case ErrorNetwork:
		c.log.Warnf("player: fatal network error encountered, try to recover: %v", data.Err)
		if c.retryAvailable {
			c.fire(trNetworkError)
		} else {
			c.fire(trNetworkErrorRetried)
		}
	case ErrorMedia:
		c.log.Warnf("player: fatal media error encountered, try to recover: %v", data.Err)
		c.fire(trMediaError)
	default:
		c.log.Errorf("player: fatal %s error, giving up: %v", data.Type, data.Err)
		c.fire(trOtherError)
	}
}

func (c *Controller) onNativeEvent(id string, t trigger, err error) {
	c.mu.Lock()
	if id == "" || id != c.sessionID {
		c.mu.Unlock()
		return
	}

	if t == trNativeError {
		if !c.retryAvailable {
			c.log.Warnf("player: native playback failed after proxy retry: %v", err)
			c.mu.Unlock()
			return
		}
		c.log.Warnf("player: native playback failed, retrying with proxy: %v", err)
	}
	c.fire(t)
	snap := c.snapshot()
	c.mu.Unlock()

	c.notify(snap)
}

// fire applies the transition for t in the current state and runs its action
func (c *Controller) fire(t trigger) {
	next, ok := transitions[transitionKey{from: c.state, on: t}]
	if !ok {
		c.log.Debugf("player: ignoring %s in state %s", t, c.state)
		return
	}
	c.log.Debugf("player: %s -[%s]-> %s", c.state, t, next.to)
	c.state = next.to
	c.run(next.act)
}

func (c *Controller) run(act action) {
	switch act {
	case actAutoplay:
		if err := c.media.Play(); err != nil {
			c.log.Logf("player: auto-play prevented: %v", err)
		}
	case actReopenViaProxy:
		c.retryAvailable = false
		c.log.Log("player: retrying with CORS proxy")
		c.destroySession()
		c.startSession(ProxiedURL(c.proxyURL, c.channel.StreamURL))
		c.fire(trRetryStarted)
	case actNativeViaProxy:
		c.retryAvailable = false
		c.setNativeSource(ProxiedURL(c.proxyURL, c.channel.StreamURL))
		c.fire(trRetryStarted)
	case actStartLoad:
		if c.session != nil {
			c.session.StartLoad()
		}
	case actRecoverMedia:
		if c.session != nil {
			c.session.RecoverMediaError()
		}
	case actDestroy:
		c.destroySession()
	}
}
