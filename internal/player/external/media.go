// Package external plays streams in an external media player process such as mpv.
package external

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	apperrors "github.com/Taichi-iskw/idcable/internal/errors"
	"github.com/Taichi-iskw/idcable/internal/logger"
	"github.com/Taichi-iskw/idcable/internal/player"
	"github.com/Taichi-iskw/idcable/internal/service/common"
)

// stopGrace is how long an interrupted player may take to exit before it is killed
const stopGrace = 2 * time.Second

// Media is a player.Media backed by one player process at a time.
// SetSource reports the source as loaded right away; Play starts the process and an
// unsuccessful exit is reported through OnError. Pause has no in-process equivalent and
// stops the process.
type Media struct {
	runner  common.CmdRunner
	command string
	args    []string
	log     logger.Logger
	grace   time.Duration

	mu       sync.Mutex
	handlers player.MediaHandlers
	source   *player.Source
	proc     common.Process
	exited   chan struct{}
	cancel   context.CancelFunc
	gen      uint64
}

// New creates a Media launching command with extra args before the player flags
func New(runner common.CmdRunner, command string, args []string, log logger.Logger) *Media {
	if log == nil {
		log = logger.Nop()
	}
	return &Media{
		runner:  runner,
		command: command,
		args:    args,
		log:     log,
		grace:   stopGrace,
	}
}

// CanPlayNative reports whether the player command is installed; the player handles
// HLS itself
func (m *Media) CanPlayNative() bool {
	return m.Available()
}

// Available reports whether the player command is installed
func (m *Media) Available() bool {
	path, err := m.runner.LookPath(m.command)
	if err != nil {
		m.log.Debugf("media: %s not found: %v", m.command, err)
		return false
	}
	m.log.Debugf("media: using %s", path)
	return true
}

// Version returns the first line of the player's --version output
func (m *Media) Version(ctx context.Context) (string, error) {
	out, err := m.runner.Run(ctx, m.command, "--version")
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeExternal, fmt.Sprintf("failed to run %s --version", m.command))
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return strings.TrimSpace(line), nil
}

func (m *Media) SetHandlers(h player.MediaHandlers) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = h
}

// SetSource stops any running process and stores src for the next Play
func (m *Media) SetSource(src player.Source) {
	m.mu.Lock()
	m.stopLocked()
	m.source = &src
	loaded := m.handlers.OnLoadedMetadata
	m.mu.Unlock()

	if loaded != nil {
		go loaded()
	}
}

// Play starts the player process for the current source; it is a no-op while one is running
func (m *Media) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.source == nil {
		return apperrors.New(apperrors.CodeInvalidArg, "no source to play")
	}
	if m.proc != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	proc, err := m.runner.Start(ctx, m.command, m.buildArgs(*m.source)...)
	if err != nil {
		cancel()
		return apperrors.Wrap(err, apperrors.CodeExternal, fmt.Sprintf("failed to start %s", m.command))
	}

	m.gen++
	m.proc = proc
	m.exited = make(chan struct{})
	m.cancel = cancel
	m.log.Debugf("media: started %s (pid %d)", m.command, proc.Pid())

	go m.wait(m.gen, proc, m.exited)
	return nil
}

func (m *Media) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
}

func (m *Media) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
	m.source = nil
}

// Source returns the current source, if any
func (m *Media) Source() (player.Source, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.source == nil {
		return player.Source{}, false
	}
	return *m.source, true
}

// stopLocked interrupts the running process and kills it if it outlives the grace
// period; its exit is not reported
func (m *Media) stopLocked() {
	if m.proc == nil {
		return
	}
	m.gen++
	proc, exited, cancel := m.proc, m.exited, m.cancel
	m.proc = nil
	m.exited = nil
	m.cancel = nil

	if err := proc.Signal(os.Interrupt); err != nil {
		m.log.Debugf("media: interrupt failed: %v", err)
		m.kill(proc)
		cancel()
		return
	}
	go m.terminate(proc, exited, cancel)
}

func (m *Media) terminate(proc common.Process, exited <-chan struct{}, cancel context.CancelFunc) {
	defer cancel()

	timer := time.NewTimer(m.grace)
	defer timer.Stop()
	select {
	case <-exited:
	case <-timer.C:
		m.log.Debugf("media: %s ignored interrupt", m.command)
		m.kill(proc)
	}
}

func (m *Media) kill(proc common.Process) {
	if err := proc.Kill(); err != nil {
		m.log.Debugf("media: kill failed: %v", err)
	}
}

func (m *Media) wait(gen uint64, proc common.Process, exited chan struct{}) {
	err := proc.Wait()
	close(exited)

	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		return
	}
	m.proc = nil
	m.exited = nil
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	onError := m.handlers.OnError
	m.mu.Unlock()

	if err == nil {
		m.log.Debugf("media: %s exited", m.command)
		return
	}
	m.log.Warnf("media: %s failed: %v", m.command, err)
	if onError != nil {
		onError(err)
	}
}

func (m *Media) buildArgs(src player.Source) []string {
	args := append([]string(nil), m.args...)
	if src.UserAgent != "" {
		args = append(args, "--user-agent="+src.UserAgent)
	}
	if src.Referrer != "" {
		args = append(args, "--referrer="+src.Referrer)
	}
	return append(args, src.URL)
}
