package sequencer

import (
	"context"
	"sync"
	"time"

	"pentone/debug"
)

// UI refresh rate
const uiFPS = 30

// Tempo limits for user control
const (
	MinTempo = 20
	MaxTempo = 300
)

// Engine drives the manager from a single shared tick and hands due events
// to the renderer.
type Engine struct {
	manager  *Manager
	renderer Renderer

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool

	interruptChan chan struct{} // region event arrived, fill now

	// Notify TUI of updates
	UpdateChan chan struct{}
}

// NewEngine creates an engine. A nil renderer plays nothing.
func NewEngine(m *Manager, r Renderer) *Engine {
	if r == nil {
		r = Nop{}
	}
	e := &Engine{
		manager:       m,
		renderer:      r,
		interruptChan: make(chan struct{}, 1),
		UpdateChan:    make(chan struct{}, 1),
	}
	m.SetOnEvent(e.interrupt)
	return e
}

// Manager returns the engine's slot manager
func (e *Engine) Manager() *Manager { return e.manager }

// StartRuntime launches the tick loop
func (e *Engine) StartRuntime(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return
	}
	ctx, e.cancel = context.WithCancel(ctx)
	e.done = make(chan struct{})
	e.running = true
	go e.loop(ctx, e.done)
	debug.Log("engine", "started tick=%v lookahead=%v", e.manager.timing.TickInterval, e.manager.timing.Lookahead)
}

// Close stops the tick loop and waits for it to exit
func (e *Engine) Close() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.cancel()
	done := e.done
	e.running = false
	e.mu.Unlock()
	<-done
	debug.Log("engine", "stopped")
}

// interrupt signals the loop to fill immediately
func (e *Engine) interrupt() {
	select {
	case e.interruptChan <- struct{}{}:
	default:
	}
}

func (e *Engine) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(e.manager.timing.TickInterval)
	uiTicker := time.NewTicker(time.Second / uiFPS)
	defer ticker.Stop()
	defer uiTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.interruptChan:
			e.Tick(e.manager.clock.Now())
		case <-ticker.C:
			e.Tick(e.manager.clock.Now())
		case <-uiTicker.C:
			select {
			case e.UpdateChan <- struct{}{}:
			default:
			}
		}
	}
}

// Tick runs one scheduling pass at now. Every voice sees the same grid.
func (e *Engine) Tick(now time.Duration) int {
	g := e.manager.clock.Grid()
	e.manager.Fill(now, g)
	due := e.manager.PopDue(now + e.manager.timing.DispatchAhead)
	for _, ev := range due {
		at := ev.At
		if at < now {
			at = now
		}
		e.play(ev.Sound, at)
	}
	if len(due) > 0 {
		debug.LogEvery(50, "engine", "dispatched %d events at %v", len(due), now)
	}
	return len(due)
}

// play hands one sound to the renderer; a renderer panic is logged and dropped
func (e *Engine) play(s Sound, at time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			debug.Log("engine", "renderer panic on %s: %v", s, r)
		}
	}()
	e.renderer.Play(s, at)
}

// SetTempo sets the BPM, clamped to the playable range
func (e *Engine) SetTempo(bpm float64) float64 {
	if bpm < MinTempo {
		bpm = MinTempo
	}
	if bpm > MaxTempo {
		bpm = MaxTempo
	}
	e.manager.clock.SetBPM(bpm)
	return bpm
}

// Tempo returns the current BPM
func (e *Engine) Tempo() float64 {
	return e.manager.clock.BPM()
}
