package engine

import (
	"log/slog"
	"sync"
	"time"
)

// Engine paces the world's tick loop in real time.
type Engine struct {
	World *World

	// OnTick receives every completed tick report — populated during setup.
	OnTick func(*TickReport)

	interval time.Duration
	maxTicks int

	mu      sync.Mutex
	speed   float64
	running bool
}

// NewEngine wraps a world in a pacing loop. interval is the base tick period
// at speed 1.0; maxTicks 0 means run until stopped.
func NewEngine(world *World, interval time.Duration, maxTicks int) *Engine {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &Engine{
		World:    world,
		interval: interval,
		maxTicks: maxTicks,
		speed:    1.0,
	}
}

// Run drives the world until Stop is called or maxTicks complete. Blocks.
func (e *Engine) Run() {
	e.mu.Lock()
	e.running = true
	e.mu.Unlock()

	slog.Info("simulation started",
		"tick", e.World.CurrentTick(), "interval", e.interval, "max_ticks", e.maxTicks)

	for e.IsRunning() {
		if e.maxTicks > 0 && e.World.CurrentTick() >= e.maxTicks {
			break
		}

		speed := e.Speed()
		if speed <= 0 {
			// Paused — check again shortly.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()
		report := e.World.Step()
		if e.OnTick != nil {
			e.OnTick(report)
		}

		// Sleep out the remainder of the tick interval, adjusted for speed.
		elapsed := time.Since(start)
		target := time.Duration(float64(e.interval) / speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	e.mu.Lock()
	e.running = false
	e.mu.Unlock()
	slog.Info("simulation stopped", "tick", e.World.CurrentTick())
}

// Stop halts the loop after the in-flight tick completes.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.running = false
	e.mu.Unlock()
}

// IsRunning reports whether the loop is active.
func (e *Engine) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Speed returns the current speed multiplier.
func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// SetSpeed updates the speed multiplier. Zero or below pauses the loop
// without losing state.
func (e *Engine) SetSpeed(v float64) {
	e.mu.Lock()
	e.speed = v
	e.mu.Unlock()
	slog.Info("simulation speed changed", "speed", v)
}
