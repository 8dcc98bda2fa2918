// Package celebrate describes the one-shot confetti burst shown when a
// coupon is issued.
package celebrate

import (
	"encoding/json"
	"sync"
)

// Origin is the burst origin as a fraction of the viewport.
type Origin struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Effect holds the confetti parameters handed to the browser.
type Effect struct {
	ParticleCount int      `json:"particleCount"`
	Spread        int      `json:"spread"`
	Origin        Origin   `json:"origin"`
	Colors        []string `json:"colors"`
}

// Default returns the brand burst: 150 particles, spread 70, amber tones.
func Default() Effect {
	return Effect{
		ParticleCount: 150,
		Spread:        70,
		Origin:        Origin{X: 0.5, Y: 0.6},
		Colors:        []string{"#f59e0b", "#fbbf24", "#ffffff"},
	}
}

// TriggerEvent is the client event name that carries an Effect.
const TriggerEvent = "celebrate"

// TriggerHeader encodes effect as an HX-Trigger header value.
func TriggerHeader(effect Effect) (string, error) {
	payload, err := json.Marshal(map[string]Effect{TriggerEvent: effect})
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

// Launcher plays an effect.
type Launcher interface {
	Launch(Effect)
}

// LauncherFunc adapts a function to Launcher.
type LauncherFunc func(Effect)

// Launch calls f.
func (f LauncherFunc) Launch(effect Effect) {
	f(effect)
}

// Once forwards only the first Launch to the wrapped launcher.
type Once struct {
	next Launcher
	once sync.Once
}

// NewOnce wraps next.
func NewOnce(next Launcher) *Once {
	return &Once{next: next}
}

// Launch forwards effect the first time it is called.
func (o *Once) Launch(effect Effect) {
	o.once.Do(func() {
		if o.next != nil {
			o.next.Launch(effect)
		}
	})
}

// Queue holds at most one pending effect until a response drains it.
type Queue struct {
	mu      sync.Mutex
	pending *Effect
}

// Launch stores effect for the next Drain.
func (q *Queue) Launch(effect Effect) {
	q.mu.Lock()
	defer q.mu.Unlock()
	e := effect
	q.pending = &e
}

// Drain returns the pending effect and clears it.
func (q *Queue) Drain() (Effect, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.pending == nil {
		return Effect{}, false
	}
	e := *q.pending
	q.pending = nil
	return e, true
}
