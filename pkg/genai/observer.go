package genai

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/AmeRaino/dompick/internal/logger"
)

// Observer receives notifications about completed generations.
// Implement this interface to integrate with any observability backend
// (custom logging, metrics, tracing, etc.).
//
// The observer fires once per generation, after the stream is drained
// or abandoned, whether the generation succeeded or failed.
type Observer interface {
	OnGeneration(ctx context.Context, event GenerationEvent)
}

// GenerationEvent contains all information about one generation.
type GenerationEvent struct {
	// Provider name (e.g., "anthropic", "openai", "openrouter")
	Provider string

	// Model used for the generation
	Model string

	// Messages sent to the model
	Messages []Message

	// Chunks is the number of streamed chunks received
	Chunks int

	// Output is the accumulated streamed text
	Output string

	// Err if the stream ended abnormally (nil otherwise)
	Err error

	// Duration from first Next to stream end
	Duration time.Duration

	// Timestamp when the generation started
	StartedAt time.Time
}

// ObserverFunc is a convenience type for using a function as an Observer.
type ObserverFunc func(ctx context.Context, event GenerationEvent)

// OnGeneration implements Observer.
func (f ObserverFunc) OnGeneration(ctx context.Context, event GenerationEvent) {
	f(ctx, event)
}

// MultiObserver combines multiple observers into one.
// All observers are called for each event.
type MultiObserver struct {
	observers []Observer
}

// NewMultiObserver creates an observer that dispatches to multiple observers.
func NewMultiObserver(observers ...Observer) *MultiObserver {
	return &MultiObserver{observers: observers}
}

// OnGeneration dispatches the event to all registered observers.
func (m *MultiObserver) OnGeneration(ctx context.Context, event GenerationEvent) {
	for _, obs := range m.observers {
		obs.OnGeneration(ctx, event)
	}
}

// Add adds an observer to the multi-observer.
func (m *MultiObserver) Add(obs Observer) {
	m.observers = append(m.observers, obs)
}

// LogObserver returns an observer that records generations through the
// structured logger.
func LogObserver() Observer {
	return ObserverFunc(func(_ context.Context, event GenerationEvent) {
		logger.Debug("generation complete",
			"provider", event.Provider,
			"model", event.Model,
			"chunks", event.Chunks,
			"output_size", len(event.Output),
			"duration", event.Duration,
			"error", event.Err)
	})
}

// Observe wraps a stream so obs fires exactly once when the stream ends,
// is closed early, or fails. The base event supplies provider and model;
// chunk count, output, error and timing are filled in by the wrapper.
func Observe(ctx context.Context, s Stream, obs Observer, base GenerationEvent) Stream {
	if obs == nil {
		return s
	}
	return &observedStream{
		inner:   s,
		obs:     obs,
		ctx:     ctx,
		event:   base,
		started: time.Now(),
	}
}

type observedStream struct {
	inner   Stream
	obs     Observer
	ctx     context.Context
	event   GenerationEvent
	started time.Time
	output  strings.Builder
	chunks  int
	once    sync.Once
}

func (o *observedStream) Next() bool {
	if !o.inner.Next() {
		o.fire()
		return false
	}
	o.output.WriteString(o.inner.Current())
	o.chunks++
	return true
}

func (o *observedStream) Current() string {
	return o.inner.Current()
}

func (o *observedStream) Err() error {
	return o.inner.Err()
}

func (o *observedStream) Close() error {
	err := o.inner.Close()
	o.fire()
	return err
}

func (o *observedStream) fire() {
	o.once.Do(func() {
		o.event.Chunks = o.chunks
		o.event.Output = o.output.String()
		o.event.Err = o.inner.Err()
		o.event.Duration = time.Since(o.started)
		if o.event.StartedAt.IsZero() {
			o.event.StartedAt = o.started
		}
		o.obs.OnGeneration(o.ctx, o.event)
	})
}
